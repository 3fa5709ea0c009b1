package magick

import (
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/xwmx/glyph-imager/core"
)

// Options configure the rasterization of a code-point. Zero values are unset.
type Options struct {
	CodePoint           string // hex digits, e.g. "0021"
	FontPath            string // font locator
	OutputDir           string // directory for the image file
	Size                string // canvas size "WxH"
	PointSizePercentage int    // point size relative to canvas height
	Gravity             string // anchor of the label on the canvas
	Background          string // color keyword or "none"
	Command             string // rasterizer binary
}

// Default option values.
const (
	DefaultSize                = "80x80"
	DefaultPointSizePercentage = 100
	DefaultGravity             = "center"
	DefaultBackground          = "none"
	DefaultCommand             = "convert"
)

// Defaults returns the default options.
func Defaults() Options {
	return Options{
		Size:                DefaultSize,
		PointSizePercentage: DefaultPointSizePercentage,
		Gravity:             DefaultGravity,
		Background:          DefaultBackground,
		Command:             DefaultCommand,
	}
}

// Merge returns a copy of o, with every field set in other overriding the
// corresponding field of o.
func (o Options) Merge(other Options) Options {
	merged := o
	set := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	set(&merged.CodePoint, other.CodePoint)
	set(&merged.FontPath, other.FontPath)
	set(&merged.OutputDir, other.OutputDir)
	set(&merged.Size, other.Size)
	set(&merged.Gravity, other.Gravity)
	set(&merged.Background, other.Background)
	set(&merged.Command, other.Command)
	if other.PointSizePercentage != 0 {
		merged.PointSizePercentage = other.PointSizePercentage
	}
	return merged
}

// ParseCodePoint parses a code-point given as hex digits, with an optional
// "U+" or "0x" prefix. Surrogates are not characters and are rejected.
func ParseCodePoint(s string) (rune, error) {
	h := strings.TrimSpace(s)
	for _, prefix := range []string{"U+", "u+", "0x", "0X"} {
		h = strings.TrimPrefix(h, prefix)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil || h == "" {
		return 0, core.Error(core.EINVALID, "code-point is not a hex number: %q", s)
	}
	if n > 0x10ffff {
		return 0, core.Error(core.EINVALID, "code-point out of range: %q", s)
	}
	if utf16.IsSurrogate(rune(n)) {
		return 0, core.Error(core.EINVALID, "code-point is a surrogate: %q", s)
	}
	return rune(n), nil
}

// ParseSize splits a canvas size "WxH" into width and height. The height is
// the part after the last 'x'.
func ParseSize(size string) (w, h int, err error) {
	i := strings.LastIndexByte(size, 'x')
	if i <= 0 {
		return 0, 0, core.Error(core.EINVALID, "size must be of form WxH, is %q", size)
	}
	w, werr := strconv.Atoi(size[:i])
	h, herr := strconv.Atoi(size[i+1:])
	if werr != nil || herr != nil || w <= 0 || h <= 0 {
		return 0, 0, core.Error(core.EINVALID, "size must be of form WxH, is %q", size)
	}
	return w, h, nil
}

// PointSize returns the point size for the label: the canvas height scaled
// by percentage.
//
//	PointSize("80x80", 50) == 40.0
func PointSize(size string, percentage int) (float64, error) {
	if percentage <= 0 {
		return 0, core.Error(core.EINVALID, "point size percentage must be positive, is %d", percentage)
	}
	_, h, err := ParseSize(size)
	if err != nil {
		return 0, err
	}
	return float64(h) * float64(percentage) / 100.0, nil
}

// OutputPath returns the path of the image file for a code-point.
//
//	OutputPath("0021", "80x80", "/tmp") == "/tmp/0021-80x80.png"
func OutputPath(codePoint, size, dir string) string {
	return dir + "/" + codePoint + "-" + size + ".png"
}

var gravities = map[string]bool{
	"none": true, "center": true, "north": true, "south": true, "east": true,
	"west": true, "northwest": true, "northeast": true, "southwest": true,
	"southeast": true,
}

// ValidGravity is a predicate for ImageMagick gravity keywords. Case does
// not matter.
func ValidGravity(g string) bool {
	return gravities[strings.ToLower(g)]
}

// Job is a fully resolved request to rasterize a single code-point.
type Job struct {
	CodePoint  rune
	Hex        string // code-point as given by the client
	FontPath   string // local font file
	Background string
	Size       string
	Gravity    string
	PointSize  float64
	Label      string // label in legacy command line form, see Escape
	OutputPath string
	Command    string
}

// NewJob creates a job from opts, merged onto the defaults. fontPath is the
// local font file, which may differ from the locator in opts.FontPath.
func NewJob(opts Options, fontPath string) (*Job, error) {
	opts = Defaults().Merge(opts)
	cp, err := ParseCodePoint(opts.CodePoint)
	if err != nil {
		return nil, err
	}
	if fontPath == "" {
		return nil, core.Error(core.EMISSING, "no font file for code-point %s", opts.CodePoint)
	}
	if opts.OutputDir == "" {
		return nil, core.Error(core.EMISSING, "no output directory for code-point %s", opts.CodePoint)
	}
	ptsize, err := PointSize(opts.Size, opts.PointSizePercentage)
	if err != nil {
		return nil, err
	}
	if !ValidGravity(opts.Gravity) {
		return nil, core.Error(core.EINVALID, "unknown gravity %q", opts.Gravity)
	}
	job := &Job{
		CodePoint:  cp,
		Hex:        strings.TrimSpace(opts.CodePoint),
		FontPath:   fontPath,
		Background: opts.Background,
		Size:       opts.Size,
		Gravity:    opts.Gravity,
		PointSize:  ptsize,
		Label:      Escape(cp),
		OutputPath: OutputPath(strings.TrimSpace(opts.CodePoint), opts.Size, opts.OutputDir),
		Command:    opts.Command,
	}
	tracer().Debugf("job for %s: %s", job.Hex, job.OutputPath)
	return job, nil
}

// Args returns the argument vector for the rasterizer, not including the
// command itself.
func (job *Job) Args() []string {
	return []string{
		"-font", job.FontPath,
		"-background", job.Background,
		"-size", job.Size,
		"-gravity", job.Gravity,
		"-pointsize", formatPointSize(job.PointSize),
		"label:" + LabelArgument(job.CodePoint),
		job.OutputPath,
	}
}

// CommandLine renders the job as a single-line shell command, with the label
// escaped by Escape. It is meant for display and is never executed.
func (job *Job) CommandLine() string {
	var b strings.Builder
	b.WriteString(job.Command)
	b.WriteString(" -font " + job.FontPath)
	b.WriteString(" -background " + job.Background)
	b.WriteString(" -size " + job.Size)
	b.WriteString(" -gravity " + job.Gravity)
	b.WriteString(" -pointsize " + formatPointSize(job.PointSize))
	b.WriteString(" label:" + job.Label)
	b.WriteString(" " + job.OutputPath)
	return b.String()
}

// formatPointSize renders point sizes with at least one decimal, i.e. 80.0
func formatPointSize(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
