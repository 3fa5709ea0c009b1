package imager

import (
	"context"
	"strings"

	"github.com/xwmx/glyph-imager/backend/magick"
	"github.com/xwmx/glyph-imager/core/font"
	"github.com/xwmx/glyph-imager/core/font/opentype/otquery"
)

// Imager images code-points of fonts. The zero value is ready to use and
// runs ImageMagick as a child process.
type Imager struct {
	Runner   magick.Runner  // executes rasterization jobs; nil for magick.ExecRunner
	Defaults magick.Options // defaults overriding the built-in ones
}

// New creates an imager with a runner and defaults. Either may be zero.
func New(runner magick.Runner, defaults magick.Options) *Imager {
	return &Imager{Runner: runner, Defaults: defaults}
}

func (im *Imager) runner() magick.Runner {
	if im.Runner == nil {
		return magick.ExecRunner{}
	}
	return im.Runner
}

// options merges opts onto the imager's defaults, which in turn are merged
// onto the built-in defaults.
func (im *Imager) options(opts magick.Options) magick.Options {
	return magick.Defaults().Merge(im.Defaults).Merge(opts)
}

// ImageCharacterForFont images a single code-point with a new default
// imager. See Imager.ImageCharacterForFont.
func ImageCharacterForFont(ctx context.Context, opts magick.Options) (*magick.Job, error) {
	return (&Imager{}).ImageCharacterForFont(ctx, opts)
}

// ImageCharacterForFont checks if the font at opts.FontPath has a glyph for
// opts.CodePoint and has it rasterized to an image file in opts.OutputDir.
//
// If the font does not have a glyph for the code-point, nil is returned
// for both the job and the error, and nothing is rasterized. Control
// characters never have a glyph. Missing or invalid options result in a
// *ConfigurationError, a font which cannot be loaded in a *FontLoadError. If
// the rasterizer fails, a *RasterizationError is returned together with the
// job.
func (im *Imager) ImageCharacterForFont(ctx context.Context, opts magick.Options) (*magick.Job, error) {
	opts = im.options(opts)
	cp, err := validate(opts)
	if err != nil {
		return nil, err
	}
	h, err := font.Load(ctx, opts.FontPath)
	if err != nil {
		return nil, &FontLoadError{Locator: opts.FontPath, Err: err}
	}
	defer h.Close()
	q := h.Glyph(cp)
	if !q.Available {
		tracer().Infof("font %s has no glyph for %#U", h.Name(), cp)
		return nil, nil
	}
	return im.rasterize(ctx, h, opts)
}

// QueryGlyph checks if the font referenced by locator has a glyph for the
// code-point given in hex digits, without rasterizing anything.
func (im *Imager) QueryGlyph(ctx context.Context, locator, codePoint string) (otquery.GlyphQuery, error) {
	q := otquery.GlyphQuery{}
	if strings.TrimSpace(codePoint) == "" {
		return q, missing(FieldCodePoint)
	}
	cp, err := magick.ParseCodePoint(codePoint)
	if err != nil {
		return q, invalid(FieldCodePoint, err)
	}
	if strings.TrimSpace(locator) == "" {
		return q, missing(FieldFontPath)
	}
	h, err := font.Load(ctx, locator)
	if err != nil {
		return q, &FontLoadError{Locator: locator, Err: err}
	}
	defer h.Close()
	return h.Glyph(cp), nil
}

// rasterize creates a job for opts.CodePoint and runs it. The glyph is
// expected to be available in h.
func (im *Imager) rasterize(ctx context.Context, h *font.Handle, opts magick.Options) (*magick.Job, error) {
	job, err := magick.NewJob(opts, h.Path)
	if err != nil {
		return nil, invalid(FieldCodePoint, err)
	}
	out, err := im.runner().Run(ctx, job)
	if err != nil {
		tracer().Errorf("rasterizing %s failed: %v", job.Hex, err)
		return job, &RasterizationError{
			Args:   append([]string{job.Command}, job.Args()...),
			Output: out,
			Err:    err,
		}
	}
	return job, nil
}

// validate checks opts for required and well-formed fields, in order
// code-point, font path, output directory. It returns the code-point.
func validate(opts magick.Options) (rune, error) {
	if strings.TrimSpace(opts.CodePoint) == "" {
		return 0, missing(FieldCodePoint)
	}
	if strings.TrimSpace(opts.FontPath) == "" {
		return 0, missing(FieldFontPath)
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return 0, missing(FieldOutputDir)
	}
	cp, err := magick.ParseCodePoint(opts.CodePoint)
	if err != nil {
		return 0, invalid(FieldCodePoint, err)
	}
	if err := validateGeometry(opts); err != nil {
		return 0, err
	}
	return cp, nil
}

func validateGeometry(opts magick.Options) error {
	if opts.PointSizePercentage <= 0 {
		_, err := magick.PointSize(opts.Size, opts.PointSizePercentage)
		return invalid(FieldPercentage, err)
	}
	if _, err := magick.PointSize(opts.Size, opts.PointSizePercentage); err != nil {
		return invalid(FieldSize, err)
	}
	if !magick.ValidGravity(opts.Gravity) {
		return &ConfigurationError{Field: FieldGravity, Reason: "unknown gravity " + opts.Gravity}
	}
	return nil
}
