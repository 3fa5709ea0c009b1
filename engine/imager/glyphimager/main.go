/*
Command glyphimager renders glyphs of a font into label images, using
ImageMagick.

Usage:

	glyphimager -font DejaVuSans.ttf -out /tmp 0021 00E9 1D11E
	glyphimager -font https://example.com/font.otf -out /tmp -catalog 0020-00FF
	glyphimager -font Font.ttf -info
	glyphimager -font Font.ttf -out /tmp -i

Defaults for options may be kept in a NestedText configuration file
'glyphimager.nt' at the usual configuration locations, with keys

	imager:
	    size: 80x80
	    pointsize-percentage: 100
	    gravity: center
	    background: none
	    output-dir: /tmp/glyphs
	    convert: /usr/local/bin/convert
	    workers: 4
	fontconfig: /usr/bin/fc-list

Fonts given by a bare name are searched among the system fonts, and then
with fontconfig's 'fc-list'.

Command line flags override configuration values.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/knadh/koanf/providers/file"
	"github.com/npillmayer/schuko/schukonf/koanfadapter"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/logrusadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"github.com/xwmx/glyph-imager/backend/magick"
	"github.com/xwmx/glyph-imager/core"
	"github.com/xwmx/glyph-imager/core/locate/resources"
	"github.com/xwmx/glyph-imager/engine/imager"
)

// tracer traces with key 'glyphimager.imager'
func tracer() tracing.Trace {
	return tracing.Select("glyphimager.imager")
}

var traceKeys = []string{"glyphimager.fonts", "glyphimager.resources", "glyphimager.imager"}

// Exit codes
const (
	exitOK = iota
	exitUsage
	exitConfig
	exitFailed
)

func main() {
	os.Exit(run())
}

func run() int {
	initDisplay()
	// command line flags
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	logger := flag.String("log", "go", "Log adapter [go|logrus]")
	confFile := flag.String("config", "", "NestedText configuration file")
	fontname := flag.String("font", "", "Font to use: path, file:// URI, http(s) URL or system font name")
	outdir := flag.String("out", "", "Output directory for images")
	size := flag.String("size", "", "Canvas size WxH (default "+magick.DefaultSize+")")
	pct := flag.Int("pct", 0, "Point size as percentage of canvas height (default 100)")
	gravity := flag.String("gravity", "", "Gravity of label (default "+magick.DefaultGravity+")")
	background := flag.String("background", "", "Background color (default "+magick.DefaultBackground+")")
	convert := flag.String("convert", "", "ImageMagick convert binary (default "+magick.DefaultCommand+")")
	workers := flag.Int("workers", 0, "Number of concurrent rasterizer runs for catalogs")
	catalogRange := flag.String("catalog", "", "Image a range of code-points, e.g. 0020-007E")
	dryrun := flag.Bool("n", false, "Dry run: print commands instead of running them")
	info := flag.Bool("info", false, "Print font metadata")
	interactive := flag.Bool("i", false, "Interactive mode")
	flag.Parse()

	// set up configuration
	conf := koanfadapter.New(nil, "glyphimager", []string{"nt"})
	conf.InitDefaults()
	if *confFile != "" {
		if err := conf.Koanf().Load(file.Provider(*confFile), koanfadapter.Parser()); err != nil {
			pterm.Error.Printfln("cannot read configuration %s: %v", *confFile, err)
			return exitConfig
		}
	}
	flag.Visit(func(f *flag.Flag) { // explicitly set flags override configuration
		switch f.Name {
		case "size":
			conf.Set(imager.KeySize, *size)
		case "pct":
			conf.Set(imager.KeyPercentage, *pct)
		case "gravity":
			conf.Set(imager.KeyGravity, *gravity)
		case "background":
			conf.Set(imager.KeyBackground, *background)
		case "out":
			conf.Set(imager.KeyOutputDir, *outdir)
		case "convert":
			conf.Set(imager.KeyCommand, *convert)
		case "workers":
			conf.Set(imager.KeyWorkers, *workers)
		}
	})

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	tracing.RegisterTraceAdapter("logrus", logrusadapter.GetAdapter(), false)
	conf.Set("tracing.adapter", *logger)
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		core.UserError(core.WrapError(err, core.EINVALID, "error configuring tracing"))
		return exitConfig
	}
	tracing.SetTraceSelector(trace2go.Selector())
	level := tracing.TraceLevelFromString(*tlevel)
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
	tracer().Infof("Trace level is %s", level)

	if conf.IsSet("fontconfig") { // "" switches fontconfig lookups off
		resources.FontConfigBinary = conf.GetString("fontconfig")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	var runner magick.Runner = magick.ExecRunner{}
	if *dryrun {
		runner = magick.DryRunner{W: os.Stdout}
	}
	im := imager.NewFromConfig(conf, runner)
	app := &App{im: im, fontname: *fontname, workers: imager.WorkersFromConfig(conf)}

	var err error
	switch {
	case *interactive:
		err = app.Interactive(ctx)
	case *info:
		err = app.Info(ctx)
	case *catalogRange != "":
		err = app.Catalog(ctx, *catalogRange)
	case flag.NArg() > 0:
		err = app.Image(ctx, flag.Args())
	default:
		pterm.Error.Println("no code-points given")
		flag.Usage()
		return exitUsage
	}
	if err != nil {
		reportError(err)
		if core.Code(err) == core.EMISSING || core.Code(err) == core.EINVALID {
			return exitConfig
		}
		return exitFailed
	}
	return exitOK
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func reportError(err error) {
	var msg strings.Builder
	core.FprintUserError(&msg, err)
	var rerr *imager.RasterizationError
	if errors.As(err, &rerr) && len(rerr.Output) > 0 {
		msg.WriteString(strings.TrimSpace(string(rerr.Output)))
	}
	pterm.Error.Println(strings.TrimSpace(msg.String()))
}

// parseRange parses a code-point range "FROM-TO" or a single code-point.
func parseRange(s string) (from, to rune, err error) {
	lo, hi, found := strings.Cut(s, "-")
	if from, err = magick.ParseCodePoint(lo); err != nil {
		return
	}
	to = from
	if found {
		to, err = magick.ParseCodePoint(hi)
	}
	return
}

func hex(r rune) string {
	return fmt.Sprintf("%04X", r)
}
