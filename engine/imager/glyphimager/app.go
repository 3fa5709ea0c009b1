package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/xwmx/glyph-imager/backend/magick"
	"github.com/xwmx/glyph-imager/core"
	"github.com/xwmx/glyph-imager/core/font"
	"github.com/xwmx/glyph-imager/core/font/opentype/otquery"
	"github.com/xwmx/glyph-imager/core/locate/resources"
	"github.com/xwmx/glyph-imager/engine/imager"
)

// App is our application object
type App struct {
	im       *imager.Imager
	fontname string
	workers  int
	font     *font.Handle // loaded font in interactive mode
	repl     *readline.Instance
}

// Image images code-points given in hex digits. Rasterization errors of
// single code-points do not stop the run.
func (app *App) Image(ctx context.Context, codePoints []string) error {
	failed := 0
	for _, cp := range codePoints {
		if err := app.image(ctx, cp); err != nil {
			var rerr *imager.RasterizationError
			if !errors.As(err, &rerr) {
				return err
			}
			reportError(err)
			failed++
		}
	}
	if failed > 0 {
		return core.Error(core.EEXEC, "%d of %d code-points could not be rasterized", failed, len(codePoints))
	}
	return nil
}

func (app *App) image(ctx context.Context, cp string) error {
	job, err := app.im.ImageCharacterForFont(ctx, magick.Options{
		CodePoint: cp,
		FontPath:  app.fontname,
	})
	if err != nil {
		return err
	}
	if job == nil {
		pterm.Warning.Printfln("U+%s: no glyph in font", strings.ToUpper(cp))
		return nil
	}
	pterm.Success.Printfln("U+%s %s → %s", job.Hex, magick.Escape(job.CodePoint), job.OutputPath)
	return nil
}

// Info prints the metadata of the font.
func (app *App) Info(ctx context.Context) error {
	h, err := app.loadFont(ctx)
	if err != nil {
		return err
	}
	defer h.Close()
	printInfo(h)
	return nil
}

// printMetadata prints a single metadata entry of a font, e.g. "license".
func printMetadata(h *font.Handle, name string) error {
	key, ok := otquery.ParseMetadataKey(name)
	if !ok {
		names := make([]string, 0, len(otquery.MetadataKeys()))
		for _, k := range otquery.MetadataKeys() {
			names = append(names, k.String())
		}
		return core.Error(core.EINVALID, "unknown metadata key %q, use one of %s", name, strings.Join(names, " "))
	}
	v, ok := otquery.Metadata(h.OT, key)
	if !ok {
		pterm.Warning.Printfln("font %s has no %s", h.Name(), key)
		return nil
	}
	pterm.Info.Printfln("%s: %s", key, v)
	return nil
}

func printInfo(h *font.Handle) {
	pterm.Info.Printfln("%s (%s)", h.Name(), otquery.FontType(h.OT))
	data := pterm.TableData{{"Key", "Value"}}
	meta := h.Metadata()
	for _, key := range otquery.MetadataKeys() {
		if v, ok := meta[key]; ok {
			data = append(data, []string{key.String(), v})
		}
	}
	tags := make([]string, 0, len(h.OT.TableTags()))
	for _, tag := range h.OT.TableTags() {
		tags = append(tags, tag.String())
	}
	data = append(data, []string{"tables", strings.Join(tags, " ")})
	ranges := otquery.CodeRanges(h.OT)
	glyphs := 0
	for _, rng := range ranges {
		glyphs += int(rng.To-rng.From) + 1
	}
	data = append(data, []string{"coverage", fmt.Sprintf("%d ranges, up to %d code-points", len(ranges), glyphs)})
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// Catalog images a range of code-points "FROM-TO".
func (app *App) Catalog(ctx context.Context, rng string) error {
	from, to, err := parseRange(rng)
	if err != nil {
		return err
	}
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Imaging U+%s…U+%s", hex(from), hex(to)))
	catalog, err := app.im.Catalog(ctx, imager.CatalogOptions{
		Options: magick.Options{FontPath: app.fontname},
		From:    from,
		To:      to,
		Workers: app.workers,
	})
	if err != nil {
		if spinner != nil {
			spinner.Fail(core.UserMessage(err))
		}
		return err
	}
	if spinner != nil {
		spinner.Success(fmt.Sprintf("%s: %d code-points imaged, %d of %d requested code-points in cmap ranges",
			catalog.Font, catalog.Len(), catalog.Covered, to-from+1))
	}
	if catalog.Failed() == 0 {
		return nil
	}
	data := pterm.TableData{{"Code-point", "Output", "Error"}}
	for _, e := range catalog.Entries() {
		if e.Err != nil {
			data = append(data, []string{"U+" + hex(e.CodePoint), e.Job.OutputPath, core.UserMessage(e.Err)})
		}
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return core.Error(core.EEXEC, "%d code-points could not be rasterized", catalog.Failed())
}

// loadFont resolves the font asynchronously, as fetching a remote font may
// take a while, and parses it once it has arrived.
func (app *App) loadFont(ctx context.Context) (*font.Handle, error) {
	if app.fontname == "" {
		return nil, core.Error(core.EMISSING, "no font given, use flag -font")
	}
	promise := resources.Resolve(ctx, app.fontname)
	tracer().Debugf("resolving font %s", app.fontname)
	res, err := promise.Resource()
	if err != nil {
		return nil, &imager.FontLoadError{Locator: app.fontname, Err: err}
	}
	h, err := font.Open(res)
	if err != nil {
		return nil, &imager.FontLoadError{Locator: app.fontname, Err: err}
	}
	return h, nil
}
