package main

import (
	"context"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/xwmx/glyph-imager/backend/magick"
	"github.com/xwmx/glyph-imager/core"
)

// Interactive starts interactive mode.
func (app *App) Interactive(ctx context.Context) error {
	pterm.Info.Println("Welcome to Glyph Imager") // colored welcome message
	repl, err := readline.New("glyph > ")
	if err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot start interactive mode")
	}
	app.repl = repl
	defer repl.Close()
	if app.fontname != "" {
		if err := app.switchFont(ctx, app.fontname); err != nil {
			return err
		}
	}
	defer func() { app.font.Close() }()
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	app.REPL(ctx)
	return nil
}

// REPL reads and executes commands until EOF, 'quit' or cancellation.
func (app *App) REPL(ctx context.Context) {
	for ctx.Err() == nil {
		line, err := app.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if quit := app.execute(ctx, line); quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

func (app *App) execute(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	tracer().Debugf("command %q %v", cmd, args)
	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		help()
	case "font":
		if len(args) != 1 {
			pterm.Error.Println("usage: font <path|URL|name>")
			break
		}
		if err := app.switchFont(ctx, args[0]); err != nil {
			reportError(err)
		}
	case "info":
		if app.font == nil {
			pterm.Error.Println("no font loaded")
			break
		}
		if len(args) == 0 {
			printInfo(app.font)
			break
		}
		for _, key := range args {
			if err := printMetadata(app.font, key); err != nil {
				reportError(err)
			}
		}
	case "query", "q":
		app.query(args)
	case "image", "i":
		if err := app.Image(ctx, args); err != nil {
			reportError(err)
		}
	case "range", "catalog":
		if len(args) != 1 {
			pterm.Error.Println("usage: range FROM-TO")
			break
		}
		if err := app.Catalog(ctx, args[0]); err != nil {
			reportError(err)
		}
	default: // code-points only
		app.query(fields)
	}
	return false
}

func (app *App) switchFont(ctx context.Context, locator string) error {
	prev, prevName := app.font, app.fontname
	app.fontname = locator
	h, err := app.loadFont(ctx)
	if err != nil {
		app.fontname = prevName
		return err
	}
	prev.Close()
	app.font = h
	pterm.Info.Printfln("font %s loaded", h.Name())
	return nil
}

func (app *App) query(codePoints []string) {
	if app.font == nil {
		pterm.Error.Println("no font loaded")
		return
	}
	for _, s := range codePoints {
		cp, err := magick.ParseCodePoint(s)
		if err != nil {
			reportError(err)
			continue
		}
		q := app.font.Glyph(cp)
		if q.Available {
			pterm.Success.Printfln("U+%s %s has glyph %d", hex(cp), magick.Escape(cp), q.Glyph)
		} else {
			pterm.Warning.Printfln("U+%s has no glyph", hex(cp))
		}
	}
}

func help() {
	pterm.Info.Println("Commands")
	pterm.Println(`
	<hex> …            check code-points for glyphs, e.g. 0021 1D11E
	query <hex> …      same as above
	image <hex> …      rasterize code-points to the output directory
	range FROM-TO      rasterize all glyphs in a range of code-points
	font <locator>     load another font (path, file:// URI, URL, system font)
	info [<key> …]     print font metadata, or single entries, e.g. info license
	quit               leave interactive mode
	`)
}
