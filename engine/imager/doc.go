/*
Package imager decides whether a font has a glyph for a code-point and, if so,
has it rasterized into a label image.

ImageCharacterForFont is the main entry point. It validates options, loads
the font, filters control characters, consults the font's cmap and finally
creates and runs a rasterization job:

	job, err := imager.ImageCharacterForFont(ctx, magick.Options{
	    CodePoint: "0021",
	    FontPath:  "/path/to/font.ttf",
	    OutputDir: "/tmp",
	})

A code-point without glyph is not an error: job and err are both nil.

Catalog images a range of code-points for a single font, using a pool of
workers.
*/
package imager

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'glyphimager.imager'.
func tracer() tracing.Trace {
	return tracing.Select("glyphimager.imager")
}
