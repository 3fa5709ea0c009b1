/*
Package magick prepares and runs ImageMagick invocations which rasterize a
single glyph into a label image.

A Job holds everything needed to rasterize one code-point: font file,
canvas geometry, point size, label text and output path. Jobs are executed by
a Runner. ExecRunner spawns the rasterizer binary directly with an argument
vector, no shell is involved. The legacy single-line command form is still
available through Job.CommandLine, for display and dry runs.
*/
package magick

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'glyphimager.imager'.
func tracer() tracing.Trace {
	return tracing.Select("glyphimager.imager")
}
