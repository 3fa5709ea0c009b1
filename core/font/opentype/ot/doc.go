/*
Package ot provides access to the tables of OpenType and TrueType fonts
which are needed to decide glyph coverage: the table directory, the
character-to-glyph mapping ('cmap') and the naming table ('name').

Package ot does not interpret outlines, metrics or layout tables. Tables other
than 'cmap' and 'name' are kept as raw byte segments and are available to
clients through Font.Table.

An ot.Font keeps the font's binary data in memory and hands out views onto it,
instead of copying tables into separate buffers. Clients should treat every
byte slice they receive from this package as read-only.

# Character Maps

A cmap table may contain several sub-tables for different platforms and
encodings. Package ot builds lookup structures for every Unicode sub-table in
format 4 (BMP only) or format 12 (full Unicode range) once, during Parse, and
selects one of them: format 12 is preferred over format 4. Lookups are
therefore cheap and safe to be performed concurrently.

Fonts in the wild contain all kinds of bugs. A malformed or degenerate cmap
sub-table will not make Parse fail; it just will not map any code-point.

Code comments often cite passages from the OpenType specification version
1.8.4; see https://docs.microsoft.com/en-us/typography/opentype/spec/.
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/xwmx/glyph-imager/core"
)

// tracer writes to trace with key 'glyphimager.fonts'
func tracer() tracing.Trace {
	return tracing.Select("glyphimager.fonts")
}

// errFontFormat produces user level errors for font parsing.
func errFontFormat(x string) error {
	return core.Error(core.EINVALID, "OpenType font format: %s", x)
}
