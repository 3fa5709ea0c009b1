/*
Package otquery queries coverage and naming information from OpenType fonts.

Package otquery knows which tables of a font to consult for a question, and
which code-points never qualify as rendering targets. Clients of this package
will, amongst others, be catalog generators, which probe many code-points
against a single font.

All functions of this package are read-only with respect to the font and may
be called concurrently.
*/
package otquery

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'glyphimager.fonts'
func tracer() tracing.Trace {
	return tracing.Select("glyphimager.fonts")
}
