/*
Package resources makes font resources available as local files.

A font is referenced by a locator, which may be

   /path/to/font.ttf             a local file
   file:///path/to/my%20font.ttf a file URI, percent-escapes are resolved
   https://host/font.otf         a remote file, fetched to a temporary file
   DejaVuSans.ttf                a bare file name, searched among system fonts
   DejaVu Sans                   a family name, searched with fontconfig

Materialize returns a Resource, which has to be released after use. Releasing
removes temporary files created for remote fonts. As fetching may be a
time-consuming task, Resolve will work in an async/await fashion by returning
a promise, which the client will call later to receive the resource.
*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'glyphimager.resources'.
func tracer() tracing.Trace {
	return tracing.Select("glyphimager.resources")
}
