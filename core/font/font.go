/*
Package font loads fonts for glyph imaging.

A font is referenced by a locator (see package resources), loaded into memory
and parsed into an OpenType font structure. The font file stays available on
the local file system until the handle is closed, as external rasterizers
need to read it by path.

BSD License

Copyright (c) 2017-21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE. */
package font

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"github.com/xwmx/glyph-imager/core"
	"github.com/xwmx/glyph-imager/core/font/opentype/ot"
	"github.com/xwmx/glyph-imager/core/font/opentype/otquery"
	"github.com/xwmx/glyph-imager/core/locate/resources"
)

// tracer writes to trace with key 'glyphimager.fonts'
func tracer() tracing.Trace {
	return tracing.Select("glyphimager.fonts")
}

// Handle is a loaded font. It is safe for concurrent queries.
type Handle struct {
	Locator string   // locator the font has been loaded from
	Path    string   // local file path, valid until Close
	OT      *ot.Font // parsed OpenType font
	res     *resources.Resource
	closing sync.Once
	err     error
}

// Load materializes and parses the font referenced by locator. Clients must
// call Close on the returned handle. If loading fails, every temporary file
// has already been removed.
func Load(ctx context.Context, locator string) (*Handle, error) {
	res, err := resources.Materialize(ctx, locator)
	if err != nil {
		return nil, err
	}
	return Open(res)
}

// Open parses the font of a materialized resource, e.g. one received from a
// resources.ResourcePromise. The handle takes ownership of res; if parsing
// fails, res is released.
func Open(res *resources.Resource) (*Handle, error) {
	if res == nil {
		return nil, core.Error(core.EINTERNAL, "no font resource to open")
	}
	h, err := load(res)
	if err != nil {
		res.Release()
		return nil, err
	}
	return h, nil
}

func load(res *resources.Resource) (*Handle, error) {
	bytez, err := os.ReadFile(res.Path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font file %s", res.Path)
	}
	otf, err := ot.Parse(bytez)
	if err != nil {
		return nil, core.WrapError(err, core.Code(err), "cannot load font %s: %s",
			res.Locator, core.UserMessage(err))
	}
	tracer().Infof("loaded font %s (%s, %d tables)", res.Locator, otquery.FontType(otf),
		len(otf.TableTags()))
	return &Handle{
		Locator: res.Locator,
		Path:    res.Path,
		OT:      otf,
		res:     res,
	}, nil
}

// Close releases the font's resources. It is safe to call Close more than once.
func (h *Handle) Close() error {
	if h == nil {
		return nil
	}
	h.closing.Do(func() {
		h.err = h.res.Release()
	})
	return h.err
}

// Table returns the raw bytes of the table with the given tag, e.g. "cmap",
// or nil if the font does not contain such a table.
func (h *Handle) Table(tag string) []byte {
	if h == nil || h.OT == nil {
		return nil
	}
	t := h.OT.Table(ot.T(tag))
	if t == nil {
		return nil
	}
	return t.Binary()
}

// Glyph checks if the font has a glyph for code-point r.
func (h *Handle) Glyph(r rune) otquery.GlyphQuery {
	return otquery.QueryGlyph(h.OT, r)
}

// Metadata returns all metadata fields available from the font's 'name' table.
func (h *Handle) Metadata() map[otquery.MetadataKey]string {
	return otquery.NameInfo(h.OT)
}

// Name returns a human readable name for the font. It is the full font name,
// if present, or the font family, or the file name as a last resort.
func (h *Handle) Name() string {
	for _, key := range []otquery.MetadataKey{otquery.FontName, otquery.FontFamily} {
		if s, ok := otquery.Metadata(h.OT, key); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return filepath.Base(h.Locator)
}
