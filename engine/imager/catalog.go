package imager

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/xwmx/glyph-imager/backend/magick"
	"github.com/xwmx/glyph-imager/core/font"
	"github.com/xwmx/glyph-imager/core/font/opentype/ot"
	"github.com/xwmx/glyph-imager/core/font/opentype/otquery"
	"golang.org/x/sync/errgroup"
)

// CatalogOptions configure the imaging of a range of code-points.
// Options.CodePoint is ignored.
type CatalogOptions struct {
	magick.Options
	From, To rune // inclusive range of code-points
	Workers  int  // concurrent rasterizer runs; DefaultWorkers if zero
}

// CatalogEntry is the outcome for a single code-point with a glyph.
type CatalogEntry struct {
	CodePoint rune
	Glyph     ot.GlyphIndex
	Job       *magick.Job
	Err       error // rasterization error, if any
}

// Catalog is the result of imaging a range of code-points of a font.
type Catalog struct {
	Font    string // human readable font name
	Covered int    // code-points of the requested range inside the cmap ranges
	entries *treemap.Map
}

func newCatalog() *Catalog {
	return &Catalog{entries: treemap.NewWith(utils.RuneComparator)}
}

// Len returns the number of code-points with a glyph.
func (c *Catalog) Len() int {
	return c.entries.Size()
}

// Entries returns all entries in ascending order of code-points.
func (c *Catalog) Entries() []CatalogEntry {
	entries := make([]CatalogEntry, 0, c.entries.Size())
	it := c.entries.Iterator()
	for it.Next() {
		entries = append(entries, it.Value().(CatalogEntry))
	}
	return entries
}

// Entry returns the entry for code-point r, if r has a glyph in the font.
func (c *Catalog) Entry(r rune) (CatalogEntry, bool) {
	e, found := c.entries.Get(r)
	if !found {
		return CatalogEntry{}, false
	}
	return e.(CatalogEntry), true
}

// Failed returns the number of entries which could not be rasterized.
func (c *Catalog) Failed() int {
	n := 0
	for _, e := range c.entries.Values() {
		if e.(CatalogEntry).Err != nil {
			n++
		}
	}
	return n
}

// Catalog images every code-point in [copts.From, copts.To] for which the
// font at copts.FontPath has a glyph. The font is loaded once and queried
// concurrently. Rasterization errors are recorded per entry and do not stop
// the run. Cancelling ctx does.
func (im *Imager) Catalog(ctx context.Context, copts CatalogOptions) (*Catalog, error) {
	opts := im.options(copts.Options)
	if strings.TrimSpace(opts.FontPath) == "" {
		return nil, missing(FieldFontPath)
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return nil, missing(FieldOutputDir)
	}
	if copts.From < 0 || copts.To > 0x10ffff || copts.From > copts.To {
		return nil, &ConfigurationError{
			Field:  FieldRange,
			Reason: fmt.Sprintf("invalid code-point range %04X…%04X", copts.From, copts.To),
		}
	}
	if err := validateGeometry(opts); err != nil {
		return nil, err
	}
	workers := copts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	h, err := font.Load(ctx, opts.FontPath)
	if err != nil {
		return nil, &FontLoadError{Locator: opts.FontPath, Err: err}
	}
	defer h.Close()
	//
	catalog := newCatalog()
	catalog.Font = h.Name()
	var mx sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, rng := range clip(otquery.CodeRanges(h.OT), copts.From, copts.To) {
		for r := rng.From; r <= rng.To; r++ {
			if gctx.Err() != nil {
				break
			}
			catalog.Covered++
			q := h.Glyph(r)
			if !q.Available {
				continue
			}
			o := opts
			o.CodePoint = fmt.Sprintf("%04X", r)
			g.Go(func() error {
				job, err := im.rasterize(gctx, h, o)
				mx.Lock()
				defer mx.Unlock()
				catalog.entries.Put(q.CodePoint, CatalogEntry{
					CodePoint: q.CodePoint,
					Glyph:     q.Glyph,
					Job:       job,
					Err:       err,
				})
				return nil
			})
		}
	}
	g.Wait()
	tracer().Infof("catalog of %s: %d glyphs, %d failed", catalog.Font, catalog.Len(), catalog.Failed())
	if err := ctx.Err(); err != nil {
		return catalog, err
	}
	return catalog, nil
}

// clip intersects code ranges with [from, to].
func clip(ranges []ot.CodeRange, from, to rune) []ot.CodeRange {
	var clipped []ot.CodeRange
	for _, rng := range ranges {
		if rng.To < from || rng.From > to {
			continue
		}
		if rng.From < from {
			rng.From = from
		}
		if rng.To > to {
			rng.To = to
		}
		clipped = append(clipped, rng)
	}
	return clipped
}
