package otquery

import (
	"sort"

	"github.com/xwmx/glyph-imager/core/font/opentype/ot"
)

// Control code-points: the C0 controls, DEL and the C1 controls.
const (
	c0First rune = 0x00
	c0Last  rune = 0x1f
	del     rune = 0x7f
	c1First rune = 0x80
	c1Last  rune = 0x9f
)

// IsControl is a predicate for control code-points. Control code-points are
// never considered renderable, whatever a font's cmap says about them.
func IsControl(r rune) bool {
	switch {
	case c0First <= r && r <= c0Last:
		return true
	case r == del:
		return true
	case c1First <= r && r <= c1Last:
		return true
	}
	return false
}

func controlRanges() []ot.CodeRange {
	return []ot.CodeRange{
		{From: c0First, To: c0Last},
		{From: del, To: del},
		{From: c1First, To: c1Last},
	}
}

// GlyphQuery is the result of asking a font for a code-point.
type GlyphQuery struct {
	CodePoint rune
	Available bool
	Glyph     ot.GlyphIndex // 0 if not available
}

// QueryGlyph checks if otf has a glyph for code-point r. Control code-points
// are filtered out before the cmap is consulted.
func QueryGlyph(otf *ot.Font, r rune) GlyphQuery {
	q := GlyphQuery{CodePoint: r}
	if IsControl(r) {
		tracer().Debugf("code-point %#04x is a control character", r)
		return q
	}
	if otf == nil || otf.CMap == nil {
		return q
	}
	if g := otf.CMap.Lookup(r); g != 0 {
		q.Available, q.Glyph = true, g
	}
	return q
}

// HasGlyph is a shortcut for QueryGlyph(otf, r).Available.
func HasGlyph(otf *ot.Font, r rune) bool {
	return QueryGlyph(otf, r).Available
}

// CodeRanges returns the code-point ranges covered by the cmap sub-table
// selected for otf, with control code-points cut out. Ranges are sorted and
// disjoint, even if the sub-table contains overlapping or unordered entries.
func CodeRanges(otf *ot.Font) []ot.CodeRange {
	if otf == nil || otf.CMap == nil {
		return nil
	}
	var ranges []ot.CodeRange
	for _, rng := range merge(otf.CMap.GlyphIndexMap.CodeRanges()) {
		ranges = append(ranges, withoutControls(rng)...)
	}
	return ranges
}

// merge sorts code ranges and joins overlapping or adjacent ones.
func merge(ranges []ot.CodeRange) []ot.CodeRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]ot.CodeRange, 0, len(ranges))
	for _, rng := range ranges {
		if rng.From <= rng.To {
			sorted = append(sorted, rng)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From < sorted[j].From })
	var merged []ot.CodeRange
	for _, rng := range sorted {
		if n := len(merged); n > 0 && rng.From <= merged[n-1].To+1 {
			if rng.To > merged[n-1].To {
				merged[n-1].To = rng.To
			}
			continue
		}
		merged = append(merged, rng)
	}
	return merged
}

func withoutControls(rng ot.CodeRange) []ot.CodeRange {
	ranges := []ot.CodeRange{rng}
	for _, c := range controlRanges() {
		var rest []ot.CodeRange
		for _, r := range ranges {
			if c.To < r.From || r.To < c.From {
				rest = append(rest, r)
				continue
			}
			if r.From < c.From {
				rest = append(rest, ot.CodeRange{From: r.From, To: c.From - 1})
			}
			if c.To < r.To {
				rest = append(rest, ot.CodeRange{From: c.To + 1, To: r.To})
			}
		}
		ranges = rest
	}
	return ranges
}
