package ot

/*
We replicate some of the code of the Go core team here, available from
https://github.com/golang/image/tree/master/font/sfnt.
I understand it's legal to do so, as long as the license information stays intact.

   Copyright 2017 The Go Authors. All rights reserved.
   Use of this source code is governed by a BSD-style
   license that can be found in the LICENSE file.
*/

import (
	"sort"
)

// CMapTable represents an OpenType cmap table, i.e. the table to receive glyphs
// from code-points.
//
// See https://docs.microsoft.com/de-de/typography/opentype/spec/cmap
//
// Consulting the cmap table is a very frequent operation on fonts. We therefore
// construct an internal representation of the lookup tables once, and select the
// most appropriate one as GlyphIndexMap.
type CMapTable struct {
	tableBase
	Subtables     []CMapSubtable // Unicode sub-tables in formats 4 and 12
	GlyphIndexMap CMapGlyphIndex // the selected lookup, never nil
}

// CMapSubtable is a Unicode sub-table of a cmap, together with the encoding
// record pointing to it.
type CMapSubtable struct {
	PlatformID uint16
	EncodingID uint16
	Format     uint16
	Index      CMapGlyphIndex
}

func newCMapTable(tag Tag, b binarySegm, offset, size uint32) *CMapTable {
	t := &CMapTable{}
	base := tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.tableBase = base
	t.self = t
	t.GlyphIndexMap = nullGlyphIndex{}
	return t
}

// Lookup returns the glyph for code-point r, using the selected sub-table.
// A return value of 0 means that r is not mapped.
func (t *CMapTable) Lookup(r rune) GlyphIndex {
	return t.GlyphIndexMap.Lookup(r)
}

// ParseCMap builds the lookup structures for the Unicode sub-tables of the
// cmap table in b. It never fails: unusable sub-tables are skipped or will not
// map any code-point, and a cmap without any usable sub-table maps nothing.
func ParseCMap(b []byte) *CMapTable {
	return parseCMap(T("cmap"), b, 0, uint32(len(b)))
}

func parseCMap(tag Tag, b binarySegm, offset, size uint32) *CMapTable {
	t := newCMapTable(tag, b, offset, size)
	n, err := b.u16(2) // number of sub-tables
	if err != nil {
		tracer().Errorf("cmap table header truncated")
		return t
	}
	tracer().Debugf("font cmap has %d sub-tables in %d|%d bytes", n, len(b), size)
	const headerSize, entrySize = 4, 8
	built := make(map[uint32]CMapGlyphIndex) // sub-tables are often shared between platforms
	for i := 0; i < int(n); i++ {
		rec, err := b.view(headerSize+entrySize*i, entrySize)
		if err != nil {
			tracer().Errorf("cmap encoding records truncated at record %d", i)
			break
		}
		pid, psid := u16(rec), u16(rec[2:])
		if !isUnicodeEncoding(pid, psid) {
			continue
		}
		subOffset := u32(rec[4:])
		format, err := b.u16(int(subOffset))
		if err != nil || subOffset >= uint32(len(b)) {
			tracer().Infof("cmap sub-table for (%d|%d) out of bounds", pid, psid)
			continue
		}
		if format != 4 && format != 12 {
			tracer().Debugf("cmap sub-table format %d for (%d|%d) not supported", format, pid, psid)
			continue
		}
		index, ok := built[subOffset]
		if !ok {
			index = makeGlyphIndex(b[subOffset:], format)
			built[subOffset] = index
		}
		t.Subtables = append(t.Subtables, CMapSubtable{
			PlatformID: pid,
			EncodingID: psid,
			Format:     format,
			Index:      index,
		})
	}
	t.GlyphIndexMap = selectGlyphIndex(t.Subtables)
	return t
}

// isUnicodeEncoding is a predicate for platform/encoding combinations which
// map Unicode code-points:
//
//	0 (Unicode)  any encoding
//	3 (Win)      1    Unicode BMP
//	3 (Win)      10   Unicode full
func isUnicodeEncoding(pid, psid uint16) bool {
	return pid == 0 || (pid == 3 && (psid == 1 || psid == 10))
}

// selectGlyphIndex selects the first format 12 sub-table, if present, otherwise
// the first format 4 sub-table. This has to stay deterministic, as catalogs
// of fonts with both formats would change otherwise.
func selectGlyphIndex(subtables []CMapSubtable) CMapGlyphIndex {
	for _, format := range []uint16{12, 4} {
		for _, sub := range subtables {
			if sub.Format == format {
				tracer().Debugf("selecting cmap sub-table (%d|%d) format %d",
					sub.PlatformID, sub.EncodingID, sub.Format)
				return sub.Index
			}
		}
	}
	tracer().Infof("font has no supported Unicode cmap sub-table")
	return nullGlyphIndex{}
}

// Dispatcher to create the correct implementation of a CMapGlyphIndex from a given format.
func makeGlyphIndex(b binarySegm, format uint16) CMapGlyphIndex {
	var index CMapGlyphIndex
	var err error
	switch format {
	case 4:
		index, err = makeGlyphIndexFormat4(b)
	case 12:
		index, err = makeGlyphIndexFormat12(b)
	}
	if err != nil || index == nil {
		tracer().Errorf("cmap sub-table format %d unusable: %v", format, err)
		return nullGlyphIndex{}
	}
	return index
}

// CMapGlyphIndex represents a CMap table index to receive a glyph index from
// a code-point.
type CMapGlyphIndex interface {
	Lookup(rune) GlyphIndex        // central activiy of CMap
	ReverseLookup(GlyphIndex) rune // this is non-standard, but helps with tests
	CodeRanges() []CodeRange       // code-point ranges which may be mapped
}

// CodeRange is an inclusive range of code-points covered by a segment or group
// of a cmap sub-table. Not every code-point of a range is necessarily mapped.
type CodeRange struct {
	From, To rune
}

// nullGlyphIndex maps nothing. It stands in for missing or defective sub-tables.
type nullGlyphIndex struct{}

func (nullGlyphIndex) Lookup(rune) GlyphIndex        { return 0 }
func (nullGlyphIndex) ReverseLookup(GlyphIndex) rune { return 0 }
func (nullGlyphIndex) CodeRanges() []CodeRange       { return nil }

// --- Format 4 --------------------------------------------------------------

// Format 4: Segment mapping to delta values
// This is the standard character-to-glyph-index mapping subtable for fonts that support
// only Unicode Basic Multilingual Plane characters (U+0000 to U+FFFF).
//
// This format is used when the character codes for the characters represented by a font
// fall into several contiguous ranges, possibly with holes in some or all of the ranges
// (that is, some of the codes in a range may not have a representation in the font).
type format4GlyphIndex struct {
	entries  []cmapEntry16
	glyphIds []uint16
	sorted   bool // segments ascending and disjoint, i.e. binary search is possible
}

// Format 4 holds four parallel arrays to describe the segments (one segment for
// each contiguous range of codes).
// see https://docs.microsoft.com/en-us/typography/opentype/spec/cmap#format-4-segment-mapping-to-delta-values
type cmapEntry16 struct {
	end, start, delta, offset uint16
}

func (f4 format4GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 || r > 0xffff { // format 4 is for BMP code-points only
		return 0 // return index for 'missing character'
	}
	c := uint16(r)
	if !f4.sorted {
		for h := range f4.entries {
			if e := &f4.entries[h]; e.start <= c && c <= e.end {
				return f4.glyph(h, c)
			}
		}
		return 0
	}
	for i, j := 0, len(f4.entries); i < j; {
		h := i + (j-i)/2 // do a binary search on f4.entries (which may get large)
		entry := &f4.entries[h]
		if c < entry.start {
			j = h
		} else if entry.end < c {
			i = h + 1
		} else {
			return f4.glyph(h, c)
		}
	}
	return 0
}

// glyph calculates the glyph for code-point c within segment h.
func (f4 format4GlyphIndex) glyph(h int, c uint16) GlyphIndex {
	entry := &f4.entries[h]
	if entry.offset == 0 {
		return GlyphIndex(c + entry.delta) // modulo 65536
	}
	// The spec describes the calculation the find the link into the glyph ID array
	// as follows:
	// “The character code offset from startCode is added to the idRangeOffset value.
	//  This sum is used as an offset from the current location within idRangeOffset
	//  itself to index out the correct glyphIdArray value.”
	// We already sliced the cmap into sub-segments, so we have to reverse the
	// pre-calculation of the offset: it skips the remaining (N-h) entries of the
	// idRangeOffset array to arrive at the start of the glyph ID array.
	index := int(entry.offset)/2 + int(c-entry.start) - (len(f4.entries) - h)
	if index < 0 || index >= len(f4.glyphIds) {
		return 0
	}
	glyphInx := f4.glyphIds[index]
	if glyphInx > 0 {
		// If the value obtained from the indexing operation is not 0 (which indicates
		// missingGlyph), idDelta[i] is added to it to get the glyph index
		glyphInx += entry.delta
	}
	return GlyphIndex(glyphInx)
}

// ReverseLookup retrieves a code-point for a given glyph. The Cmap tables do not
// support this operation, thus this operation is inefficient.
// However, for testing and debugging purposes it is often useful.
func (f4 format4GlyphIndex) ReverseLookup(gid GlyphIndex) rune {
	if gid == 0 {
		return 0
	}
	for _, entry := range f4.entries {
		if entry.end < entry.start || entry.start == 0xffff {
			continue
		}
		for c := uint32(entry.start); c <= uint32(entry.end); c++ {
			if f4.Lookup(rune(c)) == gid {
				return rune(c)
			}
		}
	}
	return 0
}

// CodeRanges returns the segments of the sub-table, leaving out the mandatory
// terminating segment for 0xFFFF.
func (f4 format4GlyphIndex) CodeRanges() []CodeRange {
	ranges := make([]CodeRange, 0, len(f4.entries))
	for _, entry := range f4.entries {
		if entry.end < entry.start || entry.start == 0xffff {
			continue
		}
		ranges = append(ranges, CodeRange{From: rune(entry.start), To: rune(entry.end)})
	}
	return ranges
}

// The format's data is divided into three parts, which must occur in the following order:
//
// - A four-word header gives parameters for an optimized search of the segment list;
// - Four parallel arrays describe the segments (one segment for each contiguous range of codes);
// - A variable-length array of glyph IDs (unsigned words).
func makeGlyphIndexFormat4(b binarySegm) (CMapGlyphIndex, error) {
	const headerSize = 14
	if headerSize > b.Size() {
		return nil, errFontFormat("cmap subtable bounds overflow")
	}
	size := int(b.U16(2))
	if size > b.Size() || size < headerSize {
		tracer().Infof("cmap format 4 length %d does not match data, using %d", size, b.Size())
		size = b.Size()
	}
	segCount := b.U16(6)
	if segCount == 0 || segCount&1 != 0 {
		tracer().Debugf("cmap format 4 segment count is %d", segCount)
		return nil, errFontFormat("cmap table format, illegal segment count")
	}
	segCount /= 2
	eLength := 8*int(segCount) + 2 // 2 is a padding entry in the cmap table
	if headerSize+eLength > size {
		return nil, errFontFormat("cmap internal structure")
	}
	b = b[headerSize:size]
	n := int(segCount) * 2
	endCodes := viewArray(b[:n], 2).u16s()
	next := n + 2
	startCodes := viewArray(b[next:next+n], 2).u16s()
	next += n
	deltas := viewArray(b[next:next+n], 2).u16s()
	next += n
	offsets := viewArray(b[next:next+n], 2).u16s()
	next += n
	entries := make([]cmapEntry16, segCount)
	sorted := true
	for i := range entries {
		entries[i] = cmapEntry16{
			end:    endCodes[i],
			start:  startCodes[i],
			delta:  deltas[i],
			offset: offsets[i],
		}
		if entries[i].end < entries[i].start ||
			(i > 0 && entries[i].start <= entries[i-1].end) {
			sorted = false
		}
	}
	if !sorted {
		tracer().Infof("cmap format 4 segments are not ascending, will use linear search")
	}
	glyphTable := viewArray(b[next:], 2).u16s()
	tracer().Debugf("cmap format 4 glyph table starts at offset %d", next)
	return format4GlyphIndex{
		entries:  entries,
		glyphIds: glyphTable,
		sorted:   sorted,
	}, nil
}

// --- Format 12 -------------------------------------------------------------

type cmapEntry32 struct {
	start, end, delta uint32
}

// Each sequential map group record specifies a character range and the starting glyph ID
// mapped from the first character. Glyph IDs for subsequent characters follow in sequence.
type format12GlyphIndex struct {
	entries  []cmapEntry32 // ordered by start
	disjoint bool          // groups do not overlap, i.e. binary search is possible
}

func (f12 format12GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 {
		return 0
	}
	c := uint32(r)
	if !f12.disjoint {
		for h := range f12.entries { // first match in ascending start order
			if e := &f12.entries[h]; e.start <= c && c <= e.end {
				return glyph32(e, c)
			}
		}
		return 0
	}
	for i, j := 0, len(f12.entries); i < j; {
		h := i + (j-i)/2 // do a binary search on f12.entries (which may get large)
		entry := &f12.entries[h]
		if c < entry.start {
			j = h
		} else if entry.end < c {
			i = h + 1
		} else {
			return glyph32(entry, c)
		}
	}
	return 0
}

// glyph32 calculates the glyph for c in group e. Glyph IDs beyond 16 bits
// cannot address a glyph and are treated as unmapped.
func glyph32(e *cmapEntry32, c uint32) GlyphIndex {
	g := uint64(e.delta) + uint64(c-e.start)
	if g > 0xffff {
		return 0
	}
	return GlyphIndex(g)
}

// ReverseLookup retrieves a code-point for a given glyph. The Cmap tables do not
// support this operation, thus this operation is inefficient.
// However, for testing and debugging purposes it is often useful.
func (f12 format12GlyphIndex) ReverseLookup(gid GlyphIndex) rune {
	if gid == 0 {
		return 0
	}
	cid := uint32(gid)
	for _, entry := range f12.entries {
		if cid < entry.delta || cid-entry.delta > entry.end-entry.start {
			continue
		}
		if c := entry.start + (cid - entry.delta); f12.Lookup(rune(c)) == gid {
			return rune(c)
		}
	}
	return 0
}

// CodeRanges returns the groups of the sub-table.
func (f12 format12GlyphIndex) CodeRanges() []CodeRange {
	ranges := make([]CodeRange, len(f12.entries))
	for i, entry := range f12.entries {
		ranges[i] = CodeRange{From: rune(entry.start), To: rune(entry.end)}
	}
	return ranges
}

// This is the standard character-to-glyph-index mapping subtable for fonts supporting
// Unicode character repertoires that include supplementary-plane characters (U+10000 to
// U+10FFFF).
//
// Format 12 is similar to format 4 in that it defines segments for sparse representation.
// It differs, however, in that it uses 32-bit character codes, and Glyph ID lookup
// and calculation is a lot simpler.
func makeGlyphIndexFormat12(b binarySegm) (CMapGlyphIndex, error) {
	const headerSize = 16
	if headerSize > b.Size() {
		return nil, errFontFormat("cmap subtable bounds overflow")
	}
	size := int64(b.U32(4))
	if size > int64(b.Size()) || size < headerSize {
		tracer().Infof("cmap format 12 length %d does not match data, using %d", size, b.Size())
		size = int64(b.Size())
	}
	grpCount := int64(b.U32(12))
	if headerSize+12*grpCount > size {
		return nil, errFontFormat("cmap internal structure")
	}
	// SequentialMapGroup Record:
	// Type     Name            Description
	// uint32   startCharCode   First character code in this group
	// uint32   endCharCode     Last character code in this group
	// uint32   startGlyphID    Glyph index corresponding to the starting character code
	groups := viewArray(b[headerSize:headerSize+int(12*grpCount)], 12) // 12 is byte size of group-record
	entries := make([]cmapEntry32, 0, grpCount)
	for i := 0; i < groups.Len(); i++ {
		g := groups.Get(i)
		entry := cmapEntry32{
			start: u32(g),
			end:   u32(g[4:]),
			delta: u32(g[8:]),
		}
		if entry.end < entry.start {
			tracer().Debugf("cmap format 12 group %d is empty", i)
			continue
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].start < entries[j].start
	})
	disjoint := true
	for i := 1; i < len(entries); i++ {
		if entries[i].start <= entries[i-1].end {
			disjoint = false
			tracer().Infof("cmap format 12 groups overlap, will use linear search")
			break
		}
	}
	return format12GlyphIndex{
		entries:  entries,
		disjoint: disjoint,
	}, nil
}
