/*
Package ottest provides builders for synthetic OpenType fonts, for use in tests.

The fonts created by this package contain only the tables given by the client,
usually 'cmap' and 'name'. They are structurally valid sfnt containers, but
carry no outlines.
*/
package ottest

import (
	"bytes"
	"encoding/binary"
	"sort"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Segment4 describes a segment of a cmap format 4 sub-table. If Glyphs is
// empty, the segment maps by Delta, otherwise through the glyph ID array, in
// which case Glyphs must contain End-Start+1 entries.
type Segment4 struct {
	Start, End uint16
	Delta      uint16
	Glyphs     []uint16
}

// Delta returns the idDelta which maps code-point start to glyph, modulo 65536.
func Delta(start, glyph uint16) uint16 {
	return glyph - start
}

// Group12 is a sequential map group of a cmap format 12 sub-table.
type Group12 struct {
	Start, End, StartGlyph uint32
}

// Encoding is an encoding record of a cmap table together with its sub-table.
// Records with identical sub-table bytes share a single sub-table.
type Encoding struct {
	PlatformID, EncodingID uint16
	Subtable               []byte
}

// Name is a record of a 'name' table. Values for platforms 0 and 3 are
// encoded as UTF-16BE, values for platform 1 as Mac OS Roman.
type Name struct {
	PlatformID, EncodingID, LanguageID, NameID uint16
	Value                                      string
}

func put16(w *bytes.Buffer, v uint16) {
	binary.Write(w, binary.BigEndian, v)
}

func put32(w *bytes.Buffer, v uint32) {
	binary.Write(w, binary.BigEndian, v)
}

// searchParams calculates searchRange, entrySelector and rangeShift for n
// entries of size unit.
func searchParams(n, unit int) (uint16, uint16, uint16) {
	p, sel := 1, 0
	for p*2 <= n {
		p *= 2
		sel++
	}
	return uint16(p * unit), uint16(sel), uint16(n*unit - p*unit)
}

// Format4 builds a cmap format 4 sub-table from segments in ascending order.
// The mandatory terminating segment for 0xFFFF is appended.
func Format4(segs ...Segment4) []byte {
	segs = append(append([]Segment4{}, segs...), Segment4{Start: 0xffff, End: 0xffff, Delta: 1})
	n := len(segs)
	var glyphs []uint16
	offsets := make([]uint16, n)
	for i, s := range segs {
		if len(s.Glyphs) > 0 {
			offsets[i] = uint16(2 * (n - i + len(glyphs)))
			glyphs = append(glyphs, s.Glyphs...)
		}
	}
	length := 14 + 8*n + 2 + 2*len(glyphs)
	w := &bytes.Buffer{}
	put16(w, 4)
	put16(w, uint16(length))
	put16(w, 0) // language
	sr, es, rs := searchParams(n, 2)
	put16(w, uint16(2*n))
	put16(w, sr)
	put16(w, es)
	put16(w, rs)
	for _, s := range segs {
		put16(w, s.End)
	}
	put16(w, 0) // reservedPad
	for _, s := range segs {
		put16(w, s.Start)
	}
	for _, s := range segs {
		put16(w, s.Delta)
	}
	for _, o := range offsets {
		put16(w, o)
	}
	for _, g := range glyphs {
		put16(w, g)
	}
	return w.Bytes()
}

// Format12 builds a cmap format 12 sub-table. Groups are written in the order
// given.
func Format12(groups ...Group12) []byte {
	w := &bytes.Buffer{}
	put16(w, 12)
	put16(w, 0) // reserved
	put32(w, uint32(16+12*len(groups)))
	put32(w, 0) // language
	put32(w, uint32(len(groups)))
	for _, g := range groups {
		put32(w, g.Start)
		put32(w, g.End)
		put32(w, g.StartGlyph)
	}
	return w.Bytes()
}

// CMap builds a cmap table from encoding records, in the order given.
func CMap(encs ...Encoding) []byte {
	w := &bytes.Buffer{}
	put16(w, 0) // version
	put16(w, uint16(len(encs)))
	var data bytes.Buffer
	start := 4 + 8*len(encs)
	shared := make(map[string]uint32)
	for _, e := range encs {
		put16(w, e.PlatformID)
		put16(w, e.EncodingID)
		off, ok := shared[string(e.Subtable)]
		if !ok {
			off = uint32(start + data.Len())
			shared[string(e.Subtable)] = off
			data.Write(e.Subtable)
		}
		put32(w, off)
	}
	w.Write(data.Bytes())
	return w.Bytes()
}

// NameTable builds a 'name' table (format 0) from name records, in the order
// given.
func NameTable(names ...Name) []byte {
	w := &bytes.Buffer{}
	put16(w, 0) // format
	put16(w, uint16(len(names)))
	put16(w, uint16(6+12*len(names)))
	var storage bytes.Buffer
	for _, n := range names {
		var enc []byte
		switch n.PlatformID {
		case 0, 3:
			enc, _ = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(n.Value))
		case 1:
			enc, _ = charmap.Macintosh.NewEncoder().Bytes([]byte(n.Value))
		default:
			enc = []byte(n.Value)
		}
		put16(w, n.PlatformID)
		put16(w, n.EncodingID)
		put16(w, n.LanguageID)
		put16(w, n.NameID)
		put16(w, uint16(len(enc)))
		put16(w, uint16(storage.Len()))
		storage.Write(enc)
	}
	w.Write(storage.Bytes())
	return w.Bytes()
}

// Font builds an sfnt container with TrueType flavour from a map of tables,
// keyed by their tag names.
func Font(tables map[string][]byte) []byte {
	return build(0x00010000, tables)
}

func build(flavour uint32, tables map[string][]byte) []byte {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, (tag + "    ")[:4])
	}
	sort.Strings(tags) // byte order, as required for table records
	n := len(tags)
	w := &bytes.Buffer{}
	put32(w, flavour)
	put16(w, uint16(n))
	sr, es, rs := searchParams(n, 16)
	put16(w, sr)
	put16(w, es)
	put16(w, rs)
	offset := 12 + 16*n
	var data bytes.Buffer
	for _, tag := range tags {
		t := tables[tag]
		if t == nil {
			t = tables[trimTag(tag)]
		}
		w.WriteString(tag)
		put32(w, checksum(t))
		put32(w, uint32(offset+data.Len()))
		put32(w, uint32(len(t)))
		data.Write(t)
		for data.Len()%4 != 0 {
			data.WriteByte(0)
		}
	}
	w.Write(data.Bytes())
	return w.Bytes()
}

func trimTag(tag string) string {
	for len(tag) > 0 && tag[len(tag)-1] == ' ' {
		tag = tag[:len(tag)-1]
	}
	return tag
}

func checksum(b []byte) uint32 {
	var sum uint32
	for i := 0; i < len(b); i += 4 {
		var word [4]byte
		copy(word[:], b[i:])
		sum += binary.BigEndian.Uint32(word[:])
	}
	return sum
}

// --- Prepared fonts --------------------------------------------------------

// Glyph IDs used by the prepared fonts.
const (
	GlyphExclam  = 3  // U+0021 in BMPFont
	GlyphControl = 99 // U+0007 and U+0085 in BMPFont, mapped on purpose
	GlyphLatin1  = 200
)

// Family is the family name of the prepared fonts.
const Family = "Glyph Test"

// BMPNames returns the name table used by the prepared fonts.
func BMPNames() []byte {
	return NameTable(
		Name{PlatformID: 1, EncodingID: 0, LanguageID: 0, NameID: 1, Value: Family},
		Name{PlatformID: 3, EncodingID: 1, LanguageID: 0x409, NameID: 0, Value: "© 2024 Glyph Imager Tests"},
		Name{PlatformID: 3, EncodingID: 1, LanguageID: 0x409, NameID: 1, Value: "Glyph Test Windows"},
		Name{PlatformID: 3, EncodingID: 1, LanguageID: 0x409, NameID: 2, Value: "Regular"},
		Name{PlatformID: 3, EncodingID: 1, LanguageID: 0x409, NameID: 5, Value: "Version 1.000"},
		Name{PlatformID: 3, EncodingID: 1, LanguageID: 0x409, NameID: 9, Value: "Ünïcödé Designer"},
	)
}

// BMPCMap returns a format 4 sub-table mapping
//
//	U+0007            → GlyphControl
//	U+0021 … U+007E   → 3 … 96 (by delta)
//	U+0085            → GlyphControl
//	U+00A0 … U+00A3   → GlyphLatin1 … (through the glyph ID array, U+00A2 unmapped)
func BMPCMap() []byte {
	return Format4(
		Segment4{Start: 0x0007, End: 0x0007, Delta: Delta(0x0007, GlyphControl)},
		Segment4{Start: 0x0021, End: 0x007e, Delta: Delta(0x0021, GlyphExclam)},
		Segment4{Start: 0x0085, End: 0x0085, Delta: Delta(0x0085, GlyphControl)},
		Segment4{Start: 0x00a0, End: 0x00a3, Glyphs: []uint16{GlyphLatin1, GlyphLatin1 + 1, 0, GlyphLatin1 + 3}},
	)
}

// BMPFont returns a font with a single format 4 cmap sub-table (see BMPCMap),
// referenced from both the Unicode and the Windows platform.
func BMPFont() []byte {
	sub := BMPCMap()
	return Font(map[string][]byte{
		"cmap": CMap(
			Encoding{PlatformID: 0, EncodingID: 3, Subtable: sub},
			Encoding{PlatformID: 3, EncodingID: 1, Subtable: sub},
		),
		"name": BMPNames(),
		"head": make([]byte, 54),
	})
}

// FullCMap returns a format 12 sub-table with groups
//
//	U+0020 … U+007E   → 1 …
//	U+1D000 … U+1D100 → 5 …
func FullCMap() []byte {
	return Format12(
		Group12{Start: 0x20, End: 0x7e, StartGlyph: 1},
		Group12{Start: 0x1d000, End: 0x1d100, StartGlyph: 5},
	)
}

// FullFont returns a font with a format 4 sub-table (see BMPCMap) and a format 12
// sub-table (see FullCMap).
func FullFont() []byte {
	return Font(map[string][]byte{
		"cmap": CMap(
			Encoding{PlatformID: 3, EncodingID: 1, Subtable: BMPCMap()},
			Encoding{PlatformID: 3, EncodingID: 10, Subtable: FullCMap()},
		),
		"name": BMPNames(),
	})
}
