package ot

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Code comment often will cite passage from the
// OpenType specification version 1.8.4;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// ---------------------------------------------------------------------------

// Parse parses an OpenType font from a byte slice.
// An ot.Font needs ongoing access to the fonts byte-data after the Parse function returns.
// Its elements are assumed immutable while the ot.Font remains in use.
//
// Parse fails for truncated or structurally invalid table directories and for
// fonts without a 'cmap' table. Defects within the 'cmap' and 'name' tables
// are tolerated and leave the respective entries unmapped.
func Parse(font []byte) (*Font, error) {
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	if len(font) < 12 {
		return nil, errFontFormat("font header truncated")
	}
	r := bytes.NewReader(font)
	h := FontHeader{}
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, errFontFormat("font header truncated")
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())
	if !(h.FontType == 0x4f54544f || // OTTO
		h.FontType == 0x00010000 || // TrueType
		h.FontType == 0x74727565) { // true
		return nil, errFontFormat(fmt.Sprintf("font type not supported: %x", h.FontType))
	}
	if h.TableCount == 0 {
		return nil, errFontFormat("font contains no tables")
	}
	otf := &Font{Header: &h, tables: make(map[Tag]Table), binary: font}
	src := binarySegm(font)
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	buf, err := src.view(12, 16*int(h.TableCount))
	if err != nil {
		return nil, errFontFormat("table record entries truncated")
	}
	for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		if tag < prevTag {
			return nil, errFontFormat("table order")
		}
		prevTag = tag
		off, size := u32(b[8:12]), u32(b[12:16])
		if off&3 != 0 { // ignore checksums, but "all tables must begin on four byte boundries".
			return nil, errFontFormat(fmt.Sprintf("invalid offset for table %s", tag))
		}
		if uint64(off)+uint64(size) > uint64(len(font)) {
			return nil, errFontFormat(fmt.Sprintf("table %s extends past end of data", tag))
		}
		otf.tables[tag] = parseTable(tag, src[off:off+size], off, size)
	}
	if err := extractCoverageInfo(otf); err != nil {
		return nil, err
	}
	return otf, nil
}

// RequiredTables lists the tables without which we cannot answer any question
// about a font's coverage.
var RequiredTables = []string{
	"cmap",
}

// Consistency check and shortcuts to essential tables.
func extractCoverageInfo(otf *Font) error {
	for _, tag := range RequiredTables {
		if otf.tables[T(tag)] == nil {
			return errFontFormat("missing required table " + tag)
		}
	}
	otf.CMap = otf.tables[T("cmap")].Self().AsCMap()
	if n := otf.tables[T("name")]; n != nil {
		otf.Names = n.Self().AsName()
	} else {
		tracer().Infof("font has no name table")
	}
	return nil
}

func parseTable(t Tag, b binarySegm, offset, size uint32) Table {
	switch t {
	case T("cmap"):
		return parseCMap(t, b, offset, size)
	case T("name"):
		return parseName(t, b, offset, size)
	}
	tracer().Debugf("font contains table (%s), will not be interpreted", t)
	return newTable(t, b, offset, size)
}
