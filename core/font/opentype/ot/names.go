package ot

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// NameID identifies a string of the 'name' table.
// See https://docs.microsoft.com/en-us/typography/opentype/spec/name#name-ids
type NameID uint16

// Name IDs defined by the OpenType specification.
const (
	NameCopyright           NameID = 0
	NameFontFamily          NameID = 1
	NameFontSubfamily       NameID = 2
	NameUniqueID            NameID = 3
	NameFullName            NameID = 4
	NameVersion             NameID = 5
	NamePostScript          NameID = 6
	NameTrademark           NameID = 7
	NameManufacturer        NameID = 8
	NameDesigner            NameID = 9
	NameDescription         NameID = 10
	NameVendorURL           NameID = 11
	NameDesignerURL         NameID = 12
	NameLicense             NameID = 13
	NameLicenseURL          NameID = 14
	NamePreferredFamily     NameID = 16
	NamePreferredSubfamily  NameID = 17
	NameCompatibleFull      NameID = 18
	NameSampleText          NameID = 19
	NamePostScriptCID       NameID = 20
	NameWWSFamily           NameID = 21
	NameWWSSubfamily        NameID = 22
	NameLightBackground     NameID = 23
	NameDarkBackground      NameID = 24
	NameVariationsPSNPrefix NameID = 25
)

// Platform IDs used in 'name' and 'cmap' tables.
const (
	PlatformUnicode uint16 = 0
	PlatformMac     uint16 = 1
	PlatformISO     uint16 = 2
	PlatformWindows uint16 = 3
	PlatformCustom  uint16 = 4
)

const macEncodingRoman uint16 = 0

const (
	nameHeaderSize = 6
	nameRecordSize = 12
)

// NameTable represents the OpenType 'name' table, which allows multilingual
// strings to be associated with the font.
type NameTable struct {
	tableBase
	records []NameRecord
	strbuf  binarySegm
}

// NameRecord is an entry of the 'name' table, referencing a string in the
// table's storage area.
type NameRecord struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     NameID
	length     uint16
	offset     uint16
}

func newNameTable(tag Tag, b binarySegm, offset, size uint32) *NameTable {
	t := &NameTable{}
	base := tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.tableBase = base
	t.self = t
	return t
}

// parseName reads the header and the name records. A defective table results in
// a name table without records, as missing names should never make loading a
// font fail.
func parseName(tag Tag, b binarySegm, offset, size uint32) *NameTable {
	t := newNameTable(tag, b, offset, size)
	if len(b) < nameHeaderSize {
		tracer().Errorf("name section corrupt")
		return t
	}
	N, _ := b.u16(2)
	strOffset, _ := b.u16(4)
	if int(strOffset) > len(b) {
		tracer().Errorf("name section corrupt: string storage out of bounds")
		return t
	}
	t.strbuf = b[strOffset:]
	tracer().Debugf("name table has %d strings, starting at %d", N, strOffset)
	recs := viewArray(b[nameHeaderSize:], nameRecordSize)
	if recs.Len() < int(N) {
		tracer().Errorf("name section truncated: %d of %d records present", recs.Len(), N)
		N = uint16(recs.Len())
	}
	t.records = make([]NameRecord, 0, N)
	for i := 0; i < int(N); i++ {
		r := recs.Get(i)
		rec := NameRecord{
			PlatformID: u16(r),
			EncodingID: u16(r[2:]),
			LanguageID: u16(r[4:]),
			NameID:     NameID(u16(r[6:])),
			length:     u16(r[8:]),
			offset:     u16(r[10:]),
		}
		if int(rec.offset)+int(rec.length) > len(t.strbuf) {
			tracer().Debugf("name record %d points outside of string storage", i)
			continue
		}
		t.records = append(t.records, rec)
	}
	return t
}

// Records returns all usable name records, in table order.
func (t *NameTable) Records() []NameRecord {
	return t.records
}

// Lookup returns the decoded string of the first record for name ID id.
// If no record exists or it cannot be decoded, false is returned.
func (t *NameTable) Lookup(id NameID) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, rec := range t.records {
		if rec.NameID != id {
			continue
		}
		s, err := t.Decode(rec)
		if err != nil {
			tracer().Infof("name %d: %v", id, err)
			return "", false
		}
		return s, true
	}
	return "", false
}

// Decode returns the string referenced by rec.
//
// Strings for the Unicode and Windows platforms are encoded in UTF-16BE,
// strings for the Macintosh platform with Roman encoding use Mac OS Roman.
// Everything else is interpreted as ISO 8859-1.
func (t *NameTable) Decode(rec NameRecord) (string, error) {
	str, err := t.strbuf.view(int(rec.offset), int(rec.length))
	if err != nil {
		if rec.length == 0 {
			return "", nil
		}
		return "", err
	}
	var dec *encoding.Decoder
	switch {
	case rec.PlatformID == PlatformUnicode || rec.PlatformID == PlatformWindows:
		dec = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	case rec.PlatformID == PlatformMac && rec.EncodingID == macEncodingRoman:
		dec = charmap.Macintosh.NewDecoder()
	default:
		dec = charmap.ISO8859_1.NewDecoder()
	}
	s, err := dec.Bytes(str)
	if err != nil {
		return "", fmt.Errorf("decoding name string (%d|%d): %w", rec.PlatformID, rec.EncodingID, err)
	}
	return string(s), nil
}
