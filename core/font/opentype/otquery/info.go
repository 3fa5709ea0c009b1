package otquery

import (
	"strings"

	"github.com/xwmx/glyph-imager/core/font/opentype/ot"
)

// FontType returns the font type, encoded in the font header, as a string.
func FontType(otf *ot.Font) string {
	if otf.Header == nil {
		return "<empty>"
	}
	typ := otf.Header.FontType
	switch typ {
	case 0x4f54544f: // OTTO
		return "OpenType (outlines)"
	case 0x00010000: // TrueType
		return "TrueType"
	case 0x74727565: // true
		return "TrueType (Mac legacy)"
	}
	return "<unknown>"
}

// MetadataKey identifies a piece of font metadata, stored in table 'name'.
type MetadataKey int

// Metadata keys, in the order they are reported.
const (
	Copyright MetadataKey = iota
	FontFamily
	FontSubfamily
	UniqueSubfamily
	FontName
	Version
	PostScriptName
	Trademark
	Manufacturer
	Designer
	Description
	VendorURL
	DesignerURL
	License
	LicenseURL
	PreferredFamily
	PreferredSubfamily
	CompatibleFull
	SampleText
)

var metadataNameIDs = [...]struct {
	name string
	id   ot.NameID
}{
	Copyright:          {"copyright", ot.NameCopyright},
	FontFamily:         {"font_family", ot.NameFontFamily},
	FontSubfamily:      {"font_subfamily", ot.NameFontSubfamily},
	UniqueSubfamily:    {"unique_subfamily", ot.NameUniqueID},
	FontName:           {"font_name", ot.NameFullName},
	Version:            {"version", ot.NameVersion},
	PostScriptName:     {"postscript_name", ot.NamePostScript},
	Trademark:          {"trademark", ot.NameTrademark},
	Manufacturer:       {"manufacturer", ot.NameManufacturer},
	Designer:           {"designer", ot.NameDesigner},
	Description:        {"description", ot.NameDescription},
	VendorURL:          {"vendor_url", ot.NameVendorURL},
	DesignerURL:        {"designer_url", ot.NameDesignerURL},
	License:            {"license", ot.NameLicense},
	LicenseURL:         {"license_url", ot.NameLicenseURL},
	PreferredFamily:    {"preferred_family", ot.NamePreferredFamily},
	PreferredSubfamily: {"preferred_subfamily", ot.NamePreferredSubfamily},
	CompatibleFull:     {"compatible_full", ot.NameCompatibleFull},
	SampleText:         {"sample_text", ot.NameSampleText},
}

// MetadataKeys returns all metadata keys in reporting order.
func MetadataKeys() []MetadataKey {
	keys := make([]MetadataKey, len(metadataNameIDs))
	for i := range keys {
		keys[i] = MetadataKey(i)
	}
	return keys
}

func (key MetadataKey) valid() bool {
	return key >= 0 && int(key) < len(metadataNameIDs)
}

func (key MetadataKey) String() string {
	if !key.valid() {
		return "<unknown>"
	}
	return metadataNameIDs[key].name
}

// NameID returns the 'name' table ID a metadata key is stored under.
func (key MetadataKey) NameID() ot.NameID {
	if !key.valid() {
		return 0xffff
	}
	return metadataNameIDs[key].id
}

// ParseMetadataKey finds a metadata key by its name, e.g. "font_family".
// Dashes are accepted in place of underscores.
func ParseMetadataKey(s string) (MetadataKey, bool) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, m := range metadataNameIDs {
		if m.name == s {
			return MetadataKey(i), true
		}
	}
	return -1, false
}

// Metadata returns the metadata string for key. It is the first entry of
// table 'name' with the corresponding name ID. If the font does not contain
// such an entry, false is returned.
func Metadata(otf *ot.Font, key MetadataKey) (string, bool) {
	if otf == nil || otf.Names == nil || !key.valid() {
		return "", false
	}
	return otf.Names.Lookup(key.NameID())
}

// NameInfo returns a map with all metadata fields available from OpenType
// table 'name'. Keys missing from the font are missing from the map.
func NameInfo(otf *ot.Font) map[MetadataKey]string {
	names := make(map[MetadataKey]string)
	if otf == nil || otf.Names == nil {
		tracer().Debugf("no name table found in font")
		return names
	}
	for _, key := range MetadataKeys() {
		if s, ok := Metadata(otf, key); ok {
			names[key] = s
		}
	}
	return names
}
