package otquery

import (
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
	"github.com/xwmx/glyph-imager/core/font/opentype/ot"
	"github.com/xwmx/glyph-imager/core/font/opentype/ot/ottest"
	"golang.org/x/image/font/gofont/goregular"
)

// --- Test Suite Preparation ------------------------------------------------

type InfoTestEnviron struct {
	suite.Suite
	otf  *ot.Font
	full *ot.Font
}

// listen for 'go test' command --> run test methods
func TestInfoFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.fonts")
	defer teardown()
	suite.Run(t, new(InfoTestEnviron))
}

// run once, before test suite methods
func (env *InfoTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	tracing.Select("glyphimager.fonts").SetTraceLevel(tracing.LevelError)
	env.otf = parseFont(env.T(), ottest.BMPFont())
	env.full = parseFont(env.T(), ottest.FullFont())
	tracing.Select("glyphimager.fonts").SetTraceLevel(tracing.LevelInfo)
}

// run once, after test suite methods
func (env *InfoTestEnviron) TearDownSuite() {
	env.T().Log("Tearing down test suite")
}

// --- Tests -----------------------------------------------------------------

func (env *InfoTestEnviron) TestFontTypeInfo() {
	fti := FontType(env.otf)
	env.Equal("TrueType", fti, "expected font type of test font to be TrueType")
	env.Equal("<empty>", FontType(&ot.Font{}))
}

func (env *InfoTestEnviron) TestGeneralInfo() {
	info := NameInfo(env.otf)
	env.T().Logf("info = %v", info)
	fam, ok := info[FontFamily]
	env.Require().True(ok, "font family identifier not found in font info")
	env.Equal(ottest.Family, fam, "expected first family record to win")
	env.Equal("Regular", info[FontSubfamily])
	env.Equal("Version 1.000", info[Version])
	env.Equal("Ünïcödé Designer", info[Designer])
	env.NotContains(info, License)
	env.Len(info, 5)
}

func (env *InfoTestEnviron) TestMetadataLookup() {
	v, ok := Metadata(env.otf, Copyright)
	env.True(ok)
	env.Equal("© 2024 Glyph Imager Tests", v)
	_, ok = Metadata(env.otf, SampleText)
	env.False(ok, "sample text is not part of test font")
	_, ok = Metadata(env.otf, MetadataKey(99))
	env.False(ok)
	_, ok = Metadata(nil, FontFamily)
	env.False(ok)
}

func (env *InfoTestEnviron) TestMetadataKeyNames() {
	env.Equal("font_family", FontFamily.String())
	env.Equal("unique_subfamily", UniqueSubfamily.String())
	env.Equal(ot.NameUniqueID, UniqueSubfamily.NameID())
	env.Equal(ot.NameFullName, FontName.NameID())
	env.Equal(ot.NameSampleText, SampleText.NameID())
	env.Equal("<unknown>", MetadataKey(-1).String())
	key, ok := ParseMetadataKey("PostScript-Name")
	env.True(ok)
	env.Equal(PostScriptName, key)
	_, ok = ParseMetadataKey("weight")
	env.False(ok)
	env.Len(MetadataKeys(), 19)
}

func (env *InfoTestEnviron) TestGlyphQuery() {
	q := QueryGlyph(env.otf, '!')
	env.True(q.Available)
	env.Equal(ot.GlyphIndex(ottest.GlyphExclam), q.Glyph)
	env.Equal('!', q.CodePoint)
	env.False(HasGlyph(env.otf, 0xa2), "glyph array maps U+00A2 to 0")
	env.True(HasGlyph(env.otf, 0xa3))
	env.False(HasGlyph(env.otf, 0x1d000), "BMP font cannot contain astral code-points")
	env.True(HasGlyph(env.full, 0x1d000), "format 12 sub-table should be used")
	env.False(QueryGlyph(nil, 'A').Available)
}

func (env *InfoTestEnviron) TestControlsAreNeverAvailable() {
	// the test font maps U+0007 and U+0085 on purpose
	for _, r := range []rune{0x07, 0x85} {
		env.NotZero(env.otf.CMap.Lookup(r), "cmap should map %#U", r)
		q := QueryGlyph(env.otf, r)
		env.False(q.Available, "control %#U must not be available", r)
		env.Zero(q.Glyph)
	}
}

func (env *InfoTestEnviron) TestCodeRanges() {
	ranges := CodeRanges(env.otf)
	env.Equal([]ot.CodeRange{{From: 0x21, To: 0x7e}, {From: 0xa0, To: 0xa3}}, ranges)
	env.Nil(CodeRanges(nil))
}

// --- Plain tests -----------------------------------------------------------

func TestIsControl(t *testing.T) {
	for r := rune(0); r <= 0x1f; r++ {
		if !IsControl(r) {
			t.Errorf("expected %#04x to be a control character", r)
		}
	}
	for r := rune(0x7f); r <= 0x9f; r++ {
		if !IsControl(r) {
			t.Errorf("expected %#04x to be a control character", r)
		}
	}
	for _, r := range []rune{0x20, '!', '~', 0xa0, 0xad, 0x2028, 0xfeff, 0x1d000, -1} {
		if IsControl(r) {
			t.Errorf("expected %#04x not to be a control character", r)
		}
	}
}

func TestWithoutControls(t *testing.T) {
	r := withoutControls(ot.CodeRange{From: 0, To: 0xff})
	if len(r) != 2 || r[0] != (ot.CodeRange{From: 0x20, To: 0x7e}) || r[1] != (ot.CodeRange{From: 0xa0, To: 0xff}) {
		t.Errorf("unexpected ranges %v", r)
	}
	r = withoutControls(ot.CodeRange{From: 0x80, To: 0x9f})
	if len(r) != 0 {
		t.Errorf("expected C1 range to vanish, have %v", r)
	}
}

func TestCodeRangesOverlapping(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.fonts")
	defer teardown()
	//
	otf := parseFont(t, ottest.Font(map[string][]byte{
		"cmap": ottest.CMap(ottest.Encoding{PlatformID: 3, EncodingID: 10, Subtable: ottest.Format12(
			ottest.Group12{Start: 0x60, End: 0x70, StartGlyph: 20},
			ottest.Group12{Start: 0x50, End: 0x65, StartGlyph: 1},
			ottest.Group12{Start: 0x71, End: 0x72, StartGlyph: 40},
			ottest.Group12{Start: 0x10, End: 0x30, StartGlyph: 50},
		)}),
	}))
	ranges := CodeRanges(otf)
	expected := []ot.CodeRange{{From: 0x20, To: 0x30}, {From: 0x50, To: 0x72}}
	if len(ranges) != len(expected) {
		t.Fatalf("expected ranges %v, have %v", expected, ranges)
	}
	for i := range expected {
		if ranges[i] != expected[i] {
			t.Errorf("expected ranges %v, have %v", expected, ranges)
		}
	}
}

func TestMergeRanges(t *testing.T) {
	m := merge([]ot.CodeRange{{From: 5, To: 9}, {From: 1, To: 3}, {From: 4, To: 4}, {From: 7, To: 8}, {From: 12, To: 11}})
	if len(m) != 1 || m[0] != (ot.CodeRange{From: 1, To: 9}) {
		t.Errorf("expected single range 1…9, have %v", m)
	}
	if merge(nil) != nil {
		t.Errorf("expected nil for no ranges")
	}
}

func TestQueryRealFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.fonts")
	defer teardown()
	//
	otf := parseFont(t, goregular.TTF)
	if !HasGlyph(otf, 'A') || !HasGlyph(otf, 'ß') {
		t.Errorf("expected Go Regular to contain 'A' and 'ß'")
	}
	if HasGlyph(otf, 0x0a) {
		t.Errorf("newline must never be available")
	}
	if fam, _ := Metadata(otf, FontFamily); fam != "Go" {
		t.Errorf("expected family 'Go', have %q", fam)
	}
}

// --- Helpers ----------------------------------------------------------

func parseFont(t *testing.T, data []byte) *ot.Font {
	t.Helper()
	otf, err := ot.Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	return otf
}
