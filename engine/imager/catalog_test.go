package imager

import (
	"context"
	"testing"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xwmx/glyph-imager/backend/magick"
	"github.com/xwmx/glyph-imager/core"
	"github.com/xwmx/glyph-imager/core/font/opentype/ot"
	"github.com/xwmx/glyph-imager/core/font/opentype/ot/ottest"
)

func TestCatalogBMPFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.imager")
	defer teardown()
	//
	rec := &recorder{fail: map[rune]bool{'A': true}}
	im := New(rec, magick.Options{})
	catalog, err := im.Catalog(context.Background(), CatalogOptions{
		Options: magick.Options{
			FontPath:  writeFont(t, "test.ttf", ottest.BMPFont()),
			OutputDir: "/tmp",
		},
		From:    0,
		To:      0xff,
		Workers: 3,
	})
	require.NoError(t, err)
	// U+0021…U+007E plus U+00A0, U+00A1, U+00A3; controls are left out
	assert.Equal(t, 94+3, catalog.Len())
	assert.Len(t, rec.jobs, 94+3)
	assert.Equal(t, 1, catalog.Failed())
	assert.Equal(t, "Glyph Test", catalog.Font)
	entries := catalog.Entries()
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].CodePoint, entries[i].CodePoint, "entries must be ordered")
	}
	assert.Equal(t, '!', entries[0].CodePoint)
	assert.Equal(t, ot.GlyphIndex(ottest.GlyphExclam), entries[0].Glyph)
	assert.Equal(t, rune(0xa3), entries[len(entries)-1].CodePoint)
	e, ok := catalog.Entry('A')
	require.True(t, ok)
	var rerr *RasterizationError
	assert.ErrorAs(t, e.Err, &rerr)
	require.NotNil(t, e.Job)
	assert.Equal(t, "/tmp/0041-80x80.png", e.Job.OutputPath)
	_, ok = catalog.Entry(0x07)
	assert.False(t, ok, "control characters must not be imaged")
	_, ok = catalog.Entry(0xa2)
	assert.False(t, ok, "U+00A2 is not mapped")
}

func TestCatalogClipsRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.imager")
	defer teardown()
	//
	rec := &recorder{}
	catalog, err := New(rec, magick.Options{}).Catalog(context.Background(), CatalogOptions{
		Options: magick.Options{
			FontPath:  writeFont(t, "full.ttf", ottest.FullFont()),
			OutputDir: "out",
		},
		From: 0x1d0f0,
		To:   0x10ffff,
	})
	require.NoError(t, err)
	assert.Equal(t, 0x11, catalog.Len())
	assert.Equal(t, 0x11, catalog.Covered)
	e, ok := catalog.Entry(0x1d100)
	require.True(t, ok)
	assert.Equal(t, "out/1D100-80x80.png", e.Job.OutputPath)
}

func TestCatalogOverlappingGroups(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.imager")
	defer teardown()
	//
	data := ottest.Font(map[string][]byte{
		"cmap": ottest.CMap(ottest.Encoding{PlatformID: 3, EncodingID: 10, Subtable: ottest.Format12(
			ottest.Group12{Start: 0x60, End: 0x70, StartGlyph: 20},
			ottest.Group12{Start: 0x50, End: 0x65, StartGlyph: 1},
		)}),
	})
	rec := &recorder{}
	catalog, err := New(rec, magick.Options{}).Catalog(context.Background(), CatalogOptions{
		Options: magick.Options{
			FontPath:  writeFont(t, "overlap.ttf", data),
			OutputDir: "/tmp",
		},
		From:    0,
		To:      0xff,
		Workers: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, 0x21, catalog.Len())
	assert.Equal(t, 0x21, catalog.Covered)
	require.Len(t, rec.jobs, 0x21)
	outputs := make(map[string]bool)
	for _, job := range rec.jobs {
		assert.False(t, outputs[job.OutputPath], "%s rasterized twice", job.OutputPath)
		outputs[job.OutputPath] = true
	}
}

func TestCatalogInvalidOptions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.imager")
	defer teardown()
	//
	im := New(&recorder{}, magick.Options{})
	fontPath := writeFont(t, "test.ttf", ottest.BMPFont())
	for field, copts := range map[string]CatalogOptions{
		FieldFontPath:  {Options: magick.Options{OutputDir: "/tmp"}, To: 0xff},
		FieldOutputDir: {Options: magick.Options{FontPath: fontPath}, To: 0xff},
		FieldRange:     {Options: magick.Options{FontPath: fontPath, OutputDir: "/tmp"}, From: 0x100, To: 0xff},
		FieldSize:      {Options: magick.Options{FontPath: fontPath, OutputDir: "/tmp", Size: "x"}, To: 0xff},
	} {
		_, err := im.Catalog(context.Background(), copts)
		var cerr *ConfigurationError
		require.ErrorAs(t, err, &cerr, field)
		assert.Equal(t, field, cerr.Field)
	}
}

func TestCatalogCancelled(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.imager")
	defer teardown()
	//
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &recorder{}
	_, err := New(rec, magick.Options{}).Catalog(ctx, CatalogOptions{
		Options: magick.Options{
			FontPath:  writeFont(t, "test.ttf", ottest.BMPFont()),
			OutputDir: "/tmp",
		},
		To: 0xffff,
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.jobs)
}

func TestOptionsFromConfig(t *testing.T) {
	conf := testconfig.Conf{
		KeySize:       "64x64",
		KeyPercentage: 75,
		KeyGravity:    "south",
		KeyOutputDir:  "/var/glyphs",
		KeyCommand:    "/usr/local/bin/magick-convert",
		KeyWorkers:    8,
	}
	opts := OptionsFromConfig(conf)
	assert.Equal(t, "64x64", opts.Size)
	assert.Equal(t, 75, opts.PointSizePercentage)
	assert.Equal(t, "south", opts.Gravity)
	assert.Equal(t, "", opts.Background, "unset keys stay unset")
	assert.Equal(t, "/var/glyphs", opts.OutputDir)
	assert.Equal(t, 8, WorkersFromConfig(conf))
	assert.Equal(t, DefaultWorkers, WorkersFromConfig(testconfig.Conf{}))
	assert.Equal(t, magick.Options{}, OptionsFromConfig(nil))
	//
	rec := &recorder{}
	im := NewFromConfig(conf, rec)
	job, err := im.ImageCharacterForFont(context.Background(), magick.Options{
		CodePoint: "0041",
		FontPath:  writeFont(t, "test.ttf", ottest.BMPFont()),
	})
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "/var/glyphs/0041-64x64.png", job.OutputPath)
	assert.Equal(t, 48.0, job.PointSize)
	assert.Equal(t, "none", job.Background)
	assert.Equal(t, "/usr/local/bin/magick-convert", job.Command)
}

func TestErrorMessages(t *testing.T) {
	err := missing(FieldOutputDir)
	assert.Equal(t, "configuration error: output_dir: missing value", err.Error())
	assert.Equal(t, "missing value for option output_dir", core.UserMessage(err))
	ferr := &FontLoadError{Locator: "x.ttf", Err: core.Error(core.EMISSING, "font not found: x.ttf")}
	assert.Equal(t, core.EMISSING, core.Code(ferr))
	assert.Equal(t, "font not found: x.ttf", core.UserMessage(ferr))
}
