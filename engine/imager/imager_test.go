package imager

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xwmx/glyph-imager/backend/magick"
	"github.com/xwmx/glyph-imager/core"
	"github.com/xwmx/glyph-imager/core/font/opentype/ot/ottest"
	"golang.org/x/image/font/gofont/goregular"
)

// recorder is a magick.Runner which records jobs instead of running them.
type recorder struct {
	sync.Mutex
	jobs  []*magick.Job
	fonts []string // existence of the font file at run time
	fail  map[rune]bool
}

func (r *recorder) Run(ctx context.Context, job *magick.Job) ([]byte, error) {
	r.Lock()
	defer r.Unlock()
	r.jobs = append(r.jobs, job)
	if _, err := os.Stat(job.FontPath); err == nil {
		r.fonts = append(r.fonts, job.FontPath)
	}
	if r.fail[job.CodePoint] {
		return []byte("convert: no images defined"), core.Error(core.EEXEC, "convert exited with status 1")
	}
	return nil, nil
}

func writeFont(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0644))
	return p
}

func TestImageCharacterAvailable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.imager", "glyphimager.fonts")
	defer teardown()
	//
	rec := &recorder{}
	im := New(rec, magick.Options{})
	fontPath := writeFont(t, "test.ttf", ottest.BMPFont())
	job, err := im.ImageCharacterForFont(context.Background(), magick.Options{
		CodePoint: "0021",
		FontPath:  fontPath,
		OutputDir: "/tmp",
	})
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "/tmp/0021-80x80.png", job.OutputPath)
	assert.Equal(t, 80.0, job.PointSize)
	assert.Equal(t, fontPath, job.FontPath)
	require.Len(t, rec.jobs, 1)
	assert.Same(t, job, rec.jobs[0])
}

func TestImageCharacterUnavailable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.imager", "glyphimager.fonts")
	defer teardown()
	//
	rec := &recorder{}
	im := New(rec, magick.Options{})
	fontPath := writeFont(t, "Go-Regular.ttf", goregular.TTF)
	for _, cp := range []string{"11B14", "0007", "0085", "007F"} {
		job, err := im.ImageCharacterForFont(context.Background(), magick.Options{
			CodePoint: cp,
			FontPath:  fontPath,
			OutputDir: t.TempDir(),
		})
		assert.NoError(t, err, cp)
		assert.Nil(t, job, cp)
	}
	assert.Empty(t, rec.jobs, "no rasterizer must be run for unavailable glyphs")
	// controls mapped by the font are unavailable as well
	job, err := im.ImageCharacterForFont(context.Background(), magick.Options{
		CodePoint: "0007",
		FontPath:  writeFont(t, "test.ttf", ottest.BMPFont()),
		OutputDir: "/tmp",
	})
	assert.NoError(t, err)
	assert.Nil(t, job)
	assert.Empty(t, rec.jobs)
}

func TestImageCharacterMergesOptions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.imager")
	defer teardown()
	//
	rec := &recorder{}
	im := New(rec, magick.Options{Background: "white", Size: "100x50"})
	job, err := im.ImageCharacterForFont(context.Background(), magick.Options{
		CodePoint:           "1D032",
		FontPath:            writeFont(t, "full.ttf", ottest.FullFont()),
		OutputDir:           "out",
		PointSizePercentage: 50,
		Gravity:             "north",
	})
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "white", job.Background)
	assert.Equal(t, "north", job.Gravity)
	assert.Equal(t, "100x50", job.Size)
	assert.Equal(t, 25.0, job.PointSize)
	assert.Equal(t, "out/1D032-100x50.png", job.OutputPath)
}

func TestImageCharacterConfigurationErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.imager")
	defer teardown()
	//
	full := magick.Options{CodePoint: "0021", FontPath: "font.ttf", OutputDir: "/tmp"}
	for field, opts := range map[string]magick.Options{
		FieldCodePoint: {FontPath: "font.ttf", OutputDir: "/tmp"},
		FieldFontPath:  {CodePoint: "0021", OutputDir: "/tmp"},
		FieldOutputDir: {CodePoint: "0021", FontPath: "font.ttf"},
	} {
		_, err := ImageCharacterForFont(context.Background(), opts)
		var cerr *ConfigurationError
		require.True(t, errors.As(err, &cerr), "expected configuration error for %s, have %v", field, err)
		assert.Equal(t, field, cerr.Field)
		assert.Equal(t, core.EMISSING, core.Code(err))
		assert.Contains(t, err.Error(), field)
	}
	_, err := ImageCharacterForFont(context.Background(), magick.Options{})
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, FieldCodePoint, cerr.Field, "code-point is checked first")
	//
	for field, opts := range map[string]magick.Options{
		FieldCodePoint:  full.Merge(magick.Options{CodePoint: "G00D"}),
		FieldSize:       full.Merge(magick.Options{Size: "80by80"}),
		FieldPercentage: full.Merge(magick.Options{PointSizePercentage: -10}),
		FieldGravity:    full.Merge(magick.Options{Gravity: "up"}),
	} {
		_, err := ImageCharacterForFont(context.Background(), opts)
		require.ErrorAs(t, err, &cerr, field)
		assert.Equal(t, field, cerr.Field)
		assert.Equal(t, core.EINVALID, core.Code(err), field)
	}
	_, err = ImageCharacterForFont(context.Background(), full.Merge(magick.Options{CodePoint: "D83D"}))
	require.ErrorAs(t, err, &cerr, "surrogate")
	assert.Equal(t, FieldCodePoint, cerr.Field)
	assert.Equal(t, core.EINVALID, core.Code(err))
}

func TestImageCharacterFontLoadError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.imager", "glyphimager.fonts")
	defer teardown()
	//
	rec := &recorder{}
	im := New(rec, magick.Options{})
	opts := magick.Options{CodePoint: "0021", OutputDir: "/tmp"}
	//
	opts.FontPath = filepath.Join(t.TempDir(), "missing.ttf")
	_, err := im.ImageCharacterForFont(context.Background(), opts)
	var ferr *FontLoadError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, opts.FontPath, ferr.Locator)
	assert.Equal(t, core.EMISSING, core.Code(err))
	//
	opts.FontPath = writeFont(t, "broken.ttf", []byte("OTTO but not much else"))
	_, err = im.ImageCharacterForFont(context.Background(), opts)
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, core.EINVALID, core.Code(err))
	assert.Empty(t, rec.jobs)
}

func TestImageCharacterRemoteFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.imager", "glyphimager.resources")
	defer teardown()
	//
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/go.ttf" {
			w.Write(goregular.TTF)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()
	rec := &recorder{}
	im := New(rec, magick.Options{})
	job, err := im.ImageCharacterForFont(context.Background(), magick.Options{
		CodePoint: "0021",
		FontPath:  srv.URL + "/go.ttf",
		OutputDir: "/tmp",
	})
	require.NoError(t, err)
	require.NotNil(t, job)
	require.Len(t, rec.fonts, 1, "temporary font file must exist while rasterizing")
	_, err = os.Stat(job.FontPath)
	assert.True(t, os.IsNotExist(err), "temporary font file must be removed afterwards")
	//
	_, err = im.ImageCharacterForFont(context.Background(), magick.Options{
		CodePoint: "0021",
		FontPath:  srv.URL + "/nothing.ttf",
		OutputDir: "/tmp",
	})
	var ferr *FontLoadError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, core.ECONNECTION, core.Code(err))
}

func TestImageCharacterRasterizationError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.imager")
	defer teardown()
	//
	rec := &recorder{fail: map[rune]bool{'!': true}}
	im := New(rec, magick.Options{})
	job, err := im.ImageCharacterForFont(context.Background(), magick.Options{
		CodePoint: "0021",
		FontPath:  writeFont(t, "test.ttf", ottest.BMPFont()),
		OutputDir: "/tmp",
	})
	require.NotNil(t, job, "job is returned for reporting")
	var rerr *RasterizationError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, core.EEXEC, core.Code(err))
	assert.Equal(t, "convert", rerr.Args[0])
	assert.Equal(t, job.Args(), rerr.Args[1:])
	assert.Equal(t, "convert: no images defined", string(rerr.Output))
}

func TestQueryGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.imager")
	defer teardown()
	//
	im := &Imager{}
	fontPath := writeFont(t, "full.ttf", ottest.FullFont())
	q, err := im.QueryGlyph(context.Background(), fontPath, "1D032")
	require.NoError(t, err)
	assert.True(t, q.Available)
	assert.EqualValues(t, 0x37, q.Glyph)
	q, err = im.QueryGlyph(context.Background(), fontPath, "1D101")
	require.NoError(t, err)
	assert.False(t, q.Available)
	// repeated queries yield the same result
	for i := 0; i < 3; i++ {
		q, _ = im.QueryGlyph(context.Background(), fontPath, "0041")
		assert.True(t, q.Available)
	}
	_, err = im.QueryGlyph(context.Background(), fontPath, "")
	assert.Equal(t, core.EMISSING, core.Code(err))
	_, err = im.QueryGlyph(context.Background(), "", "0041")
	assert.Equal(t, core.EMISSING, core.Code(err))
}
