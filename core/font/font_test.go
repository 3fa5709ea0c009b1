package font

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xwmx/glyph-imager/core"
	"github.com/xwmx/glyph-imager/core/font/opentype/ot/ottest"
	"github.com/xwmx/glyph-imager/core/font/opentype/otquery"
	"github.com/xwmx/glyph-imager/core/locate/resources"
	"golang.org/x/image/font/gofont/goregular"
)

func writeFont(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0644))
	return p
}

func TestLoadLocalFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.fonts", "glyphimager.resources")
	defer teardown()
	//
	p := writeFont(t, "test.ttf", ottest.BMPFont())
	h, err := Load(context.Background(), p)
	require.NoError(t, err)
	defer h.Close()
	assert.Equal(t, p, h.Path)
	assert.NotNil(t, h.Table("cmap"))
	assert.Len(t, h.Table("head"), 54)
	assert.Nil(t, h.Table("GSUB"))
	assert.True(t, h.Glyph('!').Available)
	assert.False(t, h.Glyph(0x07).Available, "control characters are never available")
	assert.Equal(t, "Glyph Test", h.Name())
	assert.Equal(t, "Regular", h.Metadata()[otquery.FontSubfamily])
	assert.NoError(t, h.Close())
	assert.NoError(t, h.Close())
	_, err = os.Stat(p)
	assert.NoError(t, err, "local font must survive Close")
}

func TestLoadGoFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.fonts")
	defer teardown()
	//
	h, err := Load(context.Background(), writeFont(t, "Go-Regular.ttf", goregular.TTF))
	require.NoError(t, err)
	defer h.Close()
	assert.Equal(t, "Go Regular", h.Name())
	assert.True(t, h.Glyph('!').Available)
	assert.False(t, h.Glyph(0x11b14).Available)
}

func TestLoadRemoteFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.fonts", "glyphimager.resources")
	defer teardown()
	//
	tmpdir := t.TempDir()
	t.Setenv("TMPDIR", tmpdir)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/good.ttf":
			w.Write(ottest.FullFont())
		case "/broken.ttf":
			w.Write([]byte("this is not a font file at all"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	//
	h, err := Load(context.Background(), srv.URL+"/good.ttf")
	require.NoError(t, err)
	tmp := h.Path
	_, err = os.Stat(tmp)
	require.NoError(t, err, "temporary font file should exist while handle is open")
	assert.Equal(t, tmpdir, filepath.Dir(tmp))
	assert.True(t, h.Glyph(0x1d032).Available)
	require.NoError(t, h.Close())
	_, err = os.Stat(tmp)
	assert.True(t, os.IsNotExist(err), "temporary font file should be removed by Close")
	//
	_, err = Load(context.Background(), srv.URL+"/missing.ttf")
	assert.Equal(t, core.ECONNECTION, core.Code(err))
	_, err = Load(context.Background(), srv.URL+"/broken.ttf")
	assert.Equal(t, core.EINVALID, core.Code(err))
	t.Logf("broken font: %v", err)
	leftovers, err := os.ReadDir(tmpdir)
	require.NoError(t, err)
	assert.Empty(t, leftovers, "failed loads must not leave temporary files behind")
}

func TestLoadInvalid(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.fonts")
	defer teardown()
	//
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "none.ttf"))
	assert.Equal(t, core.EMISSING, core.Code(err))
	truncated := ottest.BMPFont()
	_, err = Load(context.Background(), writeFont(t, "truncated.ttf", truncated[:40]))
	assert.Equal(t, core.EINVALID, core.Code(err))
}

func TestNilHandle(t *testing.T) {
	var h *Handle
	assert.NoError(t, h.Close())
	assert.Nil(t, h.Table("cmap"))
	_, err := Open(nil)
	assert.Equal(t, core.EINTERNAL, core.Code(err))
}

func TestOpenResolvedResource(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphimager.fonts", "glyphimager.resources")
	defer teardown()
	//
	p := writeFont(t, "resolved.ttf", ottest.BMPFont())
	res, err := resources.Resolve(context.Background(), p).Resource()
	require.NoError(t, err)
	h, err := Open(res)
	require.NoError(t, err)
	assert.Equal(t, p, h.Path)
	assert.True(t, h.Glyph('!').Available)
	require.NoError(t, h.Close())
}
