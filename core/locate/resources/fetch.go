package resources

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"

	"github.com/xwmx/glyph-imager/core"
	"golang.org/x/net/context/ctxhttp"
)

// HTTPClient is used for fetching remote fonts. nil selects http.DefaultClient.
var HTTPClient *http.Client

// fetch downloads a remote font into a temporary file, owned by the returned
// resource. On error, no temporary file is left behind.
func fetch(ctx context.Context, u *url.URL) (*Resource, error) {
	locator := u.String()
	tracer().Infof("fetching font %s", locator)
	resp, err := ctxhttp.Get(ctx, HTTPClient, locator)
	if err != nil {
		return nil, core.WrapError(err, core.ECONNECTION, "cannot fetch font %s", locator)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, core.Error(core.ECONNECTION, "cannot fetch font %s: HTTP status %s", locator, resp.Status)
	}
	out, err := os.CreateTemp("", "glyphimager-*"+path.Ext(u.Path))
	if err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "cannot create temporary file for %s", locator)
	}
	tmp := &Resource{Locator: locator, Path: out.Name(), temp: out.Name()}
	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		tmp.Release()
		return nil, core.WrapError(err, core.ECONNECTION, "cannot download font %s", locator)
	}
	tracer().Debugf("fetched %d bytes into %s", n, tmp.Path)
	return tmp, nil
}
