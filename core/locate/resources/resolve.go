package resources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/xwmx/glyph-imager/core"
)

// NotFound returns an application error for a missing font resource.
func NotFound(res string) error {
	e := fmt.Errorf("resource missing: %v", res)
	return core.WrapError(e, core.EMISSING, "font not found: %s", res)
}

// Resource is a font file available on the local file system.
type Resource struct {
	Locator string // locator the resource has been materialized from
	Path    string // local file path
	temp    string // temporary file owned by the resource, if any
	once    sync.Once
	err     error
}

// Remote is true if the resource has been fetched from a remote location.
func (res *Resource) Remote() bool {
	return res.temp != ""
}

// Release frees the resource. Temporary files are deleted. It is safe to call
// Release more than once, and on a nil resource.
func (res *Resource) Release() error {
	if res == nil {
		return nil
	}
	res.once.Do(func() {
		if res.temp == "" {
			return
		}
		tracer().Debugf("removing temporary file %s", res.temp)
		if err := os.Remove(res.temp); err != nil && !errors.Is(err, os.ErrNotExist) {
			res.err = core.WrapError(err, core.EINTERNAL, "cannot remove temporary file %s", res.temp)
		}
	})
	return res.err
}

// Materialize makes the font referenced by locator available as a local file.
// Remote fonts are fetched with ctx bounding the transfer. Clients must call
// Release on the returned resource.
func Materialize(ctx context.Context, locator string) (*Resource, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return nil, core.Error(core.EMISSING, "font locator is empty")
	}
	if u, err := url.Parse(locator); err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return fetch(ctx, u)
		case "file":
			path, err := filePath(u)
			if err != nil {
				return nil, err
			}
			return local(locator, path)
		}
	}
	if _, err := os.Stat(locator); err != nil && isBareName(locator) {
		return systemFont(ctx, locator)
	}
	return local(locator, locator)
}

// systemFont searches for a font installed on the system, first with
// go-findfont, then with fontconfig.
func systemFont(ctx context.Context, name string) (*Resource, error) {
	fpath, err := findfont.Find(name)
	if err != nil || fpath == "" {
		if fpath, err = findFontConfigFont(ctx, name); err != nil {
			tracer().Infof("fontconfig cannot find %s: %v", name, err)
			return nil, NotFound(name)
		}
	}
	tracer().Debugf("%s is a system font: %s", name, fpath)
	return local(name, fpath)
}

// filePath extracts the local path from a file URI. url.Parse has already
// resolved percent-escapes of the path.
func filePath(u *url.URL) (string, error) {
	if u.Host != "" && u.Host != "localhost" {
		return "", core.Error(core.EINVALID, "file URI refers to remote host %q: %s", u.Host, u.String())
	}
	path := u.Path
	if path == "" && u.Opaque != "" { // file:relative/path
		p, err := url.PathUnescape(u.Opaque)
		if err != nil {
			return "", core.WrapError(err, core.EINVALID, "malformed file URI: %s", u.String())
		}
		path = p
	}
	if path == "" {
		return "", core.Error(core.EMISSING, "file URI without path: %s", u.String())
	}
	return filepath.FromSlash(path), nil
}

func isBareName(locator string) bool {
	return !strings.ContainsAny(locator, `/\`)
}

func local(locator, path string) (*Resource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NotFound(path)
		}
		return nil, core.WrapError(err, core.EINVALID, "cannot access font file %s", path)
	}
	if fi.IsDir() {
		return nil, core.Error(core.EINVALID, "font path is a directory: %s", path)
	}
	return &Resource{Locator: locator, Path: path}, nil
}

// --- Promises --------------------------------------------------------------

type resPlusErr struct {
	res *Resource
	err error
}

// ResourcePromise is returned by Resolve. Calling Resource blocks until the
// resource is available.
type ResourcePromise interface {
	Resource() (*Resource, error)
}

type resourceLoader struct {
	await func(ctx context.Context) (*Resource, error)
}

func (loader resourceLoader) Resource() (*Resource, error) {
	return loader.await(context.Background())
}

// Resolve materializes a font resource asynchronously. If ctx is cancelled
// before the promise is redeemed, the resource is released and the context's
// error is returned.
func Resolve(ctx context.Context, locator string) ResourcePromise {
	ch := make(chan resPlusErr, 1)
	go func(ch chan<- resPlusErr) {
		res, err := Materialize(ctx, locator)
		ch <- resPlusErr{res: res, err: err}
		close(ch)
	}(ch)
	return resourceLoader{
		await: func(wait context.Context) (*Resource, error) {
			select {
			case <-ctx.Done():
				if r, ok := <-ch; ok {
					r.res.Release()
				}
				return nil, ctx.Err()
			case <-wait.Done():
				return nil, wait.Err()
			case r := <-ch:
				return r.res, r.err
			}
		},
	}
}
