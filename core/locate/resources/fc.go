package resources

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/xwmx/glyph-imager/core"
)

// FontConfigBinary is the fontconfig 'fc-list' binary, used to search for
// system fonts which go-findfont cannot find. Setting it to "" disables
// fontconfig lookups.
var FontConfigBinary = "fc-list"

var execCommand = exec.CommandContext

// fontConfigEntry is a line of fc-list output.
type fontConfigEntry struct {
	Path     string
	Families []string
	Style    string
}

// findFontConfigFont searches for a locally installed font using the fontconfig
// system (https://www.freedesktop.org/wiki/Software/fontconfig/).
//
// name is matched against the file names of the fonts, with or without
// extension, and then against their family names. For families, a regular
// style is preferred. We call the binary instead of using the C library
// because of possible version issues.
func findFontConfigFont(ctx context.Context, name string) (string, error) {
	if FontConfigBinary == "" {
		return "", NotFound(name)
	}
	out, err := execCommand(ctx, FontConfigBinary).Output()
	if err != nil {
		return "", core.ErrorWithCode(err, core.EEXEC)
	}
	entries := parseFontConfigList(out)
	tracer().Debugf("fontconfig lists %d fonts", len(entries))
	if path := matchFontConfig(entries, name); path != "" {
		return path, nil
	}
	return "", NotFound(name)
}

// parseFontConfigList reads lines of the form
//
//	/usr/share/fonts/DejaVuSans.ttf: DejaVu Sans:style=Book
//
// Font collections (.ttc) are skipped, as we can address single fonts only.
func parseFontConfigList(out []byte) []fontConfigEntry {
	var entries []fontConfigEntry
	ttc := 0
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 2 {
			continue
		}
		entry := fontConfigEntry{Path: strings.TrimSpace(fields[0])}
		if strings.EqualFold(filepath.Ext(entry.Path), ".ttc") {
			ttc++
			continue
		}
		for _, fam := range strings.Split(fields[1], ",") {
			if fam = strings.TrimPrefix(strings.TrimSpace(fam), "."); fam != "" {
				entry.Families = append(entry.Families, fam)
			}
		}
		if len(fields) > 2 {
			entry.Style = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(fields[2]), "style="))
		}
		entries = append(entries, entry)
	}
	if ttc > 0 {
		tracer().Infof("skipping %d platform fonts: TTC not supported", ttc)
	}
	return entries
}

func matchFontConfig(entries []fontConfigEntry, name string) string {
	for _, e := range entries {
		base := filepath.Base(e.Path)
		if strings.EqualFold(base, name) || strings.EqualFold(strings.TrimSuffix(base, filepath.Ext(base)), name) {
			return e.Path
		}
	}
	var candidate string
	for _, e := range entries {
		for _, fam := range e.Families {
			if !strings.EqualFold(fam, name) {
				continue
			}
			if isRegularStyle(e.Style) {
				return e.Path
			}
			if candidate == "" {
				candidate = e.Path
			}
		}
	}
	return candidate
}

func isRegularStyle(style string) bool {
	for _, s := range strings.Split(style, ",") {
		switch strings.TrimSpace(s) {
		case "regular", "book", "normal", "roman":
			return true
		}
	}
	return false
}
