// Package export writes extracted sprites to disk.
package export

import (
	"fmt"
	"image/png"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-texunpack/extract"
)

const fallbackName = "sprite"

// FileName turns a sprite name into a relative, slash separated PNG file
// name: "ui/button.png" stays as is, "hero.jpg" becomes "hero.png", "idle"
// becomes "idle.png". Leading slashes and ".." elements are removed so the
// result never leaves the output directory.
func FileName(name string) string {
	n := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
	n = strings.TrimPrefix(n, "/")
	if ext := path.Ext(n); ext != "" {
		if stripped := strings.TrimSuffix(n, ext); stripped != "" && !strings.HasSuffix(stripped, "/") {
			n = stripped
		}
	}
	if n == "" {
		n = fallbackName
	}
	return n + ".png"
}

// Summary reports what WriteAll did.
type Summary struct {
	// Written holds the relative file names written, in result order.
	Written []string
	// Failed holds the names of sprites that had no raster.
	Failed []string
}

// uniqueNames hands out file names, suffixing repeats with _2, _3 and so on.
type uniqueNames map[string]bool

func (u uniqueNames) take(name string) string {
	if !u[name] {
		u[name] = true
		return name
	}
	stem := strings.TrimSuffix(name, ".png")
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d.png", stem, i)
		if !u[candidate] {
			u[candidate] = true
			return candidate
		}
	}
}

// WriteAll encodes every successfully extracted sprite as a PNG under dir,
// creating subdirectories as needed. Sprites with an error are listed in the
// summary and otherwise skipped.
func WriteAll(dir string, results []extract.SpriteResult) (Summary, error) {
	var s Summary
	taken := uniqueNames{}
	for i := range results {
		res := &results[i]
		if !res.OK() {
			s.Failed = append(s.Failed, res.Name)
			continue
		}
		rel := taken.take(FileName(res.Name))
		if err := writePNG(filepath.Join(dir, filepath.FromSlash(rel)), res); err != nil {
			return s, err
		}
		glog.V(1).Infof("export: %q -> %s", res.Name, rel)
		s.Written = append(s.Written, rel)
	}
	glog.Infof("export: wrote %d sprites to %s, %d failed", len(s.Written), dir, len(s.Failed))
	return s, nil
}

func writePNG(path string, res *extract.SpriteResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "creating directory for sprite %q", res.Name)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating file for sprite %q", res.Name)
	}
	if err := png.Encode(f, res.Raster); err != nil {
		f.Close()
		return errors.Wrapf(err, "encoding sprite %q", res.Name)
	}
	return errors.Wrapf(f.Close(), "closing file for sprite %q", res.Name)
}
