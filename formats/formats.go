// Package formats picks the descriptor parser for a file and runs it.
package formats

import (
	"io"
	"path/filepath"
	"strings"

	"badc0de.net/pkg/go-texunpack/atlas"
	"badc0de.net/pkg/go-texunpack/plist"
	"badc0de.net/pkg/go-texunpack/tpjson"
	"badc0de.net/pkg/go-texunpack/tpsheet"
)

// Options are passed to whichever parser runs.
type Options struct {
	TextSheet tpsheet.Options
}

// ForFileName returns the format for a descriptor file name, by extension.
func ForFileName(name string) (atlas.Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".tpsheet":
		return atlas.TextSheet, nil
	case ".json":
		return atlas.JSONSheet, nil
	case ".plist", ".xml":
		return atlas.PropertyList, nil
	}
	return atlas.FormatUnknown, atlas.Unsupportedf("descriptor %q has extension %q", name, ext)
}

// ForHint returns the format named by a short hint such as "json", or by an
// extension such as ".plist".
func ForHint(hint string) (atlas.Format, error) {
	h := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(hint)), ".")
	switch h {
	case "tpsheet", "text":
		return atlas.TextSheet, nil
	case "json":
		return atlas.JSONSheet, nil
	case "plist", "xml":
		return atlas.PropertyList, nil
	}
	return atlas.FormatUnknown, atlas.Unsupportedf("format hint %q", hint)
}

// Parse reads a descriptor of the given format.
func Parse(f atlas.Format, r io.Reader, opts Options) (*atlas.Descriptor, error) {
	switch f {
	case atlas.PropertyList:
		return plist.Parse(r)
	case atlas.JSONSheet:
		return tpjson.Parse(r)
	case atlas.TextSheet:
		return tpsheet.ParseWithOptions(r, opts.TextSheet)
	}
	return nil, atlas.Unsupportedf("no parser for %v", f)
}

// ParseFile picks the format from name and parses r.
func ParseFile(name string, r io.Reader, opts Options) (*atlas.Descriptor, error) {
	f, err := ForFileName(name)
	if err != nil {
		return nil, err
	}
	return Parse(f, r, opts)
}
