// Package datafiles holds the HTML templates served by the web front end.
package datafiles

import "embed"

// Templates contains index.html and gallery.html.
//
//go:embed index.html gallery.html
var Templates embed.FS
