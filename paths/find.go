// Package paths validates the files handed to the unpacker and finds the atlas
// bitmap that belongs to a descriptor.
package paths

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var (
	descriptorExts = []string{".plist", ".xml", ".tpsheet", ".json"}
	imageExts      = []string{".png", ".jpg", ".jpeg"}
	// extraImageExts are decodable but not offered by default.
	extraImageExts = []string{".bmp", ".gif", ".tif", ".tiff", ".webp"}
)

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// IsDescriptorFile reports whether name has a descriptor extension.
func IsDescriptorFile(name string) bool {
	return hasExt(name, descriptorExts)
}

// IsImageFile reports whether name has an extension of an atlas bitmap format
// the texture package can decode.
func IsImageFile(name string) bool {
	return hasExt(name, imageExts) || hasExt(name, extraImageExts)
}

// ValidateDescriptorName returns an error unless name is a descriptor file.
func ValidateDescriptorName(name string) error {
	if !IsDescriptorFile(name) {
		return errors.Errorf("%q is not a descriptor; want one of %s", name, strings.Join(descriptorExts, " "))
	}
	return nil
}

// ValidateImageName returns an error unless name is an atlas image file.
func ValidateImageName(name string) error {
	if !IsImageFile(name) {
		return errors.Errorf("%q is not an atlas image; want one of %s", name, strings.Join(imageExts, " "))
	}
	return nil
}

// possibleTexturePaths lists where the atlas for descriptorPath may be, most
// likely first.
func possibleTexturePaths(descriptorPath, textureFileName string) []string {
	dir := filepath.Dir(descriptorPath)
	var out []string
	if textureFileName != "" && textureFileName != "unknown" {
		name := filepath.FromSlash(textureFileName)
		if filepath.IsAbs(name) {
			out = append(out, name)
		} else {
			out = append(out, filepath.Join(dir, name))
		}
		out = append(out, filepath.Join(dir, filepath.Base(name)))
	}
	stem := strings.TrimSuffix(filepath.Base(descriptorPath), filepath.Ext(descriptorPath))
	for _, ext := range imageExts {
		out = append(out, filepath.Join(dir, stem+ext))
	}
	return out
}

// FindTexture locates the atlas image for a descriptor. It tries the texture
// name the descriptor declares, relative to the descriptor's directory, then
// the same base name in that directory, then an image named like the
// descriptor. It returns "" if nothing is found.
func FindTexture(descriptorPath, textureFileName string) string {
	for _, path := range possibleTexturePaths(descriptorPath, textureFileName) {
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			glog.Infof("paths.FindTexture(%q, %q)=%s", descriptorPath, textureFileName, path)
			return path
		}
	}
	return ""
}

// Open opens a descriptor or image for reading.
func Open(path string) (interface {
	io.ReadCloser
	io.Seeker
}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "go-texunpack/paths/Open(%q)", path)
	}
	return f, nil
}
