package paths

import (
	"os"
	"path/filepath"
	"testing"

	"badc0de.net/pkg/go-texunpack/ttesting"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestFindTexture(t *testing.T) {
	dir := t.TempDir()
	desc := filepath.Join(dir, "hero.plist")
	touch(t, desc)

	ttesting.AssertEqualString(t, "nothing there", FindTexture(desc, "hero_atlas.png"), "")

	touch(t, filepath.Join(dir, "hero.jpg"))
	ttesting.AssertEqualString(t, "stem fallback", FindTexture(desc, "hero_atlas.png"), filepath.Join(dir, "hero.jpg"))

	touch(t, filepath.Join(dir, "hero_atlas.png"))
	ttesting.AssertEqualString(t, "base name", FindTexture(desc, "build/out/hero_atlas.png"), filepath.Join(dir, "hero_atlas.png"))
	ttesting.AssertEqualString(t, "declared name", FindTexture(desc, "hero_atlas.png"), filepath.Join(dir, "hero_atlas.png"))

	touch(t, filepath.Join(dir, "sub", "tex.png"))
	ttesting.AssertEqualString(t, "relative declared name", FindTexture(desc, "sub/tex.png"), filepath.Join(dir, "sub", "tex.png"))

	ttesting.AssertEqualString(t, "unknown texture uses stem", FindTexture(desc, "unknown"), filepath.Join(dir, "hero.jpg"))
}

func TestValidation(t *testing.T) {
	for name, want := range map[string]bool{
		"a.plist":   true,
		"a.XML":     true,
		"a.tpsheet": true,
		"a.json":    true,
		"a.png":     false,
		"a":         false,
	} {
		ttesting.AssertEqualBool(t, "descriptor "+name, IsDescriptorFile(name), want)
		ttesting.AssertEqualBool(t, "validate descriptor "+name, ValidateDescriptorName(name) == nil, want)
	}
	for name, want := range map[string]bool{
		"a.png":  true,
		"a.JPEG": true,
		"a.jpg":  true,
		"a.webp": true,
		"a.json": false,
	} {
		ttesting.AssertEqualBool(t, "image "+name, IsImageFile(name), want)
	}
	if err := ValidateImageName("a.txt"); err == nil {
		t.Errorf("a.txt accepted as an image")
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json")
	touch(t, path)
	f, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	f.Close()
	if _, err := Open(path + ".missing"); err == nil {
		t.Errorf("expected an error")
	}
}
