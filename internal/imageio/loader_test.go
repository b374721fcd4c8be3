package imageio

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
}

func TestLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.png")
	writePNG(t, path, 40, 30)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Width != 40 || doc.Height != 30 {
		t.Fatalf("dimensions = %dx%d, want 40x30", doc.Width, doc.Height)
	}
	if doc.Format != "png" {
		t.Fatalf("format = %q, want png", doc.Format)
	}
	if doc.SourcePath != path {
		t.Fatalf("source path = %q", doc.SourcePath)
	}
}

func TestLoadTIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.tiff")
	img := image.NewGray(image.Rect(0, 0, 20, 20))
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture: %v", err)
	}
	if err := tiff.Encode(f, img, nil); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	f.Close()

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Format != "tiff" {
		t.Fatalf("format = %q, want tiff", doc.Format)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.gif")
	if err := os.WriteFile(path, []byte("GIF89a"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	_, err := Load(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Load() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, ErrUnreadableFile) {
		t.Fatalf("Load() error = %v, want ErrUnreadableFile", err)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	_, err := Load(path)
	if !errors.Is(err, ErrUnreadableFile) {
		t.Fatalf("Load() error = %v, want ErrUnreadableFile", err)
	}
}

func TestLoadCorruptData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.png")
	if err := os.WriteFile(path, []byte("this is not image data"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	_, err := Load(path)
	if !errors.Is(err, ErrUnreadableFile) {
		t.Fatalf("Load() error = %v, want ErrUnreadableFile", err)
	}
}

func TestGrayConversion(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	doc := &DocumentImage{Raster: img, Width: 4, Height: 4}

	gray := doc.Gray()
	if gray.Bounds().Dx() != 4 || gray.Bounds().Dy() != 4 {
		t.Fatalf("gray bounds = %v", gray.Bounds())
	}
	// Pure red maps to a mid-dark luminance, not 0 or 255.
	y := gray.GrayAt(1, 1).Y
	if y == 0 || y == 255 {
		t.Fatalf("unexpected luminance %d for red pixel", y)
	}

	// Mutating the copy must not touch the source raster.
	gray.SetGray(0, 0, color.Gray{Y: 7})
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Fatalf("source raster mutated")
	}
}

func TestIsSupportedPath(t *testing.T) {
	cases := map[string]bool{
		"a.png":  true,
		"a.PNG":  true,
		"a.jpg":  true,
		"a.jpeg": true,
		"a.tif":  true,
		"a.tiff": true,
		"a.pdf":  false,
		"a.gif":  false,
		"a":      false,
	}
	for path, want := range cases {
		if got := IsSupportedPath(path); got != want {
			t.Fatalf("IsSupportedPath(%q) = %v, want %v", path, got, want)
		}
	}
}
