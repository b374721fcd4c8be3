// Package imageio loads scanned document images from storage and normalizes
// them into an in-memory raster the preprocessing stage can consume.
//
// Supported containers are PNG, JPEG and TIFF. PDFs are converted to images
// by an external utility before they reach this pipeline.
package imageio

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
)

// supportedExtensions maps recognized file extensions to the decoder format
// they are expected to contain.
var supportedExtensions = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".tif":  "tiff",
	".tiff": "tiff",
}

// IsSupportedPath reports whether the file extension belongs to a format the
// loader can decode. Used by the batch walker to filter directory entries.
func IsSupportedPath(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// DocumentImage is the raw decoded raster plus source metadata. It is
// immutable once loaded; ownership passes linearly to the preprocessor.
type DocumentImage struct {
	Raster     image.Image
	Width      int
	Height     int
	Format     string
	SourcePath string
}

// Load reads and decodes a document image from path.
//
// It fails with ErrUnsupportedFormat for unrecognized extensions or decoder
// mismatches, and with ErrUnreadableFile for missing, empty, or corrupt
// files. Decoded dimensions are validated to be non-zero.
func Load(path string) (*DocumentImage, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := supportedExtensions[ext]; !ok {
		return nil, fmt.Errorf("%w: extension %q (%s)", ErrUnsupportedFormat, ext, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableFile, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrUnreadableFile, path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrUnreadableFile, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableFile, path, err)
	}
	defer f.Close()

	raster, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrUnreadableFile, path, err)
	}

	bounds := raster.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: %s decoded to zero dimensions", ErrUnreadableFile, path)
	}

	return &DocumentImage{
		Raster:     raster,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Format:     format,
		SourcePath: path,
	}, nil
}

// Gray converts the raster to 8-bit grayscale. The original raster is left
// untouched; downstream stages operate on the returned copy.
func (d *DocumentImage) Gray() *image.Gray {
	if g, ok := d.Raster.(*image.Gray); ok {
		out := image.NewGray(g.Bounds())
		copy(out.Pix, g.Pix)
		return out
	}
	bounds := d.Raster.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x-bounds.Min.X, y-bounds.Min.Y, d.Raster.At(x, y))
		}
	}
	return gray
}
