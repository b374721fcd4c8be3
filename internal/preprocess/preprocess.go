// Package preprocess corrects a loaded document raster before recognition:
// contrast normalization, smoothing, rotational deskew and optional cropping
// to the detected document region.
//
// Every correction is expressed as a row in an explicit step table. A step
// that cannot be applied falls back to the previous raster instead of
// failing, so the stage always produces some image. The only hard failure is
// a degenerate zero-area input.
package preprocess

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"formscan/internal/imageio"
	"formscan/internal/logger"
)

// ErrPreprocessingFailed is returned only for unrecoverable input, such as a
// zero-area raster. Every other condition degrades to reduced correction.
var ErrPreprocessingFailed = errors.New("preprocessing failed")

// Applied records which corrections were performed on a raster.
type Applied struct {
	RotationAngle float64          `json:"rotation_angle"`
	CropBounds    *image.Rectangle `json:"crop_bounds,omitempty"`
	Filters       []string         `json:"filters"`
}

// PreprocessedImage is the corrected grayscale raster plus the record of
// applied corrections. It is never mutated after creation.
type PreprocessedImage struct {
	Gray    *image.Gray
	Applied Applied
}

// step is one row of the correction decision table: a named corrective
// action and the condition under which it runs. When apply reports an error
// the previous raster is kept.
type step struct {
	name    string
	enabled bool
	apply   func(*image.Gray, *Applied) (*image.Gray, error)
}

// Run derives a PreprocessedImage from a DocumentImage.
func Run(src *imageio.DocumentImage, opts Options) (*PreprocessedImage, error) {
	if src == nil || src.Width == 0 || src.Height == 0 {
		return nil, fmt.Errorf("%w: zero-area input image", ErrPreprocessingFailed)
	}
	log := logger.WithComponent("preprocess")

	gray := src.Gray()
	applied := Applied{Filters: []string{"grayscale"}}

	steps := []step{
		{
			name:    "contrast",
			enabled: opts.ContrastBoost > 0,
			apply: func(g *image.Gray, _ *Applied) (*image.Gray, error) {
				return contrastStretch(g, opts.ContrastBoost)
			},
		},
		{
			name:    "denoise",
			enabled: opts.Denoise != DenoiseNone,
			apply: func(g *image.Gray, _ *Applied) (*image.Gray, error) {
				passes := 1
				if opts.Denoise == DenoiseAggressive {
					passes = 2
				}
				return boxBlur(g, passes), nil
			},
		},
		{
			name:    "deskew",
			enabled: opts.Deskew,
			apply: func(g *image.Gray, a *Applied) (*image.Gray, error) {
				angle, ok := detectSkewAngle(g)
				if !ok {
					return nil, errors.New("no text-line orientation detected")
				}
				if angle == 0 {
					return g, nil
				}
				a.RotationAngle = -angle
				return rotate(g, -angle), nil
			},
		},
		{
			name:    "crop",
			enabled: opts.AutoCrop,
			apply: func(g *image.Gray, a *Applied) (*image.Gray, error) {
				cropped, bounds, ok := cropToContent(g)
				if !ok {
					return nil, errors.New("no qualifying content region")
				}
				a.CropBounds = &bounds
				return cropped, nil
			},
		},
	}

	for _, s := range steps {
		if !s.enabled {
			continue
		}
		next, err := s.apply(gray, &applied)
		if err != nil {
			log.Debug().
				Str("step", s.name).
				Err(err).
				Msg("Correction step fell back to previous raster")
			continue
		}
		gray = next
		applied.Filters = append(applied.Filters, s.name)
	}

	return &PreprocessedImage{Gray: gray, Applied: applied}, nil
}

// luminanceThreshold finds the largest threshold t in [100, 200] such that
// at least 20% of the pixels are brighter than t. Scanned forms are mostly
// paper, so the bright side of the histogram anchors the binarization.
func luminanceThreshold(g *image.Gray) uint8 {
	var hist [256]int
	for _, p := range g.Pix {
		hist[p]++
	}
	need := len(g.Pix) / 5
	brighter := 0
	for i := 202; i < 256; i++ {
		brighter += hist[i]
	}
	for t := 200; t >= 100; t-- {
		brighter += hist[t+1]
		if brighter >= need {
			return uint8(t)
		}
	}
	return 100
}

// contrastStretch linearly maps the 1st..99th luminance percentiles onto the
// full 8-bit range. A boost other than 1 applies extra gain around mid-gray.
func contrastStretch(g *image.Gray, boost float64) (*image.Gray, error) {
	var hist [256]int
	for _, p := range g.Pix {
		hist[p]++
	}
	total := len(g.Pix)
	if total == 0 {
		return nil, errors.New("empty raster")
	}

	lo, hi := percentile(hist[:], total, 0.01), percentile(hist[:], total, 0.99)
	if hi <= lo {
		return nil, errors.New("flat histogram")
	}

	scale := 255.0 / float64(hi-lo)
	var lut [256]uint8
	for i := range lut {
		v := (float64(i) - float64(lo)) * scale
		if boost != 1.0 {
			v = 128 + (v-128)*boost
		}
		lut[i] = clamp8(v)
	}

	out := image.NewGray(g.Bounds())
	for i, p := range g.Pix {
		out.Pix[i] = lut[p]
	}
	return out, nil
}

func percentile(hist []int, total int, q float64) int {
	target := int(float64(total) * q)
	acc := 0
	for i, n := range hist {
		acc += n
		if acc >= target {
			return i
		}
	}
	return len(hist) - 1
}

// boxBlur applies a 3x3 mean filter the given number of passes.
func boxBlur(g *image.Gray, passes int) *image.Gray {
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	src := g
	for pass := 0; pass < passes; pass++ {
		out := image.NewGray(src.Bounds())
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				var sum, n int
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						xx, yy := x+dx, y+dy
						if xx < 0 || yy < 0 || xx >= w || yy >= h {
							continue
						}
						sum += int(src.GrayAt(xx, yy).Y)
						n++
					}
				}
				out.SetGray(x, y, color.Gray{Y: uint8(sum / n)})
			}
		}
		src = out
	}
	return src
}

// cropToContent finds the bounding box of dark (ink) content and crops to it
// with a small margin. The crop is taken only when the detected region
// covers between 5% and 98% of the frame; anything else passes through so
// the pipeline never loses the page.
func cropToContent(g *image.Gray) (*image.Gray, image.Rectangle, bool) {
	threshold := luminanceThreshold(g)
	w, h := g.Bounds().Dx(), g.Bounds().Dy()

	minX, minY, maxX, maxY := w, h, -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if g.GrayAt(x, y).Y < threshold {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if maxX < 0 {
		return nil, image.Rectangle{}, false
	}

	const margin = 8
	rect := image.Rect(
		max(0, minX-margin),
		max(0, minY-margin),
		min(w, maxX+1+margin),
		min(h, maxY+1+margin),
	)
	areaRatio := float64(rect.Dx()*rect.Dy()) / float64(w*h)
	if areaRatio < 0.05 || areaRatio > 0.98 {
		return nil, image.Rectangle{}, false
	}

	out := image.NewGray(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := 0; y < rect.Dy(); y++ {
		srcOff := (rect.Min.Y+y)*g.Stride + rect.Min.X
		copy(out.Pix[y*out.Stride:y*out.Stride+rect.Dx()], g.Pix[srcOff:srcOff+rect.Dx()])
	}
	return out, rect, true
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
