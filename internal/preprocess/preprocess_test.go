package preprocess

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"formscan/internal/imageio"
)

// docFromGray wraps a grayscale raster the way the loader would.
func docFromGray(g *image.Gray) *imageio.DocumentImage {
	return &imageio.DocumentImage{
		Raster: g,
		Width:  g.Bounds().Dx(),
		Height: g.Bounds().Dy(),
	}
}

// textPage renders a white page with horizontal dark bars standing in for
// text lines.
func textPage(w, h int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = 245
	}
	for row := h / 5; row < h; row += h / 5 {
		for y := row; y < row+3 && y < h; y++ {
			for x := w / 10; x < w-w/10; x++ {
				g.SetGray(x, y, color.Gray{Y: 20})
			}
		}
	}
	return g
}

func meanAbsDiff(a, b *image.Gray) float64 {
	var sum float64
	for i := range a.Pix {
		sum += math.Abs(float64(a.Pix[i]) - float64(b.Pix[i]))
	}
	return sum / float64(len(a.Pix))
}

func TestRunDegenerateInput(t *testing.T) {
	_, err := Run(&imageio.DocumentImage{Width: 0, Height: 0}, DefaultOptions())
	if !errors.Is(err, ErrPreprocessingFailed) {
		t.Fatalf("Run() error = %v, want ErrPreprocessingFailed", err)
	}
	if _, err := Run(nil, DefaultOptions()); !errors.Is(err, ErrPreprocessingFailed) {
		t.Fatalf("Run(nil) error = %v, want ErrPreprocessingFailed", err)
	}
}

func TestRunNearIdentityWhenRepeated(t *testing.T) {
	opts := Options{Deskew: false, Denoise: DenoiseNone, ContrastBoost: 1.0, AutoCrop: false}

	first, err := Run(docFromGray(textPage(120, 120)), opts)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	second, err := Run(docFromGray(first.Gray), opts)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if second.Gray.Bounds() != first.Gray.Bounds() {
		t.Fatalf("bounds changed on second pass: %v vs %v", second.Gray.Bounds(), first.Gray.Bounds())
	}
	if diff := meanAbsDiff(first.Gray, second.Gray); diff > 3.0 {
		t.Fatalf("second pass changed pixels by %.2f on average, want near-identity", diff)
	}
}

func TestRunBlankImageFallsThrough(t *testing.T) {
	// Uniform white: no contrast to stretch, no ink to deskew or crop. Every
	// step must fall back without failing the pipeline.
	g := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range g.Pix {
		g.Pix[i] = 255
	}

	pre, err := Run(docFromGray(g), Options{Deskew: true, Denoise: DenoiseNone, ContrastBoost: 1.0, AutoCrop: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if pre.Gray.Bounds().Dx() != 64 || pre.Gray.Bounds().Dy() != 64 {
		t.Fatalf("blank image was cropped: %v", pre.Gray.Bounds())
	}
	if pre.Applied.CropBounds != nil {
		t.Fatalf("crop recorded for blank image: %v", pre.Applied.CropBounds)
	}
	if pre.Applied.RotationAngle != 0 {
		t.Fatalf("rotation recorded for blank image: %v", pre.Applied.RotationAngle)
	}
}

func TestRunAutoCropToContent(t *testing.T) {
	// White page with a dark block covering ~16% of the frame.
	g := image.NewGray(image.Rect(0, 0, 100, 100))
	for i := range g.Pix {
		g.Pix[i] = 250
	}
	for y := 40; y < 80; y++ {
		for x := 30; x < 70; x++ {
			g.SetGray(x, y, color.Gray{Y: 10})
		}
	}

	pre, err := Run(docFromGray(g), Options{AutoCrop: true, Denoise: DenoiseNone})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if pre.Applied.CropBounds == nil {
		t.Fatalf("expected crop to be applied")
	}
	if pre.Gray.Bounds().Dx() >= 100 || pre.Gray.Bounds().Dy() >= 100 {
		t.Fatalf("crop did not shrink raster: %v", pre.Gray.Bounds())
	}
	// The dark block must survive the crop.
	b := pre.Gray.Bounds()
	center := pre.Gray.GrayAt(b.Dx()/2, b.Dy()/2).Y
	if center > 128 {
		t.Fatalf("content lost after crop, center luminance %d", center)
	}
}

func TestRunAlignedPageNotRotated(t *testing.T) {
	pre, err := Run(docFromGray(textPage(160, 160)), Options{Deskew: true, Denoise: DenoiseNone, ContrastBoost: 1.0})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if math.Abs(pre.Applied.RotationAngle) > 1.0 {
		t.Fatalf("aligned page rotated by %.2f degrees", pre.Applied.RotationAngle)
	}
}

func TestDetectSkewAngleFindsRotation(t *testing.T) {
	// Rotate a clean page by a known angle, then expect detection to
	// recover roughly the same angle.
	const skew = 4.0
	rotated := rotate(textPage(200, 200), skew)

	got, ok := detectSkewAngle(rotated)
	if !ok {
		t.Fatalf("no angle detected")
	}
	if math.Abs(got-skew) > 1.0 {
		t.Fatalf("detected %.2f degrees, want about %.1f", got, skew)
	}
}

func TestDeskewCapRespected(t *testing.T) {
	// The search range itself enforces the cap; any detected angle must be
	// inside it.
	g := rotate(textPage(200, 200), 12)
	angle, ok := detectSkewAngle(g)
	if ok && math.Abs(angle) > maxSkewDegrees {
		t.Fatalf("detected angle %.2f exceeds cap %.1f", angle, maxSkewDegrees)
	}
}

func TestLuminanceThreshold(t *testing.T) {
	// Mostly bright page: threshold should land near the top of the search
	// range, well above the floor.
	g := textPage(100, 100)
	if th := luminanceThreshold(g); th < 150 {
		t.Fatalf("threshold %d too low for a bright page", th)
	}

	// All-dark raster: nothing bright enough, falls to the floor.
	dark := image.NewGray(image.Rect(0, 0, 10, 10))
	if th := luminanceThreshold(dark); th != 100 {
		t.Fatalf("threshold %d, want floor 100", th)
	}
}

func TestParseStrength(t *testing.T) {
	for in, want := range map[string]Strength{
		"":           DenoiseNone,
		"none":       DenoiseNone,
		"light":      DenoiseLight,
		"aggressive": DenoiseAggressive,
	} {
		got, err := ParseStrength(in)
		if err != nil || got != want {
			t.Fatalf("ParseStrength(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseStrength("extreme"); err == nil {
		t.Fatalf("ParseStrength accepted unknown strength")
	}
}
