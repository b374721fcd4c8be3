package recognize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Check is one self-check item with its outcome.
type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// Report aggregates the self-check items.
type Report struct {
	Engine string  `json:"engine"`
	Checks []Check `json:"checks"`
}

// Passed reports whether every check succeeded.
func (r *Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// SelfCheck verifies that the engine is installed, that the requested
// language data is available, and that a minimal round-trip recognition
// works. It is a diagnostic run before batch processing begins; failures
// are reported in the Report, never panicked.
func SelfCheck(ctx context.Context, engine Engine, language string) *Report {
	report := &Report{Engine: engine.Name()}

	availErr := engine.Available()
	report.Checks = append(report.Checks, check("engine installation", availErr))
	if availErr != nil {
		return report
	}

	report.Checks = append(report.Checks, check(
		fmt.Sprintf("language data (%s)", language),
		checkLanguage(engine, language),
	))

	report.Checks = append(report.Checks, check("round-trip recognition", roundTrip(ctx, engine)))

	return report
}

func check(name string, err error) Check {
	if err != nil {
		return Check{Name: name, OK: false, Detail: err.Error()}
	}
	return Check{Name: name, OK: true}
}

func checkLanguage(engine Engine, language string) error {
	lister, ok := engine.(LanguageLister)
	if !ok {
		// Engines without enumeration will surface missing data at
		// recognition time instead.
		return nil
	}
	langs, err := lister.Languages()
	if err != nil {
		return fmt.Errorf("listing languages: %w", err)
	}
	for _, l := range langs {
		if l == language {
			return nil
		}
	}
	return fmt.Errorf("trained data for %q not installed (available: %s)", language, strings.Join(langs, ", "))
}

// roundTrip renders a known ASCII string onto a white raster and checks the
// engine reads it back. ASCII is used so the probe works with only the
// default trained data installed.
func roundTrip(ctx context.Context, engine Engine) error {
	const probe = "FORMSCAN OK"

	img := image.NewRGBA(image.Rect(0, 0, 320, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(16, 46),
	}
	d.DrawString(probe)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encoding probe raster: %w", err)
	}

	res, err := engine.Recognize(ctx, Input{Image: buf.Bytes(), Language: "eng", DPI: 300})
	if err != nil {
		return fmt.Errorf("probe recognition: %w", err)
	}
	got := strings.ToUpper(res.Text)
	if !strings.Contains(got, "FORMSCAN") {
		return fmt.Errorf("probe text not recognized (got %q)", res.Text)
	}
	return nil
}
