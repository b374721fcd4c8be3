// Package tesseract provides the default, locally-run recognition engine
// backed by the gosseract Tesseract bindings. No network or cloud service is
// involved.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"formscan/internal/recognize"
)

// Engine implements recognize.Engine using a gosseract client per call.
type Engine struct {
	clientFactory func() *gosseract.Client
}

// New constructs a Tesseract-backed recognition engine.
func New() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Available reports whether the Tesseract runtime and at least one trained
// language are installed on the host.
func (e *Engine) Available() error {
	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return fmt.Errorf("%w: %v", recognize.ErrEngineUnavailable, err)
	}
	if len(langs) == 0 {
		return fmt.Errorf("%w: no trained language data installed", recognize.ErrEngineUnavailable)
	}
	return nil
}

// Languages enumerates the trained language data installed on the host.
func (e *Engine) Languages() ([]string, error) {
	return gosseract.GetAvailableLanguages()
}

// Recognize performs OCR on a single raster.
func (e *Engine) Recognize(ctx context.Context, in recognize.Input) (recognize.Result, error) {
	select {
	case <-ctx.Done():
		return recognize.Result{}, ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.Image); err != nil {
		return recognize.Result{}, fmt.Errorf("set image: %w", err)
	}
	if in.Language != "" {
		if err := c.SetLanguage(in.Language); err != nil {
			// A language the client refuses means the trained data file is
			// absent, which is an installation problem, not a raster miss.
			return recognize.Result{}, fmt.Errorf("%w: language %q: %v", recognize.ErrEngineUnavailable, in.Language, err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return recognize.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return recognize.Result{}, fmt.Errorf("recognize text: %w", err)
	}

	lines, meanConf := extractLines(c)
	return recognize.Result{
		Text:           strings.TrimSpace(text),
		Lines:          lines,
		MeanConfidence: meanConf,
		Engine:         e.Name(),
	}, nil
}

func extractLines(c *gosseract.Client) ([]recognize.Line, float64) {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil || len(boxes) == 0 {
		return nil, 0
	}
	lines := make([]recognize.Line, 0, len(boxes))
	var sum float64
	for _, b := range boxes {
		conf := b.Confidence / 100.0
		sum += conf
		lines = append(lines, recognize.Line{
			Text:       strings.TrimRight(b.Word, "\n"),
			Bounds:     b.Box,
			Confidence: conf,
		})
	}
	return lines, sum / float64(len(lines))
}
