// Package recognize shapes the invocation of an external text-recognition
// engine: raster encoding, timeout policy, line-break normalization, and an
// installation self-check. The recognition algorithm itself lives behind the
// Engine interface so alternate engines can be substituted without touching
// the extraction stage.
package recognize

import (
	"context"
	"image"
)

// Input encapsulates a single raster submitted for recognition.
type Input struct {
	// Image is the PNG-encoded raster payload.
	Image []byte

	// Language is the trained-data hint for the engine (e.g. "jpn", "eng").
	Language string

	// DPI carries the effective dots-per-inch; zero means unknown.
	DPI int
}

// Line is one recognized text line with its position and confidence.
type Line struct {
	Text       string          `json:"text"`
	Bounds     image.Rectangle `json:"bounds"`
	Confidence float64         `json:"confidence"`
}

// Result captures the engine output for a single raster. An empty Text is a
// valid outcome meaning no text was found, not an error.
type Result struct {
	// Text is the full recognized text with line breaks normalized to "\n".
	Text string `json:"text"`

	// Lines holds the ordered line segments when the engine reports them.
	Lines []Line `json:"lines,omitempty"`

	// MeanConfidence is the engine's average confidence in [0, 1].
	MeanConfidence float64 `json:"mean_confidence"`

	// Engine names the engine that produced the result.
	Engine string `json:"engine"`
}

// Engine is the capability interface for text-recognition engines:
// recognize text in a raster, optionally segmented into lines.
type Engine interface {
	// Name identifies the engine implementation.
	Name() string

	// Recognize extracts text from the input raster.
	Recognize(ctx context.Context, in Input) (Result, error)

	// Available reports whether the engine can be invoked at all. A non-nil
	// error means the runtime or its data files are missing, not that a
	// particular raster failed.
	Available() error
}

// LanguageLister is implemented by engines that can enumerate the trained
// language data installed on the host.
type LanguageLister interface {
	Languages() ([]string, error)
}
