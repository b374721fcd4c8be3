package recognize

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"formscan/internal/logger"
	"formscan/internal/preprocess"
)

// Config holds the recognizer invocation policy. It is passed explicitly to
// the constructor rather than read from process-wide state so tests can
// inject doubles and batches can run parallel profiles.
type Config struct {
	// Language is the trained-data hint, defaulting to Japanese which is the
	// primary script of the supported form layouts.
	Language string

	// Timeout bounds a single recognition call so one pathological raster
	// cannot stall a whole batch.
	Timeout time.Duration

	// DPI is forwarded to the engine for layout heuristics; zero omits it.
	DPI int
}

// DefaultConfig returns the recognizer defaults.
func DefaultConfig() Config {
	return Config{
		Language: "jpn",
		Timeout:  2 * time.Minute,
		DPI:      300,
	}
}

// Recognizer invokes a text-recognition Engine over preprocessed rasters.
type Recognizer struct {
	engine Engine
	cfg    Config
	log    zerolog.Logger
}

// New constructs a Recognizer around the given engine.
func New(engine Engine, cfg Config) *Recognizer {
	if cfg.Language == "" {
		cfg.Language = "jpn"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Recognizer{
		engine: engine,
		cfg:    cfg,
		log:    logger.WithComponent("recognize"),
	}
}

// Recognize runs the engine over the preprocessed raster and shapes the
// result: line breaks are normalized to "\n" and an empty recognition is
// surfaced as an empty string rather than an error.
func (r *Recognizer) Recognize(ctx context.Context, pre *preprocess.PreprocessedImage) (*Result, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, pre.Gray); err != nil {
		return nil, &RecognitionError{Op: "Recognize", Err: err, Details: "encoding raster"}
	}

	in := Input{
		Image:    buf.Bytes(),
		Language: r.cfg.Language,
		DPI:      r.cfg.DPI,
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	result, err := r.invoke(ctx, in)
	if err != nil {
		return nil, err
	}

	result.Text = NormalizeLineBreaks(result.Text)
	result.Engine = r.engine.Name()

	r.log.Debug().
		Str("engine", result.Engine).
		Int("text_length", len(result.Text)).
		Float64("mean_confidence", result.MeanConfidence).
		Dur("duration", time.Since(start)).
		Msg("Recognition completed")

	return &result, nil
}

// invoke runs the engine call in its own goroutine so the deadline is
// honored even when the engine itself does not observe the context.
func (r *Recognizer) invoke(ctx context.Context, in Input) (Result, error) {
	type outcome struct {
		result Result
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		res, err := r.engine.Recognize(ctx, in)
		ch <- outcome{res, err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				return Result{}, &RecognitionError{Op: "Recognize", Err: ErrRecognitionTimeout}
			}
			return Result{}, &RecognitionError{Op: "Recognize", Err: out.err}
		}
		return out.result, nil
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return Result{}, &RecognitionError{Op: "Recognize", Err: ErrRecognitionTimeout}
		}
		return Result{}, &RecognitionError{Op: "Recognize", Err: ctx.Err()}
	}
}

// NormalizeLineBreaks converts CRLF and bare CR to LF and strips trailing
// blank lines, so downstream rules see one convention regardless of the
// engine's native formatting.
func NormalizeLineBreaks(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimRight(text, "\n \t")
}
