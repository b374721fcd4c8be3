// Package batch iterates a directory of document images and runs each
// through the full pipeline. Documents share no mutable state, so they are
// processed in parallel across a bounded worker group; one corrupt or
// pathological image fails only its own entry, never the batch.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"formscan/internal/extract"
	"formscan/internal/imageio"
	"formscan/internal/logger"
	"formscan/internal/output"
	"formscan/internal/preprocess"
	"formscan/internal/recognize"
)

// ItemStatus marks one batch entry's outcome.
type ItemStatus string

const (
	StatusSucceeded ItemStatus = "succeeded"
	StatusFailed    ItemStatus = "failed"
)

// Item is the per-document entry of the batch summary.
type Item struct {
	File      string     `json:"file"`
	Status    ItemStatus `json:"status"`
	ErrorKind string     `json:"error_kind,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Summary reports the batch outcome: exact-failure reporting per item, best
// effort across the set.
type Summary struct {
	RunID      string    `json:"run_id"`
	Profile    string    `json:"profile"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Total      int       `json:"total"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Items      []Item    `json:"items"`
}

// Processor wires the five pipeline stages together. All fields are
// read-only once constructed, so one Processor serves concurrent workers.
type Processor struct {
	Recognizer *recognize.Recognizer
	Extractor  *extract.Engine
	Writer     *output.Writer
	Preprocess preprocess.Options
	Workers    int

	log zerolog.Logger
}

// New constructs a batch Processor.
func New(rec *recognize.Recognizer, ext *extract.Engine, w *output.Writer, pre preprocess.Options, workers int) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		Recognizer: rec,
		Extractor:  ext,
		Writer:     w,
		Preprocess: pre,
		Workers:    workers,
		log:        logger.WithComponent("batch"),
	}
}

// Run processes every supported image under inputDir and returns the batch
// summary. Per-document errors are captured in the summary; Run itself only
// fails when the input directory cannot be walked.
func (p *Processor) Run(ctx context.Context, inputDir string) (*Summary, error) {
	files, err := collectInputs(inputDir)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:     uuid.NewString(),
		Profile:   p.Extractor.Profile().Name,
		StartedAt: time.Now().UTC(),
		Total:     len(files),
		Items:     make([]Item, len(files)),
	}

	p.log.Info().
		Str("run_id", summary.RunID).
		Str("input_dir", inputDir).
		Int("documents", len(files)).
		Int("workers", p.Workers).
		Msg("Starting batch run")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Workers)
	for i, file := range files {
		g.Go(func() error {
			item := Item{File: filepath.Base(file), Status: StatusSucceeded}
			if err := p.ProcessDocument(gctx, file); err != nil {
				item.Status = StatusFailed
				item.ErrorKind = errorKind(err)
				item.Error = err.Error()
				p.log.Warn().
					Str("file", file).
					Str("error_kind", item.ErrorKind).
					Err(err).
					Msg("Document failed")
			}
			summary.Items[i] = item
			return nil
		})
	}
	// Workers report failures through the summary, never through the group.
	_ = g.Wait()

	summary.FinishedAt = time.Now().UTC()
	for _, item := range summary.Items {
		if item.Status == StatusSucceeded {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	p.log.Info().
		Str("run_id", summary.RunID).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Dur("duration", summary.FinishedAt.Sub(summary.StartedAt)).
		Msg("Batch run finished")

	return summary, nil
}

// ProcessDocument runs one file through loader, preprocessor, recognizer,
// extraction engine and output writer. A panic in any stage is converted to
// an error so a single document cannot take down the batch.
func (p *Processor) ProcessDocument(ctx context.Context, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("document processing panicked: %v", r)
		}
	}()

	doc, err := imageio.Load(path)
	if err != nil {
		return err
	}

	pre, err := preprocess.Run(doc, p.Preprocess)
	if err != nil {
		return err
	}

	result, err := p.Recognizer.Recognize(ctx, pre)
	if err != nil {
		return err
	}

	record := p.Extractor.Extract(result.Text)

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := p.Writer.WriteArtifacts(stem, record, result); err != nil {
		return fmt.Errorf("writing artifacts: %w", err)
	}
	return nil
}

// collectInputs lists the supported image files directly under dir in
// lexical order. Hidden files are skipped.
func collectInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !imageio.IsSupportedPath(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// errorKind maps a pipeline error to the stable kind name recorded in the
// batch summary.
func errorKind(err error) string {
	switch {
	case errors.Is(err, imageio.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, imageio.ErrUnreadableFile):
		return "unreadable_file"
	case errors.Is(err, preprocess.ErrPreprocessingFailed):
		return "preprocessing_failed"
	case errors.Is(err, recognize.ErrRecognitionTimeout):
		return "recognition_timeout"
	case errors.Is(err, recognize.ErrEngineUnavailable):
		return "engine_unavailable"
	case errors.Is(err, fs.ErrPermission):
		return "permission_denied"
	default:
		return "processing_failed"
	}
}
