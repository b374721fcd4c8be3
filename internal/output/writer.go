// Package output serializes pipeline artifacts to persistent storage. Each
// artifact kind has an independent toggle, every write is all-or-nothing,
// and the failure of one artifact never blocks the others.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"formscan/internal/extract"
	"formscan/internal/logger"
	"formscan/internal/recognize"
)

// Writer emits the artifacts selected by its toggles into Dir.
type Writer struct {
	Dir string

	// Text emits <stem>.txt with the raw recognized text.
	Text bool
	// RawResult emits <stem>.ocr.json with the full engine response.
	RawResult bool
	// Record emits <stem>.json with the structured record.
	Record bool

	log zerolog.Logger
}

// New constructs a Writer for the given directory and artifact toggles.
func New(dir string, text, rawResult, record bool) *Writer {
	return &Writer{
		Dir:       dir,
		Text:      text,
		RawResult: rawResult,
		Record:    record,
		log:       logger.WithComponent("output"),
	}
}

// WriteArtifacts serializes the enabled artifacts for one document. Each
// artifact is attempted independently; the joined error reports every
// failed artifact without hiding successful siblings.
func (w *Writer) WriteArtifacts(stem string, record *extract.Record, result *recognize.Result) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	var errs []error

	if w.Text && result != nil {
		if err := w.writeAtomic(stem+".txt", []byte(result.Text)); err != nil {
			errs = append(errs, fmt.Errorf("text artifact: %w", err))
		}
	}

	if w.RawResult && result != nil {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			errs = append(errs, fmt.Errorf("raw result artifact: %w", err))
		} else if err := w.writeAtomic(stem+".ocr.json", data); err != nil {
			errs = append(errs, fmt.Errorf("raw result artifact: %w", err))
		}
	}

	if w.Record && record != nil {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			errs = append(errs, fmt.Errorf("record artifact: %w", err))
		} else if err := w.writeAtomic(stem+".json", data); err != nil {
			errs = append(errs, fmt.Errorf("record artifact: %w", err))
		}
	}

	return errors.Join(errs...)
}

// WriteJSON serializes v as indented JSON to name inside the writer's
// directory, atomically.
func (w *Writer) WriteJSON(name string, v any) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return w.writeAtomic(name, data)
}

// writeAtomic writes data to a temporary file in the target directory and
// renames it into place, so readers never observe a partial artifact.
func (w *Writer) writeAtomic(name string, data []byte) error {
	target := filepath.Join(w.Dir, name)

	tmp, err := os.CreateTemp(w.Dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		return err
	}

	w.log.Debug().
		Str("artifact", target).
		Int("bytes", len(data)).
		Msg("Artifact written")
	return nil
}
