package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"formscan/internal/batch"
	"formscan/internal/config"
	"formscan/internal/extract"
	"formscan/internal/output"
	"formscan/internal/preprocess"
	"formscan/internal/recognize"
	"formscan/internal/recognize/tesseract"
)

// buildProcessor assembles the pipeline from configuration: rule profile,
// recognition engine, preprocessing options, artifact writer. Configuration
// problems (invalid profile, unavailable engine) fail here, before any
// document is touched.
func buildProcessor(cfg *config.Config, log zerolog.Logger) (*batch.Processor, error) {
	profile, err := loadProfile(cfg)
	if err != nil {
		return nil, err
	}
	extractor, err := extract.NewEngine(profile)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("profile", profile.Name).
		Int("rules", len(profile.Rules)).
		Msg("Rule profile loaded")

	engine := tesseract.New()
	if err := engine.Available(); err != nil {
		return nil, fmt.Errorf("recognition engine check failed: %w", err)
	}

	recognizer := recognize.New(engine, recognize.Config{
		Language: cfg.Language,
		Timeout:  time.Duration(cfg.OCRTimeoutSeconds) * time.Second,
		DPI:      cfg.OCRDPI,
	})

	denoise, err := preprocess.ParseStrength(cfg.Denoise)
	if err != nil {
		return nil, err
	}
	preOpts := preprocess.Options{
		Deskew:        cfg.Deskew,
		Denoise:       denoise,
		ContrastBoost: cfg.ContrastBoost,
		AutoCrop:      cfg.AutoCrop,
	}

	writer := output.New(cfg.OutputDir, cfg.EmitText, cfg.EmitRawResult, cfg.EmitRecord)

	return batch.New(recognizer, extractor, writer, preOpts, cfg.Workers), nil
}

func loadProfile(cfg *config.Config) (*extract.Profile, error) {
	if cfg.ProfilePath == "" {
		return extract.DefaultProfile(), nil
	}
	return extract.LoadProfile(cfg.ProfilePath)
}

// signalContext returns a context canceled on SIGINT/SIGTERM so an
// interrupted run stops scheduling new documents.
func signalContext(log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling processing")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
