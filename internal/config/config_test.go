package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Language != "jpn" {
		t.Fatalf("Language = %q, want jpn", cfg.Language)
	}
	if cfg.OCRTimeoutSeconds != 120 {
		t.Fatalf("OCRTimeoutSeconds = %d, want 120", cfg.OCRTimeoutSeconds)
	}
	if !cfg.EmitText || !cfg.EmitRecord || cfg.EmitRawResult {
		t.Fatalf("artifact toggles = %v/%v/%v", cfg.EmitText, cfg.EmitRawResult, cfg.EmitRecord)
	}
	if cfg.Denoise != "light" {
		t.Fatalf("Denoise = %q, want light", cfg.Denoise)
	}
	if cfg.Workers != 1 {
		t.Fatalf("Workers = %d, want 1", cfg.Workers)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FORMSCAN_INPUT_DIR", "/data/in")
	t.Setenv("FORMSCAN_LANGUAGE", "eng")
	t.Setenv("FORMSCAN_WORKERS", "4")
	t.Setenv("FORMSCAN_DENOISE", "aggressive")
	t.Setenv("FORMSCAN_EMIT_RAW_RESULT", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.InputDir != "/data/in" {
		t.Fatalf("InputDir = %q", cfg.InputDir)
	}
	if cfg.Language != "eng" {
		t.Fatalf("Language = %q", cfg.Language)
	}
	if cfg.Workers != 4 {
		t.Fatalf("Workers = %d", cfg.Workers)
	}
	if cfg.Denoise != "aggressive" {
		t.Fatalf("Denoise = %q", cfg.Denoise)
	}
	if !cfg.EmitRawResult {
		t.Fatalf("EmitRawResult = false, want true")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad denoise", "FORMSCAN_DENOISE", "extreme"},
		{"zero workers", "FORMSCAN_WORKERS", "0"},
		{"zero timeout", "FORMSCAN_OCR_TIMEOUT_SECONDS", "0"},
		{"negative contrast", "FORMSCAN_CONTRAST_BOOST", "-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() accepted %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestMalformedNumbersFallBackToDefaults(t *testing.T) {
	t.Setenv("FORMSCAN_WORKERS", "not-a-number")
	t.Setenv("FORMSCAN_CONTRAST_BOOST", "wide")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != 1 {
		t.Fatalf("Workers = %d, want default 1", cfg.Workers)
	}
	if cfg.ContrastBoost != 1.0 {
		t.Fatalf("ContrastBoost = %v, want default 1.0", cfg.ContrastBoost)
	}
}
