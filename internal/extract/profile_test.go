package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validProfileJSON = `{
  "name": "receipt-jp",
  "version": 1,
  "rules": [
    {"field": "total", "pattern": "合計\\s*[\\d,]+円", "strategy": "first", "normalizer": "none"}
  ]
}`

func TestParseProfileValid(t *testing.T) {
	p, err := ParseProfile([]byte(validProfileJSON))
	if err != nil {
		t.Fatalf("ParseProfile() error = %v", err)
	}
	if p.Name != "receipt-jp" || p.Version != 1 || len(p.Rules) != 1 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.Rules[0].Field != "total" {
		t.Fatalf("unexpected rule: %+v", p.Rules[0])
	}
}

func TestParseProfileRejectsMalformedDocuments(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", `{{{`},
		{"missing name", `{"version": 1, "rules": [{"field": "a", "pattern": "x"}]}`},
		{"missing version", `{"name": "p", "rules": [{"field": "a", "pattern": "x"}]}`},
		{"no rules", `{"name": "p", "version": 1, "rules": []}`},
		{"bad strategy enum", `{"name": "p", "version": 1, "rules": [{"field": "a", "pattern": "x", "strategy": "middle"}]}`},
		{"bad normalizer enum", `{"name": "p", "version": 1, "rules": [{"field": "a", "pattern": "x", "normalizer": "upper"}]}`},
		{"unknown rule key", `{"name": "p", "version": 1, "rules": [{"field": "a", "pattern": "x", "extra": true}]}`},
		{"version zero", `{"name": "p", "version": 0, "rules": [{"field": "a", "pattern": "x"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseProfile([]byte(tc.data))
			if !errors.Is(err, ErrRuleProfileInvalid) {
				t.Fatalf("ParseProfile() error = %v, want ErrRuleProfileInvalid", err)
			}
		})
	}
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.json")
	if err := os.WriteFile(path, []byte(validProfileJSON), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if p.Name != "receipt-jp" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrRuleProfileInvalid) {
		t.Fatalf("LoadProfile() error = %v, want ErrRuleProfileInvalid", err)
	}
}

func TestDefaultProfileCompiles(t *testing.T) {
	p := DefaultProfile()
	if p.Name != "invoice-jp" {
		t.Fatalf("unexpected default profile name %q", p.Name)
	}
	if _, err := NewEngine(p); err != nil {
		t.Fatalf("default profile does not compile: %v", err)
	}
}
