package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("a missing file is not an error: %v", err)
	}

	a := cfg.Analysis
	if a.SamplePages != 3 || a.FullPages != 10 || a.SampleCharLimit != 1000 {
		t.Errorf("unexpected extraction defaults %+v", a)
	}
	if a.QuickMinChars != 30 || a.FullMinChars != 50 || a.PodcastMinChars != 100 {
		t.Errorf("unexpected threshold defaults %+v", a)
	}
	if a.RelatedCount != 5 {
		t.Errorf("unexpected related count %d", a.RelatedCount)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestTOMLFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsense.toml")
	data := `
port = "9999"

[backend]
url = "http://backend:8000"
timeout = "45s"

[analysis]
quick_min_chars = 40
full_min_chars = 60
podcast_min_chars = 120
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "9999" {
		t.Errorf("expected port 9999, got %q", cfg.Port)
	}
	if cfg.Backend.URL != "http://backend:8000" {
		t.Errorf("unexpected backend url %q", cfg.Backend.URL)
	}
	if cfg.Backend.Timeout.Seconds() != 45 {
		t.Errorf("unexpected timeout %v", cfg.Backend.Timeout)
	}
	if cfg.Analysis.QuickMinChars != 40 {
		t.Errorf("expected quick threshold 40, got %d", cfg.Analysis.QuickMinChars)
	}
	// Untouched keys keep defaults.
	if cfg.Analysis.SamplePages != 3 {
		t.Errorf("expected default sample pages, got %d", cfg.Analysis.SamplePages)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsense.toml")
	if err := os.WriteFile(path, []byte(`port = "9999"`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "7001")
	t.Setenv("QUICK_MIN_CHARS", "35")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "7001" {
		t.Errorf("env must win over file, got port %q", cfg.Port)
	}
	if cfg.Analysis.QuickMinChars != 35 {
		t.Errorf("env must win, got quick threshold %d", cfg.Analysis.QuickMinChars)
	}
}

func TestMalformedFileReportedButNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsense.toml")
	if err := os.WriteFile(path, []byte(`port = not quoted`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "7002")

	cfg, err := Load(path)
	if err == nil {
		t.Fatal("expected decode error for malformed file")
	}
	// The broken file is discarded; defaults and env still apply.
	if cfg.Port != "7002" {
		t.Errorf("expected env port 7002, got %q", cfg.Port)
	}
	if cfg.Analysis.QuickMinChars != 30 {
		t.Errorf("expected default quick threshold, got %d", cfg.Analysis.QuickMinChars)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("fallback config must validate: %v", err)
	}
}

func TestValidate_ThresholdOrdering(t *testing.T) {
	cfg := Default()
	cfg.Analysis.QuickMinChars = 80
	cfg.Analysis.FullMinChars = 50
	cfg.Analysis.PodcastMinChars = 100

	if err := cfg.Validate(); err == nil {
		t.Error("expected ordering error for quick >= full")
	}
}

func TestValidate_PageCapOrdering(t *testing.T) {
	cfg := Default()
	cfg.Analysis.SamplePages = 12
	cfg.Analysis.FullPages = 10

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for sample cap above full cap")
	}
}
