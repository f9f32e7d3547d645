package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Port string `toml:"port"`

	// Service auth. Empty disables the auth middleware.
	APIKey string `toml:"api_key"`

	Backend  BackendConfig  `toml:"backend"`
	Analysis AnalysisConfig `toml:"analysis"`
}

// BackendConfig points at the document-intelligence backend.
type BackendConfig struct {
	URL     string   `toml:"url"`
	Timeout duration `toml:"timeout"`
}

// AnalysisConfig holds the extraction budgets and text thresholds.
// Defaults mirror the observed behavior; only the relative ordering
// of the three minimums is load-bearing.
type AnalysisConfig struct {
	SamplePages     int `toml:"sample_pages"`
	FullPages       int `toml:"full_pages"`
	SampleCharLimit int `toml:"sample_char_limit"`
	QuickMinChars   int `toml:"quick_min_chars"`
	FullMinChars    int `toml:"full_min_chars"`
	PodcastMinChars int `toml:"podcast_min_chars"`
	RelatedCount    int `toml:"related_count"`
}

// duration lets TOML carry values like "30s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Port: "8090",
		Backend: BackendConfig{
			URL:     "http://localhost:8000",
			Timeout: duration{30 * time.Second},
		},
		Analysis: AnalysisConfig{
			SamplePages:     3,
			FullPages:       10,
			SampleCharLimit: 1000,
			QuickMinChars:   30,
			FullMinChars:    50,
			PodcastMinChars: 100,
			RelatedCount:    5,
		},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
// A malformed config file is reported through the returned error but
// does not stop loading; the service then runs on defaults plus env,
// and the caller decides how loudly to complain.
func Load(path string) (Config, error) {
	cfg := Default()

	var decodeErr error
	if path == "" {
		path = "docsense.toml"
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			decodeErr = fmt.Errorf("decode config file %s: %w", path, err)
			// Drop any half-decoded state.
			cfg = Default()
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("DOCSENSE_API_KEY", cfg.APIKey)
	cfg.Backend.URL = envOr("BACKEND_URL", cfg.Backend.URL)
	cfg.Backend.Timeout.Duration = envDuration("BACKEND_TIMEOUT", cfg.Backend.Timeout.Duration)

	cfg.Analysis.SamplePages = envInt("SAMPLE_PAGES", cfg.Analysis.SamplePages)
	cfg.Analysis.FullPages = envInt("FULL_PAGES", cfg.Analysis.FullPages)
	cfg.Analysis.SampleCharLimit = envInt("SAMPLE_CHAR_LIMIT", cfg.Analysis.SampleCharLimit)
	cfg.Analysis.QuickMinChars = envInt("QUICK_MIN_CHARS", cfg.Analysis.QuickMinChars)
	cfg.Analysis.FullMinChars = envInt("FULL_MIN_CHARS", cfg.Analysis.FullMinChars)
	cfg.Analysis.PodcastMinChars = envInt("PODCAST_MIN_CHARS", cfg.Analysis.PodcastMinChars)
	cfg.Analysis.RelatedCount = envInt("RELATED_COUNT", cfg.Analysis.RelatedCount)

	def := Default().Analysis
	if cfg.Analysis.SamplePages <= 0 {
		cfg.Analysis.SamplePages = def.SamplePages
	}
	if cfg.Analysis.FullPages <= 0 {
		cfg.Analysis.FullPages = def.FullPages
	}
	if cfg.Analysis.SampleCharLimit <= 0 {
		cfg.Analysis.SampleCharLimit = def.SampleCharLimit
	}
	if cfg.Analysis.RelatedCount <= 0 {
		cfg.Analysis.RelatedCount = def.RelatedCount
	}
	if cfg.Backend.Timeout.Duration <= 0 {
		cfg.Backend.Timeout.Duration = 30 * time.Second
	}

	return cfg, decodeErr
}

func (c Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend URL is required")
	}
	a := c.Analysis
	if a.QuickMinChars <= 0 || a.FullMinChars <= 0 || a.PodcastMinChars <= 0 {
		return fmt.Errorf("text thresholds must be positive")
	}
	// Quick needs the least text, podcast the most.
	if !(a.QuickMinChars < a.FullMinChars && a.FullMinChars < a.PodcastMinChars) {
		return fmt.Errorf("thresholds must be ordered: quick (%d) < full (%d) < podcast (%d)",
			a.QuickMinChars, a.FullMinChars, a.PodcastMinChars)
	}
	if a.SamplePages > a.FullPages {
		return fmt.Errorf("sample page cap (%d) exceeds full page cap (%d)", a.SamplePages, a.FullPages)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
