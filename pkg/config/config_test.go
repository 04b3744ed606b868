package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_CreatesDefaultWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "laxyguide.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Player.SkipSeconds != 15 {
		t.Errorf("expected default skip 15, got %f", cfg.Player.SkipSeconds)
	}
	if time.Duration(cfg.Player.ScrollOverrideWindow) != 5*time.Second {
		t.Errorf("expected 5s scroll override window, got %v", time.Duration(cfg.Player.ScrollOverrideWindow))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file to be created: %v", err)
	}
}

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "laxyguide.yaml")

	content := []byte("player:\n  skip_seconds: 30\nstore:\n  base_url_template: \"http://localhost:9000/{tour_code}\"\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Player.SkipSeconds != 30 {
		t.Errorf("expected skip 30 from file, got %f", cfg.Player.SkipSeconds)
	}
	// untouched section keeps its default
	if cfg.Request.Retries != 3 {
		t.Errorf("expected default retries 3, got %d", cfg.Request.Retries)
	}
}

func TestStoreConfig_BaseURL(t *testing.T) {
	s := StoreConfig{BaseURLTemplate: "https://tours.laxy.app/{tour_code}"}
	if got := s.BaseURL("T1"); got != "https://tours.laxy.app/T1" {
		t.Errorf("unexpected base URL: %s", got)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"5s", 5 * time.Second},
		{"500ms", 500 * time.Millisecond},
		{"2h45m", 2*time.Hour + 45*time.Minute},
		{"1d", Day},
		{"1w", Week},
		{"1d12h", Day + 12*time.Hour},
		{"", 0},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		assert.NoError(t, err, "ParseDuration(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseDuration(%q)", tt.in)
	}

	_, err := ParseDuration("5x")
	assert.Error(t, err, "unknown unit must fail")
}
