package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/aircanvas/internal/config"
	"github.com/ayusman/aircanvas/internal/gesture"
)

func TestSessionConfig(t *testing.T) {
	cfg := config.Defaults(t.TempDir())
	cfg.Pipeline.ColorCycle = "hold"
	cfg.Pipeline.IdleTimeoutMs = 1500
	cfg.Pipeline.BrushRadius = 7
	cfg.Camera.Mirror = false

	c, err := sessionConfig(cfg)
	if err != nil {
		t.Fatalf("sessionConfig() error = %v", err)
	}
	if c.CyclePolicy != gesture.CycleHold {
		t.Errorf("CyclePolicy = %v, want hold", c.CyclePolicy)
	}
	if c.IdleTimeout != 1500*time.Millisecond {
		t.Errorf("IdleTimeout = %v, want 1.5s", c.IdleTimeout)
	}
	if c.BrushRadius != 7 || c.Mirror {
		t.Errorf("BrushRadius = %d, Mirror = %v", c.BrushRadius, c.Mirror)
	}

	cfg.Pipeline.ColorCycle = "sometimes"
	if _, err := sessionConfig(cfg); err == nil {
		t.Error("sessionConfig() with bad policy error = nil")
	}
}

func TestBrowserURL(t *testing.T) {
	tests := map[string]string{
		":8080":          "http://localhost:8080",
		"127.0.0.1:9000": "http://127.0.0.1:9000",
	}
	for addr, want := range tests {
		if got := browserURL(addr); got != want {
			t.Errorf("browserURL(%q) = %q, want %q", addr, got, want)
		}
	}
}

func TestFindWebDir_DataDir(t *testing.T) {
	dataDir := t.TempDir()
	web := filepath.Join(dataDir, "web")
	if err := os.Mkdir(web, 0o755); err != nil {
		t.Fatal(err)
	}

	t.Chdir(t.TempDir())

	if got := findWebDir(dataDir); got != web {
		t.Errorf("findWebDir() = %q, want %q", got, web)
	}
}
