package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxLinks != 5 {
		t.Errorf("MaxLinks: got %d", cfg.MaxLinks)
	}
	if cfg.LinkDelay != 2*time.Second {
		t.Errorf("LinkDelay: got %v", cfg.LinkDelay)
	}
	if cfg.OutputDir != "output" {
		t.Errorf("OutputDir: got %q", cfg.OutputDir)
	}
	if cfg.RespectRobots {
		t.Error("RespectRobots should default off")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CARDPIPE_MAX_LINKS", "9")
	t.Setenv("CARDPIPE_CARD_DELAY", "10s")
	t.Setenv("CARDPIPE_MODEL", "gpt-4o")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxLinks != 9 {
		t.Errorf("MaxLinks: got %d", cfg.MaxLinks)
	}
	if cfg.CardDelay != 10*time.Second {
		t.Errorf("CardDelay: got %v", cfg.CardDelay)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("Model: got %q", cfg.Model)
	}
}
