package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address: %s", cfg.Address())
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Fatalf("unexpected default model: %s", cfg.GeminiModel)
	}
	if cfg.InsightsTTL != 5*time.Minute {
		t.Fatalf("unexpected insights TTL: %v", cfg.InsightsTTL)
	}
	if cfg.AccessTokenTTL != 8*time.Hour {
		t.Fatalf("unexpected token TTL: %v", cfg.AccessTokenTTL)
	}
	if cfg.LowStockThreshold != 5 {
		t.Fatalf("unexpected low stock threshold: %d", cfg.LowStockThreshold)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("INSIGHTS_TTL", "90s")
	t.Setenv("LOW_STOCK_THRESHOLD", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.InsightsTTL != 90*time.Second || cfg.LowStockThreshold != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadClampsThreshold(t *testing.T) {
	t.Setenv("LOW_STOCK_THRESHOLD", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LowStockThreshold != 5 {
		t.Fatalf("expected threshold clamped to 5, got %d", cfg.LowStockThreshold)
	}
}
