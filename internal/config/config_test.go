// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package config

import (
	"testing"
	"time"
)

func TestLoad_DefaultPort(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "5000" {
		t.Errorf("expected default port 5000, got %s", cfg.Port)
	}
}

func TestLoad_CustomPort(t *testing.T) {
	t.Setenv("PORT", "8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
}

func TestLoad_LookupTimeout_Default(t *testing.T) {
	t.Setenv("LOOKUP_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LookupTimeout != 15*time.Second {
		t.Errorf("expected default timeout 15s, got %s", cfg.LookupTimeout)
	}
}

func TestLoad_LookupTimeout_Custom(t *testing.T) {
	t.Setenv("LOOKUP_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LookupTimeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %s", cfg.LookupTimeout)
	}
}

func TestLoad_LookupTimeout_Invalid(t *testing.T) {
	for _, v := range []string{"soon", "-5s", "0"} {
		t.Setenv("LOOKUP_TIMEOUT", v)
		if _, err := Load(); err == nil {
			t.Errorf("expected error for LOOKUP_TIMEOUT=%q", v)
		}
	}
}

func TestLoad_RateLimit_Defaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("RATE_LIMIT_BURST", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RateLimitRPS != 2.0 {
		t.Errorf("expected RPS 2.0, got %v", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst != 10 {
		t.Errorf("expected burst 10, got %d", cfg.RateLimitBurst)
	}
}

func TestLoad_RateLimit_Custom(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("RATE_LIMIT_BURST", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RateLimitRPS != 0.5 {
		t.Errorf("expected RPS 0.5, got %v", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst != 3 {
		t.Errorf("expected burst 3, got %d", cfg.RateLimitBurst)
	}
}

func TestLoad_RateLimit_Invalid(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "lots")
	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric RATE_LIMIT_RPS")
	}

	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("RATE_LIMIT_BURST", "-1")
	if _, err := Load(); err == nil {
		t.Error("expected error for negative RATE_LIMIT_BURST")
	}
}

func TestLoad_AppVersion(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AppVersion != Version {
		t.Errorf("expected AppVersion=%s, got %s", Version, cfg.AppVersion)
	}
}

func TestLoad_DoHEndpoint(t *testing.T) {
	t.Setenv("DOH_ENDPOINT", "https://doh.internal.example/resolve")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DoHEndpoint != "https://doh.internal.example/resolve" {
		t.Errorf("expected DoH endpoint passthrough, got %s", cfg.DoHEndpoint)
	}
}
