// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Version is the release stamp reported by /api/health.
const Version = "26.8.12"

type Config struct {
	Port           string
	AppVersion     string
	LookupTimeout  time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	DoHEndpoint    string
	TrustedProxies []string
}

func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	lookupTimeout := 15 * time.Second
	if v := os.Getenv("LOOKUP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LOOKUP_TIMEOUT %q: %w", v, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("LOOKUP_TIMEOUT must be positive, got %q", v)
		}
		lookupTimeout = d
	}

	rps := 2.0
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_RPS %q", v)
		}
		rps = f
	}

	burst := 10
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST %q", v)
		}
		burst = n
	}

	return &Config{
		Port:           port,
		AppVersion:     Version,
		LookupTimeout:  lookupTimeout,
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
		DoHEndpoint:    os.Getenv("DOH_ENDPOINT"),
		TrustedProxies: nil,
	}, nil
}
