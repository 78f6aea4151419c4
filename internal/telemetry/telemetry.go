// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package telemetry

import (
	"sort"
	"sync"
	"time"
)

type HealthState string

const (
	Healthy   HealthState = "healthy"
	Degraded  HealthState = "degraded"
	Unhealthy HealthState = "unhealthy"

	degradedThreshold  = 3
	unhealthyThreshold = 5
	cooldownBase       = 5 * time.Second
	cooldownMax        = 5 * time.Minute
	latencyWindowSize  = 50
)

// ProviderStats is the externally visible health snapshot of one upstream
// OSINT source (geolocation API, DoH endpoint, RDAP aggregator, platform API).
type ProviderStats struct {
	Name            string      `json:"name"`
	State           HealthState `json:"state"`
	TotalRequests   int64       `json:"total_requests"`
	SuccessCount    int64       `json:"success_count"`
	FailureCount    int64       `json:"failure_count"`
	ConsecFailures  int         `json:"consecutive_failures"`
	LastError       string      `json:"last_error,omitempty"`
	LastErrorTime   *time.Time  `json:"last_error_time,omitempty"`
	LastSuccessTime *time.Time  `json:"last_success_time,omitempty"`
	AvgLatencyMs    float64     `json:"avg_latency_ms"`
	InCooldown      bool        `json:"in_cooldown"`
	CooldownUntil   *time.Time  `json:"cooldown_until,omitempty"`
}

type provider struct {
	mu             sync.RWMutex
	name           string
	totalRequests  int64
	successCount   int64
	failureCount   int64
	consecFailures int
	lastError      string
	lastErrorTime  time.Time
	lastSuccess    time.Time
	latencies      []float64
	latencyIdx     int
	latencyFull    bool
	cooldownUntil  time.Time
}

// Registry tracks per-provider request outcomes. Aggregators record every
// upstream call here; the only behavioral consumer is the RDAP cooldown check.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*provider
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]*provider),
	}
}

func (r *Registry) getOrCreate(name string) *provider {
	r.mu.RLock()
	p, ok := r.providers[name]
	r.mu.RUnlock()
	if ok {
		return p
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok = r.providers[name]; ok {
		return p
	}
	p = &provider{
		name:      name,
		latencies: make([]float64, latencyWindowSize),
	}
	r.providers[name] = p
	return p
}

func (r *Registry) RecordSuccess(name string, latency time.Duration) {
	p := r.getOrCreate(name)
	p.mu.Lock()
	defer p.mu.Unlock()

	p.totalRequests++
	p.successCount++
	p.consecFailures = 0
	p.lastSuccess = time.Now()
	p.cooldownUntil = time.Time{}

	ms := float64(latency.Microseconds()) / 1000.0
	p.latencies[p.latencyIdx] = ms
	p.latencyIdx++
	if p.latencyIdx >= latencyWindowSize {
		p.latencyIdx = 0
		p.latencyFull = true
	}
}

func (r *Registry) RecordFailure(name, errMsg string) {
	p := r.getOrCreate(name)
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.totalRequests++
	p.failureCount++
	p.consecFailures++
	p.lastError = errMsg
	p.lastErrorTime = now

	if p.consecFailures >= unhealthyThreshold {
		cooldown := cooldownBase << (p.consecFailures - unhealthyThreshold)
		if cooldown > cooldownMax || cooldown <= 0 {
			cooldown = cooldownMax
		}
		p.cooldownUntil = now.Add(cooldown)
	}
}

// InCooldown reports whether the provider has failed often enough in a row
// that best-effort lookups should skip it for now.
func (r *Registry) InCooldown(name string) bool {
	r.mu.RLock()
	p, ok := r.providers[name]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	return time.Now().Before(p.cooldownUntil)
}

func (p *provider) stats() ProviderStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := ProviderStats{
		Name:           p.name,
		State:          Healthy,
		TotalRequests:  p.totalRequests,
		SuccessCount:   p.successCount,
		FailureCount:   p.failureCount,
		ConsecFailures: p.consecFailures,
		LastError:      p.lastError,
	}

	if p.consecFailures >= unhealthyThreshold {
		s.State = Unhealthy
	} else if p.consecFailures >= degradedThreshold {
		s.State = Degraded
	}

	if !p.lastErrorTime.IsZero() {
		t := p.lastErrorTime
		s.LastErrorTime = &t
	}
	if !p.lastSuccess.IsZero() {
		t := p.lastSuccess
		s.LastSuccessTime = &t
	}
	if time.Now().Before(p.cooldownUntil) {
		t := p.cooldownUntil
		s.InCooldown = true
		s.CooldownUntil = &t
	}

	window := p.latencies[:p.latencyIdx]
	if p.latencyFull {
		window = p.latencies
	}
	if len(window) > 0 {
		var sum float64
		for _, v := range window {
			sum += v
		}
		s.AvgLatencyMs = sum / float64(len(window))
	}

	return s
}

// Snapshot returns stats for every provider seen so far, sorted by name.
func (r *Registry) Snapshot() []ProviderStats {
	r.mu.RLock()
	providers := make([]*provider, 0, len(r.providers))
	for _, p := range r.providers {
		providers = append(providers, p)
	}
	r.mu.RUnlock()

	out := make([]ProviderStats, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.stats())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
