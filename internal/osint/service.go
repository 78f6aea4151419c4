// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package osint

import (
	"log/slog"
	"sync"

	"dossier/internal/dnsclient"
	"dossier/internal/fetch"
	"dossier/internal/telemetry"
)

// Endpoints are the upstream base URLs. Zero fields take the public
// defaults; overrides exist for tests.
type Endpoints struct {
	IPAPI         string
	IPWhois       string
	RDAP          string
	GitHub        string
	GitLab        string
	Reddit        string
	StackExchange string
}

var defaultEndpoints = Endpoints{
	IPAPI:         "http://ip-api.com/json",
	IPWhois:       "https://ipwho.is",
	RDAP:          "https://rdap.org",
	GitHub:        "https://api.github.com",
	GitLab:        "https://gitlab.com/api/v4",
	Reddit:        "https://www.reddit.com",
	StackExchange: "https://api.stackexchange.com/2.3",
}

type Service struct {
	DNS       *dnsclient.Resolver
	HTTP      *fetch.Client
	Telemetry *telemetry.Registry

	endpoints Endpoints
}

type Option func(*Service)

func WithResolver(r *dnsclient.Resolver) Option {
	return func(s *Service) { s.DNS = r }
}

func WithFetchClient(c *fetch.Client) Option {
	return func(s *Service) { s.HTTP = c }
}

func WithTelemetry(reg *telemetry.Registry) Option {
	return func(s *Service) { s.Telemetry = reg }
}

func WithEndpoints(e Endpoints) Option {
	return func(s *Service) {
		if e.IPAPI != "" {
			s.endpoints.IPAPI = e.IPAPI
		}
		if e.IPWhois != "" {
			s.endpoints.IPWhois = e.IPWhois
		}
		if e.RDAP != "" {
			s.endpoints.RDAP = e.RDAP
		}
		if e.GitHub != "" {
			s.endpoints.GitHub = e.GitHub
		}
		if e.GitLab != "" {
			s.endpoints.GitLab = e.GitLab
		}
		if e.Reddit != "" {
			s.endpoints.Reddit = e.Reddit
		}
		if e.StackExchange != "" {
			s.endpoints.StackExchange = e.StackExchange
		}
	}
}

func New(opts ...Option) *Service {
	s := &Service{
		DNS:       dnsclient.New(),
		HTTP:      fetch.New(),
		Telemetry: telemetry.NewRegistry(),
		endpoints: defaultEndpoints,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// settleAll runs every task concurrently and waits for all of them, so one
// slow or failing source never blocks or cancels its siblings. A task that
// panics is recovered and its slot left untouched.
func settleAll(tasks []func()) {
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func(f func()) {
			defer wg.Done()
			defer func() {
				if v := recover(); v != nil {
					slog.Error("source task panicked", "panic", v)
				}
			}()
			f()
		}(task)
	}
	wg.Wait()
}
