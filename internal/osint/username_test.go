// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package osint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func usernameService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(WithEndpoints(Endpoints{
		GitHub:        srv.URL,
		GitLab:        srv.URL,
		Reddit:        srv.URL,
		StackExchange: srv.URL,
	}))
}

func TestLookupUsername_AllPlatformsFound(t *testing.T) {
	svc := usernameService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/users") && r.URL.Query().Get("username") != "":
			w.Write([]byte(`[{"username":"Octo","id":7}]`))
		case strings.HasPrefix(r.URL.Path, "/users") && r.URL.Query().Get("inname") != "":
			w.Write([]byte(`{"items":[{"display_name":"octo"}]}`))
		case strings.HasPrefix(r.URL.Path, "/users/"):
			w.Write([]byte(`{"login":"octo","id":1}`))
		case strings.HasPrefix(r.URL.Path, "/user/"):
			w.Write([]byte(`{"kind":"t2","data":{"name":"octo","link_karma":10}}`))
		default:
			http.NotFound(w, r)
		}
	})

	profiles := svc.LookupUsername(context.Background(), "octo")
	if len(profiles) != 4 {
		t.Fatalf("expected 4 profiles, got %d", len(profiles))
	}

	wantOrder := []string{platformGitHub, platformGitLab, platformReddit, platformStackOverflow}
	for i, p := range profiles {
		if p.Platform != wantOrder[i] {
			t.Errorf("profile %d: platform %q, want %q", i, p.Platform, wantOrder[i])
		}
		if !p.Exists {
			t.Errorf("%s: expected exists", p.Platform)
		}
		if p.URL == "" {
			t.Errorf("%s: empty canonical URL", p.Platform)
		}
		if len(p.Data) == 0 {
			t.Errorf("%s: expected raw payload", p.Platform)
		}
	}

	// Reddit keeps the inner data object, not the envelope.
	var reddit struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(profiles[2].Data, &reddit); err != nil || reddit.Name != "octo" {
		t.Errorf("reddit payload should be the inner data object: %s", profiles[2].Data)
	}
}

func TestLookupUsername_NotFoundEverywhere(t *testing.T) {
	svc := usernameService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Query().Get("username") != "":
			w.Write([]byte(`[]`))
		case r.URL.Query().Get("inname") != "":
			w.Write([]byte(`{"items":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Not Found"}`))
		}
	})

	profiles := svc.LookupUsername(context.Background(), "nobody")
	if len(profiles) != 4 {
		t.Fatalf("expected 4 profiles, got %d", len(profiles))
	}
	for _, p := range profiles {
		if p.Exists {
			t.Errorf("%s: expected exists=false", p.Platform)
		}
	}
	// StackOverflow's empty search is still a successful response and keeps
	// its payload; the 404-backed probes carry none.
	if len(profiles[3].Data) == 0 {
		t.Error("StackOverflow: empty search should keep the raw payload")
	}
	if len(profiles[0].Data) != 0 {
		t.Error("GitHub: failed probe should carry no payload")
	}
}

func TestLookupUsername_GitLabRequiresExactHandle(t *testing.T) {
	svc := usernameService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("username") != "" {
			w.Write([]byte(`[{"username":"octo-fan"},{"username":"someone"}]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{}`))
	})

	profiles := svc.LookupUsername(context.Background(), "octo")
	for _, p := range profiles {
		if p.Platform == platformGitLab && p.Exists {
			t.Error("GitLab: search hits with different handles must not count")
		}
	}
}

func TestCollectProfiles_PanickedProbeIsDropped(t *testing.T) {
	mk := func(platform string) probeTask {
		return probeTask{
			platform: platform,
			url:      func(u string) string { return "https://example.com/" + u },
			run: func(ctx context.Context, u string) (bool, json.RawMessage, error) {
				return true, json.RawMessage(`{}`), nil
			},
		}
	}
	probes := []probeTask{mk("one"), mk("two"), mk("three"), mk("four")}
	probes[2].run = func(ctx context.Context, u string) (bool, json.RawMessage, error) {
		panic("probe blew up")
	}

	profiles := collectProfiles(context.Background(), "octo", probes)
	if len(profiles) != 3 {
		t.Fatalf("expected 3 surviving profiles, got %d", len(profiles))
	}
	wantOrder := []string{"one", "two", "four"}
	for i, p := range profiles {
		if p.Platform != wantOrder[i] {
			t.Errorf("profile %d: %q, want %q", i, p.Platform, wantOrder[i])
		}
	}
}
