// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package osint

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

const (
	platformGitHub        = "GitHub"
	platformGitLab        = "GitLab"
	platformReddit        = "Reddit"
	platformStackOverflow = "StackOverflow"
)

// probeTask is one platform check. url must be computable from the username
// alone; run reports existence plus the platform's raw payload when found.
type probeTask struct {
	platform string
	url      func(username string) string
	run      func(ctx context.Context, username string) (bool, json.RawMessage, error)
}

// LookupUsername probes all four platforms concurrently with a settle-all
// join: one platform failing, or even panicking, never suppresses the
// others. Failed probes yield exists=false; a panicked probe's slot is
// dropped from the result entirely.
func (s *Service) LookupUsername(ctx context.Context, username string) []UsernameProfile {
	return collectProfiles(ctx, username, s.probes())
}

func collectProfiles(ctx context.Context, username string, probes []probeTask) []UsernameProfile {
	slots := make([]*UsernameProfile, len(probes))

	tasks := make([]func(), len(probes))
	for i, p := range probes {
		tasks[i] = func() {
			profile := &UsernameProfile{
				Platform: p.platform,
				URL:      p.url(username),
			}
			exists, data, err := p.run(ctx, username)
			if err != nil {
				slog.Debug("username probe contributed nothing", "platform", p.platform, "username", username, "error", err)
			} else {
				profile.Exists = exists
				profile.Data = data
			}
			slots[i] = profile
		}
	}
	settleAll(tasks)

	profiles := make([]UsernameProfile, 0, len(slots))
	for _, p := range slots {
		if p != nil {
			profiles = append(profiles, *p)
		}
	}
	return profiles
}

func (s *Service) probes() []probeTask {
	return []probeTask{
		{
			platform: platformGitHub,
			url: func(u string) string {
				return "https://github.com/" + url.PathEscape(u)
			},
			run: s.probeGitHub,
		},
		{
			platform: platformGitLab,
			url: func(u string) string {
				return "https://gitlab.com/" + url.PathEscape(u)
			},
			run: s.probeGitLab,
		},
		{
			platform: platformReddit,
			url: func(u string) string {
				return "https://www.reddit.com/user/" + url.PathEscape(u)
			},
			run: s.probeReddit,
		},
		{
			platform: platformStackOverflow,
			url: func(u string) string {
				return "https://stackoverflow.com/users?tab=Search&search=" + url.QueryEscape(u)
			},
			run: s.probeStackOverflow,
		},
	}
}

// probeGitHub treats a payload with a non-empty canonical handle as proof of
// existence; 404s and shape mismatches mean not found.
func (s *Service) probeGitHub(ctx context.Context, username string) (bool, json.RawMessage, error) {
	u := fmt.Sprintf("%s/users/%s", s.endpoints.GitHub, url.PathEscape(username))
	raw, err := s.fetchSource(ctx, platformGitHub, u)
	if err != nil {
		return false, nil, err
	}

	var payload struct {
		Login string `json:"login"`
	}
	if json.Unmarshal(raw, &payload) != nil || payload.Login == "" {
		return false, nil, nil
	}
	return true, raw, nil
}

// probeGitLab searches users by username and looks for the element whose
// username matches case-insensitively.
func (s *Service) probeGitLab(ctx context.Context, username string) (bool, json.RawMessage, error) {
	u := fmt.Sprintf("%s/users?username=%s", s.endpoints.GitLab, url.QueryEscape(username))
	raw, err := s.fetchSource(ctx, platformGitLab, u)
	if err != nil {
		return false, nil, err
	}

	var users []json.RawMessage
	if json.Unmarshal(raw, &users) != nil {
		return false, nil, nil
	}
	for _, user := range users {
		var fields struct {
			Username string `json:"username"`
		}
		if json.Unmarshal(user, &fields) != nil {
			continue
		}
		if strings.EqualFold(fields.Username, username) {
			return true, user, nil
		}
	}
	return false, nil, nil
}

// probeReddit fetches the user's about document; existence requires
// data.name, and the returned payload is the inner data object.
func (s *Service) probeReddit(ctx context.Context, username string) (bool, json.RawMessage, error) {
	u := fmt.Sprintf("%s/user/%s/about.json", s.endpoints.Reddit, url.PathEscape(username))
	raw, err := s.fetchSource(ctx, platformReddit, u)
	if err != nil {
		return false, nil, err
	}

	var payload struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(raw, &payload) != nil || payload.Data == nil {
		return false, nil, nil
	}
	var inner struct {
		Name string `json:"name"`
	}
	if json.Unmarshal(payload.Data, &inner) != nil || inner.Name == "" {
		return false, nil, nil
	}
	return true, payload.Data, nil
}

// probeStackOverflow searches display names on the Stack Exchange API. A
// non-empty result list counts as existence (documented heuristic — it can
// false-positive on substring matches); the full payload is kept either way
// because a successful zero-hit search is still informative.
func (s *Service) probeStackOverflow(ctx context.Context, username string) (bool, json.RawMessage, error) {
	u := fmt.Sprintf("%s/users?inname=%s&site=stackoverflow", s.endpoints.StackExchange, url.QueryEscape(username))
	raw, err := s.fetchSource(ctx, platformStackOverflow, u)
	if err != nil {
		return false, nil, err
	}

	var payload struct {
		Items []json.RawMessage `json:"items"`
	}
	if json.Unmarshal(raw, &payload) != nil {
		return false, raw, nil
	}
	return len(payload.Items) > 0, raw, nil
}
