// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package osint

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"dossier/internal/dnsclient"
)

const providerRDAP = "rdap"

// mxRe matches "<preference> <exchange>" with an optional trailing dot on
// the exchange; anything else in an MX answer is dropped.
var mxRe = regexp.MustCompile(`^(\d+)\s+([A-Za-z0-9._-]+?)\.?$`)

// LookupDomain fans out six DNS queries (A, AAAA, MX, NS, TXT, and TXT for
// the _dmarc. name) plus one best-effort RDAP lookup, all in parallel. Every
// upstream failure is swallowed per-source; the worst case is a record whose
// collection fields are all empty and whose RDAP object is absent.
func (s *Service) LookupDomain(ctx context.Context, domain string) *DomainRecord {
	record := &DomainRecord{Domain: domain}

	var (
		aAns, aaaaAns, mxAns, nsAns, txtAns, dmarcAns []dnsclient.Answer
		rdapRaw                                       json.RawMessage
	)

	settleAll([]func(){
		func() { aAns = s.DNS.Resolve(ctx, domain, "A") },
		func() { aaaaAns = s.DNS.Resolve(ctx, domain, "AAAA") },
		func() { mxAns = s.DNS.Resolve(ctx, domain, "MX") },
		func() { nsAns = s.DNS.Resolve(ctx, domain, "NS") },
		func() { txtAns = s.DNS.Resolve(ctx, domain, "TXT") },
		func() { dmarcAns = s.DNS.Resolve(ctx, "_dmarc."+domain, "TXT") },
		func() { rdapRaw = s.rdapLookup(ctx, domain) },
	})

	record.A = parseAddresses(aAns)
	record.AAAA = parseAddresses(aaaaAns)
	record.MX = parseMX(mxAns)
	record.NS = parseNS(nsAns)
	record.TXT = parseTXT(txtAns)
	record.DMARC = findDMARC(parseTXT(dmarcAns))
	record.SPF = hasSPF(record.TXT)
	record.RDAP = rdapRaw
	record.Registrar = registrarFromRDAP(rdapRaw)

	return record
}

// parseAddresses keeps each answer's data verbatim, dropping empties and
// preserving server order.
func parseAddresses(answers []dnsclient.Answer) []string {
	out := []string{}
	for _, a := range answers {
		if v := strings.TrimSpace(a.Data); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseMX parses "<integer> <hostname>[.]" pairs; non-matching answers are
// dropped and the trailing dot is stripped from the exchange.
func parseMX(answers []dnsclient.Answer) []MXRecord {
	out := []MXRecord{}
	for _, a := range answers {
		m := mxRe.FindStringSubmatch(strings.TrimSpace(a.Data))
		if m == nil {
			continue
		}
		prio, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, MXRecord{Priority: prio, Exchange: m[2]})
	}
	return out
}

func parseNS(answers []dnsclient.Answer) []string {
	out := []string{}
	for _, a := range answers {
		v := strings.TrimSuffix(strings.TrimSpace(a.Data), ".")
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseTXT strips exactly one leading and one trailing quote when present;
// inner quotes are data.
func parseTXT(answers []dnsclient.Answer) []string {
	out := []string{}
	for _, a := range answers {
		v := a.Data
		if strings.HasPrefix(v, `"`) {
			v = v[1:]
		}
		if strings.HasSuffix(v, `"`) {
			v = v[:len(v)-1]
		}
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// findDMARC returns the first _dmarc TXT value whose lowercase form contains
// the DMARC version tag; absence is not an error.
func findDMARC(txts []string) *string {
	for _, txt := range txts {
		if strings.Contains(strings.ToLower(txt), "v=dmarc") {
			t := txt
			return &t
		}
	}
	return nil
}

// hasSPF reports whether any base-domain TXT record declares SPF.
func hasSPF(txts []string) bool {
	for _, txt := range txts {
		if strings.Contains(strings.ToLower(txt), "v=spf1") {
			return true
		}
	}
	return false
}

// rdapLookup is best-effort: nil on any failure, including RDAP's own error
// envelope. A provider in telemetry cooldown is skipped outright.
func (s *Service) rdapLookup(ctx context.Context, domain string) json.RawMessage {
	if s.Telemetry.InCooldown(providerRDAP) {
		slog.Debug("rdap in cooldown, skipping", "domain", domain)
		return nil
	}

	url := fmt.Sprintf("%s/domain/%s", strings.TrimRight(s.endpoints.RDAP, "/"), domain)
	raw, err := s.fetchSource(ctx, providerRDAP, url)
	if err != nil {
		slog.Debug("rdap lookup failed", "domain", domain, "error", err)
		return nil
	}

	var envelope struct {
		ErrorCode *int `json:"errorCode"`
	}
	if json.Unmarshal(raw, &envelope) != nil {
		return nil
	}
	if envelope.ErrorCode != nil {
		return nil
	}
	return raw
}

// registrarFromRDAP walks the RDAP entity tree for an entity with the
// registrar role and pulls its vCard fn (or name/handle) value.
func registrarFromRDAP(raw json.RawMessage) *string {
	if raw == nil {
		return nil
	}
	var data struct {
		Entities []rdapEntity `json:"entities"`
	}
	if json.Unmarshal(raw, &data) != nil {
		return nil
	}
	if name := findRegistrarEntity(data.Entities); name != "" {
		return &name
	}
	return nil
}

type rdapEntity struct {
	Roles      []string        `json:"roles"`
	Handle     string          `json:"handle"`
	VCardArray json.RawMessage `json:"vcardArray"`
	Entities   []rdapEntity    `json:"entities"`
}

func findRegistrarEntity(entities []rdapEntity) string {
	for _, e := range entities {
		if !hasRole(e.Roles, "registrar") {
			if name := findRegistrarEntity(e.Entities); name != "" {
				return name
			}
			continue
		}
		if name := vcardFN(e.VCardArray); name != "" {
			return name
		}
		if e.Handle != "" && !isDigits(e.Handle) {
			return e.Handle
		}
		if name := findRegistrarEntity(e.Entities); name != "" {
			return name
		}
	}
	return ""
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// vcardFN extracts the "fn" property from an RDAP jCard:
// ["vcard", [["fn", {}, "text", "Example Registrar LLC"], ...]].
func vcardFN(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var vcard []json.RawMessage
	if json.Unmarshal(raw, &vcard) != nil || len(vcard) != 2 {
		return ""
	}
	var items [][]json.RawMessage
	if json.Unmarshal(vcard[1], &items) != nil {
		return ""
	}
	for _, item := range items {
		if len(item) < 4 {
			continue
		}
		var key, value string
		if json.Unmarshal(item[0], &key) != nil || key != "fn" {
			continue
		}
		if json.Unmarshal(item[3], &value) == nil && value != "" {
			return value
		}
	}
	return ""
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
