// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package osint

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// InvalidEmailError is the one eager validation failure in the whole core:
// an address with no @ segment is rejected before any network I/O.
type InvalidEmailError struct {
	Email string
}

func (e *InvalidEmailError) Error() string {
	return fmt.Sprintf("invalid email address %q: missing @ segment", e.Email)
}

const txtSampleLimit = 5

// dmarcPolicyRe captures the p= tag value up to the next ; or whitespace,
// case-insensitively.
var dmarcPolicyRe = regexp.MustCompile(`(?i)\bp=([^;\s]+)`)

// LookupEmail derives the domain from the address, delegates to the domain
// aggregator, and reduces the result to mail-authentication posture.
func (s *Service) LookupEmail(ctx context.Context, email string) (*EmailRecord, error) {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) < 2 {
		return nil, &InvalidEmailError{Email: email}
	}
	domain := strings.ToLower(strings.TrimSpace(parts[1]))

	dom := s.LookupDomain(ctx, domain)

	record := &EmailRecord{
		Email:       email,
		Domain:      domain,
		HasMX:       len(dom.MX) > 0,
		HasSPF:      dom.SPF,
		HasDMARC:    dom.DMARC != nil,
		DMARCPolicy: extractDMARCPolicy(dom.DMARC),
		TXTSamples:  firstN(dom.TXT, txtSampleLimit),
	}
	return record, nil
}

// extractDMARCPolicy pulls the p= tag value from a DMARC TXT record.
func extractDMARCPolicy(dmarc *string) *string {
	if dmarc == nil {
		return nil
	}
	m := dmarcPolicyRe.FindStringSubmatch(*dmarc)
	if m == nil {
		return nil
	}
	return &m[1]
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
