// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package osint

import "strings"

// RiskLevel is a coarse three-level classification, derived on demand and
// never stored.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func (r RiskLevel) String() string { return string(r) }

// hostingVendors flags IPs that live in well-known cloud/hosting ranges;
// matching is lowercase substring against ASN and org/ISP text.
var hostingVendors = []string{
	"amazon", "aws", "google", "microsoft", "azure", "digitalocean",
	"linode", "ovh", "hetzner", "contabo", "vultr",
}

// ScoreIP classifies an IP record. A hosting-vendor match means medium;
// this scorer deliberately has no high outcome.
func ScoreIP(record *IPRecord) RiskLevel {
	if record == nil {
		return RiskLow
	}
	asn := strings.ToLower(record.ASN)
	org := strings.ToLower(record.Org)
	if org == "" {
		org = strings.ToLower(record.ISP)
	}

	for _, vendor := range hostingVendors {
		if strings.Contains(asn, vendor) || strings.Contains(org, vendor) {
			return RiskMedium
		}
	}
	return RiskLow
}

// ScoreDomain: unresolvable is high; missing mail posture (no MX, or no
// DMARC) is medium; otherwise low.
func ScoreDomain(record *DomainRecord) RiskLevel {
	if record == nil || len(record.A) == 0 {
		return RiskHigh
	}
	if len(record.MX) == 0 || record.DMARC == nil {
		return RiskMedium
	}
	return RiskLow
}

// ScoreEmail: a domain that can't receive mail is high; one without DMARC
// is medium; otherwise low.
func ScoreEmail(record *EmailRecord) RiskLevel {
	if record == nil || !record.HasMX {
		return RiskHigh
	}
	if !record.HasDMARC {
		return RiskMedium
	}
	return RiskLow
}
