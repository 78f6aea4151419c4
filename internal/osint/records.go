// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package osint aggregates keyless public data sources into normalized
// records per entity type (IP, domain, email, username, phone) and derives
// a coarse risk level from them. Every record is built fresh per call and
// owned by the caller.
package osint

import "encoding/json"

// IPRecord is the merged geolocation/ASN view of one IP address. Every
// scalar field is optional: a partial record is a valid result, and an
// entirely empty one means every provider failed.
type IPRecord struct {
	IP       string   `json:"ip,omitempty"`
	City     string   `json:"city,omitempty"`
	Region   string   `json:"region,omitempty"`
	Country  string   `json:"country,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	ISP      string   `json:"isp,omitempty"`
	Org      string   `json:"org,omitempty"`
	ASN      string   `json:"asn,omitempty"`
	Reverse  string   `json:"reverse,omitempty"`
	Timezone string   `json:"timezone,omitempty"`
	Proxy    *bool    `json:"proxy,omitempty"`
	Hosting  *bool    `json:"hosting,omitempty"`

	// Sources keeps each provider's raw decoded payload verbatim for audit,
	// whether or not any of its fields won the merge.
	Sources map[string]json.RawMessage `json:"sources"`
}

// MXRecord is one parsed MX answer, in server-returned order.
type MXRecord struct {
	Priority int    `json:"priority"`
	Exchange string `json:"exchange"`
}

// DomainRecord is the parsed DNS + registry view of one domain.
type DomainRecord struct {
	Domain    string          `json:"domain"`
	A         []string        `json:"a"`
	AAAA      []string        `json:"aaaa"`
	MX        []MXRecord      `json:"mx"`
	NS        []string        `json:"ns"`
	TXT       []string        `json:"txt"`
	DMARC     *string         `json:"dmarc"`
	SPF       bool            `json:"spf"`
	RDAP      json.RawMessage `json:"rdap,omitempty"`
	Registrar *string         `json:"registrar,omitempty"`
}

// EmailRecord reduces the owning domain's record to mail-authentication
// posture.
type EmailRecord struct {
	Email       string   `json:"email"`
	Domain      string   `json:"domain"`
	HasMX       bool     `json:"hasMX"`
	HasSPF      bool     `json:"hasSPF"`
	HasDMARC    bool     `json:"hasDMARC"`
	DMARCPolicy *string  `json:"dmarcPolicy"`
	TXTSamples  []string `json:"txtSamples"`
}

// UsernameProfile is one platform's probe outcome. URL is always populated,
// even when the probe failed, so a caller can render the link regardless.
type UsernameProfile struct {
	Platform string          `json:"platform"`
	Exists   bool            `json:"exists"`
	URL      string          `json:"url"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// PhoneRecord is the parsed view of one phone number. An unparseable input
// yields Valid=false rather than an error.
type PhoneRecord struct {
	Input         string `json:"input"`
	Valid         bool   `json:"valid"`
	E164          string `json:"e164,omitempty"`
	International string `json:"international,omitempty"`
	National      string `json:"national,omitempty"`
	CountryCode   int    `json:"countryCode,omitempty"`
	Region        string `json:"region,omitempty"`
	NumberType    string `json:"numberType,omitempty"`
	Carrier       string `json:"carrier,omitempty"`
}
