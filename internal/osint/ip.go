// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package osint

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

const (
	providerIPAPI   = "ip-api"
	providerIPWhois = "ipwhois"

	// ip-api's default field set omits reverse; ask for everything we merge.
	ipAPIFields = "status,message,query,city,regionName,country,lat,lon,isp,org,as,reverse,timezone,proxy,hosting"
)

// ipAPIResponse is ip-api.com's flat schema. Its own failure sentinel is
// status == "fail".
type ipAPIResponse struct {
	Status     string   `json:"status"`
	Query      string   `json:"query"`
	City       string   `json:"city"`
	RegionName string   `json:"regionName"`
	Country    string   `json:"country"`
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
	ISP        string   `json:"isp"`
	Org        string   `json:"org"`
	AS         string   `json:"as"`
	Reverse    string   `json:"reverse"`
	Timezone   string   `json:"timezone"`
	Proxy      *bool    `json:"proxy"`
	Hosting    *bool    `json:"hosting"`
}

// ipWhoisResponse is ipwho.is's nested schema.
type ipWhoisResponse struct {
	Success    *bool    `json:"success"`
	IP         string   `json:"ip"`
	City       string   `json:"city"`
	Region     string   `json:"region"`
	Country    string   `json:"country"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Connection struct {
		ASN int    `json:"asn"`
		Org string `json:"org"`
		ISP string `json:"isp"`
	} `json:"connection"`
	Timezone struct {
		ID string `json:"id"`
	} `json:"timezone"`
}

// LookupIP queries both geolocation providers concurrently and merges their
// answers with fixed precedence: ip-api first, ipwho.is fills the gaps.
// It never fails; when both providers are down the record is empty and
// Sources has no entries. The input is forwarded as-is — a malformed IP
// just makes both providers fail independently.
func (s *Service) LookupIP(ctx context.Context, ip string) *IPRecord {
	record := &IPRecord{Sources: make(map[string]json.RawMessage)}

	var (
		rawA, rawB json.RawMessage
		errA, errB error
	)

	settleAll([]func(){
		func() {
			url := fmt.Sprintf("%s/%s?fields=%s", s.endpoints.IPAPI, ip, ipAPIFields)
			rawA, errA = s.fetchSource(ctx, providerIPAPI, url)
		},
		func() {
			url := fmt.Sprintf("%s/%s", s.endpoints.IPWhois, ip)
			rawB, errB = s.fetchSource(ctx, providerIPWhois, url)
		},
	})

	if errA == nil {
		record.Sources[providerIPAPI] = rawA
		applyIPAPI(record, rawA)
	} else {
		slog.Debug("ip provider contributed nothing", "provider", providerIPAPI, "ip", ip, "error", errA)
	}

	if errB == nil {
		record.Sources[providerIPWhois] = rawB
		applyIPWhois(record, rawB)
	} else {
		slog.Debug("ip provider contributed nothing", "provider", providerIPWhois, "ip", ip, "error", errB)
	}

	return record
}

// fetchSource performs one best-effort provider call and records its outcome
// in the telemetry registry.
func (s *Service) fetchSource(ctx context.Context, provider, url string) (json.RawMessage, error) {
	start := time.Now()
	raw, err := s.HTTP.GetRaw(ctx, url)
	if err != nil {
		s.Telemetry.RecordFailure(provider, err.Error())
		return nil, err
	}
	s.Telemetry.RecordSuccess(provider, time.Since(start))
	return raw, nil
}

// applyIPAPI writes every field ip-api supplied, unconditionally, unless the
// payload carries the provider's own failure sentinel or doesn't decode.
func applyIPAPI(record *IPRecord, raw json.RawMessage) {
	var resp ipAPIResponse
	if json.Unmarshal(raw, &resp) != nil {
		return
	}
	if resp.Status == "fail" {
		return
	}

	setIfEmpty(&record.IP, resp.Query)
	setIfEmpty(&record.City, resp.City)
	setIfEmpty(&record.Region, resp.RegionName)
	setIfEmpty(&record.Country, resp.Country)
	setFloatIfEmpty(&record.Lat, resp.Lat)
	setFloatIfEmpty(&record.Lon, resp.Lon)
	setIfEmpty(&record.ISP, resp.ISP)
	setIfEmpty(&record.Org, resp.Org)
	setIfEmpty(&record.ASN, resp.AS)
	setIfEmpty(&record.Reverse, resp.Reverse)
	setIfEmpty(&record.Timezone, resp.Timezone)
	if record.Proxy == nil {
		record.Proxy = resp.Proxy
	}
	if record.Hosting == nil {
		record.Hosting = resp.Hosting
	}
}

// applyIPWhois fills only fields still unset after the primary provider —
// first writer wins. The nested connection/timezone sub-fields flatten onto
// the record's scalar fields.
func applyIPWhois(record *IPRecord, raw json.RawMessage) {
	var resp ipWhoisResponse
	if json.Unmarshal(raw, &resp) != nil {
		return
	}
	if resp.Success != nil && !*resp.Success {
		return
	}

	setIfEmpty(&record.IP, resp.IP)
	setIfEmpty(&record.City, resp.City)
	setIfEmpty(&record.Region, resp.Region)
	setIfEmpty(&record.Country, resp.Country)
	setFloatIfEmpty(&record.Lat, resp.Latitude)
	setFloatIfEmpty(&record.Lon, resp.Longitude)
	setIfEmpty(&record.ISP, resp.Connection.ISP)
	setIfEmpty(&record.Org, resp.Connection.Org)
	if resp.Connection.ASN != 0 {
		setIfEmpty(&record.ASN, fmt.Sprintf("AS%d", resp.Connection.ASN))
	}
	setIfEmpty(&record.Timezone, resp.Timezone.ID)
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

func setFloatIfEmpty(dst **float64, v *float64) {
	if *dst == nil && v != nil {
		*dst = v
	}
}
