// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package dnsclient resolves (name, record-type) pairs over DNS-over-HTTPS
// JSON, falling back to plain UDP resolvers when the DoH endpoint yields
// nothing. Any failure resolves to an empty answer set, never an error.
package dnsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/miekg/dns"
	"codeberg.org/miekg/dns/dnsutil"
)

type ResolverConfig struct {
	Name string
	IP   string
}

var DefaultResolvers = []ResolverConfig{
	{Name: "Cloudflare", IP: "1.1.1.1"},
	{Name: "Google", IP: "8.8.8.8"},
}

const (
	dohGoogleURL   = "https://dns.google/resolve"
	defaultTimeout = 2 * time.Second
)

// Answer is one raw DNS answer record as the DoH endpoint returns it.
// Data is kept verbatim; record-specific parsing belongs to the caller.
type Answer struct {
	Data string `json:"data"`
	TTL  uint32 `json:"TTL"`
}

type Resolver struct {
	endpoint   string
	resolvers  []ResolverConfig
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	udpEnabled bool
}

type Option func(*Resolver)

func WithEndpoint(u string) Option {
	return func(r *Resolver) { r.endpoint = u }
}

func WithResolvers(rc []ResolverConfig) Option {
	return func(r *Resolver) { r.resolvers = rc }
}

func WithHTTPClient(h *http.Client) Option {
	return func(r *Resolver) { r.httpClient = h }
}

func WithTimeout(t time.Duration) Option {
	return func(r *Resolver) { r.timeout = t }
}

// WithoutUDPFallback restricts resolution to the DoH endpoint only.
func WithoutUDPFallback() Option {
	return func(r *Resolver) { r.udpEnabled = false }
}

func New(opts ...Option) *Resolver {
	r := &Resolver{
		endpoint:  dohGoogleURL,
		resolvers: DefaultResolvers,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				IdleConnTimeout:     30 * time.Second,
				DisableKeepAlives:   false,
				MaxIdleConnsPerHost: 5,
			},
		},
		timeout:    defaultTimeout,
		userAgent:  "dossier-osint/1.0",
		udpEnabled: true,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the answer records for one (name, type) pair. The slice is
// empty on any upstream condition: transport error, non-200, DoH status
// other than NOERROR, missing Answer key, or unparseable body.
func (r *Resolver) Resolve(ctx context.Context, name, recordType string) []Answer {
	if name == "" || recordType == "" {
		return nil
	}

	answers := r.dohQuery(ctx, name, recordType)
	if len(answers) > 0 {
		return answers
	}

	if !r.udpEnabled {
		return nil
	}
	for _, resolver := range r.resolvers {
		answers = r.udpQuery(ctx, name, recordType, resolver.IP)
		if len(answers) > 0 {
			return answers
		}
	}
	return nil
}

type dohResponse struct {
	Status int      `json:"Status"`
	Answer []Answer `json:"Answer"`
}

func (r *Resolver) dohQuery(ctx context.Context, name, recordType string) []Answer {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return nil
	}

	q := url.Values{}
	q.Set("name", name)
	q.Set("type", strings.ToUpper(recordType))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/dns-json")
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		slog.Debug("DoH query failed", "name", name, "type", recordType, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil
	}

	return parseDohResponse(body)
}

// parseDohResponse keeps answers verbatim and in server order; an absent
// Answer key or a non-zero DoH status both mean "no answers".
func parseDohResponse(body []byte) []Answer {
	var data dohResponse
	if json.Unmarshal(body, &data) != nil {
		return nil
	}
	if data.Status != 0 {
		return nil
	}

	answers := make([]Answer, 0, len(data.Answer))
	for _, a := range data.Answer {
		if strings.TrimSpace(a.Data) == "" {
			continue
		}
		answers = append(answers, a)
	}
	if len(answers) == 0 {
		return nil
	}
	return answers
}

func dnsTypeFromString(recordType string) (uint16, error) {
	switch strings.ToUpper(recordType) {
	case "A":
		return dns.TypeA, nil
	case "AAAA":
		return dns.TypeAAAA, nil
	case "MX":
		return dns.TypeMX, nil
	case "NS":
		return dns.TypeNS, nil
	case "TXT":
		return dns.TypeTXT, nil
	case "CNAME":
		return dns.TypeCNAME, nil
	default:
		return 0, fmt.Errorf("unsupported record type: %s", recordType)
	}
}

// rrToString renders a UDP answer into the same textual shape the DoH JSON
// endpoint uses for its data field.
func rrToString(rr dns.RR) string {
	switch v := rr.(type) {
	case *dns.A:
		return v.A.Addr.String()
	case *dns.AAAA:
		return v.AAAA.Addr.String()
	case *dns.MX:
		return fmt.Sprintf("%d %s", v.MX.Preference, v.MX.Mx)
	case *dns.TXT:
		return strings.Join(v.TXT.Txt, "")
	case *dns.NS:
		return v.NS.Ns
	case *dns.CNAME:
		return v.CNAME.Target
	default:
		hdr := rr.Header()
		return strings.TrimPrefix(rr.String(), hdr.String())
	}
}

func (r *Resolver) udpQuery(ctx context.Context, name, recordType, resolverIP string) []Answer {
	qtype, err := dnsTypeFromString(recordType)
	if err != nil {
		return nil
	}

	fqdn := dnsutil.Fqdn(name)
	msg := dns.NewMsg(fqdn, qtype)
	msg.RecursionDesired = true

	client := newDNSClient(r.timeout)

	resp, _, err := client.Exchange(ctx, msg, "udp", net.JoinHostPort(resolverIP, "53"))
	if err != nil {
		slog.Debug("UDP query failed", "name", name, "type", recordType, "resolver", resolverIP, "error", err)
		return nil
	}

	if resp.Rcode == dns.RcodeNameError {
		return nil
	}

	var answers []Answer
	for _, rr := range resp.Answer {
		s := rrToString(rr)
		if s == "" {
			continue
		}
		answers = append(answers, Answer{Data: s, TTL: rr.Header().TTL})
	}
	return answers
}

func newDNSClient(timeout time.Duration) *dns.Client {
	return &dns.Client{
		Transport: &dns.Transport{
			Dialer: &net.Dialer{
				Timeout: timeout,
			},
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
	}
}
