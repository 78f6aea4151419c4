// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package osint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"dossier/internal/dnsclient"
)

func answers(data ...string) []dnsclient.Answer {
	out := make([]dnsclient.Answer, 0, len(data))
	for _, d := range data {
		out = append(out, dnsclient.Answer{Data: d})
	}
	return out
}

func TestParseMX(t *testing.T) {
	tests := []struct {
		name string
		in   []dnsclient.Answer
		want []MXRecord
	}{
		{
			"trailing dot stripped",
			answers("10 mail.example.com."),
			[]MXRecord{{Priority: 10, Exchange: "mail.example.com"}},
		},
		{
			"order preserved",
			answers("20 alt.example.com.", "10 mail.example.com."),
			[]MXRecord{{Priority: 20, Exchange: "alt.example.com"}, {Priority: 10, Exchange: "mail.example.com"}},
		},
		{
			"non-matching shapes dropped",
			answers("garbage", "10", "ten mail.example.com.", "5 mx1.example.net"),
			[]MXRecord{{Priority: 5, Exchange: "mx1.example.net"}},
		},
		{"empty input", nil, []MXRecord{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseMX(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d records, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("record %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseTXT(t *testing.T) {
	got := parseTXT(answers(`"v=spf1 include:_spf.example.com ~all"`, "bare value", `""`))
	want := []string{"v=spf1 include:_spf.example.com ~all", "bare value"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseNS(t *testing.T) {
	got := parseNS(answers("ns1.example.com.", "ns2.example.com", " "))
	if len(got) != 2 || got[0] != "ns1.example.com" || got[1] != "ns2.example.com" {
		t.Errorf("unexpected NS parse: %v", got)
	}
}

func TestSPFDetection(t *testing.T) {
	if !hasSPF([]string{"v=spf1 include:_spf.example.com ~all"}) {
		t.Error("expected SPF detected")
	}
	if !hasSPF([]string{"other", "V=SPF1 -all"}) {
		t.Error("SPF detection must be case-insensitive")
	}
	if hasSPF([]string{"v=spf2.0/pra", "unrelated"}) {
		t.Error("spf2.0 is not v=spf1")
	}
}

func TestFindDMARC(t *testing.T) {
	rec := findDMARC([]string{"unrelated", "V=DMARC1; p=none", "v=dmarc1; p=reject"})
	if rec == nil || *rec != "V=DMARC1; p=none" {
		t.Errorf("expected first matching record, got %v", rec)
	}
	if findDMARC([]string{"nothing here"}) != nil {
		t.Error("expected absent DMARC")
	}
}

func TestRegistrarFromRDAP(t *testing.T) {
	raw := []byte(`{"entities":[{"roles":["registrant"]},{"roles":["registrar"],"vcardArray":["vcard",[["version",{},"text","4.0"],["fn",{},"text","Example Registrar LLC"]]]}]}`)
	got := registrarFromRDAP(raw)
	if got == nil || *got != "Example Registrar LLC" {
		t.Errorf("expected registrar name, got %v", got)
	}

	if registrarFromRDAP(nil) != nil {
		t.Error("nil rdap should yield nil registrar")
	}
	if registrarFromRDAP([]byte(`{"entities":[]}`)) != nil {
		t.Error("no registrar entity should yield nil")
	}
}

// Every upstream down: the aggregator must still return a well-formed,
// all-empty record.
func TestLookupDomain_AllSourcesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := New(
		WithResolver(dnsclient.New(dnsclient.WithEndpoint(srv.URL), dnsclient.WithoutUDPFallback())),
		WithEndpoints(Endpoints{RDAP: srv.URL}),
	)

	rec := svc.LookupDomain(context.Background(), "example.com")
	if rec.Domain != "example.com" {
		t.Errorf("domain not carried through: %q", rec.Domain)
	}
	if len(rec.A) != 0 || len(rec.AAAA) != 0 || len(rec.MX) != 0 || len(rec.NS) != 0 || len(rec.TXT) != 0 {
		t.Errorf("expected empty collections, got %+v", rec)
	}
	if rec.DMARC != nil || rec.SPF || rec.RDAP != nil || rec.Registrar != nil {
		t.Errorf("expected absent derived fields, got %+v", rec)
	}
}

func TestLookupDomain_ParsesAllRecordTypes(t *testing.T) {
	doh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		rtype := r.URL.Query().Get("type")
		switch {
		case name == "example.com" && rtype == "A":
			w.Write([]byte(`{"Status":0,"Answer":[{"data":"93.184.216.34"}]}`))
		case name == "example.com" && rtype == "MX":
			w.Write([]byte(`{"Status":0,"Answer":[{"data":"10 mail.example.com."}]}`))
		case name == "example.com" && rtype == "TXT":
			w.Write([]byte(`{"Status":0,"Answer":[{"data":"\"v=spf1 -all\""}]}`))
		case name == "_dmarc.example.com" && rtype == "TXT":
			w.Write([]byte(`{"Status":0,"Answer":[{"data":"\"v=DMARC1; p=quarantine\""}]}`))
		default:
			w.Write([]byte(`{"Status":0}`))
		}
	}))
	defer doh.Close()

	rdap := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"handle":"EXAMPLE","entities":[{"roles":["registrar"],"vcardArray":["vcard",[["fn",{},"text","IANA"]]]}]}`))
	}))
	defer rdap.Close()

	svc := New(
		WithResolver(dnsclient.New(dnsclient.WithEndpoint(doh.URL), dnsclient.WithoutUDPFallback())),
		WithEndpoints(Endpoints{RDAP: rdap.URL}),
	)

	rec := svc.LookupDomain(context.Background(), "example.com")
	if len(rec.A) != 1 || rec.A[0] != "93.184.216.34" {
		t.Errorf("A records: %v", rec.A)
	}
	if len(rec.MX) != 1 || rec.MX[0].Exchange != "mail.example.com" || rec.MX[0].Priority != 10 {
		t.Errorf("MX records: %+v", rec.MX)
	}
	if !rec.SPF {
		t.Error("expected SPF true")
	}
	if rec.DMARC == nil || *rec.DMARC != "v=DMARC1; p=quarantine" {
		t.Errorf("DMARC: %v", rec.DMARC)
	}
	if rec.RDAP == nil {
		t.Error("expected RDAP payload retained")
	}
	if rec.Registrar == nil || *rec.Registrar != "IANA" {
		t.Errorf("registrar: %v", rec.Registrar)
	}
}
