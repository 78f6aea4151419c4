// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"dossier/internal/config"
	"dossier/internal/dnsclient"
	"dossier/internal/osint"

	"github.com/gin-gonic/gin"
)

type LookupHandler struct {
	Config  *config.Config
	Service *osint.Service
}

func NewLookupHandler(cfg *config.Config, svc *osint.Service) *LookupHandler {
	return &LookupHandler{Config: cfg, Service: svc}
}

// query pulls the mandatory q parameter; an empty q is the caller's fault.
func (h *LookupHandler) query(c *gin.Context) (string, bool) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return "", false
	}
	return q, true
}

// lookupCtx bounds one lookup; the aggregation core itself never imposes a
// deadline, so the surface has to.
func (h *LookupHandler) lookupCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.Config.LookupTimeout)
}

func (h *LookupHandler) IP(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}
	ctx, cancel := h.lookupCtx(c)
	defer cancel()

	record := h.Service.LookupIP(ctx, q)
	slog.Info("ip lookup", "trace_id", c.GetString("trace_id"), "query", q, "sources", len(record.Sources))

	c.JSON(http.StatusOK, gin.H{
		"record": record,
		"risk":   osint.ScoreIP(record),
	})
}

func (h *LookupHandler) Domain(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}
	ctx, cancel := h.lookupCtx(c)
	defer cancel()

	// Best-effort IDNA normalization; the aggregator takes whatever it gets.
	domain := q
	if ascii, err := dnsclient.DomainToASCII(q); err == nil {
		domain = ascii
	}

	record := h.Service.LookupDomain(ctx, domain)
	slog.Info("domain lookup", "trace_id", c.GetString("trace_id"), "query", domain)

	c.JSON(http.StatusOK, gin.H{
		"record": record,
		"risk":   osint.ScoreDomain(record),
	})
}

func (h *LookupHandler) Email(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}
	ctx, cancel := h.lookupCtx(c)
	defer cancel()

	record, err := h.Service.LookupEmail(ctx, q)
	if err != nil {
		var invalid *osint.InvalidEmailError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
			return
		}
		slog.Error("email lookup failed", "trace_id", c.GetString("trace_id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	slog.Info("email lookup", "trace_id", c.GetString("trace_id"), "domain", record.Domain)

	c.JSON(http.StatusOK, gin.H{
		"record": record,
		"risk":   osint.ScoreEmail(record),
	})
}

func (h *LookupHandler) Username(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}
	ctx, cancel := h.lookupCtx(c)
	defer cancel()

	profiles := h.Service.LookupUsername(ctx, q)
	slog.Info("username lookup", "trace_id", c.GetString("trace_id"), "query", q, "profiles", len(profiles))

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

func (h *LookupHandler) Phone(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}

	record := h.Service.LookupPhone(q)
	slog.Info("phone lookup", "trace_id", c.GetString("trace_id"), "valid", record.Valid)

	c.JSON(http.StatusOK, gin.H{"record": record})
}
