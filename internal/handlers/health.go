// Copyright (c) 2025-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"net/http"
	"runtime"
	"time"

	"dossier/internal/telemetry"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	AppVersion string
	StartTime  time.Time
	Telemetry  *telemetry.Registry
}

func NewHealthHandler(appVersion string, reg *telemetry.Registry) *HealthHandler {
	return &HealthHandler{
		AppVersion: appVersion,
		StartTime:  time.Now(),
		Telemetry:  reg,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := gin.H{
		"status":  "ok",
		"version": h.AppVersion,
		"uptime":  time.Since(h.StartTime).String(),
		"memory": gin.H{
			"alloc_mb":       memStats.Alloc / 1024 / 1024,
			"sys_mb":         memStats.Sys / 1024 / 1024,
			"num_goroutines": runtime.NumGoroutine(),
		},
	}

	if h.Telemetry != nil {
		response["providers"] = h.Telemetry.Snapshot()
	}

	c.JSON(http.StatusOK, response)
}
