// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package api

import (
	"net/http"
	"time"

	"github.com/seannywoot/libraai/internal/models"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var startTime = time.Now()

// HealthCheck handles GET /api/v1/health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	envelope := models.NewSuccessResponse(map[string]interface{}{
		"status":         "healthy",
		"version":        Version,
		"uptime_seconds": int64(time.Since(startTime).Seconds()),
	}, models.Metadata{})
	respondJSON(w, http.StatusOK, &envelope)
}
