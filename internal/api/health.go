package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

// HealthChecker reports service liveness and database reachability.
type HealthChecker struct {
	db        *sql.DB
	startTime time.Time
}

// NewHealthChecker creates a HealthChecker. db may be nil in tests; the
// database check then reports "not_configured".
func NewHealthChecker(db *sql.DB) *HealthChecker {
	return &HealthChecker{db: db, startTime: time.Now()}
}

// HandleHealth returns overall health. Always responds 200; the status
// field conveys degradation.
//
//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	dbStatus := "not_configured"

	if hc.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := hc.db.PingContext(ctx); err != nil {
			status = "degraded"
			dbStatus = "down"
		} else {
			dbStatus = "up"
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   status,
		"uptime":   time.Since(hc.startTime).Round(time.Second).String(),
		"database": dbStatus,
	})
}
