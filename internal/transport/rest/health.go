package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// pingTimeout bounds the database probe on readiness and health checks.
const pingTimeout = 3 * time.Second

// dbPinger is the slice of the connection pool the probes need.
type dbPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers orchestration probes. Liveness is unconditional;
// readiness and the full report gate on Postgres, the only dependency this
// service has.
type HealthHandler struct {
	db      dbPinger
	version string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db dbPinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

const (
	statusUp   = "up"
	statusDown = "down"
)

type probeResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Checks    map[string]checkResult `json:"checks,omitempty"`
	CheckedAt time.Time              `json:"checkedAt"`
}

type checkResult struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
}

// Live reports that the process is running. It never touches dependencies:
// a flapping database must not get the pod restarted.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, probeResponse{
		Status:    statusUp,
		CheckedAt: time.Now().UTC(),
	})
}

// Ready reports whether the service can take traffic: 200 when Postgres
// answers a ping inside pingTimeout, 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := probeResponse{Status: statusUp, CheckedAt: time.Now().UTC()}
	code := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		resp.Status = statusDown
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// Health is the diagnostic report: per-dependency state with measured
// latency, plus the build version for correlating behavior with deploys.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	started := time.Now()
	err := h.db.Ping(ctx)
	latency := time.Since(started)

	resp := probeResponse{
		Status:    statusUp,
		Version:   h.version,
		Checks:    make(map[string]checkResult),
		CheckedAt: time.Now().UTC(),
	}
	code := http.StatusOK
	if err != nil {
		resp.Status = statusDown
		resp.Checks["postgres"] = checkResult{Status: statusDown}
		code = http.StatusServiceUnavailable
	} else {
		resp.Checks["postgres"] = checkResult{Status: statusUp, Latency: latency.String()}
	}
	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
