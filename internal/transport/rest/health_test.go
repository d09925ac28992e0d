package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dbPingerMock struct {
	pingFunc func(ctx context.Context) error
}

func (m *dbPingerMock) Ping(ctx context.Context) error {
	if m.pingFunc == nil {
		return nil
	}
	return m.pingFunc(ctx)
}

func decodeProbe(t *testing.T, rec *httptest.ResponseRecorder) probeResponse {
	t.Helper()
	var resp probeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestLive_IgnoresDatabase(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&dbPingerMock{
		pingFunc: func(context.Context) error { return errors.New("db is on fire") },
	}, "1.2.3")

	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code, "liveness must not depend on the database")
	resp := decodeProbe(t, rec)
	assert.Equal(t, "up", resp.Status)
	assert.False(t, resp.CheckedAt.IsZero())
}

func TestReady_FollowsDatabase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pingErr    error
		wantCode   int
		wantStatus string
	}{
		{"database answers", nil, http.StatusOK, "up"},
		{"database unreachable", errors.New("connection refused"), http.StatusServiceUnavailable, "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewHealthHandler(&dbPingerMock{
				pingFunc: func(context.Context) error { return tt.pingErr },
			}, "1.2.3")

			rec := httptest.NewRecorder()
			h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStatus, decodeProbe(t, rec).Status)
		})
	}
}

func TestHealth_ReportsPostgresWithLatency(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&dbPingerMock{}, "1.2.3")

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeProbe(t, rec)
	assert.Equal(t, "up", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)

	pg, ok := resp.Checks["postgres"]
	require.True(t, ok, "report must name the postgres check")
	assert.Equal(t, "up", pg.Status)
	assert.NotEmpty(t, pg.Latency)
}

func TestHealth_DegradedWhenPostgresDown(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&dbPingerMock{
		pingFunc: func(context.Context) error { return errors.New("connection refused") },
	}, "1.2.3")

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeProbe(t, rec)
	assert.Equal(t, "down", resp.Status)

	pg := resp.Checks["postgres"]
	assert.Equal(t, "down", pg.Status)
	assert.Empty(t, pg.Latency, "no latency for a failed probe")
}
