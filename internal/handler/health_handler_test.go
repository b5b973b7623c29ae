package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"authportal/internal/service"
)

var healthy = service.HealthStatus{Healthy: true, Database: "connected"}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		status   service.HealthStatus
		wantCode int
		wantBody string
	}{
		{"database reachable", healthy, http.StatusOK, `{"status":"healthy","database":"connected"}`},
		{
			"database down",
			service.HealthStatus{Database: "Database connection failed"},
			http.StatusServiceUnavailable,
			`{"status":"unhealthy","database":"Database connection failed"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.status)

			rec := s.get("/health")
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
