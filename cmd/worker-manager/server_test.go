package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"course-workers/internal/common/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestServeMux_Endpoints(t *testing.T) {
	healthy := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return stderrors.New("connection refused") })

	tests := []struct {
		name       string
		path       string
		deps       map[string]database.Pinger
		wantStatus int
		wantBody   string
	}{
		{"health", "/health", nil, http.StatusOK, "healthy"},
		{"ready", "/ready", map[string]database.Pinger{"postgres": healthy, "redis": healthy}, http.StatusOK, "ready"},
		{"not ready", "/ready", map[string]database.Pinger{"postgres": healthy, "zeebe": down}, http.StatusServiceUnavailable, "not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newServeMux(tt.deps, time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body["status"])
		})
	}
}

func TestServeMux_ReportsFailingDependency(t *testing.T) {
	deps := map[string]database.Pinger{
		"zeebe": pingFunc(func(context.Context) error { return stderrors.New("unavailable") }),
	}
	rec := httptest.NewRecorder()

	newServeMux(deps, time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var body struct {
		Failures map[string]string `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body.Failures["zeebe"])
}

func TestServeMux_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()

	newServeMux(nil, time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
