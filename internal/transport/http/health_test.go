package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealthHandler_OK(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()

	HealthHandler(rec, req)

	res := rec.Result()
	if res.StatusCode != 200 {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}

	body := rec.Body.String()
	if body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestReadyHandler(t *testing.T) {
	t.Parallel()

	up := PingerFunc(func(context.Context) error { return nil })
	down := PingerFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name           string
		deps           map[string]Pinger
		expectedStatus int
		expectedSubstr string
	}{
		{name: "all up", deps: map[string]Pinger{"postgres": up, "redis": up}, expectedStatus: http.StatusOK, expectedSubstr: `"redis":"ok"`},
		{name: "one down", deps: map[string]Pinger{"postgres": up, "redis": down}, expectedStatus: http.StatusServiceUnavailable, expectedSubstr: `"redis":"unavailable"`},
		{name: "no deps", deps: nil, expectedStatus: http.StatusOK, expectedSubstr: `{}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			ReadyHandler(tt.deps)(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected body to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}
