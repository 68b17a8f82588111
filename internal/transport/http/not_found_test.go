package http

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestRouter_UnknownRoutes(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(nil)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
		expectedCode   string
	}{
		{name: "unknown path", method: http.MethodGet, path: "/missing", expectedStatus: http.StatusNotFound, expectedCode: codeNotFound},
		{name: "unknown api path", method: http.MethodGet, path: "/api/orders/o1/refund", expectedStatus: http.StatusNotFound, expectedCode: codeNotFound},
		{name: "wrong method", method: http.MethodPatch, path: "/health", expectedStatus: http.StatusMethodNotAllowed, expectedCode: codeMethodNotAllowed},
		{name: "wrong method on api route", method: http.MethodDelete, path: "/api/orders/o1", expectedStatus: http.StatusMethodNotAllowed, expectedCode: codeMethodNotAllowed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := serve(router, tt.method, tt.path, "")
			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}

			var resp errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Code != tt.expectedCode {
				t.Fatalf("expected code %s, got %s", tt.expectedCode, resp.Code)
			}
		})
	}
}
