package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFallbackHandlers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		handler http.Handler
		status  int
		code    string
	}{
		{"not found", NotFoundHandler(), http.StatusNotFound, codeNotFound},
		{"method not allowed", MethodNotAllowedHandler(), http.StatusMethodNotAllowed, codeMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/missing", nil))

			if rec.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rec.Code)
			}
			var resp errorResponse
			decodeBody(t, rec, &resp)
			if resp.Code != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, resp.Code)
			}
		})
	}
}
