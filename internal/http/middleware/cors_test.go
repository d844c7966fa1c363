package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		allowed     []string
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantOrigin  string
		wantHandler bool
	}{
		{"listed origin", []string{"https://salon.example/"}, http.MethodPost, "https://salon.example", false, http.StatusOK, "https://salon.example", true},
		{"unknown origin passes without headers", []string{"https://salon.example"}, http.MethodPost, "https://other.example", false, http.StatusOK, "", true},
		{"wildcard", []string{"*"}, http.MethodGet, "https://random.example", false, http.StatusOK, "https://random.example", true},
		{"no origin", []string{"https://salon.example"}, http.MethodGet, "", false, http.StatusOK, "", true},
		{"preflight allowed", []string{"https://salon.example"}, http.MethodOptions, "https://salon.example", true, http.StatusNoContent, "https://salon.example", false},
		{"preflight denied", []string{"https://salon.example"}, http.MethodOptions, "https://other.example", true, http.StatusForbidden, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := CORS(tt.allowed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(tt.method, "/chat", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Fatalf("expected allow origin %q, got %q", tt.wantOrigin, got)
			}
			if called != tt.wantHandler {
				t.Fatalf("handler called = %v, want %v", called, tt.wantHandler)
			}
			if tt.wantOrigin != "" && rec.Header().Get("Access-Control-Allow-Methods") != corsAllowedMethods {
				t.Fatalf("expected allow methods header")
			}
		})
	}
}
