package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if called != nil {
			*called = true
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	called := false
	mw := CORS([]string{"https://locusvenue.ca/"})
	req := httptest.NewRequest(http.MethodPost, "/booking/submit", nil)
	req.Header.Set("Origin", "https://locusvenue.ca")
	rec := httptest.NewRecorder()

	mw(okHandler(&called)).ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to be called")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://locusvenue.ca" {
		t.Fatalf("expected allow origin header, got %q", got)
	}
	if got := rec.Header().Get("Vary"); got != "Origin" {
		t.Fatalf("expected Vary: Origin, got %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") != "GET, POST, OPTIONS" {
		t.Fatalf("unexpected allow methods %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestCORSDeniesUnknownOrigin(t *testing.T) {
	called := false
	mw := CORS([]string{"https://locusvenue.ca"})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://unknown.example")
	rec := httptest.NewRecorder()

	mw(okHandler(&called)).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow origin header, got %q", got)
	}
	if !called {
		t.Fatalf("simple requests still reach the handler")
	}
}

func TestCORSWildcard(t *testing.T) {
	mw := CORS([]string{"*"})
	req := httptest.NewRequest(http.MethodGet, "/api/google-calendar/events", nil)
	req.Header.Set("Origin", "https://random.example")
	rec := httptest.NewRecorder()

	mw(okHandler(nil)).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard allow origin, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		want   int
	}{
		{"allowed", "https://locusvenue.ca", http.StatusNoContent},
		{"unknown", "https://evil.example", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mw := CORS([]string{"https://locusvenue.ca"})
			req := httptest.NewRequest(http.MethodOptions, "/chat/message", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", "POST")
			rec := httptest.NewRecorder()

			mw(okHandler(&called)).ServeHTTP(rec, req)

			if called {
				t.Fatalf("expected handler to not be called on preflight")
			}
			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
