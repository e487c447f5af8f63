package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		path   string
		header string
		want   int
	}{
		{"no keys passes through", nil, "/v1/corpora", "", http.StatusOK},
		{"empty string keys pass through", []string{"", ""}, "/v1/corpora", "", http.StatusOK},
		{"missing header", []string{"secret"}, "/v1/corpora", "", http.StatusUnauthorized},
		{"basic scheme", []string{"secret"}, "/v1/corpora", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"invalid token", []string{"secret"}, "/v1/corpora", "Bearer wrong-key", http.StatusUnauthorized},
		{"token prefix of key", []string{"secret"}, "/v1/corpora", "Bearer sec", http.StatusUnauthorized},
		{"valid token", []string{"secret"}, "/v1/corpora", "Bearer secret", http.StatusOK},
		{"second key", []string{"key1", "key2"}, "/v1/comparisons", "Bearer key2", http.StatusOK},
		{"health exempt", []string{"secret"}, "/health", "", http.StatusOK},
		{"metrics exempt", []string{"secret"}, "/metrics", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := BearerAuthMiddleware(tt.keys)(okHandler())

			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("got %d, want %d", rr.Code, tt.want)
			}
			if rr.Code != http.StatusUnauthorized {
				return
			}
			var errResp errorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != codeUnauthorized {
				t.Errorf("error code: got %s, want %s", errResp.Code, codeUnauthorized)
			}
		})
	}
}
