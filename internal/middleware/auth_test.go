package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIKey(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		key    string
		header string
		want   int
	}{
		{name: "disabled when empty", key: "", header: "", want: http.StatusOK},
		{name: "valid token", key: "secret", header: "Bearer secret", want: http.StatusOK},
		{name: "missing header", key: "secret", header: "", want: http.StatusUnauthorized},
		{name: "wrong token", key: "secret", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "wrong scheme", key: "secret", header: "Basic secret", want: http.StatusUnauthorized},
		{name: "case-insensitive scheme", key: "secret", header: "bearer secret", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := APIKey(tt.key)(next)

			req := httptest.NewRequest("GET", "/api/users", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
