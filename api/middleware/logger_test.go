package middleware

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func TestLoggerTo(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    []string
	}{
		{
			name: "implicit ok",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("hello"))
			},
			want: []string{"GET /probe 200 5B"},
		},
		{
			name: "explicit status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			},
			want: []string{"GET /probe 418 0B"},
		},
		{
			name:    "no write",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			want:    []string{"- GET /probe 200 0B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := LoggerTo(log.New(&buf, "", 0))(tt.handler)
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/probe", nil))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestLoggerRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := chimiddleware.RequestID(LoggerTo(log.New(&buf, "", 0))(http.NotFoundHandler()))
	req := httptest.NewRequest(http.MethodPost, "/missing", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Contains(t, buf.String(), "req-42 POST /missing 404")
}
