package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func echo(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body)
	})
}

func TestNewHttpServer(t *testing.T) {
	s := NewHttpServer(HttpServerParams{
		Context: context.Background(),
		Config:  HttpConfig{Host: "localhost", Port: 8080},
		Handlers: []*HttpHandler{
			AsHttpHandler("GET /health", echo("ok")).Handler,
			AsHttpHandler("POST /functions/{function}", echo("function")).Handler,
		},
		Logger: zaptest.NewLogger(t),
	})

	assert.Equal(t, "localhost:8080", s.server.Addr)

	w := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "ok", w.Body.String())

	w = httptest.NewRecorder()
	s.server.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/functions/add-frame-options", nil))
	assert.Equal(t, "function", w.Body.String())

	w = httptest.NewRecorder()
	s.server.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/functions/add-frame-options", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHttpConfig_Address(t *testing.T) {
	assert.Equal(t, "127.0.0.1:9000", HttpConfig{Host: "127.0.0.1", Port: 9000}.Address())
	assert.Equal(t, "[::1]:80", HttpConfig{Host: "::1", Port: 80}.Address())
}
