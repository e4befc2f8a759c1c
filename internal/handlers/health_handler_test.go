package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"up", nil, http.StatusOK, `{"status":"ok"}`},
		{"down", errors.New("no reachable servers"), http.StatusServiceUnavailable, `{"status":"unavailable"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHealthHandler(pingerFunc(func(ctx context.Context) error {
				_, ok := ctx.Deadline()
				assert.True(t, ok)
				return tc.err
			}), zap.NewNop().Sugar())
			r := gin.New()
			r.GET("/healthz", h.Healthz)
			r.GET("/", h.Index)

			w := do(r, http.MethodGet, "/healthz", "")
			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())

			w = do(r, http.MethodGet, "/", "")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"service":"loginpage","status":"ok"}`, w.Body.String())
		})
	}
}
