package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/fusion-resume/pkg/apperror"
	"github.com/khoahotran/fusion-resume/pkg/logger"
)

func TestErrorMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorMiddleware(logger.NewNopLogger()))
	r.GET("/invalid", func(c *gin.Context) { c.Error(apperror.NewInvalidInput("bad", nil)) })
	r.GET("/plain", func(c *gin.Context) { c.Error(errors.New("boom")) })
	r.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	cases := []struct {
		path   string
		status int
		body   string
	}{
		{"/invalid", http.StatusBadRequest, `"error":"invalid input"`},
		{"/plain", http.StatusInternalServerError, `"error":"internal server error"`},
		{"/ok", http.StatusOK, `"ok":true`},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.status, w.Code, tc.path)
		assert.Contains(t, w.Body.String(), tc.body, tc.path)
	}
}

func TestErrorMiddleware_DoesNotLeakCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorMiddleware(logger.NewNopLogger()))
	r.GET("/x", func(c *gin.Context) { c.Error(apperror.NewInternal("db", errors.New("password=hunter2"))) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")
}

func TestRequestLogger_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(logger.NewNopLogger()))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(GinContextKeyRequestID)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	generated := w.Header().Get(HeaderRequestID)
	require.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestRouter_HealthAndReady(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ReadyReportsDependencyFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.NewNopLogger()
	r := NewRouter(RouterDeps{
		Logger:       log,
		BlurbHandler: NewBlurbHandler(nil, log),
		Ready:        func(context.Context) error { return errors.New("pool closed") },
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "DOWN")
}
