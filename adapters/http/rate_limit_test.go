package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(r http.Handler) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/r", nil))
	return w
}

func TestRateLimitMiddleware_Memory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(0.001, 2))
	r.GET("/r", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, serve(r).Code)
	require.Equal(t, http.StatusOK, serve(r).Code)

	w := serve(r)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate limited")
}

func TestRedisRateLimitMiddleware_Window(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := mr.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer client.Close()

	r := gin.New()
	r.Use(RedisRateLimitMiddleware(client, 0, 1, time.Minute))
	r.GET("/r", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, serve(r).Code)

	w := serve(r)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// the window key carries a TTL, so skipping past it frees the client
	m.FastForward(2 * time.Minute)
	require.Equal(t, http.StatusOK, serve(r).Code)
}

func TestRedisRateLimitMiddleware_RedisDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := mr.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	defer client.Close()
	m.Close()

	r := gin.New()
	r.Use(RedisRateLimitMiddleware(client, 10, 10, time.Second))
	r.GET("/r", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	assert.Equal(t, http.StatusInternalServerError, serve(r).Code)
}

func TestRedisRateLimitMiddleware_NilClientFallsBack(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RedisRateLimitMiddleware(nil, 0.001, 1, time.Second))
	r.GET("/r", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, serve(r).Code)
	require.Equal(t, http.StatusTooManyRequests, serve(r).Code)
}
