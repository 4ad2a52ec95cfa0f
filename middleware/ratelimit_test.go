package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hit(r http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	rl := NewRateLimiter("api", client, 2, time.Minute)
	rl.now = func() time.Time { return time.Date(2025, 10, 31, 12, 0, 15, 0, time.UTC) }

	r := newTestRouter(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1").Code)

	w := hit(r, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "45", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.2").Code, "other clients have their own window")
}

func TestRateLimiter_LocalFallback(t *testing.T) {
	rl := NewRateLimiter("auth", nil, 3, time.Minute)

	r := newTestRouter(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, hit(r, "10.0.0.1").Code)
	}

	w := hit(r, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Equal(t, 20, retry)
}

func TestRateLimiter_RedisDownFallsBack(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	rl := NewRateLimiter("api", client, 1, time.Minute)
	r := newTestRouter(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "10.0.0.1").Code)
}
