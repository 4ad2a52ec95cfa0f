package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFStore_IssueAndExpire(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewCSRFStore(client)
	token, err := store.Issue(context.Background())
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.True(t, store.Valid(context.Background(), token))

	mr.FastForward(CSRFTokenTTL)
	assert.False(t, store.Valid(context.Background(), token))
}

func TestCSRFStore_WithoutRedis(t *testing.T) {
	store := NewCSRFStore(nil)
	_, err := store.Issue(context.Background())
	assert.ErrorIs(t, err, ErrCSRFUnavailable)
}

func TestCSRFProtect(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewCSRFStore(client)
	token, err := store.Issue(context.Background())
	require.NoError(t, err)

	r := newTestRouter(CSRFProtect(store, "/api/payments/webhook"))
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	r.GET("/api/cart", ok)
	r.POST("/api/cart/items", ok)
	r.POST("/api/payments/webhook/stripe", ok)

	tests := []struct {
		name    string
		method  string
		path    string
		headers map[string]string
		status  int
	}{
		{"safe method", http.MethodGet, "/api/cart", nil, http.StatusNoContent},
		{"missing token", http.MethodPost, "/api/cart/items", nil, http.StatusForbidden},
		{"unknown token", http.MethodPost, "/api/cart/items", map[string]string{HeaderCSRFToken: "nope"}, http.StatusForbidden},
		{"valid token", http.MethodPost, "/api/cart/items", map[string]string{HeaderCSRFToken: token}, http.StatusNoContent},
		{"bearer requests", http.MethodPost, "/api/cart/items", map[string]string{"Authorization": "Bearer x"}, http.StatusNoContent},
		{"webhook", http.MethodPost, "/api/payments/webhook/stripe", nil, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
