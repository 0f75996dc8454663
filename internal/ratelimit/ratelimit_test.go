package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"claimwise-auth/internal/auth/signup"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAllowBurstThenRefill(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("5.6.7.8"), "buckets are per key")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("1.2.3.4"))
}

func TestIdleBucketsAreEvicted(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(1, 1)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(idleAfter + time.Second)
	l.Allow("b")

	assert.Len(t, l.visitors, 1)
}

func TestMiddlewareResponds429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/login", New(0.001, 1).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	call := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		return w
	}

	assert.Equal(t, http.StatusNoContent, call().Code)

	w := call()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), signup.MsgRateLimited)
	assert.Contains(t, w.Body.String(), string(signup.KindRateLimited))
}
