package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"claimwise-auth/internal/config"
	"claimwise-auth/internal/db"
	"claimwise-auth/internal/events"
	"claimwise-auth/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() config.Config {
	return config.Config{
		PublicBaseURL:    "http://localhost:8080",
		OAuthRedirectURL: "/dashboard",
		IdentityProvider: "memory",
		UserStoreDriver:  "sqlite",
		AuthRateLimit:    100,
		AuthRateBurst:    100,
	}
}

func testInfra(t *testing.T) *Infra {
	t.Helper()
	d, err := db.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	infra := &Infra{DB: d, Sessions: session.NewMemoryStore(), Events: events.Nop{}}
	t.Cleanup(func() { _ = infra.Close() })
	return infra
}

func TestRouterServesSignupAndHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(context.Background(), memoryConfig(), testInfra(t))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(
		`{"email":"a@b.com","password":"secret1","confirm_password":"secret1","full_name":"Jane Doe"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestBearerRoutesRefusedWithoutSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(context.Background(), memoryConfig(), testInfra(t))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSetupProvidersBrokersOAuthThroughGoTrue(t *testing.T) {
	cfg := memoryConfig()
	cfg.IdentityProvider = "gotrue"
	cfg.SupabaseURL = "https://project.supabase.co"
	cfg.SupabaseKey = "anon"
	cfg.OAuthProviders = []string{"google", " github ", ""}

	_, oauth, err := setupProviders(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, oauth, 2)
	assert.Equal(t, "google", oauth[0].Name())
	assert.Equal(t, "github", oauth[1].Name())

	authURL := oauth[1].AuthCodeURL("st", "ch")
	assert.Contains(t, authURL, "https://project.supabase.co/auth/v1/authorize")
	assert.Contains(t, authURL, "provider=github")
}

func TestSetupInfraKeepsSessionsInMemory(t *testing.T) {
	cfg := memoryConfig()
	cfg.SQLitePath = ":memory:"
	cfg.SessionStore = "memory"
	cfg.RedisAddr = "127.0.0.1:1"

	infra, err := setupInfra(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = infra.Close() })

	assert.Nil(t, infra.Redis)
	assert.IsType(t, &session.MemoryStore{}, infra.Sessions)
	assert.IsType(t, events.Nop{}, infra.Events)
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/dashboard", absoluteURL("http://localhost:8080", "/dashboard"))
	assert.Equal(t, "https://app.example/x", absoluteURL("http://localhost:8080", "https://app.example/x"))
}
