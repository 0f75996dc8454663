package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"claimwise-auth/internal/auth/handler"
	"claimwise-auth/internal/auth/provider"
	"claimwise-auth/internal/auth/provider/google"
	"claimwise-auth/internal/auth/provider/gotrue"
	"claimwise-auth/internal/auth/provider/keycloak"
	"claimwise-auth/internal/auth/provider/memory"
	"claimwise-auth/internal/auth/resolver"
	"claimwise-auth/internal/auth/signup"
	"claimwise-auth/internal/config"
	"claimwise-auth/internal/db"
	"claimwise-auth/internal/logger"
	"claimwise-auth/internal/middleware"
	"claimwise-auth/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	router, err := buildRouter(ctx, cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	return router, infra.Close, nil
}

func buildRouter(ctx context.Context, cfg config.Config, infra *Infra) (*gin.Engine, error) {
	// ----------------------------
	// Dependencies
	// ----------------------------

	identity, oauthProviders, err := setupProviders(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userStore := db.NewUserStore(infra.DB)
	sync := resolver.NewSynchronizer(userStore, infra.Events)
	orchestrator := signup.NewOrchestrator(identity, sync, absoluteURL(cfg.PublicBaseURL, cfg.SignupRedirectURL))

	registry := provider.NewRegistry(oauthProviders...)
	logger.Info("oauth providers registered", map[string]any{"providers": registry.Names()})

	authHandler := handler.NewHandler(
		registry,
		identity,
		orchestrator,
		infra.Sessions,
		userStore,
		sync,
		handler.Options{
			LandingURL:    cfg.OAuthRedirectURL,
			SessionTTL:    cfg.SessionTTL,
			SecureCookies: cfg.CookieSecure,
		},
	)

	authMiddleware := middleware.NewAuthMiddleware(infra.Sessions)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	authHandler.RegisterRoutes(router, handler.Middlewares{
		Throttle:       ratelimit.New(cfg.AuthRateLimit, cfg.AuthRateBurst).Middleware(),
		RequireSession: middleware.GinRequireAuth(authMiddleware),
		RequireBearer:  bearerGuard(cfg.SupabaseJWTKey),
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router, nil
}

// setupProviders builds the password provider and every redirect-based
// login. Direct OIDC providers are registered last, so they replace a
// brokered provider of the same name.
func setupProviders(ctx context.Context, cfg config.Config) (provider.IdentityProvider, []provider.OAuthProvider, error) {
	var (
		identity provider.IdentityProvider
		oauth    []provider.OAuthProvider
	)

	switch cfg.IdentityProvider {
	case "memory":
		logger.Warn("using in-memory identity provider", nil)
		identity = memory.New()
	default:
		client, err := gotrue.New(cfg.SupabaseURL, cfg.SupabaseKey, cfg.ProviderTimeout)
		if err != nil {
			return nil, nil, err
		}
		identity = client

		for _, name := range cfg.OAuthProviders {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			callback := absoluteURL(cfg.PublicBaseURL, "/oauth/callback/"+name)
			oauth = append(oauth, client.OAuth(name, callback, nil))
		}
	}

	if cfg.GoogleEnabled() {
		googleProvider, err := google.New(
			ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("google provider: %w", err)
		}
		oauth = append(oauth, googleProvider)
	}

	if cfg.KeycloakEnabled() {
		keycloakProvider, err := keycloak.New(
			ctx,
			cfg.KeycloakIssuer,
			cfg.KeycloakClientID,
			cfg.KeycloakRedirectURL,
			cfg.KeycloakPublicBaseURL,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("keycloak provider: %w", err)
		}
		oauth = append(oauth, keycloakProvider)
	}

	return identity, oauth, nil
}

// bearerGuard verifies backend API tokens, or refuses every call when no
// signing secret is configured.
func bearerGuard(secret string) gin.HandlerFunc {
	if secret == "" {
		logger.Warn("SUPABASE_JWT_SECRET empty, bearer routes disabled", nil)
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "bearer authentication is not configured"})
		}
	}
	return middleware.GinRequireBearer(middleware.NewBearerVerifier(secret))
}

// absoluteURL resolves ref against base; absolute refs are returned as is.
func absoluteURL(base, ref string) string {
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
