package handler

import (
	"net/http"
	"time"

	"claimwise-auth/internal/auth/provider"
	"claimwise-auth/internal/auth/resolver"
	"claimwise-auth/internal/auth/signup"
	"claimwise-auth/internal/logger"
	"claimwise-auth/internal/session"
	"claimwise-auth/internal/users"

	"github.com/gin-gonic/gin"
)

// UserResolver is both forms of identity synchronization: the
// error-returning one for reads and the best-effort one for logins.
type UserResolver interface {
	resolver.Resolver
	resolver.Syncer
}

// Options are the browser-facing knobs of the auth routes.
type Options struct {
	// LandingURL is where a completed OAuth login redirects to.
	LandingURL string
	// LoginURL is where a failed OAuth login redirects to.
	LoginURL      string
	SessionTTL    time.Duration
	SecureCookies bool
}

// Middlewares guard route groups. A nil entry leaves the group open.
type Middlewares struct {
	Throttle       gin.HandlerFunc
	RequireSession gin.HandlerFunc
	RequireBearer  gin.HandlerFunc
}

type Handler struct {
	providers    *provider.Registry
	identity     provider.IdentityProvider
	signup       *signup.Orchestrator
	sessionStore session.Store
	users        users.Store
	resolver     UserResolver
	opts         Options
	now          func() time.Time
}

func NewHandler(
	registry *provider.Registry,
	identity provider.IdentityProvider,
	orchestrator *signup.Orchestrator,
	sessionStore session.Store,
	userStore users.Store,
	resolver UserResolver,
	opts Options,
) *Handler {
	if opts.LandingURL == "" {
		opts.LandingURL = "/dashboard"
	}
	if opts.LoginURL == "" {
		opts.LoginURL = "/login"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}

	return &Handler{
		providers:    registry,
		identity:     identity,
		signup:       orchestrator,
		sessionStore: sessionStore,
		users:        userStore,
		resolver:     resolver,
		opts:         opts,
		now:          time.Now,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, mw Middlewares) {
	credentialsGroup := r.Group("/auth", handlers(mw.Throttle)...)
	credentialsGroup.POST("/signup", h.Signup)
	credentialsGroup.POST("/login", h.Login)

	r.POST("/auth/logout", h.Logout)
	r.POST("/auth/refresh", append(handlers(mw.RequireSession), h.Refresh)...)

	r.GET("/oauth/login/:provider", h.oauthLogin)
	r.GET("/oauth/callback/:provider", h.oauthCallback)

	api := r.Group("/api", handlers(mw.RequireSession)...)
	api.GET("/me", h.Me)
	api.GET("/token", h.Token)

	v1 := r.Group("/v1", handlers(mw.RequireBearer)...)
	v1.GET("/me", h.BearerMe)

	for _, route := range r.Routes() {
		logger.Debug("route registered", map[string]any{
			"method": route.Method,
			"path":   route.Path,
		})
	}
}

func handlers(list ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(list))
	for _, h := range list {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

func (h *Handler) cookieOptions() session.CookieOptions {
	return session.CookieOptions{
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
