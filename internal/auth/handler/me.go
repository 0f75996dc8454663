package handler

import (
	"errors"
	"net/http"
	"time"

	"claimwise-auth/internal/middleware"
	"claimwise-auth/internal/users"

	"github.com/gin-gonic/gin"
)

// tokenRefreshSkew refreshes provider tokens slightly before they expire.
const tokenRefreshSkew = time.Minute

// Me returns the application user behind the session. A missing row is
// healed from the provider when the session still holds its tokens.
func (h *Handler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	u, err := h.users.GetUser(ctx, sess.UserID)
	if errors.Is(err, users.ErrNotFound) && sess.HasProviderTokens() {
		identity, gerr := h.identity.GetUser(ctx, sess.AccessToken)
		if gerr != nil {
			renderAuthError(c, gerr)
			return
		}
		u, err = h.resolver.Resolve(ctx, identity, "")
	}
	if errors.Is(err, users.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		renderInternal(c, "failed to load user", err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// Token hands the browser a bearer token for the backend API, refreshing
// it first when it is about to expire.
func (h *Handler) Token(c *gin.Context) {
	ctx := c.Request.Context()
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok || !sess.HasProviderTokens() {
		c.JSON(http.StatusNotFound, gin.H{"error": "no provider token for this session"})
		return
	}

	if !sess.TokenExpiresAt.IsZero() && sess.RefreshToken != "" &&
		h.now().Add(tokenRefreshSkew).After(sess.TokenExpiresAt) {
		updated, err := h.refreshTokens(ctx, sess)
		if err != nil {
			renderAuthError(c, err)
			return
		}
		sess = updated
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": sess.AccessToken,
		"token_type":   "bearer",
		"expires_at":   sess.TokenExpiresAt,
	})
}

// BearerMe resolves the caller of the backend API from its verified token.
func (h *Handler) BearerMe(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	u, err := h.resolver.Resolve(c.Request.Context(), identity, "")
	if err != nil {
		renderInternal(c, "failed to resolve user", err)
		return
	}

	c.JSON(http.StatusOK, u)
}
