package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"claimwise-auth/internal/auth"
	"claimwise-auth/internal/auth/provider"
	"claimwise-auth/internal/logger"
	"claimwise-auth/internal/middleware"
	"claimwise-auth/internal/session"

	"github.com/gin-gonic/gin"
)

// startSession persists a server session for userID and issues its
// cookie. tokens may be nil for logins that yield no provider tokens.
func (h *Handler) startSession(c *gin.Context, userID string, tokens *auth.Session) error {
	now := h.now()
	expiresAt := now.Add(h.opts.SessionTTL)

	sess := session.Session{
		SessionID: session.GenerateID(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if tokens != nil {
		sess.AccessToken = tokens.AccessToken
		sess.RefreshToken = tokens.RefreshToken
		sess.TokenExpiresAt = tokens.ExpiresAt
	}

	if err := h.sessionStore.Create(c.Request.Context(), sess); err != nil {
		return err
	}

	session.SetCookie(c.Writer, sess.SessionID, expiresAt, h.cookieOptions())
	return nil
}

// Refresh trades the stored refresh token for fresh provider tokens.
func (h *Handler) Refresh(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c.Request.Context())
	if !ok || sess.RefreshToken == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "session has no provider tokens"})
		return
	}

	updated, err := h.refreshTokens(c.Request.Context(), sess)
	if err != nil {
		var perr *provider.Error
		if errors.As(err, &perr) {
			// the provider revoked the refresh token; the session is dead
			logger.Info("refresh rejected by provider", map[string]any{
				"user_id": sess.UserID,
				"error":   err,
			})
			_ = h.sessionStore.Delete(c.Request.Context(), sess.SessionID)
			session.ClearCookie(c.Writer, h.cookieOptions())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}
		renderAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token_expires_at": updated.TokenExpiresAt})
}

// refreshTokens swaps the session's provider tokens for fresh ones and
// persists the result.
func (h *Handler) refreshTokens(ctx context.Context, sess *session.Session) (*session.Session, error) {
	tokens, err := h.identity.RefreshSession(ctx, sess.RefreshToken)
	if err != nil {
		return nil, err
	}

	updated := *sess
	updated.AccessToken = tokens.AccessToken
	updated.RefreshToken = tokens.RefreshToken
	updated.TokenExpiresAt = tokens.ExpiresAt

	if err := h.sessionStore.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return &updated, nil
}

// Logout is idempotent: it always clears the cookie and answers 204.
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	if sessionID := session.ReadCookie(c.Request); sessionID != "" {
		sess, err := h.sessionStore.Get(ctx, sessionID)
		if err == nil && sess.HasProviderTokens() {
			if err := h.identity.SignOut(ctx, sess.AccessToken); err != nil {
				logger.Warn("provider sign-out failed", map[string]any{
					"user_id": sess.UserID,
					"error":   err,
				})
			}
		}

		if err := h.sessionStore.Delete(ctx, sessionID); err != nil {
			logger.Warn("session delete failed", map[string]any{"error": err})
		}

		logger.Info("logout", map[string]any{"ip": c.ClientIP()})
	}

	session.ClearCookie(c.Writer, h.cookieOptions())
	c.Status(http.StatusNoContent)
}
