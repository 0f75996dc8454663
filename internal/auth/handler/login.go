package handler

import (
	"errors"
	"net/http"

	"claimwise-auth/internal/auth/credentials"
	"claimwise-auth/internal/logger"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login is a single password sign-in followed by a best-effort sync.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errBadRequest.Error()})
		return
	}

	if err := credentials.ValidateLogin(req.Email, req.Password); err != nil {
		renderAuthError(c, err)
		return
	}

	res, err := h.signup.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		renderAuthError(c, err)
		return
	}
	if res == nil || res.User == nil || res.Session == nil {
		renderAuthError(c, errors.New("provider returned no session"))
		return
	}

	h.resolver.Sync(c.Request.Context(), res.User, "")

	if err := h.startSession(c, res.User.ID, res.Session); err != nil {
		renderInternal(c, "failed to create session", err)
		return
	}

	logger.Info("login succeeded", map[string]any{
		"user_id": res.User.ID,
		"ip":      c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{"user": viewOf(res.User, "")})
}
