package handler

import (
	"net/http"
	"net/url"

	"claimwise-auth/internal/logger"

	"github.com/gin-gonic/gin"
)

func (h *Handler) oauthLogin(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state := h.generateState(c)
	codeChallenge := h.generatePKCE(c)
	h.rememberSource(c)

	c.Redirect(http.StatusFound, p.AuthCodeURL(state, codeChallenge))
}

func (h *Handler) oauthCallback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	// provider-side failure (user cancelled, consent denied): start over
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		h.clearFlowCookies(c)
		c.Redirect(http.StatusFound, withQuery(h.opts.LoginURL, "error", errParam))
		return
	}

	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oauth callback missing code and error", map[string]any{
			"provider": providerName,
		})
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := getPKCEVerifier(c)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing pkce verifier",
		})
		return
	}

	res, err := p.ExchangeCode(c.Request.Context(), code, codeVerifier)
	if err != nil || res == nil || res.User == nil {
		logger.Warn("oauth code exchange failed", map[string]any{
			"provider": providerName,
			"error":    err,
		})
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	h.resolver.Sync(c.Request.Context(), res.User, "")

	if err := h.startSession(c, res.User.ID, res.Session); err != nil {
		renderInternal(c, "failed to create session", err)
		return
	}

	source := flowSource(c)
	h.clearFlowCookies(c)

	logger.Info("oauth login succeeded", map[string]any{
		"provider": providerName,
		"user_id":  res.User.ID,
		"source":   source,
		"ip":       c.ClientIP(),
	})

	c.Redirect(http.StatusFound, withQuery(h.opts.LandingURL, "source", source))
}

// withQuery adds key=value to a relative or absolute URL.
func withQuery(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
