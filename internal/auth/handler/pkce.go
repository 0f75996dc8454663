package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

const (
	pkceCookieName = "__oauth_pkce"
	pkceTTL        = 5 * time.Minute
)

// generatePKCE stores a fresh verifier in a short-lived cookie and returns
// its S256 challenge.
func (h *Handler) generatePKCE(c *gin.Context) (challenge string) {
	verifier := oauth2.GenerateVerifier()
	h.setFlowCookie(c, pkceCookieName, verifier, pkceTTL)
	return oauth2.S256ChallengeFromVerifier(verifier)
}

func getPKCEVerifier(c *gin.Context) string {
	cookie, err := c.Request.Cookie(pkceCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *Handler) setFlowCookie(c *gin.Context, name, value string, ttl time.Duration) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

func (h *Handler) clearFlowCookies(c *gin.Context) {
	for _, name := range []string{pkceCookieName, stateCookieName, sourceCookieName} {
		h.setFlowCookie(c, name, "", -time.Second)
	}
}
