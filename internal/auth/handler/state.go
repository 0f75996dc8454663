package handler

import (
	"crypto/subtle"
	"time"

	"claimwise-auth/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	stateCookieName  = "__oauth_state"
	sourceCookieName = "__oauth_source"
	stateTTL         = 5 * time.Minute
)

// Sources tell the landing page which form started the OAuth flow.
const (
	sourceLogin  = "login"
	sourceSignup = "signup"
)

func (h *Handler) generateState(c *gin.Context) string {
	state := utils.RandomString(32)
	h.setFlowCookie(c, stateCookieName, state, stateTTL)
	return state
}

func validateState(c *gin.Context) bool {
	stateQuery := c.Query("state")
	if stateQuery == "" {
		return false
	}

	cookie, err := c.Request.Cookie(stateCookieName)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(stateQuery)) == 1
}

// rememberSource keeps the originating form across the provider round
// trip. Anything unexpected counts as a login.
func (h *Handler) rememberSource(c *gin.Context) {
	source := sourceLogin
	if c.Query("source") == sourceSignup {
		source = sourceSignup
	}
	h.setFlowCookie(c, sourceCookieName, source, stateTTL)
}

func flowSource(c *gin.Context) string {
	cookie, err := c.Request.Cookie(sourceCookieName)
	if err != nil || cookie.Value != sourceSignup {
		return sourceLogin
	}
	return sourceSignup
}
