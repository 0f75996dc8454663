package handler

import (
	"errors"
	"net/http"

	"claimwise-auth/internal/auth/signup"
	"claimwise-auth/internal/logger"

	"github.com/gin-gonic/gin"
)

// renderSignupError answers a failed sign-up with its classified,
// user-facing message.
func renderSignupError(c *gin.Context, err error) {
	renderClassified(c, signup.Classify(err))
}

// renderAuthError is renderSignupError for every other credential call.
func renderAuthError(c *gin.Context, err error) {
	renderClassified(c, signup.ClassifySignIn(err))
}

// renderClassified writes serr; the raw cause only goes to the log.
func renderClassified(c *gin.Context, serr *signup.Error) {
	fields := map[string]any{
		"kind": serr.Kind,
		"path": c.FullPath(),
	}
	if serr.Err != nil {
		fields["error"] = serr.Err
	}
	if serr.Kind == signup.KindValidation {
		logger.Debug("auth request rejected", fields)
	} else {
		logger.Info("auth request failed", fields)
	}

	c.JSON(serr.Kind.HTTPStatus(), gin.H{
		"error": serr.Message,
		"kind":  serr.Kind,
	})
}

func renderInternal(c *gin.Context, msg string, err error) {
	logger.Error(msg, map[string]any{
		"error": err,
		"path":  c.FullPath(),
	})
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

var errBadRequest = errors.New("invalid request body")
