package handler

import (
	"net/http"

	"claimwise-auth/internal/auth"
	"claimwise-auth/internal/auth/credentials"

	"github.com/gin-gonic/gin"
)

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func viewOf(identity *auth.Identity, nameOverride string) userView {
	return userView{
		ID:    identity.ID,
		Email: identity.Email,
		Name:  identity.DisplayName(nameOverride),
	}
}

// Signup validates the form, runs the sign-up strategies and opens a
// server session when the provider already issued one.
func (h *Handler) Signup(c *gin.Context) {
	var form credentials.Credentials
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errBadRequest.Error()})
		return
	}

	valid, err := credentials.ValidateSignup(form)
	if err != nil {
		renderSignupError(c, err)
		return
	}

	res, err := h.signup.Attempt(c.Request.Context(), valid)
	if err != nil {
		renderSignupError(c, err)
		return
	}

	if res.Session != nil {
		if err := h.startSession(c, res.Identity.ID, res.Session); err != nil {
			renderInternal(c, "failed to create session", err)
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":                        viewOf(res.Identity, valid.FullName),
		"requires_email_confirmation": res.RequiresEmailConfirmation,
		"strategy":                    res.Strategy,
	})
}
