package gotrue

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"claimwise-auth/internal/auth"
	"claimwise-auth/internal/auth/provider"
)

type signUpBody struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

type userJSON struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *string        `json:"email_confirmed_at"`
	UserMetadata     map[string]any `json:"user_metadata"`
	AppMetadata      struct {
		Provider string `json:"provider"`
	} `json:"app_metadata"`
}

func (u userJSON) identity() *auth.Identity {
	return &auth.Identity{
		ID:             u.ID,
		Email:          u.Email,
		Provider:       u.AppMetadata.Provider,
		Metadata:       u.UserMetadata,
		EmailConfirmed: u.EmailConfirmedAt != nil && *u.EmailConfirmedAt != "",
	}
}

type sessionJSON struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    int64     `json:"expires_at"`
	RefreshToken string    `json:"refresh_token"`
	User         *userJSON `json:"user"`
}

func (s sessionJSON) session(now time.Time) *auth.Session {
	sess := &auth.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
	}
	switch {
	case s.ExpiresAt > 0:
		sess.ExpiresAt = time.Unix(s.ExpiresAt, 0).UTC()
	case s.ExpiresIn > 0:
		sess.ExpiresAt = now.Add(time.Duration(s.ExpiresIn) * time.Second).UTC()
	}
	if s.User != nil && s.User.ID != "" {
		sess.User = s.User.identity()
	}
	return sess
}

// errorJSON covers the error shapes GoTrue has used across versions:
// {"code":422,"error_code":"...","msg":"..."}, {"error":"...","error_description":"..."}
// and {"message":"..."}.
type errorJSON struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func decodeError(status int, raw []byte) *provider.Error {
	e := &provider.Error{Status: status}

	var body errorJSON
	if err := json.Unmarshal(raw, &body); err != nil {
		e.Message = strings.TrimSpace(string(raw))
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
		return e
	}

	e.Code = body.ErrorCode
	if e.Code == "" && body.ErrorDescription != "" {
		e.Code = body.Error
	}
	for _, m := range []string{body.Msg, body.Message, body.ErrorDescription, body.Error} {
		if m != "" {
			e.Message = m
			break
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
