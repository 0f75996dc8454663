package auth

import (
	"strings"
	"time"
)

// Metadata keys a provider may carry the display name under. Sign-up
// writes all three so any downstream reader finds it.
const (
	MetaFullName    = "full_name"
	MetaName        = "name"
	MetaDisplayName = "display_name"
)

// FallbackName is used when no other display name source is available.
const FallbackName = "User"

// Identity represents an authenticated principal as issued by the
// identity provider. It contains facts only, no decisions.
type Identity struct {
	ID             string         // provider-issued unique id
	Email          string         // email the provider holds for the principal
	Provider       string         // e.g. "email", "google", "keycloak"
	Metadata       map[string]any // user_metadata bag, may be nil
	EmailConfirmed bool
}

// Session is the token material the provider returns after sign-in.
type Session struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
	User         *Identity
}

// MetadataString returns a trimmed string metadata value or "".
func (i *Identity) MetadataString(key string) string {
	if i == nil || i.Metadata == nil {
		return ""
	}
	v, ok := i.Metadata[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// DisplayName picks the name for the application user record: the explicit
// override, then full_name, name and display_name metadata, then the email
// local part, then FallbackName.
func (i *Identity) DisplayName(override string) string {
	if name := strings.TrimSpace(override); name != "" {
		return name
	}
	for _, key := range []string{MetaFullName, MetaName, MetaDisplayName} {
		if name := i.MetadataString(key); name != "" {
			return name
		}
	}
	if i != nil {
		if local, _, ok := strings.Cut(i.Email, "@"); ok && local != "" {
			return local
		}
	}
	return FallbackName
}

// NameMetadata builds the metadata bag sent on sign-up.
func NameMetadata(fullName string) map[string]any {
	return map[string]any{
		MetaFullName:    fullName,
		MetaName:        fullName,
		MetaDisplayName: fullName,
	}
}
