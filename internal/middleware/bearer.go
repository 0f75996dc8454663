package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"claimwise-auth/internal/auth"
	"claimwise-auth/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type identityContextKeyType struct{}

var identityKey = identityContextKeyType{}

// IdentityFromContext returns the caller identity set by GinRequireBearer.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok && id != nil
}

// AccessClaims are the claims the provider puts into its access tokens.
type AccessClaims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	jwt.RegisteredClaims
}

// BearerVerifier checks provider-issued HS256 access tokens.
type BearerVerifier struct {
	secret []byte
}

func NewBearerVerifier(secret string) *BearerVerifier {
	return &BearerVerifier{secret: []byte(secret)}
}

var errMissingSubject = errors.New("token has no subject")

// Verify parses token and returns the identity it was issued to.
func (v *BearerVerifier) Verify(token string) (*auth.Identity, error) {
	var claims AccessClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errMissingSubject
	}

	return &auth.Identity{
		ID:       claims.Subject,
		Email:    claims.Email,
		Metadata: claims.UserMetadata,
	}, nil
}

// GinRequireBearer admits requests with a valid Authorization: Bearer
// token and stores the identity on the request context.
func GinRequireBearer(v *BearerVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		identity, err := v.Verify(raw)
		if err != nil {
			logger.Debug("bearer token rejected", map[string]any{"error": err})
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), identityKey, identity)
		ctx = context.WithValue(ctx, userIDKey, identity.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
