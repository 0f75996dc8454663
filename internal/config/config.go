package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string `env:"APP_PORT" envDefault:"8080"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// OAuthRedirectURL is where the browser lands after a completed OAuth login.
	OAuthRedirectURL string `env:"OAUTH_REDIRECT_URL" envDefault:"/dashboard"`
	// SignupRedirectURL is passed to the provider for email confirmation links.
	SignupRedirectURL string `env:"SIGNUP_REDIRECT_URL" envDefault:"/dashboard"`

	IdentityProvider string        `env:"IDENTITY_PROVIDER" envDefault:"gotrue"`
	SupabaseURL      string        `env:"SUPABASE_URL"`
	SupabaseKey      string        `env:"SUPABASE_KEY"`
	SupabaseJWTKey   string        `env:"SUPABASE_JWT_SECRET"`
	OAuthProviders   []string      `env:"OAUTH_PROVIDERS" envSeparator:"," envDefault:"google"`
	ProviderTimeout  time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"15s"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	KeycloakIssuer        string `env:"KEYCLOAK_ISSUER"`
	KeycloakClientID      string `env:"KEYCLOAK_CLIENT_ID"`
	KeycloakRedirectURL   string `env:"KEYCLOAK_REDIRECT_URL"`
	KeycloakPublicBaseURL string `env:"KEYCLOAK_PUBLIC_BASE_URL"`

	UserStoreDriver string `env:"USER_STORE_DRIVER" envDefault:"postgres"`
	DatabaseDSN     string `env:"DATABASE_DSN"`
	SQLitePath      string `env:"SQLITE_PATH" envDefault:"claimwise.db"`

	// SessionStore is "redis" or "memory"; REDIS_ADDR is ignored for memory.
	SessionStore  string        `env:"SESSION_STORE" envDefault:"redis"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"true"`

	NATSURL     string `env:"NATS_URL"`
	NATSSubject string `env:"NATS_SUBJECT" envDefault:"user.provisioned"`

	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT" envDefault:"1"`
	AuthRateBurst int     `env:"AUTH_RATE_BURST" envDefault:"5"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.IdentityProvider {
	case "gotrue":
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return errors.New("config: SUPABASE_URL and SUPABASE_KEY must be set for the gotrue provider")
		}
	case "memory":
	default:
		return fmt.Errorf("config: unknown IDENTITY_PROVIDER %q", c.IdentityProvider)
	}

	switch c.UserStoreDriver {
	case "postgres":
		if c.DatabaseDSN == "" {
			return errors.New("config: DATABASE_DSN must be set for the postgres user store")
		}
	case "sqlite":
	default:
		return fmt.Errorf("config: unknown USER_STORE_DRIVER %q", c.UserStoreDriver)
	}

	switch c.SessionStore {
	case "redis":
		if c.RedisAddr == "" {
			return errors.New("config: REDIS_ADDR must be set for the redis session store")
		}
	case "memory":
	default:
		return fmt.Errorf("config: unknown SESSION_STORE %q", c.SessionStore)
	}
	return nil
}

// MemorySessions reports whether sessions stay in process memory.
func (c Config) MemorySessions() bool {
	return c.SessionStore == "memory"
}

// GoogleEnabled reports whether direct Google OIDC is configured.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != ""
}

// KeycloakEnabled reports whether direct Keycloak OIDC is configured.
func (c Config) KeycloakEnabled() bool {
	return c.KeycloakIssuer != ""
}
