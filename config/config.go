// Package config manages the whole application configuration in one place.
// Values come from environment variables; a .env file is honoured too.
//
// Every concern gets its own sub-struct so the rest of the code can take
// just the slice of configuration it needs (for example, the token service
// only receives RTCConfig and ChatConfig).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries all configuration values of the application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	RTC       RTCConfig
	Chat      ChatConfig
	Redis     RedisConfig
	Email     EmailConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string   `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port        int      `env:"SERVER_PORT" envDefault:"5000"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable it only behind a reverse proxy that overwrites those headers;
	// otherwise any client can pick its own rate limit key.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `env:"DATABASE_PATH" envDefault:"./data/rtctoken.db"`
}

// JWTConfig holds session credential settings.
type JWTConfig struct {
	Secret string        `env:"JWT_SECRET,required"` // signing key, keep it secret
	Expiry time.Duration `env:"JWT_EXPIRY" envDefault:"168h"`
}

// RTCConfig holds the application credentials used to sign RTC and RTM
// tokens, and the shared token validity window.
type RTCConfig struct {
	AppID          string `env:"RTC_APP_ID"`
	AppCertificate string `env:"RTC_APP_CERTIFICATE"`
	ExpireSeconds  int    `env:"TOKEN_EXPIRE_SECONDS" envDefault:"3600"`
}

// Expire returns the token validity window as a duration.
func (c RTCConfig) Expire() time.Duration {
	return time.Duration(c.ExpireSeconds) * time.Second
}

// ChatConfig holds settings for the remote chat service.
type ChatConfig struct {
	AppKey     string        `env:"CHAT_APP_KEY"` // "org#app"
	AppSecret  string        `env:"CHAT_APP_SECRET"`
	APIHost    string        `env:"CHAT_API_HOST" envDefault:"https://a41.chat.agora.io"`
	AdminToken string        `env:"CHAT_ADMIN_TOKEN"`
	Timeout    time.Duration `env:"CHAT_TIMEOUT" envDefault:"10s"`
}

// TokenBaseURL returns the per-application REST root, e.g.
// "https://a41.chat.agora.io/org/app" for the app key "org#app".
func (c ChatConfig) TokenBaseURL() string {
	return strings.TrimRight(c.APIHost, "/") + "/" + strings.Replace(c.AppKey, "#", "/", 1)
}

// ProvisionBaseURL returns the REST root used to create chat users.
func (c ChatConfig) ProvisionBaseURL() string {
	return strings.TrimRight(c.APIHost, "/") + "/v1"
}

// RedisConfig is optional. An empty URL keeps session credentials fully
// stateless (no revocation).
type RedisConfig struct {
	URL string `env:"REDIS_URL"`
}

// EmailConfig is optional. Welcome e-mails are only sent when both values
// are set.
type EmailConfig struct {
	ResendAPIKey string `env:"RESEND_API_KEY"`
	FromEmail    string `env:"EMAIL_FROM"`
}

// Enabled reports whether welcome e-mails can be sent.
func (c EmailConfig) Enabled() bool {
	return c.ResendAPIKey != "" && c.FromEmail != ""
}

// RateLimitConfig bounds register/login attempts per client IP and token
// issuance per user.
type RateLimitConfig struct {
	LoginAttempts int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginWindow   time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`
	TokenRequests int           `env:"TOKEN_RATE_LIMIT" envDefault:"60"`
	TokenWindow   time.Duration `env:"TOKEN_RATE_WINDOW" envDefault:"1m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load builds a Config from the environment.
// A .env file is loaded first when present; in production there is none and
// the real environment is used. Missing .env is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if c.JWT.Expiry <= 0 {
		return fmt.Errorf("invalid JWT_EXPIRY: must be positive")
	}
	if c.RTC.ExpireSeconds <= 0 {
		return fmt.Errorf("invalid TOKEN_EXPIRE_SECONDS: must be positive")
	}
	if c.Chat.AppKey != "" && !strings.Contains(c.Chat.AppKey, "#") {
		return fmt.Errorf("invalid CHAT_APP_KEY: expected the form org#app")
	}
	if c.RateLimit.LoginAttempts <= 0 || c.RateLimit.LoginWindow <= 0 {
		return fmt.Errorf("invalid login rate limit settings")
	}
	if c.RateLimit.TokenRequests <= 0 || c.RateLimit.TokenWindow <= 0 {
		return fmt.Errorf("invalid token rate limit settings")
	}
	return nil
}

// Addr returns the listen address, e.g. "0.0.0.0:5000".
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
