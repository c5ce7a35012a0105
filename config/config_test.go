package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
	assert.False(t, cfg.Server.TrustProxy)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, 3600, cfg.RTC.ExpireSeconds)
	assert.Equal(t, time.Hour, cfg.RTC.Expire())
	assert.Equal(t, 10*time.Second, cfg.Chat.Timeout)
	assert.Empty(t, cfg.Redis.URL)
	assert.False(t, cfg.Email.Enabled())
	assert.Equal(t, 10, cfg.RateLimit.LoginAttempts)
	assert.Equal(t, 60, cfg.RateLimit.TokenRequests)
	assert.Equal(t, time.Minute, cfg.RateLimit.TokenWindow)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("TOKEN_EXPIRE_SECONDS", "120")
	t.Setenv("CHAT_APP_KEY", "org#app")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.RTC.Expire())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Server.TrustProxy)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-positive expiry", "TOKEN_EXPIRE_SECONDS", "0"},
		{"app key without separator", "CHAT_APP_KEY", "orgapp"},
		{"bad port", "SERVER_PORT", "abc"},
		{"zero token rate", "TOKEN_RATE_LIMIT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestChatConfig_URLs(t *testing.T) {
	c := ChatConfig{AppKey: "41117440#383391", APIHost: "https://a41.chat.agora.io/"}

	assert.Equal(t, "https://a41.chat.agora.io/41117440/383391", c.TokenBaseURL())
	assert.Equal(t, "https://a41.chat.agora.io/v1", c.ProvisionBaseURL())
}
