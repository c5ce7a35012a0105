// Package main: service layer setup.
//
// initServices builds every service. Each one receives the repository
// interfaces and clients it needs through its constructor.
package main

import (
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/akinalp/rtctoken/config"
	"github.com/akinalp/rtctoken/pkg/chatapi"
	"github.com/akinalp/rtctoken/pkg/email"
	"github.com/akinalp/rtctoken/pkg/ratelimit"
	"github.com/akinalp/rtctoken/pkg/signing"
	"github.com/akinalp/rtctoken/services"
)

// Services holds every service instance.
type Services struct {
	Auth  services.AuthService
	Token services.TokenService
}

// RateLimiters holds every rate limiter instance.
type RateLimiters struct {
	Login *ratelimit.Limiter // register/login, per client IP
	Token *ratelimit.Limiter // /api/token/*, per user
}

// Stop terminates the cleanup goroutines of all limiters.
func (l *RateLimiters) Stop() {
	l.Login.Stop()
	l.Token.Stop()
}

func initRateLimiters(cfg *config.Config) *RateLimiters {
	return &RateLimiters{
		Login: ratelimit.New(cfg.RateLimit.LoginAttempts, cfg.RateLimit.LoginWindow),
		Token: ratelimit.New(cfg.RateLimit.TokenRequests, cfg.RateLimit.TokenWindow),
	}
}

func initServices(cfg *config.Config, repos *Repositories, logger *slog.Logger) *Services {
	chat := chatapi.NewClient(chatapi.Config{
		TokenBaseURL:     cfg.Chat.TokenBaseURL(),
		ProvisionBaseURL: cfg.Chat.ProvisionBaseURL(),
		AppKey:           cfg.Chat.AppKey,
		AppSecret:        cfg.Chat.AppSecret,
		AdminToken:       cfg.Chat.AdminToken,
		Timeout:          cfg.Chat.Timeout,
	})

	// Provisioning needs the admin token; without it registration skips
	// the chat identity entirely instead of failing a call every time.
	var provisioner services.ChatProvisioner
	if cfg.Chat.AdminToken != "" {
		provisioner = chat
	}

	var mailer email.Sender
	if cfg.Email.Enabled() {
		mailer = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail)
	}

	authService := services.NewAuthService(
		repos.User,
		services.NewBcryptHasher(bcrypt.DefaultCost),
		provisioner,
		mailer,
		repos.SessionDenylist,
		services.AuthConfig{
			Secret:           cfg.JWT.Secret,
			SessionTTL:       cfg.JWT.Expiry,
			ProvisionTimeout: cfg.Chat.Timeout,
		},
		logger.With("component", "auth"),
	)

	tokenService := services.NewTokenService(
		signing.NewLiveKitBuilder(cfg.RTC.AppID, cfg.RTC.AppCertificate),
		chat,
		cfg.RTC.Expire(),
		logger.With("component", "token"),
	)

	return &Services{
		Auth:  authService,
		Token: tokenService,
	}
}
