// Package main is the entry point of the rtctoken server.
//
// This file does the dependency injection wire-up:
//  1. load config
//  2. set up logging
//  3. open the database (migrations run here)
//  4. connect to Redis when configured
//  5. build repositories, services, handlers
//  6. mount routes on the router
//  7. start the HTTP server
//  8. shut down gracefully
//
// There are no globals; everything is built here and passed down.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/akinalp/rtctoken/config"
	"github.com/akinalp/rtctoken/database"
)

func main() {
	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// ─── 2. Logging ───
	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)
	logger.Info("rtctoken server starting", "addr", cfg.Server.Addr())

	// ─── 3. Database ───
	db, err := database.New(cfg.Database.Path, logger.With("component", "database"))
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// ─── 4. Redis (optional) ───
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = database.NewRedis(ctx, cfg.Redis.URL, logger.With("component", "redis"))
		cancel()
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
	} else {
		logger.Info("REDIS_URL not set, session credentials cannot be revoked")
	}

	if cfg.RTC.AppID == "" || cfg.RTC.AppCertificate == "" {
		logger.Warn("RTC_APP_ID or RTC_APP_CERTIFICATE not set, rtc/rtm tokens will fail")
	}
	if cfg.Chat.AppKey == "" || cfg.Chat.AppSecret == "" {
		logger.Warn("CHAT_APP_KEY or CHAT_APP_SECRET not set, chat tokens will fail")
	}

	// ─── 5. Layers ───
	repos := initRepositories(db, redisClient)
	limiters := initRateLimiters(cfg)
	defer limiters.Stop()
	svcs := initServices(cfg, repos, logger)
	h := initHandlers(svcs, limiters, db)

	// ─── 6. Router ───
	router := initRoutes(cfg, h, svcs, limiters, logger.With("component", "http"))

	// ─── 7. HTTP Server ───
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Chat.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─── 8. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down")

	// Stop accepting new requests and wait for in-flight ones.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}

	logger.Info("server stopped gracefully")
}

// newLogger builds the JSON logger. Unknown levels fall back to info.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
