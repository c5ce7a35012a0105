// Package main: handler layer setup.
package main

import (
	"github.com/akinalp/rtctoken/database"
	"github.com/akinalp/rtctoken/handlers"
)

// Handlers holds every handler instance.
type Handlers struct {
	Auth   *handlers.AuthHandler
	Token  *handlers.TokenHandler
	Health *handlers.HealthHandler
}

func initHandlers(svcs *Services, limiters *RateLimiters, db *database.DB) *Handlers {
	return &Handlers{
		Auth:   handlers.NewAuthHandler(svcs.Auth, limiters.Login),
		Token:  handlers.NewTokenHandler(svcs.Token),
		Health: handlers.NewHealthHandler(db.Conn),
	}
}
