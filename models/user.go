// Package models defines the domain models of the application.
//
// A model is the Go shape of a stored record and, at the same time, of the
// data that enters and leaves the API. `json:"..."` tags decide how a field
// is serialized; `json:"-"` keeps a field out of every response.
package models

import (
	"fmt"
	"strings"
	"time"
)

// User is an identity record.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never part of an API response
	CreatedAt    time.Time `json:"createdAt"`
}

// UserProfile is the public projection of a User. It has no hash field at
// all, so no serializer setting can leak one.
type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Profile returns the public projection of u.
func (u *User) Profile() UserProfile {
	return UserProfile{ID: u.ID, Name: u.Name, Email: u.Email}
}

// RegisterRequest is the body of POST /api/auth/register.
// Password arrives in plain text; hashing happens in the service layer.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that all fields are present.
// Name and email are trimmed; the password is taken as given.
func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)

	var missing []string
	if r.Name == "" {
		missing = append(missing, "name")
	}
	if r.Email == "" {
		missing = append(missing, "email")
	}
	if r.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s required", strings.Join(missing, ", "))
	}
	return nil
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both fields are present.
func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" || r.Password == "" {
		return fmt.Errorf("email and password required")
	}
	return nil
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  UserProfile `json:"user"`
	Token string      `json:"token"`
}
