// Package services holds the business logic layer.
//
// A service sits between the HTTP handlers and the repositories. Every
// business rule lives here:
//   - password hashing and verification
//   - session credential minting and verification
//   - service token issuance
//
// A service never sees an http.Request or http.ResponseWriter; it takes and
// returns domain models. A service never runs SQL either; it goes through
// the repository interfaces.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/akinalp/rtctoken/models"
	"github.com/akinalp/rtctoken/pkg"
	"github.com/akinalp/rtctoken/pkg/email"
	"github.com/akinalp/rtctoken/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// sessionIssuer is the `iss` claim of every session credential.
const sessionIssuer = "rtctoken"

// AuthService is the credential manager. Handlers and the session gate
// depend on this interface, never on the concrete struct.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResult, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error)
	// ListUsers returns every user as a public profile, oldest first.
	ListUsers(ctx context.Context) ([]models.UserProfile, error)
	// ValidateSessionToken verifies a raw session credential and returns its
	// claims. Any failure is pkg.ErrUnauthenticated; forged and expired
	// credentials are not told apart.
	ValidateSessionToken(ctx context.Context, raw string) (*models.SessionClaims, error)
	// Logout revokes the credential behind claims. Without a denylist it is
	// a no-op, since stateless credentials cannot be revoked.
	Logout(ctx context.Context, claims *models.SessionClaims) error
}

// PasswordHasher is the opaque hash/verify capability.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a PasswordHasher backed by bcrypt. bcrypt salts
// every hash with fresh random bytes.
func NewBcryptHasher(cost int) PasswordHasher {
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *bcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ChatProvisioner creates the chat identity of a new user.
// Implemented by *chatapi.Client.
type ChatProvisioner interface {
	CreateUser(ctx context.Context, username string) error
}

// AuthConfig holds the session credential settings.
type AuthConfig struct {
	Secret           string
	SessionTTL       time.Duration
	ProvisionTimeout time.Duration // bound for the best-effort chat provisioning call
}

type authService struct {
	userRepo    repository.UserRepository
	hasher      PasswordHasher
	provisioner ChatProvisioner            // nil: provisioning disabled
	mailer      email.Sender               // nil: no welcome e-mail
	denylist    repository.SessionDenylist // nil: credentials cannot be revoked
	secret      []byte
	sessionTTL  time.Duration
	provisionTO time.Duration
	logger      *slog.Logger
	now         func() time.Time

	dummyOnce sync.Once
	dummy     string // hash verified against on unknown emails
}

// NewAuthService is the constructor. provisioner, mailer and denylist are
// optional and may be nil.
func NewAuthService(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	provisioner ChatProvisioner,
	mailer email.Sender,
	denylist repository.SessionDenylist,
	cfg AuthConfig,
	logger *slog.Logger,
) AuthService {
	if cfg.ProvisionTimeout <= 0 {
		cfg.ProvisionTimeout = 10 * time.Second
	}
	return &authService{
		userRepo:    userRepo,
		hasher:      hasher,
		provisioner: provisioner,
		mailer:      mailer,
		denylist:    denylist,
		secret:      []byte(cfg.Secret),
		sessionTTL:  cfg.SessionTTL,
		provisionTO: cfg.ProvisionTimeout,
		logger:      logger,
		now:         time.Now,
	}
}

// Register creates a user and signs it in.
//
// Order matters: validation and the duplicate check run before anything is
// written, so a rejected registration leaves the store untouched. Chat
// provisioning and the welcome e-mail run after the user exists and never
// fail the registration.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrMissingFields, err.Error())
	}

	_, err := s.userRepo.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, pkg.ErrDuplicateEmail
	case !errors.Is(err, pkg.ErrNotFound):
		return nil, fmt.Errorf("%w: lookup email: %w", pkg.ErrInternal, err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %w", pkg.ErrInternal, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("%w: generate user id: %w", pkg.ErrInternal, err)
	}

	user := &models.User{
		ID:           id.String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Two concurrent registrations can both pass the lookup above;
		// the unique index decides.
		if errors.Is(err, pkg.ErrAlreadyExists) {
			return nil, pkg.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("%w: create user: %w", pkg.ErrInternal, err)
	}

	s.provisionChatUser(ctx, user.ID)
	s.sendWelcome(user)

	return s.signIn(user)
}

// Login verifies credentials. An unknown email and a wrong password return
// the very same error value.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrMissingFields, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			// Same hashing cost as a wrong password, so timing does not
			// reveal whether the email exists.
			s.hasher.Verify(req.Password, s.dummyHash())
			return nil, pkg.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: lookup email: %w", pkg.ErrInternal, err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, pkg.ErrInvalidCredentials
	}

	return s.signIn(user)
}

func (s *authService) ListUsers(ctx context.Context) ([]models.UserProfile, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %w", pkg.ErrInternal, err)
	}

	profiles := make([]models.UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile())
	}
	return profiles, nil
}

func (s *authService) ValidateSessionToken(ctx context.Context, raw string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(token *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthenticated)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthenticated)
	}

	if s.denylist != nil && claims.ID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: check session denylist: %w", pkg.ErrInternal, err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: token revoked", pkg.ErrUnauthenticated)
		}
	}

	return claims, nil
}

func (s *authService) Logout(ctx context.Context, claims *models.SessionClaims) error {
	if s.denylist == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("%w: revoke session: %w", pkg.ErrInternal, err)
	}
	return nil
}

// ─── Private Helpers ───

// dummyHash is hashed once, lazily, with the same hasher and cost as real
// passwords.
func (s *authService) dummyHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("rtctoken-dummy-password")
		if err != nil {
			s.logger.Error("failed to build dummy password hash", "error", err)
			return
		}
		s.dummy = hash
	})
	return s.dummy
}

// signIn mints a fresh session credential for user.
func (s *authService) signIn(user *models.User) (*models.AuthResult, error) {
	token, err := s.mintSession(user.ID)
	if err != nil {
		return nil, err
	}
	return &models.AuthResult{User: user.Profile(), Token: token}, nil
}

func (s *authService) mintSession(userID string) (string, error) {
	now := s.now()
	claims := &models.SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: sign session token: %w", pkg.ErrInternal, err)
	}
	return signed, nil
}

// provisionChatUser creates the chat identity named after the user id.
// Failure is logged and swallowed: "user exists" does not depend on
// "user is chat-provisioned".
func (s *authService) provisionChatUser(ctx context.Context, userID string) {
	if s.provisioner == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.provisionTO)
	defer cancel()

	if err := s.provisioner.CreateUser(ctx, userID); err != nil {
		s.logger.Warn("chat user provisioning failed", "user_id", userID, "error", err)
		return
	}
	s.logger.Info("chat user provisioned", "user_id", userID)
}

// sendWelcome mails the new user in the background.
func (s *authService) sendWelcome(user *models.User) {
	if s.mailer == nil {
		return
	}

	toEmail, name, userID := user.Email, user.Name, user.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := s.mailer.SendWelcome(ctx, toEmail, name); err != nil {
			s.logger.Warn("welcome email failed", "user_id", userID, "error", err)
		}
	}()
}
