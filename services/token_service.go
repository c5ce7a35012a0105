package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/akinalp/rtctoken/models"
	"github.com/akinalp/rtctoken/pkg"
	"github.com/akinalp/rtctoken/pkg/chatapi"
	"github.com/akinalp/rtctoken/pkg/signing"
)

// TokenService is the token issuance orchestrator.
//
// Every operation validates its request first; a request that fails
// validation never reaches a signer or the remote chat service. All kinds
// share one expiry policy: expireAt = now + EXPIRE, computed once per call.
type TokenService interface {
	IssueRtcToken(ctx context.Context, req *models.RtcTokenRequest) (*models.ServiceToken, error)
	IssueRtmToken(ctx context.Context, req *models.RtmTokenRequest) (*models.ServiceToken, error)
	// IssueChatToken returns the remote chat service's response body verbatim.
	IssueChatToken(ctx context.Context, req *models.ChatTokenRequest) (json.RawMessage, error)
	// Issue dispatches any request to the strategy of its kind.
	Issue(ctx context.Context, req models.TokenRequest) (*models.ServiceToken, error)
}

// ChatTokenClient fetches user tokens from the remote chat service.
// Implemented by *chatapi.Client.
type ChatTokenClient interface {
	IssueUserToken(ctx context.Context, userUUID string, expireSeconds int) (json.RawMessage, error)
}

// expiry is the validity window of one issuance.
type expiry struct {
	At      int64 // unix seconds
	Seconds int
}

// tokenStrategy mints one kind of service token.
//
// Local signing and the remote chat call are deliberately separate
// strategies: the former holds key material, the latter is an RPC into a
// service with its own trust domain.
type tokenStrategy interface {
	issue(ctx context.Context, req models.TokenRequest, exp expiry) (*models.ServiceToken, error)
}

type tokenService struct {
	strategies map[models.ServiceKind]tokenStrategy
	expire     time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewTokenService wires the RTC/RTM signer and the chat client into one
// orchestrator. expire is the process-wide token validity window.
func NewTokenService(builder signing.TokenBuilder, chat ChatTokenClient, expire time.Duration, logger *slog.Logger) TokenService {
	local := &localSigningStrategy{builder: builder}
	return &tokenService{
		strategies: map[models.ServiceKind]tokenStrategy{
			models.ServiceRTC:  local,
			models.ServiceRTM:  local,
			models.ServiceChat: &chatStrategy{client: chat},
		},
		expire: expire,
		logger: logger,
		now:    time.Now,
	}
}

func (s *tokenService) IssueRtcToken(ctx context.Context, req *models.RtcTokenRequest) (*models.ServiceToken, error) {
	return s.Issue(ctx, req)
}

func (s *tokenService) IssueRtmToken(ctx context.Context, req *models.RtmTokenRequest) (*models.ServiceToken, error) {
	return s.Issue(ctx, req)
}

func (s *tokenService) IssueChatToken(ctx context.Context, req *models.ChatTokenRequest) (json.RawMessage, error) {
	token, err := s.Issue(ctx, req)
	if err != nil {
		return nil, err
	}
	return token.Remote, nil
}

func (s *tokenService) Issue(ctx context.Context, req models.TokenRequest) (*models.ServiceToken, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrMissingFields, err.Error())
	}

	strategy, ok := s.strategies[req.Kind()]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported token kind %q", pkg.ErrBadRequest, req.Kind())
	}

	exp := s.expiryFrom(s.now())
	token, err := strategy.issue(ctx, req, exp)
	if err != nil {
		s.logger.Error("token issuance failed",
			"kind", req.Kind(),
			"request", describe(req),
			"error", err,
		)
		return nil, err
	}

	s.logger.Debug("token issued", "kind", req.Kind(), "request", describe(req), "expire_at", token.ExpireAt)
	return token, nil
}

// expiryFrom applies the shared expiry policy. Two calls with the same
// instant get the same expireAt, whatever their kind.
func (s *tokenService) expiryFrom(now time.Time) expiry {
	seconds := int(s.expire / time.Second)
	return expiry{At: now.Unix() + int64(seconds), Seconds: seconds}
}

// describe renders the request inputs for logs. None of them are secret.
func describe(req models.TokenRequest) string {
	switch r := req.(type) {
	case *models.RtcTokenRequest:
		return fmt.Sprintf("channel=%s uid=%s", r.ChannelName, r.UID)
	case *models.RtmTokenRequest:
		return "account=" + r.Account
	case *models.ChatTokenRequest:
		return "username=" + r.Username
	default:
		return string(req.Kind())
	}
}

// ─── Strategies ───

// localSigningStrategy signs RTC and RTM tokens with the application
// certificate. The role is fixed per kind.
type localSigningStrategy struct {
	builder signing.TokenBuilder
}

func (st *localSigningStrategy) issue(_ context.Context, req models.TokenRequest, exp expiry) (*models.ServiceToken, error) {
	var (
		token string
		err   error
	)

	switch r := req.(type) {
	case *models.RtcTokenRequest:
		// A numeric uid and a string handle are both valid identities; the
		// shape only picks the signing call.
		if uid, ok := r.UID.Numeric(); ok {
			token, err = st.builder.BuildRtcTokenWithUID(r.ChannelName, uid, models.RolePublisher, exp.At)
		} else {
			token, err = st.builder.BuildRtcTokenWithAccount(r.ChannelName, string(r.UID), models.RolePublisher, exp.At)
		}
	case *models.RtmTokenRequest:
		token, err = st.builder.BuildRtmToken(r.Account, models.RoleUser, exp.At)
	default:
		return nil, fmt.Errorf("%w: local signer cannot issue %q tokens", pkg.ErrInternal, req.Kind())
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", pkg.ErrSigningFailure, err)
	}

	return &models.ServiceToken{Kind: req.Kind(), Token: token, ExpireAt: exp.At}, nil
}

// chatStrategy delegates to the remote chat service. Nothing is signed
// locally and the response is not reshaped.
type chatStrategy struct {
	client ChatTokenClient
}

func (st *chatStrategy) issue(ctx context.Context, req models.TokenRequest, exp expiry) (*models.ServiceToken, error) {
	r, ok := req.(*models.ChatTokenRequest)
	if !ok {
		return nil, fmt.Errorf("%w: chat strategy cannot issue %q tokens", pkg.ErrInternal, req.Kind())
	}

	body, err := st.client.IssueUserToken(ctx, r.Username, exp.Seconds)
	if err != nil {
		var remote *chatapi.RemoteError
		if errors.As(err, &remote) {
			return nil, fmt.Errorf("%w: %w", pkg.NewStatusError(remote.Status, pkg.ErrChatTokenFailure), err)
		}
		return nil, fmt.Errorf("%w: %w", pkg.ErrChatTokenFailure, err)
	}

	return &models.ServiceToken{Kind: models.ServiceChat, Remote: body}, nil
}
