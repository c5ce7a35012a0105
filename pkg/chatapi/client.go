// Package chatapi is a small client for the managed chat service REST API.
//
// Two calls are used:
//   - POST {tokenBase}/token: mint a user token, authenticated with the
//     application key/secret pair (Basic scheme);
//   - POST {provisionBase}/users: create a chat user, authenticated with
//     an admin bearer token.
//
// The chat service lives in a different trust domain than our own signing
// keys, so the client never interprets the token it gets back: the body is
// returned byte for byte.
package chatapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodySize bounds how much of a remote response is read.
const maxBodySize = 1 << 20

// ErrInvalidResponse is returned when a 2xx body is not JSON.
var ErrInvalidResponse = errors.New("chat service returned a non-JSON body")

// RemoteError is a non-2xx answer from the chat service.
type RemoteError struct {
	Status int
	Body   []byte
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("chat service responded %d", e.Status)
}

// Config holds the client settings.
type Config struct {
	TokenBaseURL     string // e.g. https://a41.chat.agora.io/org/app
	ProvisionBaseURL string // e.g. https://a41.chat.agora.io/v1
	AppKey           string
	AppSecret        string
	AdminToken       string
	Timeout          time.Duration
}

// Client talks to the chat service. It is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient builds a Client whose every call is bounded by cfg.Timeout.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type tokenRequest struct {
	UserUUID string `json:"userUuid"`
	Expire   int    `json:"expire"`
}

// IssueUserToken asks the chat service for a token for userUUID valid for
// expireSeconds. The raw response body is returned on success.
func (c *Client) IssueUserToken(ctx context.Context, userUUID string, expireSeconds int) (json.RawMessage, error) {
	credentials := base64.StdEncoding.EncodeToString([]byte(c.cfg.AppKey + ":" + c.cfg.AppSecret))

	body, err := c.post(ctx, c.cfg.TokenBaseURL+"/token", "Basic "+credentials, tokenRequest{
		UserUUID: userUUID,
		Expire:   expireSeconds,
	})
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, ErrInvalidResponse
	}
	return json.RawMessage(body), nil
}

type createUserRequest struct {
	Username string `json:"username"`
}

// CreateUser registers username with the chat service.
func (c *Client) CreateUser(ctx context.Context, username string) error {
	_, err := c.post(ctx, c.cfg.ProvisionBaseURL+"/users", "Bearer "+c.cfg.AdminToken, createUserRequest{
		Username: username,
	})
	return err
}

func (c *Client) post(ctx context.Context, url, authorization string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", authorization)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat service request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read chat service response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Status: resp.StatusCode, Body: body}
	}

	return body, nil
}
