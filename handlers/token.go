package handlers

import (
	"net/http"

	"github.com/akinalp/rtctoken/models"
	"github.com/akinalp/rtctoken/pkg"
	"github.com/akinalp/rtctoken/services"
)

// TokenHandler serves the service token endpoints. Every route sits behind
// the session gate.
type TokenHandler struct {
	tokenService services.TokenService
}

// NewTokenHandler is the constructor.
func NewTokenHandler(tokenService services.TokenService) *TokenHandler {
	return &TokenHandler{tokenService: tokenService}
}

// Rtc godoc
// POST /api/token/rtc
// Body: { "channelName": "room1", "uid": 42 }   (uid may also be a string)
// Response data: { "token": "...", "expireAt": 1700003600 }
func (h *TokenHandler) Rtc(w http.ResponseWriter, r *http.Request) {
	var req models.RtcTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.tokenService.IssueRtcToken(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, token)
}

// Rtm godoc
// POST /api/token/rtm
// Body: { "account": "alice" }
func (h *TokenHandler) Rtm(w http.ResponseWriter, r *http.Request) {
	var req models.RtmTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.tokenService.IssueRtmToken(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, token)
}

// Chat godoc
// POST /api/token/chat
// Body: { "username": "..." }
//
// The chat service's response body becomes `data` unchanged.
func (h *TokenHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	body, err := h.tokenService.IssueChatToken(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, body)
}
