package pkg

import (
	"encoding/json"
	"errors"
	"net/http"
)

// APIResponse is the standard envelope for every API response.
// Clients always get the same shape back, success or not.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON writes a successful response.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Success: true,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// Error writes an error response. Domain errors are mapped to their HTTP
// status code; 5xx responses only ever carry the generic sentinel message,
// never the wrapped cause.
func Error(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	ErrorWithMessage(w, status, clientMessage(err, status))
}

// ErrorWithMessage writes an error response with a custom message.
func ErrorWithMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := APIResponse{
		Success: false,
		Error:   message,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode error response", http.StatusInternalServerError)
	}
}

// StatusOf maps a domain error to an HTTP status code. errors.Is walks the
// wrap chain, so wrapped errors match too. An upstream status carried by a
// StatusError wins over the default mapping.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) && se.Status >= 400 && se.Status <= 599 {
		return se.Status
	}

	switch {
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// serverSentinels are checked in order when a 5xx response needs a message.
var serverSentinels = []error{ErrChatTokenFailure, ErrSigningFailure}

// clientMessage picks the text sent to the client. Client errors are built
// by our own services with safe detail; for everything else only the sentinel
// text leaves the process.
func clientMessage(err error, status int) string {
	if errors.Is(err, ErrChatTokenFailure) {
		return ErrChatTokenFailure.Error()
	}
	if status < http.StatusInternalServerError {
		return err.Error()
	}
	for _, sentinel := range serverSentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return ErrInternal.Error()
}
