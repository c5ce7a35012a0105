package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ServiceKind names the external service a token is minted for.
type ServiceKind string

const (
	ServiceRTC  ServiceKind = "rtc"  // real-time communication (audio/video)
	ServiceRTM  ServiceKind = "rtm"  // real-time messaging
	ServiceChat ServiceKind = "chat" // managed chat service
)

// Role is the privilege embedded in a service token. Every kind has exactly
// one role; there is no negotiation.
type Role string

const (
	RolePublisher Role = "publisher" // RTC
	RoleUser      Role = "user"      // RTM
)

// TokenRequest is the tagged variant over the three issuance requests.
// Validate runs before any signing or remote call is made.
type TokenRequest interface {
	Kind() ServiceKind
	Validate() error
}

// Identity is an RTC caller identity. Clients send it either as a JSON
// number or as a string; both decode into the same literal text, except
// that integral numbers in uint32 range are stored in plain decimal form
// (42.0 and 4.2e1 both become "42").
type Identity string

// UnmarshalJSON accepts a number, a string or null.
func (id *Identity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = Identity(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("uid must be a number or a string")
		}
		*id = Identity(canonicalNumber(n))
		return nil
	}
}

// canonicalNumber rewrites an integral number that fits a uid as plain
// decimal. Fractions, negatives and out-of-range values keep their text.
func canonicalNumber(n json.Number) string {
	s := n.String()
	if _, err := strconv.ParseUint(s, 10, 32); err == nil {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < 0 || f > math.MaxUint32 {
		return s
	}
	return strconv.FormatUint(uint64(f), 10)
}

// Numeric returns the identity as a numeric uid when it is a base-10
// unsigned 32-bit integer. Anything else is a string handle.
func (id Identity) Numeric() (uint32, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(string(id)), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// RtcTokenRequest is the body of POST /api/token/rtc.
type RtcTokenRequest struct {
	ChannelName string   `json:"channelName"`
	UID         Identity `json:"uid"`
}

func (r *RtcTokenRequest) Kind() ServiceKind { return ServiceRTC }

func (r *RtcTokenRequest) Validate() error {
	if strings.TrimSpace(r.ChannelName) == "" || strings.TrimSpace(string(r.UID)) == "" {
		return fmt.Errorf("channelName and uid are required")
	}
	return nil
}

// RtmTokenRequest is the body of POST /api/token/rtm.
type RtmTokenRequest struct {
	Account string `json:"account"`
}

func (r *RtmTokenRequest) Kind() ServiceKind { return ServiceRTM }

func (r *RtmTokenRequest) Validate() error {
	if strings.TrimSpace(r.Account) == "" {
		return fmt.Errorf("account is required")
	}
	return nil
}

// ChatTokenRequest is the body of POST /api/token/chat.
type ChatTokenRequest struct {
	Username string `json:"username"`
}

func (r *ChatTokenRequest) Kind() ServiceKind { return ServiceChat }

func (r *ChatTokenRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return fmt.Errorf("username is required")
	}
	return nil
}

// ServiceToken is the result of one issuance.
//
// RTC and RTM tokens are signed locally and carry Token and ExpireAt.
// Chat tokens come from the remote chat service: Remote holds its response
// body verbatim and the other fields stay empty.
type ServiceToken struct {
	Kind     ServiceKind     `json:"-"`
	Token    string          `json:"token,omitempty"`
	ExpireAt int64           `json:"expireAt,omitempty"` // unix seconds
	Remote   json.RawMessage `json:"-"`
}
