// Package signing produces RTC and RTM service tokens from application
// secret material.
//
// The token format belongs to the media platform; this package only knows
// how to ask the platform SDK for one. The LiveKit implementation signs with
// the application id as API key and the application certificate as API
// secret.
package signing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/livekit/protocol/auth"

	"github.com/akinalp/rtctoken/models"
)

// ErrExpired is returned when expireAt is not in the future.
var ErrExpired = errors.New("expiry is not in the future")

// TokenBuilder is the signing capability used by the token service.
//
// The two RTC methods differ only in the shape of the identity; the token
// grants the same channel, role and expiry either way.
type TokenBuilder interface {
	BuildRtcTokenWithUID(channelName string, uid uint32, role models.Role, expireAt int64) (string, error)
	BuildRtcTokenWithAccount(channelName, account string, role models.Role, expireAt int64) (string, error)
	BuildRtmToken(account string, role models.Role, expireAt int64) (string, error)
}

// livekitBuilder signs tokens with the LiveKit server SDK.
type livekitBuilder struct {
	appID   string
	appCert string
	now     func() time.Time
}

// NewLiveKitBuilder returns a TokenBuilder. Empty credentials are not
// rejected here; every build call fails instead, which surfaces as a
// signing failure on the request.
func NewLiveKitBuilder(appID, appCertificate string) TokenBuilder {
	return &livekitBuilder{appID: appID, appCert: appCertificate, now: time.Now}
}

// tokenMetadata is embedded in every token so the receiving side can tell
// which identity shape and role it was issued for.
type tokenMetadata struct {
	Service  models.ServiceKind `json:"service"`
	Role     models.Role        `json:"role"`
	Identity string             `json:"identity_type"`
}

func (b *livekitBuilder) BuildRtcTokenWithUID(channelName string, uid uint32, role models.Role, expireAt int64) (string, error) {
	identity := strconv.FormatUint(uint64(uid), 10)
	return b.buildRtc(channelName, identity, "uid", role, expireAt)
}

func (b *livekitBuilder) BuildRtcTokenWithAccount(channelName, account string, role models.Role, expireAt int64) (string, error) {
	return b.buildRtc(channelName, account, "account", role, expireAt)
}

func (b *livekitBuilder) buildRtc(channelName, identity, identityType string, role models.Role, expireAt int64) (string, error) {
	canPublish := role == models.RolePublisher
	canSubscribe := true
	canPublishData := true

	grant := &auth.VideoGrant{
		RoomJoin:       true,
		Room:           channelName,
		CanPublish:     &canPublish,
		CanSubscribe:   &canSubscribe,
		CanPublishData: &canPublishData,
	}

	return b.sign(grant, identity, tokenMetadata{
		Service:  models.ServiceRTC,
		Role:     role,
		Identity: identityType,
	}, expireAt)
}

// BuildRtmToken grants data messaging only: no media publish, no room
// binding. The account is the token identity.
func (b *livekitBuilder) BuildRtmToken(account string, role models.Role, expireAt int64) (string, error) {
	canPublish := false
	canSubscribe := true
	canPublishData := true

	grant := &auth.VideoGrant{
		CanPublish:     &canPublish,
		CanSubscribe:   &canSubscribe,
		CanPublishData: &canPublishData,
	}

	return b.sign(grant, account, tokenMetadata{
		Service:  models.ServiceRTM,
		Role:     role,
		Identity: "account",
	}, expireAt)
}

func (b *livekitBuilder) sign(grant *auth.VideoGrant, identity string, meta tokenMetadata, expireAt int64) (string, error) {
	validFor := time.Unix(expireAt, 0).Sub(b.now())
	if validFor <= 0 {
		return "", ErrExpired
	}

	metadata, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode token metadata: %w", err)
	}

	at := auth.NewAccessToken(b.appID, b.appCert)
	at.AddGrant(grant).
		SetIdentity(identity).
		SetMetadata(string(metadata)).
		SetValidFor(validFor)

	token, err := at.ToJWT()
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", meta.Service, err)
	}
	return token, nil
}
