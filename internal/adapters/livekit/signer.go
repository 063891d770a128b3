// Package livekit signs room access tokens with the LiveKit server SDK.
package livekit

import (
	"errors"
	"time"

	lkauth "github.com/livekit/protocol/auth"
)

var ErrNotConfigured = errors.New("livekit api key/secret are not configured")

// Signer mints capability-scoped LiveKit access tokens. The grant always
// carries join, publish, subscribe and publish-data for exactly one room.
type Signer struct {
	apiKey    string
	apiSecret string
}

func NewSigner(apiKey, apiSecret string) *Signer {
	return &Signer{apiKey: apiKey, apiSecret: apiSecret}
}

func (s *Signer) Mint(identity, name, room string, ttl time.Duration) (string, error) {
	if s.apiKey == "" || s.apiSecret == "" {
		return "", ErrNotConfigured
	}
	if name == "" {
		name = identity
	}

	at := lkauth.NewAccessToken(s.apiKey, s.apiSecret)
	grant := &lkauth.VideoGrant{
		RoomJoin: true,
		Room:     room,
	}
	grant.SetCanPublish(true)
	grant.SetCanSubscribe(true)
	grant.SetCanPublishData(true)

	at.SetVideoGrant(grant).
		SetIdentity(identity).
		SetName(name).
		SetValidFor(ttl)

	return at.ToJWT()
}
