package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/astrocall/callgate/internal/domain"
	"github.com/astrocall/callgate/internal/metrics"
	"github.com/astrocall/callgate/internal/store"
)

// DefaultTokenTTL bounds how long an issued room credential stays valid.
const DefaultTokenTTL = 2 * time.Hour

// RoomTokenSigner produces a signed, time-limited credential for joining
// one named media room as one identity. name is the display name shown
// to other room participants; an empty name falls back to the identity.
type RoomTokenSigner interface {
	Mint(identity, name, room string, ttl time.Duration) (string, error)
}

// TokenGrant is what a successful issuance returns: the signed credential
// plus the media server address to present it to.
type TokenGrant struct {
	Token string `json:"token"`
	WSURL string `json:"wsUrl"`
}

// TokenService is the call-session access-control core. Each request is
// independent: the session record is re-read every time because the other
// participant can end the call concurrently. Between that read and the
// mint the record can still change; the narrow race is accepted rather
// than paying for a transactional read-decide-write.
type TokenService struct {
	sessions store.SessionStore
	signer   RoomTokenSigner
	wsURL    string
	ttl      time.Duration
	rec      metrics.Recorder
}

func NewTokenService(sessions store.SessionStore, signer RoomTokenSigner, wsURL string, ttl time.Duration, rec metrics.Recorder) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &TokenService{
		sessions: sessions,
		signer:   signer,
		wsURL:    wsURL,
		ttl:      ttl,
		rec:      rec,
	}
}

// IssueToken runs the gate sequence for an already-authenticated caller:
// validate the room, load the session, check participation, check the
// session has not ended, then mint. Every failure is terminal for the
// request and no state is mutated on any path.
func (s *TokenService) IssueToken(ctx context.Context, caller domain.UserID, callerName, room string) (*TokenGrant, error) {
	grant, err := s.issue(ctx, caller, callerName, room)
	if err != nil {
		s.rec.RecordTokenDecision(string(ReasonOf(err)))
		return nil, err
	}
	s.rec.RecordTokenDecision("issued")
	return grant, nil
}

func (s *TokenService) issue(ctx context.Context, caller domain.UserID, callerName, room string) (*TokenGrant, error) {
	if room == "" {
		return nil, Errorf(ReasonInvalidArgument, "room is required")
	}

	sess, err := s.sessions.Get(ctx, room)
	if errors.Is(err, store.ErrNotFound) {
		return nil, Errorf(ReasonNotFound, "Session not found")
	}
	if err != nil {
		log.Error().Err(err).Str("module", "app.tokens").Str("room", room).Msg("session lookup failed")
		return nil, Errorf(ReasonUnavailable, "session lookup failed")
	}

	if !sess.IsParticipant(caller) {
		log.Warn().Str("module", "app.tokens").
			Str("identity", string(caller)).
			Str("room", room).
			Msg("token refused: caller is not a participant")
		return nil, Errorf(ReasonForbidden, "Forbidden: You are not a participant in this session")
	}

	if sess.Status == domain.StatusEnded {
		return nil, Errorf(ReasonForbidden, "Forbidden: This session has already ended")
	}

	if s.wsURL == "" {
		return nil, Errorf(ReasonUnavailable, "media server address is not configured")
	}

	started := time.Now()
	token, err := s.signer.Mint(string(caller), callerName, room, s.ttl)
	if err != nil {
		log.Error().Err(err).Str("module", "app.tokens").Str("room", room).Msg("token generation failed")
		return nil, Errorf(ReasonUnavailable, "token generation failed")
	}
	s.rec.RecordIssueLatency(time.Since(started))

	log.Info().Str("module", "app.tokens").
		Str("identity", string(caller)).
		Str("room", room).
		Msg("room token issued")

	return &TokenGrant{Token: token, WSURL: s.wsURL}, nil
}
