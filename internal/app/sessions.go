package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/astrocall/callgate/internal/domain"
	"github.com/astrocall/callgate/internal/store"
)

// SessionService owns the session lifecycle: creation when a user rings
// an astrologer, the pending → active → ended transitions driven by the
// call screen, and the review left once a call has ended. It is the only
// writer of session status; the token core only reads it.
type SessionService struct {
	sessions store.SessionStore
	astros   store.AstrologerStore
	reviews  store.ReviewStore
	now      func() time.Time
}

func NewSessionService(sessions store.SessionStore, astros store.AstrologerStore, reviews store.ReviewStore) *SessionService {
	return &SessionService{
		sessions: sessions,
		astros:   astros,
		reviews:  reviews,
		now:      time.Now,
	}
}

// Create opens a pending session between the caller and an astrologer.
func (s *SessionService) Create(ctx context.Context, caller domain.UserID, astroID domain.UserID) (*domain.Session, error) {
	if astroID == "" {
		return nil, Errorf(ReasonInvalidArgument, "astroId is required")
	}

	if _, err := s.astros.Get(ctx, astroID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, Errorf(ReasonNotFound, "Astrologer not found")
		}
		return nil, Errorf(ReasonUnavailable, "astrologer lookup failed")
	}

	sess := domain.NewSession(uuid.NewString(), caller, astroID, s.now())
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, Errorf(ReasonUnavailable, "failed to create session")
	}

	log.Info().Str("module", "app.sessions").
		Str("session", sess.ID).
		Str("user", string(caller)).
		Str("astro", string(astroID)).
		Msg("session created")

	return sess, nil
}

// Get returns one session, visible to its participants only.
func (s *SessionService) Get(ctx context.Context, caller domain.UserID, id string) (*domain.Session, error) {
	return s.load(ctx, caller, id)
}

// List returns the caller's sessions, newest first.
func (s *SessionService) List(ctx context.Context, caller domain.UserID) ([]*domain.Session, error) {
	sessions, err := s.sessions.ListByParticipant(ctx, caller)
	if err != nil {
		return nil, Errorf(ReasonUnavailable, "failed to list sessions")
	}
	return sessions, nil
}

// Start marks the session active and stamps startedAt once. Both
// participants call this on connect; the second call is a no-op.
func (s *SessionService) Start(ctx context.Context, caller domain.UserID, id string) (*domain.Session, error) {
	sess, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if err := sess.Start(s.now()); err != nil {
		return nil, Errorf(ReasonForbidden, "Forbidden: This session has already ended")
	}
	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, Errorf(ReasonUnavailable, "failed to update session")
	}

	log.Info().Str("module", "app.sessions").Str("session", id).Msg("session started")
	return sess, nil
}

// End marks the session ended and stamps endedAt once. Either side may
// hang up; ending twice is benign.
func (s *SessionService) End(ctx context.Context, caller domain.UserID, id string) (*domain.Session, error) {
	sess, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if sess.Status == domain.StatusEnded {
		return sess, nil
	}
	_ = sess.End(s.now())
	if err := s.sessions.Update(ctx, sess); err != nil {
		return nil, Errorf(ReasonUnavailable, "failed to update session")
	}

	log.Info().Str("module", "app.sessions").Str("session", id).Msg("session ended")
	return sess, nil
}

// SubmitReview stores the user's rating for an ended session. Only the
// session's user may review, and only after the call is over.
func (s *SessionService) SubmitReview(ctx context.Context, caller domain.UserID, sessionID string, rating int, comment string) (*domain.Review, error) {
	if sessionID == "" {
		return nil, Errorf(ReasonInvalidArgument, "sessionId is required")
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, Errorf(ReasonNotFound, "Session not found")
	}
	if err != nil {
		return nil, Errorf(ReasonUnavailable, "session lookup failed")
	}

	if caller != sess.UserID {
		return nil, Errorf(ReasonForbidden, "Forbidden: only the session's user can leave a review")
	}
	if sess.Status != domain.StatusEnded {
		return nil, Errorf(ReasonInvalidArgument, "session has not ended yet")
	}

	review, err := domain.NewReview(uuid.NewString(), sess, rating, comment, s.now())
	if err != nil {
		return nil, Errorf(ReasonInvalidArgument, "%s", err.Error())
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, Errorf(ReasonUnavailable, "failed to store review")
	}

	log.Info().Str("module", "app.sessions").
		Str("session", sessionID).
		Int("rating", rating).
		Msg("review submitted")

	return review, nil
}

func (s *SessionService) load(ctx context.Context, caller domain.UserID, id string) (*domain.Session, error) {
	if id == "" {
		return nil, Errorf(ReasonInvalidArgument, "session id is required")
	}
	sess, err := s.sessions.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, Errorf(ReasonNotFound, "Session not found")
	}
	if err != nil {
		return nil, Errorf(ReasonUnavailable, "session lookup failed")
	}
	if !sess.IsParticipant(caller) {
		log.Warn().Str("module", "app.sessions").
			Str("identity", string(caller)).
			Str("session", id).
			Msg("access refused: caller is not a participant")
		return nil, Errorf(ReasonForbidden, "Forbidden: You are not a participant in this session")
	}
	return sess, nil
}
