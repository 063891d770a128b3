package domain

import (
	"errors"
	"time"
)

type SessionStatus string

const (
	StatusPending SessionStatus = "pending"
	StatusActive  SessionStatus = "active"
	StatusEnded   SessionStatus = "ended"
)

var (
	ErrSessionEnded   = errors.New("session already ended")
	ErrNotParticipant = errors.New("not a session participant")
)

// Session is the persisted record of one call between a user and an
// astrologer. The ID doubles as the media room name, so issuing a
// credential for room R means issuing it for session R.
type Session struct {
	ID        string        `json:"id"`
	UserID    UserID        `json:"userId"`
	AstroID   UserID        `json:"astroId"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	StartedAt *time.Time    `json:"startedAt,omitempty"`
	EndedAt   *time.Time    `json:"endedAt,omitempty"`
}

// NewSession avoids raw literals in adapters and keeps construction obvious.
func NewSession(id string, userID, astroID UserID, now time.Time) *Session {
	return &Session{
		ID:        id,
		UserID:    userID,
		AstroID:   astroID,
		Status:    StatusPending,
		CreatedAt: now,
	}
}

// IsParticipant reports whether id is one of the two identities recorded
// on the session. Only participants may receive a room credential.
func (s *Session) IsParticipant(id UserID) bool {
	return id == s.UserID || id == s.AstroID
}

// Start moves the session to active and stamps StartedAt once.
// Starting an already-active session is a no-op: both participants race
// to stamp the session on connect and the loser's write must be benign.
func (s *Session) Start(now time.Time) error {
	if s.Status == StatusEnded {
		return ErrSessionEnded
	}
	if s.StartedAt != nil {
		return nil
	}
	s.Status = StatusActive
	s.StartedAt = &now
	return nil
}

// End moves the session to ended and stamps EndedAt once. Ended is
// terminal; ending twice is a no-op so either participant can hang up.
func (s *Session) End(now time.Time) error {
	if s.Status == StatusEnded {
		return nil
	}
	s.Status = StatusEnded
	s.EndedAt = &now
	return nil
}
