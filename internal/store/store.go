// Package store persists sessions, astrologer profiles and reviews.
// The session record is the single source of truth for call liveness, so
// implementations must serve reads fresh: no caching between requests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/astrocall/callgate/internal/domain"
)

var ErrNotFound = errors.New("not found")

type SessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
	// Get returns ErrNotFound when no session has the given id.
	Get(ctx context.Context, id string) (*domain.Session, error)
	Update(ctx context.Context, s *domain.Session) error
	// ListByParticipant returns sessions where id is either side of the
	// call, newest first.
	ListByParticipant(ctx context.Context, id domain.UserID) ([]*domain.Session, error)
}

type AstrologerStore interface {
	Upsert(ctx context.Context, a *domain.Astrologer) error
	Get(ctx context.Context, id domain.UserID) (*domain.Astrologer, error)
	ListOnline(ctx context.Context) ([]*domain.Astrologer, error)
	SetPresence(ctx context.Context, id domain.UserID, online bool, now time.Time) error
}

type ReviewStore interface {
	Create(ctx context.Context, r *domain.Review) error
	ListByAstrologer(ctx context.Context, id domain.UserID) ([]*domain.Review, error)
}
