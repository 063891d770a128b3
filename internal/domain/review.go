package domain

import (
	"errors"
	"time"
)

const MaxCommentLen = 2000

var (
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
	ErrCommentTooLong   = errors.New("comment too long")
)

// Review is left by the session's user once the call has ended.
type Review struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	UserID    UserID    `json:"userId"`
	AstroID   UserID    `json:"astroId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewReview(id string, s *Session, rating int, comment string, now time.Time) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrRatingOutOfRange
	}
	if len(comment) > MaxCommentLen {
		return nil, ErrCommentTooLong
	}
	return &Review{
		ID:        id,
		SessionID: s.ID,
		UserID:    s.UserID,
		AstroID:   s.AstroID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
	}, nil
}
