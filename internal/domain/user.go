// Package domain holds the call-marketplace entities and the session
// lifecycle rules.
package domain

import (
	"errors"
	"time"
)

const MaxNameLen = 64

var (
	ErrNameTooLong = errors.New("name too long")
	ErrNameEmpty   = errors.New("name empty")
)

type UserID string

// Role separates callers from advisors. Only astrologers may manage a
// directory profile; everything else is open to both roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAstro Role = "astrologer"
)

// Astrologer is the public directory profile, keyed by the advisor's
// identity. Presence (IsOnline) gates visibility in the directory.
type Astrologer struct {
	ID        UserID    `json:"id"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio,omitempty"`
	Languages string    `json:"languages,omitempty"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	IsOnline  bool      `json:"isOnline"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SetName is a tiny helper to keep validation out of adapters.
func (a *Astrologer) SetName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	a.Name = name
	return nil
}
