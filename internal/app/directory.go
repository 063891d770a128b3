package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/astrocall/callgate/internal/domain"
	"github.com/astrocall/callgate/internal/store"
)

// Directory serves the public astrologer listing and lets advisors manage
// their own profile and presence.
type Directory struct {
	astros  store.AstrologerStore
	reviews store.ReviewStore
	now     func() time.Time
}

func NewDirectory(astros store.AstrologerStore, reviews store.ReviewStore) *Directory {
	return &Directory{astros: astros, reviews: reviews, now: time.Now}
}

// ListOnline returns astrologers currently accepting calls.
func (d *Directory) ListOnline(ctx context.Context) ([]*domain.Astrologer, error) {
	astros, err := d.astros.ListOnline(ctx)
	if err != nil {
		return nil, Errorf(ReasonUnavailable, "failed to list astrologers")
	}
	return astros, nil
}

// ProfileUpdate carries the caller-editable profile fields.
type ProfileUpdate struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	Languages string `json:"languages"`
	PhotoURL  string `json:"photoUrl"`
}

// UpsertProfile creates or updates the caller's directory entry. Presence
// and creation time survive updates.
func (d *Directory) UpsertProfile(ctx context.Context, caller domain.UserID, upd ProfileUpdate) (*domain.Astrologer, error) {
	now := d.now()

	astro, err := d.astros.Get(ctx, caller)
	switch {
	case errors.Is(err, store.ErrNotFound):
		astro = &domain.Astrologer{ID: caller, CreatedAt: now}
	case err != nil:
		return nil, Errorf(ReasonUnavailable, "astrologer lookup failed")
	}

	if err := astro.SetName(upd.Name); err != nil {
		return nil, Errorf(ReasonInvalidArgument, "%s", err.Error())
	}
	astro.Bio = upd.Bio
	astro.Languages = upd.Languages
	astro.PhotoURL = upd.PhotoURL
	astro.UpdatedAt = now

	if err := d.astros.Upsert(ctx, astro); err != nil {
		return nil, Errorf(ReasonUnavailable, "failed to store profile")
	}

	log.Info().Str("module", "app.directory").Str("astro", string(caller)).Msg("profile upserted")
	return astro, nil
}

// SetPresence toggles the caller's availability in the directory.
func (d *Directory) SetPresence(ctx context.Context, caller domain.UserID, online bool) error {
	err := d.astros.SetPresence(ctx, caller, online, d.now())
	if errors.Is(err, store.ErrNotFound) {
		return Errorf(ReasonNotFound, "Astrologer not found")
	}
	if err != nil {
		return Errorf(ReasonUnavailable, "failed to set presence")
	}
	log.Info().Str("module", "app.directory").Str("astro", string(caller)).Bool("online", online).Msg("presence updated")
	return nil
}

// Reviews returns the reviews left for one astrologer, newest first.
func (d *Directory) Reviews(ctx context.Context, astroID domain.UserID) ([]*domain.Review, error) {
	if astroID == "" {
		return nil, Errorf(ReasonInvalidArgument, "astrologer id is required")
	}
	reviews, err := d.reviews.ListByAstrologer(ctx, astroID)
	if err != nil {
		return nil, Errorf(ReasonUnavailable, "failed to list reviews")
	}
	return reviews, nil
}
