package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrocall/callgate/internal/domain"
	"github.com/astrocall/callgate/internal/store"
)

func newSessionService(t *testing.T) (*SessionService, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	require.NoError(t, mem.Astrologers.Upsert(context.Background(), &domain.Astrologer{
		ID:       "a1",
		Name:     "Vega",
		IsOnline: true,
	}))
	return NewSessionService(mem.Sessions, mem.Astrologers, mem.Reviews), mem
}

func TestSessionCreate(t *testing.T) {
	svc, mem := newSessionService(t)
	ctx := context.Background()

	sess, err := svc.Create(ctx, "u1", "a1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, domain.StatusPending, sess.Status)
	assert.Equal(t, domain.UserID("u1"), sess.UserID)
	assert.Equal(t, domain.UserID("a1"), sess.AstroID)

	stored, err := mem.Sessions.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, stored.ID)
}

func TestSessionCreateUnknownAstrologer(t *testing.T) {
	svc, _ := newSessionService(t)

	_, err := svc.Create(context.Background(), "u1", "ghost")
	require.Error(t, err)
	assert.Equal(t, ReasonNotFound, ReasonOf(err))
}

func TestSessionStartEnd(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	sess, err := svc.Create(ctx, "u1", "a1")
	require.NoError(t, err)

	started, err := svc.Start(ctx, "u1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, started.Status)
	require.NotNil(t, started.StartedAt)
	firstStamp := *started.StartedAt

	// The astrologer connecting later must not move startedAt.
	again, err := svc.Start(ctx, "a1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, firstStamp, *again.StartedAt)

	ended, err := svc.End(ctx, "a1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnded, ended.Status)
	require.NotNil(t, ended.EndedAt)

	// Ending twice is benign; starting after end is not.
	_, err = svc.End(ctx, "u1", sess.ID)
	assert.NoError(t, err)
	_, err = svc.Start(ctx, "u1", sess.ID)
	require.Error(t, err)
	assert.Equal(t, ReasonForbidden, ReasonOf(err))
}

func TestSessionAccessControl(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	sess, err := svc.Create(ctx, "u1", "a1")
	require.NoError(t, err)

	_, err = svc.Get(ctx, "u2", sess.ID)
	require.Error(t, err)
	assert.Equal(t, ReasonForbidden, ReasonOf(err))

	_, err = svc.Start(ctx, "u2", sess.ID)
	require.Error(t, err)
	assert.Equal(t, ReasonForbidden, ReasonOf(err))

	_, err = svc.Get(ctx, "u1", "missing")
	require.Error(t, err)
	assert.Equal(t, ReasonNotFound, ReasonOf(err))
}

func TestSessionList(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	var last string
	for i := 0; i < 3; i++ {
		svc.now = func() time.Time { return time.Now().Add(time.Duration(i) * time.Second) }
		sess, err := svc.Create(ctx, "u1", "a1")
		require.NoError(t, err)
		last = sess.ID
	}

	sessions, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, last, sessions[0].ID, "newest first")

	other, err := svc.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSubmitReview(t *testing.T) {
	svc, mem := newSessionService(t)
	ctx := context.Background()

	sess, err := svc.Create(ctx, "u1", "a1")
	require.NoError(t, err)

	// Not ended yet.
	_, err = svc.SubmitReview(ctx, "u1", sess.ID, 5, "lovely")
	require.Error(t, err)
	assert.Equal(t, ReasonInvalidArgument, ReasonOf(err))

	_, err = svc.End(ctx, "u1", sess.ID)
	require.NoError(t, err)

	// Only the session's user may review.
	_, err = svc.SubmitReview(ctx, "a1", sess.ID, 5, "reviewing myself")
	require.Error(t, err)
	assert.Equal(t, ReasonForbidden, ReasonOf(err))

	review, err := svc.SubmitReview(ctx, "u1", sess.ID, 4, "helpful")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, review.SessionID)
	assert.Equal(t, domain.UserID("a1"), review.AstroID)

	reviews, err := mem.Reviews.ListByAstrologer(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 4, reviews[0].Rating)
}

func TestSubmitReviewBadRating(t *testing.T) {
	svc, _ := newSessionService(t)
	ctx := context.Background()

	sess, err := svc.Create(ctx, "u1", "a1")
	require.NoError(t, err)
	_, err = svc.End(ctx, "u1", sess.ID)
	require.NoError(t, err)

	_, err = svc.SubmitReview(ctx, "u1", sess.ID, 0, "")
	require.Error(t, err)
	assert.Equal(t, ReasonInvalidArgument, ReasonOf(err))
}
