package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrocall/callgate/internal/domain"
	"github.com/astrocall/callgate/internal/store"
)

type countingSigner struct {
	calls    int
	lastName string
	err      error
}

func (f *countingSigner) Mint(identity, name, room string, ttl time.Duration) (string, error) {
	f.calls++
	f.lastName = name
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("tok-%s-%s-%d", identity, room, f.calls), nil
}

func seedSession(t *testing.T, sessions store.SessionStore, id string, status domain.SessionStatus) *domain.Session {
	t.Helper()
	sess := domain.NewSession(id, "u1", "a1", time.Now())
	sess.Status = status
	require.NoError(t, sessions.Create(context.Background(), sess))
	return sess
}

func newTokenService(sessions store.SessionStore, signer RoomTokenSigner) *TokenService {
	return NewTokenService(sessions, signer, "wss://media.example.com", 0, nil)
}

func TestIssueTokenActiveSession(t *testing.T) {
	mem := store.NewMemory()
	seedSession(t, mem.Sessions, "s1", domain.StatusActive)
	signer := &countingSigner{}
	svc := newTokenService(mem.Sessions, signer)

	grant, err := svc.IssueToken(context.Background(), "u1", "", "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, grant.Token)
	assert.Equal(t, "wss://media.example.com", grant.WSURL)
	assert.Equal(t, 1, signer.calls)
}

func TestIssueTokenBothParticipants(t *testing.T) {
	// A pending session is issuable to both declared participants.
	mem := store.NewMemory()
	seedSession(t, mem.Sessions, "s1", domain.StatusPending)
	svc := newTokenService(mem.Sessions, &countingSigner{})

	for _, caller := range []domain.UserID{"u1", "a1"} {
		grant, err := svc.IssueToken(context.Background(), caller, "", "s1")
		require.NoError(t, err, "caller %s", caller)
		assert.NotEmpty(t, grant.Token)
	}
}

func TestIssueTokenRepeatedIssuance(t *testing.T) {
	// Two requests for the same (identity, room) pair yield distinct
	// credentials; neither invalidates the other.
	mem := store.NewMemory()
	seedSession(t, mem.Sessions, "s1", domain.StatusActive)
	svc := newTokenService(mem.Sessions, &countingSigner{})

	first, err := svc.IssueToken(context.Background(), "u1", "", "s1")
	require.NoError(t, err)
	second, err := svc.IssueToken(context.Background(), "u1", "", "s1")
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
}

func TestIssueTokenNotParticipant(t *testing.T) {
	mem := store.NewMemory()
	seedSession(t, mem.Sessions, "s1", domain.StatusActive)
	signer := &countingSigner{}
	svc := newTokenService(mem.Sessions, signer)

	_, err := svc.IssueToken(context.Background(), "u2", "", "s1")
	require.Error(t, err)
	assert.Equal(t, ReasonForbidden, ReasonOf(err))
	assert.ErrorContains(t, err, "not a participant")
	assert.Zero(t, signer.calls, "signer must not run for non-participants")
}

func TestIssueTokenEndedSession(t *testing.T) {
	mem := store.NewMemory()
	seedSession(t, mem.Sessions, "s1", domain.StatusEnded)
	signer := &countingSigner{}
	svc := newTokenService(mem.Sessions, signer)

	// Ended blocks everyone, legitimate participants included.
	for _, caller := range []domain.UserID{"u1", "a1"} {
		_, err := svc.IssueToken(context.Background(), caller, "", "s1")
		require.Error(t, err, "caller %s", caller)
		assert.Equal(t, ReasonForbidden, ReasonOf(err))
		assert.ErrorContains(t, err, "already ended")
	}
	assert.Zero(t, signer.calls)
}

func TestIssueTokenSessionNotFound(t *testing.T) {
	mem := store.NewMemory()
	signer := &countingSigner{}
	svc := newTokenService(mem.Sessions, signer)

	_, err := svc.IssueToken(context.Background(), "u1", "", "nope")
	require.Error(t, err)
	assert.Equal(t, ReasonNotFound, ReasonOf(err))
	assert.Zero(t, signer.calls, "signer must observe zero invocations for unknown sessions")
}

func TestIssueTokenEmptyRoom(t *testing.T) {
	mem := store.NewMemory()
	svc := newTokenService(mem.Sessions, &countingSigner{})

	_, err := svc.IssueToken(context.Background(), "u1", "", "")
	require.Error(t, err)
	assert.Equal(t, ReasonInvalidArgument, ReasonOf(err))
	assert.ErrorContains(t, err, "room is required")
}

func TestIssueTokenSignerFailure(t *testing.T) {
	mem := store.NewMemory()
	seedSession(t, mem.Sessions, "s1", domain.StatusActive)
	svc := newTokenService(mem.Sessions, &countingSigner{err: errors.New("keys missing")})

	_, err := svc.IssueToken(context.Background(), "u1", "", "s1")
	require.Error(t, err)
	assert.Equal(t, ReasonUnavailable, ReasonOf(err))
}

func TestIssueTokenNoServerURL(t *testing.T) {
	mem := store.NewMemory()
	seedSession(t, mem.Sessions, "s1", domain.StatusActive)
	signer := &countingSigner{}
	svc := NewTokenService(mem.Sessions, signer, "", 0, nil)

	_, err := svc.IssueToken(context.Background(), "u1", "", "s1")
	require.Error(t, err)
	assert.Equal(t, ReasonUnavailable, ReasonOf(err))
	assert.Zero(t, signer.calls)
}

func TestIssueTokenPassesDisplayName(t *testing.T) {
	mem := store.NewMemory()
	seedSession(t, mem.Sessions, "s1", domain.StatusActive)
	signer := &countingSigner{}
	svc := newTokenService(mem.Sessions, signer)

	_, err := svc.IssueToken(context.Background(), "u1", "Ada", "s1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", signer.lastName)
}

func TestIssueTokenForbiddenMessagesDistinguishable(t *testing.T) {
	mem := store.NewMemory()
	seedSession(t, mem.Sessions, "s1", domain.StatusEnded)
	svc := newTokenService(mem.Sessions, &countingSigner{})

	_, endedErr := svc.IssueToken(context.Background(), "u1", "", "s1")
	_, strangerErr := svc.IssueToken(context.Background(), "u2", "", "s1")
	require.Error(t, endedErr)
	require.Error(t, strangerErr)
	assert.NotEqual(t, endedErr.Error(), strangerErr.Error())
}
