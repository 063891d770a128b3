package livekit

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "APIabcdef"
	testSecret = "secret-at-least-32-characters-long"
)

func decodeClaims(t *testing.T, raw string) jwt.MapClaims {
	t.Helper()
	tok, err := jwt.Parse(raw, func(tok *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims, ok := tok.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestSignerMint(t *testing.T) {
	s := NewSigner(testKey, testSecret)

	raw, err := s.Mint("u1", "Ada", "s1", 2*time.Hour)
	require.NoError(t, err)

	claims := decodeClaims(t, raw)
	assert.Equal(t, "u1", claims["sub"], "identity claim")
	assert.Equal(t, "Ada", claims["name"], "display name claim")
	assert.Equal(t, testKey, claims["iss"])

	video, ok := claims["video"].(map[string]any)
	require.True(t, ok, "video grant present")
	assert.Equal(t, "s1", video["room"], "room claim")
	assert.Equal(t, true, video["roomJoin"])
	assert.Equal(t, true, video["canPublish"])
	assert.Equal(t, true, video["canSubscribe"])
	assert.Equal(t, true, video["canPublishData"])

	exp, _ := claims["exp"].(float64)
	nbf, _ := claims["nbf"].(float64)
	assert.InDelta(t, 2*time.Hour/time.Second, exp-nbf, 60, "ttl bounds the credential")
}

func TestSignerNameFallsBackToIdentity(t *testing.T) {
	s := NewSigner(testKey, testSecret)

	raw, err := s.Mint("u1", "", "s1", time.Hour)
	require.NoError(t, err)
	claims := decodeClaims(t, raw)
	assert.Equal(t, "u1", claims["name"])
}

func TestSignerMissingKeys(t *testing.T) {
	for _, s := range []*Signer{
		NewSigner("", testSecret),
		NewSigner(testKey, ""),
		NewSigner("", ""),
	} {
		_, err := s.Mint("u1", "u1", "s1", time.Hour)
		assert.ErrorIs(t, err, ErrNotConfigured)
	}
}
