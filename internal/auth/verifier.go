// Package auth validates bearer identity credentials issued by the
// identity provider and yields the caller identity.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/astrocall/callgate/internal/domain"
)

var ErrNoSecret = errors.New("auth signing secret is not configured")

// Identity is the authenticated caller, as asserted by the token's
// claims. Role defaults to the plain user role when the claim is absent
// or unknown.
type Identity struct {
	UserID domain.UserID
	Name   string
	Role   domain.Role
}

// Verifier validates a raw bearer credential and returns the identity it
// carries.
type Verifier interface {
	Verify(token string) (*Identity, error)
}

// JWTVerifier verifies HS256 identity tokens against a shared secret.
type JWTVerifier struct {
	secret []byte
	issuer string
}

// NewJWTVerifier builds a verifier. An issuer of "" disables the issuer
// check. A missing secret is reported per request, not at construction,
// so a misconfigured deployment still starts and logs loudly.
func NewJWTVerifier(secret []byte, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: secret, issuer: issuer}
}

func (v *JWTVerifier) Verify(tokenString string) (*Identity, error) {
	if len(v.secret) == 0 {
		return nil, ErrNoSecret
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}

	if v.issuer != "" {
		iss, _ := claims["iss"].(string)
		if iss != v.issuer {
			return nil, fmt.Errorf("invalid issuer: got %q, want %q", iss, v.issuer)
		}
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("missing sub claim")
	}
	name, _ := claims["name"].(string)

	role := domain.RoleUser
	if r, _ := claims["role"].(string); domain.Role(r) == domain.RoleAstro {
		role = domain.RoleAstro
	}

	return &Identity{UserID: domain.UserID(sub), Name: name, Role: role}, nil
}
