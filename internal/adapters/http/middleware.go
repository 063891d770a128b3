package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/astrocall/callgate/internal/auth"
	"github.com/astrocall/callgate/internal/domain"
)

const identityKey = "identity"

// RequireIdentity authenticates the bearer credential and stores the
// caller identity on the request context. Requests with no usable
// identity never reach a handler.
func RequireIdentity(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer credential"})
			return
		}

		id, err := verifier.Verify(raw)
		if err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Msg("bearer verification failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid bearer credential"})
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireRole rejects authenticated callers whose identity does not
// carry the given role. Must run after RequireIdentity.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := caller(c)
		if id.Role != role {
			log.Warn().Str("module", "adapters.http").
				Str("identity", string(id.UserID)).
				Str("role", string(id.Role)).
				Msg("access refused: role mismatch")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: astrologer role required"})
			return
		}
		c.Next()
	}
}

// caller returns the identity stored by RequireIdentity.
func caller(c *gin.Context) *auth.Identity {
	id, _ := c.MustGet(identityKey).(*auth.Identity)
	return id
}

func callerID(c *gin.Context) domain.UserID {
	return caller(c).UserID
}
