package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/astrocall/callgate/internal/auth"
	"github.com/astrocall/callgate/internal/config"
	"github.com/astrocall/callgate/internal/domain"
	"github.com/astrocall/callgate/internal/metrics"
)

func SetupRouter(cfg *config.Config, verifier auth.Verifier, h *Handlers, reg *prometheus.Registry) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if reg != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(reg)))
	}

	authed := RequireIdentity(verifier)

	// The token endpoint keeps its historical path: the call screen posts
	// to /token, everything else lives under /api.
	r.POST("/token", authed, h.issueToken)

	api := r.Group("/api")
	api.GET("/astrologers", h.listAstrologers)
	api.GET("/astrologers/:id/reviews", h.listReviews)

	api.Use(authed)
	api.POST("/sessions", h.createSession)
	api.GET("/sessions", h.listSessions)
	api.GET("/sessions/:id", h.getSession)
	api.POST("/sessions/:id/start", h.startSession)
	api.POST("/sessions/:id/end", h.endSession)
	api.POST("/reviews", h.submitReview)

	// Self-service profile management is for advisors only.
	astroOnly := RequireRole(domain.RoleAstro)
	api.PUT("/astrologers/me", astroOnly, h.upsertProfile)
	api.POST("/astrologers/me/presence", astroOnly, h.setPresence)

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
