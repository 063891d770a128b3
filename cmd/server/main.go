package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/astrocall/callgate/internal/adapters/http"
	"github.com/astrocall/callgate/internal/adapters/livekit"
	"github.com/astrocall/callgate/internal/app"
	"github.com/astrocall/callgate/internal/auth"
	"github.com/astrocall/callgate/internal/config"
	"github.com/astrocall/callgate/internal/metrics"
	"github.com/astrocall/callgate/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	var (
		sessions store.SessionStore
		astros   store.AstrologerStore
		reviews  store.ReviewStore
	)
	if cfg.Storage == "memory" {
		mem := store.NewMemory()
		sessions, astros, reviews = mem.Sessions, mem.Astrologers, mem.Reviews
		log.Warn().Str("module", "main").Msg("using in-memory storage, state will not survive restarts")
	} else {
		db, disconnect, err := store.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongo")
		}
		defer func() {
			if err := disconnect(context.Background()); err != nil {
				log.Error().Err(err).Msg("mongo disconnect failed")
			}
		}()
		sessions, astros, reviews = db.Sessions, db.Astrologers, db.Reviews
	}

	verifier := auth.NewJWTVerifier([]byte(cfg.Auth.Secret), cfg.Auth.Issuer)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	signer := livekit.NewSigner(cfg.LiveKit.APIKey, cfg.LiveKit.APISecret)
	h := &router.Handlers{
		Tokens:    app.NewTokenService(sessions, signer, cfg.LiveKit.WSURL, cfg.TokenTTL, collector),
		Sessions:  app.NewSessionService(sessions, astros, reviews),
		Directory: app.NewDirectory(astros, reviews),
	}

	r := router.SetupRouter(cfg, verifier, h, reg)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("callgate server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
