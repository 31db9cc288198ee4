package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Duel/internal/adapters/http"
	"github.com/dkeye/Duel/internal/app"
	"github.com/dkeye/Duel/internal/app/orch"
	"github.com/dkeye/Duel/internal/config"
	"github.com/dkeye/Duel/internal/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Early logger so config.Load can report; replaced once config is read.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := observability.Setup(cfg.Log); err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}

	policy, err := app.ParsePolicy(cfg.Signal.SlowPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("bad slow policy")
	}
	reg := app.NewRegistry(policy)
	coord := orch.NewCoordinator(app.NewRoomStore(), reg)

	r := router.SetupRouter(ctx, cfg, coord, reg)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Duel server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Int("rooms", coord.RoomCount()).Msg("Server exited gracefully")
}
