package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	auth "github.com/gardinier/garden-auth"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Timestamp().
		Logger()

	cfg, err := auth.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	if cfg.UsesDefaultSecret() {
		logger.Warn().Msg("JWT_SECRET is unset, using the insecure default signing key")
	}

	authLogger := zerologAdapter{log: logger.With().Str("component", "auth").Logger()}

	store, err := buildStore(cfg, authLogger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open user store")
	}

	if _, err := store.Initialize(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed user store")
	}

	tokens := auth.NewTokenService(cfg.SigningKey(), cfg.TokenTTL(), authLogger)
	guard := auth.NewRouteGuard(tokens, store).WithLogger(authLogger)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:       "garden-auth",
			StrictRouting: false,
		}))
	})

	auth.RegisterAuthRoutes(srv.Router(), auth.NewAuthController(store, tokens, guard))
	auth.RegisterUserRoutes(srv.Router(), auth.NewUsersController(store, guard))

	logger.Info().Str("port", cfg.Port).Msg("starting server")
	srv.Serve(":" + cfg.Port)

	waitExitSignal()

	logger.Info().Msg("shutting down")
}

func buildStore(cfg auth.Config, logger auth.Logger) (auth.UserStore, error) {
	if cfg.DatabaseDSN == "" {
		return auth.NewMemoryStore(), nil
	}

	store, err := auth.OpenSQLite(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	return store.WithLogger(logger), nil
}

func waitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}

type zerologAdapter struct {
	log zerolog.Logger
}

func (z zerologAdapter) Debug(format string, args ...any) {
	z.log.Debug().Msgf(format, args...)
}

func (z zerologAdapter) Info(format string, args ...any) {
	z.log.Info().Msgf(format, args...)
}

func (z zerologAdapter) Warn(format string, args ...any) {
	z.log.Warn().Msgf(format, args...)
}

func (z zerologAdapter) Error(format string, args ...any) {
	z.log.Error().Msgf(format, args...)
}
