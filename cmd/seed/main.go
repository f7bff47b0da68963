package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"guitarworks/api/internal/config"
	"guitarworks/api/internal/database"
	"guitarworks/api/internal/events"
	"guitarworks/api/internal/i18n"
	"guitarworks/api/internal/log"
	"guitarworks/api/internal/repository"
	"guitarworks/api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level).With().Str("process", "seed").Logger()

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("seed failed")
	}
}

// run owns every resource it opens, so they are released before main exits.
func run(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) error {
	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer dbPool.Close()

	if err := database.Migrate(ctx, dbPool); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	username := cfg.Admin.SeedUsername
	if username == "" || cfg.Admin.SeedPassword == "" {
		logger.Info().Msg("no seed admin configured, migrations only")
		return nil
	}
	if !cfg.IsAdmin(username) {
		logger.Warn().Str("username", username).Msg("seed user is not listed in admin.usernames and gets no admin rights")
	}

	users := repository.NewUserRepository(dbPool)
	if _, err := users.FindByUsername(ctx, username); err == nil {
		logger.Info().Str("username", username).Msg("seed admin already present")
		return nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("seed admin lookup: %w", err)
	}

	auth := service.NewAuthService(
		users,
		repository.NewSessionRepository(dbPool),
		events.NopPublisher{},
		i18n.New(cfg.I18n.Locale),
		cfg.Security,
		logger,
	)
	result := auth.Register(ctx, username, cfg.Admin.SeedPassword)
	if result.Error {
		return fmt.Errorf("register seed admin: %s", strings.Join(result.Messages, "; "))
	}
	logger.Info().Str("username", username).Int64("user_id", result.UserID).Msg("seed admin created")
	return nil
}
