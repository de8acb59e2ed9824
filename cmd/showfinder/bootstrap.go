package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"showfinder/internal/models"
	"showfinder/internal/store"
)

// bootstrapSeedData makes a fresh deployment usable: an admin account to
// review submissions with, and the initial scraping-source registry.
func bootstrapSeedData(ctx context.Context, db *sql.DB, dataStore *store.Store) error {
	if err := ensureAdminUser(ctx, dataStore); err != nil {
		return err
	}
	return ensureSeedSources(ctx, db)
}

func ensureAdminUser(ctx context.Context, dataStore *store.Store) error {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Info().Msg("ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}
	username := envOrDefault("ADMIN_USERNAME", "admin")

	if _, err := dataStore.CreateUser(ctx, username, password, models.AccountRoleAdmin); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return nil
		}
		return fmt.Errorf("bootstrap admin user: %w", err)
	}
	log.Info().Str("username", username).Msg("admin account created")
	return nil
}

// ensureSeedSources registers the initial scrape origins at the neutral
// priority midpoint. Existing rows are left untouched so learned scores
// survive restarts.
func ensureSeedSources(ctx context.Context, db *sql.DB) error {
	exists, err := tableExists(ctx, db, "scraping_sources")
	if err != nil {
		return fmt.Errorf("check scraping_sources table: %w", err)
	}
	if !exists {
		return nil
	}

	seeds := []string{
		"https://www.sportscollectorsdigest.com/events",
		"https://www.beckett.com/news/category/shows",
		"https://cardshows.net/calendar",
	}
	for _, url := range seeds {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO scraping_sources (url, priority_score, enabled, created_at)
			VALUES ($1, 50, TRUE, NOW())
			ON CONFLICT (url) DO NOTHING
		`, url); err != nil {
			return fmt.Errorf("seed source %q: %w", url, err)
		}
	}
	return nil
}

func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var name sql.NullString
	if err := db.QueryRowContext(ctx, `SELECT to_regclass($1)`, table).Scan(&name); err != nil {
		return false, err
	}
	return name.Valid, nil
}
