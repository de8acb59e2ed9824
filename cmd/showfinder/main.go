package main

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"

	"showfinder/internal/logging"
	"showfinder/internal/store"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	logging.Setup(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})

	db, err := openDatabase(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	defer db.Close()

	dataStore := store.New(db)

	if err := bootstrapSeedData(context.Background(), db, dataStore); err != nil {
		log.Fatal().Err(err).Msg("bootstrap failed")
	}

	handler := newHTTPHandler(cfg, dataStore)

	log.Info().Str("addr", cfg.Addr).Msg("API listening")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
