package main

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"showfinder/internal/app/mailinglist"
	"showfinder/internal/app/shows"
	"showfinder/internal/app/sources"
	"showfinder/internal/app/submissions"
	"showfinder/internal/app/users"
	"showfinder/internal/auth"
	"showfinder/internal/cache"
	"showfinder/internal/httpapi"
	"showfinder/internal/notify"
	"showfinder/internal/store"
)

func newHTTPHandler(cfg Config, dataStore *store.Store) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret)

	var notifier submissions.Notifier
	if cfg.AMQPURL != "" {
		notifier = notify.NewPublisher(cfg.AMQPURL)
	} else {
		log.Info().Msg("AMQP_URL not set, organizer notifications disabled")
	}

	searchCache := cache.New(cache.NewRedisClient(), "search", cfg.SearchCacheTTL)

	userSvc := users.New(dataStore, tokens)
	submissionSvc := submissions.New(dataStore, notifier)
	showSvc := shows.New(dataStore)
	mailingListSvc := mailinglist.New(dataStore)
	sourceSvc := sources.New(dataStore)

	api := httpapi.New(userSvc, submissionSvc, showSvc, mailingListSvc, sourceSvc, dataStore, tokens, searchCache)

	handler := httpapi.RequestLogger(httpapi.Recover(api.Routes()))
	return withCORS(cfg.AllowedOrigins, handler)
}

func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	originAllowed := func(origin string) bool {
		if len(allowedOrigins) == 0 || origin == "" {
			return false
		}
		for _, o := range allowedOrigins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
