package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"showfinder/internal/models"
	"showfinder/internal/store"
)

// Degradation codes for the public read path. Search and detail failures
// surface as an error payload instead of a raw 5xx.
const (
	errCodeInvalidParameter = "INVALID_PARAMETER"
	errCodeSearchFailed     = "SEARCH_FAILED"
	errCodeNotFound         = "NOT_FOUND"
	errCodeDetailFailed     = "DETAIL_FAILED"
)

func (s *Server) handleSearchShows(w http.ResponseWriter, r *http.Request) {
	params, err := parseSearchParams(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, readErrorResponse{Error: err.Error(), ErrorCode: errCodeInvalidParameter})
		return
	}

	cacheKey := r.URL.RawQuery
	if s.searchCache.Enabled() {
		if body, ok := s.searchCache.Get(r.Context(), cacheKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(body)
			return
		}
	}

	result, err := s.shows.Search(r.Context(), params)
	if err != nil {
		writeJSON(w, http.StatusOK, readErrorResponse{Error: "search is temporarily unavailable", ErrorCode: errCodeSearchFailed})
		return
	}

	if s.searchCache.Enabled() {
		if body, err := json.Marshal(result); err == nil {
			s.searchCache.Set(r.Context(), cacheKey, body)
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleShowDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, readErrorResponse{Error: "invalid show id", ErrorCode: errCodeInvalidParameter})
		return
	}

	details, err := s.shows.Details(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrShowNotFound) {
			writeJSON(w, http.StatusNotFound, readErrorResponse{Error: "show not found", ErrorCode: errCodeNotFound})
			return
		}
		writeJSON(w, http.StatusOK, readErrorResponse{Error: "show details are temporarily unavailable", ErrorCode: errCodeDetailFailed})
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleFavoriteShow(w http.ResponseWriter, r *http.Request) {
	s.toggleFavorite(w, r, s.shows.Favorite)
}

func (s *Server) handleUnfavoriteShow(w http.ResponseWriter, r *http.Request) {
	s.toggleFavorite(w, r, s.shows.Unfavorite)
}

func (s *Server) toggleFavorite(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, showID int64) error) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid show id"})
		return
	}
	claims, _ := claimsFromContext(r.Context())

	if err := op(r.Context(), claims.UserID, id); err != nil {
		if errors.Is(err, store.ErrShowNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "show not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to update favorite"})
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Success: true})
}

func parseSearchParams(q map[string][]string) (models.ShowSearchParams, error) {
	get := func(key string) string {
		if vals := q[key]; len(vals) > 0 {
			return strings.TrimSpace(vals[0])
		}
		return ""
	}

	var params models.ShowSearchParams
	var err error

	if params.Latitude, err = floatParam(get("lat"), 0); err != nil {
		return params, errors.New("lat must be a number")
	}
	if params.Longitude, err = floatParam(get("lng"), 0); err != nil {
		return params, errors.New("lng must be a number")
	}
	if params.RadiusMiles, err = floatParam(get("radius"), 0); err != nil {
		return params, errors.New("radius must be a number")
	}

	if raw := get("start_date"); raw != "" {
		if params.StartDate, err = time.Parse(time.DateOnly, raw); err != nil {
			return params, errors.New("start_date must be YYYY-MM-DD")
		}
	}
	if raw := get("end_date"); raw != "" {
		if params.EndDate, err = time.Parse(time.DateOnly, raw); err != nil {
			return params, errors.New("end_date must be YYYY-MM-DD")
		}
	}

	if raw := get("max_entry_fee"); raw != "" {
		fee, err := strconv.ParseFloat(raw, 64)
		if err != nil || fee < 0 {
			return params, errors.New("max_entry_fee must be a non-negative number")
		}
		params.MaxEntryFee = &fee
	}

	params.Categories = csvParam(get("categories"))
	params.Features = csvParam(get("features"))
	params.Page = intParam(get("page"), 1)
	params.PageSize = intParam(get("page_size"), 0)

	return params, nil
}

func floatParam(raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func csvParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
