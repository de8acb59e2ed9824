package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"showfinder/internal/models"
	"showfinder/internal/store"
)

type fixCoordinatesRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// handleFixCoordinates lets an admin correct a show's coordinates and
// resolve its open coordinate issues.
func (s *Server) handleFixCoordinates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid show id"})
		return
	}
	claims, _ := claimsFromContext(r.Context())

	var req fixCoordinatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.shows.FixCoordinates(r.Context(), id, claims.UserID, req.Latitude, req.Longitude); err != nil {
		switch {
		case errors.Is(err, store.ErrShowNotFound):
			writeJSON(w, http.StatusNotFound, resultResponse{Error: "show not found"})
		case errors.Is(err, store.ErrValidation):
			writeJSON(w, http.StatusBadRequest, resultResponse{Error: err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, resultResponse{Error: "failed to update coordinates"})
		}
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Success: true})
}

func (s *Server) handleMailingList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.MailingListFilter{
		Status:   q.Get("status"),
		Page:     intParam(q.Get("page"), 1),
		PageSize: intParam(q.Get("page_size"), 20),
	}

	result, err := s.mailingList.List(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load mailing list"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	srcs, err := s.sources.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load sources"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": srcs})
}

func (s *Server) handleCoordinateIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := s.issues.ListCoordinateIssues(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load coordinate issues"})
		return
	}
	if issues == nil {
		issues = []models.CoordinateIssue{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": issues})
}
