package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"showfinder/internal/app/submissions"
	"showfinder/internal/models"
	"showfinder/internal/store"
)

type submitRequest struct {
	SourceURL      string          `json:"source_url,omitempty"`
	Payload        json.RawMessage `json:"payload"`
	OrganizerName  string          `json:"organizer_name,omitempty"`
	OrganizerEmail string          `json:"organizer_email,omitempty"`
}

type scraperSubmitRequest struct {
	SourceURL    string          `json:"source_url"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	ExtractError string          `json:"extract_error,omitempty"`
}

type editSubmissionRequest struct {
	NormalizedPayload json.RawMessage `json:"normalized_payload"`
	AdminNotes        string          `json:"admin_notes,omitempty"`
}

type reviewRequest struct {
	AdminNotes string `json:"admin_notes,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

type geocodeResultRequest struct {
	GeocodedPayload json.RawMessage `json:"geocoded_payload"`
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// handleSubmit accepts organizer submissions from the public web form.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if len(req.Payload) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "payload is required"})
		return
	}

	sub, err := s.submissions.Submit(r.Context(), req.SourceURL, req.Payload, req.OrganizerName, req.OrganizerEmail)
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to record submission"})
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// handleScraperSubmit accepts scraper batches. A payload with an extract
// error is recorded for review rather than rejected.
func (s *Server) handleScraperSubmit(w http.ResponseWriter, r *http.Request) {
	var req scraperSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.SourceURL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "source_url is required"})
		return
	}

	var sub *models.PendingSubmission
	var err error
	if req.ExtractError != "" {
		sub, err = s.submissions.SubmitExtractError(r.Context(), req.SourceURL, req.Payload, req.ExtractError)
	} else {
		if len(req.Payload) == 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "payload is required"})
			return
		}
		sub, err = s.submissions.Submit(r.Context(), req.SourceURL, req.Payload, "", "")
	}
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to record submission"})
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.SubmissionFilter{
		Status:   q.Get("status"),
		Page:     intParam(q.Get("page"), 1),
		PageSize: intParam(q.Get("page_size"), 20),
	}

	subs, pagination, err := s.submissions.List(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list submissions"})
		return
	}
	if subs == nil {
		subs = []models.PendingSubmission{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":       subs,
		"pagination": pagination,
	})
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid submission id"})
		return
	}

	sub, err := s.submissions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrSubmissionNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "submission not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load submission"})
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleEditSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid submission id"})
		return
	}
	claims, _ := claimsFromContext(r.Context())

	var req editSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if len(req.NormalizedPayload) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "normalized_payload is required"})
		return
	}

	if err := s.submissions.Edit(r.Context(), id, claims.UserID, req.NormalizedPayload, req.AdminNotes); err != nil {
		s.writeTransitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Success: true})
}

func (s *Server) handleApproveSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid submission id"})
		return
	}
	claims, _ := claimsFromContext(r.Context())

	var req reviewRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	showID, err := s.submissions.Approve(r.Context(), id, claims.UserID, req.AdminNotes)
	if err != nil {
		s.writeTransitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Success: true, ShowID: showID})
}

func (s *Server) handleRejectSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid submission id"})
		return
	}
	claims, _ := claimsFromContext(r.Context())

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.submissions.Reject(r.Context(), id, claims.UserID, req.Reason); err != nil {
		s.writeTransitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Success: true})
}

func (s *Server) handleGeocodeResult(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid submission id"})
		return
	}

	var req geocodeResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.submissions.RecordGeocodeResult(r.Context(), id, req.GeocodedPayload); err != nil {
		s.writeTransitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Success: true})
}

// writeTransitionError maps workflow failures onto the structured envelope
// admin clients branch on.
func (s *Server) writeTransitionError(w http.ResponseWriter, err error) {
	var stateErr *store.StateError
	switch {
	case errors.As(err, &stateErr):
		writeJSON(w, http.StatusConflict, resultResponse{Error: stateErr.Error()})
	case errors.Is(err, store.ErrSubmissionNotFound):
		writeJSON(w, http.StatusNotFound, resultResponse{Error: "submission not found"})
	case errors.Is(err, store.ErrValidation), errors.Is(err, submissions.ErrReasonRequired):
		writeJSON(w, http.StatusBadRequest, resultResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, resultResponse{Error: "operation failed"})
	}
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
