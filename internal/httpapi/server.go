// Package httpapi wires HTTP handlers to the underlying services.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"showfinder/internal/auth"
	"showfinder/internal/cache"
	"showfinder/internal/models"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
}

// SubmissionService coordinates intake and the admin review workflow.
type SubmissionService interface {
	Submit(ctx context.Context, sourceURL string, raw json.RawMessage, organizerName, organizerEmail string) (*models.PendingSubmission, error)
	SubmitExtractError(ctx context.Context, sourceURL string, raw json.RawMessage, extractErr string) (*models.PendingSubmission, error)
	Get(ctx context.Context, id int64) (*models.PendingSubmission, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.PendingSubmission, models.Pagination, error)
	Edit(ctx context.Context, id, adminID int64, normalized json.RawMessage, adminNotes string) error
	Approve(ctx context.Context, id, adminID int64, adminNotes string) (int64, error)
	Reject(ctx context.Context, id, adminID int64, reason string) error
	RecordGeocodeResult(ctx context.Context, id int64, geocoded json.RawMessage) error
}

// ShowService serves the public read path and admin coordinate fixes.
type ShowService interface {
	Search(ctx context.Context, params models.ShowSearchParams) (*models.ShowSearchResult, error)
	Details(ctx context.Context, id int64) (*models.ShowDetails, error)
	FixCoordinates(ctx context.Context, showID, adminID int64, lat, lon float64) error
	Favorite(ctx context.Context, userID, showID int64) error
	Unfavorite(ctx context.Context, userID, showID int64) error
}

// MailingListService serves organizer contact records to admins.
type MailingListService interface {
	List(ctx context.Context, filter models.MailingListFilter) (*models.MailingListResult, error)
}

// SourceService serves the scraping-source registry to admins.
type SourceService interface {
	List(ctx context.Context) ([]models.ScrapingSource, error)
}

// CoordinateIssueService lists open coordinate issues for admins.
type CoordinateIssueService interface {
	ListCoordinateIssues(ctx context.Context) ([]models.CoordinateIssue, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users       UserService
	submissions SubmissionService
	shows       ShowService
	mailingList MailingListService
	sources     SourceService
	issues      CoordinateIssueService
	tokens      *auth.TokenManager
	searchCache *cache.ResponseCache
}

// New configures a Server with the given services. searchCache may be nil.
func New(
	users UserService,
	submissions SubmissionService,
	shows ShowService,
	mailingList MailingListService,
	sources SourceService,
	issues CoordinateIssueService,
	tokens *auth.TokenManager,
	searchCache *cache.ResponseCache,
) *Server {
	return &Server{
		users:       users,
		submissions: submissions,
		shows:       shows,
		mailingList: mailingList,
		sources:     sources,
		issues:      issues,
		tokens:      tokens,
		searchCache: searchCache,
	}
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Auth
	mux.HandleFunc("POST /api/v1/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	// Public intake + read path
	mux.HandleFunc("POST /api/v1/submissions", s.handleSubmit)
	mux.HandleFunc("GET /api/v1/shows/search", s.handleSearchShows)
	mux.HandleFunc("GET /api/v1/shows/{id}", s.handleShowDetails)
	mux.HandleFunc("POST /api/v1/shows/{id}/favorite", s.withAuth(s.handleFavoriteShow))
	mux.HandleFunc("DELETE /api/v1/shows/{id}/favorite", s.withAuth(s.handleUnfavoriteShow))

	// Scraper intake (service accounts run with the admin role)
	mux.HandleFunc("POST /api/v1/scraper/submissions", s.withAdmin(s.handleScraperSubmit))

	// Admin review workflow
	mux.HandleFunc("GET /api/v1/admin/submissions", s.withAdmin(s.handleListSubmissions))
	mux.HandleFunc("GET /api/v1/admin/submissions/{id}", s.withAdmin(s.handleGetSubmission))
	mux.HandleFunc("PUT /api/v1/admin/submissions/{id}", s.withAdmin(s.handleEditSubmission))
	mux.HandleFunc("POST /api/v1/admin/submissions/{id}/approve", s.withAdmin(s.handleApproveSubmission))
	mux.HandleFunc("POST /api/v1/admin/submissions/{id}/reject", s.withAdmin(s.handleRejectSubmission))
	mux.HandleFunc("POST /api/v1/admin/submissions/{id}/geocode", s.withAdmin(s.handleGeocodeResult))
	mux.HandleFunc("POST /api/v1/admin/shows/{id}/coordinates", s.withAdmin(s.handleFixCoordinates))
	mux.HandleFunc("GET /api/v1/admin/mailing-list", s.withAdmin(s.handleMailingList))
	mux.HandleFunc("GET /api/v1/admin/sources", s.withAdmin(s.handleListSources))
	mux.HandleFunc("GET /api/v1/admin/coordinate-issues", s.withAdmin(s.handleCoordinateIssues))

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

// readErrorResponse is the degraded shape the public read path returns
// instead of a raw 5xx: clients branch on the presence of errorCode.
type readErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode"`
}

// resultResponse is the structured envelope admin transitions return;
// callers branch on the success flag.
type resultResponse struct {
	Success bool   `json:"success"`
	ShowID  int64  `json:"showId,omitempty"`
	Error   string `json:"error,omitempty"`
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
