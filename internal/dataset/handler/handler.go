package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"podium/internal/athlete/models"
	"podium/internal/platform/middleware"
	dErrors "podium/pkg/domain-errors"
	"podium/pkg/platform/httputil"
	"podium/pkg/requestcontext"
)

// Service is the dataset lifecycle as seen by HTTP clients.
type Service interface {
	Summary(ctx context.Context) (models.SnapshotSummary, error)
	Profile(ctx context.Context) (*models.Profile, error)
	Cleaning(ctx context.Context) (*models.CleaningReport, error)
	Issues(ctx context.Context, limit int) ([]models.Issue, int, error)
	Reload(ctx context.Context) (*models.Snapshot, error)
}

const (
	defaultIssueLimit = 100
	maxIssueLimit     = 10000
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the read-only dataset routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/dataset", func(r chi.Router) {
		r.Get("/", h.handleSummary)
		r.Get("/profile", h.handleProfile)
		r.Get("/cleaning", h.handleCleaning)
		r.Get("/issues", h.handleIssues)
	})
}

// RegisterAdmin mounts the reload route on an already authenticated router.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/dataset/reload", h.handleReload)
}

// IssuesResponse pages decode issues.
type IssuesResponse struct {
	Total  int            `json:"total"`
	Issues []models.Issue `json:"issues"`
}

// ReloadResponse describes the snapshot a reload produced.
type ReloadResponse struct {
	Snapshot models.SnapshotSummary `json:"snapshot"`
	Cleaning *models.CleaningReport `json:"cleaning"`
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	h.respond(w, r, summary, err)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Profile(r.Context())
	h.respond(w, r, profile, err)
}

func (h *Handler) handleCleaning(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Cleaning(r.Context())
	h.respond(w, r, report, err)
}

func (h *Handler) handleIssues(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.BoundedInt(r.URL.Query().Get("limit"), "limit", defaultIssueLimit, 1, maxIssueLimit)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	issues, total, err := h.service.Issues(r.Context(), limit)
	h.respond(w, r, IssuesResponse{Total: total, Issues: issues}, err)
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "dataset reload requested",
		"request_id", middleware.GetRequestID(ctx),
		"actor", requestcontext.Actor(ctx),
	)
	snap, err := h.service.Reload(ctx)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	h.respond(w, r, ReloadResponse{Snapshot: snap.Summary(), Cleaning: snap.Cleaning}, nil)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err == nil {
		httputil.WriteJSON(w, http.StatusOK, v)
		return
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		ctx := r.Context()
		h.logger.ErrorContext(ctx, "dataset request failed",
			"request_id", middleware.GetRequestID(ctx),
			"path", r.URL.Path,
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
