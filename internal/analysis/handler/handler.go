package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"podium/internal/analysis/models"
	athlete "podium/internal/athlete/models"
	"podium/internal/platform/middleware"
	dErrors "podium/pkg/domain-errors"
	"podium/pkg/platform/httputil"
)

// Service defines the analysis operations served over HTTP.
type Service interface {
	FilterOptions(ctx context.Context) (models.FilterOptions, error)
	Overview(ctx context.Context, f models.Filter) (models.Overview, error)
	Participation(ctx context.Context, f models.Filter) ([]models.GenderCount, error)
	Disciplines(ctx context.Context, f models.Filter) ([]models.DisciplineCount, error)
	MedalTable(ctx context.Context, f models.Filter, by models.MedalSort, top int) ([]models.MedalRow, error)
	MedalMap(ctx context.Context, f models.Filter) ([]models.MedalMapPoint, error)
	Distribution(ctx context.Context, f models.Filter, metric athlete.Metric, by models.GroupBy) (models.Distribution, error)
	HeightWeight(ctx context.Context, f models.Filter, colorBy models.GroupBy, limit int) (models.HeightWeight, error)
	DisciplineTree(ctx context.Context, f models.Filter) ([]models.TreeNode, error)
	AgeByDiscipline(ctx context.Context, f models.Filter, top int) ([]models.DisciplineAge, error)
	AgeByGroup(ctx context.Context, f models.Filter) ([]models.GroupAge, error)
	MedalTrend(ctx context.Context, f models.Filter, noc string) (models.MedalTrend, error)
}

// Handler serves the read-only analysis endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the routes under /analysis.
func (h *Handler) Register(r chi.Router) {
	r.Route("/analysis", func(r chi.Router) {
		r.Get("/filters", h.handleFilters)
		r.Get("/overview", h.handleOverview)
		r.Get("/participation", h.handleParticipation)
		r.Get("/disciplines", h.handleDisciplines)
		r.Get("/medals", h.handleMedals)
		r.Get("/medal-map", h.handleMedalMap)
		r.Get("/distribution", h.handleDistribution)
		r.Get("/height-weight", h.handleHeightWeight)
		r.Get("/discipline-tree", h.handleDisciplineTree)
		r.Get("/age-by-discipline", h.handleAgeByDiscipline)
		r.Get("/age-by-group", h.handleAgeByGroup)
		r.Get("/medal-trend/{noc}", h.handleMedalTrend)
	})
}

func (h *Handler) handleFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	h.respond(w, r, opts, err)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	withFilter(h, w, r, h.service.Overview)
}

func (h *Handler) handleParticipation(w http.ResponseWriter, r *http.Request) {
	withFilter(h, w, r, h.service.Participation)
}

func (h *Handler) handleDisciplines(w http.ResponseWriter, r *http.Request) {
	withFilter(h, w, r, h.service.Disciplines)
}

func (h *Handler) handleMedalMap(w http.ResponseWriter, r *http.Request) {
	withFilter(h, w, r, h.service.MedalMap)
}

func (h *Handler) handleDisciplineTree(w http.ResponseWriter, r *http.Request) {
	withFilter(h, w, r, h.service.DisciplineTree)
}

func (h *Handler) handleAgeByGroup(w http.ResponseWriter, r *http.Request) {
	withFilter(h, w, r, h.service.AgeByGroup)
}

func (h *Handler) handleMedals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := models.ParseFilter(q)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	by, err := models.ParseMedalSort(q.Get("sort_by"))
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	top, err := httputil.BoundedInt(q.Get("top"), "top", models.DefaultMedalTop, models.MinMedalTop, models.MaxMedalTop)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	rows, err := h.service.MedalTable(r.Context(), f, by, top)
	h.respond(w, r, rows, err)
}

func (h *Handler) handleDistribution(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := models.ParseFilter(q)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	raw := q.Get("metric")
	if raw == "" {
		raw = string(athlete.MetricAge)
	}
	metric, err := athlete.ParseMetric(raw)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	by, err := models.ParseGroupBy(q.Get("group_by"))
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	d, err := h.service.Distribution(r.Context(), f, metric, by)
	h.respond(w, r, d, err)
}

func (h *Handler) handleHeightWeight(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := models.ParseFilter(q)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	colorBy, err := models.ParseGroupBy(q.Get("color_by"))
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	limit, err := httputil.BoundedInt(q.Get("limit"), "limit", models.DefaultPointLimit, 1, models.MaxPointLimit)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	hw, err := h.service.HeightWeight(r.Context(), f, colorBy, limit)
	h.respond(w, r, hw, err)
}

func (h *Handler) handleAgeByDiscipline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := models.ParseFilter(q)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	top, err := httputil.BoundedInt(q.Get("top"), "top", models.DefaultDisciplineTop, 1, 100)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	ages, err := h.service.AgeByDiscipline(r.Context(), f, top)
	h.respond(w, r, ages, err)
}

func (h *Handler) handleMedalTrend(w http.ResponseWriter, r *http.Request) {
	noc := chi.URLParam(r, "noc")
	if len(noc) != 3 {
		h.respond(w, r, nil, dErrors.New(dErrors.CodeValidation, "noc must be a three-letter code"))
		return
	}
	f, err := models.ParseFilter(r.URL.Query())
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	trend, err := h.service.MedalTrend(r.Context(), f, noc)
	h.respond(w, r, trend, err)
}

func withFilter[T any](h *Handler, w http.ResponseWriter, r *http.Request, op func(context.Context, models.Filter) (T, error)) {
	f, err := models.ParseFilter(r.URL.Query())
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	v, err := op(r.Context(), f)
	h.respond(w, r, v, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err == nil {
		httputil.WriteJSON(w, http.StatusOK, v)
		return
	}
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "analysis request failed",
			"request_id", middleware.GetRequestID(ctx),
			"path", r.URL.Path,
			"error", err,
		)
	} else {
		h.logger.DebugContext(ctx, "analysis request rejected",
			"request_id", middleware.GetRequestID(ctx),
			"query", r.URL.RawQuery,
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
