package audit

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"podium/pkg/platform/httputil"
)

// Lister reads recent audit events.
type Lister interface {
	List(ctx context.Context, limit int) ([]Event, error)
}

// Handler exposes the audit trail to administrators.
type Handler struct {
	events Lister
}

func NewHandler(events Lister) *Handler {
	return &Handler{events: events}
}

// Register adds the audit routes to an already authenticated admin router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.BoundedInt(r.URL.Query().Get("limit"), "limit", 50, 1, 1000)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.events.List(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}
