package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	sessionModels "checklist/internal/session/models"
	"checklist/internal/vehicle/models"
	"checklist/pkg/platform/httputil"
	"checklist/pkg/requestcontext"
)

type Service interface {
	List(ctx context.Context, scope models.Scope) (models.Listing, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/vehicles", h.HandleListVehicles)
}

func (h *Handler) HandleListVehicles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	sess := sessionModels.FromContext(ctx)

	listing, err := h.service.List(ctx, models.Scope{
		ClientID: sess.ClientID(),
		UserID:   sess.UserID,
		Token:    sess.UpstreamToken,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "list vehicles failed", "error", err, "request_id", requestID, "client_id", sess.ClientID())
		httputil.WriteError(w, err)
		return
	}

	if listing.Vehicles == nil {
		listing.Vehicles = []models.Vehicle{}
	}
	httputil.WriteJSON(w, http.StatusOK, &listing)
}
