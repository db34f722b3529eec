package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"checklist/internal/settings/models"
	dErrors "checklist/pkg/domain-errors"
	"checklist/pkg/platform/httputil"
	"checklist/pkg/requestcontext"
)

// Service is the settings service as seen by HTTP.
type Service interface {
	Settings() models.ChecklistSettings
	Update(ctx context.Context, p models.Partial) models.ChecklistSettings
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/settings", h.HandleGetSettings)
	r.Patch("/settings", h.HandleUpdateSettings)
}

func (h *Handler) HandleGetSettings(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Settings())
}

// HandleUpdateSettings applies a partial update. Persistence failures are
// handled by the service; the response always reflects the merged settings.
func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	partial, ok := httputil.DecodeJSON[models.Partial](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if partial.IsEmpty() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "at least one setting is required"))
		return
	}

	updated := h.service.Update(ctx, *partial)
	h.logger.InfoContext(ctx, "checklist settings updated", "request_id", requestID, "settings", updated)
	httputil.WriteJSON(w, http.StatusOK, updated)
}
