// Package handler relays checklist documents between the app and the
// tenant's backend. Payloads are passed through without interpretation.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"checklist/internal/session/models"
	"checklist/internal/upstream"
	dErrors "checklist/pkg/domain-errors"
	"checklist/pkg/platform/httputil"
	"checklist/pkg/requestcontext"
)

type Backend interface {
	ChecklistModels(ctx context.Context, tenant, token string) (upstream.Document, error)
	ChecklistModelDetails(ctx context.Context, tenant, token string, id int64) (upstream.Document, error)
	Checklists(ctx context.Context, tenant, token string) (upstream.Document, error)
	DataSync(ctx context.Context, tenant, token, userID string, payload upstream.Document) (upstream.Document, error)
}

type Handler struct {
	backend Backend
	logger  *slog.Logger
}

func New(backend Backend, logger *slog.Logger) *Handler {
	return &Handler{backend: backend, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/checklist-models", h.HandleListModels)
	r.Get("/checklist-models/{id}", h.HandleGetModel)
	r.Get("/checklists", h.HandleListChecklists)
	r.Post("/sync", h.HandleSync)
}

func (h *Handler) HandleListModels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := models.FromContext(ctx)

	doc, err := h.backend.ChecklistModels(ctx, sess.ClientID(), sess.UpstreamToken)
	h.relay(ctx, w, "list checklist models", doc, err)
}

func (h *Handler) HandleGetModel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := models.FromContext(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid checklist model id"))
		return
	}

	doc, err := h.backend.ChecklistModelDetails(ctx, sess.ClientID(), sess.UpstreamToken, id)
	h.relay(ctx, w, "get checklist model", doc, err)
}

func (h *Handler) HandleListChecklists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := models.FromContext(ctx)

	doc, err := h.backend.Checklists(ctx, sess.ClientID(), sess.UpstreamToken)
	h.relay(ctx, w, "list checklists", doc, err)
}

// HandleSync forwards the app's pending data for the signed-in driver.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	sess := models.FromContext(ctx)

	payload, ok := httputil.DecodeJSON[json.RawMessage](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	doc, err := h.backend.DataSync(ctx, sess.ClientID(), sess.UpstreamToken, sess.UserID, upstream.Document(*payload))
	h.relay(ctx, w, "data sync", doc, err)
}

func (h *Handler) relay(ctx context.Context, w http.ResponseWriter, action string, doc upstream.Document, err error) {
	if err != nil {
		h.logger.ErrorContext(ctx, action+" failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
			"client_id", models.FromContext(ctx).ClientID(),
		)
		httputil.WriteError(w, err)
		return
	}
	if len(doc) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}
