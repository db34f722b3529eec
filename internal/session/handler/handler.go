package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"checklist/internal/session/models"
	settingsModels "checklist/internal/settings/models"
	"checklist/internal/transition"
	"checklist/internal/upstream"
	"checklist/pkg/platform/httputil"
	"checklist/pkg/requestcontext"
)

// Backend is the tenant-scoped auth API.
type Backend interface {
	Login(ctx context.Context, tenant string, req upstream.LoginRequest) (*upstream.TokenResponse, error)
	Register(ctx context.Context, tenant string, req upstream.RegisterRequest) error
	RequestPasswordReset(ctx context.Context, tenant string, req upstream.PasswordResetRequest) error
	ResetPassword(ctx context.Context, tenant string, req upstream.ResetPasswordRequest) error
}

// Sessions issues and drops session cookies.
type Sessions interface {
	Establish(ctx context.Context, w http.ResponseWriter, clientID string, tokens *upstream.TokenResponse) (models.Session, error)
	Clear(w http.ResponseWriter)
}

type SettingsReader interface {
	Settings() settingsModels.ChecklistSettings
}

type Handler struct {
	backend  Backend
	sessions Sessions
	settings SettingsReader
	online   func() bool
	logger   *slog.Logger
}

func New(backend Backend, sessions Sessions, settings SettingsReader, online func() bool, logger *slog.Logger) *Handler {
	if online == nil {
		online = func() bool { return true }
	}
	return &Handler{
		backend:  backend,
		sessions: sessions,
		settings: settings,
		online:   online,
		logger:   logger,
	}
}

// Register wires the public auth endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/password-reset", h.HandleRequestPasswordReset)
	r.Post("/auth/password-reset/confirm", h.HandleResetPassword)
	r.Post("/auth/logout", h.HandleLogout)
}

// RegisterViews wires the screens. They expect to run behind the guard and
// the transition middleware.
func (h *Handler) RegisterViews(r chi.Router) {
	r.Get("/login", h.HandleLoginView)
	r.Get("/session", h.HandleSession)
	r.Get("/dashboard", h.HandleDashboard)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tokens, err := h.backend.Login(ctx, req.ClientID, req.upstream())
	if err != nil {
		h.logger.WarnContext(ctx, "login failed", "error", err, "request_id", requestID, "client_id", req.ClientID)
		httputil.WriteError(w, err)
		return
	}

	sess, err := h.sessions.Establish(ctx, w, req.ClientID, tokens)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to establish session", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "driver logged in", "request_id", requestID, "client_id", req.ClientID, "user_id", sess.UserID)
	httputil.WriteJSON(w, http.StatusOK, &LoginResponse{
		Authenticated: true,
		ClientID:      req.ClientID,
		UserID:        sess.UserID,
		Name:          tokens.Name,
		ExpiresAt:     sess.ExpiresAt,
	})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.backend.Register(ctx, req.ClientID, req.upstream()); err != nil {
		h.logger.WarnContext(ctx, "register failed", "error", err, "request_id", requestID, "client_id", req.ClientID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, &AcceptedResponse{Status: "registered"})
}

func (h *Handler) HandleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PasswordResetRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.backend.RequestPasswordReset(ctx, req.ClientID, upstream.PasswordResetRequest{Email: req.Email}); err != nil {
		h.logger.WarnContext(ctx, "password reset request failed", "error", err, "request_id", requestID, "client_id", req.ClientID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, &AcceptedResponse{Status: "reset_requested"})
}

func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ResetPasswordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	err := h.backend.ResetPassword(ctx, req.ClientID, upstream.ResetPasswordRequest{
		Email:    req.Email,
		Code:     req.Code,
		Password: req.Password,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "password reset failed", "error", err, "request_id", requestID, "client_id", req.ClientID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &AcceptedResponse{Status: "password_reset"})
}

// HandleLogout drops the session cookies. The tenant cookie stays so the next
// login into another tenant is detected as a transition.
func (h *Handler) HandleLogout(w http.ResponseWriter, _ *http.Request) {
	h.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleLoginView(w http.ResponseWriter, r *http.Request) {
	sess := models.FromContext(r.Context())
	httputil.WriteJSON(w, http.StatusOK, &LoginViewResponse{
		Screen:        "login",
		Authenticated: sess.IsAuthenticated,
		ClientID:      sess.CurrentClientID,
	})
}

func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := toSessionResponse(models.FromContext(ctx), transition.RecordFromContext(ctx), !h.online())
	httputil.WriteJSON(w, http.StatusOK, &resp)
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httputil.WriteJSON(w, http.StatusOK, &DashboardResponse{
		Screen:          "dashboard",
		SessionResponse: toSessionResponse(models.FromContext(ctx), transition.RecordFromContext(ctx), !h.online()),
		Settings:        h.settings.Settings(),
	})
}
