package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campus/internal/auth/models"
	"campus/internal/auth/service"
	"campus/internal/auth/session"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/httputil"
	"campus/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for authentication operations.
type Service interface {
	Login(ctx context.Context, req *models.LoginRequest, sink service.SessionSink) (*models.LoginResult, error)
	ChangePassword(ctx context.Context, claims *models.SessionClaims, req *models.ChangePasswordRequest, sink service.SessionSink) (*models.ChangePasswordResult, error)
	Logout(ctx context.Context, claims *models.SessionClaims, sink service.SessionSink) error
	Register(ctx context.Context, req *models.RegisterRequest) error
}

// Handler serves the JSON auth API under /api/auth.
type Handler struct {
	auth      Service
	transport *session.Transport
	verifier  session.Verifier
	logger    *slog.Logger
}

func New(auth Service, transport *session.Transport, verifier session.Verifier, logger *slog.Logger) *Handler {
	return &Handler{
		auth:      auth,
		transport: transport,
		verifier:  verifier,
		logger:    logger,
	}
}

// Register registers the auth routes with the chi router. Change-password is
// the only route that needs a session; the others must work without one.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/auth/login", h.HandleLogin)
	r.Post("/api/auth/logout", h.HandleLogout)
	r.Post("/api/auth/register", h.HandleRegister)
	r.With(session.RequireSession(h.transport, h.verifier, h.logger)).
		Post("/api/auth/change-password", h.HandleChangePassword)
}

// HandleLogin implements POST /api/auth/login.
//
// Input: { "email": "...", "password": "..." }
// Output: { "message": "...", "token"?: "...", "user": {...} }
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[models.LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	binding := h.transport.Bind(w)
	res, err := h.auth.Login(ctx, req, binding)
	if err != nil {
		h.logFailure(ctx, "login failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "login successful",
		"user_id", res.User.ID,
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusOK, models.LoginResponse{
		Message: models.MsgLoginSuccess,
		Token:   binding.BodyToken(),
		User:    res.User,
	})
}

// HandleChangePassword implements POST /api/auth/change-password. The
// session claims come from RequireSession.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	claims := session.ClaimsFromContext(ctx)

	req, ok := httputil.DecodeJSON[models.ChangePasswordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	binding := h.transport.Bind(w)
	if _, err := h.auth.ChangePassword(ctx, claims, req, binding); err != nil {
		h.logFailure(ctx, "change password failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "password changed",
		"user_id", claims.UserID.String(),
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusOK, models.MessageResponse{
		Message: models.MsgPasswordChanged,
		Token:   binding.BodyToken(),
	})
}

// HandleLogout implements POST /api/auth/logout. A valid session is only
// used to attribute the audit entry.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	claims, _ := session.Authenticate(ctx, h.transport, h.verifier, r)

	if err := h.auth.Logout(ctx, claims, h.transport.Bind(w)); err != nil {
		h.logger.ErrorContext(ctx, "logout failed",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{
			Error:   string(dErrors.CodeInternal),
			Message: models.MsgLogoutFailed,
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: models.MsgLogoutSuccess})
}

// HandleRegister implements POST /api/auth/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[models.RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.auth.Register(ctx, req); err != nil {
		h.logFailure(ctx, "registration failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, models.MessageResponse{Message: models.MsgRegistrationSubmitted})
}

// logFailure logs client errors at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, requestID string) {
	if dErrors.HasCode(err, dErrors.CodeInternal) || !isDomainError(err) {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestID)
		return
	}
	h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestID)
}

func isDomainError(err error) bool {
	var de *dErrors.Error
	return errors.As(err, &de)
}
