package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/keydesk/keydesk/internal/handler/dto"
	"github.com/keydesk/keydesk/internal/model"
	"github.com/keydesk/keydesk/internal/service"
)

// invalidCredentialsMessage is identical for unknown email and wrong password.
const invalidCredentialsMessage = "Invalid email or password"

// AdminService defines the admin operations the handler needs.
type AdminService interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (string, error)
	Dashboard(ctx context.Context) (*model.Dashboard, error)
}

// AdminHandler serves admin registration, login and the dashboard.
type AdminHandler struct {
	svc    AdminService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /admin/register
func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminCredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.svc.Register(r.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			writeError(w, http.StatusConflict, CodeEmailExists, "Email already registered")
			return
		}
		logInternal(h.logger, r, "failed to register admin", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "Failed to register admin")
		return
	}

	writeJSON(w, http.StatusCreated, dto.MessageResponse{Message: "Admin registered successfully"})
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminCredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, CodeInvalidCredentials, invalidCredentialsMessage)
			return
		}
		logInternal(h.logger, r, "failed to log in admin", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "Failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{Token: token})
}

// Dashboard handles GET /admin/dashboard
// Lists every user and key, newest first. No pagination.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.svc.Dashboard(r.Context())
	if err != nil {
		logInternal(h.logger, r, "failed to load dashboard", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "Failed to load dashboard")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToDashboardResponse(dashboard))
}
