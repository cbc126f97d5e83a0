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

// UserRegistrar registers a user and issues its API key.
type UserRegistrar interface {
	Register(ctx context.Context, user *model.User) (*model.IssuedKey, error)
}

// UserHandler serves end-user self-registration.
type UserHandler struct {
	svc    UserRegistrar
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc UserRegistrar, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /user/register
// The plaintext API key is returned here and nowhere else.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	issued, err := h.svc.Register(r.Context(), req.ToUser())
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			writeError(w, http.StatusConflict, CodeEmailExists, "Email already registered")
			return
		}
		logInternal(h.logger, r, "failed to register user", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "Failed to register user")
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToRegisterUserResponse(issued))
}
