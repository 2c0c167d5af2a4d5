package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/shop-backend/internal/middleware"
	"github.com/Lixing-Zhang/shop-backend/internal/models"
	"github.com/Lixing-Zhang/shop-backend/internal/service"
)

// UserHandler handles registration, login and the caller's profile
type UserHandler struct {
	users *service.UserService
	log   *slog.Logger
}

func NewUserHandler(users *service.UserService, log *slog.Logger) *UserHandler {
	return &UserHandler{
		users: users,
		log:   log,
	}
}

// Register handles POST /api/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid user data", h.log)
		return
	}

	resp, err := h.users.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			WriteError(w, http.StatusBadRequest, "User already exists", h.log)
		case errors.Is(err, service.ErrInvalidInput):
			WriteError(w, http.StatusBadRequest, "Invalid user data", h.log)
		default:
			h.log.Error("failed to register user", "error", err)
			WriteError(w, http.StatusInternalServerError, "Error registering user", h.log)
		}
		return
	}

	h.log.Info("user registered", "user_id", resp.ID.Hex())
	WriteJSON(w, http.StatusCreated, resp, h.log)
}

// Login handles POST /api/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	resp, err := h.users.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			WriteError(w, http.StatusUnauthorized, "Invalid email or password", h.log)
			return
		}
		h.log.Error("failed to log in user", "error", err)
		WriteError(w, http.StatusInternalServerError, "Error logging in", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, resp, h.log)
}

// Profile handles GET /api/users/profile; requires Protect
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authorized", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, user, h.log)
}
