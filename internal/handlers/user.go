package handlers

import (
	"net/http"

	"ReWear/internal/config"
	"ReWear/internal/middleware"
	"ReWear/internal/service"

	"go.uber.org/zap"
)

// UserHandler — регистрация, вход, профиль и личный кабинет.
type UserHandler struct {
	UserService     *service.UserService
	ExchangeService *service.ExchangeService
	Logger          *zap.SugaredLogger
	Config          *config.Config
}

func NewUserHandler(users *service.UserService, exchange *service.ExchangeService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: users, ExchangeService: exchange, Logger: logger, Config: cfg}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register создаёт пользователя и сразу выставляет cookie сессии.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.Logger.Warnw("Register: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.Logger, "Register", err)
		return
	}
	if err := middleware.SetLoginCookie(w, user.ID, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Register: failed to set cookie", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.Logger.Warnw("Login: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.Logger, "Login", err)
		return
	}
	if err := middleware.SetLoginCookie(w, user.ID, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Login: failed to set cookie", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logout стирает cookie; без сессии тоже 204.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearLoginCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.Get(r.Context(), currentUserID(r))
	if err != nil {
		writeServiceError(w, h.Logger, "Me", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.ExchangeService.Dashboard(r.Context(), currentUserID(r))
	if err != nil {
		writeServiceError(w, h.Logger, "Dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
