package handlers

import (
	"context"
	"net/http"
	"strconv"

	"ReWear/internal/model"
	"ReWear/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminHandler — модерация и управление пользователями.
// Права проверяют сервисы: здесь только разбор запроса.
type AdminHandler struct {
	ModerationService *service.ModerationService
	UserService       *service.UserService
	Logger            *zap.SugaredLogger
}

func NewAdminHandler(moderation *service.ModerationService, users *service.UserService, logger *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{ModerationService: moderation, UserService: users, Logger: logger}
}

type ModerationRequest struct {
	Notes string `json:"notes"`
}

type AdjustPointsRequest struct {
	Delta int64  `json:"delta"`
	Note  string `json:"note"`
}

type AdjustPointsResponse struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

func (h *AdminHandler) Queue(w http.ResponseWriter, r *http.Request) {
	filter, err := service.ParseQueueFilter(r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, h.Logger, "Queue", err)
		return
	}
	items, err := h.ModerationService.Queue(r.Context(), currentUserID(r), filter)
	if err != nil {
		writeServiceError(w, h.Logger, "Queue", err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ModerationService.Stats(r.Context(), currentUserID(r))
	if err != nil {
		writeServiceError(w, h.Logger, "Stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type moderationAction func(ctx context.Context, actorID, itemID, notes string) (*model.Item, error)

func (h *AdminHandler) moderate(op string, action moderationAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ModerationRequest
		if err := decodeJSON(r, &req, true); err != nil {
			h.Logger.Warnw(op+": invalid request body", "error", err)
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		it, err := action(r.Context(), currentUserID(r), chi.URLParam(r, "id"), req.Notes)
		if err != nil {
			writeServiceError(w, h.Logger, op, err)
			return
		}
		writeJSON(w, http.StatusOK, it)
	}
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.moderate("Approve", h.ModerationService.Approve)(w, r)
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.moderate("Reject", h.ModerationService.Reject)(w, r)
}

func (h *AdminHandler) Flag(w http.ResponseWriter, r *http.Request) {
	h.moderate("Flag", h.ModerationService.FlagInappropriate)(w, r)
}

// Delete — безвозвратное удаление, требует ?confirm=true.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err := h.ModerationService.Delete(r.Context(), currentUserID(r), chi.URLParam(r, "id"), confirmed); err != nil {
		writeServiceError(w, h.Logger, "DeleteItem", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Promote(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.Promote(r.Context(), currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Logger, "Promote", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *AdminHandler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	var req AdjustPointsRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.Logger.Warnw("AdjustPoints: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	userID := chi.URLParam(r, "id")
	balance, err := h.UserService.AdjustPoints(r.Context(), currentUserID(r), userID, req.Delta, req.Note)
	if err != nil {
		writeServiceError(w, h.Logger, "AdjustPoints", err)
		return
	}
	writeJSON(w, http.StatusOK, AdjustPointsResponse{UserID: userID, Balance: balance})
}
