package handlers

import (
	"context"
	"net/http"

	"ReWear/internal/model"
	"ReWear/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SwapHandler — ответы на заявки обмена.
type SwapHandler struct {
	ExchangeService *service.ExchangeService
	Logger          *zap.SugaredLogger
}

func NewSwapHandler(exchange *service.ExchangeService, logger *zap.SugaredLogger) *SwapHandler {
	return &SwapHandler{ExchangeService: exchange, Logger: logger}
}

type swapAction func(ctx context.Context, actorID, swapID string) (*model.SwapRecord, error)

func (h *SwapHandler) respond(op string, action swapAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := action(r.Context(), currentUserID(r), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, h.Logger, op, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func (h *SwapHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.respond("AcceptSwap", h.ExchangeService.AcceptSwap)(w, r)
}

func (h *SwapHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.respond("DeclineSwap", h.ExchangeService.DeclineSwap)(w, r)
}

func (h *SwapHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.respond("CancelSwap", h.ExchangeService.CancelSwap)(w, r)
}

func (h *SwapHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.respond("CompleteSwap", h.ExchangeService.CompleteSwap)(w, r)
}
