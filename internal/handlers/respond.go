package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ReWear/internal/middleware"
	"ReWear/internal/service"

	"go.uber.org/zap"
)

// ErrorResponse — тело ответа с ошибкой.
type ErrorResponse struct {
	Error     string `json:"error"`
	Shortfall int64  `json:"shortfall,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor переводит ошибку сервиса в HTTP код.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConfirmationRequired):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrItemChanged),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, service.ErrItemUnavailable),
		errors.Is(err, service.ErrSelfAction),
		errors.Is(err, service.ErrInsufficientPoints):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError — единая точка маппинга ошибок сервисов.
// Внутренние ошибки клиенту не раскрываются.
func writeServiceError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}

	var short *service.InsufficientPointsError
	if errors.As(err, &short) {
		resp.Shortfall = short.Shortfall
	}

	if status == http.StatusInternalServerError {
		logger.Errorw(op+": service error", "error", err)
		resp.Error = "internal error"
	} else {
		logger.Debugw(op+": rejected", "status", status, "error", err)
	}
	writeJSON(w, status, resp)
}

// decodeJSON разбирает тело; пустое тело допустимо, если allowEmpty.
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	return err
}

func currentUserID(r *http.Request) string {
	id, _ := middleware.GetUserIDFromContext(r.Context())
	return id
}
