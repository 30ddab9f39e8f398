package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"ReWear/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ImageHandler — загрузка и выдача фотографий вещей.
type ImageHandler struct {
	ImageService *service.ImageService
	Logger       *zap.SugaredLogger
}

func NewImageHandler(images *service.ImageService, logger *zap.SugaredLogger) *ImageHandler {
	return &ImageHandler{ImageService: images, Logger: logger}
}

type UploadResponse struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// Upload загрузка файла из multipart поля "file"
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Лимит общего тела запроса
	maxFile := h.ImageService.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxFile+1<<20)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		h.Logger.Warnw("UploadImage: invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.Logger.Warnw("UploadImage: missing file", "error", err)
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.Logger.Warnw("UploadImage: failed to read file", "error", err)
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if int64(len(data)) > maxFile {
		h.Logger.Warnw("UploadImage: payload too large", "size", len(data), "limit", maxFile)
		writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	img, err := h.ImageService.Upload(r.Context(), currentUserID(r), header.Header.Get("Content-Type"), data)
	if err != nil {
		writeServiceError(w, h.Logger, "UploadImage", err)
		return
	}
	writeJSON(w, http.StatusCreated, UploadResponse{ID: img.ID, URL: service.ImageURL(img.ID), Size: img.Size})
}

// Get отдаёт байты изображения; изображения неизменяемы.
func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	img, err := h.ImageService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Logger, "GetImage", err)
		return
	}
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ImageService.Delete(r.Context(), currentUserID(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.Logger, "DeleteImage", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
