package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"ReWear/internal/model"
	"ReWear/internal/repo"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageURLPrefix — путь, по которому изображение отдаётся клиентам.
const ImageURLPrefix = "/api/images/"

// ImageURL строит адрес изображения по id.
func ImageURL(id string) string { return ImageURLPrefix + id }

// ImageService — хранилище изображений вещей в БД.
type ImageService struct {
	images   repo.ImageRepository
	users    repo.UserRepository
	maxBytes int64
	logger   *zap.SugaredLogger
}

func NewImageService(images repo.ImageRepository, users repo.UserRepository, maxBytes int64, logger *zap.SugaredLogger) *ImageService {
	return &ImageService{images: images, users: users, maxBytes: maxBytes, logger: logger}
}

// MaxBytes — предельный размер одного файла.
func (s *ImageService) MaxBytes() int64 { return s.maxBytes }

// Upload сохраняет изображение и возвращает его id.
// Пустой contentType определяется по содержимому.
func (s *ImageService) Upload(ctx context.Context, ownerID, contentType string, data []byte) (*model.Image, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}
	if len(data) == 0 {
		return nil, invalid("file", "is empty")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, invalid("file", fmt.Sprintf("exceeds %d bytes", s.maxBytes))
	}
	if ct := strings.TrimSpace(contentType); ct == "" || ct == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, invalid("file", "must be an image")
	}

	img := &model.Image{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		ContentType: contentType,
		Data:        data,
		Size:        int64(len(data)),
	}
	if _, err := s.images.CreateIfAbsent(ctx, img); err != nil {
		s.logger.Errorw("image save failed", "user_id", ownerID, "error", err)
		return nil, fmt.Errorf("save image: %w", err)
	}
	s.logger.Infow("image uploaded", "image_id", img.ID, "user_id", ownerID, "size", img.Size)
	return img, nil
}

func (s *ImageService) Get(ctx context.Context, id string) (*model.Image, error) {
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr("get image", err)
	}
	return img, nil
}

// Delete удаляет изображение; разрешено владельцу и администратору.
func (s *ImageService) Delete(ctx context.Context, actorID, id string) error {
	if actorID == "" {
		return ErrUnauthorized
	}
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return mapRepoErr("get image", err)
	}
	if img.OwnerID != actorID {
		if _, err := requireAdmin(ctx, s.users, actorID); err != nil {
			return err
		}
	}
	if err := s.images.Delete(ctx, id); err != nil {
		return mapRepoErr("delete image", err)
	}
	return nil
}
