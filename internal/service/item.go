package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ReWear/internal/cache"
	"ReWear/internal/catalog"
	"ReWear/internal/metrics"
	"ReWear/internal/model"
	"ReWear/internal/repo"

	"go.uber.org/zap"
)

// NewItem — данные нового объявления.
type NewItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	Size        string   `json:"size"`
	Condition   string   `json:"condition"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
	Points      int64    `json:"points"`
}

// ItemService инкапсулирует бизнес-логику работы с объявлениями.
type ItemService struct {
	items  repo.ItemRepository
	users  repo.UserRepository
	cache  cache.CatalogCache
	logger *zap.SugaredLogger

	// moderationRequired=false публикует новые вещи сразу одобренными.
	moderationRequired bool
}

func NewItemService(items repo.ItemRepository, users repo.UserRepository, c cache.CatalogCache, logger *zap.SugaredLogger, moderationRequired bool) *ItemService {
	if c == nil {
		c = cache.Nop{}
	}
	return &ItemService{items: items, users: users, cache: c, logger: logger, moderationRequired: moderationRequired}
}

// Create валидирует и сохраняет объявление пользователя.
func (s *ItemService) Create(ctx context.Context, uploaderID string, in NewItem) (*model.Item, error) {
	if uploaderID == "" {
		return nil, ErrUnauthorized
	}
	in, err := normalizeNewItem(in)
	if err != nil {
		return nil, err
	}

	uploader, err := s.users.GetByID(ctx, uploaderID)
	if err != nil {
		return nil, mapRepoErr("load uploader", err)
	}

	it := &model.Item{
		Title:         in.Title,
		Description:   in.Description,
		Category:      in.Category,
		Type:          in.Type,
		Size:          in.Size,
		Condition:     in.Condition,
		Tags:          in.Tags,
		Images:        in.Images,
		Points:        in.Points,
		UploaderID:    uploader.ID,
		UploaderName:  uploader.Name,
		UploaderEmail: uploader.Email,
		Moderation:    model.ModerationPending,
		Availability:  model.AvailabilityAvailable,
	}
	if !s.moderationRequired {
		it.Moderation = model.ModerationApproved
	}

	if err := s.items.Create(ctx, it); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	if it.Moderation == model.ModerationApproved {
		invalidateCatalog(ctx, s.cache, s.logger)
	}
	s.logger.Infow("item listed", "item_id", it.ID, "user_id", uploaderID, "moderation", it.Moderation)
	return it, nil
}

func normalizeNewItem(in NewItem) (NewItem, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Type = strings.TrimSpace(in.Type)

	switch {
	case in.Title == "":
		return in, invalid("title", "is required")
	case in.Description == "":
		return in, invalid("description", "is required")
	case !catalog.Contains(catalog.Categories, in.Category):
		return in, invalid("category", "unknown category")
	case !catalog.Contains(catalog.Sizes, in.Size):
		return in, invalid("size", "unknown size")
	case !catalog.Contains(catalog.Conditions, in.Condition):
		return in, invalid("condition", "unknown condition")
	case in.Points < catalog.MinPoints || in.Points > catalog.MaxPoints:
		return in, invalid("points", fmt.Sprintf("must be between %d and %d", catalog.MinPoints, catalog.MaxPoints))
	}

	images := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	if len(images) < catalog.MinImages || len(images) > catalog.MaxImages {
		return in, invalid("images", fmt.Sprintf("between %d and %d images required", catalog.MinImages, catalog.MaxImages))
	}
	in.Images = images
	in.Tags = catalog.NormalizeTags(in.Tags)
	return in, nil
}

func (s *ItemService) Get(ctx context.Context, id string) (*model.Item, error) {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr("get item", err)
	}
	return it, nil
}

// Browse отдаёт витрину: кэш, при промахе БД, затем фильтр и сортировка.
func (s *ItemService) Browse(ctx context.Context, q catalog.Query) ([]model.Item, error) {
	items, ok, err := s.cache.GetCatalog(ctx)
	switch {
	case err != nil:
		metrics.RecordCacheLookup("error")
		s.logger.Warnw("catalog cache read failed", "error", err)
	case ok:
		metrics.RecordCacheLookup("hit")
	default:
		metrics.RecordCacheLookup("miss")
	}

	if !ok {
		// поколение читаем до БД: сброс во время чтения не даст записать старый список
		gen, genErr := s.cache.Generation(ctx)
		items, err = s.items.ListAcquirable(ctx)
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		s.refillCatalog(ctx, items, gen, genErr)
	}
	return catalog.Apply(items, q), nil
}

func (s *ItemService) refillCatalog(ctx context.Context, items []model.Item, gen int64, genErr error) {
	if genErr != nil {
		s.logger.Warnw("catalog cache generation read failed", "error", genErr)
		return
	}
	err := s.cache.SetCatalog(ctx, items, gen)
	switch {
	case errors.Is(err, cache.ErrStaleCatalog):
		s.logger.Debugw("catalog changed during refresh, cache not filled")
	case err != nil:
		s.logger.Warnw("catalog cache write failed", "error", err)
	}
}

func (s *ItemService) ListByUploader(ctx context.Context, userID string) ([]model.Item, error) {
	items, err := s.items.ListByUploader(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user items: %w", err)
	}
	return items, nil
}

// ChangesOverlap — на сколько назад от since повторяется выборка изменений. Транзакция
// может проставить updated_at раньше serverTime прошлого ответа, а зафиксироваться позже.
// Повторно полученные записи клиент применяет идемпотентно.
const ChangesOverlap = 5 * time.Second

// ChangesSince — все вещи, изменённые после since, включая ушедшие с витрины:
// клиент по ним удаляет устаревшие записи локального каталога.
func (s *ItemService) ChangesSince(ctx context.Context, since time.Time) ([]model.Item, time.Time, error) {
	serverTime := time.Now().UTC()
	if !since.IsZero() {
		since = since.Add(-ChangesOverlap)
	}
	items, err := s.items.GetItemsUpdatedSince(ctx, since)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("list changes: %w", err)
	}
	return items, serverTime, nil
}

// invalidateCatalog — сброс витрины; ошибка кэша не прерывает операцию.
func invalidateCatalog(ctx context.Context, c cache.CatalogCache, logger *zap.SugaredLogger) {
	if err := c.Invalidate(ctx); err != nil {
		logger.Warnw("catalog cache invalidate failed", "error", err)
	}
}
