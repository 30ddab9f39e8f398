package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ReWear/internal/cache"
	"ReWear/internal/metrics"
	"ReWear/internal/model"
	"ReWear/internal/repo"

	"go.uber.org/zap"
)

// DefaultRejectNote — пометка при отклонении без комментария.
const DefaultRejectNote = "Item rejected by admin"

// QueueFilter — вкладка очереди модерации.
type QueueFilter string

const (
	QueuePending  QueueFilter = "pending"
	QueueApproved QueueFilter = "approved"
	QueueAll      QueueFilter = "all"
)

// ParseQueueFilter: пустая строка — pending.
func ParseQueueFilter(s string) (QueueFilter, error) {
	switch f := QueueFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return QueuePending, nil
	case QueuePending, QueueApproved, QueueAll:
		return f, nil
	default:
		return "", invalid("status", "must be pending, approved or all")
	}
}

// Stats — сводка для панели администратора.
type Stats struct {
	TotalItems    int64 `json:"total_items"`
	PendingItems  int64 `json:"pending_items"`
	ApprovedItems int64 `json:"approved_items"`
	RejectedItems int64 `json:"rejected_items"`
	RemovedItems  int64 `json:"removed_items"`
	TotalUsers    int64 `json:"total_users"`
}

// ModerationService — действия администратора над объявлениями.
// Каждая операция сначала проверяет роль и только потом читает вещь.
type ModerationService struct {
	users  repo.UserRepository
	items  repo.ItemRepository
	swaps  repo.SwapRepository
	cache  cache.CatalogCache
	logger *zap.SugaredLogger
}

func NewModerationService(users repo.UserRepository, items repo.ItemRepository, swaps repo.SwapRepository, c cache.CatalogCache, logger *zap.SugaredLogger) *ModerationService {
	if c == nil {
		c = cache.Nop{}
	}
	return &ModerationService{users: users, items: items, swaps: swaps, cache: c, logger: logger}
}

// Approve одобряет вещь. Повторное одобрение обновляет модератора и время.
func (s *ModerationService) Approve(ctx context.Context, actorID, itemID, notes string) (*model.Item, error) {
	return s.apply(ctx, "approve", actorID, itemID, model.ModerationApproved, func(u map[string]any) {
		u["moderation_notes"] = strings.TrimSpace(notes)
	})
}

// Reject отклоняет вещь; без комментария ставится DefaultRejectNote.
func (s *ModerationService) Reject(ctx context.Context, actorID, itemID, notes string) (*model.Item, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		notes = DefaultRejectNote
	}
	return s.apply(ctx, "reject", actorID, itemID, model.ModerationRejected, func(u map[string]any) {
		u["moderation_notes"] = notes
	})
}

// FlagInappropriate снимает вещь с публикации за нарушение правил.
func (s *ModerationService) FlagInappropriate(ctx context.Context, actorID, itemID, notes string) (*model.Item, error) {
	return s.apply(ctx, "flag", actorID, itemID, model.ModerationRemoved, func(u map[string]any) {
		u["flagged_as"] = model.FlagInappropriate
		u["moderation_notes"] = strings.TrimSpace(notes)
	})
}

func (s *ModerationService) apply(ctx context.Context, action, actorID, itemID string, to model.ModerationStatus, fill func(map[string]any)) (*model.Item, error) {
	actor, err := requireAdmin(ctx, s.users, actorID)
	if err != nil {
		return nil, err
	}
	it, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, mapRepoErr("get item", err)
	}
	if !it.Moderation.CanTransition(to) {
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"moderation":   to,
		"moderator_id": actor.ID,
		"moderated_at": now,
	}
	fill(updates)

	if _, err := s.items.UpdateWithVersion(ctx, it.ID, it.Version, updates); err != nil {
		return nil, mapRepoErr(action, err)
	}
	invalidateCatalog(ctx, s.cache, s.logger)
	if to != model.ModerationApproved {
		s.closeRequests(ctx, it.ID)
	}
	metrics.RecordModeration(action)
	s.logger.Infow("item moderated", "action", action, "item_id", it.ID, "from", it.Moderation, "to", to, "by", actor.ID)

	updated, err := s.items.GetByID(ctx, it.ID)
	if err != nil {
		return nil, mapRepoErr("get item", err)
	}
	return updated, nil
}

// Delete удаляет вещь безвозвратно; без confirmed возвращает ErrConfirmationRequired.
func (s *ModerationService) Delete(ctx context.Context, actorID, itemID string, confirmed bool) error {
	if _, err := requireAdmin(ctx, s.users, actorID); err != nil {
		return err
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.items.Delete(ctx, itemID); err != nil {
		return mapRepoErr("delete item", err)
	}
	invalidateCatalog(ctx, s.cache, s.logger)
	s.closeRequests(ctx, itemID)
	metrics.RecordModeration("delete")
	s.logger.Infow("item deleted", "item_id", itemID, "by", actorID)
	return nil
}

// closeRequests отклоняет заявки на вещь, ушедшую с витрины.
// Решение модерации уже записано, поэтому ошибка только логируется.
func (s *ModerationService) closeRequests(ctx context.Context, itemID string) {
	n, err := s.swaps.RejectPendingForItem(ctx, itemID)
	if err != nil {
		s.logger.Warnw("reject pending swaps failed", "item_id", itemID, "error", err)
		return
	}
	if n > 0 {
		s.logger.Infow("pending swaps rejected", "item_id", itemID, "count", n)
	}
}

// Queue — вещи для вкладки модерации, новые сверху.
func (s *ModerationService) Queue(ctx context.Context, actorID string, filter QueueFilter) ([]model.Item, error) {
	if _, err := requireAdmin(ctx, s.users, actorID); err != nil {
		return nil, err
	}
	var statuses []model.ModerationStatus
	switch filter {
	case QueuePending, "":
		statuses = []model.ModerationStatus{model.ModerationPending}
	case QueueApproved:
		statuses = []model.ModerationStatus{model.ModerationApproved}
	}
	items, err := s.items.ListByModeration(ctx, statuses...)
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}
	return items, nil
}

func (s *ModerationService) Stats(ctx context.Context, actorID string) (*Stats, error) {
	if _, err := requireAdmin(ctx, s.users, actorID); err != nil {
		return nil, err
	}
	counts, err := s.items.CountByModeration(ctx)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	st := &Stats{
		PendingItems:  counts[model.ModerationPending],
		ApprovedItems: counts[model.ModerationApproved],
		RejectedItems: counts[model.ModerationRejected],
		RemovedItems:  counts[model.ModerationRemoved],
		TotalUsers:    users,
	}
	for _, n := range counts {
		st.TotalItems += n
	}
	return st, nil
}
