package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"ReWear/internal/cache"
	"ReWear/internal/metrics"
	"ReWear/internal/model"
	"ReWear/internal/notify"
	"ReWear/internal/repo"

	"go.uber.org/zap"
)

const maxSwapMessageLen = 1000

// RedeemResult — итог выкупа: запись, обновлённая вещь и остаток очков.
type RedeemResult struct {
	Swap    *model.SwapRecord `json:"swap"`
	Item    *model.Item       `json:"item"`
	Balance int64             `json:"balance"`
}

// ExchangeService — выкуп за очки и обмен вещами.
type ExchangeService struct {
	users    repo.UserRepository
	items    repo.ItemRepository
	swaps    repo.SwapRepository
	ledger   repo.LedgerRepository
	exchange repo.ExchangeRepository
	cache    cache.CatalogCache
	notifier notify.Notifier
	logger   *zap.SugaredLogger

	dispatch func(func())
}

func NewExchangeService(r *repo.Repositories, c cache.CatalogCache, n notify.Notifier, logger *zap.SugaredLogger) *ExchangeService {
	if c == nil {
		c = cache.Nop{}
	}
	return &ExchangeService{
		users:    r.Users,
		items:    r.Items,
		swaps:    r.Swaps,
		ledger:   r.Ledger,
		exchange: r.Exchange,
		cache:    c,
		notifier: n,
		logger:   logger,
		dispatch: func(f func()) { go f() },
	}
}

// Redeem обменивает очки пользователя на вещь.
// Проверки идут в порядке: своя вещь, недоступна, не хватает очков; до записи.
// Сама запись — одна транзакция с условными обновлениями вещи и баланса.
func (s *ExchangeService) Redeem(ctx context.Context, userID, itemID string) (res *RedeemResult, err error) {
	defer func() { metrics.RecordExchange("redeem", resultLabel(err)) }()

	user, err := s.loadActor(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, mapRepoErr("get item", err)
	}

	if item.UploaderID == user.ID {
		return nil, ErrSelfAction
	}
	if !item.Acquirable() {
		return nil, ErrItemUnavailable
	}
	if user.Points < item.Points {
		return nil, shortfall(item.Points, user.Points)
	}

	rec, balance, err := s.exchange.Redeem(ctx, repo.RedeemParams{
		UserID:    user.ID,
		UserName:  user.Name,
		ItemID:    item.ID,
		ItemTitle: item.Title,
		OwnerID:   item.UploaderID,
		Points:    item.Points,
	})
	if err != nil {
		if errors.Is(err, repo.ErrBalanceTooLow) {
			// баланс успел измениться между проверкой и списанием
			if fresh, gerr := s.users.GetByID(ctx, user.ID); gerr == nil {
				return nil, shortfall(item.Points, fresh.Points)
			}
			return nil, ErrInsufficientPoints
		}
		return nil, mapRepoErr("redeem", err)
	}

	invalidateCatalog(ctx, s.cache, s.logger)
	metrics.RecordPointsSpent(item.Points)
	s.logger.Infow("item redeemed", "item_id", item.ID, "user_id", user.ID, "points", item.Points, "balance", balance)

	updated, err := s.items.GetByID(ctx, item.ID)
	if err != nil {
		updated = item
	}
	return &RedeemResult{Swap: rec, Item: updated, Balance: balance}, nil
}

// RequestSwap регистрирует заявку на обмен; статус вещи не меняется.
func (s *ExchangeService) RequestSwap(ctx context.Context, requesterID, itemID, message, offeredItemID string) (rec *model.SwapRecord, err error) {
	defer func() { metrics.RecordExchange("swap_request", resultLabel(err)) }()

	requester, err := s.loadActor(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) > maxSwapMessageLen {
		return nil, invalid("message", fmt.Sprintf("must be at most %d characters", maxSwapMessageLen))
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, mapRepoErr("get item", err)
	}
	if item.UploaderID == requester.ID {
		return nil, ErrSelfAction
	}
	if !item.Acquirable() {
		return nil, ErrItemUnavailable
	}

	var offered *string
	if offeredItemID = strings.TrimSpace(offeredItemID); offeredItemID != "" {
		if offeredItemID == item.ID {
			return nil, invalid("offered_item_id", "cannot offer the requested item")
		}
		off, err := s.items.GetByID(ctx, offeredItemID)
		if err != nil {
			if errors.Is(mapRepoErr("", err), ErrNotFound) {
				return nil, invalid("offered_item_id", "unknown item")
			}
			return nil, mapRepoErr("get offered item", err)
		}
		if off.UploaderID != requester.ID {
			return nil, invalid("offered_item_id", "must be your own listing")
		}
		if !off.Acquirable() {
			return nil, ErrItemUnavailable
		}
		offered = &off.ID
	}

	pending, err := s.swaps.HasPending(ctx, item.ID, requester.ID)
	if err != nil {
		return nil, fmt.Errorf("check pending: %w", err)
	}
	if pending {
		return nil, ErrDuplicateRequest
	}

	rec = &model.SwapRecord{
		ItemID:        item.ID,
		ItemTitle:     item.Title,
		OwnerID:       item.UploaderID,
		RequesterID:   requester.ID,
		RequesterName: requester.Name,
		OfferedItemID: offered,
		Message:       message,
		Type:          model.SwapTypeRequest,
		Status:        model.SwapPending,
	}
	if err := s.swaps.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create swap: %w", err)
	}
	s.logger.Infow("swap requested", "swap_id", rec.ID, "item_id", item.ID, "user_id", requester.ID)

	s.notifyOwner(ctx, requester, item, message)
	return rec, nil
}

func (s *ExchangeService) notifyOwner(ctx context.Context, requester *model.User, item *model.Item, message string) {
	if s.notifier == nil || item.UploaderEmail == "" {
		return
	}
	m := notify.SwapRequestMail{
		RequesterName:  requester.Name,
		RequesterEmail: requester.Email,
		ItemTitle:      item.Title,
		Message:        message,
		OwnerName:      item.UploaderName,
		OwnerEmail:     item.UploaderEmail,
	}
	bg := context.WithoutCancel(ctx)
	s.dispatch(func() {
		sendCtx, cancel := context.WithTimeout(bg, 15*time.Second)
		defer cancel()
		if !s.notifier.SendSwapRequest(sendCtx, m) {
			s.logger.Warnw("swap request email not sent", "item_id", item.ID)
		}
	})
}

// AcceptSwap — владелец принимает заявку: обе вещи помечаются обменянными,
// остальные ожидающие заявки на них отклоняются.
func (s *ExchangeService) AcceptSwap(ctx context.Context, ownerID, swapID string) (rec *model.SwapRecord, err error) {
	defer func() { metrics.RecordExchange("swap_accept", resultLabel(err)) }()

	rec, err = s.loadSwap(ctx, ownerID, swapID, model.SwapAccepted, isOwner)
	if err != nil {
		return nil, err
	}
	itemIDs := []string{rec.ItemID}
	if rec.OfferedItemID != nil {
		itemIDs = append(itemIDs, *rec.OfferedItemID)
	}
	if err := s.exchange.AcceptSwap(ctx, rec.ID, itemIDs); err != nil {
		return nil, mapRepoErr("accept swap", err)
	}
	invalidateCatalog(ctx, s.cache, s.logger)
	s.logger.Infow("swap accepted", "swap_id", rec.ID, "item_id", rec.ItemID, "user_id", ownerID)
	return s.reloadSwap(ctx, rec)
}

// DeclineSwap — владелец отклоняет заявку.
func (s *ExchangeService) DeclineSwap(ctx context.Context, ownerID, swapID string) (*model.SwapRecord, error) {
	return s.transition(ctx, "swap_decline", ownerID, swapID, model.SwapRejected, isOwner)
}

// CancelSwap — автор отзывает свою заявку.
func (s *ExchangeService) CancelSwap(ctx context.Context, requesterID, swapID string) (*model.SwapRecord, error) {
	return s.transition(ctx, "swap_cancel", requesterID, swapID, model.SwapCancelled, isRequester)
}

// CompleteSwap — любая из сторон подтверждает, что обмен состоялся.
func (s *ExchangeService) CompleteSwap(ctx context.Context, actorID, swapID string) (*model.SwapRecord, error) {
	return s.transition(ctx, "swap_complete", actorID, swapID, model.SwapCompleted, isParty)
}

func (s *ExchangeService) transition(ctx context.Context, op, actorID, swapID string, to model.SwapStatus, allowed func(*model.SwapRecord, string) bool) (rec *model.SwapRecord, err error) {
	defer func() { metrics.RecordExchange(op, resultLabel(err)) }()

	rec, err = s.loadSwap(ctx, actorID, swapID, to, allowed)
	if err != nil {
		return nil, err
	}
	if err := s.swaps.UpdateStatus(ctx, rec.ID, rec.Status, to); err != nil {
		return nil, mapRepoErr(op, err)
	}
	s.logger.Infow("swap status changed", "swap_id", rec.ID, "from", rec.Status, "to", to, "user_id", actorID)
	return s.reloadSwap(ctx, rec)
}

// loadSwap проверяет тип заявки, права участника и допустимость перехода.
func (s *ExchangeService) loadSwap(ctx context.Context, actorID, swapID string, to model.SwapStatus, allowed func(*model.SwapRecord, string) bool) (*model.SwapRecord, error) {
	if actorID == "" {
		return nil, ErrUnauthorized
	}
	rec, err := s.swaps.GetByID(ctx, swapID)
	if err != nil {
		return nil, mapRepoErr("get swap", err)
	}
	if !allowed(rec, actorID) {
		return nil, ErrAccessDenied
	}
	if rec.Type != model.SwapTypeRequest || !rec.Status.CanTransition(to) {
		return nil, ErrInvalidTransition
	}
	return rec, nil
}

func (s *ExchangeService) reloadSwap(ctx context.Context, rec *model.SwapRecord) (*model.SwapRecord, error) {
	fresh, err := s.swaps.GetByID(ctx, rec.ID)
	if err != nil {
		return nil, mapRepoErr("get swap", err)
	}
	return fresh, nil
}

func isOwner(rec *model.SwapRecord, actorID string) bool     { return rec.OwnerID == actorID }
func isRequester(rec *model.SwapRecord, actorID string) bool { return rec.RequesterID == actorID }
func isParty(rec *model.SwapRecord, actorID string) bool {
	return isOwner(rec, actorID) || isRequester(rec, actorID)
}

// loadActor загружает пользователя сессии.
func (s *ExchangeService) loadActor(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(mapRepoErr("", err), ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}
