package service

import (
	"context"
	"fmt"

	"ReWear/internal/model"
)

// DashboardStats — счётчики личного кабинета.
type DashboardStats struct {
	Points          int64 `json:"points"`
	Listed          int   `json:"listed"`
	Available       int   `json:"available"`
	Exchanged       int   `json:"exchanged"`
	PendingIncoming int   `json:"pending_incoming"`
	PendingOutgoing int   `json:"pending_outgoing"`
}

// Dashboard — профиль, свои объявления, входящие и исходящие заявки, журнал очков.
type Dashboard struct {
	User     *model.User         `json:"user"`
	Listings []model.Item        `json:"listings"`
	Incoming []model.SwapRecord  `json:"incoming"`
	Outgoing []model.SwapRecord  `json:"outgoing"`
	Ledger   []model.LedgerEntry `json:"ledger"`
	Stats    DashboardStats      `json:"stats"`
}

func (s *ExchangeService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	user, err := s.loadActor(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{User: user}
	if d.Listings, err = s.items.ListByUploader(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if d.Incoming, err = s.swaps.ListByOwner(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("list incoming: %w", err)
	}
	if d.Outgoing, err = s.swaps.ListByRequester(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("list outgoing: %w", err)
	}
	if d.Ledger, err = s.ledger.ListByUser(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}

	d.Stats.Points = user.Points
	d.Stats.Listed = len(d.Listings)
	for _, it := range d.Listings {
		switch {
		case it.Acquirable():
			d.Stats.Available++
		case it.Availability != model.AvailabilityAvailable:
			d.Stats.Exchanged++
		}
	}
	for _, r := range d.Incoming {
		if r.Status == model.SwapPending {
			d.Stats.PendingIncoming++
		}
	}
	for _, r := range d.Outgoing {
		if r.Status == model.SwapPending {
			d.Stats.PendingOutgoing++
		}
	}
	return d, nil
}
