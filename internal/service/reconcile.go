package service

import (
	"context"
	"fmt"

	"ReWear/internal/metrics"
	"ReWear/internal/model"
	"ReWear/internal/repo"

	"go.uber.org/zap"
)

// Finding — одно найденное расхождение.
type Finding struct {
	Kind    string `json:"kind"`
	UserID  string `json:"user_id,omitempty"`
	ItemID  string `json:"item_id,omitempty"`
	Details string `json:"details"`
}

// Report — результат сверки.
type Report struct {
	UsersChecked int       `json:"users_checked"`
	ItemsChecked int       `json:"items_checked"`
	Findings     []Finding `json:"findings"`
}

// Виды расхождений.
const (
	FindingBalance     = "balance_mismatch"
	FindingRedeemTrail = "redeem_without_record"
	FindingSwapTrail   = "swap_without_record"
)

// Reconciler сверяет балансы с журналом и статусы вещей с записями обменов.
type Reconciler struct {
	users  repo.UserRepository
	items  repo.ItemRepository
	swaps  repo.SwapRepository
	ledger repo.LedgerRepository
	logger *zap.SugaredLogger
}

func NewReconciler(r *repo.Repositories, logger *zap.SugaredLogger) *Reconciler {
	return &Reconciler{users: r.Users, items: r.Items, swaps: r.Swaps, ledger: r.Ledger, logger: logger}
}

// Reconcile возвращает отчёт; при наличии расхождений ошибка оборачивает ErrInconsistentState.
func (rc *Reconciler) Reconcile(ctx context.Context) (*Report, error) {
	rep := &Report{}

	if err := rc.checkBalances(ctx, rep); err != nil {
		return nil, err
	}
	if err := rc.checkRedeemed(ctx, rep); err != nil {
		return nil, err
	}
	if err := rc.checkSwapped(ctx, rep); err != nil {
		return nil, err
	}

	metrics.SetInconsistencies(len(rep.Findings))
	if n := len(rep.Findings); n > 0 {
		for _, f := range rep.Findings {
			rc.logger.Errorw("inconsistent state", "kind", f.Kind, "user_id", f.UserID, "item_id", f.ItemID, "details", f.Details)
		}
		return rep, fmt.Errorf("%w: %d finding(s)", ErrInconsistentState, n)
	}
	return rep, nil
}

func (rc *Reconciler) checkBalances(ctx context.Context, rep *Report) error {
	users, err := rc.users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	sums, err := rc.ledger.SumByUser(ctx)
	if err != nil {
		return fmt.Errorf("sum ledger: %w", err)
	}
	rep.UsersChecked = len(users)
	for _, u := range users {
		if sum := sums[u.ID]; sum != u.Points {
			rep.Findings = append(rep.Findings, Finding{
				Kind:    FindingBalance,
				UserID:  u.ID,
				Details: fmt.Sprintf("balance %d, ledger total %d", u.Points, sum),
			})
		}
	}
	return nil
}

func (rc *Reconciler) checkRedeemed(ctx context.Context, rep *Report) error {
	items, err := rc.items.ListByAvailability(ctx, model.AvailabilityRedeemed)
	if err != nil {
		return fmt.Errorf("list redeemed: %w", err)
	}
	rep.ItemsChecked += len(items)
	for _, it := range items {
		recs, err := rc.swaps.ListByItem(ctx, it.ID)
		if err != nil {
			return fmt.Errorf("list swaps: %w", err)
		}
		var matched int
		for _, r := range recs {
			if r.Type == model.SwapTypeRedeem && r.Status == model.SwapCompleted &&
				it.RedeemedBy != nil && r.RequesterID == *it.RedeemedBy {
				matched++
			}
		}
		if matched != 1 {
			rep.Findings = append(rep.Findings, Finding{
				Kind:    FindingRedeemTrail,
				ItemID:  it.ID,
				Details: fmt.Sprintf("%d matching redeem record(s)", matched),
			})
		}
	}
	return nil
}

func (rc *Reconciler) checkSwapped(ctx context.Context, rep *Report) error {
	items, err := rc.items.ListByAvailability(ctx, model.AvailabilitySwapped)
	if err != nil {
		return fmt.Errorf("list swapped: %w", err)
	}
	rep.ItemsChecked += len(items)
	for _, it := range items {
		recs, err := rc.swaps.ListByItem(ctx, it.ID)
		if err != nil {
			return fmt.Errorf("list swaps: %w", err)
		}
		found := false
		for _, r := range recs {
			if r.Type == model.SwapTypeRequest && (r.Status == model.SwapAccepted || r.Status == model.SwapCompleted) {
				found = true
				break
			}
		}
		// вещь могла уйти как предложенная в чужой заявке
		if !found {
			found, err = rc.offeredInAccepted(ctx, it)
			if err != nil {
				return err
			}
		}
		if !found {
			rep.Findings = append(rep.Findings, Finding{
				Kind:    FindingSwapTrail,
				ItemID:  it.ID,
				Details: "no accepted or completed swap",
			})
		}
	}
	return nil
}

func (rc *Reconciler) offeredInAccepted(ctx context.Context, it model.Item) (bool, error) {
	recs, err := rc.swaps.ListByRequester(ctx, it.UploaderID)
	if err != nil {
		return false, fmt.Errorf("list swaps: %w", err)
	}
	for _, r := range recs {
		if r.OfferedItemID != nil && *r.OfferedItemID == it.ID &&
			(r.Status == model.SwapAccepted || r.Status == model.SwapCompleted) {
			return true, nil
		}
	}
	return false, nil
}
