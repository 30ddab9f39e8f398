package repo

import (
	"context"
	"sync"
	"testing"

	"ReWear/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeRepository_Redeem(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mkUser(t, db, "owner@example.com", 0)
	buyer := mkUser(t, db, "buyer@example.com", 100)
	it := mkListing(t, db, owner.ID, 75, model.ModerationApproved)

	rec, balance, err := NewExchangeRepository(db).Redeem(ctx, RedeemParams{
		UserID: buyer.ID, UserName: "Buyer", ItemID: it.ID, ItemTitle: it.Title, OwnerID: owner.ID, Points: 75,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25), balance)
	assert.Equal(t, model.SwapTypeRedeem, rec.Type)
	assert.Equal(t, model.SwapCompleted, rec.Status)
	assert.Equal(t, int64(75), rec.Points)

	got, err := NewItemRepository(db).GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AvailabilityRedeemed, got.Availability)
	require.NotNil(t, got.RedeemedBy)
	assert.Equal(t, buyer.ID, *got.RedeemedBy)
	assert.NotNil(t, got.RedeemedAt)
	assert.Equal(t, int64(2), got.Version)

	u, err := NewUserRepository(db).GetByID(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(25), u.Points)

	entries, err := NewLedgerRepository(db).ListByUser(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	sums, err := NewLedgerRepository(db).SumByUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(25), sums[buyer.ID])

	// второй выкуп той же вещи невозможен
	_, _, err = NewExchangeRepository(db).Redeem(ctx, RedeemParams{UserID: buyer.ID, ItemID: it.ID, OwnerID: owner.ID, Points: 10})
	assert.ErrorIs(t, err, ErrItemTaken)
}

func TestExchangeRepository_RedeemClosesPendingRequests(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mkUser(t, db, "owner@example.com", 0)
	req := mkUser(t, db, "req@example.com", 0)
	buyer := mkUser(t, db, "buyer@example.com", 100)
	it := mkListing(t, db, owner.ID, 75, model.ModerationApproved)
	other := mkListing(t, db, owner.ID, 30, model.ModerationApproved)
	mine := mkListing(t, db, req.ID, 40, model.ModerationApproved)

	onItem := mkSwap(t, db, it, req.ID, nil)
	// вещь предложена в обмен на другую
	asOffer := mkSwap(t, db, mine, owner.ID, &it.ID)
	untouched := mkSwap(t, db, other, req.ID, &mine.ID)

	_, _, err := NewExchangeRepository(db).Redeem(ctx, RedeemParams{
		UserID: buyer.ID, ItemID: it.ID, ItemTitle: it.Title, OwnerID: owner.ID, Points: 75,
	})
	require.NoError(t, err)

	sr := NewSwapRepository(db)
	for _, id := range []string{onItem.ID, asOffer.ID} {
		got, err := sr.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.SwapRejected, got.Status)
		assert.NotNil(t, got.RespondedAt)
	}
	got, err := sr.GetByID(ctx, untouched.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SwapPending, got.Status)
}

func TestExchangeRepository_RedeemInsufficientRollsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mkUser(t, db, "owner@example.com", 0)
	buyer := mkUser(t, db, "buyer@example.com", 30)
	it := mkListing(t, db, owner.ID, 45, model.ModerationApproved)

	_, _, err := NewExchangeRepository(db).Redeem(ctx, RedeemParams{UserID: buyer.ID, ItemID: it.ID, OwnerID: owner.ID, Points: 45})
	assert.ErrorIs(t, err, ErrBalanceTooLow)

	// вещь осталась доступной, баланс не тронут, записей нет
	got, err := NewItemRepository(db).GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, got.Acquirable())
	assert.Nil(t, got.RedeemedBy)
	assert.Equal(t, int64(1), got.Version)

	u, err := NewUserRepository(db).GetByID(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), u.Points)

	recs, err := NewSwapRepository(db).ListByItem(ctx, it.ID)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestExchangeRepository_RedeemPendingItem(t *testing.T) {
	db := newTestDB(t)
	owner := mkUser(t, db, "owner@example.com", 0)
	buyer := mkUser(t, db, "buyer@example.com", 100)
	it := mkListing(t, db, owner.ID, 45, model.ModerationPending)

	_, _, err := NewExchangeRepository(db).Redeem(context.Background(), RedeemParams{UserID: buyer.ID, ItemID: it.ID, OwnerID: owner.ID, Points: 45})
	assert.ErrorIs(t, err, ErrItemTaken)
}

func TestExchangeRepository_ConcurrentRedeem(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mkUser(t, db, "owner@example.com", 0)
	a := mkUser(t, db, "a@example.com", 100)
	b := mkUser(t, db, "b@example.com", 100)
	it := mkListing(t, db, owner.ID, 50, model.ModerationApproved)

	r := NewExchangeRepository(db)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, buyer := range []*model.User{a, b} {
		wg.Add(1)
		go func(i int, uid string) {
			defer wg.Done()
			_, _, errs[i] = r.Redeem(ctx, RedeemParams{UserID: uid, ItemID: it.ID, OwnerID: owner.ID, Points: 50})
		}(i, buyer.ID)
	}
	wg.Wait()

	var ok, taken int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrItemTaken):
			taken++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, taken)

	// списано ровно у одного
	ua, err := NewUserRepository(db).GetByID(ctx, a.ID)
	require.NoError(t, err)
	ub, err := NewUserRepository(db).GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(150), ua.Points+ub.Points)

	recs, err := NewSwapRepository(db).ListByItem(ctx, it.ID)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestExchangeRepository_AcceptSwap(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mkUser(t, db, "owner@example.com", 0)
	req := mkUser(t, db, "req@example.com", 0)
	other := mkUser(t, db, "other@example.com", 0)

	target := mkListing(t, db, owner.ID, 75, model.ModerationApproved)
	offered := mkListing(t, db, req.ID, 60, model.ModerationApproved)
	offeredID := offered.ID

	accepted := mkSwap(t, db, target, req.ID, &offeredID)
	competing := mkSwap(t, db, target, other.ID, nil)

	require.NoError(t, NewExchangeRepository(db).AcceptSwap(ctx, accepted.ID, []string{target.ID, offered.ID}))

	sr := NewSwapRepository(db)
	got, err := sr.GetByID(ctx, accepted.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SwapAccepted, got.Status)

	got, err = sr.GetByID(ctx, competing.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SwapRejected, got.Status)

	ir := NewItemRepository(db)
	for _, id := range []string{target.ID, offered.ID} {
		it, err := ir.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.AvailabilitySwapped, it.Availability)
	}

	// повторное принятие — статус уже не pending
	assert.ErrorIs(t, NewExchangeRepository(db).AcceptSwap(ctx, accepted.ID, []string{target.ID}), ErrSwapChanged)
}

func TestExchangeRepository_AcceptSwapItemGoneRollsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := mkUser(t, db, "owner@example.com", 0)
	req := mkUser(t, db, "req@example.com", 100)
	target := mkListing(t, db, owner.ID, 75, model.ModerationApproved)
	rec := mkSwap(t, db, target, req.ID, nil)

	// вещь выкуплена раньше, чем владелец ответил
	_, _, err := NewExchangeRepository(db).Redeem(ctx, RedeemParams{UserID: req.ID, ItemID: target.ID, OwnerID: owner.ID, Points: 75})
	require.NoError(t, err)

	err = NewExchangeRepository(db).AcceptSwap(ctx, rec.ID, []string{target.ID})
	assert.ErrorIs(t, err, ErrItemTaken)

	got, err := NewSwapRepository(db).GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SwapPending, got.Status)
}
