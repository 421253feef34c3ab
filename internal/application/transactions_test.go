package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oroshop/fulfillment-service/internal/apperr"
	"github.com/oroshop/fulfillment-service/internal/domain"
)

func TestRequestWithdrawal(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	w, err := f.svc.RequestWithdrawal(ctx, RequestWithdrawalInput{
		ShopID:   f.shopID,
		ActorID:  f.ownerID,
		Amount:   200,
		Currency: "USD",
		Method:   "Bank",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalPending, w.Status)

	// filing the request does not move the balance
	assert.InDelta(t, 500.00, f.shop().NetShopIncome, 1e-9)
}

func TestRequestWithdrawalOverBalance(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.RequestWithdrawal(ctx, RequestWithdrawalInput{
		ShopID:   f.shopID,
		ActorID:  f.ownerID,
		Amount:   500.01,
		Currency: "USD",
		Method:   "Bank",
	})
	assert.ErrorIs(t, err, apperr.ErrInsufficientBalance)
}

func TestPostTransactionPayout(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	tx, err := f.svc.PostTransaction(ctx, PostTransactionInput{
		ShopID:       f.shopID,
		ActorID:      f.ownerID,
		Type:         domain.TxPayout,
		Status:       domain.TxCompleted,
		Amount:       140,
		Currency:     "USD",
		Method:       "Card",
		Provider:     "Stripe",
		OrderID:      &f.orderID,
		PlatformFees: 10,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tx.Code)

	assert.InDelta(t, 640.00, f.shop().NetShopIncome, 1e-9, "500 + 140")
	assert.Contains(t, f.shop().TransactionIDs, tx.ID)
	require.NotNil(t, f.order().TransactionID)
	assert.Equal(t, tx.ID, *f.order().TransactionID)
}

func TestPostTransactionPendingLeavesBalance(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.PostTransaction(ctx, PostTransactionInput{
		ShopID:   f.shopID,
		ActorID:  f.ownerID,
		Type:     domain.TxPayout,
		Status:   domain.TxPending,
		Amount:   140,
		Currency: "USD",
		Method:   "Card",
		Provider: "Stripe",
		OrderID:  &f.orderID,
	})
	require.NoError(t, err)
	assert.InDelta(t, 500.00, f.shop().NetShopIncome, 1e-9)
}

func TestPostTransactionIdempotency(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	in := PostTransactionInput{
		ShopID:   f.shopID,
		ActorID:  f.ownerID,
		Type:     domain.TxAdjustment,
		Status:   domain.TxCompleted,
		Amount:   25,
		Currency: "USD",
		Method:   "Manual",
		Provider: "Internal",
	}
	_, err := f.svc.PostTransaction(ctx, in)
	require.NoError(t, err)

	_, err = f.svc.PostTransaction(ctx, in)
	assert.ErrorIs(t, err, apperr.ErrDuplicate)

	assert.InDelta(t, 525.00, f.shop().NetShopIncome, 1e-9, "credited exactly once")
	assert.Len(t, f.store.state.transactions, 1)
}

func TestPostTransactionWithdrawal(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	w := f.seedWithdrawal(300)

	_, err := f.svc.PostTransaction(ctx, PostTransactionInput{
		ShopID:       f.shopID,
		ActorID:      f.ownerID,
		Type:         domain.TxWithdrawal,
		Status:       domain.TxCompleted,
		Amount:       300,
		Currency:     "USD",
		Method:       "Bank",
		Provider:     "Wire",
		WithdrawalID: &w.ID,
	})
	require.NoError(t, err)
	assert.InDelta(t, 200.00, f.shop().NetShopIncome, 1e-9, "500 - 300")
}

func TestPostTransactionWithdrawalOverdraft(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	w := f.seedWithdrawal(600)

	_, err := f.svc.PostTransaction(ctx, PostTransactionInput{
		ShopID:       f.shopID,
		ActorID:      f.ownerID,
		Type:         domain.TxWithdrawal,
		Status:       domain.TxCompleted,
		Amount:       600,
		Currency:     "USD",
		Method:       "Bank",
		Provider:     "Wire",
		WithdrawalID: &w.ID,
	})
	assert.ErrorIs(t, err, apperr.ErrInsufficientBalance)
	assert.InDelta(t, 500.00, f.shop().NetShopIncome, 1e-9)
	assert.Empty(t, f.store.state.transactions, "aborted transaction leaves no record")
}

// refundFixture walks the order to the point where a Refund transaction can
// settle: refund requested, item returned and accepted, withdrawal filed.
func refundFixture(t *testing.T) (*fixture, *domain.RefundRequest, *domain.ReturnedItem, *domain.Withdrawal) {
	t.Helper()

	f := newFixture()
	ctx := context.Background()
	f.setOrderStatus(domain.StatusRefundRequested)
	rr := f.seedRefundRequest(120)

	ri, err := f.svc.CreateReturnedItem(ctx, returnInput(f, rr.ID))
	require.NoError(t, err)

	w := f.seedWithdrawal(120)
	return f, rr, ri, w
}

func TestPostTransactionRefundCompleted(t *testing.T) {
	t.Parallel()

	f, rr, ri, w := refundFixture(t)
	ctx := context.Background()

	tx, err := f.svc.PostTransaction(ctx, PostTransactionInput{
		ShopID:          f.shopID,
		ActorID:         f.ownerID,
		Type:            domain.TxRefund,
		Status:          domain.TxCompleted,
		Amount:          120,
		Currency:        "USD",
		Method:          "Card",
		Provider:        "Stripe",
		RefundRequestID: &rr.ID,
		ReturnedItemID:  &ri.ID,
		WithdrawalID:    &w.ID,
	})
	require.NoError(t, err)

	order := f.order()
	assert.Equal(t, domain.StatusRefunded, order.Status)
	assert.Equal(t, domain.PaymentRefunded, order.Payment.Status)

	require.Len(t, order.Payment.Refunds, 1)
	receipt := order.Payment.Refunds[0]
	assert.Equal(t, rr.ID, receipt.RefundRequestID)
	assert.Equal(t, ri.ID, receipt.ReturnedItemID)
	assert.Equal(t, w.ID, receipt.WithdrawalID)
	assert.Equal(t, tx.ID, receipt.TransactionID)
	assert.Equal(t, 120.00, receipt.Amount)

	assert.Equal(t, domain.WithdrawalCompleted, f.store.state.withdrawals[w.ID].Status)
	// the return already debited 120; the completed refund transaction
	// debits the settlement as well
	assert.InDelta(t, 260.00, f.shop().NetShopIncome, 1e-9)

	last := order.StatusHistory[len(order.StatusHistory)-1]
	assert.Equal(t, domain.StatusRefunded, last.Status)
}

func TestPostTransactionRefundCurrencyMismatch(t *testing.T) {
	t.Parallel()

	f, rr, ri, w := refundFixture(t)
	ctx := context.Background()

	_, err := f.svc.PostTransaction(ctx, PostTransactionInput{
		ShopID:          f.shopID,
		ActorID:         f.ownerID,
		Type:            domain.TxRefund,
		Status:          domain.TxCompleted,
		Amount:          120,
		Currency:        "EUR",
		Method:          "Card",
		Provider:        "Stripe",
		RefundRequestID: &rr.ID,
		ReturnedItemID:  &ri.ID,
		WithdrawalID:    &w.ID,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, f.order().Payment.Refunds)
}

func TestPostTransactionRefundTwiceRejected(t *testing.T) {
	t.Parallel()

	f, rr, ri, w := refundFixture(t)
	ctx := context.Background()

	in := PostTransactionInput{
		ShopID:          f.shopID,
		ActorID:         f.ownerID,
		Type:            domain.TxRefund,
		Status:          domain.TxCompleted,
		Amount:          120,
		Currency:        "USD",
		Method:          "Card",
		Provider:        "Stripe",
		RefundRequestID: &rr.ID,
		ReturnedItemID:  &ri.ID,
		WithdrawalID:    &w.ID,
	}
	_, err := f.svc.PostTransaction(ctx, in)
	require.NoError(t, err)

	_, err = f.svc.PostTransaction(ctx, in)
	assert.ErrorIs(t, err, apperr.ErrDuplicate)
	assert.Len(t, f.order().Payment.Refunds, 1, "one receipt only")
}

func TestPostTransactionMissingRefs(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.PostTransaction(ctx, PostTransactionInput{
		ShopID:   f.shopID,
		ActorID:  f.ownerID,
		Type:     domain.TxPayout,
		Status:   domain.TxCompleted,
		Amount:   10,
		Currency: "USD",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation, "payout without order")

	_, err = f.svc.PostTransaction(ctx, PostTransactionInput{
		ShopID:   f.shopID,
		ActorID:  f.ownerID,
		Type:     domain.TxRefund,
		Status:   domain.TxCompleted,
		Amount:   10,
		Currency: "USD",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation, "refund without refs")
}

func TestPostTransactionWrongShopOrder(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	otherShop := uuid.New()
	otherOwner := uuid.New()
	f.store.state.shops[otherShop] = &domain.Shop{
		ID:            otherShop,
		OwnerID:       otherOwner,
		Name:          "Rival",
		NetShopIncome: 50,
	}

	_, err := f.svc.PostTransaction(ctx, PostTransactionInput{
		ShopID:   otherShop,
		ActorID:  otherOwner,
		Type:     domain.TxPayout,
		Status:   domain.TxCompleted,
		Amount:   10,
		Currency: "USD",
		OrderID:  &f.orderID, // belongs to the fixture shop
	})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
