package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/oroshop/fulfillment-service/internal/domain"
)

// Store opens one atomic transaction per business operation. Every read and
// write inside fn sees the same snapshot; fn returning an error aborts the
// whole transaction and no partial write survives. A commit or serialization
// conflict surfaces as apperr.ErrTxConflict so the caller can retry.
type Store interface {
	WithinTx(ctx context.Context, fn func(Repos) error) error
}

// Repos bundles the per-entity repositories bound to one open transaction.
type Repos interface {
	Orders() OrderRepo
	Shops() ShopRepo
	Cancellations() CancellationRepo
	Shipments() ShipmentRepo
	Refunds() RefundRepo
	Transactions() TransactionRepo
}

type OrderRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// SetStatus updates the order status and appends one history entry.
	SetStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus, entry domain.StatusEntry) error
	LinkCancellation(ctx context.Context, orderID, cancellationID uuid.UUID) error
	LinkShipment(ctx context.Context, orderID, shipmentID uuid.UUID) error
	LinkTransaction(ctx context.Context, orderID, transactionID uuid.UUID) error
	SetPaymentStatus(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus) error
	AppendRefundReceipt(ctx context.Context, orderID uuid.UUID, receipt domain.RefundReceipt) error
	// RestoreStock puts the ordered quantities back on the matching product
	// variants and decrements sold_out, clamped at zero.
	RestoreStock(ctx context.Context, items []domain.OrderItem) error
}

type ShopRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Shop, error)
	// SetNetIncome persists a balance previously produced by
	// domain.ApplyLedgerDelta. No other value may be written.
	SetNetIncome(ctx context.Context, shopID uuid.UUID, balance float64) error
	AppendRef(ctx context.Context, shopID uuid.UUID, kind domain.ShopRefKind, refID uuid.UUID) error
}

type CancellationRepo interface {
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*domain.Cancellation, error)
	Create(ctx context.Context, c *domain.Cancellation) error
	UpdateReview(ctx context.Context, id uuid.UUID, review domain.CancellationReview) error
}

type ShipmentRepo interface {
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*domain.Shipment, error)
	Create(ctx context.Context, s *domain.Shipment) error
}

type RefundRepo interface {
	GetRequest(ctx context.Context, id uuid.UUID) (*domain.RefundRequest, error)
	CreateRequest(ctx context.Context, r *domain.RefundRequest) error
	GetReturn(ctx context.Context, id uuid.UUID) (*domain.ReturnedItem, error)
	GetReturnByRequest(ctx context.Context, refundRequestID uuid.UUID) (*domain.ReturnedItem, error)
	CreateReturn(ctx context.Context, r *domain.ReturnedItem) error
}

type TransactionRepo interface {
	ExistsFingerprint(ctx context.Context, fingerprint string) (bool, error)
	Create(ctx context.Context, t *domain.Transaction) error
	GetWithdrawal(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error)
	CreateWithdrawal(ctx context.Context, w *domain.Withdrawal) error
	SetWithdrawalStatus(ctx context.Context, id uuid.UUID, status domain.WithdrawalStatus) error
}
