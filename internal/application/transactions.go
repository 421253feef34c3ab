package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oroshop/fulfillment-service/internal/apperr"
	"github.com/oroshop/fulfillment-service/internal/domain"
	"github.com/oroshop/fulfillment-service/internal/logger"
	"github.com/oroshop/fulfillment-service/internal/repository"
)

type RequestWithdrawalInput struct {
	ShopID   uuid.UUID
	ActorID  uuid.UUID
	Amount   float64
	Currency string
	Method   string
}

func (in RequestWithdrawalInput) validate() error {
	if in.ShopID == uuid.Nil || in.ActorID == uuid.Nil {
		return fmt.Errorf("shop and actor ids required: %w", apperr.ErrValidation)
	}
	if in.Amount <= 0 {
		return fmt.Errorf("withdrawal amount %v: %w", in.Amount, apperr.ErrValidation)
	}
	if in.Currency == "" || in.Method == "" {
		return fmt.Errorf("currency and method required: %w", apperr.ErrValidation)
	}
	return nil
}

// RequestWithdrawal files a pending payout request against the ledger. The
// balance only moves when a Withdrawal transaction completes.
func (s *FulfillmentService) RequestWithdrawal(ctx context.Context, in RequestWithdrawalInput) (*domain.Withdrawal, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var out *domain.Withdrawal
	err := s.withRetry(ctx, func(r repository.Repos) error {
		shop, err := r.Shops().Get(ctx, in.ShopID)
		if err != nil {
			return err
		}
		if shop.OwnerID != in.ActorID {
			return fmt.Errorf("actor does not own shop %s: %w", shop.ID, apperr.ErrUnauthorized)
		}
		if shop.NetShopIncome < in.Amount {
			return fmt.Errorf("shop balance %.2f below withdrawal %.2f: %w",
				shop.NetShopIncome, in.Amount, apperr.ErrInsufficientBalance)
		}

		w := &domain.Withdrawal{
			ID:          uuid.New(),
			Code:        newCode("WDR"),
			ShopID:      shop.ID,
			Amount:      in.Amount,
			Currency:    in.Currency,
			Method:      in.Method,
			Status:      domain.WithdrawalPending,
			RequestedBy: in.ActorID,
			CreatedAt:   time.Now().UTC(),
		}
		if err := r.Transactions().CreateWithdrawal(ctx, w); err != nil {
			return err
		}
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("withdrawal requested", "shop_id", in.ShopID, "code", out.Code, "amount", out.Amount)
	return out, nil
}

type PostTransactionInput struct {
	ShopID  uuid.UUID
	ActorID uuid.UUID

	Type     domain.TransactionType
	Status   domain.TransactionStatus
	Amount   float64
	Currency string
	Method   string
	Provider string

	OrderID         *uuid.UUID
	PlatformFees    float64
	RefundRequestID *uuid.UUID
	ReturnedItemID  *uuid.UUID
	WithdrawalID    *uuid.UUID
}

func (in PostTransactionInput) validate() error {
	if in.ShopID == uuid.Nil || in.ActorID == uuid.Nil {
		return fmt.Errorf("shop and actor ids required: %w", apperr.ErrValidation)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("transaction type %q: %w", in.Type, apperr.ErrValidation)
	}
	if !in.Status.Valid() {
		return fmt.Errorf("transaction status %q: %w", in.Status, apperr.ErrValidation)
	}
	if in.Amount <= 0 {
		return fmt.Errorf("transaction amount %v: %w", in.Amount, apperr.ErrValidation)
	}
	if in.Currency == "" {
		return fmt.Errorf("currency required: %w", apperr.ErrValidation)
	}
	switch in.Type {
	case domain.TxPayout:
		if in.OrderID == nil {
			return fmt.Errorf("payout requires an order: %w", apperr.ErrValidation)
		}
	case domain.TxRefund:
		if in.RefundRequestID == nil || in.ReturnedItemID == nil || in.WithdrawalID == nil {
			return fmt.Errorf("refund requires refund request, returned item and withdrawal: %w", apperr.ErrValidation)
		}
	case domain.TxWithdrawal:
		if in.WithdrawalID == nil {
			return fmt.Errorf("withdrawal transaction requires a withdrawal: %w", apperr.ErrValidation)
		}
	}
	return nil
}

// PostTransaction appends one immutable ledger entry and applies its delta to
// the shop balance. A completed Refund additionally closes out the order:
// status Refunded, payment marked refunded, and a receipt appended to
// payment.refunds. Duplicate idempotency tuples are rejected before any
// write.
func (s *FulfillmentService) PostTransaction(ctx context.Context, in PostTransactionInput) (*domain.Transaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		out      *domain.Transaction
		refunded *StatusChange
	)
	err := s.withRetry(ctx, func(r repository.Repos) error {
		refunded = nil

		shop, err := r.Shops().Get(ctx, in.ShopID)
		if err != nil {
			return err
		}
		if shop.OwnerID != in.ActorID {
			return fmt.Errorf("actor does not own shop %s: %w", shop.ID, apperr.ErrUnauthorized)
		}

		now := time.Now().UTC()
		t := &domain.Transaction{
			ID:              uuid.New(),
			Code:            newCode("TXN"),
			ShopID:          shop.ID,
			Type:            in.Type,
			Amount:          in.Amount,
			Currency:        in.Currency,
			Method:          in.Method,
			Provider:        in.Provider,
			Status:          in.Status,
			OrderID:         in.OrderID,
			PlatformFees:    in.PlatformFees,
			RefundRequestID: in.RefundRequestID,
			ReturnedItemID:  in.ReturnedItemID,
			WithdrawalID:    in.WithdrawalID,
			ProcessedBy:     in.ActorID,
			CreatedAt:       now,
		}

		exists, err := r.Transactions().ExistsFingerprint(ctx, t.Fingerprint())
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("identical transaction already posted: %w", apperr.ErrDuplicate)
		}

		order, err := s.resolveTransactionRefs(ctx, r, shop, t)
		if err != nil {
			return err
		}

		balance, err := domain.ApplyLedgerDelta(shop.NetShopIncome, t.Type, t.Status, t.Amount)
		if err != nil {
			return err
		}
		if balance != shop.NetShopIncome {
			if err := r.Shops().SetNetIncome(ctx, shop.ID, balance); err != nil {
				return err
			}
		}

		if err := r.Transactions().Create(ctx, t); err != nil {
			return err
		}
		if err := r.Shops().AppendRef(ctx, shop.ID, domain.RefTransaction, t.ID); err != nil {
			return err
		}
		if order != nil {
			if err := r.Orders().LinkTransaction(ctx, order.ID, t.ID); err != nil {
				return err
			}
		}

		if t.Type == domain.TxRefund && t.Status == domain.TxCompleted {
			evt, err := s.completeRefund(ctx, r, order, t)
			if err != nil {
				return err
			}
			refunded = evt
		}

		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("transaction posted", "shop_id", in.ShopID, "code", out.Code,
		"type", out.Type, "amount", out.Amount)
	if refunded != nil {
		s.publish(ctx, *refunded)
	}
	return out, nil
}

// resolveTransactionRefs validates the type-specific references against the
// shop and returns the order involved, if any.
func (s *FulfillmentService) resolveTransactionRefs(ctx context.Context, r repository.Repos, shop *domain.Shop, t *domain.Transaction) (*domain.Order, error) {
	switch t.Type {
	case domain.TxPayout:
		order, err := r.Orders().Get(ctx, *t.OrderID)
		if err != nil {
			return nil, err
		}
		if order.ShopID != shop.ID {
			return nil, fmt.Errorf("order %s belongs to another shop: %w", order.ID, apperr.ErrUnauthorized)
		}
		return order, nil

	case domain.TxRefund:
		rr, err := r.Refunds().GetRequest(ctx, *t.RefundRequestID)
		if err != nil {
			return nil, err
		}
		ri, err := r.Refunds().GetReturn(ctx, *t.ReturnedItemID)
		if err != nil {
			return nil, err
		}
		if ri.RefundRequestID != rr.ID {
			return nil, fmt.Errorf("returned item %s does not answer refund request %s: %w",
				ri.ID, rr.ID, apperr.ErrValidation)
		}
		w, err := r.Transactions().GetWithdrawal(ctx, *t.WithdrawalID)
		if err != nil {
			return nil, err
		}
		if w.ShopID != shop.ID {
			return nil, fmt.Errorf("withdrawal %s belongs to another shop: %w", w.ID, apperr.ErrUnauthorized)
		}
		order, err := r.Orders().Get(ctx, rr.OrderID)
		if err != nil {
			return nil, err
		}
		if order.ShopID != shop.ID {
			return nil, fmt.Errorf("order %s belongs to another shop: %w", order.ID, apperr.ErrUnauthorized)
		}
		if t.Currency != order.Payment.Currency {
			return nil, fmt.Errorf("transaction currency %q does not match order currency %q: %w",
				t.Currency, order.Payment.Currency, apperr.ErrValidation)
		}
		return order, nil

	case domain.TxWithdrawal:
		w, err := r.Transactions().GetWithdrawal(ctx, *t.WithdrawalID)
		if err != nil {
			return nil, err
		}
		if w.ShopID != shop.ID {
			return nil, fmt.Errorf("withdrawal %s belongs to another shop: %w", w.ID, apperr.ErrUnauthorized)
		}
		return nil, nil

	default: // Adjustment carries no refs
		return nil, nil
	}
}

// completeRefund finalizes the order side of a completed Refund transaction.
func (s *FulfillmentService) completeRefund(ctx context.Context, r repository.Repos, order *domain.Order, t *domain.Transaction) (*StatusChange, error) {
	if !domain.CanApply(domain.OpCompleteRefund, order.Status) {
		return nil, fmt.Errorf("order in status %q cannot complete a refund: %w",
			order.Status, apperr.ErrStateConflict)
	}

	entry := domain.StatusEntry{
		Status:  domain.StatusRefunded,
		At:      t.CreatedAt,
		Message: "refund settled by transaction " + t.Code,
	}
	if err := r.Orders().SetStatus(ctx, order.ID, domain.StatusRefunded, entry); err != nil {
		return nil, err
	}
	if err := r.Orders().SetPaymentStatus(ctx, order.ID, domain.PaymentRefunded); err != nil {
		return nil, err
	}

	receipt := domain.RefundReceipt{
		ID:              uuid.New(),
		RefundRequestID: *t.RefundRequestID,
		ReturnedItemID:  *t.ReturnedItemID,
		WithdrawalID:    *t.WithdrawalID,
		TransactionID:   t.ID,
		Amount:          t.Amount,
		Currency:        t.Currency,
		Method:          t.Method,
		ProcessedBy:     t.ProcessedBy,
		At:              t.CreatedAt,
	}
	if err := r.Orders().AppendRefundReceipt(ctx, order.ID, receipt); err != nil {
		return nil, err
	}
	if err := r.Transactions().SetWithdrawalStatus(ctx, *t.WithdrawalID, domain.WithdrawalCompleted); err != nil {
		return nil, err
	}

	return &StatusChange{
		OrderID:   order.ID,
		From:      order.Status,
		To:        domain.StatusRefunded,
		Operation: domain.OpCompleteRefund,
		At:        t.CreatedAt,
	}, nil
}
