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

type CreateRefundRequestInput struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID

	ProductID uuid.UUID
	Color     string
	Size      string
	Quantity  int

	Amount        float64
	Method        string
	PayoutDetails domain.PayoutDetails
}

func (in CreateRefundRequestInput) validate() error {
	if in.OrderID == uuid.Nil || in.CustomerID == uuid.Nil || in.ProductID == uuid.Nil {
		return fmt.Errorf("order, customer and product ids required: %w", apperr.ErrValidation)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("refund quantity %d: %w", in.Quantity, apperr.ErrValidation)
	}
	if in.Amount <= 0 {
		return fmt.Errorf("refund amount %v: %w", in.Amount, apperr.ErrValidation)
	}
	if !in.PayoutDetails.Kind.Valid() {
		return fmt.Errorf("payout kind %q: %w", in.PayoutDetails.Kind, apperr.ErrValidation)
	}
	return nil
}

// CreateRefundRequest records the customer's refund ask for one line item
// and moves the order to Refund Requested. A returned item can only ever
// reference a request created here.
func (s *FulfillmentService) CreateRefundRequest(ctx context.Context, in CreateRefundRequestInput) (*domain.RefundRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		out  *domain.RefundRequest
		prev domain.OrderStatus
	)
	err := s.withRetry(ctx, func(r repository.Repos) error {
		order, err := r.Orders().Get(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if order.CustomerID != in.CustomerID {
			return fmt.Errorf("customer does not own order %s: %w", order.ID, apperr.ErrUnauthorized)
		}
		if !domain.CanApply(domain.OpRequestRefund, order.Status) {
			return fmt.Errorf("order in status %q cannot be refunded: %w", order.Status, apperr.ErrStateConflict)
		}
		if in.Amount > order.Payment.AmountPaid {
			return fmt.Errorf("refund %v exceeds amount paid %v: %w",
				in.Amount, order.Payment.AmountPaid, apperr.ErrValidation)
		}
		if !orderHasLine(order, in.ProductID, in.Color, in.Size, in.Quantity) {
			return fmt.Errorf("order has no matching line item: %w", apperr.ErrValidation)
		}

		now := time.Now().UTC()
		rr := &domain.RefundRequest{
			ID:            uuid.New(),
			Code:          newCode("REF"),
			OrderID:       order.ID,
			CustomerID:    in.CustomerID,
			ProductID:     in.ProductID,
			Color:         in.Color,
			Size:          in.Size,
			Quantity:      in.Quantity,
			Amount:        in.Amount,
			Method:        in.Method,
			PayoutDetails: in.PayoutDetails,
			CreatedAt:     now,
		}
		if err := r.Refunds().CreateRequest(ctx, rr); err != nil {
			return err
		}
		entry := domain.StatusEntry{
			Status:  domain.StatusRefundRequested,
			At:      now,
			Message: "refund " + rr.Code + " requested",
		}
		if err := r.Orders().SetStatus(ctx, order.ID, domain.StatusRefundRequested, entry); err != nil {
			return err
		}

		prev = order.Status
		out = rr
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("refund requested", "order_id", in.OrderID, "code", out.Code, "amount", out.Amount)
	s.publish(ctx, StatusChange{
		OrderID:   in.OrderID,
		From:      prev,
		To:        domain.StatusRefundRequested,
		Operation: domain.OpRequestRefund,
		At:        out.CreatedAt,
	})
	return out, nil
}

func orderHasLine(order *domain.Order, productID uuid.UUID, color, size string, qty int) bool {
	for _, it := range order.Items {
		if it.ProductID == productID && it.Color == color && it.Size == size && qty <= it.Quantity {
			return true
		}
	}
	return false
}

type CreateReturnedItemInput struct {
	OrderID         uuid.UUID
	RefundRequestID uuid.UUID
	ActorID         uuid.UUID

	IsProductReturned bool
	Condition         domain.ItemCondition
	RefundStatus      domain.RefundDecision
	RefundAmount      float64
	Comments          string
}

func (in CreateReturnedItemInput) validate() error {
	if in.OrderID == uuid.Nil || in.RefundRequestID == uuid.Nil || in.ActorID == uuid.Nil {
		return fmt.Errorf("order, refund request and actor ids required: %w", apperr.ErrValidation)
	}
	if !in.Condition.Valid() {
		return fmt.Errorf("item condition %q: %w", in.Condition, apperr.ErrValidation)
	}
	if !in.RefundStatus.Valid() {
		return fmt.Errorf("refund status %q: %w", in.RefundStatus, apperr.ErrValidation)
	}
	return nil
}

// CreateReturnedItem executes the refund decision. On an accepted return of a
// New-condition item it debits the shop ledger by the refund amount and puts
// the ordered quantities back in stock; any other disposition only records
// the verdict and moves the order status.
func (s *FulfillmentService) CreateReturnedItem(ctx context.Context, in CreateReturnedItemInput) (*domain.ReturnedItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		out  *domain.ReturnedItem
		prev domain.OrderStatus
		next domain.OrderStatus
	)
	err := s.withRetry(ctx, func(r repository.Repos) error {
		order, err := r.Orders().Get(ctx, in.OrderID)
		if err != nil {
			return err
		}
		shop, err := r.Shops().Get(ctx, order.ShopID)
		if err != nil {
			return err
		}
		if shop.OwnerID != in.ActorID {
			return fmt.Errorf("actor does not own shop %s: %w", shop.ID, apperr.ErrUnauthorized)
		}
		if !domain.CanApply(domain.OpReturnItem, order.Status) {
			return fmt.Errorf("order in status %q cannot process a return: %w", order.Status, apperr.ErrStateConflict)
		}

		rr, err := r.Refunds().GetRequest(ctx, in.RefundRequestID)
		if err != nil {
			return err
		}
		if rr.OrderID != order.ID {
			return fmt.Errorf("refund request %s is not recorded on order %s: %w",
				rr.ID, order.ID, apperr.ErrValidation)
		}
		dup, err := r.Refunds().GetReturnByRequest(ctx, rr.ID)
		if err != nil {
			return err
		}
		if dup != nil {
			return fmt.Errorf("return %s already recorded for refund request: %w", dup.Code, apperr.ErrDuplicate)
		}
		if in.RefundAmount <= 0 || in.RefundAmount > order.Payment.AmountPaid {
			return fmt.Errorf("refund amount %v out of bounds (0, %v]: %w",
				in.RefundAmount, order.Payment.AmountPaid, apperr.ErrValidation)
		}
		if shop.NetShopIncome < in.RefundAmount {
			return fmt.Errorf("shop balance %.2f below refund %.2f: %w",
				shop.NetShopIncome, in.RefundAmount, apperr.ErrInsufficientBalance)
		}

		now := time.Now().UTC()
		ri := &domain.ReturnedItem{
			ID:                uuid.New(),
			Code:              newCode("RET"),
			OrderID:           order.ID,
			ShopID:            order.ShopID,
			RefundRequestID:   rr.ID,
			IsProductReturned: in.IsProductReturned,
			Condition:         in.Condition,
			RefundStatus:      in.RefundStatus,
			RefundAmount:      in.RefundAmount,
			Comments:          in.Comments,
			CreatedAt:         now,
		}
		if err := r.Refunds().CreateReturn(ctx, ri); err != nil {
			return err
		}

		outcome := domain.ReturnOutcome(in.IsProductReturned, in.Condition, in.RefundStatus)
		entry := domain.StatusEntry{
			Status:  outcome,
			At:      now,
			Message: "return " + ri.Code + " " + string(in.RefundStatus),
		}
		if err := r.Orders().SetStatus(ctx, order.ID, outcome, entry); err != nil {
			return err
		}
		if err := r.Shops().AppendRef(ctx, order.ShopID, domain.RefReturnedItem, ri.ID); err != nil {
			return err
		}

		if domain.RefundExecuted(in.IsProductReturned, in.Condition, in.RefundStatus) {
			balance, err := domain.ApplyLedgerDelta(shop.NetShopIncome,
				domain.TxRefund, domain.TxCompleted, in.RefundAmount)
			if err != nil {
				return err
			}
			if err := r.Shops().SetNetIncome(ctx, shop.ID, balance); err != nil {
				return err
			}
			if err := r.Orders().RestoreStock(ctx, order.Items); err != nil {
				return err
			}
		}

		prev = order.Status
		next = outcome
		out = ri
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("returned item processed", "order_id", in.OrderID, "code", out.Code, "outcome", next)
	s.publish(ctx, StatusChange{
		OrderID:   in.OrderID,
		From:      prev,
		To:        next,
		Operation: domain.OpReturnItem,
		At:        out.CreatedAt,
	})
	return out, nil
}
