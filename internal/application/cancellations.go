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

type CreateCancellationInput struct {
	OrderID     uuid.UUID
	RequestedBy uuid.UUID
	Reason      domain.CancellationReason
	OtherReason string
}

func (in CreateCancellationInput) validate() error {
	if in.OrderID == uuid.Nil || in.RequestedBy == uuid.Nil {
		return fmt.Errorf("order and requester ids required: %w", apperr.ErrValidation)
	}
	if !in.Reason.Valid() {
		return fmt.Errorf("cancellation reason %q: %w", in.Reason, apperr.ErrValidation)
	}
	if in.Reason == domain.ReasonOther && in.OtherReason == "" {
		return fmt.Errorf("other reason text required: %w", apperr.ErrValidation)
	}
	return nil
}

// CreateCancellation records the customer's cancellation, flips the order to
// Cancelled and links the record to both order and shop, atomically.
func (s *FulfillmentService) CreateCancellation(ctx context.Context, in CreateCancellationInput) (*domain.Cancellation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		out  *domain.Cancellation
		prev domain.OrderStatus
	)
	err := s.withRetry(ctx, func(r repository.Repos) error {
		order, err := r.Orders().Get(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if order.CustomerID != in.RequestedBy {
			return fmt.Errorf("requester does not own order %s: %w", order.ID, apperr.ErrUnauthorized)
		}
		if !domain.CanApply(domain.OpCancel, order.Status) {
			return fmt.Errorf("order in status %q cannot be cancelled: %w", order.Status, apperr.ErrStateConflict)
		}
		existing, err := r.Cancellations().GetByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("cancellation %s already exists for order: %w", existing.Code, apperr.ErrDuplicate)
		}

		now := time.Now().UTC()
		c := &domain.Cancellation{
			ID:          uuid.New(),
			Code:        newCode("CAN"),
			OrderID:     order.ID,
			ShopID:      order.ShopID,
			RequestedBy: in.RequestedBy,
			Reason:      in.Reason,
			OtherReason: in.OtherReason,
			Review:      domain.CancellationReview{Status: domain.ReviewPending},
			CreatedAt:   now,
		}
		if err := r.Cancellations().Create(ctx, c); err != nil {
			return err
		}
		entry := domain.StatusEntry{
			Status:  domain.StatusCancelled,
			At:      now,
			Message: "cancellation " + c.Code + " requested",
		}
		if err := r.Orders().SetStatus(ctx, order.ID, domain.StatusCancelled, entry); err != nil {
			return err
		}
		if err := r.Orders().LinkCancellation(ctx, order.ID, c.ID); err != nil {
			return err
		}
		if err := r.Shops().AppendRef(ctx, order.ShopID, domain.RefCancellation, c.ID); err != nil {
			return err
		}

		prev = order.Status
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("cancellation created", "order_id", in.OrderID, "code", out.Code)
	s.publish(ctx, StatusChange{
		OrderID:   in.OrderID,
		From:      prev,
		To:        domain.StatusCancelled,
		Operation: domain.OpCancel,
		At:        out.CreatedAt,
	})
	return out, nil
}

type ReviewCancellationInput struct {
	OrderID    uuid.UUID
	ReviewerID uuid.UUID
	Status     domain.ReviewStatus
	Notes      string
}

func (in ReviewCancellationInput) validate() error {
	if in.OrderID == uuid.Nil || in.ReviewerID == uuid.Nil {
		return fmt.Errorf("order and reviewer ids required: %w", apperr.ErrValidation)
	}
	if !in.Status.Valid() || in.Status == domain.ReviewPending {
		return fmt.Errorf("review status %q: %w", in.Status, apperr.ErrValidation)
	}
	return nil
}

// ReviewCancellation records the shop's verdict on an existing cancellation.
// The order stays Cancelled either way; only the review sub-state changes.
func (s *FulfillmentService) ReviewCancellation(ctx context.Context, in ReviewCancellationInput) (*domain.Cancellation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var out *domain.Cancellation
	err := s.withRetry(ctx, func(r repository.Repos) error {
		order, err := r.Orders().Get(ctx, in.OrderID)
		if err != nil {
			return err
		}
		shop, err := r.Shops().Get(ctx, order.ShopID)
		if err != nil {
			return err
		}
		if shop.OwnerID != in.ReviewerID {
			return fmt.Errorf("reviewer does not own shop %s: %w", shop.ID, apperr.ErrUnauthorized)
		}
		if !domain.CanApply(domain.OpReviewCancel, order.Status) {
			return fmt.Errorf("order in status %q has no cancellation to review: %w", order.Status, apperr.ErrStateConflict)
		}
		c, err := r.Cancellations().GetByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("no cancellation for order %s: %w", order.ID, apperr.ErrNotFound)
		}

		now := time.Now().UTC()
		review := domain.CancellationReview{
			Status:     in.Status,
			ReviewedBy: &in.ReviewerID,
			Notes:      in.Notes,
			ReviewedAt: &now,
		}
		if err := r.Cancellations().UpdateReview(ctx, c.ID, review); err != nil {
			return err
		}
		c.Review = review
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("cancellation reviewed", "order_id", in.OrderID, "status", in.Status)
	return out, nil
}
