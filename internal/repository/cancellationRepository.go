package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oroshop/fulfillment-service/internal/apperr"
	"github.com/oroshop/fulfillment-service/internal/domain"
)

type cancellationRepository struct {
	tx pgx.Tx
}

func (r *cancellationRepository) GetByOrder(ctx context.Context, orderID uuid.UUID) (*domain.Cancellation, error) {
	var c domain.Cancellation
	err := r.tx.QueryRow(ctx, `
		SELECT id, code, order_id, shop_id, requested_by, reason, other_reason,
		       review_status, reviewed_by, review_notes, reviewed_at, created_at
		FROM market.cancellations
		WHERE order_id = $1
	`, orderID).Scan(
		&c.ID, &c.Code, &c.OrderID, &c.ShopID, &c.RequestedBy, &c.Reason, &c.OtherReason,
		&c.Review.Status, &c.Review.ReviewedBy, &c.Review.Notes, &c.Review.ReviewedAt, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapPgErr(err)
	}
	return &c, nil
}

func (r *cancellationRepository) Create(ctx context.Context, c *domain.Cancellation) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO market.cancellations
			(id, code, order_id, shop_id, requested_by, reason, other_reason,
			 review_status, review_notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, c.ID, c.Code, c.OrderID, c.ShopID, c.RequestedBy, c.Reason, c.OtherReason,
		c.Review.Status, c.Review.Notes, c.CreatedAt)
	if err != nil {
		return mapPgErr(err)
	}
	return nil
}

func (r *cancellationRepository) UpdateReview(ctx context.Context, id uuid.UUID, review domain.CancellationReview) error {
	tag, err := r.tx.Exec(ctx, `
		UPDATE market.cancellations
		SET review_status = $2, reviewed_by = $3, review_notes = $4, reviewed_at = $5
		WHERE id = $1
	`, id, review.Status, review.ReviewedBy, review.Notes, review.ReviewedAt)
	if err != nil {
		return mapPgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cancellation %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}
