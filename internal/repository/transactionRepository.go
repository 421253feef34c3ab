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

type transactionRepository struct {
	tx pgx.Tx
}

func (r *transactionRepository) ExistsFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM market.transactions WHERE fingerprint = $1)`,
		fingerprint,
	).Scan(&exists)
	if err != nil {
		return false, mapPgErr(err)
	}
	return exists, nil
}

func (r *transactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO market.transactions
			(id, code, shop_id, type, amount, currency, method, provider, status,
			 order_id, platform_fees, refund_request_id, returned_item_id, withdrawal_id,
			 processed_by, fingerprint, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14,
			$15, $16, $17)
	`, t.ID, t.Code, t.ShopID, t.Type, t.Amount, t.Currency, t.Method, t.Provider, t.Status,
		t.OrderID, t.PlatformFees, t.RefundRequestID, t.ReturnedItemID, t.WithdrawalID,
		t.ProcessedBy, t.Fingerprint(), t.CreatedAt)
	if err != nil {
		return mapPgErr(err)
	}
	return nil
}

func (r *transactionRepository) GetWithdrawal(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	err := r.tx.QueryRow(ctx, `
		SELECT id, code, shop_id, amount, currency, method, status, requested_by, created_at
		FROM market.withdrawals
		WHERE id = $1
	`, id).Scan(&w.ID, &w.Code, &w.ShopID, &w.Amount, &w.Currency, &w.Method,
		&w.Status, &w.RequestedBy, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("withdrawal %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, mapPgErr(err)
	}
	return &w, nil
}

func (r *transactionRepository) CreateWithdrawal(ctx context.Context, w *domain.Withdrawal) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO market.withdrawals
			(id, code, shop_id, amount, currency, method, status, requested_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, w.ID, w.Code, w.ShopID, w.Amount, w.Currency, w.Method, w.Status, w.RequestedBy, w.CreatedAt)
	if err != nil {
		return mapPgErr(err)
	}
	return nil
}

func (r *transactionRepository) SetWithdrawalStatus(ctx context.Context, id uuid.UUID, status domain.WithdrawalStatus) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE market.withdrawals SET status = $2 WHERE id = $1`,
		id, status)
	if err != nil {
		return mapPgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("withdrawal %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}
