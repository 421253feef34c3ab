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

type refundRepository struct {
	tx pgx.Tx
}

func (r *refundRepository) GetRequest(ctx context.Context, id uuid.UUID) (*domain.RefundRequest, error) {
	var rr domain.RefundRequest
	err := r.tx.QueryRow(ctx, `
		SELECT id, code, order_id, customer_id, product_id, color, size, quantity,
		       amount, method,
		       payout_kind, bank_name, account_number, paypal_email, stripe_account,
		       crypto_address, crypto_network, cheque_payee,
		       created_at
		FROM market.refund_requests
		WHERE id = $1
	`, id).Scan(
		&rr.ID, &rr.Code, &rr.OrderID, &rr.CustomerID, &rr.ProductID, &rr.Color, &rr.Size, &rr.Quantity,
		&rr.Amount, &rr.Method,
		&rr.PayoutDetails.Kind, &rr.PayoutDetails.BankName, &rr.PayoutDetails.AccountNumber,
		&rr.PayoutDetails.PayPalEmail, &rr.PayoutDetails.StripeAccount,
		&rr.PayoutDetails.CryptoAddress, &rr.PayoutDetails.CryptoNetwork, &rr.PayoutDetails.ChequePayee,
		&rr.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("refund request %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, mapPgErr(err)
	}
	return &rr, nil
}

func (r *refundRepository) CreateRequest(ctx context.Context, rr *domain.RefundRequest) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO market.refund_requests
			(id, code, order_id, customer_id, product_id, color, size, quantity,
			 amount, method,
			 payout_kind, bank_name, account_number, paypal_email, stripe_account,
			 crypto_address, crypto_network, cheque_payee,
			 created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10,
			$11, $12, $13, $14, $15,
			$16, $17, $18,
			$19)
	`, rr.ID, rr.Code, rr.OrderID, rr.CustomerID, rr.ProductID, rr.Color, rr.Size, rr.Quantity,
		rr.Amount, rr.Method,
		rr.PayoutDetails.Kind, rr.PayoutDetails.BankName, rr.PayoutDetails.AccountNumber,
		rr.PayoutDetails.PayPalEmail, rr.PayoutDetails.StripeAccount,
		rr.PayoutDetails.CryptoAddress, rr.PayoutDetails.CryptoNetwork, rr.PayoutDetails.ChequePayee,
		rr.CreatedAt)
	if err != nil {
		return mapPgErr(err)
	}
	return nil
}

func (r *refundRepository) GetReturn(ctx context.Context, id uuid.UUID) (*domain.ReturnedItem, error) {
	return r.getReturn(ctx, `WHERE id = $1`, id)
}

func (r *refundRepository) GetReturnByRequest(ctx context.Context, refundRequestID uuid.UUID) (*domain.ReturnedItem, error) {
	ri, err := r.getReturn(ctx, `WHERE refund_request_id = $1`, refundRequestID)
	if err != nil && errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	return ri, err
}

func (r *refundRepository) getReturn(ctx context.Context, where string, arg any) (*domain.ReturnedItem, error) {
	var ri domain.ReturnedItem
	err := r.tx.QueryRow(ctx, `
		SELECT id, code, order_id, shop_id, refund_request_id,
		       is_product_returned, condition, refund_status, refund_amount, comments, created_at
		FROM market.returned_items `+where,
		arg,
	).Scan(
		&ri.ID, &ri.Code, &ri.OrderID, &ri.ShopID, &ri.RefundRequestID,
		&ri.IsProductReturned, &ri.Condition, &ri.RefundStatus, &ri.RefundAmount,
		&ri.Comments, &ri.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("returned item: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, mapPgErr(err)
	}
	return &ri, nil
}

func (r *refundRepository) CreateReturn(ctx context.Context, ri *domain.ReturnedItem) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO market.returned_items
			(id, code, order_id, shop_id, refund_request_id,
			 is_product_returned, condition, refund_status, refund_amount, comments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, ri.ID, ri.Code, ri.OrderID, ri.ShopID, ri.RefundRequestID,
		ri.IsProductReturned, ri.Condition, ri.RefundStatus, ri.RefundAmount,
		ri.Comments, ri.CreatedAt)
	if err != nil {
		return mapPgErr(err)
	}
	return nil
}
