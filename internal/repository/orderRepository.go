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

type orderRepository struct {
	tx pgx.Tx
}

func (r *orderRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	err := r.tx.QueryRow(ctx, `
		SELECT id, customer_id, shop_id,
		       ship_name, ship_phone, ship_zip, ship_city, ship_street, ship_region, ship_country,
		       payment_method, payment_provider, payment_status, amount_paid, currency,
		       subtotal, shipping_fee, tax, service_fee, discount, grand_total,
		       order_status, cancellation_id, shipment_id, transaction_id, created_at
		FROM market.orders
		WHERE id = $1
	`, id).Scan(
		&o.ID, &o.CustomerID, &o.ShopID,
		&o.ShippingAddress.Name, &o.ShippingAddress.Phone, &o.ShippingAddress.Zip,
		&o.ShippingAddress.City, &o.ShippingAddress.Street, &o.ShippingAddress.Region,
		&o.ShippingAddress.Country,
		&o.Payment.Method, &o.Payment.Provider, &o.Payment.Status, &o.Payment.AmountPaid, &o.Payment.Currency,
		&o.Subtotal, &o.ShippingFee, &o.Tax, &o.ServiceFee, &o.Discount, &o.GrandTotal,
		&o.Status, &o.CancellationID, &o.ShipmentID, &o.TransactionID, &o.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, mapPgErr(err)
	}

	rows, err := r.tx.Query(ctx, `
		SELECT product_id, shop_id, color, size, quantity, unit_price, line_total
		FROM market.order_items
		WHERE order_id = $1
		ORDER BY line_no
	`, id)
	if err != nil {
		return nil, mapPgErr(err)
	}
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductID, &it.ShopID, &it.Color, &it.Size,
			&it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			rows.Close()
			return nil, mapPgErr(err)
		}
		o.Items = append(o.Items, it)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, mapPgErr(rows.Err())
	}

	rows, err = r.tx.Query(ctx, `
		SELECT status, at, message
		FROM market.order_status_history
		WHERE order_id = $1
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, mapPgErr(err)
	}
	for rows.Next() {
		var e domain.StatusEntry
		if err := rows.Scan(&e.Status, &e.At, &e.Message); err != nil {
			rows.Close()
			return nil, mapPgErr(err)
		}
		o.StatusHistory = append(o.StatusHistory, e)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, mapPgErr(rows.Err())
	}

	rows, err = r.tx.Query(ctx, `
		SELECT id, refund_request_id, returned_item_id, withdrawal_id, transaction_id,
		       amount, currency, method, processed_by, at
		FROM market.order_refund_receipts
		WHERE order_id = $1
		ORDER BY at
	`, id)
	if err != nil {
		return nil, mapPgErr(err)
	}
	for rows.Next() {
		var rc domain.RefundReceipt
		if err := rows.Scan(&rc.ID, &rc.RefundRequestID, &rc.ReturnedItemID, &rc.WithdrawalID,
			&rc.TransactionID, &rc.Amount, &rc.Currency, &rc.Method, &rc.ProcessedBy, &rc.At); err != nil {
			rows.Close()
			return nil, mapPgErr(err)
		}
		o.Payment.Refunds = append(o.Payment.Refunds, rc)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, mapPgErr(rows.Err())
	}

	return &o, nil
}

func (r *orderRepository) SetStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus, entry domain.StatusEntry) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE market.orders SET order_status = $2 WHERE id = $1`,
		orderID, status)
	if err != nil {
		return mapPgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
	}

	_, err = r.tx.Exec(ctx, `
		INSERT INTO market.order_status_history (order_id, status, at, message)
		VALUES ($1, $2, $3, $4)
	`, orderID, entry.Status, entry.At, entry.Message)
	if err != nil {
		return mapPgErr(err)
	}
	return nil
}

func (r *orderRepository) LinkCancellation(ctx context.Context, orderID, cancellationID uuid.UUID) error {
	return r.link(ctx, orderID, "cancellation_id", cancellationID)
}

func (r *orderRepository) LinkShipment(ctx context.Context, orderID, shipmentID uuid.UUID) error {
	return r.link(ctx, orderID, "shipment_id", shipmentID)
}

func (r *orderRepository) LinkTransaction(ctx context.Context, orderID, transactionID uuid.UUID) error {
	return r.link(ctx, orderID, "transaction_id", transactionID)
}

func (r *orderRepository) link(ctx context.Context, orderID uuid.UUID, column string, refID uuid.UUID) error {
	_, err := r.tx.Exec(ctx,
		fmt.Sprintf(`UPDATE market.orders SET %s = $2 WHERE id = $1`, column),
		orderID, refID)
	if err != nil {
		return mapPgErr(err)
	}
	return nil
}

func (r *orderRepository) SetPaymentStatus(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE market.orders SET payment_status = $2 WHERE id = $1`,
		orderID, status)
	if err != nil {
		return mapPgErr(err)
	}
	return nil
}

func (r *orderRepository) AppendRefundReceipt(ctx context.Context, orderID uuid.UUID, receipt domain.RefundReceipt) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO market.order_refund_receipts
			(id, order_id, refund_request_id, returned_item_id, withdrawal_id, transaction_id,
			 amount, currency, method, processed_by, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, receipt.ID, orderID, receipt.RefundRequestID, receipt.ReturnedItemID, receipt.WithdrawalID,
		receipt.TransactionID, receipt.Amount, receipt.Currency, receipt.Method,
		receipt.ProcessedBy, receipt.At)
	if err != nil {
		return mapPgErr(err)
	}
	return nil
}

func (r *orderRepository) RestoreStock(ctx context.Context, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`
			UPDATE market.product_variants
			SET stock = stock + $4,
			    sold_out = GREATEST(sold_out - $4, 0)
			WHERE product_id = $1 AND color = $2 AND size = $3
		`, it.ProductID, it.Color, it.Size, it.Quantity)
	}
	br := r.tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapPgErr(err)
	}
	return nil
}
