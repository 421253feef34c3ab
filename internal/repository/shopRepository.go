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

type shopRepository struct {
	tx pgx.Tx
}

func (r *shopRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Shop, error) {
	var s domain.Shop
	err := r.tx.QueryRow(ctx, `
		SELECT id, owner_id, name, net_shop_income, created_at
		FROM market.shops
		WHERE id = $1
	`, id).Scan(&s.ID, &s.OwnerID, &s.Name, &s.NetShopIncome, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("shop %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, mapPgErr(err)
	}

	rows, err := r.tx.Query(ctx, `
		SELECT kind, ref_id
		FROM market.shop_refs
		WHERE shop_id = $1
		ORDER BY created_at
	`, id)
	if err != nil {
		return nil, mapPgErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind domain.ShopRefKind
		var refID uuid.UUID
		if err := rows.Scan(&kind, &refID); err != nil {
			return nil, mapPgErr(err)
		}
		switch kind {
		case domain.RefCancellation:
			s.CancellationIDs = append(s.CancellationIDs, refID)
		case domain.RefShipment:
			s.ShipmentIDs = append(s.ShipmentIDs, refID)
		case domain.RefReturnedItem:
			s.ReturnedItemIDs = append(s.ReturnedItemIDs, refID)
		case domain.RefTransaction:
			s.TransactionIDs = append(s.TransactionIDs, refID)
		}
	}
	if rows.Err() != nil {
		return nil, mapPgErr(rows.Err())
	}
	return &s, nil
}

func (r *shopRepository) SetNetIncome(ctx context.Context, shopID uuid.UUID, balance float64) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE market.shops SET net_shop_income = $2 WHERE id = $1`,
		shopID, balance)
	if err != nil {
		return mapPgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("shop %s: %w", shopID, apperr.ErrNotFound)
	}
	return nil
}

func (r *shopRepository) AppendRef(ctx context.Context, shopID uuid.UUID, kind domain.ShopRefKind, refID uuid.UUID) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO market.shop_refs (shop_id, kind, ref_id)
		VALUES ($1, $2, $3)
	`, shopID, kind, refID)
	if err != nil {
		return mapPgErr(err)
	}
	return nil
}
