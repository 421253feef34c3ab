package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oroshop/fulfillment-service/internal/domain"
)

type shipmentRepository struct {
	tx pgx.Tx
}

func (r *shipmentRepository) GetByOrder(ctx context.Context, orderID uuid.UUID) (*domain.Shipment, error) {
	var s domain.Shipment
	err := r.tx.QueryRow(ctx, `
		SELECT id, code, order_id, shop_id, provider, service_type, weight_kg,
		       base_price, insurance_supported, insurance_fee,
		       tracking_number, contact_name, contact_phone,
		       addr_name, addr_phone, addr_zip, addr_city, addr_street, addr_region, addr_country,
		       delivery_status, created_at
		FROM market.shipments
		WHERE order_id = $1
	`, orderID).Scan(
		&s.ID, &s.Code, &s.OrderID, &s.ShopID, &s.Provider, &s.ServiceType, &s.WeightKg,
		&s.BasePrice, &s.InsuranceSupported, &s.InsuranceFee,
		&s.TrackingNumber, &s.ContactName, &s.ContactPhone,
		&s.DeliveryAddress.Name, &s.DeliveryAddress.Phone, &s.DeliveryAddress.Zip,
		&s.DeliveryAddress.City, &s.DeliveryAddress.Street, &s.DeliveryAddress.Region,
		&s.DeliveryAddress.Country,
		&s.DeliveryStatus, &s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapPgErr(err)
	}
	return &s, nil
}

func (r *shipmentRepository) Create(ctx context.Context, s *domain.Shipment) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO market.shipments
			(id, code, order_id, shop_id, provider, service_type, weight_kg,
			 base_price, insurance_supported, insurance_fee,
			 tracking_number, contact_name, contact_phone,
			 addr_name, addr_phone, addr_zip, addr_city, addr_street, addr_region, addr_country,
			 delivery_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10,
			$11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20,
			$21, $22)
	`, s.ID, s.Code, s.OrderID, s.ShopID, s.Provider, s.ServiceType, s.WeightKg,
		s.BasePrice, s.InsuranceSupported, s.InsuranceFee,
		s.TrackingNumber, s.ContactName, s.ContactPhone,
		s.DeliveryAddress.Name, s.DeliveryAddress.Phone, s.DeliveryAddress.Zip,
		s.DeliveryAddress.City, s.DeliveryAddress.Street, s.DeliveryAddress.Region,
		s.DeliveryAddress.Country,
		s.DeliveryStatus, s.CreatedAt)
	if err != nil {
		return mapPgErr(err)
	}
	return nil
}
