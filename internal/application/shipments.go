package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oroshop/fulfillment-service/internal/apperr"
	"github.com/oroshop/fulfillment-service/internal/domain"
	"github.com/oroshop/fulfillment-service/internal/logger"
	"github.com/oroshop/fulfillment-service/internal/pricing"
	"github.com/oroshop/fulfillment-service/internal/repository"
)

type CreateShipmentInput struct {
	OrderID uuid.UUID
	ActorID uuid.UUID

	Provider           string
	ServiceType        pricing.ServiceType
	WeightKg           float64
	InsuranceSupported bool
	TrackingNumber     string
	ContactName        string
	ContactPhone       string
	DeliveryAddress    domain.Address
}

func (in CreateShipmentInput) validate() error {
	if in.OrderID == uuid.Nil || in.ActorID == uuid.Nil {
		return fmt.Errorf("order and actor ids required: %w", apperr.ErrValidation)
	}
	if in.Provider == "" {
		return fmt.Errorf("shipment provider required: %w", apperr.ErrValidation)
	}
	return nil
}

// CreateShipment books the one shipment an order may have and moves the
// order to Shipped. Base price and insurance fee come from the pricing
// calculators; any client-supplied figures are ignored. The insured value is
// the order subtotal.
func (s *FulfillmentService) CreateShipment(ctx context.Context, in CreateShipmentInput) (*domain.Shipment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		out  *domain.Shipment
		prev domain.OrderStatus
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
		if !domain.CanApply(domain.OpShip, order.Status) {
			return fmt.Errorf("order in status %q is not shippable: %w", order.Status, apperr.ErrStateConflict)
		}
		existing, err := r.Shipments().GetByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("shipment %s already exists for order: %w", existing.Code, apperr.ErrDuplicate)
		}

		basePrice, err := pricing.CalculateBaseShippingPrice(in.WeightKg, in.ServiceType)
		if err != nil {
			return err
		}
		var insuranceFee float64
		if in.InsuranceSupported {
			insuranceFee = pricing.CalculateInsuranceFee(order.Subtotal)
		}

		now := time.Now().UTC()
		sh := &domain.Shipment{
			ID:                 uuid.New(),
			Code:               newCode("SHP"),
			OrderID:            order.ID,
			ShopID:             order.ShopID,
			Provider:           in.Provider,
			ServiceType:        string(in.ServiceType),
			WeightKg:           in.WeightKg,
			BasePrice:          basePrice,
			InsuranceSupported: in.InsuranceSupported,
			InsuranceFee:       insuranceFee,
			TrackingNumber:     in.TrackingNumber,
			ContactName:        in.ContactName,
			ContactPhone:       in.ContactPhone,
			DeliveryAddress:    in.DeliveryAddress,
			DeliveryStatus:     domain.DeliveryPreparing,
			CreatedAt:          now,
		}
		if err := r.Shipments().Create(ctx, sh); err != nil {
			return err
		}
		entry := domain.StatusEntry{
			Status:  domain.StatusShipped,
			At:      now,
			Message: "shipment " + sh.Code + " via " + in.Provider,
		}
		if err := r.Orders().SetStatus(ctx, order.ID, domain.StatusShipped, entry); err != nil {
			return err
		}
		if err := r.Orders().LinkShipment(ctx, order.ID, sh.ID); err != nil {
			return err
		}
		if err := r.Shops().AppendRef(ctx, order.ShopID, domain.RefShipment, sh.ID); err != nil {
			return err
		}

		prev = order.Status
		out = sh
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("shipment created", "order_id", in.OrderID, "code", out.Code,
		"base_price", out.BasePrice, "insurance_fee", out.InsuranceFee)
	s.publish(ctx, StatusChange{
		OrderID:   in.OrderID,
		From:      prev,
		To:        domain.StatusShipped,
		Operation: domain.OpShip,
		At:        out.CreatedAt,
	})
	return out, nil
}
