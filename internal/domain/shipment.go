package domain

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	DeliveryPreparing DeliveryStatus = "Preparing"
	DeliveryInTransit DeliveryStatus = "In Transit"
	DeliveryDelivered DeliveryStatus = "Delivered"
	DeliveryFailed    DeliveryStatus = "Failed"
)

// Shipment is one-per-order. BasePrice and InsuranceFee are computed by the
// pricing calculators at creation; caller-supplied values are ignored.
type Shipment struct {
	ID      uuid.UUID `json:"id"`
	Code    string    `json:"code"`
	OrderID uuid.UUID `json:"order_id"`
	ShopID  uuid.UUID `json:"shop_id"`

	Provider    string  `json:"provider"`
	ServiceType string  `json:"service_type"`
	WeightKg    float64 `json:"weight_kg"`

	BasePrice          float64 `json:"base_price"`
	InsuranceSupported bool    `json:"insurance_supported"`
	InsuranceFee       float64 `json:"insurance_fee"`

	TrackingNumber string  `json:"tracking_number"`
	ContactName    string  `json:"contact_name"`
	ContactPhone   string  `json:"contact_phone"`
	DeliveryAddress Address `json:"delivery_address"`

	DeliveryStatus DeliveryStatus `json:"delivery_status"`

	CreatedAt time.Time `json:"created_at"`
}
