package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type Order struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	ShopID     uuid.UUID `json:"shop_id"`

	Items           []OrderItem `json:"items"`
	ShippingAddress Address     `json:"shipping_address"`
	Payment         PaymentData `json:"payment"`

	Subtotal    float64 `json:"subtotal"`
	ShippingFee float64 `json:"shipping_fee"`
	Tax         float64 `json:"tax"`
	ServiceFee  float64 `json:"service_fee"`
	Discount    float64 `json:"discount"`
	// GrandTotal = Subtotal + Tax + ShippingFee + ServiceFee - Discount,
	// fixed at checkout and never recomputed.
	GrandTotal float64 `json:"grand_total"`

	Status        OrderStatus   `json:"order_status"`
	StatusHistory []StatusEntry `json:"status_history"`

	CancellationID *uuid.UUID `json:"cancellation_id,omitempty"`
	ShipmentID     *uuid.UUID `json:"shipment_id,omitempty"`
	TransactionID  *uuid.UUID `json:"transaction_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type OrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	ShopID    uuid.UUID `json:"shop_id"`
	Color     string    `json:"color"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	LineTotal float64   `json:"line_total"`
}

type Address struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Zip     string `json:"zip"`
	City    string `json:"city"`
	Street  string `json:"street"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

type PaymentData struct {
	Method     string          `json:"method"`
	Provider   string          `json:"provider"`
	Status     PaymentStatus   `json:"payment_status"`
	AmountPaid float64         `json:"amount_paid"`
	Currency   string          `json:"currency"`
	Refunds    []RefundReceipt `json:"refunds,omitempty"`
}

// RefundReceipt is the denormalized entry appended to payment.refunds when a
// Refund transaction completes. Append-only, like the status history.
type RefundReceipt struct {
	ID              uuid.UUID `json:"id"`
	RefundRequestID uuid.UUID `json:"refund_request_id"`
	ReturnedItemID  uuid.UUID `json:"returned_item_id"`
	WithdrawalID    uuid.UUID `json:"withdrawal_id"`
	TransactionID   uuid.UUID `json:"transaction_id"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	Method          string    `json:"method"`
	ProcessedBy     uuid.UUID `json:"processed_by"`
	At              time.Time `json:"at"`
}

type StatusEntry struct {
	Status  OrderStatus `json:"status"`
	At      time.Time   `json:"at"`
	Message string      `json:"message,omitempty"`
}

// ProductVariant tracks per color/size stock for a product. Refund execution
// restores Stock and decrements SoldOut when a returned item is accepted.
type ProductVariant struct {
	ProductID uuid.UUID `json:"product_id"`
	Color     string    `json:"color"`
	Size      string    `json:"size"`
	Stock     int       `json:"stock"`
	SoldOut   int       `json:"sold_out"`
}
