package domain

import (
	"time"

	"github.com/google/uuid"
)

type PayoutKind string

const (
	PayoutBank   PayoutKind = "Bank"
	PayoutPayPal PayoutKind = "PayPal"
	PayoutStripe PayoutKind = "Stripe"
	PayoutCrypto PayoutKind = "Crypto"
	PayoutCheque PayoutKind = "Cheque"
)

func (k PayoutKind) Valid() bool {
	switch k {
	case PayoutBank, PayoutPayPal, PayoutStripe, PayoutCrypto, PayoutCheque:
		return true
	}
	return false
}

// PayoutDetails is the per-kind destination for a refund. Only the fields for
// the selected Kind are populated.
type PayoutDetails struct {
	Kind          PayoutKind `json:"kind"`
	BankName      string     `json:"bank_name,omitempty"`
	AccountNumber string     `json:"account_number,omitempty"`
	PayPalEmail   string     `json:"paypal_email,omitempty"`
	StripeAccount string     `json:"stripe_account,omitempty"`
	CryptoAddress string     `json:"crypto_address,omitempty"`
	CryptoNetwork string     `json:"crypto_network,omitempty"`
	ChequePayee   string     `json:"cheque_payee,omitempty"`
}

// RefundRequest is the customer's ask to be refunded for one line item. It
// must be recorded against the order before any ReturnedItem can reference it.
type RefundRequest struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`

	ProductID uuid.UUID `json:"product_id"`
	Color     string    `json:"color"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`

	Amount        float64       `json:"amount"`
	Method        string        `json:"method"`
	PayoutDetails PayoutDetails `json:"payout_details"`

	CreatedAt time.Time `json:"created_at"`
}

// ReturnedItem is the shop's disposition of a physical return. At most one
// exists per RefundRequest.
type ReturnedItem struct {
	ID              uuid.UUID `json:"id"`
	Code            string    `json:"code"`
	OrderID         uuid.UUID `json:"order_id"`
	ShopID          uuid.UUID `json:"shop_id"`
	RefundRequestID uuid.UUID `json:"refund_request_id"`

	IsProductReturned bool           `json:"is_product_returned"`
	Condition         ItemCondition  `json:"condition"`
	RefundStatus      RefundDecision `json:"refund_status"`
	RefundAmount      float64        `json:"refund_amount"`
	Comments          string         `json:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
