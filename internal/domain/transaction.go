package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TxPayout     TransactionType = "Payout"
	TxRefund     TransactionType = "Refund"
	TxWithdrawal TransactionType = "Withdrawal"
	TxAdjustment TransactionType = "Adjustment"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TxPayout, TxRefund, TxWithdrawal, TxAdjustment:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TxPending   TransactionStatus = "Pending"
	TxCompleted TransactionStatus = "Completed"
	TxFailed    TransactionStatus = "Failed"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TxPending, TxCompleted, TxFailed:
		return true
	}
	return false
}

// Transaction is an immutable ledger entry. Type-specific references: Payout
// carries OrderID and PlatformFees; Refund carries RefundRequestID,
// ReturnedItemID and WithdrawalID; Withdrawal carries WithdrawalID.
type Transaction struct {
	ID     uuid.UUID       `json:"id"`
	Code   string          `json:"code"`
	ShopID uuid.UUID       `json:"shop_id"`
	Type   TransactionType `json:"type"`

	Amount   float64           `json:"amount"`
	Currency string            `json:"currency"`
	Method   string            `json:"method"`
	Provider string            `json:"provider"`
	Status   TransactionStatus `json:"status"`

	OrderID         *uuid.UUID `json:"order_id,omitempty"`
	PlatformFees    float64    `json:"platform_fees,omitempty"`
	RefundRequestID *uuid.UUID `json:"refund_request_id,omitempty"`
	ReturnedItemID  *uuid.UUID `json:"returned_item_id,omitempty"`
	WithdrawalID    *uuid.UUID `json:"withdrawal_id,omitempty"`

	ProcessedBy uuid.UUID `json:"processed_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Fingerprint is the idempotency tuple. Two transactions with equal
// fingerprints are duplicates; posting the second one fails before any write.
func (t Transaction) Fingerprint() string {
	ref := func(id *uuid.UUID) string {
		if id == nil {
			return "-"
		}
		return id.String()
	}
	return strings.Join([]string{
		t.ShopID.String(),
		string(t.Type),
		ref(t.OrderID),
		ref(t.RefundRequestID),
		ref(t.ReturnedItemID),
		ref(t.WithdrawalID),
		fmt.Sprintf("%.2f", t.Amount),
		t.Currency,
		t.Method,
		t.Provider,
		t.ProcessedBy.String(),
	}, "|")
}

type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "Pending"
	WithdrawalCompleted WithdrawalStatus = "Completed"
	WithdrawalRejected  WithdrawalStatus = "Rejected"
)

// Withdrawal is a payout request against the ledger; Refund and Withdrawal
// transactions reference it.
type Withdrawal struct {
	ID       uuid.UUID        `json:"id"`
	Code     string           `json:"code"`
	ShopID   uuid.UUID        `json:"shop_id"`
	Amount   float64          `json:"amount"`
	Currency string           `json:"currency"`
	Method   string           `json:"method"`
	Status   WithdrawalStatus `json:"status"`

	RequestedBy uuid.UUID `json:"requested_by"`
	CreatedAt   time.Time `json:"created_at"`
}
