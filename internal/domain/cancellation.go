package domain

import (
	"time"

	"github.com/google/uuid"
)

type CancellationReason string

const (
	ReasonChangedMind   CancellationReason = "Changed Mind"
	ReasonFoundCheaper  CancellationReason = "Found Cheaper"
	ReasonDeliveryDelay CancellationReason = "Delivery Delay"
	ReasonOrderMistake  CancellationReason = "Order Mistake"
	ReasonOther         CancellationReason = "Other"
)

func (r CancellationReason) Valid() bool {
	switch r {
	case ReasonChangedMind, ReasonFoundCheaper, ReasonDeliveryDelay, ReasonOrderMistake, ReasonOther:
		return true
	}
	return false
}

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "Pending"
	ReviewApproved ReviewStatus = "Approved"
	ReviewRejected ReviewStatus = "Rejected"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

// Cancellation is one-per-order. The shop review mutates the embedded Review
// sub-state in place; the record itself is never replaced.
type Cancellation struct {
	ID          uuid.UUID          `json:"id"`
	Code        string             `json:"code"`
	OrderID     uuid.UUID          `json:"order_id"`
	ShopID      uuid.UUID          `json:"shop_id"`
	RequestedBy uuid.UUID          `json:"requested_by"`
	Reason      CancellationReason `json:"reason"`
	OtherReason string             `json:"other_reason,omitempty"`

	Review CancellationReview `json:"review"`

	CreatedAt time.Time `json:"created_at"`
}

type CancellationReview struct {
	Status     ReviewStatus `json:"status"`
	ReviewedBy *uuid.UUID   `json:"reviewed_by,omitempty"`
	Notes      string       `json:"notes,omitempty"`
	ReviewedAt *time.Time   `json:"reviewed_at,omitempty"`
}
