package domain

import (
	"time"

	"github.com/google/uuid"
)

// Shop carries the ledger. NetShopIncome is only ever replaced with a value
// produced by ApplyLedgerDelta inside the write protocol; nothing else may
// touch it.
type Shop struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`
	Name    string    `json:"name"`

	NetShopIncome float64 `json:"net_shop_income"`

	CancellationIDs []uuid.UUID `json:"cancellation_ids,omitempty"`
	ShipmentIDs     []uuid.UUID `json:"shipment_ids,omitempty"`
	ReturnedItemIDs []uuid.UUID `json:"returned_item_ids,omitempty"`
	TransactionIDs  []uuid.UUID `json:"transaction_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ShopRefKind names the append-only reference collections on the shop.
type ShopRefKind string

const (
	RefCancellation ShopRefKind = "cancellation"
	RefShipment     ShopRefKind = "shipment"
	RefReturnedItem ShopRefKind = "returned_item"
	RefTransaction  ShopRefKind = "transaction"
)
