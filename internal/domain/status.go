package domain

type OrderStatus string

const (
	StatusPending          OrderStatus = "Pending"
	StatusProcessing       OrderStatus = "Processing"
	StatusShipped          OrderStatus = "Shipped"
	StatusDelivered        OrderStatus = "Delivered"
	StatusCancelled        OrderStatus = "Cancelled"
	StatusRefundRequested  OrderStatus = "Refund Requested"
	StatusAwaitingReturn   OrderStatus = "Awaiting Item Return"
	StatusReturned         OrderStatus = "Returned"
	StatusRefundProcessing OrderStatus = "Refund Processing"
	StatusRefundRejected   OrderStatus = "Refund Rejected"
	StatusRefundAccepted   OrderStatus = "Refund Accepted"
	StatusRefunded         OrderStatus = "Refunded"
)

// Operation names a guarded order mutation.
type Operation string

const (
	OpCancel         Operation = "cancel"
	OpReviewCancel   Operation = "review_cancel"
	OpShip           Operation = "ship"
	OpRequestRefund  Operation = "request_refund"
	OpReturnItem     Operation = "return_item"
	OpCompleteRefund Operation = "complete_refund"
)

// allowedFrom is the single transition table for the whole engine. The lists
// mirror the storefront's per-controller status checks; in particular Pending
// is NOT shippable and shipping is permitted from the refund-track statuses
// left over by the original blacklist. Product has been asked to confirm both.
var allowedFrom = map[Operation][]OrderStatus{
	OpCancel: {
		StatusPending, StatusProcessing, StatusShipped, StatusDelivered,
	},
	OpReviewCancel: {
		StatusCancelled,
	},
	OpShip: {
		StatusProcessing, StatusAwaitingReturn, StatusRefundRejected, StatusRefundAccepted,
	},
	OpRequestRefund: {
		StatusDelivered,
	},
	OpReturnItem: {
		StatusRefundRequested, StatusAwaitingReturn,
	},
	OpCompleteRefund: {
		StatusRefundRequested, StatusAwaitingReturn, StatusReturned,
		StatusRefundProcessing, StatusRefundAccepted,
	},
}

// CanApply reports whether op may run against an order in status cur.
func CanApply(op Operation, cur OrderStatus) bool {
	for _, s := range allowedFrom[op] {
		if s == cur {
			return true
		}
	}
	return false
}

// Terminal statuses admit no further transitions.
func IsTerminal(s OrderStatus) bool {
	return s == StatusCancelled || s == StatusRefunded
}

type ItemCondition string

const (
	ConditionNew     ItemCondition = "New"
	ConditionUsed    ItemCondition = "Used"
	ConditionDamaged ItemCondition = "Damaged"
)

func (c ItemCondition) Valid() bool {
	switch c {
	case ConditionNew, ConditionUsed, ConditionDamaged:
		return true
	}
	return false
}

type RefundDecision string

const (
	RefundDecisionAccepted RefundDecision = "Accepted"
	RefundDecisionRejected RefundDecision = "Rejected"
	RefundDecisionPending  RefundDecision = "Pending"
)

func (d RefundDecision) Valid() bool {
	switch d {
	case RefundDecisionAccepted, RefundDecisionRejected, RefundDecisionPending:
		return true
	}
	return false
}

// ReturnOutcome computes the order status resulting from a returned-item
// disposition. Accepted only for a physically returned item in New condition;
// a rejected decision or a Used/Damaged item rejects the refund; anything
// else stays in processing.
func ReturnOutcome(returned bool, condition ItemCondition, decision RefundDecision) OrderStatus {
	if returned && condition == ConditionNew && decision == RefundDecisionAccepted {
		return StatusRefundAccepted
	}
	if decision == RefundDecisionRejected || condition == ConditionUsed || condition == ConditionDamaged {
		return StatusRefundRejected
	}
	return StatusRefundProcessing
}

// RefundExecuted reports whether the outcome debits the ledger and restores
// stock: the item came back, in New condition, and the refund was accepted.
func RefundExecuted(returned bool, condition ItemCondition, decision RefundDecision) bool {
	return returned && condition == ConditionNew && decision == RefundDecisionAccepted
}
