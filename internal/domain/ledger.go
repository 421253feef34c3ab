package domain

import (
	"fmt"
	"math"

	"github.com/oroshop/fulfillment-service/internal/apperr"
)

// ApplyLedgerDelta is the single place a shop balance changes. Completed
// payouts and adjustments credit the ledger, completed refunds and
// withdrawals debit it; a transaction in any other status leaves the balance
// alone. A debit below zero fails instead of clamping.
func ApplyLedgerDelta(balance float64, txType TransactionType, status TransactionStatus, amount float64) (float64, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return balance, fmt.Errorf("ledger amount %v: %w", amount, apperr.ErrValidation)
	}
	if status != TxCompleted {
		return balance, nil
	}

	switch txType {
	case TxPayout, TxAdjustment:
		return round2(balance + amount), nil
	case TxRefund, TxWithdrawal:
		next := round2(balance - amount)
		if next < 0 {
			return balance, fmt.Errorf("balance %.2f cannot cover %.2f: %w",
				balance, amount, apperr.ErrInsufficientBalance)
		}
		return next, nil
	default:
		return balance, fmt.Errorf("transaction type %q: %w", txType, apperr.ErrValidation)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
