// Package application implements the transactional write protocol: every
// business operation validates, writes its satellite record, updates the
// order and the shop ledger inside one store transaction, and either commits
// all of it or none of it.
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/oroshop/fulfillment-service/internal/apperr"
	"github.com/oroshop/fulfillment-service/internal/domain"
	"github.com/oroshop/fulfillment-service/internal/logger"
	"github.com/oroshop/fulfillment-service/internal/repository"
)

// StatusChange is emitted after a committed order transition.
type StatusChange struct {
	OrderID   uuid.UUID          `json:"order_id"`
	From      domain.OrderStatus `json:"from"`
	To        domain.OrderStatus `json:"to"`
	Operation domain.Operation   `json:"operation"`
	At        time.Time          `json:"at"`
}

type EventPublisher interface {
	PublishStatusChange(ctx context.Context, evt StatusChange) error
}

type FulfillmentService struct {
	store  repository.Store
	events EventPublisher

	retryAttempts uint64
	retryBase     time.Duration
}

func NewFulfillmentService(store repository.Store, events EventPublisher, retryAttempts uint64, retryBase time.Duration) *FulfillmentService {
	if retryBase <= 0 {
		retryBase = 25 * time.Millisecond
	}
	return &FulfillmentService{
		store:         store,
		events:        events,
		retryAttempts: retryAttempts,
		retryBase:     retryBase,
	}
}

// withRetry runs one protocol transaction, retrying with exponential backoff
// only on store-level conflicts. Logical failures (validation, state
// conflicts, balance) are never retried.
func (s *FulfillmentService) withRetry(ctx context.Context, fn func(repository.Repos) error) error {
	b := retry.WithMaxRetries(s.retryAttempts, retry.NewExponential(s.retryBase))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := s.store.WithinTx(ctx, fn)
		if errors.Is(err, apperr.ErrTxConflict) {
			logger.Warn("store conflict, will retry", "err", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (s *FulfillmentService) publish(ctx context.Context, evt StatusChange) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishStatusChange(ctx, evt); err != nil {
		// events are outside the transaction boundary; a publish failure
		// never unwinds a committed operation
		logger.Warn("status event publish failed", "order_id", evt.OrderID, "err", err)
	}
}

// newCode issues a short human-readable reference for a satellite record.
func newCode(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.New().String()[:8])
}

// GetOrder loads the order aggregate with its history and refund receipts.
func (s *FulfillmentService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("order id required: %w", apperr.ErrValidation)
	}
	var order *domain.Order
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		order, err = r.Orders().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
