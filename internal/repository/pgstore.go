package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oroshop/fulfillment-service/internal/apperr"
	"github.com/oroshop/fulfillment-service/internal/logger"
)

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// WithinTx runs fn inside a serializable transaction. Serializable isolation
// is what makes the read-validate-write sequence of each operation appear
// atomic against concurrent operations on the same order or shop.
func (s *PgStore) WithinTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin: %w", mapPgErr(err))
	}

	defer func() {
		if tx != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				logger.Warn("tx rollback failed", "err", rbErr)
			}
		}
	}()

	if err := fn(&pgRepos{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", mapPgErr(err))
	}
	tx = nil
	return nil
}

// mapPgErr folds serialization and deadlock failures into the retryable
// conflict error; everything else is a plain store failure.
func mapPgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%v: %w", pgErr.Code, apperr.ErrTxConflict)
		case "23505":
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, apperr.ErrDuplicate)
		}
	}
	return fmt.Errorf("%v: %w", err, apperr.ErrStore)
}

type pgRepos struct {
	tx pgx.Tx
}

func (r *pgRepos) Orders() OrderRepo               { return &orderRepository{tx: r.tx} }
func (r *pgRepos) Shops() ShopRepo                 { return &shopRepository{tx: r.tx} }
func (r *pgRepos) Cancellations() CancellationRepo { return &cancellationRepository{tx: r.tx} }
func (r *pgRepos) Shipments() ShipmentRepo         { return &shipmentRepository{tx: r.tx} }
func (r *pgRepos) Refunds() RefundRepo             { return &refundRepository{tx: r.tx} }
func (r *pgRepos) Transactions() TransactionRepo   { return &transactionRepository{tx: r.tx} }
