package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-sql-driver/mysql"
)

// maxTries bounds how often a transient failure is retried, counting the
// first attempt.
const maxTries = 3

// isTransient reports whether a read failed at the transport level and can
// simply be run again.
func isTransient(err error) bool {
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn)
}

// isUnsent reports whether a write failed before reaching the server.  Only
// driver.ErrBadConn guarantees that; mysql.ErrInvalidConn may arrive after
// the statement was applied.
func isUnsent(err error) bool {
	return errors.Is(err, driver.ErrBadConn)
}

func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	return b
}

// withRetry runs a read, retrying only transient driver errors.  Business
// errors (ErrNotFound, ErrOutOfStock, ...) and context errors are returned
// as-is on the first occurrence.
func withRetry[T any](ctx context.Context, op func() (T, error)) (T, error) {
	return retryIf(ctx, isTransient, op)
}

// withWriteRetry runs a single-statement write, retrying only when the
// statement never reached the server.
func withWriteRetry[T any](ctx context.Context, op func() (T, error)) (T, error) {
	return retryIf(ctx, isUnsent, op)
}

func retryIf[T any](ctx context.Context, retryable func(error) bool, op func() (T, error)) (T, error) {
	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(newBackOff()), backoff.WithMaxTries(maxTries))
}

// inTx runs fn inside a transaction, retrying the whole transaction on
// transient errors raised before COMMIT.  fn's error rolls the transaction
// back.  A failed COMMIT is never replayed: the server may have applied it.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	_, err := withRetry(ctx, func() (struct{}, error) {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return struct{}{}, err
		}
		committed := false
		defer func() {
			if !committed {
				_ = tx.Rollback()
			}
		}()
		if err := fn(tx); err != nil {
			return struct{}{}, err
		}
		if err := tx.Commit(); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		committed = true
		return struct{}{}, nil
	})
	return err
}
