package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrBegin marks a failure to acquire a connection or open a transaction.
	ErrBegin = errors.New("begin transaction")
	// ErrCommit marks a failure while committing an otherwise successful sequence.
	ErrCommit = errors.New("commit transaction")
)

// InTx runs fn inside a transaction on a dedicated pooled connection.  The
// transaction is committed only when fn returns nil; any error (or panic)
// rolls it back.  The connection goes back to the pool in every case.
// Errors returned by fn are passed through untouched.
func InTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBegin, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommit, err)
	}
	committed = true
	return nil
}
