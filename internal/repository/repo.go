package repository

import (
	"context"
	"database/sql"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/venue-booking/internal/database"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// inTx runs fn in a scoped transaction and types whatever comes out of it.
// Raw errors returned by fn become ErrTransaction (or ErrConflict for
// constraint violations); typed errors pass through unchanged.
func inTx(ctx context.Context, db *sql.DB, msg string, fn func(tx *sql.Tx) error) error {
	return classify(database.InTx(ctx, db, fn), true, msg)
}

// maxLockRetries bounds how often a transaction that lost a deadlock or a
// lock wait is re-run from the start.
const maxLockRetries = 8

// inTxRetry is inTx for transactions whose locking reads can deadlock with a
// concurrent writer: two readers of a sequence tail both hold the gap above
// the highest id, and aggregate deletes lock rows across many tables.  InnoDB
// aborts one side; that side is re-run after a short jittered backoff.
func inTxRetry(ctx context.Context, db *sql.DB, msg string, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = database.InTx(ctx, db, fn)
		if err == nil || attempt == maxLockRetries || !lockContention(err) {
			break
		}
		select {
		case <-ctx.Done():
			return classify(ctx.Err(), false, msg)
		case <-time.After(backoff(attempt)):
		}
	}
	return classify(err, true, msg)
}

func lockContention(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == errDeadlock || me.Number == errLockWaitTimeout
}

func backoff(attempt int) time.Duration {
	base := time.Duration(attempt*attempt) * 5 * time.Millisecond
	return base + rand.N(10*time.Millisecond)
}

// eventNameExpr derives an event's label from whichever variant row exists.
// It expects the wedding and customevent tables aliased w and c, and must
// stay in line with model.WeddingName.
const eventNameExpr = `CASE WHEN w.Event_ID IS NOT NULL
                            THEN CONCAT(w.Groom_Name, ' & ', w.Bride_Name, ' Wedding')
                            ELSE c.Event_Name END`

// customerNameExpr expects the customer table aliased cu.
const customerNameExpr = `CONCAT(cu.First_Name, ' ', cu.Last_Name)`

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// orEmpty is the fallback for omitted string fields on update.
func orEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// orNull is the fallback for omitted time fields on update.
func orNull(p *string) sql.NullString {
	if p == nil || strings.TrimSpace(*p) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
