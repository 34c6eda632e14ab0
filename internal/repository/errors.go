// Package repository holds the event composition engine: the multi-table
// aggregates of an event (bar, table/chair arrangement, staff assignments),
// the sequential identifier generator and the dependency-ordered deletes.
//
// Failures are reported with one of the sentinel kinds below so that
// handlers can tell "not found" from "conflict" from a transient failure
// without inspecting driver errors.
package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/venue-booking/internal/database"
)

var (
	// ErrValidation is returned when a payload misses required fields.  It
	// is always raised before any database call.
	ErrValidation = errors.New("validation")
	// ErrNotFound is returned when the target row or a required parent row
	// does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a generated identifier collides or a
	// referential constraint blocks the write.
	ErrConflict = errors.New("conflict")
	// ErrTransaction is returned when a multi-statement sequence fails
	// part way; the transaction has been rolled back.
	ErrTransaction = errors.New("transaction failed")
	// ErrInfrastructure is returned when no connection could be obtained or
	// the connection was lost.
	ErrInfrastructure = errors.New("infrastructure")
)

// Error pairs a kind with a human readable message.  The underlying cause,
// when present, stays reachable through errors.Is and errors.As.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Message returns the human readable part of err when it carries one.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return err.Error()
}

func newErr(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error   { return newErr(ErrNotFound, format, args...) }
func conflict(format string, args ...any) error   { return newErr(ErrConflict, format, args...) }
func validation(format string, args ...any) error { return newErr(ErrValidation, format, args...) }

// MySQL error numbers we translate into conflicts.
const (
	errDupEntry        = 1062
	errRowIsReferenced = 1451
	errNoReferencedRow = 1452
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

// classify turns a raw database error into a typed one.  Errors that are
// already typed pass through unchanged.  inTx tells whether the failure
// happened in the middle of a transaction.
func classify(err error, inTx bool, msg string) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errDupEntry:
			return &Error{Kind: ErrConflict, Msg: msg + ": duplicate identifier", Err: err}
		case errRowIsReferenced, errNoReferencedRow:
			return &Error{Kind: ErrConflict, Msg: msg + ": referential constraint", Err: err}
		case errLockWaitTimeout, errDeadlock:
			return &Error{Kind: ErrTransaction, Msg: msg + ": lock contention, retry", Err: err}
		}
	}
	switch {
	case errors.Is(err, database.ErrBegin),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, mysql.ErrInvalidConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: ErrInfrastructure, Msg: msg, Err: err}
	case errors.Is(err, database.ErrCommit):
		return &Error{Kind: ErrTransaction, Msg: msg, Err: err}
	}
	if inTx {
		return &Error{Kind: ErrTransaction, Msg: msg, Err: err}
	}
	return &Error{Kind: ErrInfrastructure, Msg: msg, Err: err}
}
