package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sequence describes a prefixed, zero-padded identifier column such as
// TCA000007.  There is no counter table: the highest existing value is the
// source of truth.
type Sequence struct {
	Table  string
	Column string
	Prefix string
	Width  int
}

var (
	ArrangementIDs  = Sequence{Table: "table_chair_arrangement", Column: "Arrangement_ID", Prefix: "TCA", Width: 6}
	TableReserveIDs = Sequence{Table: "table_reserve", Column: "Table_Reserve_ID", Prefix: "TAB", Width: 6}
	AssignmentIDs   = Sequence{Table: "assigned_employee", Column: "Employee_Assign_ID", Prefix: "EAE", Width: 6}
)

// FormatID renders prefix + n zero-padded to width digits.
func FormatID(prefix string, width, n int) string {
	return fmt.Sprintf("%s%0*d", prefix, width, n)
}

// parseSuffix returns the numeric part of id.  A missing prefix, an empty
// suffix or a non-numeric suffix all count as 0.
func parseSuffix(prefix, id string) int {
	if !strings.HasPrefix(id, prefix) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// NextID returns the identifier that follows current.
func NextID(prefix string, width int, current string) string {
	return FormatID(prefix, width, parseSuffix(prefix, current)+1)
}

// Counter hands out consecutive identifiers after a single locked read.
// It is only valid inside the transaction that reserved it.
type Counter struct {
	seq  Sequence
	last int
}

// Next returns the next identifier of the batch.
func (c *Counter) Next() string {
	c.last++
	return FormatID(c.seq.Prefix, c.seq.Width, c.last)
}

// Reserve reads the highest identifier of seq with a locking read and
// returns a Counter positioned after it.  The FOR UPDATE read holds the
// index tail until tx ends, so concurrent creators of the same entity type
// serialize instead of computing the same next value.  Ids share a fixed
// width, so the lexical maximum is the numeric maximum.
func Reserve(ctx context.Context, tx *sql.Tx, seq Sequence) (*Counter, error) {
	q := fmt.Sprintf("SELECT `%s` FROM `%s` WHERE `%s` LIKE ? ORDER BY `%s` DESC LIMIT 1 FOR UPDATE",
		seq.Column, seq.Table, seq.Column, seq.Column)
	var current string
	err := tx.QueryRowContext(ctx, q, seq.Prefix+"%").Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return &Counter{seq: seq, last: parseSuffix(seq.Prefix, current)}, nil
}
