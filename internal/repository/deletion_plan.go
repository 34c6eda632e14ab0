package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// keySource names which collected key a deletion step filters on.
type keySource int

const (
	byEvent keySource = iota
	byBooking
	byBar
	byArrangement
	byReservations
	byAssignments
)

// cascadeKeys are the identifiers gathered (under lock) before a cascade
// runs.  Absent keys make their steps no-ops.
type cascadeKeys struct {
	EventID        int64
	BookingID      sql.NullInt64
	BarID          sql.NullInt64
	ArrangementID  sql.NullString
	ReservationIDs []string
	AssignmentIDs  []string
}

func (k cascadeKeys) values(src keySource) []any {
	switch src {
	case byEvent:
		if k.EventID == 0 {
			return nil
		}
		return []any{k.EventID}
	case byBooking:
		if !k.BookingID.Valid {
			return nil
		}
		return []any{k.BookingID.Int64}
	case byBar:
		if !k.BarID.Valid {
			return nil
		}
		return []any{k.BarID.Int64}
	case byArrangement:
		if !k.ArrangementID.Valid {
			return nil
		}
		return []any{k.ArrangementID.String}
	case byReservations:
		return stringArgs(k.ReservationIDs)
	case byAssignments:
		return stringArgs(k.AssignmentIDs)
	}
	return nil
}

func stringArgs(ids []string) []any {
	if len(ids) == 0 {
		return nil
	}
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// DeleteStep removes (or, when Clear is set, nulls a reference in) the rows
// of Table whose Column matches the collected key.
type DeleteStep struct {
	Table  string
	Column string
	Source keySource
	Clear  string
}

func (s DeleteStep) statement(n int) string {
	in := placeholders(n)
	if s.Clear != "" {
		return fmt.Sprintf("UPDATE `%s` SET `%s` = NULL WHERE `%s` IN (%s)", s.Table, s.Clear, s.Column, in)
	}
	return fmt.Sprintf("DELETE FROM `%s` WHERE `%s` IN (%s)", s.Table, s.Column, in)
}

// ReservationDeletionPlan removes an arrangement's reservation joins and the
// reservations they point at.  It is also the first half of a ReplaceAll
// update.
var ReservationDeletionPlan = []DeleteStep{
	{Table: "arrangement_reservation", Column: "Arrangement_ID", Source: byArrangement},
	{Table: "table_reserve", Column: "Table_Reserve_ID", Source: byReservations},
}

// ArrangementDeletionPlan removes an arrangement and everything hanging off it.
var ArrangementDeletionPlan = concatPlans(
	ReservationDeletionPlan,
	[]DeleteStep{
		{Table: "event_table_chair", Column: "Arrangement_Id", Source: byArrangement},
		{Table: "table_chair_arrangement", Column: "Arrangement_ID", Source: byArrangement},
	},
)

// BarDeletionPlan removes a bar's line items, unlinks it from its event and
// removes the bar row.
var BarDeletionPlan = []DeleteStep{
	{Table: "bite", Column: "BarRequirementID", Source: byBar},
	{Table: "liquor_items", Column: "BarRequirementID", Source: byBar},
	{Table: "soft_drink_items", Column: "BarRequirementID", Source: byBar},
	{Table: "event", Column: "BarRequirementID", Source: byBar, Clear: "BarRequirementID"},
	{Table: "bar", Column: "BarRequirementID", Source: byBar},
}

// AssignmentDeletionPlan removes assignments: join rows first, then the
// parent rows.
var AssignmentDeletionPlan = []DeleteStep{
	{Table: "event_assigned_employee", Column: "Employee_Assign_ID", Source: byAssignments},
	{Table: "assigned_employee", Column: "Employee_Assign_ID", Source: byAssignments},
}

// EventDeletionPlan is the full aggregate cascade, children before parents.
var EventDeletionPlan = concatPlans(
	ArrangementDeletionPlan,
	[]DeleteStep{
		{Table: "event_coordinator", Column: "Event_ID", Source: byEvent},
		{Table: "event_assigned_employee", Column: "Event_ID", Source: byEvent},
		{Table: "assigned_employee", Column: "Employee_Assign_ID", Source: byAssignments},
		{Table: "event_service", Column: "Event_ID", Source: byEvent},
		{Table: "customer_event_service", Column: "booking_id", Source: byBooking},
		{Table: "wedding", Column: "Event_ID", Source: byEvent},
		{Table: "customevent", Column: "Event_ID", Source: byEvent},
	},
	BarDeletionPlan,
	[]DeleteStep{
		{Table: "event", Column: "Event_ID", Source: byEvent},
	},
)

func concatPlans(plans ...[]DeleteStep) []DeleteStep {
	var out []DeleteStep
	for _, p := range plans {
		out = append(out, p...)
	}
	return out
}

// foreignKeys lists child -> parent references of the schema (db/schema.sql)
// that the plans must respect.
var foreignKeys = [][2]string{
	{"arrangement_reservation", "table_reserve"},
	{"arrangement_reservation", "table_chair_arrangement"},
	{"event_table_chair", "table_chair_arrangement"},
	{"event_table_chair", "event"},
	{"event_coordinator", "event"},
	{"event_assigned_employee", "event"},
	{"event_assigned_employee", "assigned_employee"},
	{"event_service", "event"},
	{"wedding", "event"},
	{"customevent", "event"},
	{"bite", "bar"},
	{"liquor_items", "bar"},
	{"soft_drink_items", "bar"},
	{"event", "bar"},
}

// runPlan executes plan in order inside tx.
func runPlan(ctx context.Context, tx *sql.Tx, plan []DeleteStep, keys cascadeKeys) error {
	for _, s := range plan {
		args := keys.values(s.Source)
		if len(args) == 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, s.statement(len(args)), args...); err != nil {
			return classify(err, true, "cascade step "+s.Table)
		}
	}
	return nil
}
