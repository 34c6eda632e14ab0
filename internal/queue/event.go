// Package queue carries audit events about committed aggregate writes over
// RabbitMQ and appends them to an audit log on the consuming side.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Audit event kinds.
const (
	EventCreated       = "event.created"
	EventUpdated       = "event.updated"
	EventDeleted       = "event.deleted"
	BarAttached        = "event.bar_attached"
	BarCreated         = "bar.created"
	BarUpdated         = "bar.updated"
	BarDeleted         = "bar.deleted"
	BarTotalsRefreshed = "bar.totals_recalculated"
	BarItemChanged     = "bar.item_changed"
	ArrangementCreated = "arrangement.created"
	ArrangementUpdated = "arrangement.updated"
	ArrangementDeleted = "arrangement.deleted"
	EmployeeAssigned   = "employee.assigned"
	AssignmentUpdated  = "assignment.updated"
	AssignmentDeleted  = "assignment.deleted"
)

// AuditEvent is published after a write has been committed.
type AuditEvent struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	EntityID   string    `json:"entity_id"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewAuditEvent stamps a fresh id and the current UTC time.
func NewAuditEvent(kind, entityID, actor string) AuditEvent {
	return AuditEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		EntityID:   entityID,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	}
}
