package model

import "time"

// Assignment is one employee's role on one event.  It is stored as a parent
// row (assigned_employee, EAE###### ids) plus a join row carrying a snapshot
// of the event's booking date.
type Assignment struct {
	ID         string     `json:"employee_assign_id"`
	EmployeeID int64      `json:"employee_id"`
	EventID    int64      `json:"event_id"`
	Role       string     `json:"user_role"`
	EventDate  *time.Time `json:"event_date"`
}

type AssignmentInput struct {
	EmployeeID int64  `json:"employee_id"`
	EventID    int64  `json:"event_id"`
	Role       string `json:"user_role"`
}

type AssignmentView struct {
	Assignment
	EmployeeName string `json:"employee_name"`
	EventLabel   string `json:"event_label"`
}

type EmployeeOption struct {
	EmployeeID int64  `json:"employee_id"`
	Name       string `json:"name"`
	Label      string `json:"label"`
}

type EventOption struct {
	EventID   int64      `json:"event_id"`
	BookingID int64      `json:"booking_id"`
	EventDate *time.Time `json:"event_date"`
	EventName string     `json:"event_name"`
	Label     string     `json:"label"`
}

// AssignmentOptions feeds the assignment form: active employees and events
// whose booking is done.
type AssignmentOptions struct {
	Employees []EmployeeOption `json:"employees"`
	Events    []EventOption    `json:"events"`
}
