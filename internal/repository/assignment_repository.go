package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/venue-booking/internal/logger"
	"github.com/iliyamo/venue-booking/internal/model"
)

// AssignmentRepo links employees to events.  Each assignment is a parent row
// in assigned_employee plus a join row in event_assigned_employee.
type AssignmentRepo struct {
	db  *sql.DB
	log logger.Logger
}

func NewAssignmentRepo(db *sql.DB, log logger.Logger) *AssignmentRepo {
	if log == nil {
		log = logger.Discard()
	}
	return &AssignmentRepo{db: db, log: log.With("repo", "assignment")}
}

// Assign creates a new assignment.  Identifiers are generated per call, so
// assigning the same employee to the same event twice yields two rows.
func (r *AssignmentRepo) Assign(ctx context.Context, in model.AssignmentInput) (*model.Assignment, error) {
	var missing []string
	if in.EmployeeID <= 0 {
		missing = append(missing, "employee_id")
	}
	if in.EventID <= 0 {
		missing = append(missing, "event_id")
	}
	if strings.TrimSpace(in.Role) == "" {
		missing = append(missing, "user_role")
	}
	if len(missing) > 0 {
		return nil, validation("invalid assignment fields: %s", strings.Join(missing, ", "))
	}

	var out *model.Assignment
	err := inTxRetry(ctx, r.db, "assign employee", func(tx *sql.Tx) error {
		ids, err := Reserve(ctx, tx, AssignmentIDs)
		if err != nil {
			return err
		}
		id := ids.Next()

		var one int
		err = tx.QueryRowContext(ctx, `SELECT 1 FROM assigned_employee WHERE Employee_Assign_ID = ?`, id).Scan(&one)
		switch {
		case err == nil:
			r.log.Error("generated assignment id already in use", "employee_assign_id", id)
			return conflict("assignment id %s already in use", id)
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		err = tx.QueryRowContext(ctx, `SELECT 1 FROM employee WHERE Employee_ID = ?`, in.EmployeeID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("employee %d not found", in.EmployeeID)
		}
		if err != nil {
			return err
		}

		var date sql.NullTime
		err = tx.QueryRowContext(ctx,
			`SELECT bk.booking_date FROM event e LEFT JOIN booking bk ON bk.booking_id = e.booking_id WHERE e.Event_ID = ?`,
			in.EventID,
		).Scan(&date)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("event %d not found", in.EventID)
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO assigned_employee (Employee_Assign_ID, Employee_ID, User_Role) VALUES (?, ?, ?)`,
			id, in.EmployeeID, in.Role,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO event_assigned_employee (Event_ID, Employee_Assign_ID, Event_Date) VALUES (?, ?, ?)`,
			in.EventID, id, date,
		); err != nil {
			return err
		}
		out = &model.Assignment{ID: id, EmployeeID: in.EmployeeID, EventID: in.EventID, Role: in.Role, EventDate: timePtr(date)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

// Options lists active employees and events whose booking is done, each
// with a display label.
func (r *AssignmentRepo) Options(ctx context.Context) (*model.AssignmentOptions, error) {
	out := &model.AssignmentOptions{Employees: []model.EmployeeOption{}, Events: []model.EventOption{}}

	empRows, err := r.db.QueryContext(ctx,
		`SELECT Employee_ID, First_Name, Last_Name FROM employee WHERE Status = 'active' ORDER BY First_Name, Last_Name`)
	if err != nil {
		return nil, classify(err, false, "list employees")
	}
	defer empRows.Close()
	for empRows.Next() {
		var o model.EmployeeOption
		var first, last string
		if err := empRows.Scan(&o.EmployeeID, &first, &last); err != nil {
			return nil, classify(err, false, "scan employee")
		}
		o.Name = strings.TrimSpace(first + " " + last)
		o.Label = fmt.Sprintf("%s (#%d)", o.Name, o.EmployeeID)
		out.Employees = append(out.Employees, o)
	}
	if err := empRows.Err(); err != nil {
		return nil, classify(err, false, "list employees")
	}

	const q = `SELECT e.Event_ID, e.booking_id, bk.booking_date, ` + eventNameExpr + `
	           FROM event e
	           JOIN booking bk ON bk.booking_id = e.booking_id
	           LEFT JOIN wedding w ON w.Event_ID = e.Event_ID
	           LEFT JOIN customevent c ON c.Event_ID = e.Event_ID
	           WHERE bk.booking_status = ?
	           ORDER BY bk.booking_date, e.Event_ID`
	evRows, err := r.db.QueryContext(ctx, q, model.BookingDone)
	if err != nil {
		return nil, classify(err, false, "list events")
	}
	defer evRows.Close()
	for evRows.Next() {
		var o model.EventOption
		var date sql.NullTime
		var name sql.NullString
		if err := evRows.Scan(&o.EventID, &o.BookingID, &date, &name); err != nil {
			return nil, classify(err, false, "scan event")
		}
		o.EventDate = timePtr(date)
		o.EventName = name.String
		o.Label = eventLabel(o.EventID, o.EventName, o.EventDate)
		out.Events = append(out.Events, o)
	}
	if err := evRows.Err(); err != nil {
		return nil, classify(err, false, "list events")
	}
	return out, nil
}

func eventLabel(id int64, name string, date *time.Time) string {
	if name == "" {
		name = fmt.Sprintf("Event #%d", id)
	}
	if date == nil {
		return name
	}
	return name + " - " + date.Format("2006-01-02")
}

// List returns every assignment with the employee's name and the event label.
func (r *AssignmentRepo) List(ctx context.Context) ([]model.AssignmentView, error) {
	const q = `SELECT ae.Employee_Assign_ID, ae.Employee_ID, eae.Event_ID, ae.User_Role, eae.Event_Date,
	                  CONCAT(emp.First_Name, ' ', emp.Last_Name), ` + eventNameExpr + `
	           FROM assigned_employee ae
	           JOIN event_assigned_employee eae ON eae.Employee_Assign_ID = ae.Employee_Assign_ID
	           LEFT JOIN employee emp ON emp.Employee_ID = ae.Employee_ID
	           LEFT JOIN wedding w ON w.Event_ID = eae.Event_ID
	           LEFT JOIN customevent c ON c.Event_ID = eae.Event_ID
	           ORDER BY ae.Employee_Assign_ID`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, classify(err, false, "list assignments")
	}
	defer rows.Close()

	out := make([]model.AssignmentView, 0)
	for rows.Next() {
		var v model.AssignmentView
		var date sql.NullTime
		var empName, eventName sql.NullString
		if err := rows.Scan(&v.ID, &v.EmployeeID, &v.EventID, &v.Role, &date, &empName, &eventName); err != nil {
			return nil, classify(err, false, "scan assignment")
		}
		v.EventDate = timePtr(date)
		v.EmployeeName = empName.String
		v.EventLabel = eventLabel(v.EventID, eventName.String, v.EventDate)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, false, "list assignments")
	}
	return out, nil
}

// UpdateRole changes only the role label of an assignment.
func (r *AssignmentRepo) UpdateRole(ctx context.Context, id, role string) error {
	if strings.TrimSpace(role) == "" {
		return validation("user_role is required")
	}
	res, err := r.db.ExecContext(ctx, `UPDATE assigned_employee SET User_Role = ? WHERE Employee_Assign_ID = ?`, role, id)
	if err != nil {
		return classify(err, false, "update assignment")
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM assigned_employee WHERE Employee_Assign_ID = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("assignment %s not found", id)
	}
	return classify(err, false, "update assignment")
}

// Delete removes the join row and then the parent row.
func (r *AssignmentRepo) Delete(ctx context.Context, id string) error {
	return inTx(ctx, r.db, "delete assignment", func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM assigned_employee WHERE Employee_Assign_ID = ? FOR UPDATE`, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("assignment %s not found", id)
		}
		if err != nil {
			return err
		}
		return runPlan(ctx, tx, AssignmentDeletionPlan, cascadeKeys{AssignmentIDs: []string{id}})
	})
}
