package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/venue-booking/internal/model"
)

// EventRepo is the aggregate root.  It writes the event row and its variant
// row, links a bar, and runs the full cascade on delete.
type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// variantOf reports which specialization row exists for the event.  A
// wedding row wins; without either row the event is treated as missing.
func variantOf(ctx context.Context, tx *sql.Tx, id int64) (model.EventKind, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM wedding WHERE Event_ID = ? FOR UPDATE`, id).Scan(&one)
	if err == nil {
		return model.KindWedding, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM customevent WHERE Event_ID = ? FOR UPDATE`, id).Scan(&one)
	if err == nil {
		return model.KindCustom, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return "", notFound("event %d not found", id)
	}
	return "", err
}

func validateEventCreate(in model.EventInput) error {
	var missing []string
	switch in.Type {
	case model.KindWedding:
		if strings.TrimSpace(orEmpty(in.GroomName)) == "" {
			missing = append(missing, "groom_name")
		}
		if strings.TrimSpace(orEmpty(in.BrideName)) == "" {
			missing = append(missing, "bride_name")
		}
	case model.KindCustom:
		if strings.TrimSpace(orEmpty(in.EventName)) == "" {
			missing = append(missing, "event_name")
		}
	default:
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return validation("invalid event fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Create inserts an event and exactly one variant row.  When a booking is
// given it must exist and must not already anchor an event.
func (r *EventRepo) Create(ctx context.Context, in model.EventInput) (*model.Event, error) {
	if err := validateEventCreate(in); err != nil {
		return nil, err
	}
	var id int64
	err := inTx(ctx, r.db, "create event", func(tx *sql.Tx) error {
		if in.BookingID != nil {
			var one int
			err := tx.QueryRowContext(ctx, `SELECT 1 FROM booking WHERE booking_id = ? FOR UPDATE`, *in.BookingID).Scan(&one)
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("booking %d not found", *in.BookingID)
			}
			if err != nil {
				return err
			}
			var other int64
			err = tx.QueryRowContext(ctx, `SELECT Event_ID FROM event WHERE booking_id = ? LIMIT 1`, *in.BookingID).Scan(&other)
			switch {
			case err == nil:
				return conflict("booking %d already has event %d", *in.BookingID, other)
			case !errors.Is(err, sql.ErrNoRows):
				return err
			}
		}

		const insEvent = `INSERT INTO event (booking_id, Buffet_Time_From, Buffet_Time_To, Function_Time_From, Function_Time_To, Dress_Time_From, Dress_Time_To)
		                  VALUES (?, ?, ?, ?, ?, ?, ?)`
		var booking sql.NullInt64
		if in.BookingID != nil {
			booking = sql.NullInt64{Int64: *in.BookingID, Valid: true}
		}
		res, err := tx.ExecContext(ctx, insEvent, booking,
			orNull(in.BuffetTimeFrom), orNull(in.BuffetTimeTo),
			orNull(in.FunctionTimeFrom), orNull(in.FunctionTimeTo),
			orNull(in.DressTimeFrom), orNull(in.DressTimeTo))
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		return writeVariant(ctx, tx, in.Type, id, in, true)
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// writeVariant inserts or updates the specialization row of kind.  Omitted
// strings become "" and omitted times NULL.
func writeVariant(ctx context.Context, tx *sql.Tx, kind model.EventKind, id int64, in model.EventInput, insert bool) error {
	var q string
	var args []any
	switch kind {
	case model.KindWedding:
		args = []any{
			orEmpty(in.GroomName), orEmpty(in.BrideName), orEmpty(in.GroomContact), orEmpty(in.BrideContact),
			orNull(in.CeremonyTimeFrom), orNull(in.CeremonyTimeTo),
			orNull(in.RegistrationTimeFrom), orNull(in.RegistrationTimeTo),
			id,
		}
		if insert {
			q = `INSERT INTO wedding (Groom_Name, Bride_Name, Groom_Contact, Bride_Contact, Ceremony_Time_From, Ceremony_Time_To,
			                          Registration_Time_From, Registration_Time_To, Event_ID)
			     VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		} else {
			q = `UPDATE wedding SET Groom_Name = ?, Bride_Name = ?, Groom_Contact = ?, Bride_Contact = ?,
			                        Ceremony_Time_From = ?, Ceremony_Time_To = ?,
			                        Registration_Time_From = ?, Registration_Time_To = ?
			     WHERE Event_ID = ?`
		}
	case model.KindCustom:
		args = []any{orEmpty(in.EventName), orEmpty(in.ContactPerson), orEmpty(in.ContactNumber), id}
		if insert {
			q = `INSERT INTO customevent (Event_Name, Contact_Person, Contact_Number, Event_ID) VALUES (?, ?, ?, ?)`
		} else {
			q = `UPDATE customevent SET Event_Name = ?, Contact_Person = ?, Contact_Number = ? WHERE Event_ID = ?`
		}
	default:
		return validation("unknown event type %q", kind)
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// Update rewrites the shared time windows and the fields of the event's own
// variant.  Fields of the other variant in the payload are ignored.
func (r *EventRepo) Update(ctx context.Context, id int64, in model.EventInput) (*model.Event, error) {
	err := inTx(ctx, r.db, "update event", func(tx *sql.Tx) error {
		kind, err := variantOf(ctx, tx, id)
		if err != nil {
			return err
		}
		const upd = `UPDATE event SET Buffet_Time_From = ?, Buffet_Time_To = ?, Function_Time_From = ?, Function_Time_To = ?,
		                              Dress_Time_From = ?, Dress_Time_To = ?
		             WHERE Event_ID = ?`
		if _, err := tx.ExecContext(ctx, upd,
			orNull(in.BuffetTimeFrom), orNull(in.BuffetTimeTo),
			orNull(in.FunctionTimeFrom), orNull(in.FunctionTimeTo),
			orNull(in.DressTimeFrom), orNull(in.DressTimeTo), id,
		); err != nil {
			return err
		}
		return writeVariant(ctx, tx, kind, id, in, false)
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// AttachBar links an existing bar to an event.  A bar belongs to at most one
// event and an event has at most one bar: replacing a linked bar would leave
// the old one unreachable, so the old bar must be deleted first.  Attaching
// the bar an event already has is a no-op.
func (r *EventRepo) AttachBar(ctx context.Context, eventID, barID int64) error {
	return inTx(ctx, r.db, "attach bar", func(tx *sql.Tx) error {
		var current sql.NullInt64
		err := tx.QueryRowContext(ctx, `SELECT BarRequirementID FROM event WHERE Event_ID = ? FOR UPDATE`, eventID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("event %d not found", eventID)
		}
		if err != nil {
			return err
		}
		if current.Valid {
			if current.Int64 == barID {
				return nil
			}
			return conflict("event %d already has bar %d", eventID, current.Int64)
		}
		var one int
		err = tx.QueryRowContext(ctx, `SELECT 1 FROM bar WHERE BarRequirementID = ? FOR UPDATE`, barID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("bar %d not found", barID)
		}
		if err != nil {
			return err
		}
		var owner int64
		err = tx.QueryRowContext(ctx,
			`SELECT Event_ID FROM event WHERE BarRequirementID = ? AND Event_ID <> ? LIMIT 1`, barID, eventID,
		).Scan(&owner)
		switch {
		case err == nil:
			return conflict("bar %d already belongs to event %d", barID, owner)
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE event SET BarRequirementID = ? WHERE Event_ID = ?`, barID, eventID)
		return err
	})
}

// collectKeys locks the event row and gathers every identifier the cascade
// needs.  ok is false when the event does not exist.
func collectKeys(ctx context.Context, tx *sql.Tx, id int64) (keys cascadeKeys, ok bool, err error) {
	keys.EventID = id
	err = tx.QueryRowContext(ctx,
		`SELECT booking_id, BarRequirementID FROM event WHERE Event_ID = ? FOR UPDATE`, id,
	).Scan(&keys.BookingID, &keys.BarID)
	if errors.Is(err, sql.ErrNoRows) {
		return keys, false, nil
	}
	if err != nil {
		return keys, false, err
	}

	err = tx.QueryRowContext(ctx,
		`SELECT Arrangement_Id FROM event_table_chair WHERE Event_ID = ? LIMIT 1 FOR UPDATE`, id,
	).Scan(&keys.ArrangementID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return keys, false, err
	}
	if keys.ArrangementID.Valid {
		if keys.ReservationIDs, err = reservationIDs(ctx, tx, keys.ArrangementID.String); err != nil {
			return keys, false, err
		}
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT Employee_Assign_ID FROM event_assigned_employee WHERE Event_ID = ? FOR UPDATE`, id)
	if err != nil {
		return keys, false, err
	}
	defer rows.Close()
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return keys, false, err
		}
		keys.AssignmentIDs = append(keys.AssignmentIDs, a)
	}
	return keys, true, rows.Err()
}

// Delete removes the event and its whole aggregate in one transaction,
// children before parents (see EventDeletionPlan).  A missing event is not
// an error: deleted is false and nothing is written.
func (r *EventRepo) Delete(ctx context.Context, id int64) (deleted bool, err error) {
	err = inTxRetry(ctx, r.db, "delete event", func(tx *sql.Tx) error {
		deleted = false
		keys, ok, err := collectKeys(ctx, tx, id)
		if err != nil || !ok {
			return err
		}
		if err := runPlan(ctx, tx, EventDeletionPlan, keys); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

const eventSelect = `SELECT e.Event_ID, e.booking_id, e.BarRequirementID,
                            e.Buffet_Time_From, e.Buffet_Time_To, e.Function_Time_From, e.Function_Time_To,
                            e.Dress_Time_From, e.Dress_Time_To,
                            bk.booking_status, bk.booking_date, ` + customerNameExpr + `,
                            w.Event_ID, w.Groom_Name, w.Bride_Name, w.Groom_Contact, w.Bride_Contact,
                            w.Ceremony_Time_From, w.Ceremony_Time_To, w.Registration_Time_From, w.Registration_Time_To,
                            c.Event_Name, c.Contact_Person, c.Contact_Number
                     FROM event e
                     LEFT JOIN booking bk ON bk.booking_id = e.booking_id
                     LEFT JOIN customer cu ON cu.customer_id = bk.customer_id
                     LEFT JOIN wedding w ON w.Event_ID = e.Event_ID
                     LEFT JOIN customevent c ON c.Event_ID = e.Event_ID`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (model.Event, error) {
	var (
		e                                        model.Event
		bookingID, barID, weddingID              sql.NullInt64
		bf, bt, ff, ft, df, dt                   sql.NullString
		status, customer                         sql.NullString
		date                                     sql.NullTime
		groom, bride, groomContact, brideContact sql.NullString
		ceremonyFrom, ceremonyTo, regFrom, regTo sql.NullString
		eventName, contactPerson, contactNumber  sql.NullString
	)
	err := s.Scan(&e.ID, &bookingID, &barID,
		&bf, &bt, &ff, &ft, &df, &dt,
		&status, &date, &customer,
		&weddingID, &groom, &bride, &groomContact, &brideContact,
		&ceremonyFrom, &ceremonyTo, &regFrom, &regTo,
		&eventName, &contactPerson, &contactNumber)
	if err != nil {
		return e, err
	}
	e.BookingID = int64Ptr(bookingID)
	e.BarRequirementID = int64Ptr(barID)
	e.BuffetTime = model.TimeWindow{From: strPtr(bf), To: strPtr(bt)}
	e.FunctionTime = model.TimeWindow{From: strPtr(ff), To: strPtr(ft)}
	e.DressTime = model.TimeWindow{From: strPtr(df), To: strPtr(dt)}
	e.BookingStatus = status.String
	e.BookingDate = timePtr(date)
	e.CustomerName = customer.String
	if weddingID.Valid {
		e.Type = model.KindWedding
		e.Details = &model.Wedding{
			GroomName:            groom.String,
			BrideName:            bride.String,
			GroomContact:         groomContact.String,
			BrideContact:         brideContact.String,
			CeremonyTimeFrom:     strPtr(ceremonyFrom),
			CeremonyTimeTo:       strPtr(ceremonyTo),
			RegistrationTimeFrom: strPtr(regFrom),
			RegistrationTimeTo:   strPtr(regTo),
		}
	} else {
		e.Type = model.KindCustom
		e.Details = &model.CustomEvent{
			EventName:     eventName.String,
			ContactPerson: contactPerson.String,
			ContactNumber: contactNumber.String,
		}
	}
	return e, nil
}

// List returns events whose booking is pending, confirmed or done.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	args := make([]any, len(model.ListedStatuses))
	for i, s := range model.ListedStatuses {
		args[i] = s
	}
	q := eventSelect + ` WHERE bk.booking_status IN (` + placeholders(len(args)) + `) ORDER BY bk.booking_date DESC, e.Event_ID DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, classify(err, false, "list events")
	}
	defer rows.Close()
	out := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, classify(err, false, "scan event")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, false, "list events")
	}
	return out, nil
}

// Get returns one event.  The variant is decided by wedding row presence,
// the same as List.
func (r *EventRepo) Get(ctx context.Context, id int64) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, eventSelect+` WHERE e.Event_ID = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("event %d not found", id)
	}
	if err != nil {
		return nil, classify(err, false, "get event")
	}
	return &e, nil
}
