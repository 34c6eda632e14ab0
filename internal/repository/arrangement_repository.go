package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/venue-booking/internal/model"
)

// ReservationPolicy names how an arrangement update treats the existing
// reservations.
type ReservationPolicy string

// ReplaceAll drops every reservation of the arrangement and inserts the
// supplied list with fresh identifiers.  Nothing is diffed: an update with K
// reservations leaves exactly K.
const ReplaceAll ReservationPolicy = "replace-all"

// ArrangementRepo owns table_chair_arrangement, its join to the event and the
// arrangement's table reservations.
type ArrangementRepo struct {
	db     *sql.DB
	policy ReservationPolicy
}

func NewArrangementRepo(db *sql.DB) *ArrangementRepo {
	return &ArrangementRepo{db: db, policy: ReplaceAll}
}

// Policy reports the reservation update policy in effect.
func (r *ArrangementRepo) Policy() ReservationPolicy { return r.policy }

func validateArrangement(in model.ArrangementInput, create bool) error {
	var missing []string
	if create && in.EventID <= 0 {
		missing = append(missing, "event_id")
	}
	if strings.TrimSpace(in.LinenColor) == "" {
		missing = append(missing, "linen_color")
	}
	if strings.TrimSpace(in.ChairCoverColor) == "" {
		missing = append(missing, "chair_cover_color")
	}
	if in.HeadTablePax < 0 {
		missing = append(missing, "head_table_pax")
	}
	for _, res := range in.Reservations {
		if res.TableNumber <= 0 || strings.TrimSpace(res.ReserveName) == "" {
			missing = append(missing, "reservations")
			break
		}
	}
	if len(missing) > 0 {
		return validation("invalid arrangement fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Create inserts an arrangement for an event together with its reservations.
// The event must exist and must not have an arrangement yet.
func (r *ArrangementRepo) Create(ctx context.Context, in model.ArrangementInput) (*model.ArrangementDetail, error) {
	if err := validateArrangement(in, true); err != nil {
		return nil, err
	}
	var out *model.ArrangementDetail
	err := inTxRetry(ctx, r.db, "create arrangement", func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM event WHERE Event_ID = ? FOR UPDATE`, in.EventID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("event %d not found", in.EventID)
		}
		if err != nil {
			return err
		}
		var existing string
		err = tx.QueryRowContext(ctx, `SELECT Arrangement_Id FROM event_table_chair WHERE Event_ID = ? LIMIT 1`, in.EventID).Scan(&existing)
		switch {
		case err == nil:
			return conflict("event %d already has arrangement %s", in.EventID, existing)
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		ids, err := Reserve(ctx, tx, ArrangementIDs)
		if err != nil {
			return err
		}
		id := ids.Next()
		const insArr = `INSERT INTO table_chair_arrangement (Arrangement_ID, Linen_Color, Chair_Cover_Color, Head_Table_Pax) VALUES (?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, insArr, id, in.LinenColor, in.ChairCoverColor, in.HeadTablePax); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO event_table_chair (Event_ID, Arrangement_Id) VALUES (?, ?)`, in.EventID, id); err != nil {
			return err
		}
		reserved, err := insertReservations(ctx, tx, id, in.Reservations)
		if err != nil {
			return err
		}
		eventID := in.EventID
		out = &model.ArrangementDetail{
			Arrangement: model.Arrangement{
				ID:              id,
				LinenColor:      in.LinenColor,
				ChairCoverColor: in.ChairCoverColor,
				HeadTablePax:    in.HeadTablePax,
			},
			EventID:        &eventID,
			ReservedTables: reserved,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// insertReservations inserts every reservation and its join row.  All ids of
// the batch come from a single locked read.
func insertReservations(ctx context.Context, tx *sql.Tx, arrangementID string, in []model.TableReservationInput) ([]model.TableReservation, error) {
	out := make([]model.TableReservation, 0, len(in))
	if len(in) == 0 {
		return out, nil
	}
	ids, err := Reserve(ctx, tx, TableReserveIDs)
	if err != nil {
		return nil, err
	}
	for _, res := range in {
		id := ids.Next()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO table_reserve (Table_Reserve_ID, Table_Number, Reserve_Name) VALUES (?, ?, ?)`,
			id, res.TableNumber, res.ReserveName,
		); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO arrangement_reservation (Arrangement_ID, Table_Reserve_ID) VALUES (?, ?)`,
			arrangementID, id,
		); err != nil {
			return nil, err
		}
		out = append(out, model.TableReservation{ID: id, TableNumber: res.TableNumber, ReserveName: res.ReserveName})
	}
	return out, nil
}

// lockArrangement fails with ErrNotFound when the arrangement row is absent.
func lockArrangement(ctx context.Context, tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM table_chair_arrangement WHERE Arrangement_ID = ? FOR UPDATE`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("arrangement %s not found", id)
	}
	return err
}

func reservationIDs(ctx context.Context, tx *sql.Tx, arrangementID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT Table_Reserve_ID FROM arrangement_reservation WHERE Arrangement_ID = ? ORDER BY Table_Reserve_ID FOR UPDATE`,
		arrangementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Update changes the colors and head table pax, then applies the repo's
// reservation policy with the supplied list.  EventID in the payload is
// ignored.
func (r *ArrangementRepo) Update(ctx context.Context, id string, in model.ArrangementInput) (*model.ArrangementDetail, error) {
	if err := validateArrangement(in, false); err != nil {
		return nil, err
	}
	if r.policy != ReplaceAll {
		return nil, validation("unsupported reservation policy %q", r.policy)
	}
	var out *model.ArrangementDetail
	err := inTxRetry(ctx, r.db, "update arrangement", func(tx *sql.Tx) error {
		if err := lockArrangement(ctx, tx, id); err != nil {
			return err
		}
		const upd = `UPDATE table_chair_arrangement SET Linen_Color = ?, Chair_Cover_Color = ?, Head_Table_Pax = ? WHERE Arrangement_ID = ?`
		if _, err := tx.ExecContext(ctx, upd, in.LinenColor, in.ChairCoverColor, in.HeadTablePax, id); err != nil {
			return err
		}
		old, err := reservationIDs(ctx, tx, id)
		if err != nil {
			return err
		}
		keys := cascadeKeys{ArrangementID: sql.NullString{String: id, Valid: true}, ReservationIDs: old}
		if err := runPlan(ctx, tx, ReservationDeletionPlan, keys); err != nil {
			return err
		}
		reserved, err := insertReservations(ctx, tx, id, in.Reservations)
		if err != nil {
			return err
		}
		var eventID sql.NullInt64
		err = tx.QueryRowContext(ctx, `SELECT Event_ID FROM event_table_chair WHERE Arrangement_Id = ? LIMIT 1`, id).Scan(&eventID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		out = &model.ArrangementDetail{
			Arrangement: model.Arrangement{
				ID:              id,
				LinenColor:      in.LinenColor,
				ChairCoverColor: in.ChairCoverColor,
				HeadTablePax:    in.HeadTablePax,
			},
			EventID:        int64Ptr(eventID),
			ReservedTables: reserved,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the arrangement's reservation joins, its reservations, the
// event join and the arrangement row.  An arrangement without reservations
// is deleted just the same; only a missing arrangement is ErrNotFound.
func (r *ArrangementRepo) Delete(ctx context.Context, id string) error {
	return inTx(ctx, r.db, "delete arrangement", func(tx *sql.Tx) error {
		if err := lockArrangement(ctx, tx, id); err != nil {
			return err
		}
		ids, err := reservationIDs(ctx, tx, id)
		if err != nil {
			return err
		}
		keys := cascadeKeys{ArrangementID: sql.NullString{String: id, Valid: true}, ReservationIDs: ids}
		return runPlan(ctx, tx, ArrangementDeletionPlan, keys)
	})
}

// Get returns one arrangement with its reservations flattened from a left
// join.
func (r *ArrangementRepo) Get(ctx context.Context, id string) (*model.ArrangementDetail, error) {
	const q = `SELECT a.Arrangement_ID, a.Linen_Color, a.Chair_Cover_Color, a.Head_Table_Pax, etc.Event_ID,
	                  tr.Table_Reserve_ID, tr.Table_Number, tr.Reserve_Name
	           FROM table_chair_arrangement a
	           LEFT JOIN event_table_chair etc ON etc.Arrangement_Id = a.Arrangement_ID
	           LEFT JOIN arrangement_reservation ar ON ar.Arrangement_ID = a.Arrangement_ID
	           LEFT JOIN table_reserve tr ON tr.Table_Reserve_ID = ar.Table_Reserve_ID
	           WHERE a.Arrangement_ID = ?
	           ORDER BY tr.Table_Reserve_ID`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, classify(err, false, "get arrangement")
	}
	defer rows.Close()

	var out *model.ArrangementDetail
	for rows.Next() {
		var a model.Arrangement
		var eventID sql.NullInt64
		var resID sql.NullString
		var tableNo sql.NullInt64
		var name sql.NullString
		if err := rows.Scan(&a.ID, &a.LinenColor, &a.ChairCoverColor, &a.HeadTablePax, &eventID, &resID, &tableNo, &name); err != nil {
			return nil, classify(err, false, "scan arrangement")
		}
		if out == nil {
			out = &model.ArrangementDetail{Arrangement: a, EventID: int64Ptr(eventID), ReservedTables: []model.TableReservation{}}
		}
		if resID.Valid {
			out.ReservedTables = append(out.ReservedTables, model.TableReservation{
				ID:          resID.String,
				TableNumber: int(tableNo.Int64),
				ReserveName: name.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, false, "get arrangement")
	}
	if out == nil {
		return nil, notFound("arrangement %s not found", id)
	}
	return out, nil
}

// List returns every arrangement with its owner and its reserved table
// numbers and names as parallel lists.
func (r *ArrangementRepo) List(ctx context.Context) ([]model.ArrangementView, error) {
	const q = `SELECT a.Arrangement_ID, a.Linen_Color, a.Chair_Cover_Color, a.Head_Table_Pax,
	                  e.Event_ID, e.booking_id, bk.customer_id, ` + customerNameExpr + `, ` + eventNameExpr + `
	           FROM table_chair_arrangement a
	           LEFT JOIN event_table_chair etc ON etc.Arrangement_Id = a.Arrangement_ID
	           LEFT JOIN event e ON e.Event_ID = etc.Event_ID
	           LEFT JOIN booking bk ON bk.booking_id = e.booking_id
	           LEFT JOIN customer cu ON cu.customer_id = bk.customer_id
	           LEFT JOIN wedding w ON w.Event_ID = e.Event_ID
	           LEFT JOIN customevent c ON c.Event_ID = e.Event_ID
	           ORDER BY a.Arrangement_ID`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, classify(err, false, "list arrangements")
	}
	defer rows.Close()

	views := make([]model.ArrangementView, 0)
	index := make(map[string]int)
	for rows.Next() {
		var v model.ArrangementView
		var eventID, bookingID, customerID sql.NullInt64
		var customerName, eventName sql.NullString
		if err := rows.Scan(&v.ID, &v.LinenColor, &v.ChairCoverColor, &v.HeadTablePax,
			&eventID, &bookingID, &customerID, &customerName, &eventName); err != nil {
			return nil, classify(err, false, "scan arrangement")
		}
		v.EventID = int64Ptr(eventID)
		v.BookingID = int64Ptr(bookingID)
		v.CustomerID = int64Ptr(customerID)
		v.CustomerName = customerName.String
		v.EventName = eventName.String
		v.TableNumbers = []int{}
		v.ReserveNames = []string{}
		index[v.ID] = len(views)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, false, "list arrangements")
	}
	if len(views) == 0 {
		return views, nil
	}

	args := make([]any, 0, len(views))
	for _, v := range views {
		args = append(args, v.ID)
	}
	resQ := `SELECT ar.Arrangement_ID, tr.Table_Number, tr.Reserve_Name
	         FROM arrangement_reservation ar
	         JOIN table_reserve tr ON tr.Table_Reserve_ID = ar.Table_Reserve_ID
	         WHERE ar.Arrangement_ID IN (` + placeholders(len(args)) + `)
	         ORDER BY ar.Arrangement_ID, tr.Table_Reserve_ID`
	resRows, err := r.db.QueryContext(ctx, resQ, args...)
	if err != nil {
		return nil, classify(err, false, "list reservations")
	}
	defer resRows.Close()
	for resRows.Next() {
		var arrID, name string
		var tableNo int
		if err := resRows.Scan(&arrID, &tableNo, &name); err != nil {
			return nil, classify(err, false, "scan reservation")
		}
		i, ok := index[arrID]
		if !ok {
			continue
		}
		views[i].TableNumbers = append(views[i].TableNumbers, tableNo)
		views[i].ReserveNames = append(views[i].ReserveNames, name)
	}
	if err := resRows.Err(); err != nil {
		return nil, classify(err, false, "list reservations")
	}
	return views, nil
}
