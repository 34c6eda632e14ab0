package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/venue-booking/internal/model"
)

// BarRepo owns the bar table.  A bar is created on its own and linked to an
// event afterwards (EventRepo.AttachBar); deleting it unlinks it again.
type BarRepo struct {
	db *sql.DB
}

// NewBarRepo returns a BarRepo bound to the given database.
func NewBarRepo(db *sql.DB) *BarRepo { return &BarRepo{db: db} }

func validateBar(b *model.Bar) error {
	var missing []string
	if strings.TrimSpace(b.LiquorTimeFrom) == "" {
		missing = append(missing, "liquor_time_from")
	}
	if strings.TrimSpace(b.LiquorTimeTo) == "" {
		missing = append(missing, "liquor_time_to")
	}
	if b.BarPax <= 0 {
		missing = append(missing, "bar_pax")
	}
	if b.TotalBitePrice < 0 || b.TotalLiquorPrice < 0 || b.TotalSoftDrinkPrice < 0 {
		missing = append(missing, "totals")
	}
	if len(missing) > 0 {
		return validation("invalid bar fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Create inserts a fully populated bar and fills in its generated id.  The
// bar is not linked to any event.
func (r *BarRepo) Create(ctx context.Context, b *model.Bar) error {
	if err := validateBar(b); err != nil {
		return err
	}
	const q = `INSERT INTO bar (Liquor_Time_From, Liquor_Time_To, Bar_Pax, Total_Bite_Price, Total_Liquor_Price, Total_Soft_Drink_Price)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, b.LiquorTimeFrom, b.LiquorTimeTo, b.BarPax, b.TotalBitePrice, b.TotalLiquorPrice, b.TotalSoftDrinkPrice)
	if err != nil {
		return classify(err, false, "create bar")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err, false, "create bar")
	}
	b.ID = id
	return nil
}

const barViewSelect = `SELECT b.BarRequirementID, b.Liquor_Time_From, b.Liquor_Time_To, b.Bar_Pax,
                              b.Total_Bite_Price, b.Total_Liquor_Price, b.Total_Soft_Drink_Price,
                              e.Event_ID, e.booking_id, bk.customer_id, ` + customerNameExpr + `, ` + eventNameExpr + `
                       FROM bar b
                       LEFT JOIN event e ON e.BarRequirementID = b.BarRequirementID
                       LEFT JOIN booking bk ON bk.booking_id = e.booking_id
                       LEFT JOIN customer cu ON cu.customer_id = bk.customer_id
                       LEFT JOIN wedding w ON w.Event_ID = e.Event_ID
                       LEFT JOIN customevent c ON c.Event_ID = e.Event_ID`

// List returns every bar with its owner and its three item collections.
// An empty database yields an empty slice.
func (r *BarRepo) List(ctx context.Context) ([]model.BarView, error) {
	return r.views(ctx, barViewSelect+` ORDER BY b.BarRequirementID`)
}

// Get returns a single bar view.
func (r *BarRepo) Get(ctx context.Context, id int64) (*model.BarView, error) {
	views, err := r.views(ctx, barViewSelect+` WHERE b.BarRequirementID = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, notFound("bar %d not found", id)
	}
	return &views[0], nil
}

func (r *BarRepo) views(ctx context.Context, q string, args ...any) ([]model.BarView, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, classify(err, false, "list bars")
	}
	defer rows.Close()

	views := make([]model.BarView, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var v model.BarView
		var eventID, bookingID, customerID sql.NullInt64
		var customerName, eventName sql.NullString
		if err := rows.Scan(
			&v.ID, &v.LiquorTimeFrom, &v.LiquorTimeTo, &v.BarPax,
			&v.TotalBitePrice, &v.TotalLiquorPrice, &v.TotalSoftDrinkPrice,
			&eventID, &bookingID, &customerID, &customerName, &eventName,
		); err != nil {
			return nil, classify(err, false, "scan bar")
		}
		v.EventID = int64Ptr(eventID)
		v.BookingID = int64Ptr(bookingID)
		v.CustomerID = int64Ptr(customerID)
		v.CustomerName = customerName.String
		v.EventName = eventName.String
		v.Bites = []model.LineItem{}
		v.LiquorItems = []model.LineItem{}
		v.SoftDrinkItems = []model.LineItem{}
		index[v.ID] = len(views)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, false, "list bars")
	}
	if len(views) == 0 {
		return views, nil
	}

	ids := make([]int64, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	for _, kind := range model.ItemKinds {
		byBar, err := loadItems(ctx, r.db, kind, ids)
		if err != nil {
			return nil, err
		}
		for barID, items := range byBar {
			v := &views[index[barID]]
			switch kind {
			case model.ItemBite:
				v.Bites = items
			case model.ItemLiquor:
				v.LiquorItems = items
			case model.ItemSoftDrink:
				v.SoftDrinkItems = items
			}
		}
	}
	return views, nil
}

// Update changes the liquor window and pax only.  Totals and items are left
// untouched.
func (r *BarRepo) Update(ctx context.Context, id int64, u model.BarUpdate) error {
	if strings.TrimSpace(u.LiquorTimeFrom) == "" || strings.TrimSpace(u.LiquorTimeTo) == "" || u.BarPax <= 0 {
		return validation("liquor_time_from, liquor_time_to and bar_pax are required")
	}
	const q = `UPDATE bar SET Liquor_Time_From = ?, Liquor_Time_To = ?, Bar_Pax = ? WHERE BarRequirementID = ?`
	res, err := r.db.ExecContext(ctx, q, u.LiquorTimeFrom, u.LiquorTimeTo, u.BarPax, id)
	if err != nil {
		return classify(err, false, "update bar")
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	// zero rows: either missing or unchanged
	var one int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM bar WHERE BarRequirementID = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("bar %d not found", id)
	}
	return classify(err, false, "update bar")
}

// Delete removes the bar's bites, liquor items and soft drink items, clears
// the owning event's reference and removes the bar, all in one transaction.
// It fails with ErrNotFound before any write when no event references the
// bar.  A bar without items is deleted just the same.
func (r *BarRepo) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, r.db, "delete bar", func(tx *sql.Tx) error {
		var eventID int64
		err := tx.QueryRowContext(ctx,
			`SELECT Event_ID FROM event WHERE BarRequirementID = ? LIMIT 1 FOR UPDATE`, id,
		).Scan(&eventID)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("no event references bar %d", id)
		}
		if err != nil {
			return err
		}
		return runPlan(ctx, tx, BarDeletionPlan, cascadeKeys{BarID: sql.NullInt64{Int64: id, Valid: true}})
	})
}

// RecalculateTotals rewrites the three cached totals from the current line
// items (sum of quantity * price per collection) and returns the bar.
func (r *BarRepo) RecalculateTotals(ctx context.Context, id int64) (*model.BarView, error) {
	err := inTx(ctx, r.db, "recalculate bar totals", func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM bar WHERE BarRequirementID = ? FOR UPDATE`, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("bar %d not found", id)
		}
		if err != nil {
			return err
		}
		const q = `UPDATE bar b SET
		             b.Total_Bite_Price = (SELECT COALESCE(SUM(Quantity * Price), 0) FROM bite WHERE BarRequirementID = b.BarRequirementID),
		             b.Total_Liquor_Price = (SELECT COALESCE(SUM(Quantity * Price), 0) FROM liquor_items WHERE BarRequirementID = b.BarRequirementID),
		             b.Total_Soft_Drink_Price = (SELECT COALESCE(SUM(Quantity * Price), 0) FROM soft_drink_items WHERE BarRequirementID = b.BarRequirementID)
		           WHERE b.BarRequirementID = ?`
		_, err = tx.ExecContext(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}
