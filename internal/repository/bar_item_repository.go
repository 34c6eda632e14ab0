package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/venue-booking/internal/model"
)

// itemTable maps an item kind onto its table.  All three tables share the
// Quantity, Price and BarRequirementID columns.
type itemTable struct {
	table   string
	idCol   string
	nameCol string
}

var itemTables = map[model.ItemKind]itemTable{
	model.ItemBite:      {table: "bite", idCol: "Bite_ID", nameCol: "Bite_Name"},
	model.ItemLiquor:    {table: "liquor_items", idCol: "Liquor_Item_ID", nameCol: "Liquor_Name"},
	model.ItemSoftDrink: {table: "soft_drink_items", idCol: "Soft_Drink_Item_ID", nameCol: "Soft_Drink_Name"},
}

func tableFor(kind model.ItemKind) (itemTable, error) {
	t, ok := itemTables[kind]
	if !ok {
		return itemTable{}, validation("unknown item kind %q", kind)
	}
	return t, nil
}

// BarItemRepo provides keyed CRUD over bites, liquor items and soft drink
// items.  Every operation is scoped to a bar id; items have no children so
// nothing cascades.
type BarItemRepo struct {
	db *sql.DB
}

func NewBarItemRepo(db *sql.DB) *BarItemRepo { return &BarItemRepo{db: db} }

func validateItem(it *model.LineItem) error {
	var missing []string
	if strings.TrimSpace(it.Name) == "" {
		missing = append(missing, "name")
	}
	if it.Quantity <= 0 {
		missing = append(missing, "quantity")
	}
	if it.Price < 0 {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return validation("invalid item fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Create inserts an item for barID.  The bar must exist.
func (r *BarItemRepo) Create(ctx context.Context, kind model.ItemKind, barID int64, it *model.LineItem) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	if err := validateItem(it); err != nil {
		return err
	}
	return inTx(ctx, r.db, "create "+t.table, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM bar WHERE BarRequirementID = ? FOR UPDATE", barID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("bar %d not found", barID)
		}
		if err != nil {
			return err
		}
		q := fmt.Sprintf("INSERT INTO `%s` (`%s`, Quantity, Price, BarRequirementID) VALUES (?, ?, ?, ?)", t.table, t.nameCol)
		res, err := tx.ExecContext(ctx, q, it.Name, it.Quantity, it.Price, barID)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		it.ID = id
		it.BarID = barID
		return nil
	})
}

// ListByBar returns the items of one kind for barID, never nil.  The bar
// must exist.
func (r *BarItemRepo) ListByBar(ctx context.Context, kind model.ItemKind, barID int64) ([]model.LineItem, error) {
	if _, err := tableFor(kind); err != nil {
		return nil, err
	}
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM bar WHERE BarRequirementID = ?`, barID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("bar %d not found", barID)
	}
	if err != nil {
		return nil, classify(err, false, "lookup bar")
	}
	byBar, err := loadItems(ctx, r.db, kind, []int64{barID})
	if err != nil {
		return nil, err
	}
	if items := byBar[barID]; items != nil {
		return items, nil
	}
	return []model.LineItem{}, nil
}

// Update replaces name, quantity and price of an item of barID.
func (r *BarItemRepo) Update(ctx context.Context, kind model.ItemKind, barID, itemID int64, it *model.LineItem) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	if err := validateItem(it); err != nil {
		return err
	}
	q := fmt.Sprintf("UPDATE `%s` SET `%s` = ?, Quantity = ?, Price = ? WHERE `%s` = ? AND BarRequirementID = ?", t.table, t.nameCol, t.idCol)
	res, err := r.db.ExecContext(ctx, q, it.Name, it.Quantity, it.Price, itemID, barID)
	if err != nil {
		return classify(err, false, "update "+t.table)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 affected rows for an unchanged row; tell the two apart.
		exists, err := r.exists(ctx, t, barID, itemID)
		if err != nil {
			return err
		}
		if !exists {
			return notFound("%s item %d not found for bar %d", kind, itemID, barID)
		}
	}
	it.ID = itemID
	it.BarID = barID
	return nil
}

// Delete removes one item of barID.
func (r *BarItemRepo) Delete(ctx context.Context, kind model.ItemKind, barID, itemID int64) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	q := fmt.Sprintf("DELETE FROM `%s` WHERE `%s` = ? AND BarRequirementID = ?", t.table, t.idCol)
	res, err := r.db.ExecContext(ctx, q, itemID, barID)
	if err != nil {
		return classify(err, false, "delete "+t.table)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("%s item %d not found for bar %d", kind, itemID, barID)
	}
	return nil
}

func (r *BarItemRepo) exists(ctx context.Context, t itemTable, barID, itemID int64) (bool, error) {
	q := fmt.Sprintf("SELECT 1 FROM `%s` WHERE `%s` = ? AND BarRequirementID = ?", t.table, t.idCol)
	var one int
	err := r.db.QueryRowContext(ctx, q, itemID, barID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify(err, false, "lookup "+t.table)
	}
	return true, nil
}

// loadItems fetches the items of one kind for several bars in one query and
// groups them by bar id.
func loadItems(ctx context.Context, q queryer, kind model.ItemKind, barIDs []int64) (map[int64][]model.LineItem, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	out := make(map[int64][]model.LineItem, len(barIDs))
	if len(barIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(barIDs))
	for i, id := range barIDs {
		args[i] = id
	}
	query := fmt.Sprintf("SELECT `%s`, BarRequirementID, `%s`, Quantity, Price FROM `%s` WHERE BarRequirementID IN (%s) ORDER BY BarRequirementID, `%s`",
		t.idCol, t.nameCol, t.table, placeholders(len(barIDs)), t.idCol)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, false, "list "+t.table)
	}
	defer rows.Close()
	for rows.Next() {
		var it model.LineItem
		if err := rows.Scan(&it.ID, &it.BarID, &it.Name, &it.Quantity, &it.Price); err != nil {
			return nil, classify(err, false, "scan "+t.table)
		}
		out[it.BarID] = append(out[it.BarID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, false, "list "+t.table)
	}
	return out, nil
}
