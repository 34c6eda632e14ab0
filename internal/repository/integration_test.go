//go:build integration

// Runs against a real MySQL: TEST_MYSQL_DSN=user:pass@tcp(127.0.0.1:3306)/venue_test
// go test -tags integration ./internal/repository/
package repository

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/venue-booking/internal/model"
)

func openIntegrationDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	cfg.ParseTime = true
	cfg.MultiStatements = true
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	deadline := time.Now().Add(20 * time.Second)
	for {
		if err = db.Ping(); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("mysql not ready: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	schema, err := os.ReadFile("../../db/schema.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

func seedEvent(t *testing.T, repo *EventRepo, name string) int64 {
	t.Helper()
	e, err := repo.Create(context.Background(), model.EventInput{Type: model.KindCustom, EventName: &name})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return e.ID
}

func countRows(t *testing.T, db *sql.DB, q string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRow(q, args...).Scan(&n); err != nil {
		t.Fatalf("%s: %v", q, err)
	}
	return n
}

func TestConcurrentArrangementCreationsGetDistinctIDs(t *testing.T) {
	db := openIntegrationDB(t)
	events := NewEventRepo(db)
	arrangements := NewArrangementRepo(db)

	const n = 8
	eventIDs := make([]int64, n)
	for i := range eventIDs {
		eventIDs[i] = seedEvent(t, events, "Concurrent")
	}

	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := arrangements.Create(context.Background(), model.ArrangementInput{
				EventID: eventIDs[i], LinenColor: "ivory", ChairCoverColor: "gold", HeadTablePax: 6,
				Reservations: []model.TableReservationInput{{TableNumber: 1, ReserveName: "A"}, {TableNumber: 2, ReserveName: "B"}},
			})
			errs[i] = err
			if d != nil {
				ids[i] = d.ID
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("create %d: %v", i, errs[i])
		}
		if seen[ids[i]] {
			t.Fatalf("duplicate arrangement id %s", ids[i])
		}
		seen[ids[i]] = true
	}

	for _, id := range eventIDs {
		if _, err := events.Delete(context.Background(), id); err != nil {
			t.Fatalf("cleanup: %v", err)
		}
	}
}

func TestEventDeleteLeavesNoOrphans(t *testing.T) {
	db := openIntegrationDB(t)
	ctx := context.Background()
	events := NewEventRepo(db)
	bars := NewBarRepo(db)
	items := NewBarItemRepo(db)
	arrangements := NewArrangementRepo(db)

	eventID := seedEvent(t, events, "Orphan check")
	bar := model.Bar{LiquorTimeFrom: "18:00", LiquorTimeTo: "23:00", BarPax: 120, TotalBitePrice: 50000, TotalLiquorPrice: 80000, TotalSoftDrinkPrice: 10000}
	if err := bars.Create(ctx, &bar); err != nil {
		t.Fatalf("create bar: %v", err)
	}
	if err := events.AttachBar(ctx, eventID, bar.ID); err != nil {
		t.Fatalf("attach bar: %v", err)
	}
	for _, it := range []struct {
		kind model.ItemKind
		name string
	}{{model.ItemBite, "Canapes"}, {model.ItemBite, "Samosa"}, {model.ItemLiquor, "Whisky"}} {
		if err := items.Create(ctx, it.kind, bar.ID, &model.LineItem{Name: it.name, Quantity: 10, Price: 100}); err != nil {
			t.Fatalf("create item: %v", err)
		}
	}
	arr, err := arrangements.Create(ctx, model.ArrangementInput{
		EventID: eventID, LinenColor: "white", ChairCoverColor: "silver", HeadTablePax: 4,
		Reservations: []model.TableReservationInput{
			{TableNumber: 1, ReserveName: "A"}, {TableNumber: 2, ReserveName: "B"}, {TableNumber: 3, ReserveName: "C"},
		},
	})
	if err != nil {
		t.Fatalf("create arrangement: %v", err)
	}

	before := countRows(t, db, `SELECT COUNT(*) FROM arrangement_reservation WHERE Arrangement_ID = ?`, arr.ID)
	if before != 3 {
		t.Fatalf("reservations before delete = %d", before)
	}

	deleted, err := events.Delete(ctx, eventID)
	if err != nil || !deleted {
		t.Fatalf("Delete = %v, %v", deleted, err)
	}

	checks := map[string][]any{
		`SELECT COUNT(*) FROM event WHERE Event_ID = ?`:                        {eventID},
		`SELECT COUNT(*) FROM customevent WHERE Event_ID = ?`:                  {eventID},
		`SELECT COUNT(*) FROM bar WHERE BarRequirementID = ?`:                  {bar.ID},
		`SELECT COUNT(*) FROM bite WHERE BarRequirementID = ?`:                 {bar.ID},
		`SELECT COUNT(*) FROM liquor_items WHERE BarRequirementID = ?`:         {bar.ID},
		`SELECT COUNT(*) FROM table_chair_arrangement WHERE Arrangement_ID = ?`: {arr.ID},
		`SELECT COUNT(*) FROM arrangement_reservation WHERE Arrangement_ID = ?`: {arr.ID},
		`SELECT COUNT(*) FROM event_table_chair WHERE Event_ID = ?`:            {eventID},
	}
	for q, args := range checks {
		if n := countRows(t, db, q, args...); n != 0 {
			t.Errorf("%s = %d after delete", q, n)
		}
	}
	for _, r := range arr.ReservedTables {
		if n := countRows(t, db, `SELECT COUNT(*) FROM table_reserve WHERE Table_Reserve_ID = ?`, r.ID); n != 0 {
			t.Errorf("reservation %s survived", r.ID)
		}
	}

	deleted, err = events.Delete(ctx, eventID)
	if err != nil || deleted {
		t.Fatalf("second Delete = %v, %v", deleted, err)
	}
}
