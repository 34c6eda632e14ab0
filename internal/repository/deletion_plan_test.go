package repository

import (
	"context"
	"database/sql"
	"testing"
)

// parentsAfterChildren checks that every child table in plan is deleted (or
// has its reference cleared) before its parent row is deleted.
func parentsAfterChildren(t *testing.T, name string, plan []DeleteStep) {
	t.Helper()
	firstTouch := map[string]int{}
	firstDelete := map[string]int{}
	for i, s := range plan {
		if _, ok := firstTouch[s.Table]; !ok {
			firstTouch[s.Table] = i
		}
		if _, ok := firstDelete[s.Table]; !ok && s.Clear == "" {
			firstDelete[s.Table] = i
		}
	}
	for _, fk := range foreignKeys {
		child, parent := fk[0], fk[1]
		p, ok := firstDelete[parent]
		if !ok {
			continue
		}
		c, ok := firstTouch[child]
		if !ok {
			t.Errorf("%s: deletes %s but never releases child %s", name, parent, child)
			continue
		}
		if c >= p {
			t.Errorf("%s: child %s (step %d) must precede parent %s (step %d)", name, child, c, parent, p)
		}
	}
}

func TestDeletionPlansRespectForeignKeys(t *testing.T) {
	parentsAfterChildren(t, "event", EventDeletionPlan)
	parentsAfterChildren(t, "bar", BarDeletionPlan)
	parentsAfterChildren(t, "assignment", AssignmentDeletionPlan)
}

func TestEventDeletionPlanCoversEveryDependentTable(t *testing.T) {
	touched := map[string]bool{}
	for _, s := range EventDeletionPlan {
		touched[s.Table] = true
	}
	for _, fk := range foreignKeys {
		if !touched[fk[0]] || !touched[fk[1]] {
			t.Errorf("foreign key %s -> %s not covered", fk[0], fk[1])
		}
	}
	if last := EventDeletionPlan[len(EventDeletionPlan)-1]; last.Table != "event" || last.Clear != "" {
		t.Fatalf("last step = %+v, want event delete", last)
	}
}

func TestDeleteStepStatements(t *testing.T) {
	del := DeleteStep{Table: "table_reserve", Column: "Table_Reserve_ID", Source: byReservations}
	if got, want := del.statement(3), "DELETE FROM `table_reserve` WHERE `Table_Reserve_ID` IN (?,?,?)"; got != want {
		t.Fatalf("statement = %q, want %q", got, want)
	}
	clr := DeleteStep{Table: "event", Column: "BarRequirementID", Source: byBar, Clear: "BarRequirementID"}
	if got, want := clr.statement(1), "UPDATE `event` SET `BarRequirementID` = NULL WHERE `BarRequirementID` IN (?)"; got != want {
		t.Fatalf("statement = %q, want %q", got, want)
	}
}

func TestRunPlanSkipsAbsentKeys(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `bite`").WithArgs(int64(2)).WillReturnResult(noRows())
	mock.ExpectExec("DELETE FROM `liquor_items`").WithArgs(int64(2)).WillReturnResult(noRows())
	mock.ExpectExec("DELETE FROM `soft_drink_items`").WithArgs(int64(2)).WillReturnResult(noRows())
	mock.ExpectExec("UPDATE `event`").WithArgs(int64(2)).WillReturnResult(noRows())
	mock.ExpectExec("DELETE FROM `bar`").WithArgs(int64(2)).WillReturnResult(noRows())
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatal(err)
	}
	// the arrangement keys are absent, so only the bar half runs
	plan := concatPlans(ArrangementDeletionPlan, BarDeletionPlan)
	if err := runPlan(context.Background(), tx, plan, cascadeKeys{BarID: sql.NullInt64{Int64: 2, Valid: true}}); err != nil {
		t.Fatalf("runPlan: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
}
