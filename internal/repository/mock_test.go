package repository

import (
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

// exact matches a full statement literally.
func exact(q string) string { return "^" + regexp.QuoteMeta(q) + "$" }

// expectPlan registers one exec per step of plan, in order, each
// affecting one row.
func expectPlan(mock sqlmock.Sqlmock, plan []DeleteStep, keys cascadeKeys) {
	for _, s := range plan {
		args := keys.values(s.Source)
		if len(args) == 0 {
			continue
		}
		mock.ExpectExec(exact(s.statement(len(args)))).
			WithArgs(driverArgs(args)...).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
}

func driverArgs(args []any) []driver.Value {
	out := make([]driver.Value, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}

func mysqlErr(number uint16) error {
	return &mysql.MySQLError{Number: number, Message: "mocked"}
}

func noRows() driver.Result { return sqlmock.NewResult(0, 0) }
