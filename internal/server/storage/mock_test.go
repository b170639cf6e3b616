package storage

import (
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return &DB{sqlx.NewDb(mockDB, "postgres")}, mock
}

func sqlmockResult(rows int64) driver.Result {
	return sqlmock.NewResult(0, rows)
}
