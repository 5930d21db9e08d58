package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestNamedCountClosesCursor(t *testing.T) {
	db, mock := newMock(t)
	db.SetMaxOpenConns(1)

	mock.ExpectQuery(`SELECT count\(\*\) FROM orders WHERE organization_id = \$1`).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7)).
		RowsWillBeClosed()
	mock.ExpectQuery(`SELECT id FROM orders`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("o-1"))

	n, err := NamedCount(context.Background(), db,
		"SELECT count(*) FROM orders WHERE organization_id = :organization_id",
		map[string]interface{}{"organization_id": "org-1"})
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	// With a single connection this only succeeds when the count cursor was released.
	var ids []string
	require.NoError(t, db.SelectContext(context.Background(), &ids, "SELECT id FROM orders"))
	assert.Equal(t, []string{"o-1"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNamedCountReportsRowError(t *testing.T) {
	db, mock := newMock(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`SELECT count`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1).RowError(0, boom))

	_, err := NamedCount(context.Background(), db, "SELECT count(*) FROM orders", map[string]interface{}{})
	assert.ErrorIs(t, err, boom)
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pq.Error{Code: "23505", Constraint: "products_org_sku_key"}

	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "products_org_sku_key"))
	assert.False(t, IsUniqueViolation(err, "stocks_product_warehouse_key"))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}, ""))
	assert.False(t, IsUniqueViolation(errors.New("x"), ""))
}
