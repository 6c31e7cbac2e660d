package repositories

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"gameclub_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var consumableCols = []string{"id", "name", "type", "stock", "unit_price", "total_cost", "sell_price", "barcode", "created_at", "updated_at"}

func TestConsumableRepository_LockStock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConsumableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name, stock FROM consumables WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "stock"}).AddRow("Cola", 5))

	stock, name, err := repo.LockStock(context.Background(), db, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, stock)
	assert.Equal(t, "Cola", name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumableRepository_LockStock_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConsumableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, _, err := repo.LockStock(context.Background(), db, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConsumableRepository_UpdateStock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConsumableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE consumables`)).
		WithArgs(-3, sqlmock.AnyArg(), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(2))

	newStock, err := repo.UpdateStock(context.Background(), db, 7, -3)
	require.NoError(t, err)
	assert.Equal(t, 2, newStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumableRepository_CreateConsumable(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConsumableRepository(db)

	barcode := "4870001"
	c := &models.Consumable{
		Name:      "Chips",
		Type:      models.ConsumableTypeEatable,
		Stock:     10,
		UnitPrice: decimal.RequireFromString("1.20"),
		TotalCost: decimal.RequireFromString("12.00"),
		SellPrice: decimal.RequireFromString("2.50"),
		Barcode:   &barcode,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO consumables`)).
		WithArgs("Chips", "eatable", 10, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), barcode, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	id, err := repo.CreateConsumable(context.Background(), db, c)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.Equal(t, int64(3), c.ID)
	assert.False(t, c.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumableRepository_GetConsumables_Filters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConsumableRepository(db)

	now := time.Now()
	typ, search := "drinkable", "col"
	mock.ExpectQuery(regexp.QuoteMeta(`FROM consumables WHERE type = $1 AND (name ILIKE $2 OR barcode = $3) ORDER BY name, id`)).
		WithArgs("drinkable", "%col%", "col").
		WillReturnRows(sqlmock.NewRows(consumableCols).
			AddRow(int64(1), "Cola", "drinkable", 5, "1.00", "5.00", "2.00", nil, now, now))

	list, err := repo.GetConsumables(context.Background(), models.ConsumableFilters{Type: &typ, Search: &search})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Cola", list[0].Name)
	assert.True(t, list[0].SellPrice.Equal(decimal.NewFromInt(2)))
	assert.Nil(t, list[0].Barcode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumableRepository_UpdateConsumable_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConsumableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE consumables`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateConsumable(context.Background(), db, &models.Consumable{ID: 42, Name: "Gone"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConsumableRepository_GetConsumableByBarcode(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConsumableRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE barcode = $1 ORDER BY id LIMIT 1`)).
		WithArgs("4870001").
		WillReturnRows(sqlmock.NewRows(consumableCols).
			AddRow(int64(4), "Chips", "eatable", 3, "1.20", "3.60", "2.50", "4870001", now, now))

	c, err := repo.GetConsumableByBarcode(context.Background(), "4870001")
	require.NoError(t, err)
	require.NotNil(t, c.Barcode)
	assert.Equal(t, "4870001", *c.Barcode)
}
