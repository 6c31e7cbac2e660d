package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"gameclub_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleRepository_CreateSaleAndItem(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSaleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO sales (created_at) VALUES ($1) RETURNING id`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO sale_items (sale_id, consumable_id, amount, sell_price)`)).
		WithArgs(int64(11), int64(7), 3, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))

	sale := &models.Sale{}
	saleID, err := repo.CreateSale(context.Background(), db, sale)
	require.NoError(t, err)
	assert.Equal(t, int64(11), saleID)
	assert.False(t, sale.CreatedAt.IsZero())

	item := &models.SaleItem{SaleID: saleID, ConsumableID: 7, Amount: 3, SellPrice: decimal.RequireFromString("2.50")}
	itemID, err := repo.CreateSaleItem(context.Background(), db, item)
	require.NoError(t, err)
	assert.Equal(t, int64(21), itemID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleRepository_GetSaleLines_ComputesTotals(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSaleRepository(db)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	typ := "drinkable"

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE s.created_at >= $1 AND s.created_at < $2 AND c.type = $3 ORDER BY s.created_at DESC, si.id DESC`)).
		WithArgs(start, end, "drinkable").
		WillReturnRows(sqlmock.NewRows([]string{"s.id", "si.id", "consumable_id", "name", "type", "amount", "sell_price", "unit_price", "created_at"}).
			AddRow(int64(2), int64(3), int64(7), "Cola", "drinkable", 3, "2.50", "1.00", start.Add(time.Hour)))

	lines, err := repo.GetSaleLines(context.Background(), models.ReportFilters{StartDate: &start, EndDate: &end, Type: &typ})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Total.Equal(decimal.RequireFromString("7.50")), lines[0].Total.String())
	assert.True(t, lines[0].Profit.Equal(decimal.RequireFromString("4.50")), lines[0].Profit.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleRepository_GetRevenueSince(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSaleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(si.amount * si.sell_price), 0)`)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("42.50"))

	revenue, err := repo.GetRevenueSince(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.RequireFromString("42.5")))

	since := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE s.created_at >= $1`)).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("0"))

	revenue, err = repo.GetRevenueSince(context.Background(), &since)
	require.NoError(t, err)
	assert.True(t, revenue.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
