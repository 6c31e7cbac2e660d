package services

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"

	"gameclub_backend/internal/database"
	"gameclub_backend/internal/events"
	"gameclub_backend/internal/models"
	"gameclub_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to TEST_DATABASE_URL, skipping when it is unset.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := database.Open(ctx, dsn, database.Options{MaxOpenConns: 10})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.ApplySchema(ctx, db, ""))
	return db
}

func newIntegrationLedger(db *sql.DB) (LedgerService, repositories.ConsumableRepository) {
	cr := repositories.NewConsumableRepository(db)
	return NewLedgerService(cr, repositories.NewSaleRepository(db), repositories.NewStockMoveRepository(db), events.Nop{}, db), cr
}

func seedConsumable(t *testing.T, svc LedgerService, name string, stock int) int64 {
	t.Helper()
	c, err := svc.AddConsumable(context.Background(), CreateConsumableRequest{
		Name: name, Type: models.ConsumableTypeDrinkable, Stock: stock,
		UnitPrice: dec("1.00"), SellPrice: dec("2.50"),
	})
	require.NoError(t, err)
	return c.ID
}

func countRows(t *testing.T, db *sql.DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestIntegration_ConcurrentSellOneSerializes(t *testing.T) {
	db := openTestDB(t)
	svc, repo := newIntegrationLedger(db)
	id := seedConsumable(t, svc, "Concurrent Cola", 5)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.SellOne(context.Background(), SellOneRequest{ID: id, Amount: 3, SellPrice: dec("2.50")})
		}(i)
	}
	wg.Wait()

	successes, shortages := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrInsufficientStock):
			shortages++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, shortages)

	c, err := repo.GetConsumableByID(context.Background(), nil, id)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Stock)

	assert.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM stock_moves WHERE consumable_id = $1 AND reason = 'sell'`, id))
	assert.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM sale_items WHERE consumable_id = $1`, id))
}

func TestIntegration_SellManyIsAllOrNothing(t *testing.T) {
	db := openTestDB(t)
	svc, repo := newIntegrationLedger(db)
	a := seedConsumable(t, svc, "Cart Water", 5)
	b := seedConsumable(t, svc, "Cart Juice", 1)

	_, err := svc.SellMany(context.Background(), SellManyRequest{Items: []SellLine{
		{ConsumableID: a, Amount: 2, SellPrice: dec("2.50")},
		{ConsumableID: b, Amount: 10, SellPrice: dec("2.50")},
	}})
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, b, stockErr.ConsumableID)

	ca, err := repo.GetConsumableByID(context.Background(), nil, a)
	require.NoError(t, err)
	assert.Equal(t, 5, ca.Stock)
	assert.Zero(t, countRows(t, db, `SELECT COUNT(*) FROM sale_items WHERE consumable_id IN ($1, $2)`, a, b))
	assert.Zero(t, countRows(t, db, `SELECT COUNT(*) FROM stock_moves WHERE consumable_id IN ($1, $2) AND reason = 'multi-sell'`, a, b))
}

func TestIntegration_AdjustStockAudited(t *testing.T) {
	db := openTestDB(t)
	svc, _ := newIntegrationLedger(db)
	id := seedConsumable(t, svc, "Edit Tea", 5)

	c, err := svc.AdjustStock(context.Background(), AdjustStockRequest{
		ID: id, Name: "Edit Tea", Stock: intPtr(8),
		UnitPrice: dec("1.00"), TotalCost: dec("8.00"), SellPrice: dec("3.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 8, c.Stock)

	var change int
	require.NoError(t, db.QueryRow(`SELECT m_change FROM stock_moves WHERE consumable_id = $1 AND reason = 'edit'`, id).Scan(&change))
	assert.Equal(t, 3, change)

	// stock equals the sum of its moves
	assert.Equal(t, 8, countRows(t, db, `SELECT COALESCE(SUM(m_change), 0) FROM stock_moves WHERE consumable_id = $1`, id))
}
