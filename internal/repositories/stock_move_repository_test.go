package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"gameclub_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockMoveRepository_CreateMove(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStockMoveRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO stock_moves (consumable_id, m_change, reason, created_at)`)).
		WithArgs(int64(7), -3, models.MoveReasonSell, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	move := &models.StockMove{ConsumableID: 7, MChange: -3, Reason: models.MoveReasonSell}
	id, err := repo.CreateMove(context.Background(), db, move)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockMoveRepository_GetMoves_Paged(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStockMoveRepository(db)

	id := int64(7)
	reason := models.MoveReasonEdit
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE sm.consumable_id = $1 AND sm.reason = $2 ORDER BY sm.created_at DESC, sm.id DESC LIMIT $3 OFFSET $4`)).
		WithArgs(id, reason, 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "consumable_id", "m_change", "reason", "created_at", "name", "type", "total_count"}).
			AddRow(int64(9), id, 4, reason, now, "Cola", "drinkable", 11))

	moves, total, err := repo.GetMoves(context.Background(), models.StockMoveFilters{
		ConsumableID: &id, Reason: &reason, Page: 2, PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, moves, 1)
	assert.Equal(t, 4, moves[0].MChange)
	assert.Equal(t, "Cola", moves[0].ConsumableName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockMoveRepository_GetMoves_UnpagedEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStockMoveRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY sm.created_at DESC, sm.id DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "consumable_id", "m_change", "reason", "created_at", "name", "type", "total_count"}))

	moves, total, err := repo.GetMoves(context.Background(), models.StockMoveFilters{})
	require.NoError(t, err)
	assert.Empty(t, moves)
	assert.NotNil(t, moves)
	assert.Equal(t, 0, total)
}
