package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gameclub_backend/internal/models"
)

// StockMoveRepository defines the interface for the stock audit trail.
// There are no update or delete methods: moves are append-only.
type StockMoveRepository interface {
	CreateMove(ctx context.Context, executor SQLExecutor, move *models.StockMove) (int64, error)
	GetMoves(ctx context.Context, filters models.StockMoveFilters) ([]models.StockMove, int, error)
}

type stockMoveRepository struct {
	db *sql.DB
}

// NewStockMoveRepository creates a new instance of StockMoveRepository.
func NewStockMoveRepository(db *sql.DB) StockMoveRepository {
	return &stockMoveRepository{db: db}
}

func (r *stockMoveRepository) CreateMove(ctx context.Context, executor SQLExecutor, move *models.StockMove) (int64, error) {
	query := `INSERT INTO stock_moves (consumable_id, m_change, reason, created_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	if move.CreatedAt.IsZero() {
		move.CreatedAt = time.Now()
	}

	err := executor.QueryRowContext(ctx, query, move.ConsumableID, move.MChange, move.Reason, move.CreatedAt).Scan(&move.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating stock move: %v", ErrDatabaseError, err)
	}
	return move.ID, nil
}

func (r *stockMoveRepository) GetMoves(ctx context.Context, filters models.StockMoveFilters) ([]models.StockMove, int, error) {
	moves := []models.StockMove{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT
	    sm.id, sm.consumable_id, sm.m_change, sm.reason, sm.created_at,
	    c.name, c.type,
	    COUNT(*) OVER() AS total_count
	  FROM stock_moves sm
	  JOIN consumables c ON sm.consumable_id = c.id`)

	conditions, args := reportConditions("sm.created_at", "c.type", filters.StartDate, filters.EndDate, filters.Type)
	argCount := len(args) + 1

	if filters.ConsumableID != nil {
		conditions = append(conditions, fmt.Sprintf("sm.consumable_id = $%d", argCount))
		args = append(args, *filters.ConsumableID)
		argCount++
	}
	if filters.Reason != nil && *filters.Reason != "" {
		conditions = append(conditions, fmt.Sprintf("sm.reason = $%d", argCount))
		args = append(args, *filters.Reason)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY sm.created_at DESC, sm.id DESC")
	if filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filters.PageSize, (page-1)*filters.PageSize)
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting stock moves: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var move models.StockMove
		if err := rows.Scan(
			&move.ID, &move.ConsumableID, &move.MChange, &move.Reason, &move.CreatedAt,
			&move.ConsumableName, &move.ConsumableType,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning stock move: %v", ErrDatabaseError, err)
		}

		moves = append(moves, move)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating stock moves: %v", ErrDatabaseError, err)
	}

	return moves, totalCount, nil
}
