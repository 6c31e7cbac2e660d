package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gameclub_backend/internal/models"
)

// ConsumableRepository defines the interface for consumable-related database operations.
type ConsumableRepository interface {
	CreateConsumable(ctx context.Context, executor SQLExecutor, c *models.Consumable) (int64, error)
	GetConsumableByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Consumable, error)
	GetConsumableByBarcode(ctx context.Context, barcode string) (*models.Consumable, error)
	GetConsumables(ctx context.Context, filters models.ConsumableFilters) ([]models.Consumable, error)
	UpdateConsumable(ctx context.Context, executor SQLExecutor, c *models.Consumable) error

	// LockStock reads the current stock under a row-level exclusive lock.
	// It must run inside a transaction; the lock is held until commit or rollback.
	LockStock(ctx context.Context, executor SQLExecutor, id int64) (stock int, name string, err error)
	// UpdateStock applies a signed delta and returns the new stock level.
	UpdateStock(ctx context.Context, executor SQLExecutor, id int64, delta int) (int, error)
}

type consumableRepository struct {
	db *sql.DB
}

// NewConsumableRepository creates a new instance of ConsumableRepository.
func NewConsumableRepository(db *sql.DB) ConsumableRepository {
	return &consumableRepository{db: db}
}

const consumableColumns = `id, name, type, stock, unit_price, total_cost, sell_price, barcode, created_at, updated_at`

func scanConsumable(s scanner, c *models.Consumable) error {
	return s.Scan(&c.ID, &c.Name, &c.Type, &c.Stock, &c.UnitPrice, &c.TotalCost, &c.SellPrice,
		&c.Barcode, &c.CreatedAt, &c.UpdatedAt)
}

func (r *consumableRepository) CreateConsumable(ctx context.Context, executor SQLExecutor, c *models.Consumable) (int64, error) {
	query := `INSERT INTO consumables
	            (name, type, stock, unit_price, total_cost, sell_price, barcode, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`
	currentTime := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = currentTime
	}
	c.UpdatedAt = currentTime

	err := executor.QueryRowContext(ctx, query,
		c.Name, c.Type, c.Stock, c.UnitPrice, c.TotalCost, c.SellPrice, c.Barcode, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		if pqErr, ok := isUniqueViolation(err); ok {
			return 0, fmt.Errorf("%w: consumable '%s' (constraint: %s)", ErrDuplicateKey, c.Name, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating consumable: %v", ErrDatabaseError, err)
	}
	return c.ID, nil
}

func (r *consumableRepository) GetConsumableByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Consumable, error) {
	if executor == nil {
		executor = r.db
	}
	c := &models.Consumable{}
	query := `SELECT ` + consumableColumns + ` FROM consumables WHERE id = $1`
	if err := scanConsumable(executor.QueryRowContext(ctx, query, id), c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting consumable by ID %d: %v", ErrDatabaseError, id, err)
	}
	return c, nil
}

func (r *consumableRepository) GetConsumableByBarcode(ctx context.Context, barcode string) (*models.Consumable, error) {
	c := &models.Consumable{}
	// barcode is not unique in the schema; the oldest row wins
	query := `SELECT ` + consumableColumns + ` FROM consumables WHERE barcode = $1 ORDER BY id LIMIT 1`
	if err := scanConsumable(r.db.QueryRowContext(ctx, query, barcode), c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting consumable by barcode %s: %v", ErrDatabaseError, barcode, err)
	}
	return c, nil
}

func (r *consumableRepository) GetConsumables(ctx context.Context, filters models.ConsumableFilters) ([]models.Consumable, error) {
	consumables := []models.Consumable{}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + consumableColumns + ` FROM consumables`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Type != nil && *filters.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argCount))
		args = append(args, *filters.Type)
		argCount++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR barcode = $%d)", argCount, argCount+1))
		args = append(args, "%"+*filters.Search+"%", *filters.Search)
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY name, id")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying consumables: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Consumable
		if err := scanConsumable(rows, &c); err != nil {
			return nil, fmt.Errorf("%w: scanning consumable: %v", ErrDatabaseError, err)
		}
		consumables = append(consumables, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating consumables: %v", ErrDatabaseError, err)
	}
	return consumables, nil
}

func (r *consumableRepository) UpdateConsumable(ctx context.Context, executor SQLExecutor, c *models.Consumable) error {
	query := `UPDATE consumables
	          SET name = $1, stock = $2, unit_price = $3, total_cost = $4, sell_price = $5, barcode = $6, updated_at = $7
	          WHERE id = $8`
	c.UpdatedAt = time.Now()
	result, err := executor.ExecContext(ctx, query,
		c.Name, c.Stock, c.UnitPrice, c.TotalCost, c.SellPrice, c.Barcode, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("%w: updating consumable ID %d: %v", ErrDatabaseError, c.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for consumable update ID %d: %v", ErrDatabaseError, c.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *consumableRepository) LockStock(ctx context.Context, executor SQLExecutor, id int64) (int, string, error) {
	var stock int
	var name string
	query := `SELECT name, stock FROM consumables WHERE id = $1 FOR UPDATE`
	err := executor.QueryRowContext(ctx, query, id).Scan(&name, &stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", ErrNotFound
		}
		return 0, "", fmt.Errorf("%w: locking stock for consumable ID %d: %v", ErrDatabaseError, id, err)
	}
	return stock, name, nil
}

func (r *consumableRepository) UpdateStock(ctx context.Context, executor SQLExecutor, id int64, delta int) (int, error) {
	var newStock int
	query := `UPDATE consumables
	          SET stock = stock + $1, updated_at = $2
	          WHERE id = $3
	          RETURNING stock`
	err := executor.QueryRowContext(ctx, query, delta, time.Now(), id).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: updating stock for consumable ID %d: %v", ErrDatabaseError, id, err)
	}
	return newStock, nil
}
