package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gameclub_backend/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// SaleRepository defines the interface for sale-related database operations.
// Sales and sale items are insert-only.
type SaleRepository interface {
	CreateSale(ctx context.Context, executor SQLExecutor, sale *models.Sale) (int64, error)
	CreateSaleItem(ctx context.Context, executor SQLExecutor, item *models.SaleItem) (int64, error)
	GetSaleLines(ctx context.Context, filters models.ReportFilters) ([]models.SaleLine, error)
	GetRevenueSince(ctx context.Context, since *time.Time) (decimal.Decimal, error)
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository creates a new instance of SaleRepository.
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) CreateSale(ctx context.Context, executor SQLExecutor, sale *models.Sale) (int64, error) {
	query := `INSERT INTO sales (created_at) VALUES ($1) RETURNING id`
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now()
	}
	if err := executor.QueryRowContext(ctx, query, sale.CreatedAt).Scan(&sale.ID); err != nil {
		return 0, fmt.Errorf("%w: creating sale: %v", ErrDatabaseError, err)
	}
	return sale.ID, nil
}

func (r *saleRepository) CreateSaleItem(ctx context.Context, executor SQLExecutor, item *models.SaleItem) (int64, error) {
	query := `INSERT INTO sale_items (sale_id, consumable_id, amount, sell_price)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	err := executor.QueryRowContext(ctx, query, item.SaleID, item.ConsumableID, item.Amount, item.SellPrice).Scan(&item.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return 0, fmt.Errorf("%w: creating sale item (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating sale item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *saleRepository) GetSaleLines(ctx context.Context, filters models.ReportFilters) ([]models.SaleLine, error) {
	lines := []models.SaleLine{}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT s.id, si.id, si.consumable_id, c.name, c.type, si.amount, si.sell_price, c.unit_price, s.created_at
		FROM sale_items si
		JOIN sales s ON si.sale_id = s.id
		JOIN consumables c ON si.consumable_id = c.id`)

	conditions, args := reportConditions("s.created_at", "c.type", filters.StartDate, filters.EndDate, filters.Type)
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY s.created_at DESC, si.id DESC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying sale lines: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.SaleLine
		if err := rows.Scan(&l.SaleID, &l.SaleItemID, &l.ConsumableID, &l.Name, &l.Type,
			&l.Amount, &l.SellPrice, &l.UnitPrice, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning sale line: %v", ErrDatabaseError, err)
		}
		qty := decimal.NewFromInt(int64(l.Amount))
		l.Total = qty.Mul(l.SellPrice)
		l.Profit = qty.Mul(l.SellPrice.Sub(l.UnitPrice))
		lines = append(lines, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sale lines: %v", ErrDatabaseError, err)
	}
	return lines, nil
}

func (r *saleRepository) GetRevenueSince(ctx context.Context, since *time.Time) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	query := `SELECT COALESCE(SUM(si.amount * si.sell_price), 0)
	          FROM sale_items si
	          JOIN sales s ON si.sale_id = s.id`
	var args []interface{}
	if since != nil {
		query += ` WHERE s.created_at >= $1`
		args = append(args, *since)
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&revenue); err != nil {
		return decimal.Zero, fmt.Errorf("%w: summing revenue: %v", ErrDatabaseError, err)
	}
	return revenue, nil
}

// reportConditions builds the shared date-range and type predicates. end is exclusive.
func reportConditions(dateColumn, typeColumn string, start, end *time.Time, typ *string) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if start != nil {
		conditions = append(conditions, fmt.Sprintf("%s >= $%d", dateColumn, argCount))
		args = append(args, *start)
		argCount++
	}
	if end != nil {
		conditions = append(conditions, fmt.Sprintf("%s < $%d", dateColumn, argCount))
		args = append(args, *end)
		argCount++
	}
	if typ != nil && *typ != "" {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", typeColumn, argCount))
		args = append(args, *typ)
	}
	return conditions, args
}
