package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gameclub_backend/internal/events"
	"gameclub_backend/internal/models"
	"gameclub_backend/internal/repositories"
	"gameclub_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

var (
	ErrConsumableNotFound = errors.New("consumable not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrStorageFailure     = errors.New("storage failure")
)

// InsufficientStockError identifies the line that aborted a sale.
type InsufficientStockError struct {
	ConsumableID int64
	Name         string
	Requested    int
	Available    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s for %s (ID: %d). Requested: %d, Available: %d",
		ErrInsufficientStock, e.Name, e.ConsumableID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

func storageFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}

// --- DTOs ---

// Bounds mirror the schema: VARCHAR(255) names, INTEGER stock and amounts.
type CreateConsumableRequest struct {
	Name      string           `json:"name" binding:"required,max=255"`
	Type      string           `json:"type" binding:"required,oneof=eatable drinkable"`
	Stock     int              `json:"stock" binding:"gte=0,lte=2147483647"`
	UnitPrice *decimal.Decimal `json:"unit_price" binding:"required"`
	TotalCost *decimal.Decimal `json:"total_cost"`
	SellPrice *decimal.Decimal `json:"sell_price" binding:"required"`
	Barcode   string           `json:"barcode" binding:"max=64"`
}

// SellOneRequest sells a single consumable. SellPrice may differ from the configured price.
type SellOneRequest struct {
	ID        int64            `json:"id" binding:"required,gt=0"`
	Amount    int              `json:"amount" binding:"required,gt=0,lte=2147483647"`
	SellPrice *decimal.Decimal `json:"sell_price" binding:"required"`
}

type SellLine struct {
	ConsumableID int64            `json:"consumable_id" binding:"required,gt=0"`
	Amount       int              `json:"amount" binding:"required,gt=0,lte=2147483647"`
	SellPrice    *decimal.Decimal `json:"sell_price" binding:"required"`
}

type SellManyRequest struct {
	Items []SellLine `json:"items" binding:"required,min=1,dive"`
}

// AdjustStockRequest is a manual edit: every field is overwritten.
type AdjustStockRequest struct {
	ID        int64            `json:"id" binding:"required,gt=0"`
	Name      string           `json:"name" binding:"required,max=255"`
	Stock     *int             `json:"stock" binding:"required,gte=0,lte=2147483647"`
	UnitPrice *decimal.Decimal `json:"unit_price" binding:"required"`
	TotalCost *decimal.Decimal `json:"total_cost" binding:"required"`
	SellPrice *decimal.Decimal `json:"sell_price" binding:"required"`
	Barcode   string           `json:"barcode" binding:"max=64"`
}

// --- LedgerService Interface ---

// LedgerService owns consumable stock levels and the sale / stock-move audit trail.
type LedgerService interface {
	ListConsumables(ctx context.Context, filters models.ConsumableFilters) ([]models.Consumable, error)
	GetConsumableByBarcode(ctx context.Context, barcode string) (*models.Consumable, error)
	AddConsumable(ctx context.Context, req CreateConsumableRequest) (*models.Consumable, error)
	SellOne(ctx context.Context, req SellOneRequest) (int64, error)
	SellMany(ctx context.Context, req SellManyRequest) (int64, error)
	AdjustStock(ctx context.Context, req AdjustStockRequest) (*models.Consumable, error)
	GetStockMoves(ctx context.Context, filters models.StockMoveFilters) ([]models.StockMove, int, error)
}

type ledgerService struct {
	consumableRepo repositories.ConsumableRepository
	saleRepo       repositories.SaleRepository
	stockMoveRepo  repositories.StockMoveRepository
	notifier       events.Notifier
	db             *sql.DB // For managing transactions
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	cr repositories.ConsumableRepository,
	sr repositories.SaleRepository,
	smr repositories.StockMoveRepository,
	notifier events.Notifier,
	db *sql.DB,
) LedgerService {
	if notifier == nil {
		notifier = events.Nop{}
	}
	return &ledgerService{
		consumableRepo: cr,
		saleRepo:       sr,
		stockMoveRepo:  smr,
		notifier:       notifier,
		db:             db,
	}
}

func (s *ledgerService) ListConsumables(ctx context.Context, filters models.ConsumableFilters) ([]models.Consumable, error) {
	if filters.Type != nil && *filters.Type != "" && !isValidConsumableType(*filters.Type) {
		return nil, fmt.Errorf("%w: unknown consumable type %q", ErrValidation, *filters.Type)
	}
	consumables, err := s.consumableRepo.GetConsumables(ctx, filters)
	if err != nil {
		return nil, storageFailure("listing consumables", err)
	}
	return consumables, nil
}

func (s *ledgerService) GetConsumableByBarcode(ctx context.Context, barcode string) (*models.Consumable, error) {
	if utils.IsEmpty(barcode) {
		return nil, fmt.Errorf("%w: barcode is required", ErrValidation)
	}
	c, err := s.consumableRepo.GetConsumableByBarcode(ctx, strings.TrimSpace(barcode))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: barcode %s", ErrConsumableNotFound, barcode)
		}
		return nil, storageFailure("looking up barcode", err)
	}
	return c, nil
}

func (s *ledgerService) AddConsumable(ctx context.Context, req CreateConsumableRequest) (*models.Consumable, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: name cannot be blank", ErrValidation)
	}
	totalCost := decimal.Zero
	if req.TotalCost != nil {
		totalCost = *req.TotalCost
	}
	if err := nonNegativePrices(*req.UnitPrice, totalCost, *req.SellPrice); err != nil {
		return nil, err
	}

	consumable := &models.Consumable{
		Name:      strings.TrimSpace(req.Name),
		Type:      req.Type,
		Stock:     req.Stock,
		UnitPrice: *req.UnitPrice,
		TotalCost: totalCost,
		SellPrice: *req.SellPrice,
		Barcode:   utils.NewNullString(req.Barcode),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageFailure("starting transaction", err)
	}
	defer tx.Rollback()

	if _, err := s.consumableRepo.CreateConsumable(ctx, tx, consumable); err != nil {
		return nil, storageFailure("creating consumable", err)
	}
	if consumable.Stock > 0 {
		move := models.StockMove{ConsumableID: consumable.ID, MChange: consumable.Stock, Reason: models.MoveReasonAdd}
		if _, err := s.stockMoveRepo.CreateMove(ctx, tx, &move); err != nil {
			return nil, storageFailure("recording initial stock", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storageFailure("committing consumable creation", err)
	}

	utils.LogInfo("Consumable added", map[string]interface{}{"consumable_id": consumable.ID, "stock": consumable.Stock})
	s.notifier.Notify(context.WithoutCancel(ctx), events.NewConsumablesUpdated(models.MoveReasonAdd, []int64{consumable.ID}, nil))
	return consumable, nil
}

func (s *ledgerService) SellOne(ctx context.Context, req SellOneRequest) (int64, error) {
	if err := validateRequest(req); err != nil {
		return 0, err
	}
	line := SellLine{ConsumableID: req.ID, Amount: req.Amount, SellPrice: req.SellPrice}
	return s.sell(ctx, []SellLine{line}, models.MoveReasonSell)
}

func (s *ledgerService) SellMany(ctx context.Context, req SellManyRequest) (int64, error) {
	if err := validateRequest(req); err != nil {
		return 0, err
	}
	return s.sell(ctx, req.Items, models.MoveReasonMultiSell)
}

// sell records one Sale with one SaleItem/StockMove pair per line, all or nothing.
// Lines are processed in order; each line locks its consumable row before
// reading stock, so concurrent sales of the same item serialize on that lock.
// Repeated consumables in one cart see the stock left by the earlier line.
func (s *ledgerService) sell(ctx context.Context, lines []SellLine, reason string) (int64, error) {
	for i, line := range lines {
		if line.SellPrice.IsNegative() {
			return 0, fmt.Errorf("%w: items[%d].sell_price cannot be negative", ErrValidation, i)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageFailure("starting sale transaction", err)
	}
	defer tx.Rollback()

	var sale *models.Sale
	consumableIDs := make([]int64, 0, len(lines))

	for _, line := range lines {
		stock, name, err := s.consumableRepo.LockStock(ctx, tx, line.ConsumableID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return 0, fmt.Errorf("%w: ID %d", ErrConsumableNotFound, line.ConsumableID)
			}
			return 0, storageFailure(fmt.Sprintf("locking consumable %d", line.ConsumableID), err)
		}
		if stock < line.Amount {
			utils.LogWarn("Sale rejected: insufficient stock", map[string]interface{}{
				"consumable_id": line.ConsumableID, "requested": line.Amount, "available": stock,
			})
			return 0, &InsufficientStockError{
				ConsumableID: line.ConsumableID,
				Name:         name,
				Requested:    line.Amount,
				Available:    stock,
			}
		}

		if sale == nil {
			sale = &models.Sale{CreatedAt: time.Now()}
			if _, err := s.saleRepo.CreateSale(ctx, tx, sale); err != nil {
				return 0, storageFailure("creating sale", err)
			}
		}

		if _, err := s.consumableRepo.UpdateStock(ctx, tx, line.ConsumableID, -line.Amount); err != nil {
			return 0, storageFailure(fmt.Sprintf("decrementing stock of consumable %d", line.ConsumableID), err)
		}

		item := models.SaleItem{
			SaleID:       sale.ID,
			ConsumableID: line.ConsumableID,
			Amount:       line.Amount,
			SellPrice:    *line.SellPrice,
		}
		if _, err := s.saleRepo.CreateSaleItem(ctx, tx, &item); err != nil {
			return 0, storageFailure(fmt.Sprintf("creating sale item for consumable %d", line.ConsumableID), err)
		}

		move := models.StockMove{
			ConsumableID: line.ConsumableID,
			MChange:      -line.Amount,
			Reason:       reason,
			CreatedAt:    sale.CreatedAt,
		}
		if _, err := s.stockMoveRepo.CreateMove(ctx, tx, &move); err != nil {
			return 0, storageFailure(fmt.Sprintf("recording stock move for consumable %d", line.ConsumableID), err)
		}
		consumableIDs = append(consumableIDs, line.ConsumableID)
	}

	if err := tx.Commit(); err != nil {
		return 0, storageFailure("committing sale", err)
	}

	utils.LogInfo("Sale recorded", map[string]interface{}{
		"sale_id": sale.ID, "reason": reason, "lines": len(lines), "consumable_ids": consumableIDs,
	})
	saleID := sale.ID
	s.notifier.Notify(context.WithoutCancel(ctx), events.NewConsumablesUpdated(reason, consumableIDs, &saleID))
	return sale.ID, nil
}

// AdjustStock overwrites a consumable's stock and prices and audits the stock delta,
// both in one transaction.
func (s *ledgerService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*models.Consumable, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: name cannot be blank", ErrValidation)
	}
	if err := nonNegativePrices(*req.UnitPrice, *req.TotalCost, *req.SellPrice); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageFailure("starting adjustment transaction", err)
	}
	defer tx.Rollback()

	oldStock, _, err := s.consumableRepo.LockStock(ctx, tx, req.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrConsumableNotFound, req.ID)
		}
		return nil, storageFailure(fmt.Sprintf("locking consumable %d", req.ID), err)
	}

	consumable, err := s.consumableRepo.GetConsumableByID(ctx, tx, req.ID)
	if err != nil {
		return nil, storageFailure(fmt.Sprintf("reading consumable %d", req.ID), err)
	}
	consumable.Name = strings.TrimSpace(req.Name)
	consumable.Stock = *req.Stock
	consumable.UnitPrice = *req.UnitPrice
	consumable.TotalCost = *req.TotalCost
	consumable.SellPrice = *req.SellPrice
	consumable.Barcode = utils.NewNullString(req.Barcode)

	if err := s.consumableRepo.UpdateConsumable(ctx, tx, consumable); err != nil {
		return nil, storageFailure(fmt.Sprintf("updating consumable %d", req.ID), err)
	}

	change := *req.Stock - oldStock
	if change != 0 {
		move := models.StockMove{ConsumableID: req.ID, MChange: change, Reason: models.MoveReasonEdit}
		if _, err := s.stockMoveRepo.CreateMove(ctx, tx, &move); err != nil {
			return nil, storageFailure(fmt.Sprintf("recording stock move for consumable %d", req.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storageFailure("committing adjustment", err)
	}

	utils.LogInfo("Consumable adjusted", map[string]interface{}{"consumable_id": req.ID, "change": change})
	s.notifier.Notify(context.WithoutCancel(ctx), events.NewConsumablesUpdated(models.MoveReasonEdit, []int64{req.ID}, nil))
	return consumable, nil
}

func (s *ledgerService) GetStockMoves(ctx context.Context, filters models.StockMoveFilters) ([]models.StockMove, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > 500 {
		filters.PageSize = 100
	}
	moves, total, err := s.stockMoveRepo.GetMoves(ctx, filters)
	if err != nil {
		return nil, 0, storageFailure("listing stock moves", err)
	}
	return moves, total, nil
}

func isValidConsumableType(t string) bool {
	switch t {
	case models.ConsumableTypeEatable, models.ConsumableTypeDrinkable:
		return true
	default:
		return false
	}
}

func nonNegativePrices(unitPrice, totalCost, sellPrice decimal.Decimal) error {
	switch {
	case unitPrice.IsNegative():
		return fmt.Errorf("%w: unit_price cannot be negative", ErrValidation)
	case totalCost.IsNegative():
		return fmt.Errorf("%w: total_cost cannot be negative", ErrValidation)
	case sellPrice.IsNegative():
		return fmt.Errorf("%w: sell_price cannot be negative", ErrValidation)
	}
	return nil
}
