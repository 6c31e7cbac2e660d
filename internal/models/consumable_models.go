package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Consumable types
const (
	ConsumableTypeEatable   = "eatable"
	ConsumableTypeDrinkable = "drinkable"
)

// Stock move reasons
const (
	MoveReasonSell      = "sell"
	MoveReasonMultiSell = "multi-sell"
	MoveReasonEdit      = "edit"
	MoveReasonAdd       = "add"
)

// Consumable is a snack or drink kept in stock and sold at the counter.
type Consumable struct {
	ID        int64           `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Type      string          `json:"type" db:"type"`
	Stock     int             `json:"stock" db:"stock"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalCost decimal.Decimal `json:"total_cost" db:"total_cost"`
	SellPrice decimal.Decimal `json:"sell_price" db:"sell_price"`
	Barcode   *string         `json:"barcode,omitempty" db:"barcode"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// Sale is the header of one checkout event.
type Sale struct {
	ID        int64      `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	Items     []SaleItem `json:"items,omitempty"`
}

// SaleItem is one line of a sale. Immutable once written.
type SaleItem struct {
	ID           int64           `json:"id" db:"id"`
	SaleID       int64           `json:"sale_id" db:"sale_id"`
	ConsumableID int64           `json:"consumable_id" db:"consumable_id"`
	Amount       int             `json:"amount" db:"amount"`
	SellPrice    decimal.Decimal `json:"sell_price" db:"sell_price"`
}

// StockMove is one row of the append-only stock audit trail.
type StockMove struct {
	ID             int64     `json:"id" db:"id"`
	ConsumableID   int64     `json:"consumable_id" db:"consumable_id"`
	MChange        int       `json:"m_change" db:"m_change"`
	Reason         string    `json:"reason" db:"reason"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	ConsumableName string    `json:"consumable_name,omitempty"` // joined, read side only
	ConsumableType string    `json:"consumable_type,omitempty"`
}

// ConsumableFilters narrows the consumables listing.
type ConsumableFilters struct {
	Type   *string `form:"type"`
	Search *string `form:"search"` // case-insensitive match on name or exact barcode
}

// StockMoveFilters narrows the stock move listing. PageSize 0 returns every row.
type StockMoveFilters struct {
	ConsumableID *int64
	Reason       *string
	Type         *string
	StartDate    *time.Time
	EndDate      *time.Time // exclusive
	Page         int
	PageSize     int
}
