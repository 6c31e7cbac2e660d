package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report periods
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
	PeriodAll   = "all"
)

// SaleLine is one SaleItem joined with its Sale and Consumable.
type SaleLine struct {
	SaleID       int64           `json:"sale_id"`
	SaleItemID   int64           `json:"sale_item_id"`
	ConsumableID int64           `json:"consumable_id"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	Amount       int             `json:"amount"`
	SellPrice    decimal.Decimal `json:"sell_price"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Total        decimal.Decimal `json:"total"`
	Profit       decimal.Decimal `json:"profit"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PeriodTotal aggregates sale lines falling in one day, week or month bucket.
type PeriodTotal struct {
	Period   string          `json:"period"` // bucket start, YYYY-MM-DD
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
	Profit   decimal.Decimal `json:"profit"`
}

// ConsumablesReport is the sales and stock report.
type ConsumablesReport struct {
	Sales      []SaleLine      `json:"sales"`
	Revenue    decimal.Decimal `json:"revenue"`
	Profit     decimal.Decimal `json:"profit"`
	StockMoves []StockMove     `json:"stock_moves"`
	Breakdown  []PeriodTotal   `json:"breakdown,omitempty"`
}

// ReportFilters holds report parameters. EndDate is exclusive.
type ReportFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
	Type      *string
	Period    string // optional breakdown granularity: day, week, month
}
