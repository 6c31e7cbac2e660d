package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gameclub_backend/internal/models"
	"gameclub_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// ReportService aggregates sales and stock moves. It never writes.
type ReportService interface {
	Report(ctx context.Context, filters models.ReportFilters) (*models.ConsumablesReport, error)
	Revenue(ctx context.Context, period string) (decimal.Decimal, error)
}

type reportService struct {
	saleRepo      repositories.SaleRepository
	stockMoveRepo repositories.StockMoveRepository
	now           func() time.Time
}

func NewReportService(sr repositories.SaleRepository, smr repositories.StockMoveRepository) ReportService {
	return &reportService{saleRepo: sr, stockMoveRepo: smr, now: time.Now}
}

func (s *reportService) Report(ctx context.Context, filters models.ReportFilters) (*models.ConsumablesReport, error) {
	if filters.Type != nil && *filters.Type != "" && !isValidConsumableType(*filters.Type) {
		return nil, fmt.Errorf("%w: unknown consumable type %q", ErrValidation, *filters.Type)
	}
	switch filters.Period {
	case "", models.PeriodDay, models.PeriodWeek, models.PeriodMonth:
	default:
		return nil, fmt.Errorf("%w: period must be one of day, week, month", ErrValidation)
	}
	if filters.StartDate != nil && filters.EndDate != nil && !filters.StartDate.Before(*filters.EndDate) {
		return nil, fmt.Errorf("%w: start_date must be before end_date", ErrValidation)
	}

	sales, err := s.saleRepo.GetSaleLines(ctx, filters)
	if err != nil {
		return nil, storageFailure("reading sale lines", err)
	}
	moves, _, err := s.stockMoveRepo.GetMoves(ctx, models.StockMoveFilters{
		Type:      filters.Type,
		StartDate: filters.StartDate,
		EndDate:   filters.EndDate,
	})
	if err != nil {
		return nil, storageFailure("reading stock moves", err)
	}

	report := &models.ConsumablesReport{
		Sales:      sales,
		Revenue:    decimal.Zero,
		Profit:     decimal.Zero,
		StockMoves: moves,
	}
	if report.Sales == nil {
		report.Sales = []models.SaleLine{}
	}
	if report.StockMoves == nil {
		report.StockMoves = []models.StockMove{}
	}
	for _, line := range sales {
		report.Revenue = report.Revenue.Add(line.Total)
		report.Profit = report.Profit.Add(line.Profit)
	}
	if filters.Period != "" {
		report.Breakdown = breakdown(sales, filters.Period)
	}
	return report, nil
}

func (s *reportService) Revenue(ctx context.Context, period string) (decimal.Decimal, error) {
	since, err := periodStart(s.now(), period)
	if err != nil {
		return decimal.Zero, err
	}
	revenue, err := s.saleRepo.GetRevenueSince(ctx, since)
	if err != nil {
		return decimal.Zero, storageFailure("reading revenue", err)
	}
	return revenue, nil
}

// periodStart returns the start of the current day, week (Monday), month or year
// in now's location. "all" and "" mean no lower bound.
func periodStart(now time.Time, period string) (*time.Time, error) {
	var start time.Time
	switch period {
	case "", models.PeriodAll:
		return nil, nil
	case models.PeriodDay, models.PeriodWeek, models.PeriodMonth:
		start = bucketStart(now, period)
	case models.PeriodYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return nil, fmt.Errorf("%w: period must be one of day, week, month, year, all", ErrValidation)
	}
	return &start, nil
}

func bucketStart(t time.Time, period string) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch period {
	case models.PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case models.PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

// breakdown groups sale lines by bucket, oldest bucket first.
func breakdown(sales []models.SaleLine, period string) []models.PeriodTotal {
	buckets := make(map[string]*models.PeriodTotal)
	for _, line := range sales {
		key := bucketStart(line.CreatedAt, period).Format("2006-01-02")
		b, ok := buckets[key]
		if !ok {
			b = &models.PeriodTotal{Period: key, Revenue: decimal.Zero, Profit: decimal.Zero}
			buckets[key] = b
		}
		b.Quantity += line.Amount
		b.Revenue = b.Revenue.Add(line.Total)
		b.Profit = b.Profit.Add(line.Profit)
	}

	totals := make([]models.PeriodTotal, 0, len(buckets))
	for _, b := range buckets {
		totals = append(totals, *b)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Period < totals[j].Period })
	return totals
}
