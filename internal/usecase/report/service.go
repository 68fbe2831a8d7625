package report

import (
	"context"
	"time"

	"github.com/luischz/inventario_ventas/internal/domain"
	"github.com/luischz/inventario_ventas/internal/pkg/logger"
)

// Cache defines the interface for the range report cache
type Cache interface {
	GetRangeReport(ctx context.Context, from, to time.Time, period string) (*domain.RangeReport, error)
	SetRangeReport(ctx context.Context, from, to time.Time, period string, report *domain.RangeReport) error
	InvalidateReports(ctx context.Context) error
}

// topProductsLimit caps the top-sellers ranking
const topProductsLimit = 5

// Service aggregates sales into range reports
type Service struct {
	reports domain.ReportRepository
	sales   domain.SaleRepository
	cache   Cache
	logger  *logger.Logger
}

// NewService creates a new report service
func NewService(
	reports domain.ReportRepository,
	sales domain.SaleRepository,
	cache Cache,
	log *logger.Logger,
) *Service {
	return &Service{
		reports: reports,
		sales:   sales,
		cache:   cache,
		logger:  log,
	}
}

// RangeReport aggregates sales with fecha_venta in [from, to] by calendar
// bucket and computes the overall totals and the top-5 sellers
func (s *Service) RangeReport(ctx context.Context, from, to time.Time, period string) (*domain.RangeReport, error) {
	if !domain.ValidReportPeriod(period) {
		s.logger.Debugf("Invalid report period: %s", period)
		return nil, domain.ErrInvalidInput
	}

	if report, err := s.cache.GetRangeReport(ctx, from, to, period); err == nil {
		s.logger.Debugf("Cache hit for range report %s [%s, %s]", period, from, to)
		return report, nil
	}

	periods, err := s.reports.SalesByPeriod(ctx, from, to, period)
	if err != nil {
		s.logger.Error("Failed to aggregate sales by period", err)
		return nil, err
	}

	top, err := s.reports.TopProducts(ctx, from, to, topProductsLimit)
	if err != nil {
		s.logger.Error("Failed to rank top products", err)
		return nil, err
	}
	if top == nil {
		top = []domain.TopProduct{}
	}

	report := &domain.RangeReport{
		Top5:        top,
		PeriodSales: periods,
	}
	for _, p := range periods {
		report.TotalInvestment += p.Investment
		report.TotalRevenue += p.Revenue
	}
	report.NetProfit = report.TotalRevenue - report.TotalInvestment

	if err := s.cache.SetRangeReport(ctx, from, to, period, report); err != nil {
		s.logger.Warnf("Failed to cache range report: %v", err)
	}

	return report, nil
}

// ResetRange deletes every sale in [from, to] and returns the count. Stock
// and history entries are untouched: this corrects report data, it does not
// reverse sales.
func (s *Service) ResetRange(ctx context.Context, from, to time.Time) (int64, error) {
	if from.After(to) {
		s.logger.Debugf("Invalid reset range: desde %s > hasta %s", from, to)
		return 0, domain.ErrInvalidInput
	}

	deleted, err := s.sales.DeleteRange(ctx, from, to)
	if err != nil {
		s.logger.Error("Failed to delete sales range", err)
		return 0, err
	}

	if err := s.cache.InvalidateReports(ctx); err != nil {
		s.logger.Warnf("Failed to invalidate report cache: %v", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"desde":      from,
		"hasta":      to,
		"eliminadas": deleted,
	}).Info("Sales range reset")

	return deleted, nil
}
