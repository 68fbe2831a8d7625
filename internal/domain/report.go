package domain

import (
	"context"
	"time"
)

// Report periods accepted by the range report
const (
	PeriodDay   = "dia"
	PeriodWeek  = "semana"
	PeriodMonth = "mes"
	PeriodYear  = "anio"
)

// ValidReportPeriod reports whether period names a supported calendar bucket
func ValidReportPeriod(period string) bool {
	switch period {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// PeriodKey identifies a calendar bucket. Only the components relevant for
// the requested period are set.
type PeriodKey struct {
	Year  int  `json:"anio"`
	Month *int `json:"mes,omitempty"`
	Week  *int `json:"semana,omitempty"`
	Day   *int `json:"dia,omitempty"`
}

// PeriodSales aggregates the sales of one calendar bucket. Investment is
// computed at the product's current cost, not the cost at sale time.
type PeriodSales struct {
	Period     PeriodKey `json:"periodo"`
	Investment float64   `json:"inversion"`
	Revenue    float64   `json:"generado"`
	NetProfit  float64   `json:"ganancia_neta"`
}

// TopProduct is one row of the top-sellers ranking
type TopProduct struct {
	ProductID int64  `json:"id_producto" db:"id_producto"`
	Name      string `json:"nombre" db:"nombre"`
	UnitsSold int64  `json:"vendidos" db:"vendidos"`
}

// RangeReport is the aggregate report over a date range
type RangeReport struct {
	TotalInvestment float64       `json:"inversion_total"`
	TotalRevenue    float64       `json:"generado_total"`
	NetProfit       float64       `json:"ganancia_neta"`
	Top5            []TopProduct  `json:"top5"`
	PeriodSales     []PeriodSales `json:"ventas_por_periodo"`
}

// ReportRepository defines the read-side queries behind the range report
type ReportRepository interface {
	// SalesByPeriod aggregates sales in [from, to] grouped by the calendar
	// bucket of fecha_venta, ordered ascending by bucket key
	SalesByPeriod(ctx context.Context, from, to time.Time, period string) ([]PeriodSales, error)

	// TopProducts returns up to limit products ranked by units sold in
	// [from, to]; ties are broken by lowest product ID
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error)
}
