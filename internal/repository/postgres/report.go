package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/luischz/inventario_ventas/internal/domain"
)

// ReportRepository implements domain.ReportRepository for PostgreSQL
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new PostgreSQL report repository
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// bucketColumns returns the EXTRACT expressions for the requested period.
// The same expression list serves SELECT, GROUP BY and ORDER BY, so bucket
// rows always come back ascending by bucket key.
func bucketColumns(period string) (string, int, error) {
	switch period {
	case domain.PeriodDay:
		return `EXTRACT(YEAR FROM v.fecha_venta)::int, EXTRACT(MONTH FROM v.fecha_venta)::int, EXTRACT(DAY FROM v.fecha_venta)::int`, 3, nil
	case domain.PeriodWeek:
		return `EXTRACT(YEAR FROM v.fecha_venta)::int, EXTRACT(WEEK FROM v.fecha_venta)::int`, 2, nil
	case domain.PeriodMonth:
		return `EXTRACT(YEAR FROM v.fecha_venta)::int, EXTRACT(MONTH FROM v.fecha_venta)::int`, 2, nil
	case domain.PeriodYear:
		return `EXTRACT(YEAR FROM v.fecha_venta)::int`, 1, nil
	default:
		return "", 0, domain.ErrInvalidInput
	}
}

// SalesByPeriod aggregates sales in [from, to] grouped by calendar bucket.
// Investment joins on the product's current cost, not the cost at sale time.
func (r *ReportRepository) SalesByPeriod(ctx context.Context, from, to time.Time, period string) ([]domain.PeriodSales, error) {
	columns, parts, err := bucketColumns(period)
	if err != nil {
		return nil, err
	}

	groupBy := "1"
	for i := 2; i <= parts; i++ {
		groupBy = fmt.Sprintf("%s, %d", groupBy, i)
	}

	query := fmt.Sprintf(`
		SELECT %s,
		       COALESCE(SUM(p.costo * v.cantidad), 0)::float8 AS inversion,
		       COALESCE(SUM(v.precio_total), 0)::float8 AS generado
		FROM ventas v
		JOIN productos p ON p.id_producto = v.id_producto
		WHERE v.fecha_venta >= $1 AND v.fecha_venta <= $2
		GROUP BY %s
		ORDER BY %s
	`, columns, groupBy, groupBy)

	rows, err := r.db.QueryxContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.PeriodSales, 0)
	for rows.Next() {
		var ps domain.PeriodSales

		switch period {
		case domain.PeriodDay:
			var year, month, day int
			if err := rows.Scan(&year, &month, &day, &ps.Investment, &ps.Revenue); err != nil {
				return nil, err
			}
			ps.Period = domain.PeriodKey{Year: year, Month: &month, Day: &day}
		case domain.PeriodWeek:
			var year, week int
			if err := rows.Scan(&year, &week, &ps.Investment, &ps.Revenue); err != nil {
				return nil, err
			}
			ps.Period = domain.PeriodKey{Year: year, Week: &week}
		case domain.PeriodMonth:
			var year, month int
			if err := rows.Scan(&year, &month, &ps.Investment, &ps.Revenue); err != nil {
				return nil, err
			}
			ps.Period = domain.PeriodKey{Year: year, Month: &month}
		case domain.PeriodYear:
			var year int
			if err := rows.Scan(&year, &ps.Investment, &ps.Revenue); err != nil {
				return nil, err
			}
			ps.Period = domain.PeriodKey{Year: year}
		}

		ps.NetProfit = ps.Revenue - ps.Investment
		results = append(results, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// TopProducts ranks products by units sold in [from, to]. Equal counts are
// broken deterministically by lowest product ID.
func (r *ReportRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]domain.TopProduct, error) {
	query := `
		SELECT p.id_producto, p.nombre, SUM(v.cantidad)::bigint AS vendidos
		FROM ventas v
		JOIN productos p ON p.id_producto = v.id_producto
		WHERE v.fecha_venta >= $1 AND v.fecha_venta <= $2
		GROUP BY p.id_producto, p.nombre
		ORDER BY vendidos DESC, p.id_producto ASC
		LIMIT $3
	`

	var top []domain.TopProduct
	err := r.db.SelectContext(ctx, &top, query, from, to, limit)
	if err != nil {
		return nil, err
	}

	return top, nil
}
