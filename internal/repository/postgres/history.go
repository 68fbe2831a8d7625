package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/luischz/inventario_ventas/internal/domain"
)

// HistoryRepository implements domain.HistoryRepository for PostgreSQL.
// Both tables are append-only; there are no update or delete statements here.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository creates a new PostgreSQL history repository
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// AppendProductEntry inserts a product snapshot
func (r *HistoryRepository) AppendProductEntry(ctx context.Context, entry *domain.ProductHistoryEntry) error {
	query := `
		INSERT INTO historial_productos
			(id_producto, nombre, costo, precio_venta, stock, stock_anterior, imagen_url, activo, inversion_acumulada, accion, fecha_registro)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id_historial
	`

	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}

	err := r.db.QueryRowxContext(
		ctx,
		query,
		entry.ProductID,
		entry.Name,
		entry.Cost,
		entry.SalePrice,
		entry.Stock,
		entry.PreviousStock,
		entry.ImageURL,
		entry.Active,
		entry.AccumulatedInvestment,
		entry.Action,
		entry.RecordedAt,
	).Scan(&entry.ID)
	if err != nil {
		return mapSQLError(err)
	}

	return nil
}

// AppendSaleEntry inserts a sale snapshot
func (r *HistoryRepository) AppendSaleEntry(ctx context.Context, entry *domain.SaleHistoryEntry) error {
	query := `
		INSERT INTO historial_ventas
			(id_venta, id_producto, cantidad, precio_unitario, precio_total, fecha_venta)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id_historial
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		entry.SaleID,
		entry.ProductID,
		entry.Quantity,
		entry.UnitPrice,
		entry.TotalPrice,
		entry.SoldAt,
	).Scan(&entry.ID)
	if err != nil {
		return mapSQLError(err)
	}

	return nil
}

// ListProductEntries retrieves all product snapshots ordered by ID
func (r *HistoryRepository) ListProductEntries(ctx context.Context) ([]*domain.ProductHistoryEntry, error) {
	query := `
		SELECT id_historial, id_producto, nombre, costo, precio_venta, stock, stock_anterior, imagen_url, activo, inversion_acumulada, accion, fecha_registro
		FROM historial_productos
		ORDER BY id_historial
	`

	var entries []*domain.ProductHistoryEntry
	err := r.db.SelectContext(ctx, &entries, query)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// ListSaleEntries retrieves all sale snapshots ordered by ID
func (r *HistoryRepository) ListSaleEntries(ctx context.Context) ([]*domain.SaleHistoryEntry, error) {
	query := `
		SELECT id_historial, id_venta, id_producto, cantidad, precio_unitario, precio_total, fecha_venta
		FROM historial_ventas
		ORDER BY id_historial
	`

	var entries []*domain.SaleHistoryEntry
	err := r.db.SelectContext(ctx, &entries, query)
	if err != nil {
		return nil, err
	}

	return entries, nil
}
