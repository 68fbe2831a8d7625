package domain

import (
	"context"
	"time"
)

// Actions recorded in the product history
const (
	ActionCreate     = "creacion"
	ActionUpdate     = "actualizacion"
	ActionDeactivate = "desactivacion"
)

// ProductHistoryEntry is an append-only snapshot of a product taken right
// after a mutation. Entries are never updated or deleted.
type ProductHistoryEntry struct {
	ID                    int64     `json:"id_historial" db:"id_historial"`
	ProductID             int64     `json:"id_producto" db:"id_producto"`
	Name                  string    `json:"nombre" db:"nombre"`
	Cost                  float64   `json:"costo" db:"costo"`
	SalePrice             float64   `json:"precio_venta" db:"precio_venta"`
	Stock                 int       `json:"stock" db:"stock"`
	PreviousStock         *int      `json:"stock_anterior,omitempty" db:"stock_anterior"`
	ImageURL              *string   `json:"imagen_url,omitempty" db:"imagen_url"`
	Active                bool      `json:"activo" db:"activo"`
	AccumulatedInvestment float64   `json:"inversion_acumulada" db:"inversion_acumulada"`
	Action                string    `json:"accion" db:"accion"`
	RecordedAt            time.Time `json:"fecha_registro" db:"fecha_registro"`
}

// SaleHistoryEntry is an append-only copy of a sale, written best-effort
// after the sale commits.
type SaleHistoryEntry struct {
	ID         int64     `json:"id_historial" db:"id_historial"`
	SaleID     int64     `json:"id_venta" db:"id_venta"`
	ProductID  int64     `json:"id_producto" db:"id_producto"`
	Quantity   int       `json:"cantidad" db:"cantidad"`
	UnitPrice  float64   `json:"precio_unitario" db:"precio_unitario"`
	TotalPrice float64   `json:"precio_total" db:"precio_total"`
	SoldAt     time.Time `json:"fecha_venta" db:"fecha_venta"`
}

// HistoryRepository defines the interface for the append-only audit log
type HistoryRepository interface {
	// AppendProductEntry inserts a product snapshot
	AppendProductEntry(ctx context.Context, entry *ProductHistoryEntry) error

	// AppendSaleEntry inserts a sale snapshot
	AppendSaleEntry(ctx context.Context, entry *SaleHistoryEntry) error

	// ListProductEntries retrieves all product snapshots ordered by ID
	ListProductEntries(ctx context.Context) ([]*ProductHistoryEntry, error)

	// ListSaleEntries retrieves all sale snapshots ordered by ID
	ListSaleEntries(ctx context.Context) ([]*SaleHistoryEntry, error)
}
