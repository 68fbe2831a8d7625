package domain

import (
	"context"
	"time"
)

// Sale represents a sale transaction against a product's stock. The unit
// price is a snapshot of the product's sale price at sale time and never
// changes afterwards.
type Sale struct {
	ID         int64     `json:"id_venta" db:"id_venta"`
	ProductID  int64     `json:"id_producto" db:"id_producto"`
	Quantity   int       `json:"cantidad" db:"cantidad"`
	UnitPrice  float64   `json:"precio_unitario" db:"precio_unitario"`
	TotalPrice float64   `json:"precio_total" db:"precio_total"`
	SoldAt     time.Time `json:"fecha_venta" db:"fecha_venta"`
}

// SaleRepository defines the interface for sale data access.
//
// Create and Delete are transactional units: the stock check, the stock
// mutation and the sale row mutation either all commit or none do. Conflicts
// with concurrent transactions surface as ErrRetryable.
type SaleRepository interface {
	// Create locks the product row, verifies available stock, decrements it
	// and inserts the sale, all in one transaction
	Create(ctx context.Context, productID int64, quantity int) (*Sale, error)

	// GetByID retrieves a sale by ID
	GetByID(ctx context.Context, id int64) (*Sale, error)

	// List retrieves all sales ordered by ID
	List(ctx context.Context) ([]*Sale, error)

	// Delete removes a sale and restores the sold quantity to the product's
	// stock. A sale whose product no longer exists is still deleted.
	Delete(ctx context.Context, id int64) (*Sale, error)

	// DeleteRange removes all sales with fecha_venta in [from, to] and
	// returns how many were deleted. Stock is not restored.
	DeleteRange(ctx context.Context, from, to time.Time) (int64, error)
}
