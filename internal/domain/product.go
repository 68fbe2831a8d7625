package domain

import (
	"context"
	"time"
)

// Product represents a sellable product and its current stock
type Product struct {
	ID                    int64     `json:"id_producto" db:"id_producto"`
	Name                  string    `json:"nombre" db:"nombre" validate:"required,min=1,max=255"`
	Cost                  float64   `json:"costo" db:"costo" validate:"gte=0"`
	SalePrice             float64   `json:"precio_venta" db:"precio_venta" validate:"gte=0"`
	Stock                 int       `json:"stock" db:"stock" validate:"gte=0"`
	ImageURL              *string   `json:"imagen_url,omitempty" db:"imagen_url"`
	AccumulatedInvestment float64   `json:"inversion_acumulada" db:"inversion_acumulada"`
	Active                bool      `json:"activo" db:"activo"`
	RegisteredAt          time.Time `json:"fecha_registro" db:"fecha_registro"`
}

// ProductUpdate carries the fields of a partial update. Nil means the field
// was not supplied and keeps its previous value.
type ProductUpdate struct {
	Name      *string  `validate:"omitempty,min=1,max=255"`
	Cost      *float64 `validate:"omitempty,gte=0"`
	SalePrice *float64 `validate:"omitempty,gte=0"`
	Stock     *int     `validate:"omitempty,gte=0"`
	ImageURL  *string
}

// Empty reports whether no field was supplied
func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Cost == nil && u.SalePrice == nil && u.Stock == nil && u.ImageURL == nil
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	// Create inserts a new product and fills in its assigned ID
	Create(ctx context.Context, product *Product) error

	// GetByID retrieves a product by ID
	GetByID(ctx context.Context, id int64) (*Product, error)

	// List retrieves all products ordered by ID; activeOnly filters out
	// deactivated products
	List(ctx context.Context, activeOnly bool) ([]*Product, error)

	// Update applies only the supplied fields and returns the merged product
	Update(ctx context.Context, id int64, fields ProductUpdate) (*Product, error)

	// Deactivate sets activo=false and stock=0 and returns the product state
	// prior to deactivation
	Deactivate(ctx context.Context, id int64) (*Product, error)

	// AdjustStock sets stock = stock + delta and returns the updated product.
	// Fails with ErrInvalidInput when the resulting stock would be negative.
	AdjustStock(ctx context.Context, id int64, delta int) (*Product, error)
}
