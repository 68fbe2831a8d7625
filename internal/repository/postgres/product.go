package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/luischz/inventario_ventas/internal/domain"
)

const productColumns = "id_producto, nombre, costo, precio_venta, stock, imagen_url, inversion_acumulada, activo, fecha_registro"

// ProductRepository implements domain.ProductRepository for PostgreSQL
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product and fills in its assigned ID
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO productos (nombre, costo, precio_venta, stock, imagen_url, inversion_acumulada, activo, fecha_registro)
		VALUES ($1, $2, $3, $4, $5, 0, TRUE, $6)
		RETURNING id_producto, inversion_acumulada, activo
	`

	product.RegisteredAt = time.Now()

	err := r.db.QueryRowxContext(
		ctx,
		query,
		product.Name,
		product.Cost,
		product.SalePrice,
		product.Stock,
		product.ImageURL,
		product.RegisteredAt,
	).Scan(
		&product.ID,
		&product.AccumulatedInvestment,
		&product.Active,
	)

	if err != nil {
		return mapSQLError(err)
	}

	return nil
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM productos WHERE id_producto = $1`, productColumns)

	var product domain.Product
	err := r.db.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &product, nil
}

// List retrieves all products ordered by ID
func (r *ProductRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM productos ORDER BY id_producto`, productColumns)
	if activeOnly {
		query = fmt.Sprintf(`SELECT %s FROM productos WHERE activo = TRUE ORDER BY id_producto`, productColumns)
	}

	var products []*domain.Product
	err := r.db.SelectContext(ctx, &products, query)
	if err != nil {
		return nil, err
	}

	return products, nil
}

// Update applies only the supplied fields and returns the merged product.
// fecha_registro is refreshed on every update.
func (r *ProductRepository) Update(ctx context.Context, id int64, fields domain.ProductUpdate) (*domain.Product, error) {
	if fields.Empty() {
		return nil, domain.ErrInvalidInput
	}

	set := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.Name != nil {
		add("nombre", *fields.Name)
	}
	if fields.Cost != nil {
		add("costo", *fields.Cost)
	}
	if fields.SalePrice != nil {
		add("precio_venta", *fields.SalePrice)
	}
	if fields.Stock != nil {
		add("stock", *fields.Stock)
	}
	if fields.ImageURL != nil {
		add("imagen_url", *fields.ImageURL)
	}
	add("fecha_registro", time.Now())

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE productos SET %s WHERE id_producto = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), productColumns,
	)

	var product domain.Product
	err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapSQLError(err)
	}

	return &product, nil
}

// Deactivate sets activo=false and stock=0, returning the prior state so the
// caller can record the stock delta in the history.
func (r *ProductRepository) Deactivate(ctx context.Context, id int64) (*domain.Product, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`SELECT %s FROM productos WHERE id_producto = $1 FOR UPDATE`, productColumns)

	var prev domain.Product
	err = tx.QueryRowxContext(ctx, query, id).StructScan(&prev)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapSQLError(err)
	}

	_, err = tx.ExecContext(
		ctx,
		`UPDATE productos SET activo = FALSE, stock = 0, fecha_registro = $2 WHERE id_producto = $1`,
		id, time.Now(),
	)
	if err != nil {
		return nil, mapSQLError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapSQLError(err)
	}

	return &prev, nil
}

// AdjustStock sets stock = stock + delta. The WHERE clause rejects the update
// when the result would be negative, keeping the stock invariant inside the
// statement itself.
func (r *ProductRepository) AdjustStock(ctx context.Context, id int64, delta int) (*domain.Product, error) {
	query := fmt.Sprintf(
		`UPDATE productos SET stock = stock + $2 WHERE id_producto = $1 AND stock + $2 >= 0 RETURNING %s`,
		productColumns,
	)

	var product domain.Product
	err := r.db.QueryRowxContext(ctx, query, id, delta).StructScan(&product)
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, mapSQLError(err)
	}

	// No row updated: either the product is missing or the delta would have
	// driven the stock negative.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, domain.ErrInvalidInput
}
