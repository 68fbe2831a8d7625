package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/luischz/inventario_ventas/internal/domain"
)

const saleColumns = "id_venta, id_producto, cantidad, precio_unitario, precio_total, fecha_venta"

// SaleRepository implements domain.SaleRepository for PostgreSQL.
//
// The stock check, the stock decrement and the sale insert run inside one
// transaction with the product row locked, so two concurrent sales can never
// both pass the check against a stale stock value.
type SaleRepository struct {
	db          *sqlx.DB
	lockTimeout time.Duration
}

// NewSaleRepository creates a new PostgreSQL sale repository. lockTimeout
// bounds how long a transaction waits for the product row lock before failing
// as retryable.
func NewSaleRepository(db *sqlx.DB, lockTimeout time.Duration) *SaleRepository {
	return &SaleRepository{db: db, lockTimeout: lockTimeout}
}

func (r *SaleRepository) setLockTimeout(ctx context.Context, tx *sqlx.Tx) error {
	if r.lockTimeout <= 0 {
		return nil
	}
	// SET LOCAL does not accept bind parameters
	_, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds()))
	return err
}

// Create executes the sale as one all-or-nothing unit
func (r *SaleRepository) Create(ctx context.Context, productID int64, quantity int) (*domain.Sale, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := r.setLockTimeout(ctx, tx); err != nil {
		return nil, mapSQLError(err)
	}

	var (
		salePrice float64
		stock     int
	)
	err = tx.QueryRowxContext(
		ctx,
		`SELECT precio_venta, stock FROM productos WHERE id_producto = $1 FOR UPDATE`,
		productID,
	).Scan(&salePrice, &stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapSQLError(err)
	}

	if stock < quantity {
		return nil, &domain.InsufficientStockError{Available: stock, Requested: quantity}
	}

	_, err = tx.ExecContext(
		ctx,
		`UPDATE productos SET stock = stock - $2 WHERE id_producto = $1`,
		productID, quantity,
	)
	if err != nil {
		return nil, mapSQLError(err)
	}

	sale := &domain.Sale{
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  salePrice,
		TotalPrice: salePrice * float64(quantity),
		SoldAt:     time.Now(),
	}

	err = tx.QueryRowxContext(
		ctx,
		`INSERT INTO ventas (id_producto, cantidad, precio_unitario, precio_total, fecha_venta)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id_venta`,
		sale.ProductID,
		sale.Quantity,
		sale.UnitPrice,
		sale.TotalPrice,
		sale.SoldAt,
	).Scan(&sale.ID)
	if err != nil {
		return nil, mapSQLError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapSQLError(err)
	}

	return sale, nil
}

// GetByID retrieves a sale by ID
func (r *SaleRepository) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	query := fmt.Sprintf(`SELECT %s FROM ventas WHERE id_venta = $1`, saleColumns)

	var sale domain.Sale
	err := r.db.GetContext(ctx, &sale, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &sale, nil
}

// List retrieves all sales ordered by ID
func (r *SaleRepository) List(ctx context.Context) ([]*domain.Sale, error) {
	query := fmt.Sprintf(`SELECT %s FROM ventas ORDER BY id_venta`, saleColumns)

	var sales []*domain.Sale
	err := r.db.SelectContext(ctx, &sales, query)
	if err != nil {
		return nil, err
	}

	return sales, nil
}

// Delete removes a sale and restores its quantity to the product's stock in
// one transaction. When the product no longer exists the restoration is
// skipped and the sale is still deleted.
func (r *SaleRepository) Delete(ctx context.Context, id int64) (*domain.Sale, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := r.setLockTimeout(ctx, tx); err != nil {
		return nil, mapSQLError(err)
	}

	var sale domain.Sale
	err = tx.QueryRowxContext(
		ctx,
		fmt.Sprintf(`SELECT %s FROM ventas WHERE id_venta = $1 FOR UPDATE`, saleColumns),
		id,
	).StructScan(&sale)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapSQLError(err)
	}

	// Zero rows affected means the product was deleted since the sale was
	// recorded; the sale is removed anyway.
	_, err = tx.ExecContext(
		ctx,
		`UPDATE productos SET stock = stock + $2 WHERE id_producto = $1`,
		sale.ProductID, sale.Quantity,
	)
	if err != nil {
		return nil, mapSQLError(err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM ventas WHERE id_venta = $1`, id)
	if err != nil {
		return nil, mapSQLError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapSQLError(err)
	}

	return &sale, nil
}

// DeleteRange removes all sales sold within [from, to] and returns the count.
// Stock is intentionally not restored: this is a data-correction tool, not a
// sale reversal.
func (r *SaleRepository) DeleteRange(ctx context.Context, from, to time.Time) (int64, error) {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM ventas WHERE fecha_venta >= $1 AND fecha_venta <= $2`,
		from, to,
	)
	if err != nil {
		return 0, mapSQLError(err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return deleted, nil
}
