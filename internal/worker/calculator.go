package worker

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/luischz/inventario_ventas/internal/pkg/logger"
)

// Calculator recomputes the accumulated investment of a product
type Calculator struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewCalculator creates a new investment calculator
func NewCalculator(db *sqlx.DB, logger *logger.Logger) *Calculator {
	return &Calculator{
		db:     db,
		logger: logger,
	}
}

// CalculateAndUpdate recomputes the accumulated investment from current cost
// and stock. Full recalculation keeps the figure self-correcting regardless of
// event order.
func (c *Calculator) CalculateAndUpdate(ctx context.Context, productID int64) error {
	query := `
		UPDATE productos
		SET inversion_acumulada = ROUND((costo * stock)::numeric, 2)
		WHERE id_producto = $1
	`

	result, err := c.db.ExecContext(ctx, query, productID)
	if err != nil {
		return fmt.Errorf("failed to update product investment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	// Product gone - not an error, just log
	if rowsAffected == 0 {
		c.logger.WithFields(map[string]any{
			"product_id": productID,
		}).Info("Product not found, skipping investment update")
		return nil
	}

	c.logger.WithFields(map[string]any{
		"product_id": productID,
	}).Info("Successfully updated product investment")

	return nil
}

// GetCurrentInvestment retrieves the stored investment figure (used in tests)
func (c *Calculator) GetCurrentInvestment(ctx context.Context, productID int64) (float64, error) {
	var investment float64
	query := `SELECT inversion_acumulada FROM productos WHERE id_producto = $1`

	err := c.db.GetContext(ctx, &investment, query, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to get current investment: %w", err)
	}

	return investment, nil
}
