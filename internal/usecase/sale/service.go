package sale

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/luischz/inventario_ventas/internal/domain"
	"github.com/luischz/inventario_ventas/internal/pkg/logger"
)

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// ReportInvalidator drops cached range reports after a sale mutation
type ReportInvalidator interface {
	InvalidateReports(ctx context.Context) error
}

// SaleEvent is published after a sale mutation commits
type SaleEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	ProductID int64     `json:"product_id"`
	SaleID    int64     `json:"sale_id"`
}

// Service executes sales and their reversals. The stock check, decrement and
// sale insert are one all-or-nothing unit inside the repository transaction;
// everything this service does after a successful repository call is
// best-effort.
type Service struct {
	sales     domain.SaleRepository
	history   domain.HistoryRepository
	cache     ReportInvalidator
	publisher EventPublisher
	logger    *logger.Logger
}

// NewService creates a new sale service
func NewService(
	sales domain.SaleRepository,
	history domain.HistoryRepository,
	cache ReportInvalidator,
	publisher EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		sales:     sales,
		history:   history,
		cache:     cache,
		publisher: publisher,
		logger:    log,
	}
}

// Create validates and executes a sale
func (s *Service) Create(ctx context.Context, productID int64, quantity int) (*domain.Sale, error) {
	if productID <= 0 || quantity <= 0 {
		s.logger.Debugf("Invalid sale input: product_id=%d cantidad=%d", productID, quantity)
		return nil, domain.ErrInvalidInput
	}

	sale, err := s.sales.Create(ctx, productID, quantity)
	if err != nil {
		var stockErr *domain.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			s.logger.WithFields(map[string]interface{}{
				"product_id": productID,
				"disponible": stockErr.Available,
				"solicitado": stockErr.Requested,
			}).Warn("Sale rejected: insufficient stock")
		case errors.Is(err, domain.ErrNotFound):
			s.logger.Debugf("Product not found: %d", productID)
		default:
			s.logger.Error("Failed to create sale", err)
		}
		return nil, err
	}

	// The sale history is appended outside the sale transaction on purpose:
	// it is diagnostic, so a failure here must not undo or fail the sale.
	entry := &domain.SaleHistoryEntry{
		SaleID:     sale.ID,
		ProductID:  sale.ProductID,
		Quantity:   sale.Quantity,
		UnitPrice:  sale.UnitPrice,
		TotalPrice: sale.TotalPrice,
		SoldAt:     sale.SoldAt,
	}
	if err := s.history.AppendSaleEntry(ctx, entry); err != nil {
		s.logger.Warnf("Failed to append sale history for sale %d: %v", sale.ID, err)
	}

	if err := s.cache.InvalidateReports(ctx); err != nil {
		s.logger.Warnf("Failed to invalidate report cache: %v", err)
	}

	s.publishEvent(ctx, "venta.creada", sale)

	s.logger.WithFields(map[string]interface{}{
		"sale_id":    sale.ID,
		"product_id": sale.ProductID,
		"cantidad":   sale.Quantity,
	}).Info("Sale created successfully")

	return sale, nil
}

// GetByID retrieves a sale by ID
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		if err == domain.ErrNotFound {
			s.logger.Debugf("Sale not found: %d", id)
		} else {
			s.logger.Error("Failed to get sale", err)
		}
		return nil, err
	}

	return sale, nil
}

// List retrieves all sales ordered by ID
func (s *Service) List(ctx context.Context) ([]*domain.Sale, error) {
	sales, err := s.sales.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list sales", err)
		return nil, err
	}

	return sales, nil
}

// Delete reverses a sale: the sold quantity goes back to the product's stock
// (when the product still exists) and the sale record is removed
func (s *Service) Delete(ctx context.Context, id int64) error {
	sale, err := s.sales.Delete(ctx, id)
	if err != nil {
		if err == domain.ErrNotFound {
			s.logger.Debugf("Sale not found: %d", id)
		} else {
			s.logger.Error("Failed to delete sale", err)
		}
		return err
	}

	if err := s.cache.InvalidateReports(ctx); err != nil {
		s.logger.Warnf("Failed to invalidate report cache: %v", err)
	}

	s.publishEvent(ctx, "venta.eliminada", sale)

	s.logger.WithFields(map[string]interface{}{
		"sale_id":    id,
		"product_id": sale.ProductID,
		"cantidad":   sale.Quantity,
	}).Info("Sale deleted and stock restored")

	return nil
}

// History retrieves the append-only sale audit trail
func (s *Service) History(ctx context.Context) ([]*domain.SaleHistoryEntry, error) {
	entries, err := s.history.ListSaleEntries(ctx)
	if err != nil {
		s.logger.Error("Failed to list sale history", err)
		return nil, err
	}

	return entries, nil
}

// publishEvent publishes a sale event (non-blocking)
func (s *Service) publishEvent(ctx context.Context, eventType string, sale *domain.Sale) {
	event := SaleEvent{
		Type:      eventType,
		Timestamp: time.Now(),
		ProductID: sale.ProductID,
		SaleID:    sale.ID,
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for sale %d", sale.ID)
		return
	}

	// Publish in background to avoid blocking
	go func() {
		if err := s.publisher.Publish(context.Background(), "inventario.events", data); err != nil {
			s.logger.Errorf(err, "Failed to publish event for sale %d", sale.ID)
		}
	}()
}
