package product

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/luischz/inventario_ventas/internal/domain"
	"github.com/luischz/inventario_ventas/internal/pkg/imagestore"
	"github.com/luischz/inventario_ventas/internal/pkg/logger"
	pkgvalidator "github.com/luischz/inventario_ventas/internal/pkg/validator"
)

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// InventoryEvent is published after a product mutation commits
type InventoryEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	ProductID int64     `json:"product_id"`
}

// CreateInput holds the fields for a new product. Image is optional.
type CreateInput struct {
	Name      string
	Cost      float64
	SalePrice float64
	Stock     int
	Image     io.Reader
}

// UpdateInput holds a partial update. Image, when set, is uploaded and
// replaces the stored image URL.
type UpdateInput struct {
	Fields domain.ProductUpdate
	Image  io.Reader
}

// Service handles product business logic
type Service struct {
	repo      domain.ProductRepository
	history   domain.HistoryRepository
	images    imagestore.Store
	publisher EventPublisher
	validate  *validator.Validate
	logger    *logger.Logger
}

// NewService creates a new product service
func NewService(
	repo domain.ProductRepository,
	history domain.HistoryRepository,
	images imagestore.Store,
	publisher EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		history:   history,
		images:    images,
		publisher: publisher,
		validate:  pkgvalidator.Get(),
		logger:    log,
	}
}

// Create creates a new product. The image, when supplied, is uploaded before
// anything is written so an upload failure leaves storage untouched.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	product := &domain.Product{
		Name:      in.Name,
		Cost:      in.Cost,
		SalePrice: in.SalePrice,
		Stock:     in.Stock,
		Active:    true,
	}

	if err := s.validate.Struct(product); err != nil {
		s.logger.Error("Product validation failed", err)
		return nil, domain.ErrInvalidInput
	}

	if in.Image != nil {
		url, err := s.images.Upload(ctx, in.Image)
		if err != nil {
			s.logger.Error("Image upload failed", err)
			return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
		}
		product.ImageURL = &url
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", err)
		return nil, err
	}

	s.appendHistory(ctx, product, domain.ActionCreate, 0)
	s.publishEvent(ctx, "producto.creado", product.ID)

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"nombre":     product.Name,
	}).Info("Product created successfully")

	return product, nil
}

// GetByID retrieves a product by ID
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == domain.ErrNotFound {
			s.logger.Debugf("Product not found: %d", id)
		} else {
			s.logger.Error("Failed to get product", err)
		}
		return nil, err
	}

	return product, nil
}

// List retrieves all products ordered by ID
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*domain.Product, error) {
	products, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		s.logger.Error("Failed to list products", err)
		return nil, err
	}

	return products, nil
}

// Update applies a partial update. Unsupplied fields keep their prior value.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*domain.Product, error) {
	if in.Fields.Empty() && in.Image == nil {
		return nil, domain.ErrInvalidInput
	}

	if err := s.validate.Struct(in.Fields); err != nil {
		s.logger.Error("Product update validation failed", err)
		return nil, domain.ErrInvalidInput
	}

	// The prior stock is recorded in the history entry of the update
	prev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == domain.ErrNotFound {
			s.logger.Debugf("Product not found: %d", id)
		} else {
			s.logger.Error("Failed to get product for update", err)
		}
		return nil, err
	}

	if in.Image != nil {
		url, err := s.images.Upload(ctx, in.Image)
		if err != nil {
			s.logger.Error("Image upload failed", err)
			return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
		}
		in.Fields.ImageURL = &url
	}

	updated, err := s.repo.Update(ctx, id, in.Fields)
	if err != nil {
		s.logger.Error("Failed to update product", err)
		return nil, err
	}

	s.appendHistory(ctx, updated, domain.ActionUpdate, prev.Stock)
	s.publishEvent(ctx, "producto.actualizado", id)

	s.logger.WithFields(map[string]interface{}{
		"product_id": id,
		"nombre":     updated.Name,
	}).Info("Product updated successfully")

	return updated, nil
}

// Deactivate marks the product inactive and zeroes its stock. Physical
// deletion would dangle existing sales, so products are only deactivated.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	prev, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		s.logger.Error("Failed to deactivate product", err)
		return err
	}

	after := *prev
	after.Active = false
	after.Stock = 0
	s.appendHistory(ctx, &after, domain.ActionDeactivate, prev.Stock)
	s.publishEvent(ctx, "producto.desactivado", id)

	s.logger.WithFields(map[string]interface{}{
		"product_id":     id,
		"stock_anterior": prev.Stock,
	}).Info("Product deactivated successfully")

	return nil
}

// AdjustStock shifts the product's stock by delta, rejecting adjustments that
// would leave it negative
func (s *Service) AdjustStock(ctx context.Context, id int64, delta int) (*domain.Product, error) {
	product, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		s.logger.Error("Failed to adjust stock", err)
		return nil, err
	}

	return product, nil
}

// History retrieves the append-only product audit trail
func (s *Service) History(ctx context.Context) ([]*domain.ProductHistoryEntry, error) {
	entries, err := s.history.ListProductEntries(ctx)
	if err != nil {
		s.logger.Error("Failed to list product history", err)
		return nil, err
	}

	return entries, nil
}

// appendHistory records a snapshot of the resulting product state. The audit
// trail is diagnostic, not authoritative: a failed append is logged and never
// propagated to the caller.
func (s *Service) appendHistory(ctx context.Context, p *domain.Product, action string, previousStock int) {
	prev := previousStock
	entry := &domain.ProductHistoryEntry{
		ProductID:             p.ID,
		Name:                  p.Name,
		Cost:                  p.Cost,
		SalePrice:             p.SalePrice,
		Stock:                 p.Stock,
		PreviousStock:         &prev,
		ImageURL:              p.ImageURL,
		Active:                p.Active,
		AccumulatedInvestment: p.AccumulatedInvestment,
		Action:                action,
		RecordedAt:            time.Now(),
	}

	if err := s.history.AppendProductEntry(ctx, entry); err != nil {
		s.logger.Warnf("Failed to append product history for product %d: %v", p.ID, err)
	}
}

// publishEvent publishes an inventory event (non-blocking)
func (s *Service) publishEvent(ctx context.Context, eventType string, productID int64) {
	event := InventoryEvent{
		Type:      eventType,
		Timestamp: time.Now(),
		ProductID: productID,
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for product %d", productID)
		return
	}

	// Publish in background to avoid blocking
	go func() {
		if err := s.publisher.Publish(context.Background(), "inventario.events", data); err != nil {
			s.logger.Errorf(err, "Failed to publish event for product %d", productID)
		}
	}()
}
