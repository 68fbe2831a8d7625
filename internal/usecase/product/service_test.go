package product

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/luischz/inventario_ventas/internal/domain"
	"github.com/luischz/inventario_ventas/internal/pkg/logger"
)

// MockProductRepository is a mock implementation of domain.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Product, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, id int64, fields domain.ProductUpdate) (*domain.Product, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Deactivate(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, id int64, delta int) (*domain.Product, error) {
	args := m.Called(ctx, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

// MockHistoryRepository is a mock implementation of domain.HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) AppendProductEntry(ctx context.Context, entry *domain.ProductHistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) AppendSaleEntry(ctx context.Context, entry *domain.SaleHistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) ListProductEntries(ctx context.Context) ([]*domain.ProductHistoryEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ProductHistoryEntry), args.Error(1)
}

func (m *MockHistoryRepository) ListSaleEntries(ctx context.Context) ([]*domain.SaleHistoryEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SaleHistoryEntry), args.Error(1)
}

// MockImageStore is a mock implementation of imagestore.Store
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, image io.Reader) (string, error) {
	args := m.Called(ctx, image)
	return args.String(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func newTestService(repo *MockProductRepository, history *MockHistoryRepository, images *MockImageStore, publisher *MockEventPublisher) *Service {
	return NewService(repo, history, images, publisher, logger.New("test"))
}

func TestService_Create_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockHistory := new(MockHistoryRepository)
	mockImages := new(MockImageStore)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockImages, mockPublisher)

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name == "Camiseta" && p.Cost == 10.0 && p.SalePrice == 25.0 && p.Stock == 5 && p.Active
	})).Return(nil)
	mockHistory.On("AppendProductEntry", mock.Anything, mock.MatchedBy(func(e *domain.ProductHistoryEntry) bool {
		return e.Action == domain.ActionCreate
	})).Return(nil)
	mockPublisher.On("Publish", mock.Anything, "inventario.events", mock.Anything).Return(nil)

	created, err := service.Create(context.Background(), CreateInput{
		Name:      "Camiseta",
		Cost:      10.0,
		SalePrice: 25.0,
		Stock:     5,
	})

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.True(t, created.Active)
	mockRepo.AssertExpectations(t)
	mockHistory.AssertExpectations(t)
	mockImages.AssertNotCalled(t, "Upload")
}

func TestService_Create_InvalidInput(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockHistory := new(MockHistoryRepository)
	mockImages := new(MockImageStore)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockImages, mockPublisher)

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"empty name", CreateInput{Name: "", Cost: 10, SalePrice: 25, Stock: 5}},
		{"negative cost", CreateInput{Name: "Camiseta", Cost: -1, SalePrice: 25, Stock: 5}},
		{"negative sale price", CreateInput{Name: "Camiseta", Cost: 10, SalePrice: -5, Stock: 5}},
		{"negative stock", CreateInput{Name: "Camiseta", Cost: 10, SalePrice: 25, Stock: -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			created, err := service.Create(context.Background(), tc.in)

			assert.Nil(t, created)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_Create_UploadFailureWritesNothing(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockHistory := new(MockHistoryRepository)
	mockImages := new(MockImageStore)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockImages, mockPublisher)

	mockImages.On("Upload", mock.Anything, mock.Anything).Return("", assert.AnError)

	// The upload runs before any write, so a failure leaves storage untouched
	created, err := service.Create(context.Background(), CreateInput{
		Name:      "Camiseta",
		Cost:      10.0,
		SalePrice: 25.0,
		Stock:     5,
		Image:     strings.NewReader("fake-image-bytes"),
	})

	assert.Nil(t, created)
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	mockRepo.AssertNotCalled(t, "Create")
	mockHistory.AssertNotCalled(t, "AppendProductEntry")
}

func TestService_Create_WithImage(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockHistory := new(MockHistoryRepository)
	mockImages := new(MockImageStore)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockImages, mockPublisher)

	mockImages.On("Upload", mock.Anything, mock.Anything).Return("https://img.example.com/abc.png", nil)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.ImageURL != nil && *p.ImageURL == "https://img.example.com/abc.png"
	})).Return(nil)
	mockHistory.On("AppendProductEntry", mock.Anything, mock.Anything).Return(nil)
	mockPublisher.On("Publish", mock.Anything, "inventario.events", mock.Anything).Return(nil)

	created, err := service.Create(context.Background(), CreateInput{
		Name:      "Camiseta",
		Cost:      10.0,
		SalePrice: 25.0,
		Stock:     5,
		Image:     strings.NewReader("fake-image-bytes"),
	})

	assert.NoError(t, err)
	assert.NotNil(t, created.ImageURL)
	mockImages.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestService_Update_NoFields(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockHistory := new(MockHistoryRepository)
	mockImages := new(MockImageStore)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockImages, mockPublisher)

	updated, err := service.Update(context.Background(), 1, UpdateInput{})

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestService_Update_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockHistory := new(MockHistoryRepository)
	mockImages := new(MockImageStore)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockImages, mockPublisher)

	prev := &domain.Product{ID: 1, Name: "Camiseta", Cost: 10, SalePrice: 25, Stock: 5, Active: true}
	newCost := 12.0
	fields := domain.ProductUpdate{Cost: &newCost}
	merged := &domain.Product{ID: 1, Name: "Camiseta", Cost: 12, SalePrice: 25, Stock: 5, Active: true}

	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(prev, nil)
	mockRepo.On("Update", mock.Anything, int64(1), fields).Return(merged, nil)
	mockHistory.On("AppendProductEntry", mock.Anything, mock.MatchedBy(func(e *domain.ProductHistoryEntry) bool {
		return e.Action == domain.ActionUpdate && e.PreviousStock != nil && *e.PreviousStock == 5
	})).Return(nil)
	mockPublisher.On("Publish", mock.Anything, "inventario.events", mock.Anything).Return(nil)

	updated, err := service.Update(context.Background(), 1, UpdateInput{Fields: fields})

	assert.NoError(t, err)
	assert.Equal(t, merged, updated)
	mockRepo.AssertExpectations(t)
	mockHistory.AssertExpectations(t)
}

func TestService_Update_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockHistory := new(MockHistoryRepository)
	mockImages := new(MockImageStore)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockImages, mockPublisher)

	newCost := 12.0
	mockRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound)

	updated, err := service.Update(context.Background(), 99, UpdateInput{Fields: domain.ProductUpdate{Cost: &newCost}})

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestService_Deactivate_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockHistory := new(MockHistoryRepository)
	mockImages := new(MockImageStore)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockImages, mockPublisher)

	prev := &domain.Product{ID: 1, Name: "Camiseta", Cost: 10, SalePrice: 25, Stock: 8, Active: true}

	mockRepo.On("Deactivate", mock.Anything, int64(1)).Return(prev, nil)
	mockHistory.On("AppendProductEntry", mock.Anything, mock.MatchedBy(func(e *domain.ProductHistoryEntry) bool {
		return e.Action == domain.ActionDeactivate &&
			!e.Active && e.Stock == 0 &&
			e.PreviousStock != nil && *e.PreviousStock == 8
	})).Return(nil)
	mockPublisher.On("Publish", mock.Anything, "inventario.events", mock.Anything).Return(nil)

	err := service.Deactivate(context.Background(), 1)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockHistory.AssertExpectations(t)
}

func TestService_Deactivate_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockHistory := new(MockHistoryRepository)
	mockImages := new(MockImageStore)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockImages, mockPublisher)

	mockRepo.On("Deactivate", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound)

	err := service.Deactivate(context.Background(), 99)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockHistory.AssertNotCalled(t, "AppendProductEntry")
}

func TestService_Create_HistoryFailureDoesNotFailCreate(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockHistory := new(MockHistoryRepository)
	mockImages := new(MockImageStore)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockImages, mockPublisher)

	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockHistory.On("AppendProductEntry", mock.Anything, mock.Anything).Return(assert.AnError)
	mockPublisher.On("Publish", mock.Anything, "inventario.events", mock.Anything).Return(nil)

	// History is best-effort and must not undo the committed create
	created, err := service.Create(context.Background(), CreateInput{
		Name:      "Camiseta",
		Cost:      10.0,
		SalePrice: 25.0,
		Stock:     5,
	})

	assert.NoError(t, err, "Create should succeed even when history append fails")
	assert.NotNil(t, created)
	mockHistory.AssertExpectations(t)
}

func TestService_List_ActiveOnly(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockHistory := new(MockHistoryRepository)
	mockImages := new(MockImageStore)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockImages, mockPublisher)

	expected := []*domain.Product{
		{ID: 1, Name: "Camiseta", Active: true},
	}

	mockRepo.On("List", mock.Anything, true).Return(expected, nil)

	products, err := service.List(context.Background(), true)

	assert.NoError(t, err)
	assert.Equal(t, expected, products)
	mockRepo.AssertExpectations(t)
}
