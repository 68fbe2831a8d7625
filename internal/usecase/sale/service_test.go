package sale

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/luischz/inventario_ventas/internal/domain"
	"github.com/luischz/inventario_ventas/internal/pkg/logger"
)

// MockSaleRepository is a mock implementation of domain.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Create(ctx context.Context, productID int64, quantity int) (*domain.Sale, error) {
	args := m.Called(ctx, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) List(ctx context.Context) ([]*domain.Sale, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) Delete(ctx context.Context, id int64) (*domain.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) DeleteRange(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
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

// MockReportInvalidator is a mock implementation of ReportInvalidator
type MockReportInvalidator struct {
	mock.Mock
}

func (m *MockReportInvalidator) InvalidateReports(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func newTestService(repo *MockSaleRepository, history *MockHistoryRepository, cache *MockReportInvalidator, publisher *MockEventPublisher) *Service {
	return NewService(repo, history, cache, publisher, logger.New("test"))
}

func TestService_Create_Success(t *testing.T) {
	mockRepo := new(MockSaleRepository)
	mockHistory := new(MockHistoryRepository)
	mockCache := new(MockReportInvalidator)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockCache, mockPublisher)

	expected := &domain.Sale{
		ID:         1,
		ProductID:  7,
		Quantity:   3,
		UnitPrice:  25.0,
		TotalPrice: 75.0,
		SoldAt:     time.Now(),
	}

	mockRepo.On("Create", mock.Anything, int64(7), 3).Return(expected, nil)
	mockHistory.On("AppendSaleEntry", mock.Anything, mock.Anything).Return(nil)
	mockCache.On("InvalidateReports", mock.Anything).Return(nil)
	mockPublisher.On("Publish", mock.Anything, "inventario.events", mock.Anything).Return(nil)

	sale, err := service.Create(context.Background(), 7, 3)

	assert.NoError(t, err)
	assert.Equal(t, expected, sale)
	mockRepo.AssertExpectations(t)
	mockHistory.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestService_Create_InvalidInput(t *testing.T) {
	mockRepo := new(MockSaleRepository)
	mockHistory := new(MockHistoryRepository)
	mockCache := new(MockReportInvalidator)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockCache, mockPublisher)

	cases := []struct {
		name      string
		productID int64
		quantity  int
	}{
		{"zero product ID", 0, 3},
		{"negative product ID", -1, 3},
		{"zero quantity", 7, 0},
		{"negative quantity", 7, -2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sale, err := service.Create(context.Background(), tc.productID, tc.quantity)

			assert.Nil(t, sale)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	mockRepo.AssertNotCalled(t, "Create")
}

func TestService_Create_InsufficientStock(t *testing.T) {
	mockRepo := new(MockSaleRepository)
	mockHistory := new(MockHistoryRepository)
	mockCache := new(MockReportInvalidator)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockCache, mockPublisher)

	stockErr := &domain.InsufficientStockError{Available: 2, Requested: 5}
	mockRepo.On("Create", mock.Anything, int64(7), 5).Return(nil, stockErr)

	sale, err := service.Create(context.Background(), 7, 5)

	assert.Nil(t, sale)
	var got *domain.InsufficientStockError
	assert.ErrorAs(t, err, &got)
	assert.Equal(t, 2, got.Available)
	assert.Equal(t, 5, got.Requested)
	mockHistory.AssertNotCalled(t, "AppendSaleEntry")
	mockCache.AssertNotCalled(t, "InvalidateReports")
}

func TestService_Create_ProductNotFound(t *testing.T) {
	mockRepo := new(MockSaleRepository)
	mockHistory := new(MockHistoryRepository)
	mockCache := new(MockReportInvalidator)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockCache, mockPublisher)

	mockRepo.On("Create", mock.Anything, int64(99), 1).Return(nil, domain.ErrNotFound)

	sale, err := service.Create(context.Background(), 99, 1)

	assert.Nil(t, sale)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockHistory.AssertNotCalled(t, "AppendSaleEntry")
}

func TestService_Create_HistoryFailureDoesNotFailSale(t *testing.T) {
	mockRepo := new(MockSaleRepository)
	mockHistory := new(MockHistoryRepository)
	mockCache := new(MockReportInvalidator)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockCache, mockPublisher)

	expected := &domain.Sale{ID: 1, ProductID: 7, Quantity: 3, UnitPrice: 25.0, TotalPrice: 75.0}

	mockRepo.On("Create", mock.Anything, int64(7), 3).Return(expected, nil)
	mockHistory.On("AppendSaleEntry", mock.Anything, mock.Anything).Return(assert.AnError)
	mockCache.On("InvalidateReports", mock.Anything).Return(nil)
	mockPublisher.On("Publish", mock.Anything, "inventario.events", mock.Anything).Return(nil)

	// History is best-effort and must not undo a committed sale
	sale, err := service.Create(context.Background(), 7, 3)

	assert.NoError(t, err, "Sale should succeed even when history append fails")
	assert.Equal(t, expected, sale)
	mockHistory.AssertExpectations(t)
}

func TestService_Create_CacheInvalidationFailure(t *testing.T) {
	mockRepo := new(MockSaleRepository)
	mockHistory := new(MockHistoryRepository)
	mockCache := new(MockReportInvalidator)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockCache, mockPublisher)

	expected := &domain.Sale{ID: 1, ProductID: 7, Quantity: 3}

	mockRepo.On("Create", mock.Anything, int64(7), 3).Return(expected, nil)
	mockHistory.On("AppendSaleEntry", mock.Anything, mock.Anything).Return(nil)
	mockCache.On("InvalidateReports", mock.Anything).Return(assert.AnError)
	mockPublisher.On("Publish", mock.Anything, "inventario.events", mock.Anything).Return(nil)

	// Cache failure should not prevent operation from succeeding
	sale, err := service.Create(context.Background(), 7, 3)

	assert.NoError(t, err, "Operation should succeed even when cache fails")
	assert.Equal(t, expected, sale)
	mockCache.AssertExpectations(t)
}

func TestService_GetByID_NotFound(t *testing.T) {
	mockRepo := new(MockSaleRepository)
	mockHistory := new(MockHistoryRepository)
	mockCache := new(MockReportInvalidator)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockCache, mockPublisher)

	mockRepo.On("GetByID", mock.Anything, int64(42)).Return(nil, domain.ErrNotFound)

	sale, err := service.GetByID(context.Background(), 42)

	assert.Nil(t, sale)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestService_Delete_Success(t *testing.T) {
	mockRepo := new(MockSaleRepository)
	mockHistory := new(MockHistoryRepository)
	mockCache := new(MockReportInvalidator)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockCache, mockPublisher)

	deleted := &domain.Sale{ID: 5, ProductID: 7, Quantity: 2}

	mockRepo.On("Delete", mock.Anything, int64(5)).Return(deleted, nil)
	mockCache.On("InvalidateReports", mock.Anything).Return(nil)
	mockPublisher.On("Publish", mock.Anything, "inventario.events", mock.Anything).Return(nil)

	err := service.Delete(context.Background(), 5)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestService_Delete_NotFound(t *testing.T) {
	mockRepo := new(MockSaleRepository)
	mockHistory := new(MockHistoryRepository)
	mockCache := new(MockReportInvalidator)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockCache, mockPublisher)

	mockRepo.On("Delete", mock.Anything, int64(5)).Return(nil, domain.ErrNotFound)

	err := service.Delete(context.Background(), 5)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockCache.AssertNotCalled(t, "InvalidateReports")
}

func TestService_History(t *testing.T) {
	mockRepo := new(MockSaleRepository)
	mockHistory := new(MockHistoryRepository)
	mockCache := new(MockReportInvalidator)
	mockPublisher := new(MockEventPublisher)
	service := newTestService(mockRepo, mockHistory, mockCache, mockPublisher)

	expected := []*domain.SaleHistoryEntry{
		{ID: 1, SaleID: 1, ProductID: 7, Quantity: 3, TotalPrice: 75.0},
		{ID: 2, SaleID: 2, ProductID: 8, Quantity: 1, TotalPrice: 10.0},
	}

	mockHistory.On("ListSaleEntries", mock.Anything).Return(expected, nil)

	entries, err := service.History(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, expected, entries)
	mockHistory.AssertExpectations(t)
}

// stockGuardedRepo is an in-memory SaleRepository whose Create checks and
// decrements stock under a mutex, mimicking the row lock the real repository
// takes. It lets the test drive two sales against the same unit of stock.
type stockGuardedRepo struct {
	mu     sync.Mutex
	stock  int
	nextID int64
}

func (r *stockGuardedRepo) Create(ctx context.Context, productID int64, quantity int) (*domain.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stock < quantity {
		return nil, &domain.InsufficientStockError{Available: r.stock, Requested: quantity}
	}
	r.stock -= quantity
	r.nextID++
	return &domain.Sale{ID: r.nextID, ProductID: productID, Quantity: quantity}, nil
}

func (r *stockGuardedRepo) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	return nil, domain.ErrNotFound
}

func (r *stockGuardedRepo) List(ctx context.Context) ([]*domain.Sale, error) {
	return nil, nil
}

func (r *stockGuardedRepo) Delete(ctx context.Context, id int64) (*domain.Sale, error) {
	return nil, domain.ErrNotFound
}

func (r *stockGuardedRepo) DeleteRange(ctx context.Context, from, to time.Time) (int64, error) {
	return 0, nil
}

func TestService_Create_ConcurrentSalesNeverOversell(t *testing.T) {
	repo := &stockGuardedRepo{stock: 1}
	mockHistory := new(MockHistoryRepository)
	mockCache := new(MockReportInvalidator)
	mockPublisher := new(MockEventPublisher)
	mockHistory.On("AppendSaleEntry", mock.Anything, mock.Anything).Return(nil)
	mockCache.On("InvalidateReports", mock.Anything).Return(nil)
	mockPublisher.On("Publish", mock.Anything, "inventario.events", mock.Anything).Return(nil)

	service := NewService(repo, mockHistory, mockCache, mockPublisher, logger.New("test"))

	var wg sync.WaitGroup
	results := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = service.Create(context.Background(), 7, 1)
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range results {
		var stockErr *domain.InsufficientStockError
		switch {
		case err == nil:
			succeeded++
		case errors.As(err, &stockErr):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one sale should win the last unit")
	assert.Equal(t, 1, rejected, "the other sale should be rejected for stock")
	assert.Equal(t, 0, repo.stock, "stock should never go negative")
}
