package product

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/coffee_catalog/internal/delivery/events"
	"github.com/Pesokrava/coffee_catalog/internal/domain"
	"github.com/Pesokrava/coffee_catalog/internal/pkg/logger"
)

const testSubject = "products.events"

// MockProductRepository is a mock implementation of domain.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) SalePositions(ctx context.Context, productID uuid.UUID) ([]*domain.SalePosition, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SalePosition), args.Error(1)
}

func (m *MockProductRepository) ExistsByArticle(ctx context.Context, article int) (bool, error) {
	args := m.Called(ctx, article)
	return args.Bool(0), args.Error(1)
}

// MockProductCache is a mock implementation of ProductCache
type MockProductCache struct {
	mock.Mock
}

func (m *MockProductCache) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductCache) SetProduct(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductCache) InvalidateProduct(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func (m *MockPublisher) lastEvent(t *testing.T) events.ProductEvent {
	t.Helper()
	require.NotEmpty(t, m.Calls)
	data := m.Calls[len(m.Calls)-1].Arguments.Get(2).([]byte)

	var event events.ProductEvent
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

type serviceMocks struct {
	repo      *MockProductRepository
	cache     *MockProductCache
	publisher *MockPublisher
}

func setupService() (*Service, serviceMocks) {
	m := serviceMocks{
		repo:      new(MockProductRepository),
		cache:     new(MockProductCache),
		publisher: new(MockPublisher),
	}
	return NewService(m.repo, m.cache, m.publisher, testSubject, logger.New("test")), m
}

func newProduct() *domain.Product {
	p := domain.NewProduct()
	p.SetArticle(12345)
	p.SetTitle("Espresso")
	p.SetURL("espresso")
	p.SetPrice(45)
	return p
}

func TestService_Create_Success(t *testing.T) {
	service, m := setupService()
	product := newProduct()

	stored := newProduct()
	stored.SetCategory(&domain.Category{Title: "Coffee"})

	m.repo.On("Create", mock.Anything, product).Return(nil)
	m.repo.On("GetByID", mock.Anything, product.ID).Return(stored, nil)
	m.cache.On("SetProduct", mock.Anything, stored).Return(nil)
	m.publisher.On("Publish", mock.Anything, testSubject, mock.Anything).Return(nil)

	err := service.Create(context.Background(), product)

	assert.NoError(t, err)
	m.repo.AssertNotCalled(t, "ExistsByArticle", mock.Anything, mock.Anything)
	m.repo.AssertExpectations(t)
	m.cache.AssertExpectations(t)

	event := m.publisher.lastEvent(t)
	assert.Equal(t, events.ProductCreated, event.EventType)
	assert.Equal(t, 12345, event.Article)
	assert.Equal(t, "Espresso", event.Title)
}

func TestService_Create_AssignsArticle(t *testing.T) {
	service, m := setupService()
	product := domain.NewProduct()
	product.SetTitle("Espresso")

	m.repo.On("ExistsByArticle", mock.Anything, mock.AnythingOfType("int")).Return(true, nil).Once()
	m.repo.On("ExistsByArticle", mock.Anything, mock.AnythingOfType("int")).Return(false, nil).Once()
	m.repo.On("Create", mock.Anything, product).Return(nil)
	m.repo.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	m.cache.On("SetProduct", mock.Anything, product).Return(nil)
	m.publisher.On("Publish", mock.Anything, testSubject, mock.Anything).Return(nil)

	err := service.Create(context.Background(), product)

	require.NoError(t, err)
	assert.Greater(t, product.Article(), 0)
	assert.LessOrEqual(t, product.Article(), 99999)
	m.repo.AssertNumberOfCalls(t, "ExistsByArticle", 2)
}

func TestService_Create_NoFreeArticle(t *testing.T) {
	service, m := setupService()
	product := domain.NewProduct()

	m.repo.On("ExistsByArticle", mock.Anything, mock.AnythingOfType("int")).Return(true, nil)

	err := service.Create(context.Background(), product)

	assert.ErrorIs(t, err, domain.ErrConflict)
	m.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Create_InvalidInput(t *testing.T) {
	service, m := setupService()
	product := newProduct()
	product.SetPhoto(&domain.Photo{Title: string(make([]byte, 300))})

	err := service.Create(context.Background(), product)

	assert.Equal(t, domain.ErrInvalidInput, err)
	m.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Create_RepositoryError(t *testing.T) {
	service, m := setupService()
	product := newProduct()

	m.repo.On("Create", mock.Anything, product).Return(domain.ErrAlreadyExists)

	err := service.Create(context.Background(), product)

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	m.cache.AssertNotCalled(t, "SetProduct", mock.Anything, mock.Anything)
	m.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Create_PublishFailureIsNotFatal(t *testing.T) {
	service, m := setupService()
	product := newProduct()

	m.repo.On("Create", mock.Anything, product).Return(nil)
	m.repo.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	m.cache.On("SetProduct", mock.Anything, product).Return(assert.AnError)
	m.publisher.On("Publish", mock.Anything, testSubject, mock.Anything).Return(assert.AnError)

	assert.NoError(t, service.Create(context.Background(), product))
}

func TestService_Create_ReloadFailureSkipsCache(t *testing.T) {
	service, m := setupService()
	product := newProduct()

	m.repo.On("Create", mock.Anything, product).Return(nil)
	m.repo.On("GetByID", mock.Anything, product.ID).Return(nil, assert.AnError)
	m.publisher.On("Publish", mock.Anything, testSubject, mock.Anything).Return(nil)

	err := service.Create(context.Background(), product)

	assert.NoError(t, err)
	m.cache.AssertNotCalled(t, "SetProduct", mock.Anything, mock.Anything)
	assert.Equal(t, events.ProductCreated, m.publisher.lastEvent(t).EventType)
}

func TestService_GetByID_CacheHit(t *testing.T) {
	service, m := setupService()
	product := newProduct()
	product.ID = uuid.New()

	m.cache.On("GetProduct", mock.Anything, product.ID).Return(product, nil)

	got, err := service.GetByID(context.Background(), product.ID)

	assert.NoError(t, err)
	assert.Same(t, product, got)
	m.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestService_GetByID_CacheMiss(t *testing.T) {
	service, m := setupService()
	product := newProduct()
	product.ID = uuid.New()

	m.cache.On("GetProduct", mock.Anything, product.ID).Return(nil, domain.ErrNotFound)
	m.repo.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	m.cache.On("SetProduct", mock.Anything, product).Return(nil)

	got, err := service.GetByID(context.Background(), product.ID)

	assert.NoError(t, err)
	assert.Equal(t, product, got)
	m.repo.AssertExpectations(t)
	m.cache.AssertExpectations(t)
}

func TestService_GetByID_CacheErrorFallsBack(t *testing.T) {
	service, m := setupService()
	product := newProduct()
	product.ID = uuid.New()

	m.cache.On("GetProduct", mock.Anything, product.ID).Return(nil, assert.AnError)
	m.repo.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	m.cache.On("SetProduct", mock.Anything, product).Return(nil)

	got, err := service.GetByID(context.Background(), product.ID)

	assert.NoError(t, err)
	assert.Equal(t, product, got)
}

func TestService_GetByID_NotFound(t *testing.T) {
	service, m := setupService()
	id := uuid.New()

	m.cache.On("GetProduct", mock.Anything, id).Return(nil, domain.ErrNotFound)
	m.repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	got, err := service.GetByID(context.Background(), id)

	assert.Equal(t, domain.ErrNotFound, err)
	assert.Nil(t, got)
	m.cache.AssertNotCalled(t, "SetProduct", mock.Anything, mock.Anything)
}

func TestService_GetWithSalePositions(t *testing.T) {
	service, m := setupService()
	product := newProduct()
	product.ID = uuid.New()
	positions := []*domain.SalePosition{
		{ProductID: product.ID, Number: 1},
		{ProductID: product.ID, Number: 2},
	}

	m.cache.On("GetProduct", mock.Anything, product.ID).Return(product, nil)
	m.repo.On("SalePositions", mock.Anything, product.ID).Return(positions, nil)

	got, err := service.GetWithSalePositions(context.Background(), product.ID)

	require.NoError(t, err)
	assert.Equal(t, positions, got.SalePositions())
}

func TestService_Update_Success(t *testing.T) {
	service, m := setupService()
	product := newProduct()
	product.ID = uuid.New()

	m.repo.On("Update", mock.Anything, product).Return(nil)
	m.cache.On("InvalidateProduct", mock.Anything, product.ID).Return(nil)
	m.publisher.On("Publish", mock.Anything, testSubject, mock.Anything).Return(nil)

	err := service.Update(context.Background(), product)

	assert.NoError(t, err)
	m.cache.AssertExpectations(t)
	assert.Equal(t, events.ProductUpdated, m.publisher.lastEvent(t).EventType)
}

func TestService_Update_MissingArticle(t *testing.T) {
	service, m := setupService()
	product := domain.NewProduct()
	product.ID = uuid.New()

	err := service.Update(context.Background(), product)

	assert.Equal(t, domain.ErrInvalidInput, err)
	m.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestService_Update_NotFound(t *testing.T) {
	service, m := setupService()
	product := newProduct()
	product.ID = uuid.New()

	m.repo.On("Update", mock.Anything, product).Return(domain.ErrNotFound)

	err := service.Update(context.Background(), product)

	assert.Equal(t, domain.ErrNotFound, err)
	m.cache.AssertNotCalled(t, "InvalidateProduct", mock.Anything, mock.Anything)
}

func TestService_Delete_Success(t *testing.T) {
	service, m := setupService()
	id := uuid.New()

	m.repo.On("Delete", mock.Anything, id).Return(nil)
	m.cache.On("InvalidateProduct", mock.Anything, id).Return(nil)
	m.publisher.On("Publish", mock.Anything, testSubject, mock.Anything).Return(nil)

	err := service.Delete(context.Background(), id)

	assert.NoError(t, err)
	event := m.publisher.lastEvent(t)
	assert.Equal(t, events.ProductDeleted, event.EventType)
	assert.Equal(t, id, event.ProductID)
	assert.Zero(t, event.Article)
}

func TestService_Delete_NotFound(t *testing.T) {
	service, m := setupService()
	id := uuid.New()

	m.repo.On("Delete", mock.Anything, id).Return(domain.ErrNotFound)

	err := service.Delete(context.Background(), id)

	assert.Equal(t, domain.ErrNotFound, err)
	m.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}
