package product

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Pesokrava/coffee_catalog/internal/delivery/events"
	"github.com/Pesokrava/coffee_catalog/internal/domain"
	"github.com/Pesokrava/coffee_catalog/internal/pkg/logger"
	validatorpkg "github.com/Pesokrava/coffee_catalog/internal/pkg/validator"
)

// maxArticleAttempts bounds how many generated articles are tried before giving up
const maxArticleAttempts = 10

// ProductCache defines the cache operations the service relies on
type ProductCache interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	InvalidateProduct(ctx context.Context, productID uuid.UUID) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Service handles product business logic with caching and event publishing
type Service struct {
	repo      domain.ProductRepository
	cache     ProductCache
	publisher EventPublisher
	subject   string
	validate  *validator.Validate
	logger    *logger.Logger
}

// NewService creates a new product service publishing to subject
func NewService(
	repo domain.ProductRepository,
	cache ProductCache,
	publisher EventPublisher,
	subject string,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		subject:   subject,
		validate:  validatorpkg.Get(),
		logger:    log,
	}
}

// Create stores a new product. A product without an article gets a generated
// one that no stored product uses yet.
func (s *Service) Create(ctx context.Context, product *domain.Product) error {
	if product.Article() <= 0 {
		if err := s.assignArticle(ctx, product); err != nil {
			return err
		}
	}

	if err := s.validate.Struct(product.Snapshot()); err != nil {
		s.logger.Error("Product validation failed", err)
		return domain.ErrInvalidInput
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", err)
		return err
	}

	s.cacheStored(ctx, product.ID)

	s.publishEvent(ctx, events.ProductCreated, product.ID, product)

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"article":    product.Article(),
		"title":      product.Title(),
	}).Info("Product created successfully")

	return nil
}

// GetByID retrieves a product, serving it from cache when possible
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	cached, err := s.cache.GetProduct(ctx, id)
	if err == nil {
		s.logger.Debugf("Cache hit for product %s", id)
		return cached, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warnf("Failed to read product %s from cache: %v", id, err)
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Product not found: %s", id)
		} else {
			s.logger.Error("Failed to get product", err)
		}
		return nil, err
	}

	if err := s.cache.SetProduct(ctx, product); err != nil {
		s.logger.Warnf("Failed to cache product %s: %v", id, err)
	}

	return product, nil
}

// GetWithSalePositions retrieves a product and loads its sale positions
func (s *Service) GetWithSalePositions(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	positions, err := s.repo.SalePositions(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load sale positions", err)
		return nil, err
	}
	product.SetSalePositions(positions)

	return product, nil
}

// Update stores changes of an existing product
func (s *Service) Update(ctx context.Context, product *domain.Product) error {
	if err := s.validate.Struct(product.Snapshot()); err != nil {
		s.logger.Error("Product validation failed", err)
		return domain.ErrInvalidInput
	}

	if err := s.repo.Update(ctx, product); err != nil {
		s.logger.Error("Failed to update product", err)
		return err
	}

	if err := s.cache.InvalidateProduct(ctx, product.ID); err != nil {
		s.logger.Warnf("Failed to invalidate cache for product %s: %v", product.ID, err)
	}

	s.publishEvent(ctx, events.ProductUpdated, product.ID, product)

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"article":    product.Article(),
	}).Info("Product updated successfully")

	return nil
}

// Delete removes a product together with its photo and sale positions
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete product", err)
		return err
	}

	if err := s.cache.InvalidateProduct(ctx, id); err != nil {
		s.logger.Warnf("Failed to invalidate cache for product %s: %v", id, err)
	}

	s.publishEvent(ctx, events.ProductDeleted, id, nil)

	s.logger.WithFields(map[string]interface{}{
		"product_id": id,
	}).Info("Product deleted successfully")

	return nil
}

// cacheStored reloads the product and caches what the repository stored
func (s *Service) cacheStored(ctx context.Context, id uuid.UUID) {
	stored, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warnf("Failed to reload product %s for caching: %v", id, err)
		return
	}

	if err := s.cache.SetProduct(ctx, stored); err != nil {
		s.logger.Warnf("Failed to cache product %s: %v", id, err)
	}
}

// assignArticle generates articles until one is not taken by a stored product
func (s *Service) assignArticle(ctx context.Context, product *domain.Product) error {
	for attempt := 1; attempt <= maxArticleAttempts; attempt++ {
		product.NewArticle()
		if product.Article() == 0 {
			continue
		}

		exists, err := s.repo.ExistsByArticle(ctx, product.Article())
		if err != nil {
			s.logger.Error("Failed to check article", err)
			return err
		}
		if !exists {
			return nil
		}

		s.logger.Debugf("Article %d is taken (attempt %d/%d)", product.Article(), attempt, maxArticleAttempts)
	}

	s.logger.Warnf("No free article after %d attempts", maxArticleAttempts)
	return domain.ErrConflict
}

// publishEvent publishes a product event; failures are logged, not returned
func (s *Service) publishEvent(ctx context.Context, eventType string, id uuid.UUID, product *domain.Product) {
	event := events.ProductEvent{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		ProductID: id,
	}
	if product != nil {
		event.Article = product.Article()
		event.Title = product.Title()
		event.Price = product.Price()
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for product %s", id)
		return
	}

	if err := s.publisher.Publish(ctx, s.subject, data); err != nil {
		s.logger.Errorf(err, "Failed to publish event for product %s", id)
	}
}
