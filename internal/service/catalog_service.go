package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice-api/internal/models"
	"github.com/noah-isme/course-backoffice-api/internal/repository"
	appErrors "github.com/noah-isme/course-backoffice-api/pkg/errors"
)

type catalogSubjectStore interface {
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
	List(ctx context.Context) ([]models.Subject, error)
}

type catalogProductStore interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
}

type catalogTeacherProductStore interface {
	Stats(ctx context.Context, id int64) (*models.TeacherProductStats, error)
}

// CatalogService serves the read-only subject and product catalog. Listings
// go through the cache; misses and cache failures fall back to the database.
type CatalogService struct {
	subjects        catalogSubjectStore
	products        catalogProductStore
	teacherProducts catalogTeacherProductStore
	cache           *repository.CacheRepository
	ttl             time.Duration
	logger          *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(subjects catalogSubjectStore, products catalogProductStore, teacherProducts catalogTeacherProductStore, cache *repository.CacheRepository, ttl time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogService{
		subjects:        subjects,
		products:        products,
		teacherProducts: teacherProducts,
		cache:           cache,
		ttl:             ttl,
		logger:          logger,
	}
}

// ListSubjects returns all subjects.
func (s *CatalogService) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	var cached []models.Subject
	if s.cacheGet(ctx, "catalog:subjects", &cached) {
		return cached, nil
	}
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list subjects")
	}
	s.cacheSet(ctx, "catalog:subjects", subjects)
	return subjects, nil
}

// GetSubject returns one subject by id.
func (s *CatalogService) GetSubject(ctx context.Context, id int64) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrSubjectNotFound, "failed to fetch subject")
	}
	return subject, nil
}

// ListProducts returns all products.
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	var cached []models.Product
	if s.cacheGet(ctx, "catalog:products", &cached) {
		return cached, nil
	}
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list products")
	}
	s.cacheSet(ctx, "catalog:products", products)
	return products, nil
}

// GetTeacherProductStats returns a teacher product together with its
// assignment aggregates. Always fresh: the counts back the capacity
// monitoring and a stale fullness would mask an overload.
func (s *CatalogService) GetTeacherProductStats(ctx context.Context, id int64) (*models.TeacherProductStats, error) {
	stats, err := s.teacherProducts.Stats(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrTeacherProductNotFound, "failed to fetch teacher product stats")
	}
	return stats, nil
}

// GetProduct returns one product by id.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrProductNotFound, "failed to fetch product")
	}
	return product, nil
}

func (s *CatalogService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.GetJSON(ctx, key, dest)
	if err != nil {
		s.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
