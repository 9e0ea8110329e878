package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"timebudget/internal/cache"
	"timebudget/internal/core"
	"timebudget/internal/metrics"
	"timebudget/internal/ports"
)

const categoriesCacheKey = "categories:all"

// CategoryService serves the global category list from an LRU cache.
type CategoryService struct {
	repo  ports.CategoryRepository
	cache *cache.LRUCache[[]core.Category]
}

func NewCategoryService(repo ports.CategoryRepository, ttl time.Duration) *CategoryService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CategoryService{repo: repo, cache: cache.NewLRUCache[[]core.Category](1, ttl)}
}

// Cache exposes the underlying cache so a cache.Manager can sweep it.
func (s *CategoryService) Cache() *cache.LRUCache[[]core.Category] {
	return s.cache
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	cats, ok := s.cache.Get(categoriesCacheKey)
	metrics.RecordCacheLookup("categories", ok)
	if ok {
		return cats, nil
	}
	cats, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	s.cache.Set(categoriesCacheKey, cats)
	return cats, nil
}

// Seed inserts the categories whose name is missing. Existing rows are untouched.
func (s *CategoryService) Seed(ctx context.Context, cats []core.Category) (int, error) {
	inserted, err := s.repo.Seed(ctx, cats)
	if err != nil {
		return 0, fmt.Errorf("seed categories: %w", err)
	}
	if inserted > 0 {
		s.cache.Delete(categoriesCacheKey)
	}
	slog.InfoContext(ctx, "Categories seeded", "inserted", inserted, "requested", len(cats))
	return inserted, nil
}

// SeedDefaults ensures the ten default categories exist.
func (s *CategoryService) SeedDefaults(ctx context.Context) (int, error) {
	return s.Seed(ctx, core.DefaultCategories)
}
