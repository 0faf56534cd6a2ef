package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/noah-isme/backend-bangunan/internal/common"
	"github.com/noah-isme/backend-bangunan/internal/repo"
)

const listCacheKey = "catalog:products"

type productStore interface {
	List(ctx context.Context) ([]repo.Product, error)
	Get(ctx context.Context, id string) (repo.Product, error)
}

// Service serves the product catalog terminals price carts from. Listing is
// cached; single-product reads go straight to the store because settlements
// re-check stock there anyway.
type Service struct {
	Products productStore
	Cache    *Cache
}

// List returns active products, optionally filtered by a case-insensitive
// name query. Only the unfiltered listing is cached.
func (s *Service) List(ctx context.Context, query string) ([]repo.Product, error) {
	query = strings.TrimSpace(query)

	if query == "" {
		var cached []repo.Product
		if s.Cache.Fetch(ctx, listCacheKey, &cached) {
			return cached, nil
		}
	}

	products, err := s.Products.List(ctx)
	if err != nil {
		return nil, err
	}

	if query == "" {
		_ = s.Cache.Store(ctx, listCacheKey, products)
		return products, nil
	}

	needle := strings.ToLower(query)
	filtered := make([]repo.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Get returns one product by id.
func (s *Service) Get(ctx context.Context, id string) (repo.Product, error) {
	product, err := s.Products.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Product{}, common.NewAppError("NOT_FOUND", "product not found", 404, err)
		}
		return repo.Product{}, err
	}
	return product, nil
}
