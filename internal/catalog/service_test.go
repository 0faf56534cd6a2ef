package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-bangunan/internal/common"
	"github.com/noah-isme/backend-bangunan/internal/repo"
)

type stubProductStore struct {
	products []repo.Product
	listHits int
}

func (s *stubProductStore) List(_ context.Context) ([]repo.Product, error) {
	s.listHits++
	return s.products, nil
}

func (s *stubProductStore) Get(_ context.Context, id string) (repo.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return repo.Product{}, repo.ErrNotFound
}

func sampleProducts() []repo.Product {
	return []repo.Product{
		{ID: "p1", Name: "Semen Tiga Roda 50kg", Unit: "sak", UnitPrice: 65_000, Stock: 120, IsActive: true},
		{ID: "p2", Name: "Pasir Cor", Unit: "m3", UnitPrice: 350_000, Stock: 40, IsActive: true},
	}
}

func TestListCachesUnfilteredListing(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	store := &stubProductStore{products: sampleProducts()}
	svc := &Service{Products: store, Cache: NewCache(client, time.Minute)}

	for i := 0; i < 3; i++ {
		products, err := svc.List(context.Background(), "")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(products) != 2 {
			t.Fatalf("expected 2 products, got %d", len(products))
		}
	}
	if store.listHits != 1 {
		t.Fatalf("expected one store hit, got %d", store.listHits)
	}
}

func TestListFilterBypassesCache(t *testing.T) {
	store := &stubProductStore{products: sampleProducts()}
	svc := &Service{Products: store}

	products, err := svc.List(context.Background(), "pasir")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 1 || products[0].ID != "p2" {
		t.Fatalf("expected only Pasir Cor, got %+v", products)
	}
}

func TestGetUnknownProduct(t *testing.T) {
	svc := &Service{Products: &stubProductStore{}}
	_, err := svc.Get(context.Background(), "ghost")
	app, ok := common.AsAppError(err)
	if !ok || app.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND app error, got %v", err)
	}
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatal("expected cause preserved")
	}
}
