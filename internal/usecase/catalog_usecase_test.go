package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butrintmetaj7/shop-client/internal/clients"
	"github.com/butrintmetaj7/shop-client/internal/domain"
)

type fakeProductAPI struct {
	listFn func(ctx context.Context, page int) (*domain.ProductPage, error)
	getFn  func(ctx context.Context, id int) (*domain.Product, error)
}

func (f *fakeProductAPI) List(ctx context.Context, page int) (*domain.ProductPage, error) {
	return f.listFn(ctx, page)
}

func (f *fakeProductAPI) Get(ctx context.Context, id int) (*domain.Product, error) {
	return f.getFn(ctx, id)
}

func TestCatalogFetchProducts(t *testing.T) {
	api := &fakeProductAPI{
		listFn: func(_ context.Context, page int) (*domain.ProductPage, error) {
			return &domain.ProductPage{
				Data: []domain.Product{
					{ID: 3, Title: "Hub", Price: 39.5},
					{ID: 1, Title: "Mouse", Price: 24.99},
				},
				CurrentPage: page,
				LastPage:    4,
				PerPage:     2,
				Total:       8,
			}, nil
		},
	}
	catalog := NewCatalogUseCase(api, testLogger())

	require.False(t, catalog.Loaded())
	require.NoError(t, catalog.FetchProducts(context.Background(), 1))

	assert.True(t, catalog.Loaded())
	assert.False(t, catalog.Loading())

	// Server page order is preserved.
	list := catalog.List()
	require.Len(t, list, 2)
	assert.Equal(t, 3, list[0].ID)
	assert.Equal(t, 1, list[1].ID)

	current, last, perPage, total := catalog.Pagination()
	assert.Equal(t, 1, current)
	assert.Equal(t, 4, last)
	assert.Equal(t, 2, perPage)
	assert.Equal(t, 8, total)

	product, ok := catalog.GetProductByID(3)
	require.True(t, ok)
	assert.Equal(t, "Hub", product.Title)
}

func TestCatalogFetchMergesAcrossPages(t *testing.T) {
	pages := map[int][]domain.Product{
		1: {{ID: 1, Title: "Mouse"}},
		2: {{ID: 2, Title: "Keyboard"}},
	}
	api := &fakeProductAPI{
		listFn: func(_ context.Context, page int) (*domain.ProductPage, error) {
			return &domain.ProductPage{Data: pages[page], CurrentPage: page, LastPage: 2, PerPage: 1, Total: 2}, nil
		},
	}
	catalog := NewCatalogUseCase(api, testLogger())

	require.NoError(t, catalog.FetchProducts(context.Background(), 1))
	require.NoError(t, catalog.FetchProducts(context.Background(), 2))

	// ids reflect the latest page, but earlier products stay cached.
	list := catalog.List()
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].ID)

	_, ok := catalog.GetProductByID(1)
	assert.True(t, ok)
}

func TestCatalogFetchAllProductsIsIdempotent(t *testing.T) {
	calls := 0
	api := &fakeProductAPI{
		listFn: func(_ context.Context, page int) (*domain.ProductPage, error) {
			calls++
			return &domain.ProductPage{Data: []domain.Product{{ID: 1}}, CurrentPage: page, LastPage: 1}, nil
		},
	}
	catalog := NewCatalogUseCase(api, testLogger())

	require.NoError(t, catalog.FetchAllProducts(context.Background()))
	require.NoError(t, catalog.FetchAllProducts(context.Background()))

	assert.Equal(t, 1, calls)
}

func TestCatalogFetchFailure(t *testing.T) {
	api := &fakeProductAPI{
		listFn: func(context.Context, int) (*domain.ProductPage, error) {
			return nil, &clients.APIError{StatusCode: 503, Message: "down for maintenance"}
		},
	}
	catalog := NewCatalogUseCase(api, testLogger())

	err := catalog.FetchProducts(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, "down for maintenance", catalog.Err())
	assert.False(t, catalog.Loaded())
	assert.False(t, catalog.Loading())
}

func TestCatalogFetchFailureFallbackMessage(t *testing.T) {
	api := &fakeProductAPI{
		listFn: func(context.Context, int) (*domain.ProductPage, error) {
			return nil, assert.AnError
		},
	}
	catalog := NewCatalogUseCase(api, testLogger())

	require.Error(t, catalog.FetchProducts(context.Background(), 1))
	assert.Equal(t, "Failed to fetch products", catalog.Err())
}
