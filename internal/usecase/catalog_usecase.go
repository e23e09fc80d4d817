package usecase

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/butrintmetaj7/shop-client/internal/clients"
	"github.com/butrintmetaj7/shop-client/internal/domain"
)

const fetchProductsFailedMessage = "Failed to fetch products"

// CatalogUseCase is the process-wide product cache. Fetches merge products
// into the cache; ids always reflect the most recently fetched page in
// server order.
type CatalogUseCase struct {
	api clients.ProductAPI
	log *logrus.Logger

	mu          sync.RWMutex
	items       map[int]domain.Product
	ids         []int
	currentPage int
	lastPage    int
	perPage     int
	total       int
	loading     bool
	errMsg      string
}

func NewCatalogUseCase(api clients.ProductAPI, logger *logrus.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		api:         api,
		log:         logger,
		items:       make(map[int]domain.Product),
		currentPage: 1,
		lastPage:    1,
	}
}

// FetchProducts loads one catalog page. Failures set the error message and
// are returned to the caller.
func (uc *CatalogUseCase) FetchProducts(ctx context.Context, page int) error {
	uc.mu.Lock()
	uc.loading = true
	uc.errMsg = ""
	uc.mu.Unlock()
	defer func() {
		uc.mu.Lock()
		uc.loading = false
		uc.mu.Unlock()
	}()

	result, err := uc.api.List(ctx, page)
	if err != nil {
		uc.mu.Lock()
		uc.errMsg = clients.ErrorMessage(err, fetchProductsFailedMessage)
		uc.mu.Unlock()
		uc.log.Warnf("CatalogUseCase: failed to fetch products page %d: %v", page, err)
		return err
	}

	uc.mu.Lock()
	uc.ids = make([]int, 0, len(result.Data))
	for _, product := range result.Data {
		uc.items[product.ID] = product
		uc.ids = append(uc.ids, product.ID)
	}
	uc.currentPage = result.CurrentPage
	uc.lastPage = result.LastPage
	uc.perPage = result.PerPage
	uc.total = result.Total
	uc.mu.Unlock()

	uc.log.Infof("CatalogUseCase: loaded %d products (page %d of %d)", len(result.Data), result.CurrentPage, result.LastPage)
	return nil
}

// FetchAllProducts loads the first page once. A no-op when the catalog is
// already populated.
func (uc *CatalogUseCase) FetchAllProducts(ctx context.Context) error {
	if uc.Loaded() {
		return nil
	}
	return uc.FetchProducts(ctx, 1)
}

// GetProductByID looks a product up in the cache.
func (uc *CatalogUseCase) GetProductByID(id int) (domain.Product, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	product, ok := uc.items[id]
	return product, ok
}

// Loaded is true once at least one fetch has completed.
func (uc *CatalogUseCase) Loaded() bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return len(uc.ids) > 0
}

// List returns the most recently fetched page in server order.
func (uc *CatalogUseCase) List() []domain.Product {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	products := make([]domain.Product, 0, len(uc.ids))
	for _, id := range uc.ids {
		if product, ok := uc.items[id]; ok {
			products = append(products, product)
		}
	}
	return products
}

// Pagination returns the current page, last page, page size and total count.
func (uc *CatalogUseCase) Pagination() (current, last, perPage, total int) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.currentPage, uc.lastPage, uc.perPage, uc.total
}

// Loading reports whether a catalog fetch is in flight.
func (uc *CatalogUseCase) Loading() bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.loading
}

// Err returns the message of the last failed fetch.
func (uc *CatalogUseCase) Err() string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.errMsg
}
