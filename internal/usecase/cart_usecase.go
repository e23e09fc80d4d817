package usecase

import (
	"encoding/json"
	"sort"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/butrintmetaj7/shop-client/internal/domain"
)

// ProductLookup is the slice of the catalog the cart needs for pricing.
type ProductLookup interface {
	GetProductByID(id int) (domain.Product, bool)
	Loaded() bool
}

// CartUseCase holds the per-user shopping cart. Contents are persisted under
// a partition key derived from the active user identity, so carts never leak
// across users; switching identity reloads from the new partition and
// discards the in-memory state of the previous one.
type CartUseCase struct {
	store domain.KVStore
	log   *logrus.Logger

	mu       sync.RWMutex
	userID   int
	contents map[string]domain.CartEntry
}

func NewCartUseCase(store domain.KVStore, logger *logrus.Logger) *CartUseCase {
	c := &CartUseCase{
		store:    store,
		log:      logger,
		contents: make(map[string]domain.CartEntry),
	}
	c.load()
	return c
}

// SetUser switches the active cart partition. A no-op when the identity is
// unchanged. userID <= 0 selects the shared anonymous partition.
func (c *CartUseCase) SetUser(userID int) {
	if userID < 0 {
		userID = 0
	}
	c.mu.Lock()
	if c.userID == userID {
		c.mu.Unlock()
		return
	}
	c.userID = userID
	c.mu.Unlock()

	c.log.Debugf("CartUseCase: switching to cart partition for user %d", userID)
	c.load()
}

// Add puts one unit of the product into the cart. Identifiers that are not
// positive are rejected with a warning and no state change.
func (c *CartUseCase) Add(productID int) {
	if productID <= 0 {
		c.log.Warnf("CartUseCase: rejected add of invalid product id %d", productID)
		return
	}

	key := strconv.Itoa(productID)
	c.mu.Lock()
	entry, ok := c.contents[key]
	if ok {
		entry.Quantity++
	} else {
		entry = domain.CartEntry{ProductID: productID, Quantity: 1}
	}
	c.contents[key] = entry
	c.mu.Unlock()

	c.persist()
}

// Remove takes one unit of the product out of the cart. Entries never reach
// quantity zero; the last unit deletes the entry. Unknown products are a
// no-op.
func (c *CartUseCase) Remove(productID int) {
	key := strconv.Itoa(productID)

	c.mu.Lock()
	entry, ok := c.contents[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	entry.Quantity--
	if entry.Quantity <= 0 {
		delete(c.contents, key)
	} else {
		c.contents[key] = entry
	}
	c.mu.Unlock()

	c.persist()
}

// Clear empties the cart.
func (c *CartUseCase) Clear() {
	c.mu.Lock()
	c.contents = make(map[string]domain.CartEntry)
	c.mu.Unlock()
	c.persist()
}

// Contents returns a snapshot of the cart mapping.
func (c *CartUseCase) Contents() map[string]domain.CartEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := make(map[string]domain.CartEntry, len(c.contents))
	for key, entry := range c.contents {
		snapshot[key] = entry
	}
	return snapshot
}

// Count is the sum of all quantities in the cart.
func (c *CartUseCase) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, entry := range c.contents {
		count += entry.Quantity
	}
	return count
}

// Total prices the cart against the catalog. Entries whose product is not
// known to the catalog are excluded, never treated as zero-cost.
func (c *CartUseCase) Total(catalog ProductLookup) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := 0.0
	for _, entry := range c.contents {
		product, ok := catalog.GetProductByID(entry.ProductID)
		if !ok {
			continue
		}
		total += product.Price * float64(entry.Quantity)
	}
	return total
}

// FormattedCart returns display-ready line items sorted by product id. Empty
// until the catalog has loaded; entries for unknown products are skipped.
func (c *CartUseCase) FormattedCart(catalog ProductLookup) []domain.CartLine {
	if !catalog.Loaded() {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	lines := make([]domain.CartLine, 0, len(c.contents))
	for _, entry := range c.contents {
		product, ok := catalog.GetProductByID(entry.ProductID)
		if !ok {
			continue
		}
		lines = append(lines, domain.CartLine{
			ID:       entry.ProductID,
			Title:    product.Title,
			Image:    product.Image,
			Quantity: entry.Quantity,
			Cost:     product.Price * float64(entry.Quantity),
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines
}

func (c *CartUseCase) storageKey() string {
	return domain.CartKeyForUser(c.userID)
}

func (c *CartUseCase) persist() {
	c.mu.RLock()
	payload, err := json.Marshal(c.contents)
	key := c.storageKey()
	c.mu.RUnlock()

	if err != nil {
		c.log.Errorf("CartUseCase: failed to encode cart: %v", err)
		return
	}
	if err := c.store.Set(key, string(payload)); err != nil {
		c.log.Errorf("CartUseCase: failed to persist cart: %v", err)
	}
}

// load replaces the in-memory contents with the active partition's persisted
// state. Malformed or missing data resets to an empty cart rather than
// propagating an error.
func (c *CartUseCase) load() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.contents = make(map[string]domain.CartEntry)

	raw, ok := c.store.Get(domain.CartKeyForUser(c.userID))
	if !ok || raw == "" {
		return
	}

	var stored map[string]domain.CartEntry
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		c.log.Warnf("CartUseCase: discarding malformed persisted cart: %v", err)
		return
	}
	if stored != nil {
		c.contents = stored
	}
}
