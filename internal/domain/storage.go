package domain

import "fmt"

// Persisted storage keys shared between components.
const (
	AuthTokenKey     = "auth_token"
	CartKey          = "shopping_cart"
	IntendedRouteKey = "intended_route"
)

// KVStore is the synchronous string key-value storage the client persists
// its state into. Implementations are assumed to always be available; callers
// do not retry.
type KVStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// CartKeyForUser returns the cart partition key for the given user identity.
// Unauthenticated carts (userID <= 0) share the unpartitioned key.
func CartKeyForUser(userID int) string {
	if userID <= 0 {
		return CartKey
	}
	return fmt.Sprintf("%s_%d", CartKey, userID)
}
