package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butrintmetaj7/shop-client/internal/domain"
	"github.com/butrintmetaj7/shop-client/internal/repository"
)

type fakeSession struct {
	authenticated bool
}

func (f *fakeSession) IsAuthenticated() bool { return f.authenticated }

type fakeNavigator struct {
	path      string
	redirects []string
}

func (f *fakeNavigator) CurrentPath() string { return f.path }
func (f *fakeNavigator) Redirect(path string) {
	f.path = path
	f.redirects = append(f.redirects, path)
}

func testRoutes() []domain.Route {
	return []domain.Route{
		{Path: "/products", Name: "products"},
		{Path: "/cart", Name: "cart", RequiresAuth: true},
		{Path: "/profile", Name: "profile", RequiresAuth: true},
	}
}

func newGuard(session SessionInfo, store domain.KVStore, nav domain.Navigator) *GuardUseCase {
	return NewGuardUseCase(testRoutes(), session, store, nav, "/products", testLogger())
}

func TestGuardAllowsPublicRoutes(t *testing.T) {
	nav := &fakeNavigator{}
	guard := newGuard(&fakeSession{}, repository.NewMemoryStore(), nav)

	assert.True(t, guard.Evaluate("/products"))
	assert.Empty(t, nav.redirects)
}

func TestGuardAllowsAuthenticatedSession(t *testing.T) {
	nav := &fakeNavigator{}
	guard := newGuard(&fakeSession{authenticated: true}, repository.NewMemoryStore(), nav)

	assert.True(t, guard.Evaluate("/cart"))
	assert.Empty(t, nav.redirects)
}

func TestGuardPersistedTokenFallback(t *testing.T) {
	// Session not yet restored, but a token is persisted: navigation must not
	// bounce during the startup window.
	store := repository.NewMemoryStore()
	require.NoError(t, store.Set(domain.AuthTokenKey, "tok"))
	nav := &fakeNavigator{}
	guard := newGuard(&fakeSession{authenticated: false}, store, nav)

	assert.True(t, guard.Evaluate("/cart"))
	assert.Empty(t, nav.redirects)
}

func TestGuardRedirectsAndRecordsIntendedRoute(t *testing.T) {
	store := repository.NewMemoryStore()
	nav := &fakeNavigator{}
	guard := newGuard(&fakeSession{}, store, nav)

	assert.False(t, guard.Evaluate("/cart"))

	assert.Equal(t, []string{"/products"}, nav.redirects)
	intended, ok := store.Get(domain.IntendedRouteKey)
	require.True(t, ok)
	assert.Equal(t, "/cart", intended)
}

func TestGuardFirstRedirectWins(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, store.Set(domain.IntendedRouteKey, "/profile"))
	guard := newGuard(&fakeSession{}, store, &fakeNavigator{})

	guard.Evaluate("/cart")

	intended, _ := store.Get(domain.IntendedRouteKey)
	assert.Equal(t, "/profile", intended)
}

func TestGuardNeverRedirectsFallbackToItself(t *testing.T) {
	routes := testRoutes()
	routes[0].RequiresAuth = true // mark /products itself as protected
	nav := &fakeNavigator{}
	guard := NewGuardUseCase(routes, &fakeSession{}, repository.NewMemoryStore(), nav, "/products", testLogger())

	assert.True(t, guard.Evaluate("/products"))
	assert.Empty(t, nav.redirects)
}

func TestGuardConsumeIntendedRoute(t *testing.T) {
	store := repository.NewMemoryStore()
	guard := newGuard(&fakeSession{}, store, &fakeNavigator{})

	guard.Evaluate("/cart")

	path, ok := guard.ConsumeIntendedRoute()
	require.True(t, ok)
	assert.Equal(t, "/cart", path)

	_, ok = guard.ConsumeIntendedRoute()
	assert.False(t, ok)
}
