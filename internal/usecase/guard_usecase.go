package usecase

import (
	"github.com/sirupsen/logrus"

	"github.com/butrintmetaj7/shop-client/internal/domain"
)

// SessionInfo is the slice of the session the guard reads.
type SessionInfo interface {
	IsAuthenticated() bool
}

// GuardUseCase gates navigation to protected routes. Its persisted-token
// fallback is a startup race workaround, not a security boundary: the token's
// presence is checked, never its validity, and real authorization stays
// server-side.
type GuardUseCase struct {
	routes   map[string]domain.Route
	session  SessionInfo
	store    domain.KVStore
	nav      domain.Navigator
	fallback string
	log      *logrus.Logger
}

func NewGuardUseCase(routes []domain.Route, session SessionInfo, store domain.KVStore, nav domain.Navigator, fallback string, logger *logrus.Logger) *GuardUseCase {
	table := make(map[string]domain.Route, len(routes))
	for _, route := range routes {
		table[route.Path] = route
	}
	return &GuardUseCase{
		routes:   table,
		session:  session,
		store:    store,
		nav:      nav,
		fallback: fallback,
		log:      logger,
	}
}

// RequiresAuth reports whether the route table marks the path as protected.
func (g *GuardUseCase) RequiresAuth(path string) bool {
	route, ok := g.routes[path]
	return ok && route.RequiresAuth
}

// Evaluate runs the pre-navigation check for the target path. It returns true
// when navigation may proceed unchanged. A failed check records the intended
// destination (first redirect wins, an existing record is never overwritten)
// and redirects to the public fallback route, unless the target already is
// the fallback.
func (g *GuardUseCase) Evaluate(target string) bool {
	if !g.RequiresAuth(target) {
		return true
	}

	authed := g.session.IsAuthenticated()
	if !authed {
		// Session restore may still be in flight after startup; a persisted
		// token counts as authenticated for navigation purposes.
		if token, ok := g.store.Get(domain.AuthTokenKey); ok && token != "" {
			authed = true
		}
	}
	if authed {
		return true
	}

	if target == g.fallback {
		// Never redirect a route to itself.
		return true
	}

	if existing, ok := g.store.Get(domain.IntendedRouteKey); !ok || existing == "" {
		if err := g.store.Set(domain.IntendedRouteKey, target); err != nil {
			g.log.Errorf("Guard: failed to record intended route %q: %v", target, err)
		}
	}

	g.log.Infof("Guard: blocked navigation to %s, redirecting to %s", target, g.fallback)
	g.nav.Redirect(g.fallback)
	return false
}

// ConsumeIntendedRoute pops the recorded post-login destination, if any.
func (g *GuardUseCase) ConsumeIntendedRoute() (string, bool) {
	path, ok := g.store.Get(domain.IntendedRouteKey)
	if !ok || path == "" {
		return "", false
	}
	if err := g.store.Remove(domain.IntendedRouteKey); err != nil {
		g.log.Errorf("Guard: failed to clear intended route: %v", err)
	}
	return path, true
}
