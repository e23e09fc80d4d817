package delivery

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/butrintmetaj7/shop-client/config"
	"github.com/butrintmetaj7/shop-client/internal/clients"
	"github.com/butrintmetaj7/shop-client/internal/domain"
	"github.com/butrintmetaj7/shop-client/internal/repository"
	"github.com/butrintmetaj7/shop-client/internal/usecase"
)

// App owns the wired object graph of the client: storage, HTTP client,
// use cases and route table. It also acts as the Navigator, tracking the
// current "route" (named screen) of the CLI session.
type App struct {
	cfg *config.Config
	log *logrus.Logger

	store    domain.KVStore
	client   *clients.Client
	products clients.ProductAPI
	session  *usecase.AuthUseCase
	cart    *usecase.CartUseCase
	catalog *usecase.CatalogUseCase
	guard   *usecase.GuardUseCase

	currentPath string
	closeStore  func() error
}

var _ domain.Navigator = (*App)(nil)

func routeTable() []domain.Route {
	return []domain.Route{
		{Path: "/products", Name: "products"},
		{Path: "/login", Name: "login"},
		{Path: "/register", Name: "register"},
		{Path: "/cart", Name: "cart", RequiresAuth: true},
		{Path: "/profile", Name: "profile", RequiresAuth: true},
	}
}

func NewApp(cfg *config.Config, logger *logrus.Logger) (*App, error) {
	app := &App{
		cfg:         cfg,
		log:         logger,
		currentPath: cfg.LandingRoute,
	}

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	app.store = store
	app.closeStore = closeStore

	app.client = clients.NewClient(
		cfg.APIBaseURL,
		cfg.HTTPTimeout,
		logger,
		clients.RequestID(),
		clients.DefaultHeaders(),
		clients.BearerAuth(tokenSourceFunc(func() string {
			if app.session == nil {
				return ""
			}
			return app.session.Token()
		}), store),
		clients.Unauthorized(logger, func() { app.handleUnauthorized() }),
	)

	authAPI := clients.NewAuthHTTPClient(app.client, logger)
	productAPI := clients.NewProductHTTPClient(app.client, logger)
	app.products = productAPI

	app.session = usecase.NewAuthUseCase(authAPI, store, app.client, logger)
	app.cart = usecase.NewCartUseCase(store, logger)
	app.catalog = usecase.NewCatalogUseCase(productAPI, logger)
	app.guard = usecase.NewGuardUseCase(routeTable(), app.session, store, app, cfg.LandingRoute, logger)

	app.session.OnUserChange(func(userID int) {
		app.cart.SetUser(userID)
	})

	return app, nil
}

// openStore picks SQLite when a storage path is configured (or derivable from
// the home directory) and falls back to an in-memory store otherwise.
func openStore(cfg *config.Config, logger *logrus.Logger) (domain.KVStore, func() error, error) {
	path := cfg.StoragePath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Warnf("App: cannot determine home directory, state will not persist: %v", err)
			return repository.NewMemoryStore(), nil, nil
		}
		dir := filepath.Join(home, ".shop-client")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Warnf("App: cannot create state directory, state will not persist: %v", err)
			return repository.NewMemoryStore(), nil, nil
		}
		path = filepath.Join(dir, "state.db")
	}

	store, err := repository.NewSQLiteStore(path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open persistent storage: %w", err)
	}
	return store, store.Close, nil
}

// Close releases the persistent store.
func (a *App) Close() error {
	if a.closeStore != nil {
		return a.closeStore()
	}
	return nil
}

// CurrentPath implements domain.Navigator.
func (a *App) CurrentPath() string {
	return a.currentPath
}

// Redirect implements domain.Navigator.
func (a *App) Redirect(path string) {
	a.log.Debugf("App: redirect %s -> %s", a.currentPath, path)
	a.currentPath = path
}

// navigate moves to a path through the guard. It returns false when the
// guard redirected elsewhere.
func (a *App) navigate(path string) bool {
	if !a.guard.Evaluate(path) {
		return false
	}
	a.currentPath = path
	return true
}

// handleUnauthorized is the 401 response hook: drop the persisted token,
// clear the session, and leave any protected screen. Safe to run for
// consecutive 401s.
func (a *App) handleUnauthorized() {
	if err := a.store.Remove(domain.AuthTokenKey); err != nil {
		a.log.Errorf("App: failed to remove persisted token: %v", err)
	}
	a.session.ClearAuth()
	if a.guard.RequiresAuth(a.currentPath) {
		a.Redirect(a.cfg.LandingRoute)
	}
}

type tokenSourceFunc func() string

func (f tokenSourceFunc) Token() string { return f() }
