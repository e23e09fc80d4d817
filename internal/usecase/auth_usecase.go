package usecase

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/butrintmetaj7/shop-client/internal/clients"
	"github.com/butrintmetaj7/shop-client/internal/domain"
)

const (
	loginFailedMessage    = "Login failed"
	registerFailedMessage = "Registration failed"
)

// DefaultHeaderWriter is the slice of the HTTP client the session writes its
// authorization state through.
type DefaultHeaderWriter interface {
	SetDefaultHeader(key, value string)
	RemoveDefaultHeader(key string)
}

// AuthUseCase owns the client's belief about the currently authenticated
// identity and its credential. The token is persisted independently of the
// user record, so the two can transiently disagree during startup; the route
// guard's persisted-token fallback exists for exactly that window.
type AuthUseCase struct {
	api     clients.AuthAPI
	store   domain.KVStore
	headers DefaultHeaderWriter
	log     *logrus.Logger

	mu      sync.RWMutex
	user    *domain.User
	token   string
	loading bool
	errMsg  string

	subMu sync.Mutex
	subs  []func(userID int)
}

func NewAuthUseCase(api clients.AuthAPI, store domain.KVStore, headers DefaultHeaderWriter, logger *logrus.Logger) *AuthUseCase {
	return &AuthUseCase{
		api:     api,
		store:   store,
		headers: headers,
		log:     logger,
	}
}

// OnUserChange registers a callback invoked whenever the active user identity
// changes (login, logout, restored session). userID is 0 when unauthenticated.
func (uc *AuthUseCase) OnUserChange(fn func(userID int)) {
	uc.subMu.Lock()
	defer uc.subMu.Unlock()
	uc.subs = append(uc.subs, fn)
}

func (uc *AuthUseCase) notifyUserChange() {
	userID := 0
	uc.mu.RLock()
	if uc.user != nil {
		userID = uc.user.ID
	}
	uc.mu.RUnlock()

	uc.subMu.Lock()
	subs := make([]func(int), len(uc.subs))
	copy(subs, uc.subs)
	uc.subMu.Unlock()

	for _, fn := range subs {
		fn(userID)
	}
}

// SetAuth stores the identity and credential in memory, persists the token
// and sets the client's default Authorization header. The token is not
// validated: an empty string is accepted and produces the header value
// "Bearer " exactly as the stored value round-trips to "".
func (uc *AuthUseCase) SetAuth(user *domain.User, token string) {
	uc.mu.Lock()
	uc.user = user
	uc.token = token
	uc.mu.Unlock()

	if err := uc.store.Set(domain.AuthTokenKey, token); err != nil {
		uc.log.Errorf("AuthUseCase: failed to persist token: %v", err)
	}
	uc.headers.SetDefaultHeader("Authorization", "Bearer "+token)
	uc.notifyUserChange()
}

// ClearAuth drops the session locally. It is idempotent; clearing an already
// cleared session changes nothing.
func (uc *AuthUseCase) ClearAuth() {
	uc.mu.Lock()
	uc.user = nil
	uc.token = ""
	uc.errMsg = ""
	uc.mu.Unlock()

	if err := uc.store.Remove(domain.AuthTokenKey); err != nil {
		uc.log.Errorf("AuthUseCase: failed to remove persisted token: %v", err)
	}
	uc.headers.RemoveDefaultHeader("Authorization")
	uc.notifyUserChange()
}

// Login authenticates against the API and installs the returned session.
// Failures set the session error message and are returned to the caller.
func (uc *AuthUseCase) Login(ctx context.Context, creds domain.Credentials) error {
	uc.setLoading(true)
	uc.setError("")
	defer uc.setLoading(false)

	resp, err := uc.api.Login(ctx, creds)
	if err != nil {
		uc.setError(clients.ErrorMessage(err, loginFailedMessage))
		uc.log.Warnf("AuthUseCase: login failed for %s: %v", creds.Email, err)
		return err
	}

	uc.log.Infof("AuthUseCase: logged in as %s (user %d)", resp.User.Email, resp.User.ID)
	uc.SetAuth(&resp.User, resp.Token)
	return nil
}

// Register creates an account and installs the returned session.
func (uc *AuthUseCase) Register(ctx context.Context, creds domain.RegisterCredentials) error {
	uc.setLoading(true)
	uc.setError("")
	defer uc.setLoading(false)

	resp, err := uc.api.Register(ctx, creds)
	if err != nil {
		uc.setError(clients.ErrorMessage(err, registerFailedMessage))
		uc.log.Warnf("AuthUseCase: registration failed for %s: %v", creds.Email, err)
		return err
	}

	uc.log.Infof("AuthUseCase: registered %s (user %d)", resp.User.Email, resp.User.ID)
	uc.SetAuth(&resp.User, resp.Token)
	return nil
}

// Logout always succeeds locally. The remote call is best-effort: a failure
// is logged and swallowed, and the local session is cleared regardless.
func (uc *AuthUseCase) Logout(ctx context.Context) {
	if err := uc.api.Logout(ctx); err != nil {
		uc.log.Warnf("AuthUseCase: remote logout failed: %v", err)
	}
	uc.ClearAuth()
}

// FetchUser refreshes the identity record from the API. On failure the whole
// session is cleared and the error is returned.
func (uc *AuthUseCase) FetchUser(ctx context.Context) error {
	user, err := uc.api.CurrentUser(ctx)
	if err != nil {
		uc.ClearAuth()
		return err
	}

	uc.mu.Lock()
	uc.user = user
	uc.mu.Unlock()
	uc.notifyUserChange()
	return nil
}

// InitializeAuth restores a persisted session at startup. The stored token is
// installed speculatively and then validated with FetchUser; a token the
// server no longer accepts rolls the whole session back. Restoration is
// all-or-nothing.
func (uc *AuthUseCase) InitializeAuth(ctx context.Context) error {
	token, ok := uc.store.Get(domain.AuthTokenKey)
	if !ok || token == "" {
		return nil
	}

	uc.mu.Lock()
	uc.token = token
	uc.mu.Unlock()
	uc.headers.SetDefaultHeader("Authorization", "Bearer "+token)

	if err := uc.FetchUser(ctx); err != nil {
		uc.log.Warnf("AuthUseCase: stored token rejected, session rolled back: %v", err)
		return err
	}

	uc.log.Info("AuthUseCase: session restored from storage")
	return nil
}

// Token returns the in-memory credential. Implements clients.TokenSource.
func (uc *AuthUseCase) Token() string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.token
}

// User returns the current identity record, or nil when unauthenticated.
func (uc *AuthUseCase) User() *domain.User {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	if uc.user == nil {
		return nil
	}
	user := *uc.user
	return &user
}

// IsAuthenticated is true iff both a user and a non-empty token are held.
func (uc *AuthUseCase) IsAuthenticated() bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.user != nil && uc.token != ""
}

// Loading reports whether an auth request is in flight. Advisory only; it
// does not block re-entrant calls.
func (uc *AuthUseCase) Loading() bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.loading
}

// Err returns the human-readable message of the last failed auth request.
func (uc *AuthUseCase) Err() string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.errMsg
}

func (uc *AuthUseCase) setLoading(loading bool) {
	uc.mu.Lock()
	uc.loading = loading
	uc.mu.Unlock()
}

func (uc *AuthUseCase) setError(msg string) {
	uc.mu.Lock()
	uc.errMsg = msg
	uc.mu.Unlock()
}
