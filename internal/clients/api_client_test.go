package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butrintmetaj7/shop-client/internal/domain"
	"github.com/butrintmetaj7/shop-client/internal/repository"
	"github.com/butrintmetaj7/shop-client/internal/stubserver"
)

type mutableTokens struct {
	mu    sync.Mutex
	value string
}

func (m *mutableTokens) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

func (m *mutableTokens) set(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = token
}

func newStubClient(t *testing.T) (*Client, *mutableTokens, *stubserver.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stub := stubserver.New(testLogger())
	server := httptest.NewServer(stub.Router())
	t.Cleanup(server.Close)

	tokens := &mutableTokens{}
	client := NewClient(server.URL, 5*time.Second, testLogger(),
		RequestID(),
		DefaultHeaders(),
		BearerAuth(tokens, repository.NewMemoryStore()),
	)
	return client, tokens, stub
}

func TestAuthClientAgainstStub(t *testing.T) {
	client, tokens, _ := newStubClient(t)
	authAPI := NewAuthHTTPClient(client, testLogger())
	ctx := context.Background()

	reg, err := authAPI.Register(ctx, domain.RegisterCredentials{
		Name:                 "Ada",
		Email:                "ada@example.com",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "ada@example.com", reg.User.Email)
	assert.Equal(t, "customer", reg.User.Role)

	// Duplicate registration surfaces the server message.
	_, err = authAPI.Register(ctx, domain.RegisterCredentials{
		Name: "Ada", Email: "ada@example.com", Password: "secret123", PasswordConfirmation: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, "The email has already been taken.", ErrorMessage(err, "Registration failed"))

	// Wrong password is a 401 with the server's message.
	_, err = authAPI.Login(ctx, domain.Credentials{Email: "ada@example.com", Password: "nope"})
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Invalid credentials", ErrorMessage(err, "Login failed"))

	login, err := authAPI.Login(ctx, domain.Credentials{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)
	tokens.set(login.Token)

	user, err := authAPI.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, login.User.ID, user.ID)

	require.NoError(t, authAPI.Logout(ctx))

	// The revoked token no longer authenticates.
	_, err = authAPI.CurrentUser(ctx)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}

func TestCurrentUserUnauthenticated(t *testing.T) {
	client, _, _ := newStubClient(t)
	authAPI := NewAuthHTTPClient(client, testLogger())

	_, err := authAPI.CurrentUser(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}

func TestProductClientAgainstStub(t *testing.T) {
	client, _, _ := newStubClient(t)
	productAPI := NewProductHTTPClient(client, testLogger())
	ctx := context.Background()

	page1, err := productAPI.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page1.CurrentPage)
	assert.Equal(t, 2, page1.LastPage)
	assert.Equal(t, 8, page1.Total)
	assert.Len(t, page1.Data, 6)

	page2, err := productAPI.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, page2.Data, 2)

	product, err := productAPI.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Wireless Mouse", product.Title)
	assert.InDelta(t, 24.99, product.Price, 1e-9)

	_, err = productAPI.Get(ctx, 999)
	require.Error(t, err)
	assert.Equal(t, "Product not found", ErrorMessage(err, "Failed to fetch product"))
}

func TestRevokedTokenTriggersUnauthorizedHook(t *testing.T) {
	gin.SetMode(gin.TestMode)
	stub := stubserver.New(testLogger())
	server := httptest.NewServer(stub.Router())
	defer server.Close()

	store := repository.NewMemoryStore()
	tokens := &mutableTokens{}
	hooked := false
	client := NewClient(server.URL, 5*time.Second, testLogger(),
		RequestID(),
		DefaultHeaders(),
		BearerAuth(tokens, store),
		Unauthorized(testLogger(), func() {
			hooked = true
			store.Remove(domain.AuthTokenKey)
			tokens.set("")
		}),
	)
	authAPI := NewAuthHTTPClient(client, testLogger())
	ctx := context.Background()

	reg, err := authAPI.Register(ctx, domain.RegisterCredentials{
		Name: "Eve", Email: "eve@example.com", Password: "secret123", PasswordConfirmation: "secret123",
	})
	require.NoError(t, err)
	tokens.set(reg.Token)
	require.NoError(t, store.Set(domain.AuthTokenKey, reg.Token))

	stub.RevokeToken(reg.Token)

	_, err = authAPI.CurrentUser(ctx)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.True(t, hooked)
	_, ok := store.Get(domain.AuthTokenKey)
	assert.False(t, ok)

	// The next 401 must not panic or misbehave with the session already clear.
	_, err = authAPI.CurrentUser(ctx)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, err.(*APIError).StatusCode)
}
