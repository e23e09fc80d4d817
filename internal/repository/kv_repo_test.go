package repository

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.Get("missing")
	assert.False(t, ok)

	require.NoError(t, store.Set("auth_token", "tok"))
	value, ok := store.Get("auth_token")
	require.True(t, ok)
	assert.Equal(t, "tok", value)

	// Empty values are stored, not treated as absent.
	require.NoError(t, store.Set("auth_token", ""))
	value, ok = store.Get("auth_token")
	require.True(t, ok)
	assert.Empty(t, value)

	require.NoError(t, store.Remove("auth_token"))
	_, ok = store.Get("auth_token")
	assert.False(t, ok)

	// Removing an absent key is a no-op.
	require.NoError(t, store.Remove("auth_token"))
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := NewSQLiteStore(path, testLogger())
	require.NoError(t, err)

	require.NoError(t, store.Set("shopping_cart_7", `{"1":{"productId":1,"quantity":2}}`))
	require.NoError(t, store.Set("auth_token", "tok"))
	require.NoError(t, store.Set("auth_token", "tok-2")) // upsert

	value, ok := store.Get("auth_token")
	require.True(t, ok)
	assert.Equal(t, "tok-2", value)

	require.NoError(t, store.Remove("auth_token"))
	_, ok = store.Get("auth_token")
	assert.False(t, ok)

	require.NoError(t, store.Close())

	// State survives reopening the database.
	reopened, err := NewSQLiteStore(path, testLogger())
	require.NoError(t, err)
	defer reopened.Close()

	value, ok = reopened.Get("shopping_cart_7")
	require.True(t, ok)
	assert.JSONEq(t, `{"1":{"productId":1,"quantity":2}}`, value)
}
