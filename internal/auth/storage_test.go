package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeImplementations(t *testing.T) map[string]TokenStore {
	t.Helper()

	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "credentials.toml"))
	require.NoError(t, err)

	return map[string]TokenStore{
		"memory":  NewMemoryStore(),
		"file":    fileStore,
		"keyring": NewKeyringStoreWith(keyring.NewArrayKeyring(nil)),
	}
}

func TestTokenStore_Contract(t *testing.T) {
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			v, err := store.Get(KeyAccessToken)
			require.NoError(t, err)
			assert.Empty(t, v)

			require.NoError(t, store.Set(map[string]string{KeyAccessToken: "a", KeyTokenType: "Bearer"}))
			require.NoError(t, store.Set(map[string]string{KeyRefreshToken: "r"}))

			v, err = store.Get(KeyAccessToken)
			require.NoError(t, err)
			assert.Equal(t, "a", v)
			v, err = store.Get(KeyRefreshToken)
			require.NoError(t, err)
			assert.Equal(t, "r", v)

			require.NoError(t, store.Clear())
			v, err = store.Get(KeyAccessToken)
			require.NoError(t, err)
			assert.Empty(t, v)

			// Clearing an empty store is not an error
			assert.NoError(t, store.Clear())
		})
	}
}

func TestSaveAndLoadToken(t *testing.T) {
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			token := freshToken(time.Now().Truncate(time.Second))
			token.IsViewOnly = true

			require.NoError(t, SaveToken(store, token))
			loaded, err := LoadToken(store)
			require.NoError(t, err)
			require.NotNil(t, loaded)

			assert.Equal(t, token.AccessToken, loaded.AccessToken)
			assert.Equal(t, token.RefreshToken, loaded.RefreshToken)
			assert.Equal(t, token.ExpiresIn, loaded.ExpiresIn)
			assert.True(t, token.ExpiresOn.Equal(loaded.ExpiresOn))
			assert.Equal(t, TokenTypeBearer, loaded.TokenType)
			assert.True(t, loaded.IsViewOnly)
		})
	}

	t.Run("empty store yields nil", func(t *testing.T) {
		loaded, err := LoadToken(NewMemoryStore())
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})
}

func TestHasGrant(t *testing.T) {
	store := NewMemoryStore()
	assert.False(t, HasGrant(store))

	require.NoError(t, SaveGrant(store, "4/code"))
	assert.True(t, HasGrant(store))

	require.NoError(t, store.Clear())
	assert.False(t, HasGrant(store))
}

func TestFileStore(t *testing.T) {
	t.Run("persists with owner-only permissions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "credentials.toml")
		store, err := NewFileStore(path)
		require.NoError(t, err)

		require.NoError(t, store.Set(map[string]string{KeyAccessToken: "a"}))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

		reopened, err := NewFileStore(path)
		require.NoError(t, err)
		v, _ := reopened.Get(KeyAccessToken)
		assert.Equal(t, "a", v)
	})

	t.Run("clear removes the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credentials.toml")
		store, err := NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, store.Set(map[string]string{KeyAccessToken: "a"}))

		require.NoError(t, store.Clear())

		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("rejects corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credentials.toml")
		require.NoError(t, os.WriteFile(path, []byte("access_token = "), 0600))

		_, err := NewFileStore(path)
		assert.Error(t, err)
	})

	t.Run("watch reloads external changes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credentials.toml")
		store, err := NewFileStore(path)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changed := make(chan struct{}, 8)
		done := make(chan error, 1)
		go func() {
			done <- store.Watch(ctx, func() { changed <- struct{}{} })
		}()

		other, err := NewFileStore(path)
		require.NoError(t, err)
		waitForWatch(t, other, changed)

		v, err := store.Get(KeyAccessToken)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(v, "from-other-process"))

		cancel()
		assert.NoError(t, <-done)
	})

	t.Run("watch ignores the store's own writes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credentials.toml")
		store, err := NewFileStore(path)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changed := make(chan struct{}, 8)
		go store.Watch(ctx, func() { changed <- struct{}{} })

		other, err := NewFileStore(path)
		require.NoError(t, err)
		waitForWatch(t, other, changed)

		// Let trailing events from the other store settle
		time.Sleep(200 * time.Millisecond)
		for len(changed) > 0 {
			<-changed
		}

		require.NoError(t, store.Set(map[string]string{KeyAccessToken: "mine"}))
		require.NoError(t, store.Clear())

		select {
		case <-changed:
			t.Fatal("own write was reported as a change")
		case <-time.After(300 * time.Millisecond):
		}
	})
}

// waitForWatch writes through other until the watcher reports a change.
// The watcher may not be registered yet, so each write carries a new value.
func waitForWatch(t *testing.T, other *FileStore, changed <-chan struct{}) {
	t.Helper()

	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-changed:
			return
		case <-ticker.C:
			value := fmt.Sprintf("from-other-process-%d", i)
			require.NoError(t, other.Set(map[string]string{KeyAccessToken: value}))
		case <-deadline:
			t.Fatal("watcher did not report the change")
		}
	}
}
