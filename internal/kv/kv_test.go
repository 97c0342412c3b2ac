package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openBackends returns one store per backend, each rooted in its own temp dir.
func openBackends(t *testing.T) map[string]Store {
	t.Helper()

	stores := make(map[string]Store)
	for _, backend := range Backends() {
		s, err := Open(backend, t.TempDir())
		require.NoError(t, err, backend)
		t.Cleanup(func() { s.Close() })
		stores[backend] = s
	}
	return stores
}

func TestStore_GetMissing(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			v, ok, err := s.Get(ctx, "@tasks")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, v)
		})
	}
}

func TestStore_SetOverwritesInFull(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, "@tasks", []byte(`[{"id":"a","title":"long title","completed":false}]`)))
			require.NoError(t, s.Set(ctx, "@tasks", []byte(`[]`)))

			v, ok, err := s.Get(ctx, "@tasks")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "[]", string(v))
		})
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, "k", []byte("v")))
			require.NoError(t, s.Delete(ctx, "k"))
			require.NoError(t, s.Delete(ctx, "k"), "deleting an absent key")

			_, ok, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_EmptyKey(t *testing.T) {
	ctx := context.Background()
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, _, err := s.Get(ctx, "")
			assert.ErrorIs(t, err, ErrEmptyKey)
			assert.ErrorIs(t, s.Set(ctx, "", nil), ErrEmptyKey)
		})
	}
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()

	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, fs.Close())
	assert.ErrorIs(t, fs.Set(ctx, "k", []byte("v")), ErrClosed)

	ms := NewMemoryStore()
	require.NoError(t, ms.Close())
	_, _, err = ms.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)

	ss, err := OpenSQLite(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	require.NoError(t, ss.Close())
	assert.ErrorIs(t, ss.Set(ctx, "k", []byte("v")), ErrClosed)
}

func TestSQLiteStore_ClosedBeforeQuery(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Close())

	_, _, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Delete(ctx, "k"), ErrClosed)
	assert.ErrorIs(t, s.Set(ctx, "", []byte("v")), ErrClosed)
	assert.NoError(t, s.Close(), "second Close")
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("redis", t.TempDir())
	assert.Error(t, err)
	assert.False(t, IsBackend("redis"))
	assert.True(t, IsBackend(BackendSQLite))
}

func TestFileStore_PathEscapesKey(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "@tasks.json"), s.Path("@tasks"))
	assert.Equal(t, filepath.Join(dir, "a%2Fb.json"), s.Path("a/b"))
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Set(ctx, "@tasks", []byte("[]")))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "@tasks.json", entries[0].Name())
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tasks.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "@tasks", []byte(`[{"id":"x","title":"X","completed":true}]`)))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, "@tasks")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":"x","title":"X","completed":true}]`, string(v))
}

func TestFileStore_Watch(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, "@tasks", func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		require.NoError(t, s.Set(context.Background(), "@tasks", []byte("[]")))
		select {
		case <-changed:
			cancel()
			require.NoError(t, <-done)
			return
		case <-tick.C:
		case <-deadline:
			t.Fatal("no change notification received")
		}
	}
}
