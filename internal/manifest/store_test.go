package manifest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "state", "manifest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStore_ReplaceListClear(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			paths, err := s.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, paths)

			require.NoError(t, s.Replace(ctx, []string{"/b/x.md", "/a/y.md", "/b/x.md", "/a/./z.md", ""}))
			paths, err = s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"/a/y.md", "/a/z.md", "/b/x.md"}, paths)

			require.NoError(t, s.Replace(ctx, []string{"/c.md"}))
			paths, err = s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"/c.md"}, paths)

			require.NoError(t, s.Clear(ctx))
			paths, err = s.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, paths)
		})
	}
}

func TestStore_AddRemove(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, Add(ctx, s, "/a.md"))
			require.NoError(t, Add(ctx, s, "/b.md", "/a.md"))
			require.NoError(t, Add(ctx, s))

			paths, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"/a.md", "/b.md"}, paths)

			require.NoError(t, Remove(ctx, s, "/a.md", "/missing.md"))
			paths, err = s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"/b.md"}, paths)
		})
	}
}

func TestSQLiteStore_Persists(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "manifest.db")

	s, err := OpenSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Replace(ctx, []string{"/x/AGENTS.md"}))
	require.NoError(t, s.Close())

	_, err = s.List(ctx)
	assert.ErrorIs(t, err, ErrStoreClosed)

	s, err = OpenSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	paths, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/x/AGENTS.md"}, paths)
}
