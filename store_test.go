package flagship

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore checks the Store contract.
func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "k", []byte(`{"a":1}`)))
	require.NoError(t, store.Put(ctx, "k", []byte(`{"a":2}`)))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(got))
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	testStore(t, FileStore{Dir: dir})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temporary file is left behind")
	assert.Equal(t, "k.json", entries[0].Name())
}

func TestMemStore(t *testing.T) {
	testStore(t, &MemStore{})
}

func TestSchemaFiles(t *testing.T) {
	src, err := iofs.New(schemaFiles, "migrations")
	require.NoError(t, err)
	defer src.Close()
	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
	_, err = src.Next(first)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("FLAGSHIP_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("FLAGSHIP_TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()
	store, err := OpenPostgres(ctx, url)
	require.NoError(t, err)
	defer store.Close()
	_, err = store.db.ExecContext(ctx, `DELETE FROM flagship_snapshots WHERE key IN ('k', 'missing')`)
	require.NoError(t, err)

	testStore(t, store)
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	store := FileStore{Dir: t.TempDir()}
	st := mustApply(t, NewState(), newIPhone("a", 300), SetPreferences{Language: English, Theme: Light})

	require.NoError(t, Save(ctx, store, st))
	got, err := Load(ctx, store)
	require.NoError(t, err)

	assert.Equal(t, st.Devices[0].ID, got.Devices[0].ID)
	assert.Equal(t, English, got.Language)
	assert.Equal(t, Light, got.Theme)
}
