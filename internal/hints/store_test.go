package hints

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-analyst/internal/common"
)

func seed(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	for _, b := range []string{"Danone", "Coca-Cola", " Danone "} {
		require.NoError(t, s.AddBrand(ctx, b))
	}
	for _, c := range []string{"Visserie", "Boissons"} {
		require.NoError(t, s.AddCategory(ctx, c))
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:", nil)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Ping(ctx))
	seed(t, s)

	h, err := Load(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"Coca-Cola", "Danone"}, h.Brands)
	assert.Equal(t, []string{"Boissons", "Visserie"}, h.Categories)

	err = s.AddBrand(ctx, "   ")
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))
}

func TestSQLiteStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hints.db")

	s, err := OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	seed(t, s)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	brands, err := s.Brands(ctx)
	require.NoError(t, err)
	assert.Len(t, brands, 2)
}

func TestStatic(t *testing.T) {
	s := &Static{}
	seed(t, s)
	h, err := Load(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{"Coca-Cola", "Danone"}, h.Brands)
	assert.Equal(t, []string{"Boissons", "Visserie"}, h.Categories)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, common.HintsConfig{Driver: "none"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Static{}, s)

	s, err = Open(ctx, common.HintsConfig{Driver: "sqlite", DSN: ":memory:"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, common.HintsConfig{Driver: "mongo"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	_, err = Open(ctx, common.HintsConfig{Driver: "postgres", DSN: "::not a dsn::"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDatabase))
}
