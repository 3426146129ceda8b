package template

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippedTemplatesLoad(t *testing.T) {
	paths, err := Discover(filepath.Join("..", "..", "templates"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	suppliers := map[string]*Template{}
	for _, p := range paths {
		tpl, err := Load(p)
		require.NoError(t, err, p)
		suppliers[tpl.Supplier] = tpl
	}
	require.Contains(t, suppliers, "Metro")
	metro := suppliers["Metro"]
	assert.Equal(t, 2, metro.Table.HeaderRows)
	assert.True(t, metro.Table.IsExcluded("EAN"))
	assert.Equal(t, RescueFirstEmpty, metro.Table.Rescue())
	require.Len(t, metro.Table.ColumnOffsetVariants, 1)

	require.Contains(t, suppliers, "Lefort Distribution")
	assert.True(t, suppliers["Lefort Distribution"].Table.UseDataDrivenBoundaries)
}
