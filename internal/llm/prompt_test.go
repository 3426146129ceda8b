package llm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	req := StructureRequest{
		InfoMarkdown:    "# Page 1",
		TableMarkdown:   "| A |",
		KnownBrands:     []string{"Danone", "Coca-Cola"},
		KnownCategories: nil,
	}
	got := BuildPrompt("{info_markdown}/{table_markdown}/{known_brands}/{known_categories} {{literal}}", req)
	assert.Equal(t, "# Page 1/| A |/Danone, Coca-Cola/None {literal}", got)
}

func TestBuildPrompt_Default(t *testing.T) {
	got := BuildPrompt(DefaultPrompt, StructureRequest{InfoMarkdown: "INFO", TableMarkdown: "TABLE"})
	assert.Contains(t, got, "INFO")
	assert.Contains(t, got, "TABLE")
	assert.Contains(t, got, "known brands: None")
	assert.Contains(t, got, `"Information fournisseur": {"nom": ..., "adresse": ...}`)
	assert.NotContains(t, got, "{info_markdown}")
	assert.NotContains(t, got, "{{")
}

func TestLoadPrompt(t *testing.T) {
	got, err := LoadPrompt("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPrompt, got)

	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("custom {info_markdown}"), 0o644))
	got, err = LoadPrompt(path)
	require.NoError(t, err)
	assert.Equal(t, "custom {info_markdown}", got)

	_, err = LoadPrompt(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
