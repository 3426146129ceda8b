package template

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-analyst/internal/common"
)

const validYAML = `
supplier: Lefort
identifiers:
  - "LEFORT DISTRIBUTION"
  - "SIRET\\s+\\d+"
ignored_top_level: true
table:
  start_anchor: "DESIGNATION"
  header_rows: 1
  header: ["Ref", "Désignation", "Qté", "Prix", "Total"]
  footer_keywords: ["Total général"]
  summary_patterns: ["Sous-total"]
  skip_chars: ["|"]
  use_data_driven_boundaries: true
  excluded_columns: ["Prix"]
  unknown_option: 12
`

const validTOML = `
supplier = "Metro"
identifiers = ["METRO Cash"]

[table]
start_anchor = "ARTICLE"
header_rows = 2
header = ["Code", "EAN", "Désignation", "Prix", "Total"]
min_aligned_blocks = 1
alignment_threshold = 0.5
column_char_offsets = [0, 8, 22, 60, 72]
rescue_policy = "none"

[[table.column_offset_variants]]
offsets = [0, 14, 52, 64]
detect_pattern = '^\d{13}$'
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "lefort.yaml", validYAML)

	tpl, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Lefort", tpl.Supplier)
	assert.Equal(t, []string{"LEFORT DISTRIBUTION", `SIRET\s+\d+`}, tpl.Identifiers)
	assert.Equal(t, path, tpl.Source)

	cfg := tpl.Table
	assert.Equal(t, "DESIGNATION", cfg.StartAnchor)
	assert.Equal(t, 1, cfg.HeaderRows)
	assert.Len(t, cfg.Header, 5)
	assert.Equal(t, []string{"Total général"}, cfg.FooterKeywords)
	assert.True(t, cfg.UseDataDrivenBoundaries)
	assert.Equal(t, DefaultMinAlignedBlocks, cfg.MinAlignedBlocks)
	assert.InDelta(t, DefaultAlignmentThreshold, cfg.AlignmentThreshold, 1e-9)
	assert.Equal(t, RescueFirstEmpty, cfg.Rescue())
	assert.True(t, cfg.IsExcluded("Prix"))
	assert.False(t, cfg.IsExcluded("Total"))
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "metro.toml", validTOML)

	tpl, err := Load(path)
	require.NoError(t, err)

	cfg := tpl.Table
	assert.Equal(t, 2, cfg.HeaderRows)
	assert.Equal(t, 1, cfg.MinAlignedBlocks)
	assert.InDelta(t, 0.5, cfg.AlignmentThreshold, 1e-9)
	assert.Equal(t, []int{0, 8, 22, 60, 72}, cfg.ColumnCharOffsets)
	require.Len(t, cfg.ColumnOffsetVariants, 1)
	assert.Equal(t, []int{0, 14, 52, 64}, cfg.ColumnOffsetVariants[0].Offsets)
	assert.Equal(t, `^\d{13}$`, cfg.ColumnOffsetVariants[0].DetectPattern)
	assert.Equal(t, RescueNone, cfg.Rescue())
}

func TestParse_FieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{
			name:  "missing supplier",
			body:  "identifiers: [a]\ntable: {start_anchor: x, header_rows: 1, header: [a]}",
			field: "supplier",
		},
		{
			name:  "missing identifiers",
			body:  "supplier: s\ntable: {start_anchor: x, header_rows: 1, header: [a]}",
			field: "identifiers",
		},
		{
			name:  "missing table",
			body:  "supplier: s\nidentifiers: [a]",
			field: "table",
		},
		{
			name:  "missing start anchor",
			body:  "supplier: s\nidentifiers: [a]\ntable: {header_rows: 1, header: [a]}",
			field: "table.start_anchor",
		},
		{
			name:  "missing header rows",
			body:  "supplier: s\nidentifiers: [a]\ntable: {start_anchor: x, header: [a]}",
			field: "table.header_rows",
		},
		{
			name:  "zero header rows",
			body:  "supplier: s\nidentifiers: [a]\ntable: {start_anchor: x, header_rows: 0, header: [a]}",
			field: "table.header_rows",
		},
		{
			name:  "header rows of wrong type",
			body:  "supplier: s\nidentifiers: [a]\ntable: {start_anchor: x, header_rows: many, header: [a]}",
			field: "table.header_rows",
		},
		{
			name:  "empty header",
			body:  "supplier: s\nidentifiers: [a]\ntable: {start_anchor: x, header_rows: 1, header: []}",
			field: "table.header",
		},
		{
			name:  "threshold out of range",
			body:  "supplier: s\nidentifiers: [a]\ntable: {start_anchor: x, header_rows: 1, header: [a], alignment_threshold: 1.5}",
			field: "table.alignment_threshold",
		},
		{
			name:  "bad identifier pattern",
			body:  "supplier: s\nidentifiers: [ok, '(unclosed']\ntable: {start_anchor: x, header_rows: 1, header: [a]}",
			field: "identifiers[1]",
		},
		{
			name:  "variant without default offsets",
			body:  "supplier: s\nidentifiers: [a]\ntable: {start_anchor: x, header_rows: 1, header: [a], column_offset_variants: [{offsets: [0, 4], detect_pattern: x}]}",
			field: "table.column_offset_variants[0]",
		},
		{
			name:  "variant offsets of incompatible length",
			body:  "supplier: s\nidentifiers: [a]\ntable: {start_anchor: x, header_rows: 1, header: [a], column_char_offsets: [0, 4, 8, 12], column_offset_variants: [{offsets: [0, 4], detect_pattern: x}]}",
			field: "table.column_offset_variants[0].offsets",
		},
		{
			name:  "unknown rescue policy",
			body:  "supplier: s\nidentifiers: [a]\ntable: {start_anchor: x, header_rows: 1, header: [a], rescue_policy: last}",
			field: "table.rescue_policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body), FormatYAML, "t.yaml")
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrTemplateValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("supplier: [unterminated"), FormatYAML, "bad.yaml")
	assert.ErrorIs(t, err, common.ErrTemplateValidation)

	_, err = Parse([]byte("supplier = "), FormatTOML, "bad.toml")
	assert.ErrorIs(t, err, common.ErrTemplateValidation)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", validYAML)
	writeFile(t, dir, "a.toml", validTOML)
	writeFile(t, dir, "c.yml", validYAML)
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o755))

	paths, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.toml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "c.yml"),
	}, paths)

	_, err = Discover(filepath.Join(dir, "absent"))
	assert.ErrorIs(t, err, common.ErrTemplatesDirNotFound)
}
