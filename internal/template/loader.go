package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/invoice-analyst/constants"
	"github.com/joseph-ayodele/invoice-analyst/internal/common"
)

// Format is a template file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ValidationError names the template field that is missing or invalid.
type ValidationError struct {
	Source string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("template %s: field '%s' %s", e.Source, e.Field, e.Reason)
	}
	return fmt.Sprintf("template: field '%s' %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return common.ErrTemplateValidation
}

// templateFile is the on-disk shape. Pointers distinguish absent keys from zero values.
type templateFile struct {
	Supplier    string     `json:"supplier" validate:"required"`
	Identifiers []string   `json:"identifiers" validate:"required,dive,required"`
	Table       *tableFile `json:"table" validate:"required"`
}

type tableFile struct {
	StartAnchor             *string       `json:"start_anchor" validate:"required"`
	HeaderRows              *int          `json:"header_rows" validate:"required,min=1"`
	Header                  []string      `json:"header" validate:"required,min=1"`
	EndAnchor               string        `json:"end_anchor"`
	FooterKeywords          []string      `json:"footer_keywords"`
	SummaryPatterns         []string      `json:"summary_patterns"`
	DetailPatterns          []string      `json:"detail_patterns"`
	SkipChars               []string      `json:"skip_chars"`
	UseDataDrivenBoundaries bool          `json:"use_data_driven_boundaries"`
	MinAlignedBlocks        *int          `json:"min_aligned_blocks" validate:"omitempty,min=1"`
	AlignmentThreshold      *float64      `json:"alignment_threshold" validate:"omitempty,min=0,max=1"`
	ColumnCharOffsets       []int         `json:"column_char_offsets" validate:"omitempty,min=1,dive,min=0"`
	ColumnOffsetVariants    []variantFile `json:"column_offset_variants" validate:"omitempty,dive"`
	ExcludedColumns         []string      `json:"excluded_columns"`
	RescuePolicy            string        `json:"rescue_policy" validate:"omitempty,oneof=first_empty none"`
}

type variantFile struct {
	Offsets       []int  `json:"offsets" validate:"required,min=1,dive,min=0"`
	DetectPattern string `json:"detect_pattern" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FormatForPath infers the template format from the file extension.
func FormatForPath(path string) (Format, bool) {
	f, ok := constants.TemplateExtensions[constants.NormalizeExt(filepath.Ext(path))]
	return Format(f), ok
}

// Load reads and validates the template at path.
func Load(path string) (*Template, error) {
	format, ok := FormatForPath(path)
	if !ok {
		return nil, &ValidationError{Source: path, Field: "<file>", Reason: "has an unsupported extension"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.NewAppError("TEMPLATE_NOT_FOUND", path, common.ErrNotFound)
		}
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return Parse(data, format, path)
}

// Parse decodes a template document. Unknown keys are ignored.
func Parse(data []byte, format Format, source string) (*Template, error) {
	doc := map[string]any{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, &ValidationError{Source: source, Field: "<file>", Reason: fmt.Sprintf("has unknown format %q", format)}
	}
	if err != nil {
		return nil, &ValidationError{Source: source, Field: "<document>", Reason: "cannot be parsed: " + err.Error()}
	}

	// Both syntaxes decode to generic maps; JSON gives one typed decode with field paths in its errors.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, &ValidationError{Source: source, Field: "<document>", Reason: "has unsupported structure: " + err.Error()}
	}
	var file templateFile
	if err := json.Unmarshal(normalized, &file); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ValidationError{Source: source, Field: typeErr.Field, Reason: "must be of type " + typeErr.Type.String()}
		}
		return nil, &ValidationError{Source: source, Field: "<document>", Reason: err.Error()}
	}

	if err := validate.Struct(&file); err != nil {
		return nil, translate(source, err)
	}
	tpl := file.toTemplate(source)
	if err := checkPatterns(tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func translate(source string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Source: source, Field: "<document>", Reason: err.Error()}
	}
	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	var reason string
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "min":
		reason = "must be at least " + fe.Param()
	case "max":
		reason = "must be at most " + fe.Param()
	case "oneof":
		reason = "must be one of: " + fe.Param()
	default:
		reason = "failed rule " + fe.Tag()
	}
	return &ValidationError{Source: source, Field: field, Reason: reason}
}

func (f *templateFile) toTemplate(source string) *Template {
	t := f.Table
	cfg := TableConfig{
		StartAnchor:             *t.StartAnchor,
		HeaderRows:              *t.HeaderRows,
		Header:                  slices.Clone(t.Header),
		EndAnchor:               t.EndAnchor,
		FooterKeywords:          t.FooterKeywords,
		SummaryPatterns:         t.SummaryPatterns,
		DetailPatterns:          t.DetailPatterns,
		SkipChars:               t.SkipChars,
		UseDataDrivenBoundaries: t.UseDataDrivenBoundaries,
		MinAlignedBlocks:        DefaultMinAlignedBlocks,
		AlignmentThreshold:      DefaultAlignmentThreshold,
		ColumnCharOffsets:       t.ColumnCharOffsets,
		ExcludedColumns:         t.ExcludedColumns,
		RescuePolicy:            RescuePolicy(t.RescuePolicy),
	}
	if t.MinAlignedBlocks != nil {
		cfg.MinAlignedBlocks = *t.MinAlignedBlocks
	}
	if t.AlignmentThreshold != nil {
		cfg.AlignmentThreshold = *t.AlignmentThreshold
	}
	for _, v := range t.ColumnOffsetVariants {
		cfg.ColumnOffsetVariants = append(cfg.ColumnOffsetVariants, ColumnVariant{Offsets: v.Offsets, DetectPattern: v.DetectPattern})
	}
	return &Template{
		Supplier:    f.Supplier,
		Identifiers: f.Identifiers,
		Table:       cfg,
		Source:      source,
	}
}

// checkPatterns compiles every pattern and checks variant offset cardinality.
func checkPatterns(t *Template) error {
	for i, id := range t.Identifiers {
		if _, err := SearchFold(id); err != nil {
			return &ValidationError{Source: t.Source, Field: fmt.Sprintf("identifiers[%d]", i), Reason: "is not a valid pattern: " + err.Error()}
		}
	}
	if _, err := SearchFold(t.Table.StartAnchor); err != nil {
		return &ValidationError{Source: t.Source, Field: "table.start_anchor", Reason: "is not a valid pattern: " + err.Error()}
	}
	if t.Table.EndAnchor != "" {
		if _, err := SearchFold(t.Table.EndAnchor); err != nil {
			return &ValidationError{Source: t.Source, Field: "table.end_anchor", Reason: "is not a valid pattern: " + err.Error()}
		}
	}
	defaults := len(t.Table.ColumnCharOffsets)
	for i, v := range t.Table.ColumnOffsetVariants {
		field := fmt.Sprintf("table.column_offset_variants[%d]", i)
		if _, err := MatchPrefix(v.DetectPattern); err != nil {
			return &ValidationError{Source: t.Source, Field: field + ".detect_pattern", Reason: "is not a valid pattern: " + err.Error()}
		}
		if defaults == 0 {
			return &ValidationError{Source: t.Source, Field: field, Reason: "requires table.column_char_offsets"}
		}
		if n := len(v.Offsets); n != defaults && n != defaults-1 {
			return &ValidationError{Source: t.Source, Field: field + ".offsets", Reason: fmt.Sprintf("must have %d or %d entries", defaults-1, defaults)}
		}
	}
	return nil
}

// Discover lists the template files directly inside dir, sorted by name.
func Discover(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, common.TemplatesDirNotFoundError(dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read templates dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := FormatForPath(e.Name()); ok {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(out)
	return out, nil
}
