package template

// RescuePolicy controls where numbers embedded in the designation cell are moved.
type RescuePolicy string

const (
	// RescueFirstEmpty moves rescued numbers into the first empty cells right of the designation.
	RescueFirstEmpty RescuePolicy = "first_empty"
	// RescueNone leaves the designation cell untouched.
	RescueNone RescuePolicy = "none"
)

// Defaults applied when the optional keys are absent.
const (
	DefaultMinAlignedBlocks   = 2
	DefaultAlignmentThreshold = 0.3
)

// ColumnVariant is an alternate character-offset layout for single-string rows,
// chosen when the row's leading word matches DetectPattern.
type ColumnVariant struct {
	Offsets       []int  `json:"offsets"`
	DetectPattern string `json:"detect_pattern"`
}

// TableConfig describes how a supplier's article table is located and sliced.
type TableConfig struct {
	StartAnchor             string          `json:"start_anchor"`
	HeaderRows              int             `json:"header_rows"`
	Header                  []string        `json:"header"`
	EndAnchor               string          `json:"end_anchor,omitempty"`
	FooterKeywords          []string        `json:"footer_keywords,omitempty"`
	SummaryPatterns         []string        `json:"summary_patterns,omitempty"`
	DetailPatterns          []string        `json:"detail_patterns,omitempty"`
	SkipChars               []string        `json:"skip_chars,omitempty"`
	UseDataDrivenBoundaries bool            `json:"use_data_driven_boundaries"`
	MinAlignedBlocks        int             `json:"min_aligned_blocks"`
	AlignmentThreshold      float64         `json:"alignment_threshold"`
	ColumnCharOffsets       []int           `json:"column_char_offsets,omitempty"`
	ColumnOffsetVariants    []ColumnVariant `json:"column_offset_variants,omitempty"`
	ExcludedColumns         []string        `json:"excluded_columns,omitempty"`
	RescuePolicy            RescuePolicy    `json:"rescue_policy,omitempty"`
}

// Template is one supplier's declarative extraction configuration.
// Templates are shared read-only once loaded.
type Template struct {
	Supplier    string      `json:"supplier"`
	Identifiers []string    `json:"identifiers"`
	Table       TableConfig `json:"table"`
	// Source is the file the template was loaded from, if any.
	Source string `json:"-"`
}

// Rescue returns the effective numeric rescue policy.
func (c TableConfig) Rescue() RescuePolicy {
	if c.RescuePolicy == "" {
		return RescueFirstEmpty
	}
	return c.RescuePolicy
}

// IsExcluded reports whether header is listed in ExcludedColumns.
func (c TableConfig) IsExcluded(header string) bool {
	for _, h := range c.ExcludedColumns {
		if h == header {
			return true
		}
	}
	return false
}
