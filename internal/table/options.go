// Package table finds article tables in positioned text: anchors, columns,
// headers, rows and cells, then merges per-page instances into one table.
package table

// Geometry tolerances, in page units.
const (
	RowClusterTolerance = 3.0
	HeaderYTolerance    = 5.0
	ColumnTolerance     = 10.0
	TextHeaderTolerance = 5.0
	NarrowColumnGap     = 60.0

	DefaultMaxMisaligned   = 10
	DefaultHeaderThreshold = 0.7
	DefaultRowHeight       = 15.0
)

// Options carries the tunables that templates do not set.
type Options struct {
	ClusterTolerance float64
	ColumnTolerance  float64
	MaxMisaligned    int
	HeaderThreshold  float64
}

func DefaultOptions() Options {
	return Options{
		ClusterTolerance: RowClusterTolerance,
		ColumnTolerance:  ColumnTolerance,
		MaxMisaligned:    DefaultMaxMisaligned,
		HeaderThreshold:  DefaultHeaderThreshold,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ClusterTolerance <= 0 {
		o.ClusterTolerance = d.ClusterTolerance
	}
	if o.ColumnTolerance <= 0 {
		o.ColumnTolerance = d.ColumnTolerance
	}
	if o.MaxMisaligned <= 0 {
		o.MaxMisaligned = d.MaxMisaligned
	}
	if o.HeaderThreshold <= 0 {
		o.HeaderThreshold = d.HeaderThreshold
	}
	return o
}
