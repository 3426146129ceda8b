package table

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
)

// Cluster is a group of runs forming one visual line. Y is the first run's y.
type Cluster struct {
	Y    float64
	Runs []entity.TextRun
}

// ClusterByY sorts runs by y and groups them. A run joins the current cluster
// while it is within tolerance of the cluster's first y.
func ClusterByY(runs []entity.TextRun, tolerance float64) []Cluster {
	if len(runs) == 0 {
		return nil
	}
	sorted := slices.Clone(runs)
	slices.SortStableFunc(sorted, func(a, b entity.TextRun) int { return cmp.Compare(a.Y, b.Y) })

	var clusters []Cluster
	cur := Cluster{Y: sorted[0].Y}
	for _, r := range sorted {
		if len(cur.Runs) > 0 && math.Abs(r.Y-cur.Y) >= tolerance {
			clusters = append(clusters, cur)
			cur = Cluster{Y: r.Y}
		}
		cur.Runs = append(cur.Runs, r)
	}
	return append(clusters, cur)
}

func joinRunText(runs []entity.TextRun) string {
	parts := make([]string, len(runs))
	for i, r := range runs {
		parts[i] = r.Text
	}
	return strings.Join(parts, " ")
}

func sortByX(runs []entity.TextRun) []entity.TextRun {
	out := slices.Clone(runs)
	slices.SortStableFunc(out, func(a, b entity.TextRun) int { return cmp.Compare(a.X, b.X) })
	return out
}
