package entity

// TableRow is one data row. After assignment len(Cells) equals the region's header count.
type TableRow struct {
	Cells []string `json:"cells"`
	Y     float64  `json:"y"`
	Page  int      `json:"page"`
}

// TableRegion is a table instance on one page, or the merge of several.
type TableRegion struct {
	Headers         []string   `json:"headers"`
	Rows            []TableRow `json:"rows"`
	ColumnPositions []float64  `json:"column_positions"`
	StartY          float64    `json:"start_y"`
	EndY            float64    `json:"end_y"`
	Page            int        `json:"page"`
}

// LastRowY returns the y of the lowest row, or false when the region has no rows.
func (t TableRegion) LastRowY() (float64, bool) {
	if len(t.Rows) == 0 {
		return 0, false
	}
	y := t.Rows[0].Y
	for _, r := range t.Rows[1:] {
		y = max(y, r.Y)
	}
	return y, true
}
