package entity

import "fmt"

// RGB is a colour with channels in [0,1].
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Hex renders the colour as #rrggbb, truncating each channel.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", int(c.R*255), int(c.G*255), int(c.B*255))
}

// Discrepancy records a claimed value and what the page showed for it.
type Discrepancy struct {
	Extractor string `json:"Extractor"`
	PDF       string `json:"pdf"`
}

// HighlightMatch is a located field (or article row) to be drawn on the page.
type HighlightMatch struct {
	FieldName     string                 `json:"field_name"`
	BBox          BBox                   `json:"bbox"`
	Page          int                    `json:"page"`
	Color         RGB                    `json:"color"`
	Discrepancies map[string]Discrepancy `json:"discrepancies,omitempty"`
}
