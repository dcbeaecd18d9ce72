// Package units converts bulk entry configurations (boxes × sub-units) into
// total piece counts for stock entry forms.
package units

// BulkConfig describes quantity as entered on the stock-entry form. Medicine
// uses boxes × strips × tablets (SubUnitsPerBox, UnitsPerSubUnit); other
// products use boxes × pieces (UnitsPerBox). Blank form fields arrive as 0.
type BulkConfig struct {
	Boxes           int `json:"boxes"`
	SubUnitsPerBox  int `json:"sub_units_per_box,omitempty"`
	UnitsPerSubUnit int `json:"units_per_sub_unit,omitempty"`
	UnitsPerBox     int `json:"units_per_box,omitempty"`
}

// ToTotalPieces returns the piece count for a bulk configuration. A missing
// or zero factor makes the result zero; partial input is not an error, the
// form layer gates submission until all required factors are present.
// Negative inputs are treated as zero.
func ToTotalPieces(cfg BulkConfig) int {
	boxes := clampNonNegative(cfg.Boxes)
	if boxes == 0 {
		return 0
	}
	if cfg.SubUnitsPerBox != 0 || cfg.UnitsPerSubUnit != 0 {
		return boxes * clampNonNegative(cfg.SubUnitsPerBox) * clampNonNegative(cfg.UnitsPerSubUnit)
	}
	return boxes * clampNonNegative(cfg.UnitsPerBox)
}

// IsComplete reports whether every factor required by the configuration's
// shape is present, i.e. the converted total would be meaningful.
func (c BulkConfig) IsComplete() bool {
	if c.Boxes <= 0 {
		return false
	}
	if c.SubUnitsPerBox != 0 || c.UnitsPerSubUnit != 0 {
		return c.SubUnitsPerBox > 0 && c.UnitsPerSubUnit > 0
	}
	return c.UnitsPerBox > 0
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
