package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"pharmafront/internal/service"
	"pharmafront/internal/units"
)

var headerAliases = map[string]string{
	"product_id":         "product_id",
	"product id":         "product_id",
	"product":            "product_id",
	"quantity":           "quantity",
	"qty":                "quantity",
	"pieces":             "quantity",
	"boxes":              "boxes",
	"box":                "boxes",
	"strips_per_box":     "sub_units_per_box",
	"strips per box":     "sub_units_per_box",
	"sub_units_per_box":  "sub_units_per_box",
	"units_per_strip":    "units_per_sub_unit",
	"units per strip":    "units_per_sub_unit",
	"units_per_sub_unit": "units_per_sub_unit",
	"units_per_box":      "units_per_box",
	"units per box":      "units_per_box",
	"pieces_per_box":     "units_per_box",
	"unit_cost":          "unit_cost",
	"unit cost":          "unit_cost",
	"cost":               "unit_cost",
	"srp":                "srp",
	"expiration_date":    "expiration_date",
	"expiration date":    "expiration_date",
	"expiry":             "expiration_date",
	"entered_by":         "entered_by",
	"entered by":         "entered_by",
}

// ParseStockEntryRows reads a bulk stock-entry spreadsheet into entry
// inputs. Quantity may come as a raw piece count or as bulk columns
// (boxes plus either strips×units or units per box); conversion happens in
// the service layer.
func ParseStockEntryRows(reader io.Reader) ([]service.StockEntryInput, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}

	colMap := mapColumns(rows[0])
	if _, ok := colMap["product_id"]; !ok {
		return nil, fmt.Errorf("missing required column: product_id")
	}

	entries := make([]service.StockEntryInput, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		productID := strings.TrimSpace(readCell(cells, colMap, "product_id"))
		if productID == "" {
			continue
		}

		entry := service.StockEntryInput{
			ProductID: productID,
			Quantity:  readIntCell(cells, colMap, "quantity"),
			Bulk: units.BulkConfig{
				Boxes:           readIntCell(cells, colMap, "boxes"),
				SubUnitsPerBox:  readIntCell(cells, colMap, "sub_units_per_box"),
				UnitsPerSubUnit: readIntCell(cells, colMap, "units_per_sub_unit"),
				UnitsPerBox:     readIntCell(cells, colMap, "units_per_box"),
			},
			UnitCost:  readFloatCell(cells, colMap, "unit_cost"),
			EnteredBy: strings.TrimSpace(readCell(cells, colMap, "entered_by")),
		}
		if srp := readFloatCell(cells, colMap, "srp"); srp > 0 {
			entry.SRP = &srp
		}
		if raw := strings.TrimSpace(readCell(cells, colMap, "expiration_date")); raw != "" {
			expiry, err := parseExpiryCell(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", index+1, err)
			}
			entry.Expiry = expiry
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func mapColumns(header []string) map[string]int {
	colMap := make(map[string]int, len(header))
	for index, cell := range header {
		key := strings.ToLower(strings.TrimSpace(cell))
		if canonical, ok := headerAliases[key]; ok {
			if _, exists := colMap[canonical]; !exists {
				colMap[canonical] = index
			}
		}
	}
	return colMap
}

func readCell(cells []string, colMap map[string]int, column string) string {
	index, ok := colMap[column]
	if !ok || index >= len(cells) {
		return ""
	}
	return cells[index]
}

func readIntCell(cells []string, colMap map[string]int, column string) int {
	raw := strings.TrimSpace(readCell(cells, colMap, column))
	if raw == "" {
		return 0
	}
	// Excel renders some integers as "5.00".
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0
	}
	return int(value)
}

func readFloatCell(cells []string, colMap map[string]int, column string) float64 {
	raw := strings.TrimSpace(readCell(cells, colMap, column))
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0
	}
	return value
}

var expiryLayouts = []string{"2006-01-02", "01-02-06", "1/2/2006", "2006/01/02"}

func parseExpiryCell(raw string) (*time.Time, error) {
	for _, layout := range expiryLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			day := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			return &day, nil
		}
	}
	return nil, fmt.Errorf("invalid expiration date %q", raw)
}
