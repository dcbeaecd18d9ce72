package excel

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"pharmafront/internal/domain"
)

var reportHeader = []string{
	"Product ID", "Name", "Category", "Brand", "Type",
	"Quantity", "Stock Status", "Oldest Expiry", "Days To Expiry", "Expiry Status", "SRP",
}

// WriteStockReport renders the reconciled warehouse listing as a
// spreadsheet and writes it to w.
func WriteStockReport(w io.Writer, overviews []domain.ProductOverview, generatedAt time.Time) error {
	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Stock Report"
	file.SetSheetName(file.GetSheetName(0), sheet)

	for col, title := range reportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := file.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, overview := range overviews {
		values := []any{
			overview.ID,
			overview.Name,
			overview.Category,
			overview.Brand,
			string(overview.ProductType),
			overview.TotalQuantity,
			string(overview.StockStatus),
			formatExpiry(overview),
			formatDays(overview),
			string(overview.ExpiryState),
			overview.SRP,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("row %d cell: %w", i+2, err)
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("write row %d: %w", i+2, err)
			}
		}
	}

	footer, err := excelize.CoordinatesToCellName(1, len(overviews)+3)
	if err != nil {
		return fmt.Errorf("footer cell: %w", err)
	}
	if err := file.SetCellValue(sheet, footer, "Generated "+generatedAt.Format("2006-01-02 15:04")); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func formatExpiry(overview domain.ProductOverview) string {
	if overview.ExpiryDegraded {
		return "unknown"
	}
	if overview.OldestExpiry == nil {
		return "N/A"
	}
	return overview.OldestExpiry.Format("2006-01-02")
}

func formatDays(overview domain.ProductOverview) string {
	if overview.DaysToExpiry == nil {
		return ""
	}
	return fmt.Sprintf("%d", *overview.DaysToExpiry)
}
