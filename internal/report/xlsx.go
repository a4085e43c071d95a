package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXSheet is the worksheet name used for exported listings.
const XLSXSheet = "Angebote"

// XLSX renders the table as a single-sheet workbook. Prices that coerce to
// numbers are stored as numeric cells, everything else as text.
func XLSX(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", XLSXSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	// StreamWriter writes rows in order without building the sheet in memory
	sw, err := f.NewStreamWriter(XLSXSheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx stream: %w", err)
	}
	header := make([]interface{}, 0, len(Columns))
	for _, c := range Columns {
		header = append(header, c)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("xlsx header: %w", err)
	}
	for i, r := range t.Rows {
		row := []interface{}{r.Product, priceCell(r.OriginalPrice), priceCell(r.DiscountPrice)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("xlsx flush: %w", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func priceCell(s string) interface{} {
	if v, ok := Coerce(s); ok {
		return v
	}
	return s
}
