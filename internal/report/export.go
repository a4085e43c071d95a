package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// DefaultExportPrefix starts every export file name.
const DefaultExportPrefix = "mediamarkt_angebote"

const (
	MIMECSV  = "text/csv"
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEPDF  = "application/pdf"
)

// Export is one downloadable rendition of a table.
type Export struct {
	Label    string
	FileName string
	MIME     string
	Data     []byte
}

// ExportFileName returns "<prefix>_YYYYMMDD_HHMMSS.<ext>" for t.
func ExportFileName(prefix, ext string, t time.Time) string {
	if prefix == "" {
		prefix = DefaultExportPrefix
	}
	return fmt.Sprintf("%s_%s.%s", prefix, t.Format("20060102_150405"), ext)
}

// WriteCSV writes the header row and one record per listing as UTF-8.
// Prices are written as the extracted text, not reformatted.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, rec := range t.Records() {
		if err := writer.Write(rec); err != nil {
			return fmt.Errorf("csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}
	return nil
}

// CSV returns the table encoded by WriteCSV.
func CSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildExports renders the CSV, XLSX and PDF downloads for one result. All
// three share the same timestamped base name.
func BuildExports(t Table, s Stats, prefix string, now time.Time) ([]Export, error) {
	csvData, err := CSV(t)
	if err != nil {
		return nil, err
	}
	xlsxData, err := XLSX(t)
	if err != nil {
		return nil, err
	}
	pdfData, err := PDF(t, s, now)
	if err != nil {
		return nil, err
	}
	return []Export{
		{Label: "Als CSV herunterladen", FileName: ExportFileName(prefix, "csv", now), MIME: MIMECSV, Data: csvData},
		{Label: "Als Excel herunterladen", FileName: ExportFileName(prefix, "xlsx", now), MIME: MIMEXLSX, Data: xlsxData},
		{Label: "Als PDF herunterladen", FileName: ExportFileName(prefix, "pdf", now), MIME: MIMEPDF, Data: pdfData},
	}, nil
}
