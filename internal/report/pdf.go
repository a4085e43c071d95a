package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDF renders the listing table followed by the summary statistics on A4
// pages. Long product names are shortened to keep one line per row.
func PDF(t Table, s Stats, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("MediaMarkt Angebote", true)
	pdf.SetCreationDate(now)
	// Core fonts are cp1252; translate so "€" and umlauts survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	widths := []float64{120, 30, 30}
	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for i, c := range Columns {
			pdf.CellFormat(widths[i], 7, tr(c), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr("MediaMarkt Angebote"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%d Produkte, Stand %s", t.Len(), now.Format("02.01.2006 15:04:05"))), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	header()
	for _, rec := range t.Records() {
		pdf.CellFormat(widths[0], 6, tr(shorten(rec[0], 70)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(rec[1]), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(rec[2]), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr("Preisstatistiken"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, tile := range s.Tiles() {
		pdf.CellFormat(80, 6, tr(tile.Label), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, tr(tile.Value), "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func shorten(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
