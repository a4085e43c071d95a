package report

import "github.com/hyperifyio/dealscout/internal/extract"

// Column headers of the listing table, in display and export order.
const (
	ColumnProduct       = "Produkt"
	ColumnOriginalPrice = "UVP"
	ColumnDiscountPrice = "Angebotspreis"
)

// Columns lists the table headers in order.
var Columns = []string{ColumnProduct, ColumnOriginalPrice, ColumnDiscountPrice}

// Table is the ordered result of one extraction. It lives for a single
// fetch-and-display cycle.
type Table struct {
	Rows []extract.Listing
}

func NewTable(rows []extract.Listing) Table {
	return Table{Rows: rows}
}

func (t Table) Len() int { return len(t.Rows) }

func (t Table) Empty() bool { return len(t.Rows) == 0 }

// Records returns the rows as string records without the header.
func (t Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, []string{r.Product, r.OriginalPrice, r.DiscountPrice})
	}
	return out
}
