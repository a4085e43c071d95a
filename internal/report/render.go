package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// EmptyWarning is shown instead of statistics when nothing was extracted.
const EmptyWarning = "Keine Produkte gefunden. Bitte überprüfen Sie die URL und versuchen Sie es erneut."

// Render prints the listing table and, for a non-empty table, the summary
// statistics to w.
func Render(w io.Writer, t Table, s Stats) {
	if t.Empty() {
		fmt.Fprintln(w, EmptyWarning)
		return
	}

	fmt.Fprintf(w, "%d Produkte gefunden!\n", t.Len())
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"#", ColumnProduct, ColumnOriginalPrice, ColumnDiscountPrice})
	for i, rec := range t.Records() {
		tw.AppendRow(table.Row{i, rec[0], rec[1], rec[2]})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 60},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	tw.SetStyle(table.StyleRounded)
	tw.Render()

	st := table.NewWriter()
	st.SetOutputMirror(w)
	st.SetTitle("Preisstatistiken")
	for _, tile := range s.Tiles() {
		st.AppendRow(table.Row{tile.Label, tile.Value})
	}
	st.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	st.SetStyle(table.StyleRounded)
	st.Render()
}
