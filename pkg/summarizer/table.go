package summarizer

import (
	"github.com/ideamans/go-l10n"
	"github.com/jedib0t/go-pretty/v6/table"
)

// TableFormatter renders a Summary as a console table.
type TableFormatter struct {
	// Style is the go-pretty style, table.StyleLight when nil.
	Style *table.Style
}

// NewTableFormatter creates a new TableFormatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// Format implements Formatter.
func (f *TableFormatter) Format(s *Summary) string {
	t := table.NewWriter()
	if f.Style != nil {
		t.SetStyle(*f.Style)
	} else {
		t.SetStyle(table.StyleLight)
	}
	t.SetTitle(l10n.T("Export Summary"))

	t.AppendRow(table.Row{l10n.T("Source"), sourceLine(s)})
	t.AppendSeparator()
	for _, r := range outputRows(s) {
		t.AppendRow(table.Row{r.label, r.value})
	}
	t.AppendSeparator()
	for _, r := range settingsRows(s) {
		t.AppendRow(table.Row{r.label, r.value})
	}

	return t.Render()
}
