package summarizer

import (
	"fmt"
	"strings"

	"github.com/ideamans/go-l10n"
)

// MarkdownFormatter renders a Summary as a markdown document.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", l10n.T("Export Summary"))
	fmt.Fprintf(&b, "%s %s\n\n", l10n.T("Generated"), s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	fmt.Fprintf(&b, "## %s\n\n", l10n.T("Source"))
	if s.Source.Kind == "import" {
		fmt.Fprintf(&b, "- %s `%s`\n\n", l10n.T("Imported from"), s.Source.Path)
	} else {
		fmt.Fprintf(&b, "- %s\n\n", sourceLine(s))
	}

	writeSection(&b, l10n.T("Settings"), settingsRows(s))
	writeSection(&b, l10n.T("Output"), outputRows(s))

	return strings.TrimSuffix(b.String(), "\n")
}

func writeSection(b *strings.Builder, title string, rows []row) {
	fmt.Fprintf(b, "## %s\n\n", title)
	fmt.Fprintf(b, "| %s | %s |\n|---|---|\n", l10n.T("Item"), l10n.T("Value"))
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r.label, r.value)
	}
	b.WriteString("\n")
}
