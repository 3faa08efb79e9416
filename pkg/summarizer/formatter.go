// Package summarizer builds and renders export summaries.
package summarizer

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/ideamans/go-l10n"
)

// Formatter renders a Summary.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc adapts a function to Formatter.
type FormatFunc func(summary *Summary) string

// Format calls f.
func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// row is one translated label and its rendered value.
type row struct {
	label string
	value string
}

// sourceLine describes where the frames came from.
func sourceLine(s *Summary) string {
	if s.Source.Kind == "import" {
		return fmt.Sprintf("%s %s", l10n.T("Imported from"), s.Source.Path)
	}
	return l10n.T("Screen capture")
}

func settingsRows(s *Summary) []row {
	st := s.Settings
	return []row{
		{l10n.T("Preset"), st.Preset},
		{l10n.T("Quality"), fmt.Sprintf("%d%%", st.Quality)},
		{l10n.T("Dither"), st.Dither},
		{l10n.T("Palette"), st.Palette},
		{l10n.T("Resolution"), fmt.Sprintf("%d%%", int(st.ResolutionScale*100+0.5))},
	}
}

func outputRows(s *Summary) []row {
	o := s.Output
	rows := []row{
		{l10n.T("File"), o.Path},
		{l10n.T("Frames"), fmt.Sprint(o.FrameCount)},
		{l10n.T("Size"), fmt.Sprintf("%dx%d", o.Width, o.Height)},
		{l10n.T("Delay"), fmt.Sprintf("%d ms", o.DelayMs)},
		{l10n.T("Duration"), fmt.Sprintf("%.1f s", float64(o.DurationMs())/1000)},
		{l10n.T("File size"), humanize.IBytes(uint64(o.FileSize))},
	}
	if o.EstimatedBytes > 0 {
		rows = append(rows, row{l10n.T("Estimated"), humanize.IBytes(uint64(o.EstimatedBytes))})
	}
	return rows
}
