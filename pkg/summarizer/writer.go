package summarizer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/freegif/pkg/ports"
)

// Writer renders summaries to files through a FileSystem.
type Writer struct {
	formatter Formatter
	fs        ports.FileSystem
}

// NewWriter creates a Writer using formatter.
func NewWriter(formatter Formatter, fs ports.FileSystem) *Writer {
	return &Writer{formatter: formatter, fs: fs}
}

// Write renders summary to path, creating the parent directory. The file is
// replaced atomically so a reader never sees half a summary.
func (w *Writer) Write(path string, summary *Summary) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := w.fs.MkdirAll(dir); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	content := w.formatter.Format(summary)
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := w.fs.WriteFileAtomic(path, []byte(content)); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// PathFor returns the summary path next to an exported GIF.
func PathFor(gifPath string) string {
	return strings.TrimSuffix(gifPath, filepath.Ext(gifPath)) + ".md"
}
