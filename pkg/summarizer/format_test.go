package summarizer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/user/freegif/pkg/mocks"
)

func testSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Source:      SourceInfo{Kind: "import", Path: "clip.gif"},
		Settings: Settings{
			Preset:          "medium",
			Quality:         70,
			Dither:          "FloydSteinberg-serpentine",
			Palette:         "local",
			ResolutionScale: 0.5,
		},
		Output: OutputInfo{
			Path:           "out.gif",
			FrameCount:     30,
			Width:          320,
			Height:         240,
			DelayMs:        100,
			FileSize:       1024 * 1024,
			EstimatedBytes: 970 * 1024,
		},
	}
}

func TestMarkdownFormatter_Format(t *testing.T) {
	result := NewMarkdownFormatter().Format(testSummary())

	checks := []string{
		"# Export Summary",
		"2024-01-15 10:30:00 UTC",
		"Imported from `clip.gif`",
		"| Preset | medium |",
		"| Quality | 70% |",
		"| Resolution | 50% |",
		"| Size | 320x240 |",
		"| Duration | 3.0 s |",
		"| File size | 1.0 MiB |",
		"| Estimated | 970 KiB |",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
}

func TestMarkdownFormatter_Capture(t *testing.T) {
	s := testSummary()
	s.Source = SourceInfo{Kind: "capture"}
	s.Output.EstimatedBytes = 0

	result := NewMarkdownFormatter().Format(s)
	if !strings.Contains(result, "- Screen capture") {
		t.Error("expected capture source")
	}
	if strings.Contains(result, "Estimated") {
		t.Error("expected no estimate row")
	}
}

func TestTableFormatter_Format(t *testing.T) {
	result := NewTableFormatter().Format(testSummary())

	for _, check := range []string{"Export Summary", "out.gif", "320x240", "1.0 MiB", "FloydSteinberg-serpentine"} {
		if !strings.Contains(result, check) {
			t.Errorf("expected table to contain %q", check)
		}
	}
}

func TestFormatFunc(t *testing.T) {
	f := FormatFunc(func(s *Summary) string { return s.Output.Path })
	if got := f.Format(testSummary()); got != "out.gif" {
		t.Errorf("expected out.gif, got %q", got)
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(FormatFunc(func(*Summary) string { return "content" }), fs)

	if err := w.Write("reports/out.md", testSummary()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if ok, _ := fs.Exists("reports"); !ok {
		t.Error("expected the parent directory to be created")
	}
	data, ok := fs.GetFile("reports/out.md")
	if !ok || string(data) != "content\n" {
		t.Errorf("expected content written, got %q", data)
	}

	fs.WriteFileAtomicFunc = func(string, []byte) error { return errors.New("disk full") }
	if err := w.Write("out.md", testSummary()); err == nil {
		t.Error("expected write error")
	}
}
