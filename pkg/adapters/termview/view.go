// Package termview draws playback frames in a terminal with 24-bit
// colored half blocks.
package termview

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/user/freegif/pkg/ports"
)

const (
	cursorHome = "\033[H"
	clearLine  = "\033[K"
	reset      = "\033[0m"
	upperHalf  = "▀"
)

// View renders each frame as cols x rows character cells. Every cell shows
// two vertically stacked pixels. When color is off only the frame counter
// is printed.
type View struct {
	mu       sync.Mutex
	out      io.Writer
	renderer ports.Renderer
	cols     int
	rows     int
	color    bool
}

// New creates a view on stdout. Graphics are drawn only when stdout is a
// terminal.
func New(renderer ports.Renderer, cols, rows int) *View {
	v := NewWriter(os.Stdout, renderer, cols, rows)
	v.color = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return v
}

// NewWriter creates a view on out with graphics enabled.
func NewWriter(out io.Writer, renderer ports.Renderer, cols, rows int) *View {
	if cols <= 0 {
		cols = 60
	}
	if rows <= 0 {
		rows = 20
	}
	return &View{
		out:      out,
		renderer: renderer,
		cols:     cols,
		rows:     rows,
		color:    true,
	}
}

// SetColor turns graphics on or off.
func (v *View) SetColor(on bool) {
	v.mu.Lock()
	v.color = on
	v.mu.Unlock()
}

// Show implements ports.FrameView.
func (v *View) Show(index, total int, img image.Image) {
	v.mu.Lock()
	defer v.mu.Unlock()

	w := bufio.NewWriter(v.out)
	defer w.Flush()

	if !v.color {
		fmt.Fprintf(w, "%d / %d\n", index+1, total)
		return
	}

	thumb := v.renderer.Thumbnail(img, v.cols, v.rows*2, color.Black)
	b := thumb.Bounds()

	w.WriteString(cursorHome)
	for y := b.Min.Y; y+1 < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := color.RGBAModel.Convert(thumb.At(x, y)).(color.RGBA)
			bottom := color.RGBAModel.Convert(thumb.At(x, y+1)).(color.RGBA)
			fmt.Fprintf(w, "\033[38;2;%d;%d;%dm\033[48;2;%d;%d;%dm%s",
				top.R, top.G, top.B, bottom.R, bottom.G, bottom.B, upperHalf)
		}
		w.WriteString(reset + "\n")
	}
	fmt.Fprintf(w, "%s%d / %d\n", clearLine, index+1, total)
}

var _ ports.FrameView = (*View)(nil)
