// Package gifencoder provides a palette-based GIF encoder.
package gifencoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"strings"
	"sync"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/makeworld-the-better-one/dither/v2"
	"golang.org/x/image/draw"

	"github.com/user/freegif/pkg/ports"
)

const (
	// DefaultWorkers matches the parallelism of the browser encoder.
	DefaultWorkers = 2
	// MaxColors is the palette size limit of the GIF container.
	MaxColors = 256
)

var (
	// ErrNotStarted is returned when frames are added before Begin.
	ErrNotStarted = errors.New("gifencoder: Begin not called")
	// ErrNoFrames is returned by End when no frame was added.
	ErrNoFrames = errors.New("gifencoder: no frames to encode")
)

// Encoder implements ports.AnimationEncoder.
type Encoder struct {
	mu sync.Mutex

	cfg        ports.EncoderConfig
	matrix     dither.ErrorDiffusionMatrix
	serpentine bool
	started    bool

	frames   []*image.RGBA
	delays   []int
	progress chan float64
}

// New creates a new GIF encoder.
func New() *Encoder {
	return &Encoder{}
}

// Begin initializes the encoder.
func (e *Encoder) Begin(cfg ports.EncoderConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Quality <= 0 {
		cfg.Quality = 1
	}

	matrix, serpentine, err := parseDither(cfg.Dither)
	if err != nil {
		return err
	}

	e.cfg = cfg
	e.matrix = matrix
	e.serpentine = serpentine
	e.frames = nil
	e.delays = nil
	e.progress = make(chan float64, 64)
	e.started = true

	return nil
}

// parseDither reads "false" or "<Kernel>[-serpentine]". A nil matrix
// means no dithering.
func parseDither(opt string) (dither.ErrorDiffusionMatrix, bool, error) {
	if opt == "" || opt == "false" {
		return nil, false, nil
	}

	name, serpentine := strings.CutSuffix(opt, "-serpentine")
	switch name {
	case "FloydSteinberg":
		return dither.FloydSteinberg, serpentine, nil
	case "FalseFloydSteinberg":
		return dither.FalseFloydSteinberg, serpentine, nil
	case "Stucki":
		return dither.Stucki, serpentine, nil
	case "Atkinson":
		return dither.Atkinson, serpentine, nil
	default:
		return nil, false, fmt.Errorf("unknown dither kernel %q", name)
	}
}

// AddFrame appends a frame. Frames of a different size are scaled to the
// configured dimensions.
func (e *Encoder) AddFrame(img image.Image, delayMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return ErrNotStarted
	}

	rect := image.Rect(0, 0, e.cfg.Width, e.cfg.Height)
	rgba := image.NewRGBA(rect)
	b := img.Bounds()
	if b.Dx() == e.cfg.Width && b.Dy() == e.cfg.Height {
		draw.Draw(rgba, rect, img, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(rgba, rect, img, b, draw.Src, nil)
	}

	e.frames = append(e.frames, rgba)
	e.delays = append(e.delays, centis(delayMs))
	return nil
}

// centis converts milliseconds to the container's hundredths of a second.
func centis(ms int) int {
	return int(math.Round(float64(ms) / 10))
}

// Progress reports completion in [0,1]. The channel is closed by End.
func (e *Encoder) Progress() <-chan float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress
}

// End quantizes all frames and writes the container.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return nil, ErrNotStarted
	}
	e.started = false
	defer close(e.progress)

	if len(e.frames) == 0 {
		return nil, ErrNoFrames
	}

	var global color.Palette
	if e.cfg.GlobalPalette {
		global = e.palette(e.frames...)
	}

	paletted := e.quantizeAll(global)

	anim := &gif.GIF{
		Image:     paletted,
		Delay:     e.delays,
		LoopCount: 0,
		Config: image.Config{
			Width:      e.cfg.Width,
			Height:     e.cfg.Height,
			ColorModel: global,
		},
	}
	if global == nil {
		anim.Config.ColorModel = paletted[0].Palette
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("encode gif: %w", err)
	}

	e.frames = nil
	e.delays = nil
	return buf.Bytes(), nil
}

// quantizeAll maps every frame onto a palette with a worker pool. A nil
// global palette builds one palette per frame.
func (e *Encoder) quantizeAll(global color.Palette) []*image.Paletted {
	n := len(e.frames)
	out := make([]*image.Paletted, n)
	jobs := make(chan int, n)

	var wg sync.WaitGroup
	var done sync.Mutex
	completed := 0

	for w := 0; w < e.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				pal := global
				if pal == nil {
					pal = e.palette(e.frames[idx])
				}
				out[idx] = e.remap(e.frames[idx], pal)

				done.Lock()
				completed++
				e.sendProgress(float64(completed) / float64(n))
				done.Unlock()
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return out
}

func (e *Encoder) sendProgress(p float64) {
	select {
	case e.progress <- p:
	default:
	}
}

// palette runs median cut over a sub-sampled view of the frames.
func (e *Encoder) palette(frames ...*image.RGBA) color.Palette {
	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(color.Palette, 0, MaxColors), newSampler(frames, e.cfg.Quality))
	if len(pal) == 0 {
		pal = color.Palette{color.Black}
	}
	return pal
}

// remap converts a frame to paletted form, with error diffusion when a
// dither kernel is configured.
func (e *Encoder) remap(img *image.RGBA, pal color.Palette) *image.Paletted {
	if e.matrix != nil {
		d := dither.NewDitherer(pal)
		if d != nil {
			d.Matrix = e.matrix
			d.Serpentine = e.serpentine
			if p := d.DitherPaletted(img); p != nil {
				p.Palette = pal
				return p
			}
		}
	}

	p := image.NewPaletted(img.Bounds(), pal)
	draw.Draw(p, p.Rect, img, img.Rect.Min, draw.Src)
	return p
}

var _ ports.AnimationEncoder = (*Encoder)(nil)
