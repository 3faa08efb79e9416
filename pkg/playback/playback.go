// Package playback animates a frame store in real time.
//
// Ticks and renders are decoupled: the ticker only moves the index and
// posts it to a one-slot mailbox. A separate render goroutine takes the
// latest posted index, so a slow decode never delays a tick and stale
// requests are dropped rather than queued.
package playback

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/user/freegif/pkg/ports"
)

// Frames is the part of a frame store the controller reads.
type Frames interface {
	Len() int
	Get(index int) (image.Image, error)
	Delay() int
}

// focuser is implemented by stores with a bounded decode cache.
type focuser interface {
	SetFocus(index int)
}

// State is the playback state.
type State int

const (
	Stopped State = iota
	Playing
)

// String returns the state name.
func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "stopped"
}

// Speeds lists the speed multipliers offered to the user.
var Speeds = []float64{0.5, 1, 1.5, 2}

// Controller plays a frame store into a view.
type Controller struct {
	mu     sync.Mutex
	frames Frames
	length int // frames.Len() as of New or Reset; the store is never called under mu
	delay  int
	view   ports.FrameView
	logger ports.Logger

	state State
	index int
	speed float64
	loop  bool

	// stop is closed to end the current tick goroutine.
	stop chan struct{}

	mailbox  chan int
	postMu   sync.Mutex
	quit     chan struct{}
	closed   sync.Once
	rendered sync.WaitGroup
}

// New creates a stopped controller at frame 0 with looping on.
func New(frames Frames, view ports.FrameView, logger ports.Logger) *Controller {
	c := &Controller{
		frames:  frames,
		length:  frames.Len(),
		delay:   frames.Delay(),
		view:    view,
		logger:  logger.WithComponent("playback"),
		speed:   1,
		loop:    true,
		mailbox: make(chan int, 1),
		quit:    make(chan struct{}),
	}
	c.rendered.Add(1)
	go c.renderLoop()
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Index returns the current 0-based frame index.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Counter returns the 1-based "i / N" label.
func (c *Controller) Counter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("%d / %d", c.index+1, c.length)
}

// Speed returns the speed multiplier.
func (c *Controller) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// Loop reports whether playback wraps at the end.
func (c *Controller) Loop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loop
}

// SetLoop toggles wrapping at the end.
func (c *Controller) SetLoop(on bool) {
	c.mu.Lock()
	c.loop = on
	c.mu.Unlock()
}

// Interval returns the tick period for the current delay and speed.
func (c *Controller) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval()
}

func (c *Controller) interval() time.Duration {
	d := time.Duration(float64(c.delay) * float64(time.Millisecond) / c.speed)
	if d <= 0 {
		d = time.Millisecond
	}
	return d
}

// Play starts ticking from the current index. It is a no-op when already
// playing or when there are no frames.
func (c *Controller) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Playing || c.length == 0 {
		return
	}
	c.state = Playing
	c.startTicker()
	c.logger.Debug("Playback started at %d ms per frame", c.interval().Milliseconds())
}

// startTicker launches a tick goroutine. Callers hold c.mu.
func (c *Controller) startTicker() {
	stop := make(chan struct{})
	c.stop = stop
	ticker := time.NewTicker(c.interval())
	go c.run(ticker, stop)
}

// stopTicker ends the tick goroutine. Callers hold c.mu.
func (c *Controller) stopTicker() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *Controller) run(ticker *time.Ticker, stop chan struct{}) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !c.tick(stop) {
				return
			}
		}
	}
}

// tick advances one frame. It returns false when playback ended.
func (c *Controller) tick(stop chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A stale goroutine from before a Stop or SetSpeed.
	if c.stop != stop {
		return false
	}

	n := c.length
	next := c.index + 1
	if next >= n {
		if !c.loop {
			c.index = n - 1
			c.state = Stopped
			c.stopTicker()
			c.logger.Debug("Playback stopped at frame %d", c.index+1)
			return false
		}
		next = 0
	}
	c.index = next
	c.post(next)
	return true
}

// Stop halts playback at the current frame.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Playing {
		return
	}
	c.stopTicker()
	c.state = Stopped
	c.logger.Debug("Playback stopped at frame %d", c.index+1)
}

// Toggle switches between playing and stopped.
func (c *Controller) Toggle() {
	if c.State() == Playing {
		c.Stop()
	} else {
		c.Play()
	}
}

// Seek jumps to index, clamped into range, without changing the state.
func (c *Controller) Seek(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.length
	if n == 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index >= n {
		index = n - 1
	}
	c.index = index
	c.post(index)
}

// Next stops playback and steps forward, wrapping to the first frame.
func (c *Controller) Next() {
	c.step(1)
}

// Prev stops playback and steps back, wrapping to the last frame.
func (c *Controller) Prev() {
	c.step(-1)
}

func (c *Controller) step(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.length
	if n == 0 {
		return
	}
	if c.state == Playing {
		c.stopTicker()
		c.state = Stopped
	}
	c.index = ((c.index+delta)%n + n) % n
	c.post(c.index)
}

// SetSpeed changes the speed multiplier, restarting the ticker if playing.
func (c *Controller) SetSpeed(speed float64) error {
	if speed <= 0 {
		return fmt.Errorf("playback: speed must be positive, got %v", speed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.speed = speed
	if c.state == Playing {
		c.stopTicker()
		c.startTicker()
	}
	return nil
}

// SetDelay updates the per-frame delay after the store's delay changed,
// restarting the ticker if playing.
func (c *Controller) SetDelay(ms int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.delay = ms
	if c.state == Playing {
		c.stopTicker()
		c.startTicker()
	}
}

// Reset stops playback and rebinds the controller to a new store. It is
// also called after the store is trimmed or its delay changes.
func (c *Controller) Reset(frames Frames) {
	n, delay := frames.Len(), frames.Delay()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTicker()
	c.state = Stopped
	c.frames = frames
	c.length = n
	c.delay = delay
	c.index = 0
	if n > 0 {
		c.post(0)
	}
}

// post replaces any pending render request with index.
func (c *Controller) post(index int) {
	c.postMu.Lock()
	defer c.postMu.Unlock()

	select {
	case <-c.mailbox:
	default:
	}
	c.mailbox <- index
}

func (c *Controller) renderLoop() {
	defer c.rendered.Done()
	for {
		select {
		case <-c.quit:
			return
		case index := <-c.mailbox:
			c.render(index)
		}
	}
}

func (c *Controller) render(index int) {
	c.mu.Lock()
	frames := c.frames
	c.mu.Unlock()

	if f, ok := frames.(focuser); ok {
		f.SetFocus(index)
	}
	img, err := frames.Get(index)
	if err != nil {
		c.logger.Warn("Skipping frame %d: %s", index+1, err)
		return
	}
	c.view.Show(index, frames.Len(), img)
}

// Close stops playback and the render goroutine.
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopTicker()
	c.state = Stopped
	c.mu.Unlock()

	c.closed.Do(func() { close(c.quit) })
	c.rendered.Wait()
}
