package mocks

import (
	"image"
	"sync"

	"github.com/user/freegif/pkg/ports"
)

// FrameView is a mock implementation of ports.FrameView that records
// every frame shown.
type FrameView struct {
	mu    sync.Mutex
	shown []int
	total int

	// ShowFunc runs after the call is recorded, e.g. to block a render.
	ShowFunc func(index, total int, img image.Image)
}

func (m *FrameView) Show(index, total int, img image.Image) {
	m.mu.Lock()
	m.shown = append(m.shown, index)
	m.total = total
	m.mu.Unlock()
	if m.ShowFunc != nil {
		m.ShowFunc(index, total, img)
	}
}

// Shown returns the indices rendered so far.
func (m *FrameView) Shown() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.shown))
	copy(out, m.shown)
	return out
}

// Last returns the most recently rendered index, or -1.
func (m *FrameView) Last() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.shown) == 0 {
		return -1
	}
	return m.shown[len(m.shown)-1]
}

var _ ports.FrameView = (*FrameView)(nil)

// FileDialog is a mock implementation of ports.FileDialog.
type FileDialog struct {
	SaveTo    string
	OpenFrom  string
	Cancelled bool
	Err       error

	// Recorded calls for verification
	DefaultNames []string
}

func (m *FileDialog) SavePath(defaultName string) (string, bool, error) {
	m.DefaultNames = append(m.DefaultNames, defaultName)
	if m.Err != nil {
		return "", false, m.Err
	}
	if m.Cancelled {
		return "", false, nil
	}
	if m.SaveTo == "" {
		return defaultName, true, nil
	}
	return m.SaveTo, true, nil
}

func (m *FileDialog) OpenPath() (string, bool, error) {
	if m.Err != nil {
		return "", false, m.Err
	}
	if m.Cancelled {
		return "", false, nil
	}
	return m.OpenFrom, true, nil
}

var _ ports.FileDialog = (*FileDialog)(nil)
