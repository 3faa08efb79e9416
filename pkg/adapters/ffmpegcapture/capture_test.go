package ffmpegcapture

import (
	"errors"
	"io/fs"
	"syscall"
	"testing"

	"github.com/user/freegif/pkg/ports"
)

func TestInputFor(t *testing.T) {
	tests := []struct {
		goos   string
		format string
	}{
		{"linux", "x11grab"},
		{"darwin", "avfoundation"},
		{"windows", "gdigrab"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			in, err := inputFor(tt.goos, "src", 30)
			if err != nil {
				t.Fatalf("inputFor failed: %v", err)
			}
			if in.args["f"] != tt.format {
				t.Errorf("expected format %s, got %v", tt.format, in.args["f"])
			}
			if in.args["framerate"] != "30" {
				t.Errorf("expected framerate 30, got %v", in.args["framerate"])
			}
			if in.filename != "src" {
				t.Errorf("expected filename src, got %s", in.filename)
			}
		})
	}

	if _, err := inputFor("plan9", "src", 30); err == nil {
		t.Error("expected error for unsupported platform")
	}
}

func TestSourcesFor_Linux(t *testing.T) {
	t.Setenv("DISPLAY", ":1")

	sources := sourcesFor("linux")
	if len(sources) != 1 || sources[0].ID != ":1" {
		t.Errorf("expected DISPLAY source, got %+v", sources)
	}
}

func TestFitConstraints(t *testing.T) {
	c := ports.StreamConstraints{MinWidth: 1280, MaxWidth: 4000, MinHeight: 720, MaxHeight: 4000}

	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"within envelope", 1920, 1080, 1920, 1080},
		{"below minimum untouched", 800, 600, 800, 600},
		{"too wide", 5120, 1440, 4000, 1124},
		{"too tall", 2000, 8000, 1000, 4000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := fitConstraints(tt.w, tt.h, c)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, w, h)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	base := errors.New("exit status 1")

	if err := classify(base, "[x11grab] Cannot open display :0"); !errors.Is(err, fs.ErrPermission) {
		t.Errorf("expected permission error, got %v", err)
	}
	if err := classify(base, "Device or resource busy"); !errors.Is(err, syscall.EBUSY) {
		t.Errorf("expected busy error, got %v", err)
	}
	if err := classify(base, "something else"); err != base {
		t.Errorf("expected error passed through, got %v", err)
	}
}

func TestStop_UnknownRecording(t *testing.T) {
	s := New(Options{})
	if _, err := s.Stop(&recording{id: "missing"}); err == nil {
		t.Error("expected error for unknown recording")
	}
}
