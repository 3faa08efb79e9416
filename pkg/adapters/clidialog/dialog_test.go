package clidialog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user/freegif/pkg/mocks"
)

func TestDialog_SavePath(t *testing.T) {
	tests := []struct {
		name     string
		saveTo   string
		input    string
		existing bool
		wantPath string
		wantOK   bool
		wantErr  bool
	}{
		{name: "preset", saveTo: "out.gif", wantPath: "out.gif", wantOK: true},
		{name: "accept default", input: "\n", wantPath: "freegif-1.gif", wantOK: true},
		{name: "typed", input: " clip.gif \n", wantPath: "clip.gif", wantOK: true},
		{name: "eof cancels", input: "", wantOK: false},
		{name: "overwrite yes", input: "\ny\n", existing: true, wantPath: "freegif-1.gif", wantOK: true},
		{name: "overwrite no", input: "\nn\n", existing: true, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := mocks.NewFileSystem()
			if tt.existing {
				fs.WriteFile("freegif-1.gif", []byte("GIF"))
			}
			var out bytes.Buffer
			d := New(fs, strings.NewReader(tt.input), &out)
			d.SaveTo = tt.saveTo

			path, ok, err := d.SavePath("freegif-1.gif")
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK || path != tt.wantPath {
				t.Errorf("expected (%q, %v), got (%q, %v)", tt.wantPath, tt.wantOK, path, ok)
			}
		})
	}
}

func TestDialog_SavePathNonInteractive(t *testing.T) {
	fs := mocks.NewFileSystem()
	d := New(fs, nil, nil)

	path, ok, err := d.SavePath("freegif-2.gif")
	if err != nil || !ok || path != "freegif-2.gif" {
		t.Errorf("expected default accepted, got (%q, %v, %v)", path, ok, err)
	}

	fs.WriteFile("freegif-2.gif", []byte("GIF"))
	if _, _, err := d.SavePath("freegif-2.gif"); err == nil {
		t.Error("expected an error for an existing file without a prompt")
	}

	d.Overwrite = true
	if _, ok, err := d.SavePath("freegif-2.gif"); err != nil || !ok {
		t.Errorf("expected overwrite, got (%v, %v)", ok, err)
	}
}

func TestDialog_OpenPath(t *testing.T) {
	d := New(mocks.NewFileSystem(), strings.NewReader("in.gif\n"), &bytes.Buffer{})
	path, ok, err := d.OpenPath()
	if err != nil || !ok || path != "in.gif" {
		t.Errorf("expected in.gif, got (%q, %v, %v)", path, ok, err)
	}

	d = New(mocks.NewFileSystem(), strings.NewReader("\n"), &bytes.Buffer{})
	if _, ok, _ := d.OpenPath(); ok {
		t.Error("expected an empty answer to cancel")
	}

	d = New(mocks.NewFileSystem(), nil, nil)
	d.OpenFrom = "given.gif"
	if path, ok, _ := d.OpenPath(); !ok || path != "given.gif" {
		t.Errorf("expected given.gif, got (%q, %v)", path, ok)
	}
}
