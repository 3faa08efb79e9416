// Package clidialog implements ports.FileDialog with command-line flags
// and an optional line prompt.
package clidialog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/user/freegif/pkg/ports"
)

// Dialog resolves paths from preset values first and falls back to
// prompting on in. Without a prompt reader the default name is accepted.
type Dialog struct {
	// SaveTo and OpenFrom skip the prompt when set.
	SaveTo   string
	OpenFrom string
	// Overwrite accepts an existing destination without asking.
	Overwrite bool

	fs  ports.FileSystem
	in  *bufio.Reader
	out io.Writer
}

// New creates a dialog. in may be nil for non-interactive use.
func New(fs ports.FileSystem, in io.Reader, out io.Writer) *Dialog {
	d := &Dialog{fs: fs, out: out}
	if in != nil {
		d.in = bufio.NewReader(in)
	}
	return d
}

// SavePath implements ports.FileDialog.
func (d *Dialog) SavePath(defaultName string) (string, bool, error) {
	path := d.SaveTo
	if path == "" {
		line, ok, err := d.prompt(fmt.Sprintf("Save as [%s]: ", defaultName))
		if err != nil || !ok {
			return "", ok, err
		}
		path = line
		if path == "" {
			path = defaultName
		}
	}

	if d.Overwrite {
		return path, true, nil
	}
	exists, err := d.fs.Exists(path)
	if err != nil {
		return "", false, fmt.Errorf("stat %s: %w", path, err)
	}
	if !exists {
		return path, true, nil
	}
	if d.in == nil {
		return "", false, fmt.Errorf("%s already exists", path)
	}

	answer, ok, err := d.prompt(fmt.Sprintf("%s exists, overwrite? [y/N]: ", path))
	if err != nil || !ok {
		return "", ok, err
	}
	if strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes") {
		return path, true, nil
	}
	return "", false, nil
}

// OpenPath implements ports.FileDialog.
func (d *Dialog) OpenPath() (string, bool, error) {
	if d.OpenFrom != "" {
		return d.OpenFrom, true, nil
	}
	line, ok, err := d.prompt("GIF to import: ")
	if err != nil || !ok || line == "" {
		return "", false, err
	}
	return line, true, nil
}

// prompt reads one trimmed line. ok is false on end of input, which
// counts as a cancel.
func (d *Dialog) prompt(question string) (string, bool, error) {
	if d.in == nil {
		return "", true, nil
	}
	if d.out != nil {
		fmt.Fprint(d.out, question)
	}

	line, err := d.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line == "" {
			return "", false, nil
		}
		if !errors.Is(err, io.EOF) {
			return "", false, fmt.Errorf("read answer: %w", err)
		}
	}
	return strings.TrimSpace(line), true, nil
}

var _ ports.FileDialog = (*Dialog)(nil)
