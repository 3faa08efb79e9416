package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/user/freegif/pkg/adapters/clidialog"
	"github.com/user/freegif/pkg/adapters/ffmpegcapture"
	"github.com/user/freegif/pkg/adapters/ffmpegsource"
	"github.com/user/freegif/pkg/adapters/filesink"
	"github.com/user/freegif/pkg/adapters/ggrenderer"
	"github.com/user/freegif/pkg/adapters/gifdecoder"
	"github.com/user/freegif/pkg/adapters/gifencoder"
	"github.com/user/freegif/pkg/adapters/nullsink"
	"github.com/user/freegif/pkg/adapters/osfilesystem"
	"github.com/user/freegif/pkg/adapters/termview"
	"github.com/user/freegif/pkg/config"
	"github.com/user/freegif/pkg/pipeline"
	"github.com/user/freegif/pkg/ports"
	"github.com/user/freegif/pkg/session"
	"github.com/user/freegif/pkg/stages/capture"
	"github.com/user/freegif/pkg/stages/encode"
	"github.com/user/freegif/pkg/stages/importer"
	"github.com/user/freegif/pkg/stages/sample"
	"github.com/user/freegif/pkg/stages/selector"
	"github.com/user/freegif/pkg/summarizer"
)

// app holds the adapters and the session of one command run.
type app struct {
	cfg      config.Config
	log      ports.Logger
	fs       *osfilesystem.FileSystem
	renderer *ggrenderer.Renderer
	view     *termview.View
	dialog   *clidialog.Dialog
	session  *session.Session
	quiet    bool
}

// wire builds every adapter and stage for cfg.
func wire(c *cli.Context, cfg config.Config) (*app, error) {
	log := newLogger(c, cfg.Level())

	fs := osfilesystem.New()
	renderer := ggrenderer.New()
	view := termview.New(renderer, 60, 20)

	dialog := clidialog.New(fs, os.Stdin, os.Stderr)
	dialog.SaveTo = c.String("output")
	dialog.Overwrite = c.Bool("overwrite")

	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs, renderer)
	} else {
		sink = nullsink.New()
	}

	capturer := ffmpegcapture.New(ffmpegcapture.Options{FfmpegPath: cfg.FfmpegPath})
	stages := session.Stages{
		Select: selector.NewStage(),
		Sample: sample.NewStage(ffmpegsource.New(cfg.FfmpegPath, ""), renderer, sink, log),
		Encode: encode.NewStage(gifencoder.New(), renderer, fs, sink, log),
		Import: importer.NewStage(gifdecoder.New(), renderer, fs, log),
	}
	captureSession := capture.New(capturer, capturer, sink, log, cfg.Codec)

	sc, err := cfg.ToSessionConfig()
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      log,
		fs:       fs,
		renderer: renderer,
		view:     view,
		dialog:   dialog,
		session:  session.New(stages, captureSession, renderer, view, dialog, log, sc),
		quiet:    c.Bool("quiet"),
	}, nil
}

// edit applies the editing flags to the current frames.
func (a *app) edit(c *cli.Context) error {
	if s := c.String("trim"); s != "" {
		start, end, err := parseTrim(s)
		if err != nil {
			return err
		}
		if err := a.session.Trim(start, end); err != nil {
			return err
		}
	}
	if c.IsSet("delay") {
		if err := a.session.SetDelay(c.Int("delay")); err != nil {
			return err
		}
	}
	if c.Bool("play") {
		a.play(c.Context)
	}

	est, err := a.session.Estimate()
	if err != nil {
		return err
	}
	a.log.Info("Estimated size: %s", est)
	return nil
}

// play runs one loop of playback in the terminal.
func (a *app) play(ctx context.Context) {
	pb := a.session.Playback()
	store := a.session.Store()
	if store == nil {
		return
	}

	pb.SetLoop(false)
	pb.Seek(0)
	pb.Play()
	defer pb.Stop()

	loop := time.Duration(store.Len()) * pb.Interval()
	select {
	case <-ctx.Done():
	case <-time.After(loop + pb.Interval()):
	}
}

// export encodes the frames and writes the optional summary.
func (a *app) export(c *cli.Context, source func(*summarizer.Builder)) error {
	est, _ := a.session.Estimate()

	progress, done := trackProgress(a.quiet)
	result, err := a.session.Export(c.Context, "", progress)
	done()
	if err != nil {
		if errors.Is(err, pipeline.ErrCancelled) {
			a.log.Warn("Export cancelled")
			return nil
		}
		return err
	}

	b := summarizer.NewBuilder().WithParams(a.session.Params()).WithEstimate(est).WithResult(result)
	source(b)
	summary := b.Build()

	if !a.quiet {
		fmt.Fprintln(c.App.Writer, summarizer.NewTableFormatter().Format(summary))
	}

	if c.Bool("summary") {
		path := summarizer.PathFor(result.Path)
		w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(), a.fs)
		if err := w.Write(path, summary); err != nil {
			a.log.Error("Failed to write summary: %s", err)
		} else {
			a.log.Info("Summary saved to %s", path)
		}
	}
	return nil
}

// close releases the session.
func (a *app) close() {
	if err := a.session.Close(); err != nil {
		a.log.Warn("Failed to release capture: %s", err)
	}
}
