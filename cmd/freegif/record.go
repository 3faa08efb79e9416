package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/freegif/pkg/stages/capture"
	"github.com/user/freegif/pkg/stages/selector"
	"github.com/user/freegif/pkg/summarizer"
)

func recordCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "region", Aliases: []string{"r"}, Category: catCapture, Required: true,
			Usage: l10n.T("Region to capture as X,Y,W,H in logical pixels")},
		&cli.DurationFlag{Name: "duration", Aliases: []string{"t"}, Category: catCapture,
			Usage: l10n.T("Stop recording after this long (default: wait for Enter)")},
		&cli.IntFlag{Name: "fps", Category: catCapture,
			Usage: l10n.T("Frames sampled per second of recording")},
		&cli.IntFlag{Name: "max-frames", Category: catCapture,
			Usage: l10n.T("Maximum number of sampled frames")},
		&cli.BoolFlag{Name: "fixed-delay", Category: catCapture,
			Usage: l10n.T("Use a fixed 100 ms frame delay instead of 1000/fps")},
		&cli.StringFlag{Name: "codec", Category: catCapture,
			Usage: l10n.T("Recording codec passed to ffmpeg")},
		&cli.StringFlag{Name: "ffmpeg", Category: catCapture,
			Usage: l10n.T("Path to the ffmpeg binary")},
		&cli.StringFlag{Name: "display", Category: catCapture,
			Usage: l10n.T("Logical display size as WxH")},
		&cli.Float64Flag{Name: "display-scale", Category: catCapture,
			Usage: l10n.T("Display scale factor (device pixels per logical pixel)")},
		&cli.BoolFlag{Name: "preview", Category: catCapture,
			Usage: l10n.T("Show a preview snapshot before recording")},
	}
	flags = append(flags, outputFlags()...)
	flags = append(flags, encodeFlags()...)
	flags = append(flags, editFlags()...)
	flags = append(flags, debugFlags()...)

	return &cli.Command{
		Name:   "record",
		Usage:  l10n.T("Record a screen region and export it as a GIF"),
		Flags:  flags,
		Action: runRecord,
	}
}

func runRecord(c *cli.Context) error {
	x, y, w, h, err := parseRegion(c.String("region"))
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	a, err := wire(c, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := c.Context
	if _, err := a.session.Select(ctx, selector.Drag(x, y, w, h)); err != nil {
		return err
	}
	if err := a.session.StartPreview(ctx); err != nil {
		return err
	}

	if c.Bool("preview") {
		img, err := a.session.Snapshot(ctx)
		if err != nil {
			a.log.Warn("Failed to grab preview: %s", err)
		} else {
			a.view.Show(0, 1, img)
		}
	}

	if err := a.session.StartRecording(ctx); err != nil {
		return err
	}
	waitRecording(ctx, a, c.Duration("duration"), os.Stdin)
	if err := ctx.Err(); err != nil {
		return err
	}

	progress, done := trackProgress(a.quiet)
	_, err = a.session.StopRecording(ctx, progress)
	done()
	if err != nil {
		return err
	}

	if err := a.edit(c); err != nil {
		return err
	}
	return a.export(c, func(b *summarizer.Builder) { b.WithCapture() })
}

// waitRecording shows the elapsed time until the duration passes or ctx is
// cancelled. A zero duration waits for Enter instead.
func waitRecording(ctx context.Context, a *app, duration time.Duration, in io.Reader) {
	out := io.Writer(os.Stderr)
	if a.quiet {
		out = io.Discard
	}
	// Stdin stays untouched with a duration so the save prompt can read it.
	var (
		enter    chan struct{}
		deadline <-chan time.Time
	)
	if duration > 0 {
		fmt.Fprintln(out, l10n.F("Recording for %s.", duration))
		timer := time.NewTimer(duration)
		defer timer.Stop()
		deadline = timer.C
	} else {
		fmt.Fprintln(out, l10n.T("Recording. Press Enter to stop."))
		enter = make(chan struct{})
		go func() {
			_, _ = bufio.NewReader(in).ReadString('\n')
			close(enter)
		}()
	}

	spinner := newSpinner(out, capture.FormatElapsed(0))
	defer func() { _ = spinner.Finish() }()

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-enter:
			return
		case <-deadline:
			return
		case <-tick.C:
			spinner.Describe(capture.FormatElapsed(a.session.Elapsed()))
			_ = spinner.Add(1)
		}
	}
}
