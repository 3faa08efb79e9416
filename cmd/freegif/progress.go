package main

import (
	"io"
	"os"
	"sync"

	"github.com/ideamans/go-l10n"
	"github.com/schollz/progressbar/v3"

	"github.com/user/freegif/pkg/pipeline"
)

// stageLabels names each progress stage on the bar.
var stageLabels = map[string]string{
	"sample": "Extracting frames",
	"import": "Importing frames",
	"frames": "Encoding frames",
	"encode": "Writing GIF",
}

// trackProgress returns a progress channel drawn as a bar on stderr and a
// function that waits for the bar to finish. The channel is closed by done.
func trackProgress(quiet bool) (chan<- pipeline.Progress, func()) {
	var out io.Writer = os.Stderr
	if quiet {
		out = io.Discard
	}
	return drawProgress(out)
}

func drawProgress(out io.Writer) (chan<- pipeline.Progress, func()) {
	ch := make(chan pipeline.Progress, 16)
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		var (
			bar   *progressbar.ProgressBar
			stage string
		)
		for p := range ch {
			if p.Total <= 0 {
				continue
			}
			if bar == nil || p.Stage != stage {
				if bar != nil {
					_ = bar.Finish()
				}
				stage = p.Stage
				bar = newBar(out, p.Total, stage)
			}
			if p.Total != int(bar.GetMax()) {
				bar.ChangeMax(p.Total)
			}
			_ = bar.Set(p.Current)
		}
		if bar != nil {
			_ = bar.Finish()
		}
	}()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			close(ch)
			wg.Wait()
		})
	}
}

func newBar(out io.Writer, total int, stage string) *progressbar.ProgressBar {
	label, ok := stageLabels[stage]
	if !ok {
		label = stage
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(l10n.T(label)),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// newSpinner returns an indeterminate bar for the recording timer.
func newSpinner(out io.Writer, label string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}
