package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/freegif/pkg/encparams"
	"github.com/user/freegif/pkg/estimate"
)

func estimateCommand() *cli.Command {
	return &cli.Command{
		Name:      "estimate",
		Usage:     l10n.T("Estimate the export size of a GIF under each preset"),
		ArgsUsage: l10n.T("GIF"),
		Flags:     encodeFlags(),
		Action:    runEstimate,
	}
}

func runEstimate(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("%s", l10n.T("a GIF path is required"))
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	current, err := cfg.EncodeParams()
	if err != nil {
		return err
	}

	a, err := wire(c, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := importPath(c, a, path); err != nil {
		return err
	}
	store := a.session.Store()

	rows := make([][]string, 0, len(encparams.Presets())+1)
	for _, preset := range encparams.Presets() {
		p, err := encparams.ForPreset(preset)
		if err != nil {
			return err
		}
		p.ResolutionScale = current.ResolutionScale
		rows = append(rows, estimateRow(string(preset), estimate.For(store, p)))
	}
	rows = append(rows, estimateRow(l10n.T("current"), estimate.For(store, current)))

	headers := []string{l10n.T("Preset"), l10n.T("Size"), l10n.T("Frames"), l10n.T("Resolution")}
	fmt.Fprintln(c.App.Writer, renderTable(headers, rows, []columnAlignment{alignLeft, alignRight, alignRight, alignRight}))
	return nil
}

func estimateRow(name string, e estimate.Estimate) []string {
	return []string{
		name,
		humanize.IBytes(uint64(e.Bytes)),
		strconv.Itoa(e.Frames),
		fmt.Sprintf("%dx%d", e.Width, e.Height),
	}
}
