package main

import (
	"fmt"
	"strconv"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/freegif/pkg/encparams"
)

func presetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "presets",
		Usage: l10n.T("List the quality presets"),
		Action: func(c *cli.Context) error {
			out, err := presetsTable()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, out)
			return nil
		},
	}
}

func presetsTable() (string, error) {
	var rows [][]string
	for _, preset := range encparams.Presets() {
		p, err := encparams.ForPreset(preset)
		if err != nil {
			return "", err
		}
		rows = append(rows, []string{
			string(preset),
			strconv.Itoa(p.QualityPercent) + "%",
			string(p.Dither),
			string(p.Palette),
		})
	}
	headers := []string{l10n.T("Preset"), l10n.T("Quality"), l10n.T("Dither"), l10n.T("Palette")}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignRight}), nil
}
