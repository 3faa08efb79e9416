package main

import (
	"errors"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/freegif/pkg/pipeline"
	"github.com/user/freegif/pkg/summarizer"
)

func importCommand() *cli.Command {
	var flags []cli.Flag
	flags = append(flags, outputFlags()...)
	flags = append(flags, encodeFlags()...)
	flags = append(flags, editFlags()...)
	flags = append(flags, debugFlags()...)

	return &cli.Command{
		Name:      "import",
		Usage:     l10n.T("Import an animated GIF, edit it and export it again"),
		ArgsUsage: l10n.T("[GIF]"),
		Flags:     flags,
		Action:    runImport,
	}
}

func runImport(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	a, err := wire(c, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := importPath(c, a, c.Args().First())
	if err != nil {
		if errors.Is(err, pipeline.ErrCancelled) {
			a.log.Warn("Import cancelled")
			return nil
		}
		return err
	}

	if err := a.edit(c); err != nil {
		return err
	}
	return a.export(c, func(b *summarizer.Builder) { b.WithImport(result.Path) })
}

// importPath loads path, or asks for one when it is empty.
func importPath(c *cli.Context, a *app, path string) (pipeline.ImportResult, error) {
	progress, done := trackProgress(a.quiet)
	result, err := a.session.Import(c.Context, path, progress)
	done()
	return result, err
}
