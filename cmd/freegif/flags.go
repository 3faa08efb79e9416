package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/freegif/pkg/config"
	"github.com/user/freegif/pkg/pipeline"
)

// Flag categories
const (
	catOutput  = "Output"
	catEncode  = "Encoding"
	catEdit    = "Editing"
	catCapture = "Capture"
	catDebug   = "Debug"
)

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Category: catOutput,
			Usage: l10n.T("Output GIF path (prompted when omitted)")},
		&cli.BoolFlag{Name: "overwrite", Aliases: []string{"y"}, Category: catOutput,
			Usage: l10n.T("Overwrite an existing output file")},
		&cli.BoolFlag{Name: "summary", Category: catOutput,
			Usage: l10n.T("Write a Markdown export summary next to the GIF")},
	}
}

func encodeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Category: catEncode,
			Usage: l10n.T("Quality preset (high, medium, low)")},
		&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Category: catEncode,
			Usage: l10n.T("Quality percent (0-100, overrides preset)")},
		&cli.StringFlag{Name: "dither", Category: catEncode,
			Usage: l10n.T("Dither mode (off, FloydSteinberg, FalseFloydSteinberg)")},
		&cli.BoolFlag{Name: "serpentine", Category: catEncode,
			Usage: l10n.T("Alternate scan direction while dithering")},
		&cli.StringFlag{Name: "palette", Category: catEncode,
			Usage: l10n.T("Palette mode (local, global)")},
		&cli.Float64Flag{Name: "scale", Category: catEncode,
			Usage: l10n.T("Resolution scale (0-1]")},
		&cli.IntFlag{Name: "workers", Category: catEncode,
			Usage: l10n.T("Parallel palette workers")},
	}
}

func editFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "trim", Category: catEdit,
			Usage: l10n.T("Keep frames START-END (1-based, inclusive)")},
		&cli.IntFlag{Name: "delay", Category: catEdit,
			Usage: l10n.T("Frame delay in milliseconds")},
		&cli.BoolFlag{Name: "play", Category: catEdit,
			Usage: l10n.T("Play the frames in the terminal before exporting")},
		&cli.Float64Flag{Name: "speed", Category: catEdit,
			Usage: l10n.T("Playback speed multiplier")},
	}
}

func debugFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Category: catDebug,
			Usage: l10n.T("Enable debug output")},
		&cli.StringFlag{Name: "debug-dir", Category: catDebug,
			Usage: l10n.T("Directory for debug output")},
	}
}

// loadConfig reads the config file and applies every flag the user set.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	if c.IsSet("preset") {
		cfg.Preset = c.String("preset")
	}
	if c.IsSet("quality") {
		q := c.Int("quality")
		cfg.Quality = &q
	}
	if c.IsSet("dither") {
		d := c.String("dither")
		cfg.Dither = &d
	}
	if c.IsSet("serpentine") {
		s := c.Bool("serpentine")
		cfg.Serpentine = &s
	}
	if c.IsSet("palette") {
		p := c.String("palette")
		cfg.Palette = &p
	}
	if c.IsSet("scale") {
		s := c.Float64("scale")
		cfg.ResolutionScale = &s
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("speed") {
		cfg.Speed = c.Float64("speed")
	}

	if c.IsSet("fps") {
		cfg.FPS = c.Int("fps")
	}
	if c.IsSet("max-frames") {
		cfg.MaxFrames = c.Int("max-frames")
	}
	if c.IsSet("fixed-delay") && c.Bool("fixed-delay") {
		cfg.DelayMode = string(pipeline.DelayFixed)
	}
	if c.IsSet("codec") {
		cfg.Codec = c.String("codec")
	}
	if c.IsSet("ffmpeg") {
		cfg.FfmpegPath = c.String("ffmpeg")
	}
	if c.IsSet("display") {
		w, h, err := parseSize(c.String("display"))
		if err != nil {
			return cfg, err
		}
		cfg.Display.Width, cfg.Display.Height = w, h
	}
	if c.IsSet("display-scale") {
		cfg.Display.Scale = c.Float64("display-scale")
	}

	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}

	return cfg, cfg.Validate()
}

// parseInts splits s on sep into exactly n integers.
func parseInts(s, sep string, n int) ([]int, error) {
	parts := strings.Split(s, sep)
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d values separated by %q, got %q", n, sep, s)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid number %q in %q", p, s)
		}
		out[i] = v
	}
	return out, nil
}

// parseRegion parses "X,Y,W,H" in logical display pixels.
func parseRegion(s string) (x, y, w, h int, err error) {
	v, err := parseInts(s, ",", 4)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if v[2] <= 0 || v[3] <= 0 {
		return 0, 0, 0, 0, fmt.Errorf("region size must be positive, got %dx%d", v[2], v[3])
	}
	return v[0], v[1], v[2], v[3], nil
}

// parseSize parses "WxH".
func parseSize(s string) (int, int, error) {
	v, err := parseInts(strings.ToLower(s), "x", 2)
	if err != nil {
		return 0, 0, err
	}
	return v[0], v[1], nil
}

// parseTrim parses a 1-based inclusive "START-END" range into 0-based indices.
func parseTrim(s string) (start, end int, err error) {
	v, err := parseInts(s, "-", 2)
	if err != nil {
		return 0, 0, err
	}
	if v[0] < 1 || v[1] < v[0] {
		return 0, 0, fmt.Errorf("invalid frame range %q", s)
	}
	return v[0] - 1, v[1] - 1, nil
}
