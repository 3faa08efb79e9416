// Package ffmpegsource decodes frames of a finished recording with ffmpeg.
package ffmpegsource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/user/freegif/pkg/adapters/mp4probe"
	"github.com/user/freegif/pkg/ports"
)

// ErrNotOpen is returned when FrameAt is called before Open.
var ErrNotOpen = errors.New("ffmpegsource: source not open")

// Source implements ports.VideoSource. Recording bytes are spilled to a
// scratch file because ffmpeg seeks far faster in files than in pipes.
type Source struct {
	ffmpegPath string
	tempDir    string
	path       string
}

// New creates a source. An empty ffmpegPath uses ffmpeg from PATH.
func New(ffmpegPath, tempDir string) *Source {
	return &Source{ffmpegPath: ffmpegPath, tempDir: tempDir}
}

// Open writes the recording to a scratch file and reads its metadata.
func (s *Source) Open(ctx context.Context, data []byte) (ports.VideoInfo, error) {
	if s.path != "" {
		s.Close()
	}

	f, err := os.CreateTemp(s.tempDir, "freegif-src-*.mp4")
	if err != nil {
		return ports.VideoInfo{}, fmt.Errorf("create scratch file: %w", err)
	}
	s.path = f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		s.Close()
		return ports.VideoInfo{}, fmt.Errorf("write scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		s.Close()
		return ports.VideoInfo{}, fmt.Errorf("close scratch file: %w", err)
	}

	if info, err := mp4probe.ProbeBytes(data); err == nil {
		return ports.VideoInfo{
			Duration: info.Duration,
			Width:    info.Width,
			Height:   info.Height,
			Codec:    string(info.Codec),
		}, nil
	}

	// Not an MP4 container, ask ffprobe instead.
	probe, err := ffmpeg.Probe(s.path)
	if err != nil {
		s.Close()
		return ports.VideoInfo{}, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbe(probe)
}

// probeResult is the subset of ffprobe's JSON we use.
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

func parseProbe(raw string) (ports.VideoInfo, error) {
	var probe probeResult
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return ports.VideoInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	for _, st := range probe.Streams {
		if st.CodecType != "video" {
			continue
		}
		info := ports.VideoInfo{
			Duration: parseDuration(st.Duration),
			Width:    st.Width,
			Height:   st.Height,
			Codec:    st.CodecName,
		}
		if math.IsNaN(info.Duration) {
			info.Duration = parseDuration(probe.Format.Duration)
		}
		return info, nil
	}

	return ports.VideoInfo{}, fmt.Errorf("no video stream found")
}

// parseDuration returns NaN for missing or "N/A" durations.
func parseDuration(s string) float64 {
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return d
}

// FrameAt decodes the frame presented at the given time.
func (s *Source) FrameAt(ctx context.Context, seconds float64) (image.Image, error) {
	if s.path == "" {
		return nil, ErrNotOpen
	}

	var stdout, stderr bytes.Buffer
	cmd := ffmpeg.Input(s.path, ffmpeg.KwArgs{"ss": strconv.FormatFloat(seconds, 'f', 3, 64)}).
		Output("pipe:1", ffmpeg.KwArgs{
			"frames:v": "1",
			"format":   "image2pipe",
			"vcodec":   "png",
		}).
		WithOutput(&stdout).
		WithErrorOutput(&stderr)
	if s.ffmpegPath != "" {
		cmd = cmd.SetFfmpegPath(s.ffmpegPath)
	}
	cmd.Context = ctx

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("seek to %.3fs: %w", seconds, err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("no frame at %.3fs", seconds)
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decode frame at %.3fs: %w", seconds, err)
	}
	return img, nil
}

// Close removes the scratch file.
func (s *Source) Close() error {
	if s.path == "" {
		return nil
	}
	err := os.Remove(s.path)
	s.path = ""
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

var _ ports.VideoSource = (*Source)(nil)
