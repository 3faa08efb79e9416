// Package mp4probe reads container metadata from MP4 recordings.
package mp4probe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Codec represents a video codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecUnknown Codec = "unknown"
)

// ErrNoVideoTrack is returned when the container has no video track.
var ErrNoVideoTrack = errors.New("mp4probe: no video track found")

// Info is the metadata of a recording's video track.
type Info struct {
	// Duration in seconds. NaN when the container carries no usable duration,
	// which is common for live fragmented recordings.
	Duration float64
	Width    int
	Height   int
	Codec    Codec
}

// HasDuration reports whether Duration is finite and positive.
func (i Info) HasDuration() bool {
	return !math.IsNaN(i.Duration) && !math.IsInf(i.Duration, 0) && i.Duration > 0
}

// ProbeFile reads metadata from an MP4 file.
func ProbeFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{Duration: math.NaN(), Codec: CodecUnknown}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return ProbeReader(f)
}

// ProbeBytes reads metadata from MP4 data bytes.
func ProbeBytes(data []byte) (Info, error) {
	return ProbeReader(bytes.NewReader(data))
}

// ProbeReader reads metadata from an io.ReadSeeker and rewinds it.
func ProbeReader(reader io.ReadSeeker) (Info, error) {
	info := Info{Duration: math.NaN(), Codec: CodecUnknown}

	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return info, fmt.Errorf("decode mp4: %w", err)
	}

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return info, fmt.Errorf("seek: %w", err)
	}

	moov := mp4File.Moov
	if mp4File.IsFragmented() && mp4File.Init != nil && mp4File.Init.Moov != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return info, ErrNoVideoTrack
	}

	trak := videoTrack(moov)
	if trak == nil {
		return info, ErrNoVideoTrack
	}

	info.Codec, info.Width, info.Height = sampleEntry(trak)
	info.Duration = duration(mp4File, moov, trak)

	return info, nil
}

func videoTrack(moov *mp4.MoovBox) *mp4.TrakBox {
	for _, trak := range moov.Traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			return trak
		}
	}
	return nil
}

func sampleEntry(trak *mp4.TrakBox) (Codec, int, int) {
	width := int(trak.Tkhd.Width >> 16)
	height := int(trak.Tkhd.Height >> 16)

	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return CodecUnknown, width, height
	}

	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		codec := CodecUnknown
		switch child.Type() {
		case "avc1", "avc3":
			codec = CodecH264
		case "hvc1", "hev1":
			codec = CodecHEVC
		case "av01":
			codec = CodecAV1
		default:
			continue
		}
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok && vse.Width > 0 && vse.Height > 0 {
			width, height = int(vse.Width), int(vse.Height)
		}
		return codec, width, height
	}

	return CodecUnknown, width, height
}

// duration prefers the movie header, then the movie extends header, then the
// end of the last video fragment.
func duration(f *mp4.File, moov *mp4.MoovBox, trak *mp4.TrakBox) float64 {
	if moov.Mvhd != nil && moov.Mvhd.Timescale > 0 {
		if moov.Mvhd.Duration > 0 {
			return float64(moov.Mvhd.Duration) / float64(moov.Mvhd.Timescale)
		}
		if moov.Mvex != nil && moov.Mvex.Mehd != nil && moov.Mvex.Mehd.FragmentDuration > 0 {
			return float64(moov.Mvex.Mehd.FragmentDuration) / float64(moov.Mvhd.Timescale)
		}
	}

	if !f.IsFragmented() || trak.Mdia.Mdhd == nil || trak.Mdia.Mdhd.Timescale == 0 {
		return math.NaN()
	}

	trackID := trak.Tkhd.TrackID
	var trex *mp4.TrexBox
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var end uint64
	for _, seg := range f.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil || len(frag.Moof.Trafs) == 0 {
				continue
			}
			traf := frag.Moof.Trafs[0]
			if traf.Tfhd == nil || traf.Tfhd.TrackID != trackID {
				continue
			}
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return math.NaN()
			}
			for _, s := range samples {
				if t := s.DecodeTime + uint64(s.Dur); t > end {
					end = t
				}
			}
		}
	}

	if end == 0 {
		return math.NaN()
	}
	return float64(end) / float64(trak.Mdia.Mdhd.Timescale)
}
