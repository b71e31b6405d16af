// Package probe extracts media metadata using ffprobe.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Fr0z3nRebel/video-toolbox/internal/errors"
)

// MediaMetadata contains the basic properties of a media source.
// Width and Height are 0 for audio-only sources.
type MediaMetadata struct {
	DurationSeconds float64
	Width           int
	Height          int
	HasVideo        bool
	HasAudio        bool
}

// Prober runs ffprobe against local media files.
type Prober struct {
	binary string
}

// New creates a Prober using the given ffprobe binary name or path.
func New(binary string) *Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary}
}

// ffprobeOutput represents the JSON output from ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
}

// Probe returns metadata for the given file once the container has been
// parsed. No timeout is imposed here: a hung probe blocks its caller for
// as long as the passed context allows.
func (p *Prober) Probe(ctx context.Context, inputPath string) (*MediaMetadata, error) {
	if _, err := exec.LookPath(p.binary); err != nil {
		return nil, errors.NewEnvironmentUnsupportedError(p.binary, err)
	}

	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewCancelledError()
		}
		return nil, errors.NewMetadataLoadError(inputPath, err)
	}

	meta, err := parseOutput(output)
	if err != nil {
		return nil, errors.NewMetadataLoadError(inputPath, err)
	}
	return meta, nil
}

// parseOutput decodes ffprobe JSON into MediaMetadata.
func parseOutput(data []byte) (*MediaMetadata, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.NewJSONParseError("ffprobe output", err)
	}

	meta := &MediaMetadata{}

	if out.Format.Duration != "" {
		if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
			meta.DurationSeconds = d
		}
	}

	for _, stream := range out.Streams {
		switch strings.ToLower(stream.CodecType) {
		case "video":
			if !meta.HasVideo {
				meta.Width = stream.Width
				meta.Height = stream.Height
			}
			meta.HasVideo = true
		case "audio":
			meta.HasAudio = true
		}

		// Some containers only carry duration on the stream.
		if meta.DurationSeconds == 0 && stream.Duration != "" {
			if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
				meta.DurationSeconds = d
			}
		}
	}

	if !meta.HasVideo && !meta.HasAudio {
		return nil, errors.NewMetadataLoadError("input", nil)
	}

	return meta, nil
}
