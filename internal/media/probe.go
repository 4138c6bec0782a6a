package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Info is the subset of ffprobe output the engine uses.
type Info struct {
	Duration float64
	Width    int
	Height   int
	FPS      float64
}

type probeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe runs ffprobe on a media file and extracts duration, dimensions
// and frame rate.
func Probe(ctx context.Context, path string) (Info, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "stream=codec_type,width,height,avg_frame_rate",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return Info{}, ctx.Err()
		}
		return Info{}, newFFmpegError(cmd, output, err)
	}

	var parsed probeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return Info{}, fmt.Errorf("failed to parse ffprobe output for %s: %w", path, err)
	}

	info := Info{}
	if parsed.Format.Duration != "" {
		d, err := strconv.ParseFloat(parsed.Format.Duration, 64)
		if err == nil {
			info.Duration = d
		}
	}
	for _, st := range parsed.Streams {
		if st.CodecType != "video" {
			continue
		}
		info.Width = st.Width
		info.Height = st.Height
		info.FPS = parseFrameRate(st.AvgFrameRate)
		break
	}
	return info, nil
}

// parseFrameRate evaluates ffprobe's fractional rate notation, e.g.
// "30000/1001".
func parseFrameRate(rate string) float64 {
	if rate == "" || rate == "0/0" {
		return 0
	}
	parts := strings.SplitN(rate, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) == 1 {
		return num
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}
