package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/snifferhq/sniffer/internal/types"
)

// ffprobeOutput matches the fields we need from
// `ffprobe -print_format json -show_format -show_streams`.
type ffprobeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		NbFrames     string `json:"nb_frames"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeMetadata extracts video metadata with ffprobe. Callers treat a
// probe failure as a degraded run, not a fatal one.
func ProbeMetadata(ctx context.Context, videoPath string) (*types.VideoMetadata, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed for %s: %w", videoPath, err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	metadata := &types.VideoMetadata{}
	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		metadata.Width = stream.Width
		metadata.Height = stream.Height
		metadata.Resolution = fmt.Sprintf("%dx%d", stream.Width, stream.Height)
		metadata.Codec = strings.ToUpper(stream.CodecName)
		metadata.FPS = parseFrameRate(stream.AvgFrameRate)
		if metadata.FPS == 0 {
			metadata.FPS = parseFrameRate(stream.RFrameRate)
		}
		metadata.FrameCount, _ = strconv.Atoi(stream.NbFrames)
		break
	}

	if metadata.Resolution == "" {
		return nil, fmt.Errorf("no video stream found in %s", videoPath)
	}

	metadata.Duration, _ = strconv.ParseFloat(probe.Format.Duration, 64)
	if metadata.FrameCount == 0 && metadata.FPS > 0 {
		metadata.FrameCount = int(metadata.Duration * metadata.FPS)
	}

	if fi, err := os.Stat(videoPath); err == nil {
		metadata.FileSize = fi.Size()
	}

	return metadata, nil
}

// ProbeTiming reads only duration and fps, the two values frame planning
// needs. Kept separate from ProbeMetadata so a degraded full probe never
// blocks extraction; only a video with no usable fps is truly unprocessable.
func ProbeTiming(ctx context.Context, videoPath string) (duration, fps float64, err error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_entries", "format=duration:stream=codec_type,r_frame_rate,avg_frame_rate",
		videoPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe failed for %s: %w", videoPath, err)
	}

	return parseTiming(output)
}

func parseTiming(output []byte) (float64, float64, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return 0, 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var fps float64
	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		fps = parseFrameRate(stream.AvgFrameRate)
		if fps == 0 {
			fps = parseFrameRate(stream.RFrameRate)
		}
		break
	}

	duration, _ := strconv.ParseFloat(probe.Format.Duration, 64)
	return duration, fps, nil
}

// parseFrameRate converts ffprobe's "30000/1001" style rational to a float.
func parseFrameRate(rate string) float64 {
	num, den, found := strings.Cut(rate, "/")
	if !found {
		f, _ := strconv.ParseFloat(rate, 64)
		return f
	}

	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
