package video

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/snifferhq/sniffer/internal/framesync"
	"github.com/snifferhq/sniffer/internal/types"
)

// Sampler decides which instants of a video get sampled for frames.
type Sampler interface {
	Name() string
	Plan(durationSeconds, fps float64) ([]framesync.FrameTimestamp, error)
}

// PositionSampler samples one instant per whole second at a configured
// sub-second position.
type PositionSampler struct {
	Position framesync.Position
	Planner  *framesync.Planner
}

func (s PositionSampler) Name() string { return string(s.Position) }

func (s PositionSampler) Plan(durationSeconds, fps float64) ([]framesync.FrameTimestamp, error) {
	return s.Planner.Plan(durationSeconds, fps, s.Position)
}

// ExhaustiveSampler samples every frame period. Large output; used only
// when a caller explicitly asks for all frames.
type ExhaustiveSampler struct{}

func (ExhaustiveSampler) Name() string { return "all" }

func (ExhaustiveSampler) Plan(durationSeconds, fps float64) ([]framesync.FrameTimestamp, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("%w: fps is %v, cannot plan timestamps", framesync.ErrInvalidVideo, fps)
	}

	total := int(math.Ceil(durationSeconds * fps))
	timestamps := make([]framesync.FrameTimestamp, 0, total)
	for i := 0; i < total; i++ {
		ms := int(float64(i) * 1000 / fps)
		timestamps = append(timestamps, framesync.FrameTimestamp{Second: ms / 1000, Ms: ms})
	}
	return timestamps, nil
}

// FrameExtractor grabs frames from videos with ffmpeg and writes them
// under framesDir/<video name>/.
type FrameExtractor struct {
	framesDir string
}

// NewFrameExtractor creates a frame extractor rooted at framesDir.
func NewFrameExtractor(framesDir string) *FrameExtractor {
	return &FrameExtractor{framesDir: framesDir}
}

// Extract grabs one frame per planned timestamp. Seconds whose grab fails
// are logged and skipped; the returned records cover only the frames that
// landed on disk.
func (fe *FrameExtractor) Extract(ctx context.Context, videoPath string, sampler Sampler, durationSeconds, fps float64) ([]types.FrameRecord, error) {
	timestamps, err := sampler.Plan(durationSeconds, fps)
	if err != nil {
		return nil, err
	}

	outputDir := fe.outputDir(videoPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create frames directory: %w", err)
	}

	log.Printf("Extracting %s frames from %s (%d targets)", sampler.Name(), filepath.Base(videoPath), len(timestamps))

	var records []types.FrameRecord
	for _, ts := range timestamps {
		framePath := filepath.Join(outputDir, frameFilename(sampler, ts))
		if err := fe.grabFrame(ctx, videoPath, ts.Ms, framePath); err != nil {
			log.Printf("WARNING: failed to grab frame for second %d at %dms: %v", ts.Second, ts.Ms, err)
			continue
		}
		records = append(records, types.FrameRecord{Second: ts.Second, Ms: ts.Ms, Path: framePath})
	}

	log.Printf("Extracted %d/%d frames from %s", len(records), len(timestamps), filepath.Base(videoPath))
	return records, nil
}

// ExtractBySecond runs a positioned extraction and keys the result by
// second, the shape the sync table builder consumes.
func (fe *FrameExtractor) ExtractBySecond(ctx context.Context, videoPath string, sampler PositionSampler, durationSeconds, fps float64) (map[int]string, error) {
	records, err := fe.Extract(ctx, videoPath, sampler, durationSeconds, fps)
	if err != nil {
		return nil, err
	}
	return BySecond(records), nil
}

// BySecond indexes frame records by the second they sample. Seconds are
// unique within one positioned extraction.
func BySecond(records []types.FrameRecord) map[int]string {
	frames := make(map[int]string, len(records))
	for _, record := range records {
		frames[record.Second] = record.Path
	}
	return frames
}

// grabFrame seeks to a millisecond offset and writes a single PNG.
func (fe *FrameExtractor) grabFrame(ctx context.Context, videoPath string, ms int, outputPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", fmt.Sprintf("%.3f", float64(ms)/1000),
		"-i", videoPath,
		"-frames:v", "1",
		"-y",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %v\nOutput: %s", err, string(output))
	}
	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("ffmpeg produced no frame at %dms", ms)
	}
	return nil
}

func (fe *FrameExtractor) outputDir(videoPath string) string {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	return filepath.Join(fe.framesDir, base)
}

// frameFilename names a frame after its sampling instant. Positioned
// samples carry the second and offset; exhaustive samples carry the
// zero-padded timestamp.
func frameFilename(sampler Sampler, ts framesync.FrameTimestamp) string {
	if _, ok := sampler.(ExhaustiveSampler); ok {
		return fmt.Sprintf("frame_ts_%08d.png", ts.Ms)
	}
	return fmt.Sprintf("frame_s%d_%dms.png", ts.Second, ts.Ms)
}
