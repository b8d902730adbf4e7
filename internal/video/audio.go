package video

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ExtractAudio pulls the audio track from a video as 16kHz mono WAV, the
// format the transcription API handles best. Returns the output path.
func ExtractAudio(ctx context.Context, videoPath, audioDir string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	outputPath := filepath.Join(audioDir, fmt.Sprintf("%s_%s.wav", base, uuid.New().String()[:8]))

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-vn",               // Drop the video stream
		"-ar", "16000",      // 16kHz sample rate
		"-ac", "1",          // Mono
		"-c:a", "pcm_s16le", // 16-bit PCM
		"-y",                // Overwrite output
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg audio extraction failed: %v\nOutput: %s", err, string(output))
	}

	return outputPath, nil
}

// ValidateVideoFormat checks if the file format is supported.
func ValidateVideoFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	supportedFormats := []string{".mp4", ".mov", ".mkv", ".webm", ".avi"}

	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}
