package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/snifferhq/sniffer/internal/types"
)

const (
	generatorName   = "sniffer"
	documentVersion = "1.0"

	// previewLimit caps the transcript text preview length.
	previewLimit = 100

	// significantGap is the silence length between consecutive words that
	// counts as a real pause.
	significantGap = 0.5
)

// Assemble combines video metadata, the sync table, its statistics, and an
// optional transcript into one result document. Pure transformation; the
// caller persists the document. A nil metadata means the probe failed, in
// which case the derived video fields are omitted rather than failing the
// whole assembly.
func Assemble(
	videoPath string,
	metadata *types.VideoMetadata,
	stats types.SyncStatistics,
	table []types.SyncRow,
	transcript *types.TranscriptionResult,
) types.ResultDocument {
	doc := types.ResultDocument{
		VideoInfo:  buildVideoInfo(videoPath, metadata),
		Statistics: stats,
		Mapping:    table,
		Metadata: types.DocumentMetadata{
			GeneratedBy: generatorName,
			Version:     documentVersion,
			Timestamp:   time.Now(),
		},
	}

	if transcript != nil && transcript.Text != "" && len(transcript.Words) > 0 {
		doc.TranscriptOverview = buildOverview(transcript)
	}

	return doc
}

func buildVideoInfo(videoPath string, metadata *types.VideoMetadata) types.VideoInfo {
	info := types.VideoInfo{
		VideoFile: filepath.Base(videoPath),
		VideoPath: videoPath,
		FileSize:  FormatFileSize(statSize(videoPath)),
	}

	if metadata != nil {
		info.Duration = fmt.Sprintf("%.2fs", metadata.Duration)
		info.Resolution = metadata.Resolution
		info.FPS = metadata.FPS
		info.TotalFrames = metadata.FrameCount
	}

	return info
}

func statSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

func buildOverview(transcript *types.TranscriptionResult) *types.TranscriptOverview {
	// Whisper output is multilingual; the preview limit and character
	// count are in runes, not bytes.
	runes := []rune(transcript.Text)
	preview := transcript.Text
	if len(runes) > previewLimit {
		preview = string(runes[:previewLimit]) + "..."
	}

	return &types.TranscriptOverview{
		TotalWords:      len(transcript.Words),
		TotalCharacters: len(runes),
		TextPreview:     preview,
		SpeechAnalysis:  AnalyzeSpeechPatterns(transcript.Words),
	}
}

// AnalyzeSpeechPatterns reports gaps between consecutive words and the
// overall speech span. Returns nil for an empty word list.
func AnalyzeSpeechPatterns(words []types.Word) *types.SpeechAnalysis {
	if len(words) == 0 {
		return nil
	}

	var gaps []float64
	for i := 1; i < len(words); i++ {
		gap := words[i].Start - words[i-1].End
		if gap > significantGap {
			gaps = append(gaps, gap)
		}
	}

	longest := "0.00s"
	if len(gaps) > 0 {
		max := gaps[0]
		for _, gap := range gaps[1:] {
			if gap > max {
				max = gap
			}
		}
		longest = fmt.Sprintf("%.2fs", max)
	}

	firstStart := words[0].Start
	lastEnd := words[len(words)-1].End

	return &types.SpeechAnalysis{
		FirstWordAt:         fmt.Sprintf("%.2fs", firstStart),
		LastWordAt:          fmt.Sprintf("%.2fs", lastEnd),
		TotalSpeechDuration: fmt.Sprintf("%.2fs", lastEnd-firstStart),
		SignificantGaps:     len(gaps),
		LongestGap:          longest,
	}
}

// FormatFileSize renders a byte count in human-readable form.
func FormatFileSize(sizeBytes int64) string {
	if sizeBytes == 0 {
		return "0B"
	}

	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(sizeBytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}

	return fmt.Sprintf("%.1f%s", size, units[i])
}
