package types

import "time"

// Job status constants
const (
	StatusQueued     = "QUEUED"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Source type constants
const (
	SourceUpload    = "upload"
	SourceLocalPath = "local"
	SourceGDrive    = "gdrive"
	SourceYouTube   = "youtube"
)

// Word is a single transcribed word with its timing. Produced by the
// transcription source; end >= start >= 0.
type Word struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// BucketizedWord is a Word assigned to the one-second bucket containing
// its start time.
type BucketizedWord struct {
	Word
	Second int `json:"second"`
}

// Segment is a timestamped segment of transcription.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptionResult is the final word-level transcript for one audio file.
type TranscriptionResult struct {
	Text     string    `json:"text"`
	Language string    `json:"language,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Words    []Word    `json:"words,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
}

// VideoMetadata describes a probed video file. A nil *VideoMetadata means
// the probe failed; downstream consumers omit derived fields instead of
// failing the run.
type VideoMetadata struct {
	Resolution string  `json:"resolution"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	FPS        float64 `json:"fps"`
	FrameCount int     `json:"frame_count"`
	Duration   float64 `json:"duration"`
	Codec      string  `json:"codec"`
	FileSize   int64   `json:"file_size"`
}

// FrameRecord is one extracted frame: which second it samples, the
// millisecond instant it was grabbed at, and where it landed on disk.
type FrameRecord struct {
	Second int    `json:"second"`
	Ms     int    `json:"ms"`
	Path   string `json:"path"`
}

// SyncRow aligns one sampled second with the words spoken during it.
type SyncRow struct {
	Second        int    `json:"second"`
	FrameID       string `json:"frame_id"`
	FrameFilename string `json:"frame_filename"`
	WordsText     string `json:"words_text"`
	WordCount     int    `json:"word_count"`
	HasSpeech     bool   `json:"has_speech"`
}

// SyncStatistics summarizes speech coverage over a sync table.
type SyncStatistics struct {
	TotalSeconds          int    `json:"total_seconds"`
	SecondsWithSpeech     int    `json:"seconds_with_speech"`
	SecondsWithSilence    int    `json:"seconds_with_silence"`
	SpeechCoverage        string `json:"speech_coverage"`
	TotalWords            int    `json:"total_words"`
	AverageWordsPerSecond string `json:"average_words_per_second"`
}

// VideoInfo is the file-level portion of a result document. The derived
// fields are only present when the metadata probe succeeded.
type VideoInfo struct {
	VideoFile   string  `json:"video_file"`
	VideoPath   string  `json:"video_path"`
	FileSize    string  `json:"file_size"`
	Duration    string  `json:"duration,omitempty"`
	Resolution  string  `json:"resolution,omitempty"`
	FPS         float64 `json:"fps,omitempty"`
	TotalFrames int     `json:"total_frames,omitempty"`
}

// SpeechAnalysis reports gaps and spans found in the word timeline.
type SpeechAnalysis struct {
	FirstWordAt         string `json:"first_word_at"`
	LastWordAt          string `json:"last_word_at"`
	TotalSpeechDuration string `json:"total_speech_duration"`
	SignificantGaps     int    `json:"significant_gaps"`
	LongestGap          string `json:"longest_gap"`
}

// TranscriptOverview is the optional transcript section of a result document.
type TranscriptOverview struct {
	TotalWords      int             `json:"total_words"`
	TotalCharacters int             `json:"total_characters"`
	TextPreview     string          `json:"text_preview"`
	SpeechAnalysis  *SpeechAnalysis `json:"speech_analysis,omitempty"`
}

// DocumentMetadata stamps provenance onto every result document.
type DocumentMetadata struct {
	GeneratedBy string    `json:"generated_by"`
	Version     string    `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
}

// ResultDocument is the final per-video output, written once and never
// mutated afterward.
type ResultDocument struct {
	VideoInfo          VideoInfo           `json:"video_info"`
	Statistics         SyncStatistics      `json:"frame_transcript_statistics"`
	Mapping            []SyncRow           `json:"frame_transcript_mapping"`
	TranscriptOverview *TranscriptOverview `json:"transcript_overview,omitempty"`
	Metadata           DocumentMetadata    `json:"metadata"`
}
