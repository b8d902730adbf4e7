package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/snifferhq/sniffer/internal/types"
)

// LocalStorage writes result documents and transcripts to the local
// filesystem. It is the persistence sink for the pipeline: fire-and-forget,
// failures reported up without retry.
type LocalStorage struct {
	resultsDir     string
	transcriptsDir string
}

// NewLocalStorage creates a local storage sink.
func NewLocalStorage(resultsDir, transcriptsDir string) *LocalStorage {
	return &LocalStorage{
		resultsDir:     resultsDir,
		transcriptsDir: transcriptsDir,
	}
}

// SaveResultDocument writes a result document as indented JSON under a
// dated directory. Returns the written path.
func (ls *LocalStorage) SaveResultDocument(videoName string, doc *types.ResultDocument) (string, error) {
	dateDir, err := ls.ensureDateDir(ls.resultsDir)
	if err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dateDir, fmt.Sprintf("%s_%s.json", timestamp, sanitizeFilename(videoName)))

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result document: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", fmt.Errorf("failed to save result document: %w", err)
	}

	return path, nil
}

// SaveTranscript writes the raw transcript as JSON next to the results so
// reruns can skip the transcription API. Returns the written path.
func (ls *LocalStorage) SaveTranscript(videoName string, transcript *types.TranscriptionResult) (string, error) {
	if err := os.MkdirAll(ls.transcriptsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create transcripts directory: %w", err)
	}

	path := filepath.Join(ls.transcriptsDir, fmt.Sprintf("%s_transcript.json", sanitizeFilename(videoName)))

	raw, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal transcript: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", fmt.Errorf("failed to save transcript: %w", err)
	}

	return path, nil
}

// ensureDateDir creates and returns root/YYYY/MM/DD for today.
func (ls *LocalStorage) ensureDateDir(root string) (string, error) {
	now := time.Now()
	dateDir := filepath.Join(root,
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()))

	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create date directory: %w", err)
	}
	return dateDir, nil
}

// sanitizeFilename strips path separators and other characters that break
// filenames, and bounds the length.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "_",
	)
	name = replacer.Replace(name)

	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" {
		name = "untitled"
	}
	return name
}
