package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/snifferhq/sniffer/internal/framesync"
	"github.com/snifferhq/sniffer/internal/types"
)

const defaultEndpoint = "https://api.openai.com/v1/audio/transcriptions"

// WhisperClient transcribes audio through the OpenAI Whisper API with
// word-level timestamps.
type WhisperClient struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewWhisperClient creates a transcription client. The API key is required;
// the model defaults to whisper-1.
func NewWhisperClient(apiKey, model string) (*WhisperClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required for transcription")
	}
	if model == "" {
		model = "whisper-1"
	}

	return &WhisperClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 15 * time.Minute},
	}, nil
}

// whisperResponse matches the verbose_json response shape.
type whisperResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Words    []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe sends an audio file for transcription and returns the final
// word sequence. The core never sees partial responses; transport and auth
// failures surface as-is with no retry here.
func (wc *WhisperClient) Transcribe(ctx context.Context, audioPath string) (*types.TranscriptionResult, error) {
	log.Printf("Transcribing audio: %s", filepath.Base(audioPath))

	body, contentType, err := wc.buildRequestBody(audioPath)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wc.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+wc.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := wc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcription API returned %d: %s", resp.StatusCode, string(detail))
	}

	var wr whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, fmt.Errorf("failed to parse transcription response: %w", err)
	}

	result := convertResponse(&wr)
	if err := ValidateWords(result.Words); err != nil {
		return nil, err
	}

	log.Printf("Transcription completed: %d words, %.2fs duration", len(result.Words), result.Duration)
	return result, nil
}

// buildRequestBody assembles the multipart payload requesting verbose_json
// with word and segment granularities.
func (wc *WhisperClient) buildRequestBody(audioPath string) (*bytes.Buffer, string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"model":           wc.model,
		"response_format": "verbose_json",
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}
	for _, granularity := range []string{"word", "segment"} {
		if err := mw.WriteField("timestamp_granularities[]", granularity); err != nil {
			return nil, "", fmt.Errorf("failed to write granularity field: %w", err)
		}
	}

	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, "", fmt.Errorf("failed to copy audio into request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize request body: %w", err)
	}

	return &body, mw.FormDataContentType(), nil
}

func convertResponse(wr *whisperResponse) *types.TranscriptionResult {
	words := make([]types.Word, 0, len(wr.Words))
	for _, w := range wr.Words {
		words = append(words, types.Word{Text: w.Word, Start: w.Start, End: w.End})
	}

	segments := make([]types.Segment, 0, len(wr.Segments))
	for _, s := range wr.Segments {
		segments = append(segments, types.Segment{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)})
	}

	duration := wr.Duration
	if duration == 0 && len(segments) > 0 {
		duration = segments[len(segments)-1].End
	}

	return &types.TranscriptionResult{
		Text:     strings.TrimSpace(wr.Text),
		Language: wr.Language,
		Duration: duration,
		Words:    words,
		Segments: segments,
	}
}

// ValidateWords rejects words with impossible timestamps at the boundary
// where they enter the system.
func ValidateWords(words []types.Word) error {
	for i, word := range words {
		if word.Start < 0 || word.End < word.Start {
			return fmt.Errorf("%w: word %d %q has start=%v end=%v",
				framesync.ErrMalformedWord, i, word.Text, word.Start, word.End)
		}
	}
	return nil
}
