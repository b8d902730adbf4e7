package transcription

import (
	"errors"
	"testing"

	"github.com/snifferhq/sniffer/internal/framesync"
	"github.com/snifferhq/sniffer/internal/types"
)

func TestNewWhisperClientRequiresKey(t *testing.T) {
	if _, err := NewWhisperClient("", "whisper-1"); err == nil {
		t.Fatal("expected error for missing API key")
	}
	wc, err := NewWhisperClient("sk-test", "")
	if err != nil {
		t.Fatalf("NewWhisperClient: %v", err)
	}
	if wc.model != "whisper-1" {
		t.Errorf("default model: got %q", wc.model)
	}
}

func TestConvertResponseTrimsAndFallsBack(t *testing.T) {
	wr := &whisperResponse{
		Text: "  Hello there.  ",
		Words: []struct {
			Word  string  `json:"word"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
		}{
			{Word: "Hello", Start: 0.1, End: 0.4},
			{Word: "there", Start: 0.5, End: 0.9},
		},
		Segments: []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
		}{
			{Start: 0, End: 1.2, Text: " Hello there. "},
		},
	}

	result := convertResponse(wr)
	if result.Text != "Hello there." {
		t.Errorf("text: got %q", result.Text)
	}
	if len(result.Words) != 2 || result.Words[1].Text != "there" {
		t.Errorf("words: got %+v", result.Words)
	}
	if result.Segments[0].Text != "Hello there." {
		t.Errorf("segment text: got %q", result.Segments[0].Text)
	}
	// Duration falls back to the last segment end when absent.
	if result.Duration != 1.2 {
		t.Errorf("duration: got %v", result.Duration)
	}
}

func TestValidateWords(t *testing.T) {
	valid := []types.Word{
		{Text: "ok", Start: 0, End: 0},
		{Text: "fine", Start: 1.2, End: 1.5},
	}
	if err := ValidateWords(valid); err != nil {
		t.Fatalf("valid words rejected: %v", err)
	}

	cases := []struct {
		name  string
		words []types.Word
	}{
		{"end before start", []types.Word{{Text: "bad", Start: 2.0, End: 1.5}}},
		{"negative start", []types.Word{{Text: "bad", Start: -0.1, End: 0.2}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateWords(tc.words); !errors.Is(err, framesync.ErrMalformedWord) {
				t.Fatalf("got %v, want ErrMalformedWord", err)
			}
		})
	}
}
