package framesync

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/snifferhq/sniffer/internal/types"
)

// SilencePlaceholder is the words_text value for a second with no speech.
const SilencePlaceholder = "[silence]"

// BuildTable joins a per-second frame map with bucketized words into an
// ordered sync table. Frame map keys are iterated in ascending numeric
// order since they arrive from an external source with arbitrary order.
// Words whose bucket has no sampled frame never appear in the table; the
// table is frame-anchored, not word-anchored.
func BuildTable(frames map[int]string, words []types.BucketizedWord) []types.SyncRow {
	seconds := make([]int, 0, len(frames))
	for second := range frames {
		seconds = append(seconds, second)
	}
	sort.Ints(seconds)

	table := make([]types.SyncRow, 0, len(seconds))
	for _, second := range seconds {
		framePath := frames[second]
		wordsInSecond := wordsForSecond(words, second)

		table = append(table, types.SyncRow{
			Second:        second,
			FrameID:       framePath,
			FrameFilename: filepath.Base(framePath),
			WordsText:     joinWords(wordsInSecond),
			WordCount:     len(wordsInSecond),
			HasSpeech:     len(wordsInSecond) > 0,
		})
	}

	return table
}

// wordsForSecond selects the words assigned to one bucket, preserving
// transcript order.
func wordsForSecond(words []types.BucketizedWord, second int) []types.BucketizedWord {
	var selected []types.BucketizedWord
	for _, word := range words {
		if word.Second == second {
			selected = append(selected, word)
		}
	}
	return selected
}

// joinWords concatenates trimmed word text with single spaces. Words that
// trim to nothing are excluded; a second with no surviving text reads as
// silence.
func joinWords(words []types.BucketizedWord) string {
	texts := make([]string, 0, len(words))
	for _, word := range words {
		if text := strings.TrimSpace(word.Text); text != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return SilencePlaceholder
	}
	return strings.Join(texts, " ")
}
