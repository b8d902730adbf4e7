package framesync

import (
	"reflect"
	"testing"

	"github.com/snifferhq/sniffer/internal/types"
)

func sampleFrames() map[int]string {
	return map[int]string{
		0: "data/video_frames/clip/frame_s0_500ms.png",
		1: "data/video_frames/clip/frame_s1_1500ms.png",
		2: "data/video_frames/clip/frame_s2_2500ms.png",
	}
}

func TestBuildTableJoinsWordsToSeconds(t *testing.T) {
	words := Bucketize([]types.Word{
		{Text: "This", Start: 0.1, End: 0.3},
		{Text: "is", Start: 1.2, End: 1.4},
	})

	table := BuildTable(sampleFrames(), words)
	if len(table) != 3 {
		t.Fatalf("got %d rows, want 3", len(table))
	}

	want := []struct {
		second    int
		wordsText string
		wordCount int
		hasSpeech bool
	}{
		{0, "This", 1, true},
		{1, "is", 1, true},
		{2, SilencePlaceholder, 0, false},
	}

	for i, w := range want {
		row := table[i]
		if row.Second != w.second || row.WordsText != w.wordsText ||
			row.WordCount != w.wordCount || row.HasSpeech != w.hasSpeech {
			t.Errorf("row %d: got %+v, want %+v", i, row, w)
		}
	}
}

func TestBuildTableSortsArbitraryKeyOrder(t *testing.T) {
	frames := map[int]string{7: "f7.png", 0: "f0.png", 3: "f3.png", 12: "f12.png"}

	table := BuildTable(frames, nil)
	if len(table) != len(frames) {
		t.Fatalf("got %d rows, want %d", len(table), len(frames))
	}
	for i := 1; i < len(table); i++ {
		if table[i].Second <= table[i-1].Second {
			t.Fatalf("rows not ascending: %d then %d", table[i-1].Second, table[i].Second)
		}
	}
}

func TestBuildTableSetsFrameFilename(t *testing.T) {
	table := BuildTable(map[int]string{0: "data/video_frames/clip/frame_s0_0ms.png"}, nil)
	if table[0].FrameFilename != "frame_s0_0ms.png" {
		t.Fatalf("got filename %q", table[0].FrameFilename)
	}
	if table[0].FrameID != "data/video_frames/clip/frame_s0_0ms.png" {
		t.Fatalf("got frame id %q", table[0].FrameID)
	}
}

func TestBuildTableDropsWordsWithoutFrames(t *testing.T) {
	// Second 5 was never sampled; its words stay out of the table.
	words := Bucketize([]types.Word{
		{Text: "kept", Start: 1.0, End: 1.2},
		{Text: "dropped", Start: 5.3, End: 5.6},
	})

	table := BuildTable(map[int]string{1: "f1.png"}, words)
	if len(table) != 1 {
		t.Fatalf("got %d rows, want 1", len(table))
	}
	if table[0].WordsText != "kept" {
		t.Fatalf("got words %q, want %q", table[0].WordsText, "kept")
	}
}

func TestBuildTableWithoutTranscript(t *testing.T) {
	for _, words := range [][]types.BucketizedWord{nil, {}} {
		table := BuildTable(sampleFrames(), words)
		for _, row := range table {
			if row.WordsText != SilencePlaceholder || row.WordCount != 0 || row.HasSpeech {
				t.Fatalf("row %d not silent: %+v", row.Second, row)
			}
		}
	}
}

func TestBuildTableTrimsAndSkipsBlankWords(t *testing.T) {
	words := Bucketize([]types.Word{
		{Text: "  Hello ", Start: 0.1, End: 0.2},
		{Text: "   ", Start: 0.3, End: 0.4},
		{Text: "world", Start: 0.5, End: 0.6},
	})

	table := BuildTable(map[int]string{0: "f0.png"}, words)
	if table[0].WordsText != "Hello world" {
		t.Fatalf("got %q, want %q", table[0].WordsText, "Hello world")
	}
	// Blank words still count toward word_count; only the joined text
	// excludes them.
	if table[0].WordCount != 3 {
		t.Fatalf("got word count %d, want 3", table[0].WordCount)
	}
}

func TestBuildTableAllBlankWordsReadsAsSilence(t *testing.T) {
	words := Bucketize([]types.Word{{Text: "  ", Start: 0.1, End: 0.2}})
	table := BuildTable(map[int]string{0: "f0.png"}, words)
	if table[0].WordsText != SilencePlaceholder {
		t.Fatalf("got %q, want silence placeholder", table[0].WordsText)
	}
}

func TestBuildTableEmptyFrameMap(t *testing.T) {
	table := BuildTable(map[int]string{}, Bucketize([]types.Word{{Text: "x", Start: 0, End: 0.1}}))
	if len(table) != 0 {
		t.Fatalf("got %d rows from empty frame map", len(table))
	}
}

func TestBuildTableIdempotent(t *testing.T) {
	words := Bucketize([]types.Word{
		{Text: "This", Start: 0.1, End: 0.3},
		{Text: "is", Start: 1.2, End: 1.4},
	})

	first := BuildTable(sampleFrames(), words)
	second := BuildTable(sampleFrames(), words)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs produced different tables")
	}
}
