package framesync

import (
	"testing"

	"github.com/snifferhq/sniffer/internal/types"
)

func TestBucketizeAssignsFloorOfStart(t *testing.T) {
	cases := []struct {
		start float64
		want  int
	}{
		{0.0, 0},
		{0.999, 0},
		{1.0, 1},
		{1.999, 1},
		{2.0, 2},
		{59.5, 59},
	}

	for _, tc := range cases {
		got := Bucketize([]types.Word{{Text: "x", Start: tc.start, End: tc.start + 0.2}})
		if got[0].Second != tc.want {
			t.Errorf("start=%v: got second %d, want %d", tc.start, got[0].Second, tc.want)
		}
	}
}

func TestBucketizeSpanningWordBelongsToEarlierSecond(t *testing.T) {
	// A word crossing a bucket boundary is attributed entirely to the
	// second it starts in.
	got := Bucketize([]types.Word{{Text: "hello", Start: 1.8, End: 2.4}})
	if got[0].Second != 1 {
		t.Fatalf("got second %d, want 1", got[0].Second)
	}
}

func TestBucketizePreservesOrder(t *testing.T) {
	words := []types.Word{
		{Text: "one", Start: 2.1, End: 2.3},
		{Text: "two", Start: 0.5, End: 0.7},
		{Text: "three", Start: 2.5, End: 2.8},
	}

	got := Bucketize(words)
	if len(got) != len(words) {
		t.Fatalf("got %d words, want %d", len(got), len(words))
	}
	for i := range words {
		if got[i].Text != words[i].Text {
			t.Errorf("position %d: got %q, want %q", i, got[i].Text, words[i].Text)
		}
	}
}

func TestBucketizeEmptyInput(t *testing.T) {
	if got := Bucketize(nil); len(got) != 0 {
		t.Fatalf("got %d words from nil input", len(got))
	}
}
