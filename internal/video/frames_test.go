package video

import (
	"errors"
	"testing"

	"github.com/snifferhq/sniffer/internal/framesync"
	"github.com/snifferhq/sniffer/internal/types"
)

func TestPositionSamplerDelegatesToPlanner(t *testing.T) {
	sampler := PositionSampler{
		Position: framesync.PositionMiddle,
		Planner:  framesync.NewSeededPlanner(1),
	}

	timestamps, err := sampler.Plan(3, 30)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	want := []framesync.FrameTimestamp{{Second: 0, Ms: 500}, {Second: 1, Ms: 1500}, {Second: 2, Ms: 2500}}
	for i := range want {
		if timestamps[i] != want[i] {
			t.Errorf("timestamp %d: got %+v, want %+v", i, timestamps[i], want[i])
		}
	}
}

func TestExhaustiveSamplerCoversEveryFramePeriod(t *testing.T) {
	timestamps, err := ExhaustiveSampler{}.Plan(2, 5)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(timestamps) != 10 {
		t.Fatalf("got %d timestamps, want 10", len(timestamps))
	}
	if timestamps[0].Ms != 0 || timestamps[5].Ms != 1000 || timestamps[9].Ms != 1800 {
		t.Errorf("unexpected spacing: %+v", timestamps)
	}
	if timestamps[5].Second != 1 {
		t.Errorf("timestamp 5 assigned to second %d, want 1", timestamps[5].Second)
	}
}

func TestExhaustiveSamplerRejectsZeroFPS(t *testing.T) {
	if _, err := (ExhaustiveSampler{}).Plan(10, 0); !errors.Is(err, framesync.ErrInvalidVideo) {
		t.Fatalf("got %v, want ErrInvalidVideo", err)
	}
}

func TestBySecond(t *testing.T) {
	records := []types.FrameRecord{
		{Second: 0, Ms: 500, Path: "f0.png"},
		{Second: 2, Ms: 2500, Path: "f2.png"},
	}

	frames := BySecond(records)
	if len(frames) != 2 {
		t.Fatalf("got %d entries, want 2", len(frames))
	}
	if frames[0] != "f0.png" || frames[2] != "f2.png" {
		t.Errorf("unexpected map: %v", frames)
	}
	if _, ok := frames[1]; ok {
		t.Error("second 1 present despite no record")
	}
}

func TestFrameFilename(t *testing.T) {
	planner := framesync.NewSeededPlanner(1)
	positioned := PositionSampler{Position: framesync.PositionMiddle, Planner: planner}

	ts := framesync.FrameTimestamp{Second: 3, Ms: 3500}
	if got := frameFilename(positioned, ts); got != "frame_s3_3500ms.png" {
		t.Errorf("positioned filename: got %q", got)
	}
	if got := frameFilename(ExhaustiveSampler{}, ts); got != "frame_ts_00003500.png" {
		t.Errorf("exhaustive filename: got %q", got)
	}
}

func TestValidateVideoFormat(t *testing.T) {
	cases := []struct {
		filename string
		want     bool
	}{
		{"clip.mp4", true},
		{"CLIP.MP4", true},
		{"clip.mov", true},
		{"clip.mkv", true},
		{"clip.mp3", false},
		{"clip", false},
	}

	for _, tc := range cases {
		if got := ValidateVideoFormat(tc.filename); got != tc.want {
			t.Errorf("ValidateVideoFormat(%q): got %v, want %v", tc.filename, got, tc.want)
		}
	}
}

func TestParseFrameRate(t *testing.T) {
	cases := []struct {
		rate string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 29.97002997002997},
		{"25", 25},
		{"0/0", 0},
		{"", 0},
	}

	for _, tc := range cases {
		if got := parseFrameRate(tc.rate); got != tc.want {
			t.Errorf("parseFrameRate(%q): got %v, want %v", tc.rate, got, tc.want)
		}
	}
}
