package framesync

import (
	"errors"
	"math"
	"testing"
)

func TestPlanEntryCount(t *testing.T) {
	cases := []struct {
		name     string
		duration float64
		want     int
	}{
		{"whole seconds", 5.0, 5},
		{"fractional tail", 5.2, 6},
		{"sub-second clip", 0.4, 1},
		{"zero duration", 0, 0},
	}

	planner := NewSeededPlanner(1)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := planner.Plan(tc.duration, 30, PositionMiddle)
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("got %d timestamps, want %d", len(got), tc.want)
			}
		})
	}
}

func TestPlanPositions(t *testing.T) {
	planner := NewSeededPlanner(1)

	cases := []struct {
		name     string
		position Position
		duration float64
		fps      float64
		want     []FrameTimestamp
	}{
		{
			name:     "start",
			position: PositionStart,
			duration: 3,
			fps:      30,
			want:     []FrameTimestamp{{0, 0}, {1, 1000}, {2, 2000}},
		},
		{
			name:     "middle",
			position: PositionMiddle,
			duration: 2.5,
			fps:      30,
			want:     []FrameTimestamp{{0, 500}, {1, 1500}, {2, 2250}},
		},
		{
			name:     "end keeps one frame period inside the second",
			position: PositionEnd,
			duration: 2,
			fps:      25,
			want:     []FrameTimestamp{{0, 960}, {1, 1960}},
		},
		{
			name:     "end clamps to bucket start on short tail",
			position: PositionEnd,
			duration: 1.01,
			fps:      25,
			want:     []FrameTimestamp{{0, 960}, {1, 1000}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := planner.Plan(tc.duration, tc.fps, tc.position)
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d timestamps, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("timestamp %d: got %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestPlanRandomStaysInBucket(t *testing.T) {
	planner := NewSeededPlanner(42)

	duration := 10.5
	timestamps, err := planner.Plan(duration, 30, PositionRandom)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(timestamps) != 11 {
		t.Fatalf("got %d timestamps, want 11", len(timestamps))
	}

	for _, ts := range timestamps {
		startMs := ts.Second * 1000
		endMs := int(math.Min(float64((ts.Second+1)*1000), duration*1000))
		if ts.Ms < startMs || ts.Ms > endMs {
			t.Errorf("second %d: target %dms outside [%d, %d]", ts.Second, ts.Ms, startMs, endMs)
		}
	}
}

func TestPlanRandomDeterministicWithSeed(t *testing.T) {
	first, err := NewSeededPlanner(7).Plan(5, 30, PositionRandom)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	second, err := NewSeededPlanner(7).Plan(5, 30, PositionRandom)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("timestamp %d diverged: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestPlanRejectsZeroFPS(t *testing.T) {
	planner := NewSeededPlanner(1)
	for _, fps := range []float64{0, -24} {
		if _, err := planner.Plan(10, fps, PositionMiddle); !errors.Is(err, ErrInvalidVideo) {
			t.Errorf("fps=%v: got %v, want ErrInvalidVideo", fps, err)
		}
	}
}

func TestPlanRejectsUnknownPosition(t *testing.T) {
	planner := NewSeededPlanner(1)
	if _, err := planner.Plan(10, 30, Position("corner")); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("got %v, want ErrInvalidPosition", err)
	}
}

func TestParsePosition(t *testing.T) {
	for _, valid := range []string{"start", "middle", "end", "random"} {
		if _, err := ParsePosition(valid); err != nil {
			t.Errorf("ParsePosition(%q): %v", valid, err)
		}
	}
	if _, err := ParsePosition("centre"); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("ParsePosition(centre): got %v, want ErrInvalidPosition", err)
	}
}
