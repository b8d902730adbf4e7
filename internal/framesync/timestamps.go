package framesync

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Position selects which sub-second instant of each bucket gets sampled
// for a frame.
type Position string

const (
	PositionStart  Position = "start"
	PositionMiddle Position = "middle"
	PositionEnd    Position = "end"
	PositionRandom Position = "random"
)

// ParsePosition validates a position name from config or request input.
func ParsePosition(s string) (Position, error) {
	switch Position(s) {
	case PositionStart, PositionMiddle, PositionEnd, PositionRandom:
		return Position(s), nil
	default:
		return "", fmt.Errorf("%w: %q (must be one of: start, middle, end, random)", ErrInvalidPosition, s)
	}
}

// FrameTimestamp is the planned sampling instant for one second of video.
type FrameTimestamp struct {
	Second int
	Ms     int
}

// Planner computes one target sub-second timestamp per whole second of a
// video. The random source is fixed at construction so the random position
// can be made deterministic in tests.
type Planner struct {
	rng *rand.Rand
}

// NewPlanner creates a planner with a time-seeded random source.
func NewPlanner() *Planner {
	return NewSeededPlanner(time.Now().UnixNano())
}

// NewSeededPlanner creates a planner with a fixed seed.
func NewSeededPlanner(seed int64) *Planner {
	return &Planner{rng: rand.New(rand.NewSource(seed))}
}

// Plan returns one (second, ms) target per integer second in
// [0, ceil(durationSeconds)). The end position stays one frame period
// before the bucket boundary so the timestamp remains inside the second.
func (p *Planner) Plan(durationSeconds, fps float64, position Position) ([]FrameTimestamp, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("%w: fps is %v, cannot plan timestamps", ErrInvalidVideo, fps)
	}
	if _, err := ParsePosition(string(position)); err != nil {
		return nil, err
	}

	seconds := int(math.Ceil(durationSeconds))
	timestamps := make([]FrameTimestamp, 0, seconds)

	for second := 0; second < seconds; second++ {
		startMs := float64(second * 1000)
		endMs := math.Min(float64((second+1)*1000), durationSeconds*1000)

		var targetMs float64
		switch position {
		case PositionStart:
			targetMs = startMs
		case PositionMiddle:
			targetMs = startMs + (endMs-startMs)/2
		case PositionEnd:
			targetMs = math.Max(startMs, endMs-1000/fps)
		case PositionRandom:
			targetMs = startMs + p.rng.Float64()*(endMs-startMs)
		}

		timestamps = append(timestamps, FrameTimestamp{Second: second, Ms: int(targetMs)})
	}

	return timestamps, nil
}
