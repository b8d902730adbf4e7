package framesync

import "errors"

// Error kinds surfaced by the synchronization core. All are raised at the
// point of detection and never deferred.
var (
	// ErrInvalidVideo means the video's reported frame rate makes
	// per-second planning impossible (fps <= 0).
	ErrInvalidVideo = errors.New("invalid video")

	// ErrInvalidPosition means an unrecognized frame position was requested.
	ErrInvalidPosition = errors.New("invalid frame position")

	// ErrMalformedWord means a transcribed word carries impossible
	// timestamps (end before start, or negative start).
	ErrMalformedWord = errors.New("malformed word timestamps")
)
