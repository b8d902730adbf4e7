package framesync

import (
	"math"

	"github.com/snifferhq/sniffer/internal/types"
)

// Bucketize assigns each word to the one-second bucket containing its
// start time. A word spanning a bucket boundary belongs entirely to the
// second it starts in. Input order is preserved.
func Bucketize(words []types.Word) []types.BucketizedWord {
	bucketized := make([]types.BucketizedWord, 0, len(words))
	for _, word := range words {
		bucketized = append(bucketized, types.BucketizedWord{
			Word:   word,
			Second: int(math.Floor(word.Start)),
		})
	}
	return bucketized
}
