package framesync

import (
	"fmt"

	"github.com/snifferhq/sniffer/internal/types"
)

// ComputeStatistics aggregates a sync table into coverage metrics. An
// empty table yields the literal zero strings rather than dividing by
// zero.
func ComputeStatistics(table []types.SyncRow) types.SyncStatistics {
	totalSeconds := len(table)

	secondsWithSpeech := 0
	totalWords := 0
	for _, row := range table {
		if row.HasSpeech {
			secondsWithSpeech++
		}
		totalWords += row.WordCount
	}

	coverage := "0.0%"
	averageWords := "0.0"
	if totalSeconds > 0 {
		coverage = fmt.Sprintf("%.1f%%", float64(secondsWithSpeech)/float64(totalSeconds)*100)
		averageWords = fmt.Sprintf("%.1f", float64(totalWords)/float64(totalSeconds))
	}

	return types.SyncStatistics{
		TotalSeconds:          totalSeconds,
		SecondsWithSpeech:     secondsWithSpeech,
		SecondsWithSilence:    totalSeconds - secondsWithSpeech,
		SpeechCoverage:        coverage,
		TotalWords:            totalWords,
		AverageWordsPerSecond: averageWords,
	}
}
