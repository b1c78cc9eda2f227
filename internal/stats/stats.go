// Package stats folds latency samples into summary statistics.
package stats

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds min/max/average over a set of samples.
type Summary struct {
	Min time.Duration
	Max time.Duration
	Avg time.Duration
}

// Summarize computes min, max and arithmetic mean of samples.
// An empty input yields a zero Summary.
func Summarize(samples []time.Duration) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	secs := make([]float64, len(samples))
	for i, s := range samples {
		secs[i] = s.Seconds()
	}
	return Summary{
		Min: fromSeconds(floats.Min(secs)),
		Max: fromSeconds(floats.Max(secs)),
		Avg: fromSeconds(stat.Mean(secs, nil)),
	}
}

func fromSeconds(sec float64) time.Duration {
	return time.Duration(math.Round(sec * float64(time.Second)))
}
