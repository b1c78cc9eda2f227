package probe

import (
	"time"

	"github.com/NodePath81/httpbench/internal/stats"
)

// Result summarizes all attempts against one host.
type Result struct {
	Host string
	// Success counts responses with status < 400.
	Success int
	// Failed counts responses with status >= 400.
	Failed int
	// Errors counts attempts that produced no response.
	Errors int
	// Samples holds the elapsed time of each response, in attempt order.
	Samples []time.Duration
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
}

// Count returns the number of attempts folded into r.
func (r Result) Count() int {
	return r.Success + r.Failed + r.Errors
}

type accumulator struct {
	result Result
}

func newAccumulator(host string, count int) *accumulator {
	return &accumulator{result: Result{
		Host:    host,
		Samples: make([]time.Duration, 0, count),
	}}
}

func (a *accumulator) add(o Outcome) {
	switch o.Kind {
	case KindResponse:
		a.result.Samples = append(a.result.Samples, o.Elapsed)
		if o.Failed() {
			a.result.Failed++
		} else {
			a.result.Success++
		}
	default:
		a.result.Errors++
	}
}

func (a *accumulator) finish() Result {
	sum := stats.Summarize(a.result.Samples)
	a.result.Min = sum.Min
	a.result.Max = sum.Max
	a.result.Avg = sum.Avg
	return a.result
}
