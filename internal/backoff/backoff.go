// Package backoff provides the bounded-retry poller every eventual-consistency
// wait in the harness goes through. Probes report a tagged tri-state result so
// "nothing found yet" and "terminal failure" can never be confused.
package backoff

import "time"

// Result is the outcome of a single probe, or of a whole Poll.
type Result int

const (
	// Retry means the probe found no terminal answer yet.
	Retry Result = iota
	// Done means the probe reached terminal success.
	Done
	// Failed means the probe reached terminal failure.
	Failed
	// Exhausted is returned by Poll when the retry budget ran out
	// without a terminal result. Probes never return it.
	Exhausted
)

func (r Result) String() string {
	switch r {
	case Retry:
		return "retry"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Poller runs a probe with bounded exponential backoff. The probe runs
// MaxRetries+1 times at most; the wait before retry n (n starting at 1) is
// BaseWait << (n-1). There is no wait before the first attempt.
type Poller struct {
	MaxRetries int
	BaseWait   time.Duration

	// Sleep is the wait function; nil means time.Sleep. Tests inject a
	// recorder here.
	Sleep func(time.Duration)

	// OnWait, if set, is called before each wait with the zero-based
	// attempt number and the wait duration, for progress logging.
	OnWait func(attempt int, wait time.Duration)
}

// Poll invokes probe until it returns Done or Failed, or until MaxRetries
// retries have been spent, in which case it returns Exhausted.
func (p Poller) Poll(probe func() Result) Result {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		switch r := probe(); r {
		case Done, Failed:
			return r
		}
		if attempt < p.MaxRetries {
			wait := p.BaseWait << attempt
			if p.OnWait != nil {
				p.OnWait(attempt, wait)
			}
			sleep(wait)
		}
	}
	return Exhausted
}
