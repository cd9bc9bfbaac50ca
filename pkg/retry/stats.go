package retry

import (
	"sync"
	"time"
)

// result is how a call to the executor ended
type result int

const (
	resultSuccess result = iota
	resultTerminal
	resultExhausted
	resultAborted
)

func (r result) String() string {
	switch r {
	case resultSuccess:
		return "success"
	case resultTerminal:
		return "terminal"
	case resultExhausted:
		return "exhausted"
	case resultAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Stats contains retry statistics aggregated over every call of an Executor
type Stats struct {
	TotalCalls      int64         // calls to Do/DoHTTP that finished
	TotalAttempts   int64         // transport invocations
	TotalRetries    int64         // waits scheduled after a retriable failure
	TotalSuccesses  int64         // calls returning a non-retriable response
	TotalExhausted  int64         // calls that ran out of retries
	TotalAborted    int64         // calls cancelled at a wait gate
	TotalTerminal   int64         // calls ended by a non-retriable failure (request build error or empty transport result)
	TotalRetryDelay time.Duration // sum of scheduled waits
	LastRetryTime   time.Time     // time the last wait was scheduled
	mu              sync.Mutex
}

// Stats returns a snapshot of the executor statistics
func (e *Executor) Stats() Stats {
	e.stats.mu.Lock()
	defer e.stats.mu.Unlock()
	return Stats{
		TotalCalls:      e.stats.TotalCalls,
		TotalAttempts:   e.stats.TotalAttempts,
		TotalRetries:    e.stats.TotalRetries,
		TotalSuccesses:  e.stats.TotalSuccesses,
		TotalExhausted:  e.stats.TotalExhausted,
		TotalAborted:    e.stats.TotalAborted,
		TotalTerminal:   e.stats.TotalTerminal,
		TotalRetryDelay: e.stats.TotalRetryDelay,
		LastRetryTime:   e.stats.LastRetryTime,
		// don't copy mutex
	}
}

// ResetStats resets statistics
func (e *Executor) ResetStats() {
	e.stats.mu.Lock()
	defer e.stats.mu.Unlock()

	e.stats.TotalCalls = 0
	e.stats.TotalAttempts = 0
	e.stats.TotalRetries = 0
	e.stats.TotalSuccesses = 0
	e.stats.TotalExhausted = 0
	e.stats.TotalAborted = 0
	e.stats.TotalTerminal = 0
	e.stats.TotalRetryDelay = 0
	e.stats.LastRetryTime = time.Time{}
}

// updateStats updates statistics (thread-safe)
func (e *Executor) updateStats(fn func(*Stats)) {
	e.stats.mu.Lock()
	defer e.stats.mu.Unlock()
	fn(e.stats)
}

func (e *Executor) recordAttempt() {
	e.updateStats(func(s *Stats) {
		s.TotalAttempts++
	})
	e.metrics.attempt()
}

func (e *Executor) recordRetry(o Outcome, delay time.Duration) {
	now := e.clock.Now()
	e.updateStats(func(s *Stats) {
		s.TotalRetries++
		s.TotalRetryDelay += delay
		s.LastRetryTime = now
	})
	e.metrics.retry(o, delay)
}

func (e *Executor) recordFinish(r result, retries int) {
	e.updateStats(func(s *Stats) {
		s.TotalCalls++
		switch r {
		case resultSuccess:
			s.TotalSuccesses++
		case resultTerminal:
			s.TotalTerminal++
		case resultExhausted:
			s.TotalExhausted++
		case resultAborted:
			s.TotalAborted++
		}
	})
	e.metrics.finish(r, retries)
}
