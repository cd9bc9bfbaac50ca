package retry

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxRetryAfterSeconds is the largest Retry-After value representable as a time.Duration
const maxRetryAfterSeconds = math.MaxInt64 / int64(time.Second)

// attemptState is owned by exactly one call to Executor.Do
type attemptState struct {
	attempt int           // completed retries so far
	delay   time.Duration // exponential delay for the next wait
}

func newAttemptState(cfg *Config) attemptState {
	delay := cfg.InitialDelay
	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return attemptState{delay: delay}
}

// exhausted reports whether no retries remain
func (s *attemptState) exhausted(cfg *Config) bool {
	return s.attempt >= cfg.MaxRetries
}

// advance moves to the next attempt and grows the delay, capped at MaxDelay
func (s *attemptState) advance(cfg *Config) {
	s.attempt++
	s.delay = nextDelay(s.delay, cfg.BackoffFactor, cfg.MaxDelay)
}

// nextDelay computes min(delay*factor, maxDelay) without overflowing time.Duration
func nextDelay(delay time.Duration, factor float64, maxDelay time.Duration) time.Duration {
	next := float64(delay) * factor
	if next >= float64(maxDelay) {
		return maxDelay
	}
	return time.Duration(next)
}

// waitFor returns the wait before the next attempt: the server hint if present,
// otherwise the exponential delay
func (s *attemptState) waitFor(o Outcome) time.Duration {
	if o.HasHint {
		return o.Hint
	}
	return s.delay
}

// RetryAfter parses an integer-seconds Retry-After header.
// Zero and negative values are returned as-is; HTTP-date and fractional forms are rejected.
// Values beyond the time.Duration range saturate instead of wrapping.
func RetryAfter(resp *http.Response) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	value := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if value == "" {
		return 0, false
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	switch {
	case seconds > maxRetryAfterSeconds:
		seconds = maxRetryAfterSeconds
	case seconds < -maxRetryAfterSeconds:
		seconds = -maxRetryAfterSeconds
	}
	return time.Duration(seconds) * time.Second, true
}
