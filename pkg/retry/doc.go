// Package retry wraps a single-request HTTP function with retries and exponential backoff.
//
// Key Features:
//
// 1. Retry classification:
//   - 429 Too Many Requests and every 5xx response are retried
//   - Transport errors (connection refused, reset, DNS) are retried
//   - Every other response, 4xx included, is returned on the first attempt
//
// 2. Backoff:
//   - Exponential delay starting at InitialDelay, multiplied by BackoffFactor, capped at MaxDelay
//   - An integer Retry-After header (seconds) overrides the computed delay for that wait
//
// 3. Cancellation:
//   - The request context is checked before every wait and during it
//   - A cancelled call returns *types.AbortError, which unwraps to the context error
//
// 4. Side channels:
//   - Observer notifications before each wait (logrus and slog adapters included)
//   - Executor statistics and Prometheus metrics
//
// Basic usage example:
//
//	executor := retry.NewExecutor(http.DefaultClient.Do,
//		retry.WithMaxRetries(3),
//		retry.WithInitialDelay(500*time.Millisecond))
//
//	req := retry.NewRequest(http.MethodPost, "https://api.example.com/items", payload)
//	req.Header.Set("Content-Type", "application/json")
//
//	resp, err := executor.Do(ctx, req)
//
// Wrapping an existing function:
//
//	do := retry.Wrap(client.Do, retry.WithObserver(retry.LogrusObserver(log)))
//	resp, err := do(httpReq)
//
// As an http.Client transport:
//
//	client := retry.NewClient(retry.WithMaxRetries(5))
//
// Error handling:
//
// Exhausted retries never produce a new error type. The caller receives exactly what the
// final attempt produced: the last 429/5xx response (with a nil error) or the last
// transport error unchanged.
//
// Thread safety:
//
// An Executor is safe for concurrent use. Each call owns its attempt counter and delay;
// the configuration is read-only after construction.
package retry
