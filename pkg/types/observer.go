// Package types provides the contracts shared between the retry executor and its collaborators
package types

// Field keys carried by every retry notification
const (
	FieldStatus     = "status"
	FieldError      = "error"
	FieldAttempt    = "attempt"
	FieldMaxRetries = "max_retries"
	FieldDelayMS    = "delay_ms"
	FieldURL        = "url"
)

// Fields holds the structured payload of a retry notification
type Fields map[string]interface{}

// Observer receives retry notifications.
// It has no return value and no influence on retry decisions.
type Observer interface {
	Warn(msg string, fields Fields)
}

// ObserverFunc adapts a plain function to the Observer interface
type ObserverFunc func(msg string, fields Fields)

// Warn calls f(msg, fields)
func (f ObserverFunc) Warn(msg string, fields Fields) {
	f(msg, fields)
}
