package dispatch

import "fmt"

// ValidationError reports malformed input. It is returned before any
// query, notification, or write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NoCollectorError means the directory query matched nothing within the
// radius for the requested tests.
type NoCollectorError struct{}

func (e *NoCollectorError) Error() string {
	return "no available collector found for selected tests"
}

// NotificationError aborts the run: the push send to a candidate failed,
// and the notification is the only offer mechanism.
type NotificationError struct {
	CollectorID string
	Err         error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification to collector %s failed: %v", e.CollectorID, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// PersistenceError aborts the run: a store or lock operation failed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// AllRejectedError is the terminal business outcome when every candidate
// timed out, declined, or was skipped as busy. Offers counts how many
// actually received an offer; Busy counts candidates skipped on a held
// offer lock without ever being notified.
type AllRejectedError struct {
	Offers int
	Busy   int
}

func (e *AllRejectedError) Error() string {
	if e.Offers == 0 && e.Busy > 0 {
		return "all collectors are busy with other offers"
	}
	return "all collectors rejected the request"
}
