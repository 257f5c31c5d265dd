// Package notifications pushes job outcomes to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// the workflow manager can notify unconditionally. Delivery failures are
// returned to the caller, which logs them; a failed notification never changes
// a job's outcome.
package notifications
