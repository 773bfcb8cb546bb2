// Package payments keeps the state-transition bookkeeping for gateway
// payments.  Talking to the gateway itself is out of scope; this package
// only records the statuses its webhooks report, and refuses transitions
// the gateway's model does not allow.
package payments

import "errors"

// Status is a payment lifecycle state as reported by the gateway.
type Status string

const (
	StatusPending           Status = "pending"
	StatusWaitingForCapture Status = "waiting_for_capture"
	StatusSucceeded         Status = "succeeded"
	StatusCancelled         Status = "cancelled"
)

// ErrBadTransition is returned when a webhook reports a status the current
// state cannot legally move to (e.g. reviving a cancelled payment).
var ErrBadTransition = errors.New("illegal payment status transition")

// transitions enumerates the legal moves.  Succeeded and cancelled are
// terminal.
var transitions = map[Status][]Status{
	StatusPending:           {StatusWaitingForCapture, StatusSucceeded, StatusCancelled},
	StatusWaitingForCapture: {StatusSucceeded, StatusCancelled},
	StatusSucceeded:         {},
	StatusCancelled:         {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether a payment in state s may move to target.
func (s Status) CanTransition(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}
