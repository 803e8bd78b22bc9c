package form

import (
	"errors"
	"strings"
)

var ErrSubmitInFlight = errors.New("a submission is already in progress")

type SubmitState int

const (
	SubmitIdle SubmitState = iota
	SubmitInFlight
	SubmitDone
)

func (s SubmitState) String() string {
	switch s {
	case SubmitIdle:
		return "idle"
	case SubmitInFlight:
		return "in-flight"
	case SubmitDone:
		return "done"
	default:
		return "unknown"
	}
}

// Submission tracks the request lifecycle. Gen increases with every
// accepted submission; only the result for the latest Gen is applied.
type Submission struct {
	State SubmitState
	Gen   int
}

// Ticket is handed to whoever performs the request.
type Ticket struct {
	Gen   int
	Query Query
}

func (c *Controller) Submission() Submission { return c.sub }

// InFlight reports whether the save trigger should be disabled.
func (c *Controller) InFlight() bool { return c.sub.State == SubmitInFlight }

// BeginSubmit validates the rows and, if they pass, moves the submission to
// in-flight and returns the ticket for the request. A validation failure
// is returned as *ValidationError and leaves the state unchanged.
func (c *Controller) BeginSubmit() (Ticket, error) {
	if c.sub.State == SubmitInFlight {
		return Ticket{}, ErrSubmitInFlight
	}
	if verr := c.Validate(); verr != nil {
		return Ticket{}, verr
	}
	c.sub.Gen++
	c.sub.State = SubmitInFlight
	return Ticket{Gen: c.sub.Gen, Query: c.Query()}, nil
}

// FinishSubmit applies the outcome of request gen. Results from older
// generations are ignored. On success the returned seq is the status
// expiry sequence; applied is false when the result was stale.
func (c *Controller) FinishSubmit(gen int, lines []string, err error) (seq int, applied bool) {
	if gen != c.sub.Gen || c.sub.State != SubmitInFlight {
		return 0, false
	}
	c.sub.State = SubmitDone
	if err != nil {
		return c.ShowStatus(StatusError, []string{errorText(err)}), true
	}
	return c.ShowStatus(StatusSuccess, lines), true
}

// ShowValidation surfaces a validation failure in the status area.
func (c *Controller) ShowValidation(verr *ValidationError) int {
	return c.ShowStatus(StatusError, verr.Lines())
}

func errorText(err error) string {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "request failed"
	}
	return msg
}
