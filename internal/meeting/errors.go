package meeting

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies every failure the engine can report.
type Kind string

const (
	// KindInvalidRequest means the request was rejected before negotiation started.
	KindInvalidRequest Kind = "InvalidRequest"

	// KindProfileFetchFailed is recoverable: the attendee's profile degrades to no data.
	KindProfileFetchFailed Kind = "ProfileFetchFailed"

	// KindOracleUnavailable is recoverable: the oracle output degrades to empty.
	KindOracleUnavailable Kind = "OracleUnavailable"

	// KindNoCandidatesFound is terminal for this attempt.
	KindNoCandidatesFound Kind = "NoCandidatesFound"

	// KindAllCandidatesBusy is terminal and carries one verdict per candidate.
	KindAllCandidatesBusy Kind = "AllCandidatesBusy"

	// KindEventCreationFailed is terminal; no event is considered committed.
	KindEventCreationFailed Kind = "EventCreationFailed"

	// KindNotificationFailed is per recipient and never unwinds a commit.
	KindNotificationFailed Kind = "NotificationFailed"

	// KindCanceled means the caller's cancellation signal was observed at a
	// state boundary before anything was committed.
	KindCanceled Kind = "Canceled"
)

// Terminal reports whether a failure of this kind ends the negotiation.
func (k Kind) Terminal() bool {
	switch k {
	case KindProfileFetchFailed, KindOracleUnavailable, KindNotificationFailed:
		return false
	}
	return true
}

// Error is the structured failure returned by the engine.
type Error struct {
	Kind  Kind
	State State

	// Reason is a short human-readable explanation.
	Reason string

	// Attendee is set for per-attendee failures.
	Attendee string

	// Verdicts is set for KindAllCandidatesBusy.
	Verdicts []AvailabilityVerdict

	// Cause is the underlying collaborator error, if any.
	Cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by kind so callers can use errors.Is with a sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Reason == "" && t.Cause == nil
}

// IsKind reports whether err is a meeting error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or "" when err is not a meeting error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newError(kind Kind, state State, reason string, cause error) *Error {
	return &Error{Kind: kind, State: state, Reason: reason, Cause: cause}
}

// ErrNoEventID is the cause reported when a created event carries no identifier.
var ErrNoEventID = errors.New("calendar returned no event id")
