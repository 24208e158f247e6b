package meeting

import (
	"context"
	"fmt"
	"sort"

	"github.com/teemow/meetpilot/internal/logging"
)

// Verifier checks real-time availability for a single slot.
type Verifier struct {
	reader CalendarReader
	opts   Options
}

// NewVerifier creates a Verifier.
func NewVerifier(reader CalendarReader, opts Options) *Verifier {
	return &Verifier{reader: reader, opts: opts.withDefaults()}
}

// Verify queries free/busy for the exact slot window. Attendees whose
// calendars cannot be read are treated as busy and listed as unverified.
func (v *Verifier) Verify(ctx context.Context, slot CandidateSlot, attendees []Attendee) AvailabilityVerdict {
	logger := logging.WithOperation(v.opts.Logger, "meeting.verify").With("slot", slot.String())
	window := slot.Window()

	verdict := AvailabilityVerdict{Slot: slot}
	if len(attendees) == 0 {
		return verdict
	}

	emails := make([]string, 0, len(attendees))
	for _, a := range attendees {
		emails = append(emails, a.Email)
	}

	results, err := v.query(ctx, emails, window)
	if err != nil && len(emails) > 1 {
		// A failed batch says nothing about individual attendees, so isolate them.
		logger.Warn("batched free/busy failed, querying attendees individually", logging.Err(err))
		results = make(map[string]BusyResult, len(emails))
		for _, email := range emails {
			single, err := v.query(ctx, []string{email}, window)
			if err != nil {
				results[email] = BusyResult{Err: err}
				continue
			}
			results[email] = lookup(single, email)
		}
	} else if err != nil {
		results = map[string]BusyResult{emails[0]: {Err: err}}
	}

	for _, email := range emails {
		res := lookup(results, email)
		switch {
		case res.Err != nil:
			verdict.Unverified = append(verdict.Unverified, email)
			verdict.BusyAttendees = append(verdict.BusyAttendees, email)
			logger.Warn("availability unknown, treating attendee as busy",
				logging.UserHash(email), logging.Err(res.Err))
		case busyDuring(res.Busy, window):
			verdict.BusyAttendees = append(verdict.BusyAttendees, email)
			logger.Debug("attendee busy", logging.UserHash(email))
		}
	}
	sort.Strings(verdict.BusyAttendees)
	sort.Strings(verdict.Unverified)
	verdict.FreeForAll = len(verdict.BusyAttendees) == 0
	return verdict
}

func (v *Verifier) query(ctx context.Context, emails []string, window TimeWindow) (map[string]BusyResult, error) {
	var results map[string]BusyResult
	err := v.opts.callPort(ctx, PortCalendarRead, OpQueryFreeBusy, v.opts.Timeouts.FreeBusy, func(ctx context.Context) error {
		var err error
		results, err = v.reader.QueryFreeBusy(ctx, emails, window)
		return err
	})
	return results, err
}

// lookup finds an attendee's result, matching emails case-insensitively. A
// missing entry is a read failure.
func lookup(results map[string]BusyResult, email string) BusyResult {
	if res, ok := results[email]; ok {
		return res
	}
	want := normalizeEmail(email)
	for k, res := range results {
		if normalizeEmail(k) == want {
			return res
		}
	}
	return BusyResult{Err: fmt.Errorf("no free/busy data returned for attendee")}
}

func busyDuring(busy []TimeWindow, window TimeWindow) bool {
	for _, b := range busy {
		if b.Overlaps(window) {
			return true
		}
	}
	return false
}
