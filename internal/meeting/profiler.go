package meeting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teemow/meetpilot/internal/logging"
)

// Profiler turns an attendee's past events into a RoutineProfile.
type Profiler struct {
	reader CalendarReader
	oracle TextOracle
	opts   Options
}

// NewProfiler creates a Profiler.
func NewProfiler(reader CalendarReader, oracle TextOracle, opts Options) *Profiler {
	return &Profiler{reader: reader, oracle: oracle, opts: opts.withDefaults()}
}

// LookbackWindow returns the window of length lookback ending at now.
func LookbackWindow(now time.Time, lookback time.Duration) TimeWindow {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	now = now.UTC()
	return TimeWindow{Start: now.Add(-lookback), End: now}
}

// Profile never fails: read and oracle errors degrade to the no-data
// sentinel and are recorded on RoutineProfile.Failure.
func (p *Profiler) Profile(ctx context.Context, attendee Attendee, window TimeWindow) RoutineProfile {
	logger := logging.WithOperation(p.opts.Logger, "meeting.profile").With(logging.UserHash(attendee.Email))

	profile := RoutineProfile{
		AttendeeEmail: attendee.Email,
		AttendeeName:  attendee.Name,
		TextSummary:   NoDataSummary,
	}

	var events []PastEvent
	err := p.opts.callPort(ctx, PortCalendarRead, OpListPastEvents, p.opts.Timeouts.ProfileRead, func(ctx context.Context) error {
		var err error
		events, err = p.reader.ListPastEvents(ctx, attendee.Email, window)
		return err
	})
	if err != nil {
		profile.Failure = &Error{
			Kind:     KindProfileFetchFailed,
			State:    StateCollectingProfiles,
			Reason:   "could not read past events",
			Attendee: attendee.Email,
			Cause:    err,
		}
		logger.Warn("past events unavailable, using empty profile", logging.Err(err))
		return profile
	}

	events = sortedEvents(events)
	profile.SourceEventCount = len(events)
	if len(events) == 0 {
		logger.Debug("no past events in lookback window")
		return profile
	}

	var reply string
	err = p.opts.callPort(ctx, PortOracle, string(PromptSummarizeRoutine), p.opts.Timeouts.Oracle, func(ctx context.Context) error {
		var err error
		reply, err = p.oracle.Complete(ctx, PromptSummarizeRoutine, OracleInput{Attendee: attendee, Events: events})
		return err
	})
	if err == nil && strings.TrimSpace(reply) == "" {
		err = fmt.Errorf("empty summary")
	}
	if err != nil {
		profile.Failure = &Error{
			Kind:     KindOracleUnavailable,
			State:    StateCollectingProfiles,
			Reason:   "routine summary unavailable",
			Attendee: attendee.Email,
			Cause:    err,
		}
		logger.Warn("routine summary unavailable, using empty profile", logging.Err(err))
		return profile
	}

	profile.TextSummary = strings.TrimSpace(reply)
	logger.Debug("routine summarized", "events", len(events))
	return profile
}

func sortedEvents(events []PastEvent) []PastEvent {
	out := make([]PastEvent, 0, len(events))
	for _, e := range events {
		if e.Label == "" {
			e.Label = "Busy"
		}
		e.Start = e.Start.UTC()
		e.End = e.End.UTC()
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
