package meeting

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/teemow/meetpilot/internal/instrumentation"
	"github.com/teemow/meetpilot/internal/logging"
)

// SchedulerConfig wires the scheduler to its collaborators.
type SchedulerConfig struct {
	Reader   CalendarReader
	Writer   CalendarWriter
	Notifier Notifier
	Oracle   TextOracle

	// Organizer is the authenticated user. It is always part of the
	// committed attendee list.
	Organizer Attendee

	// Lookback is the profiling window length (default 14 days).
	Lookback time.Duration

	// NewRequestID generates the idempotency key of each commit attempt.
	// Defaults to a random UUID.
	NewRequestID func() string

	Logger   *slog.Logger
	Observer Observer
	Timeouts Timeouts
	Now      func() time.Time
}

// Scheduler drives a negotiation from request to committed meeting.
type Scheduler struct {
	profiler   *Profiler
	negotiator *Negotiator
	verifier   *Verifier
	writer     CalendarWriter
	notifier   Notifier

	organizer    Attendee
	lookback     time.Duration
	newRequestID func() string
	opts         Options
}

// Outcomes reported to the Observer on success. Failures report their Kind.
const (
	OutcomeScheduled = "scheduled"
	OutcomeSuggested = "suggested"
)

// Suggestion is the outcome of negotiation without commit.
type Suggestion struct {
	Profiles   []RoutineProfile
	Candidates []CandidateSlot
	TargetDay  time.Time
}

// NewScheduler validates cfg and creates a Scheduler.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Reader == nil {
		return nil, errors.New("calendar reader is required")
	}
	if cfg.Writer == nil {
		return nil, errors.New("calendar writer is required")
	}
	if cfg.Notifier == nil {
		return nil, errors.New("notifier is required")
	}
	if cfg.Oracle == nil {
		return nil, errors.New("text oracle is required")
	}
	if strings.TrimSpace(cfg.Organizer.Email) == "" {
		return nil, errors.New("organizer email is required")
	}

	opts := Options{
		Logger:   cfg.Logger,
		Observer: cfg.Observer,
		Timeouts: cfg.Timeouts,
		Now:      cfg.Now,
	}.withDefaults()

	newRequestID := cfg.NewRequestID
	if newRequestID == nil {
		newRequestID = uuid.NewString
	}

	return &Scheduler{
		profiler:     NewProfiler(cfg.Reader, cfg.Oracle, opts),
		negotiator:   NewNegotiator(cfg.Oracle, opts),
		verifier:     NewVerifier(cfg.Reader, opts),
		writer:       cfg.Writer,
		notifier:     cfg.Notifier,
		organizer:    cfg.Organizer,
		lookback:     cfg.Lookback,
		newRequestID: newRequestID,
		opts:         opts,
	}, nil
}

// Organizer returns the configured organizer.
func (s *Scheduler) Organizer() Attendee {
	return s.organizer
}

// Schedule runs the full negotiation. On failure the error is always a *Error.
func (s *Scheduler) Schedule(ctx context.Context, req MeetingRequest) (*Result, error) {
	started := time.Now()
	result, err := s.schedule(ctx, req)
	s.finish(ctx, OutcomeScheduled, err, started)
	return result, err
}

// Suggest runs profiling and negotiation only and never commits anything.
// It fails with KindNoCandidatesFound when the oracle proposes nothing usable.
func (s *Scheduler) Suggest(ctx context.Context, req MeetingRequest) (*Suggestion, error) {
	started := time.Now()
	suggestion, err := s.suggest(ctx, req)
	s.finish(ctx, OutcomeSuggested, err, started)
	return suggestion, err
}

func (s *Scheduler) suggest(ctx context.Context, req MeetingRequest) (*Suggestion, error) {
	ctx, span := instrumentation.StartSpan(ctx, "meeting.suggest")
	defer span.End()

	attendees, _, err := s.prepare(req)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	suggestion, err := s.negotiate(ctx, attendees, s.opts.Now())
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, s.fail(ctx, err)
	}
	return suggestion, nil
}

func (s *Scheduler) schedule(ctx context.Context, req MeetingRequest) (*Result, error) {
	ctx, span := instrumentation.StartSpan(ctx, "meeting.schedule")
	defer span.End()

	attendees, recipients, err := s.prepare(req)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	now := s.opts.Now()
	result := &Result{}

	if req.PreselectedSlot != nil {
		s.enter(ctx, StateVerifying)
		result.Candidates = dropPast([]CandidateSlot{NewCandidateSlot(req.PreselectedSlot.Start)}, now)
		if len(result.Candidates) == 0 {
			return nil, s.fail(ctx, newError(KindNoCandidatesFound, StateVerifying, "preselected slot is in the past", nil))
		}
	} else {
		suggestion, err := s.negotiate(ctx, attendees, now)
		if err != nil {
			instrumentation.SetSpanError(span, err)
			return nil, s.fail(ctx, err)
		}
		result.Profiles = suggestion.Profiles
		result.Candidates = suggestion.Candidates
		s.enter(ctx, StateVerifying)
	}

	slot, verdicts, err := s.verifyInOrder(ctx, result.Candidates, attendees)
	result.Verdicts = verdicts
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, s.fail(ctx, err)
	}

	// From here on the caller's cancellation is ignored: a commit either
	// completes (bounded by its own timeout) and is followed by its
	// notifications, or fails without side effects.
	detached := context.WithoutCancel(ctx)

	s.enter(detached, StateCommitting)
	committed, err := s.commit(detached, req.Topic, slot, attendees)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, s.fail(detached, err)
	}
	result.Meeting = committed

	s.enter(detached, StateNotifying)
	result.Notifications = s.notify(detached, recipients, committed)

	s.enter(detached, StateDone)
	s.opts.Logger.Info("meeting scheduled",
		logging.Operation("meeting.schedule"),
		"slot", slot.String(),
		"attendees", len(committed.Attendees),
		"notified", result.Delivered())
	instrumentation.SetSpanSuccess(span)
	return result, nil
}

// prepare validates the request and returns the committed attendee list
// (deduplicated, organizer included exactly once) and the invitation
// recipients (the requested attendees, deduplicated).
func (s *Scheduler) prepare(req MeetingRequest) ([]Attendee, []Attendee, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, nil, newError(KindInvalidRequest, "", "topic must not be empty", nil)
	}
	if len(req.Attendees) == 0 {
		return nil, nil, newError(KindInvalidRequest, "", "at least one attendee is required", nil)
	}

	seen := make(map[string]bool, len(req.Attendees)+1)
	recipients := make([]Attendee, 0, len(req.Attendees))
	for _, a := range req.Attendees {
		key := normalizeEmail(a.Email)
		if key == "" {
			return nil, nil, newError(KindInvalidRequest, "", "attendee email must not be empty", nil)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		a.Email = strings.TrimSpace(a.Email)
		recipients = append(recipients, a)
	}

	attendees := append([]Attendee(nil), recipients...)
	if !seen[normalizeEmail(s.organizer.Email)] {
		attendees = append(attendees, s.organizer)
	}
	return attendees, recipients, nil
}

func (s *Scheduler) negotiate(ctx context.Context, attendees []Attendee, now time.Time) (*Suggestion, error) {
	if err := canceled(ctx, StateCollectingProfiles); err != nil {
		return nil, err
	}

	s.enter(ctx, StateCollectingProfiles)
	profiles := s.collectProfiles(ctx, attendees, now)
	if err := canceled(ctx, StateCollectingProfiles); err != nil {
		return nil, err
	}

	s.enter(ctx, StateNegotiating)
	target := TargetDay(now)
	candidates, err := s.negotiator.Negotiate(ctx, profiles, target)
	if cerr := canceled(ctx, StateNegotiating); cerr != nil {
		return nil, cerr
	}
	if len(candidates) == 0 {
		return nil, newError(KindNoCandidatesFound, StateNegotiating, "no usable slots proposed", err)
	}

	return &Suggestion{Profiles: profiles, Candidates: candidates, TargetDay: target}, nil
}

// collectProfiles profiles every attendee concurrently. Each task is an
// isolated failure domain; results keep the attendee order.
func (s *Scheduler) collectProfiles(ctx context.Context, attendees []Attendee, now time.Time) []RoutineProfile {
	window := LookbackWindow(now, s.lookback)
	profiles := make([]RoutineProfile, len(attendees))

	var g errgroup.Group
	for i, attendee := range attendees {
		g.Go(func() error {
			profiles[i] = s.profiler.Profile(ctx, attendee, window)
			return nil
		})
	}
	_ = g.Wait()

	return profiles
}

// verifyInOrder returns the first candidate that is free for everyone.
// Candidates are checked sequentially; verification stops at the first
// free slot.
func (s *Scheduler) verifyInOrder(ctx context.Context, candidates []CandidateSlot, attendees []Attendee) (CandidateSlot, []AvailabilityVerdict, error) {
	verdicts := make([]AvailabilityVerdict, 0, len(candidates))
	for _, slot := range candidates {
		verdict := s.verifier.Verify(ctx, slot, attendees)
		verdicts = append(verdicts, verdict)

		if err := canceled(ctx, StateVerifying); err != nil {
			err.Verdicts = verdicts
			return CandidateSlot{}, verdicts, err
		}
		if verdict.FreeForAll {
			return slot, verdicts, nil
		}
	}

	err := newError(KindAllCandidatesBusy, StateVerifying, "every candidate has a conflict", nil)
	err.Verdicts = verdicts
	return CandidateSlot{}, verdicts, err
}

func (s *Scheduler) commit(ctx context.Context, topic string, slot CandidateSlot, attendees []Attendee) (ScheduledMeeting, error) {
	requestID := s.newRequestID()
	logger := logging.WithOperation(s.opts.Logger, "meeting.commit").With(logging.RequestID(requestID))

	req := EventRequest{
		Topic:     topic,
		Organizer: s.organizer,
		Attendees: attendees,
		Start:     slot.Start.UTC(),
		End:       slot.End().UTC(),
		RequestID: requestID,
	}

	var created CreatedEvent
	err := s.opts.callPort(ctx, PortCalendarWrite, OpCreateEvent, s.opts.Timeouts.Write, func(ctx context.Context) error {
		var err error
		created, err = s.writer.CreateEvent(ctx, req)
		return err
	})
	if err != nil {
		logger.Error("event creation failed", logging.Err(err))
		return ScheduledMeeting{}, newError(KindEventCreationFailed, StateCommitting, "calendar write failed", err)
	}
	if strings.TrimSpace(created.EventID) == "" {
		logger.Error("event creation returned no id")
		return ScheduledMeeting{}, newError(KindEventCreationFailed, StateCommitting, "no proof of creation", ErrNoEventID)
	}

	logger.Info("event created", "event_id", created.EventID)
	return ScheduledMeeting{
		EventID:        created.EventID,
		Start:          req.Start,
		End:            req.End,
		Attendees:      attendees,
		Topic:          topic,
		CalendarLink:   created.CalendarLink,
		ConferenceLink: created.ConferenceLink,
	}, nil
}

// notify sends one invitation per recipient. Failures are recorded and
// never stop the remaining sends.
func (s *Scheduler) notify(ctx context.Context, recipients []Attendee, committed ScheduledMeeting) []NotificationOutcome {
	logger := logging.WithOperation(s.opts.Logger, "meeting.notify")
	outcomes := make([]NotificationOutcome, 0, len(recipients))

	for _, recipient := range recipients {
		inv := Invitation{Recipient: recipient, Organizer: s.organizer, Meeting: committed}
		err := s.opts.callPort(ctx, PortNotification, OpSend, s.opts.Timeouts.Notify, func(ctx context.Context) error {
			return s.notifier.Send(ctx, recipient.Email, inv)
		})

		outcome := NotificationOutcome{Email: recipient.Email, Delivered: err == nil}
		if err != nil {
			outcome.Err = &Error{
				Kind:     KindNotificationFailed,
				State:    StateNotifying,
				Reason:   "invitation not delivered",
				Attendee: recipient.Email,
				Cause:    err,
			}
			logger.Warn("invitation not delivered", logging.UserHash(recipient.Email), logging.Err(err))
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (s *Scheduler) enter(ctx context.Context, state State) {
	s.opts.Logger.Debug("negotiation state", logging.State(string(state)))
	s.opts.Observer.StateChanged(ctx, string(state))
}

func (s *Scheduler) fail(ctx context.Context, err error) error {
	s.enter(ctx, StateFailed)

	var e *Error
	if !errors.As(err, &e) {
		e = newError(KindEventCreationFailed, "", "unexpected failure", err)
	}

	attrs := []any{logging.Operation("meeting.schedule"), "kind", string(e.Kind), logging.Err(e)}
	if e.Kind.Terminal() && e.Kind != KindEventCreationFailed {
		s.opts.Logger.Info("negotiation ended without a meeting", attrs...)
	} else {
		s.opts.Logger.Error("negotiation failed", attrs...)
	}
	return e
}

func (s *Scheduler) finish(ctx context.Context, outcome string, err error, started time.Time) {
	if err != nil {
		outcome = string(KindOf(err))
	}
	s.opts.Observer.Finished(ctx, outcome, time.Since(started))
}

func canceled(ctx context.Context, state State) *Error {
	if err := ctx.Err(); err != nil {
		return newError(KindCanceled, state, "negotiation canceled", err)
	}
	return nil
}
