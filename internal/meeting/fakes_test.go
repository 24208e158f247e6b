package meeting

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func testOptions() Options {
	return Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    fixedNow,
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 11, hour, minute, 0, 0, time.UTC)
}

var errUnavailable = errors.New("service unavailable")

// fakeCalendar implements CalendarReader and CalendarWriter.
type fakeCalendar struct {
	mu sync.Mutex

	events    map[string][]PastEvent
	listErr   map[string]error
	listDelay map[string]time.Duration

	busy         map[string][]TimeWindow
	freeBusyErr  map[string]error
	batchErr     error
	omit         map[string]bool
	freeBusyHook func(emails []string)

	createErr  error
	createResp *CreatedEvent
	created    []EventRequest

	listCalls     []string
	freeBusyCalls [][]string
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{
		events:      map[string][]PastEvent{},
		listErr:     map[string]error{},
		listDelay:   map[string]time.Duration{},
		busy:        map[string][]TimeWindow{},
		freeBusyErr: map[string]error{},
		omit:        map[string]bool{},
	}
}

func (c *fakeCalendar) ListPastEvents(ctx context.Context, email string, window TimeWindow) ([]PastEvent, error) {
	c.mu.Lock()
	c.listCalls = append(c.listCalls, email)
	delay := c.listDelay[email]
	err := c.listErr[email]
	events := c.events[email]
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (c *fakeCalendar) QueryFreeBusy(_ context.Context, emails []string, _ TimeWindow) (map[string]BusyResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.freeBusyCalls = append(c.freeBusyCalls, append([]string(nil), emails...))
	if c.freeBusyHook != nil {
		c.freeBusyHook(emails)
	}

	if len(emails) > 1 && c.batchErr != nil {
		return nil, c.batchErr
	}
	out := make(map[string]BusyResult, len(emails))
	for _, email := range emails {
		if c.omit[email] {
			continue
		}
		if err := c.freeBusyErr[email]; err != nil {
			out[email] = BusyResult{Err: err}
			continue
		}
		out[email] = BusyResult{Busy: c.busy[email]}
	}
	return out, nil
}

func (c *fakeCalendar) CreateEvent(_ context.Context, req EventRequest) (CreatedEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created = append(c.created, req)
	if c.createErr != nil {
		return CreatedEvent{}, c.createErr
	}
	if c.createResp != nil {
		return *c.createResp, nil
	}
	return CreatedEvent{
		EventID:        "evt-1",
		CalendarLink:   "https://calendar.example.com/evt-1",
		ConferenceLink: "https://meet.example.com/abc-defg-hij",
	}, nil
}

// fakeNotifier records every send and fails for configured recipients.
type fakeNotifier struct {
	mu   sync.Mutex
	fail map[string]error
	sent []Invitation
	ctxs []context.Context
}

func (n *fakeNotifier) Send(ctx context.Context, email string, inv Invitation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ctxs = append(n.ctxs, ctx)
	if err := n.fail[email]; err != nil {
		return err
	}
	n.sent = append(n.sent, inv)
	return nil
}

func (n *fakeNotifier) recipients() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, inv := range n.sent {
		out = append(out, inv.Recipient.Email)
	}
	return out
}

// fakeOracle answers summaries per attendee and a fixed slot proposal.
type fakeOracle struct {
	mu sync.Mutex

	summaries  map[string]string
	summaryErr map[string]error
	proposal   string
	proposeErr error
	onPropose  func()

	summarized []string
	proposals  []OracleInput
}

func (o *fakeOracle) Complete(_ context.Context, kind PromptKind, input OracleInput) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch kind {
	case PromptSummarizeRoutine:
		o.summarized = append(o.summarized, input.Attendee.Email)
		if err := o.summaryErr[input.Attendee.Email]; err != nil {
			return "", err
		}
		if s, ok := o.summaries[input.Attendee.Email]; ok {
			return s, nil
		}
		return "Usually busy in the mornings.", nil
	case PromptProposeSlots:
		o.proposals = append(o.proposals, input)
		if o.onPropose != nil {
			o.onPropose()
		}
		if o.proposeErr != nil {
			return "", o.proposeErr
		}
		return o.proposal, nil
	}
	return "", errors.New("unexpected prompt kind")
}

func (o *fakeOracle) summarizedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.summarized)
}

// recordingObserver captures engine telemetry.
type recordingObserver struct {
	mu       sync.Mutex
	states   []string
	calls    []string
	outcomes []string
}

func (r *recordingObserver) StateChanged(_ context.Context, state string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *recordingObserver) PortCall(_ context.Context, port, op string, err error, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.calls = append(r.calls, strings.Join([]string{port, op, status}, "/"))
}

func (r *recordingObserver) Finished(_ context.Context, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}
