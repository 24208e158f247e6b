package meeting

import (
	"context"
	"regexp"
	"time"

	"github.com/teemow/meetpilot/internal/logging"
)

const slotLayout = "2006-01-02 15:04"

// Bounds on the number of slots the oracle is asked to propose.
const (
	MinProposedSlots = 3
	MaxProposedSlots = 5
)

var slotPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}`)

// Negotiator asks the oracle for candidate slots and validates its reply.
type Negotiator struct {
	oracle TextOracle
	opts   Options
}

// NewNegotiator creates a Negotiator.
func NewNegotiator(oracle TextOracle, opts Options) *Negotiator {
	return &Negotiator{oracle: oracle, opts: opts.withDefaults()}
}

// Negotiate returns candidates on targetDay in the oracle's order. An empty
// result is a normal outcome. The returned error is only set when the oracle
// itself failed, and is always of KindOracleUnavailable.
func (n *Negotiator) Negotiate(ctx context.Context, profiles []RoutineProfile, targetDay time.Time) ([]CandidateSlot, error) {
	logger := logging.WithOperation(n.opts.Logger, "meeting.negotiate")

	var reply string
	err := n.opts.callPort(ctx, PortOracle, string(PromptProposeSlots), n.opts.Timeouts.Oracle, func(ctx context.Context) error {
		var err error
		reply, err = n.oracle.Complete(ctx, PromptProposeSlots, OracleInput{
			Profiles:  profiles,
			TargetDay: startOfDay(targetDay),
			MinSlots:  MinProposedSlots,
			MaxSlots:  MaxProposedSlots,
		})
		return err
	})
	if err != nil {
		logger.Warn("slot proposal unavailable", logging.Err(err))
		return nil, newError(KindOracleUnavailable, StateNegotiating, "slot proposal unavailable", err)
	}

	parsed := ParseSlots(reply, n.opts.Now())
	slots := OnDay(parsed, targetDay)
	logger.Debug("slot proposal parsed",
		"candidates", len(slots),
		"off_day", len(parsed)-len(slots))
	return slots, nil
}

// OnDay keeps the slots starting within the UTC day of day.
func OnDay(slots []CandidateSlot, day time.Time) []CandidateSlot {
	from := startOfDay(day)
	to := from.AddDate(0, 0, 1)
	out := make([]CandidateSlot, 0, len(slots))
	for _, s := range slots {
		if s.Start.Before(from) || !s.Start.Before(to) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ParseSlots extracts "YYYY-MM-DD HH:MM" timestamps (UTC) from free text.
// Non-matching text and invalid dates are ignored, duplicates keep their
// first occurrence and slots starting before now are dropped.
func ParseSlots(reply string, now time.Time) []CandidateSlot {
	var slots []CandidateSlot
	for _, match := range slotPattern.FindAllString(reply, -1) {
		t, err := time.ParseInLocation(slotLayout, match, time.UTC)
		if err != nil {
			continue
		}
		slots = append(slots, NewCandidateSlot(t))
	}
	return dropPast(Dedupe(slots), now)
}

// Dedupe removes slots with an already seen start, preserving order.
func Dedupe(slots []CandidateSlot) []CandidateSlot {
	seen := make(map[int64]bool, len(slots))
	out := make([]CandidateSlot, 0, len(slots))
	for _, s := range slots {
		key := s.Start.UnixNano()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func dropPast(slots []CandidateSlot, now time.Time) []CandidateSlot {
	out := slots[:0]
	for _, s := range slots {
		if s.Start.Before(now) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// TargetDay returns the UTC day after now.
func TargetDay(now time.Time) time.Time {
	return startOfDay(now.UTC().AddDate(0, 0, 1))
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
