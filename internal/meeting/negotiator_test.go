package meeting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlots(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []CandidateSlot
	}{
		{
			name:  "numbered list",
			reply: "1. 2025-03-11 10:00\n2. 2025-03-11 14:30\n3. 2025-03-11 16:00",
			want: []CandidateSlot{
				NewCandidateSlot(at(10, 0)),
				NewCandidateSlot(at(14, 30)),
				NewCandidateSlot(at(16, 0)),
			},
		},
		{
			name:  "timestamps embedded in prose",
			reply: "How about 2025-03-11 11:00 UTC? Otherwise 2025-03-11 15:00 works for everyone.",
			want: []CandidateSlot{
				NewCandidateSlot(at(11, 0)),
				NewCandidateSlot(at(15, 0)),
			},
		},
		{
			name:  "duplicates keep first occurrence order",
			reply: "2025-03-11 14:00, 2025-03-11 10:00, 2025-03-11 14:00",
			want: []CandidateSlot{
				NewCandidateSlot(at(14, 0)),
				NewCandidateSlot(at(10, 0)),
			},
		},
		{
			name:  "invalid calendar dates are ignored",
			reply: "2025-02-30 10:00\n2025-03-11 25:00\n2025-03-11 12:00",
			want:  []CandidateSlot{NewCandidateSlot(at(12, 0))},
		},
		{
			name:  "past slots are dropped",
			reply: "2025-03-09 10:00\n2025-03-10 08:59\n2025-03-10 09:00",
			want:  []CandidateSlot{NewCandidateSlot(testNow)},
		},
		{
			name:  "no timestamps",
			reply: "I'm sorry, I cannot help with that.",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSlots(tt.reply, testNow)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDedupe(t *testing.T) {
	a := NewCandidateSlot(at(10, 0))
	b := NewCandidateSlot(at(11, 0))

	assert.Equal(t, []CandidateSlot{a, b}, Dedupe([]CandidateSlot{a, b, a, b, a}))
	assert.Empty(t, Dedupe(nil))
}

func TestOnDay(t *testing.T) {
	slots := []CandidateSlot{
		NewCandidateSlot(at(0, 0).Add(-time.Minute)),
		NewCandidateSlot(at(0, 0)),
		NewCandidateSlot(at(12, 0)),
		NewCandidateSlot(at(0, 0).AddDate(0, 0, 1)),
	}

	assert.Equal(t, []CandidateSlot{NewCandidateSlot(at(0, 0)), NewCandidateSlot(at(12, 0))},
		OnDay(slots, at(15, 0)))
	assert.Empty(t, OnDay(nil, at(0, 0)))
}

func TestTargetDay(t *testing.T) {
	assert.Equal(t, at(0, 0), TargetDay(testNow))

	late := testNow.Add(14*time.Hour + 59*time.Minute)
	assert.Equal(t, at(0, 0), TargetDay(late))
}

func TestNegotiator_Negotiate(t *testing.T) {
	profiles := []RoutineProfile{
		{AttendeeEmail: "alice@example.com", TextSummary: "Mornings are busy."},
		{AttendeeEmail: "bob@example.com", TextSummary: NoDataSummary},
	}

	t.Run("passes profiles and bounds to the oracle", func(t *testing.T) {
		oracle := &fakeOracle{proposal: "2025-03-11 10:00\n2025-03-11 13:00"}
		n := NewNegotiator(oracle, testOptions())

		slots, err := n.Negotiate(context.Background(), profiles, TargetDay(testNow))
		require.NoError(t, err)
		assert.Equal(t, []CandidateSlot{NewCandidateSlot(at(10, 0)), NewCandidateSlot(at(13, 0))}, slots)

		require.Len(t, oracle.proposals, 1)
		in := oracle.proposals[0]
		assert.Equal(t, profiles, in.Profiles)
		assert.Equal(t, at(0, 0), in.TargetDay)
		assert.Equal(t, MinProposedSlots, in.MinSlots)
		assert.Equal(t, MaxProposedSlots, in.MaxSlots)
	})

	t.Run("slots off the target day are dropped", func(t *testing.T) {
		oracle := &fakeOracle{proposal: "2025-03-11 10:00\n2025-03-20 10:00\n2026-01-01 09:00\n2025-03-12 00:00\n2025-03-11 23:30"}
		n := NewNegotiator(oracle, testOptions())

		slots, err := n.Negotiate(context.Background(), profiles, TargetDay(testNow))
		require.NoError(t, err)
		assert.Equal(t, []CandidateSlot{NewCandidateSlot(at(10, 0)), NewCandidateSlot(at(23, 30))}, slots)
	})

	t.Run("unparseable reply yields no candidates without error", func(t *testing.T) {
		n := NewNegotiator(&fakeOracle{proposal: "any time works"}, testOptions())

		slots, err := n.Negotiate(context.Background(), profiles, TargetDay(testNow))
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("oracle failure is reported as unavailable", func(t *testing.T) {
		n := NewNegotiator(&fakeOracle{proposeErr: errUnavailable}, testOptions())

		slots, err := n.Negotiate(context.Background(), profiles, TargetDay(testNow))
		assert.Empty(t, slots)
		assert.True(t, IsKind(err, KindOracleUnavailable))
		assert.ErrorIs(t, err, errUnavailable)
	})
}
