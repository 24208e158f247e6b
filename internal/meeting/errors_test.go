package meeting

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := newError(KindEventCreationFailed, StateCommitting, "calendar write failed", errUnavailable)
	assert.Equal(t, "EventCreationFailed: calendar write failed: service unavailable", err.Error())

	bare := &Error{Kind: KindCanceled}
	assert.Equal(t, "Canceled", bare.Error())
}

func TestError_IsAndKind(t *testing.T) {
	inner := newError(KindOracleUnavailable, StateNegotiating, "slot proposal unavailable", errUnavailable)
	outer := newError(KindNoCandidatesFound, StateNegotiating, "no usable slots proposed", inner)
	wrapped := fmt.Errorf("tool failed: %w", outer)

	assert.True(t, errors.Is(wrapped, &Error{Kind: KindNoCandidatesFound}))
	assert.True(t, errors.Is(wrapped, &Error{Kind: KindOracleUnavailable}))
	assert.False(t, errors.Is(wrapped, &Error{Kind: KindAllCandidatesBusy}))
	assert.True(t, errors.Is(wrapped, errUnavailable))

	assert.True(t, IsKind(wrapped, KindNoCandidatesFound))
	assert.Equal(t, KindNoCandidatesFound, KindOf(wrapped))
	assert.Equal(t, Kind(""), KindOf(errUnavailable))
	assert.False(t, IsKind(nil, KindCanceled))
}

func TestKind_Terminal(t *testing.T) {
	recoverable := []Kind{KindProfileFetchFailed, KindOracleUnavailable, KindNotificationFailed}
	for _, k := range recoverable {
		assert.False(t, k.Terminal(), k)
	}
	terminal := []Kind{KindInvalidRequest, KindNoCandidatesFound, KindAllCandidatesBusy, KindEventCreationFailed, KindCanceled}
	for _, k := range terminal {
		assert.True(t, k.Terminal(), k)
	}
}
