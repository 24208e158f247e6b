package meeting

// State is a stage of the negotiation state machine.
type State string

const (
	StateCollectingProfiles State = "COLLECTING_PROFILES"
	StateNegotiating        State = "NEGOTIATING"
	StateVerifying          State = "VERIFYING"
	StateCommitting         State = "COMMITTING"
	StateNotifying          State = "NOTIFYING"
	StateDone               State = "DONE"
	StateFailed             State = "FAILED"
)

// Final reports whether no further transitions can happen.
func (s State) Final() bool {
	return s == StateDone || s == StateFailed
}
