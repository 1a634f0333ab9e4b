package ledger

// DisputeStatus represents the dispute lifecycle state of a tracked
// transaction record.
//
// Semantics:
//   - NORMAL: tracked, never disputed.
//   - DISPUTED: amount moved from available to held, pending resolution.
//   - RESOLVED: dispute released back to available; terminal state.
//   - CHARGED_BACK: disputed amount withdrawn and account locked; terminal.
//
// Transitions:
//
//	NORMAL → DISPUTED
//	DISPUTED → RESOLVED | CHARGED_BACK
type DisputeStatus string

const (
	// StatusNormal marks a tracked record that has never been disputed.
	StatusNormal DisputeStatus = "NORMAL"
	// StatusDisputed marks a record whose amount is currently held.
	StatusDisputed DisputeStatus = "DISPUTED"
	// StatusResolved marks a dispute released back to available; terminal.
	StatusResolved DisputeStatus = "RESOLVED"
	// StatusChargedBack marks a dispute withdrawn with the account locked; terminal.
	StatusChargedBack DisputeStatus = "CHARGED_BACK"
)

// IsValid reports whether the status is part of the dispute lifecycle.
func (status DisputeStatus) IsValid() bool {
	switch status {
	case StatusNormal, StatusDisputed, StatusResolved, StatusChargedBack:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether a transition from status to next is allowed.
// A resolved record cannot be disputed again; both RESOLVED and CHARGED_BACK
// are terminal.
func (status DisputeStatus) CanTransitionTo(next DisputeStatus) bool {
	switch status {
	case StatusNormal:
		return next == StatusDisputed
	case StatusDisputed:
		return next == StatusResolved || next == StatusChargedBack
	case StatusResolved, StatusChargedBack:
		return false
	default:
		return false
	}
}

func (status DisputeStatus) String() string {
	return string(status)
}
