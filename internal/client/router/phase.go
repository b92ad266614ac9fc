package router

type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseInitializing
	PhaseColdStart
	PhaseIdle
	PhaseRouting
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseColdStart:
		return "cold-start"
	case PhaseIdle:
		return "idle"
	case PhaseRouting:
		return "routing"
	}
	return "uninitialized"
}

// Ready reports whether decisions may run.
func (p Phase) Ready() bool {
	return p == PhaseColdStart || p == PhaseIdle || p == PhaseRouting
}

// Outcome is the result of one routing trigger.
type Outcome int

const (
	OutcomeNotReady Outcome = iota
	OutcomeDropped
	OutcomeLogin
	OutcomeProfile
	OutcomeAwaitingChoice
	OutcomeSignUpPending
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDropped:
		return "dropped"
	case OutcomeLogin:
		return "login"
	case OutcomeProfile:
		return "profile"
	case OutcomeAwaitingChoice:
		return "awaiting-choice"
	case OutcomeSignUpPending:
		return "sign-up-pending"
	case OutcomeFailed:
		return "failed"
	}
	return "not-ready"
}
