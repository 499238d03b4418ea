package game

// Phase is the controller's position in the game lifecycle.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseDealingSetup
	PhaseAuction
	PhaseGuessing
	PhaseScoring
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseDealingSetup:
		return "dealing"
	case PhaseAuction:
		return "auction"
	case PhaseGuessing:
		return "guessing"
	case PhaseScoring:
		return "scoring"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// InProgress reports whether a game is being played and joins must wait.
func (p Phase) InProgress() bool {
	return p != PhaseLobby && p != PhaseFinished
}
