package jobs

// State is a job's position in the extraction pipeline.
type State string

const (
	StateQueued        State = "queued"
	StateExtracting    State = "extracting"
	StateTranscribing  State = "transcribing"
	StateUnderstanding State = "understanding"
	StateSynthesizing  State = "synthesizing"
	StateValidating    State = "validating"
	StateCompleted     State = "completed"
	StateFailed        State = "failed"
)

// Phases lists the non-failure states in pipeline order.
var Phases = []State{
	StateQueued, StateExtracting, StateTranscribing, StateUnderstanding,
	StateSynthesizing, StateValidating, StateCompleted,
}

var progress = map[State]int{
	StateQueued:        0,
	StateExtracting:    15,
	StateTranscribing:  35,
	StateUnderstanding: 55,
	StateSynthesizing:  70,
	StateValidating:    85,
	StateCompleted:     100,
	StateFailed:        100,
}

// Progress is the coarse percentage reported for s.
func (s State) Progress() int { return progress[s] }

// Terminal reports whether no further transitions are possible from s.
func (s State) Terminal() bool { return s == StateCompleted || s == StateFailed }

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	_, ok := progress[s]
	return ok
}

// CanTransition reports whether a job may move from one state to another:
// one step forward along Phases, or to failed from any non-terminal state.
func CanTransition(from, to State) bool {
	if from.Terminal() || !from.Valid() {
		return false
	}
	if to == StateFailed {
		return true
	}
	for i := 0; i < len(Phases)-1; i++ {
		if Phases[i] == from {
			return Phases[i+1] == to
		}
	}
	return false
}
