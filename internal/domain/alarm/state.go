package alarm

// Phase is the orchestrator's position in the alarm lifecycle.
type Phase string

const (
	// PhaseEmpty means no alarm is armed.
	PhaseEmpty Phase = "empty"
	// PhaseArmed means exactly one alarm is armed.
	PhaseArmed Phase = "armed"
)

// State is a snapshot of the orchestrator's armed slot.
type State struct {
	// Phase is PhaseArmed when Armed is set.
	Phase Phase
	// Armed is the armed record, nil when the slot is empty.
	Armed *Record
}

// Clone returns a copy of the state to avoid leaking internal references.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	cloned := &State{Phase: s.Phase}

	if s.Armed != nil {
		armed := *s.Armed
		cloned.Armed = &armed
	}

	return cloned
}
