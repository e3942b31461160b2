package crossing

// State is the current operating state of the crossing.
type State int

// Crossing states.
const (
	RedLight State = iota
	Yellow1
	Green
	Yellow2
	TrainClosing
	TrainClosed
	TrainOpening
	TrainWaitPed
	Maintenance
)

var stateNames = [...]string{
	RedLight:     "RED_LIGHT",
	Yellow1:      "YELLOW_LIGHT1",
	Green:        "GREEN_LIGHT",
	Yellow2:      "YELLOW_LIGHT2",
	TrainClosing: "TRAIN_CLOSING",
	TrainClosed:  "TRAIN_CLOSED",
	TrainOpening: "TRAIN_OPENING",
	TrainWaitPed: "TRAIN_WAIT_PED",
	Maintenance:  "MAINTENANCE",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "UNKNOWN"
}

// Priority ranks which override may interrupt a state. Declaration order
// of the State constants carries no meaning.
type Priority int

// Priorities, lowest first.
const (
	PriorityCycle Priority = iota
	PriorityTrain
	PriorityMaintenance
)

var statePriorities = map[State]Priority{
	RedLight:     PriorityCycle,
	Yellow1:      PriorityCycle,
	Green:        PriorityCycle,
	Yellow2:      PriorityCycle,
	TrainClosing: PriorityTrain,
	TrainClosed:  PriorityTrain,
	TrainOpening: PriorityTrain,
	TrainWaitPed: PriorityTrain,
	Maintenance:  PriorityMaintenance,
}

// Priority returns the priority of the state.
func (s State) Priority() Priority {
	return statePriorities[s]
}

// IsTrain reports whether the state belongs to the train sequence.
func (s State) IsTrain() bool {
	return s.Priority() == PriorityTrain
}
