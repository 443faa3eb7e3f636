package monitor

// State is the lifecycle phase of a Session.
type State int32

// Session states, in order. A session only ever moves forward.
const (
	StateIdle State = iota
	StateInitialScanning
	StateInitialGlobalScanning
	StateWatching
	StateStopping
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitialScanning:
		return "initial_scanning"
	case StateInitialGlobalScanning:
		return "initial_global_scanning"
	case StateWatching:
		return "watching"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
