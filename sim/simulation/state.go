package simulation

// A State is a stage of the simulator lifecycle.
type State int

// The simulator moves from Uninitialized to Running when Run is called and
// to Terminated when Run returns.
const (
	Uninitialized State = iota
	Running
	Terminated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	default:
		return "invalid"
	}
}
