package bthome

import "fmt"

// State denotes the advertising state of a beacon
type State int

const (

	// StatePoweredOff is active while the bluetooth adapter is unavailable
	StatePoweredOff State = iota

	// StateIdle is active while the adapter is powered on but not advertising
	StateIdle

	// StateAdvertising is active while an advertisement is on air
	StateAdvertising
)

// String fulfils the Stringer interface
func (s State) String() string {
	switch s {
	case StatePoweredOff:
		return "PoweredOff"
	case StateIdle:
		return "Idle"
	case StateAdvertising:
		return "Advertising"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Status denotes the current status of the beacon
type Status struct {
	Error error
	State
}
