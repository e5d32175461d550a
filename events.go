package bthome

import "fmt"

// ButtonEvent denotes a BThome button event
type ButtonEvent uint8

const (
	ButtonNone            ButtonEvent = 0x00
	ButtonPress           ButtonEvent = 0x01
	ButtonDoublePress     ButtonEvent = 0x02
	ButtonTriplePress     ButtonEvent = 0x03
	ButtonLongPress       ButtonEvent = 0x04
	ButtonLongDoublePress ButtonEvent = 0x05
	ButtonLongTriplePress ButtonEvent = 0x06
	ButtonHoldPress       ButtonEvent = 0x80
)

// String fulfils the Stringer interface
func (e ButtonEvent) String() string {
	switch e {
	case ButtonNone:
		return "None"
	case ButtonPress:
		return "Press"
	case ButtonDoublePress:
		return "DoublePress"
	case ButtonTriplePress:
		return "TriplePress"
	case ButtonLongPress:
		return "LongPress"
	case ButtonLongDoublePress:
		return "LongDoublePress"
	case ButtonLongTriplePress:
		return "LongTriplePress"
	case ButtonHoldPress:
		return "HoldPress"
	}
	return fmt.Sprintf("ButtonEvent(0x%02x)", uint8(e))
}

// DimmerEvent denotes a BThome dimmer event
type DimmerEvent uint8

const (
	DimmerNone        DimmerEvent = 0x00
	DimmerRotateLeft  DimmerEvent = 0x01
	DimmerRotateRight DimmerEvent = 0x02
)

// String fulfils the Stringer interface
func (e DimmerEvent) String() string {
	switch e {
	case DimmerNone:
		return "None"
	case DimmerRotateLeft:
		return "RotateLeft"
	case DimmerRotateRight:
		return "RotateRight"
	}
	return fmt.Sprintf("DimmerEvent(0x%02x)", uint8(e))
}
