package bthome

import (
	"fmt"
	"net"
	"sync"

	"github.com/fako1024/gatt"
)

// Radio denotes the subset of a gatt device required to broadcast advertisements
type Radio interface {
	Init(stateChanged func(gatt.Device, gatt.State)) error
	Advertise(a *gatt.AdvPacket) error
	StopAdvertising() error
	RemoveAllServices() error
}

// Beacon puts the advertisements of a Device on air
type Beacon struct {
	status Status
	device *Device

	stateChangeHandler func(status Status)
	stateChangeChan    chan Status

	radio Radio

	logger Logger

	mu sync.Mutex
}

// NewBeacon instantiates a new Beacon for the device, executing functional options, if any
func NewBeacon(device *Device, options ...func(*Beacon)) (*Beacon, error) {

	// Initialize a new instance of a Beacon
	b := &Beacon{
		device: device,
		logger: &NullLogger{},
	}

	// Execute functional options (if any), see beacon_options.go for implementation
	for _, option := range options {
		option(b)
	}

	// Initialize a new GATT device (if not provided as option)
	if b.radio == nil {
		btDevice, err := gatt.NewDevice(defaultBTOptions...)
		if err != nil {
			return nil, err
		}
		b.radio = btDevice
	}

	return b, b.radio.Init(b.onStateChanged)
}

// Status returns the current status of the beacon
func (b *Beacon) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.status
}

// SetStateChangeHandler defines a handler function that is called upon state change
func (b *Beacon) SetStateChangeHandler(fn func(status Status)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stateChangeHandler = fn
}

// SetStateChangeChannel defines a channel that receives all state changes (non-blocking)
func (b *Beacon) SetStateChangeChannel(ch chan Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stateChangeChan = ch
}

// Update builds an advertisement from the pending measurements of the device and
// (re-)starts advertising it. The device must not be modified concurrently.
func (b *Beacon) Update() error {
	b.mu.Lock()

	if b.status.State == StatePoweredOff {
		status := b.status
		b.mu.Unlock()
		return fmt.Errorf("cannot advertise unless adapter is powered on (current status: %v)", status)
	}

	data, err := b.device.AdvertisementData()
	if err != nil {
		b.mu.Unlock()
		return err
	}

	pkt, err := advPacket(data)
	if err != nil {
		b.mu.Unlock()
		return err
	}

	if err := b.radio.Advertise(pkt); err != nil {
		err = fmt.Errorf("failed to start advertising: %w", err)
		b.setStatus(StateIdle, err)
		return err
	}
	b.logger.Debugf("advertising % X", data)
	b.setStatus(StateAdvertising, nil)

	return nil
}

// Stop stops advertising
func (b *Beacon) Stop() error {
	b.mu.Lock()

	if b.status.State != StateAdvertising {
		b.mu.Unlock()
		return nil
	}
	if err := b.radio.StopAdvertising(); err != nil {
		b.mu.Unlock()
		return fmt.Errorf("failed to stop advertising: %w", err)
	}
	b.setStatus(StateIdle, nil)

	return nil
}

// SetMAC sets the device address used for advertising
func (b *Beacon) SetMAC(mac net.HardwareAddr) error {
	return fmt.Errorf("%w: setting the device address %s via gatt", ErrNotSupported, mac)
}

// Close stops advertising and releases the services held by the radio
func (b *Beacon) Close() error {
	if err := b.Stop(); err != nil {
		return err
	}
	return b.radio.RemoveAllServices()
}

////////////////////////////////////////////////////////////////////////////////

// setStatus must be called with the lock held, it releases the lock before
// notifying any handler / channel
func (b *Beacon) setStatus(state State, err error) {
	b.status = Status{
		State: state,
		Error: err,
	}
	status, handler, ch := b.status, b.stateChangeHandler, b.stateChangeChan
	b.mu.Unlock()

	// Call handler function, if any
	if handler != nil {
		handler(status)
	}

	// Put state change on channel, if any
	if ch != nil {
		select {
		case ch <- status:
		default:
		}
	}
}

func (b *Beacon) onStateChanged(d gatt.Device, s gatt.State) {
	b.mu.Lock()

	switch s {
	case gatt.StatePoweredOn:
		b.logger.Debugf("adapter powered on")
		b.setStatus(StateIdle, nil)
		return
	case gatt.StatePoweredOff:
		b.logger.Debugf("adapter powered off")
		b.setStatus(StatePoweredOff, nil)
		return
	default:
		b.mu.Unlock()
		b.logger.Warnf("unhandled adapter state: %v", s)
	}
}

// advPacket converts a sequence of AD structures into a gatt advertising packet
func advPacket(data []byte) (*gatt.AdvPacket, error) {
	pkt := &gatt.AdvPacket{}
	for i := 0; i < len(data); {
		l := int(data[i])
		if l == 0 || i+1+l > len(data) {
			return nil, fmt.Errorf("malformed AD structure at offset %d", i)
		}
		pkt.AppendField(data[i+1], data[i+2:i+1+l])
		i += 1 + l
	}

	return pkt, nil
}
