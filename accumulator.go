package bthome

import (
	"fmt"
	"math"
	"slices"
)

const (

	// MaxAdvertisementSize is the hard ceiling of a legacy BLE advertisement
	MaxAdvertisementSize = 31

	flagsSize        = 3 // 02 01 06
	serviceDataSize  = 4 // length, type, UUID (2)
	infoSize         = 1
	envelopeSize     = flagsSize + serviceDataSize + infoSize
	maxPayloadSize   = MaxAdvertisementSize - envelopeSize
	encryptionExtra  = counterSize + tagSize
	objectIDSize     = 1
	rawLengthSize    = 1
	minMeasurement   = objectIDSize + 1
	maxMeasurements  = maxPayloadSize / minMeasurement
	maxRawDataLength = maxPayloadSize - objectIDSize - rawLengthSize
)

type measurement struct {
	id   ObjectID
	data [maxPayloadSize - objectIDSize]byte
	n    int
}

func (m *measurement) size() int {
	return objectIDSize + m.n
}

// accumulator holds the pending measurements of one advertising cycle
type accumulator struct {
	entries [maxMeasurements]measurement
	count   int
	used    int

	reserved int
	strict   bool
}

func newAccumulator(reserved int, strict bool) *accumulator {
	return &accumulator{
		reserved: reserved,
		strict:   strict,
	}
}

func (a *accumulator) reset() {
	a.count = 0
	a.used = 0
}

func (a *accumulator) len() int {
	return a.count
}

func (a *accumulator) remaining() int {
	return maxPayloadSize - a.reserved - a.used
}

func (a *accumulator) fits(size int) error {
	if a.count >= maxMeasurements || size > a.remaining() {
		return fmt.Errorf("%w: need %d bytes, %d remaining", ErrCapacityExceeded, size, a.remaining())
	}
	return nil
}

func (a *accumulator) addNumeric(spec SensorSpec, value float64) error {
	if spec.Width < 1 || spec.Width > 4 || spec.Scale == 0 {
		return fmt.Errorf("%w: object 0x%02x (width %d, scale %v)", ErrEncodingUnsupported, uint8(spec.ID), spec.Width, spec.Scale)
	}
	if err := a.fits(objectIDSize + spec.Width); err != nil {
		return err
	}

	scaled := math.Round(value / spec.Scale)
	if math.IsNaN(scaled) || math.IsInf(scaled, 0) || (a.strict && !representable(scaled, spec)) {
		return fmt.Errorf("%w: %v does not fit object 0x%02x", ErrValueOutOfRange, value, uint8(spec.ID))
	}

	// Values outside the field width wrap modulo 2^(8*width) (two's complement truncation)
	modulus := math.Ldexp(1, 8*spec.Width)
	wrapped := math.Mod(scaled, modulus)
	if wrapped < 0 {
		wrapped += modulus
	}
	raw := uint64(wrapped)

	m := a.next()
	m.id = spec.ID
	for i := 0; i < spec.Width; i++ {
		m.data[i] = byte(raw >> (8 * i))
	}
	m.n = spec.Width
	a.commit(m)

	return nil
}

func (a *accumulator) addState(spec StateSpec, state, step uint8) error {
	if spec.Width < 1 || spec.Width > 2 {
		return fmt.Errorf("%w: state 0x%02x (width %d)", ErrEncodingUnsupported, uint8(spec.ID), spec.Width)
	}
	if err := a.fits(objectIDSize + spec.Width); err != nil {
		return err
	}

	m := a.next()
	m.id = spec.ID
	m.data[0] = state
	if spec.Width == 2 {
		m.data[1] = step
	}
	m.n = spec.Width
	a.commit(m)

	return nil
}

func (a *accumulator) addRaw(id ObjectID, b []byte) error {
	if len(b) > maxRawDataLength {
		return fmt.Errorf("%w: raw payload of %d bytes", ErrCapacityExceeded, len(b))
	}
	if err := a.fits(objectIDSize + rawLengthSize + len(b)); err != nil {
		return err
	}

	m := a.next()
	m.id = id
	m.data[0] = byte(len(b))
	copy(m.data[rawLengthSize:], b)
	m.n = rawLengthSize + len(b)
	a.commit(m)

	return nil
}

// sortedPayload writes all pending measurements, ordered by ascending object ID,
// to dst and returns the number of bytes written
func (a *accumulator) sortedPayload(dst []byte) int {
	slices.SortStableFunc(a.entries[:a.count], func(x, y measurement) int {
		return int(x.id) - int(y.id)
	})

	n := 0
	for i := 0; i < a.count; i++ {
		m := &a.entries[i]
		if n+m.size() > len(dst) {
			break
		}
		dst[n] = byte(m.id)
		n += objectIDSize
		n += copy(dst[n:], m.data[:m.n])
	}

	return n
}

func (a *accumulator) next() *measurement {
	return &a.entries[a.count]
}

func (a *accumulator) commit(m *measurement) {
	a.count++
	a.used += m.size()
}

func representable(scaled float64, spec SensorSpec) bool {
	bits := 8 * spec.Width
	if spec.Signed {
		limit := math.Ldexp(1, bits-1)
		return scaled >= -limit && scaled < limit
	}
	return scaled >= 0 && scaled < math.Ldexp(1, bits)
}
