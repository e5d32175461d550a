package bthome

import (
	"fmt"
	"math"
	"time"
)

const (

	// MaxShortNameLength is the maximum length of the short device name
	MaxShortNameLength = 10

	// MaxCompleteNameLength is the maximum length of the complete device name
	MaxCompleteNameLength = 20

	defaultShortName    = "BThome"
	defaultCompleteName = "BThome"
)

// Device denotes a BThome V2 advertising identity and its pending measurements.
// A Device is not safe for concurrent use, callers must serialize access.
type Device struct {
	shortName    string
	completeName string
	triggerBased bool
	strictRange  bool

	// Option input only, moved into enc by New
	key     []byte
	mac     []byte
	counter uint32

	acc *accumulator
	enc *encryptor

	logger Logger
}

// New instantiates a new Device, executing functional options, if any
func New(options ...func(*Device)) (*Device, error) {

	// Initialize a new instance of a Device
	d := &Device{
		shortName:    defaultShortName,
		completeName: defaultCompleteName,
		logger:       &NullLogger{},
	}

	// Execute functional options (if any), see options.go for implementation
	for _, option := range options {
		option(d)
	}

	d.shortName = truncate(d.shortName, MaxShortNameLength)
	d.completeName = truncate(d.completeName, MaxCompleteNameLength)

	// Set up the encryption framing (if a bind key was provided)
	reserved := 0
	if d.key != nil {
		enc, err := newEncryptor(d.key, d.mac, d.counter)
		if err != nil {
			return nil, err
		}
		d.enc = enc
		reserved = encryptionExtra
	}
	d.key, d.mac, d.counter = nil, nil, 0

	d.acc = newAccumulator(reserved, d.strictRange)

	return d, nil
}

// Encrypted returns if advertisements are AES-CCM encrypted
func (d *Device) Encrypted() bool {
	return d.enc != nil
}

// Counter returns the counter that will be used for the next encrypted advertisement
func (d *Device) Counter() uint32 {
	if d.enc == nil {
		return 0
	}
	return d.enc.counter
}

// Len returns the number of pending measurements
func (d *Device) Len() int {
	return d.acc.len()
}

// Remaining returns the number of payload bytes still available
func (d *Device) Remaining() int {
	return d.acc.remaining()
}

// Clear drops all pending measurements
func (d *Device) Clear() {
	d.acc.reset()
}

// Build writes the advertisement for the pending measurements to dst and returns the
// number of bytes written (at most min(len(dst), MaxAdvertisementSize)). On error
// zero bytes are written and the advertisement must not be sent.
func (d *Device) Build(dst []byte) (int, error) {
	counter := d.Counter()

	n, err := d.encode(dst)
	if err != nil {
		d.logger.Warnf("failed to build advertisement: %s", err)
		return 0, err
	}

	if d.enc != nil {
		d.logger.Debugf("built encrypted advertisement (%d bytes, %d measurements, counter %d)", n, d.acc.len(), counter)
	} else {
		d.logger.Debugf("built advertisement (%d bytes, %d measurements)", n, d.acc.len())
	}

	return n, nil
}

// AdvertisementData builds the advertisement for the pending measurements and
// returns it as newly allocated slice
func (d *Device) AdvertisementData() ([]byte, error) {
	var buf [MaxAdvertisementSize]byte
	n, err := d.Build(buf[:])
	if err != nil {
		return nil, err
	}

	return append([]byte(nil), buf[:n]...), nil
}

// AddSensor adds a numeric measurement, scaled according to its SensorSpec
func (d *Device) AddSensor(spec SensorSpec, value float64) error {
	return d.rejected(spec.ID, d.acc.addNumeric(spec, value))
}

// AddState adds a binary sensor state or an event
func (d *Device) AddState(spec StateSpec, state uint8) error {
	return d.rejected(spec.ID, d.acc.addState(spec, state, 0))
}

// AddStateWithSteps adds a two byte event (e.g. a dimmer event with its number of steps)
func (d *Device) AddStateWithSteps(spec StateSpec, state, steps uint8) error {
	return d.rejected(spec.ID, d.acc.addState(spec, state, steps))
}

// AddRaw adds a length-prefixed payload under an arbitrary object ID
func (d *Device) AddRaw(id ObjectID, b []byte) error {
	return d.rejected(id, d.acc.addRaw(id, b))
}

// Add adds a measurement by its registry name. Numeric quantities are scaled,
// binary sensors and events take the value as raw state
func (d *Device) Add(kind string, value float64) error {
	if spec, err := LookupSensor(kind); err == nil {
		return d.AddSensor(spec, value)
	}
	spec, err := LookupState(kind)
	if err != nil {
		return fmt.Errorf("%w: unknown kind `%s`", ErrEncodingUnsupported, kind)
	}
	if value < 0 || value > math.MaxUint8 {
		return fmt.Errorf("%w: state value %v for `%s`", ErrValueOutOfRange, value, kind)
	}

	return d.AddState(spec, uint8(value))
}

////////////////////////////////////////////////////////////////////////////////

// AddPacketID adds a packet ID, allowing receivers to drop duplicates
func (d *Device) AddPacketID(id uint8) error {
	return d.AddSensor(PacketID, float64(id))
}

// AddBattery adds the battery level in percent
func (d *Device) AddBattery(percent uint8) error {
	return d.AddSensor(Battery, float64(percent))
}

// AddTemperature adds a temperature in °C (0.01 resolution, ±327.67)
func (d *Device) AddTemperature(celsius float64) error {
	return d.AddSensor(Temperature, celsius)
}

// AddTemperatureDeci adds a temperature in °C (0.1 resolution, ±3276.7)
func (d *Device) AddTemperatureDeci(celsius float64) error {
	return d.AddSensor(TemperatureDeci, celsius)
}

// AddTemperatureInt8 adds a temperature in whole °C (-128 to 127)
func (d *Device) AddTemperatureInt8(celsius int8) error {
	return d.AddSensor(TemperatureInt8, float64(celsius))
}

// AddTemperatureLowRes adds a temperature in °C (0.35 resolution, ±44.8)
func (d *Device) AddTemperatureLowRes(celsius float64) error {
	return d.AddSensor(TemperatureLowRes, celsius)
}

// AddDewPoint adds a dew point in °C
func (d *Device) AddDewPoint(celsius float64) error {
	return d.AddSensor(DewPoint, celsius)
}

// AddHumidity adds the relative humidity in percent (0.01 resolution)
func (d *Device) AddHumidity(percent float64) error {
	return d.AddSensor(Humidity, percent)
}

// AddMoisture adds the moisture in percent (0.01 resolution)
func (d *Device) AddMoisture(percent float64) error {
	return d.AddSensor(Moisture, percent)
}

// AddPressure adds the pressure in hPa
func (d *Device) AddPressure(hPa float64) error {
	return d.AddSensor(Pressure, hPa)
}

// AddIlluminance adds the illuminance in lux
func (d *Device) AddIlluminance(lux float64) error {
	return d.AddSensor(Illuminance, lux)
}

// AddCO2 adds the CO2 concentration in ppm
func (d *Device) AddCO2(ppm uint16) error {
	return d.AddSensor(CO2, float64(ppm))
}

// AddTVOC adds the TVOC concentration in µg/m³
func (d *Device) AddTVOC(ugm3 uint16) error {
	return d.AddSensor(TVOC, float64(ugm3))
}

// AddPM25 adds the PM2.5 concentration in µg/m³
func (d *Device) AddPM25(ugm3 uint16) error {
	return d.AddSensor(PM25, float64(ugm3))
}

// AddPM10 adds the PM10 concentration in µg/m³
func (d *Device) AddPM10(ugm3 uint16) error {
	return d.AddSensor(PM10, float64(ugm3))
}

// AddEnergy adds the energy in kWh (0 to 16777.215)
func (d *Device) AddEnergy(kWh float64) error {
	return d.AddSensor(Energy, kWh)
}

// AddPower adds the power in W (0 to 167772.15)
func (d *Device) AddPower(watts float64) error {
	return d.AddSensor(Power, watts)
}

// AddVoltage adds the voltage in V (0.001 resolution)
func (d *Device) AddVoltage(volts float64) error {
	return d.AddSensor(Voltage, volts)
}

// AddCurrent adds the current in A (0.001 resolution)
func (d *Device) AddCurrent(amps float64) error {
	return d.AddSensor(Current, amps)
}

// AddDistanceMM adds a distance in mm
func (d *Device) AddDistanceMM(mm uint16) error {
	return d.AddSensor(DistanceMM, float64(mm))
}

// AddDistanceM adds a distance in m (0.1 resolution)
func (d *Device) AddDistanceM(metres float64) error {
	return d.AddSensor(DistanceM, metres)
}

// AddAcceleration adds an acceleration in m/s²
func (d *Device) AddAcceleration(ms2 float64) error {
	return d.AddSensor(Acceleration, ms2)
}

// AddGyroscope adds an angular velocity in °/s
func (d *Device) AddGyroscope(degPerSecond float64) error {
	return d.AddSensor(Gyroscope, degPerSecond)
}

// AddDuration adds a duration (millisecond resolution)
func (d *Device) AddDuration(duration time.Duration) error {
	return d.AddSensor(Duration, duration.Seconds())
}

// AddCount adds a count, using the narrowest unsigned count object that holds it
func (d *Device) AddCount(count uint32) error {
	switch {
	case count <= math.MaxUint8:
		return d.AddSensor(CountUint8, float64(count))
	case count <= math.MaxUint16:
		return d.AddSensor(CountUint16, float64(count))
	default:
		return d.AddSensor(CountUint32, float64(count))
	}
}

// AddSignedCount adds a signed count, using the narrowest signed count object that holds it
func (d *Device) AddSignedCount(count int32) error {
	switch {
	case count >= math.MinInt8 && count <= math.MaxInt8:
		return d.AddSensor(CountInt8, float64(count))
	case count >= math.MinInt16 && count <= math.MaxInt16:
		return d.AddSensor(CountInt16, float64(count))
	default:
		return d.AddSensor(CountInt32, float64(count))
	}
}

// AddTime adds a point in time (seconds since the Unix epoch)
func (d *Device) AddTime(t time.Time) error {
	return d.AddSensor(Timestamp, float64(t.Unix()))
}

// AddText adds a length-prefixed text
func (d *Device) AddText(text string) error {
	return d.AddRaw(ObjectText, []byte(text))
}

// SetBinary adds a binary sensor state
func (d *Device) SetBinary(spec StateSpec, on bool) error {
	var state uint8
	if on {
		state = 1
	}
	return d.AddState(spec, state)
}

// SetButtonEvent adds a button event
func (d *Device) SetButtonEvent(event ButtonEvent) error {
	return d.AddState(Button, uint8(event))
}

// SetDimmerEvent adds a dimmer event with the number of steps rotated
func (d *Device) SetDimmerEvent(event DimmerEvent, steps uint8) error {
	return d.AddStateWithSteps(Dimmer, uint8(event), steps)
}

////////////////////////////////////////////////////////////////////////////////

func (d *Device) rejected(id ObjectID, err error) error {
	if err != nil {
		d.logger.Debugf("rejected measurement 0x%02x: %s", uint8(id), err)
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
