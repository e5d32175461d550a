package bthome

import (
	"fmt"
	"strings"
)

// ObjectID denotes a BThome V2 object identifier (the first byte of each measurement)
type ObjectID uint8

const (

	// ObjectText is the object ID of a length-prefixed text payload
	ObjectText ObjectID = 0x53

	// ObjectRaw is the object ID of a length-prefixed raw payload
	ObjectRaw ObjectID = 0x54
)

// SensorSpec denotes the wire format of a numeric BThome V2 quantity
type SensorSpec struct {
	ID     ObjectID
	Width  int
	Scale  float64
	Signed bool
}

// StateSpec denotes the wire format of a binary sensor or an event
type StateSpec struct {
	ID    ObjectID
	Width int
}

// Numeric quantities, see https://bthome.io/format/
// Changing any of these is a wire format break.
var (
	PacketID = SensorSpec{ID: 0x00, Width: 1, Scale: 1}
	Battery  = SensorSpec{ID: 0x01, Width: 1, Scale: 1}

	Temperature       = SensorSpec{ID: 0x02, Width: 2, Scale: 0.01, Signed: true}
	TemperatureDeci   = SensorSpec{ID: 0x45, Width: 2, Scale: 0.1, Signed: true}
	TemperatureInt8   = SensorSpec{ID: 0x57, Width: 1, Scale: 1, Signed: true}
	TemperatureLowRes = SensorSpec{ID: 0x58, Width: 1, Scale: 0.35, Signed: true}
	DewPoint          = SensorSpec{ID: 0x08, Width: 2, Scale: 0.01, Signed: true}

	Humidity      = SensorSpec{ID: 0x03, Width: 2, Scale: 0.01}
	HumidityUint8 = SensorSpec{ID: 0x2E, Width: 1, Scale: 1}
	Moisture      = SensorSpec{ID: 0x14, Width: 2, Scale: 0.01}
	MoistureUint8 = SensorSpec{ID: 0x2F, Width: 1, Scale: 1}

	Pressure    = SensorSpec{ID: 0x04, Width: 3, Scale: 0.01}
	Illuminance = SensorSpec{ID: 0x05, Width: 3, Scale: 0.01}
	MassKg      = SensorSpec{ID: 0x06, Width: 2, Scale: 0.01}
	MassLb      = SensorSpec{ID: 0x07, Width: 2, Scale: 0.01}

	CountUint8  = SensorSpec{ID: 0x09, Width: 1, Scale: 1}
	CountUint16 = SensorSpec{ID: 0x3D, Width: 2, Scale: 1}
	CountUint32 = SensorSpec{ID: 0x3E, Width: 4, Scale: 1}
	CountInt8   = SensorSpec{ID: 0x59, Width: 1, Scale: 1, Signed: true}
	CountInt16  = SensorSpec{ID: 0x5A, Width: 2, Scale: 1, Signed: true}
	CountInt32  = SensorSpec{ID: 0x5B, Width: 4, Scale: 1, Signed: true}

	Energy       = SensorSpec{ID: 0x0A, Width: 3, Scale: 0.001}
	EnergyUint32 = SensorSpec{ID: 0x4D, Width: 4, Scale: 0.001}
	Power        = SensorSpec{ID: 0x0B, Width: 3, Scale: 0.01}
	PowerInt32   = SensorSpec{ID: 0x5C, Width: 4, Scale: 0.01, Signed: true}
	Voltage      = SensorSpec{ID: 0x0C, Width: 2, Scale: 0.001}
	VoltageDeci  = SensorSpec{ID: 0x4A, Width: 2, Scale: 0.1}
	Current      = SensorSpec{ID: 0x43, Width: 2, Scale: 0.001}
	CurrentInt16 = SensorSpec{ID: 0x5D, Width: 2, Scale: 0.001, Signed: true}

	PM25 = SensorSpec{ID: 0x0D, Width: 2, Scale: 1}
	PM10 = SensorSpec{ID: 0x0E, Width: 2, Scale: 1}
	CO2  = SensorSpec{ID: 0x12, Width: 2, Scale: 1}
	TVOC = SensorSpec{ID: 0x13, Width: 2, Scale: 1}

	Rotation       = SensorSpec{ID: 0x3F, Width: 2, Scale: 0.1, Signed: true}
	DistanceMM     = SensorSpec{ID: 0x40, Width: 2, Scale: 1}
	DistanceM      = SensorSpec{ID: 0x41, Width: 2, Scale: 0.1}
	Duration       = SensorSpec{ID: 0x42, Width: 3, Scale: 0.001}
	Speed          = SensorSpec{ID: 0x44, Width: 2, Scale: 0.01}
	UVIndex        = SensorSpec{ID: 0x46, Width: 1, Scale: 0.1}
	VolumeDeci     = SensorSpec{ID: 0x47, Width: 2, Scale: 0.1}
	Volume         = SensorSpec{ID: 0x48, Width: 2, Scale: 1}
	VolumeFlowRate = SensorSpec{ID: 0x49, Width: 2, Scale: 0.001}
	Gas            = SensorSpec{ID: 0x4B, Width: 3, Scale: 0.001}
	GasUint32      = SensorSpec{ID: 0x4C, Width: 4, Scale: 0.001}
	VolumeMilli    = SensorSpec{ID: 0x4E, Width: 4, Scale: 0.001}
	Water          = SensorSpec{ID: 0x4F, Width: 4, Scale: 0.001}
	Timestamp      = SensorSpec{ID: 0x50, Width: 4, Scale: 1}
	Acceleration   = SensorSpec{ID: 0x51, Width: 2, Scale: 0.001}
	Gyroscope      = SensorSpec{ID: 0x52, Width: 2, Scale: 0.001}
	VolumeStorage  = SensorSpec{ID: 0x55, Width: 4, Scale: 0.001}
	Conductivity   = SensorSpec{ID: 0x56, Width: 2, Scale: 1}
	Direction      = SensorSpec{ID: 0x5E, Width: 2, Scale: 0.01}
	Precipitation  = SensorSpec{ID: 0x5F, Width: 2, Scale: 0.1}
	Channel        = SensorSpec{ID: 0x60, Width: 1, Scale: 1}
)

// Binary sensors and events
var (
	GenericBoolean  = StateSpec{ID: 0x0F, Width: 1}
	PowerState      = StateSpec{ID: 0x10, Width: 1}
	Opening         = StateSpec{ID: 0x11, Width: 1}
	BatteryLow      = StateSpec{ID: 0x15, Width: 1}
	BatteryCharging = StateSpec{ID: 0x16, Width: 1}
	CarbonMonoxide  = StateSpec{ID: 0x17, Width: 1}
	Cold            = StateSpec{ID: 0x18, Width: 1}
	Connectivity    = StateSpec{ID: 0x19, Width: 1}
	Door            = StateSpec{ID: 0x1A, Width: 1}
	GarageDoor      = StateSpec{ID: 0x1B, Width: 1}
	GasDetected     = StateSpec{ID: 0x1C, Width: 1}
	Heat            = StateSpec{ID: 0x1D, Width: 1}
	Light           = StateSpec{ID: 0x1E, Width: 1}
	Lock            = StateSpec{ID: 0x1F, Width: 1}
	MoistureState   = StateSpec{ID: 0x20, Width: 1}
	Motion          = StateSpec{ID: 0x21, Width: 1}
	Moving          = StateSpec{ID: 0x22, Width: 1}
	Occupancy       = StateSpec{ID: 0x23, Width: 1}
	Plug            = StateSpec{ID: 0x24, Width: 1}
	Presence        = StateSpec{ID: 0x25, Width: 1}
	Problem         = StateSpec{ID: 0x26, Width: 1}
	Running         = StateSpec{ID: 0x27, Width: 1}
	Safety          = StateSpec{ID: 0x28, Width: 1}
	Smoke           = StateSpec{ID: 0x29, Width: 1}
	Sound           = StateSpec{ID: 0x2A, Width: 1}
	Tamper          = StateSpec{ID: 0x2B, Width: 1}
	Vibration       = StateSpec{ID: 0x2C, Width: 1}
	Window          = StateSpec{ID: 0x2D, Width: 1}

	Button = StateSpec{ID: 0x3A, Width: 1}
	Dimmer = StateSpec{ID: 0x3C, Width: 2}
)

var sensorsByName = map[string]SensorSpec{
	"packet_id":           PacketID,
	"battery":             Battery,
	"temperature":         Temperature,
	"temperature_deci":    TemperatureDeci,
	"temperature_int8":    TemperatureInt8,
	"temperature_low_res": TemperatureLowRes,
	"dew_point":           DewPoint,
	"humidity":            Humidity,
	"humidity_uint8":      HumidityUint8,
	"moisture":            Moisture,
	"moisture_uint8":      MoistureUint8,
	"pressure":            Pressure,
	"illuminance":         Illuminance,
	"mass_kg":             MassKg,
	"mass_lb":             MassLb,
	"count_uint8":         CountUint8,
	"count_uint16":        CountUint16,
	"count_uint32":        CountUint32,
	"count_int8":          CountInt8,
	"count_int16":         CountInt16,
	"count_int32":         CountInt32,
	"energy":              Energy,
	"energy_uint32":       EnergyUint32,
	"power":               Power,
	"power_int32":         PowerInt32,
	"voltage":             Voltage,
	"voltage_deci":        VoltageDeci,
	"current":             Current,
	"current_int16":       CurrentInt16,
	"pm2_5":               PM25,
	"pm10":                PM10,
	"co2":                 CO2,
	"tvoc":                TVOC,
	"rotation":            Rotation,
	"distance_mm":         DistanceMM,
	"distance_m":          DistanceM,
	"duration":            Duration,
	"speed":               Speed,
	"uv_index":            UVIndex,
	"volume_deci":         VolumeDeci,
	"volume":              Volume,
	"volume_flow_rate":    VolumeFlowRate,
	"gas":                 Gas,
	"gas_uint32":          GasUint32,
	"volume_milli":        VolumeMilli,
	"water":               Water,
	"timestamp":           Timestamp,
	"acceleration":        Acceleration,
	"gyroscope":           Gyroscope,
	"volume_storage":      VolumeStorage,
	"conductivity":        Conductivity,
	"direction":           Direction,
	"precipitation":       Precipitation,
	"channel":             Channel,
}

var statesByName = map[string]StateSpec{
	"generic_boolean":  GenericBoolean,
	"power_state":      PowerState,
	"opening":          Opening,
	"battery_low":      BatteryLow,
	"battery_charging": BatteryCharging,
	"carbon_monoxide":  CarbonMonoxide,
	"cold":             Cold,
	"connectivity":     Connectivity,
	"door":             Door,
	"garage_door":      GarageDoor,
	"gas_detected":     GasDetected,
	"heat":             Heat,
	"light":            Light,
	"lock":             Lock,
	"moisture_state":   MoistureState,
	"motion":           Motion,
	"moving":           Moving,
	"occupancy":        Occupancy,
	"plug":             Plug,
	"presence":         Presence,
	"problem":          Problem,
	"running":          Running,
	"safety":           Safety,
	"smoke":            Smoke,
	"sound":            Sound,
	"tamper":           Tamper,
	"vibration":        Vibration,
	"window":           Window,
	"button":           Button,
	"dimmer":           Dimmer,
}

// LookupSensor returns the numeric quantity registered under the given name
func LookupSensor(name string) (SensorSpec, error) {
	spec, ok := sensorsByName[strings.ToLower(name)]
	if !ok {
		return SensorSpec{}, fmt.Errorf("%w: sensor `%s`", ErrEncodingUnsupported, name)
	}
	return spec, nil
}

// LookupState returns the binary sensor / event registered under the given name
func LookupState(name string) (StateSpec, error) {
	spec, ok := statesByName[strings.ToLower(name)]
	if !ok {
		return StateSpec{}, fmt.Errorf("%w: state `%s`", ErrEncodingUnsupported, name)
	}
	return spec, nil
}
