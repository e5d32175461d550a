package bthome

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T, options ...func(*Device)) *Device {
	d, err := New(append([]func(*Device){WithNames("", "")}, options...)...)
	require.NoError(t, err)
	return d
}

func build(t *testing.T, d *Device) []byte {
	data, err := d.AdvertisementData()
	require.NoError(t, err)
	return data
}

func TestBuildUnencrypted(t *testing.T) {
	d := newTestDevice(t)
	require.NoError(t, d.AddTemperature(21.5))
	require.NoError(t, d.AddBattery(100))

	assert.Equal(t, []byte{
		0x02, 0x01, 0x06,
		0x09, 0x16, 0xd2, 0xfc, 0x40,
		0x01, 0x64,
		0x02, 0x66, 0x08,
	}, build(t, d))
}

func TestBuildSize(t *testing.T) {
	d := newTestDevice(t)

	specs := []SensorSpec{Battery, Temperature, Pressure, CountUint32, Humidity}
	expected := envelopeSize
	for _, spec := range specs {
		require.NoError(t, d.AddSensor(spec, 1))
		expected += objectIDSize + spec.Width
	}

	var buf [MaxAdvertisementSize]byte
	n, err := d.Build(buf[:])
	require.NoError(t, err)
	assert.Equal(t, expected, n)
	assert.Equal(t, byte(n-flagsSize-1), buf[3])
}

func TestBuildEmpty(t *testing.T) {
	d := newTestDevice(t)
	assert.Equal(t, []byte{0x02, 0x01, 0x06, 0x04, 0x16, 0xd2, 0xfc, 0x40}, build(t, d))

	d, err := New(WithNames("BThome", "BThome-Button"))
	require.NoError(t, err)
	assert.Equal(t, append(
		[]byte{0x02, 0x01, 0x06, 0x04, 0x16, 0xd2, 0xfc, 0x40, 0x0e, 0x09},
		"BThome-Button"...,
	), build(t, d))
}

func TestBuildTriggerBased(t *testing.T) {
	d := newTestDevice(t, WithTriggerBased())
	require.NoError(t, d.SetButtonEvent(ButtonPress))

	assert.Equal(t, []byte{
		0x02, 0x01, 0x06,
		0x06, 0x16, 0xd2, 0xfc, 0x44,
		0x3a, 0x01,
	}, build(t, d))
}

func TestBuildCapacityBoundary(t *testing.T) {
	d, err := New(WithNames("BThome", "BThome-Button"))
	require.NoError(t, err)

	for _, spec := range []SensorSpec{Pressure, Illuminance, Energy, Power, Gas, Temperature} {
		require.NoError(t, d.AddSensor(spec, 1))
	}

	data := build(t, d)
	assert.Len(t, data, MaxAdvertisementSize)

	// Exactly full: no further measurement, no name
	assert.ErrorIs(t, d.AddBattery(1), ErrCapacityExceeded)
	assert.Equal(t, data, build(t, d))
}

func TestBuildNameFallback(t *testing.T) {
	tests := []struct {
		name      string
		short     string
		complete  string
		fill      []SensorSpec
		wantType  byte
		wantName  string
		wantTotal int
	}{
		{
			name:      "complete name fits",
			short:     "BThome",
			complete:  "BThome-Button",
			fill:      []SensorSpec{Battery, Temperature},
			wantType:  adTypeName,
			wantName:  "BThome-Button",
			wantTotal: 13 + 15,
		},
		{
			name:      "short name fallback",
			short:     "BThome",
			complete:  "BThome-Button",
			fill:      []SensorSpec{Battery, Temperature, Humidity, Pressure, CO2},
			wantType:  adTypeShortName,
			wantName:  "BThome",
			wantTotal: MaxAdvertisementSize,
		},
		{
			name:      "no name fits",
			short:     "BThomeBtn1",
			complete:  "BThome-Button",
			fill:      []SensorSpec{Battery, Temperature, Humidity, Pressure, CO2},
			wantTotal: 23,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(WithNames(tt.short, tt.complete))
			require.NoError(t, err)
			for _, spec := range tt.fill {
				require.NoError(t, d.AddSensor(spec, 1))
			}

			data := build(t, d)
			require.Len(t, data, tt.wantTotal)
			if tt.wantName == "" {
				return
			}

			nameAD := data[len(data)-len(tt.wantName)-adHeaderSize:]
			assert.Equal(t, byte(len(tt.wantName)+1), nameAD[0])
			assert.Equal(t, tt.wantType, nameAD[1])
			assert.Equal(t, tt.wantName, string(nameAD[adHeaderSize:]))
		})
	}
}

func TestBuildNamesTruncated(t *testing.T) {
	d, err := New(WithNames("ABCDEFGHIJKLMNOP", "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	require.NoError(t, err)

	data := build(t, d)
	assert.Equal(t, "ABCDEFGHIJKLMNOPQRST", string(data[envelopeSize+adHeaderSize:]))
	assert.Equal(t, "ABCDEFGHIJ", d.shortName)
}

func TestBuildBufferLimits(t *testing.T) {
	d, err := New(WithNames("BThome", "BThome-Button"))
	require.NoError(t, err)
	require.NoError(t, d.AddTemperature(21.5))
	require.NoError(t, d.AddBattery(100))

	// Envelope does not fit: nothing written
	small := make([]byte, 10)
	n, err := d.Build(small)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
	assert.Zero(t, n)
	assert.Equal(t, make([]byte, 10), small)

	// Envelope fits, names are dropped to honour the buffer
	buf := make([]byte, 20)
	n, err = d.Build(buf)
	require.NoError(t, err)
	assert.Equal(t, 13, n)

	// Short name fits into the remaining 8 bytes
	buf = make([]byte, 21)
	n, err = d.Build(buf)
	require.NoError(t, err)
	assert.Equal(t, 21, n)
	assert.Equal(t, byte(adTypeShortName), buf[14])

	// Never more than 31 bytes, even for a larger buffer
	large := make([]byte, 64)
	n, err = d.Build(large)
	require.NoError(t, err)
	assert.Equal(t, 28, n)
	assert.Equal(t, make([]byte, 64-n), large[n:])
}

func TestBuildIdempotent(t *testing.T) {
	d := newTestDevice(t)

	populate := func() {
		d.Clear()
		require.NoError(t, d.AddHumidity(45.2))
		require.NoError(t, d.AddTemperature(-3.5))
		require.NoError(t, d.SetBinary(Window, true))
	}

	populate()
	first := build(t, d)
	populate()
	second := build(t, d)
	assert.Equal(t, first, second)

	// Building again without clearing is equally stable
	assert.Equal(t, first, build(t, d))
}

func TestFacade(t *testing.T) {
	d := newTestDevice(t)

	require.NoError(t, d.SetDimmerEvent(DimmerRotateLeft, 4))
	require.NoError(t, d.AddCount(70000))
	require.NoError(t, d.AddSignedCount(-300))
	require.NoError(t, d.AddTime(time.Unix(0x5f000000, 0)))

	assert.Equal(t, []byte{
		0x02, 0x01, 0x06,
		0x14, 0x16, 0xd2, 0xfc, 0x40,
		0x3c, 0x01, 0x04,
		0x3e, 0x70, 0x11, 0x01, 0x00,
		0x50, 0x00, 0x00, 0x00, 0x5f,
		0x5a, 0xd4, 0xfe,
	}, build(t, d))

	d.Clear()
	require.NoError(t, d.AddCount(200))
	require.NoError(t, d.AddText("ok"))
	require.NoError(t, d.AddDuration(1500*time.Millisecond))
	assert.Equal(t, []byte{
		0x09, 0xc8,
		0x42, 0xdc, 0x05, 0x00,
		0x53, 0x02, 'o', 'k',
	}, build(t, d)[envelopeSize:])
}

func TestAddByKind(t *testing.T) {
	d := newTestDevice(t)

	require.NoError(t, d.Add("temperature", 21.5))
	require.NoError(t, d.Add("motion", 1))
	assert.ErrorIs(t, d.Add("motion", 256), ErrValueOutOfRange)
	assert.ErrorIs(t, d.Add("hyperdrive", 1), ErrEncodingUnsupported)

	assert.Equal(t, []byte{0x02, 0x66, 0x08, 0x21, 0x01}, build(t, d)[envelopeSize:])
}

func TestStrictRange(t *testing.T) {
	d := newTestDevice(t, WithStrictRange())
	assert.ErrorIs(t, d.AddTemperature(400), ErrValueOutOfRange)
	assert.Zero(t, d.Len())

	lenient := newTestDevice(t)
	assert.NoError(t, lenient.AddTemperature(400))
}

func TestRemaining(t *testing.T) {
	d := newTestDevice(t)
	assert.Equal(t, 23, d.Remaining())
	require.NoError(t, d.AddTemperature(1))
	assert.Equal(t, 20, d.Remaining())
	d.Clear()
	assert.Equal(t, 23, d.Remaining())
	assert.False(t, d.Encrypted())
	assert.Zero(t, d.Counter())
}

func TestEventStrings(t *testing.T) {
	assert.Equal(t, "LongDoublePress", ButtonLongDoublePress.String())
	assert.Equal(t, "ButtonEvent(0x7f)", ButtonEvent(0x7f).String())
	assert.Equal(t, "RotateRight", DimmerRotateRight.String())
	assert.Equal(t, "Advertising", StateAdvertising.String())
}
