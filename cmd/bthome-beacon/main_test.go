package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/fako1024/bthome"
	"github.com/fako1024/bthome/internal/config"
	"github.com/fako1024/bthome/internal/counterstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
encryption:
  key: 231d39c1d7cc1ab1aee224cd096db932
  mac: 54:48:e6:8f:80:a5
measurements:
  - kind: battery
    value: 100
`

// testLogger collects the advertisements logged in dry-run mode
type testLogger struct {
	bthome.NullLogger

	advertisements [][]byte
	errors         []string
}

func (l *testLogger) Infof(format string, args ...interface{}) {
	for _, arg := range args {
		if data, ok := arg.([]byte); ok {
			l.advertisements = append(l.advertisements, append([]byte{}, data...))
		}
	}
}

func (l *testLogger) Errorf(format string, args ...interface{}) {
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

// sentCounter extracts the nonce counter of an encrypted advertisement without names
func sentCounter(data []byte) uint32 {
	return binary.LittleEndian.Uint32(data[len(data)-8 : len(data)-4])
}

type recordingReserver struct {
	logger *testLogger
	err    error

	reserved []uint32
	sentBy   []int
}

func (r *recordingReserver) Reserve(counter uint32) error {
	if r.err != nil {
		return r.err
	}
	r.reserved = append(r.reserved, counter+1)
	r.sentBy = append(r.sentBy, len(r.logger.advertisements))
	return nil
}

func newTestSetup(t *testing.T, counter uint32) (*config.Config, *bthome.Device) {
	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)

	opts, err := cfg.DeviceOptions(counter)
	require.NoError(t, err)
	device, err := bthome.New(opts...)
	require.NoError(t, err)

	return cfg, device
}

func TestAdvertiseReservesCounterFirst(t *testing.T) {
	cfg, device := newTestSetup(t, 5)
	logger := &testLogger{}
	reserver := &recordingReserver{logger: logger}

	for i := 0; i < 3; i++ {
		advertise(logger, cfg, device, nil, reserver)
	}

	require.Empty(t, logger.errors)
	require.Len(t, logger.advertisements, 3)
	assert.Equal(t, []uint32{6, 7, 8}, reserver.reserved)
	for i, data := range logger.advertisements {

		// Reserved before this advertisement was built, and ahead of its counter
		assert.Equal(t, i, reserver.sentBy[i])
		assert.Equal(t, uint32(5+i), sentCounter(data))
		assert.Greater(t, reserver.reserved[i], sentCounter(data))
	}
	assert.Equal(t, uint32(8), device.Counter())
}

func TestAdvertiseSkipsWithoutReservation(t *testing.T) {
	cfg, device := newTestSetup(t, 5)
	logger := &testLogger{}
	reserver := &recordingReserver{logger: logger, err: errors.New("disk full")}

	advertise(logger, cfg, device, nil, reserver)

	assert.Empty(t, logger.advertisements)
	assert.Len(t, logger.errors, 1)
	assert.Equal(t, uint32(5), device.Counter())
}

func TestAdvertisePersistsNextCounter(t *testing.T) {
	cfg, device := newTestSetup(t, 0)
	logger := &testLogger{}
	store := counterstore.New(filepath.Join(t.TempDir(), "counter"))

	advertise(logger, cfg, device, nil, store)
	advertise(logger, cfg, device, nil, store)
	require.Len(t, logger.advertisements, 2)

	saved, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)

	// A restart resumes at a counter that has never been sent
	assert.Equal(t, uint32(2), saved)
	assert.Equal(t, device.Counter(), saved)
	assert.Greater(t, saved, sentCounter(logger.advertisements[1]))
}
