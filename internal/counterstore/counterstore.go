// Package counterstore persists the encryption counter of a BThome device, so that
// a restarted beacon never reuses a nonce. The stored value is the next counter
// that has not been used yet: callers Reserve a counter before sending it.
package counterstore

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Version is the current version of the state file format
const Version = 1

// State denotes the persisted counter state
type State struct {
	Version int       `cbor:"1,keyasint"`
	Counter uint32    `cbor:"2,keyasint"`
	SavedAt time.Time `cbor:"3,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeUnix,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Store manages the counter state file
type Store struct {
	path string
	mu   sync.Mutex
}

// New instantiates a new Store for the given path
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted counter. It returns false if no state was saved yet.
func (s *Store) Load() (uint32, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	var state State
	if err := decMode.Unmarshal(data, &state); err != nil {
		return 0, false, fmt.Errorf("failed to decode counter state `%s`: %w", s.path, err)
	}
	if state.Version != Version {
		return 0, false, fmt.Errorf("unsupported counter state version %d in `%s`", state.Version, s.path)
	}

	return state.Counter, true, nil
}

// Save persists the counter, replacing the state file atomically
func (s *Store) Save(counter uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := encMode.Marshal(State{
		Version: Version,
		Counter: counter,
		SavedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.path)
}

// Reserve persists counter+1 as the next unused counter. It must succeed before
// counter is used in a nonce, so a restart after a crash never replays it.
func (s *Store) Reserve(counter uint32) error {
	if counter == math.MaxUint32 {
		return fmt.Errorf("cannot reserve counter %d: counter space exhausted", counter)
	}
	return s.Save(counter + 1)
}
