// Package config loads the YAML description of a BThome beacon
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/fako1024/bthome"
	"gopkg.in/yaml.v3"
)

const defaultInterval = 10 * time.Second

// Config denotes the beacon configuration
type Config struct {
	ShortName    string        `yaml:"short_name"`
	CompleteName string        `yaml:"complete_name"`
	TriggerBased bool          `yaml:"trigger_based"`
	Interval     time.Duration `yaml:"interval"`
	StrictRange  bool          `yaml:"strict_range"`

	Encryption *Encryption `yaml:"encryption"`

	Measurements []Measurement `yaml:"measurements"`
}

// Encryption denotes the bind key / MAC / counter of an encrypted beacon
type Encryption struct {
	Key         string `yaml:"key"`
	MAC         string `yaml:"mac"`
	Counter     uint32 `yaml:"counter"`
	CounterFile string `yaml:"counter_file"`
}

// Measurement denotes a static measurement, referenced by its registry name
type Measurement struct {
	Kind  string  `yaml:"kind"`
	Value float64 `yaml:"value"`
	Text  string  `yaml:"text"`
}

// Error denotes a configuration error
type Error struct {
	File    string
	Message string
	Cause   error
}

// Error fulfils the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Cause
}

// Parse parses and validates a configuration from YAML bytes
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Message: "failed to parse YAML", Cause: err}
	}
	if cfg.Interval == 0 {
		cfg.Interval = defaultInterval
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load loads a configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{File: path, Message: "failed to read file", Cause: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		var cfgErr *Error
		if errors.As(err, &cfgErr) {
			cfgErr.File = path
		}
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if len(c.ShortName) > bthome.MaxShortNameLength {
		return &Error{Message: fmt.Sprintf("short name `%s` exceeds %d characters", c.ShortName, bthome.MaxShortNameLength)}
	}
	if len(c.CompleteName) > bthome.MaxCompleteNameLength {
		return &Error{Message: fmt.Sprintf("complete name `%s` exceeds %d characters", c.CompleteName, bthome.MaxCompleteNameLength)}
	}
	if c.Interval < 0 {
		return &Error{Message: fmt.Sprintf("invalid interval %v", c.Interval)}
	}

	if c.Encryption != nil {
		if _, err := c.Encryption.BindKey(); err != nil {
			return &Error{Message: "invalid encryption key", Cause: err}
		}
		if _, err := c.Encryption.HardwareAddr(); err != nil {
			return &Error{Message: "invalid MAC address", Cause: err}
		}
	}

	for i, m := range c.Measurements {
		if m.Kind == "" {
			return &Error{Message: fmt.Sprintf("measurement #%d has no kind", i)}
		}
		if m.isText() {
			continue
		}
		if _, err := bthome.LookupSensor(m.Kind); err == nil {
			continue
		}
		if _, err := bthome.LookupState(m.Kind); err != nil {
			return &Error{Message: fmt.Sprintf("measurement #%d", i), Cause: err}
		}
	}

	return nil
}

// BindKey returns the decoded bind key
func (e *Encryption) BindKey() ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(e.Key))
	if err != nil {
		return nil, err
	}
	if len(key) != bthome.KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes (have %d)", bthome.ErrInvalidIdentity, bthome.KeySize, len(key))
	}
	return key, nil
}

// HardwareAddr returns the parsed MAC address
func (e *Encryption) HardwareAddr() (net.HardwareAddr, error) {
	mac, err := net.ParseMAC(e.MAC)
	if err != nil {
		return nil, err
	}
	if len(mac) != bthome.MACSize {
		return nil, fmt.Errorf("%w: MAC must be %d bytes (have %d)", bthome.ErrInvalidIdentity, bthome.MACSize, len(mac))
	}
	return mac, nil
}

// DeviceOptions returns the functional options describing the configured device
// identity, using counter as initial encryption counter
func (c *Config) DeviceOptions(counter uint32) ([]func(*bthome.Device), error) {
	opts := []func(*bthome.Device){
		bthome.WithNames(c.ShortName, c.CompleteName),
	}
	if c.TriggerBased {
		opts = append(opts, bthome.WithTriggerBased())
	}
	if c.StrictRange {
		opts = append(opts, bthome.WithStrictRange())
	}

	if c.Encryption != nil {
		key, err := c.Encryption.BindKey()
		if err != nil {
			return nil, err
		}
		mac, err := c.Encryption.HardwareAddr()
		if err != nil {
			return nil, err
		}
		opts = append(opts, bthome.WithEncryption(key, mac, counter))
	}

	return opts, nil
}

// Apply adds all configured measurements to the device
func (c *Config) Apply(d *bthome.Device) error {
	for _, m := range c.Measurements {
		var err error
		if m.isText() {
			err = d.AddText(m.Text)
		} else {
			err = d.Add(m.Kind, m.Value)
		}
		if err != nil {
			return fmt.Errorf("failed to add measurement `%s`: %w", m.Kind, err)
		}
	}

	return nil
}

func (m Measurement) isText() bool {
	return strings.EqualFold(m.Kind, "text")
}
