package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fako1024/bthome"
	"github.com/fako1024/bthome/internal/config"
	"github.com/fako1024/bthome/internal/counterstore"
)

type flags struct {
	configPath string
	debug      bool
	dryRun     bool
}

func main() {

	// Parse command line options
	var f flags
	flag.StringVar(&f.configPath, "config", "bthome.yaml", "path to beacon configuration")
	flag.BoolVar(&f.debug, "debug", false, "enable debug logging")
	flag.BoolVar(&f.dryRun, "dry-run", false, "log advertisements instead of sending them")
	flag.Parse()

	logger := bthome.NewDefaultLogger(f.debug)

	cfg, err := config.Load(f.configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration: %s", err)
	}

	// Restore the encryption counter (if persisted)
	var (
		counter uint32
		store   counterReserver
	)
	if cfg.Encryption != nil {
		counter = cfg.Encryption.Counter
		if cfg.Encryption.CounterFile != "" {
			fileStore := counterstore.New(cfg.Encryption.CounterFile)
			store = fileStore
			saved, ok, err := fileStore.Load()
			if err != nil {
				logger.Fatalf("failed to load encryption counter: %s", err)
			}
			if ok && saved > counter {
				counter = saved
			}
		}
	}

	opts, err := cfg.DeviceOptions(counter)
	if err != nil {
		logger.Fatalf("invalid device identity: %s", err)
	}
	device, err := bthome.New(append(opts, bthome.WithLogger(logger))...)
	if err != nil {
		logger.Fatalf("failed to initialize BThome device: %s", err)
	}

	var beacon *bthome.Beacon
	if !f.dryRun {
		beacon, err = bthome.NewBeacon(device, bthome.WithBeaconLogger(logger))
		if err != nil {
			logger.Fatalf("failed to initialize beacon: %s", err)
		}

		stateChan := make(chan bthome.Status, 8)
		beacon.SetStateChangeChannel(stateChan)
		go func() {
			for st := range stateChan {
				if st.Error != nil {
					logger.Warnf("state change: %s (%s)", st.State, st.Error)
					continue
				}
				logger.Infof("state change: %s", st.State)
			}
		}()
	}

	sigChan := make(chan os.Signal, 32)
	signal.Notify(sigChan, syscall.SIGTERM)
	signal.Notify(sigChan, os.Interrupt)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		advertise(logger, cfg, device, beacon, store)

		select {
		case <-sigChan:
			logger.Infof("got signal, stopping advertisements")
			if beacon != nil {
				if err := beacon.Close(); err != nil {
					logger.Errorf("failed to close beacon: %s", err)
				}
			}
			return
		case <-ticker.C:
		}
	}
}

// counterReserver persists the encryption counter ahead of its use
type counterReserver interface {
	Reserve(counter uint32) error
}

func advertise(logger bthome.Logger, cfg *config.Config, device *bthome.Device, beacon *bthome.Beacon, store counterReserver) {
	device.Clear()
	if err := cfg.Apply(device); err != nil {
		logger.Errorf("skipping advertisement: %s", err)
		return
	}

	// The counter must be reserved on disk before it ends up in a nonce
	if store != nil && device.Encrypted() {
		if err := store.Reserve(device.Counter()); err != nil {
			logger.Errorf("skipping advertisement, failed to reserve encryption counter: %s", err)
			return
		}
	}

	if beacon == nil {
		data, err := device.AdvertisementData()
		if err != nil {
			logger.Errorf("failed to build advertisement: %s", err)
		} else {
			logger.Infof("advertisement (%d bytes): % X", len(data), data)
		}
	} else if err := beacon.Update(); err != nil {
		logger.Errorf("failed to update advertisement: %s", err)
	}
}
