package bthome

// WithRadio sets the radio (usually a gatt.Device) used for advertising
func WithRadio(radio Radio) func(*Beacon) {
	return func(b *Beacon) {
		b.radio = radio
	}
}

// WithBeaconLogger sets a logger
func WithBeaconLogger(logger Logger) func(*Beacon) {
	return func(b *Beacon) {
		b.logger = logger
	}
}
