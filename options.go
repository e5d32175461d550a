package bthome

// WithShortName sets the short device name (sent when the complete name does not fit)
func WithShortName(name string) func(*Device) {
	return func(d *Device) {
		d.shortName = name
	}
}

// WithCompleteName sets the complete device name
func WithCompleteName(name string) func(*Device) {
	return func(d *Device) {
		d.completeName = name
	}
}

// WithNames sets both the short and the complete device name
func WithNames(shortName, completeName string) func(*Device) {
	return func(d *Device) {
		d.shortName = shortName
		d.completeName = completeName
	}
}

// WithTriggerBased flags the device as sending advertisements on trigger rather than regularly
func WithTriggerBased() func(*Device) {
	return func(d *Device) {
		d.triggerBased = true
	}
}

// WithEncryption enables AES-CCM encryption using the bind key, the device MAC
// address and the initial counter value
func WithEncryption(key []byte, mac []byte, counter uint32) func(*Device) {
	return func(d *Device) {
		d.key = append([]byte{}, key...)
		d.mac = append([]byte{}, mac...)
		d.counter = counter
	}
}

// WithStrictRange rejects values that do not fit their field width instead of wrapping them
func WithStrictRange() func(*Device) {
	return func(d *Device) {
		d.strictRange = true
	}
}

// WithLogger sets a logger
func WithLogger(logger Logger) func(*Device) {
	return func(d *Device) {
		d.logger = logger
	}
}
