package bthome

import "github.com/fako1024/gatt"

var defaultBTOptions = []gatt.Option{
	gatt.LnxMaxConnections(1),
	gatt.LnxDeviceID(-1, true),
}
