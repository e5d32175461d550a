//go:build !linux

package bthome

import "github.com/fako1024/gatt"

var defaultBTOptions []gatt.Option
