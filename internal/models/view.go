// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Device is the simulated viewport the editor previews the page in.
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceTablet  Device = "tablet"
	DeviceMobile  Device = "mobile"
)

// ValidDevice reports whether d is a supported viewport.
func ValidDevice(d Device) bool {
	return d == DeviceDesktop || d == DeviceTablet || d == DeviceMobile
}
