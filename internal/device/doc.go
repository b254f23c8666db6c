// Package device maintains the per-user registry of field devices.
//
// Devices are keyed by their hardware serial number, sanitized so it
// can serve as a store key. Registration rejects duplicates outright;
// replacing a device is an explicit remove then register.
package device
