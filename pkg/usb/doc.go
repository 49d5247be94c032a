// Package usb opens a device over libusb and exposes it as a
// transport.Transport.
//
// Devices are matched by vendor and product id, then by serial number.
// The protocol runs over bulk endpoints on interface 2:
//
//	OUT 0x03  host -> device requests
//	IN  0x83  device -> host replies
package usb
