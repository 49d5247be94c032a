package usb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/gousb"

	"github.com/odrive-host/odrive-go/pkg/transport"
)

// USB identifiers.
const (
	VendorID  gousb.ID = 0x1209
	ProductID gousb.ID = 0x0D32

	// Interface is the CDC data interface carrying the protocol.
	Interface = 2

	// OutEndpoint and InEndpoint are the bulk endpoint numbers (0x03, 0x83).
	OutEndpoint = 3
	InEndpoint  = 3
)

// ErrNoDevice indicates no attached device matched.
var ErrNoDevice = errors.New("no matching device")

// FormatSerial formats a numeric serial as it appears in the USB serial
// string descriptor.
func FormatSerial(serial uint64) string {
	return strings.ToUpper(strconv.FormatUint(serial, 16))
}

// MatchSerial reports whether a device reporting descriptor satisfies the
// requested serial. An empty request matches any device. Otherwise the
// descriptor must be a non-empty prefix of the request, case-insensitively.
func MatchSerial(want, descriptor string) bool {
	if want == "" {
		return true
	}
	if descriptor == "" {
		return false
	}
	return strings.HasPrefix(strings.ToUpper(want), strings.ToUpper(descriptor))
}

// Device is an open, claimed device.
type Device struct {
	mu     sync.Mutex
	ctx    *gousb.Context
	dev    *gousb.Device
	cfg    *gousb.Config
	intf   *gousb.Interface
	out    *gousb.OutEndpoint
	in     *gousb.InEndpoint
	serial string
	closed bool
}

// Open finds the first device whose serial matches and claims its
// protocol interface.
func Open(serial string) (*Device, error) {
	usbCtx := gousb.NewContext()

	devs, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == VendorID && desc.Product == ProductID
	})
	if err != nil && len(devs) == 0 {
		usbCtx.Close()
		return nil, fmt.Errorf("usb: enumerate: %w", err)
	}

	var chosen *Device
	for _, dev := range devs {
		if chosen != nil {
			dev.Close()
			continue
		}
		d, ok := tryClaim(usbCtx, dev, serial)
		if !ok {
			dev.Close()
			continue
		}
		chosen = d
	}

	if chosen == nil {
		usbCtx.Close()
		if serial == "" {
			return nil, ErrNoDevice
		}
		return nil, fmt.Errorf("%w: serial %s", ErrNoDevice, serial)
	}
	return chosen, nil
}

// tryClaim matches dev against serial and claims its interface.
func tryClaim(usbCtx *gousb.Context, dev *gousb.Device, serial string) (*Device, bool) {
	if err := dev.SetAutoDetach(true); err != nil {
		return nil, false
	}

	sn, err := dev.SerialNumber()
	if err != nil || !MatchSerial(serial, sn) {
		return nil, false
	}

	num, err := dev.ActiveConfigNum()
	if err != nil {
		return nil, false
	}
	cfg, err := dev.Config(num)
	if err != nil {
		return nil, false
	}
	intf, err := cfg.Interface(Interface, 0)
	if err != nil {
		cfg.Close()
		return nil, false
	}
	out, err := intf.OutEndpoint(OutEndpoint)
	if err != nil {
		intf.Close()
		cfg.Close()
		return nil, false
	}
	in, err := intf.InEndpoint(InEndpoint)
	if err != nil {
		intf.Close()
		cfg.Close()
		return nil, false
	}

	return &Device{
		ctx:    usbCtx,
		dev:    dev,
		cfg:    cfg,
		intf:   intf,
		out:    out,
		in:     in,
		serial: strings.ToUpper(sn),
	}, true
}

// Serial returns the serial string reported by the device.
func (d *Device) Serial() string {
	return d.serial
}

// Write sends data as one bulk OUT transfer.
func (d *Device) Write(ctx context.Context, data []byte) (int, error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return 0, transport.ErrClosed
	}
	return d.out.WriteContext(ctx, data)
}

// Read receives one bulk IN transfer of at most maxLen bytes.
func (d *Device) Read(ctx context.Context, maxLen int) ([]byte, error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return nil, transport.ErrClosed
	}

	buf := make([]byte, maxLen)
	n, err := d.in.ReadContext(ctx, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// Close releases the interface, configuration, device and libusb context.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	d.intf.Close()
	return errors.Join(d.cfg.Close(), d.dev.Close(), d.ctx.Close())
}

// Compile-time interface satisfaction check.
var _ transport.Transport = (*Device)(nil)
