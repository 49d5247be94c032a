package mock

import (
	_ "embed"

	"github.com/odrive-host/odrive-go/pkg/wire"
)

// DemoSchema is a small single-axis schema document.
//
//go:embed demo_schema.json
var DemoSchema []byte

// DemoSerial is the serial number reported by NewDemo devices.
const DemoSerial uint64 = 0x2075378E5753

// Demo endpoint ids.
const (
	DemoVbusVoltage     uint16 = 1
	DemoSerialNumber    uint16 = 2
	DemoHWVersionMajor  uint16 = 3
	DemoBrakeResistance uint16 = 4
	DemoAxisError       uint16 = 6
	DemoInputVel        uint16 = 7
	DemoCurrentState    uint16 = 8
	DemoRequestedState  uint16 = 9
	DemoVelLimit        uint16 = 11
	DemoPosEstimate     uint16 = 12
	DemoSetLinearCount  uint16 = 13
	DemoSaveConfig      uint16 = 15
	DemoReboot          uint16 = 17
)

// NewDemo returns a device serving DemoSchema with plausible values.
func NewDemo() *Device {
	d := NewDevice(DemoSchema)
	d.SetValue(DemoVbusVoltage, wire.EncodeScalar(float32(24.1)))
	d.SetValue(DemoSerialNumber, wire.EncodeScalar(DemoSerial))
	d.SetValue(DemoHWVersionMajor, wire.EncodeScalar(uint8(3)))
	d.SetValue(DemoBrakeResistance, wire.EncodeScalar(float32(2.0)))
	d.SetValue(DemoVelLimit, wire.EncodeScalar(float32(2.0)))
	d.SetValue(DemoCurrentState, wire.EncodeScalar(int32(1)))
	d.SetValue(DemoRequestedState, wire.EncodeScalar(int32(0)))
	d.AddFunction(DemoSetLinearCount, nil)
	d.AddFunction(DemoSaveConfig, nil)
	d.AddFunction(DemoReboot, nil)
	return d
}
