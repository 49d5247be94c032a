// Package odrive is the caller-facing API for talking to a device.
//
// A Session binds one transport to one exchange engine and holds the
// device schema. Values are addressed by dotted path:
//
//	s, err := odrive.Connect(ctx, "2075378E5753")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	if _, err := s.LoadSchema(ctx); err != nil {
//	    return err
//	}
//
//	vbus, err := odrive.Read[float32](ctx, s, "vbus_voltage")
//	err = odrive.Write(ctx, s, "axis0.controller.input_vel", float32(2))
//	err = s.Invoke(ctx, "save_configuration")
//
// Read and Write require the Go type to match the schema type exactly.
// ReadValue and WriteValue work on untyped values for tools that only
// know the type at run time.
package odrive
