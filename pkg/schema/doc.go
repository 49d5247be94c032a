// Package schema parses and resolves the device's self-description.
//
// The device publishes a JSON document on endpoint 0 listing every
// endpoint by name, id, type and access mode. Objects group members;
// functions carry inputs and outputs that are themselves endpoints.
//
//	[
//	  {"name": "vbus_voltage", "id": 1, "type": "float", "access": "r"},
//	  {"name": "axis0", "type": "object", "members": [
//	    {"name": "controller", "type": "object", "members": [
//	      {"name": "input_vel", "id": 7, "type": "float", "access": "rw"}
//	    ]}
//	  ]}
//	]
//
// Load streams the document in 64 byte chunks and parses it. Parse builds
// an immutable tree whose nodes are tagged with a Kind at parse time.
// Root.Resolve maps a dotted path such as "axis0.controller.input_vel" to
// a Descriptor.
package schema
