// Package inspect provides display and input helpers for device tools.
//
// The inspect package offers:
//   - Formatting schema trees and values for display
//   - Parsing typed values from command-line text
//   - Completing dotted paths against a schema
package inspect
