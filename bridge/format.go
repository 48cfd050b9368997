// Package bridge exposes the three host-facing entry points of the
// runtime's ABI — ProcessEvent, HandleResponse, and View — over a
// pluggable wire Format. A Bridge switches every Command it drives into
// serialized mode (Command.UseWireFormat), so a host's byte-slice
// responses are decoded inside flowcore before they reach the core.
package bridge

import "github.com/flowkit/flowcore"

// Format is the wire codec a Bridge uses to cross the host boundary. It
// is an alias for flowcore.Format: Command.UseWireFormat and Bridge take
// the same interface, so a Bridge can hand its configured Format
// straight to the Commands it drives.
type Format = flowcore.Format
