// Package audit implements the async audit pipeline: an Event model, Sink
// implementations (no-op, channel, JSON line writer), and a buffered
// Dispatcher with drop accounting.
//
// The dispatcher never blocks the authentication path when DropIfFull is
// set; dropped events are counted and surfaced through Dispatcher.Dropped.
package audit
