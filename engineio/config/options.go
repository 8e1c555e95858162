// Package config holds the tunables an Engine.IO server is constructed
// with, in the spirit of the teacher's ServerOptions: a plain struct of
// optional fields with documented legacy-compatible defaults.
package config

import "time"

// ServerOptions configures a Dispatcher. All fields have defaults matching
// the OPEN handshake payload this core has always sent; the zero value is
// ready to use.
type ServerOptions struct {
	// PingTimeout is advertised to the client as pingTimeout; this core does
	// not itself enforce it (see EnableServerPing).
	PingTimeout time.Duration

	// PingInterval is advertised to the client as pingInterval.
	PingInterval time.Duration

	// EnableServerPing is reserved for the optional server-initiated
	// liveness check described as an open question in the core's design
	// (a PING sent every PingInterval, session torn down if no PONG arrives
	// within PingTimeout). Not yet implemented: the brain runs no liveness
	// loop, so setting this field currently has no effect.
	EnableServerPing bool
}

// DefaultServerOptions returns the legacy-compatible defaults: a 60s ping
// timeout and a 25s ping interval, matching the OPEN packet this core has
// always emitted.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		PingTimeout:  60 * time.Second,
		PingInterval: 25 * time.Second,
	}
}

// withDefaults fills any zero-valued duration fields with the legacy defaults.
func (o ServerOptions) withDefaults() ServerOptions {
	d := DefaultServerOptions()
	if o.PingTimeout <= 0 {
		o.PingTimeout = d.PingTimeout
	}
	if o.PingInterval <= 0 {
		o.PingInterval = d.PingInterval
	}
	return o
}

// Normalize returns o with defaults applied. Dispatcher calls this once at
// construction so the rest of the core can treat ServerOptions as fully
// populated.
func (o ServerOptions) Normalize() ServerOptions {
	return o.withDefaults()
}
