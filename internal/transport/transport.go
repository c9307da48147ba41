// Package transport implements the pluggable connection layer: a
// binary length-prefixed TCP transport and a line-delimited JSON
// transport, both satisfying the same Transport interface so the
// façade can be built against the abstraction and stay ignorant of
// which wire encoding is underneath.
package transport

import (
	"context"
	"errors"
)

// State is the connection lifecycle.
type State int

const (
	Uninit State = iota
	Connected
	Disconnected
)

func (s State) String() string {
	switch s {
	case Uninit:
		return "uninit"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// ErrPowerDown is returned alongside a connection error when the
// transport observed the target going away (a failed write; on the
// binary transport, EOF before a reply's length prefix; on the JSON
// transport, a read error before any byte of a line arrived) so the
// façade can raise the power-down event bit and let
// idempotent teardown paths complete without a live server.
var ErrPowerDown = errors.New("transport: power-down event")

// Transport is the abstraction the façade drives: send one outbound
// message, receive one inbound message. Framing (length prefix vs.
// newline) is the implementation's concern; the façade only ever
// exchanges already-framed-or-unframed payloads appropriate to the
// concrete transport it constructed.
type Transport interface {
	// Connect establishes the connection if not already connected;
	// reconnects transparently if the prior connection was marked
	// Disconnected.
	Connect(ctx context.Context) error

	// Send writes one outbound message. Reconnects first if the
	// current state is Disconnected.
	Send(ctx context.Context, msg []byte) error

	// Receive reads one inbound message, blocking up to the per-attempt
	// timeout. Returns ErrPowerDown wrapped into the error when the
	// peer went away.
	Receive(ctx context.Context) ([]byte, error)

	// State reports the current connection state.
	State() State

	// Close tears down the connection.
	Close() error
}

// Config is the connection target every Transport implementation is
// constructed from.
type Config struct {
	Host string
	Port uint32
}
