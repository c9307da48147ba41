package mcd

import (
	"context"
	"encoding/binary"

	"github.com/lauterbach-mcd/mcd-client/internal/constants"
	"github.com/lauterbach-mcd/mcd-client/internal/transport"
)

// MockTransport provides a scripted implementation of the transport
// layer for testing. Replies are queued in FIFO order and returned one
// per Receive; every sent frame is recorded for verification. It is
// useful for unit testing applications that drive the Client without a
// live server.
type MockTransport struct {
	replies [][]byte
	sent    [][]byte

	connectCalls int
	closeCalls   int

	FailConnect error // returned by Connect when non-nil
	FailSend    error // returned by Send when non-nil
	FailReceive error // returned by Receive when non-nil

	state transport.State
}

// NewMockTransport creates an unconnected mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{state: transport.Uninit}
}

// QueueReply appends one reply body (the bytes a real server would put
// after the length prefix) to the FIFO.
func (m *MockTransport) QueueReply(body []byte) {
	m.replies = append(m.replies, body)
}

func (m *MockTransport) Connect(context.Context) error {
	m.connectCalls++
	if m.FailConnect != nil {
		m.state = transport.Disconnected
		return m.FailConnect
	}
	m.state = transport.Connected
	return nil
}

func (m *MockTransport) Send(_ context.Context, msg []byte) error {
	if m.FailSend != nil {
		m.state = transport.Disconnected
		return m.FailSend
	}
	frame := make([]byte, len(msg))
	copy(frame, msg)
	m.sent = append(m.sent, frame)
	return nil
}

func (m *MockTransport) Receive(context.Context) ([]byte, error) {
	if m.FailReceive != nil {
		return nil, m.FailReceive
	}
	if len(m.replies) == 0 {
		return nil, transport.ErrPowerDown
	}
	body := m.replies[0]
	m.replies = m.replies[1:]
	return body, nil
}

func (m *MockTransport) State() transport.State { return m.state }

func (m *MockTransport) Close() error {
	m.closeCalls++
	m.state = transport.Uninit
	return nil
}

// SentFrames returns the raw request frames recorded by Send.
func (m *MockTransport) SentFrames() [][]byte { return m.sent }

// SentOpcodes decodes the opcode byte of each recorded request frame.
func (m *MockTransport) SentOpcodes() []constants.Opcode {
	ops := make([]constants.Opcode, 0, len(m.sent))
	for _, f := range m.sent {
		if len(f) < 5 {
			continue
		}
		if binary.LittleEndian.Uint32(f[:4]) == 0 {
			continue
		}
		ops = append(ops, constants.Opcode(f[4]))
	}
	return ops
}

// ConnectCalls reports how many times Connect was invoked.
func (m *MockTransport) ConnectCalls() int { return m.connectCalls }

// CloseCalls reports how many times Close was invoked.
func (m *MockTransport) CloseCalls() int { return m.closeCalls }
