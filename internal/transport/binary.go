package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lauterbach-mcd/mcd-client/internal/constants"
	"github.com/lauterbach-mcd/mcd-client/internal/logging"
)

// BinaryTransport implements Transport over a length-prefixed TCP
// stream: request frames are length:u32 + uid:u8 + args (built by the
// rpc package); reply frames are length:u32 + result. The connection
// buffer is capped at constants.MaxPacketLength.
type BinaryTransport struct {
	cfg   Config
	conn  net.Conn
	state State
}

// NewBinaryTransport constructs an unconnected binary transport for
// the given host/port. Connect (or the first Send) performs the
// actual dial.
func NewBinaryTransport(cfg Config) *BinaryTransport {
	return &BinaryTransport{cfg: cfg, state: Uninit}
}

func (t *BinaryTransport) State() State { return t.state }

func (t *BinaryTransport) Connect(ctx context.Context) error {
	if t.state == Connected {
		return nil
	}
	return t.reconnect(ctx)
}

// reconnect dials a fresh socket with address reuse, retrying with
// bounded exponential backoff.
func (t *BinaryTransport) reconnect(ctx context.Context) error {
	logger := logging.Default().Sub("transport")
	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

	var conn net.Conn
	dial := func() error {
		d := net.Dialer{Timeout: constants.ReceiveTimeout, Control: reuseAddrControl}
		c, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			logger.WithError(err).Warn("dial failed", "addr", addr)
			return err
		}
		conn = c
		return nil
	}

	if err := backoff.Retry(dial, b); err != nil {
		t.state = Disconnected
		return fmt.Errorf("transport: connect to %s: %w", addr, err)
	}

	t.conn = conn
	t.state = Connected
	logger.Info("connected", "addr", addr)
	return nil
}

func (t *BinaryTransport) Send(ctx context.Context, msg []byte) error {
	if t.state == Disconnected {
		if err := t.reconnect(ctx); err != nil {
			return err
		}
	}
	if t.state == Uninit {
		if err := t.reconnect(ctx); err != nil {
			return err
		}
	}
	if err := t.conn.SetWriteDeadline(time.Now().Add(constants.ReceiveTimeout)); err != nil {
		return err
	}
	if _, err := t.conn.Write(msg); err != nil {
		// a failed send means the peer is gone as far as this session
		// is concerned, so the power-down event rides along
		t.state = Disconnected
		return fmt.Errorf("transport: send: %v: %w", err, ErrPowerDown)
	}
	return nil
}

func (t *BinaryTransport) Receive(ctx context.Context) ([]byte, error) {
	if t.conn == nil {
		return nil, fmt.Errorf("transport: receive: not connected")
	}
	if err := t.conn.SetReadDeadline(time.Now().Add(constants.ReceiveTimeout)); err != nil {
		return nil, err
	}

	var lenBuf [4]byte
	if err := t.readFull(lenBuf[:]); err != nil {
		if err == io.EOF {
			t.state = Disconnected
			return nil, fmt.Errorf("transport: receive: %w", ErrPowerDown)
		}
		t.state = Disconnected
		return nil, fmt.Errorf("transport: receive length prefix: %w", err)
	}

	length := binary.LittleEndian.Uint32(lenBuf[:])
	if length > constants.MaxPacketLength {
		// An oversize length prefix fails without reading further and
		// without marking the connection Disconnected: no bytes of the
		// reply body have been drained from the stream yet.
		return nil, fmt.Errorf("transport: receive: reply length %d exceeds max %d", length, constants.MaxPacketLength)
	}
	if length == 0 {
		return nil, nil
	}

	body := make([]byte, length)
	if err := t.readFull(body); err != nil {
		t.state = Disconnected
		return nil, fmt.Errorf("transport: receive body: %w", err)
	}
	return body, nil
}

func (t *BinaryTransport) readFull(buf []byte) error {
	_, err := io.ReadFull(t.conn, buf)
	return err
}

func (t *BinaryTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.state = Uninit
	t.conn = nil
	return err
}
