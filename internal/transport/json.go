package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lauterbach-mcd/mcd-client/internal/constants"
	"github.com/lauterbach-mcd/mcd-client/internal/logging"
)

// maxLineLength bounds a single JSON line the same way the binary
// transport bounds a single frame, so a malformed or hostile peer
// can't grow the read buffer without limit.
const maxLineLength = constants.MaxPacketLength

// jsonEnvelope is the QMP-style request shape: an opcode name plus its
// args struct, reusing the same json-tagged Args types the binary
// codec marshals with internal/wire.
type jsonEnvelope struct {
	Execute   string          `json:"execute"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// jsonReply distinguishes a command reply (has "return") from an
// asynchronous event line (has "event" instead); JSONTransport.Receive
// silently discards the latter, since the façade only ever waits on
// request/reply pairs.
type jsonReply struct {
	Return json.RawMessage `json:"return"`
	Event  json.RawMessage `json:"event"`
}

// EncodeJSONRequest builds one line-delimited JSON request for opName
// with args marshaled via encoding/json against the same struct the
// binary codec would consume.
func EncodeJSONRequest(opName string, args any) ([]byte, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("transport: encode json request %s: %w", opName, err)
	}
	env := jsonEnvelope{Execute: opName, Arguments: raw}
	line, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}

// JSONTransport implements Transport over a newline-delimited JSON
// stream, the alternative wire encoding to the binary one.
type JSONTransport struct {
	cfg    Config
	conn   net.Conn
	reader *bufio.Reader
	state  State
}

func NewJSONTransport(cfg Config) *JSONTransport {
	return &JSONTransport{cfg: cfg, state: Uninit}
}

func (t *JSONTransport) State() State { return t.state }

func (t *JSONTransport) Connect(ctx context.Context) error {
	if t.state == Connected {
		return nil
	}
	return t.reconnect(ctx)
}

func (t *JSONTransport) reconnect(ctx context.Context) error {
	logger := logging.Default().Sub("transport")
	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

	var conn net.Conn
	dial := func() error {
		d := net.Dialer{Timeout: constants.ReceiveTimeout, Control: reuseAddrControl}
		c, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			logger.WithError(err).Warn("json dial failed", "addr", addr)
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
	t.reader = bufio.NewReaderSize(conn, maxLineLength)
	t.state = Connected
	logger.Info("json connected", "addr", addr)
	return nil
}

func (t *JSONTransport) Send(ctx context.Context, msg []byte) error {
	if t.state != Connected {
		if err := t.reconnect(ctx); err != nil {
			return err
		}
	}
	if err := t.conn.SetWriteDeadline(time.Now().Add(constants.ReceiveTimeout)); err != nil {
		return err
	}
	if _, err := t.conn.Write(msg); err != nil {
		t.state = Disconnected
		return fmt.Errorf("transport: json send: %v: %w", err, ErrPowerDown)
	}
	return nil
}

// Receive reads lines until one decodes with a non-empty "return"
// field, discarding event-only lines along the way.
func (t *JSONTransport) Receive(ctx context.Context) ([]byte, error) {
	if t.conn == nil {
		return nil, fmt.Errorf("transport: json receive: not connected")
	}
	for {
		if err := t.conn.SetReadDeadline(time.Now().Add(constants.ReceiveTimeout)); err != nil {
			return nil, err
		}
		line, err := t.reader.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			return nil, fmt.Errorf("transport: json receive: line exceeds max %d bytes", maxLineLength)
		}
		if err != nil {
			if len(line) == 0 {
				t.state = Disconnected
				return nil, fmt.Errorf("transport: json receive: %w", ErrPowerDown)
			}
			t.state = Disconnected
			return nil, fmt.Errorf("transport: json receive: %w", err)
		}

		var reply jsonReply
		if err := json.Unmarshal(line, &reply); err != nil {
			// unparseable lines are treated like async events: skipped
			logging.Default().Sub("transport").WithError(err).Debug("discarding malformed line")
			continue
		}
		if reply.Event != nil {
			logging.Default().Sub("transport").Debug("discarding async event", "event", string(reply.Event))
			continue
		}
		if reply.Return != nil {
			return reply.Return, nil
		}
	}
}

func (t *JSONTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.state = Uninit
	t.conn = nil
	t.reader = nil
	return err
}
