package transport

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedServer accepts one connection at a time and runs handler on
// it. Close the returned listener to stop.
func scriptedServer(t *testing.T, handler func(net.Conn)) (addr string, stop func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				handler(c)
			}(conn)
		}
	}()
	return ln.Addr().String(), func() { ln.Close() }
}

func configFor(t *testing.T, addr string) Config {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	var port uint32
	for _, ch := range portStr {
		port = port*10 + uint32(ch-'0')
	}
	return Config{Host: host, Port: port}
}

func echoFrames(c net.Conn) {
	for {
		var lenBuf [4]byte
		if _, err := io.ReadFull(c, lenBuf[:]); err != nil {
			return
		}
		length := binary.LittleEndian.Uint32(lenBuf[:])
		body := make([]byte, length)
		if _, err := io.ReadFull(c, body); err != nil {
			return
		}
		out := make([]byte, 4+len(body))
		binary.LittleEndian.PutUint32(out[:4], uint32(len(body)))
		copy(out[4:], body)
		if _, err := c.Write(out); err != nil {
			return
		}
	}
}

func TestBinarySendReceive(t *testing.T) {
	addr, stop := scriptedServer(t, echoFrames)
	defer stop()

	tr := NewBinaryTransport(configFor(t, addr))
	defer tr.Close()
	ctx := context.Background()

	require.NoError(t, tr.Connect(ctx))
	require.Equal(t, Connected, tr.State())

	msg := []byte{3, 0, 0, 0, 0xA, 0xB, 0xC}
	require.NoError(t, tr.Send(ctx, msg))

	body, err := tr.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte{0xA, 0xB, 0xC}, body)
}

func TestBinaryOversizeReplyLength(t *testing.T) {
	addr, stop := scriptedServer(t, func(c net.Conn) {
		var lenBuf [4]byte
		if _, err := io.ReadFull(c, lenBuf[:]); err != nil {
			return
		}
		length := binary.LittleEndian.Uint32(lenBuf[:])
		body := make([]byte, length)
		io.ReadFull(c, body)

		var reply [4]byte
		binary.LittleEndian.PutUint32(reply[:], 70000)
		c.Write(reply[:])
		// hold the connection open; the client must not read further
		var hold [1]byte
		c.Read(hold[:])
	})
	defer stop()

	tr := NewBinaryTransport(configFor(t, addr))
	defer tr.Close()
	ctx := context.Background()

	require.NoError(t, tr.Connect(ctx))
	require.NoError(t, tr.Send(ctx, []byte{0, 0, 0, 0}))

	_, err := tr.Receive(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "70000")
	// an oversize prefix is not a disconnect: nothing was drained
	require.Equal(t, Connected, tr.State())
}

func TestBinaryPowerDownOnPeerClose(t *testing.T) {
	addr, stop := scriptedServer(t, func(c net.Conn) {
		var lenBuf [4]byte
		io.ReadFull(c, lenBuf[:])
		length := binary.LittleEndian.Uint32(lenBuf[:])
		body := make([]byte, length)
		io.ReadFull(c, body)
		// close without replying
	})
	defer stop()

	tr := NewBinaryTransport(configFor(t, addr))
	defer tr.Close()
	ctx := context.Background()

	require.NoError(t, tr.Connect(ctx))
	require.NoError(t, tr.Send(ctx, []byte{1, 0, 0, 0, 9}))

	_, err := tr.Receive(ctx)
	require.ErrorIs(t, err, ErrPowerDown)
	require.Equal(t, Disconnected, tr.State())
}

func TestBinaryReconnectOnSend(t *testing.T) {
	addr, stop := scriptedServer(t, echoFrames)
	defer stop()

	tr := NewBinaryTransport(configFor(t, addr))
	defer tr.Close()
	ctx := context.Background()

	require.NoError(t, tr.Connect(ctx))
	// simulate an observed disconnect
	tr.state = Disconnected

	require.NoError(t, tr.Send(ctx, []byte{1, 0, 0, 0, 5}))
	require.Equal(t, Connected, tr.State())

	body, err := tr.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte{5}, body)
}

func TestBinaryConnectFailure(t *testing.T) {
	// grab a port and close it so nothing is listening
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	tr := NewBinaryTransport(configFor(t, addr))
	err = tr.Connect(context.Background())
	require.Error(t, err)
	require.Equal(t, Disconnected, tr.State())
}

func TestJSONReceiveSkipsEvents(t *testing.T) {
	addr, stop := scriptedServer(t, func(c net.Conn) {
		buf := make([]byte, 4096)
		if _, err := c.Read(buf); err != nil {
			return
		}
		c.Write([]byte(`{"event": "core-stopped", "data": {}}` + "\n"))
		c.Write([]byte(`this line does not parse` + "\n"))
		c.Write([]byte(`{"return": {"ret": 0}}` + "\n"))
	})
	defer stop()

	tr := NewJSONTransport(configFor(t, addr))
	defer tr.Close()
	ctx := context.Background()

	require.NoError(t, tr.Connect(ctx))
	req, err := EncodeJSONRequest("qry-state", map[string]uint32{"core-uid": 1})
	require.NoError(t, err)
	require.NoError(t, tr.Send(ctx, req))

	ret, err := tr.Receive(ctx)
	require.NoError(t, err)
	require.JSONEq(t, `{"ret": 0}`, string(ret))
}

func TestEncodeJSONRequestShape(t *testing.T) {
	req, err := EncodeJSONRequest("open-core", map[string]string{"core-name": "core0"})
	require.NoError(t, err)
	require.Equal(t, byte('\n'), req[len(req)-1])
	require.JSONEq(t, `{"execute": "open-core", "arguments": {"core-name": "core0"}}`, string(req[:len(req)-1]))
}
