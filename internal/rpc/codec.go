// Package rpc implements the request/response codec: one Marshal*Args
// / Unmarshal*Result pair per opcode, plus the length-prefix framing
// contract shared by every RPC.
//
// Every opcode's Args/Result type also carries `json:"kebab-case"`
// struct tags so the same in-memory type serves the alternative
// line-delimited JSON transport (internal/transport) via
// encoding/json, without a second hand-written codec per opcode;
// only the binary layout (fixed-width ints, length-prefixed strings,
// presence flags, arrays) needs hand-rolled Marshal/Unmarshal
// functions, matching internal/wire.
package rpc

import (
	"fmt"

	"github.com/lauterbach-mcd/mcd-client/internal/constants"
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

// ProtocolError reports a request/response framing violation: a
// response that didn't unmarshal cleanly, or that left bytes unread.
// Treated as a connection-level error the caller may retry after
// reopening.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("rpc: %s: protocol error: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// MarshalError is returned when a request body cannot be built within
// the wire's size bounds.
type MarshalError struct {
	Op  string
	Err error
}

func (e *MarshalError) Error() string {
	return fmt.Sprintf("rpc: %s: marshal error: %v", e.Op, e.Err)
}

func (e *MarshalError) Unwrap() error { return e.Err }

// EncodeRequest builds the full request frame: length:u32, uid:u8,
// args-body. length counts everything after itself. argsBody must not
// exceed constants.MaxBodyLength or the request could never fit the
// 65KB connection buffer together with its prefix and uid byte.
func EncodeRequest(op constants.Opcode, argsBody []byte) ([]byte, error) {
	if len(argsBody) > constants.MaxBodyLength {
		return nil, &MarshalError{
			Op:  op.String(),
			Err: fmt.Errorf("args body %d bytes exceeds max %d", len(argsBody), constants.MaxBodyLength),
		}
	}
	total := 1 + len(argsBody)
	buf := make([]byte, 4+total)
	w := wire.NewWriter(0)
	w.PutU32(uint32(total))
	frame := w.Bytes()
	copy(buf[0:4], frame)
	buf[4] = uint8(op)
	copy(buf[5:], argsBody)
	return buf, nil
}

// EncodeExit builds the fixed 5-byte mcd-exit frame: length=1, uid=2,
// no args body, no reply expected.
func EncodeExit() []byte {
	return []byte{1, 0, 0, 0, uint8(constants.OpExit)}
}

// unmarshalFrame runs fn (a closure that pulls an opcode's declared
// fields off r) and then verifies the frame was fully consumed,
// reporting any discrepancy with both expected and actual lengths.
func unmarshalFrame(op string, body []byte, fn func(r *wire.Reader) error) error {
	r := wire.NewReader(body)
	if err := fn(r); err != nil {
		return &ProtocolError{Op: op, Err: err}
	}
	if r.Remaining() != 0 {
		return &ProtocolError{Op: op, Err: fmt.Errorf(
			"result length mismatch: expected %d bytes consumed, %d unread", len(body), r.Remaining())}
	}
	return nil
}

// present reports whether an optional result field should be written
// on encode / was legitimately written on decode: the sender predicate
// is "return-status == OK". Every opcode in this package, create-trig
// included, uses this predicate as is; none applies a compound one.
func present(ret wire.ReturnStatus) bool { return ret == wire.ReturnOK }
