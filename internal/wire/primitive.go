// Package wire implements the MCD RPC binary codec: primitive encoding
// and struct encoding for every value type the RPC layer exchanges
// with the server.
//
// The wire format is little-endian regardless of host endianness, so
// the codec below never branches on host byte order the way a
// memcpy-based C implementation would: encoding/binary.LittleEndian is
// applied uniformly, which makes decoded values identical across hosts
// by construction rather than by test.
package wire

import (
	"encoding/binary"
	"fmt"
)

// ErrShortBuffer is returned by any Reader Get* method that runs past
// the end of the underlying buffer.
type ErrShortBuffer struct {
	Want int
	Have int
}

func (e *ErrShortBuffer) Error() string {
	return fmt.Sprintf("wire: short buffer: want %d bytes, have %d", e.Want, e.Have)
}

// Writer accumulates a serialized MCD value into a byte slice. The zero
// value is a writer with no preallocated capacity; NewWriter is
// preferred when the final size is known, as the per-opcode marshal
// functions in internal/rpc do with a small starting capacity.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer backed by a buffer with the given starting
// capacity. Capacity is a hint, not a bound: the writer grows as
// needed, and the caller (internal/rpc) is responsible for rejecting
// bodies that exceed constants.MaxBodyLength before sending.
func NewWriter(capacityHint int) *Writer {
	return &Writer{buf: make([]byte, 0, capacityHint)}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) PutU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) PutBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *Writer) PutU16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) PutU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) PutI32(v int32) {
	w.PutU32(uint32(v))
}

func (w *Writer) PutU64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// PutFixedString writes a fixed-length character field as
// length:u32, bytes:length×u8, where length is the field's
// compile-time size (width), not the runtime length of s. s is
// truncated or zero-padded to width bytes, never null-terminated.
func (w *Writer) PutFixedString(s string, width int) {
	w.PutU32(uint32(width))
	var tmp []byte
	if len(s) >= width {
		tmp = []byte(s[:width])
	} else {
		tmp = make([]byte, width)
		copy(tmp, s)
	}
	w.buf = append(w.buf, tmp...)
}

// PutBytes writes raw bytes with no length prefix of their own; callers
// that need a length-prefixed byte blob use PutVarBytes.
func (w *Writer) PutBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// PutVarBytes writes length:u32, bytes:length×u8, the variable-length
// array encoding used throughout the struct codec for []T fields.
func (w *Writer) PutVarBytes(b []byte) {
	w.PutU32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// Reader consumes a serialized MCD value from a byte slice, advancing a
// cursor as it goes. Every Get* method mirrors a Writer Put* method.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for reading from offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Pos returns the current read cursor, i.e. bytes consumed so far.
func (r *Reader) Pos() int { return r.pos }

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return &ErrShortBuffer{Want: n, Have: r.Remaining()}
	}
	return nil
}

func (r *Reader) GetU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *Reader) GetBool() (bool, error) {
	v, err := r.GetU8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (r *Reader) GetU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *Reader) GetU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) GetI32() (int32, error) {
	v, err := r.GetU32()
	return int32(v), err
}

func (r *Reader) GetU64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// GetFixedString reads a length-prefixed character field and returns it
// with trailing NUL bytes stripped. The decoded length must equal
// width; a mismatch is a protocol error (the length prefix exists
// precisely so decoders can catch this class of framing bug).
func (r *Reader) GetFixedString(width int) (string, error) {
	length, err := r.GetU32()
	if err != nil {
		return "", err
	}
	if int(length) != width {
		return "", fmt.Errorf("wire: fixed string length mismatch: declared %d, field width %d", length, width)
	}
	if err := r.need(width); err != nil {
		return "", err
	}
	raw := r.buf[r.pos : r.pos+width]
	r.pos += width
	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}
	return string(raw[:end]), nil
}

// GetVarBytes reads the length:u32, bytes:length×u8 encoding. A
// zero-length array decodes to a nil slice; empty arrays never
// allocate.
func (r *Reader) GetVarBytes() ([]byte, error) {
	length, err := r.GetU32()
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, nil
	}
	if err := r.need(int(length)); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, r.buf[r.pos:r.pos+int(length)])
	r.pos += int(length)
	return out, nil
}
