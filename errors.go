package mcd

import (
	"errors"
	"fmt"
)

// Error is a structured MCD client error: an operation name, a
// category code, and an optionally wrapped cause. It satisfies
// errors.Is/errors.As via Is and Unwrap.
type Error struct {
	Op      string // façade call that produced the error, e.g. "open-core"
	CoreUID uint32 // 0 if not applicable
	Code    Code
	Msg     string
	Inner   error
}

func (e *Error) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.CoreUID != 0 {
		parts = append(parts, fmt.Sprintf("core=%d", e.CoreUID))
	}
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if len(parts) > 0 {
		return fmt.Sprintf("mcd: %s (%s)", msg, parts[0])
	}
	return fmt.Sprintf("mcd: %s", msg)
}

func (e *Error) Unwrap() error { return e.Inner }

// Is supports comparing against a bare Code as well as another *Error.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if c, ok := target.(Code); ok {
		return e.Code == c
	}
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// Code is the client's error taxonomy, carried end to end from the
// last-error registry through to the public API. A Code is itself an
// error so callers can write errors.Is(err, mcd.CodeConnection).
type Code string

func (c Code) Error() string { return string(c) }

const (
	CodeOK               Code = "ok"
	CodeInvalidParameter Code = "invalid null parameter"
	CodeServerNotOpen    Code = "server not open"
	CodeUnknownServer    Code = "unknown server"
	CodeMarshal          Code = "marshal error"
	CodeUnmarshal        Code = "unmarshal error"
	CodeConnection       Code = "connection error"
	CodeServerReported   Code = "server reported error"
	CodeNotImplemented   Code = "not implemented"
)

// NewError creates a structured error not tied to a specific core.
func NewError(op string, code Code, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

// NewErrorWithOp creates a structured error scoped to a core uid.
func NewErrorWithOp(op string, coreUID uint32, code Code, msg string) *Error {
	return &Error{Op: op, CoreUID: coreUID, Code: code, Msg: msg}
}

// WrapError re-tags an existing error with a façade operation name,
// classifying bare errors as connection errors (the common case for
// transport failures) and preserving the code of an existing *Error.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if me, ok := inner.(*Error); ok {
		return &Error{Op: op, CoreUID: me.CoreUID, Code: me.Code, Msg: me.Msg, Inner: me.Inner}
	}
	return &Error{Op: op, Code: CodeConnection, Msg: inner.Error(), Inner: inner}
}

// IsCode reports whether err is an *Error carrying the given code.
func IsCode(err error, code Code) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Code == code
	}
	return false
}

// --- process-wide last-error registry ---
//
// A single process-wide slot, no locking: the MCD API contract is
// single-threaded cooperative, so no call can observe the slot while
// another is mutating it.

// lastErrorKind distinguishes the slot states: static record, custom
// record, ask-server sentinel, and (implicitly) the OK record, which
// is just a static record with CodeOK.
type lastErrorKind int

const (
	lastErrorStatic lastErrorKind = iota
	lastErrorCustom
	lastErrorAskServer
)

type lastErrorSlot struct {
	kind    lastErrorKind
	code    Code
	msg     string
	coreUID uint32
	hasCore bool
}

var (
	okRecord               = lastErrorSlot{kind: lastErrorStatic, code: CodeOK}
	notImplementedRecord   = lastErrorSlot{kind: lastErrorStatic, code: CodeNotImplemented, msg: string(CodeNotImplemented)}
	serverNotOpenRecord    = lastErrorSlot{kind: lastErrorStatic, code: CodeServerNotOpen, msg: string(CodeServerNotOpen)}
	invalidParameterRecord = lastErrorSlot{kind: lastErrorStatic, code: CodeInvalidParameter, msg: string(CodeInvalidParameter)}
	unknownServerRecord    = lastErrorSlot{kind: lastErrorStatic, code: CodeUnknownServer, msg: string(CodeUnknownServer)}
	marshalRecord          = lastErrorSlot{kind: lastErrorStatic, code: CodeMarshal, msg: string(CodeMarshal)}
	unmarshalRecord        = lastErrorSlot{kind: lastErrorStatic, code: CodeUnmarshal, msg: string(CodeUnmarshal)}

	lastError = okRecord
)

// setLastErrorOK records success. Every façade call does this before
// returning OK.
func setLastErrorOK() { lastError = okRecord }

// setLastErrorStatic records one of the fixed local records.
func setLastErrorStatic(code Code) {
	switch code {
	case CodeNotImplemented:
		lastError = notImplementedRecord
	case CodeServerNotOpen:
		lastError = serverNotOpenRecord
	case CodeInvalidParameter:
		lastError = invalidParameterRecord
	case CodeUnknownServer:
		lastError = unknownServerRecord
	case CodeMarshal:
		lastError = marshalRecord
	case CodeUnmarshal:
		lastError = unmarshalRecord
	default:
		lastError = lastErrorSlot{kind: lastErrorStatic, code: code, msg: string(code)}
	}
}

// setLastErrorCustom records a dynamically formatted local error, e.g.
// a connection error naming the offending length.
func setLastErrorCustom(code Code, msg string) {
	lastError = lastErrorSlot{kind: lastErrorCustom, code: code, msg: msg}
}

// setLastErrorAskServer marks the slot as "ask server": the true
// detail lives server-side and must be fetched via qry-error-info.
func setLastErrorAskServer(coreUID uint32, hasCore bool) {
	lastError = lastErrorSlot{kind: lastErrorAskServer, code: CodeServerReported, coreUID: coreUID, hasCore: hasCore}
}

// lastErrorIsAskServer reports whether the current slot is the
// sentinel, and if so which core (if any) it's scoped to.
func lastErrorIsAskServer() (coreUID uint32, hasCore, yes bool) {
	if lastError.kind != lastErrorAskServer {
		return 0, false, false
	}
	return lastError.coreUID, lastError.hasCore, true
}

// LastError returns a description of the process-wide last-error slot
// suitable for a caller that does not need the server-side detail
// (i.e. hasn't called QryErrorInfo). For the ask-server sentinel this
// returns CodeServerReported with a generic message; use QryErrorInfo
// on the Client to fetch the server's own description.
func LastError() (Code, string) {
	if lastError.kind == lastErrorAskServer {
		return CodeServerReported, "error detail available from server; call QryErrorInfo"
	}
	return lastError.code, lastError.msg
}
