package mcd

import (
	"errors"
	"fmt"
	"testing"
)

func TestStructuredError(t *testing.T) {
	err := NewError("open-server", CodeInvalidParameter, "bad config string")

	if err.Op != "open-server" {
		t.Errorf("Expected Op=open-server, got %s", err.Op)
	}

	if err.Code != CodeInvalidParameter {
		t.Errorf("Expected Code=CodeInvalidParameter, got %s", err.Code)
	}

	expected := "mcd: bad config string (op=open-server)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
}

func TestErrorWithCoreUID(t *testing.T) {
	err := NewErrorWithOp("qry-state", 7, CodeServerReported, "server reported error")

	if err.CoreUID != 7 {
		t.Errorf("Expected CoreUID=7, got %d", err.CoreUID)
	}

	if err.Code != CodeServerReported {
		t.Errorf("Expected Code=CodeServerReported, got %s", err.Code)
	}
}

func TestWrapError(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	err := WrapError("qry-systems", inner)

	if err.Code != CodeConnection {
		t.Errorf("Expected Code=CodeConnection, got %s", err.Code)
	}

	if !errors.Is(err, inner) {
		t.Error("Expected wrapped error to satisfy errors.Is for the inner error")
	}
}

func TestWrapErrorPreservesCode(t *testing.T) {
	inner := NewErrorWithOp("execute-txlist", 3, CodeMarshal, "body too large")
	err := WrapError("outer", inner)

	if err.Code != CodeMarshal {
		t.Errorf("Expected preserved Code=CodeMarshal, got %s", err.Code)
	}
	if err.CoreUID != 3 {
		t.Errorf("Expected preserved CoreUID=3, got %d", err.CoreUID)
	}
	if err.Op != "outer" {
		t.Errorf("Expected re-tagged Op=outer, got %s", err.Op)
	}
}

func TestIsCode(t *testing.T) {
	err := NewError("close-server", CodeUnknownServer, "unrecognized server handle")

	if !IsCode(err, CodeUnknownServer) {
		t.Error("IsCode should return true for matching code")
	}

	if IsCode(err, CodeConnection) {
		t.Error("IsCode should return false for non-matching code")
	}

	if IsCode(nil, CodeUnknownServer) {
		t.Error("IsCode should return false for nil error")
	}
}

func TestErrorIsComparesBareCode(t *testing.T) {
	err := NewError("rst", CodeServerNotOpen, "no server open")

	if !errors.Is(err, CodeServerNotOpen) {
		t.Error("errors.Is against a bare Code should match")
	}
	if errors.Is(err, CodeNotImplemented) {
		t.Error("errors.Is against a different Code should not match")
	}
}

func TestLastErrorSlotStates(t *testing.T) {
	setLastErrorOK()
	if code, _ := LastError(); code != CodeOK {
		t.Errorf("Expected CodeOK after setLastErrorOK, got %s", code)
	}

	setLastErrorStatic(CodeServerNotOpen)
	code, msg := LastError()
	if code != CodeServerNotOpen {
		t.Errorf("Expected CodeServerNotOpen, got %s", code)
	}
	if msg != string(CodeServerNotOpen) {
		t.Errorf("Expected static message %q, got %q", string(CodeServerNotOpen), msg)
	}

	setLastErrorCustom(CodeConnection, "reply length 70000 exceeds max 65535")
	code, msg = LastError()
	if code != CodeConnection {
		t.Errorf("Expected CodeConnection, got %s", code)
	}
	if msg != "reply length 70000 exceeds max 65535" {
		t.Errorf("Custom message not preserved, got %q", msg)
	}

	setLastErrorAskServer(5, true)
	coreUID, hasCore, yes := lastErrorIsAskServer()
	if !yes || !hasCore || coreUID != 5 {
		t.Errorf("Expected ask-server sentinel scoped to core 5, got uid=%d hasCore=%v yes=%v", coreUID, hasCore, yes)
	}
	if code, _ := LastError(); code != CodeServerReported {
		t.Errorf("Expected CodeServerReported for the sentinel, got %s", code)
	}

	setLastErrorOK()
	if _, _, yes := lastErrorIsAskServer(); yes {
		t.Error("Sentinel should be cleared by setLastErrorOK")
	}
}
