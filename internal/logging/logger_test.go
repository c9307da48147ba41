package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func testLogger(buf *bytes.Buffer, level LogLevel) *Logger {
	return NewLogger(&Config{Level: level, Output: buf})
}

func TestNewLoggerDefaults(t *testing.T) {
	if NewLogger(nil) == nil {
		t.Fatal("NewLogger(nil) returned nil")
	}
	if NewLogger(&Config{}) == nil {
		t.Fatal("NewLogger with empty config returned nil")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := testLogger(&buf, LevelWarn)

	logger.Debug("dropped debug")
	logger.Info("dropped info")
	logger.Warn("kept warning")
	logger.Error("kept error")

	output := buf.String()
	if strings.Contains(output, "dropped") {
		t.Errorf("Messages below LevelWarn should be dropped, got: %s", output)
	}
	if !strings.Contains(output, "kept warning") || !strings.Contains(output, "kept error") {
		t.Errorf("Warn/Error should pass the filter, got: %s", output)
	}
}

func TestKeyValueFormatting(t *testing.T) {
	var buf bytes.Buffer
	logger := testLogger(&buf, LevelDebug)

	logger.Info("connected", "addr", "127.0.0.1:1235", "attempt", 2)

	output := buf.String()
	if !strings.Contains(output, "addr=127.0.0.1:1235") {
		t.Errorf("Expected addr=127.0.0.1:1235 in output, got: %s", output)
	}
	if !strings.Contains(output, "attempt=2") {
		t.Errorf("Expected attempt=2 in output, got: %s", output)
	}
}

func TestSubPrefixesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := testLogger(&buf, LevelDebug).Sub("transport")

	logger.Info("reconnecting", "addr", "127.0.0.1:1235")

	output := buf.String()
	if !strings.Contains(output, "transport: reconnecting") {
		t.Errorf("Expected component prefix in output, got: %s", output)
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := testLogger(&buf, LevelDebug)

	coreLogger := logger.WithCore(7)
	coreLogger.Info("core opened")

	output := buf.String()
	if !strings.Contains(output, "core-uid=7") {
		t.Errorf("Expected core-uid=7 in output, got: %s", output)
	}

	buf.Reset()
	opLogger := coreLogger.WithOp("execute-txlist")
	opLogger.Debug("issuing request")

	output = buf.String()
	if !strings.Contains(output, "core-uid=7") {
		t.Errorf("Expected core-uid=7 to survive chaining, got: %s", output)
	}
	if !strings.Contains(output, "op=execute-txlist") {
		t.Errorf("Expected op=execute-txlist in output, got: %s", output)
	}

	// the parent logger's context is unchanged
	buf.Reset()
	logger.Info("plain line")
	output = buf.String()
	if strings.Contains(output, "core-uid") {
		t.Errorf("Parent logger picked up derived context: %s", output)
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := testLogger(&buf, LevelDebug)

	testErr := errors.New("connection refused")
	logger.WithError(testErr).Error("dial failed")

	output := buf.String()
	if !strings.Contains(output, "error=connection refused") {
		t.Errorf("Expected error=connection refused in output, got: %s", output)
	}
}

func TestGlobalLoggerFunctions(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(testLogger(&buf, LevelDebug))
	defer SetDefault(NewLogger(nil))

	Debug("debug message", "key", "value")
	output := buf.String()
	if !strings.Contains(output, "debug message") {
		t.Errorf("Expected debug message, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("Expected key=value, got: %s", output)
	}

	buf.Reset()
	Info("info message")
	if !strings.Contains(buf.String(), "info message") {
		t.Errorf("Expected info message, got: %s", buf.String())
	}

	buf.Reset()
	Warn("warning message")
	if !strings.Contains(buf.String(), "warning message") {
		t.Errorf("Expected warning message, got: %s", buf.String())
	}

	buf.Reset()
	Error("error message")
	if !strings.Contains(buf.String(), "error message") {
		t.Errorf("Expected error message, got: %s", buf.String())
	}
}
