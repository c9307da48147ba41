package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleConnInfo() ConnInfo {
	return ConnInfo{
		Host:           "127.0.0.1",
		ServerKey:      "srv-key",
		SystemKey:      "sys-key",
		DeviceKey:      "dev-key",
		SystemName:     "test-system",
		SystemInstance: "0",
		HWAccel:        "none",
		DeviceName:     "test-device",
		CoreName:       "core0",
		ServerPort:     0x01020304,
		DeviceType:     2,
		DeviceID:       7,
		CoreType:       3,
		CoreID:         1,
	}
}

func TestConnInfoRoundTrip(t *testing.T) {
	in := sampleConnInfo()
	w := NewWriter(512)
	MarshalConnInfo(w, in)

	r := NewReader(w.Bytes())
	out, err := UnmarshalConnInfo(r)
	require.NoError(t, err)
	require.Equal(t, in, out)
	require.Equal(t, 0, r.Remaining())
}

// Byte-level layout check: the host field's characters appear in
// declared order right after its length prefix, and the multi-byte
// server port decodes to the same value it was encoded from.
func TestConnInfoWireLayout(t *testing.T) {
	in := sampleConnInfo()
	w := NewWriter(512)
	MarshalConnInfo(w, in)
	buf := w.Bytes()

	require.Equal(t, []byte{64, 0, 0, 0}, buf[0:4])
	require.Equal(t, []byte("127.0.0.1"), buf[4:13])
	require.Equal(t, byte(0), buf[13]) // zero padding, not NUL termination semantics

	r := NewReader(buf)
	out, err := UnmarshalConnInfo(r)
	require.NoError(t, err)
	require.Equal(t, uint32(0x01020304), out.ServerPort)
}

func TestMemSpaceRoundTrip(t *testing.T) {
	in := MemSpace{
		ID: 3, Name: "Secure RAM", MemType: 1 | MemTypeSecure, BitWidth: 32,
		BigEndian: true, MinAddr: 0x1000, MaxAddr: 0xFFFF_FFFF,
		SupportedAccessWidthsMask: 0b1111,
	}
	w := NewWriter(128)
	MarshalMemSpace(w, in)
	out, err := UnmarshalMemSpace(NewReader(w.Bytes()))
	require.NoError(t, err)
	require.Equal(t, in, out)
	require.True(t, out.IsSecure())
}

func TestRegInfoRoundTrip(t *testing.T) {
	in := RegInfo{
		ID: 17, GroupID: 2, Name: "pc", RegType: 1, BitWidth: 64,
		MemSpaceID: 3, AddrOffset: 0x40, HasSideEffectsRead: true,
	}
	w := NewWriter(128)
	MarshalRegInfo(w, in)
	out, err := UnmarshalRegInfo(NewReader(w.Bytes()))
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestTransactionRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tx   Transaction
	}{
		{
			"write with data",
			Transaction{
				Addr:        Addr{Address: 0x2000, MemSpaceID: 1, AddrSpaceID: 0},
				AccessType:  AccessWrite,
				Options:     0x10,
				AccessWidth: 4,
				Data:        []byte{0xDE, 0xAD, 0xBE, 0xEF},
				NumBytesReq: 4,
				NumBytesOk:  4,
			},
		},
		{
			"read request without data",
			Transaction{
				Addr:        Addr{Address: 0x1000, MemSpaceID: 2},
				AccessType:  AccessRead,
				AccessWidth: 8,
				NumBytesReq: 8,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter(128)
			MarshalTransaction(w, tt.tx)
			out, err := UnmarshalTransaction(NewReader(w.Bytes()))
			require.NoError(t, err)
			require.Equal(t, tt.tx, out)
		})
	}
}

func TestTxListRoundTrip(t *testing.T) {
	in := TxList{
		Tx: []Transaction{
			{Addr: Addr{Address: 0x10, MemSpaceID: 1}, AccessType: AccessRead, NumBytesReq: 4},
			{Addr: Addr{Address: 0x20, MemSpaceID: 1}, AccessType: AccessWrite, Data: []byte{1}, NumBytesReq: 1, NumBytesOk: 1},
		},
		NumTxOk: 2,
	}
	w := NewWriter(256)
	MarshalTxList(w, in)
	out, err := UnmarshalTxList(NewReader(w.Bytes()))
	require.NoError(t, err)
	require.Equal(t, in, out)

	// empty list keeps a nil slice
	w = NewWriter(16)
	MarshalTxList(w, TxList{})
	out, err = UnmarshalTxList(NewReader(w.Bytes()))
	require.NoError(t, err)
	require.Nil(t, out.Tx)
}

func TestTriggerRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		trig Trigger
	}{
		{"simple-core", Trigger{Kind: TriggerSimpleCore, SimpleCore: &SimpleCoreTrigger{
			StructSize: 40, Type: 1, Action: 2, Addr: Addr{Address: 0x1000, MemSpaceID: 1}, HWThreadID: 3,
		}}},
		{"complex-core", Trigger{Kind: TriggerComplexCore, ComplexCore: &ComplexCoreTrigger{
			StructSize: 64, Type: 2, Option: 1, Action: 4,
			Addr: Addr{Address: 0x2000, MemSpaceID: 2}, DataValue: 0xAA55, DataMask: 0xFFFF, HWThreadID: 1, CoreModeMask: 0x3,
		}}},
		{"bus", Trigger{Kind: TriggerBus, Bus: &BusTrigger{
			StructSize: 48, Type: 3, Action: 1, BusID: 9, DataValue: 1, DataMask: 0xFF,
		}}},
		{"counter", Trigger{Kind: TriggerCounter, Counter: &CounterTrigger{
			StructSize: 32, Type: 4, Action: 2, CounterValue: 1000, Reload: true,
		}}},
		{"custom", Trigger{Kind: TriggerCustom, Custom: &CustomTrigger{
			StructSize: 24, CustomType: 7, Data: []byte{1, 2, 3},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter(256)
			MarshalTrigger(w, tt.trig)
			out, err := UnmarshalTrigger(NewReader(w.Bytes()))
			require.NoError(t, err)
			require.Equal(t, tt.trig.Kind, out.Kind)
			require.Equal(t, tt.trig.SimpleCore, out.SimpleCore)
			require.Equal(t, tt.trig.ComplexCore, out.ComplexCore)
			require.Equal(t, tt.trig.Bus, out.Bus)
			require.Equal(t, tt.trig.Counter, out.Counter)
			require.Equal(t, tt.trig.Custom, out.Custom)
		})
	}
}

func TestTriggerUnionExclusivity(t *testing.T) {
	// zero variants present
	w := NewWriter(16)
	for i := 0; i < 5; i++ {
		w.PutBool(false)
		w.PutBool(false)
	}
	_, err := UnmarshalTrigger(NewReader(w.Bytes()))
	require.ErrorIs(t, err, ErrUnionExclusivity)

	// two variants present (complex-core and simple-core)
	w = NewWriter(256)
	w.PutBool(true)
	w.PutBool(true)
	marshalComplexCore(w, &ComplexCoreTrigger{StructSize: 64})
	w.PutBool(true)
	w.PutBool(true)
	marshalSimpleCore(w, &SimpleCoreTrigger{StructSize: 40})
	for i := 0; i < 3; i++ {
		w.PutBool(false)
		w.PutBool(false)
	}
	_, err = UnmarshalTrigger(NewReader(w.Bytes()))
	require.ErrorIs(t, err, ErrUnionExclusivity)
}

func TestTriggerStructSize(t *testing.T) {
	trig := Trigger{Kind: TriggerSimpleCore, SimpleCore: &SimpleCoreTrigger{StructSize: 40}}
	require.Equal(t, uint32(40), trig.StructSize())
	require.Equal(t, uint32(0), Trigger{}.StructSize())
}

func TestCoreStateRoundTrip(t *testing.T) {
	in := CoreState{
		State: CoreStateDebug, EventMask: uint32(EventTriggered),
		HWThreadID: 2, TrigID: 5, InfoStr1: "stopped at breakpoint", InfoStr2: "",
	}
	w := NewWriter(600)
	MarshalCoreState(w, in)
	out, err := UnmarshalCoreState(NewReader(w.Bytes()))
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestErrorInfoRoundTrip(t *testing.T) {
	in := ErrorInfo{ReturnStatus: ReturnError, ErrorCode: 42, ErrorEvents: 1, Description: "target gone"}
	w := NewWriter(300)
	MarshalErrorInfo(w, in)
	out, err := UnmarshalErrorInfo(NewReader(w.Bytes()))
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestTraceFramesRoundTrip(t *testing.T) {
	in := []TraceFrame{
		{Kind: TraceFrameCore, Timestamp: 100, CoreAddr: 0x1000},
		{Kind: TraceFrameData, Timestamp: 101, DataValue: 0xFF},
		{Kind: TraceFrameCustom, Timestamp: 102, CustomData: []byte{9, 9}},
	}
	w := NewWriter(256)
	MarshalTraceFrames(w, in)
	out, err := UnmarshalTraceFrames(NewReader(w.Bytes()))
	require.NoError(t, err)
	require.Equal(t, in, out)

	// zero frames decode to nil
	w = NewWriter(8)
	MarshalTraceFrames(w, nil)
	out, err = UnmarshalTraceFrames(NewReader(w.Bytes()))
	require.NoError(t, err)
	require.Nil(t, out)
}
