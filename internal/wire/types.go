package wire

import "fmt"

// ConnInfo describes how to reach a system, device or core. Every
// string field is fixed-length and zero-padded on the wire (see
// Writer.PutFixedString); the widths below mirror the reference API's
// field widths.
type ConnInfo struct {
	Host           string
	ServerKey      string
	SystemKey      string
	DeviceKey      string
	SystemName     string
	SystemInstance string
	HWAccel        string
	DeviceName     string
	CoreName       string

	ServerPort uint32
	DeviceType uint32
	DeviceID   uint32
	CoreType   uint32
	CoreID     uint32
}

// Field widths for ConnInfo's fixed strings.
const (
	connHostWidth  = 64
	connKeyWidth   = 32
	connNameWidth  = 64
	connAccelWidth = 32
	connCoreWidth  = 64
)

func (c *ConnInfo) marshal(w *Writer) {
	w.PutFixedString(c.Host, connHostWidth)
	w.PutFixedString(c.ServerKey, connKeyWidth)
	w.PutFixedString(c.SystemKey, connKeyWidth)
	w.PutFixedString(c.DeviceKey, connKeyWidth)
	w.PutFixedString(c.SystemName, connNameWidth)
	w.PutFixedString(c.SystemInstance, connNameWidth)
	w.PutFixedString(c.HWAccel, connAccelWidth)
	w.PutFixedString(c.DeviceName, connCoreWidth)
	w.PutFixedString(c.CoreName, connCoreWidth)
	w.PutU32(c.ServerPort)
	w.PutU32(c.DeviceType)
	w.PutU32(c.DeviceID)
	w.PutU32(c.CoreType)
	w.PutU32(c.CoreID)
}

func unmarshalConnInfo(r *Reader) (ConnInfo, error) {
	var c ConnInfo
	var err error
	if c.Host, err = r.GetFixedString(connHostWidth); err != nil {
		return c, err
	}
	if c.ServerKey, err = r.GetFixedString(connKeyWidth); err != nil {
		return c, err
	}
	if c.SystemKey, err = r.GetFixedString(connKeyWidth); err != nil {
		return c, err
	}
	if c.DeviceKey, err = r.GetFixedString(connKeyWidth); err != nil {
		return c, err
	}
	if c.SystemName, err = r.GetFixedString(connNameWidth); err != nil {
		return c, err
	}
	if c.SystemInstance, err = r.GetFixedString(connNameWidth); err != nil {
		return c, err
	}
	if c.HWAccel, err = r.GetFixedString(connAccelWidth); err != nil {
		return c, err
	}
	if c.DeviceName, err = r.GetFixedString(connCoreWidth); err != nil {
		return c, err
	}
	if c.CoreName, err = r.GetFixedString(connCoreWidth); err != nil {
		return c, err
	}
	if c.ServerPort, err = r.GetU32(); err != nil {
		return c, err
	}
	if c.DeviceType, err = r.GetU32(); err != nil {
		return c, err
	}
	if c.DeviceID, err = r.GetU32(); err != nil {
		return c, err
	}
	if c.CoreType, err = r.GetU32(); err != nil {
		return c, err
	}
	if c.CoreID, err = r.GetU32(); err != nil {
		return c, err
	}
	return c, nil
}

// MarshalConnInfo and UnmarshalConnInfo expose ConnInfo's codec to
// internal/rpc, which embeds it in many args/result structs.
func MarshalConnInfo(w *Writer, c ConnInfo)         { c.marshal(w) }
func UnmarshalConnInfo(r *Reader) (ConnInfo, error) { return unmarshalConnInfo(r) }

// ServerInfo is one entry of a qry-servers result: a reachable server
// plus whether it is currently running a session.
type ServerInfo struct {
	Server  ConnInfo
	Running bool
}

func MarshalServerInfo(w *Writer, s ServerInfo) {
	s.Server.marshal(w)
	w.PutBool(s.Running)
}

func UnmarshalServerInfo(r *Reader) (ServerInfo, error) {
	var s ServerInfo
	var err error
	if s.Server, err = unmarshalConnInfo(r); err != nil {
		return s, err
	}
	if s.Running, err = r.GetBool(); err != nil {
		return s, err
	}
	return s, nil
}

// CoreModeInfo describes one run mode a core supports (e.g. a named
// privilege level).
type CoreModeInfo struct {
	Name string
}

const coreModeNameWidth = 32

func MarshalCoreModeInfo(w *Writer, m CoreModeInfo) {
	w.PutFixedString(m.Name, coreModeNameWidth)
}

func UnmarshalCoreModeInfo(r *Reader) (CoreModeInfo, error) {
	name, err := r.GetFixedString(coreModeNameWidth)
	return CoreModeInfo{Name: name}, err
}

// MemType and MemSpace model an addressable region of a core: its bit
// width, endianness and address range. MemTypeSecure is the custom
// memory-space type bit (0x00010000), kept distinct from the base type
// so the codec doesn't need to know the rest of the type enumeration,
// which lives in the public API header.
const MemTypeSecure uint32 = 0x00010000

type MemSpace struct {
	ID                        uint32
	Name                      string
	MemType                   uint32
	BitWidth                  uint32
	BigEndian                 bool
	MinAddr                   uint64
	MaxAddr                   uint64
	SupportedAccessWidthsMask uint32
}

const memSpaceNameWidth = 64

func (m MemSpace) IsSecure() bool { return m.MemType&MemTypeSecure != 0 }

func MarshalMemSpace(w *Writer, m MemSpace) {
	w.PutU32(m.ID)
	w.PutFixedString(m.Name, memSpaceNameWidth)
	w.PutU32(m.MemType)
	w.PutU32(m.BitWidth)
	w.PutBool(m.BigEndian)
	w.PutU64(m.MinAddr)
	w.PutU64(m.MaxAddr)
	w.PutU32(m.SupportedAccessWidthsMask)
}

func UnmarshalMemSpace(r *Reader) (MemSpace, error) {
	var m MemSpace
	var err error
	if m.ID, err = r.GetU32(); err != nil {
		return m, err
	}
	if m.Name, err = r.GetFixedString(memSpaceNameWidth); err != nil {
		return m, err
	}
	if m.MemType, err = r.GetU32(); err != nil {
		return m, err
	}
	if m.BitWidth, err = r.GetU32(); err != nil {
		return m, err
	}
	if m.BigEndian, err = r.GetBool(); err != nil {
		return m, err
	}
	if m.MinAddr, err = r.GetU64(); err != nil {
		return m, err
	}
	if m.MaxAddr, err = r.GetU64(); err != nil {
		return m, err
	}
	if m.SupportedAccessWidthsMask, err = r.GetU32(); err != nil {
		return m, err
	}
	return m, nil
}

// RegGroup names a collection of registers; RegInfo is one register
// within a group, addressed indirectly through a memory space.
type RegGroup struct {
	ID   uint32
	Name string
}

const regGroupNameWidth = 64

func MarshalRegGroup(w *Writer, g RegGroup) {
	w.PutU32(g.ID)
	w.PutFixedString(g.Name, regGroupNameWidth)
}

func UnmarshalRegGroup(r *Reader) (RegGroup, error) {
	var g RegGroup
	var err error
	if g.ID, err = r.GetU32(); err != nil {
		return g, err
	}
	if g.Name, err = r.GetFixedString(regGroupNameWidth); err != nil {
		return g, err
	}
	return g, nil
}

type RegInfo struct {
	ID                  uint32
	GroupID             uint32
	Name                string
	RegType             uint32
	BitWidth            uint32
	MemSpaceID          uint32
	AddrOffset          uint64
	HasSideEffectsRead  bool
	HasSideEffectsWrite bool
}

const regInfoNameWidth = 64

func MarshalRegInfo(w *Writer, reg RegInfo) {
	w.PutU32(reg.ID)
	w.PutU32(reg.GroupID)
	w.PutFixedString(reg.Name, regInfoNameWidth)
	w.PutU32(reg.RegType)
	w.PutU32(reg.BitWidth)
	w.PutU32(reg.MemSpaceID)
	w.PutU64(reg.AddrOffset)
	w.PutBool(reg.HasSideEffectsRead)
	w.PutBool(reg.HasSideEffectsWrite)
}

func UnmarshalRegInfo(r *Reader) (RegInfo, error) {
	var reg RegInfo
	var err error
	if reg.ID, err = r.GetU32(); err != nil {
		return reg, err
	}
	if reg.GroupID, err = r.GetU32(); err != nil {
		return reg, err
	}
	if reg.Name, err = r.GetFixedString(regInfoNameWidth); err != nil {
		return reg, err
	}
	if reg.RegType, err = r.GetU32(); err != nil {
		return reg, err
	}
	if reg.BitWidth, err = r.GetU32(); err != nil {
		return reg, err
	}
	if reg.MemSpaceID, err = r.GetU32(); err != nil {
		return reg, err
	}
	if reg.AddrOffset, err = r.GetU64(); err != nil {
		return reg, err
	}
	if reg.HasSideEffectsRead, err = r.GetBool(); err != nil {
		return reg, err
	}
	if reg.HasSideEffectsWrite, err = r.GetBool(); err != nil {
		return reg, err
	}
	return reg, nil
}

// AccessType enumerates the direction of a Transaction.
type AccessType uint8

const (
	AccessRead AccessType = iota
	AccessWrite
)

// Addr identifies a location within a core: an address inside a
// memory space, optionally qualified by an address-space id (used by
// architectures with overlapping virtual/physical address spaces).
type Addr struct {
	Address     uint64
	MemSpaceID  uint32
	AddrSpaceID uint32
}

func marshalAddr(w *Writer, a Addr) {
	w.PutU64(a.Address)
	w.PutU32(a.MemSpaceID)
	w.PutU32(a.AddrSpaceID)
}

func unmarshalAddr(r *Reader) (Addr, error) {
	var a Addr
	var err error
	if a.Address, err = r.GetU64(); err != nil {
		return a, err
	}
	if a.MemSpaceID, err = r.GetU32(); err != nil {
		return a, err
	}
	if a.AddrSpaceID, err = r.GetU32(); err != nil {
		return a, err
	}
	return a, nil
}

// Transaction is a single read or write against an (address,
// memory-space, address-space) tuple. Data holds exactly NumBytesReq
// bytes on the way out (write) or is sized to NumBytesReq on the way
// in (read, to be filled from the response). NumBytesOk is the
// achieved byte count after execution.
type Transaction struct {
	Addr         Addr
	AccessType   AccessType
	Options      uint32
	AccessWidth  uint8
	CoreModeMask uint8
	Data         []byte
	NumBytesReq  uint32
	NumBytesOk   uint32
}

func MarshalTransaction(w *Writer, t Transaction) {
	marshalAddr(w, t.Addr)
	w.PutU8(uint8(t.AccessType))
	w.PutU32(t.Options)
	w.PutU8(t.AccessWidth)
	w.PutU8(t.CoreModeMask)
	w.PutU32(uint32(len(t.Data)))
	w.PutBytes(t.Data)
	w.PutU32(t.NumBytesReq)
	w.PutU32(t.NumBytesOk)
}

func UnmarshalTransaction(r *Reader) (Transaction, error) {
	var t Transaction
	var err error
	if t.Addr, err = unmarshalAddr(r); err != nil {
		return t, err
	}
	at, err := r.GetU8()
	if err != nil {
		return t, err
	}
	t.AccessType = AccessType(at)
	if t.Options, err = r.GetU32(); err != nil {
		return t, err
	}
	if t.AccessWidth, err = r.GetU8(); err != nil {
		return t, err
	}
	if t.CoreModeMask, err = r.GetU8(); err != nil {
		return t, err
	}
	numBytes, err := r.GetU32()
	if err != nil {
		return t, err
	}
	if numBytes > 0 {
		if err := r.need(int(numBytes)); err != nil {
			return t, err
		}
		t.Data = make([]byte, numBytes)
		copy(t.Data, r.buf[r.pos:r.pos+int(numBytes)])
		r.pos += int(numBytes)
	}
	if t.NumBytesReq, err = r.GetU32(); err != nil {
		return t, err
	}
	if t.NumBytesOk, err = r.GetU32(); err != nil {
		return t, err
	}
	return t, nil
}

// TxList is an ordered sequence of transactions plus the count the
// target completed without error (NumTxOk).
type TxList struct {
	Tx      []Transaction
	NumTxOk uint32
}

func MarshalTxList(w *Writer, list TxList) {
	w.PutU32(uint32(len(list.Tx)))
	for _, t := range list.Tx {
		MarshalTransaction(w, t)
	}
	w.PutU32(list.NumTxOk)
}

func UnmarshalTxList(r *Reader) (TxList, error) {
	var list TxList
	n, err := r.GetU32()
	if err != nil {
		return list, err
	}
	if n > 0 {
		list.Tx = make([]Transaction, n)
		for i := range list.Tx {
			if list.Tx[i], err = UnmarshalTransaction(r); err != nil {
				return list, err
			}
		}
	}
	if list.NumTxOk, err = r.GetU32(); err != nil {
		return list, err
	}
	return list, nil
}

// --- Trigger tagged union ---
//
// Exactly one of the five variants may be populated. On the wire each
// variant is a (outer presence flag, inner presence flag, payload?)
// triple, in the fixed order complex-core, simple-core, bus, counter,
// custom. The outer flag is purely informational; this codec treats
// the inner flag as authoritative and honors it verbatim.

type TriggerKind int

const (
	TriggerNone TriggerKind = iota
	TriggerComplexCore
	TriggerSimpleCore
	TriggerBus
	TriggerCounter
	TriggerCustom
)

type ComplexCoreTrigger struct {
	StructSize   uint32
	Type         uint32
	Option       uint32
	Action       uint32
	Addr         Addr
	DataValue    uint64
	DataMask     uint64
	HWThreadID   uint32
	CoreModeMask uint8
}

type SimpleCoreTrigger struct {
	StructSize uint32
	Type       uint32
	Option     uint32
	Action     uint32
	Addr       Addr
	HWThreadID uint32
}

type BusTrigger struct {
	StructSize uint32
	Type       uint32
	Option     uint32
	Action     uint32
	BusID      uint32
	DataValue  uint64
	DataMask   uint64
}

type CounterTrigger struct {
	StructSize   uint32
	Type         uint32
	Action       uint32
	CounterValue uint64
	Reload       bool
}

type CustomTrigger struct {
	StructSize uint32
	CustomType uint32
	Data       []byte
}

// Trigger is the client-visible tagged union. Modified is not carried
// on the wire: MarshalTrigger does not encode it, UnmarshalTrigger and
// the create-trig result decoder do not set it, so it is false on
// every decoded trigger.
type Trigger struct {
	Kind        TriggerKind
	ComplexCore *ComplexCoreTrigger
	SimpleCore  *SimpleCoreTrigger
	Bus         *BusTrigger
	Counter     *CounterTrigger
	Custom      *CustomTrigger
	Modified    bool
}

// StructSize returns the declared struct_size of whichever variant is
// populated, or 0 if the trigger is empty. create-trig deduces the
// variant from this value on the client side before ever touching the
// wire.
func (t Trigger) StructSize() uint32 {
	switch t.Kind {
	case TriggerComplexCore:
		if t.ComplexCore != nil {
			return t.ComplexCore.StructSize
		}
	case TriggerSimpleCore:
		if t.SimpleCore != nil {
			return t.SimpleCore.StructSize
		}
	case TriggerBus:
		if t.Bus != nil {
			return t.Bus.StructSize
		}
	case TriggerCounter:
		if t.Counter != nil {
			return t.Counter.StructSize
		}
	case TriggerCustom:
		if t.Custom != nil {
			return t.Custom.StructSize
		}
	}
	return 0
}

func marshalComplexCore(w *Writer, t *ComplexCoreTrigger) {
	w.PutU32(t.StructSize)
	w.PutU32(t.Type)
	w.PutU32(t.Option)
	w.PutU32(t.Action)
	marshalAddr(w, t.Addr)
	w.PutU64(t.DataValue)
	w.PutU64(t.DataMask)
	w.PutU32(t.HWThreadID)
	w.PutU8(t.CoreModeMask)
}

func unmarshalComplexCore(r *Reader) (*ComplexCoreTrigger, error) {
	t := &ComplexCoreTrigger{}
	var err error
	if t.StructSize, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.Type, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.Option, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.Action, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.Addr, err = unmarshalAddr(r); err != nil {
		return nil, err
	}
	if t.DataValue, err = r.GetU64(); err != nil {
		return nil, err
	}
	if t.DataMask, err = r.GetU64(); err != nil {
		return nil, err
	}
	if t.HWThreadID, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.CoreModeMask, err = r.GetU8(); err != nil {
		return nil, err
	}
	return t, nil
}

func marshalSimpleCore(w *Writer, t *SimpleCoreTrigger) {
	w.PutU32(t.StructSize)
	w.PutU32(t.Type)
	w.PutU32(t.Option)
	w.PutU32(t.Action)
	marshalAddr(w, t.Addr)
	w.PutU32(t.HWThreadID)
}

func unmarshalSimpleCore(r *Reader) (*SimpleCoreTrigger, error) {
	t := &SimpleCoreTrigger{}
	var err error
	if t.StructSize, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.Type, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.Option, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.Action, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.Addr, err = unmarshalAddr(r); err != nil {
		return nil, err
	}
	if t.HWThreadID, err = r.GetU32(); err != nil {
		return nil, err
	}
	return t, nil
}

func marshalBus(w *Writer, t *BusTrigger) {
	w.PutU32(t.StructSize)
	w.PutU32(t.Type)
	w.PutU32(t.Option)
	w.PutU32(t.Action)
	w.PutU32(t.BusID)
	w.PutU64(t.DataValue)
	w.PutU64(t.DataMask)
}

func unmarshalBus(r *Reader) (*BusTrigger, error) {
	t := &BusTrigger{}
	var err error
	if t.StructSize, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.Type, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.Option, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.Action, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.BusID, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.DataValue, err = r.GetU64(); err != nil {
		return nil, err
	}
	if t.DataMask, err = r.GetU64(); err != nil {
		return nil, err
	}
	return t, nil
}

func marshalCounter(w *Writer, t *CounterTrigger) {
	w.PutU32(t.StructSize)
	w.PutU32(t.Type)
	w.PutU32(t.Action)
	w.PutU64(t.CounterValue)
	w.PutBool(t.Reload)
}

func unmarshalCounter(r *Reader) (*CounterTrigger, error) {
	t := &CounterTrigger{}
	var err error
	if t.StructSize, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.Type, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.Action, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.CounterValue, err = r.GetU64(); err != nil {
		return nil, err
	}
	if t.Reload, err = r.GetBool(); err != nil {
		return nil, err
	}
	return t, nil
}

func marshalCustom(w *Writer, t *CustomTrigger) {
	w.PutU32(t.StructSize)
	w.PutU32(t.CustomType)
	w.PutVarBytes(t.Data)
}

func unmarshalCustom(r *Reader) (*CustomTrigger, error) {
	t := &CustomTrigger{}
	var err error
	if t.StructSize, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.CustomType, err = r.GetU32(); err != nil {
		return nil, err
	}
	if t.Data, err = r.GetVarBytes(); err != nil {
		return nil, err
	}
	return t, nil
}

// MarshalTrigger encodes the five-variant presence-flag envelope,
// emitting exactly one non-zero inner flag.
func MarshalTrigger(w *Writer, t Trigger) {
	present := func(k TriggerKind) bool { return t.Kind == k }

	w.PutBool(present(TriggerComplexCore))
	w.PutBool(present(TriggerComplexCore))
	if present(TriggerComplexCore) {
		marshalComplexCore(w, t.ComplexCore)
	}

	w.PutBool(present(TriggerSimpleCore))
	w.PutBool(present(TriggerSimpleCore))
	if present(TriggerSimpleCore) {
		marshalSimpleCore(w, t.SimpleCore)
	}

	w.PutBool(present(TriggerBus))
	w.PutBool(present(TriggerBus))
	if present(TriggerBus) {
		marshalBus(w, t.Bus)
	}

	w.PutBool(present(TriggerCounter))
	w.PutBool(present(TriggerCounter))
	if present(TriggerCounter) {
		marshalCounter(w, t.Counter)
	}

	w.PutBool(present(TriggerCustom))
	w.PutBool(present(TriggerCustom))
	if present(TriggerCustom) {
		marshalCustom(w, t.Custom)
	}
}

// ErrUnionExclusivity is returned when a decoded trigger has zero or
// more than one inner presence flag set.
var ErrUnionExclusivity = fmt.Errorf("wire: trigger union: expected exactly one variant present")

// UnmarshalTrigger decodes the five-variant envelope into a single
// populated Trigger, raising ErrUnionExclusivity if the wire bytes
// set zero or more than one inner flag.
func UnmarshalTrigger(r *Reader) (Trigger, error) {
	var t Trigger
	set := 0

	type slot struct {
		kind   TriggerKind
		decode func(*Reader) error
	}
	slots := []slot{
		{TriggerComplexCore, func(r *Reader) error {
			v, err := unmarshalComplexCore(r)
			if err != nil {
				return err
			}
			t.ComplexCore = v
			return nil
		}},
		{TriggerSimpleCore, func(r *Reader) error {
			v, err := unmarshalSimpleCore(r)
			if err != nil {
				return err
			}
			t.SimpleCore = v
			return nil
		}},
		{TriggerBus, func(r *Reader) error {
			v, err := unmarshalBus(r)
			if err != nil {
				return err
			}
			t.Bus = v
			return nil
		}},
		{TriggerCounter, func(r *Reader) error {
			v, err := unmarshalCounter(r)
			if err != nil {
				return err
			}
			t.Counter = v
			return nil
		}},
		{TriggerCustom, func(r *Reader) error {
			v, err := unmarshalCustom(r)
			if err != nil {
				return err
			}
			t.Custom = v
			return nil
		}},
	}

	for _, s := range slots {
		_, err := r.GetBool() // outer flag: informational only
		if err != nil {
			return t, err
		}
		inner, err := r.GetBool()
		if err != nil {
			return t, err
		}
		if inner {
			set++
			t.Kind = s.kind
			if err := s.decode(r); err != nil {
				return t, err
			}
		}
	}

	if set != 1 {
		return Trigger{}, ErrUnionExclusivity
	}
	return t, nil
}

// TriggerStateInfo is the shared shape of both per-trigger and
// per-trigger-set state: whether it is installed, whether it has
// captured an event, how many times it has fired, and a bitmask of
// per-resource validity.
type TriggerStateInfo struct {
	Active       bool
	Captured     bool
	Count        uint32
	ValidityMask uint32
}

func MarshalTriggerStateInfo(w *Writer, s TriggerStateInfo) {
	w.PutBool(s.Active)
	w.PutBool(s.Captured)
	w.PutU32(s.Count)
	w.PutU32(s.ValidityMask)
}

func UnmarshalTriggerStateInfo(r *Reader) (TriggerStateInfo, error) {
	var s TriggerStateInfo
	var err error
	if s.Active, err = r.GetBool(); err != nil {
		return s, err
	}
	if s.Captured, err = r.GetBool(); err != nil {
		return s, err
	}
	if s.Count, err = r.GetU32(); err != nil {
		return s, err
	}
	if s.ValidityMask, err = r.GetU32(); err != nil {
		return s, err
	}
	return s, nil
}

// CoreRunState enumerates the high-level run state of a core.
type CoreRunState uint32

const (
	CoreStateUnknown CoreRunState = iota
	CoreStateRunning
	CoreStateHalted
	CoreStateDebug
	CoreStateCustom
)

// CoreState is the full state snapshot returned by qry-state.
type CoreState struct {
	State      CoreRunState
	EventMask  uint32
	HWThreadID uint32
	TrigID     uint32 // 0 if no trigger caused the stop
	InfoStr1   string
	InfoStr2   string
}

const coreStateInfoWidth = 256

func MarshalCoreState(w *Writer, s CoreState) {
	w.PutU32(uint32(s.State))
	w.PutU32(s.EventMask)
	w.PutU32(s.HWThreadID)
	w.PutU32(s.TrigID)
	w.PutFixedString(s.InfoStr1, coreStateInfoWidth)
	w.PutFixedString(s.InfoStr2, coreStateInfoWidth)
}

func UnmarshalCoreState(r *Reader) (CoreState, error) {
	var s CoreState
	v, err := r.GetU32()
	if err != nil {
		return s, err
	}
	s.State = CoreRunState(v)
	if s.EventMask, err = r.GetU32(); err != nil {
		return s, err
	}
	if s.HWThreadID, err = r.GetU32(); err != nil {
		return s, err
	}
	if s.TrigID, err = r.GetU32(); err != nil {
		return s, err
	}
	if s.InfoStr1, err = r.GetFixedString(coreStateInfoWidth); err != nil {
		return s, err
	}
	if s.InfoStr2, err = r.GetFixedString(coreStateInfoWidth); err != nil {
		return s, err
	}
	return s, nil
}

// ReturnStatus is the per-RPC result status every *_result carries.
type ReturnStatus uint32

const (
	ReturnOK ReturnStatus = iota
	ReturnError
)

// EventBit is a single bit of a core-state or error-info event bitmask.
type EventBit uint32

const (
	EventNone      EventBit = 0
	EventPowerDown EventBit = 1 << 0
	EventTriggered EventBit = 1 << 1
	EventHWReset   EventBit = 1 << 2
	EventStopped   EventBit = 1 << 3
)

// ErrorInfo is the detail record behind every server-reported error:
// returned inline by any *_result whose ret != OK, and by qry-error-info.
type ErrorInfo struct {
	ReturnStatus ReturnStatus
	ErrorCode    uint32
	ErrorEvents  uint32
	Description  string
}

const errorDescriptionWidth = 256

func MarshalErrorInfo(w *Writer, e ErrorInfo) {
	w.PutU32(uint32(e.ReturnStatus))
	w.PutU32(e.ErrorCode)
	w.PutU32(e.ErrorEvents)
	w.PutFixedString(e.Description, errorDescriptionWidth)
}

func UnmarshalErrorInfo(r *Reader) (ErrorInfo, error) {
	var e ErrorInfo
	v, err := r.GetU32()
	if err != nil {
		return e, err
	}
	e.ReturnStatus = ReturnStatus(v)
	if e.ErrorCode, err = r.GetU32(); err != nil {
		return e, err
	}
	if e.ErrorEvents, err = r.GetU32(); err != nil {
		return e, err
	}
	if e.Description, err = r.GetFixedString(errorDescriptionWidth); err != nil {
		return e, err
	}
	return e, nil
}

// TraceFrame is one captured trace sample. Exactly one of the three
// payload kinds (Core, Data, Custom) is present per frame, mirroring
// the trigger union's exclusivity discipline but sharing a single
// length count across the three arrays at the response level (see
// MarshalTraceFrames).
type TraceFrameKind int

const (
	TraceFrameCore TraceFrameKind = iota
	TraceFrameData
	TraceFrameCustom
)

type TraceFrame struct {
	Kind       TraceFrameKind
	Timestamp  uint64
	CoreAddr   uint64
	DataValue  uint64
	CustomData []byte
}

func marshalTraceFrame(w *Writer, f TraceFrame) {
	w.PutU8(uint8(f.Kind))
	w.PutU64(f.Timestamp)
	switch f.Kind {
	case TraceFrameCore:
		w.PutU64(f.CoreAddr)
	case TraceFrameData:
		w.PutU64(f.DataValue)
	case TraceFrameCustom:
		w.PutVarBytes(f.CustomData)
	}
}

func unmarshalTraceFrame(r *Reader) (TraceFrame, error) {
	var f TraceFrame
	kind, err := r.GetU8()
	if err != nil {
		return f, err
	}
	f.Kind = TraceFrameKind(kind)
	if f.Timestamp, err = r.GetU64(); err != nil {
		return f, err
	}
	switch f.Kind {
	case TraceFrameCore:
		if f.CoreAddr, err = r.GetU64(); err != nil {
			return f, err
		}
	case TraceFrameData:
		if f.DataValue, err = r.GetU64(); err != nil {
			return f, err
		}
	case TraceFrameCustom:
		if f.CustomData, err = r.GetVarBytes(); err != nil {
			return f, err
		}
	}
	return f, nil
}

// MarshalTraceFrames and UnmarshalTraceFrames share one trace_data_len
// count across the three per-kind frame arrays: the wire carries one
// length followed by that many self-describing frames, rather than
// three separately-lengthed arrays.
func MarshalTraceFrames(w *Writer, frames []TraceFrame) {
	w.PutU32(uint32(len(frames)))
	for _, f := range frames {
		marshalTraceFrame(w, f)
	}
}

func UnmarshalTraceFrames(r *Reader) ([]TraceFrame, error) {
	n, err := r.GetU32()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	frames := make([]TraceFrame, n)
	for i := range frames {
		if frames[i], err = unmarshalTraceFrame(r); err != nil {
			return nil, err
		}
	}
	return frames, nil
}
