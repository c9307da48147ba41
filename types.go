package mcd

import (
	"github.com/lauterbach-mcd/mcd-client/internal/rpc"
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

// Aliases for the wire-level value types that appear in the public API,
// so callers outside this module never have to import internal
// packages.
type (
	ConnInfo           = wire.ConnInfo
	ServerInfo         = wire.ServerInfo
	CoreModeInfo       = wire.CoreModeInfo
	MemSpace           = wire.MemSpace
	RegGroup           = wire.RegGroup
	RegInfo            = wire.RegInfo
	Addr               = wire.Addr
	AccessType         = wire.AccessType
	Transaction        = wire.Transaction
	TxList             = wire.TxList
	Trigger            = wire.Trigger
	TriggerKind        = wire.TriggerKind
	SimpleCoreTrigger  = wire.SimpleCoreTrigger
	ComplexCoreTrigger = wire.ComplexCoreTrigger
	BusTrigger         = wire.BusTrigger
	CounterTrigger     = wire.CounterTrigger
	CustomTrigger      = wire.CustomTrigger
	TriggerStateInfo   = wire.TriggerStateInfo
	CoreState          = wire.CoreState
	CoreRunState       = wire.CoreRunState
	ErrorInfo          = wire.ErrorInfo
	EventBit           = wire.EventBit
	TraceFrame         = wire.TraceFrame
	TraceFrameKind     = wire.TraceFrameKind

	ImplVersionInfo = rpc.ImplVersionInfo
	MemBlock        = rpc.MemBlock
	RegValue        = rpc.RegValue
	TrigTypeInfo    = rpc.TrigTypeInfo
	CTrigInfo       = rpc.CTrigInfo
	TraceInfo       = rpc.TraceInfo
)

const (
	AccessRead  = wire.AccessRead
	AccessWrite = wire.AccessWrite

	TriggerComplexCore = wire.TriggerComplexCore
	TriggerSimpleCore  = wire.TriggerSimpleCore
	TriggerBus         = wire.TriggerBus
	TriggerCounter     = wire.TriggerCounter
	TriggerCustom      = wire.TriggerCustom

	CoreStateUnknown = wire.CoreStateUnknown
	CoreStateRunning = wire.CoreStateRunning
	CoreStateHalted  = wire.CoreStateHalted
	CoreStateDebug   = wire.CoreStateDebug

	EventPowerDown = wire.EventPowerDown
	EventTriggered = wire.EventTriggered
)
