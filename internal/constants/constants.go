// Package constants holds protocol-level constants shared by the wire,
// rpc, transport and façade layers: opcode numbers, buffer sizes and
// timeouts.
package constants

import "time"

// Opcode identifies an MCD RPC. Numbering is stable (1..54) and matches
// the assigned opcode table in the MCD RPC protocol.
type Opcode uint8

const (
	OpInitialize Opcode = iota + 1
	OpExit
	OpQryServers
	OpOpenServer
	OpCloseServer
	OpSetServerConfig
	OpQryServerConfig
	OpQrySystems
	OpQryDevices
	OpQryCores
	OpQryCoreModes
	OpOpenCore
	OpCloseCore
	OpQryErrorInfo
	OpQryDeviceDescription
	OpQryMaxPayloadSize
	OpQryInputHandle
	OpQryMemSpaces
	OpQryMemBlocks
	OpQryActiveOverlays
	OpQryRegGroups
	OpQryRegMap
	OpQryRegCompound
	OpQryTrigInfo
	OpQryCtrigs
	OpCreateTrig
	OpQryTrig
	OpRemoveTrig
	OpQryTrigState
	OpActivateTrigSet
	OpRemoveTrigSet
	OpQryTrigSet
	OpQryTrigSetState
	OpExecuteTxList
	OpRun
	OpStop
	OpRunUntil
	OpQryCurrentTime
	OpStep
	OpSetGlobal
	OpQryState
	OpExecuteCommand
	OpQryRstClasses
	OpQryRstClassInfo
	OpRst
	OpChlOpen
	OpSendMsg
	OpReceiveMsg
	OpChlReset
	OpChlClose
	OpQryTraces
	OpQryTraceState
	OpSetTraceState
	OpReadTrace
)

// MaxOpcode is the highest assigned opcode number (read-trace, 54).
const MaxOpcode = Opcode(OpReadTrace)

// String renders the opcode's RPC name, e.g. "qry-mem-spaces". Used for
// both log fields and the JSON transport's "execute" value.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "unknown-opcode"
}

var opcodeNames = map[Opcode]string{
	OpInitialize:           "initialize",
	OpExit:                 "mcd-exit",
	OpQryServers:           "qry-servers",
	OpOpenServer:           "open-server",
	OpCloseServer:          "close-server",
	OpSetServerConfig:      "set-server-config",
	OpQryServerConfig:      "qry-server-config",
	OpQrySystems:           "qry-systems",
	OpQryDevices:           "qry-devices",
	OpQryCores:             "qry-cores",
	OpQryCoreModes:         "qry-core-modes",
	OpOpenCore:             "open-core",
	OpCloseCore:            "close-core",
	OpQryErrorInfo:         "qry-error-info",
	OpQryDeviceDescription: "qry-device-description",
	OpQryMaxPayloadSize:    "qry-max-payload-size",
	OpQryInputHandle:       "qry-input-handle",
	OpQryMemSpaces:         "qry-mem-spaces",
	OpQryMemBlocks:         "qry-mem-blocks",
	OpQryActiveOverlays:    "qry-active-overlays",
	OpQryRegGroups:         "qry-reg-groups",
	OpQryRegMap:            "qry-reg-map",
	OpQryRegCompound:       "qry-reg-compound",
	OpQryTrigInfo:          "qry-trig-info",
	OpQryCtrigs:            "qry-ctrigs",
	OpCreateTrig:           "create-trig",
	OpQryTrig:              "qry-trig",
	OpRemoveTrig:           "remove-trig",
	OpQryTrigState:         "qry-trig-state",
	OpActivateTrigSet:      "activate-trig-set",
	OpRemoveTrigSet:        "remove-trig-set",
	OpQryTrigSet:           "qry-trig-set",
	OpQryTrigSetState:      "qry-trig-set-state",
	OpExecuteTxList:        "execute-txlist",
	OpRun:                  "run",
	OpStop:                 "stop",
	OpRunUntil:             "run-until",
	OpQryCurrentTime:       "qry-current-time",
	OpStep:                 "step",
	OpSetGlobal:            "set-global",
	OpQryState:             "qry-state",
	OpExecuteCommand:       "execute-command",
	OpQryRstClasses:        "qry-rst-classes",
	OpQryRstClassInfo:      "qry-rst-class-info",
	OpRst:                  "rst",
	OpChlOpen:              "chl-open",
	OpSendMsg:              "send-msg",
	OpReceiveMsg:           "receive-msg",
	OpChlReset:             "chl-reset",
	OpChlClose:             "chl-close",
	OpQryTraces:            "qry-traces",
	OpQryTraceState:        "qry-trace-state",
	OpSetTraceState:        "set-trace-state",
	OpReadTrace:            "read-trace",
}

// Wire and transport bounds.
const (
	// MaxPacketLength is the hard upper bound on a single serialized
	// request or response, including its 4-byte length prefix.
	MaxPacketLength = 65535

	// MaxBodyLength is the largest a marshaled args/result body may be
	// once the length prefix and, for requests, the uid byte are
	// accounted for.
	MaxBodyLength = MaxPacketLength - 5

	// DefaultHost and DefaultPort are the endpoint used when the
	// caller's configuration string is empty or missing.
	DefaultHost = "127.0.0.1"
	DefaultPort = 1235

	// ReceiveTimeout bounds a single blocking receive attempt on either
	// transport.
	ReceiveTimeout = 5 * time.Second

	// MaxTraceFramesPerChunk bounds how many trace frames read-trace
	// requests in a single RPC.
	MaxTraceFramesPerChunk = 100
)

// Fixed-length character field widths, matching the reference API
// header's field widths for mcd_core_con_info_st and friends.
const (
	FixedStringLenShort = 32  // server key, system key, device key, hw accel
	FixedStringLenLong  = 64  // host, system name/instance, device/core name
	FixedStringLenInfo  = 256 // core-state info strings, error descriptions
)
