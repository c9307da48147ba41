package mcd

import "github.com/lauterbach-mcd/mcd-client/internal/constants"

// Re-export protocol constants for the public API
const (
	DefaultHost            = constants.DefaultHost
	DefaultPort            = constants.DefaultPort
	MaxPacketLength        = constants.MaxPacketLength
	MaxBodyLength          = constants.MaxBodyLength
	ReceiveTimeout         = constants.ReceiveTimeout
	MaxTraceFramesPerChunk = constants.MaxTraceFramesPerChunk
)
