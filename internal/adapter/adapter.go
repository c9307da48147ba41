// Package adapter implements the transaction adapter: the
// per-memory-space strategy that turns one client transaction into
// zero or more server transactions and back, and the trivial
// pass-through implementation every memory space uses unless an
// architecture-specific adapter is plugged in.
package adapter

import (
	"fmt"

	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

// ErrNotImplemented is the default ConvertAddressToServer result:
// implementers opt in explicitly rather than silently pass addresses
// through.
var ErrNotImplemented = fmt.Errorf("adapter: convert_address_to_server not implemented")

// ServerCaller issues an execute-txlist RPC against a core on behalf
// of an adapter's yield_server_request, e.g. to read a prerequisite
// register the expansion depends on. GrantServerAccess installs one of
// these for adapters that declared a re-entrant-callback requirement;
// the pass-through adapter never calls it.
type ServerCaller interface {
	ExecuteTxList(coreUID uint32, tx []wire.Transaction) (wire.TxList, error)
}

// Adapter is the per-memory-space transaction strategy.
type Adapter interface {
	// Clone produces an owned copy, used when a memory space is copied
	// into a new core database.
	Clone() Adapter

	// GrantServerAccess installs the callback used for re-entrant
	// server reads. A no-op for adapters that don't need one.
	GrantServerAccess(coreUID uint32, caller ServerCaller)

	// YieldServerRequest expands one client transaction into the
	// server-side transaction list. A failure returns a non-nil error;
	// the façade then marks the client transaction as completed with
	// zero bytes ok and continues the batch rather than aborting it.
	YieldServerRequest(clientTx wire.Transaction) ([]wire.Transaction, error)

	// FreeServerRequest reclaims adapter-owned memory from a prior
	// YieldServerRequest call. The pass-through adapter allocates
	// nothing, so this is a no-op there.
	FreeServerRequest(serverTx []wire.Transaction)

	// CollectClientResponse consumes the server's response list and
	// computes the client-visible response for the one client
	// transaction that produced it.
	CollectClientResponse(clientTx wire.Transaction, serverResp []wire.Transaction) (wire.Transaction, error)

	// ConvertAddressToServer transforms a client-side address into the
	// server-side address. Default: ErrNotImplemented.
	ConvertAddressToServer(addr wire.Addr) (wire.Addr, error)
}

// PassThrough is the trivial adapter: the server transaction list is
// exactly the one client transaction, unmodified; nothing is
// allocated, so nothing needs freeing; collecting a response copies
// bytes and the achieved-count fields back while preserving the
// caller's data pointer.
type PassThrough struct{}

func NewPassThrough() *PassThrough { return &PassThrough{} }

func (p *PassThrough) Clone() Adapter { return &PassThrough{} }

func (p *PassThrough) GrantServerAccess(uint32, ServerCaller) {}

func (p *PassThrough) YieldServerRequest(clientTx wire.Transaction) ([]wire.Transaction, error) {
	return []wire.Transaction{clientTx}, nil
}

func (p *PassThrough) FreeServerRequest([]wire.Transaction) {}

// CollectClientResponse validates that exactly one server transaction
// came back fully OK, then copies NumBytesOk, NumBytesReq, Options,
// AccessWidth and CoreModeMask from it into the client transaction;
// Addr and AccessType stay the client's. The server's data bytes are
// copied into the caller's Data slice when it is long enough, and into
// a newly allocated slice otherwise.
func (p *PassThrough) CollectClientResponse(clientTx wire.Transaction, serverResp []wire.Transaction) (wire.Transaction, error) {
	if len(serverResp) != 1 {
		return clientTx, fmt.Errorf("adapter: pass-through: expected exactly 1 server transaction, got %d", len(serverResp))
	}
	srv := serverResp[0]
	if srv.NumBytesOk != srv.NumBytesReq {
		return clientTx, fmt.Errorf("adapter: pass-through: server transaction incomplete: %d/%d bytes", srv.NumBytesOk, srv.NumBytesReq)
	}
	out := clientTx
	out.NumBytesOk = srv.NumBytesOk
	out.NumBytesReq = srv.NumBytesReq
	out.Options = srv.Options
	out.AccessWidth = srv.AccessWidth
	out.CoreModeMask = srv.CoreModeMask
	if len(srv.Data) > 0 {
		if out.Data == nil || len(out.Data) < len(srv.Data) {
			out.Data = make([]byte, len(srv.Data))
		}
		copy(out.Data, srv.Data)
	}
	return out, nil
}

func (p *PassThrough) ConvertAddressToServer(addr wire.Addr) (wire.Addr, error) {
	return wire.Addr{}, ErrNotImplemented
}
