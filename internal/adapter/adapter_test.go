package adapter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

func TestPassThroughYield(t *testing.T) {
	p := NewPassThrough()
	clientTx := wire.Transaction{
		Addr:        wire.Addr{Address: 0x1000, MemSpaceID: 1},
		AccessType:  wire.AccessRead,
		AccessWidth: 4,
		NumBytesReq: 4,
		Data:        make([]byte, 4),
	}

	serverTx, err := p.YieldServerRequest(clientTx)
	require.NoError(t, err)
	require.Len(t, serverTx, 1)
	require.Equal(t, clientTx, serverTx[0])
}

// collect(yield(tx)) must reproduce the client transaction modulo the
// data buffer identity.
func TestPassThroughIdentity(t *testing.T) {
	p := NewPassThrough()
	clientTx := wire.Transaction{
		Addr:        wire.Addr{Address: 0x2000, MemSpaceID: 1},
		AccessType:  wire.AccessRead,
		Options:     0x4,
		AccessWidth: 4,
		NumBytesReq: 4,
		Data:        make([]byte, 4),
	}

	serverTx, err := p.YieldServerRequest(clientTx)
	require.NoError(t, err)

	// simulate the server completing the read
	resp := serverTx[0]
	resp.Data = []byte{0xDE, 0xAD, 0xBE, 0xEF}
	resp.NumBytesOk = 4

	out, err := p.CollectClientResponse(clientTx, []wire.Transaction{resp})
	require.NoError(t, err)

	require.Equal(t, clientTx.Addr, out.Addr)
	require.Equal(t, clientTx.AccessType, out.AccessType)
	require.Equal(t, uint32(4), out.NumBytesOk)
	require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, out.Data)
	// the caller's buffer is reused, not replaced
	require.Equal(t, &clientTx.Data[0], &out.Data[0])

	p.FreeServerRequest(serverTx)
}

func TestPassThroughCollectValidations(t *testing.T) {
	p := NewPassThrough()
	clientTx := wire.Transaction{NumBytesReq: 4, Data: make([]byte, 4)}

	// not exactly one server transaction
	_, err := p.CollectClientResponse(clientTx, nil)
	require.Error(t, err)
	_, err = p.CollectClientResponse(clientTx, make([]wire.Transaction, 2))
	require.Error(t, err)

	// incomplete server transaction
	_, err = p.CollectClientResponse(clientTx, []wire.Transaction{{NumBytesReq: 4, NumBytesOk: 2}})
	require.Error(t, err)
}

func TestPassThroughConvertAddressNotImplemented(t *testing.T) {
	p := NewPassThrough()
	_, err := p.ConvertAddressToServer(wire.Addr{Address: 1})
	require.ErrorIs(t, err, ErrNotImplemented)
}

func TestPassThroughClone(t *testing.T) {
	p := NewPassThrough()
	c := p.Clone()
	require.NotNil(t, c)
	require.NotSame(t, Adapter(p), c)
}
