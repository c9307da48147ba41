package rpc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lauterbach-mcd/mcd-client/internal/constants"
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

func TestEncodeRequestFraming(t *testing.T) {
	body := []byte{0xAA, 0xBB, 0xCC}
	frame, err := EncodeRequest(constants.OpQryState, body)
	require.NoError(t, err)

	// length counts the uid byte plus the body
	require.Equal(t, uint32(4), binary.LittleEndian.Uint32(frame[0:4]))
	require.Equal(t, uint8(constants.OpQryState), frame[4])
	require.Equal(t, body, frame[5:])
}

func TestEncodeRequestRejectsOversizeBody(t *testing.T) {
	body := make([]byte, constants.MaxBodyLength+1)
	_, err := EncodeRequest(constants.OpExecuteTxList, body)
	require.Error(t, err)
	var me *MarshalError
	require.ErrorAs(t, err, &me)
	require.Contains(t, me.Error(), "exceeds max")

	// the largest permissible body still fits
	body = make([]byte, constants.MaxBodyLength)
	frame, err := EncodeRequest(constants.OpExecuteTxList, body)
	require.NoError(t, err)
	require.Equal(t, constants.MaxPacketLength, len(frame))
}

func TestEncodeExit(t *testing.T) {
	require.Equal(t, []byte{1, 0, 0, 0, uint8(constants.OpExit)}, EncodeExit())
}

func TestUnmarshalFrameLengthMismatch(t *testing.T) {
	w := wire.NewWriter(16)
	w.PutU32(uint32(wire.ReturnOK))
	w.PutU32(99) // trailing bytes no decoder consumes

	res, err := UnmarshalCloseServerResult(w.Bytes())
	require.Error(t, err)
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	require.Contains(t, pe.Error(), "length mismatch")
	require.Equal(t, wire.ReturnOK, res.Ret)
}

func TestUnmarshalQrySystemsResult(t *testing.T) {
	w := wire.NewWriter(512)
	w.PutU32(uint32(wire.ReturnOK))
	w.PutU32(2) // total available
	w.PutU32(1) // entries in this page
	wire.MarshalConnInfo(w, wire.ConnInfo{SystemName: "sys-a", Host: "127.0.0.1"})

	res, err := UnmarshalQrySystemsResult(w.Bytes())
	require.NoError(t, err)
	require.Equal(t, wire.ReturnOK, res.Ret)
	require.Equal(t, uint32(2), res.NumSystems)
	require.Len(t, res.Systems, 1)
	require.Equal(t, "sys-a", res.Systems[0].SystemName)
}

// A non-OK result must not carry (or allocate) its optional payload.
func TestOptionalFieldsAbsentOnError(t *testing.T) {
	w := wire.NewWriter(16)
	w.PutU32(uint32(wire.ReturnError))
	w.PutU32(0) // server uid slot, always present

	res, err := UnmarshalOpenServerResult(w.Bytes())
	require.NoError(t, err)
	require.Equal(t, wire.ReturnError, res.Ret)
	require.Empty(t, res.Host)
	require.Empty(t, res.ConfigString)

	// qry-systems on error: the count fields are read but no array is
	// allocated even when the page count is non-zero on the wire
	w = wire.NewWriter(16)
	w.PutU32(uint32(wire.ReturnError))
	w.PutU32(0)
	w.PutU32(1)
	sres, err := UnmarshalQrySystemsResult(w.Bytes())
	require.NoError(t, err)
	require.Nil(t, sres.Systems)
}

func TestExecuteTxListRoundTrip(t *testing.T) {
	args := ExecuteTxListArgs{
		CoreUID: 4,
		TxList: wire.TxList{Tx: []wire.Transaction{{
			Addr:        wire.Addr{Address: 0x100, MemSpaceID: 1},
			AccessType:  wire.AccessRead,
			AccessWidth: 4,
			NumBytesReq: 4,
		}}},
	}
	body := MarshalExecuteTxListArgs(args)

	r := wire.NewReader(body)
	coreUID, err := r.GetU32()
	require.NoError(t, err)
	require.Equal(t, uint32(4), coreUID)
	list, err := wire.UnmarshalTxList(r)
	require.NoError(t, err)
	require.Len(t, list.Tx, 1)
	require.Equal(t, uint64(0x100), list.Tx[0].Addr.Address)
	require.Equal(t, 0, r.Remaining())
}

func TestCreateTrigResultRoundTrip(t *testing.T) {
	w := wire.NewWriter(256)
	w.PutU32(uint32(wire.ReturnOK))
	w.PutU32(11)
	wire.MarshalTrigger(w, wire.Trigger{Kind: wire.TriggerSimpleCore, SimpleCore: &wire.SimpleCoreTrigger{
		StructSize: 40, Type: 1, Addr: wire.Addr{Address: 0x1000, MemSpaceID: 1},
	}})

	res, err := UnmarshalCreateTrigResult(w.Bytes())
	require.NoError(t, err)
	require.Equal(t, uint32(11), res.TrigID)
	require.Equal(t, wire.TriggerSimpleCore, res.Trigger.Kind)
	require.Equal(t, uint64(0x1000), res.Trigger.SimpleCore.Addr.Address)
}
