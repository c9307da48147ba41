// Package unit holds property-style checks that cut across the codec
// layers: opcode table stability, framing bounds, and the JSON field
// naming convention shared with the line-delimited transport.
package unit

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lauterbach-mcd/mcd-client/internal/constants"
	"github.com/lauterbach-mcd/mcd-client/internal/rpc"
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

// Opcode numbers are wire-stable: renumbering breaks every deployed
// server, so pin the corners and a few middles.
func TestOpcodeNumbersStable(t *testing.T) {
	tests := []struct {
		op   constants.Opcode
		num  uint8
		name string
	}{
		{constants.OpInitialize, 1, "initialize"},
		{constants.OpExit, 2, "mcd-exit"},
		{constants.OpOpenServer, 4, "open-server"},
		{constants.OpOpenCore, 12, "open-core"},
		{constants.OpQryMemSpaces, 18, "qry-mem-spaces"},
		{constants.OpExecuteTxList, 34, "execute-txlist"},
		{constants.OpStop, 36, "stop"},
		{constants.OpRst, 45, "rst"},
		{constants.OpReadTrace, 54, "read-trace"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.num, uint8(tt.op))
		require.Equal(t, tt.name, tt.op.String())
	}
	require.Equal(t, uint8(54), uint8(constants.MaxOpcode))
}

func TestFramingBounds(t *testing.T) {
	require.Equal(t, 65535, constants.MaxPacketLength)
	require.Equal(t, 65530, constants.MaxBodyLength)

	// a body at the bound still frames; one byte more does not
	_, err := rpc.EncodeRequest(constants.OpExecuteTxList, make([]byte, constants.MaxBodyLength))
	require.NoError(t, err)
	_, err = rpc.EncodeRequest(constants.OpExecuteTxList, make([]byte, constants.MaxBodyLength+1))
	require.Error(t, err)
}

// Every json tag on the RPC arg/result structs is kebab-case, matching
// the line transport's field naming.
func TestJSONTagsAreKebabCase(t *testing.T) {
	types := []any{
		rpc.QryServersArgs{}, rpc.OpenServerArgs{}, rpc.OpenServerResult{},
		rpc.QrySystemsArgs{}, rpc.QryDevicesArgs{}, rpc.QryCoresArgs{},
		rpc.OpenCoreArgs{}, rpc.OpenCoreResult{},
		rpc.QryMemSpacesArgs{}, rpc.QryRegGroupsArgs{}, rpc.QryRegMapArgs{},
		rpc.ExecuteTxListArgs{}, rpc.CreateTrigArgs{},
		rpc.ReadTraceArgs{}, rpc.ReadTraceResult{},
	}
	for _, v := range types {
		tp := reflect.TypeOf(v)
		for i := 0; i < tp.NumField(); i++ {
			tag := tp.Field(i).Tag.Get("json")
			require.NotEmpty(t, tag, "%s.%s is missing a json tag", tp.Name(), tp.Field(i).Name)
			name := strings.Split(tag, ",")[0]
			require.Equal(t, strings.ToLower(name), name, "%s.%s json tag %q is not lower-case", tp.Name(), tp.Field(i).Name, name)
			require.NotContains(t, name, "_", "%s.%s json tag %q uses underscores", tp.Name(), tp.Field(i).Name, name)
		}
	}
}

// A full request/response cycle through the codec at the byte level:
// marshal args, frame, unframe, unmarshal on a mirrored decoder.
func TestRequestBytesDecodeServerSide(t *testing.T) {
	args := rpc.QryRegMapArgs{CoreUID: 5, RegGroupID: 2, StartIndex: 10, NumRegs: 32}
	frame, err := rpc.EncodeRequest(constants.OpQryRegMap, rpc.MarshalQryRegMapArgs(args))
	require.NoError(t, err)

	r := wire.NewReader(frame)
	length, err := r.GetU32()
	require.NoError(t, err)
	require.Equal(t, int(length), r.Remaining())

	uid, err := r.GetU8()
	require.NoError(t, err)
	require.Equal(t, uint8(constants.OpQryRegMap), uid)

	coreUID, _ := r.GetU32()
	groupID, _ := r.GetU32()
	startIndex, _ := r.GetU32()
	numRegs, _ := r.GetU32()
	require.Equal(t, uint32(5), coreUID)
	require.Equal(t, uint32(2), groupID)
	require.Equal(t, uint32(10), startIndex)
	require.Equal(t, uint32(32), numRegs)
	require.Equal(t, 0, r.Remaining())
}
