package coredb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lauterbach-mcd/mcd-client/internal/adapter"
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

func populatedDB() *CoreDB {
	db := New(1, nil)
	db.Populate(
		[]wire.MemSpace{
			{ID: 1, Name: "RAM", BitWidth: 32},
			{ID: 2, Name: "Regs", BitWidth: 32},
		},
		[]wire.RegGroup{
			{ID: 10, Name: "gpr"},
			{ID: 20, Name: "csr"},
		},
		map[uint32][]wire.RegInfo{
			10: {
				{ID: 1, GroupID: 10, Name: "r0", MemSpaceID: 2},
				{ID: 2, GroupID: 10, Name: "r1", MemSpaceID: 2},
			},
			20: {
				{ID: 3, GroupID: 20, Name: "status", MemSpaceID: 2},
			},
		},
	)
	return db
}

func TestQueryMemSpacesTwoModes(t *testing.T) {
	db := populatedDB()

	// count==0: total only, no page
	total, page, err := db.QueryMemSpaces(0, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(2), total)
	require.Nil(t, page)

	// count>0: page starting at start index
	_, page, err = db.QueryMemSpaces(2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "RAM", page[0].Name)

	_, page, err = db.QueryMemSpaces(1, 1)
	require.NoError(t, err)
	require.Equal(t, "Regs", page[0].Name)

	// out of range
	_, _, err = db.QueryMemSpaces(2, 1)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestQueryRegGroupsTwoModes(t *testing.T) {
	db := populatedDB()

	total, page, err := db.QueryRegGroups(0, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(2), total)
	require.Nil(t, page)

	_, page, err = db.QueryRegGroups(1, 1)
	require.NoError(t, err)
	require.Equal(t, "csr", page[0].Name)
}

func TestQueryRegMapAcrossGroups(t *testing.T) {
	db := populatedDB()

	// group id 0 enumerates every register in declared group order
	total, _, err := db.QueryRegMap(0, 0, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(3), total)

	_, page, err := db.QueryRegMap(0, 3, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"r0", "r1", "status"}, []string{page[0].Name, page[1].Name, page[2].Name})
}

func TestQueryRegMapWithinGroup(t *testing.T) {
	db := populatedDB()

	total, _, err := db.QueryRegMap(20, 0, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(1), total)

	_, page, err := db.QueryRegMap(20, 1, 0)
	require.NoError(t, err)
	require.Equal(t, "status", page[0].Name)

	_, _, err = db.QueryRegMap(99, 0, 0)
	require.ErrorIs(t, err, ErrUnknownRegGroup)
}

func TestAdapterLookup(t *testing.T) {
	db := populatedDB()

	a, err := db.AdapterFor(1)
	require.NoError(t, err)
	require.NotNil(t, a)

	_, err = db.AdapterFor(42)
	require.Error(t, err)
}

// Lookups return the memory space's own stored adapter, never a fresh
// instance, for both the client view and the server view.
func TestAdapterForReturnsStoredInstance(t *testing.T) {
	renumber := func(ms []wire.MemSpace, rg []wire.RegGroup) ([]wire.MemSpace, []wire.RegGroup) {
		out := make([]wire.MemSpace, len(ms))
		copy(out, ms)
		for i := range out {
			out[i].ID += 100
		}
		return out, rg
	}
	db := New(1, renumber)
	db.Populate([]wire.MemSpace{{ID: 1, Name: "RAM"}}, nil, nil)

	a1, err := db.AdapterFor(101) // client-view id
	require.NoError(t, err)
	a2, err := db.AdapterFor(101)
	require.NoError(t, err)
	require.Same(t, a1, a2)

	s1, err := db.AdapterFor(1) // server-view id
	require.NoError(t, err)
	s2, err := db.AdapterFor(1)
	require.NoError(t, err)
	require.Same(t, s1, s2)
}

func TestSetAdapterOverridesDefault(t *testing.T) {
	db := populatedDB()
	custom := &fixedAddrAdapter{offset: 0x8000}
	db.SetAdapter(1, custom)

	a, err := db.AdapterFor(1)
	require.NoError(t, err)
	require.Same(t, adapter.Adapter(custom), a)

	out, err := db.ConvertAddress(wire.Addr{Address: 0x10, MemSpaceID: 1})
	require.NoError(t, err)
	require.Equal(t, uint64(0x8010), out.Address)
}

func TestConvertAddressDefaultNotImplemented(t *testing.T) {
	db := populatedDB()
	_, err := db.ConvertAddress(wire.Addr{Address: 0x10, MemSpaceID: 1})
	require.ErrorIs(t, err, adapter.ErrNotImplemented)
}

func TestConversionHookRuns(t *testing.T) {
	renamed := func(ms []wire.MemSpace, rg []wire.RegGroup) ([]wire.MemSpace, []wire.RegGroup) {
		out := make([]wire.MemSpace, len(ms))
		copy(out, ms)
		for i := range out {
			out[i].Name = "client-" + out[i].Name
		}
		return out, rg
	}
	db := New(1, renamed)
	db.Populate([]wire.MemSpace{{ID: 1, Name: "RAM"}}, nil, nil)

	_, page, err := db.QueryMemSpaces(1, 0)
	require.NoError(t, err)
	require.Equal(t, "client-RAM", page[0].Name)
}

// fixedAddrAdapter is a test adapter that rebases addresses by a fixed
// offset and otherwise behaves like the pass-through.
type fixedAddrAdapter struct {
	adapter.PassThrough
	offset uint64
}

func (f *fixedAddrAdapter) Clone() adapter.Adapter { return &fixedAddrAdapter{offset: f.offset} }

func (f *fixedAddrAdapter) ConvertAddressToServer(a wire.Addr) (wire.Addr, error) {
	a.Address += f.offset
	return a, nil
}
