// Package coredb implements the core database: the per-core cache of
// memory spaces and register groups discovered
// by update_core_database, a pluggable server-to-client view
// conversion, and the two-mode count contract shared by
// query_mem_spaces, query_reg_groups and query_reg_map.
package coredb

import (
	"fmt"

	"github.com/lauterbach-mcd/mcd-client/internal/adapter"
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

// ErrOutOfRange is returned by a paged query whose start-index/count
// window doesn't fit within the available entries.
var ErrOutOfRange = fmt.Errorf("coredb: index out of range")

// ErrUnknownRegGroup is returned by query_reg_map for a non-zero,
// unrecognized register-group id.
var ErrUnknownRegGroup = fmt.Errorf("coredb: unknown register group")

// Conversion turns the server-reported view of a core's memory spaces
// and register groups into the client-visible view. The only default
// is IdentityConversion; architecture-specific adapters may plug in
// their own. The conversion runs once per open-core.
type Conversion func(memSpaces []wire.MemSpace, regGroups []wire.RegGroup) ([]wire.MemSpace, []wire.RegGroup)

// IdentityConversion is the trivial default: the client view is a
// copy of the server view.
func IdentityConversion(memSpaces []wire.MemSpace, regGroups []wire.RegGroup) ([]wire.MemSpace, []wire.RegGroup) {
	cms := make([]wire.MemSpace, len(memSpaces))
	copy(cms, memSpaces)
	crg := make([]wire.RegGroup, len(regGroups))
	copy(crg, regGroups)
	return cms, crg
}

// CoreDB is one core's cache, created empty by open-core and
// populated by Populate (update_core_database).
type CoreDB struct {
	CoreUID uint32

	serverMemSpaces []wire.MemSpace
	clientMemSpaces []wire.MemSpace

	serverRegGroups []wire.RegGroup
	clientRegGroups []wire.RegGroup

	// regMap[groupID] holds that group's registers in declared order;
	// regOrder preserves the declared group order for groupID==0's
	// "enumerate across all groups" mode.
	regMap   map[uint32][]wire.RegInfo
	regOrder []uint32

	adapters map[uint32]adapter.Adapter // keyed by mem-space id

	conversion Conversion
}

// New creates an empty core database for coreUID using conv as the
// server-to-client view conversion (IdentityConversion if nil).
func New(coreUID uint32, conv Conversion) *CoreDB {
	if conv == nil {
		conv = IdentityConversion
	}
	return &CoreDB{
		CoreUID:    coreUID,
		regMap:     make(map[uint32][]wire.RegInfo),
		adapters:   make(map[uint32]adapter.Adapter),
		conversion: conv,
	}
}

// Populate runs update_core_database: it records the server-reported
// memory spaces and register groups (already paged in by the façade's
// qry-mem-spaces/qry-reg-groups/qry-reg-map calls), derives the
// client view via the conversion hook, and installs a pass-through
// adapter for every memory space that doesn't already have one.
func (db *CoreDB) Populate(memSpaces []wire.MemSpace, regGroups []wire.RegGroup, regMap map[uint32][]wire.RegInfo) {
	db.serverMemSpaces = memSpaces
	db.serverRegGroups = regGroups
	db.clientMemSpaces, db.clientRegGroups = db.conversion(memSpaces, regGroups)

	db.regMap = make(map[uint32][]wire.RegInfo, len(regMap))
	db.regOrder = db.regOrder[:0]
	for _, g := range regGroups {
		db.regOrder = append(db.regOrder, g.ID)
		db.regMap[g.ID] = regMap[g.ID]
	}

	// every memory space in either view owns an adapter; lookups later
	// return these stored instances, never fresh ones
	for _, ms := range db.clientMemSpaces {
		if _, ok := db.adapters[ms.ID]; !ok {
			db.adapters[ms.ID] = adapter.NewPassThrough()
		}
	}
	for _, ms := range db.serverMemSpaces {
		if _, ok := db.adapters[ms.ID]; !ok {
			db.adapters[ms.ID] = adapter.NewPassThrough()
		}
	}
}

// SetAdapter installs an architecture-specific adapter for a memory
// space, overriding the default pass-through.
func (db *CoreDB) SetAdapter(memSpaceID uint32, a adapter.Adapter) {
	db.adapters[memSpaceID] = a
}

// pageWindow applies the two-mode count contract shared by every
// paged query: count==0 means "report the total only" (wantPage
// false); count>0 requests the [startIndex, startIndex+count) window,
// which must fit within total.
func pageWindow(total, count, startIndex uint32) (wantPage bool, err error) {
	if count == 0 {
		return false, nil
	}
	if startIndex+count > total {
		return false, ErrOutOfRange
	}
	return true, nil
}

// QueryMemSpaces implements the two-mode count contract: count==0
// reports the total with a nil page; count>0 returns a page of that
// many entries starting at startIndex.
func (db *CoreDB) QueryMemSpaces(count, startIndex uint32) (total uint32, page []wire.MemSpace, err error) {
	total = uint32(len(db.clientMemSpaces))
	wantPage, err := pageWindow(total, count, startIndex)
	if err != nil || !wantPage {
		return total, nil, err
	}
	return total, append([]wire.MemSpace(nil), db.clientMemSpaces[startIndex:startIndex+count]...), nil
}

// QueryRegGroups mirrors QueryMemSpaces for register groups.
func (db *CoreDB) QueryRegGroups(count, startIndex uint32) (total uint32, page []wire.RegGroup, err error) {
	total = uint32(len(db.clientRegGroups))
	wantPage, err := pageWindow(total, count, startIndex)
	if err != nil || !wantPage {
		return total, nil, err
	}
	return total, append([]wire.RegGroup(nil), db.clientRegGroups[startIndex:startIndex+count]...), nil
}

// QueryRegMap implements the two-mode contract for registers: groupID
// 0 means "enumerate registers across all groups in declared order";
// any other groupID enumerates within that group only, and an
// unrecognized id is ErrUnknownRegGroup.
func (db *CoreDB) QueryRegMap(groupID, count, startIndex uint32) (total uint32, page []wire.RegInfo, err error) {
	var all []wire.RegInfo
	if groupID == 0 {
		for _, gid := range db.regOrder {
			all = append(all, db.regMap[gid]...)
		}
	} else {
		regs, ok := db.regMap[groupID]
		if !ok {
			return 0, nil, ErrUnknownRegGroup
		}
		all = regs
	}

	total = uint32(len(all))
	wantPage, err := pageWindow(total, count, startIndex)
	if err != nil || !wantPage {
		return total, nil, err
	}
	return total, append([]wire.RegInfo(nil), all[startIndex:startIndex+count]...), nil
}

// AdapterFor returns the stored adapter owned by the memory space with
// the given id, checking the client view first, then the server view;
// a miss in both is reported to the caller as a parameter error.
func (db *CoreDB) AdapterFor(memSpaceID uint32) (adapter.Adapter, error) {
	for _, ms := range db.clientMemSpaces {
		if ms.ID == memSpaceID {
			return db.adapters[ms.ID], nil
		}
	}
	for _, ms := range db.serverMemSpaces {
		if ms.ID == memSpaceID {
			return db.adapters[ms.ID], nil
		}
	}
	return nil, fmt.Errorf("coredb: no adapter for mem-space %d: %w", memSpaceID, ErrOutOfRange)
}

// ConvertAddress delegates to the owning memory space's adapter.
func (db *CoreDB) ConvertAddress(addr wire.Addr) (wire.Addr, error) {
	a, err := db.AdapterFor(addr.MemSpaceID)
	if err != nil {
		return wire.Addr{}, err
	}
	return a.ConvertAddressToServer(addr)
}
