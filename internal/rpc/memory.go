package rpc

import "github.com/lauterbach-mcd/mcd-client/internal/wire"

// --- qry-mem-spaces (opcode 18) ---
//
// Follows the two-mode count contract shared by every paged query:
// NumMemSpaces==0 means "report the total count only", anything else
// means "return a page starting at StartIndex".

type QryMemSpacesArgs struct {
	CoreUID      uint32 `json:"core-uid"`
	StartIndex   uint32 `json:"start-index"`
	NumMemSpaces uint32 `json:"num-mem-spaces"`
}

type QryMemSpacesResult struct {
	Ret          wire.ReturnStatus `json:"ret"`
	NumMemSpaces uint32            `json:"num-mem-spaces"`
	MemSpaces    []wire.MemSpace   `json:"mem-spaces,omitempty"`
}

func MarshalQryMemSpacesArgs(a QryMemSpacesArgs) []byte {
	w := wire.NewWriter(12)
	w.PutU32(a.CoreUID)
	w.PutU32(a.StartIndex)
	w.PutU32(a.NumMemSpaces)
	return w.Bytes()
}

func UnmarshalQryMemSpacesResult(body []byte) (QryMemSpacesResult, error) {
	var res QryMemSpacesResult
	err := unmarshalFrame("qry-mem-spaces", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.NumMemSpaces, err = r.GetU32(); err != nil {
			return err
		}
		n, err := r.GetU32()
		if err != nil {
			return err
		}
		if present(res.Ret) && n > 0 {
			res.MemSpaces = make([]wire.MemSpace, n)
			for i := range res.MemSpaces {
				if res.MemSpaces[i], err = wire.UnmarshalMemSpace(r); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return res, err
}

// --- qry-mem-blocks (opcode 19) ---

type QryMemBlocksArgs struct {
	CoreUID    uint32 `json:"core-uid"`
	MemSpaceID uint32 `json:"mem-space-id"`
	StartIndex uint32 `json:"start-index"`
	NumBlocks  uint32 `json:"num-mem-blocks"`
}

type MemBlock struct {
	StartAddr uint64 `json:"start-addr"`
	EndAddr   uint64 `json:"end-addr"`
}

func marshalMemBlock(w *wire.Writer, b MemBlock) {
	w.PutU64(b.StartAddr)
	w.PutU64(b.EndAddr)
}

func unmarshalMemBlock(r *wire.Reader) (MemBlock, error) {
	var b MemBlock
	var err error
	if b.StartAddr, err = r.GetU64(); err != nil {
		return b, err
	}
	b.EndAddr, err = r.GetU64()
	return b, err
}

type QryMemBlocksResult struct {
	Ret       wire.ReturnStatus `json:"ret"`
	NumBlocks uint32            `json:"num-mem-blocks"`
	MemBlocks []MemBlock        `json:"mem-blocks,omitempty"`
}

func MarshalQryMemBlocksArgs(a QryMemBlocksArgs) []byte {
	w := wire.NewWriter(16)
	w.PutU32(a.CoreUID)
	w.PutU32(a.MemSpaceID)
	w.PutU32(a.StartIndex)
	w.PutU32(a.NumBlocks)
	return w.Bytes()
}

func UnmarshalQryMemBlocksResult(body []byte) (QryMemBlocksResult, error) {
	var res QryMemBlocksResult
	err := unmarshalFrame("qry-mem-blocks", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.NumBlocks, err = r.GetU32(); err != nil {
			return err
		}
		n, err := r.GetU32()
		if err != nil {
			return err
		}
		if present(res.Ret) && n > 0 {
			res.MemBlocks = make([]MemBlock, n)
			for i := range res.MemBlocks {
				if res.MemBlocks[i], err = unmarshalMemBlock(r); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return res, err
}

// --- qry-active-overlays (opcode 20) ---

type QryActiveOverlaysArgs struct {
	CoreUID    uint32 `json:"core-uid"`
	StartIndex uint32 `json:"start-index"`
	NumIDs     uint32 `json:"num-active-overlays"`
}

type QryActiveOverlaysResult struct {
	Ret            wire.ReturnStatus `json:"ret"`
	NumActive      uint32            `json:"num-active-overlays"`
	ActiveOverlays []uint32          `json:"active-overlays,omitempty"`
}

func MarshalQryActiveOverlaysArgs(a QryActiveOverlaysArgs) []byte {
	w := wire.NewWriter(12)
	w.PutU32(a.CoreUID)
	w.PutU32(a.StartIndex)
	w.PutU32(a.NumIDs)
	return w.Bytes()
}

func UnmarshalQryActiveOverlaysResult(body []byte) (QryActiveOverlaysResult, error) {
	var res QryActiveOverlaysResult
	err := unmarshalFrame("qry-active-overlays", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.NumActive, err = r.GetU32(); err != nil {
			return err
		}
		n, err := r.GetU32()
		if err != nil {
			return err
		}
		if present(res.Ret) && n > 0 {
			res.ActiveOverlays = make([]uint32, n)
			for i := range res.ActiveOverlays {
				if res.ActiveOverlays[i], err = r.GetU32(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return res, err
}

// --- qry-reg-groups (opcode 21) ---

type QryRegGroupsArgs struct {
	CoreUID    uint32 `json:"core-uid"`
	StartIndex uint32 `json:"start-index"`
	NumGroups  uint32 `json:"num-reg-groups"`
}

type QryRegGroupsResult struct {
	Ret       wire.ReturnStatus `json:"ret"`
	NumGroups uint32            `json:"num-reg-groups"`
	RegGroups []wire.RegGroup   `json:"reg-groups,omitempty"`
}

func MarshalQryRegGroupsArgs(a QryRegGroupsArgs) []byte {
	w := wire.NewWriter(12)
	w.PutU32(a.CoreUID)
	w.PutU32(a.StartIndex)
	w.PutU32(a.NumGroups)
	return w.Bytes()
}

func UnmarshalQryRegGroupsResult(body []byte) (QryRegGroupsResult, error) {
	var res QryRegGroupsResult
	err := unmarshalFrame("qry-reg-groups", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.NumGroups, err = r.GetU32(); err != nil {
			return err
		}
		n, err := r.GetU32()
		if err != nil {
			return err
		}
		if present(res.Ret) && n > 0 {
			res.RegGroups = make([]wire.RegGroup, n)
			for i := range res.RegGroups {
				if res.RegGroups[i], err = wire.UnmarshalRegGroup(r); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return res, err
}

// --- qry-reg-map (opcode 22) ---

type QryRegMapArgs struct {
	CoreUID    uint32 `json:"core-uid"`
	RegGroupID uint32 `json:"reg-group-id"`
	StartIndex uint32 `json:"start-index"`
	NumRegs    uint32 `json:"num-regs"`
}

type QryRegMapResult struct {
	Ret     wire.ReturnStatus `json:"ret"`
	NumRegs uint32            `json:"num-regs"`
	Regs    []wire.RegInfo    `json:"reg-info,omitempty"`
}

func MarshalQryRegMapArgs(a QryRegMapArgs) []byte {
	w := wire.NewWriter(16)
	w.PutU32(a.CoreUID)
	w.PutU32(a.RegGroupID)
	w.PutU32(a.StartIndex)
	w.PutU32(a.NumRegs)
	return w.Bytes()
}

func UnmarshalQryRegMapResult(body []byte) (QryRegMapResult, error) {
	var res QryRegMapResult
	err := unmarshalFrame("qry-reg-map", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.NumRegs, err = r.GetU32(); err != nil {
			return err
		}
		n, err := r.GetU32()
		if err != nil {
			return err
		}
		if present(res.Ret) && n > 0 {
			res.Regs = make([]wire.RegInfo, n)
			for i := range res.Regs {
				if res.Regs[i], err = wire.UnmarshalRegInfo(r); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return res, err
}

// --- qry-reg-compound (opcode 23) ---
//
// A compound register's value is reported as a list of (reg id, value)
// pairs in declared part order.

type QryRegCompoundArgs struct {
	CoreUID       uint32 `json:"core-uid"`
	CompoundRegID uint32 `json:"compound-reg-id"`
}

type RegValue struct {
	RegID uint32 `json:"reg-id"`
	Value uint64 `json:"value"`
}

type QryRegCompoundResult struct {
	Ret      wire.ReturnStatus `json:"ret"`
	NumParts uint32            `json:"num-parts"`
	Parts    []RegValue        `json:"parts,omitempty"`
}

func MarshalQryRegCompoundArgs(a QryRegCompoundArgs) []byte {
	w := wire.NewWriter(8)
	w.PutU32(a.CoreUID)
	w.PutU32(a.CompoundRegID)
	return w.Bytes()
}

func UnmarshalQryRegCompoundResult(body []byte) (QryRegCompoundResult, error) {
	var res QryRegCompoundResult
	err := unmarshalFrame("qry-reg-compound", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.NumParts, err = r.GetU32(); err != nil {
			return err
		}
		n, err := r.GetU32()
		if err != nil {
			return err
		}
		if present(res.Ret) && n > 0 {
			res.Parts = make([]RegValue, n)
			for i := range res.Parts {
				if res.Parts[i].RegID, err = r.GetU32(); err != nil {
					return err
				}
				if res.Parts[i].Value, err = r.GetU64(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return res, err
}
