package rpc

import "github.com/lauterbach-mcd/mcd-client/internal/wire"

// --- qry-rst-classes (opcode 43) ---
//
// Reset classes are reported as a single bitmask of up to 32 available
// classes, not a paged list.

type QryRstClassesArgs struct {
	CoreUID uint32 `json:"core-uid"`
}

type QryRstClassesResult struct {
	Ret          wire.ReturnStatus `json:"ret"`
	RstClassMask uint32            `json:"rst-class-mask"`
}

func MarshalQryRstClassesArgs(a QryRstClassesArgs) []byte {
	w := wire.NewWriter(4)
	w.PutU32(a.CoreUID)
	return w.Bytes()
}

func UnmarshalQryRstClassesResult(body []byte) (QryRstClassesResult, error) {
	var res QryRstClassesResult
	err := unmarshalFrame("qry-rst-classes", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		res.RstClassMask, err = r.GetU32()
		return err
	})
	return res, err
}

// --- qry-rst-class-info (opcode 44) ---

type QryRstClassInfoArgs struct {
	CoreUID  uint32 `json:"core-uid"`
	RstClass uint8  `json:"rst-class"`
}

const rstClassInfoNameWidth = 32

type QryRstClassInfoResult struct {
	Ret  wire.ReturnStatus `json:"ret"`
	Name string            `json:"name,omitempty"`
}

func MarshalQryRstClassInfoArgs(a QryRstClassInfoArgs) []byte {
	w := wire.NewWriter(8)
	w.PutU32(a.CoreUID)
	w.PutU8(a.RstClass)
	return w.Bytes()
}

func UnmarshalQryRstClassInfoResult(body []byte) (QryRstClassInfoResult, error) {
	var res QryRstClassInfoResult
	err := unmarshalFrame("qry-rst-class-info", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if present(res.Ret) {
			if res.Name, err = r.GetFixedString(rstClassInfoNameWidth); err != nil {
				return err
			}
		}
		return nil
	})
	return res, err
}

// --- rst (opcode 45) ---

type RstArgs struct {
	CoreUID      uint32 `json:"core-uid"`
	RstClassMask uint32 `json:"rst-class-mask"`
	RstAndHalt   bool   `json:"rst-and-halt"`
}

type RstResult struct {
	Ret wire.ReturnStatus `json:"ret"`
}

func MarshalRstArgs(a RstArgs) []byte {
	w := wire.NewWriter(12)
	w.PutU32(a.CoreUID)
	w.PutU32(a.RstClassMask)
	w.PutBool(a.RstAndHalt)
	return w.Bytes()
}

func UnmarshalRstResult(body []byte) (RstResult, error) {
	var res RstResult
	err := unmarshalFrame("rst", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		res.Ret = wire.ReturnStatus(v)
		return err
	})
	return res, err
}
