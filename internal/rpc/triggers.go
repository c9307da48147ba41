package rpc

import "github.com/lauterbach-mcd/mcd-client/internal/wire"

// --- qry-trig-info (opcode 24) ---
//
// Reports which trigger types/options this core supports; create-trig
// consults a cached copy of this result before sending a trigger the
// server would just reject.

type QryTrigInfoArgs struct {
	CoreUID uint32 `json:"core-uid"`
}

type TrigTypeInfo struct {
	Type       uint32 `json:"type"`
	Option     uint32 `json:"option"`
	Action     uint32 `json:"action"`
	TrigNumber uint32 `json:"trig-number"`
}

func marshalTrigTypeInfo(w *wire.Writer, t TrigTypeInfo) {
	w.PutU32(t.Type)
	w.PutU32(t.Option)
	w.PutU32(t.Action)
	w.PutU32(t.TrigNumber)
}

func unmarshalTrigTypeInfo(r *wire.Reader) (TrigTypeInfo, error) {
	var t TrigTypeInfo
	var err error
	if t.Type, err = r.GetU32(); err != nil {
		return t, err
	}
	if t.Option, err = r.GetU32(); err != nil {
		return t, err
	}
	if t.Action, err = r.GetU32(); err != nil {
		return t, err
	}
	t.TrigNumber, err = r.GetU32()
	return t, err
}

type QryTrigInfoResult struct {
	Ret          wire.ReturnStatus `json:"ret"`
	NumTrigTypes uint32            `json:"num-trig-types"`
	TrigTypes    []TrigTypeInfo    `json:"trig-types,omitempty"`
}

func MarshalQryTrigInfoArgs(a QryTrigInfoArgs) []byte {
	w := wire.NewWriter(4)
	w.PutU32(a.CoreUID)
	return w.Bytes()
}

func UnmarshalQryTrigInfoResult(body []byte) (QryTrigInfoResult, error) {
	var res QryTrigInfoResult
	err := unmarshalFrame("qry-trig-info", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.NumTrigTypes, err = r.GetU32(); err != nil {
			return err
		}
		n, err := r.GetU32()
		if err != nil {
			return err
		}
		if present(res.Ret) && n > 0 {
			res.TrigTypes = make([]TrigTypeInfo, n)
			for i := range res.TrigTypes {
				if res.TrigTypes[i], err = unmarshalTrigTypeInfo(r); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return res, err
}

// --- qry-ctrigs (opcode 25) ---

type QryCTrigsArgs struct {
	CoreUID    uint32 `json:"core-uid"`
	StartIndex uint32 `json:"start-index"`
	NumCTrigs  uint32 `json:"num-ctrigs"`
}

type CTrigInfo struct {
	CustomType uint32 `json:"custom-type"`
	Name       string `json:"name"`
}

const ctrigNameWidth = 64

func marshalCTrigInfo(w *wire.Writer, c CTrigInfo) {
	w.PutU32(c.CustomType)
	w.PutFixedString(c.Name, ctrigNameWidth)
}

func unmarshalCTrigInfo(r *wire.Reader) (CTrigInfo, error) {
	var c CTrigInfo
	var err error
	if c.CustomType, err = r.GetU32(); err != nil {
		return c, err
	}
	c.Name, err = r.GetFixedString(ctrigNameWidth)
	return c, err
}

type QryCTrigsResult struct {
	Ret       wire.ReturnStatus `json:"ret"`
	NumCTrigs uint32            `json:"num-ctrigs"`
	CTrigs    []CTrigInfo       `json:"ctrigs,omitempty"`
}

func MarshalQryCTrigsArgs(a QryCTrigsArgs) []byte {
	w := wire.NewWriter(12)
	w.PutU32(a.CoreUID)
	w.PutU32(a.StartIndex)
	w.PutU32(a.NumCTrigs)
	return w.Bytes()
}

func UnmarshalQryCTrigsResult(body []byte) (QryCTrigsResult, error) {
	var res QryCTrigsResult
	err := unmarshalFrame("qry-ctrigs", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.NumCTrigs, err = r.GetU32(); err != nil {
			return err
		}
		n, err := r.GetU32()
		if err != nil {
			return err
		}
		if present(res.Ret) && n > 0 {
			res.CTrigs = make([]CTrigInfo, n)
			for i := range res.CTrigs {
				if res.CTrigs[i], err = unmarshalCTrigInfo(r); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return res, err
}

// --- create-trig (opcode 26) ---

type CreateTrigArgs struct {
	CoreUID uint32       `json:"core-uid"`
	Trigger wire.Trigger `json:"trigger"`
}

type CreateTrigResult struct {
	Ret     wire.ReturnStatus `json:"ret"`
	TrigID  uint32            `json:"trig-id"`
	Trigger wire.Trigger      `json:"trigger"`
}

func MarshalCreateTrigArgs(a CreateTrigArgs) []byte {
	w := wire.NewWriter(64)
	w.PutU32(a.CoreUID)
	wire.MarshalTrigger(w, a.Trigger)
	return w.Bytes()
}

// UnmarshalCreateTrigResult treats "present" for the echoed trigger as
// ret==OK regardless of Modified: the server always echoes back the
// (possibly adjusted) trigger on success.
func UnmarshalCreateTrigResult(body []byte) (CreateTrigResult, error) {
	var res CreateTrigResult
	err := unmarshalFrame("create-trig", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.TrigID, err = r.GetU32(); err != nil {
			return err
		}
		if present(res.Ret) {
			if res.Trigger, err = wire.UnmarshalTrigger(r); err != nil {
				return err
			}
		}
		return nil
	})
	return res, err
}

// --- qry-trig (opcode 27) ---

type QryTrigArgs struct {
	CoreUID uint32 `json:"core-uid"`
	TrigID  uint32 `json:"trig-id"`
}

type QryTrigResult struct {
	Ret     wire.ReturnStatus `json:"ret"`
	Trigger wire.Trigger      `json:"trigger"`
}

func MarshalQryTrigArgs(a QryTrigArgs) []byte {
	w := wire.NewWriter(8)
	w.PutU32(a.CoreUID)
	w.PutU32(a.TrigID)
	return w.Bytes()
}

func UnmarshalQryTrigResult(body []byte) (QryTrigResult, error) {
	var res QryTrigResult
	err := unmarshalFrame("qry-trig", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if present(res.Ret) {
			if res.Trigger, err = wire.UnmarshalTrigger(r); err != nil {
				return err
			}
		}
		return nil
	})
	return res, err
}

// --- remove-trig (opcode 28) ---

type RemoveTrigArgs struct {
	CoreUID uint32 `json:"core-uid"`
	TrigID  uint32 `json:"trig-id"`
}

type RemoveTrigResult struct {
	Ret wire.ReturnStatus `json:"ret"`
}

func MarshalRemoveTrigArgs(a RemoveTrigArgs) []byte {
	w := wire.NewWriter(8)
	w.PutU32(a.CoreUID)
	w.PutU32(a.TrigID)
	return w.Bytes()
}

func UnmarshalRemoveTrigResult(body []byte) (RemoveTrigResult, error) {
	var res RemoveTrigResult
	err := unmarshalFrame("remove-trig", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		res.Ret = wire.ReturnStatus(v)
		return err
	})
	return res, err
}

// --- qry-trig-state (opcode 29) ---

type QryTrigStateArgs struct {
	CoreUID uint32 `json:"core-uid"`
	TrigID  uint32 `json:"trig-id"`
}

type QryTrigStateResult struct {
	Ret   wire.ReturnStatus     `json:"ret"`
	State wire.TriggerStateInfo `json:"trig-state"`
}

func MarshalQryTrigStateArgs(a QryTrigStateArgs) []byte {
	w := wire.NewWriter(8)
	w.PutU32(a.CoreUID)
	w.PutU32(a.TrigID)
	return w.Bytes()
}

func UnmarshalQryTrigStateResult(body []byte) (QryTrigStateResult, error) {
	var res QryTrigStateResult
	err := unmarshalFrame("qry-trig-state", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if present(res.Ret) {
			if res.State, err = wire.UnmarshalTriggerStateInfo(r); err != nil {
				return err
			}
		}
		return nil
	})
	return res, err
}

// --- activate-trig-set (opcode 30) ---

type ActivateTrigSetArgs struct {
	CoreUID uint32 `json:"core-uid"`
}

type ActivateTrigSetResult struct {
	Ret wire.ReturnStatus `json:"ret"`
}

func MarshalActivateTrigSetArgs(a ActivateTrigSetArgs) []byte {
	w := wire.NewWriter(4)
	w.PutU32(a.CoreUID)
	return w.Bytes()
}

func UnmarshalActivateTrigSetResult(body []byte) (ActivateTrigSetResult, error) {
	var res ActivateTrigSetResult
	err := unmarshalFrame("activate-trig-set", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		res.Ret = wire.ReturnStatus(v)
		return err
	})
	return res, err
}

// --- remove-trig-set (opcode 31) ---

type RemoveTrigSetArgs struct {
	CoreUID uint32 `json:"core-uid"`
}

type RemoveTrigSetResult struct {
	Ret wire.ReturnStatus `json:"ret"`
}

func MarshalRemoveTrigSetArgs(a RemoveTrigSetArgs) []byte {
	w := wire.NewWriter(4)
	w.PutU32(a.CoreUID)
	return w.Bytes()
}

func UnmarshalRemoveTrigSetResult(body []byte) (RemoveTrigSetResult, error) {
	var res RemoveTrigSetResult
	err := unmarshalFrame("remove-trig-set", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		res.Ret = wire.ReturnStatus(v)
		return err
	})
	return res, err
}

// --- qry-trig-set (opcode 32) ---

type QryTrigSetArgs struct {
	CoreUID    uint32 `json:"core-uid"`
	StartIndex uint32 `json:"start-index"`
	NumTrigs   uint32 `json:"num-trigs"`
}

type QryTrigSetResult struct {
	Ret      wire.ReturnStatus `json:"ret"`
	NumTrigs uint32            `json:"num-trigs"`
	TrigIDs  []uint32          `json:"trig-ids,omitempty"`
}

func MarshalQryTrigSetArgs(a QryTrigSetArgs) []byte {
	w := wire.NewWriter(12)
	w.PutU32(a.CoreUID)
	w.PutU32(a.StartIndex)
	w.PutU32(a.NumTrigs)
	return w.Bytes()
}

func UnmarshalQryTrigSetResult(body []byte) (QryTrigSetResult, error) {
	var res QryTrigSetResult
	err := unmarshalFrame("qry-trig-set", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.NumTrigs, err = r.GetU32(); err != nil {
			return err
		}
		n, err := r.GetU32()
		if err != nil {
			return err
		}
		if present(res.Ret) && n > 0 {
			res.TrigIDs = make([]uint32, n)
			for i := range res.TrigIDs {
				if res.TrigIDs[i], err = r.GetU32(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return res, err
}

// --- qry-trig-set-state (opcode 33) ---

type QryTrigSetStateArgs struct {
	CoreUID uint32 `json:"core-uid"`
}

type QryTrigSetStateResult struct {
	Ret   wire.ReturnStatus     `json:"ret"`
	State wire.TriggerStateInfo `json:"trig-set-state"`
}

func MarshalQryTrigSetStateArgs(a QryTrigSetStateArgs) []byte {
	w := wire.NewWriter(4)
	w.PutU32(a.CoreUID)
	return w.Bytes()
}

func UnmarshalQryTrigSetStateResult(body []byte) (QryTrigSetStateResult, error) {
	var res QryTrigSetStateResult
	err := unmarshalFrame("qry-trig-set-state", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if present(res.Ret) {
			if res.State, err = wire.UnmarshalTriggerStateInfo(r); err != nil {
				return err
			}
		}
		return nil
	})
	return res, err
}
