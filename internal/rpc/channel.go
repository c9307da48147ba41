package rpc

import "github.com/lauterbach-mcd/mcd-client/internal/wire"

// --- chl-open (opcode 46) ---

type ChlOpenArgs struct {
	CoreUID       uint32 `json:"core-uid"`
	ChlType       uint32 `json:"chl-type"`
	ChlAttributes uint32 `json:"chl-attributes"`
}

type ChlOpenResult struct {
	Ret   wire.ReturnStatus `json:"ret"`
	ChlID uint32            `json:"chl-id"`
}

func MarshalChlOpenArgs(a ChlOpenArgs) []byte {
	w := wire.NewWriter(12)
	w.PutU32(a.CoreUID)
	w.PutU32(a.ChlType)
	w.PutU32(a.ChlAttributes)
	return w.Bytes()
}

func UnmarshalChlOpenResult(body []byte) (ChlOpenResult, error) {
	var res ChlOpenResult
	err := unmarshalFrame("chl-open", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		res.ChlID, err = r.GetU32()
		return err
	})
	return res, err
}

// --- send-msg (opcode 47) ---

type SendMsgArgs struct {
	ChlID uint32 `json:"chl-id"`
	Msg   []byte `json:"msg"`
}

type SendMsgResult struct {
	Ret wire.ReturnStatus `json:"ret"`
}

func MarshalSendMsgArgs(a SendMsgArgs) []byte {
	w := wire.NewWriter(8 + len(a.Msg))
	w.PutU32(a.ChlID)
	w.PutVarBytes(a.Msg)
	return w.Bytes()
}

func UnmarshalSendMsgResult(body []byte) (SendMsgResult, error) {
	var res SendMsgResult
	err := unmarshalFrame("send-msg", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		res.Ret = wire.ReturnStatus(v)
		return err
	})
	return res, err
}

// --- receive-msg (opcode 48) ---

type ReceiveMsgArgs struct {
	ChlID     uint32 `json:"chl-id"`
	TimeoutMS uint32 `json:"timeout-ms"`
}

type ReceiveMsgResult struct {
	Ret wire.ReturnStatus `json:"ret"`
	Msg []byte            `json:"msg,omitempty"`
}

func MarshalReceiveMsgArgs(a ReceiveMsgArgs) []byte {
	w := wire.NewWriter(8)
	w.PutU32(a.ChlID)
	w.PutU32(a.TimeoutMS)
	return w.Bytes()
}

func UnmarshalReceiveMsgResult(body []byte) (ReceiveMsgResult, error) {
	var res ReceiveMsgResult
	err := unmarshalFrame("receive-msg", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if present(res.Ret) {
			if res.Msg, err = r.GetVarBytes(); err != nil {
				return err
			}
		}
		return nil
	})
	return res, err
}

// --- chl-reset (opcode 49) ---

type ChlResetArgs struct {
	ChlID uint32 `json:"chl-id"`
}

type ChlResetResult struct {
	Ret wire.ReturnStatus `json:"ret"`
}

func MarshalChlResetArgs(a ChlResetArgs) []byte {
	w := wire.NewWriter(4)
	w.PutU32(a.ChlID)
	return w.Bytes()
}

func UnmarshalChlResetResult(body []byte) (ChlResetResult, error) {
	var res ChlResetResult
	err := unmarshalFrame("chl-reset", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		res.Ret = wire.ReturnStatus(v)
		return err
	})
	return res, err
}

// --- chl-close (opcode 50) ---

type ChlCloseArgs struct {
	ChlID uint32 `json:"chl-id"`
}

type ChlCloseResult struct {
	Ret wire.ReturnStatus `json:"ret"`
}

func MarshalChlCloseArgs(a ChlCloseArgs) []byte {
	w := wire.NewWriter(4)
	w.PutU32(a.ChlID)
	return w.Bytes()
}

func UnmarshalChlCloseResult(body []byte) (ChlCloseResult, error) {
	var res ChlCloseResult
	err := unmarshalFrame("chl-close", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		res.Ret = wire.ReturnStatus(v)
		return err
	})
	return res, err
}
