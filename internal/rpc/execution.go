package rpc

import "github.com/lauterbach-mcd/mcd-client/internal/wire"

// --- execute-txlist (opcode 34) ---
//
// An empty tx list is a valid no-op: the façade returns OK immediately
// without sending a request, so this file only covers the wire shape
// for non-empty lists.

type ExecuteTxListArgs struct {
	CoreUID uint32      `json:"core-uid"`
	TxList  wire.TxList `json:"txlist"`
}

type ExecuteTxListResult struct {
	Ret    wire.ReturnStatus `json:"ret"`
	TxList wire.TxList       `json:"txlist"`
}

func MarshalExecuteTxListArgs(a ExecuteTxListArgs) []byte {
	w := wire.NewWriter(64)
	w.PutU32(a.CoreUID)
	wire.MarshalTxList(w, a.TxList)
	return w.Bytes()
}

func UnmarshalExecuteTxListResult(body []byte) (ExecuteTxListResult, error) {
	var res ExecuteTxListResult
	err := unmarshalFrame("execute-txlist", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		res.TxList, err = wire.UnmarshalTxList(r)
		return err
	})
	return res, err
}

// --- run (opcode 35) ---

type RunArgs struct {
	CoreUID uint32 `json:"core-uid"`
	Global  bool   `json:"global"`
}

type RunResult struct {
	Ret wire.ReturnStatus `json:"ret"`
}

func MarshalRunArgs(a RunArgs) []byte {
	w := wire.NewWriter(8)
	w.PutU32(a.CoreUID)
	w.PutBool(a.Global)
	return w.Bytes()
}

func UnmarshalRunResult(body []byte) (RunResult, error) {
	var res RunResult
	err := unmarshalFrame("run", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		res.Ret = wire.ReturnStatus(v)
		return err
	})
	return res, err
}

// --- stop (opcode 36) ---
//
// Takes an explicit Global flag. Earlier client generations always
// sent global=true regardless of the caller's argument; the façade
// passes Global through as given instead of hardcoding it.

type StopArgs struct {
	CoreUID uint32 `json:"core-uid"`
	Global  bool   `json:"global"`
}

type StopResult struct {
	Ret wire.ReturnStatus `json:"ret"`
}

func MarshalStopArgs(a StopArgs) []byte {
	w := wire.NewWriter(8)
	w.PutU32(a.CoreUID)
	w.PutBool(a.Global)
	return w.Bytes()
}

func UnmarshalStopResult(body []byte) (StopResult, error) {
	var res StopResult
	err := unmarshalFrame("stop", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		res.Ret = wire.ReturnStatus(v)
		return err
	})
	return res, err
}

// --- run-until (opcode 37) ---

type RunUntilArgs struct {
	CoreUID uint32 `json:"core-uid"`
	Global  bool   `json:"global"`
	AbsTime bool   `json:"abs-time"`
	Time    uint64 `json:"time"`
}

type RunUntilResult struct {
	Ret wire.ReturnStatus `json:"ret"`
}

func MarshalRunUntilArgs(a RunUntilArgs) []byte {
	w := wire.NewWriter(24)
	w.PutU32(a.CoreUID)
	w.PutBool(a.Global)
	w.PutBool(a.AbsTime)
	w.PutU64(a.Time)
	return w.Bytes()
}

func UnmarshalRunUntilResult(body []byte) (RunUntilResult, error) {
	var res RunUntilResult
	err := unmarshalFrame("run-until", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		res.Ret = wire.ReturnStatus(v)
		return err
	})
	return res, err
}

// --- qry-current-time (opcode 38) ---

type QryCurrentTimeArgs struct {
	CoreUID uint32 `json:"core-uid"`
}

type QryCurrentTimeResult struct {
	Ret  wire.ReturnStatus `json:"ret"`
	Time uint64            `json:"current-time"`
}

func MarshalQryCurrentTimeArgs(a QryCurrentTimeArgs) []byte {
	w := wire.NewWriter(4)
	w.PutU32(a.CoreUID)
	return w.Bytes()
}

func UnmarshalQryCurrentTimeResult(body []byte) (QryCurrentTimeResult, error) {
	var res QryCurrentTimeResult
	err := unmarshalFrame("qry-current-time", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		res.Time, err = r.GetU64()
		return err
	})
	return res, err
}

// --- step (opcode 39) ---

type StepArgs struct {
	CoreUID  uint32 `json:"core-uid"`
	Global   bool   `json:"global"`
	StepType uint32 `json:"step-type"`
	NumSteps uint32 `json:"num-steps"`
}

type StepResult struct {
	Ret wire.ReturnStatus `json:"ret"`
}

func MarshalStepArgs(a StepArgs) []byte {
	w := wire.NewWriter(16)
	w.PutU32(a.CoreUID)
	w.PutBool(a.Global)
	w.PutU32(a.StepType)
	w.PutU32(a.NumSteps)
	return w.Bytes()
}

func UnmarshalStepResult(body []byte) (StepResult, error) {
	var res StepResult
	err := unmarshalFrame("step", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		res.Ret = wire.ReturnStatus(v)
		return err
	})
	return res, err
}

// --- set-global (opcode 40) ---

type SetGlobalArgs struct {
	CoreUID uint32 `json:"core-uid"`
	Enable  bool   `json:"enable"`
}

type SetGlobalResult struct {
	Ret wire.ReturnStatus `json:"ret"`
}

func MarshalSetGlobalArgs(a SetGlobalArgs) []byte {
	w := wire.NewWriter(8)
	w.PutU32(a.CoreUID)
	w.PutBool(a.Enable)
	return w.Bytes()
}

func UnmarshalSetGlobalResult(body []byte) (SetGlobalResult, error) {
	var res SetGlobalResult
	err := unmarshalFrame("set-global", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		res.Ret = wire.ReturnStatus(v)
		return err
	})
	return res, err
}

// --- qry-state (opcode 41) ---

type QryStateArgs struct {
	CoreUID uint32 `json:"core-uid"`
}

type QryStateResult struct {
	Ret   wire.ReturnStatus `json:"ret"`
	State wire.CoreState    `json:"state"`
}

func MarshalQryStateArgs(a QryStateArgs) []byte {
	w := wire.NewWriter(4)
	w.PutU32(a.CoreUID)
	return w.Bytes()
}

func UnmarshalQryStateResult(body []byte) (QryStateResult, error) {
	var res QryStateResult
	err := unmarshalFrame("qry-state", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		res.State, err = wire.UnmarshalCoreState(r)
		return err
	})
	return res, err
}

// --- execute-command (opcode 42) ---
//
// A free-form vendor command string in, free-form result string out;
// both sides are opaque to the client.

type ExecuteCommandArgs struct {
	CoreUID      uint32 `json:"core-uid"`
	Command      string `json:"command"`
	ResultLenMax uint32 `json:"result-len-max"`
}

const executeCommandStringWidth = 256

type ExecuteCommandResult struct {
	Ret    wire.ReturnStatus `json:"ret"`
	Result string            `json:"result,omitempty"`
}

func MarshalExecuteCommandArgs(a ExecuteCommandArgs) []byte {
	w := wire.NewWriter(8 + executeCommandStringWidth)
	w.PutU32(a.CoreUID)
	w.PutFixedString(a.Command, executeCommandStringWidth)
	w.PutU32(a.ResultLenMax)
	return w.Bytes()
}

func UnmarshalExecuteCommandResult(body []byte) (ExecuteCommandResult, error) {
	var res ExecuteCommandResult
	err := unmarshalFrame("execute-command", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if present(res.Ret) {
			if res.Result, err = r.GetFixedString(executeCommandStringWidth); err != nil {
				return err
			}
		}
		return nil
	})
	return res, err
}
