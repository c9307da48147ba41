package rpc

import "github.com/lauterbach-mcd/mcd-client/internal/wire"

// --- qry-traces (opcode 51) ---

type QryTracesArgs struct {
	CoreUID    uint32 `json:"core-uid"`
	StartIndex uint32 `json:"start-index"`
	NumTraces  uint32 `json:"num-traces"`
}

type TraceInfo struct {
	TraceID uint32 `json:"trace-id"`
	Name    string `json:"name"`
}

const traceInfoNameWidth = 64

func marshalTraceInfo(w *wire.Writer, t TraceInfo) {
	w.PutU32(t.TraceID)
	w.PutFixedString(t.Name, traceInfoNameWidth)
}

func unmarshalTraceInfo(r *wire.Reader) (TraceInfo, error) {
	var t TraceInfo
	var err error
	if t.TraceID, err = r.GetU32(); err != nil {
		return t, err
	}
	t.Name, err = r.GetFixedString(traceInfoNameWidth)
	return t, err
}

type QryTracesResult struct {
	Ret       wire.ReturnStatus `json:"ret"`
	NumTraces uint32            `json:"num-traces"`
	Traces    []TraceInfo       `json:"traces,omitempty"`
}

func MarshalQryTracesArgs(a QryTracesArgs) []byte {
	w := wire.NewWriter(12)
	w.PutU32(a.CoreUID)
	w.PutU32(a.StartIndex)
	w.PutU32(a.NumTraces)
	return w.Bytes()
}

func UnmarshalQryTracesResult(body []byte) (QryTracesResult, error) {
	var res QryTracesResult
	err := unmarshalFrame("qry-traces", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.NumTraces, err = r.GetU32(); err != nil {
			return err
		}
		n, err := r.GetU32()
		if err != nil {
			return err
		}
		if present(res.Ret) && n > 0 {
			res.Traces = make([]TraceInfo, n)
			for i := range res.Traces {
				if res.Traces[i], err = unmarshalTraceInfo(r); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return res, err
}

// --- qry-trace-state (opcode 52) ---

type QryTraceStateArgs struct {
	CoreUID uint32 `json:"core-uid"`
	TraceID uint32 `json:"trace-id"`
}

type QryTraceStateResult struct {
	Ret       wire.ReturnStatus `json:"ret"`
	Enabled   bool              `json:"enabled"`
	NumFrames uint32            `json:"num-frames"`
}

func MarshalQryTraceStateArgs(a QryTraceStateArgs) []byte {
	w := wire.NewWriter(8)
	w.PutU32(a.CoreUID)
	w.PutU32(a.TraceID)
	return w.Bytes()
}

func UnmarshalQryTraceStateResult(body []byte) (QryTraceStateResult, error) {
	var res QryTraceStateResult
	err := unmarshalFrame("qry-trace-state", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if present(res.Ret) {
			if res.Enabled, err = r.GetBool(); err != nil {
				return err
			}
			if res.NumFrames, err = r.GetU32(); err != nil {
				return err
			}
		}
		return nil
	})
	return res, err
}

// --- set-trace-state (opcode 53) ---

type SetTraceStateArgs struct {
	CoreUID uint32 `json:"core-uid"`
	TraceID uint32 `json:"trace-id"`
	Enabled bool   `json:"enabled"`
}

type SetTraceStateResult struct {
	Ret wire.ReturnStatus `json:"ret"`
}

func MarshalSetTraceStateArgs(a SetTraceStateArgs) []byte {
	w := wire.NewWriter(12)
	w.PutU32(a.CoreUID)
	w.PutU32(a.TraceID)
	w.PutBool(a.Enabled)
	return w.Bytes()
}

func UnmarshalSetTraceStateResult(body []byte) (SetTraceStateResult, error) {
	var res SetTraceStateResult
	err := unmarshalFrame("set-trace-state", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		res.Ret = wire.ReturnStatus(v)
		return err
	})
	return res, err
}

// --- read-trace (opcode 54) ---
//
// StartIndex/NumFrames page through a trace buffer; the façade splits
// one caller request into constants.MaxTraceFramesPerChunk-sized RPCs
// within a single call.

type ReadTraceArgs struct {
	CoreUID    uint32 `json:"core-uid"`
	TraceID    uint32 `json:"trace-id"`
	StartIndex uint64 `json:"start-index"`
	NumFrames  uint32 `json:"num-frames"`
}

type ReadTraceResult struct {
	Ret       wire.ReturnStatus `json:"ret"`
	NumFrames uint32            `json:"num-frames"`
	Frames    []wire.TraceFrame `json:"frames,omitempty"`
}

func MarshalReadTraceArgs(a ReadTraceArgs) []byte {
	w := wire.NewWriter(24)
	w.PutU32(a.CoreUID)
	w.PutU32(a.TraceID)
	w.PutU64(a.StartIndex)
	w.PutU32(a.NumFrames)
	return w.Bytes()
}

func UnmarshalReadTraceResult(body []byte) (ReadTraceResult, error) {
	var res ReadTraceResult
	err := unmarshalFrame("read-trace", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.NumFrames, err = r.GetU32(); err != nil {
			return err
		}
		if present(res.Ret) {
			if res.Frames, err = wire.UnmarshalTraceFrames(r); err != nil {
				return err
			}
		}
		return nil
	})
	return res, err
}
