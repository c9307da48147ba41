package mcd

import (
	"context"

	"github.com/lauterbach-mcd/mcd-client/internal/constants"
	"github.com/lauterbach-mcd/mcd-client/internal/rpc"
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

// QryTraces implements mcd_qry_traces_f.
func (c *Client) QryTraces(ctx context.Context, coreUID, startIndex, count uint32) (uint32, []rpc.TraceInfo, error) {
	body := rpc.MarshalQryTracesArgs(rpc.QryTracesArgs{CoreUID: coreUID, StartIndex: startIndex, NumTraces: count})
	respBody, err := c.call(ctx, constants.OpQryTraces, body)
	if err != nil {
		return 0, nil, WrapError("qry-traces", err)
	}
	res, err := rpc.UnmarshalQryTracesResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, nil, WrapError("qry-traces", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, nil, c.serverReportedError("qry-traces", coreUID)
	}
	setLastErrorOK()
	return res.NumTraces, res.Traces, nil
}

// QryTraceState implements mcd_qry_trace_state_f.
func (c *Client) QryTraceState(ctx context.Context, coreUID, traceID uint32) (bool, uint32, error) {
	body := rpc.MarshalQryTraceStateArgs(rpc.QryTraceStateArgs{CoreUID: coreUID, TraceID: traceID})
	respBody, err := c.call(ctx, constants.OpQryTraceState, body)
	if err != nil {
		return false, 0, WrapError("qry-trace-state", err)
	}
	res, err := rpc.UnmarshalQryTraceStateResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return false, 0, WrapError("qry-trace-state", err)
	}
	if res.Ret != wire.ReturnOK {
		return false, 0, c.serverReportedError("qry-trace-state", coreUID)
	}
	setLastErrorOK()
	return res.Enabled, res.NumFrames, nil
}

// SetTraceState implements mcd_set_trace_state_f.
func (c *Client) SetTraceState(ctx context.Context, coreUID, traceID uint32, enabled bool) error {
	body := rpc.MarshalSetTraceStateArgs(rpc.SetTraceStateArgs{CoreUID: coreUID, TraceID: traceID, Enabled: enabled})
	respBody, err := c.call(ctx, constants.OpSetTraceState, body)
	if err != nil {
		return WrapError("set-trace-state", err)
	}
	res, err := rpc.UnmarshalSetTraceStateResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return WrapError("set-trace-state", err)
	}
	if res.Ret != wire.ReturnOK {
		return c.serverReportedError("set-trace-state", coreUID)
	}
	setLastErrorOK()
	return nil
}

// ReadTrace implements mcd_read_trace_f, splitting the request into
// constants.MaxTraceFramesPerChunk-sized RPCs so no single reply can
// outgrow the message buffer. A server that returns fewer frames than
// a chunk asked for ends the loop (end of trace); returning more than
// asked for is a protocol error.
func (c *Client) ReadTrace(ctx context.Context, coreUID, traceID uint32, startIndex uint64, numFrames uint32) ([]wire.TraceFrame, error) {
	cursor := startIndex
	var out []wire.TraceFrame
	remaining := numFrames
	for remaining > 0 {
		chunk := uint32(constants.MaxTraceFramesPerChunk)
		if remaining < chunk {
			chunk = remaining
		}
		body := rpc.MarshalReadTraceArgs(rpc.ReadTraceArgs{CoreUID: coreUID, TraceID: traceID, StartIndex: cursor, NumFrames: chunk})
		respBody, err := c.call(ctx, constants.OpReadTrace, body)
		if err != nil {
			return out, WrapError("read-trace", err)
		}
		res, err := rpc.UnmarshalReadTraceResult(respBody)
		if err != nil {
			setLastErrorStatic(CodeUnmarshal)
			return out, WrapError("read-trace", err)
		}
		if res.Ret != wire.ReturnOK {
			return out, c.serverReportedError("read-trace", coreUID)
		}

		if res.NumFrames > chunk {
			setLastErrorStatic(CodeUnmarshal)
			return out, NewErrorWithOp("read-trace", coreUID, CodeUnmarshal, "server returned more frames than requested")
		}

		out = append(out, res.Frames...)
		cursor += uint64(res.NumFrames)
		remaining -= res.NumFrames

		if res.NumFrames < chunk {
			break // trace exhausted before fulfilling the request
		}
	}

	setLastErrorOK()
	return out, nil
}
