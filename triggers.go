package mcd

import (
	"context"

	"github.com/lauterbach-mcd/mcd-client/internal/constants"
	"github.com/lauterbach-mcd/mcd-client/internal/rpc"
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

// QryTrigInfo implements mcd_qry_trig_info_f. The result is cached per
// core so CreateTrig can reject a trigger kind the core doesn't
// support without a round trip.
func (c *Client) QryTrigInfo(ctx context.Context, coreUID uint32) (uint32, []rpc.TrigTypeInfo, error) {
	body := rpc.MarshalQryTrigInfoArgs(rpc.QryTrigInfoArgs{CoreUID: coreUID})
	respBody, err := c.call(ctx, constants.OpQryTrigInfo, body)
	if err != nil {
		return 0, nil, WrapError("qry-trig-info", err)
	}
	res, err := rpc.UnmarshalQryTrigInfoResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, nil, WrapError("qry-trig-info", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, nil, c.serverReportedError("qry-trig-info", coreUID)
	}
	c.trigInfoCache[coreUID] = res.TrigTypes
	setLastErrorOK()
	return res.NumTrigTypes, res.TrigTypes, nil
}

// trigKindSupported reports whether coreUID's cached capability set
// (from a prior QryTrigInfo) has an entry whose Type equals the given
// trigger kind; options are not checked. An empty cache (QryTrigInfo never called) is permissive: the
// server is the final authority either way.
func (c *Client) trigKindSupported(coreUID uint32, kind wire.TriggerKind) bool {
	types, ok := c.trigInfoCache[coreUID]
	if !ok {
		return true
	}
	for _, t := range types {
		if t.Type == uint32(kind) {
			return true
		}
	}
	return false
}

// QryCTrigs implements mcd_qry_ctrigs_f.
func (c *Client) QryCTrigs(ctx context.Context, coreUID, startIndex, count uint32) (uint32, []rpc.CTrigInfo, error) {
	body := rpc.MarshalQryCTrigsArgs(rpc.QryCTrigsArgs{CoreUID: coreUID, StartIndex: startIndex, NumCTrigs: count})
	respBody, err := c.call(ctx, constants.OpQryCtrigs, body)
	if err != nil {
		return 0, nil, WrapError("qry-ctrigs", err)
	}
	res, err := rpc.UnmarshalQryCTrigsResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, nil, WrapError("qry-ctrigs", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, nil, c.serverReportedError("qry-ctrigs", coreUID)
	}
	setLastErrorOK()
	return res.NumCTrigs, res.CTrigs, nil
}

// CreateTrig implements mcd_create_trig_f: the trigger's Kind is
// checked against the core's cached QryTrigInfo capability set before
// the call ever touches the wire, rather than making a round trip the
// server would just reject.
func (c *Client) CreateTrig(ctx context.Context, coreUID uint32, trig wire.Trigger) (uint32, wire.Trigger, error) {
	if trig.Kind == wire.TriggerNone || trig.StructSize() == 0 {
		setLastErrorStatic(CodeInvalidParameter)
		return 0, wire.Trigger{}, NewErrorWithOp("create-trig", coreUID, CodeInvalidParameter, "trigger variant missing or struct size zero")
	}
	if !c.trigKindSupported(coreUID, trig.Kind) {
		setLastErrorStatic(CodeInvalidParameter)
		return 0, wire.Trigger{}, NewErrorWithOp("create-trig", coreUID, CodeInvalidParameter, "trigger kind not reported by qry-trig-info")
	}
	body := rpc.MarshalCreateTrigArgs(rpc.CreateTrigArgs{CoreUID: coreUID, Trigger: trig})
	respBody, err := c.call(ctx, constants.OpCreateTrig, body)
	if err != nil {
		return 0, wire.Trigger{}, WrapError("create-trig", err)
	}
	res, err := rpc.UnmarshalCreateTrigResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, wire.Trigger{}, WrapError("create-trig", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, wire.Trigger{}, c.serverReportedError("create-trig", coreUID)
	}
	setLastErrorOK()
	return res.TrigID, res.Trigger, nil
}

// QryTrig implements mcd_qry_trig_f.
func (c *Client) QryTrig(ctx context.Context, coreUID, trigID uint32) (wire.Trigger, error) {
	body := rpc.MarshalQryTrigArgs(rpc.QryTrigArgs{CoreUID: coreUID, TrigID: trigID})
	respBody, err := c.call(ctx, constants.OpQryTrig, body)
	if err != nil {
		return wire.Trigger{}, WrapError("qry-trig", err)
	}
	res, err := rpc.UnmarshalQryTrigResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return wire.Trigger{}, WrapError("qry-trig", err)
	}
	if res.Ret != wire.ReturnOK {
		return wire.Trigger{}, c.serverReportedError("qry-trig", coreUID)
	}
	setLastErrorOK()
	return res.Trigger, nil
}

// RemoveTrig implements mcd_remove_trig_f.
func (c *Client) RemoveTrig(ctx context.Context, coreUID, trigID uint32) error {
	body := rpc.MarshalRemoveTrigArgs(rpc.RemoveTrigArgs{CoreUID: coreUID, TrigID: trigID})
	respBody, err := c.call(ctx, constants.OpRemoveTrig, body)
	if err != nil {
		return WrapError("remove-trig", err)
	}
	res, err := rpc.UnmarshalRemoveTrigResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return WrapError("remove-trig", err)
	}
	if res.Ret != wire.ReturnOK {
		return c.serverReportedError("remove-trig", coreUID)
	}
	setLastErrorOK()
	return nil
}

// QryTrigState implements mcd_qry_trig_state_f.
func (c *Client) QryTrigState(ctx context.Context, coreUID, trigID uint32) (wire.TriggerStateInfo, error) {
	body := rpc.MarshalQryTrigStateArgs(rpc.QryTrigStateArgs{CoreUID: coreUID, TrigID: trigID})
	respBody, err := c.call(ctx, constants.OpQryTrigState, body)
	if err != nil {
		return wire.TriggerStateInfo{}, WrapError("qry-trig-state", err)
	}
	res, err := rpc.UnmarshalQryTrigStateResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return wire.TriggerStateInfo{}, WrapError("qry-trig-state", err)
	}
	if res.Ret != wire.ReturnOK {
		return wire.TriggerStateInfo{}, c.serverReportedError("qry-trig-state", coreUID)
	}
	setLastErrorOK()
	return res.State, nil
}

// ActivateTrigSet implements mcd_activate_trig_set_f.
func (c *Client) ActivateTrigSet(ctx context.Context, coreUID uint32) error {
	body := rpc.MarshalActivateTrigSetArgs(rpc.ActivateTrigSetArgs{CoreUID: coreUID})
	respBody, err := c.call(ctx, constants.OpActivateTrigSet, body)
	if err != nil {
		return WrapError("activate-trig-set", err)
	}
	res, err := rpc.UnmarshalActivateTrigSetResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return WrapError("activate-trig-set", err)
	}
	if res.Ret != wire.ReturnOK {
		return c.serverReportedError("activate-trig-set", coreUID)
	}
	setLastErrorOK()
	return nil
}

// RemoveTrigSet implements mcd_remove_trig_set_f.
func (c *Client) RemoveTrigSet(ctx context.Context, coreUID uint32) error {
	body := rpc.MarshalRemoveTrigSetArgs(rpc.RemoveTrigSetArgs{CoreUID: coreUID})
	respBody, err := c.call(ctx, constants.OpRemoveTrigSet, body)
	if err != nil {
		return WrapError("remove-trig-set", err)
	}
	res, err := rpc.UnmarshalRemoveTrigSetResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return WrapError("remove-trig-set", err)
	}
	if res.Ret != wire.ReturnOK {
		return c.serverReportedError("remove-trig-set", coreUID)
	}
	setLastErrorOK()
	return nil
}

// QryTrigSet implements mcd_qry_trig_set_f.
func (c *Client) QryTrigSet(ctx context.Context, coreUID, startIndex, count uint32) (uint32, []uint32, error) {
	body := rpc.MarshalQryTrigSetArgs(rpc.QryTrigSetArgs{CoreUID: coreUID, StartIndex: startIndex, NumTrigs: count})
	respBody, err := c.call(ctx, constants.OpQryTrigSet, body)
	if err != nil {
		return 0, nil, WrapError("qry-trig-set", err)
	}
	res, err := rpc.UnmarshalQryTrigSetResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, nil, WrapError("qry-trig-set", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, nil, c.serverReportedError("qry-trig-set", coreUID)
	}
	setLastErrorOK()
	return res.NumTrigs, res.TrigIDs, nil
}

// QryTrigSetState implements mcd_qry_trig_set_state_f.
func (c *Client) QryTrigSetState(ctx context.Context, coreUID uint32) (wire.TriggerStateInfo, error) {
	body := rpc.MarshalQryTrigSetStateArgs(rpc.QryTrigSetStateArgs{CoreUID: coreUID})
	respBody, err := c.call(ctx, constants.OpQryTrigSetState, body)
	if err != nil {
		return wire.TriggerStateInfo{}, WrapError("qry-trig-set-state", err)
	}
	res, err := rpc.UnmarshalQryTrigSetStateResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return wire.TriggerStateInfo{}, WrapError("qry-trig-set-state", err)
	}
	if res.Ret != wire.ReturnOK {
		return wire.TriggerStateInfo{}, c.serverReportedError("qry-trig-set-state", coreUID)
	}
	setLastErrorOK()
	return res.State, nil
}
