package mcd

import (
	"context"

	"github.com/lauterbach-mcd/mcd-client/internal/constants"
	"github.com/lauterbach-mcd/mcd-client/internal/rpc"
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

// ChlOpen implements mcd_chl_open_f.
func (c *Client) ChlOpen(ctx context.Context, coreUID, chlType, chlAttributes uint32) (uint32, error) {
	body := rpc.MarshalChlOpenArgs(rpc.ChlOpenArgs{CoreUID: coreUID, ChlType: chlType, ChlAttributes: chlAttributes})
	respBody, err := c.call(ctx, constants.OpChlOpen, body)
	if err != nil {
		return 0, WrapError("chl-open", err)
	}
	res, err := rpc.UnmarshalChlOpenResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, WrapError("chl-open", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, c.serverReportedError("chl-open", coreUID)
	}
	setLastErrorOK()
	return res.ChlID, nil
}

// SendMsg implements mcd_send_msg_f.
func (c *Client) SendMsg(ctx context.Context, chlID uint32, msg []byte) error {
	body := rpc.MarshalSendMsgArgs(rpc.SendMsgArgs{ChlID: chlID, Msg: msg})
	respBody, err := c.call(ctx, constants.OpSendMsg, body)
	if err != nil {
		return WrapError("send-msg", err)
	}
	res, err := rpc.UnmarshalSendMsgResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return WrapError("send-msg", err)
	}
	if res.Ret != wire.ReturnOK {
		return c.serverReportedError("send-msg", 0)
	}
	setLastErrorOK()
	return nil
}

// ReceiveMsg implements mcd_receive_msg_f.
func (c *Client) ReceiveMsg(ctx context.Context, chlID, timeoutMS uint32) ([]byte, error) {
	body := rpc.MarshalReceiveMsgArgs(rpc.ReceiveMsgArgs{ChlID: chlID, TimeoutMS: timeoutMS})
	respBody, err := c.call(ctx, constants.OpReceiveMsg, body)
	if err != nil {
		return nil, WrapError("receive-msg", err)
	}
	res, err := rpc.UnmarshalReceiveMsgResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return nil, WrapError("receive-msg", err)
	}
	if res.Ret != wire.ReturnOK {
		return nil, c.serverReportedError("receive-msg", 0)
	}
	setLastErrorOK()
	return res.Msg, nil
}

// ChlReset implements mcd_chl_reset_f.
func (c *Client) ChlReset(ctx context.Context, chlID uint32) error {
	body := rpc.MarshalChlResetArgs(rpc.ChlResetArgs{ChlID: chlID})
	respBody, err := c.call(ctx, constants.OpChlReset, body)
	if err != nil {
		return WrapError("chl-reset", err)
	}
	res, err := rpc.UnmarshalChlResetResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return WrapError("chl-reset", err)
	}
	if res.Ret != wire.ReturnOK {
		return c.serverReportedError("chl-reset", 0)
	}
	setLastErrorOK()
	return nil
}

// ChlClose implements mcd_chl_close_f.
func (c *Client) ChlClose(ctx context.Context, chlID uint32) error {
	body := rpc.MarshalChlCloseArgs(rpc.ChlCloseArgs{ChlID: chlID})
	respBody, err := c.call(ctx, constants.OpChlClose, body)
	if err != nil {
		return WrapError("chl-close", err)
	}
	res, err := rpc.UnmarshalChlCloseResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return WrapError("chl-close", err)
	}
	if res.Ret != wire.ReturnOK {
		return c.serverReportedError("chl-close", 0)
	}
	setLastErrorOK()
	return nil
}
