package mcd

import (
	"context"

	"github.com/lauterbach-mcd/mcd-client/internal/constants"
	"github.com/lauterbach-mcd/mcd-client/internal/rpc"
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

// coreHandleByUID resolves a CoreHandle, failing with
// CodeInvalidParameter for a core this client never opened.
func (c *Client) coreHandleByUID(op string, coreUID uint32) (*CoreHandle, error) {
	ch, ok := c.cores[coreUID]
	if !ok {
		setLastErrorStatic(CodeInvalidParameter)
		return nil, NewErrorWithOp(op, coreUID, CodeInvalidParameter, "core not open")
	}
	return ch, nil
}

// QryMemSpaces implements mcd_qry_mem_spaces_f entirely from the
// cached core database populated by OpenCore, with no RPC.
func (c *Client) QryMemSpaces(coreUID, count, startIndex uint32) (uint32, []wire.MemSpace, error) {
	ch, err := c.coreHandleByUID("qry-mem-spaces", coreUID)
	if err != nil {
		return 0, nil, err
	}
	total, page, err := ch.DB.QueryMemSpaces(count, startIndex)
	if err != nil {
		setLastErrorStatic(CodeInvalidParameter)
		return 0, nil, NewErrorWithOp("qry-mem-spaces", coreUID, CodeInvalidParameter, err.Error())
	}
	setLastErrorOK()
	return total, page, nil
}

// QryRegGroups implements mcd_qry_reg_groups_f from the cache.
func (c *Client) QryRegGroups(coreUID, count, startIndex uint32) (uint32, []wire.RegGroup, error) {
	ch, err := c.coreHandleByUID("qry-reg-groups", coreUID)
	if err != nil {
		return 0, nil, err
	}
	total, page, err := ch.DB.QueryRegGroups(count, startIndex)
	if err != nil {
		setLastErrorStatic(CodeInvalidParameter)
		return 0, nil, NewErrorWithOp("qry-reg-groups", coreUID, CodeInvalidParameter, err.Error())
	}
	setLastErrorOK()
	return total, page, nil
}

// QryRegMap implements mcd_qry_reg_map_f from the cache; regGroupID==0
// enumerates across every group in declared order.
func (c *Client) QryRegMap(coreUID, regGroupID, count, startIndex uint32) (uint32, []wire.RegInfo, error) {
	ch, err := c.coreHandleByUID("qry-reg-map", coreUID)
	if err != nil {
		return 0, nil, err
	}
	total, page, err := ch.DB.QueryRegMap(regGroupID, count, startIndex)
	if err != nil {
		setLastErrorStatic(CodeInvalidParameter)
		return 0, nil, NewErrorWithOp("qry-reg-map", coreUID, CodeInvalidParameter, err.Error())
	}
	setLastErrorOK()
	return total, page, nil
}

// QryMemBlocks implements mcd_qry_mem_blocks_f, a direct RPC
// pass-through (the server owns the block layout, not the cache).
func (c *Client) QryMemBlocks(ctx context.Context, coreUID, memSpaceID, startIndex, count uint32) (uint32, []rpc.MemBlock, error) {
	body := rpc.MarshalQryMemBlocksArgs(rpc.QryMemBlocksArgs{CoreUID: coreUID, MemSpaceID: memSpaceID, StartIndex: startIndex, NumBlocks: count})
	respBody, err := c.call(ctx, constants.OpQryMemBlocks, body)
	if err != nil {
		return 0, nil, WrapError("qry-mem-blocks", err)
	}
	res, err := rpc.UnmarshalQryMemBlocksResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, nil, WrapError("qry-mem-blocks", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, nil, c.serverReportedError("qry-mem-blocks", coreUID)
	}
	setLastErrorOK()
	return res.NumBlocks, res.MemBlocks, nil
}

// QryActiveOverlays implements mcd_qry_active_overlays_f.
func (c *Client) QryActiveOverlays(ctx context.Context, coreUID, startIndex, count uint32) (uint32, []uint32, error) {
	body := rpc.MarshalQryActiveOverlaysArgs(rpc.QryActiveOverlaysArgs{CoreUID: coreUID, StartIndex: startIndex, NumIDs: count})
	respBody, err := c.call(ctx, constants.OpQryActiveOverlays, body)
	if err != nil {
		return 0, nil, WrapError("qry-active-overlays", err)
	}
	res, err := rpc.UnmarshalQryActiveOverlaysResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, nil, WrapError("qry-active-overlays", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, nil, c.serverReportedError("qry-active-overlays", coreUID)
	}
	setLastErrorOK()
	return res.NumActive, res.ActiveOverlays, nil
}

// QryRegCompound implements mcd_qry_reg_compound_f.
func (c *Client) QryRegCompound(ctx context.Context, coreUID, compoundRegID uint32) (uint32, []rpc.RegValue, error) {
	body := rpc.MarshalQryRegCompoundArgs(rpc.QryRegCompoundArgs{CoreUID: coreUID, CompoundRegID: compoundRegID})
	respBody, err := c.call(ctx, constants.OpQryRegCompound, body)
	if err != nil {
		return 0, nil, WrapError("qry-reg-compound", err)
	}
	res, err := rpc.UnmarshalQryRegCompoundResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, nil, WrapError("qry-reg-compound", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, nil, c.serverReportedError("qry-reg-compound", coreUID)
	}
	setLastErrorOK()
	return res.NumParts, res.Parts, nil
}

// ExecuteTxList implements mcd_execute_txlist_f. The list is executed
// transaction by transaction: each client transaction goes through its
// owning memory space's adapter (YieldServerRequest, one RPC,
// CollectClientResponse) so per-transaction adapter semantics hold for
// multi-transaction lists, and no single RPC can outgrow the fixed
// message buffer by combining unrelated transactions.
//
// An adapter failure (unknown memory space, yield or collect error)
// marks that transaction as completed with zero bytes ok and the batch
// continues; a transport or server failure aborts the whole call.
func (c *Client) ExecuteTxList(ctx context.Context, ch *CoreHandle, tx []wire.Transaction) ([]wire.Transaction, error) {
	if len(tx) == 0 {
		setLastErrorOK()
		return nil, nil
	}

	failTx := func(clientTx wire.Transaction) wire.Transaction {
		clientTx.NumBytesOk = 0
		return clientTx
	}

	out := make([]wire.Transaction, len(tx))
	for i, clientTx := range tx {
		a, err := ch.DB.AdapterFor(clientTx.Addr.MemSpaceID)
		if err != nil {
			out[i] = failTx(clientTx)
			continue
		}
		a.GrantServerAccess(ch.UID, c.serverCallerFor(ch))
		serverTx, err := a.YieldServerRequest(clientTx)
		if err != nil {
			out[i] = failTx(clientTx)
			continue
		}
		if len(serverTx) == 0 {
			a.FreeServerRequest(serverTx)
			out[i] = failTx(clientTx)
			continue
		}

		body := rpc.MarshalExecuteTxListArgs(rpc.ExecuteTxListArgs{CoreUID: ch.UID, TxList: wire.TxList{Tx: serverTx}})
		respBody, err := c.call(ctx, constants.OpExecuteTxList, body)
		if err != nil {
			a.FreeServerRequest(serverTx)
			return nil, WrapError("execute-txlist", err)
		}
		res, err := rpc.UnmarshalExecuteTxListResult(respBody)
		if err != nil {
			a.FreeServerRequest(serverTx)
			setLastErrorStatic(CodeUnmarshal)
			return nil, WrapError("execute-txlist", err)
		}
		if res.Ret != wire.ReturnOK {
			a.FreeServerRequest(serverTx)
			return nil, c.serverReportedError("execute-txlist", ch.UID)
		}

		resp, err := a.CollectClientResponse(clientTx, res.TxList.Tx)
		a.FreeServerRequest(serverTx)
		if err != nil {
			out[i] = failTx(clientTx)
			continue
		}
		out[i] = resp
	}

	setLastErrorOK()
	return out, nil
}
