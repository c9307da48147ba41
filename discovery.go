package mcd

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/lauterbach-mcd/mcd-client/internal/constants"
	"github.com/lauterbach-mcd/mcd-client/internal/coredb"
	"github.com/lauterbach-mcd/mcd-client/internal/rpc"
	"github.com/lauterbach-mcd/mcd-client/internal/transport"
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

// dbPageSize bounds how many entries update_core_database asks for
// per qry-mem-spaces/qry-reg-groups/qry-reg-map page while populating
// a freshly opened core's database.
const dbPageSize = 64

// QrySystems implements mcd_qry_systems_f.
func (c *Client) QrySystems(ctx context.Context, startIndex, count uint32) (uint32, []wire.ConnInfo, error) {
	if err := c.requireServer("qry-systems"); err != nil {
		return 0, nil, err
	}
	body := rpc.MarshalQrySystemsArgs(rpc.QrySystemsArgs{StartIndex: startIndex, NumSystems: count})
	respBody, err := c.call(ctx, constants.OpQrySystems, body)
	if err != nil {
		return 0, nil, WrapError("qry-systems", err)
	}
	res, err := rpc.UnmarshalQrySystemsResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, nil, WrapError("qry-systems", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, nil, c.serverReportedError("qry-systems", 0)
	}
	setLastErrorOK()
	return res.NumSystems, res.Systems, nil
}

// QryDevices implements mcd_qry_devices_f.
func (c *Client) QryDevices(ctx context.Context, system wire.ConnInfo, startIndex, count uint32) (uint32, []wire.ConnInfo, error) {
	if err := c.requireServer("qry-devices"); err != nil {
		return 0, nil, err
	}
	body := rpc.MarshalQryDevicesArgs(rpc.QryDevicesArgs{SystemConInfo: system, StartIndex: startIndex, NumDevices: count})
	respBody, err := c.call(ctx, constants.OpQryDevices, body)
	if err != nil {
		return 0, nil, WrapError("qry-devices", err)
	}
	res, err := rpc.UnmarshalQryDevicesResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, nil, WrapError("qry-devices", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, nil, c.serverReportedError("qry-devices", 0)
	}
	setLastErrorOK()
	return res.NumDevices, res.Devices, nil
}

// QryCores implements mcd_qry_cores_f.
func (c *Client) QryCores(ctx context.Context, device wire.ConnInfo, startIndex, count uint32) (uint32, []wire.ConnInfo, error) {
	if err := c.requireServer("qry-cores"); err != nil {
		return 0, nil, err
	}
	body := rpc.MarshalQryCoresArgs(rpc.QryCoresArgs{ConnectionInfo: device, StartIndex: startIndex, NumCores: count})
	respBody, err := c.call(ctx, constants.OpQryCores, body)
	if err != nil {
		return 0, nil, WrapError("qry-cores", err)
	}
	res, err := rpc.UnmarshalQryCoresResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, nil, WrapError("qry-cores", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, nil, c.serverReportedError("qry-cores", 0)
	}
	setLastErrorOK()
	return res.NumCores, res.Cores, nil
}

// QryCoreModes implements mcd_qry_core_modes_f.
func (c *Client) QryCoreModes(ctx context.Context, coreUID, startIndex, count uint32) (uint32, []wire.CoreModeInfo, error) {
	if err := c.requireServer("qry-core-modes"); err != nil {
		return 0, nil, err
	}
	body := rpc.MarshalQryCoreModesArgs(rpc.QryCoreModesArgs{CoreUID: coreUID, StartIndex: startIndex, NumModes: count})
	respBody, err := c.call(ctx, constants.OpQryCoreModes, body)
	if err != nil {
		return 0, nil, WrapError("qry-core-modes", err)
	}
	res, err := rpc.UnmarshalQryCoreModesResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, nil, WrapError("qry-core-modes", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, nil, c.serverReportedError("qry-core-modes", coreUID)
	}
	setLastErrorOK()
	return res.NumModes, res.CoreModes, nil
}

// fetchAllMemSpaces runs the count==0/page loop for one core's memory
// spaces, used only by update_core_database.
func (c *Client) fetchAllMemSpaces(ctx context.Context, coreUID uint32) ([]wire.MemSpace, error) {
	body := rpc.MarshalQryMemSpacesArgs(rpc.QryMemSpacesArgs{CoreUID: coreUID})
	respBody, err := c.call(ctx, constants.OpQryMemSpaces, body)
	if err != nil {
		return nil, err
	}
	totalRes, err := rpc.UnmarshalQryMemSpacesResult(respBody)
	if err != nil {
		return nil, err
	}
	if totalRes.Ret != wire.ReturnOK {
		return nil, c.serverReportedError("open-core", coreUID)
	}

	all := make([]wire.MemSpace, 0, totalRes.NumMemSpaces)
	for start := uint32(0); start < totalRes.NumMemSpaces; {
		n := uint32(dbPageSize)
		if remaining := totalRes.NumMemSpaces - start; remaining < n {
			n = remaining
		}
		pageBody := rpc.MarshalQryMemSpacesArgs(rpc.QryMemSpacesArgs{CoreUID: coreUID, StartIndex: start, NumMemSpaces: n})
		respBody, err := c.call(ctx, constants.OpQryMemSpaces, pageBody)
		if err != nil {
			return nil, err
		}
		res, err := rpc.UnmarshalQryMemSpacesResult(respBody)
		if err != nil {
			return nil, err
		}
		if res.Ret != wire.ReturnOK {
			return nil, c.serverReportedError("open-core", coreUID)
		}
		all = append(all, res.MemSpaces...)
		start += n
	}
	return all, nil
}

// fetchAllRegGroups mirrors fetchAllMemSpaces for register groups.
func (c *Client) fetchAllRegGroups(ctx context.Context, coreUID uint32) ([]wire.RegGroup, error) {
	body := rpc.MarshalQryRegGroupsArgs(rpc.QryRegGroupsArgs{CoreUID: coreUID})
	respBody, err := c.call(ctx, constants.OpQryRegGroups, body)
	if err != nil {
		return nil, err
	}
	totalRes, err := rpc.UnmarshalQryRegGroupsResult(respBody)
	if err != nil {
		return nil, err
	}
	if totalRes.Ret != wire.ReturnOK {
		return nil, c.serverReportedError("open-core", coreUID)
	}

	all := make([]wire.RegGroup, 0, totalRes.NumGroups)
	for start := uint32(0); start < totalRes.NumGroups; {
		n := uint32(dbPageSize)
		if remaining := totalRes.NumGroups - start; remaining < n {
			n = remaining
		}
		pageBody := rpc.MarshalQryRegGroupsArgs(rpc.QryRegGroupsArgs{CoreUID: coreUID, StartIndex: start, NumGroups: n})
		respBody, err := c.call(ctx, constants.OpQryRegGroups, pageBody)
		if err != nil {
			return nil, err
		}
		res, err := rpc.UnmarshalQryRegGroupsResult(respBody)
		if err != nil {
			return nil, err
		}
		if res.Ret != wire.ReturnOK {
			return nil, c.serverReportedError("open-core", coreUID)
		}
		all = append(all, res.RegGroups...)
		start += n
	}
	return all, nil
}

// fetchAllRegMap mirrors fetchAllMemSpaces for one register group's
// registers.
func (c *Client) fetchAllRegMap(ctx context.Context, coreUID, groupID uint32) ([]wire.RegInfo, error) {
	body := rpc.MarshalQryRegMapArgs(rpc.QryRegMapArgs{CoreUID: coreUID, RegGroupID: groupID})
	respBody, err := c.call(ctx, constants.OpQryRegMap, body)
	if err != nil {
		return nil, err
	}
	totalRes, err := rpc.UnmarshalQryRegMapResult(respBody)
	if err != nil {
		return nil, err
	}
	if totalRes.Ret != wire.ReturnOK {
		return nil, c.serverReportedError("open-core", coreUID)
	}

	all := make([]wire.RegInfo, 0, totalRes.NumRegs)
	for start := uint32(0); start < totalRes.NumRegs; {
		n := uint32(dbPageSize)
		if remaining := totalRes.NumRegs - start; remaining < n {
			n = remaining
		}
		pageBody := rpc.MarshalQryRegMapArgs(rpc.QryRegMapArgs{CoreUID: coreUID, RegGroupID: groupID, StartIndex: start, NumRegs: n})
		respBody, err := c.call(ctx, constants.OpQryRegMap, pageBody)
		if err != nil {
			return nil, err
		}
		res, err := rpc.UnmarshalQryRegMapResult(respBody)
		if err != nil {
			return nil, err
		}
		if res.Ret != wire.ReturnOK {
			return nil, c.serverReportedError("open-core", coreUID)
		}
		all = append(all, res.Regs...)
		start += n
	}
	return all, nil
}

// populateCoreDB runs update_core_database: the full memory-space,
// register-group and per-group register-map enumeration a freshly
// opened core needs before any transaction or register call against
// it makes sense.
func (c *Client) populateCoreDB(ctx context.Context, coreUID uint32, db *coredb.CoreDB) error {
	memSpaces, err := c.fetchAllMemSpaces(ctx, coreUID)
	if err != nil {
		return err
	}
	regGroups, err := c.fetchAllRegGroups(ctx, coreUID)
	if err != nil {
		return err
	}
	regMap := make(map[uint32][]wire.RegInfo, len(regGroups))
	for _, g := range regGroups {
		regs, err := c.fetchAllRegMap(ctx, coreUID, g.ID)
		if err != nil {
			return err
		}
		regMap[g.ID] = regs
	}
	db.Populate(memSpaces, regGroups, regMap)
	return nil
}

// OpenCore implements mcd_open_core_f, including update_core_database.
// conv may be nil for the identity conversion. If populating the core
// database fails, the core is closed server-side before the error is
// returned, so a caller never holds a half-open handle.
func (c *Client) OpenCore(ctx context.Context, connInfo wire.ConnInfo, conv coredb.Conversion) (*CoreHandle, error) {
	if err := c.requireServer("open-core"); err != nil {
		return nil, err
	}

	body := rpc.MarshalOpenCoreArgs(rpc.OpenCoreArgs{CoreConInfo: connInfo})
	respBody, err := c.call(ctx, constants.OpOpenCore, body)
	if err != nil {
		return nil, WrapError("open-core", err)
	}
	res, err := rpc.UnmarshalOpenCoreResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return nil, WrapError("open-core", err)
	}
	if res.Ret != wire.ReturnOK {
		return nil, c.serverReportedError("open-core", 0)
	}

	db := coredb.New(res.CoreUID, conv)
	if err := c.populateCoreDB(ctx, res.CoreUID, db); err != nil {
		closeBody := rpc.MarshalCloseCoreArgs(rpc.CloseCoreArgs{CoreUID: res.CoreUID})
		if respBody, cerr := c.call(ctx, constants.OpCloseCore, closeBody); cerr == nil {
			_, _ = rpc.UnmarshalCloseCoreResult(respBody)
		}
		return nil, WrapError("open-core", err)
	}

	ch := &CoreHandle{ID: uuid.New(), UID: res.CoreUID, ConnInfo: res.CoreConInfo, DB: db}
	c.cores[ch.UID] = ch
	setLastErrorOK()
	return ch, nil
}

// CloseCore implements mcd_close_core_f. A power-down event from the
// transport means the target is already gone: local state is freed and
// the call reports success, so teardown paths complete without a live
// server.
func (c *Client) CloseCore(ctx context.Context, ch *CoreHandle) error {
	if _, ok := c.cores[ch.UID]; !ok {
		setLastErrorStatic(CodeInvalidParameter)
		return NewError("close-core", CodeInvalidParameter, "unrecognized core handle")
	}
	body := rpc.MarshalCloseCoreArgs(rpc.CloseCoreArgs{CoreUID: ch.UID})
	respBody, err := c.call(ctx, constants.OpCloseCore, body)
	if err != nil {
		if errors.Is(err, transport.ErrPowerDown) || c.powerDown {
			delete(c.cores, ch.UID)
			delete(c.trigInfoCache, ch.UID)
			setLastErrorOK()
			return nil
		}
		return WrapError("close-core", err)
	}
	res, err := rpc.UnmarshalCloseCoreResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return WrapError("close-core", err)
	}
	if res.Ret != wire.ReturnOK {
		return c.serverReportedError("close-core", ch.UID)
	}
	delete(c.cores, ch.UID)
	delete(c.trigInfoCache, ch.UID)
	setLastErrorOK()
	return nil
}

// QryErrorInfo implements mcd_qry_error_info_f. If the last-error slot
// holds a local record, that record is returned without touching the
// wire; only the ask-server sentinel triggers a qry-error-info RPC
// (scoped to the sentinel's core when it recorded one). The sentinel is
// left in place either way. Pass a nil ch to take the scope from the
// sentinel itself.
func (c *Client) QryErrorInfo(ctx context.Context, ch *CoreHandle) (wire.ErrorInfo, error) {
	coreUID, hasCore, askServer := lastErrorIsAskServer()
	if !askServer {
		code, msg := LastError()
		status := wire.ReturnOK
		if code != CodeOK {
			status = wire.ReturnError
		}
		return wire.ErrorInfo{ReturnStatus: status, Description: msg}, nil
	}
	if ch != nil {
		hasCore, coreUID = true, ch.UID
	}
	body := rpc.MarshalQryErrorInfoArgs(rpc.QryErrorInfoArgs{HasCoreUID: hasCore, CoreUID: coreUID})
	respBody, err := c.call(ctx, constants.OpQryErrorInfo, body)
	if err != nil {
		return wire.ErrorInfo{}, WrapError("qry-error-info", err)
	}
	res, err := rpc.UnmarshalQryErrorInfoResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return wire.ErrorInfo{}, WrapError("qry-error-info", err)
	}
	// the sentinel stays in place: a second query must still ask the
	// server rather than report a stale local OK
	return res.ErrorInfo, nil
}

// QryDeviceDescription implements mcd_qry_device_description_f.
func (c *Client) QryDeviceDescription(ctx context.Context, coreUID, urlLenMax uint32) (string, error) {
	body := rpc.MarshalQryDeviceDescriptionArgs(rpc.QryDeviceDescriptionArgs{CoreUID: coreUID, URLLenMax: urlLenMax})
	respBody, err := c.call(ctx, constants.OpQryDeviceDescription, body)
	if err != nil {
		return "", WrapError("qry-device-description", err)
	}
	res, err := rpc.UnmarshalQryDeviceDescriptionResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return "", WrapError("qry-device-description", err)
	}
	if res.Ret != wire.ReturnOK {
		return "", c.serverReportedError("qry-device-description", coreUID)
	}
	setLastErrorOK()
	return res.URL, nil
}

// QryMaxPayloadSize implements mcd_qry_max_payload_size_f.
func (c *Client) QryMaxPayloadSize(ctx context.Context, coreUID uint32) (uint32, error) {
	body := rpc.MarshalQryMaxPayloadSizeArgs(rpc.QryMaxPayloadSizeArgs{CoreUID: coreUID})
	respBody, err := c.call(ctx, constants.OpQryMaxPayloadSize, body)
	if err != nil {
		return 0, WrapError("qry-max-payload-size", err)
	}
	res, err := rpc.UnmarshalQryMaxPayloadSizeResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, WrapError("qry-max-payload-size", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, c.serverReportedError("qry-max-payload-size", coreUID)
	}
	setLastErrorOK()
	return res.MaxPayloadSize, nil
}

// QryInputHandle implements mcd_qry_input_handle_f.
func (c *Client) QryInputHandle(ctx context.Context, coreUID uint32) (uint32, error) {
	body := rpc.MarshalQryInputHandleArgs(rpc.QryInputHandleArgs{CoreUID: coreUID})
	respBody, err := c.call(ctx, constants.OpQryInputHandle, body)
	if err != nil {
		return 0, WrapError("qry-input-handle", err)
	}
	res, err := rpc.UnmarshalQryInputHandleResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, WrapError("qry-input-handle", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, c.serverReportedError("qry-input-handle", coreUID)
	}
	setLastErrorOK()
	return res.Handle, nil
}
