package mcd

import (
	"context"

	"github.com/google/uuid"

	"github.com/lauterbach-mcd/mcd-client/internal/constants"
	"github.com/lauterbach-mcd/mcd-client/internal/rpc"
	"github.com/lauterbach-mcd/mcd-client/internal/transport"
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

// QryServers enumerates servers reachable on host. If the client
// already has a server open, the query rides that connection;
// otherwise a transient connection is dialed for the duration of the
// call. count==0 reports the total only.
func (c *Client) QryServers(ctx context.Context, host string, running bool, startIndex, count uint32) (uint32, []wire.ServerInfo, error) {
	tr := c.tr
	if tr == nil {
		tr = c.newTransport(transport.Config{Host: host, Port: c.cfg.Port})
		if err := tr.Connect(ctx); err != nil {
			setLastErrorCustom(CodeConnection, err.Error())
			return 0, nil, WrapError("qry-servers", err)
		}
		defer tr.Close()
	}

	body := rpc.MarshalQryServersArgs(rpc.QryServersArgs{Host: host, Running: running, StartIndex: startIndex, NumServers: count})
	respBody, err := c.callOn(ctx, tr, constants.OpQryServers, body)
	if err != nil {
		return 0, nil, WrapError("qry-servers", err)
	}
	res, err := rpc.UnmarshalQryServersResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, nil, WrapError("qry-servers", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, nil, c.serverReportedError("qry-servers", 0)
	}
	setLastErrorOK()
	return res.NumServers, res.Servers, nil
}

// OpenServer implements mcd_open_server_f: dials (or reuses) the
// client's transport and establishes the one server session the
// façade tracks.
func (c *Client) OpenServer(ctx context.Context, systemKey, configString string) (*ServerHandle, error) {
	if c.tr == nil {
		c.tr = c.newTransport(transport.Config{Host: c.cfg.Host, Port: c.cfg.Port})
	}
	if err := c.tr.Connect(ctx); err != nil {
		setLastErrorCustom(CodeConnection, err.Error())
		return nil, WrapError("open-server", err)
	}

	body := rpc.MarshalOpenServerArgs(rpc.OpenServerArgs{SystemKey: systemKey, ConfigString: configString})
	respBody, err := c.call(ctx, constants.OpOpenServer, body)
	if err != nil {
		return nil, WrapError("open-server", err)
	}
	res, err := rpc.UnmarshalOpenServerResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return nil, WrapError("open-server", err)
	}
	if res.Ret != wire.ReturnOK {
		return nil, c.serverReportedError("open-server", 0)
	}

	sh := &ServerHandle{ID: uuid.New(), UID: res.ServerUID, Host: res.Host, Config: res.ConfigString}
	c.server = sh
	c.powerDown = false
	setLastErrorOK()
	return sh, nil
}

// CloseServer implements mcd_close_server_f. A handle not matching the
// client's current session is CodeUnknownServer, never sent to the
// wire.
func (c *Client) CloseServer(ctx context.Context, sh *ServerHandle) error {
	if c.server == nil || sh == nil || sh.UID != c.server.UID {
		setLastErrorStatic(CodeUnknownServer)
		return NewError("close-server", CodeUnknownServer, "unrecognized server handle")
	}

	body := rpc.MarshalCloseServerArgs(rpc.CloseServerArgs{ServerUID: sh.UID})
	respBody, err := c.call(ctx, constants.OpCloseServer, body)
	if err != nil {
		return WrapError("close-server", err)
	}
	res, err := rpc.UnmarshalCloseServerResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return WrapError("close-server", err)
	}
	if res.Ret != wire.ReturnOK {
		return c.serverReportedError("close-server", 0)
	}

	if c.tr != nil {
		_ = c.tr.Close()
		c.tr = nil
	}
	c.server = nil
	c.cores = make(map[uint32]*CoreHandle)
	setLastErrorOK()
	return nil
}

// SetServerConfig implements mcd_set_server_config_f.
func (c *Client) SetServerConfig(ctx context.Context, sh *ServerHandle, configString string) error {
	if err := c.requireServer("set-server-config"); err != nil {
		return err
	}
	body := rpc.MarshalSetServerConfigArgs(rpc.SetServerConfigArgs{ServerUID: sh.UID, ConfigString: configString})
	respBody, err := c.call(ctx, constants.OpSetServerConfig, body)
	if err != nil {
		return WrapError("set-server-config", err)
	}
	res, err := rpc.UnmarshalSetServerConfigResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return WrapError("set-server-config", err)
	}
	if res.Ret != wire.ReturnOK {
		return c.serverReportedError("set-server-config", 0)
	}
	setLastErrorOK()
	return nil
}

// QryServerConfig implements mcd_qry_server_config_f.
func (c *Client) QryServerConfig(ctx context.Context, sh *ServerHandle, maxLen uint32) (string, error) {
	if err := c.requireServer("qry-server-config"); err != nil {
		return "", err
	}
	body := rpc.MarshalQryServerConfigArgs(rpc.QryServerConfigArgs{ServerUID: sh.UID, MaxLen: maxLen})
	respBody, err := c.call(ctx, constants.OpQryServerConfig, body)
	if err != nil {
		return "", WrapError("qry-server-config", err)
	}
	res, err := rpc.UnmarshalQryServerConfigResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return "", WrapError("qry-server-config", err)
	}
	if res.Ret != wire.ReturnOK {
		return "", c.serverReportedError("qry-server-config", 0)
	}
	setLastErrorOK()
	return res.ConfigString, nil
}
