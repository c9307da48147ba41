package rpc

import (
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

// --- initialize (opcode 1) ---
//
// initialize is the one façade call that never reaches the wire; its
// Args/Result types still exist here because they are part of the RPC
// type model and the JSON transport's
// request/reply shape for compatibility with other language bindings
// that do send it.

type InitializeArgs struct {
	VersionMajor uint16 `json:"version-major"`
	VersionMinor uint16 `json:"version-minor"`
}

type ImplVersionInfo struct {
	VersionMajor uint16 `json:"version-major"`
	VersionMinor uint16 `json:"version-minor"`
	Vendor       string `json:"vendor"`
}

const implVendorWidth = 64

type InitializeResult struct {
	Ret      wire.ReturnStatus `json:"ret"`
	ImplInfo ImplVersionInfo   `json:"impl-info"`
}

func MarshalInitializeArgs(a InitializeArgs) []byte {
	w := wire.NewWriter(4)
	w.PutU16(a.VersionMajor)
	w.PutU16(a.VersionMinor)
	return w.Bytes()
}

func UnmarshalInitializeResult(body []byte) (InitializeResult, error) {
	var res InitializeResult
	err := unmarshalFrame("initialize", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.ImplInfo.VersionMajor, err = r.GetU16(); err != nil {
			return err
		}
		if res.ImplInfo.VersionMinor, err = r.GetU16(); err != nil {
			return err
		}
		res.ImplInfo.Vendor, err = r.GetFixedString(implVendorWidth)
		return err
	})
	return res, err
}

// --- qry-servers (opcode 3) ---

type QryServersArgs struct {
	Host       string `json:"host"`
	Running    bool   `json:"running"`
	StartIndex uint32 `json:"start-index"`
	NumServers uint32 `json:"num-servers"`
}

const qryServersHostWidth = 64

type QryServersResult struct {
	Ret        wire.ReturnStatus `json:"ret"`
	NumServers uint32            `json:"num-servers"`
	Servers    []wire.ServerInfo `json:"server-info,omitempty"`
}

func MarshalQryServersArgs(a QryServersArgs) []byte {
	w := wire.NewWriter(64)
	w.PutFixedString(a.Host, qryServersHostWidth)
	w.PutBool(a.Running)
	w.PutU32(a.StartIndex)
	w.PutU32(a.NumServers)
	return w.Bytes()
}

func UnmarshalQryServersResult(body []byte) (QryServersResult, error) {
	var res QryServersResult
	err := unmarshalFrame("qry-servers", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.NumServers, err = r.GetU32(); err != nil {
			return err
		}
		n, err := r.GetU32()
		if err != nil {
			return err
		}
		if present(res.Ret) && n > 0 {
			res.Servers = make([]wire.ServerInfo, n)
			for i := range res.Servers {
				if res.Servers[i], err = wire.UnmarshalServerInfo(r); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return res, err
}

// --- open-server (opcode 4) ---

type OpenServerArgs struct {
	SystemKey    string `json:"system-key"`
	ConfigString string `json:"config-string"`
}

const (
	openServerSystemKeyWidth    = 32
	openServerConfigStringWidth = 256
)

type OpenServerResult struct {
	Ret          wire.ReturnStatus `json:"ret"`
	ServerUID    uint32            `json:"server-uid"`
	Host         string            `json:"host,omitempty"`
	ConfigString string            `json:"config-string,omitempty"`
}

func MarshalOpenServerArgs(a OpenServerArgs) []byte {
	w := wire.NewWriter(320)
	w.PutFixedString(a.SystemKey, openServerSystemKeyWidth)
	w.PutFixedString(a.ConfigString, openServerConfigStringWidth)
	return w.Bytes()
}

func UnmarshalOpenServerResult(body []byte) (OpenServerResult, error) {
	var res OpenServerResult
	err := unmarshalFrame("open-server", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.ServerUID, err = r.GetU32(); err != nil {
			return err
		}
		if present(res.Ret) {
			if res.Host, err = r.GetFixedString(64); err != nil {
				return err
			}
			if res.ConfigString, err = r.GetFixedString(openServerConfigStringWidth); err != nil {
				return err
			}
		}
		return nil
	})
	return res, err
}

// --- close-server (opcode 5) ---

type CloseServerArgs struct {
	ServerUID uint32 `json:"server-uid"`
}

type CloseServerResult struct {
	Ret wire.ReturnStatus `json:"ret"`
}

func MarshalCloseServerArgs(a CloseServerArgs) []byte {
	w := wire.NewWriter(4)
	w.PutU32(a.ServerUID)
	return w.Bytes()
}

func UnmarshalCloseServerResult(body []byte) (CloseServerResult, error) {
	var res CloseServerResult
	err := unmarshalFrame("close-server", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		res.Ret = wire.ReturnStatus(v)
		return err
	})
	return res, err
}

// --- set-server-config (opcode 6) ---

type SetServerConfigArgs struct {
	ServerUID    uint32 `json:"server-uid"`
	ConfigString string `json:"config-string"`
}

type SetServerConfigResult struct {
	Ret wire.ReturnStatus `json:"ret"`
}

func MarshalSetServerConfigArgs(a SetServerConfigArgs) []byte {
	w := wire.NewWriter(260)
	w.PutU32(a.ServerUID)
	w.PutFixedString(a.ConfigString, openServerConfigStringWidth)
	return w.Bytes()
}

func UnmarshalSetServerConfigResult(body []byte) (SetServerConfigResult, error) {
	var res SetServerConfigResult
	err := unmarshalFrame("set-server-config", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		res.Ret = wire.ReturnStatus(v)
		return err
	})
	return res, err
}

// --- qry-server-config (opcode 7) ---

type QryServerConfigArgs struct {
	ServerUID uint32 `json:"server-uid"`
	MaxLen    uint32 `json:"max-len"`
}

type QryServerConfigResult struct {
	Ret          wire.ReturnStatus `json:"ret"`
	MaxLen       uint32            `json:"max-len"`
	ConfigString string            `json:"config-string,omitempty"`
}

func MarshalQryServerConfigArgs(a QryServerConfigArgs) []byte {
	w := wire.NewWriter(8)
	w.PutU32(a.ServerUID)
	w.PutU32(a.MaxLen)
	return w.Bytes()
}

func UnmarshalQryServerConfigResult(body []byte) (QryServerConfigResult, error) {
	var res QryServerConfigResult
	err := unmarshalFrame("qry-server-config", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.MaxLen, err = r.GetU32(); err != nil {
			return err
		}
		if present(res.Ret) {
			if res.ConfigString, err = r.GetFixedString(openServerConfigStringWidth); err != nil {
				return err
			}
		}
		return nil
	})
	return res, err
}
