package rpc

import "github.com/lauterbach-mcd/mcd-client/internal/wire"

// --- qry-systems (opcode 8) ---

type QrySystemsArgs struct {
	StartIndex uint32 `json:"start-index"`
	NumSystems uint32 `json:"num-systems"`
}

type QrySystemsResult struct {
	Ret        wire.ReturnStatus `json:"ret"`
	NumSystems uint32            `json:"num-systems"`
	Systems    []wire.ConnInfo   `json:"system-con-info,omitempty"`
}

func MarshalQrySystemsArgs(a QrySystemsArgs) []byte {
	w := wire.NewWriter(8)
	w.PutU32(a.StartIndex)
	w.PutU32(a.NumSystems)
	return w.Bytes()
}

func UnmarshalQrySystemsResult(body []byte) (QrySystemsResult, error) {
	var res QrySystemsResult
	err := unmarshalFrame("qry-systems", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.NumSystems, err = r.GetU32(); err != nil {
			return err
		}
		n, err := r.GetU32()
		if err != nil {
			return err
		}
		if present(res.Ret) && n > 0 {
			res.Systems = make([]wire.ConnInfo, n)
			for i := range res.Systems {
				if res.Systems[i], err = wire.UnmarshalConnInfo(r); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return res, err
}

// --- qry-devices (opcode 9) ---

type QryDevicesArgs struct {
	SystemConInfo wire.ConnInfo `json:"system-con-info"`
	StartIndex    uint32        `json:"start-index"`
	NumDevices    uint32        `json:"num-devices"`
}

type QryDevicesResult struct {
	Ret        wire.ReturnStatus `json:"ret"`
	NumDevices uint32            `json:"num-devices"`
	Devices    []wire.ConnInfo   `json:"device-con-info,omitempty"`
}

func MarshalQryDevicesArgs(a QryDevicesArgs) []byte {
	w := wire.NewWriter(200)
	wire.MarshalConnInfo(w, a.SystemConInfo)
	w.PutU32(a.StartIndex)
	w.PutU32(a.NumDevices)
	return w.Bytes()
}

func UnmarshalQryDevicesResult(body []byte) (QryDevicesResult, error) {
	var res QryDevicesResult
	err := unmarshalFrame("qry-devices", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.NumDevices, err = r.GetU32(); err != nil {
			return err
		}
		n, err := r.GetU32()
		if err != nil {
			return err
		}
		if present(res.Ret) && n > 0 {
			res.Devices = make([]wire.ConnInfo, n)
			for i := range res.Devices {
				if res.Devices[i], err = wire.UnmarshalConnInfo(r); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return res, err
}

// --- qry-cores (opcode 10) ---

type QryCoresArgs struct {
	ConnectionInfo wire.ConnInfo `json:"connection-info"`
	StartIndex     uint32        `json:"start-index"`
	NumCores       uint32        `json:"num-cores"`
}

type QryCoresResult struct {
	Ret      wire.ReturnStatus `json:"ret"`
	NumCores uint32            `json:"num-cores"`
	Cores    []wire.ConnInfo   `json:"core-con-info,omitempty"`
}

func MarshalQryCoresArgs(a QryCoresArgs) []byte {
	w := wire.NewWriter(200)
	wire.MarshalConnInfo(w, a.ConnectionInfo)
	w.PutU32(a.StartIndex)
	w.PutU32(a.NumCores)
	return w.Bytes()
}

func UnmarshalQryCoresResult(body []byte) (QryCoresResult, error) {
	var res QryCoresResult
	err := unmarshalFrame("qry-cores", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.NumCores, err = r.GetU32(); err != nil {
			return err
		}
		n, err := r.GetU32()
		if err != nil {
			return err
		}
		if present(res.Ret) && n > 0 {
			res.Cores = make([]wire.ConnInfo, n)
			for i := range res.Cores {
				if res.Cores[i], err = wire.UnmarshalConnInfo(r); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return res, err
}

// --- qry-core-modes (opcode 11) ---

type QryCoreModesArgs struct {
	CoreUID    uint32 `json:"core-uid"`
	StartIndex uint32 `json:"start-index"`
	NumModes   uint32 `json:"num-modes"`
}

type QryCoreModesResult struct {
	Ret       wire.ReturnStatus   `json:"ret"`
	CoreUID   uint32              `json:"core-uid"`
	NumModes  uint32              `json:"num-modes"`
	CoreModes []wire.CoreModeInfo `json:"core-mode-info,omitempty"`
}

func MarshalQryCoreModesArgs(a QryCoreModesArgs) []byte {
	w := wire.NewWriter(12)
	w.PutU32(a.CoreUID)
	w.PutU32(a.StartIndex)
	w.PutU32(a.NumModes)
	return w.Bytes()
}

func UnmarshalQryCoreModesResult(body []byte) (QryCoreModesResult, error) {
	var res QryCoreModesResult
	err := unmarshalFrame("qry-core-modes", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.CoreUID, err = r.GetU32(); err != nil {
			return err
		}
		if res.NumModes, err = r.GetU32(); err != nil {
			return err
		}
		n, err := r.GetU32()
		if err != nil {
			return err
		}
		if present(res.Ret) && n > 0 {
			res.CoreModes = make([]wire.CoreModeInfo, n)
			for i := range res.CoreModes {
				if res.CoreModes[i], err = wire.UnmarshalCoreModeInfo(r); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return res, err
}

// --- open-core (opcode 12) ---

type OpenCoreArgs struct {
	CoreConInfo wire.ConnInfo `json:"core-con-info"`
}

type OpenCoreResult struct {
	Ret         wire.ReturnStatus `json:"ret"`
	CoreUID     uint32            `json:"core-uid"`
	CoreConInfo wire.ConnInfo     `json:"core-con-info"`
}

func MarshalOpenCoreArgs(a OpenCoreArgs) []byte {
	w := wire.NewWriter(200)
	wire.MarshalConnInfo(w, a.CoreConInfo)
	return w.Bytes()
}

func UnmarshalOpenCoreResult(body []byte) (OpenCoreResult, error) {
	var res OpenCoreResult
	err := unmarshalFrame("open-core", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.CoreUID, err = r.GetU32(); err != nil {
			return err
		}
		if present(res.Ret) {
			if res.CoreConInfo, err = wire.UnmarshalConnInfo(r); err != nil {
				return err
			}
		}
		return nil
	})
	return res, err
}

// --- close-core (opcode 13) ---

type CloseCoreArgs struct {
	CoreUID uint32 `json:"core-uid"`
}

type CloseCoreResult struct {
	Ret wire.ReturnStatus `json:"ret"`
}

func MarshalCloseCoreArgs(a CloseCoreArgs) []byte {
	w := wire.NewWriter(4)
	w.PutU32(a.CoreUID)
	return w.Bytes()
}

func UnmarshalCloseCoreResult(body []byte) (CloseCoreResult, error) {
	var res CloseCoreResult
	err := unmarshalFrame("close-core", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		res.Ret = wire.ReturnStatus(v)
		return err
	})
	return res, err
}

// --- qry-error-info (opcode 14) ---

type QryErrorInfoArgs struct {
	HasCoreUID bool   `json:"has-core-uid"`
	CoreUID    uint32 `json:"core-uid"`
}

type QryErrorInfoResult struct {
	ErrorInfo wire.ErrorInfo `json:"error-info"`
}

func MarshalQryErrorInfoArgs(a QryErrorInfoArgs) []byte {
	w := wire.NewWriter(8)
	w.PutBool(a.HasCoreUID)
	w.PutU32(a.CoreUID)
	return w.Bytes()
}

func UnmarshalQryErrorInfoResult(body []byte) (QryErrorInfoResult, error) {
	var res QryErrorInfoResult
	err := unmarshalFrame("qry-error-info", body, func(r *wire.Reader) error {
		var err error
		res.ErrorInfo, err = wire.UnmarshalErrorInfo(r)
		return err
	})
	return res, err
}

// --- qry-device-description (opcode 15) ---

type QryDeviceDescriptionArgs struct {
	CoreUID   uint32 `json:"core-uid"`
	URLLenMax uint32 `json:"url-len-max"`
}

type QryDeviceDescriptionResult struct {
	Ret wire.ReturnStatus `json:"ret"`
	URL string            `json:"url,omitempty"`
}

const deviceDescriptionURLWidth = 256

func MarshalQryDeviceDescriptionArgs(a QryDeviceDescriptionArgs) []byte {
	w := wire.NewWriter(8)
	w.PutU32(a.CoreUID)
	w.PutU32(a.URLLenMax)
	return w.Bytes()
}

func UnmarshalQryDeviceDescriptionResult(body []byte) (QryDeviceDescriptionResult, error) {
	var res QryDeviceDescriptionResult
	err := unmarshalFrame("qry-device-description", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if present(res.Ret) {
			if res.URL, err = r.GetFixedString(deviceDescriptionURLWidth); err != nil {
				return err
			}
		}
		return nil
	})
	return res, err
}

// --- qry-max-payload-size (opcode 16) ---

type QryMaxPayloadSizeArgs struct {
	CoreUID uint32 `json:"core-uid"`
}

type QryMaxPayloadSizeResult struct {
	Ret            wire.ReturnStatus `json:"ret"`
	MaxPayloadSize uint32            `json:"max-payload-size"`
}

func MarshalQryMaxPayloadSizeArgs(a QryMaxPayloadSizeArgs) []byte {
	w := wire.NewWriter(4)
	w.PutU32(a.CoreUID)
	return w.Bytes()
}

func UnmarshalQryMaxPayloadSizeResult(body []byte) (QryMaxPayloadSizeResult, error) {
	var res QryMaxPayloadSizeResult
	err := unmarshalFrame("qry-max-payload-size", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.MaxPayloadSize, err = r.GetU32(); err != nil {
			return err
		}
		return nil
	})
	return res, err
}

// --- qry-input-handle (opcode 17) ---

type QryInputHandleArgs struct {
	CoreUID uint32 `json:"core-uid"`
}

type QryInputHandleResult struct {
	Ret    wire.ReturnStatus `json:"ret"`
	Handle uint32            `json:"input-handle"`
}

func MarshalQryInputHandleArgs(a QryInputHandleArgs) []byte {
	w := wire.NewWriter(4)
	w.PutU32(a.CoreUID)
	return w.Bytes()
}

func UnmarshalQryInputHandleResult(body []byte) (QryInputHandleResult, error) {
	var res QryInputHandleResult
	err := unmarshalFrame("qry-input-handle", body, func(r *wire.Reader) error {
		v, err := r.GetU32()
		if err != nil {
			return err
		}
		res.Ret = wire.ReturnStatus(v)
		if res.Handle, err = r.GetU32(); err != nil {
			return err
		}
		return nil
	})
	return res, err
}
