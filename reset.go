package mcd

import (
	"context"

	"github.com/lauterbach-mcd/mcd-client/internal/constants"
	"github.com/lauterbach-mcd/mcd-client/internal/rpc"
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

// QryRstClasses implements mcd_qry_rst_classes_f.
func (c *Client) QryRstClasses(ctx context.Context, coreUID uint32) (uint32, error) {
	body := rpc.MarshalQryRstClassesArgs(rpc.QryRstClassesArgs{CoreUID: coreUID})
	respBody, err := c.call(ctx, constants.OpQryRstClasses, body)
	if err != nil {
		return 0, WrapError("qry-rst-classes", err)
	}
	res, err := rpc.UnmarshalQryRstClassesResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, WrapError("qry-rst-classes", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, c.serverReportedError("qry-rst-classes", coreUID)
	}
	setLastErrorOK()
	return res.RstClassMask, nil
}

// QryRstClassInfo implements mcd_qry_rst_class_info_f.
func (c *Client) QryRstClassInfo(ctx context.Context, coreUID uint32, rstClass uint8) (string, error) {
	body := rpc.MarshalQryRstClassInfoArgs(rpc.QryRstClassInfoArgs{CoreUID: coreUID, RstClass: rstClass})
	respBody, err := c.call(ctx, constants.OpQryRstClassInfo, body)
	if err != nil {
		return "", WrapError("qry-rst-class-info", err)
	}
	res, err := rpc.UnmarshalQryRstClassInfoResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return "", WrapError("qry-rst-class-info", err)
	}
	if res.Ret != wire.ReturnOK {
		return "", c.serverReportedError("qry-rst-class-info", coreUID)
	}
	setLastErrorOK()
	return res.Name, nil
}

// Rst implements mcd_rst_f. The class mask is passed through as given;
// the server is the authority on which reset classes exist.
func (c *Client) Rst(ctx context.Context, coreUID, rstClassMask uint32, rstAndHalt bool) error {
	body := rpc.MarshalRstArgs(rpc.RstArgs{CoreUID: coreUID, RstClassMask: rstClassMask, RstAndHalt: rstAndHalt})
	respBody, err := c.call(ctx, constants.OpRst, body)
	if err != nil {
		return WrapError("rst", err)
	}
	res, err := rpc.UnmarshalRstResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return WrapError("rst", err)
	}
	if res.Ret != wire.ReturnOK {
		return c.serverReportedError("rst", coreUID)
	}
	setLastErrorOK()
	return nil
}
