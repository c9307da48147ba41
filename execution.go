package mcd

import (
	"context"

	"github.com/lauterbach-mcd/mcd-client/internal/constants"
	"github.com/lauterbach-mcd/mcd-client/internal/rpc"
	"github.com/lauterbach-mcd/mcd-client/internal/wire"
)

// Run implements mcd_run_f.
func (c *Client) Run(ctx context.Context, coreUID uint32, global bool) error {
	body := rpc.MarshalRunArgs(rpc.RunArgs{CoreUID: coreUID, Global: global})
	respBody, err := c.call(ctx, constants.OpRun, body)
	if err != nil {
		return WrapError("run", err)
	}
	res, err := rpc.UnmarshalRunResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return WrapError("run", err)
	}
	if res.Ret != wire.ReturnOK {
		return c.serverReportedError("run", coreUID)
	}
	setLastErrorOK()
	return nil
}

// Stop implements mcd_stop_f. global is passed through exactly as the
// caller supplied it; a fixed true here would silently stop every
// core in the system on a request to stop just one.
func (c *Client) Stop(ctx context.Context, coreUID uint32, global bool) error {
	body := rpc.MarshalStopArgs(rpc.StopArgs{CoreUID: coreUID, Global: global})
	respBody, err := c.call(ctx, constants.OpStop, body)
	if err != nil {
		return WrapError("stop", err)
	}
	res, err := rpc.UnmarshalStopResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return WrapError("stop", err)
	}
	if res.Ret != wire.ReturnOK {
		return c.serverReportedError("stop", coreUID)
	}
	setLastErrorOK()
	return nil
}

// RunUntil implements mcd_run_until_f.
func (c *Client) RunUntil(ctx context.Context, coreUID uint32, global, absTime bool, t uint64) error {
	body := rpc.MarshalRunUntilArgs(rpc.RunUntilArgs{CoreUID: coreUID, Global: global, AbsTime: absTime, Time: t})
	respBody, err := c.call(ctx, constants.OpRunUntil, body)
	if err != nil {
		return WrapError("run-until", err)
	}
	res, err := rpc.UnmarshalRunUntilResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return WrapError("run-until", err)
	}
	if res.Ret != wire.ReturnOK {
		return c.serverReportedError("run-until", coreUID)
	}
	setLastErrorOK()
	return nil
}

// QryCurrentTime implements mcd_qry_current_time_f.
func (c *Client) QryCurrentTime(ctx context.Context, coreUID uint32) (uint64, error) {
	body := rpc.MarshalQryCurrentTimeArgs(rpc.QryCurrentTimeArgs{CoreUID: coreUID})
	respBody, err := c.call(ctx, constants.OpQryCurrentTime, body)
	if err != nil {
		return 0, WrapError("qry-current-time", err)
	}
	res, err := rpc.UnmarshalQryCurrentTimeResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return 0, WrapError("qry-current-time", err)
	}
	if res.Ret != wire.ReturnOK {
		return 0, c.serverReportedError("qry-current-time", coreUID)
	}
	setLastErrorOK()
	return res.Time, nil
}

// Step implements mcd_step_f.
func (c *Client) Step(ctx context.Context, coreUID uint32, global bool, stepType, numSteps uint32) error {
	body := rpc.MarshalStepArgs(rpc.StepArgs{CoreUID: coreUID, Global: global, StepType: stepType, NumSteps: numSteps})
	respBody, err := c.call(ctx, constants.OpStep, body)
	if err != nil {
		return WrapError("step", err)
	}
	res, err := rpc.UnmarshalStepResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return WrapError("step", err)
	}
	if res.Ret != wire.ReturnOK {
		return c.serverReportedError("step", coreUID)
	}
	setLastErrorOK()
	return nil
}

// SetGlobal implements mcd_set_global_f.
func (c *Client) SetGlobal(ctx context.Context, coreUID uint32, enable bool) error {
	body := rpc.MarshalSetGlobalArgs(rpc.SetGlobalArgs{CoreUID: coreUID, Enable: enable})
	respBody, err := c.call(ctx, constants.OpSetGlobal, body)
	if err != nil {
		return WrapError("set-global", err)
	}
	res, err := rpc.UnmarshalSetGlobalResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return WrapError("set-global", err)
	}
	if res.Ret != wire.ReturnOK {
		return c.serverReportedError("set-global", coreUID)
	}
	setLastErrorOK()
	return nil
}

// QryState implements mcd_qry_state_f.
func (c *Client) QryState(ctx context.Context, coreUID uint32) (wire.CoreState, error) {
	body := rpc.MarshalQryStateArgs(rpc.QryStateArgs{CoreUID: coreUID})
	respBody, err := c.call(ctx, constants.OpQryState, body)
	if err != nil {
		return wire.CoreState{}, WrapError("qry-state", err)
	}
	res, err := rpc.UnmarshalQryStateResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return wire.CoreState{}, WrapError("qry-state", err)
	}
	if res.Ret != wire.ReturnOK {
		return wire.CoreState{}, c.serverReportedError("qry-state", coreUID)
	}
	setLastErrorOK()
	return res.State, nil
}

// ExecuteCommand implements mcd_execute_command_f.
func (c *Client) ExecuteCommand(ctx context.Context, coreUID uint32, command string, resultLenMax uint32) (string, error) {
	body := rpc.MarshalExecuteCommandArgs(rpc.ExecuteCommandArgs{CoreUID: coreUID, Command: command, ResultLenMax: resultLenMax})
	respBody, err := c.call(ctx, constants.OpExecuteCommand, body)
	if err != nil {
		return "", WrapError("execute-command", err)
	}
	res, err := rpc.UnmarshalExecuteCommandResult(respBody)
	if err != nil {
		setLastErrorStatic(CodeUnmarshal)
		return "", WrapError("execute-command", err)
	}
	if res.Ret != wire.ReturnOK {
		return "", c.serverReportedError("execute-command", coreUID)
	}
	setLastErrorOK()
	return res.Result, nil
}
