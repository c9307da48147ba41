package transport

import (
	"syscall"
)

// reuseAddrControl sets SO_REUSEADDR on the dialing socket before
// connect(2), so a quick reconnect doesn't trip over a lingering
// TIME_WAIT binding.
func reuseAddrControl(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
