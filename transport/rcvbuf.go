package transport

import (
	"net"

	"golang.org/x/sys/unix"
)

// setRcvBuf raises the socket's SO_RCVBUF to n bytes (config rx_buf_bytes),
// so a burst of inbound datagrams does not overrun the kernel socket
// buffer while the loop is busy handling the previous one.
func setRcvBuf(conn *net.UDPConn, n int) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, n)
	}); err != nil {
		return err
	}
	return sockErr
}
