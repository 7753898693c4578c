package wire

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// Conn is one client's wire-protocol connection: a Unix domain socket
// that additionally carries file descriptors (buffers, keymaps) via
// SCM_RIGHTS ancillary data, framed the same length-prefixed way the
// teacher's internal/ipc socket layer frames its protobuf messages, but
// with the real two-word Wayland header instead of a raw uint32 length.
type Conn struct {
	uc  *net.UnixConn
	fd  int
	rx  []byte // unconsumed bytes read from the socket
	rfd []int  // unconsumed received file descriptors, FIFO
}

// NewConn wraps an accepted Unix connection.
func NewConn(uc *net.UnixConn) *Conn {
	return &Conn{uc: uc}
}

// FD returns the underlying socket file descriptor, for registration with
// the event spine's readable-fd set.
func (c *Conn) FD() (int, error) {
	raw, err := c.uc.SyscallConn()
	if err != nil {
		return 0, err
	}
	var fd int
	if err := raw.Control(func(f uintptr) { fd = int(f) }); err != nil {
		return 0, err
	}
	return fd, nil
}

// Close closes the connection.
func (c *Conn) Close() error { return c.uc.Close() }

const oobBufSize = 4 * 64 // room for a handful of fds

// fillBuffer performs exactly one non-blocking-style read, appending any
// payload bytes and any received fds to the connection's pending queues.
// Call it once per spine wakeup; ReadMessage then drains as many whole
// messages as are already buffered.
func (c *Conn) fillBuffer() error {
	buf := make([]byte, 4096)
	oob := make([]byte, oobBufSize)
	n, oobn, _, _, err := c.uc.ReadMsgUnix(buf, oob)
	if err != nil {
		return err
	}
	if n == 0 && oobn == 0 {
		return fmt.Errorf("wire: peer closed connection")
	}
	c.rx = append(c.rx, buf[:n]...)
	if oobn > 0 {
		scms, err := unix.ParseSocketControlMessage(oob[:oobn])
		if err == nil {
			for _, scm := range scms {
				fds, err := unix.ParseUnixRights(&scm)
				if err == nil {
					c.rfd = append(c.rfd, fds...)
				}
			}
		}
	}
	return nil
}

// ReadMessage reads the next complete wire message, performing socket
// reads as needed. It returns the header and the argument-payload reader;
// the fd slice is always nil. Received fds stay queued on the connection
// in arrival order and are taken with PopFD by the handler whose opcode
// carries one.
func (c *Conn) ReadMessage() (Header, *Reader, []int, error) {
	for len(c.rx) < HeaderLen {
		if err := c.fillBuffer(); err != nil {
			return Header{}, nil, nil, err
		}
	}
	h, err := DecodeHeader(c.rx)
	if err != nil {
		return Header{}, nil, nil, err
	}
	for len(c.rx) < int(h.Size) {
		if err := c.fillBuffer(); err != nil {
			return Header{}, nil, nil, err
		}
	}
	body := c.rx[HeaderLen:h.Size]
	c.rx = c.rx[h.Size:]
	return h, NewReader(body), nil, nil
}

// PopFD removes and returns the oldest queued received fd. Returns -1 if
// none is available.
func (c *Conn) PopFD() int {
	if len(c.rfd) == 0 {
		return -1
	}
	fd := c.rfd[0]
	c.rfd = c.rfd[1:]
	return fd
}

// WriteMessage sends a fully-built message (see Writer.Finish), with an
// optional set of file descriptors to attach via SCM_RIGHTS.
func (c *Conn) WriteMessage(msg []byte, fds ...int) error {
	if len(fds) == 0 {
		_, err := c.uc.Write(msg)
		return err
	}
	oob := unix.UnixRights(fds...)
	_, _, err := c.uc.WriteMsgUnix(msg, oob, nil)
	return err
}
