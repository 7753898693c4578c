package wire

import (
	"net"
	"os"
	"path/filepath"

	"github.com/bnema/wlcore/internal/logger"
)

// EventLoop is the slice of spine.Loop the listener needs. Kept as a
// narrow local interface so this package stays a leaf (spine already
// depends on logger; wire must not depend on spine).
type EventLoop interface {
	RegisterReadable(fd int, label string, callback func()) error
	UnregisterReadable(fd int)
}

// ClientHandler reacts to connection lifecycle events. ClientReadable is
// invoked once per spine wakeup on the connection's fd; implementations
// drain as many whole messages as ReadMessage will yield without
// blocking indefinitely on a partial one.
type ClientHandler interface {
	ClientConnected(c *Conn)
	ClientReadable(c *Conn)
	ClientClosed(c *Conn)
}

// Listener accepts Wayland client connections on a Unix domain socket and
// drives them from the Event Spine. It is grounded on the teacher's
// internal/ipc.SocketServer (socket path setup, 0600 permissions, socket
// file cleanup on Stop) but replaces its protobuf length-prefix framing
// and goroutine-per-connection accept loop with wire.Conn framing and
// spine.Loop.RegisterReadable, since compositor state may only ever be
// touched from the single loop thread (spec.md §5).
type Listener struct {
	loop       EventLoop
	handler    ClientHandler
	socketPath string
	ln         *net.UnixListener
	lnFD       int
	conns      map[int]*Conn
}

// NewListener prepares a listener bound to socketPath once Start is
// called. Every accepted connection is reported to handler.
func NewListener(loop EventLoop, handler ClientHandler, socketPath string) *Listener {
	return &Listener{
		loop:       loop,
		handler:    handler,
		socketPath: socketPath,
		conns:      make(map[int]*Conn),
	}
}

// Start removes any stale socket file, binds the Unix listener, and
// registers its fd as readable so acceptOne runs on the spine thread for
// every pending connection.
func (l *Listener) Start() error {
	if err := os.RemoveAll(l.socketPath); err != nil {
		return wrapf(err, "remove existing socket")
	}
	if err := os.MkdirAll(filepath.Dir(l.socketPath), 0755); err != nil {
		return wrapf(err, "create socket directory")
	}

	addr, err := net.ResolveUnixAddr("unix", l.socketPath)
	if err != nil {
		return wrapf(err, "resolve socket address")
	}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		return wrapf(err, "listen")
	}
	if err := os.Chmod(l.socketPath, 0600); err != nil {
		ln.Close()
		return wrapf(err, "chmod socket")
	}

	raw, err := ln.SyscallConn()
	if err != nil {
		ln.Close()
		return wrapf(err, "listener syscall conn")
	}
	var lnFD int
	if ctlErr := raw.Control(func(fd uintptr) { lnFD = int(fd) }); ctlErr != nil {
		ln.Close()
		return wrapf(ctlErr, "listener fd")
	}

	l.ln = ln
	l.lnFD = lnFD
	if err := l.loop.RegisterReadable(lnFD, "wire.accept", l.acceptOne); err != nil {
		ln.Close()
		return wrapf(err, "register listener fd")
	}

	logger.Infof("wire: listening at %s", l.socketPath)
	return nil
}

// acceptOne accepts exactly one pending connection per invocation; epoll
// re-fires if another is already queued, so a loop here is unnecessary
// and would risk starving other sources.
func (l *Listener) acceptOne() {
	uc, err := l.ln.AcceptUnix()
	if err != nil {
		logger.Errorf("wire: accept: %v", err)
		return
	}
	c := NewConn(uc)
	fd, err := c.FD()
	if err != nil {
		logger.Errorf("wire: connection fd: %v", err)
		c.Close()
		return
	}
	if err := l.loop.RegisterReadable(fd, "wire.client", func() { l.handler.ClientReadable(c) }); err != nil {
		logger.Errorf("wire: register client fd: %v", err)
		c.Close()
		return
	}
	l.conns[fd] = c
	l.handler.ClientConnected(c)
}

// Drop unregisters and closes a client connection; called by the handler
// once a protocol error (spec.md §3) or clean disconnect makes the
// connection unusable.
func (l *Listener) Drop(c *Conn) {
	fd, err := c.FD()
	if err == nil {
		l.loop.UnregisterReadable(fd)
		delete(l.conns, fd)
	}
	c.Close()
	l.handler.ClientClosed(c)
}

// Stop tears down the listener, every live connection, and the socket
// file.
func (l *Listener) Stop() {
	if l.ln != nil {
		l.loop.UnregisterReadable(l.lnFD)
		l.ln.Close()
		l.ln = nil
	}
	for fd, c := range l.conns {
		l.loop.UnregisterReadable(fd)
		c.Close()
		l.handler.ClientClosed(c)
	}
	l.conns = make(map[int]*Conn)
	os.RemoveAll(l.socketPath)
}

func wrapf(err error, what string) error {
	return &listenError{what: what, err: err}
}

type listenError struct {
	what string
	err  error
}

func (e *listenError) Error() string { return "wire: " + e.what + ": " + e.err.Error() }
func (e *listenError) Unwrap() error { return e.err }
