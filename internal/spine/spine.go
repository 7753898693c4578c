// Package spine implements the cooperative event loop that drives every
// other compositor component from a single thread: the wire-protocol
// socket, input device descriptors, timers, and cross-thread bridges to
// the auxiliary worlds (service-bus clients, audio, AI transport).
//
// The loop is built directly on epoll rather than a goroutine-per-source
// pattern: spec.md §5 requires that no component ever be entered from more
// than one thread, and a raw epoll_wait with a timer-derived timeout is
// the literal mechanism that guarantees it.
package spine

import (
	"fmt"
	"time"

	"github.com/bnema/wlcore/internal/logger"
	"golang.org/x/sys/unix"
)

// schedulingBudget is the soft per-callback time budget; exceeding it logs
// a scheduling offense (spec.md §4.1).
const schedulingBudget = 8 * time.Millisecond

// Loop is the Event Spine. All compositor state is only ever touched from
// inside a callback registered on a Loop, and only while that Loop's
// Run is executing on its owning goroutine.
type Loop struct {
	epfd     int
	wakeFD   int // eventfd used to interrupt EpollWait for posts/shutdown
	sources  map[int]*source
	timers   *timers
	posts    *postQueue
	shutdown bool
	log      *loggerAdapter
}

type source struct {
	fd       int
	callback func()
	label    string
}

// loggerAdapter exists only so tests can swap in a no-op logger without
// depending on the package-global logger state.
type loggerAdapter struct{}

func (loggerAdapter) warnf(format string, args ...any) { logger.Warnf(format, args...) }
func (loggerAdapter) errorf(format string, args ...any) { logger.Errorf(format, args...) }

// New creates an Event Spine. Each Loop owns its own raw epoll instance
// and wake eventfd, released by Close.
func New() (*Loop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("spine: epoll_create1: %w", err)
	}
	wakeFD, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("spine: eventfd: %w", err)
	}
	l := &Loop{
		epfd:    epfd,
		wakeFD:  wakeFD,
		sources: make(map[int]*source),
		timers:  newTimers(),
		posts:   newPostQueue(),
		log:     &loggerAdapter{},
	}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakeFD, &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakeFD)}); err != nil {
		unix.Close(epfd)
		unix.Close(wakeFD)
		return nil, fmt.Errorf("spine: register wake fd: %w", err)
	}
	return l, nil
}

// RegisterReadable arms fd for readability notification; callback runs on
// the loop thread whenever the kernel reports data available. label is
// used only in scheduling-offense log lines.
func (l *Loop) RegisterReadable(fd int, label string, callback func()) error {
	if _, exists := l.sources[fd]; exists {
		return fmt.Errorf("spine: fd %d already registered", fd)
	}
	ev := &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		return fmt.Errorf("spine: epoll_ctl add fd %d: %w", fd, err)
	}
	l.sources[fd] = &source{fd: fd, callback: callback, label: label}
	return nil
}

// UnregisterReadable removes fd from the readable set. It does not close
// the fd; the caller owns its lifetime.
func (l *Loop) UnregisterReadable(fd int) {
	if _, exists := l.sources[fd]; !exists {
		return
	}
	_ = unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	delete(l.sources, fd)
}

// RegisterTimer schedules callback to run once after d elapses.
func (l *Loop) RegisterTimer(d time.Duration, callback func()) TimerHandle {
	return l.timers.add(d, 0, callback)
}

// RegisterPeriodicTimer schedules callback to run once after d, then every
// period thereafter until canceled.
func (l *Loop) RegisterPeriodicTimer(d, period time.Duration, callback func()) TimerHandle {
	return l.timers.add(d, period, callback)
}

// CancelTimer cancels a previously-registered timer; a no-op if it has
// already fired (for one-shot timers) or was already canceled.
func (l *Loop) CancelTimer(handle TimerHandle) {
	l.timers.cancel(handle)
}

// PostFromOtherThread enqueues msg for delivery to handler on the loop
// thread. Safe to call from any goroutine. Posts from a single goroutine
// are delivered in the order they were posted; there is no ordering
// guarantee across distinct posting goroutines (spec.md §4.1).
func (l *Loop) PostFromOtherThread(msg any, handler func(any)) {
	l.posts.push(postedMessage{msg: msg, handler: handler})
	l.wake()
}

func (l *Loop) wake() {
	var buf [8]byte
	buf[7] = 1
	_, _ = unix.Write(l.wakeFD, buf[:])
}

func (l *Loop) drainWake() {
	var buf [8]byte
	for {
		_, err := unix.Read(l.wakeFD, buf[:])
		if err != nil {
			return
		}
	}
}

// RequestShutdown arms the shutdown flag and wakes the loop. The flag is
// checked only between loop iterations: Run returns after every callback
// dispatched in the current iteration (due timers, queued posts, ready
// fds) has finished, not directly after the callback that is running.
func (l *Loop) RequestShutdown() {
	l.shutdown = true
	l.wake()
}

// RunUntilShutdown drives the loop until RequestShutdown is called. Every
// callback runs to completion before the next iteration begins; nothing
// reenters a callback while another is executing.
func (l *Loop) RunUntilShutdown() error {
	events := make([]unix.EpollEvent, 32)
	for !l.shutdown {
		timeout := l.epollTimeoutMillis()
		n, err := unix.EpollWait(l.epfd, events, timeout)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("spine: epoll_wait: %w", err)
		}

		now := time.Now()
		l.timers.fireDue(now, l.invoke)

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			if fd == l.wakeFD {
				l.drainWake()
				l.drainPosts()
				continue
			}
			src, ok := l.sources[fd]
			if !ok {
				continue // source was unregistered between wait and dispatch
			}
			l.invokeLabeled(src.label, src.callback)
		}
	}
	return nil
}

func (l *Loop) drainPosts() {
	for {
		pm, ok := l.posts.pop()
		if !ok {
			return
		}
		l.invoke(func() { pm.handler(pm.msg) })
	}
}

func (l *Loop) epollTimeoutMillis() int {
	d := l.timers.nextTimeout()
	if d < 0 {
		return -1
	}
	ms := d.Milliseconds()
	if ms > int64(1<<31-1) {
		ms = int64(1<<31 - 1)
	}
	return int(ms)
}

func (l *Loop) invoke(cb func()) {
	l.invokeLabeled("", cb)
}

func (l *Loop) invokeLabeled(label string, cb func()) {
	start := time.Now()
	cb()
	if elapsed := time.Since(start); elapsed > schedulingBudget {
		if label == "" {
			label = "<anonymous>"
		}
		l.log.warnf("spine: scheduling offense: callback %q took %s (budget %s)", label, elapsed, schedulingBudget)
	}
}

// Close releases the loop's own kernel resources. Registered fds and
// timers are released in unspecified order; destructors of components
// that registered them must tolerate partial teardown.
func (l *Loop) Close() error {
	for fd := range l.sources {
		_ = unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	}
	l.sources = nil
	unix.Close(l.wakeFD)
	return unix.Close(l.epfd)
}
