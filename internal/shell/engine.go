package shell

import (
	"fmt"
	"time"

	"github.com/bnema/wlcore/internal/logger"
	"github.com/bnema/wlcore/internal/spine"
	"github.com/bnema/wlcore/internal/surface"
)

// pingTimeout is how long a client has to respond to a ping before it is
// considered unresponsive. spec.md doesn't fix a number; this expansion
// fixes it at 5s, matching the pack's general preference for small
// integer-second timeouts over an arbitrary magic number.
const pingTimeout = 5 * time.Second

// TimerScheduler is the subset of the Event Spine's API the Shell Engine
// needs to drive ping timeouts.
type TimerScheduler interface {
	RegisterTimer(d time.Duration, callback func()) spine.TimerHandle
	CancelTimer(handle spine.TimerHandle)
}

// ClientShell is one client's shell-level state: at most one ping
// outstanding at a time, every xdg_surface it has created.
type ClientShell struct {
	xdgSurfaces  map[surface.ID]*XdgSurface
	pingSerial   uint32
	pingPending  bool
	pingSentAt   time.Time
}

func newClientShell() *ClientShell {
	return &ClientShell{xdgSurfaces: make(map[surface.ID]*XdgSurface)}
}

// Engine is the Shell Engine: the xdg_wm_base global factory plus the
// configure/ack-configure and ping/pong protocol logic (spec.md §4.3).
type Engine struct {
	surfaces *surface.Engine
	log      *loggerHandle
}

type loggerHandle struct{}

func (loggerHandle) warnf(format string, args ...any) { logger.WithPrefix("shell").Warnf(format, args...) }

// NewEngine constructs a Shell Engine layered on top of a Surface Engine.
func NewEngine(surfaces *surface.Engine) *Engine {
	return &Engine{surfaces: surfaces, log: &loggerHandle{}}
}

// ShellStateFor returns (creating if necessary) the client's shell state
// slot, stored in the Surface Engine's per-client capability slot
// (spec.md §3: each client has "a per-client shell state slot").
func (e *Engine) ShellStateFor(c *surface.Client) *ClientShell {
	if cs, ok := c.CapabilitySlot.(*ClientShell); ok {
		return cs
	}
	cs := newClientShell()
	c.CapabilitySlot = cs
	return cs
}

// GetXdgSurface implements xdg_wm_base.get_xdg_surface: wraps s, which
// must not already carry a different role.
func (e *Engine) GetXdgSurface(c *surface.Client, s *surface.Surface) (*XdgSurface, error) {
	xs, err := NewXdgSurface(s)
	if err != nil {
		return nil, err
	}
	cs := e.ShellStateFor(c)
	cs.xdgSurfaces[s.ID] = xs
	return xs, nil
}

// DestroyXdgSurface forgets xs. Called on xdg_surface.destroy or surface
// destruction.
func (e *Engine) DestroyXdgSurface(c *surface.Client, xs *XdgSurface) {
	cs := e.ShellStateFor(c)
	delete(cs.xdgSurfaces, xs.Surface.ID)
}

// Ping sends an xdg_wm_base.ping to the client and arms a timeout. An
// unanswered ping is logged as a backend-failure-class event per
// spec.md §7; it does not kill the client connection (real compositors
// only warn here, since killing on a missed pong is widely regarded as
// too aggressive).
func (e *Engine) Ping(cs *ClientShell, scheduler TimerScheduler, send func(serial uint32)) {
	if cs.pingPending {
		return
	}
	serial := nextSerial()
	cs.pingSerial = serial
	cs.pingPending = true
	cs.pingSentAt = time.Now()
	send(serial)

	scheduler.RegisterTimer(pingTimeout, func() {
		if cs.pingPending && cs.pingSerial == serial {
			e.log.warnf("client unresponsive to ping (serial %d, waited %s)", serial, pingTimeout)
		}
	})
}

// Pong processes an xdg_wm_base.pong response.
func (e *Engine) Pong(cs *ClientShell, serial uint32) error {
	if !cs.pingPending || cs.pingSerial != serial {
		return fmt.Errorf("shell: pong for unknown or already-answered serial %d", serial)
	}
	cs.pingPending = false
	return nil
}
