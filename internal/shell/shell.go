// Package shell implements the Shell Engine: the XDG shell role
// protocols layered on top of the Surface Engine — the global factory,
// the xdg_surface wrapper, xdg_toplevel, xdg_popup, positioners, and the
// configure/ack-configure serial dance (spec.md §4.3).
package shell

import (
	"fmt"
	"sync/atomic"

	"github.com/bnema/wlcore/internal/surface"
)

var serialCounter uint64

// nextSerial returns a fresh, process-wide monotonically increasing
// serial. Configure serials, popup grab serials, and ping serials all
// draw from the same counter: spec.md only requires monotonicity within
// each of those uses, and a single shared counter trivially satisfies
// that plus makes serials globally unique for debugging.
func nextSerial() uint32 {
	return uint32(atomic.AddUint64(&serialCounter, 1))
}

// Role is xdg_surface's sub-role: at most one of toplevel or popup, set
// exactly once (spec.md §4.3).
type Role int

const (
	RoleNone Role = iota
	RoleToplevel
	RolePopup
)

// XdgSurface wraps a wl_surface with window-geometry and the
// configure/ack-configure bookkeeping shared by toplevels and popups.
type XdgSurface struct {
	Surface *surface.Surface
	Role    Role

	Toplevel *Toplevel
	Popup    *Popup

	WindowGeometry Rect
	hasGeometry    bool

	lastSentSerial  uint32
	lastAckedSerial uint32
	pendingSerials  map[uint32]struct{}

	// ConfigureSender is how the engine actually puts a configure event
	// on the wire; set by whatever owns the connection to this surface.
	ConfigureSender func(cfg Configure)
}

// Rect is window geometry in surface-local coordinates: the subset of
// the surface that is "the window", excluding drop shadows and other
// decoration (spec.md §4.3).
type Rect struct {
	X, Y, Width, Height int32
}

// Configure is one proposed-state event: size and state flags for a
// toplevel, or geometry for a popup. Exactly one of the two payload
// fields is populated depending on the surface's role.
type Configure struct {
	Serial   uint32
	Toplevel *ToplevelConfigure
	Popup    *PopupConfigure
}

// ToplevelConfigure is the proposed size and state for a toplevel
// configure event. Width/Height of zero means "client chooses".
type ToplevelConfigure struct {
	Width, Height int32
	States        ToplevelStates
}

// PopupConfigure is the resolved geometry for a popup configure event.
type PopupConfigure struct {
	Geometry Rect
}

// NewXdgSurface wraps s, which must not already carry an xdg role.
func NewXdgSurface(s *surface.Surface) (*XdgSurface, error) {
	if s.Role() != surface.RoleNone {
		return nil, fmt.Errorf("shell: wl_surface %d already has role %s, cannot become xdg_surface", s.ID, s.Role())
	}
	return &XdgSurface{
		Surface:        s,
		pendingSerials: make(map[uint32]struct{}),
	}, nil
}

// SetWindowGeometry stages the window-geometry rectangle. It takes effect
// on the surface's next commit per the xdg_surface protocol, but this
// core applies it immediately since window geometry carries no rendering
// state that needs commit-pipeline ordering.
func (xs *XdgSurface) SetWindowGeometry(r Rect) {
	xs.WindowGeometry = r
	xs.hasGeometry = true
}

// sendConfigure allocates a fresh serial, records it as outstanding, and
// hands the event to ConfigureSender.
func (xs *XdgSurface) sendConfigure(cfg Configure) uint32 {
	serial := nextSerial()
	cfg.Serial = serial
	xs.lastSentSerial = serial
	xs.pendingSerials[serial] = struct{}{}
	if xs.ConfigureSender != nil {
		xs.ConfigureSender(cfg)
	}
	return serial
}

// AckConfigure processes an ack-configure request. An ack of a serial
// never sent is a protocol error (spec.md §4.3).
func (xs *XdgSurface) AckConfigure(serial uint32) error {
	if _, ok := xs.pendingSerials[serial]; !ok {
		return fmt.Errorf("shell: ack-configure of unknown serial %d on surface %d", serial, xs.Surface.ID)
	}
	delete(xs.pendingSerials, serial)
	if serial > xs.lastAckedSerial {
		xs.lastAckedSerial = serial
	}
	return nil
}

// LastAckedSerial returns the highest serial the client has acked.
func (xs *XdgSurface) LastAckedSerial() uint32 { return xs.lastAckedSerial }

// LastSentSerial returns the most recently sent configure's serial.
func (xs *XdgSurface) LastSentSerial() uint32 { return xs.lastSentSerial }
