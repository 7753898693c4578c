package shell

import (
	"fmt"

	"github.com/bnema/wlcore/internal/surface"
)

// ToplevelStates is the set of current state flags a toplevel carries,
// sent in every configure event (spec.md §3 "Toplevel").
type ToplevelStates struct {
	Maximized  bool
	Fullscreen bool
	Resizing   bool
	Activated  bool
	Suspended  bool
}

// DecorationMode is whether the client or the compositor draws window
// decorations.
type DecorationMode int

const (
	DecorationClientSide DecorationMode = iota
	DecorationServerSide
)

// Capabilities advertised via xdg_toplevel.wm_capabilities (v5+). This
// core never advertises Minimize: minimize is accepted as a request but
// has no observable compositor-side effect (Minimize does nothing),
// matching spec.md's Non-goal that placement policy is external.
type Capabilities struct {
	WindowMenu bool
	Maximize   bool
	Fullscreen bool
}

// Toplevel is a surface with role "toplevel" (spec.md §3).
type Toplevel struct {
	Xdg *XdgSurface

	AppID string
	Title string
	Parent *Toplevel

	MinWidth, MinHeight int32
	MaxWidth, MaxHeight int32

	States     ToplevelStates
	Decoration DecorationMode

	capabilitiesSent bool

	// OnClose fires when the client requests the window be closed via
	// wm-level UI (not modeled by this engine directly; Window Mechanics
	// wires this to its own destroy path).
	OnClose func()
}

// NewToplevel gives xs the toplevel role. Fails if xs already has a
// different role.
func NewToplevel(xs *XdgSurface) (*Toplevel, error) {
	if xs.Role != RoleNone {
		return nil, fmt.Errorf("shell: xdg_surface already has role %v, cannot become toplevel", xs.Role)
	}
	if err := xs.Surface.GiveRole(surface.RoleToplevel); err != nil {
		return nil, err
	}
	tl := &Toplevel{Xdg: xs}
	xs.Role = RoleToplevel
	xs.Toplevel = tl
	return tl, nil
}

// SetTitle updates the window's human-readable title.
func (t *Toplevel) SetTitle(title string) { t.Title = title }

// SetAppID updates the window's application identifier string.
func (t *Toplevel) SetAppID(appID string) { t.AppID = appID }

// SetParent establishes (or clears, with nil) a parent/child relation
// between toplevels, used for transient/dialog windows.
func (t *Toplevel) SetParent(parent *Toplevel) { t.Parent = parent }

// SetMinSize stages the minimum size hint.
func (t *Toplevel) SetMinSize(w, h int32) { t.MinWidth, t.MinHeight = w, h }

// SetMaxSize stages the maximum size hint.
func (t *Toplevel) SetMaxSize(w, h int32) { t.MaxWidth, t.MaxHeight = w, h }

// SizeHints returns the toplevel's current min/max size hints, consulted
// by Window Mechanics to clamp interactive resize geometry (spec.md
// §4.6 "Interactive resize": "Enforce min/max size hints from the
// toplevel").
func (t *Toplevel) SizeHints() (minW, minH, maxW, maxH int32) {
	return t.MinWidth, t.MinHeight, t.MaxWidth, t.MaxHeight
}

// SetActivated is internal-only: the activated flag is never settable by
// a client request, only by the compositor (Window Mechanics) on focus
// changes (spec.md §3 "Toplevel").
func (t *Toplevel) SetActivated(activated bool) {
	t.States.Activated = activated
}

// Maximize requests a maximize configure with the given target size
// (typically the output's work area).
func (t *Toplevel) Maximize(width, height int32) uint32 {
	t.States.Maximized = true
	return t.configure(width, height)
}

// Unmaximize requests a configure with the maximize flag cleared; width
// and height of zero lets the client choose its own size.
func (t *Toplevel) Unmaximize() uint32 {
	t.States.Maximized = false
	return t.configure(0, 0)
}

// Fullscreen requests a fullscreen configure at the given output size.
func (t *Toplevel) Fullscreen(width, height int32) uint32 {
	t.States.Fullscreen = true
	return t.configure(width, height)
}

// Unfullscreen requests a configure with the fullscreen flag cleared.
func (t *Toplevel) Unfullscreen() uint32 {
	t.States.Fullscreen = false
	return t.configure(0, 0)
}

// BeginResize marks the resizing state flag for the duration of an
// interactive resize grab.
func (t *Toplevel) BeginResize() uint32 {
	t.States.Resizing = true
	return t.configure(0, 0)
}

// EndResize clears the resizing state flag.
func (t *Toplevel) EndResize() uint32 {
	t.States.Resizing = false
	return t.configure(0, 0)
}

// Minimize is accepted but produces no configure and has no other
// observable effect here; placement/minimized-window handling is left to
// the external policy collaborator (spec.md Non-goal (a)).
func (t *Toplevel) Minimize() {}

// SendWMCapabilities sends the one-time wm_capabilities event, once per
// toplevel, advertising window_menu/maximize/fullscreen but never
// minimize.
func (t *Toplevel) SendWMCapabilities(send func(Capabilities)) {
	if t.capabilitiesSent {
		return
	}
	t.capabilitiesSent = true
	send(Capabilities{WindowMenu: true, Maximize: true, Fullscreen: true})
}

// ConfigureTo sends a configure for the given proposed size reflecting
// whatever state flags are currently set, used by Window Mechanics when
// applying an externally computed layout (spec.md §4.6 "Layout
// application" step 4).
func (t *Toplevel) ConfigureTo(width, height int32) uint32 {
	return t.configure(width, height)
}

// configure sends a toplevel configure event reflecting the current
// state flags and the given proposed size.
func (t *Toplevel) configure(width, height int32) uint32 {
	return t.Xdg.sendConfigure(Configure{
		Toplevel: &ToplevelConfigure{Width: width, Height: height, States: t.States},
	})
}
