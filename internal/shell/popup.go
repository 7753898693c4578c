package shell

import (
	"fmt"

	"github.com/bnema/wlcore/internal/surface"
)

// Popup is a surface with role "popup", anchored to a parent via a
// Positioner (spec.md §3 "Popup").
type Popup struct {
	Xdg        *XdgSurface
	Parent     *XdgSurface
	Positioner Positioner
	Geometry   Rect

	grabSerial uint32
	hasGrab    bool

	// Child is the next popup in this grab chain, if any (spec.md §4.3
	// "Popup grab": "a popup may spawn a child popup, forming a chain").
	Child *Popup

	// OnDismiss fires when the popup is dismissed, either by explicit
	// destroy or because a click outside the grab chain dismissed it.
	OnDismiss func()
}

// NewPopup gives xs the popup role, anchored to parent using positioner.
// Fails if xs already has a role, or if parent is nil (spec.md §4.3:
// "Missing parent on popup creation is a protocol error").
func NewPopup(xs *XdgSurface, parent *XdgSurface, positioner Positioner) (*Popup, error) {
	if parent == nil {
		return nil, fmt.Errorf("shell: popup requires a parent xdg_surface")
	}
	if xs.Role != RoleNone {
		return nil, fmt.Errorf("shell: xdg_surface already has role %v, cannot become popup", xs.Role)
	}
	if err := xs.Surface.GiveRole(surface.RolePopup); err != nil {
		return nil, err
	}
	p := &Popup{Xdg: xs, Parent: parent, Positioner: positioner}
	xs.Role = RolePopup
	xs.Popup = p
	return p, nil
}

// Configure resolves the popup's geometry against the given output
// rectangle and sends a popup configure event.
func (p *Popup) Configure(output Rect) uint32 {
	parentRect := Rect{}
	if p.Parent.hasGeometry {
		parentRect = p.Parent.WindowGeometry
	}
	p.Geometry = p.Positioner.Resolve(parentRect, output)
	return p.Xdg.sendConfigure(Configure{Popup: &PopupConfigure{Geometry: p.Geometry}})
}

// Grab records that this popup holds the grab identified by serial
// (spec.md §4.3 "Popup grab"). It sets only the popup's own state: no
// seat pointer grab is installed, so pointer input is not captured here.
func (p *Popup) Grab(serial uint32) {
	p.grabSerial = serial
	p.hasGrab = true
}

// HasGrab reports whether this popup currently holds the pointer grab.
func (p *Popup) HasGrab() bool { return p.hasGrab }

// Reposition re-resolves geometry using a new positioner and sends a
// fresh configure. token is accepted but not used: the configure does not
// carry it and no repositioned event is sent.
func (p *Popup) Reposition(positioner Positioner, token uint32, output Rect) uint32 {
	p.Positioner = positioner
	return p.Configure(output)
}

// Dismiss tears down the popup and, per spec.md §4.3, the entire suffix
// of its grab chain: "dismissal dismisses the entire suffix."
func (p *Popup) Dismiss() {
	if p.Child != nil {
		p.Child.Dismiss()
		p.Child = nil
	}
	p.hasGrab = false
	if p.OnDismiss != nil {
		p.OnDismiss()
	}
}
