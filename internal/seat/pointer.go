package seat

import "github.com/bnema/wlcore/internal/geom"

// PointerGrab redirects pointer events unconditionally to its handler
// regardless of hit-test, and suppresses leave during the grab
// (spec.md §4.4 "Pointer path": "Grab: a pointer grab redirects events
// unconditionally ...").
type PointerGrab interface {
	Motion(localX, localY float64)
	Button(code uint32, pressed bool)
	Axis(horizontal, vertical float64, discrete bool)
}

// HitTester resolves the surface (if any) under a global logical point,
// hit-testing top-down against mapped surfaces' input regions
// (spec.md §4.4). It is supplied externally since stacking order and
// surface geometry are Window Mechanics' concern, not the Input Engine's.
type HitTester func(p geom.Point) (surfaceID uint64, localX, localY float64, ok bool)

// PointerDelegate receives the pointer's output events.
type PointerDelegate interface {
	SendEnter(surfaceID uint64, localX, localY float64, serial uint32)
	SendLeave(serial uint32)
	SendMotion(localX, localY float64)
	SendButton(code uint32, pressed bool, serial uint32)
	SendAxis(horizontal, vertical float64, discrete bool)
}

// FocusFollowsClick is the external policy collaborator consulted on
// button press, resolved the same way the teacher's
// ClientManager.SwitchToClient resolves active-target switching: a
// single authoritative "should this press move keyboard focus" decision
// (spec.md §4.4 "a press on an unfocused-for-keyboard surface is the
// default click to focus trigger (policy consumed from external
// collaborator)").
type FocusFollowsClick func(surfaceID uint64)

// Pointer is one seat's pointer state (spec.md §3 "Pointer state").
type Pointer struct {
	x, y     float64
	bounds   geom.Rect
	delegate PointerDelegate
	hitTest  HitTester
	onClick  FocusFollowsClick

	focusedSurface uint64
	hasFocus       bool

	grab    PointerGrab
	hasGrab bool
}

// NewPointer constructs a Pointer clamped to bounds (the union of output
// rectangles).
func NewPointer(bounds geom.Rect, delegate PointerDelegate, hitTest HitTester, onClick FocusFollowsClick) *Pointer {
	return &Pointer{bounds: bounds, delegate: delegate, hitTest: hitTest, onClick: onClick}
}

// SetBounds updates the clamp rectangle, e.g. after an output hot-plug.
func (p *Pointer) SetBounds(bounds geom.Rect) { p.bounds = bounds }

// Position returns the pointer's current global logical position.
func (p *Pointer) Position() (float64, float64) { return p.x, p.y }

// SetGrab installs an exclusive pointer grab.
func (p *Pointer) SetGrab(g PointerGrab) {
	p.grab = g
	p.hasGrab = true
}

// ClearGrab releases the current grab, if any.
func (p *Pointer) ClearGrab() {
	p.grab = nil
	p.hasGrab = false
}

// Motion moves the pointer by (dx, dy) in logical coordinates, clamping
// to bounds, hit-testing for focus changes, and delivering motion.
func (p *Pointer) Motion(dx, dy float64) {
	p.x = clamp(p.x+dx, float64(p.bounds.X), float64(p.bounds.X+p.bounds.Width))
	p.y = clamp(p.y+dy, float64(p.bounds.Y), float64(p.bounds.Y+p.bounds.Height))

	if p.hasGrab {
		p.grab.Motion(p.x, p.y)
		return
	}

	surfaceID, lx, ly, ok := p.hitTest(geom.Point{X: int32(p.x), Y: int32(p.y)})
	if !ok {
		if p.hasFocus {
			p.delegate.SendLeave(nextSerial())
			p.hasFocus = false
		}
		return
	}

	if !p.hasFocus || p.focusedSurface != surfaceID {
		if p.hasFocus {
			p.delegate.SendLeave(nextSerial())
		}
		p.focusedSurface = surfaceID
		p.hasFocus = true
		p.delegate.SendEnter(surfaceID, lx, ly, nextSerial())
	}
	p.delegate.SendMotion(lx, ly)
}

// Button delivers a button event, applying the grab redirect and the
// click-to-focus policy (spec.md §4.4 "Pointer path").
func (p *Pointer) Button(code uint32, pressed bool) {
	if p.hasGrab {
		p.grab.Button(code, pressed)
		return
	}
	if pressed && p.hasFocus && p.onClick != nil {
		p.onClick(p.focusedSurface)
	}
	p.delegate.SendButton(code, pressed, nextSerial())
}

// Axis delivers a scroll event.
func (p *Pointer) Axis(horizontal, vertical float64, discrete bool) {
	if p.hasGrab {
		p.grab.Axis(horizontal, vertical, discrete)
		return
	}
	p.delegate.SendAxis(horizontal, vertical, discrete)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
