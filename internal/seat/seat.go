// Package seat implements the Input Engine: libinput-style device
// hotplug, seat capability management, and the keyboard/pointer/touch
// event pipelines that translate low-level device events into
// Wayland-level events routed to focused surfaces (spec.md §4.4).
package seat

import (
	"sync/atomic"

	"github.com/bnema/wlcore/internal/geom"
	"github.com/bnema/wlcore/internal/logger"
)

var (
	serialCounter uint64
	gestureLogger = logger.WithPrefix("seat")
)

// nextSerial returns a fresh, process-wide monotonically increasing
// serial shared by every enter/leave/key/button event this package
// emits, mirroring how a real compositor draws every wire serial from
// one counter regardless of which protocol object it tags.
func nextSerial() uint32 {
	return uint32(atomic.AddUint64(&serialCounter, 1))
}

func pointOf(x, y float64) geom.Point {
	return geom.Point{X: int32(x), Y: int32(y)}
}

// Capability is one of the three input capability bits a seat may
// advertise (spec.md §3 "Seat").
type Capability int

const (
	CapabilityKeyboard Capability = 1 << iota
	CapabilityPointer
	CapabilityTouch
)

// CursorImageKind is the kind of the pointer's cursor image state
// (spec.md §4.4 "Cursor image contract").
type CursorImageKind int

const (
	CursorHidden CursorImageKind = iota
	CursorNamedTheme
	CursorClientSurface
)

// CursorImage describes what the pointer cursor currently shows.
type CursorImage struct {
	Kind       CursorImageKind
	ThemeName  string
	SurfaceID  uint64
	HotspotX   int32
	HotspotY   int32
}

// Seat is a logical grouping of input capabilities for one user
// (spec.md §3 "Seat").
type Seat struct {
	Name         string
	capabilities Capability

	Keyboard *Keyboard
	Pointer  *Pointer
	Touch    *Touch

	cursor CursorImage

	onCapabilitiesChanged func(Capability)
}

// NewSeat constructs an empty seat with no capabilities; handles are
// added as devices attach (spec.md §4.4 "Device lifecycle").
func NewSeat(name string, onCapabilitiesChanged func(Capability)) *Seat {
	return &Seat{Name: name, onCapabilitiesChanged: onCapabilitiesChanged}
}

// Capabilities returns the current capability bitmask.
func (s *Seat) Capabilities() Capability { return s.capabilities }

// HasCapability reports whether cap is currently advertised.
func (s *Seat) HasCapability(cap Capability) bool {
	return s.capabilities&cap != 0
}

func (s *Seat) addCapability(cap Capability) {
	if s.capabilities&cap != 0 {
		return
	}
	s.capabilities |= cap
	if s.onCapabilitiesChanged != nil {
		s.onCapabilitiesChanged(s.capabilities)
	}
}

func (s *Seat) removeCapability(cap Capability) {
	if s.capabilities&cap == 0 {
		return
	}
	s.capabilities &^= cap
	if s.onCapabilitiesChanged != nil {
		s.onCapabilitiesChanged(s.capabilities)
	}
}

// AttachKeyboard constructs and installs the seat's keyboard handle,
// advertising the capability if it's newly present.
func (s *Seat) AttachKeyboard(scheduler KeyboardScheduler, delegate KeyboardDelegate) {
	s.Keyboard = NewKeyboard(scheduler, delegate)
	s.addCapability(CapabilityKeyboard)
}

// AttachPointer constructs and installs the seat's pointer handle.
func (s *Seat) AttachPointer(bounds geom.Rect, delegate PointerDelegate, hitTest HitTester, onClick FocusFollowsClick) {
	s.Pointer = NewPointer(bounds, delegate, hitTest, onClick)
	s.addCapability(CapabilityPointer)
}

// AttachTouch constructs and installs the seat's touch handle.
func (s *Seat) AttachTouch(delegate TouchDelegate, hitTest HitTester) {
	s.Touch = NewTouch(delegate, hitTest)
	s.addCapability(CapabilityTouch)
}

// DetachKeyboard withdraws the keyboard capability. The caller is
// responsible for calling this only when no other attached device offers
// the capability (spec.md §4.4 "Device lifecycle").
func (s *Seat) DetachKeyboard() {
	s.Keyboard = nil
	s.removeCapability(CapabilityKeyboard)
}

// DetachPointer withdraws the pointer capability.
func (s *Seat) DetachPointer() {
	s.Pointer = nil
	s.removeCapability(CapabilityPointer)
}

// DetachTouch withdraws the touch capability.
func (s *Seat) DetachTouch() {
	s.Touch = nil
	s.removeCapability(CapabilityTouch)
}

// SetCursorImage updates the pointer's cursor image state.
func (s *Seat) SetCursorImage(img CursorImage) { s.cursor = img }

// CursorImage returns the pointer's current cursor image state.
func (s *Seat) CursorImage() CursorImage { return s.cursor }

// GestureKind names the multitouch gestures the device backend decodes.
type GestureKind int

const (
	GesturePinch GestureKind = iota
	GestureSwipe
	GestureHold
)

// LogGesture records a decoded gesture at Debug level; forwarding to
// clients is reserved for a later iteration and explicitly out of scope
// here (spec.md §4.4).
func (s *Seat) LogGesture(kind GestureKind, fingers int) {
	gestureLogger.Debugf("gesture kind=%d fingers=%d seat=%s", kind, fingers, s.Name)
}
