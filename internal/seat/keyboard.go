package seat

import (
	"time"

	"github.com/bnema/wlcore/internal/seat/xkb"
	"github.com/bnema/wlcore/internal/spine"
)

// repeatDelay and repeatInterval are the policy values spec.md §4.4
// fixes numerically: "schedule a delayed timer (policy: 200ms) ...
// reschedule at the repeat interval (policy: 25ms)".
const (
	repeatDelay    = 200 * time.Millisecond
	repeatInterval = 25 * time.Millisecond
)

// KeyboardScheduler is the subset of the Event Spine a Keyboard needs to
// drive key repeat.
type KeyboardScheduler interface {
	RegisterTimer(d time.Duration, callback func()) spine.TimerHandle
	RegisterPeriodicTimer(d, period time.Duration, callback func()) spine.TimerHandle
	CancelTimer(handle spine.TimerHandle)
}

// KeyboardDelegate receives the keyboard's output events, implemented by
// whatever layer owns the wire connection to the focused client.
type KeyboardDelegate interface {
	SendModifiers(mods xkb.Modifier)
	SendKey(xkbKeycode uint32, pressed bool, serial uint32)
	SendEnter(surfaceID uint64, pressedKeycodes []uint32, mods xkb.Modifier, serial uint32)
	SendLeave(serial uint32)
}

// Keyboard is one seat's keyboard state (spec.md §3 "Keyboard state").
type Keyboard struct {
	state     *xkb.State
	scheduler KeyboardScheduler
	delegate  KeyboardDelegate

	focusedSurface uint64
	hasFocus       bool
	pressed        map[uint32]bool

	repeatKeycode uint32
	hasRepeat     bool
	repeatHandle  spine.TimerHandle
}

// NewKeyboard constructs a Keyboard bound to scheduler for repeat timers
// and delegate for wire output.
func NewKeyboard(scheduler KeyboardScheduler, delegate KeyboardDelegate) *Keyboard {
	return &Keyboard{
		state:     xkb.NewState(),
		scheduler: scheduler,
		delegate:  delegate,
		pressed:   make(map[uint32]bool),
	}
}

// HandleKey processes one key event from the device backend. keycode is
// the raw evdev keycode; it is offset by +8 internally to reach XKB
// keycode space (spec.md §4.4).
func (k *Keyboard) HandleKey(keycode uint32, pressed bool, serial uint32) {
	xkbCode := keycode + 8

	if pressed {
		k.pressed[xkbCode] = true
	} else {
		delete(k.pressed, xkbCode)
	}

	if k.state.UpdateKey(xkbCode, pressed) {
		k.delegate.SendModifiers(k.state.Modifiers())
	}

	k.delegate.SendKey(xkbCode, pressed, serial)

	if !pressed {
		if k.hasRepeat && k.repeatKeycode == xkbCode {
			k.cancelRepeat()
		}
		return
	}

	if k.state.Keysym(xkbCode) == 0 {
		return // non-printable / modifier keys aren't repeated
	}
	k.cancelRepeat()
	k.repeatKeycode = xkbCode
	k.hasRepeat = true
	k.repeatHandle = k.scheduler.RegisterTimer(repeatDelay, func() { k.fireRepeat(xkbCode) })
}

func (k *Keyboard) fireRepeat(xkbCode uint32) {
	if !k.hasRepeat || k.repeatKeycode != xkbCode {
		return
	}
	k.delegate.SendKey(xkbCode, true, nextSerial())
	k.repeatHandle = k.scheduler.RegisterTimer(repeatInterval, func() { k.fireRepeat(xkbCode) })
}

func (k *Keyboard) cancelRepeat() {
	if k.hasRepeat {
		k.scheduler.CancelTimer(k.repeatHandle)
		k.hasRepeat = false
	}
}

// SetFocus moves keyboard focus to surfaceID (or clears it if hasSurface
// is false), sending leave to the previous focus and enter to the new
// one with the same serial, and cancels any in-flight repeat since
// repeat never survives a focus change (spec.md §3, §4.4).
func (k *Keyboard) SetFocus(surfaceID uint64, hasSurface bool) {
	serial := nextSerial()
	k.cancelRepeat()

	if k.hasFocus {
		k.delegate.SendLeave(serial)
	}
	k.hasFocus = hasSurface
	k.focusedSurface = surfaceID
	if hasSurface {
		pressedList := make([]uint32, 0, len(k.pressed))
		for code := range k.pressed {
			pressedList = append(pressedList, code)
		}
		k.delegate.SendEnter(surfaceID, pressedList, k.state.Modifiers(), serial)
	}
}

// FocusedSurface returns the currently focused surface id and whether
// any surface holds keyboard focus.
func (k *Keyboard) FocusedSurface() (uint64, bool) { return k.focusedSurface, k.hasFocus }

// Modifiers returns the current effective modifier mask.
func (k *Keyboard) Modifiers() xkb.Modifier { return k.state.Modifiers() }
