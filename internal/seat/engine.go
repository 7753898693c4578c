package seat

import (
	"fmt"

	"github.com/gvalkov/golang-evdev"

	"github.com/bnema/wlcore/internal/geom"
)

// Engine is the Input Engine: one seat (spec.md's data model names one
// seat per "logical grouping of input capabilities for one user"; this
// core only ever runs a single seat, named in config) plus the open
// device set backing it.
type Engine struct {
	Seat    *Seat
	devices map[string]*Device

	scheduler KeyboardScheduler
	kbdDelegate KeyboardDelegate
	ptrDelegate PointerDelegate
	touchDelegate TouchDelegate
	hitTest   HitTester
	onClick   FocusFollowsClick
	bounds    geom.Rect

	activeSlot   int32
	touchX       float64
	touchY       float64
	touchStarted map[int32]bool
}

// EngineConfig bundles the delegates and collaborators the Input Engine
// needs wired in before it can attach devices (spec.md §4.4 depends on
// Window Mechanics for hit-testing and focus-follows-click policy, and
// on the wire connection for event delegates).
type EngineConfig struct {
	SeatName          string
	Scheduler         KeyboardScheduler
	KeyboardDelegate  KeyboardDelegate
	PointerDelegate   PointerDelegate
	TouchDelegate     TouchDelegate
	HitTest           HitTester
	FocusFollowsClick FocusFollowsClick
	Bounds            geom.Rect
	OnCapabilitiesChanged func(Capability)
}

// NewEngine constructs the Input Engine's single seat, with no devices
// attached yet.
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		Seat:          NewSeat(cfg.SeatName, cfg.OnCapabilitiesChanged),
		devices:       make(map[string]*Device),
		scheduler:     cfg.Scheduler,
		kbdDelegate:   cfg.KeyboardDelegate,
		ptrDelegate:   cfg.PointerDelegate,
		touchDelegate: cfg.TouchDelegate,
		hitTest:       cfg.HitTest,
		onClick:       cfg.FocusFollowsClick,
		bounds:        cfg.Bounds,
	}
}

// HandleDeviceAdded opens path, classifies it, and attaches the
// corresponding seat capability if it's newly present (spec.md §4.4
// "Device lifecycle").
func (e *Engine) HandleDeviceAdded(path string) error {
	if _, exists := e.devices[path]; exists {
		return nil
	}
	dev, err := OpenDevice(path)
	if err != nil {
		return err
	}
	e.devices[path] = dev

	switch dev.Class {
	case DeviceKeyboard:
		if e.Seat.Keyboard == nil {
			e.Seat.AttachKeyboard(e.scheduler, e.kbdDelegate)
		}
	case DevicePointer:
		if e.Seat.Pointer == nil {
			e.Seat.AttachPointer(e.bounds, e.ptrDelegate, e.hitTest, e.onClick)
		}
	case DeviceTouch:
		if e.Seat.Touch == nil {
			e.Seat.AttachTouch(e.touchDelegate, e.hitTest)
		}
	}
	return nil
}

// DeviceFd returns the file descriptor of the device at path, for the
// caller to register with the Event Spine after HandleDeviceAdded.
func (e *Engine) DeviceFd(path string) (int, bool) {
	dev, ok := e.devices[path]
	if !ok {
		return 0, false
	}
	return dev.Fd(), true
}

// ReadDevice reads the next batch of raw events from the device at
// path, for the caller's Event Spine readability callback to forward
// into DispatchRaw.
func (e *Engine) ReadDevice(path string) ([]evdev.InputEvent, error) {
	dev, ok := e.devices[path]
	if !ok {
		return nil, fmt.Errorf("seat: read unknown device %s", path)
	}
	return dev.ReadEvents()
}

// HandleDeviceRemoved closes and forgets the device at path, withdrawing
// its capability only if no other attached device still offers it
// (spec.md §4.4).
func (e *Engine) HandleDeviceRemoved(path string) {
	dev, ok := e.devices[path]
	if !ok {
		return
	}
	delete(e.devices, path)
	_ = dev.Close()

	if !e.classStillPresent(dev.Class) {
		switch dev.Class {
		case DeviceKeyboard:
			e.Seat.DetachKeyboard()
		case DevicePointer:
			e.Seat.DetachPointer()
		case DeviceTouch:
			e.Seat.DetachTouch()
		}
	}
}

func (e *Engine) classStillPresent(class DeviceClass) bool {
	for _, d := range e.devices {
		if d.Class == class {
			return true
		}
	}
	return false
}

// SetBounds updates the pointer clamp rectangle, e.g. after an output
// hot-plug changes the global logical space.
func (e *Engine) SetBounds(bounds geom.Rect) {
	e.bounds = bounds
	if e.Seat.Pointer != nil {
		e.Seat.Pointer.SetBounds(bounds)
	}
}

// DispatchRaw translates one batch of raw evdev events from the device
// at path into seat-level calls. Multitouch reports from a touch device
// drive the touch path only; no gesture (pinch, swipe, hold) is decoded,
// logged or forwarded here.
func (e *Engine) DispatchRaw(path string, events []evdev.InputEvent) error {
	dev, ok := e.devices[path]
	if !ok {
		return fmt.Errorf("seat: dispatch for unknown device %s", path)
	}
	for _, ev := range events {
		switch dev.Class {
		case DeviceKeyboard:
			if ev.Type == evdev.EV_KEY && e.Seat.Keyboard != nil {
				e.Seat.Keyboard.HandleKey(uint32(ev.Code), ev.Value != 0, nextSerial())
			}
		case DevicePointer:
			e.dispatchPointerEvent(ev)
		case DeviceTouch:
			e.dispatchTouchEvent(ev)
		}
	}
	return nil
}

func (e *Engine) dispatchPointerEvent(ev evdev.InputEvent) {
	if e.Seat.Pointer == nil {
		return
	}
	switch ev.Type {
	case evdev.EV_REL:
		switch ev.Code {
		case evdev.REL_X:
			e.Seat.Pointer.Motion(float64(ev.Value), 0)
		case evdev.REL_Y:
			e.Seat.Pointer.Motion(0, float64(ev.Value))
		case evdev.REL_WHEEL:
			e.Seat.Pointer.Axis(0, float64(ev.Value), true)
		case evdev.REL_HWHEEL:
			e.Seat.Pointer.Axis(float64(ev.Value), 0, true)
		}
	case evdev.EV_KEY:
		if ev.Code >= evdev.BTN_LEFT && ev.Code <= evdev.BTN_TASK {
			e.Seat.Pointer.Button(uint32(ev.Code), ev.Value != 0)
		}
	}
}

// multitouch ABS codes dispatchTouchEvent turns into touch down/motion/up.
const (
	absMTSlot       = 0x2f
	absMTTrackingID = 0x39
	absMTPositionX  = 0x35
	absMTPositionY  = 0x36
)

func (e *Engine) dispatchTouchEvent(ev evdev.InputEvent) {
	if e.Seat.Touch == nil {
		return
	}
	switch ev.Type {
	case evdev.EV_ABS:
		switch int(ev.Code) {
		case absMTSlot:
			e.activeSlot = ev.Value
		case absMTTrackingID:
			if ev.Value == -1 {
				e.Seat.Touch.Up(e.activeSlot)
				delete(e.touchStarted, e.activeSlot)
			}
		case absMTPositionX:
			e.touchX = float64(ev.Value)
		case absMTPositionY:
			e.touchY = float64(ev.Value)
			if _, tracked := e.touchStarted[e.activeSlot]; !tracked {
				e.markTouchStarted(e.activeSlot)
				e.Seat.Touch.Down(e.activeSlot, e.touchX, e.touchY)
			} else {
				e.Seat.Touch.Motion(e.activeSlot, 0, 0)
			}
		}
	case evdev.EV_SYN:
		if ev.Code == 0 { // SYN_REPORT
			e.Seat.Touch.Frame()
		}
	}
}

func (e *Engine) markTouchStarted(slot int32) {
	if e.touchStarted == nil {
		e.touchStarted = make(map[int32]bool)
	}
	e.touchStarted[slot] = true
}
