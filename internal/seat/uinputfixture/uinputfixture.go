// Package uinputfixture creates scratch virtual input devices via
// /dev/uinput so Input Engine hotplug and translation tests can exercise
// real evdev nodes end to end instead of hand-rolled fakes, grounded on
// the teacher's own uinput usage (internal/input/uinput_handler.go,
// which drives a uinput.Mouse the same way). Requires CAP_SYS_ADMIN (or
// membership in the "input"/"uinput" group plus the udev rule the
// teacher's uinput_test.go documents) and is meant for opt-in
// integration test runs, not CI by default.
package uinputfixture

import (
	"fmt"

	"github.com/ThomasT75/uinput"
)

// VirtualMouse wraps a scratch uinput mouse device for synthetic pointer
// event injection.
type VirtualMouse struct {
	dev uinput.Mouse
}

// NewVirtualMouse creates a scratch virtual mouse named name (defaults
// to "wlcore test mouse" if empty).
func NewVirtualMouse(name string) (*VirtualMouse, error) {
	if name == "" {
		name = "wlcore test mouse"
	}
	dev, err := uinput.CreateMouse("/dev/uinput", []byte(name))
	if err != nil {
		return nil, fmt.Errorf("uinputfixture: create virtual mouse: %w", err)
	}
	return &VirtualMouse{dev: dev}, nil
}

// Move emits a relative motion event.
func (m *VirtualMouse) Move(dx, dy int32) error { return m.dev.Move(dx, dy) }

// Click presses and releases the given button, identified the same way
// the teacher's handleClick does ("left", "right", "middle").
func (m *VirtualMouse) Click(button string) error {
	press, release, err := m.buttonFuncs(button)
	if err != nil {
		return err
	}
	if err := press(); err != nil {
		return err
	}
	return release()
}

func (m *VirtualMouse) buttonFuncs(button string) (press, release func() error, err error) {
	switch button {
	case "left":
		return m.dev.LeftPress, m.dev.LeftRelease, nil
	case "right":
		return m.dev.RightPress, m.dev.RightRelease, nil
	case "middle":
		return m.dev.MiddlePress, m.dev.MiddleRelease, nil
	default:
		return nil, nil, fmt.Errorf("uinputfixture: unknown button %q", button)
	}
}

// Scroll emits a wheel event; horizontal selects the axis.
func (m *VirtualMouse) Scroll(horizontal bool, delta int32) error {
	return m.dev.Wheel(horizontal, delta)
}

// Close destroys the virtual device.
func (m *VirtualMouse) Close() error { return m.dev.Close() }

// VirtualKeyboard wraps a scratch uinput keyboard device.
type VirtualKeyboard struct {
	dev uinput.Keyboard
}

// NewVirtualKeyboard creates a scratch virtual keyboard named name.
func NewVirtualKeyboard(name string) (*VirtualKeyboard, error) {
	if name == "" {
		name = "wlcore test keyboard"
	}
	dev, err := uinput.CreateKeyboard("/dev/uinput", []byte(name))
	if err != nil {
		return nil, fmt.Errorf("uinputfixture: create virtual keyboard: %w", err)
	}
	return &VirtualKeyboard{dev: dev}, nil
}

// Tap presses then releases the given evdev keycode.
func (k *VirtualKeyboard) Tap(keycode int) error {
	if err := k.dev.KeyDown(keycode); err != nil {
		return err
	}
	return k.dev.KeyUp(keycode)
}

// Close destroys the virtual device.
func (k *VirtualKeyboard) Close() error { return k.dev.Close() }
