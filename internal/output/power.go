package output

import "fmt"

// PowerHandle is a per-output handle for setting power state to on or
// off, the two states the protocol exposes (spec.md §4.5
// "Power-state protocol"). At most one handle may exist per output at a
// time.
type PowerHandle struct {
	head     *Head
	onMode   func(PowerState)
	finished bool
}

// CreatePowerHandle creates the output's power handle. Fails if one
// already exists.
func (e *Engine) CreatePowerHandle(headID uint32, onMode func(PowerState)) (*PowerHandle, error) {
	head, ok := e.heads[headID]
	if !ok {
		return nil, fmt.Errorf("output: unknown head %d", headID)
	}
	if head.powerHandle != nil {
		return nil, fmt.Errorf("output: head %d already has an active power handle", headID)
	}
	h := &PowerHandle{head: head, onMode: onMode}
	head.powerHandle = h
	onMode(head.Power)
	return h, nil
}

// SetPower requests on or off. Any other requested state is rejected;
// standby/suspend are internal substates the idle policy drives, not
// client-settable values.
func (h *PowerHandle) SetPower(state PowerState) error {
	if h.finished {
		return fmt.Errorf("output: power handle already finished")
	}
	if state != PowerOn && state != PowerOff {
		return fmt.Errorf("output: power handle only accepts on/off, got %v", state)
	}
	h.head.Power = state
	h.onMode(state)
	return nil
}

// Destroy releases the handle, allowing a new one to be created for the
// same head.
func (h *PowerHandle) Destroy() {
	if h.head.powerHandle == h {
		h.head.powerHandle = nil
	}
}

// cascadeFailed notifies the head's power handle (if any) of a `failed`
// event when the head itself is destroyed (spec.md §4.5: "Destruction of
// an output cascades failed to all its power handles").
func (h *Head) cascadeFailed() {
	if h.powerHandle != nil {
		h.powerHandle.finished = true
		h.powerHandle = nil
	}
}

// setIdlePower is how the idle power policy changes power state without
// going through the client-facing on/off restriction, since
// standby/suspend are valid compositor-initiated substates.
func (h *Head) setIdlePower(state PowerState) {
	h.Power = state
	if h.powerHandle != nil {
		h.powerHandle.onMode(state)
	}
}
