// Package bus defines the small closed set of events that the
// auxiliary-thread collaborators (session/idle monitor, udev-style device
// watcher, settings daemon) post onto the Event Spine. Every event
// normalizes onto the spine's cross-thread channel (spec.md §6): a
// collaborator goroutine calls spine.Loop.PostFromOtherThread with one of
// these values, and a handler registered on the loop thread receives it.
package bus

// Event is implemented only by the types in this package; the unexported
// method closes the set so a switch over Event can be exhaustive.
type Event interface {
	isBusEvent()
}

// UserActivity reports that the user touched an input device. No handler
// for it is registered; cmd/run.go resets the Output Engine's standby
// timer directly on each input device read.
type UserActivity struct{}

// PrepareForSleep marks the start (Before: true) or end (Before: false)
// of a system suspend/resume cycle, mirroring the logind signal of the
// same name. Before=true should flush pending output power transactions;
// Before=false should re-probe every head.
type PrepareForSleep struct {
	Before bool
}

// SessionLock reports a session lock or unlock. Locked=true should blank
// outputs per the idle policy regardless of the standby timer.
type SessionLock struct {
	Locked bool
}

// SettingChanged reports that a configuration value changed at runtime
// (an edited wlcore.toml, a reloaded theme). Path names the dotted config
// key, e.g. "output.idle_standby_seconds".
type SettingChanged struct {
	Path string
}

// DeviceAdded reports a newly-enumerated input or output device node,
// e.g. "/dev/input/event7". cmd/run.go handles it by opening the node
// and attaching it to the Input Engine; the Output Engine does not
// subscribe.
type DeviceAdded struct {
	Path string
}

// DeviceRemoved is the inverse of DeviceAdded.
type DeviceRemoved struct {
	Path string
}

func (UserActivity) isBusEvent()    {}
func (PrepareForSleep) isBusEvent() {}
func (SessionLock) isBusEvent()     {}
func (SettingChanged) isBusEvent()  {}
func (DeviceAdded) isBusEvent()     {}
func (DeviceRemoved) isBusEvent()   {}
