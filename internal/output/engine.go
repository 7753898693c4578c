package output

import (
	"fmt"
	"time"

	"github.com/bnema/wlcore/internal/spine"
)

// defaultIdleStandbySeconds is used until a SettingChanged event supplies
// a different value, matching spec.md §6's UserActivityDetected contract
// of resetting on activity.
const defaultIdleStandbySeconds = 5 * 60

// TimerScheduler is the subset of the Event Spine's API the idle power
// policy needs.
type TimerScheduler interface {
	RegisterTimer(d time.Duration, callback func()) spine.TimerHandle
	CancelTimer(handle spine.TimerHandle)
}

// Engine is the Output Engine: the head set, the output-set serial, and
// the idle power policy (spec.md §4.5).
type Engine struct {
	heads  map[uint32]*Head
	nextID uint32
	serial uint32

	idleStandby time.Duration
	scheduler   TimerScheduler
	idleHandle  spine.TimerHandle
	hasIdle     bool

	onHeadsChanged func()
}

// NewEngine constructs an empty Output Engine. onHeadsChanged is called
// whenever the head set or output-set serial changes, so the caller can
// broadcast the new set to bound management clients.
func NewEngine(scheduler TimerScheduler, onHeadsChanged func()) *Engine {
	return &Engine{
		heads:          make(map[uint32]*Head),
		idleStandby:    defaultIdleStandbySeconds * time.Second,
		scheduler:      scheduler,
		onHeadsChanged: onHeadsChanged,
	}
}

// Serial returns the current output-set serial.
func (e *Engine) Serial() uint32 { return e.serial }

func (e *Engine) bumpSerial() {
	e.serial++
	if e.onHeadsChanged != nil {
		e.onHeadsChanged()
	}
}

// Heads returns every currently known output head.
func (e *Engine) Heads() []*Head {
	out := make([]*Head, 0, len(e.heads))
	for _, h := range e.heads {
		out = append(out, h)
	}
	return out
}

// Head looks up a head by id.
func (e *Engine) Head(id uint32) (*Head, bool) {
	h, ok := e.heads[id]
	return h, ok
}

// AddHead registers a newly hot-plugged output (spec.md §4.5
// "Hot-plug"). Bumps the output-set serial.
func (e *Engine) AddHead(h Head) *Head {
	e.nextID++
	h.ID = e.nextID
	stored := h
	e.heads[stored.ID] = &stored
	e.bumpSerial()
	return &stored
}

// RemoveHead destroys a head, cascading `failed` to its power handle and
// bumping the output-set serial. The caller is responsible for signaling
// Window Mechanics that surfaces on this head need relayout.
func (e *Engine) RemoveHead(id uint32) error {
	h, ok := e.heads[id]
	if !ok {
		return fmt.Errorf("output: unknown head %d", id)
	}
	h.cascadeFailed()
	delete(e.heads, id)
	e.bumpSerial()
	return nil
}

// SetIdleStandbySeconds updates the idle policy's standby duration, e.g.
// on a SettingChanged("output.idle_standby_seconds") bus event.
func (e *Engine) SetIdleStandbySeconds(seconds int) {
	if seconds <= 0 {
		return
	}
	e.idleStandby = time.Duration(seconds) * time.Second
	e.ResetIdleTimer()
}

// ResetIdleTimer cancels any outstanding idle timer and rearms it.
// cmd/run.go calls it on every input device read.
func (e *Engine) ResetIdleTimer() {
	if e.scheduler == nil {
		return
	}
	if e.hasIdle {
		e.scheduler.CancelTimer(e.idleHandle)
	}
	for _, h := range e.heads {
		if h.Power == PowerStandby || h.Power == PowerSuspend {
			h.setIdlePower(PowerOn)
		}
	}
	e.idleHandle = e.scheduler.RegisterTimer(e.idleStandby, e.enterStandby)
	e.hasIdle = true
}

func (e *Engine) enterStandby() {
	for _, h := range e.heads {
		if h.Enabled {
			h.setIdlePower(PowerStandby)
		}
	}
	e.hasIdle = false
}
