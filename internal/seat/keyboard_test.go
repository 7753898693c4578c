package seat

import (
	"testing"
	"time"

	"github.com/bnema/wlcore/internal/seat/xkb"
	"github.com/bnema/wlcore/internal/spine"
)

type fakeKeyboardScheduler struct {
	next    spine.TimerHandle
	pending map[spine.TimerHandle]func()
}

func newFakeKeyboardScheduler() *fakeKeyboardScheduler {
	return &fakeKeyboardScheduler{pending: make(map[spine.TimerHandle]func())}
}

func (f *fakeKeyboardScheduler) RegisterTimer(d time.Duration, cb func()) spine.TimerHandle {
	f.next++
	f.pending[f.next] = cb
	return f.next
}

func (f *fakeKeyboardScheduler) RegisterPeriodicTimer(d, period time.Duration, cb func()) spine.TimerHandle {
	return f.RegisterTimer(d, cb)
}

func (f *fakeKeyboardScheduler) CancelTimer(h spine.TimerHandle) {
	delete(f.pending, h)
}

func (f *fakeKeyboardScheduler) fire(h spine.TimerHandle) {
	if cb, ok := f.pending[h]; ok {
		delete(f.pending, h)
		cb()
	}
}

func (f *fakeKeyboardScheduler) fireAll() {
	due := make(map[spine.TimerHandle]func(), len(f.pending))
	for h, cb := range f.pending {
		due[h] = cb
	}
	for h, cb := range due {
		if _, ok := f.pending[h]; !ok {
			continue
		}
		delete(f.pending, h)
		cb()
	}
}

type fakeKeyboardDelegate struct {
	mods       []xkb.Modifier
	keys       []uint32
	enterCalls int
	leaveCalls int
}

func (f *fakeKeyboardDelegate) SendModifiers(mods xkb.Modifier) { f.mods = append(f.mods, mods) }
func (f *fakeKeyboardDelegate) SendKey(code uint32, pressed bool, serial uint32) {
	f.keys = append(f.keys, code)
}
func (f *fakeKeyboardDelegate) SendEnter(surfaceID uint64, pressed []uint32, mods xkb.Modifier, serial uint32) {
	f.enterCalls++
}
func (f *fakeKeyboardDelegate) SendLeave(serial uint32) { f.leaveCalls++ }

func TestHandleKeyDeliversKeyEvent(t *testing.T) {
	sched := newFakeKeyboardScheduler()
	del := &fakeKeyboardDelegate{}
	kb := NewKeyboard(sched, del)

	kb.HandleKey(16, true, 1) // evdue KEY_Q -> xkb 24
	if len(del.keys) != 1 || del.keys[0] != 24 {
		t.Fatalf("expected key 24 delivered, got %v", del.keys)
	}
}

func TestHandleKeyModifierChangeNotifies(t *testing.T) {
	sched := newFakeKeyboardScheduler()
	del := &fakeKeyboardDelegate{}
	kb := NewKeyboard(sched, del)

	kb.HandleKey(42, true, 1) // evdev KEY_LEFTSHIFT(42) -> xkb 50
	if len(del.mods) != 1 {
		t.Fatalf("expected one modifier broadcast, got %d", len(del.mods))
	}
	if del.mods[0]&xkb.ModShift == 0 {
		t.Fatalf("expected shift bit set")
	}
}

func TestHandleKeySchedulesRepeatForPrintableKey(t *testing.T) {
	sched := newFakeKeyboardScheduler()
	del := &fakeKeyboardDelegate{}
	kb := NewKeyboard(sched, del)

	kb.HandleKey(16, true, 1) // 'q'
	if len(sched.pending) != 1 {
		t.Fatalf("expected a repeat timer scheduled, got %d pending", len(sched.pending))
	}

	sched.fireAll()
	if len(del.keys) != 2 {
		t.Fatalf("expected repeat to deliver a second key event, got %d", len(del.keys))
	}
}

func TestHandleKeyReleaseCancelsRepeat(t *testing.T) {
	sched := newFakeKeyboardScheduler()
	del := &fakeKeyboardDelegate{}
	kb := NewKeyboard(sched, del)

	kb.HandleKey(16, true, 1)
	kb.HandleKey(16, false, 2)
	if len(sched.pending) != 0 {
		t.Fatalf("expected repeat timer cancelled on release, got %d pending", len(sched.pending))
	}
}

func TestHandleKeyNonPrintableDoesNotRepeat(t *testing.T) {
	sched := newFakeKeyboardScheduler()
	del := &fakeKeyboardDelegate{}
	kb := NewKeyboard(sched, del)

	kb.HandleKey(42, true, 1) // shift, not in keysym table
	if len(sched.pending) != 0 {
		t.Fatalf("expected no repeat timer for modifier-only key, got %d", len(sched.pending))
	}
}

func TestSetFocusSendsLeaveThenEnter(t *testing.T) {
	sched := newFakeKeyboardScheduler()
	del := &fakeKeyboardDelegate{}
	kb := NewKeyboard(sched, del)

	kb.SetFocus(1, true)
	if del.enterCalls != 1 || del.leaveCalls != 0 {
		t.Fatalf("expected enter only on first focus, got enter=%d leave=%d", del.enterCalls, del.leaveCalls)
	}

	kb.SetFocus(2, true)
	if del.leaveCalls != 1 || del.enterCalls != 2 {
		t.Fatalf("expected leave+enter on refocus, got enter=%d leave=%d", del.enterCalls, del.leaveCalls)
	}
}

func TestSetFocusCancelsInFlightRepeat(t *testing.T) {
	sched := newFakeKeyboardScheduler()
	del := &fakeKeyboardDelegate{}
	kb := NewKeyboard(sched, del)

	kb.HandleKey(16, true, 1)
	if len(sched.pending) != 1 {
		t.Fatalf("expected repeat timer scheduled")
	}
	kb.SetFocus(1, true)
	if len(sched.pending) != 0 {
		t.Fatalf("expected focus change to cancel repeat, got %d pending", len(sched.pending))
	}
}

func TestFocusedSurfaceReflectsState(t *testing.T) {
	sched := newFakeKeyboardScheduler()
	del := &fakeKeyboardDelegate{}
	kb := NewKeyboard(sched, del)

	if _, has := kb.FocusedSurface(); has {
		t.Fatalf("expected no focus initially")
	}
	kb.SetFocus(7, true)
	id, has := kb.FocusedSurface()
	if !has || id != 7 {
		t.Fatalf("expected focus on surface 7, got id=%d has=%v", id, has)
	}
	kb.SetFocus(0, false)
	if _, has := kb.FocusedSurface(); has {
		t.Fatalf("expected focus cleared")
	}
}
