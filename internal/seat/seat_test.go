package seat

import (
	"testing"

	"github.com/bnema/wlcore/internal/geom"
)

func TestSeatAttachAddsCapability(t *testing.T) {
	var changes []Capability
	s := NewSeat("seat0", func(c Capability) { changes = append(changes, c) })

	sched := newFakeKeyboardScheduler()
	s.AttachKeyboard(sched, &fakeKeyboardDelegate{})
	if !s.HasCapability(CapabilityKeyboard) {
		t.Fatalf("expected keyboard capability after attach")
	}
	if len(changes) != 1 {
		t.Fatalf("expected one capability-changed notification, got %d", len(changes))
	}
}

func TestSeatAttachTwiceDoesNotDoubleNotify(t *testing.T) {
	var changes int
	s := NewSeat("seat0", func(c Capability) { changes++ })

	bounds := geom.Rect{Width: 100, Height: 100}
	s.AttachPointer(bounds, &fakePointerDelegate{}, boundedHitTest(nil), nil)
	s.AttachPointer(bounds, &fakePointerDelegate{}, boundedHitTest(nil), nil)
	if changes != 1 {
		t.Fatalf("expected capability notified once even though attached twice, got %d", changes)
	}
}

func TestSeatDetachRemovesCapability(t *testing.T) {
	s := NewSeat("seat0", nil)
	s.AttachTouch(&fakeTouchDelegate{}, boundedHitTest(nil))
	if !s.HasCapability(CapabilityTouch) {
		t.Fatalf("expected touch capability")
	}
	s.DetachTouch()
	if s.HasCapability(CapabilityTouch) {
		t.Fatalf("expected touch capability withdrawn")
	}
}

func TestSeatDetachWithoutAttachIsNoOp(t *testing.T) {
	var changes int
	s := NewSeat("seat0", func(c Capability) { changes++ })
	s.DetachKeyboard()
	if changes != 0 {
		t.Fatalf("expected no notification detaching a capability never held")
	}
}

func TestSeatCursorImageRoundTrips(t *testing.T) {
	s := NewSeat("seat0", nil)
	img := CursorImage{Kind: CursorNamedTheme, ThemeName: "default", HotspotX: 1, HotspotY: 2}
	s.SetCursorImage(img)
	if got := s.CursorImage(); got != img {
		t.Fatalf("expected cursor image round-trip, got %+v", got)
	}
}

func TestSeatLogGestureDoesNotPanic(t *testing.T) {
	s := NewSeat("seat0", nil)
	s.LogGesture(GesturePinch, 2)
}

func TestSeatMultipleCapabilitiesCombine(t *testing.T) {
	s := NewSeat("seat0", nil)
	s.AttachKeyboard(newFakeKeyboardScheduler(), &fakeKeyboardDelegate{})
	s.AttachPointer(geom.Rect{Width: 10, Height: 10}, &fakePointerDelegate{}, boundedHitTest(nil), nil)

	if !s.HasCapability(CapabilityKeyboard) || !s.HasCapability(CapabilityPointer) {
		t.Fatalf("expected both capabilities present")
	}
	if s.HasCapability(CapabilityTouch) {
		t.Fatalf("expected no touch capability")
	}
}
