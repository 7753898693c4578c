package seat

import (
	"testing"

	"github.com/bnema/wlcore/internal/geom"
)

type fakePointerDelegate struct {
	enters, leaves, motions, buttons, axes int
	lastSurface                            uint64
}

func (f *fakePointerDelegate) SendEnter(surfaceID uint64, lx, ly float64, serial uint32) {
	f.enters++
	f.lastSurface = surfaceID
}
func (f *fakePointerDelegate) SendLeave(serial uint32)                  { f.leaves++ }
func (f *fakePointerDelegate) SendMotion(lx, ly float64)                { f.motions++ }
func (f *fakePointerDelegate) SendButton(code uint32, pressed bool, serial uint32) { f.buttons++ }
func (f *fakePointerDelegate) SendAxis(h, v float64, discrete bool)     { f.axes++ }

func boundedHitTest(hits map[[2]int32]uint64) HitTester {
	return func(p geom.Point) (uint64, float64, float64, bool) {
		if id, ok := hits[[2]int32{p.X, p.Y}]; ok {
			return id, float64(p.X), float64(p.Y), true
		}
		return 0, 0, 0, false
	}
}

func TestPointerMotionClampsToBounds(t *testing.T) {
	del := &fakePointerDelegate{}
	hit := boundedHitTest(nil)
	p := NewPointer(geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}, del, hit, nil)

	p.Motion(-500, -500)
	x, y := p.Position()
	if x != 0 || y != 0 {
		t.Fatalf("expected clamp to (0,0), got (%v,%v)", x, y)
	}

	p.Motion(10000, 10000)
	x, y = p.Position()
	if x != 100 || y != 100 {
		t.Fatalf("expected clamp to (100,100), got (%v,%v)", x, y)
	}
}

func TestPointerMotionEntersAndLeavesSurface(t *testing.T) {
	del := &fakePointerDelegate{}
	hit := boundedHitTest(map[[2]int32]uint64{{5, 5}: 42})
	p := NewPointer(geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}, del, hit, nil)

	p.Motion(5, 5)
	if del.enters != 1 || del.lastSurface != 42 {
		t.Fatalf("expected enter on surface 42, got enters=%d surface=%d", del.enters, del.lastSurface)
	}

	p.Motion(50, 50) // moves off the only hit point
	if del.leaves != 1 {
		t.Fatalf("expected leave after moving off surface, got %d", del.leaves)
	}
}

func TestPointerMotionSwitchingSurfacesSendsLeaveThenEnter(t *testing.T) {
	del := &fakePointerDelegate{}
	hit := boundedHitTest(map[[2]int32]uint64{{5, 5}: 1, {6, 6}: 2})
	p := NewPointer(geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}, del, hit, nil)

	p.Motion(5, 5)
	p.Motion(1, 1)
	if del.enters != 2 || del.leaves != 1 {
		t.Fatalf("expected enter,leave,enter got enters=%d leaves=%d", del.enters, del.leaves)
	}
}

func TestPointerButtonTriggersFocusFollowsClick(t *testing.T) {
	del := &fakePointerDelegate{}
	hit := boundedHitTest(map[[2]int32]uint64{{5, 5}: 42})
	var clicked uint64
	onClick := func(surfaceID uint64) { clicked = surfaceID }
	p := NewPointer(geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}, del, hit, onClick)

	p.Motion(5, 5)
	p.Button(1, true)
	if clicked != 42 {
		t.Fatalf("expected click-to-focus on surface 42, got %d", clicked)
	}
}

type fakeGrab struct {
	motions, buttons, axes int
}

func (g *fakeGrab) Motion(lx, ly float64)                  { g.motions++ }
func (g *fakeGrab) Button(code uint32, pressed bool)       { g.buttons++ }
func (g *fakeGrab) Axis(h, v float64, discrete bool)       { g.axes++ }

func TestPointerGrabRedirectsEvents(t *testing.T) {
	del := &fakePointerDelegate{}
	hit := boundedHitTest(nil)
	p := NewPointer(geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}, del, hit, nil)

	grab := &fakeGrab{}
	p.SetGrab(grab)
	p.Motion(1, 1)
	p.Button(1, true)
	p.Axis(1, 1, false)

	if grab.motions != 1 || grab.buttons != 1 || grab.axes != 1 {
		t.Fatalf("expected all events redirected to grab, got %+v", grab)
	}
	if del.enters != 0 || del.motions != 0 {
		t.Fatalf("expected no delegate events during grab")
	}
}

func TestPointerClearGrabResumesNormalRouting(t *testing.T) {
	del := &fakePointerDelegate{}
	hit := boundedHitTest(map[[2]int32]uint64{{1, 1}: 9})
	p := NewPointer(geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}, del, hit, nil)

	grab := &fakeGrab{}
	p.SetGrab(grab)
	p.ClearGrab()
	p.Motion(1, 1)
	if del.enters != 1 {
		t.Fatalf("expected normal hit-test routing after grab cleared")
	}
}
