package wm

import (
	"testing"

	"github.com/bnema/wlcore/internal/shell"
	"github.com/bnema/wlcore/internal/surface"
)

func newTestToplevel(t *testing.T, surfaceEngine *surface.Engine, client *surface.Client) (surface.ID, *shell.Toplevel) {
	t.Helper()
	s := surfaceEngine.CreateSurface(client)
	xs, err := shell.NewXdgSurface(s)
	if err != nil {
		t.Fatalf("NewXdgSurface: %v", err)
	}
	tl, err := shell.NewToplevel(xs)
	if err != nil {
		t.Fatalf("NewToplevel: %v", err)
	}
	xs.ConfigureSender = func(shell.Configure) {}
	return s.ID, tl
}

func surfaceEngineForTest() *surface.Engine {
	return surface.NewEngine()
}

func newTestEngine() (*Engine, *surface.Engine, *surface.Client, []bool) {
	se := surface.NewEngine()
	client := se.BindClient()
	var damaged []bool
	e := NewEngine(Config{
		Damage: func() { damaged = append(damaged, true) },
	})
	return e, se, client, damaged
}

func TestManageAddsWindowToSpace(t *testing.T) {
	e, se, client, _ := newTestEngine()
	id, tl := newTestToplevel(t, se, client)

	e.Manage(id, "win1", tl)
	if len(e.Space().Windows()) != 1 {
		t.Fatalf("expected one managed window, got %d", len(e.Space().Windows()))
	}
}

func TestSurfaceDestructionRemovesWindowFromSpace(t *testing.T) {
	e, se, client, _ := newTestEngine()
	id, tl := newTestToplevel(t, se, client)
	e.Manage(id, "win1", tl)

	se.DestroySurface(tl.Xdg.Surface)

	if len(e.Space().Windows()) != 0 {
		t.Fatalf("expected window removed from space after surface destruction")
	}
}

func TestAckConfigurePromotesPendingGeometry(t *testing.T) {
	e, se, client, _ := newTestEngine()
	id, tl := newTestToplevel(t, se, client)
	w := e.Manage(id, "win1", tl)

	w.pendingGeometry = Rect{Width: 800, Height: 600}
	w.pendingSerial = 99
	w.hasPending = true

	e.AckConfigure(id, 99)
	if w.Geometry != (Rect{Width: 800, Height: 600}) {
		t.Fatalf("expected geometry promoted, got %+v", w.Geometry)
	}
	if w.hasPending {
		t.Fatalf("expected hasPending cleared")
	}
}

func TestAckConfigureWrongSerialIsNoOp(t *testing.T) {
	e, se, client, _ := newTestEngine()
	id, tl := newTestToplevel(t, se, client)
	w := e.Manage(id, "win1", tl)

	w.pendingGeometry = Rect{Width: 800, Height: 600}
	w.pendingSerial = 99
	w.hasPending = true

	e.AckConfigure(id, 1)
	if w.hasPending != true || w.Geometry != (Rect{}) {
		t.Fatalf("expected no promotion on serial mismatch")
	}
}

func TestSpaceRaiseMovesWindowToTop(t *testing.T) {
	e, se, client, _ := newTestEngine()
	id1, tl1 := newTestToplevel(t, se, client)
	id2, tl2 := newTestToplevel(t, se, client)
	w1 := e.Manage(id1, "win1", tl1)
	e.Manage(id2, "win2", tl2)

	e.Space().raise(w1)
	windows := e.Space().Windows()
	if windows[len(windows)-1] != w1 {
		t.Fatalf("expected win1 raised to top of stack")
	}
}
