package wm

import "testing"

func TestSetFocusActivatesAndRaisesTarget(t *testing.T) {
	var focusedSurface uint64
	var hasFocus bool
	se := surfaceEngineForTest()
	client := se.BindClient()
	e := NewEngine(Config{SetFocus: func(id uint64, has bool) {
		focusedSurface, hasFocus = id, has
	}})

	id1, tl1 := newTestToplevel(t, se, client)
	id2, tl2 := newTestToplevel(t, se, client)
	e.Manage(id1, "win1", tl1)
	w2 := e.Manage(id2, "win2", tl2)

	e.SetFocus("win2")

	if !hasFocus || focusedSurface != uint64(id2) {
		t.Fatalf("expected input focus moved to win2's surface, got id=%d has=%v", focusedSurface, hasFocus)
	}
	if !tl2.States.Activated {
		t.Fatalf("expected win2 activated")
	}
	windows := e.Space().Windows()
	if windows[len(windows)-1] != w2 {
		t.Fatalf("expected win2 raised to top of stack")
	}
}

func TestSetFocusClearsPreviousActivatedFlag(t *testing.T) {
	se := surfaceEngineForTest()
	client := se.BindClient()
	e := NewEngine(Config{SetFocus: func(uint64, bool) {}})

	id1, tl1 := newTestToplevel(t, se, client)
	id2, tl2 := newTestToplevel(t, se, client)
	e.Manage(id1, "win1", tl1)
	e.Manage(id2, "win2", tl2)

	e.SetFocus("win1")
	if !tl1.States.Activated {
		t.Fatalf("expected win1 activated")
	}

	e.SetFocus("win2")
	if tl1.States.Activated {
		t.Fatalf("expected win1 deactivated once focus moved away")
	}
	if !tl2.States.Activated {
		t.Fatalf("expected win2 activated")
	}
}

func TestSetFocusToUnknownDomainClearsFocus(t *testing.T) {
	var hasFocus bool
	se := surfaceEngineForTest()
	client := se.BindClient()
	e := NewEngine(Config{SetFocus: func(_ uint64, has bool) { hasFocus = has }})

	id1, tl1 := newTestToplevel(t, se, client)
	e.Manage(id1, "win1", tl1)

	e.SetFocus("win1")
	e.SetFocus("ghost")

	if hasFocus {
		t.Fatalf("expected focus cleared when target domain is unknown")
	}
	if tl1.States.Activated {
		t.Fatalf("expected win1 deactivated after focus cleared")
	}
}

func TestSetFocusSameDomainIsNoOp(t *testing.T) {
	calls := 0
	se := surfaceEngineForTest()
	client := se.BindClient()
	e := NewEngine(Config{SetFocus: func(uint64, bool) { calls++ }})

	id1, tl1 := newTestToplevel(t, se, client)
	e.Manage(id1, "win1", tl1)

	e.SetFocus("win1")
	e.SetFocus("win1")

	if calls != 1 {
		t.Fatalf("expected exactly one SetFocus delegate call for repeated focus, got %d", calls)
	}
}
