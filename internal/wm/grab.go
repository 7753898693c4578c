package wm

// grabKind distinguishes a move grab from a resize grab; a resize grab
// additionally carries which edges track the pointer.
type grabKind int

const (
	grabMove grabKind = iota
	grabResize
)

// ResizeEdges is a bitmask of which sides of the initial geometry track
// the pointer during an interactive resize (spec.md §4.6 "Interactive
// resize": "the edge/corner parameter ... determines which sides of the
// initial geometry track the pointer").
type ResizeEdges int

const (
	EdgeTop ResizeEdges = 1 << iota
	EdgeBottom
	EdgeLeft
	EdgeRight
)

type grabState struct {
	kind  grabKind
	edges ResizeEdges

	window *ManagedWindow

	initialPointerX, initialPointerY float64
	initialGeometry                  Rect

	workspace Rect
	gap       int
}

// BeginMove starts an interactive move grab, per spec.md §4.6
// "Interactive move": captures the window, initial pointer position,
// and initial geometry, then installs itself as the seat's pointer
// grab via the returned handler. The caller (the layer owning the
// seat) is responsible for calling seat.Pointer.SetGrab with it.
func (e *Engine) BeginMove(domain DomainID, pointerX, pointerY float64, workspace Rect, gap int) (*MoveResizeGrab, bool) {
	w, ok := e.space.lookupDomain(domain)
	if !ok || !w.Mapped {
		return nil, false
	}
	e.grab = &grabState{
		kind:            grabMove,
		window:          w,
		initialPointerX: pointerX,
		initialPointerY: pointerY,
		initialGeometry: w.Geometry,
		workspace:       workspace,
		gap:             gap,
	}
	return &MoveResizeGrab{engine: e}, true
}

// BeginResize starts an interactive resize grab, additionally enforcing
// the toplevel's min/max size hints as edges move (spec.md §4.6
// "Interactive resize").
func (e *Engine) BeginResize(domain DomainID, edges ResizeEdges, pointerX, pointerY float64, workspace Rect, gap int) (*MoveResizeGrab, bool) {
	w, ok := e.space.lookupDomain(domain)
	if !ok || !w.Mapped {
		return nil, false
	}
	e.grab = &grabState{
		kind:            grabResize,
		edges:           edges,
		window:          w,
		initialPointerX: pointerX,
		initialPointerY: pointerY,
		initialGeometry: w.Geometry,
		workspace:       workspace,
		gap:             gap,
	}
	w.Toplevel.BeginResize()
	return &MoveResizeGrab{engine: e}, true
}

// MoveResizeGrab implements seat.PointerGrab: the Input Engine's
// Pointer type redirects Motion/Button/Axis calls here unconditionally
// for the grab's duration.
type MoveResizeGrab struct {
	engine *Engine
}

// Motion recomputes the proposed geometry from pointer displacement,
// consults the snap policy, and applies the result in-memory without a
// configure (spec.md §4.6 "Interactive move" step 3).
func (g *MoveResizeGrab) Motion(pointerX, pointerY float64) {
	gs := g.engine.grab
	if gs == nil {
		return
	}
	dx := int32(pointerX - gs.initialPointerX)
	dy := int32(pointerY - gs.initialPointerY)

	var proposed Rect
	switch gs.kind {
	case grabMove:
		proposed = gs.initialGeometry.Translated(dx, dy)
	case grabResize:
		proposed = applyResizeEdges(gs.initialGeometry, gs.edges, dx, dy)
		proposed = clampToSizeHints(proposed, gs.window.Toplevel)
	}

	others := g.engine.space.rectsExcept(gs.window.ID)
	if g.engine.snapPolicy != nil {
		if snapped, ok := g.engine.snapPolicy(proposed, others, gs.workspace, gs.gap); ok {
			proposed = snapped
		}
	}

	gs.window.Geometry = proposed
	g.engine.notifyDamage()
}

// Button finalizes the grab on release; any other button during the
// grab is ignored (real compositors allow a second click to do
// nothing while a grab is active).
func (g *MoveResizeGrab) Button(code uint32, pressed bool) {
	if pressed {
		return
	}
	g.engine.finishGrab()
}

// Axis is a no-op during a move/resize grab.
func (g *MoveResizeGrab) Axis(horizontal, vertical float64, discrete bool) {}

// finishGrab emits the final configure with the settled geometry and
// uninstalls the grab (spec.md §4.6 "Interactive move" step 4).
func (e *Engine) finishGrab() {
	gs := e.grab
	if gs == nil {
		return
	}
	if gs.kind == grabResize {
		gs.window.Toplevel.EndResize()
	}
	serial := gs.window.Toplevel.ConfigureTo(gs.window.Geometry.Width, gs.window.Geometry.Height)
	gs.window.pendingGeometry = gs.window.Geometry
	gs.window.pendingSerial = serial
	gs.window.hasPending = true
	e.grab = nil
}

// cancelGrab drops the grab without emitting a final configure, used
// when the grabbed window's surface is destroyed mid-grab (spec.md §8
// scenario E).
func (e *Engine) cancelGrab() {
	if e.grab == nil {
		return
	}
	e.grab = nil
}

// HasActiveGrab reports whether a move/resize grab is currently live.
func (e *Engine) HasActiveGrab() bool { return e.grab != nil }

func applyResizeEdges(initial Rect, edges ResizeEdges, dx, dy int32) Rect {
	r := initial
	if edges&EdgeLeft != 0 {
		r.X += dx
		r.Width -= dx
	}
	if edges&EdgeRight != 0 {
		r.Width += dx
	}
	if edges&EdgeTop != 0 {
		r.Y += dy
		r.Height -= dy
	}
	if edges&EdgeBottom != 0 {
		r.Height += dy
	}
	return r
}

// toplevelSizeHints is the minimal view of a toplevel's size hints
// grab.go needs, satisfied by *shell.Toplevel.
type toplevelSizeHints interface {
	SizeHints() (minW, minH, maxW, maxH int32)
}

func clampToSizeHints(r Rect, hints toplevelSizeHints) Rect {
	minW, minH, maxW, maxH := hints.SizeHints()
	if minW > 0 && r.Width < minW {
		r.Width = minW
	}
	if minH > 0 && r.Height < minH {
		r.Height = minH
	}
	if maxW > 0 && r.Width > maxW {
		r.Width = maxW
	}
	if maxH > 0 && r.Height > maxH {
		r.Height = maxH
	}
	return r
}
