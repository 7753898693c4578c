// Package wm implements Window Mechanics: applies externally computed
// layouts to the Shell Engine, executes interactive move/resize grabs
// with snap target computation, and enforces focus transitions
// (spec.md §4.6). It never decides placement or focus itself — those
// decisions always come from an external policy collaborator consumed
// as a pure function of current state.
package wm

import (
	"github.com/bnema/wlcore/internal/logger"
	"github.com/bnema/wlcore/internal/shell"
	"github.com/bnema/wlcore/internal/surface"
)

var wmLogger = logger.WithPrefix("wm")

// Rect is a plain axis-aligned rectangle in global logical coordinates,
// the type every Window Mechanics collaborator (layout, snap policy)
// speaks in.
type Rect struct {
	X, Y, Width, Height int32
}

func (r Rect) Translated(dx, dy int32) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// SnapPolicy is the external pure-function collaborator consulted
// during interactive move/resize to compute a snap target, fixed
// concretely per spec.md §4.6/§9's expansion.
type SnapPolicy func(proposed Rect, others []Rect, workspace Rect, gap int) (snapped Rect, ok bool)

// DomainID is the identifier space an external policy collaborator
// uses to name windows, distinct from the internal surface.ID
// (spec.md §3 "Managed window": "external domain identifier (the
// identity used by the policy collaborator)").
type DomainID string

// ManagedWindow is the unifying record Window Mechanics tracks for
// every mapped toplevel (spec.md §3 "Managed window").
type ManagedWindow struct {
	ID       surface.ID
	Domain   DomainID
	Toplevel *shell.Toplevel

	Geometry        Rect
	pendingGeometry Rect
	pendingSerial   uint32
	hasPending      bool

	Mapped bool
}

// Space is the stacking-ordered collection of managed windows for one
// workspace (spec.md §3: "ordering in the space defines stacking").
type Space struct {
	windows []*ManagedWindow
	byID    map[surface.ID]*ManagedWindow
}

func newSpace() *Space {
	return &Space{byID: make(map[surface.ID]*ManagedWindow)}
}

// Windows returns the space's windows bottom-to-top.
func (sp *Space) Windows() []*ManagedWindow { return sp.windows }

func (sp *Space) lookup(id surface.ID) (*ManagedWindow, bool) {
	w, ok := sp.byID[id]
	return w, ok
}

func (sp *Space) lookupDomain(domain DomainID) (*ManagedWindow, bool) {
	for _, w := range sp.windows {
		if w.Domain == domain {
			return w, true
		}
	}
	return nil, false
}

func (sp *Space) add(w *ManagedWindow) {
	sp.windows = append(sp.windows, w)
	sp.byID[w.ID] = w
}

func (sp *Space) remove(id surface.ID) {
	w, ok := sp.byID[id]
	if !ok {
		return
	}
	delete(sp.byID, id)
	for i, candidate := range sp.windows {
		if candidate == w {
			sp.windows = append(sp.windows[:i], sp.windows[i+1:]...)
			break
		}
	}
}

// raise moves w to the top of the stacking order.
func (sp *Space) raise(w *ManagedWindow) {
	sp.remove(w.ID)
	sp.windows = append(sp.windows, w)
	sp.byID[w.ID] = w
}

// rectsExcept returns the geometry of every other mapped window, used
// as the "others" input to the snap policy.
func (sp *Space) rectsExcept(exclude surface.ID) []Rect {
	rects := make([]Rect, 0, len(sp.windows))
	for _, w := range sp.windows {
		if w.ID == exclude || !w.Mapped {
			continue
		}
		rects = append(rects, w.Geometry)
	}
	return rects
}

// DamageNotifier is called after an operation affects output contents,
// e.g. to schedule a repaint on the relevant outputs.
type DamageNotifier func()

// FocusSetter is the Input Engine collaborator Window Mechanics drives
// on focus changes (spec.md §4.6 "Focus enforcement").
type FocusSetter func(surfaceID uint64, hasSurface bool)

// Engine is the Window Mechanics aggregate: one space plus the
// collaborators it was wired with.
type Engine struct {
	space *Space

	snapPolicy SnapPolicy
	setFocus   FocusSetter
	damage     DamageNotifier

	focusedDomain DomainID
	hasFocus      bool

	grab *grabState
}

// Config bundles the collaborators an Engine needs.
type Config struct {
	SnapPolicy SnapPolicy
	SetFocus   FocusSetter
	Damage     DamageNotifier
}

// NewEngine constructs an empty Window Mechanics engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		space:      newSpace(),
		snapPolicy: cfg.SnapPolicy,
		setFocus:   cfg.SetFocus,
		damage:     cfg.Damage,
	}
}

// Space exposes the engine's single space for read access (stacking
// order, current windows).
func (e *Engine) Space() *Space { return e.space }

// Manage registers a newly mapped toplevel under domain, per spec.md
// §8 scenario A: "Window Mechanics receives the new window". The
// window starts unmapped until the layout pass maps it.
func (e *Engine) Manage(id surface.ID, domain DomainID, tl *shell.Toplevel) *ManagedWindow {
	w := &ManagedWindow{ID: id, Domain: domain, Toplevel: tl}
	e.space.add(w)

	tl.Xdg.Surface.AddDestructionHook(func(*surface.Surface) {
		e.handleSurfaceDestroyed(id)
	})
	return w
}

// handleSurfaceDestroyed implements spec.md §8 scenario E: cancel any
// active grab on this window, release the pointer to normal focus
// resolution, and remove the window from the space.
func (e *Engine) handleSurfaceDestroyed(id surface.ID) {
	if e.grab != nil && e.grab.window.ID == id {
		e.cancelGrab()
	}
	if e.hasFocus {
		if w, ok := e.space.lookup(id); ok && w.Domain == e.focusedDomain {
			e.hasFocus = false
			e.focusedDomain = ""
		}
	}
	e.space.remove(id)
	e.notifyDamage()
}

func (e *Engine) notifyDamage() {
	if e.damage != nil {
		e.damage()
	}
}

// AckConfigure notifies the engine that the client has acked serial on
// id's toplevel, promoting the matching pending geometry to current
// applied geometry per spec.md §4.6 step 5.
func (e *Engine) AckConfigure(id surface.ID, serial uint32) {
	w, ok := e.space.lookup(id)
	if !ok || !w.hasPending || w.pendingSerial != serial {
		return
	}
	w.Geometry = w.pendingGeometry
	w.hasPending = false
}
