package wm

import (
	"github.com/bnema/wlcore/internal/geom"
	"github.com/bnema/wlcore/internal/surface"
)

// HitTest resolves the topmost mapped window whose geometry contains p,
// walking the stacking order back to front, and satisfies the Input
// Engine's seat.HitTester contract directly (spec.md §4.4: hit-testing
// against mapped surfaces is Window Mechanics' concern, not the Input
// Engine's).
func (e *Engine) HitTest(p geom.Point) (surfaceID uint64, localX, localY float64, ok bool) {
	windows := e.space.windows
	for i := len(windows) - 1; i >= 0; i-- {
		w := windows[i]
		if !w.Mapped {
			continue
		}
		g := w.Geometry
		if p.X < g.X || p.Y < g.Y || p.X >= g.X+g.Width || p.Y >= g.Y+g.Height {
			continue
		}
		return uint64(w.ID), float64(p.X - g.X), float64(p.Y - g.Y), true
	}
	return 0, 0, 0, false
}

// FocusSurface satisfies the Input Engine's seat.FocusFollowsClick
// contract: a pointer-button focus-follows-click decision arrives keyed
// by surface.ID, so it is translated to the matching domain and handed
// to SetFocus, the single authoritative focus-change entry point
// (spec.md §4.6).
func (e *Engine) FocusSurface(surfaceID uint64) {
	w, ok := e.space.lookup(surface.ID(surfaceID))
	if !ok {
		return
	}
	e.SetFocus(w.Domain)
}
