package wm

// Layout is one pass's input: a target rectangle plus tiling-mode
// metadata for every domain window the policy collaborator placed
// (spec.md §4.6 "Layout application").
type Layout struct {
	Workspace       string
	Targets         map[DomainID]Rect
	MaximizedFocus  DomainID
	FocusedDomain   DomainID
}

// ApplyLayout implements spec.md §4.6's layout-application algorithm:
// for each targeted window, configure it toward its new geometry if
// changed; unmap anything present in the space but absent from the
// layout; damage affected outputs once at the end.
func (e *Engine) ApplyLayout(layout Layout) {
	seen := make(map[DomainID]bool, len(layout.Targets))
	changed := false

	for domain, target := range layout.Targets {
		seen[domain] = true
		w, ok := e.space.lookupDomain(domain)
		if !ok {
			wmLogger.Warnf("layout references unknown window domain=%s", domain)
			continue
		}

		if !w.Mapped {
			w.Mapped = true
			changed = true
		}

		if w.Geometry == target && w.Mapped {
			continue
		}

		tl := w.Toplevel
		tl.States.Maximized = domain == layout.MaximizedFocus
		tl.States.Activated = domain == layout.FocusedDomain

		serial := tl.ConfigureTo(target.Width, target.Height)
		w.pendingGeometry = target
		w.pendingSerial = serial
		w.hasPending = true
		changed = true
	}

	for _, w := range e.space.windows {
		if !seen[w.Domain] && w.Mapped {
			w.Mapped = false
			changed = true
		}
	}

	if changed {
		e.notifyDamage()
	}
}
