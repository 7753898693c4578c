package wm

// SetFocus implements spec.md §4.6 "Focus enforcement": resolves domain
// to a managed window (or none), tells the Input Engine to move
// keyboard focus, clears the previous toplevel's activated flag, and
// raises+activates the new one — mirroring the teacher's
// ClientManager.SwitchToClient pattern of updating the "current focus"
// field atomically together with the stacking raise.
func (e *Engine) SetFocus(domain DomainID) {
	if e.hasFocus && e.focusedDomain == domain {
		return
	}

	var newSurfaceID uint64
	var newWindow *ManagedWindow
	hasTarget := domain != ""
	if hasTarget {
		w, ok := e.space.lookupDomain(domain)
		if !ok {
			wmLogger.Warnf("focus request for unknown window domain=%s", domain)
			hasTarget = false
		} else {
			newWindow = w
			newSurfaceID = uint64(w.ID)
		}
	}

	if prev, ok := e.space.lookupDomain(e.focusedDomain); e.hasFocus && ok && prev.Domain != domain {
		prev.Toplevel.SetActivated(false)
		prev.Toplevel.ConfigureTo(prev.Geometry.Width, prev.Geometry.Height)
	}

	if e.setFocus != nil {
		e.setFocus(newSurfaceID, hasTarget)
	}

	e.hasFocus = hasTarget
	e.focusedDomain = domain

	if newWindow != nil {
		newWindow.Toplevel.SetActivated(true)
		e.space.raise(newWindow)
		newWindow.Toplevel.ConfigureTo(newWindow.Geometry.Width, newWindow.Geometry.Height)
	}

	e.notifyDamage()
}

// FocusedDomain returns the currently focused domain identifier and
// whether any window holds focus.
func (e *Engine) FocusedDomain() (DomainID, bool) { return e.focusedDomain, e.hasFocus }
