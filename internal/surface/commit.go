package surface

import "github.com/bnema/wlcore/internal/geom"

// CommitResult carries the per-commit outcome a caller (typically the
// Shell Engine's role-specific commit logic, or a renderer bridge) needs
// without having to re-derive it from surface state.
type CommitResult struct {
	DamageSurfaceLocal geom.Rect
	BufferChanged      bool
	BufferDetached     bool
}

// Commit runs the commit pipeline described in spec.md §4.2: pre-commit
// hooks, pending-to-current promotion, damage translation, subsurface
// caching, role commit, post-commit hooks, texture update request.
func (s *Surface) Commit() (CommitResult, error) {
	for _, hook := range s.preCommitHooks {
		if err := hook(s); err != nil {
			return CommitResult{}, err
		}
	}

	if s.Role() == RoleSubsurface && s.Synchronized {
		cached := s.pending
		s.cachedCommit = &cached
		s.pending = pendingState{
			scale:     s.pending.scale,
			transform: s.pending.transform,
		}
		return CommitResult{}, nil
	}

	result := s.applyPending(s.pending)
	s.pending = pendingState{
		scale:     s.current.scale,
		transform: s.current.transform,
	}

	for _, child := range s.Children {
		if child.Role() == RoleSubsurface && child.Synchronized && child.cachedCommit != nil {
			cached := *child.cachedCommit
			child.cachedCommit = nil
			child.applyPending(cached)
		}
	}

	for _, hook := range s.postCommitHooks {
		hook(s)
	}

	return result, nil
}

// applyPending promotes one pendingState snapshot to current, translates
// damage, and returns the resulting CommitResult. It does not touch hooks
// or subsurface caching; Commit and the synchronized-subsurface flush
// both route through it.
func (s *Surface) applyPending(p pendingState) CommitResult {
	result := CommitResult{}

	bufferChanged := p.bufferSet
	if bufferChanged {
		s.current.buffer = p.buffer
		result.BufferChanged = true
		result.BufferDetached = p.buffer == nil
	}

	s.current.scale = p.scale
	s.current.transform = p.transform

	if p.opaqueRegion != nil {
		s.current.opaqueRegion = p.opaqueRegion
	}
	if p.inputRegion != nil {
		s.current.inputRegion = p.inputRegion
	}

	if !p.damage.IsEmpty() {
		bufW, bufH := int32(0), int32(0)
		if s.current.buffer != nil {
			bufW, bufH = s.current.buffer.Width, s.current.buffer.Height
		}
		for _, r := range p.damage.Rects() {
			s.AccumulatedDamage.Add(r)
			translated := geom.ApplyToDamage(r, bufW, bufH, s.current.transform, s.current.scale)
			result.DamageSurfaceLocal = result.DamageSurfaceLocal.Union(translated)
		}
	}

	if result.BufferDetached {
		s.TextureHandle = nil
	}

	return result
}
