// Package surface implements the Surface Engine: the wire-protocol object
// graph's lowest layer, owning per-client and per-surface state and the
// commit pipeline that advances pending state to current state. Nothing
// in this package depends on Shell, Input, or Output; they are built on
// top of it (spec.md §2).
package surface

import (
	"fmt"

	"github.com/bnema/wlcore/internal/geom"
)

// Role identifies what a surface is being used for. A surface is given a
// role at most once, for its whole lifetime (spec.md §3).
type Role int

const (
	RoleNone Role = iota
	RoleToplevel
	RolePopup
	RoleCursor
	RoleSubsurface
)

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleToplevel:
		return "toplevel"
	case RolePopup:
		return "popup"
	case RoleCursor:
		return "cursor"
	case RoleSubsurface:
		return "subsurface"
	default:
		return "unknown"
	}
}

// ID identifies a surface uniquely within the engine, independent of the
// wire-protocol object id that names it on any one client connection.
type ID uint64

// PreCommitHook runs before pending state is promoted to current. Any
// hook may abort the commit by returning a non-nil error, which becomes a
// client-visible protocol error (spec.md §4.2 step 1).
type PreCommitHook func(s *Surface) error

// PostCommitHook runs after the commit pipeline has fully applied, role
// logic included.
type PostCommitHook func(s *Surface)

// DestructionHook runs when a surface is destroyed, either by explicit
// client request or because its owning client disconnected.
type DestructionHook func(s *Surface)

// pendingState is everything a client can change between commits; it
// only takes effect when Commit runs.
type pendingState struct {
	buffer        *Buffer
	bufferSet     bool // distinguishes "attach(nil)" (detach) from "no attach call"
	damage        geom.Region
	opaqueRegion  *geom.Region
	inputRegion   *geom.Region
	scale         int32
	transform     geom.Transform
	hasRole       Role // role requested this commit cycle, RoleNone if unset
}

// Surface is the fundamental drawable primitive (spec.md §3).
type Surface struct {
	ID       ID
	Client   *Client
	role     Role
	destroyed bool

	current pendingState
	pending pendingState

	// AccumulatedDamage is in buffer pixel space across the surface's
	// whole lifetime; callers interested in a single commit's damage
	// read it from the CommitResult returned by Commit.
	AccumulatedDamage geom.Region

	Parent   *Surface
	Children []*Surface

	// Synchronized is only meaningful when Role == RoleSubsurface. A
	// synchronized subsurface's committed state is cached until the
	// parent commits (spec.md §3, §4.2 step 4).
	Synchronized bool
	cachedCommit *pendingState

	// TextureHandle is renderer-opaque; nil means "nothing to draw".
	TextureHandle any

	preCommitHooks   []PreCommitHook
	postCommitHooks  []PostCommitHook
	destroyHooks     []DestructionHook
}

func newSurface(id ID, client *Client) *Surface {
	return &Surface{
		ID:     id,
		Client: client,
		pending: pendingState{
			scale:     1,
			transform: geom.TransformNormal,
		},
		current: pendingState{
			scale:     1,
			transform: geom.TransformNormal,
		},
	}
}

// Role returns the surface's role, RoleNone if none has been given yet.
func (s *Surface) Role() Role { return s.role }

// CurrentBuffer returns the buffer promoted at the last commit, nil if
// none is attached.
func (s *Surface) CurrentBuffer() *Buffer { return s.current.buffer }

// Scale returns the buffer scale factor promoted at the last commit.
func (s *Surface) Scale() int32 { return s.current.scale }

// TransformValue returns the buffer transform promoted at the last commit.
func (s *Surface) TransformValue() geom.Transform { return s.current.transform }

// OpaqueRegion returns the opaque region promoted at the last commit, nil
// if none was ever set (meaning "no hint").
func (s *Surface) OpaqueRegion() *geom.Region { return s.current.opaqueRegion }

// InputRegion returns the input region promoted at the last commit. A nil
// result means the whole surface accepts input (spec.md §4.2).
func (s *Surface) InputRegion() *geom.Region { return s.current.inputRegion }

// GiveRole assigns role to the surface. It fails if a different role is
// already set; it succeeds idempotently for the same role (spec.md §4.2).
func (s *Surface) GiveRole(role Role) error {
	if s.role != RoleNone && s.role != role {
		return fmt.Errorf("surface %d already has role %s, cannot become %s", s.ID, s.role, role)
	}
	s.role = role
	return nil
}

// AttachBuffer stages buf as the pending buffer. buf == nil stages a
// detach, distinct from "no attach call this cycle".
func (s *Surface) AttachBuffer(buf *Buffer) {
	s.pending.buffer = buf
	s.pending.bufferSet = true
}

// AddDamage accumulates a damage rectangle, in buffer pixel coordinates,
// into the pending damage region. Multiple calls between commits union
// (spec.md §4.2 "Damage semantics").
func (s *Surface) AddDamage(r geom.Rect) {
	s.pending.damage.Add(r)
}

// SetOpaqueRegion stages the pending opaque region hint.
func (s *Surface) SetOpaqueRegion(r *geom.Region) {
	s.pending.opaqueRegion = r
}

// SetInputRegion stages the pending input region hint.
func (s *Surface) SetInputRegion(r *geom.Region) {
	s.pending.inputRegion = r
}

// SetBufferScale stages the pending buffer scale factor.
func (s *Surface) SetBufferScale(scale int32) {
	if scale <= 0 {
		scale = 1
	}
	s.pending.scale = scale
}

// SetBufferTransform stages the pending buffer transform.
func (s *Surface) SetBufferTransform(t geom.Transform) {
	if !t.Valid() {
		return
	}
	s.pending.transform = t
}

// AddPreCommitHook registers a hook run, in registration order, before
// every future commit.
func (s *Surface) AddPreCommitHook(h PreCommitHook) {
	s.preCommitHooks = append(s.preCommitHooks, h)
}

// AddPostCommitHook registers a hook run, in registration order, after
// every future commit.
func (s *Surface) AddPostCommitHook(h PostCommitHook) {
	s.postCommitHooks = append(s.postCommitHooks, h)
}

// AddDestructionHook registers a hook run when the surface is destroyed.
func (s *Surface) AddDestructionHook(h DestructionHook) {
	s.destroyHooks = append(s.destroyHooks, h)
}

// Walk visits s and every descendant in pre-order (s.Client-facing tree
// walk, spec.md §4.2 contract item (k)). down selects parent-to-child
// order; the reverse (up) order visits leaves before their ancestors.
func (s *Surface) Walk(down bool, visit func(*Surface)) {
	if down {
		visit(s)
		for _, c := range s.Children {
			c.Walk(down, visit)
		}
		return
	}
	for _, c := range s.Children {
		c.Walk(down, visit)
	}
	visit(s)
}

// destroy runs destruction hooks and detaches the surface from its
// parent/children; called by Engine.DestroySurface or on disconnect.
func (s *Surface) destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	for _, h := range s.destroyHooks {
		h(s)
	}
	if s.Parent != nil {
		s.Parent.removeChild(s)
	}
	for _, c := range s.Children {
		c.Parent = nil
	}
	s.TextureHandle = nil
	s.current.buffer = nil
}

func (s *Surface) removeChild(child *Surface) {
	for i, c := range s.Children {
		if c == child {
			s.Children = append(s.Children[:i], s.Children[i+1:]...)
			return
		}
	}
}
