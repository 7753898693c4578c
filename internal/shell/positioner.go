package shell

// AnchorEdge is the edge or corner of the anchor rectangle a popup is
// positioned relative to.
type AnchorEdge int

const (
	AnchorNone AnchorEdge = iota
	AnchorTop
	AnchorBottom
	AnchorLeft
	AnchorRight
	AnchorTopLeft
	AnchorTopRight
	AnchorBottomLeft
	AnchorBottomRight
)

// Gravity is the direction the popup rectangle extends away from its
// anchor point, using the same eight values as AnchorEdge.
type Gravity = AnchorEdge

// ConstraintAdjustment lists the axes on which the positioner permits
// slide, flip, or resize to keep the popup on-screen (spec.md §3
// "Popup": "constraint adjustments (slide, flip, resize on each axis)").
type ConstraintAdjustment struct {
	SlideX, SlideY   bool
	FlipX, FlipY     bool
	ResizeX, ResizeY bool
}

// Positioner is an immutable value capturing everything needed to
// resolve a popup's geometry as a pure function of itself, the parent's
// geometry, and the output's geometry (spec.md §3, §4.3).
type Positioner struct {
	AnchorRect Rect
	Anchor     AnchorEdge
	Gravity    Gravity
	Constraint ConstraintAdjustment
	Width      int32
	Height     int32
	OffsetX    int32
	OffsetY    int32
}

// anchorPoint returns the point on r identified by edge.
func anchorPoint(r Rect, edge AnchorEdge) (x, y int32) {
	switch edge {
	case AnchorTop:
		return r.X + r.Width/2, r.Y
	case AnchorBottom:
		return r.X + r.Width/2, r.Y + r.Height
	case AnchorLeft:
		return r.X, r.Y + r.Height/2
	case AnchorRight:
		return r.X + r.Width, r.Y + r.Height/2
	case AnchorTopLeft:
		return r.X, r.Y
	case AnchorTopRight:
		return r.X + r.Width, r.Y
	case AnchorBottomLeft:
		return r.X, r.Y + r.Height
	case AnchorBottomRight:
		return r.X + r.Width, r.Y + r.Height
	default:
		return r.X + r.Width/2, r.Y + r.Height/2
	}
}

// gravityOffset returns how far the popup's own top-left corner sits
// from its anchor point, given gravity and the popup's own size.
func gravityOffset(g Gravity, w, h int32) (dx, dy int32) {
	switch g {
	case AnchorTop:
		return -w / 2, -h
	case AnchorBottom:
		return -w / 2, 0
	case AnchorLeft:
		return -w, -h / 2
	case AnchorRight:
		return 0, -h / 2
	case AnchorTopLeft:
		return -w, -h
	case AnchorTopRight:
		return 0, -h
	case AnchorBottomLeft:
		return -w, 0
	case AnchorBottomRight:
		return 0, 0
	default:
		return -w / 2, -h / 2
	}
}

// flipGravity mirrors a gravity value across its own axis, used when
// sliding isn't enough and flip is permitted.
func flipGravityX(g Gravity) Gravity {
	switch g {
	case AnchorLeft:
		return AnchorRight
	case AnchorRight:
		return AnchorLeft
	case AnchorTopLeft:
		return AnchorTopRight
	case AnchorTopRight:
		return AnchorTopLeft
	case AnchorBottomLeft:
		return AnchorBottomRight
	case AnchorBottomRight:
		return AnchorBottomLeft
	default:
		return g
	}
}

func flipGravityY(g Gravity) Gravity {
	switch g {
	case AnchorTop:
		return AnchorBottom
	case AnchorBottom:
		return AnchorTop
	case AnchorTopLeft:
		return AnchorBottomLeft
	case AnchorTopRight:
		return AnchorBottomRight
	case AnchorBottomLeft:
		return AnchorTopLeft
	case AnchorBottomRight:
		return AnchorTopRight
	default:
		return g
	}
}

// Resolve computes the popup rectangle deterministically from the
// positioner, the parent rectangle (in the same coordinate space as
// output), and the output geometry, following spec.md §4.3's "Popup
// positioning" algorithm: anchor, then gravity offset, then slide, then
// flip, then resize, in that fixed order.
func (p Positioner) Resolve(parent, output Rect) Rect {
	ax, ay := anchorPoint(p.AnchorRect.translated(parent), p.Anchor)
	ax += p.OffsetX
	ay += p.OffsetY

	gravity := p.Gravity
	w, h := p.Width, p.Height
	dx, dy := gravityOffset(gravity, w, h)
	rect := Rect{X: ax + dx, Y: ay + dy, Width: w, Height: h}

	if overflowsRight(rect, output) || overflowsLeft(rect, output) {
		if p.Constraint.SlideX {
			rect = slideX(rect, output)
		}
		if (overflowsRight(rect, output) || overflowsLeft(rect, output)) && p.Constraint.FlipX {
			flipped := flipGravityX(gravity)
			fdx, _ := gravityOffset(flipped, w, h)
			candidate := Rect{X: ax + fdx, Y: rect.Y, Width: w, Height: h}
			if !overflowsRight(candidate, output) && !overflowsLeft(candidate, output) {
				rect = candidate
				gravity = flipped
			}
		}
		if (overflowsRight(rect, output) || overflowsLeft(rect, output)) && p.Constraint.ResizeX {
			rect = resizeX(rect, output)
		}
	}

	if overflowsBottom(rect, output) || overflowsTop(rect, output) {
		if p.Constraint.SlideY {
			rect = slideY(rect, output)
		}
		if (overflowsBottom(rect, output) || overflowsTop(rect, output)) && p.Constraint.FlipY {
			flipped := flipGravityY(gravity)
			_, fdy := gravityOffset(flipped, w, h)
			candidate := Rect{X: rect.X, Y: ay + fdy, Width: w, Height: h}
			if !overflowsBottom(candidate, output) && !overflowsTop(candidate, output) {
				rect = candidate
			}
		}
		if (overflowsBottom(rect, output) || overflowsTop(rect, output)) && p.Constraint.ResizeY {
			rect = resizeY(rect, output)
		}
	}

	return rect
}

func (r Rect) translated(by Rect) Rect {
	return Rect{X: r.X + by.X, Y: r.Y + by.Y, Width: r.Width, Height: r.Height}
}

func overflowsRight(r, o Rect) bool  { return r.X+r.Width > o.X+o.Width }
func overflowsLeft(r, o Rect) bool   { return r.X < o.X }
func overflowsBottom(r, o Rect) bool { return r.Y+r.Height > o.Y+o.Height }
func overflowsTop(r, o Rect) bool    { return r.Y < o.Y }

func slideX(r, o Rect) Rect {
	if r.X < o.X {
		r.X = o.X
	} else if r.X+r.Width > o.X+o.Width {
		r.X = o.X + o.Width - r.Width
	}
	return r
}

func slideY(r, o Rect) Rect {
	if r.Y < o.Y {
		r.Y = o.Y
	} else if r.Y+r.Height > o.Y+o.Height {
		r.Y = o.Y + o.Height - r.Height
	}
	return r
}

func resizeX(r, o Rect) Rect {
	if r.X < o.X {
		r.Width -= o.X - r.X
		r.X = o.X
	}
	if r.X+r.Width > o.X+o.Width {
		r.Width = o.X + o.Width - r.X
	}
	if r.Width < 0 {
		r.Width = 0
	}
	return r
}

func resizeY(r, o Rect) Rect {
	if r.Y < o.Y {
		r.Height -= o.Y - r.Y
		r.Y = o.Y
	}
	if r.Y+r.Height > o.Y+o.Height {
		r.Height = o.Y + o.Height - r.Y
	}
	if r.Height < 0 {
		r.Height = 0
	}
	return r
}
