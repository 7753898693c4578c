// Package geom holds the coordinate-space primitives shared by the
// Surface, Output, and Window Mechanics engines: rectangles, region
// unions, and the buffer scale/transform composition spec.md §9 requires
// be implemented exactly once so the two directions (damage into
// surface-local space, input out of it) never drift apart.
package geom

// Point is an integer logical-coordinate pair.
type Point struct {
	X, Y int32
}

// Rect is an axis-aligned rectangle in whatever coordinate space the
// caller documents (buffer pixels, surface-local, or global logical).
type Rect struct {
	X, Y          int32
	Width, Height int32
}

// Empty reports whether r covers zero area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersects reports whether r and other share any area.
func (r Rect) Intersects(other Rect) bool {
	if r.Empty() || other.Empty() {
		return false
	}
	return r.X < other.X+other.Width && other.X < r.X+r.Width &&
		r.Y < other.Y+other.Height && other.Y < r.Y+r.Height
}

// Union returns the smallest rectangle containing both r and other. A
// zero-area operand is ignored: if r is zero-area the result is other
// unchanged, even when other is zero-area too.
func (r Rect) Union(other Rect) Rect {
	if r.Empty() {
		return other
	}
	if other.Empty() {
		return r
	}
	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Contains reports whether p lies within r, half-open on the far edges.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Clip intersects r with bounds, returning a zero-area Rect if they do
// not overlap.
func (r Rect) Clip(bounds Rect) Rect {
	x0 := max(r.X, bounds.X)
	y0 := max(r.Y, bounds.Y)
	x1 := min(r.X+r.Width, bounds.X+bounds.Width)
	y1 := min(r.Y+r.Height, bounds.Y+bounds.Height)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Region is a damage/opaque/input region: a list of rectangles. Add
// merges overlapping rectangles by union; disjoint rectangles are kept
// as separate entries.
type Region struct {
	rects []Rect
}

// Add merges r into the region, unioning it with the first existing
// rectangle it overlaps. A rectangle that overlaps none of them (including
// one that only touches an edge) is stored as a separate entry.
func (reg *Region) Add(r Rect) {
	if r.Empty() {
		return
	}
	for i, existing := range reg.rects {
		if existing.Intersects(r) {
			reg.rects[i] = existing.Union(r)
			return
		}
	}
	reg.rects = append(reg.rects, r)
}

// Clear empties the region.
func (reg *Region) Clear() {
	reg.rects = reg.rects[:0]
}

// IsEmpty reports whether the region contains no area.
func (reg *Region) IsEmpty() bool {
	return len(reg.rects) == 0
}

// Bounds returns the smallest rectangle containing the whole region.
func (reg *Region) Bounds() Rect {
	var b Rect
	for _, r := range reg.rects {
		b = b.Union(r)
	}
	return b
}

// Rects returns the region's constituent rectangles. The returned slice
// must not be mutated by the caller.
func (reg *Region) Rects() []Rect {
	return reg.rects
}

// Transform is one of the eight wl_output transform values: four
// rotations, each optionally flipped.
type Transform int

const (
	TransformNormal Transform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

// Valid reports whether t is one of the eight defined values.
func (t Transform) Valid() bool {
	return t >= TransformNormal && t <= TransformFlipped270
}

// ApplyToDamage composes transform then scale to carry a rectangle from
// buffer pixel space into surface-local space, per spec.md §9:
// "first apply buffer_transform ... then divide by buffer_scale." bufW
// and bufH are the untransformed buffer dimensions, used to flip/rotate
// coordinates around the buffer's own extent.
func ApplyToDamage(r Rect, bufW, bufH int32, t Transform, scale int32) Rect {
	rotated := rotateRect(r, bufW, bufH, t)
	if scale <= 0 {
		scale = 1
	}
	return Rect{
		X:      rotated.X / scale,
		Y:      rotated.Y / scale,
		Width:  ceilDiv(rotated.Width, scale),
		Height: ceilDiv(rotated.Height, scale),
	}
}

// ApplyInverseToPoint carries a surface-local point back into buffer
// pixel space: scale first, then undo the transform. This is the inverse
// composition order spec.md §9 requires for routing input coordinates.
func ApplyInverseToPoint(p Point, bufW, bufH int32, t Transform, scale int32) Point {
	if scale <= 0 {
		scale = 1
	}
	scaled := Point{X: p.X * scale, Y: p.Y * scale}
	return inverseRotatePoint(scaled, bufW, bufH, t)
}

func rotateRect(r Rect, w, h int32, t Transform) Rect {
	switch t {
	case TransformNormal:
		return r
	case Transform90:
		return Rect{X: h - r.Y - r.Height, Y: r.X, Width: r.Height, Height: r.Width}
	case Transform180:
		return Rect{X: w - r.X - r.Width, Y: h - r.Y - r.Height, Width: r.Width, Height: r.Height}
	case Transform270:
		return Rect{X: r.Y, Y: w - r.X - r.Width, Width: r.Height, Height: r.Width}
	case TransformFlipped:
		return Rect{X: w - r.X - r.Width, Y: r.Y, Width: r.Width, Height: r.Height}
	case TransformFlipped90:
		return Rect{X: h - r.Y - r.Height, Y: w - r.X - r.Width, Width: r.Height, Height: r.Width}
	case TransformFlipped180:
		return Rect{X: r.X, Y: h - r.Y - r.Height, Width: r.Width, Height: r.Height}
	case TransformFlipped270:
		return Rect{X: r.Y, Y: r.X, Width: r.Height, Height: r.Width}
	default:
		return r
	}
}

// forwardPoint applies transform t to a point in a w x h space, matching
// rotateRect's corner mapping with width/height collapsed to zero.
func forwardPoint(p Point, w, h int32, t Transform) Point {
	switch t {
	case TransformNormal:
		return p
	case Transform90:
		return Point{X: h - p.Y, Y: p.X}
	case Transform180:
		return Point{X: w - p.X, Y: h - p.Y}
	case Transform270:
		return Point{X: p.Y, Y: w - p.X}
	case TransformFlipped:
		return Point{X: w - p.X, Y: p.Y}
	case TransformFlipped90:
		return Point{X: h - p.Y, Y: w - p.X}
	case TransformFlipped180:
		return Point{X: p.X, Y: h - p.Y}
	case TransformFlipped270:
		return Point{X: p.Y, Y: p.X}
	default:
		return p
	}
}

// inverseOf names the transform whose forward application undoes t.
func inverseOf(t Transform) Transform {
	switch t {
	case Transform90:
		return Transform270
	case Transform270:
		return Transform90
	default:
		return t
	}
}

// inverseRotatePoint undoes forwardPoint: p is a point in the space
// produced by applying t to a w x h buffer; the result is back in the
// original w x h buffer space.
func inverseRotatePoint(p Point, w, h int32, t Transform) Point {
	rw, rh := w, h
	switch t {
	case Transform90, Transform270, TransformFlipped90, TransformFlipped270:
		rw, rh = h, w
	}
	return forwardPoint(p, rw, rh, inverseOf(t))
}

func ceilDiv(a, b int32) int32 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
