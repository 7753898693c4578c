package geom

import "testing"

func TestRegionAddCoalesces(t *testing.T) {
	var r Region
	r.Add(Rect{X: 0, Y: 0, Width: 10, Height: 10})
	r.Add(Rect{X: 5, Y: 5, Width: 10, Height: 10})
	if len(r.Rects()) != 1 {
		t.Fatalf("expected overlapping rects to coalesce, got %d rects", len(r.Rects()))
	}
	b := r.Bounds()
	want := Rect{X: 0, Y: 0, Width: 15, Height: 15}
	if b != want {
		t.Errorf("got bounds %+v, want %+v", b, want)
	}
}

func TestRegionAddDisjoint(t *testing.T) {
	var r Region
	r.Add(Rect{X: 0, Y: 0, Width: 5, Height: 5})
	r.Add(Rect{X: 100, Y: 100, Width: 5, Height: 5})
	if len(r.Rects()) != 2 {
		t.Fatalf("expected disjoint rects to stay separate, got %d", len(r.Rects()))
	}
}

func TestRegionEmptyAddIsNoop(t *testing.T) {
	var r Region
	r.Add(Rect{})
	if !r.IsEmpty() {
		t.Error("expected region to remain empty after adding a zero-area rect")
	}
}

func TestRectClip(t *testing.T) {
	r := Rect{X: -5, Y: -5, Width: 20, Height: 20}
	bounds := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	got := r.Clip(bounds)
	want := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRectClipDisjointIsEmpty(t *testing.T) {
	r := Rect{X: 100, Y: 100, Width: 10, Height: 10}
	bounds := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	if got := r.Clip(bounds); !got.Empty() {
		t.Errorf("expected empty clip, got %+v", got)
	}
}

func TestApplyToDamageIdentity(t *testing.T) {
	r := Rect{X: 2, Y: 3, Width: 4, Height: 5}
	got := ApplyToDamage(r, 100, 100, TransformNormal, 1)
	if got != r {
		t.Errorf("identity transform changed rect: got %+v, want %+v", got, r)
	}
}

func TestApplyToDamageScaleDivides(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 20, Height: 10}
	got := ApplyToDamage(r, 200, 200, TransformNormal, 2)
	want := Rect{X: 0, Y: 0, Width: 10, Height: 5}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	w, h := int32(200), int32(100)
	p := Point{X: 30, Y: 20}
	for t_ := TransformNormal; t_ <= TransformFlipped270; t_++ {
		fwd := forwardPoint(p, w, h, t_)
		back := inverseRotatePoint(fwd, w, h, t_)
		if back != p {
			t.Errorf("transform %d: round trip got %+v, want %+v", t_, back, p)
		}
	}
}

func TestTransformValid(t *testing.T) {
	if !TransformNormal.Valid() || !TransformFlipped270.Valid() {
		t.Error("boundary transform values should be valid")
	}
	if Transform(99).Valid() {
		t.Error("out-of-range transform should be invalid")
	}
}
