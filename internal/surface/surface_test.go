package surface

import (
	"errors"
	"testing"

	"github.com/bnema/wlcore/internal/geom"
)

func TestGiveRoleOnceThenIdempotent(t *testing.T) {
	e := NewEngine()
	c := e.BindClient()
	s := e.CreateSurface(c)

	if err := s.GiveRole(RoleToplevel); err != nil {
		t.Fatalf("first GiveRole: %v", err)
	}
	if err := s.GiveRole(RoleToplevel); err != nil {
		t.Errorf("re-assigning the same role should succeed, got %v", err)
	}
	if err := s.GiveRole(RolePopup); err == nil {
		t.Error("assigning a different role should fail once a role is set")
	}
}

func TestCommitPromotesPendingBuffer(t *testing.T) {
	e := NewEngine()
	c := e.BindClient()
	s := e.CreateSurface(c)

	buf := &Buffer{Width: 10, Height: 10, Stride: 40, Format: FormatARGB8888}
	s.AttachBuffer(buf)
	if s.CurrentBuffer() != nil {
		t.Fatal("buffer should not be current before commit")
	}

	if _, err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if s.CurrentBuffer() != buf {
		t.Error("buffer should be current after commit")
	}
}

func TestCommitDetachBuffer(t *testing.T) {
	e := NewEngine()
	c := e.BindClient()
	s := e.CreateSurface(c)
	buf := &Buffer{Width: 4, Height: 4, Stride: 16, Format: FormatXRGB8888}
	s.AttachBuffer(buf)
	if _, err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	s.AttachBuffer(nil)
	result, err := s.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !result.BufferDetached {
		t.Error("expected BufferDetached true")
	}
	if s.CurrentBuffer() != nil {
		t.Error("buffer should be nil after detach commit")
	}
	if s.TextureHandle != nil {
		t.Error("texture handle should be released on detach")
	}
}

func TestCommitWithEmptyDamageStillAppliesState(t *testing.T) {
	e := NewEngine()
	c := e.BindClient()
	s := e.CreateSurface(c)
	s.SetBufferScale(2)

	result, err := s.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !result.DamageSurfaceLocal.Empty() {
		t.Errorf("expected no damage, got %+v", result.DamageSurfaceLocal)
	}
	if s.Scale() != 2 {
		t.Errorf("scale should still apply with empty damage, got %d", s.Scale())
	}
}

func TestDamageAccumulatesAsUnion(t *testing.T) {
	e := NewEngine()
	c := e.BindClient()
	s := e.CreateSurface(c)
	buf := &Buffer{Width: 100, Height: 100, Stride: 400, Format: FormatARGB8888}
	s.AttachBuffer(buf)

	s.AddDamage(geom.Rect{X: 0, Y: 0, Width: 10, Height: 10})
	s.AddDamage(geom.Rect{X: 5, Y: 5, Width: 10, Height: 10})

	result, err := s.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	want := geom.Rect{X: 0, Y: 0, Width: 15, Height: 15}
	if result.DamageSurfaceLocal != want {
		t.Errorf("got damage %+v, want %+v", result.DamageSurfaceLocal, want)
	}
}

func TestDamageTranslatedByScale(t *testing.T) {
	e := NewEngine()
	c := e.BindClient()
	s := e.CreateSurface(c)
	buf := &Buffer{Width: 200, Height: 200, Stride: 800, Format: FormatARGB8888}
	s.AttachBuffer(buf)
	s.SetBufferScale(2)
	s.AddDamage(geom.Rect{X: 0, Y: 0, Width: 20, Height: 20})

	result, err := s.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	want := geom.Rect{X: 0, Y: 0, Width: 10, Height: 10}
	if result.DamageSurfaceLocal != want {
		t.Errorf("got %+v, want %+v", result.DamageSurfaceLocal, want)
	}
}

func TestPreCommitHookCanAbort(t *testing.T) {
	e := NewEngine()
	c := e.BindClient()
	s := e.CreateSurface(c)

	wantErr := errors.New("no thanks")
	s.AddPreCommitHook(func(*Surface) error { return wantErr })
	s.SetBufferScale(3)

	_, err := s.Commit()
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected abort error, got %v", err)
	}
	if s.Scale() == 3 {
		t.Error("aborted commit should not have promoted pending state")
	}
}

func TestPostCommitHookRunsAfterPromotion(t *testing.T) {
	e := NewEngine()
	c := e.BindClient()
	s := e.CreateSurface(c)

	var sawScale int32
	s.AddPostCommitHook(func(sf *Surface) { sawScale = sf.Scale() })
	s.SetBufferScale(4)
	if _, err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if sawScale != 4 {
		t.Errorf("post-commit hook saw scale %d, want 4", sawScale)
	}
}

func TestSynchronizedSubsurfaceStashesUntilParentCommits(t *testing.T) {
	e := NewEngine()
	c := e.BindClient()
	parent := e.CreateSurface(c)
	child := e.CreateSurface(c)
	if err := e.AddSubsurface(parent, child, true); err != nil {
		t.Fatalf("AddSubsurface: %v", err)
	}

	child.SetBufferScale(2)
	if _, err := child.Commit(); err != nil {
		t.Fatalf("child Commit: %v", err)
	}
	if child.Scale() != 1 {
		t.Errorf("synchronized child should not apply state until parent commits, got scale %d", child.Scale())
	}

	if _, err := parent.Commit(); err != nil {
		t.Fatalf("parent Commit: %v", err)
	}
	if child.Scale() != 2 {
		t.Errorf("child state should apply once parent commits, got scale %d", child.Scale())
	}
}

func TestDesynchronizedSubsurfaceAppliesImmediately(t *testing.T) {
	e := NewEngine()
	c := e.BindClient()
	parent := e.CreateSurface(c)
	child := e.CreateSurface(c)
	if err := e.AddSubsurface(parent, child, false); err != nil {
		t.Fatalf("AddSubsurface: %v", err)
	}

	child.SetBufferScale(3)
	if _, err := child.Commit(); err != nil {
		t.Fatalf("child Commit: %v", err)
	}
	if child.Scale() != 3 {
		t.Errorf("desynchronized child should apply immediately, got scale %d", child.Scale())
	}
}

func TestWalkPreOrder(t *testing.T) {
	e := NewEngine()
	c := e.BindClient()
	root := e.CreateSurface(c)
	a := e.CreateSurface(c)
	b := e.CreateSurface(c)
	if err := e.AddSubsurface(root, a, false); err != nil {
		t.Fatal(err)
	}
	if err := e.AddSubsurface(root, b, false); err != nil {
		t.Fatal(err)
	}

	var order []ID
	root.Walk(true, func(s *Surface) { order = append(order, s.ID) })
	if len(order) != 3 || order[0] != root.ID {
		t.Errorf("expected root first in pre-order walk, got %v", order)
	}
}

func TestUnbindClientDestroysSurfaces(t *testing.T) {
	e := NewEngine()
	c := e.BindClient()
	s := e.CreateSurface(c)
	var destroyed bool
	s.AddDestructionHook(func(*Surface) { destroyed = true })

	e.UnbindClient(c.ID)
	if !destroyed {
		t.Error("expected destruction hook to run on client unbind")
	}
	if _, ok := e.Client(c.ID); ok {
		t.Error("client should be forgotten after unbind")
	}
}

func TestPoolCreateBufferBoundsChecked(t *testing.T) {
	fd, cleanup := newMemfd(t, 4096)
	defer cleanup()

	pool, err := NewPool(fd, 4096)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Close()

	if _, err := pool.CreateBuffer(0, 32, 32, 128, FormatARGB8888); err != nil {
		t.Errorf("expected valid buffer to succeed, got %v", err)
	}
	if _, err := pool.CreateBuffer(0, 32, 32, 64, FormatARGB8888); err == nil {
		t.Error("expected stride-too-small to be rejected")
	}
	if _, err := pool.CreateBuffer(4000, 32, 32, 128, FormatARGB8888); err == nil {
		t.Error("expected out-of-bounds offset to be rejected")
	}
}
