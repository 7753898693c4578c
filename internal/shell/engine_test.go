package shell

import (
	"testing"
	"time"

	"github.com/bnema/wlcore/internal/spine"
	"github.com/bnema/wlcore/internal/surface"
)

type fakeScheduler struct {
	registered []func()
}

func (f *fakeScheduler) RegisterTimer(d time.Duration, cb func()) spine.TimerHandle {
	f.registered = append(f.registered, cb)
	return spine.TimerHandle(len(f.registered))
}

func (f *fakeScheduler) CancelTimer(spine.TimerHandle) {}

func TestPingPongRoundTrip(t *testing.T) {
	se := surface.NewEngine()
	c := se.BindClient()
	e := NewEngine(se)
	cs := e.ShellStateFor(c)

	var sentSerial uint32
	sched := &fakeScheduler{}
	e.Ping(cs, sched, func(serial uint32) { sentSerial = serial })

	if err := e.Pong(cs, sentSerial); err != nil {
		t.Fatalf("Pong: %v", err)
	}
}

func TestPongWrongSerialIsError(t *testing.T) {
	se := surface.NewEngine()
	c := se.BindClient()
	e := NewEngine(se)
	cs := e.ShellStateFor(c)

	sched := &fakeScheduler{}
	e.Ping(cs, sched, func(uint32) {})

	if err := e.Pong(cs, 0); err == nil {
		t.Fatal("expected pong with wrong serial to be rejected")
	}
}

func TestShellStateForIsStableAcrossCalls(t *testing.T) {
	se := surface.NewEngine()
	c := se.BindClient()
	e := NewEngine(se)

	a := e.ShellStateFor(c)
	b := e.ShellStateFor(c)
	if a != b {
		t.Error("expected the same ClientShell instance on repeated calls")
	}
}
