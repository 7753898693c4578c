package spine

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func newTestLoop(t *testing.T) *Loop {
	t.Helper()
	l, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRegisterTimerFires(t *testing.T) {
	l := newTestLoop(t)
	fired := make(chan struct{}, 1)
	l.RegisterTimer(5*time.Millisecond, func() {
		fired <- struct{}{}
		l.RequestShutdown()
	})

	done := make(chan error, 1)
	go func() { done <- l.RunUntilShutdown() }()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
	if err := <-done; err != nil {
		t.Fatalf("RunUntilShutdown: %v", err)
	}
}

func TestCancelTimerPreventsFiring(t *testing.T) {
	l := newTestLoop(t)
	var fired atomic.Bool
	handle := l.RegisterTimer(20*time.Millisecond, func() { fired.Store(true) })
	l.CancelTimer(handle)
	l.RegisterTimer(40*time.Millisecond, func() { l.RequestShutdown() })

	if err := l.RunUntilShutdown(); err != nil {
		t.Fatalf("RunUntilShutdown: %v", err)
	}
	if fired.Load() {
		t.Error("canceled timer fired")
	}
}

func TestPeriodicTimerRepeats(t *testing.T) {
	l := newTestLoop(t)
	var count atomic.Int32
	var handle TimerHandle
	handle = l.RegisterPeriodicTimer(2*time.Millisecond, 2*time.Millisecond, func() {
		if count.Add(1) >= 3 {
			l.CancelTimer(handle)
			l.RequestShutdown()
		}
	})

	if err := l.RunUntilShutdown(); err != nil {
		t.Fatalf("RunUntilShutdown: %v", err)
	}
	if count.Load() < 3 {
		t.Errorf("expected at least 3 fires, got %d", count.Load())
	}
}

func TestRegisterReadableDispatchesOnData(t *testing.T) {
	l := newTestLoop(t)
	r, w, err := newPipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer unix.Close(w)
	defer unix.Close(r)

	got := make(chan byte, 1)
	if err := l.RegisterReadable(r, "test-pipe", func() {
		var buf [1]byte
		unix.Read(r, buf[:])
		got <- buf[0]
		l.RequestShutdown()
	}); err != nil {
		t.Fatalf("RegisterReadable: %v", err)
	}

	go func() {
		time.Sleep(5 * time.Millisecond)
		unix.Write(w, []byte{0x42})
	}()

	done := make(chan error, 1)
	go func() { done <- l.RunUntilShutdown() }()

	select {
	case b := <-got:
		if b != 0x42 {
			t.Errorf("got byte %x, want 0x42", b)
		}
	case <-time.After(time.Second):
		t.Fatal("readable callback never ran")
	}
	<-done
}

func TestPostFromOtherThreadDeliversOnLoopThread(t *testing.T) {
	l := newTestLoop(t)
	var wg sync.WaitGroup
	wg.Add(1)

	var received any
	go func() {
		l.PostFromOtherThread("hello", func(msg any) {
			received = msg
			l.RequestShutdown()
			wg.Done()
		})
	}()

	if err := l.RunUntilShutdown(); err != nil {
		t.Fatalf("RunUntilShutdown: %v", err)
	}
	wg.Wait()
	if received != "hello" {
		t.Errorf("got %v, want %q", received, "hello")
	}
}

func newPipe() (r, w int, err error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return 0, 0, err
	}
	return fds[0], fds[1], nil
}
