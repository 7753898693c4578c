package spine

import (
	"container/heap"
	"time"
)

// TimerHandle identifies a registered timer for cancellation.
type TimerHandle uint64

type timerEntry struct {
	handle   TimerHandle
	deadline time.Time
	period   time.Duration // zero for one-shot
	callback func()
	index    int // heap.Interface bookkeeping
	canceled bool
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *timerHeap) Push(x interface{}) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// timers is the loop's private min-heap of pending deadlines, keyed so
// the next EpollWait timeout is always "time until the earliest timer".
type timers struct {
	h       timerHeap
	byID    map[TimerHandle]*timerEntry
	nextID  TimerHandle
}

func newTimers() *timers {
	return &timers{byID: make(map[TimerHandle]*timerEntry)}
}

func (t *timers) add(d time.Duration, period time.Duration, cb func()) TimerHandle {
	t.nextID++
	e := &timerEntry{
		handle:   t.nextID,
		deadline: time.Now().Add(d),
		period:   period,
		callback: cb,
	}
	heap.Push(&t.h, e)
	t.byID[e.handle] = e
	return e.handle
}

func (t *timers) cancel(handle TimerHandle) {
	e, ok := t.byID[handle]
	if !ok {
		return
	}
	e.canceled = true
	delete(t.byID, handle)
}

// nextTimeout returns the time until the next live timer should fire,
// or -1 if there are none (meaning: block indefinitely in EpollWait).
func (t *timers) nextTimeout() time.Duration {
	for t.h.Len() > 0 && t.h[0].canceled {
		heap.Pop(&t.h)
	}
	if t.h.Len() == 0 {
		return -1
	}
	d := time.Until(t.h[0].deadline)
	if d < 0 {
		return 0
	}
	return d
}

// fireDue pops and invokes every timer whose deadline has passed,
// rescheduling periodic ones.
func (t *timers) fireDue(now time.Time, invoke func(func())) {
	for t.h.Len() > 0 {
		top := t.h[0]
		if top.canceled {
			heap.Pop(&t.h)
			continue
		}
		if top.deadline.After(now) {
			break
		}
		heap.Pop(&t.h)
		if top.period == 0 {
			delete(t.byID, top.handle)
		}
		invoke(top.callback)
		if top.period > 0 && !top.canceled {
			top.deadline = now.Add(top.period)
			top.canceled = false
			heap.Push(&t.h, top)
			t.byID[top.handle] = top
		}
	}
}
