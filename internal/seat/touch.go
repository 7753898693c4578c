package seat

// TouchDelegate receives the touch's output events.
type TouchDelegate interface {
	SendDown(slot int32, surfaceID uint64, localX, localY float64, serial uint32)
	SendMotion(slot int32, localX, localY float64)
	SendUp(slot int32, serial uint32)
	SendFrame()
	SendCancel()
}

type touchSlot struct {
	surfaceID uint64
	startX    float64
	startY    float64
}

// Touch is one seat's touch state, tracking per-slot focus
// (spec.md §3, §4.4 "Touch path").
type Touch struct {
	delegate TouchDelegate
	hitTest  HitTester
	slots    map[int32]*touchSlot
}

// NewTouch constructs a Touch bound to delegate and hitTest.
func NewTouch(delegate TouchDelegate, hitTest HitTester) *Touch {
	return &Touch{delegate: delegate, hitTest: hitTest, slots: make(map[int32]*touchSlot)}
}

// Down hit-tests as for pointer, records slot focus, and delivers down
// (spec.md §4.4).
func (t *Touch) Down(slot int32, x, y float64) {
	surfaceID, lx, ly, ok := t.hitTest(pointOf(x, y))
	if !ok {
		return
	}
	t.slots[slot] = &touchSlot{surfaceID: surfaceID, startX: lx, startY: ly}
	t.delegate.SendDown(slot, surfaceID, lx, ly, nextSerial())
}

// Motion delivers relative to the slot's recorded focus, without
// re-hit-testing (spec.md §4.4: "On motion/up: deliver relative to slot
// focus, not re-hit-tested").
func (t *Touch) Motion(slot int32, dx, dy float64) {
	s, ok := t.slots[slot]
	if !ok {
		return
	}
	s.startX += dx
	s.startY += dy
	t.delegate.SendMotion(slot, s.startX, s.startY)
}

// Up ends the slot's contact and forgets it.
func (t *Touch) Up(slot int32) {
	if _, ok := t.slots[slot]; !ok {
		return
	}
	delete(t.slots, slot)
	t.delegate.SendUp(slot, nextSerial())
}

// Frame emits the grouping event marking the end of a batch of touch
// events delivered in the same input frame.
func (t *Touch) Frame() {
	t.delegate.SendFrame()
}

// Cancel clears all slot focus with cancel events.
func (t *Touch) Cancel() {
	t.slots = make(map[int32]*touchSlot)
	t.delegate.SendCancel()
}
