package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wlcore/internal/spine"
)

type fakeScheduler struct {
	lastDelay time.Duration
	lastCB    func()
	canceled  bool
}

func (f *fakeScheduler) RegisterTimer(d time.Duration, cb func()) spine.TimerHandle {
	f.lastDelay = d
	f.lastCB = cb
	return spine.TimerHandle(1)
}

func (f *fakeScheduler) CancelTimer(spine.TimerHandle) { f.canceled = true }

func newTestEngine() (*Engine, *fakeScheduler) {
	sched := &fakeScheduler{}
	return NewEngine(sched, nil), sched
}

func TestAddHeadBumpsSerial(t *testing.T) {
	e, _ := newTestEngine()
	before := e.Serial()
	e.AddHead(Head{Name: "eDP-1", Width: 1920, Height: 1080})
	assert.Equal(t, before+1, e.Serial(), "serial should bump on add")
	assert.Len(t, e.Heads(), 1)
}

func TestRemoveHeadCascadesPowerHandle(t *testing.T) {
	e, _ := newTestEngine()
	h := e.AddHead(Head{Name: "DP-1", Width: 2560, Height: 1440})

	var lastState PowerState
	handle, err := e.CreatePowerHandle(h.ID, func(s PowerState) { lastState = s })
	require.NoError(t, err)
	_ = lastState

	require.NoError(t, e.RemoveHead(h.ID))
	assert.True(t, handle.finished, "expected power handle to be cascaded-failed on head removal")
}

func TestDuplicatePowerHandleRejected(t *testing.T) {
	e, _ := newTestEngine()
	h := e.AddHead(Head{Name: "HDMI-A-1", Width: 1920, Height: 1080})
	_, err := e.CreatePowerHandle(h.ID, func(PowerState) {})
	require.NoError(t, err, "first CreatePowerHandle")
	_, err = e.CreatePowerHandle(h.ID, func(PowerState) {})
	assert.Error(t, err, "expected a second power handle on the same head to be rejected")
}

func TestTransactionCancelledOnStaleSerial(t *testing.T) {
	e, _ := newTestEngine()
	h := e.AddHead(Head{Name: "eDP-1", Width: 1920, Height: 1080, Modes: []Mode{{Width: 1920, Height: 1080, RefreshMHz: 60000}}})

	tx := NewTransaction(e.Serial())
	e.AddHead(Head{Name: "DP-2", Width: 1920, Height: 1080}) // bumps serial, staling tx

	require.NoError(t, tx.SetHeadChange(HeadChange{HeadID: h.ID, Enabled: true, Scale: 1}))
	outcome := e.Test(tx)
	assert.Equal(t, OutcomeCancelled, outcome)
}

func TestTransactionFailsOnUnsupportedMode(t *testing.T) {
	e, _ := newTestEngine()
	h := e.AddHead(Head{Name: "eDP-1", Width: 1920, Height: 1080, Modes: []Mode{{Width: 1920, Height: 1080, RefreshMHz: 60000}}})

	tx := NewTransaction(e.Serial())
	bogus := Mode{Width: 7680, Height: 4320, RefreshMHz: 60000}
	if err := tx.SetHeadChange(HeadChange{HeadID: h.ID, Mode: &bogus, Scale: 1}); err != nil {
		t.Fatal(err)
	}
	if outcome := e.Test(tx); outcome != OutcomeFailed {
		t.Errorf("expected OutcomeFailed for unsupported mode, got %v", outcome)
	}
}

func TestApplySucceedsAndBumpsSerial(t *testing.T) {
	e, _ := newTestEngine()
	mode := Mode{Width: 1920, Height: 1080, RefreshMHz: 60000}
	h := e.AddHead(Head{Name: "eDP-1", Width: 1920, Height: 1080, Modes: []Mode{mode}})

	before := e.Serial()
	tx := NewTransaction(before)
	if err := tx.SetHeadChange(HeadChange{HeadID: h.ID, Enabled: true, Mode: &mode, Scale: 1}); err != nil {
		t.Fatal(err)
	}

	outcome := e.Apply(tx, func(map[uint32]HeadChange) error { return nil })
	if outcome != OutcomeSucceeded {
		t.Fatalf("expected success, got %v", outcome)
	}
	if e.Serial() != before+1 {
		t.Errorf("expected serial bump on successful apply")
	}
}

func TestApplyRollsBackOnBackendFailure(t *testing.T) {
	e, _ := newTestEngine()
	mode := Mode{Width: 1920, Height: 1080, RefreshMHz: 60000}
	altMode := Mode{Width: 1280, Height: 720, RefreshMHz: 60000}
	h := e.AddHead(Head{Name: "eDP-1", Width: 1920, Height: 1080, Modes: []Mode{mode, altMode}, CurrentMode: &mode})

	tx := NewTransaction(e.Serial())
	if err := tx.SetHeadChange(HeadChange{HeadID: h.ID, Mode: &altMode, Scale: 1}); err != nil {
		t.Fatal(err)
	}

	outcome := e.Apply(tx, func(map[uint32]HeadChange) error { return errBackend })
	if outcome != OutcomeFailed {
		t.Fatalf("expected failure, got %v", outcome)
	}
	got, _ := e.Head(h.ID)
	if got.CurrentMode.Width != mode.Width {
		t.Errorf("expected rollback to original mode, got %dx%d", got.CurrentMode.Width, got.CurrentMode.Height)
	}
}

func TestSecondChangeOnProcessedTransactionRejected(t *testing.T) {
	e, _ := newTestEngine()
	h := e.AddHead(Head{Name: "eDP-1", Width: 1920, Height: 1080})
	tx := NewTransaction(e.Serial())
	e.Test(tx)
	if err := tx.SetHeadChange(HeadChange{HeadID: h.ID, Scale: 1}); err == nil {
		t.Error("expected change on an already-processed transaction to be rejected")
	}
}

var errBackend = &backendErr{}

type backendErr struct{}

func (*backendErr) Error() string { return "backend commit failed" }
