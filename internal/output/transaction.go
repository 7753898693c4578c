package output

import (
	"fmt"
	"math"

	"github.com/bnema/wlcore/internal/geom"
)

// HeadChange is one head's proposed state within a Transaction.
type HeadChange struct {
	HeadID    uint32
	Enabled   bool
	Mode      *Mode
	Position  geom.Point
	Transform Transform
	Scale     float64
	AdaptiveSync bool
}

// Outcome is what a transaction resolves to.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
	OutcomeCancelled
)

// Transaction is a client-prepared multi-head configuration change
// (spec.md §3 "Output configuration transaction").
type Transaction struct {
	CreationSerial uint32
	Changes        map[uint32]HeadChange
	processed      bool
}

// NewTransaction creates a transaction recording the engine's
// then-current output-set serial.
func NewTransaction(serial uint32) *Transaction {
	return &Transaction{CreationSerial: serial, Changes: make(map[uint32]HeadChange)}
}

// SetHeadChange stages a per-head change. Fails if the transaction has
// already been processed (tested or applied).
func (tx *Transaction) SetHeadChange(c HeadChange) error {
	if tx.processed {
		return fmt.Errorf("output: transaction already processed, no further changes accepted")
	}
	tx.Changes[c.HeadID] = c
	return nil
}

// validate checks every proposed head change against the engine's
// current head set, per spec.md §4.5 "Apply algorithm" step 2.
func (e *Engine) validate(tx *Transaction) error {
	for _, c := range tx.Changes {
		head, ok := e.heads[c.HeadID]
		if !ok {
			return fmt.Errorf("output: head %d no longer exists", c.HeadID)
		}
		if c.Mode != nil && !head.HasMode(*c.Mode) {
			return fmt.Errorf("output: mode %dx%d@%d not supported by head %d", c.Mode.Width, c.Mode.Height, c.Mode.RefreshMHz, c.HeadID)
		}
		if c.Scale <= 0 || math.IsInf(c.Scale, 0) || math.IsNaN(c.Scale) {
			return fmt.Errorf("output: scale %v out of range (0, inf) for head %d", c.Scale, c.HeadID)
		}
		if math.IsNaN(float64(c.Position.X)) || math.IsNaN(float64(c.Position.Y)) {
			return fmt.Errorf("output: non-finite position for head %d", c.HeadID)
		}
		if !c.Transform.Valid() {
			return fmt.Errorf("output: invalid transform %d for head %d", c.Transform, c.HeadID)
		}
	}
	return nil
}

// Test implements step "test": validate without committing, then mark
// the transaction processed.
func (e *Engine) Test(tx *Transaction) Outcome {
	defer func() { tx.processed = true }()
	if tx.CreationSerial != e.serial {
		return OutcomeCancelled
	}
	if err := e.validate(tx); err != nil {
		return OutcomeFailed
	}
	return OutcomeSucceeded
}

// Apply implements step "apply": validate, snapshot, apply all changes,
// rolling back on backend failure (spec.md §4.5 "Apply algorithm").
func (e *Engine) Apply(tx *Transaction, applyBackend func(map[uint32]HeadChange) error) Outcome {
	defer func() { tx.processed = true }()

	if tx.CreationSerial != e.serial {
		return OutcomeCancelled
	}
	if err := e.validate(tx); err != nil {
		return OutcomeFailed
	}

	snapshot := e.snapshotHeads()

	if err := applyBackend(tx.Changes); err != nil {
		e.restoreHeads(snapshot)
		return OutcomeFailed
	}

	for id, c := range tx.Changes {
		head := e.heads[id]
		head.Enabled = c.Enabled
		if c.Mode != nil {
			head.CurrentMode = c.Mode
			head.Width, head.Height = c.Mode.Width, c.Mode.Height
		}
		head.Position = c.Position
		head.Transform = c.Transform
		head.Scale = c.Scale
	}
	e.bumpSerial()
	return OutcomeSucceeded
}

func (e *Engine) snapshotHeads() map[uint32]Head {
	snap := make(map[uint32]Head, len(e.heads))
	for id, h := range e.heads {
		snap[id] = *h
	}
	return snap
}

func (e *Engine) restoreHeads(snapshot map[uint32]Head) {
	for id, h := range snapshot {
		hCopy := h
		e.heads[id] = &hCopy
	}
}
