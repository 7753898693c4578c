// Package output implements the Output Engine: the set of outputs, the
// wlr-output-management-v1-style transaction protocol for multi-head
// configuration, and per-output power state (spec.md §4.5).
//
// Head's shape is grounded directly on the teacher's own
// output_management.OutputHead record, which already mirrors the
// wlr-output-management-v1 head exactly down to the eight-value
// Transform enum; this engine keeps that shape as its own Head type.
package output

import "github.com/bnema/wlcore/internal/geom"

// Transform re-exports geom.Transform so callers of this package don't
// need a second import for the same eight-value enum the teacher's
// OutputHead used under its own Transform type.
type Transform = geom.Transform

// Mode is one supported display mode.
type Mode struct {
	Width     int32
	Height    int32
	RefreshMHz int32
	Preferred bool
}

// PowerState is the externally visible power state of an output. Standby
// and suspend are internal substates the idle policy may pass through,
// but the protocol only ever exposes on/off (spec.md §4.5).
type PowerState int

const (
	PowerOn PowerState = iota
	PowerStandby
	PowerSuspend
	PowerOff
)

// Head represents a physical or logical output device, grounded on the
// teacher's output_management.OutputHead.
type Head struct {
	ID           uint32
	Name         string
	Description  string
	Make         string
	Model        string
	SerialNumber string
	Enabled        bool
	Position       geom.Point
	Width, Height  int32 // logical size, post scale/transform
	PhysicalWidthMM, PhysicalHeightMM int32
	CurrentMode  *Mode
	Modes        []Mode
	Scale        float64
	Transform    Transform
	Power        PowerState

	powerHandle *PowerHandle
}

// HasMode reports whether m (by width/height/refresh) is in the head's
// supported mode set.
func (h *Head) HasMode(m Mode) bool {
	for _, supported := range h.Modes {
		if supported.Width == m.Width && supported.Height == m.Height && supported.RefreshMHz == m.RefreshMHz {
			return true
		}
	}
	return false
}

// Bounds returns the head's rectangle in the global logical coordinate
// space.
func (h *Head) Bounds() geom.Rect {
	return geom.Rect{X: h.Position.X, Y: h.Position.Y, Width: h.Width, Height: h.Height}
}
