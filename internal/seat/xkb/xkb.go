// Package xkb implements exactly the subset of XKB state spec.md's data
// model calls for: modifier/layout bitmask recompute and keycode->keysym
// resolution for the default evdev+pc105+us layout, plus a keymap text
// blob in the real XKB keymap text format so it can be served to clients
// the same way xkbcommon keymaps are served.
//
// No Go binding for libxkbcommon exists anywhere in the retrieved
// example pack (checked: neither a cgo wrapper nor a pure-Go
// reimplementation appears in any go.mod or vendored source), so this is
// the standard-library-grounded exception the transformation process
// requires. It implements only the evdev+pc105+us layout with no
// variants or options; anything beyond that is out of scope for this
// core (spec.md §4.4).
package xkb

import "fmt"

// Modifier is one bit of the XKB modifier mask.
type Modifier uint32

const (
	ModShift Modifier = 1 << iota
	ModCapsLock
	ModCtrl
	ModAlt
	ModNumLock
	ModLogo
)

// keysymTable maps XKB keycode (evdev keycode + 8) to the keysym
// produced with no modifiers and with Shift, covering the evdev+pc105+us
// layout's alphanumeric row and common punctuation. Keys outside this
// table resolve to 0 (NoSymbol), which is the same behavior xkbcommon
// exhibits for codes a keymap doesn't define.
var keysymTable = map[uint32][2]uint32{
	// row: 1..= (evdev KEY_1..KEY_EQUAL start at keycode 2, +8 offset = 10)
	10: {'1', '!'}, 11: {'2', '@'}, 12: {'3', '#'}, 13: {'4', '$'},
	14: {'5', '%'}, 15: {'6', '^'}, 16: {'7', '&'}, 17: {'8', '*'},
	18: {'9', '('}, 19: {'0', ')'}, 20: {'-', '_'}, 21: {'=', '+'},
	// qwertyuiop (evdev KEY_Q=16, +8=24)
	24: {'q', 'Q'}, 25: {'w', 'W'}, 26: {'e', 'E'}, 27: {'r', 'R'},
	28: {'t', 'T'}, 29: {'y', 'Y'}, 30: {'u', 'U'}, 31: {'i', 'I'},
	32: {'o', 'O'}, 33: {'p', 'P'},
	// asdfghjkl
	38: {'a', 'A'}, 39: {'s', 'S'}, 40: {'d', 'D'}, 41: {'f', 'F'},
	42: {'g', 'G'}, 43: {'h', 'H'}, 44: {'j', 'J'}, 45: {'k', 'K'},
	46: {'l', 'L'},
	// zxcvbnm
	52: {'z', 'Z'}, 53: {'x', 'X'}, 54: {'c', 'C'}, 55: {'v', 'V'},
	56: {'b', 'B'}, 57: {'n', 'N'}, 58: {'m', 'M'},
	65: {' ', ' '}, // space
}

// modifierKeycodes names the keycodes (evdev+8) this layout treats as
// modifiers, and which bit each sets while held.
var modifierKeycodes = map[uint32]Modifier{
	50: ModShift, 62: ModShift, // left/right shift
	37: ModCtrl, 105: ModCtrl, // left/right ctrl
	64: ModAlt, 108: ModAlt, // left/right alt
	58 + 8: ModCapsLock, // capslock sits at evdev 58, +8 = 66
}

// State is one seat's mutable XKB state: the currently-held modifier
// mask and, derived from it, the active shift level.
type State struct {
	mods    Modifier
	pressed map[uint32]bool
}

// NewState constructs an XKB state with no modifiers held.
func NewState() *State {
	return &State{pressed: make(map[uint32]bool)}
}

// UpdateKey feeds one key event (xkbKeycode already offset by +8) into
// the modifier tracker, returning whether the effective modifier mask
// changed, per spec.md §4.4: "recompute effective modifier/layout
// bitmask; if any change, broadcast new modifiers."
func (s *State) UpdateKey(xkbKeycode uint32, pressed bool) (changed bool) {
	bit, isMod := modifierKeycodes[xkbKeycode]
	if pressed {
		s.pressed[xkbKeycode] = true
	} else {
		delete(s.pressed, xkbKeycode)
	}
	if !isMod {
		return false
	}
	before := s.mods
	if pressed {
		s.mods |= bit
	} else {
		s.mods &^= bit
	}
	return s.mods != before
}

// Modifiers returns the current effective modifier mask.
func (s *State) Modifiers() Modifier { return s.mods }

// Keysym resolves xkbKeycode to a keysym under the current modifier
// state. Returns 0 (NoSymbol) for any keycode outside the table.
func (s *State) Keysym(xkbKeycode uint32) uint32 {
	pair, ok := keysymTable[xkbKeycode]
	if !ok {
		return 0
	}
	if s.mods&ModShift != 0 {
		return pair[1]
	}
	return pair[0]
}

// DefaultKeymapText returns a minimal but well-formed XKB keymap text
// blob for evdev+pc105+us with no variant or options, in the same
// textual format real xkbcommon keymaps use, so it can be served over a
// memfd the way spec.md §4.4 describes ("the keymap is served to clients
// as a file descriptor").
func DefaultKeymapText() string {
	return fmt.Sprintf(`xkb_keymap {
	xkb_keycodes { include "evdev+aliases(qwerty)" };
	xkb_types    { include "complete" };
	xkb_compat   { include "complete" };
	xkb_symbols  { include "pc+us+inet(evdev)" };
	xkb_geometry { include "pc(pc105)" };
};
`)
}
