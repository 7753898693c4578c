package wire

import "fmt"

// ProtocolError is a client-side protocol violation: the specific error
// code is sent to the client as a wl_display.error event and the
// connection is then closed. It never propagates past the connection
// boundary (spec.md §7).
type ProtocolError struct {
	ObjectID uint32
	Code     uint32
	Message  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error on object %d (code %d): %s", e.ObjectID, e.Code, e.Message)
}

// NewProtocolError builds a ProtocolError for the given offending object.
func NewProtocolError(objectID, code uint32, format string, args ...any) *ProtocolError {
	return &ProtocolError{ObjectID: objectID, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Common wl_display error codes, shared across every object.
const (
	ErrorInvalidObject  uint32 = 0
	ErrorInvalidMethod  uint32 = 1
	ErrorNoMemory       uint32 = 2
	ErrorImplementation uint32 = 3
)
