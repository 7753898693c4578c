package wire

import "sync"

// Object is anything reachable by id on a client's wire connection:
// wl_surface, xdg_toplevel, wl_seat, zwlr_output_head_v1, ... Dispatch is
// invoked by the connection's request-reading loop with the still-unread
// argument reader positioned right after the header.
type Object interface {
	ID() uint32
	Interface() string
	HandleRequest(opcode uint16, args *Reader, fds []int) error
}

// Registry is one client connection's id -> Object table. Objects are
// looked up by id on every incoming request; a miss is always a fatal
// protocol error (spec.md §3: "missing per-client state is fatal").
type Registry struct {
	mu      sync.Mutex
	objects map[uint32]Object
}

func NewRegistry() *Registry {
	return &Registry{objects: make(map[uint32]Object)}
}

func (r *Registry) Insert(obj Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[obj.ID()] = obj
}

func (r *Registry) Remove(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, id)
}

func (r *Registry) Lookup(id uint32) (Object, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.objects[id]
	return obj, ok
}

// Dispatch looks up the target object and forwards the request to it,
// returning a ProtocolError (ErrorInvalidObject) if the id is unknown.
func (r *Registry) Dispatch(h Header, args *Reader, fds []int) error {
	obj, ok := r.Lookup(h.ObjectID)
	if !ok {
		return NewProtocolError(h.ObjectID, ErrorInvalidObject, "no object with id %d", h.ObjectID)
	}
	return obj.HandleRequest(h.Opcode, args, fds)
}
