// Package compositor wires the Surface, Shell, and Window Mechanics
// engines to the wire-protocol accept loop, playing the role the
// teacher's internal/server.ClientManager played for mouse-sharing
// sessions: one aggregate that owns every per-connection object table
// and drives the engines from incoming wire requests (spec.md §6).
package compositor

import (
	"errors"

	"github.com/bnema/wlcore/internal/logger"
	"github.com/bnema/wlcore/internal/seat"
	"github.com/bnema/wlcore/internal/shell"
	"github.com/bnema/wlcore/internal/surface"
	"github.com/bnema/wlcore/internal/wire"
	"github.com/bnema/wlcore/internal/wm"
)

// global is one entry in the static global table announced over
// wl_registry; name is the numeric name clients bind by.
type global struct {
	name      uint32
	iface     string
	version   uint32
	newObject func(sess *Session, newID uint32)
}

// Session is one client connection's wire-level state: its Registry, its
// Surface Engine Client, and the reverse index from surface id to the
// wire object wrapping it (needed so surface-destruction hooks driven
// from outside the wire layer, e.g. Window Mechanics' scenario E, can
// still find and forget the right wire object).
type Session struct {
	conn     *wire.Conn
	registry *wire.Registry
	listener *wire.Listener

	surfaces *surface.Engine
	shell    *shell.Engine
	wm       *wm.Engine
	seat     *seat.Engine
	client   *surface.Client

	workspace wm.Rect
	gap       int

	surfaceObjects map[surface.ID]*surfaceObject
	xdgByToplevel  map[*shell.Toplevel]*xdgToplevelObject

	globals []global
}

func newSession(conn *wire.Conn, listener *wire.Listener, surfaces *surface.Engine, shellEngine *shell.Engine, wmEngine *wm.Engine, seatEngine *seat.Engine, workspace wm.Rect, gap int) *Session {
	s := &Session{
		conn:           conn,
		registry:       wire.NewRegistry(),
		listener:       listener,
		surfaces:       surfaces,
		shell:          shellEngine,
		wm:             wmEngine,
		seat:           seatEngine,
		workspace:      workspace,
		gap:            gap,
		surfaceObjects: make(map[surface.ID]*surfaceObject),
		xdgByToplevel:  make(map[*shell.Toplevel]*xdgToplevelObject),
	}
	s.client = surfaces.BindClient()
	s.registry.Insert(&displayObject{sess: s})
	s.globals = []global{
		{name: 1, iface: "wl_compositor", version: 6, newObject: func(sess *Session, id uint32) {
			sess.registry.Insert(&compositorObject{id: id, sess: sess})
		}},
		{name: 2, iface: "wl_shm", version: 1, newObject: func(sess *Session, id uint32) {
			sess.registry.Insert(&shmObject{id: id, sess: sess})
		}},
		{name: 3, iface: "xdg_wm_base", version: 5, newObject: func(sess *Session, id uint32) {
			sess.registry.Insert(&xdgWmBaseObject{id: id, sess: sess})
		}},
	}
	return s
}

// announceGlobals writes one wl_registry.global event per static global;
// called once, right after get_registry, since this core's global set
// never changes for the life of a connection.
func (s *Session) announceGlobals(reg *registryObject) {
	for _, g := range s.globals {
		w := wire.NewWriter()
		w.Uint32(g.name)
		w.String(g.iface)
		w.Uint32(g.version)
		s.writeMessage(w.Finish(reg.id, 0))
	}
}

func (s *Session) bindGlobal(name, newID uint32) error {
	for _, g := range s.globals {
		if g.name == name {
			g.newObject(s, newID)
			return nil
		}
	}
	return wire.NewProtocolError(newID, wire.ErrorInvalidObject, "wl_registry.bind: unknown global name %d", name)
}

// sendCallbackDone implements wl_callback.done for wl_display.sync: a
// one-shot object that fires immediately since this core processes
// requests synchronously within a single spine callback.
func (s *Session) sendCallbackDone(id uint32, data uint32) {
	w := wire.NewWriter()
	w.Uint32(data)
	s.writeMessage(w.Finish(id, 0))
}

// manageToplevel hands a freshly created toplevel to Window Mechanics,
// using the surface id as both the space key and (stringified) the
// domain identifier, since this core has no external policy
// collaborator of its own to assign richer domain names.
func (s *Session) manageToplevel(id surface.ID, tl *shell.Toplevel) {
	s.wm.Manage(id, domainFor(id), tl)
}

func domainFor(id surface.ID) wm.DomainID {
	return wm.DomainID(uintToString(uint64(id)))
}

func (s *Session) toplevelObjectFor(xs *shell.XdgSurface) (*xdgToplevelObject, bool) {
	if xs.Toplevel == nil {
		return nil, false
	}
	tlo, ok := s.xdgByToplevel[xs.Toplevel]
	return tlo, ok
}

// pointerPosition reports the seat's pointer location in global logical
// coordinates, used to seed a move/resize grab at the position the
// client's request implicitly refers to.
func (s *Session) pointerPosition() (float64, float64, bool) {
	if s.seat == nil || s.seat.Seat == nil || s.seat.Seat.Pointer == nil {
		return 0, 0, false
	}
	x, y := s.seat.Seat.Pointer.Position()
	return x, y, true
}

// setPointerGrab installs a Window Mechanics move/resize grab on the
// seat's pointer so subsequent Motion/Button events drive it instead of
// ordinary surface dispatch, until the grab finishes or is cancelled.
func (s *Session) setPointerGrab(g seat.PointerGrab) {
	if s.seat != nil && s.seat.Seat != nil && s.seat.Seat.Pointer != nil {
		s.seat.Seat.Pointer.SetGrab(g)
	}
}

// workspaceRect reports the workspace rectangle and inter-window gap
// move/resize grabs and set_maximized/set_fullscreen should size and
// snap against, since this core has exactly one workspace.
func (s *Session) workspaceRect() (wm.Rect, int) {
	return s.workspace, s.gap
}

func (s *Session) writeMessage(msg []byte) {
	if err := s.conn.WriteMessage(msg); err != nil {
		logger.Debugf("compositor: write to client failed, dropping connection: %v", err)
		s.listener.Drop(s.conn)
	}
}

// dispatchOne reads and handles exactly one pending request, reporting
// io.EOF-class errors as a clean disconnect and ProtocolErrors as a
// wl_display.error event followed by disconnect (spec.md §7).
func (s *Session) dispatchOne() (bool, error) {
	h, args, fds, err := s.conn.ReadMessage()
	if err != nil {
		return false, err
	}
	if err := s.registry.Dispatch(h, args, fds); err != nil {
		var perr *wire.ProtocolError
		if errors.As(err, &perr) {
			s.sendError(perr)
			return false, err
		}
		logger.Warnf("compositor: request on object %d opcode %d failed: %v", h.ObjectID, h.Opcode, err)
	}
	return true, nil
}

func (s *Session) sendError(perr *wire.ProtocolError) {
	w := wire.NewWriter()
	w.Uint32(perr.ObjectID)
	w.Uint32(perr.Code)
	w.String(perr.Message)
	s.writeMessage(w.Finish(1, 0)) // wl_display.error
}

func uintToString(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
