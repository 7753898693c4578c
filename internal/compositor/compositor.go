package compositor

import (
	"io"

	"github.com/bnema/wlcore/internal/geom"
	"github.com/bnema/wlcore/internal/logger"
	"github.com/bnema/wlcore/internal/output"
	"github.com/bnema/wlcore/internal/seat"
	"github.com/bnema/wlcore/internal/shell"
	"github.com/bnema/wlcore/internal/spine"
	"github.com/bnema/wlcore/internal/surface"
	"github.com/bnema/wlcore/internal/wire"
	"github.com/bnema/wlcore/internal/wm"
)

// Compositor is the top-level aggregate: one Event Spine driving one
// wire.Listener, with every client's Session sharing the same Surface,
// Shell, and Window Mechanics engines (spec.md §2's "one compositor
// process, one seat, one output set" model). Input and Output engines
// are constructed here too and kept reachable from cmd for device and
// backend wiring; their own wire-protocol globals (wl_seat, wl_output,
// zwlr_output_manager) are a deliberately unimplemented boundary — see
// the grounding ledger.
type Compositor struct {
	Loop     *spine.Loop
	Surfaces *surface.Engine
	Shell    *shell.Engine
	Seat     *seat.Engine
	Outputs  *output.Engine
	WM       *wm.Engine

	// Workspace and Gap size move/resize grabs and set_maximized /
	// set_fullscreen requests against; Gap also feeds the snap policy
	// Window Mechanics consults mid-grab (spec.md §4.5, config.LayoutConfig).
	Workspace geom.Rect
	Gap       int32

	listener *wire.Listener
	sessions map[*wire.Conn]*Session
}

// New wires every engine together. seatCfg and outputsChanged let the
// caller (cmd) plug in the real device-open and backend collaborators
// without this package knowing about udev or the renderer; HitTest and
// FocusFollowsClick, if left nil, default to Window Mechanics' own
// stacking order and focus-setting, since the Window Mechanics engine is
// the natural home for both once it exists (seat.Engine takes them as
// plain function values precisely so it never needs to import wm).
func New(loop *spine.Loop, seatCfg seat.EngineConfig, outputsChanged func()) *Compositor {
	c := &Compositor{
		Loop:      loop,
		Surfaces:  surface.NewEngine(),
		Workspace: seatCfg.Bounds,
		sessions:  make(map[*wire.Conn]*Session),
	}
	c.Shell = shell.NewEngine(c.Surfaces)
	c.Outputs = output.NewEngine(loop, outputsChanged)

	if seatCfg.HitTest == nil {
		seatCfg.HitTest = func(p geom.Point) (uint64, float64, float64, bool) {
			return c.WM.HitTest(p)
		}
	}
	if seatCfg.FocusFollowsClick == nil {
		seatCfg.FocusFollowsClick = func(surfaceID uint64) {
			c.WM.FocusSurface(surfaceID)
		}
	}
	c.Seat = seat.NewEngine(seatCfg)

	c.WM = wm.NewEngine(wm.Config{
		SetFocus: func(surfaceID uint64, hasSurface bool) {
			if c.Seat.Seat.Keyboard != nil {
				c.Seat.Seat.Keyboard.SetFocus(surfaceID, hasSurface)
			}
		},
		Damage: func() {},
	})
	return c
}

// Listen starts accepting client connections on socketPath.
func (c *Compositor) Listen(socketPath string) error {
	c.listener = wire.NewListener(c.Loop, c, socketPath)
	return c.listener.Start()
}

// Stop tears down the listener and every live session.
func (c *Compositor) Stop() {
	if c.listener != nil {
		c.listener.Stop()
	}
}

// ClientConnected implements wire.ClientHandler.
func (c *Compositor) ClientConnected(conn *wire.Conn) {
	c.sessions[conn] = newSession(conn, c.listener, c.Surfaces, c.Shell, c.WM, c.Seat, wmRectFromGeom(c.Workspace), int(c.Gap))
	logger.Debug("compositor: client connected")
}

// wmRectFromGeom adapts a geom.Rect (the Output/Input Engines' coordinate
// type) to wm.Rect (the Window Mechanics package's own, since wm avoids an
// import of geom to stay independently testable).
func wmRectFromGeom(r geom.Rect) wm.Rect {
	return wm.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// ClientReadable implements wire.ClientHandler: drains exactly one
// request per wakeup, matching the spine's one-callback-at-a-time
// scheduling-budget model (spec.md §4.1); epoll re-fires immediately if
// more than one request is already buffered.
func (c *Compositor) ClientReadable(conn *wire.Conn) {
	sess, ok := c.sessions[conn]
	if !ok {
		return
	}
	ok2, err := sess.dispatchOne()
	if !ok2 {
		if err != nil && err != io.EOF {
			logger.Debugf("compositor: client disconnected: %v", err)
		}
		c.listener.Drop(conn)
	}
}

// ClientClosed implements wire.ClientHandler: cascades destruction of
// every object the client owned (spec.md §3).
func (c *Compositor) ClientClosed(conn *wire.Conn) {
	sess, ok := c.sessions[conn]
	if !ok {
		return
	}
	c.Surfaces.UnbindClient(sess.client.ID)
	delete(c.sessions, conn)
	logger.Debug("compositor: client disconnected")
}
