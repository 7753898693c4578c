package compositor

import (
	"fmt"

	"github.com/bnema/wlcore/internal/geom"
	"github.com/bnema/wlcore/internal/logger"
	"github.com/bnema/wlcore/internal/shell"
	"github.com/bnema/wlcore/internal/surface"
	"github.com/bnema/wlcore/internal/wire"
	"github.com/bnema/wlcore/internal/wm"
)

// displayObject is wl_display (always object id 1 on every connection):
// the two bootstrap requests every other global hangs off of.
type displayObject struct {
	sess *Session
}

func (d *displayObject) ID() uint32          { return 1 }
func (d *displayObject) Interface() string   { return "wl_display" }
func (d *displayObject) HandleRequest(opcode uint16, args *wire.Reader, fds []int) error {
	switch opcode {
	case 0: // sync(new_id callback)
		newID, err := args.Uint32()
		if err != nil {
			return err
		}
		d.sess.sendCallbackDone(newID, 0)
		return nil
	case 1: // get_registry(new_id registry)
		newID, err := args.Uint32()
		if err != nil {
			return err
		}
		reg := &registryObject{id: newID, sess: d.sess}
		d.sess.registry.Insert(reg)
		d.sess.announceGlobals(reg)
		return nil
	default:
		return wire.NewProtocolError(d.ID(), wire.ErrorInvalidMethod, "wl_display: unknown opcode %d", opcode)
	}
}

// registryObject is wl_registry: announces globals at bind time (this
// core has a static global set, so there is nothing to announce after
// the initial burst) and dispatches bind requests to the matching
// factory.
type registryObject struct {
	id   uint32
	sess *Session
}

func (r *registryObject) ID() uint32        { return r.id }
func (r *registryObject) Interface() string { return "wl_registry" }
func (r *registryObject) HandleRequest(opcode uint16, args *wire.Reader, fds []int) error {
	if opcode != 0 { // bind(name, interface, version, new_id)
		return wire.NewProtocolError(r.ID(), wire.ErrorInvalidMethod, "wl_registry: unknown opcode %d", opcode)
	}
	name, err := args.Uint32()
	if err != nil {
		return err
	}
	if _, err := args.String(); err != nil { // interface name, unused: name already disambiguates
		return err
	}
	if _, err := args.Uint32(); err != nil { // version, unused: this core only ever offers one
		return err
	}
	newID, err := args.Uint32()
	if err != nil {
		return err
	}
	return r.sess.bindGlobal(name, newID)
}

// compositorObject is wl_compositor: the wl_surface factory.
type compositorObject struct {
	id   uint32
	sess *Session
}

func (c *compositorObject) ID() uint32        { return c.id }
func (c *compositorObject) Interface() string { return "wl_compositor" }
func (c *compositorObject) HandleRequest(opcode uint16, args *wire.Reader, fds []int) error {
	switch opcode {
	case 0: // create_surface(new_id)
		newID, err := args.Uint32()
		if err != nil {
			return err
		}
		s := c.sess.surfaces.CreateSurface(c.sess.client)
		obj := &surfaceObject{id: newID, sess: c.sess, surface: s}
		c.sess.registry.Insert(obj)
		c.sess.surfaceObjects[s.ID] = obj
		return nil
	case 1: // create_region(new_id)
		newID, err := args.Uint32()
		if err != nil {
			return err
		}
		c.sess.registry.Insert(&regionObject{id: newID, region: &geom.Region{}})
		return nil
	default:
		return wire.NewProtocolError(c.ID(), wire.ErrorInvalidMethod, "wl_compositor: unknown opcode %d", opcode)
	}
}

// regionObject is wl_region: an accumulating set of rectangles handed to
// wl_surface.set_opaque_region/set_input_region. geom.Region only supports
// adding rectangles, so subtract is accepted but does not narrow it (see
// internal/geom).
type regionObject struct {
	id     uint32
	region *geom.Region
}

func (r *regionObject) ID() uint32        { return r.id }
func (r *regionObject) Interface() string { return "wl_region" }
func (r *regionObject) HandleRequest(opcode uint16, args *wire.Reader, fds []int) error {
	switch opcode {
	case 0: // destroy
		return nil
	case 1: // add(x, y, width, height)
		x, err := args.Int32()
		if err != nil {
			return err
		}
		y, err := args.Int32()
		if err != nil {
			return err
		}
		w, err := args.Int32()
		if err != nil {
			return err
		}
		h, err := args.Int32()
		if err != nil {
			return err
		}
		r.region.Add(geom.Rect{X: x, Y: y, Width: w, Height: h})
		return nil
	case 2: // subtract(x, y, width, height)
		if _, err := args.Int32(); err != nil {
			return err
		}
		if _, err := args.Int32(); err != nil {
			return err
		}
		if _, err := args.Int32(); err != nil {
			return err
		}
		if _, err := args.Int32(); err != nil {
			return err
		}
		return nil
	default:
		return wire.NewProtocolError(r.ID(), wire.ErrorInvalidMethod, "wl_region: unknown opcode %d", opcode)
	}
}

// shmObject is wl_shm: the shm pool factory.
type shmObject struct {
	id   uint32
	sess *Session
}

func (s *shmObject) ID() uint32        { return s.id }
func (s *shmObject) Interface() string { return "wl_shm" }
func (s *shmObject) HandleRequest(opcode uint16, args *wire.Reader, fds []int) error {
	if opcode != 0 { // create_pool(new_id, fd, size)
		return wire.NewProtocolError(s.ID(), wire.ErrorInvalidMethod, "wl_shm: unknown opcode %d", opcode)
	}
	newID, err := args.Uint32()
	if err != nil {
		return err
	}
	size, err := args.Int32()
	if err != nil {
		return err
	}
	if len(fds) == 0 {
		if fd := s.sess.conn.PopFD(); fd >= 0 {
			fds = []int{fd}
		}
	}
	if len(fds) == 0 {
		return wire.NewProtocolError(s.ID(), wire.ErrorInvalidMethod, "wl_shm: create_pool missing fd")
	}
	pool, err := surface.NewPool(fds[0], size)
	if err != nil {
		return fmt.Errorf("compositor: create_pool: %w", err)
	}
	handle := s.sess.client.AddPool(pool)
	s.sess.registry.Insert(&shmPoolObject{id: newID, sess: s.sess, handle: handle, pool: pool})
	return nil
}

// shmPoolObject is wl_shm_pool.
type shmPoolObject struct {
	id     uint32
	sess   *Session
	handle uint64
	pool   *surface.Pool
}

func (p *shmPoolObject) ID() uint32        { return p.id }
func (p *shmPoolObject) Interface() string { return "wl_shm_pool" }
func (p *shmPoolObject) HandleRequest(opcode uint16, args *wire.Reader, fds []int) error {
	switch opcode {
	case 0: // create_buffer(new_id, offset, width, height, stride, format)
		newID, err := args.Uint32()
		if err != nil {
			return err
		}
		offset, err := args.Int32()
		if err != nil {
			return err
		}
		width, err := args.Int32()
		if err != nil {
			return err
		}
		height, err := args.Int32()
		if err != nil {
			return err
		}
		stride, err := args.Int32()
		if err != nil {
			return err
		}
		format, err := args.Uint32()
		if err != nil {
			return err
		}
		buf, err := p.pool.CreateBuffer(offset, width, height, stride, surface.Format(format))
		if err != nil {
			return fmt.Errorf("compositor: create_buffer: %w", err)
		}
		p.sess.registry.Insert(&bufferObject{id: newID, buffer: buf})
		return nil
	case 1: // destroy
		p.sess.registry.Remove(p.id)
		return p.sess.client.RemovePool(p.handle)
	case 2: // resize(size)
		size, err := args.Int32()
		if err != nil {
			return err
		}
		return p.pool.Resize(size)
	default:
		return wire.NewProtocolError(p.ID(), wire.ErrorInvalidMethod, "wl_shm_pool: unknown opcode %d", opcode)
	}
}

// bufferObject is wl_buffer: a thin wire handle onto a Surface Engine
// Buffer, forgotten on destroy.
type bufferObject struct {
	id     uint32
	buffer *surface.Buffer
}

func (b *bufferObject) ID() uint32        { return b.id }
func (b *bufferObject) Interface() string { return "wl_buffer" }
func (b *bufferObject) HandleRequest(opcode uint16, args *wire.Reader, fds []int) error {
	if opcode != 0 {
		return wire.NewProtocolError(b.ID(), wire.ErrorInvalidMethod, "wl_buffer: unknown opcode %d", opcode)
	}
	return nil // destroy: nothing else references this handle once dropped
}

// surfaceObject is wl_surface.
type surfaceObject struct {
	id      uint32
	sess    *Session
	surface *surface.Surface
}

func (s *surfaceObject) ID() uint32        { return s.id }
func (s *surfaceObject) Interface() string { return "wl_surface" }
func (s *surfaceObject) HandleRequest(opcode uint16, args *wire.Reader, fds []int) error {
	switch opcode {
	case 0: // destroy
		s.sess.surfaces.DestroySurface(s.surface)
		delete(s.sess.surfaceObjects, s.surface.ID)
		s.sess.registry.Remove(s.id)
		return nil
	case 1: // attach(buffer, x, y)
		bufID, err := args.Uint32()
		if err != nil {
			return err
		}
		if _, err := args.Int32(); err != nil { // x, y: legacy pre-v5 offset, unused past v5
			return err
		}
		if _, err := args.Int32(); err != nil {
			return err
		}
		if bufID == 0 {
			s.surface.AttachBuffer(nil)
			return nil
		}
		obj, ok := s.sess.registry.Lookup(bufID)
		if !ok {
			return wire.NewProtocolError(s.id, wire.ErrorInvalidObject, "wl_surface.attach: unknown buffer %d", bufID)
		}
		bo, ok := obj.(*bufferObject)
		if !ok {
			return wire.NewProtocolError(s.id, wire.ErrorInvalidObject, "wl_surface.attach: object %d is not a buffer", bufID)
		}
		s.surface.AttachBuffer(bo.buffer)
		return nil
	case 2: // damage(x, y, width, height)
		return s.readDamage(args)
	case 4: // set_opaque_region(region)
		regionID, err := args.Uint32()
		if err != nil {
			return err
		}
		region, err := s.resolveRegion(regionID)
		if err != nil {
			return err
		}
		s.surface.SetOpaqueRegion(region)
		return nil
	case 5: // set_input_region(region)
		regionID, err := args.Uint32()
		if err != nil {
			return err
		}
		region, err := s.resolveRegion(regionID)
		if err != nil {
			return err
		}
		s.surface.SetInputRegion(region)
		return nil
	case 6: // commit
		_, err := s.surface.Commit()
		return err
	case 7: // set_buffer_transform(transform)
		t, err := args.Int32()
		if err != nil {
			return err
		}
		s.surface.SetBufferTransform(geom.Transform(t))
		return nil
	case 8: // set_buffer_scale(scale)
		scale, err := args.Int32()
		if err != nil {
			return err
		}
		s.surface.SetBufferScale(scale)
		return nil
	case 9: // damage_buffer(x, y, width, height)
		return s.readDamage(args)
	default:
		return wire.NewProtocolError(s.ID(), wire.ErrorInvalidMethod, "wl_surface: unknown opcode %d", opcode)
	}
}

// resolveRegion looks up a wl_region by id and snapshots its rectangles,
// since set_opaque_region/set_input_region take the region's contents at
// call time — a later wl_region.add must not retroactively change an
// already-applied call (a nil id, per protocol, clears the hint).
func (s *surfaceObject) resolveRegion(id uint32) (*geom.Region, error) {
	if id == 0 {
		return nil, nil
	}
	obj, ok := s.sess.registry.Lookup(id)
	if !ok {
		return nil, wire.NewProtocolError(s.id, wire.ErrorInvalidObject, "wl_surface: unknown region %d", id)
	}
	ro, ok := obj.(*regionObject)
	if !ok {
		return nil, wire.NewProtocolError(s.id, wire.ErrorInvalidObject, "wl_surface: object %d is not wl_region", id)
	}
	snapshot := &geom.Region{}
	for _, rect := range ro.region.Rects() {
		snapshot.Add(rect)
	}
	return snapshot, nil
}

func (s *surfaceObject) readDamage(args *wire.Reader) error {
	x, err := args.Int32()
	if err != nil {
		return err
	}
	y, err := args.Int32()
	if err != nil {
		return err
	}
	w, err := args.Int32()
	if err != nil {
		return err
	}
	h, err := args.Int32()
	if err != nil {
		return err
	}
	s.surface.AddDamage(geom.Rect{X: x, Y: y, Width: w, Height: h})
	return nil
}

// xdgWmBaseObject is xdg_wm_base: the xdg_surface factory and ping/pong
// endpoint.
type xdgWmBaseObject struct {
	id   uint32
	sess *Session
}

func (x *xdgWmBaseObject) ID() uint32        { return x.id }
func (x *xdgWmBaseObject) Interface() string { return "xdg_wm_base" }
func (x *xdgWmBaseObject) HandleRequest(opcode uint16, args *wire.Reader, fds []int) error {
	switch opcode {
	case 0: // destroy
		x.sess.registry.Remove(x.id)
		return nil
	case 2: // get_xdg_surface(new_id, surface)
		newID, err := args.Uint32()
		if err != nil {
			return err
		}
		surfID, err := args.Uint32()
		if err != nil {
			return err
		}
		obj, ok := x.sess.registry.Lookup(surfID)
		if !ok {
			return wire.NewProtocolError(x.id, wire.ErrorInvalidObject, "get_xdg_surface: unknown surface %d", surfID)
		}
		so, ok := obj.(*surfaceObject)
		if !ok {
			return wire.NewProtocolError(x.id, wire.ErrorInvalidObject, "get_xdg_surface: object %d is not wl_surface", surfID)
		}
		xs, err := x.sess.shell.GetXdgSurface(x.sess.client, so.surface)
		if err != nil {
			return err
		}
		xso := &xdgSurfaceObject{id: newID, sess: x.sess, xdg: xs}
		xs.ConfigureSender = xso.sendConfigure
		x.sess.registry.Insert(xso)
		return nil
	case 3: // pong(serial)
		serial, err := args.Uint32()
		if err != nil {
			return err
		}
		return x.sess.shell.Pong(x.sess.shell.ShellStateFor(x.sess.client), serial)
	default:
		return wire.NewProtocolError(x.ID(), wire.ErrorInvalidMethod, "xdg_wm_base: unknown opcode %d", opcode)
	}
}

// xdgSurfaceObject is xdg_surface.
type xdgSurfaceObject struct {
	id   uint32
	sess *Session
	xdg  *shell.XdgSurface
}

func (x *xdgSurfaceObject) ID() uint32        { return x.id }
func (x *xdgSurfaceObject) Interface() string { return "xdg_surface" }
func (x *xdgSurfaceObject) HandleRequest(opcode uint16, args *wire.Reader, fds []int) error {
	switch opcode {
	case 0: // destroy
		x.sess.shell.DestroyXdgSurface(x.sess.client, x.xdg)
		x.sess.registry.Remove(x.id)
		return nil
	case 1: // get_toplevel(new_id)
		newID, err := args.Uint32()
		if err != nil {
			return err
		}
		tl, err := shell.NewToplevel(x.xdg)
		if err != nil {
			return err
		}
		tlo := &xdgToplevelObject{id: newID, sess: x.sess, toplevel: tl}
		x.sess.registry.Insert(tlo)
		x.sess.xdgByToplevel[tl] = tlo
		x.sess.manageToplevel(x.xdg.Surface.ID, tl)
		return nil
	case 3: // set_window_geometry(x, y, width, height)
		xv, err := args.Int32()
		if err != nil {
			return err
		}
		yv, err := args.Int32()
		if err != nil {
			return err
		}
		w, err := args.Int32()
		if err != nil {
			return err
		}
		h, err := args.Int32()
		if err != nil {
			return err
		}
		x.xdg.SetWindowGeometry(shell.Rect{X: xv, Y: yv, Width: w, Height: h})
		return nil
	case 4: // ack_configure(serial)
		serial, err := args.Uint32()
		if err != nil {
			return err
		}
		if err := x.xdg.AckConfigure(serial); err != nil {
			return err
		}
		x.sess.wm.AckConfigure(x.xdg.Surface.ID, serial)
		return nil
	default:
		return wire.NewProtocolError(x.ID(), wire.ErrorInvalidMethod, "xdg_surface: unknown opcode %d", opcode)
	}
}

// sendConfigure is XdgSurface.ConfigureSender: encodes and writes the
// xdg_surface.configure event, preceded by xdg_toplevel.configure when
// the configure carries toplevel state (real clients expect the pair in
// that order, within the same wire roundtrip).
func (x *xdgSurfaceObject) sendConfigure(cfg shell.Configure) {
	if cfg.Toplevel != nil {
		if tlo, ok := x.sess.toplevelObjectFor(x.xdg); ok {
			tlo.sendConfigure(*cfg.Toplevel)
		}
	}
	w := wire.NewWriter()
	w.Uint32(cfg.Serial)
	x.sess.writeMessage(w.Finish(x.id, 0)) // xdg_surface.configure
}

// xdgToplevelObject is xdg_toplevel.
type xdgToplevelObject struct {
	id       uint32
	sess     *Session
	toplevel *shell.Toplevel
}

func (t *xdgToplevelObject) ID() uint32        { return t.id }
func (t *xdgToplevelObject) Interface() string { return "xdg_toplevel" }
func (t *xdgToplevelObject) HandleRequest(opcode uint16, args *wire.Reader, fds []int) error {
	switch opcode {
	case 0: // destroy
		delete(t.sess.xdgByToplevel, t.toplevel)
		t.sess.registry.Remove(t.id)
		return nil
	case 1: // set_parent(parent)
		parentID, err := args.Uint32()
		if err != nil {
			return err
		}
		if parentID == 0 {
			t.toplevel.SetParent(nil)
			return nil
		}
		obj, ok := t.sess.registry.Lookup(parentID)
		if !ok {
			return wire.NewProtocolError(t.id, wire.ErrorInvalidObject, "xdg_toplevel.set_parent: unknown object %d", parentID)
		}
		po, ok := obj.(*xdgToplevelObject)
		if !ok {
			return wire.NewProtocolError(t.id, wire.ErrorInvalidObject, "xdg_toplevel.set_parent: object %d is not xdg_toplevel", parentID)
		}
		t.toplevel.SetParent(po.toplevel)
		return nil
	case 2: // set_title(string)
		title, err := args.String()
		if err != nil {
			return err
		}
		t.toplevel.SetTitle(title)
		return nil
	case 3: // set_app_id(string)
		appID, err := args.String()
		if err != nil {
			return err
		}
		t.toplevel.SetAppID(appID)
		return nil
	case 7: // set_max_size(width, height)
		w, err := args.Int32()
		if err != nil {
			return err
		}
		h, err := args.Int32()
		if err != nil {
			return err
		}
		t.toplevel.SetMaxSize(w, h)
		return nil
	case 8: // set_min_size(width, height)
		w, err := args.Int32()
		if err != nil {
			return err
		}
		h, err := args.Int32()
		if err != nil {
			return err
		}
		t.toplevel.SetMinSize(w, h)
		return nil
	case 4: // show_window_menu(seat, serial, x, y)
		if _, err := args.Uint32(); err != nil {
			return err
		}
		if _, err := args.Uint32(); err != nil {
			return err
		}
		if _, err := args.Int32(); err != nil {
			return err
		}
		if _, err := args.Int32(); err != nil {
			return err
		}
		logger.Debug("xdg_toplevel: show_window_menu accepted, no window menu UI to show")
		return nil
	case 5: // move(seat, serial)
		if _, err := args.Uint32(); err != nil {
			return err
		}
		if _, err := args.Uint32(); err != nil {
			return err
		}
		t.beginMove()
		return nil
	case 6: // resize(seat, serial, edges)
		if _, err := args.Uint32(); err != nil {
			return err
		}
		if _, err := args.Uint32(); err != nil {
			return err
		}
		edges, err := args.Uint32()
		if err != nil {
			return err
		}
		t.beginResize(wm.ResizeEdges(edges))
		return nil
	case 9: // set_maximized
		ws, _ := t.sess.workspaceRect()
		t.toplevel.Maximize(ws.Width, ws.Height)
		return nil
	case 10: // unset_maximized
		t.toplevel.Unmaximize()
		return nil
	case 11: // set_fullscreen(output)
		if _, err := args.Uint32(); err != nil { // output: always the sole output here
			return err
		}
		ws, _ := t.sess.workspaceRect()
		t.toplevel.Fullscreen(ws.Width, ws.Height)
		return nil
	case 12: // unset_fullscreen
		t.toplevel.Unfullscreen()
		return nil
	case 13: // set_minimized
		t.toplevel.Minimize()
		return nil
	default:
		return wire.NewProtocolError(t.ID(), wire.ErrorInvalidMethod, "xdg_toplevel: unknown opcode %d", opcode)
	}
}

// beginMove starts an interactive move grab at the seat pointer's
// current position, a no-op if the pointer has no position (no pointer
// capability attached) or the toplevel isn't a managed, mapped window.
func (t *xdgToplevelObject) beginMove() {
	px, py, ok := t.sess.pointerPosition()
	if !ok {
		return
	}
	ws, gap := t.sess.workspaceRect()
	domain := domainFor(t.toplevel.Xdg.Surface.ID)
	grab, ok := t.sess.wm.BeginMove(domain, px, py, ws, gap)
	if !ok {
		return
	}
	t.sess.setPointerGrab(grab)
}

// beginResize starts an interactive resize grab for the given edges, the
// wire xdg_toplevel.resize_edge enum values coincide numerically with
// wm.ResizeEdges's bitmask sums (e.g. top_left=5=top|left), so no
// translation table is needed.
func (t *xdgToplevelObject) beginResize(edges wm.ResizeEdges) {
	px, py, ok := t.sess.pointerPosition()
	if !ok {
		return
	}
	ws, gap := t.sess.workspaceRect()
	domain := domainFor(t.toplevel.Xdg.Surface.ID)
	grab, ok := t.sess.wm.BeginResize(domain, edges, px, py, ws, gap)
	if !ok {
		return
	}
	t.sess.setPointerGrab(grab)
}

// sendConfigure encodes and writes the xdg_toplevel.configure event
// (width, height, states array); the xdg_surface.configure(serial) that
// must follow it is written by the caller.
func (t *xdgToplevelObject) sendConfigure(cfg shell.ToplevelConfigure) {
	w := wire.NewWriter()
	w.Int32(cfg.Width)
	w.Int32(cfg.Height)
	w.Array(encodeStates(cfg.States))
	t.sess.writeMessage(w.Finish(t.id, 0))
}

func encodeStates(s shell.ToplevelStates) []byte {
	var states []uint32
	const (
		stateMaximized = 1
		stateFullscreen = 2
		stateResizing   = 3
		stateActivated  = 4
	)
	if s.Maximized {
		states = append(states, stateMaximized)
	}
	if s.Fullscreen {
		states = append(states, stateFullscreen)
	}
	if s.Resizing {
		states = append(states, stateResizing)
	}
	if s.Activated {
		states = append(states, stateActivated)
	}
	w := wire.NewWriter()
	for _, v := range states {
		w.Uint32(v)
	}
	// Writer always prefixes a header; strip it, callers only want the
	// raw array payload bytes.
	return w.Finish(0, 0)[wire.HeaderLen:]
}
