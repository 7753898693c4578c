package surface

import "fmt"

// ClientID identifies a connected peer, stable for the life of its wire
// connection (spec.md §3 "Client").
type ClientID uint64

// Client holds one connected peer's surface-related state: every surface
// it owns, plus whatever capability slot value the Surface Engine's
// caller chose to stash (spec.md leaves the slot's content to the layer
// above; this engine only guarantees the slot exists from bind onward).
type Client struct {
	ID       ClientID
	surfaces map[ID]*Surface
	pools    map[uint64]*Pool
	nextPool uint64

	// CapabilitySlot is opaque to this package; the Shell Engine stores
	// its own per-client shell state here rather than the engine
	// maintaining a second parallel map (spec.md §3).
	CapabilitySlot any
}

func newClient(id ClientID) *Client {
	return &Client{
		ID:       id,
		surfaces: make(map[ID]*Surface),
		pools:    make(map[uint64]*Pool),
	}
}

// Surfaces returns every surface currently owned by the client.
func (c *Client) Surfaces() []*Surface {
	out := make([]*Surface, 0, len(c.surfaces))
	for _, s := range c.surfaces {
		out = append(out, s)
	}
	return out
}

// Lookup returns the client's surface with the given id. Per spec.md
// §4.2's failure model, a miss during normal dispatch is the caller's
// signal to raise a protocol error; this method itself just reports ok.
func (c *Client) Lookup(id ID) (*Surface, bool) {
	s, ok := c.surfaces[id]
	return s, ok
}

// AddPool registers a newly created shm pool under a fresh handle.
func (c *Client) AddPool(p *Pool) uint64 {
	c.nextPool++
	c.pools[c.nextPool] = p
	return c.nextPool
}

// Pool returns the client's pool with the given handle.
func (c *Client) Pool(handle uint64) (*Pool, bool) {
	p, ok := c.pools[handle]
	return p, ok
}

// RemovePool closes and forgets the pool with the given handle.
func (c *Client) RemovePool(handle uint64) error {
	p, ok := c.pools[handle]
	if !ok {
		return fmt.Errorf("surface: unknown pool handle %d", handle)
	}
	delete(c.pools, handle)
	return p.Close()
}

// destroyAll runs destruction on every surface the client owns, in
// unspecified order, used when the client disconnects (spec.md §3:
// disconnection "cascades destruction of every object owned by that
// client").
func (c *Client) destroyAll() {
	for _, s := range c.surfaces {
		s.destroy()
	}
	c.surfaces = make(map[ID]*Surface)
	for _, p := range c.pools {
		_ = p.Close()
	}
	c.pools = make(map[uint64]*Pool)
}
