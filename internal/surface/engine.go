package surface

import "fmt"

// Engine is the Surface Engine aggregate: the wire-protocol object
// graph's client and surface registries, and the commit pipeline entry
// points (spec.md §4.2's public contract, items a-k; a-c, g, i, j, k are
// methods here, d-f are Surface methods, h is Surface.Commit).
type Engine struct {
	clients  map[ClientID]*Client
	nextID   ID
	nextCli  ClientID
}

// NewEngine constructs an empty Surface Engine.
func NewEngine() *Engine {
	return &Engine{clients: make(map[ClientID]*Client)}
}

// BindClient creates the per-client state slot for a newly accepted
// connection (contract item a). Called once per connection, at accept
// time, before any surface-creation request can be serviced.
func (e *Engine) BindClient() *Client {
	e.nextCli++
	c := newClient(e.nextCli)
	e.clients[c.ID] = c
	return c
}

// UnbindClient destroys every surface the client owns and forgets it.
// Called when the peer disconnects (spec.md §3).
func (e *Engine) UnbindClient(id ClientID) {
	c, ok := e.clients[id]
	if !ok {
		return
	}
	c.destroyAll()
	delete(e.clients, id)
}

// Client looks up a bound client by id. Per spec.md's failure model, a
// miss here on an id that should be bound (i.e. came from an active wire
// connection) is a protocol-level fatal error for the caller to raise.
func (e *Engine) Client(id ClientID) (*Client, bool) {
	c, ok := e.clients[id]
	return c, ok
}

// CreateSurface creates a surface owned by client (contract item b).
func (e *Engine) CreateSurface(client *Client) *Surface {
	e.nextID++
	s := newSurface(e.nextID, client)
	client.surfaces[s.ID] = s
	return s
}

// DestroySurface destroys a surface explicitly (contract item, paired
// with the implicit destruction on client disconnect).
func (e *Engine) DestroySurface(s *Surface) {
	s.destroy()
	if s.Client != nil {
		delete(s.Client.surfaces, s.ID)
	}
}

// AddSubsurface establishes a parent/child relationship, giving child
// the subsurface role (contract item i). Fails if child already has a
// different role, or if parent is nil.
func (e *Engine) AddSubsurface(parent, child *Surface, synchronized bool) error {
	if parent == nil {
		return fmt.Errorf("surface: subsurface parent must not be nil")
	}
	if err := child.GiveRole(RoleSubsurface); err != nil {
		return err
	}
	child.Parent = parent
	child.Synchronized = synchronized
	parent.Children = append(parent.Children, child)
	return nil
}

// RemoveSubsurface tears down a parent/child relationship without
// destroying either surface.
func (e *Engine) RemoveSubsurface(child *Surface) {
	if child.Parent == nil {
		return
	}
	child.Parent.removeChild(child)
	child.Parent = nil
}
