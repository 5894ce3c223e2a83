package depot

import "fmt"

// Entity is a handle to a registry-managed identity. The zero value means
// "no entity": destroyed slots in the registry's entity array hold it, and
// every operation rejects it. Ids are dense, zero-based, and recycled LIFO
// after destruction, so two live handles never share an id but a stale
// handle may alias a recycled one; not using handles past DestroyEntity is
// the caller's obligation.
type Entity struct {
	id   uint32
	live bool
}

// ID returns the numeric identifier. Only meaningful while Live.
func (e Entity) ID() uint32 {
	return e.id
}

// Live reports whether the handle denotes an entity at all.
func (e Entity) Live() bool {
	return e.live
}

func (e Entity) String() string {
	if !e.live {
		return "entity(none)"
	}
	return fmt.Sprintf("entity(%d)", e.id)
}
