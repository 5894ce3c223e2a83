/*
Package depot provides pooled component storage for entity-component designs.

Depot manages type-homogeneous pools of component records: each pool owns
fixed-size blocks of slots, recycles freed slots LIFO, and tags every live
slot with its owning entity. A registry mints and recycles entity ids, grows
the pool directory lazily, and guarantees no component outlives its entity.
Views iterate entities holding a required combination of component types.

Core Concepts:

  - Entity: a dense numeric handle; the zero value means "no entity".
  - Pool: block-allocated, free-list-recycled storage for one component type.
  - Registry: owns the entity array and the pool directory.
  - View: a query over entities holding a fixed set of component types.

Basic Usage:

	// Create a registry
	registry := depot.Factory.NewRegistry()

	// Create entities and attach components
	player := registry.CreateEntity()
	pos, _ := depot.CreateComponent(registry, player, Position{X: 10, Y: 20})
	depot.CreateComponent(registry, player, Velocity{X: 1, Y: 2})

	// Look components up by entity
	vel, ok := depot.GetComponent[Velocity](registry, player)
	if ok {
		pos.X += vel.X
		pos.Y += vel.Y
	}

	// Query entities holding both types
	position := depot.FactoryNewTypeKey[Position]()
	velocity := depot.FactoryNewTypeKey[Velocity]()
	view, _ := depot.Factory.NewView(registry, position, velocity)

	for _, e := range view.Entities() {
		if !view.HasRequired(e) {
			continue
		}
		pos, _ := depot.ViewGet[Position](view)
		vel, _ := depot.ViewGet[Velocity](view)
		pos.X += vel.X
		pos.Y += vel.Y
	}

	// Destroy an entity and every component it owns
	registry.DestroyEntity(player)

Component pointers are borrows: they stay valid until the owning component
or entity is destroyed, and using one afterwards is a caller error depot
does not detect. All operations are single-threaded by design.

The storage model favors simplicity over indexing: entity lookup inside a
pool is a linear scan, isolated behind the EntityLocator interface. Callers
without static component types (scripting bridges) register types through
TypeInfo and depot's erased creation path; see the script subpackage.
*/
package depot
