package depot

import (
	"iter"
	"unsafe"

	"github.com/TheBitDrifter/mask"
)

type Registry interface {
	CreateEntity() Entity
	CreateEntities(n int) []Entity
	DestroyEntity(Entity) error
	EntityCount() int
	DestroyedCount() int
	Entities() iter.Seq2[int, Entity]
	Pool(TypeKey) (Pool, bool)
	Pools() iter.Seq[Pool]
	CreateComponentErased(Entity, TypeInfo, ...PoolOption) (unsafe.Pointer, error)
	Release() int
}

// EntityLocator is the entity-to-slot lookup in isolation. Both pool kinds
// satisfy it with a linear scan over their blocks; an indexed implementation
// can replace the scan without touching any caller.
type EntityLocator interface {
	LookupRaw(Entity) (unsafe.Pointer, bool)
}

type Pool interface {
	EntityLocator
	Key() TypeKey
	ElemSize() uintptr
	BlockSize() int
	BlockCount() int
	LiveCount() int
	FreeCount() int
	FreeFor(Entity) bool
	Drain() int
}

// Destroyer is the optional teardown hook a component type may implement.
// Pools invoke it before zeroing a slot, on explicit free, on entity
// destruction, and on Drain.
type Destroyer interface {
	Destroy()
}

type PoolOption func(*poolOptions)

type RegistryOption func(*registry)

// View is a query over entities holding a fixed combination of component
// types. The pointer cache is only valid for the entity most recently passed
// to a successful HasRequired call.
type View struct {
	registry *registry
	keys     []TypeKey

	// want has bits 0..K-1 set; found is rebuilt per HasRequired call
	want  mask.Mask
	found mask.Mask

	cache []unsafe.Pointer
}
