package depot

import "github.com/rotisserie/eris"

// Typed component operations are package-level generic functions since
// methods cannot take type parameters. They accept the Registry interface
// and work on the concrete registry underneath.

// CreateComponent places value into e's slot of T's pool, lazily creating
// the pool with the configured block size on first use of T. Returns the
// payload pointer; it stays valid until the component or entity is
// destroyed.
func CreateComponent[T any](r Registry, e Entity, value T) (*T, error) {
	reg := r.(*registry)
	if err := reg.validateEntity(e); err != nil {
		return nil, eris.Wrap(err, "creating component")
	}
	key := FactoryNewTypeKey[T]()
	existing, err := reg.lookupPool(key)
	if err != nil {
		return nil, err
	}
	var pool *TypedPool[T]
	if existing == nil {
		pool, err = newTypedPool[T](Config.BlockSizeFor(key.Name), reg.log)
		if err != nil {
			return nil, eris.Wrap(err, "creating component")
		}
		reg.registerPool(pool)
	} else {
		typed, ok := existing.(*TypedPool[T])
		if !ok {
			return nil, eris.Wrap(
				TypeContradictionError{Claimed: key, Registered: existing.Key()},
				"creating component",
			)
		}
		pool = typed
	}
	return pool.Allocate(e, value)
}

// GetComponent returns the pointer to e's component of type T, or false if
// T's pool is not registered or holds nothing for e.
func GetComponent[T any](r Registry, e Entity) (*T, bool) {
	reg := r.(*registry)
	if reg.validateEntity(e) != nil {
		return nil, false
	}
	key := FactoryNewTypeKey[T]()
	existing, ok := reg.Pool(key)
	if !ok {
		return nil, false
	}
	pool, ok := existing.(*TypedPool[T])
	if !ok {
		// Same name registered through the erased path; typed access would
		// reinterpret raw bytes, so treat it as absent.
		reg.log.Error().
			Str("type", key.Name).
			Msg("typed access to erased pool")
		return nil, false
	}
	return pool.Lookup(e)
}

// FreeComponent destroys the component behind ptr through T's pool. Freeing
// through a type that never registered a pool is a programmer error.
func FreeComponent[T any](r Registry, ptr *T) error {
	reg := r.(*registry)
	key := FactoryNewTypeKey[T]()
	if ptr == nil {
		return eris.Wrap(UnknownPointerError{Key: key}, "freeing component")
	}
	existing, err := reg.lookupPool(key)
	if err != nil {
		return err
	}
	if existing == nil {
		return eris.Wrap(PoolNotFoundError{Key: key}, "freeing component")
	}
	pool, ok := existing.(*TypedPool[T])
	if !ok {
		return eris.Wrap(
			TypeContradictionError{Claimed: key, Registered: existing.Key()},
			"freeing component",
		)
	}
	return pool.Free(ptr)
}
