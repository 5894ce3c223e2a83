package depot

import (
	"iter"
	"unsafe"

	"github.com/TheBitDrifter/mask"
)

func newView(r Registry, keys ...TypeKey) (*View, error) {
	if len(keys) == 0 {
		return nil, ViewConfigError{Reason: "no required types"}
	}
	for i, a := range keys {
		for _, b := range keys[i+1:] {
			if a.Hash == b.Hash && a.Name == b.Name {
				return nil, ViewConfigError{Reason: "duplicate required type " + a.Name}
			}
		}
	}
	var want mask.Mask
	for i := range keys {
		want.Mark(uint32(i))
	}
	return &View{
		registry: r.(*registry),
		keys:     keys,
		want:     want,
		cache:    make([]unsafe.Pointer, len(keys)),
	}, nil
}

// HasRequired reports whether e holds all of the view's required types,
// caching one pointer per type on success. Resolution stops at the first
// missing requirement. A destroyed or zero entity is always false.
func (v *View) HasRequired(e Entity) bool {
	for i := range v.cache {
		v.cache[i] = nil
	}
	if !e.live {
		return false
	}
	if len(v.keys) == 1 {
		// Single-type views need no found bookkeeping
		pool, ok := v.registry.Pool(v.keys[0])
		if !ok {
			return false
		}
		ptr, ok := pool.LookupRaw(e)
		if !ok {
			return false
		}
		v.cache[0] = ptr
		return true
	}
	v.found = mask.Mask{}
	for i, key := range v.keys {
		pool, ok := v.registry.Pool(key)
		if !ok {
			return false
		}
		ptr, ok := pool.LookupRaw(e)
		if !ok {
			return false
		}
		v.cache[i] = ptr
		v.found.Mark(uint32(i))
	}
	return v.found.ContainsAll(v.want)
}

// ViewGet returns the pointer cached for T by the most recent successful
// HasRequired call. False when T is not among the view's required types or
// the last check failed.
func ViewGet[T any](v *View) (*T, bool) {
	key := FactoryNewTypeKey[T]()
	for i, k := range v.keys {
		if k.Hash == key.Hash && k.Name == key.Name {
			if v.cache[i] == nil {
				return nil, false
			}
			return (*T)(v.cache[i]), true
		}
	}
	return nil, false
}

// Entities iterates the registry's full entity array, destroyed slots
// included; callers filter through HasRequired.
func (v *View) Entities() iter.Seq2[int, Entity] {
	return v.registry.Entities()
}

// EntityCount returns the size of the iterated array.
func (v *View) EntityCount() int {
	return v.registry.EntityCount()
}

// Hits counts the entities currently satisfying the view. Leaves the cache
// at the last entity checked.
func (v *View) Hits() int {
	hits := 0
	for _, e := range v.Entities() {
		if v.HasRequired(e) {
			hits++
		}
	}
	return hits
}
