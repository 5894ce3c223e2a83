package depot

import (
	"errors"
	"iter"
	"unsafe"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

var _ Registry = &registry{}

// registry owns the entity array, the destroyed-id stack, and the pool
// directory. Destroyed slots in the entity array hold the zero Entity; the
// directory is an unordered slice scanned linearly by type key.
type registry struct {
	entities  []Entity
	destroyed []uint32
	pools     []Pool
	log       zerolog.Logger
}

func newRegistry(options ...RegistryOption) Registry {
	r := &registry{
		log: Config.Logger(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// WithLogger overrides the Config logger for one registry.
func WithLogger(logger zerolog.Logger) RegistryOption {
	return func(r *registry) {
		r.log = logger
	}
}

// CreateEntity returns the most recently destroyed id if any is waiting,
// else mints the next dense id.
func (r *registry) CreateEntity() Entity {
	if n := len(r.destroyed); n > 0 {
		id := r.destroyed[n-1]
		r.destroyed = r.destroyed[:n-1]
		e := Entity{id: id, live: true}
		r.entities[id] = e
		r.log.Debug().Uint32("entity", id).Msg("entity id recycled")
		return e
	}
	e := Entity{id: uint32(len(r.entities)), live: true}
	r.entities = append(r.entities, e)
	return e
}

// CreateEntities creates n entities, draining the destroyed-id stack before
// growing the array.
func (r *registry) CreateEntities(n int) []Entity {
	if n <= 0 {
		return nil
	}
	out := make([]Entity, 0, n)
	for len(r.destroyed) > 0 && len(out) < n {
		out = append(out, r.CreateEntity())
	}
	remaining := n - len(out)
	if remaining == 0 {
		return out
	}
	currentLen := len(r.entities)
	neededCap := currentLen + remaining
	if cap(r.entities) < neededCap {
		// Grow by doubling or adding remaining, whichever is larger
		newCap := max(neededCap, 2*cap(r.entities))
		grown := make([]Entity, currentLen, newCap)
		copy(grown, r.entities)
		r.entities = grown
	}
	r.entities = r.entities[:neededCap]
	for i := 0; i < remaining; i++ {
		e := Entity{id: uint32(currentLen + i), live: true}
		r.entities[currentLen+i] = e
		out = append(out, e)
	}
	return out
}

// DestroyEntity zeroes the entity's array slot, pushes its id for recycling,
// and frees its component in every registered pool. No live component
// outlives its owner.
func (r *registry) DestroyEntity(e Entity) error {
	if !e.live || int(e.id) >= len(r.entities) {
		return eris.Wrap(InvalidEntityError{Entity: e}, "destroying entity")
	}
	if r.entities[e.id] != e {
		return eris.Wrap(DoubleDestroyError{Entity: e}, "destroying entity")
	}
	r.entities[e.id] = Entity{}
	r.destroyed = append(r.destroyed, e.id)
	freed := 0
	for _, p := range r.pools {
		if p.FreeFor(e) {
			freed++
		}
	}
	r.log.Debug().
		Uint32("entity", e.id).
		Int("components_freed", freed).
		Msg("entity destroyed")
	return nil
}

// validateEntity rejects the zero handle, out-of-range ids, and handles
// whose array slot no longer matches (destroyed since issue).
func (r *registry) validateEntity(e Entity) error {
	if !e.live || int(e.id) >= len(r.entities) || r.entities[e.id] != e {
		return InvalidEntityError{Entity: e}
	}
	return nil
}

func (r *registry) EntityCount() int {
	return len(r.entities)
}

func (r *registry) DestroyedCount() int {
	return len(r.destroyed)
}

// Entities iterates the full entity array, destroyed slots included; views
// filter those through HasRequired.
func (r *registry) Entities() iter.Seq2[int, Entity] {
	return func(yield func(int, Entity) bool) {
		for i, e := range r.entities {
			if !yield(i, e) {
				return
			}
		}
	}
}

// lookupPool scans the directory for key. Hash matches are verified against
// the full name on every resolution; a hash shared by two distinct names is
// reported rather than conflated.
func (r *registry) lookupPool(key TypeKey) (Pool, error) {
	for _, p := range r.pools {
		registered := p.Key()
		if registered.Hash != key.Hash {
			continue
		}
		if registered.Name != key.Name {
			return nil, eris.Wrap(HashCollisionError{Requested: key, Registered: registered}, "resolving pool")
		}
		return p, nil
	}
	return nil, nil
}

// Pool resolves the pool registered for key, reporting absence with false.
// Hash collisions are logged and reported as absence here; the creation and
// free paths surface them as errors.
func (r *registry) Pool(key TypeKey) (Pool, bool) {
	p, err := r.lookupPool(key)
	if err != nil {
		var collision HashCollisionError
		if errors.As(err, &collision) {
			r.log.Error().
				Str("requested", collision.Requested.Name).
				Str("registered", collision.Registered.Name).
				Uint64("hash", collision.Requested.Hash).
				Msg("type hash collision")
		}
		return nil, false
	}
	if p == nil {
		return nil, false
	}
	return p, true
}

func (r *registry) Pools() iter.Seq[Pool] {
	return func(yield func(Pool) bool) {
		for _, p := range r.pools {
			if !yield(p) {
				return
			}
		}
	}
}

func (r *registry) registerPool(p Pool) {
	r.pools = append(r.pools, p)
	key := p.Key()
	r.log.Debug().
		Str("type", key.Name).
		Uint64("hash", key.Hash).
		Int("block_size", p.BlockSize()).
		Msg("pool registered")
}

type poolOptions struct {
	blockSize int
}

// WithBlockSize overrides the configured block size when a pool is created
// through the erased path.
func WithBlockSize(n int) PoolOption {
	return func(o *poolOptions) {
		o.blockSize = n
	}
}

// CreateComponentErased is component creation for callers without a static
// type: identity, payload size, and the construct/destroy callbacks all come
// from info. The first registration of a type fixes its pool's block size;
// later divergent requests use the existing pool.
func (r *registry) CreateComponentErased(e Entity, info TypeInfo, options ...PoolOption) (unsafe.Pointer, error) {
	if err := r.validateEntity(e); err != nil {
		return nil, eris.Wrap(err, "creating erased component")
	}
	if info.construct == nil || info.destroy == nil {
		return nil, eris.Wrap(
			InvalidTypeInfoError{Name: info.Name, Reason: "missing construct or destroy callback"},
			"creating erased component",
		)
	}
	var opts poolOptions
	for _, opt := range options {
		opt(&opts)
	}

	existing, err := r.lookupPool(info.TypeKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		p, ok := existing.(*rawPool)
		if !ok || p.info.Size != info.Size {
			return nil, eris.Wrap(
				TypeContradictionError{Claimed: info.TypeKey, Registered: existing.Key()},
				"creating erased component",
			)
		}
		if opts.blockSize > 0 && opts.blockSize != p.blockSize {
			r.log.Debug().
				Str("type", info.Name).
				Int("registered", p.blockSize).
				Int("requested", opts.blockSize).
				Msg("block size request ignored for existing pool")
		}
		return p.allocate(e)
	}

	blockSize := opts.blockSize
	if blockSize <= 0 {
		blockSize = Config.BlockSizeFor(info.Name)
	}
	p, err := newRawPool(info, blockSize, r.log)
	if err != nil {
		return nil, eris.Wrap(err, "creating erased component")
	}
	r.registerPool(p)
	return p.allocate(e)
}

// Release drains every pool, running destructors on all live components, and
// clears the registry. Returns the number of destructors run.
func (r *registry) Release() int {
	drained := 0
	for _, p := range r.pools {
		drained += p.Drain()
	}
	r.pools = nil
	r.entities = nil
	r.destroyed = nil
	r.log.Debug().Int("components_drained", drained).Msg("registry released")
	return drained
}
