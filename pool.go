package depot

import (
	"unsafe"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

var _ Pool = (*TypedPool[int])(nil)

// slot is one storage unit: the owner tag plus the payload. A zero owner
// means the slot is free or was never used.
type slot[T any] struct {
	owner Entity
	value T
}

// TypedPool is block-allocated storage for all live instances of one
// component type. Blocks hold blockSize slots each, are appended on demand,
// and are never released or moved before Drain, so payload pointers stay
// stable for as long as their component lives. Freed slots are recycled LIFO
// through an index stack; the cursor marks the first never-used slot.
//
// Entity lookup is a linear scan over every allocated slot, live or dead.
// That cost is accepted; EntityLocator exists so an index can replace it.
type TypedPool[T any] struct {
	key       TypeKey
	elemSize  uintptr
	blockSize int
	blocks    [][]slot[T]
	free      []int
	cursor    int
	live      int
	destroy   func(*T)
	log       zerolog.Logger
}

func newTypedPool[T any](blockSize int, logger zerolog.Logger) (*TypedPool[T], error) {
	var zero T
	elemSize := unsafe.Sizeof(zero)
	if blockSize <= 0 || elemSize == 0 {
		return nil, InvalidPoolConfigError{BlockSize: blockSize, ElemSize: elemSize}
	}
	p := &TypedPool[T]{
		key:       FactoryNewTypeKey[T](),
		elemSize:  elemSize,
		blockSize: blockSize,
		log:       logger,
	}
	// Capability bound once: the user hook if *T implements Destroyer, then
	// zero the slot so pointer fields are released.
	if _, ok := any((*T)(nil)).(Destroyer); ok {
		p.destroy = func(v *T) {
			any(v).(Destroyer).Destroy()
			*v = zero
		}
	} else {
		p.destroy = func(v *T) {
			*v = zero
		}
	}
	return p, nil
}

// Allocate places value into a slot owned by owner and returns the payload
// pointer. The most recently freed slot is reused first; otherwise the next
// never-used slot is taken, growing by one block when capacity is exhausted.
// Owners are not checked for an existing slot; keeping one component per
// entity and pool is the caller's obligation.
func (p *TypedPool[T]) Allocate(owner Entity, value T) (*T, error) {
	if !owner.live {
		return nil, eris.Wrap(InvalidEntityError{Entity: owner}, "allocating component")
	}
	idx, ok := p.popFree()
	if !ok {
		if p.cursor == len(p.blocks)*p.blockSize {
			p.blocks = append(p.blocks, make([]slot[T], p.blockSize))
			p.log.Debug().
				Str("type", p.key.Name).
				Int("blocks", len(p.blocks)).
				Msg("pool block allocated")
		}
		idx = p.cursor
		p.cursor++
	}
	s := &p.blocks[idx/p.blockSize][idx%p.blockSize]
	s.owner = owner
	s.value = value
	p.live++
	return &s.value, nil
}

func (p *TypedPool[T]) popFree() (int, bool) {
	n := len(p.free)
	if n == 0 {
		return 0, false
	}
	idx := p.free[n-1]
	p.free = p.free[:n-1]
	return idx, true
}

// Free destroys the component behind ptr and recycles its slot. The pointer
// must have come from this pool and still denote a live slot.
func (p *TypedPool[T]) Free(ptr *T) error {
	for bi := range p.blocks {
		block := p.blocks[bi]
		for si := range block {
			if &block[si].value != ptr {
				continue
			}
			if !block[si].owner.live {
				return eris.Wrap(UnknownPointerError{Key: p.key}, "freeing component")
			}
			p.freeSlot(bi, si)
			return nil
		}
	}
	return eris.Wrap(UnknownPointerError{Key: p.key}, "freeing component")
}

func (p *TypedPool[T]) freeSlot(bi, si int) {
	s := &p.blocks[bi][si]
	p.destroy(&s.value)
	s.owner = Entity{}
	p.free = append(p.free, bi*p.blockSize+si)
	p.live--
}

// Lookup returns the payload pointer for the component owned by owner, or
// false if this pool holds none.
func (p *TypedPool[T]) Lookup(owner Entity) (*T, bool) {
	if !owner.live {
		return nil, false
	}
	for bi := range p.blocks {
		block := p.blocks[bi]
		for si := range block {
			if block[si].owner == owner {
				return &block[si].value, true
			}
		}
	}
	return nil, false
}

func (p *TypedPool[T]) Key() TypeKey {
	return p.key
}

func (p *TypedPool[T]) ElemSize() uintptr {
	return p.elemSize
}

func (p *TypedPool[T]) BlockSize() int {
	return p.blockSize
}

func (p *TypedPool[T]) BlockCount() int {
	return len(p.blocks)
}

func (p *TypedPool[T]) LiveCount() int {
	return p.live
}

func (p *TypedPool[T]) FreeCount() int {
	return len(p.free)
}

func (p *TypedPool[T]) LookupRaw(owner Entity) (unsafe.Pointer, bool) {
	v, ok := p.Lookup(owner)
	if !ok {
		return nil, false
	}
	return unsafe.Pointer(v), true
}

// FreeFor destroys the component owned by owner, if any. Entity destruction
// drives this across every registered pool.
func (p *TypedPool[T]) FreeFor(owner Entity) bool {
	if !owner.live {
		return false
	}
	for bi := range p.blocks {
		block := p.blocks[bi]
		for si := range block {
			if block[si].owner == owner {
				p.freeSlot(bi, si)
				return true
			}
		}
	}
	return false
}

// Drain destroys every live component and releases the blocks, returning the
// number of destructors run. The pool is reusable afterwards but empty.
func (p *TypedPool[T]) Drain() int {
	drained := 0
	for bi := range p.blocks {
		block := p.blocks[bi]
		for si := range block {
			if block[si].owner.live {
				p.destroy(&block[si].value)
				block[si].owner = Entity{}
				drained++
			}
		}
	}
	p.blocks = nil
	p.free = nil
	p.cursor = 0
	p.live = 0
	return drained
}
