package depot

import (
	"unsafe"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

var _ Pool = (*rawPool)(nil)

type rawBlock struct {
	owners []Entity
	bytes  []byte
}

// rawPool is the type-erased pool behind CreateComponentErased. Block and
// free-stack behavior matches TypedPool; construction and destruction go
// through the TypeInfo callbacks instead of a type parameter. Payloads are
// raw bytes the collector cannot see into, so they must stay pointer-free.
type rawPool struct {
	info      TypeInfo
	blockSize int
	blocks    []rawBlock
	free      []int
	cursor    int
	live      int
	log       zerolog.Logger
}

func newRawPool(info TypeInfo, blockSize int, logger zerolog.Logger) (*rawPool, error) {
	if info.construct == nil || info.destroy == nil {
		return nil, InvalidTypeInfoError{Name: info.Name, Reason: "missing construct or destroy callback"}
	}
	if blockSize <= 0 || info.Size == 0 {
		return nil, InvalidPoolConfigError{BlockSize: blockSize, ElemSize: info.Size}
	}
	return &rawPool{
		info:      info,
		blockSize: blockSize,
		log:       logger,
	}, nil
}

func (p *rawPool) allocate(owner Entity) (unsafe.Pointer, error) {
	if !owner.live {
		return nil, eris.Wrap(InvalidEntityError{Entity: owner}, "allocating erased component")
	}
	var idx int
	if n := len(p.free); n > 0 {
		idx = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		if p.cursor == len(p.blocks)*p.blockSize {
			p.blocks = append(p.blocks, rawBlock{
				owners: make([]Entity, p.blockSize),
				bytes:  make([]byte, p.blockSize*int(p.info.Size)),
			})
			p.log.Debug().
				Str("type", p.info.Name).
				Int("blocks", len(p.blocks)).
				Msg("pool block allocated")
		}
		idx = p.cursor
		p.cursor++
	}
	block := &p.blocks[idx/p.blockSize]
	si := idx % p.blockSize
	payload := p.payload(block, si)
	p.info.construct(payload)
	block.owners[si] = owner
	p.live++
	return unsafe.Pointer(&payload[0]), nil
}

func (p *rawPool) payload(block *rawBlock, si int) []byte {
	off := si * int(p.info.Size)
	return block.bytes[off : off+int(p.info.Size)]
}

func (p *rawPool) Key() TypeKey {
	return p.info.TypeKey
}

func (p *rawPool) ElemSize() uintptr {
	return p.info.Size
}

func (p *rawPool) BlockSize() int {
	return p.blockSize
}

func (p *rawPool) BlockCount() int {
	return len(p.blocks)
}

func (p *rawPool) LiveCount() int {
	return p.live
}

func (p *rawPool) FreeCount() int {
	return len(p.free)
}

func (p *rawPool) LookupRaw(owner Entity) (unsafe.Pointer, bool) {
	if !owner.live {
		return nil, false
	}
	for bi := range p.blocks {
		block := &p.blocks[bi]
		for si := range block.owners {
			if block.owners[si] == owner {
				return unsafe.Pointer(&block.bytes[si*int(p.info.Size)]), true
			}
		}
	}
	return nil, false
}

func (p *rawPool) FreeFor(owner Entity) bool {
	if !owner.live {
		return false
	}
	for bi := range p.blocks {
		block := &p.blocks[bi]
		for si := range block.owners {
			if block.owners[si] == owner {
				p.info.destroy(p.payload(block, si))
				block.owners[si] = Entity{}
				p.free = append(p.free, bi*p.blockSize+si)
				p.live--
				return true
			}
		}
	}
	return false
}

func (p *rawPool) Drain() int {
	drained := 0
	for bi := range p.blocks {
		block := &p.blocks[bi]
		for si := range block.owners {
			if block.owners[si].live {
				p.info.destroy(p.payload(block, si))
				block.owners[si] = Entity{}
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
