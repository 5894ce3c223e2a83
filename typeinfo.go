package depot

import "reflect"

// FNV-1 64-bit, multiply-then-xor. Deliberately not hash/fnv, which
// implements FNV-1a (xor-then-multiply) and would produce different keys.
const (
	fnvOffset uint64 = 0xcbf29ce484222325
	fnvPrime  uint64 = 0x00000100000001b3
)

// HashName returns the FNV-1 hash of a type name. Pools registered through
// the erased path and pools created from static types agree on identity
// through this function alone.
func HashName(name string) uint64 {
	hash := fnvOffset
	for i := 0; i < len(name); i++ {
		hash *= fnvPrime
		hash ^= uint64(name[i])
	}
	return hash
}

// TypeKey identifies a component type inside a registry's pool directory.
// Name is canonical; Hash is derived from it. Resolution always compares
// both, so a hash collision between distinct names surfaces as an error
// instead of silently merging two types into one pool.
type TypeKey struct {
	Name string
	Hash uint64
}

func typeNameOf[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

// TypeInfo is the capability record for type-erased pools: identity plus
// payload size and the construct/destroy callbacks captured at registration.
// Statically typed pools never need one; the type parameter carries the same
// capabilities implicitly.
type TypeInfo struct {
	TypeKey
	Size      uintptr
	construct func(dst []byte)
	destroy   func(dst []byte)
}

// NewTypeInfo builds a capability record for the erased creation path,
// deriving the hash from name. Payloads handled through a TypeInfo must not
// contain Go pointers; the garbage collector cannot see into raw blocks.
func NewTypeInfo(name string, size uintptr, construct, destroy func(dst []byte)) (TypeInfo, error) {
	return NewTypeInfoWithHash(name, HashName(name), size, construct, destroy)
}

// NewTypeInfoWithHash is NewTypeInfo for callers bridging a foreign identity
// scheme that supplies its own hash values.
func NewTypeInfoWithHash(name string, hash uint64, size uintptr, construct, destroy func(dst []byte)) (TypeInfo, error) {
	if name == "" {
		return TypeInfo{}, InvalidTypeInfoError{Name: name, Reason: "empty type name"}
	}
	if size == 0 {
		return TypeInfo{}, InvalidTypeInfoError{Name: name, Reason: "zero payload size"}
	}
	if construct == nil || destroy == nil {
		return TypeInfo{}, InvalidTypeInfoError{Name: name, Reason: "missing construct or destroy callback"}
	}
	return TypeInfo{
		TypeKey:   TypeKey{Name: name, Hash: hash},
		Size:      size,
		construct: construct,
		destroy:   destroy,
	}, nil
}
