package depot

import "fmt"

// The fatal taxonomy: type contradictions and invalid entity usage are
// programmer errors reported as distinguishable typed errors. Absence is
// never an error; lookup paths report it with a false boolean.

type InvalidEntityError struct {
	Entity Entity
}

func (e InvalidEntityError) Error() string {
	return fmt.Sprintf("invalid entity handle: %v", e.Entity)
}

type DoubleDestroyError struct {
	Entity Entity
}

func (e DoubleDestroyError) Error() string {
	return fmt.Sprintf("entity already destroyed: %v", e.Entity)
}

type TypeContradictionError struct {
	Claimed    TypeKey
	Registered TypeKey
}

func (e TypeContradictionError) Error() string {
	return fmt.Sprintf("claimed type %q contradicts pool registered for %q", e.Claimed.Name, e.Registered.Name)
}

type HashCollisionError struct {
	Requested  TypeKey
	Registered TypeKey
}

func (e HashCollisionError) Error() string {
	return fmt.Sprintf("type hash %#x shared by %q and %q", e.Requested.Hash, e.Requested.Name, e.Registered.Name)
}

type UnknownPointerError struct {
	Key TypeKey
}

func (e UnknownPointerError) Error() string {
	return fmt.Sprintf("pointer does not denote a live %q slot", e.Key.Name)
}

type PoolNotFoundError struct {
	Key TypeKey
}

func (e PoolNotFoundError) Error() string {
	return fmt.Sprintf("no pool registered for type %q", e.Key.Name)
}

type InvalidPoolConfigError struct {
	BlockSize int
	ElemSize  uintptr
}

func (e InvalidPoolConfigError) Error() string {
	return fmt.Sprintf("invalid pool config: block size %d, element size %d", e.BlockSize, e.ElemSize)
}

type InvalidTypeInfoError struct {
	Name   string
	Reason string
}

func (e InvalidTypeInfoError) Error() string {
	return fmt.Sprintf("invalid type info for %q: %s", e.Name, e.Reason)
}

type ViewConfigError struct {
	Reason string
}

func (e ViewConfigError) Error() string {
	return fmt.Sprintf("invalid view: %s", e.Reason)
}
