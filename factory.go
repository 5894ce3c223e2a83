package depot

type factory struct{}

var Factory factory

func (f factory) NewRegistry(options ...RegistryOption) Registry {
	return newRegistry(options...)
}

func (f factory) NewView(r Registry, keys ...TypeKey) (*View, error) {
	return newView(r, keys...)
}

// FactoryNewTypeKey derives the identity key for T from its canonical
// reflect name. Keys for the same T are always equal, so callers typically
// build them once and reuse the value.
func FactoryNewTypeKey[T any]() TypeKey {
	name := typeNameOf[T]()
	return TypeKey{Name: name, Hash: HashName(name)}
}

// FactoryNewPool builds a standalone typed pool outside any registry.
// Registries create their pools lazily; direct pools suit callers managing a
// single component type by hand.
func FactoryNewPool[T any](blockSize int) (*TypedPool[T], error) {
	return newTypedPool[T](blockSize, Config.Logger())
}
