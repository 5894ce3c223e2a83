package depot

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestComponentValues(t *testing.T) {
	registry := Factory.NewRegistry()
	entities := registry.CreateEntities(3)

	for i, e := range entities {
		if _, err := CreateComponent(registry, e, Position{X: float64(i), Y: float64(i * 10)}); err != nil {
			t.Fatalf("CreateComponent() error = %v", err)
		}
	}

	// Values stay independent per entity and writes through the pointer are
	// visible on the next lookup
	for i, e := range entities {
		pos, ok := GetComponent[Position](registry, e)
		if !ok {
			t.Fatalf("GetComponent() missed entity %d", i)
		}
		if pos.X != float64(i) || pos.Y != float64(i*10) {
			t.Errorf("Entity %d component = %+v", i, *pos)
		}
		pos.X += 100

		again, _ := GetComponent[Position](registry, e)
		if again != pos {
			t.Error("Repeated lookups returned different pointers")
		}
		if again.X != float64(i)+100 {
			t.Errorf("Write through pointer lost: %v", again.X)
		}
	}
}

func TestComponentLazyPoolCreation(t *testing.T) {
	registry := Factory.NewRegistry()
	e := registry.CreateEntity()
	key := FactoryNewTypeKey[Position]()

	if _, ok := registry.Pool(key); ok {
		t.Fatal("Pool exists before first component creation")
	}

	if _, err := CreateComponent(registry, e, Position{}); err != nil {
		t.Fatalf("CreateComponent() error = %v", err)
	}
	pool, ok := registry.Pool(key)
	if !ok {
		t.Fatal("Pool missing after first component creation")
	}
	if pool.BlockSize() != DefaultBlockSize {
		t.Errorf("BlockSize() = %d, want default %d", pool.BlockSize(), DefaultBlockSize)
	}

	// Later creations reuse the registered pool
	e2 := registry.CreateEntity()
	if _, err := CreateComponent(registry, e2, Position{}); err != nil {
		t.Fatalf("CreateComponent() error = %v", err)
	}
	pools := 0
	for range registry.Pools() {
		pools++
	}
	if pools != 1 {
		t.Errorf("Registry holds %d pools, want 1", pools)
	}
}

func TestComponentOnBadEntity(t *testing.T) {
	registry := Factory.NewRegistry()
	destroyed := registry.CreateEntity()
	if err := registry.DestroyEntity(destroyed); err != nil {
		t.Fatalf("DestroyEntity() error = %v", err)
	}

	tests := []struct {
		name   string
		entity Entity
	}{
		{"Zero handle", Entity{}},
		{"Destroyed entity", destroyed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateComponent(registry, tt.entity, Position{})
			if err == nil {
				t.Fatal("CreateComponent() succeeded, want error")
			}
			var invalid InvalidEntityError
			if !errors.As(err, &invalid) {
				t.Errorf("CreateComponent() error = %v, want InvalidEntityError", err)
			}

			if _, ok := GetComponent[Position](registry, tt.entity); ok {
				t.Error("GetComponent() resolved a bad entity")
			}
		})
	}
}

func TestComponentFree(t *testing.T) {
	registry := Factory.NewRegistry()
	e := registry.CreateEntity()
	pos, err := CreateComponent(registry, e, Position{X: 5})
	if err != nil {
		t.Fatalf("CreateComponent() error = %v", err)
	}

	if err := FreeComponent(registry, pos); err != nil {
		t.Fatalf("FreeComponent() error = %v", err)
	}
	if _, ok := GetComponent[Position](registry, e); ok {
		t.Error("Component resolvable after free")
	}

	// The entity itself survives its component
	if !e.Live() {
		t.Error("Entity handle dead after component free")
	}
	if _, err := CreateComponent(registry, e, Position{X: 6}); err != nil {
		t.Errorf("CreateComponent() after free error = %v", err)
	}
}

func TestComponentFreeErrors(t *testing.T) {
	registry := Factory.NewRegistry()
	e := registry.CreateEntity()

	t.Run("Nil pointer", func(t *testing.T) {
		err := FreeComponent[Position](registry, nil)
		var unknown UnknownPointerError
		if !errors.As(err, &unknown) {
			t.Errorf("FreeComponent(nil) error = %v, want UnknownPointerError", err)
		}
	})

	t.Run("No pool for type", func(t *testing.T) {
		var stray Health
		err := FreeComponent(registry, &stray)
		var notFound PoolNotFoundError
		if !errors.As(err, &notFound) {
			t.Errorf("FreeComponent() error = %v, want PoolNotFoundError", err)
		}
	})

	t.Run("Double free", func(t *testing.T) {
		pos, err := CreateComponent(registry, e, Position{})
		if err != nil {
			t.Fatalf("CreateComponent() error = %v", err)
		}
		if err := FreeComponent(registry, pos); err != nil {
			t.Fatalf("FreeComponent() error = %v", err)
		}
		err = FreeComponent(registry, pos)
		var unknown UnknownPointerError
		if !errors.As(err, &unknown) {
			t.Errorf("Second FreeComponent() error = %v, want UnknownPointerError", err)
		}
	})
}

func testTypeInfo(t *testing.T, name string, destroyed *int) TypeInfo {
	t.Helper()
	info, err := NewTypeInfo(
		name,
		8,
		func(dst []byte) {
			binary.LittleEndian.PutUint64(dst, 42)
		},
		func(dst []byte) {
			clear(dst)
			if destroyed != nil {
				*destroyed++
			}
		},
	)
	if err != nil {
		t.Fatalf("NewTypeInfo() error = %v", err)
	}
	return info
}

func TestErasedComponent(t *testing.T) {
	registry := Factory.NewRegistry()
	e := registry.CreateEntity()

	destroyed := 0
	info := testTypeInfo(t, "scripted.Mana", &destroyed)

	ptr, err := registry.CreateComponentErased(e, info, WithBlockSize(4))
	if err != nil {
		t.Fatalf("CreateComponentErased() error = %v", err)
	}
	if got := *(*uint64)(ptr); got != 42 {
		t.Errorf("Constructed payload = %d, want 42", got)
	}

	pool, ok := registry.Pool(info.TypeKey)
	if !ok {
		t.Fatal("Erased pool missing from registry")
	}
	if pool.BlockSize() != 4 {
		t.Errorf("BlockSize() = %d, want 4", pool.BlockSize())
	}
	if pool.ElemSize() != 8 {
		t.Errorf("ElemSize() = %d, want 8", pool.ElemSize())
	}

	raw, ok := pool.LookupRaw(e)
	if !ok || raw != ptr {
		t.Error("LookupRaw() disagrees with creation pointer")
	}

	// Destruction runs the registered destroy callback
	if err := registry.DestroyEntity(e); err != nil {
		t.Fatalf("DestroyEntity() error = %v", err)
	}
	if destroyed != 1 {
		t.Errorf("Destroy callback ran %d times, want 1", destroyed)
	}
	if _, ok := pool.LookupRaw(e); ok {
		t.Error("Erased component resolvable after destruction")
	}
}

func TestErasedComponentRejectsZeroInfo(t *testing.T) {
	registry := Factory.NewRegistry()
	e := registry.CreateEntity()

	_, err := registry.CreateComponentErased(e, TypeInfo{})
	if err == nil {
		t.Fatal("CreateComponentErased() accepted the zero TypeInfo")
	}
	var invalid InvalidTypeInfoError
	if !errors.As(err, &invalid) {
		t.Errorf("CreateComponentErased() error = %v, want InvalidTypeInfoError", err)
	}
}

func TestErasedBlockSizeFirstRegistrationWins(t *testing.T) {
	registry := Factory.NewRegistry()
	info := testTypeInfo(t, "scripted.Mana", nil)

	e1 := registry.CreateEntity()
	if _, err := registry.CreateComponentErased(e1, info, WithBlockSize(4)); err != nil {
		t.Fatalf("CreateComponentErased() error = %v", err)
	}

	e2 := registry.CreateEntity()
	if _, err := registry.CreateComponentErased(e2, info, WithBlockSize(8)); err != nil {
		t.Fatalf("CreateComponentErased() error = %v", err)
	}

	pool, _ := registry.Pool(info.TypeKey)
	if pool.BlockSize() != 4 {
		t.Errorf("BlockSize() = %d, want first registration's 4", pool.BlockSize())
	}
	if pool.LiveCount() != 2 {
		t.Errorf("LiveCount() = %d, want 2", pool.LiveCount())
	}
}

func TestTypedErasedContradiction(t *testing.T) {
	key := FactoryNewTypeKey[Position]()

	t.Run("Erased claim against typed pool", func(t *testing.T) {
		registry := Factory.NewRegistry()
		e := registry.CreateEntity()
		if _, err := CreateComponent(registry, e, Position{}); err != nil {
			t.Fatalf("CreateComponent() error = %v", err)
		}

		info := testTypeInfo(t, key.Name, nil)
		_, err := registry.CreateComponentErased(e, info)
		var contradiction TypeContradictionError
		if !errors.As(err, &contradiction) {
			t.Errorf("CreateComponentErased() error = %v, want TypeContradictionError", err)
		}
	})

	t.Run("Typed claim against erased pool", func(t *testing.T) {
		registry := Factory.NewRegistry()
		e := registry.CreateEntity()
		info := testTypeInfo(t, key.Name, nil)
		if _, err := registry.CreateComponentErased(e, info); err != nil {
			t.Fatalf("CreateComponentErased() error = %v", err)
		}

		_, err := CreateComponent(registry, e, Position{})
		var contradiction TypeContradictionError
		if !errors.As(err, &contradiction) {
			t.Errorf("CreateComponent() error = %v, want TypeContradictionError", err)
		}

		// Typed reads treat the erased pool as absence
		if _, ok := GetComponent[Position](registry, e); ok {
			t.Error("GetComponent() reinterpreted an erased payload")
		}

		var stray Position
		err = FreeComponent(registry, &stray)
		if !errors.As(err, &contradiction) {
			t.Errorf("FreeComponent() error = %v, want TypeContradictionError", err)
		}
	})
}

func TestHashCollision(t *testing.T) {
	registry := Factory.NewRegistry()
	e := registry.CreateEntity()

	infoA, err := NewTypeInfoWithHash("scripted.CollideA", 77, 8,
		func(dst []byte) {}, func(dst []byte) {})
	if err != nil {
		t.Fatalf("NewTypeInfoWithHash() error = %v", err)
	}
	infoB, err := NewTypeInfoWithHash("scripted.CollideB", 77, 8,
		func(dst []byte) {}, func(dst []byte) {})
	if err != nil {
		t.Fatalf("NewTypeInfoWithHash() error = %v", err)
	}

	if _, err := registry.CreateComponentErased(e, infoA); err != nil {
		t.Fatalf("CreateComponentErased() error = %v", err)
	}

	_, err = registry.CreateComponentErased(e, infoB)
	if err == nil {
		t.Fatal("Colliding registration succeeded")
	}
	var collision HashCollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("CreateComponentErased() error = %v, want HashCollisionError", err)
	}
	if collision.Requested.Name != "scripted.CollideB" || collision.Registered.Name != "scripted.CollideA" {
		t.Errorf("Collision names = %q vs %q", collision.Requested.Name, collision.Registered.Name)
	}

	// Boolean resolution reports collisions as absence
	if _, ok := registry.Pool(infoB.TypeKey); ok {
		t.Error("Pool() resolved a colliding key")
	}
	if _, ok := registry.Pool(infoA.TypeKey); !ok {
		t.Error("Pool() lost the registered key")
	}
}

func TestLazyPoolBlockSizeConfig(t *testing.T) {
	saveConfig(t)
	Config.SetBlockSize("depot.Health", 2)

	registry := Factory.NewRegistry()
	e := registry.CreateEntity()
	if _, err := CreateComponent(registry, e, Health{Current: 1}); err != nil {
		t.Fatalf("CreateComponent() error = %v", err)
	}

	pool, _ := registry.Pool(FactoryNewTypeKey[Health]())
	if pool.BlockSize() != 2 {
		t.Errorf("BlockSize() = %d, want configured 2", pool.BlockSize())
	}
}
