// Package script bridges Lua-defined component types onto a depot registry.
//
// Scripts declare blueprints: a component name plus an ordered list of
// float64 fields with default values. The engine turns each blueprint into a
// depot.TypeInfo and creates instances through the registry's erased path,
// so scripted components live in pools and die with their entities exactly
// like statically typed ones. Field access is offset-based over the erased
// payload; script logic runs through protected Lua calls.
package script

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/TheBitDrifter/depot"
)

const fieldSize = 8

// Blueprint is a Lua-declared component type: ordered float64 fields at
// fixed offsets inside an erased payload.
type Blueprint struct {
	Name      string
	BlockSize int
	fields    []string
	defaults  []float64
	offsets   map[string]int
	info      depot.TypeInfo
}

// Fields returns the field names in declaration order.
func (b *Blueprint) Fields() []string {
	out := make([]string, len(b.fields))
	copy(out, b.fields)
	return out
}

// Info returns the capability record registered for this blueprint.
func (b *Blueprint) Info() depot.TypeInfo {
	return b.info
}

type Engine struct {
	vm         *lua.LState
	registry   depot.Registry
	log        zerolog.Logger
	blueprints map[string]*Blueprint
}

type Option func(*Engine)

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = logger
	}
}

func New(registry depot.Registry, options ...Option) *Engine {
	e := &Engine{
		vm:         lua.NewState(),
		registry:   registry,
		log:        zerolog.Nop(),
		blueprints: make(map[string]*Blueprint),
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *Engine) Close() {
	e.vm.Close()
}

// LoadFile runs a blueprint script from disk. The chunk must set a global
// component table:
//
//	component = {
//	  name = "mana",
//	  block_size = 8,
//	  fields = {
//	    {"current", 50},
//	    {"max", 100},
//	  },
//	}
//
// Functions the chunk defines stay available to Call and Apply.
func (e *Engine) LoadFile(path string) (*Blueprint, error) {
	if err := e.vm.DoFile(path); err != nil {
		return nil, eris.Wrapf(err, "running blueprint file %s", path)
	}
	return e.readBlueprint()
}

// LoadString is LoadFile for an in-memory chunk.
func (e *Engine) LoadString(src string) (*Blueprint, error) {
	if err := e.vm.DoString(src); err != nil {
		return nil, eris.Wrap(err, "running blueprint chunk")
	}
	return e.readBlueprint()
}

func (e *Engine) readBlueprint() (*Blueprint, error) {
	defer e.vm.SetGlobal("component", lua.LNil)
	tbl, ok := e.vm.GetGlobal("component").(*lua.LTable)
	if !ok {
		return nil, eris.New("blueprint chunk must set a global component table")
	}
	name := lua.LVAsString(tbl.RawGetString("name"))
	if name == "" {
		return nil, eris.New("blueprint has no name")
	}
	fieldsTbl, ok := tbl.RawGetString("fields").(*lua.LTable)
	if !ok {
		return nil, eris.Errorf("blueprint %q has no fields array", name)
	}
	bp := &Blueprint{
		Name:      name,
		BlockSize: int(lua.LVAsNumber(tbl.RawGetString("block_size"))),
		offsets:   make(map[string]int),
	}
	count := fieldsTbl.Len()
	if count == 0 {
		return nil, eris.Errorf("blueprint %q declares no fields", name)
	}
	for i := 1; i <= count; i++ {
		entry, ok := fieldsTbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, eris.Errorf("blueprint %q field %d is not a {name, default} pair", name, i)
		}
		fieldName := lua.LVAsString(entry.RawGetInt(1))
		if fieldName == "" {
			return nil, eris.Errorf("blueprint %q field %d has no name", name, i)
		}
		if _, exists := bp.offsets[fieldName]; exists {
			return nil, eris.Errorf("blueprint %q repeats field %q", name, fieldName)
		}
		bp.offsets[fieldName] = (i - 1) * fieldSize
		bp.fields = append(bp.fields, fieldName)
		bp.defaults = append(bp.defaults, float64(lua.LVAsNumber(entry.RawGetInt(2))))
	}

	defaults := bp.defaults
	info, err := depot.NewTypeInfo(
		name,
		uintptr(fieldSize*len(bp.fields)),
		func(dst []byte) {
			for i, def := range defaults {
				binary.LittleEndian.PutUint64(dst[i*fieldSize:], math.Float64bits(def))
			}
		},
		func(dst []byte) {
			clear(dst)
		},
	)
	if err != nil {
		return nil, eris.Wrapf(err, "registering blueprint %q", name)
	}
	bp.info = info
	e.blueprints[name] = bp
	e.log.Debug().
		Str("blueprint", name).
		Int("fields", len(bp.fields)).
		Msg("blueprint loaded")
	return bp, nil
}

// Blueprint returns a previously loaded blueprint by component name.
func (e *Engine) Blueprint(name string) (*Blueprint, bool) {
	bp, ok := e.blueprints[name]
	return bp, ok
}

// Spawn creates an instance of a scripted component on ent through the
// registry's erased path, initialized to the blueprint's defaults.
func (e *Engine) Spawn(ent depot.Entity, name string) error {
	bp, ok := e.blueprints[name]
	if !ok {
		return eris.Errorf("unknown blueprint %q", name)
	}
	var options []depot.PoolOption
	if bp.BlockSize > 0 {
		options = append(options, depot.WithBlockSize(bp.BlockSize))
	}
	if _, err := e.registry.CreateComponentErased(ent, bp.info, options...); err != nil {
		return eris.Wrapf(err, "spawning %q", name)
	}
	return nil
}

func (e *Engine) payload(ent depot.Entity, bp *Blueprint) ([]byte, bool) {
	pool, ok := e.registry.Pool(bp.info.TypeKey)
	if !ok {
		return nil, false
	}
	ptr, ok := pool.LookupRaw(ent)
	if !ok {
		return nil, false
	}
	return unsafe.Slice((*byte)(ptr), int(bp.info.Size)), true
}

// Field reads one field of ent's scripted component. False when the
// blueprint, field, or component is absent.
func (e *Engine) Field(ent depot.Entity, name, field string) (float64, bool) {
	bp, ok := e.blueprints[name]
	if !ok {
		return 0, false
	}
	off, ok := bp.offsets[field]
	if !ok {
		return 0, false
	}
	payload, ok := e.payload(ent, bp)
	if !ok {
		return 0, false
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(payload[off:])), true
}

// SetField writes one field of ent's scripted component.
func (e *Engine) SetField(ent depot.Entity, name, field string, value float64) error {
	bp, ok := e.blueprints[name]
	if !ok {
		return eris.Errorf("unknown blueprint %q", name)
	}
	off, ok := bp.offsets[field]
	if !ok {
		return eris.Errorf("blueprint %q has no field %q", name, field)
	}
	payload, ok := e.payload(ent, bp)
	if !ok {
		return eris.Errorf("%v holds no %q component", ent, name)
	}
	binary.LittleEndian.PutUint64(payload[off:], math.Float64bits(value))
	return nil
}

// Call invokes a global script function under protected call semantics and
// returns its single result.
func (e *Engine) Call(fn string, args ...lua.LValue) (lua.LValue, error) {
	callee := e.vm.GetGlobal(fn)
	if callee.Type() != lua.LTFunction {
		return lua.LNil, eris.Errorf("undefined script function %q", fn)
	}
	err := e.vm.CallByParam(lua.P{
		Fn:      callee,
		NRet:    1,
		Protect: true,
	}, args...)
	if err != nil {
		return lua.LNil, eris.Wrapf(err, "calling script function %q", fn)
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	return ret, nil
}

// Apply hands ent's scripted component to a script function as a table
// (fields plus "id") and writes the returned table's fields back. Fields the
// script omits keep their values.
func (e *Engine) Apply(fn string, ent depot.Entity, name string) error {
	bp, ok := e.blueprints[name]
	if !ok {
		return eris.Errorf("unknown blueprint %q", name)
	}
	payload, ok := e.payload(ent, bp)
	if !ok {
		return eris.Errorf("%v holds no %q component", ent, name)
	}
	arg := e.vm.NewTable()
	arg.RawSetString("id", lua.LNumber(ent.ID()))
	for i, field := range bp.fields {
		value := math.Float64frombits(binary.LittleEndian.Uint64(payload[i*fieldSize:]))
		arg.RawSetString(field, lua.LNumber(value))
	}
	ret, err := e.Call(fn, arg)
	if err != nil {
		return err
	}
	result, ok := ret.(*lua.LTable)
	if !ok {
		return eris.Errorf("script function %q must return a table", fn)
	}
	for i, field := range bp.fields {
		lv := result.RawGetString(field)
		if lv.Type() == lua.LTNil {
			continue
		}
		binary.LittleEndian.PutUint64(payload[i*fieldSize:], math.Float64bits(float64(lua.LVAsNumber(lv))))
	}
	return nil
}
