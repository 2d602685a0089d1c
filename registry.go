// Package registry implements a sparse-set entity-component registry.
//
// A registry hands out versioned entity identifiers, recycles them through a
// free list threaded through its own entity table, and associates component
// values with live entities through per-type pools. Identifier width is a
// type parameter; the id/generation split is fixed per registry at
// construction (see the entity package presets).
//
// A registry is a mutable container owned by one goroutine at a time. None
// of its operations block and none are safe for concurrent mutation; wrap
// the registry in external synchronisation if it must cross goroutines.
package registry

import (
	"reflect"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"pkg.world.dev/registry/component"
	"pkg.world.dev/registry/entity"
	ecslog "pkg.world.dev/registry/log"
	"pkg.world.dev/registry/storage"
)

// poolEntry binds one component type's pool to the registry. The typed pool
// sits behind `store` and is recovered by downcast at call sites that know C;
// the closures give cascading discard and the variadic operations a way in
// without knowing C.
type poolEntry[E entity.Word] struct {
	meta     component.Metadata
	store    any
	contains func(E) bool
	remove   func(E)
	addAny   func(E, any) error
	valueAny func(E) any
}

// Registry owns the entity table and the per-component pools.
type Registry[E entity.Word] struct {
	id     string
	traits entity.Traits[E]

	// table[i] holds the full word of the live entity with id i, or, for a
	// dead slot, the id of the next dead slot packed with the generation
	// that the slot will hand out when revived.
	table []E
	// free is the id at the head of the free list, or the null id.
	free  E
	alive int

	comps  *component.Manager
	pools  map[component.TypeID]*poolEntry[E]
	logger zerolog.Logger
}

// NewWithTraits creates a registry for the given entity traits.
func NewWithTraits[E entity.Word](traits entity.Traits[E], opts ...Option) *Registry[E] {
	s := loadSettings()
	for _, opt := range opts {
		opt(&s)
	}
	r := &Registry[E]{
		id:     uuid.NewString(),
		traits: traits,
		free:   traits.Null(),
		comps:  component.NewManager(),
		pools:  make(map[component.TypeID]*poolEntry[E]),
	}
	r.logger = *ecslog.CreateRegistryLogger(s.logger(), r.id)
	r.logger.Debug().
		Uint("entity_width", traits.Width()).
		Uint("entity_split", traits.Split()).
		Msg("registry created")
	return r
}

// NewSplit creates a registry for E words split at the given bit position.
func NewSplit[E entity.Word](split uint, opts ...Option) (*Registry[E], error) {
	traits, err := entity.NewTraits[E](split)
	if err != nil {
		return nil, err
	}
	return NewWithTraits(traits, opts...), nil
}

// New creates a registry with the default 32-bit entities split at bit 20.
func New(opts ...Option) *Registry[uint32] {
	return NewWithTraits(entity.Preset32, opts...)
}

// New8 creates a registry with 8-bit entities split at bit 4.
func New8(opts ...Option) *Registry[uint8] {
	return NewWithTraits(entity.Preset8, opts...)
}

// New16 creates a registry with 16-bit entities split at bit 8.
func New16(opts ...Option) *Registry[uint16] {
	return NewWithTraits(entity.Preset16, opts...)
}

// New32Even creates a registry with 32-bit entities split evenly at bit 16.
func New32Even(opts ...Option) *Registry[uint32] {
	return NewWithTraits(entity.Preset32Even, opts...)
}

// New64 creates a registry with 64-bit entities split at bit 32.
func New64(opts ...Option) *Registry[uint64] {
	return NewWithTraits(entity.Preset64, opts...)
}

// ID returns the registry's instance id, as stamped on its log events.
func (r *Registry[E]) ID() string { return r.id }

// Traits returns the entity traits the registry was built with.
func (r *Registry[E]) Traits() entity.Traits[E] { return r.traits }

// Logger returns the registry's logger.
func (r *Registry[E]) Logger() *zerolog.Logger { return &r.logger }

// Create returns a new live entity. A slot from the free list is revived
// when one exists; otherwise the entity table grows by one. Returns
// ErrMaxEntitiesReached when the table has grown to the null id and nothing
// is free.
func (r *Registry[E]) Create() (E, error) {
	null := r.traits.Null()
	if r.free == null {
		if uint64(len(r.table)) >= uint64(null) {
			return 0, eris.Wrap(ErrMaxEntitiesReached, "create")
		}
		e := r.traits.Compose(E(len(r.table)), 0)
		r.table = append(r.table, e)
		r.alive++
		ecslog.Entity(&r.logger, zerolog.DebugLevel, "created", uint64(r.traits.ID(e)), uint64(r.traits.Gen(e)))
		return e, nil
	}

	i := r.free
	stored := r.table[i]
	r.free = r.traits.ID(stored)
	e := r.traits.Compose(i, r.traits.Gen(stored))
	r.table[i] = e
	r.alive++
	ecslog.Entity(&r.logger, zerolog.DebugLevel, "recycled", uint64(i), uint64(r.traits.Gen(e)))
	return e, nil
}

// CreateMany creates n entities one at a time, n >= 1. There is no
// atomicity across the batch: on error the entities created so far stay
// created and are returned alongside the error.
func (r *Registry[E]) CreateMany(n int) ([]E, error) {
	if n < 1 {
		return nil, eris.Errorf("must create at least 1 entity, got %d", n)
	}
	out := make([]E, 0, n)
	for i := 0; i < n; i++ {
		e, err := r.Create()
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}

// CreateWith creates an entity and attaches the given component values, in
// order. The component types must already be known to the registry (see
// AddTuple). On error the entity and any components attached so far remain.
func (r *Registry[E]) CreateWith(comps ...any) (E, error) {
	e, err := r.Create()
	if err != nil {
		return 0, err
	}
	if err := r.AddTuple(e, comps...); err != nil {
		return e, err
	}
	return e, nil
}

// Discard destroys a live entity: every pool containing it drops its value,
// then the slot goes to the head of the free list with its generation
// bumped (wrapping), which invalidates every copy of the identifier.
func (r *Registry[E]) Discard(e E) error {
	if !r.IsValid(e) {
		return eris.Wrap(ErrInvalidEntity, "discard")
	}
	for _, p := range r.pools {
		if p.contains(e) {
			p.remove(e)
		}
	}
	i := r.traits.ID(e)
	r.table[i] = r.traits.Compose(r.free, r.traits.NextGen(r.traits.Gen(e)))
	r.free = i
	r.alive--
	ecslog.Entity(&r.logger, zerolog.DebugLevel, "discarded", uint64(i), uint64(r.traits.Gen(e)))
	return nil
}

// IsValid reports whether e names a live entity: its id is in the table and
// the stored word matches, generation included.
func (r *Registry[E]) IsValid(e E) bool {
	i := r.traits.ID(e)
	return uint64(i) < uint64(len(r.table)) && r.table[i] == e
}

// HasSpawned reports whether e's id has ever been handed out by this
// registry, live or not.
func (r *Registry[E]) HasSpawned(e E) bool {
	return uint64(r.traits.ID(e)) < uint64(len(r.table))
}

// IDOf projects the id subfield of e.
func (r *Registry[E]) IDOf(e E) E { return r.traits.ID(e) }

// GenOf projects the generation subfield of e.
func (r *Registry[E]) GenOf(e E) E { return r.traits.Gen(e) }

// CurrentGenOf returns the generation currently stored for e's slot, which
// differs from GenOf(e) once the slot has been discarded. Requires
// HasSpawned(e).
func (r *Registry[E]) CurrentGenOf(e E) (E, error) {
	if !r.HasSpawned(e) {
		return 0, eris.Wrap(ErrInvalidEntity, "current generation")
	}
	return r.traits.Gen(r.table[r.traits.ID(e)]), nil
}

// Len returns the number of slots in the entity table, live or dead.
func (r *Registry[E]) Len() int { return len(r.table) }

// Alive returns the number of live entities.
func (r *Registry[E]) Alive() int { return r.alive }

// Each calls fn for every live entity until fn returns false. The order is
// table order, not creation order. fn must not mutate the registry.
func (r *Registry[E]) Each(fn func(E) bool) {
	for i, stored := range r.table {
		if r.traits.ID(stored) == E(i) {
			if !fn(stored) {
				return
			}
		}
	}
}

// Orphan reports whether a live entity holds no components.
func (r *Registry[E]) Orphan(e E) (bool, error) {
	if !r.IsValid(e) {
		return false, eris.Wrap(ErrInvalidEntity, "orphan")
	}
	for _, p := range r.pools {
		if p.contains(e) {
			return false, nil
		}
	}
	return true, nil
}

// RemoveAll detaches every component from a live entity. Pools that did not
// contain the entity are untouched; emptied pools stay materialised.
func (r *Registry[E]) RemoveAll(e E) error {
	if !r.IsValid(e) {
		return eris.Wrap(ErrInvalidEntity, "remove all")
	}
	for _, p := range r.pools {
		if p.contains(e) {
			p.remove(e)
		}
	}
	return nil
}

// Clear discards every live entity. Pools and the component-type keyspace
// survive, empty.
func (r *Registry[E]) Clear() {
	for i, stored := range r.table {
		if r.traits.ID(stored) == E(i) {
			// Live slots stay live until their own iteration, so the one
			// Discard per slot cannot fail.
			_ = r.Discard(stored)
		}
	}
}

// AddTuple attaches each given component value to e, in order, dispatching
// on the value's dynamic type. Each type must already have a pool (any typed
// Add or Register materialises one); a value of an unknown type fails with
// ErrPoolDoesNotExist. No atomicity across the tuple.
func (r *Registry[E]) AddTuple(e E, comps ...any) error {
	if !r.IsValid(e) {
		return eris.Wrap(ErrInvalidEntity, "add tuple")
	}
	for _, v := range comps {
		p, err := r.entryForDynamic(reflect.TypeOf(v))
		if err != nil {
			return err
		}
		if p.contains(e) {
			return eris.Wrap(ErrComponentAlreadyOnEntity, p.meta.Name())
		}
		if err := p.addAny(e, v); err != nil {
			return err
		}
	}
	return nil
}

// RemoveTuple detaches the component of each given type from e, in order.
// No atomicity across the tuple.
func (r *Registry[E]) RemoveTuple(e E, types ...component.Type) error {
	if !r.IsValid(e) {
		return eris.Wrap(ErrInvalidEntity, "remove tuple")
	}
	for _, t := range types {
		p, err := r.entryForToken(t)
		if err != nil {
			return err
		}
		if !p.contains(e) {
			return eris.Wrap(ErrComponentNotOnEntity, p.meta.Name())
		}
		p.remove(e)
	}
	return nil
}

// ContainsAll reports whether e is live and holds a component of every given
// type. With no types it reduces to IsValid.
func (r *Registry[E]) ContainsAll(e E, types ...component.Type) bool {
	if !r.IsValid(e) {
		return false
	}
	for _, t := range types {
		p, err := r.entryForToken(t)
		if err != nil || !p.contains(e) {
			return false
		}
	}
	return true
}

// ContainsAny reports whether e is live and holds a component of at least
// one of the given types.
func (r *Registry[E]) ContainsAny(e E, types ...component.Type) bool {
	if !r.IsValid(e) {
		return false
	}
	for _, t := range types {
		if p, err := r.entryForToken(t); err == nil && p.contains(e) {
			return true
		}
	}
	return false
}

// RegisteredComponents returns the metadata of every component type the
// registry has observed, ordered by id.
func (r *Registry[E]) RegisteredComponents() []component.Metadata {
	return r.comps.All()
}

// LogState emits a summary event of the registry at the given level.
func (r *Registry[E]) LogState(level zerolog.Level) {
	ecslog.Registry(&r.logger, r, level)
}

func (r *Registry[E]) entryForDynamic(rt reflect.Type) (*poolEntry[E], error) {
	meta, ok := r.comps.LookupDynamic(rt)
	if !ok {
		return nil, eris.Wrapf(ErrPoolDoesNotExist, "%v", rt)
	}
	p, ok := r.pools[meta.ID()]
	if !ok {
		return nil, eris.Wrap(ErrPoolDoesNotExist, meta.Name())
	}
	return p, nil
}

func (r *Registry[E]) entryForToken(t component.Type) (*poolEntry[E], error) {
	meta, ok := r.comps.LookupToken(t)
	if !ok {
		return nil, eris.Wrap(ErrPoolDoesNotExist, t.String())
	}
	p, ok := r.pools[meta.ID()]
	if !ok {
		return nil, eris.Wrap(ErrPoolDoesNotExist, meta.Name())
	}
	return p, nil
}

// materialisePool builds the pool and its erased entry for C. Called once
// per component type, on its first Add, AddDefault or Register.
func materialisePool[C any, E entity.Word](r *Registry[E], meta component.Metadata) *poolEntry[E] {
	pool := storage.NewPool[E, C](r.traits)
	p := &poolEntry[E]{
		meta:     meta,
		store:    pool,
		contains: pool.Contains,
		remove:   pool.Remove,
		addAny: func(e E, v any) error {
			c, ok := v.(C)
			if !ok {
				return eris.Errorf("component value %T does not match pool type %s", v, meta.Name())
			}
			pool.Add(e, c)
			return nil
		},
		valueAny: func(e E) any {
			return *pool.Get(e)
		},
	}
	r.pools[meta.ID()] = p
	ecslog.Pool(&r.logger, zerolog.DebugLevel, meta, 0)
	return p
}
