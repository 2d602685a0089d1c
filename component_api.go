package registry

import (
	"github.com/rotisserie/eris"

	"pkg.world.dev/registry/component"
	"pkg.world.dev/registry/entity"
	"pkg.world.dev/registry/storage"
)

// typedPool resolves the pool for C. With create set, the component type is
// observed and the pool materialised on first use; without it, an unknown
// type or an unmaterialised pool fails with ErrPoolDoesNotExist.
func typedPool[C any, E entity.Word](r *Registry[E], create bool) (*storage.Pool[E, C], component.Metadata, error) {
	if create {
		meta, err := component.Observe[C](r.comps)
		if err != nil {
			return nil, nil, err
		}
		p, ok := r.pools[meta.ID()]
		if !ok {
			p = materialisePool[C](r, meta)
		}
		return p.store.(*storage.Pool[E, C]), meta, nil
	}

	meta, ok := component.Lookup[C](r.comps)
	if !ok {
		return nil, nil, eris.Wrap(ErrPoolDoesNotExist, component.Of[C]().String())
	}
	p, ok := r.pools[meta.ID()]
	if !ok {
		return nil, nil, eris.Wrap(ErrPoolDoesNotExist, meta.Name())
	}
	return p.store.(*storage.Pool[E, C]), meta, nil
}

// Register materialises the pool for C without touching any entity. Useful
// before AddTuple/CreateWith, which dispatch on dynamic types and cannot
// materialise pools themselves.
func Register[C any, E entity.Word](r *Registry[E]) error {
	_, _, err := typedPool[C](r, true)
	return err
}

// Add attaches v to e. The pool for C is materialised on first use, so Add
// never fails with ErrPoolDoesNotExist.
func Add[C any, E entity.Word](r *Registry[E], e E, v C) error {
	if !r.IsValid(e) {
		return eris.Wrap(ErrInvalidEntity, "add component")
	}
	p, meta, err := typedPool[C](r, true)
	if err != nil {
		return err
	}
	if p.Contains(e) {
		return eris.Wrap(ErrComponentAlreadyOnEntity, meta.Name())
	}
	p.Add(e, v)
	r.logger.Debug().
		Uint64("entity_id", uint64(r.traits.ID(e))).
		Str("component_name", meta.Name()).
		Int("component_id", int(meta.ID())).
		Msg("component added")
	return nil
}

// AddDefault attaches the zero value of C to e.
func AddDefault[C any, E entity.Word](r *Registry[E], e E) error {
	var v C
	return Add(r, e, v)
}

// Get returns a mutable reference to e's C value. The reference stays valid
// until the next mutation of the pool for C, by any entity.
func Get[C any, E entity.Word](r *Registry[E], e E) (*C, error) {
	if !r.IsValid(e) {
		return nil, eris.Wrap(ErrInvalidEntity, "get component")
	}
	p, meta, err := typedPool[C](r, false)
	if err != nil {
		return nil, err
	}
	if !p.Contains(e) {
		return nil, eris.Wrap(ErrComponentNotOnEntity, meta.Name())
	}
	return p.Get(e), nil
}

// Set overwrites e's C value with v.
func Set[C any, E entity.Word](r *Registry[E], e E, v C) error {
	if !r.IsValid(e) {
		return eris.Wrap(ErrInvalidEntity, "set component")
	}
	p, meta, err := typedPool[C](r, false)
	if err != nil {
		return err
	}
	if !p.Contains(e) {
		return eris.Wrap(ErrComponentNotOnEntity, meta.Name())
	}
	p.Modify(e, v)
	r.logger.Debug().
		Uint64("entity_id", uint64(r.traits.ID(e))).
		Str("component_name", meta.Name()).
		Int("component_id", int(meta.ID())).
		Msg("component updated")
	return nil
}

// Remove detaches e's C value.
func Remove[C any, E entity.Word](r *Registry[E], e E) error {
	if !r.IsValid(e) {
		return eris.Wrap(ErrInvalidEntity, "remove component")
	}
	p, meta, err := typedPool[C](r, false)
	if err != nil {
		return err
	}
	if !p.Contains(e) {
		return eris.Wrap(ErrComponentNotOnEntity, meta.Name())
	}
	p.Remove(e)
	return nil
}

// Contains reports whether e is live and holds a C value. It is total: an
// invalid entity, a missing pool and a missing value all report false.
func Contains[C any, E entity.Word](r *Registry[E], e E) bool {
	if !r.IsValid(e) {
		return false
	}
	p, _, err := typedPool[C](r, false)
	if err != nil {
		return false
	}
	return p.Contains(e)
}

// ContainsValue reports whether e holds a C value equal to v. Equality is
// Go's ==, with its usual floating-point semantics; use ContainsFunc for a
// custom comparison.
func ContainsValue[C comparable, E entity.Word](r *Registry[E], e E, v C) bool {
	return ContainsFunc(r, e, v, func(a, b C) bool { return a == b })
}

// ContainsFunc reports whether e holds a C value for which eq(stored, v).
func ContainsFunc[C any, E entity.Word](r *Registry[E], e E, v C, eq func(a, b C) bool) bool {
	if !r.IsValid(e) {
		return false
	}
	p, _, err := typedPool[C](r, false)
	if err != nil || !p.Contains(e) {
		return false
	}
	return eq(*p.Get(e), v)
}

// Count returns the number of entities in the pool for C, or 0 when the
// pool was never materialised.
func Count[C any, E entity.Word](r *Registry[E]) int {
	p, _, err := typedPool[C](r, false)
	if err != nil {
		return 0
	}
	return p.Len()
}

// Insert attaches v to every entity in ents, in order. Element k failing
// leaves elements 0..k-1 attached; the error reports the failing entity's
// position.
func Insert[C any, E entity.Word](r *Registry[E], ents []E, v C) error {
	for k, e := range ents {
		if err := Add(r, e, v); err != nil {
			return eris.Wrapf(err, "insert at %d", k)
		}
	}
	return nil
}

// Erase detaches C from every entity in ents, in order, with the same
// partial-progress semantics as Insert.
func Erase[C any, E entity.Word](r *Registry[E], ents []E) error {
	for k, e := range ents {
		if err := Remove[C](r, e); err != nil {
			return eris.Wrapf(err, "erase at %d", k)
		}
	}
	return nil
}

// Update overwrites C with v on every entity in ents, in order, with the
// same partial-progress semantics as Insert.
func Update[C any, E entity.Word](r *Registry[E], ents []E, v C) error {
	for k, e := range ents {
		if err := Set(r, e, v); err != nil {
			return eris.Wrapf(err, "update at %d", k)
		}
	}
	return nil
}

// TypeOf returns the component.Type token for C, for use with the tuple
// operations on Registry.
func TypeOf[C any]() component.Type {
	return component.Of[C]()
}
