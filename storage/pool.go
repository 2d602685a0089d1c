package storage

import (
	"pkg.world.dev/registry/entity"
)

// Pool stores the component values of one component type, packed in lock-step
// with the sparse set's dense identifier array: values[k] belongs to the
// entity at dense position k.
type Pool[E entity.Word, C any] struct {
	Set[E]
	values []C
}

// NewPool creates an empty pool for the given entity traits.
func NewPool[E entity.Word, C any](traits entity.Traits[E]) *Pool[E, C] {
	return &Pool[E, C]{Set: *NewSet[E](traits)}
}

// Values returns the packed value array. The slice aliases the pool's
// internal storage and is invalidated by the next mutation.
func (p *Pool[E, C]) Values() []C { return p.values }

// Add attaches v to e. e must not already be in the pool. The value array
// grows first so that both arrays either grow together or not at all.
func (p *Pool[E, C]) Add(e E, v C) {
	if p.Set.Contains(e) {
		panic("pool: add of entity already in pool")
	}
	p.values = append(p.values, v)
	p.Set.Add(e)
}

// Get returns a mutable reference to e's value. e must be in the pool. The
// reference is valid until the next mutation of this pool.
func (p *Pool[E, C]) Get(e E) *C {
	return &p.values[p.Set.Index(e)]
}

// Modify overwrites e's value with v. e must be in the pool.
func (p *Pool[E, C]) Modify(e E, v C) {
	p.values[p.Set.Index(e)] = v
}

// Remove detaches e's value with the same swap-remove the identifier side
// uses, so the two packed arrays stay aligned. e must be in the pool.
func (p *Pool[E, C]) Remove(e E) {
	k := p.Set.Index(e)
	last := len(p.values) - 1
	p.values[k] = p.values[last]
	var zero C
	p.values[last] = zero
	p.values = p.values[:last]
	p.Set.Remove(e)
}
