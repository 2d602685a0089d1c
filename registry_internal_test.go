package registry

import (
	"math/rand"
	"testing"

	"pkg.world.dev/registry/assert"
	"pkg.world.dev/registry/storage"
)

type hp struct{ HP int }
type mana struct{ MP int }

// checkInvariants verifies the structural invariants the public API cannot
// see: the live-slot equation, the free-list chain, and per-pool alignment.
func checkInvariants(t *testing.T, r *Registry[uint8]) {
	t.Helper()

	live := 0
	for i, stored := range r.table {
		if r.traits.ID(stored) == uint8(i) {
			live++
			assert.True(t, r.IsValid(stored))
		}
	}
	assert.Equal(t, live, r.alive)

	// The free list must reach every dead slot exactly once and terminate.
	seen := make(map[uint8]bool)
	hops := 0
	for i := r.free; i != r.traits.Null(); i = r.traits.ID(r.table[i]) {
		assert.False(t, seen[i], "free list revisits slot %d", i)
		seen[i] = true
		hops++
		assert.True(t, hops <= len(r.table), "free list does not terminate")
	}
	assert.Equal(t, len(r.table)-live, hops)

	for _, p := range r.pools {
		switch pool := p.store.(type) {
		case *storage.Pool[uint8, hp]:
			assert.Equal(t, pool.Len(), len(pool.Values()))
			for _, e := range pool.Dense() {
				assert.True(t, r.IsValid(e))
				assert.True(t, pool.Contains(e))
			}
		case *storage.Pool[uint8, mana]:
			assert.Equal(t, pool.Len(), len(pool.Values()))
			for _, e := range pool.Dense() {
				assert.True(t, r.IsValid(e))
				assert.True(t, pool.Contains(e))
			}
		default:
			t.Fatalf("unexpected pool type %T", pool)
		}
	}
}

func TestReviveTakesFreeListHead(t *testing.T) {
	r := New8()
	a, err := r.Create()
	assert.NilError(t, err)
	b, err := r.Create()
	assert.NilError(t, err)
	assert.NilError(t, r.Discard(a))
	assert.NilError(t, r.Discard(b))

	head := r.free
	e, err := r.Create()
	assert.NilError(t, err)
	assert.Equal(t, head, r.traits.ID(e))
}

func TestInvariantsUnderRandomWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	r := New8()
	var liveEnts []uint8

	for step := 0; step < 600; step++ {
		switch rng.Intn(6) {
		case 0, 1:
			e, err := r.Create()
			if err != nil {
				assert.ErrorIs(t, err, ErrMaxEntitiesReached)
				break
			}
			liveEnts = append(liveEnts, e)
		case 2:
			if len(liveEnts) == 0 {
				break
			}
			k := rng.Intn(len(liveEnts))
			assert.NilError(t, r.Discard(liveEnts[k]))
			liveEnts = append(liveEnts[:k], liveEnts[k+1:]...)
		case 3:
			if len(liveEnts) == 0 {
				break
			}
			e := liveEnts[rng.Intn(len(liveEnts))]
			if !Contains[hp](r, e) {
				assert.NilError(t, Add(r, e, hp{HP: step}))
			}
		case 4:
			if len(liveEnts) == 0 {
				break
			}
			e := liveEnts[rng.Intn(len(liveEnts))]
			if !Contains[mana](r, e) {
				assert.NilError(t, Add(r, e, mana{MP: step}))
			} else {
				assert.NilError(t, Remove[mana](r, e))
			}
		case 5:
			if len(liveEnts) == 0 {
				break
			}
			e := liveEnts[rng.Intn(len(liveEnts))]
			assert.NilError(t, r.RemoveAll(e))
		}

		if step%25 == 0 {
			checkInvariants(t, r)
		}
	}
	checkInvariants(t, r)

	// Cascading discard leaves no pool holding a dead entity.
	for _, e := range liveEnts {
		assert.NilError(t, r.Discard(e))
		assert.False(t, Contains[hp](r, e))
		assert.False(t, Contains[mana](r, e))
	}
	checkInvariants(t, r)
}
