package registry_test

import (
	"testing"

	"pkg.world.dev/registry"
	"pkg.world.dev/registry/assert"
	"pkg.world.dev/registry/codec"
)

func TestDebugStateListsLiveEntities(t *testing.T) {
	r := registry.New()
	e0, err := r.Create()
	assert.NilError(t, err)
	e1, err := r.Create()
	assert.NilError(t, err)
	gone, err := r.Create()
	assert.NilError(t, err)

	assert.NilError(t, registry.Add(r, e0, Pos{1, 2}))
	assert.NilError(t, registry.Add(r, e0, Vel{3, 4}))
	assert.NilError(t, registry.Add(r, e1, Pos{5, 6}))
	assert.NilError(t, r.Discard(gone))

	state, err := r.DebugState()
	assert.NilError(t, err)
	assert.Len(t, state, 2)

	byID := make(map[uint64]registry.DebugStateElement)
	for _, elem := range state {
		byID[elem.ID] = elem
	}

	first := byID[uint64(r.IDOf(e0))]
	assert.Len(t, first.Components, 2)
	pos, err := codec.Decode[Pos](first.Components["registry_test.Pos"])
	assert.NilError(t, err)
	assert.Equal(t, Pos{1, 2}, pos)
	vel, err := codec.Decode[Vel](first.Components["registry_test.Vel"])
	assert.NilError(t, err)
	assert.Equal(t, Vel{3, 4}, vel)

	second := byID[uint64(r.IDOf(e1))]
	assert.Len(t, second.Components, 1)

	_, discarded := byID[uint64(r.IDOf(gone))]
	assert.False(t, discarded)
}

func TestDebugStateOnEmptyRegistry(t *testing.T) {
	r := registry.New()
	state, err := r.DebugState()
	assert.NilError(t, err)
	assert.Len(t, state, 0)
}

func TestDebugStateReportsGenerations(t *testing.T) {
	r := registry.New()
	e, err := r.Create()
	assert.NilError(t, err)
	assert.NilError(t, r.Discard(e))
	reborn, err := r.Create()
	assert.NilError(t, err)

	state, err := r.DebugState()
	assert.NilError(t, err)
	assert.Len(t, state, 1)
	assert.Equal(t, uint64(r.IDOf(reborn)), state[0].ID)
	assert.Equal(t, uint64(1), state[0].Generation)
}
