package registry

import (
	"github.com/goccy/go-json"

	"pkg.world.dev/registry/codec"
)

// DebugStateElement is one live entity in a debug dump.
type DebugStateElement struct {
	ID         uint64                     `json:"id"`
	Generation uint64                     `json:"generation"`
	Components map[string]json.RawMessage `json:"components"`
}

// DebugState is a point-in-time snapshot of every live entity and its
// component values, JSON-encoded. It is a diagnostics surface, not a
// persistence format.
type DebugState []DebugStateElement

// DebugState walks the live entities and encodes each pool value they hold.
func (r *Registry[E]) DebugState() (DebugState, error) {
	result := make(DebugState, 0, r.alive)
	var eachClosureErr error
	r.Each(func(e E) bool {
		elem := DebugStateElement{
			ID:         uint64(r.traits.ID(e)),
			Generation: uint64(r.traits.Gen(e)),
			Components: make(map[string]json.RawMessage),
		}
		for _, p := range r.pools {
			if !p.contains(e) {
				continue
			}
			var bz []byte
			bz, eachClosureErr = codec.Encode(p.valueAny(e))
			if eachClosureErr != nil {
				return false
			}
			elem.Components[p.meta.Name()] = bz
		}
		result = append(result, elem)
		return true
	})
	if eachClosureErr != nil {
		return nil, eachClosureErr
	}
	return result, nil
}
