package component

import (
	"reflect"
	"sort"

	"github.com/rotisserie/eris"
)

var (
	// ErrDuplicateName is returned when two distinct component types share a
	// display name. Names come from reflect's short package notation, so two
	// packages with the same base name can collide on it.
	ErrDuplicateName = eris.New("component name already registered for a different type")
	// ErrInvalidType is returned for component types that have no concrete
	// layout of their own.
	ErrInvalidType = eris.New("component type must be a concrete type")
)

// Manager owns the component-type keyspace of a single registry. The first
// observation of each Go type assigns it the next TypeID; later observations
// always return the same metadata.
type Manager struct {
	byType map[reflect.Type]Metadata
	byName map[string]Metadata
	nextID TypeID
}

// NewManager creates an empty component manager.
func NewManager() *Manager {
	return &Manager{
		byType: make(map[reflect.Type]Metadata),
		byName: make(map[string]Metadata),
		nextID: 1,
	}
}

// Observe returns the metadata for C, assigning a fresh TypeID if C has not
// been seen before.
func Observe[C any](m *Manager) (Metadata, error) {
	return m.observe(typeOf[C]())
}

// ObserveDynamic is the runtime-typed form of Observe, used by variadic
// operations that receive component values as interfaces.
func (m *Manager) ObserveDynamic(rt reflect.Type) (Metadata, error) {
	return m.observe(rt)
}

func (m *Manager) observe(rt reflect.Type) (Metadata, error) {
	if rt == nil || rt.Kind() == reflect.Interface {
		return nil, eris.Wrap(ErrInvalidType, "interface component")
	}
	if meta, ok := m.byType[rt]; ok {
		return meta, nil
	}

	name := rt.String()
	schema, err := reflectSchema(rt)
	if err != nil {
		return nil, err
	}
	if prior, ok := m.byName[name]; ok {
		// A second Go type with the same short name. Diffing the schemas
		// tells the caller whether the collision is a rename or a layout
		// conflict.
		match, merr := schemasMatch(prior.Schema(), schema)
		if merr != nil {
			return nil, merr
		}
		if match {
			return nil, eris.Wrapf(ErrDuplicateName, "%q (identical schema)", name)
		}
		return nil, eris.Wrapf(ErrDuplicateName, "%q (schemas differ)", name)
	}

	meta := &metadata{
		id:     m.nextID,
		name:   name,
		typ:    rt,
		schema: schema,
	}
	m.nextID++
	m.byType[rt] = meta
	m.byName[name] = meta
	return meta, nil
}

// Lookup returns the metadata for C if it has been observed.
func Lookup[C any](m *Manager) (Metadata, bool) {
	meta, ok := m.byType[typeOf[C]()]
	return meta, ok
}

// LookupDynamic returns the metadata for a runtime type if it has been
// observed.
func (m *Manager) LookupDynamic(rt reflect.Type) (Metadata, bool) {
	meta, ok := m.byType[rt]
	return meta, ok
}

// LookupToken resolves a Type token produced by Of.
func (m *Manager) LookupToken(t Type) (Metadata, bool) {
	return m.LookupDynamic(t.rt)
}

// All returns the metadata of every observed component type, ordered by
// TypeID so logs and dumps are deterministic.
func (m *Manager) All() []Metadata {
	out := make([]Metadata, 0, len(m.byType))
	for _, meta := range m.byType {
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Len returns the number of observed component types.
func (m *Manager) Len() int { return len(m.byType) }
