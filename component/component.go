// Package component assigns stable, process-unique keys to the component
// types a registry observes, and carries the per-type metadata (name, JSON
// schema) used for diagnostics and collision detection.
package component

import (
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"
)

// TypeID is the key a registry uses to find the pool for a component type.
// IDs are assigned monotonically at the first observation of each type and
// are stable for the lifetime of the manager.
type TypeID int

// Metadata describes one component type observed by a registry.
type Metadata interface {
	// ID returns the key assigned at first observation.
	ID() TypeID
	// Name returns the reflect-derived type name.
	Name() string
	// Schema returns the JSON schema reflected from the component type.
	Schema() []byte
}

type metadata struct {
	id     TypeID
	name   string
	typ    reflect.Type
	schema []byte
}

func (m *metadata) ID() TypeID     { return m.id }
func (m *metadata) Name() string   { return m.name }
func (m *metadata) Schema() []byte { return m.schema }

// String returns the component type name.
func (m *metadata) String() string { return m.name }

// Type identifies a component type at call sites that carry no value of it,
// e.g. tuple membership checks and tuple removal.
type Type struct {
	rt reflect.Type
}

// Of returns the Type token for C.
func Of[C any]() Type {
	return Type{rt: typeOf[C]()}
}

// String returns the component type name.
func (t Type) String() string {
	if t.rt == nil {
		return "<nil>"
	}
	return t.rt.String()
}

func typeOf[C any]() reflect.Type {
	return reflect.TypeOf((*C)(nil)).Elem()
}

// reflectSchema builds the JSON schema for a component value. Components must
// be plain aggregates, so a failure to reflect the schema is a construction
// error for the type.
func reflectSchema(rt reflect.Type) ([]byte, error) {
	schema := jsonschema.ReflectFromType(rt)
	bz, err := schema.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "component must be json serializable")
	}
	return bz, nil
}

// schemasMatch reports whether two reflected schemas are structurally equal.
func schemasMatch(a, b []byte) (bool, error) {
	patch, err := jsondiff.CompareJSON(a, b)
	if err != nil {
		return false, eris.Wrap(err, "")
	}
	return patch.String() == "", nil
}
