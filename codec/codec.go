// Package codec marshals component values and schemas for the registry's
// diagnostic surfaces.
package codec

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// Encode marshals a component value.
func Encode(v any) ([]byte, error) {
	bz, err := json.Marshal(v)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return bz, nil
}

// Decode unmarshals a component value of type T.
func Decode[T any](bz []byte) (T, error) {
	v := new(T)
	if err := json.Unmarshal(bz, v); err != nil {
		return *v, eris.Wrap(err, "")
	}
	return *v, nil
}
