package registry

import "github.com/rotisserie/eris"

var (
	// ErrInvalidEntity is returned when an operation that requires a live
	// entity is given one that was never spawned, was discarded, or carries
	// a stale generation.
	ErrInvalidEntity = eris.New("invalid entity")

	// ErrComponentAlreadyOnEntity is returned by add when the pool for the
	// component type already contains the entity.
	ErrComponentAlreadyOnEntity = eris.New("component already on entity")

	// ErrComponentNotOnEntity is returned by get, modify and remove when the
	// pool exists but does not contain the entity.
	ErrComponentNotOnEntity = eris.New("component not on entity")

	// ErrPoolDoesNotExist is returned by get, modify and remove when no pool
	// for the component type has ever been materialised. Add never returns
	// this: it materialises the pool instead.
	ErrPoolDoesNotExist = eris.New("component pool does not exist")

	// ErrMaxEntitiesReached is returned by create when the entity table has
	// grown to the null id and no slot is free to recycle.
	ErrMaxEntitiesReached = eris.New("max entities reached")
)
