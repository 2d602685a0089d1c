// Package log builds the zerolog events the registry emits. Keeping the
// event shapes here keeps field names consistent across call sites.
package log

import (
	"github.com/rs/zerolog"

	"pkg.world.dev/registry/component"
)

// Loggable is the slice of a registry the summary event needs.
type Loggable interface {
	RegisteredComponents() []component.Metadata
	Alive() int
	Len() int
}

func loadComponentIntoArrayLogger(meta component.Metadata, arrayLogger *zerolog.Array) *zerolog.Array {
	dictLogger := zerolog.Dict()
	dictLogger = dictLogger.Int("component_id", int(meta.ID()))
	dictLogger = dictLogger.Str("component_name", meta.Name())
	return arrayLogger.Dict(dictLogger)
}

// Registry logs a summary of the registry: observed component types plus
// entity counts.
func Registry(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	event := logger.WithLevel(level)
	components := target.RegisteredComponents()
	event.Int("total_components", len(components))
	arrayLogger := zerolog.Arr()
	for _, meta := range components {
		arrayLogger = loadComponentIntoArrayLogger(meta, arrayLogger)
	}
	event.Array("components", arrayLogger)
	event.Int("alive_entities", target.Alive())
	event.Int("table_len", target.Len())
	event.Send()
}

// Entity logs one entity lifecycle event. op is "created", "recycled" or
// "discarded".
func Entity(logger *zerolog.Logger, level zerolog.Level, op string, id, gen uint64) {
	logger.WithLevel(level).
		Str("op", op).
		Uint64("entity_id", id).
		Uint64("generation", gen).
		Send()
}

// Pool logs a pool event for one component type.
func Pool(logger *zerolog.Logger, level zerolog.Level, meta component.Metadata, size int) {
	logger.WithLevel(level).
		Int("component_id", int(meta.ID())).
		Str("component_name", meta.Name()).
		Int("pool_size", size).
		Send()
}

// CreateRegistryLogger returns a sub logger tagged with a registry instance
// id, so events from multiple registries in one process stay separable.
func CreateRegistryLogger(logger *zerolog.Logger, registryID string) *zerolog.Logger {
	newLogger := logger.With().Str("registry_id", registryID).Logger()
	return &newLogger
}
