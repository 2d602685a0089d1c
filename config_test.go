package registry_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"pkg.world.dev/registry"
	"pkg.world.dev/registry/assert"
)

func TestGetConfigReadsEnvironment(t *testing.T) {
	t.Setenv("REGISTRY_LOG_LEVEL", "debug")
	t.Setenv("REGISTRY_LOG_PRETTY", "true")

	cfg := registry.GetConfig()
	assert.Equal(t, "debug", cfg.RegistryLogLevel)
	assert.True(t, cfg.RegistryLogPretty)
}

func TestGetConfigDefaults(t *testing.T) {
	cfg := registry.GetConfig()
	assert.Equal(t, "info", cfg.RegistryLogLevel)
	assert.False(t, cfg.RegistryLogPretty)
}

func TestWithLoggerCapturesRegistryEvents(t *testing.T) {
	var buf bytes.Buffer
	r := registry.New(
		registry.WithLogger(zerolog.New(&buf)),
		registry.WithLogLevel(zerolog.DebugLevel),
	)

	e, err := r.Create()
	assert.NilError(t, err)
	assert.NilError(t, registry.Add(r, e, Pos{1, 1}))

	out := buf.String()
	assert.True(t, strings.Contains(out, `"op":"created"`))
	assert.True(t, strings.Contains(out, `"component_name":"registry_test.Pos"`))
	assert.True(t, strings.Contains(out, `"registry_id":"`+r.ID()+`"`))
}

func TestLogStateEmitsSummary(t *testing.T) {
	var buf bytes.Buffer
	r := registry.New(
		registry.WithLogger(zerolog.New(&buf)),
		registry.WithLogLevel(zerolog.InfoLevel),
	)
	e, err := r.Create()
	assert.NilError(t, err)
	assert.NilError(t, registry.Add(r, e, Pos{1, 1}))
	buf.Reset()

	r.LogState(zerolog.InfoLevel)
	out := buf.String()
	assert.True(t, strings.Contains(out, `"total_components":1`))
	assert.True(t, strings.Contains(out, `"alive_entities":1`))
	assert.True(t, strings.Contains(out, `"table_len":1`))
}

func TestLogLevelFiltersDebugEvents(t *testing.T) {
	var buf bytes.Buffer
	r := registry.New(
		registry.WithLogger(zerolog.New(&buf)),
		registry.WithLogLevel(zerolog.InfoLevel),
	)
	_, err := r.Create()
	assert.NilError(t, err)
	assert.Equal(t, "", buf.String())
}

func TestWithPrettyLog(t *testing.T) {
	r := registry.New(registry.WithPrettyLog(), registry.WithLogLevel(zerolog.Disabled))
	_, err := r.Create()
	assert.NilError(t, err)
}
