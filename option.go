package registry

import (
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// settings is the merged view of environment config and options, resolved
// once per constructor call.
type settings struct {
	base   zerolog.Logger
	pretty bool
	level  zerolog.Level
}

func loadSettings() settings {
	cfg := GetConfig()
	level, err := zerolog.ParseLevel(cfg.RegistryLogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return settings{
		base:   zlog.Logger,
		pretty: cfg.RegistryLogPretty,
		level:  level,
	}
}

func (s *settings) logger() *zerolog.Logger {
	l := s.base
	if s.pretty {
		l = l.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	l = l.Level(s.level)
	return &l
}

// Option adjusts how a registry is constructed.
type Option func(*settings)

// WithLogger replaces the base logger (the zerolog global by default).
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.base = logger
	}
}

// WithPrettyLog formats log output for a console instead of JSON.
func WithPrettyLog() Option {
	return func(s *settings) {
		s.pretty = true
	}
}

// WithLogLevel sets the registry's log level, overriding REGISTRY_LOG_LEVEL.
func WithLogLevel(level zerolog.Level) Option {
	return func(s *settings) {
		s.level = level
	}
}
