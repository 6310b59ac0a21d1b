package loader

import (
	"github.com/handsonicv4/Chocolate-3D/engine/model"
	log "github.com/sirupsen/logrus"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithLogger sets the logger receiving import diagnostics.
//
// Parameters:
//   - logger: the logrus logger or entry
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger log.FieldLogger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithModel is an option builder that pre-populates the model cache with a model.
//
// Parameters:
//   - key: the cache key
//   - m: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the cache entry to a loader
func WithModel(key string, m *model.Model) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = m
	}
}
