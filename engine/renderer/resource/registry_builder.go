package resource

import (
	log "github.com/sirupsen/logrus"
)

// RegistryBuilderOption is a functional option applied to a registry during construction via NewRegistry.
type RegistryBuilderOption func(*registry)

// WithLogger sets the logger that receives resource creation and update failures.
//
// Parameters:
//   - logger: the logrus logger or entry to use
//
// Returns:
//   - RegistryBuilderOption: a function that applies the logger option to a registry
func WithLogger(logger log.FieldLogger) RegistryBuilderOption {
	return func(r *registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}
