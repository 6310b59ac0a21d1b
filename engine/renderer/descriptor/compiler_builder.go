package descriptor

import (
	"io/fs"

	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
)

// CompilerBuilderOption is a functional option applied to a compiler during construction via NewCompiler.
type CompilerBuilderOption func(*compiler)

// WithRegistry makes the compiler resolve tokens through an existing registry instead of building its own.
//
// Parameters:
//   - r: the shared enumeration registry
//
// Returns:
//   - CompilerBuilderOption: a function that applies the registry option to a compiler
func WithRegistry(r *enums.Registry) CompilerBuilderOption {
	return func(c *compiler) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithFS makes the compiler read descriptor files from fsys. Paths are then interpreted as fs.FS paths.
//
// Parameters:
//   - fsys: the filesystem to read from
//
// Returns:
//   - CompilerBuilderOption: a function that applies the filesystem option to a compiler
func WithFS(fsys fs.FS) CompilerBuilderOption {
	return func(c *compiler) {
		c.fsys = fsys
	}
}
