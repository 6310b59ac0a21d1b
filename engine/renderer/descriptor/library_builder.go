package descriptor

import (
	"io/fs"

	log "github.com/sirupsen/logrus"
)

// LibraryBuilderOption is a functional option applied to a library load via LoadLibrary.
type LibraryBuilderOption func(*libraryLoader)

// WithCompiler compiles manifest entries with c instead of a compiler built from the library's filesystem.
//
// Parameters:
//   - c: the compiler to use
//
// Returns:
//   - LibraryBuilderOption: a function that applies the compiler option
func WithCompiler(c Compiler) LibraryBuilderOption {
	return func(l *libraryLoader) {
		l.compiler = c
	}
}

// WithLibraryFS reads the manifest, and by default every entry, from fsys.
//
// Parameters:
//   - fsys: the filesystem to read from
//
// Returns:
//   - LibraryBuilderOption: a function that applies the filesystem option
func WithLibraryFS(fsys fs.FS) LibraryBuilderOption {
	return func(l *libraryLoader) {
		l.fsys = fsys
	}
}

// WithWorkers sets how many descriptors compile at once. Values below 1 are ignored.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - LibraryBuilderOption: a function that applies the worker option
func WithWorkers(n int) LibraryBuilderOption {
	return func(l *libraryLoader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithLibraryLogger sets the logger that receives per-entry compile results.
//
// Parameters:
//   - logger: the logrus logger or entry to use
//
// Returns:
//   - LibraryBuilderOption: a function that applies the logger option
func WithLibraryLogger(logger log.FieldLogger) LibraryBuilderOption {
	return func(l *libraryLoader) {
		if logger != nil {
			l.logger = logger
		}
	}
}
