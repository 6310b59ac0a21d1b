package descriptor

import (
	"fmt"
)

// ErrorKind classifies why a descriptor failed to compile.
type ErrorKind int

const (
	// ErrorKindIO means the file could not be read.
	ErrorKindIO ErrorKind = iota + 1
	// ErrorKindFormat means the file is not valid (commented) JSON, or its root is not an object.
	ErrorKindFormat
	// ErrorKindSchema means a field is missing, has the wrong JSON type, names an unknown token or is out of range.
	ErrorKindSchema
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindIO:
		return "io"
	case ErrorKindFormat:
		return "format"
	case ErrorKindSchema:
		return "schema"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned by every compile call. Callers match on Kind with errors.As.
type Error struct {
	Kind ErrorKind

	// File is the path exactly as passed to the compiler.
	File string

	// Field is the offending key for schema errors. Nested keys are dotted and array
	// elements indexed, e.g. "front_face.stencil_func" or "render_target[2].write_mask".
	Field string

	// Err is the underlying cause: the read error, the parser diagnostic or a schema detail.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrorKindIO:
		return fmt.Sprintf("open file error: %s: %v", e.File, e.Err)
	case ErrorKindFormat:
		return fmt.Sprintf("json format error: %s: %v", e.File, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("cannot find or recognize %q in file: %s: %v", e.Field, e.File, e.Err)
	}
	return fmt.Sprintf("cannot find or recognize %q in file: %s", e.Field, e.File)
}

func (e *Error) Unwrap() error {
	return e.Err
}
