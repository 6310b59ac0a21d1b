package descriptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"

	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
	"github.com/tailscale/hujson"
)

// fieldError is the schema failure raised while walking a document. The compiler converts it into an
// *Error carrying the file path.
type fieldError struct {
	field string
	err   error
}

func (f *fieldError) Error() string {
	return fmt.Sprintf("%s: %v", f.field, f.err)
}

var (
	errMissing     = errors.New("missing")
	errNotString   = errors.New("expected a string")
	errNotBool     = errors.New("expected a boolean")
	errNotNumber   = errors.New("expected a number")
	errNotArray    = errors.New("expected an array")
	errNotObject   = errors.New("expected an object")
	errUnknownEnum = errors.New("unrecognized token")
	errOutOfRange  = errors.New("value out of range")
	errEmptyArray  = errors.New("array must not be empty")
)

// object is a decoded JSON object together with the key path that leads to it.
type object struct {
	prefix   string
	m        map[string]any
	registry *enums.Registry
}

// readDocument reads path from fsys (or the OS filesystem when fsys is nil), strips comments and
// trailing commas, and decodes the root object.
func readDocument(fsys fs.FS, path string) (map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if fsys != nil {
		data, err = fs.ReadFile(fsys, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, &Error{Kind: ErrorKindIO, File: path, Err: err}
	}

	standard, err := hujson.Standardize(data)
	if err != nil {
		return nil, &Error{Kind: ErrorKindFormat, File: path, Err: err}
	}

	var root any
	if err := json.Unmarshal(standard, &root); err != nil {
		return nil, &Error{Kind: ErrorKindFormat, File: path, Err: err}
	}
	m, ok := root.(map[string]any)
	if !ok {
		return nil, &Error{Kind: ErrorKindFormat, File: path, Err: errors.New("root value is not an object")}
	}
	return m, nil
}

// schemaError attaches the file path to a fieldError. Errors that already carry a kind pass through.
func schemaError(path string, err error) error {
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	var fe *fieldError
	if errors.As(err, &fe) {
		return &Error{Kind: ErrorKindSchema, File: path, Field: fe.field, Err: fe.err}
	}
	return &Error{Kind: ErrorKindSchema, File: path, Err: err}
}

func (o object) path(key string) string {
	if o.prefix == "" {
		return key
	}
	return o.prefix + "." + key
}

func (o object) fail(key string, err error) error {
	return &fieldError{field: o.path(key), err: err}
}

func (o object) value(key string) (any, error) {
	v, ok := o.m[key]
	if !ok || v == nil {
		return nil, o.fail(key, errMissing)
	}
	return v, nil
}

func (o object) str(key string) (string, error) {
	v, err := o.value(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", o.fail(key, errNotString)
	}
	return s, nil
}

// optionalStr returns the string at key, or "" when the key is absent or not a string.
func (o object) optionalStr(key string) string {
	s, _ := o.m[key].(string)
	return s
}

func (o object) boolean(key string) (bool, error) {
	v, err := o.value(key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, o.fail(key, errNotBool)
	}
	return b, nil
}

func (o object) number(key string) (float64, error) {
	v, err := o.value(key)
	if err != nil {
		return 0, err
	}
	n, ok := v.(float64)
	if !ok {
		return 0, o.fail(key, errNotNumber)
	}
	return n, nil
}

func (o object) float32(key string) (float32, error) {
	n, err := o.number(key)
	return float32(n), err
}

// int32 reads a number and truncates it toward zero.
func (o object) int32(key string) (int32, error) {
	n, err := o.number(key)
	if err != nil {
		return 0, err
	}
	return toInt32(n, func(e error) error { return o.fail(key, e) })
}

// uint32 reads a non-negative number and truncates it toward zero.
func (o object) uint32(key string) (uint32, error) {
	n, err := o.number(key)
	if err != nil {
		return 0, err
	}
	return toUint32(n, func(e error) error { return o.fail(key, e) })
}

// mask reads an 8-bit mask. Values outside [0, 255] fail before truncation.
func (o object) mask(key string) (uint8, error) {
	n, err := o.number(key)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > MaskMax {
		return 0, o.fail(key, fmt.Errorf("%w: %v not in [0, %d]", errOutOfRange, n, MaskMax))
	}
	return uint8(n), nil
}

func (o object) array(key string) ([]any, error) {
	v, err := o.value(key)
	if err != nil {
		return nil, err
	}
	a, ok := v.([]any)
	if !ok {
		return nil, o.fail(key, errNotArray)
	}
	return a, nil
}

func (o object) object(key string) (object, error) {
	v, err := o.value(key)
	if err != nil {
		return object{}, err
	}
	return o.child(o.path(key), v)
}

// element wraps the i-th item of the array stored under key as an object.
func (o object) element(key string, i int, v any) (object, error) {
	return o.child(o.path(key)+"["+strconv.Itoa(i)+"]", v)
}

func (o object) child(path string, v any) (object, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return object{}, &fieldError{field: path, err: errNotObject}
	}
	return object{prefix: path, m: m, registry: o.registry}, nil
}

// token reads a string and resolves it in the given family.
func (o object) token(key string, f enums.Family) (uint32, error) {
	s, err := o.str(key)
	if err != nil {
		return 0, err
	}
	v, ok := o.registry.Resolve(f, s)
	if !ok {
		return 0, o.fail(key, fmt.Errorf("%w %q for %s", errUnknownEnum, s, f))
	}
	return v, nil
}

func toInt32(n float64, fail func(error) error) (int32, error) {
	t := math.Trunc(n)
	if math.IsNaN(t) || t < math.MinInt32 || t > math.MaxInt32 {
		return 0, fail(fmt.Errorf("%w: %v is not a 32-bit integer", errOutOfRange, n))
	}
	return int32(t), nil
}

func toUint32(n float64, fail func(error) error) (uint32, error) {
	t := math.Trunc(n)
	if math.IsNaN(t) || t < 0 || t > math.MaxUint32 {
		return 0, fail(fmt.Errorf("%w: %v is not an unsigned 32-bit integer", errOutOfRange, n))
	}
	return uint32(t), nil
}
