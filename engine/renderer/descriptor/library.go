package descriptor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	log "github.com/sirupsen/logrus"
)

// Entry is one line of a library manifest.
type Entry struct {
	Name string
	Kind Kind
	Path string
}

// Library is a named set of compiled descriptors loaded from a manifest of the form
//
//	{ "descriptors": [ { "name": "opaque", "kind": "blend", "path": "blend/opaque.json" } ] }
//
// Entry paths are relative to the manifest. A Library is immutable once loaded.
type Library struct {
	entries       []Entry
	resources     map[string]ResourceDesc
	depthStencils map[string]DepthStencilDesc
	blends        map[string]BlendDesc
	rasterizers   map[string]RasterizerDesc
	samplers      map[string]SamplerDesc
}

type libraryLoader struct {
	compiler Compiler
	fsys     fs.FS
	workers  int
	logger   log.FieldLogger
}

type compiled struct {
	value any
	err   error
}

// LoadLibrary reads a manifest and compiles every entry it lists on a worker pool.
// Every failing entry is reported; the returned error joins them in manifest order.
// On any error the Library is nil.
//
// Parameters:
//   - ctx: cancels entries that have not started compiling yet
//   - manifestPath: the manifest file
//   - options: variadic list of LibraryBuilderOption functions
//
// Returns:
//   - *Library: the compiled library
//   - error: a manifest *Error, or the joined entry errors
func LoadLibrary(ctx context.Context, manifestPath string, options ...LibraryBuilderOption) (*Library, error) {
	l := &libraryLoader{
		workers: max(runtime.NumCPU()-1, 1),
		logger:  log.StandardLogger(),
	}
	for _, opt := range options {
		opt(l)
	}
	if l.compiler == nil {
		l.compiler = NewCompiler(WithFS(l.fsys))
	}

	entries, err := l.readManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	results := l.compileAll(ctx, entries)

	lib := &Library{
		entries:       entries,
		resources:     make(map[string]ResourceDesc),
		depthStencils: make(map[string]DepthStencilDesc),
		blends:        make(map[string]BlendDesc),
		rasterizers:   make(map[string]RasterizerDesc),
		samplers:      make(map[string]SamplerDesc),
	}
	var errs []error
	for i, r := range results {
		e := entries[i]
		if r.err != nil {
			errs = append(errs, fmt.Errorf("descriptor %q: %w", e.Name, r.err))
			continue
		}
		switch v := r.value.(type) {
		case ResourceDesc:
			lib.resources[e.Name] = v
		case DepthStencilDesc:
			lib.depthStencils[e.Name] = v
		case BlendDesc:
			lib.blends[e.Name] = v
		case RasterizerDesc:
			lib.rasterizers[e.Name] = v
		case SamplerDesc:
			lib.samplers[e.Name] = v
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	l.logger.WithField("manifest", manifestPath).Debugf("descriptor library loaded: %d entries", len(entries))
	return lib, nil
}

func (l *libraryLoader) readManifest(manifestPath string) ([]Entry, error) {
	m, err := readDocument(l.fsys, manifestPath)
	if err != nil {
		return nil, err
	}
	root := object{m: m}
	items, err := root.array("descriptors")
	if err != nil {
		return nil, schemaError(manifestPath, err)
	}

	entries := make([]Entry, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		o, err := root.element("descriptors", i, item)
		if err != nil {
			return nil, schemaError(manifestPath, err)
		}
		var e Entry
		if e.Name, err = o.str("name"); err != nil {
			return nil, schemaError(manifestPath, err)
		}
		if _, dup := seen[e.Name]; dup {
			return nil, schemaError(manifestPath, o.fail("name", fmt.Errorf("duplicate descriptor name %q", e.Name)))
		}
		seen[e.Name] = struct{}{}

		kind, err := o.str("kind")
		if err != nil {
			return nil, schemaError(manifestPath, err)
		}
		e.Kind = Kind(kind)
		switch e.Kind {
		case KindResource, KindDepthStencil, KindBlend, KindRasterizer, KindSampler:
		default:
			return nil, schemaError(manifestPath, o.fail("kind", fmt.Errorf("%w %q", errUnknownEnum, kind)))
		}

		p, err := o.str("path")
		if err != nil {
			return nil, schemaError(manifestPath, err)
		}
		e.Path = l.resolve(manifestPath, p)
		entries = append(entries, e)
	}
	return entries, nil
}

// resolve makes p relative to the manifest directory unless it is already absolute.
func (l *libraryLoader) resolve(manifestPath, p string) string {
	if l.fsys != nil {
		return path.Join(path.Dir(manifestPath), p)
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(manifestPath), p)
}

func (l *libraryLoader) compileAll(ctx context.Context, entries []Entry) []compiled {
	results := make([]compiled, len(entries))
	if len(entries) == 0 {
		return results
	}

	pool := worker.NewDynamicWorkerPool(l.workers, len(entries), 1*time.Second)

	// The WaitGroup is the barrier; each task writes only its own result slot.
	var wg sync.WaitGroup
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			results[i] = compiled{err: err}
			continue
		}
		wg.Add(1)
		idx, entry := i, e
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				if err := ctx.Err(); err != nil {
					results[idx] = compiled{err: err}
					return nil, nil
				}
				v, err := l.compiler.Compile(entry.Kind, entry.Path)
				results[idx] = compiled{value: v, err: err}
				l.logger.WithFields(log.Fields{
					"name": entry.Name,
					"kind": entry.Kind,
					"path": entry.Path,
				}).Debug("descriptor compiled")
				return nil, nil
			},
		})
	}
	wg.Wait()
	return results
}

// Entries returns the manifest entries in manifest order.
func (lib *Library) Entries() []Entry {
	out := make([]Entry, len(lib.entries))
	copy(out, lib.entries)
	return out
}

// Names returns the descriptor names in manifest order.
func (lib *Library) Names() []string {
	out := make([]string, len(lib.entries))
	for i, e := range lib.entries {
		out[i] = e.Name
	}
	return out
}

// Resource returns the resource descriptor registered under name.
func (lib *Library) Resource(name string) (ResourceDesc, bool) {
	d, ok := lib.resources[name]
	return d, ok
}

// DepthStencil returns the depth-stencil descriptor registered under name.
func (lib *Library) DepthStencil(name string) (DepthStencilDesc, bool) {
	d, ok := lib.depthStencils[name]
	return d, ok
}

// Blend returns the blend descriptor registered under name.
func (lib *Library) Blend(name string) (BlendDesc, bool) {
	d, ok := lib.blends[name]
	return d, ok
}

// Rasterizer returns the rasterizer descriptor registered under name.
func (lib *Library) Rasterizer(name string) (RasterizerDesc, bool) {
	d, ok := lib.rasterizers[name]
	return d, ok
}

// Sampler returns the sampler descriptor registered under name.
func (lib *Library) Sampler(name string) (SamplerDesc, bool) {
	d, ok := lib.samplers[name]
	return d, ok
}
