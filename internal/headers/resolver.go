package headers

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"fdg/internal/logging"
	"fdg/internal/project"
	"fdg/internal/storage"
)

// Resolver computes and memoizes the include surface of one library. The
// expensive part, one compiler invocation per header, runs exactly once per
// Resolver no matter how many goroutines ask; afterwards the forest is
// immutable and shared freely. The top-level root set is recomputed from the
// forest per call, the system header list is computed once.
type Resolver struct {
	proj           *project.Project
	tracer         Tracer
	logger         *logging.Logger
	ignorePrefixes []string
	workers        int
	cache          *storage.Cache // optional

	once    sync.Once
	forest  []*Node
	cached  *storage.CachedResult // non-nil when served from the cache
	initErr error

	sysOnce sync.Once
	sys     []string
}

// Options configures a Resolver
type Options struct {
	// Tracer produces traces; required
	Tracer Tracer
	// Logger is required
	Logger *logging.Logger
	// IgnorePrefixes lists toolchain roots dropped from traces
	IgnorePrefixes []string
	// Workers bounds concurrent trace invocations; values below one mean
	// sequential tracing
	Workers int
	// Cache, when non-nil, persists resolved forests between runs
	Cache *storage.Cache
}

// NewResolver creates a Resolver for the given library
func NewResolver(proj *project.Project, opts Options) *Resolver {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Resolver{
		proj:           proj,
		tracer:         opts.Tracer,
		logger:         opts.Logger,
		ignorePrefixes: opts.IgnorePrefixes,
		workers:        workers,
		cache:          opts.Cache,
	}
}

// LibHeaders returns the project-relative header paths a consumer of the
// library should include directly.
func (r *Resolver) LibHeaders(ctx context.Context) ([]string, error) {
	if err := r.init(ctx); err != nil {
		return nil, err
	}
	if r.cached != nil {
		return r.cached.LibHeaders, nil
	}
	return BuildGraph(r.forest).Roots(), nil
}

// SysHeaders returns the deduplicated system header names the top-level
// headers transitively require, e.g. "stddef.h". The returned slice is shared
// and must not be modified.
func (r *Resolver) SysHeaders(ctx context.Context) ([]string, error) {
	if err := r.init(ctx); err != nil {
		return nil, err
	}
	r.sysOnce.Do(func() {
		if r.cached != nil {
			r.sys = r.cached.SysHeaders
			return
		}
		roots := BuildGraph(r.forest).Roots()
		r.sys = SystemHeaders(r.forest, roots)
	})
	return r.sys, nil
}

// SysHeadersString renders the system header list newline-joined, for direct
// embedding into a prompt.
func (r *Resolver) SysHeadersString(ctx context.Context) (string, error) {
	sys, err := r.SysHeaders(ctx)
	if err != nil {
		return "", err
	}
	return strings.Join(sys, "\n"), nil
}

// Forest returns the cached inclusion forest. It is nil until the first
// resolution call succeeds.
func (r *Resolver) Forest() []*Node {
	return r.forest
}

func (r *Resolver) init(ctx context.Context) error {
	r.once.Do(func() {
		r.forest, r.initErr = r.computeForest(ctx)
	})
	return r.initErr
}

// computeForest traces every header of the library and assembles the forest.
// Headers that cannot be parsed standalone are excluded; the compiler being
// missing entirely aborts resolution.
func (r *Resolver) computeForest(ctx context.Context) ([]*Node, error) {
	headerFiles, err := r.proj.HeaderFiles()
	if err != nil {
		return nil, err
	}

	fingerprint, fpErr := r.fingerprint(headerFiles)
	if fpErr == nil && r.cache != nil {
		if forest, ok := r.loadCached(fingerprint); ok {
			return forest, nil
		}
	}

	headerDir := r.proj.HeaderDir()
	trees := make([]*Node, len(headerFiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, header := range headerFiles {
		g.Go(func() error {
			tree, err := r.traceOne(gctx, headerDir, header)
			if err != nil {
				return err
			}
			trees[i] = tree // nil when the header was excluded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Header files were sorted up front, so the forest order is
	// deterministic regardless of which worker finished first.
	forest := make([]*Node, 0, len(trees))
	for _, tree := range trees {
		if tree != nil {
			forest = append(forest, tree)
		}
	}

	r.logger.Info("header forest resolved", map[string]interface{}{
		"library":  r.proj.Name,
		"headers":  len(headerFiles),
		"resolved": len(forest),
	})

	if fpErr == nil && r.cache != nil {
		r.storeCached(fingerprint, forest)
	}

	return forest, nil
}

// traceOne traces a single header and returns its rebased inclusion tree, or
// nil when the header is excluded from resolution.
func (r *Resolver) traceOne(ctx context.Context, headerDir, header string) (*Node, error) {
	output, err := r.tracer.Trace(ctx, headerDir, header)
	if err != nil {
		if goerrors.Is(err, ErrTraceFailed) {
			r.logger.Debug("header excluded from resolution", map[string]interface{}{
				"header": header,
				"reason": "failed standalone compile",
			})
			return nil, nil
		}
		return nil, err
	}

	tree, err := ParseTrace(output, header, r.ignorePrefixes)
	if err != nil {
		// A malformed trace fails this header's extraction only; other
		// headers proceed.
		r.logger.Debug("header excluded from resolution", map[string]interface{}{
			"header": header,
			"reason": err.Error(),
		})
		return nil, nil
	}

	tree.Rebase(headerDir)
	return tree, nil
}

// fingerprint hashes the header directory listing so cached results are
// reused only while the installed headers are unchanged.
func (r *Resolver) fingerprint(headerFiles []string) (string, error) {
	h := sha256.New()
	for _, header := range headerFiles {
		info, err := os.Stat(filepath.Join(r.proj.HeaderDir(), header))
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s|%d|%d\n", header, info.Size(), info.ModTime().UnixNano())
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// loadCached restores a resolution from the persistent cache, keeping the
// stored header lists so later calls serve them without re-deriving the
// graph. Cache failures degrade to recomputation and are never fatal.
func (r *Resolver) loadCached(fingerprint string) ([]*Node, bool) {
	result, ok, err := r.cache.Load(r.proj.Name, fingerprint)
	if err != nil {
		r.logger.Warn("header cache lookup failed", map[string]interface{}{
			"library": r.proj.Name,
			"error":   err.Error(),
		})
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var forest []*Node
	if err := json.Unmarshal(result.Forest, &forest); err != nil {
		r.logger.Warn("header cache entry unreadable", map[string]interface{}{
			"library": r.proj.Name,
			"error":   err.Error(),
		})
		return nil, false
	}

	r.cached = result
	r.logger.Debug("header forest loaded from cache", map[string]interface{}{
		"library": r.proj.Name,
		"trees":   len(forest),
	})
	return forest, true
}

func (r *Resolver) storeCached(fingerprint string, forest []*Node) {
	blob, err := json.Marshal(forest)
	if err != nil {
		return
	}
	roots := BuildGraph(forest).Roots()
	result := &storage.CachedResult{
		LibHeaders: roots,
		SysHeaders: SystemHeaders(forest, roots),
		Forest:     blob,
	}
	if err := r.cache.Store(r.proj.Name, fingerprint, result); err != nil {
		r.logger.Warn("header cache store failed", map[string]interface{}{
			"library": r.proj.Name,
			"error":   err.Error(),
		})
	}
}
