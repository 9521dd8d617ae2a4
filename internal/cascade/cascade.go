// Package cascade resolves a list of root configuration references into one
// merged configuration.
//
// Discovery is depth-first: a document's includes are loaded, recursively,
// before the document itself joins the merge order, so an included document
// is always overridden by the document that includes it. Every absolute path
// is loaded at most once; a second reference keeps the first position.
//
// A reference back into the chain of documents currently being expanded is
// an include cycle. Cycles are skipped like any other repeated path and are
// reported in Result.Cycles; with Options.Strict they abort resolution.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jbweber/kiln/internal/ctxlog"
	"github.com/jbweber/kiln/internal/document"
	"github.com/jbweber/kiln/internal/loader"
)

// IncludesKey is the document key listing further documents to merge.
const IncludesKey = "includes"

// IncludeCycleError reports an include chain that leads back to one of its
// own documents.
type IncludeCycleError struct {
	Chain []string
}

func (e *IncludeCycleError) Error() string {
	return fmt.Sprintf("include cycle: %s", strings.Join(e.Chain, " -> "))
}

// ErrInvalidIncludes is returned when an includes entry is not a list of strings.
var ErrInvalidIncludes = errors.New("includes must be a list of paths")

// documentStore loads one document by absolute path.
type documentStore interface {
	Load(path string) (*document.Map, error)
}

// FileStore reads documents from the local filesystem.
type FileStore struct{}

// Load implements documentStore.
func (FileStore) Load(path string) (*document.Map, error) {
	return loader.LoadFromFile(path)
}

// Options tune a Resolver.
type Options struct {
	// WorkDir anchors relative root references. Defaults to the process
	// working directory.
	WorkDir string

	// Strict turns include cycles into errors.
	Strict bool
}

// Result is a resolved cascade.
type Result struct {
	// Config is the merged configuration with includes removed.
	Config *document.Map

	// Order lists the absolute paths of every document in merge order.
	Order []string

	// Cycles lists the include chains that looped back on themselves.
	Cycles [][]string
}

// Resolver resolves cascades. It holds no state between calls.
type Resolver struct {
	store documentStore
	opts  Options
}

// NewResolver returns a Resolver reading documents from disk.
func NewResolver(opts Options) *Resolver {
	return newResolverWithStore(FileStore{}, opts)
}

func newResolverWithStore(store documentStore, opts Options) *Resolver {
	return &Resolver{store: store, opts: opts}
}

// resolution is the state of a single Resolve call.
type resolution struct {
	loaded  map[string]*document.Map
	order   []string
	stack   []string
	onStack map[string]bool
	cycles  [][]string
}

// Resolve discovers every document reachable from roots and folds them, in
// discovery order, into one configuration. Any missing or unreadable
// document fails the whole resolution.
func (r *Resolver) Resolve(ctx context.Context, roots []string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	workDir := r.opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		workDir = wd
	}

	res := &resolution{
		loaded:  make(map[string]*document.Map),
		onStack: make(map[string]bool),
	}
	if err := r.expand(ctx, res, roots, workDir); err != nil {
		return nil, err
	}

	logger.Info("Merging VM configuration", "documents", len(res.order))
	docs := make([]*document.Map, 0, len(res.order))
	for _, path := range res.order {
		logger.Debug("Resolving document", "path", path)
		docs = append(docs, res.loaded[path])
	}

	return &Result{
		Config: document.Fold(docs...),
		Order:  res.order,
		Cycles: res.cycles,
	}, nil
}

func (r *Resolver) expand(ctx context.Context, res *resolution, refs []string, dir string) error {
	logger := ctxlog.FromContext(ctx)

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}

		path, err := loader.ResolvePath(anchor(ref, dir))
		if err != nil {
			return err
		}

		if _, seen := res.loaded[path]; seen {
			if res.onStack[path] {
				chain := cycleChain(res.stack, path)
				if r.opts.Strict {
					return &IncludeCycleError{Chain: chain}
				}
				logger.Warn("Skipping include cycle", "chain", strings.Join(chain, " -> "))
				res.cycles = append(res.cycles, chain)
			} else {
				logger.Debug("Document already loaded", "path", path)
			}
			continue
		}

		doc, err := r.store.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		includes, err := includesOf(doc)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		res.loaded[path] = doc.Without(IncludesKey)

		res.stack = append(res.stack, path)
		res.onStack[path] = true
		if err := r.expand(ctx, res, includes, filepath.Dir(path)); err != nil {
			return err
		}
		res.stack = res.stack[:len(res.stack)-1]
		delete(res.onStack, path)

		res.order = append(res.order, path)
	}
	return nil
}

// anchor resolves ref against dir unless it is already absolute.
func anchor(ref, dir string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(dir, ref)
}

func includesOf(doc *document.Map) ([]string, error) {
	v, ok := doc.Get(IncludesKey)
	if !ok {
		return nil, nil
	}
	if s, ok := v.(document.Scalar); ok && s.V == nil {
		return nil, nil
	}
	seq, ok := v.(document.Sequence)
	if !ok {
		return nil, ErrInvalidIncludes
	}
	refs := make([]string, 0, len(seq))
	for _, item := range seq {
		s, ok := item.(document.Scalar)
		if !ok {
			return nil, ErrInvalidIncludes
		}
		ref, ok := s.V.(string)
		if !ok || ref == "" {
			return nil, ErrInvalidIncludes
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func cycleChain(stack []string, path string) []string {
	for i, p := range stack {
		if p == path {
			chain := append([]string{}, stack[i:]...)
			return append(chain, path)
		}
	}
	return []string{path}
}
