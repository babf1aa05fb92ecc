// Package moduleloader selects console modules by route name, loads them
// lazily once and isolates their failures behind a fallback.
package moduleloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/louisbranch/backoffice/internal/platform/timeouts"
)

// Kind names a console module.
type Kind string

const (
	Contacts Kind = "contacts"
	Domains  Kind = "domains"
)

// Kinds lists every module kind in navigation order.
func Kinds() []Kind {
	return []Kind{Contacts, Domains}
}

// ParseKind maps a route token to a Kind.
func ParseKind(name string) (Kind, bool) {
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Kinds() {
		if kind == known {
			return kind, true
		}
	}
	return "", false
}

var (
	// ErrUnknownKind reports a module name with no registered loader.
	ErrUnknownKind = errors.New("unknown module")
	// ErrPanic wraps a panic raised while loading or serving a module.
	ErrPanic = errors.New("module panicked")
)

// Module is a loaded console module.
type Module interface {
	ID() string
	Mount() http.Handler
}

type module struct {
	id      string
	handler http.Handler
}

func (m module) ID() string          { return m.id }
func (m module) Mount() http.Handler { return m.handler }

// NewModule wraps a handler as a Module.
func NewModule(id string, handler http.Handler) Module {
	return module{id: id, handler: handler}
}

// Loader builds a module from its dependencies.
type Loader[D any] func(ctx context.Context, deps D) (Module, error)

// FallbackFunc renders the error fragment for a failed module.
type FallbackFunc func(w http.ResponseWriter, r *http.Request, kind Kind)

// Option configures a Registry.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	fallback FallbackFunc
	timeout  time.Duration
}

// WithLogger sets the logger used for load and serve failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithFallback sets the error fragment renderer.
func WithFallback(fn FallbackFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.fallback = fn
		}
	}
}

// WithTimeout bounds a single load.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// Registry maps kinds to loaders. Successful loads are memoized and
// concurrent first loads of a kind share one call.
type Registry[D any] struct {
	deps    D
	loaders map[Kind]Loader[D]
	opts    options
	group   singleflight.Group

	mu     sync.Mutex
	loaded map[Kind]Module
}

// New builds a registry over the closed set of loaders.
func New[D any](deps D, loaders map[Kind]Loader[D], opts ...Option) *Registry[D] {
	o := options{logger: slog.Default(), fallback: defaultFallback, timeout: timeouts.ModuleLoad}
	for _, opt := range opts {
		opt(&o)
	}
	registered := make(map[Kind]Loader[D], len(loaders))
	for kind, loader := range loaders {
		if loader != nil {
			registered[kind] = loader
		}
	}
	return &Registry[D]{deps: deps, loaders: registered, opts: o, loaded: map[Kind]Module{}}
}

// Has reports whether kind has a loader.
func (r *Registry[D]) Has(kind Kind) bool {
	_, ok := r.loaders[kind]
	return ok
}

// Load returns the module for kind, running its loader on first use.
// Failed loads are not memoized.
func (r *Registry[D]) Load(ctx context.Context, kind Kind) (Module, error) {
	loader, ok := r.loaders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	r.mu.Lock()
	cached, ok := r.loaded[kind]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	value, err, _ := r.group.Do(string(kind), func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.timeout)
		defer cancel()
		mod, err := r.runLoader(loadCtx, kind, loader)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.loaded[kind] = mod
		r.mu.Unlock()
		return mod, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(Module), nil
}

func (r *Registry[D]) runLoader(ctx context.Context, kind Kind, loader Loader[D]) (mod Module, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			mod = nil
			err = fmt.Errorf("%w: load %s: %v", ErrPanic, kind, recovered)
		}
	}()
	mod, err = loader(ctx, r.deps)
	if err != nil {
		return nil, fmt.Errorf("load module %s: %w", kind, err)
	}
	if mod == nil {
		return nil, fmt.Errorf("load module %s: loader returned no module", kind)
	}
	return mod, nil
}

// ServeModule mounts exactly one module for name and serves the request
// with it. Unknown names render an empty fragment. Load errors and panics
// while mounting or serving render the fallback.
func (r *Registry[D]) ServeModule(w http.ResponseWriter, req *http.Request, name string) {
	kind, ok := ParseKind(name)
	if !ok || !r.Has(kind) {
		w.WriteHeader(http.StatusOK)
		return
	}
	logger := r.opts.logger.With("module", string(kind))

	mod, err := r.Load(req.Context(), kind)
	if err != nil {
		logger.ErrorContext(req.Context(), "load module", "error", err)
		r.opts.fallback(w, req, kind)
		return
	}

	ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		if recovered == http.ErrAbortHandler {
			panic(recovered)
		}
		logger.ErrorContext(req.Context(), "module panicked", "error", fmt.Errorf("%w: %v", ErrPanic, recovered), "stack", string(debug.Stack()))
		if ww.Status() == 0 && ww.BytesWritten() == 0 {
			r.opts.fallback(w, req, kind)
		}
	}()
	handler := mod.Mount()
	if handler == nil {
		panic("module mounted no handler")
	}
	handler.ServeHTTP(ww, req)
}

func defaultFallback(w http.ResponseWriter, _ *http.Request, _ Kind) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
