// Package countryref resolves country codes to display names using the
// records API country list.
package countryref

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// MessageUnavailable is the notification shown when the country list cannot
// be loaded.
const MessageUnavailable = "Server error: country list not available."

// ErrEmptyMapping reports a country list response without entries.
var ErrEmptyMapping = errors.New("country list is empty")

// Status classifies a resolution attempt.
type Status int

const (
	// Skipped means no code was given; the loading flag was never raised.
	Skipped Status = iota
	// Resolved means the code was found in the mapping.
	Resolved
	// Unavailable means the mapping could not be loaded.
	Unavailable
	// Unknown means the mapping loaded but does not contain the code.
	Unknown
)

func (s Status) String() string {
	switch s {
	case Skipped:
		return "skipped"
	case Resolved:
		return "resolved"
	case Unavailable:
		return "unavailable"
	case Unknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Status Status
	Name   string
}

// Source loads the code to name mapping.
type Source interface {
	CountriesList(ctx context.Context, lang string) (map[string]string, error)
}

// Notifier surfaces user visible errors.
type Notifier interface {
	Error(message string)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLanguage requests display names localized for lang.
func WithLanguage(lang string) Option {
	return func(r *Resolver) { r.lang = strings.TrimSpace(lang) }
}

// WithLogger sets the logger used for lookup warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLoadingObserver registers fn to run on every loading flag transition.
func WithLoadingObserver(fn func(loading bool)) Option {
	return func(r *Resolver) { r.observer = fn }
}

// Resolver lazily fetches the mapping once per instance and caches it.
// Concurrent first lookups share a single fetch.
type Resolver struct {
	source   Source
	notifier Notifier
	lang     string
	logger   *slog.Logger
	observer func(bool)
	group    singleflight.Group

	mu      sync.Mutex
	mapping map[string]string
	loading bool
}

// New builds a resolver reading from source and reporting to notifier.
func New(source Source, notifier Notifier, opts ...Option) *Resolver {
	r := &Resolver{source: source, notifier: notifier, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Loading reports whether a resolution is pending. While it is true the
// country field must not be rendered.
func (r *Resolver) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

func (r *Resolver) setLoading(loading bool) {
	r.mu.Lock()
	changed := r.loading != loading
	r.loading = loading
	observer := r.observer
	r.mu.Unlock()
	if changed && observer != nil {
		observer(loading)
	}
}

// Resolve maps code to its display name. A nil or blank code is skipped
// without touching the loading flag. When the mapping is unavailable the
// notifier receives MessageUnavailable and the flag stays raised.
func (r *Resolver) Resolve(ctx context.Context, code *string) Resolution {
	if code == nil || strings.TrimSpace(*code) == "" {
		return Resolution{Status: Skipped}
	}
	key := strings.ToUpper(strings.TrimSpace(*code))

	r.setLoading(true)
	mapping, err := r.load(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "load country list", "error", err)
		if r.notifier != nil {
			r.notifier.Error(MessageUnavailable)
		}
		return Resolution{Status: Unavailable}
	}

	name, ok := mapping[key]
	r.setLoading(false)
	if !ok {
		r.logger.WarnContext(ctx, "country code not in reference list", "country_code", key)
		return Resolution{Status: Unknown}
	}
	return Resolution{Status: Resolved, Name: name}
}

func (r *Resolver) load(ctx context.Context) (map[string]string, error) {
	r.mu.Lock()
	cached := r.mapping
	r.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	value, err, _ := r.group.Do("countries", func() (any, error) {
		if r.source == nil {
			return nil, errors.New("country source is not configured")
		}
		mapping, err := r.source.CountriesList(ctx, r.lang)
		if err != nil {
			return nil, err
		}
		if len(mapping) == 0 {
			return nil, ErrEmptyMapping
		}
		normalized := make(map[string]string, len(mapping))
		for code, name := range mapping {
			normalized[strings.ToUpper(strings.TrimSpace(code))] = name
		}
		r.mu.Lock()
		r.mapping = normalized
		r.mu.Unlock()
		return normalized, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(map[string]string), nil
}
