// Package language resolves language names to resource providers.
//
// A provider hands out language-specific resources such as the embedding-based word swap
// and the stopword list. Providers are registered by name and built lazily, at most once.
package language

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/sync/singleflight"

	"textattack/domain/core"
	"textattack/ports"
)

// ExtensionPoint is where support for a new language is added.
const ExtensionPoint = "language.Registry.Register (built-in providers live in internal/language)"

// Provider supplies language-dependent resources.
type Provider interface {
	Name() string
	WordSwapEmbedding(ctx context.Context) (ports.Transformation, error)
	Stopwords() []string
}

// Factory constructs a provider. It runs at most once per successful registration lookup.
type Factory func(ctx context.Context) (Provider, error)

// Registry maps normalized language names to factories and caches the built providers.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	instances map[string]Provider
	// generation counts the registrations of each name; a construction only
	// caches its provider when the name was not re-registered meanwhile.
	generation map[string]uint64
	group      singleflight.Group
}

func NewRegistry() *Registry {
	return &Registry{
		factories:  map[string]Factory{},
		instances:  map[string]Provider{},
		generation: map[string]uint64{},
	}
}

// NormalizeName joins the whitespace-separated parts of name, each title-cased:
// "old english" -> "OldEnglish", "french" -> "French".
func NormalizeName(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		prevLetter := false
		for _, r := range part {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = unicode.IsLetter(r)
		}
	}
	return b.String()
}

// Register binds a factory to the normalized form of name, replacing any previous binding
// and forgetting a provider it built.
func (r *Registry) Register(name string, f Factory) {
	key := NormalizeName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[key] = f
	r.generation[key]++
	delete(r.instances, key)
}

// GetOrCreate returns the provider for name, constructing it on first use. Concurrent first
// calls share one construction; later calls return the identical instance. Construction
// errors are returned to every waiting caller and are not cached.
//
// The shared construction is not cancelled by any single caller; ctx only bounds how
// long this caller waits for it.
func (r *Registry) GetOrCreate(ctx context.Context, name string) (Provider, error) {
	key := NormalizeName(name)

	r.mu.RLock()
	p, built := r.instances[key]
	_, registered := r.factories[key]
	gen := r.generation[key]
	r.mu.RUnlock()
	if built {
		return p, nil
	}
	if !registered {
		return nil, core.NewUnregisteredLanguageError(key, name, ExtensionPoint)
	}

	flight := fmt.Sprintf("%s#%d", key, gen)
	ch := r.group.DoChan(flight, func() (interface{}, error) {
		return r.construct(context.WithoutCancel(ctx), key)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Provider), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// construct builds a provider from the current binding of key. The result is cached only
// when no Register call replaced that binding while the factory ran.
func (r *Registry) construct(ctx context.Context, key string) (Provider, error) {
	r.mu.RLock()
	p, ok := r.instances[key]
	f := r.factories[key]
	gen := r.generation[key]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := f(ctx)
	if err != nil {
		return nil, fmt.Errorf("construct %s resource provider: %w", key, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation[key] != gen {
		return p, nil
	}
	if existing, ok := r.instances[key]; ok {
		return existing, nil
	}
	r.instances[key] = p
	return p, nil
}

// Names lists the registered normalized names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Default is the process-wide registry, populated with the built-in languages.
var Default = NewRegistry()

var (
	currentMu sync.RWMutex
	current   Provider
)

func init() {
	Default.Register("English", EnglishFactory)
	Default.Register("German", GermanFactory)
}

// SetLanguage resolves name in Default and makes it the current language.
func SetLanguage(ctx context.Context, name string) (Provider, error) {
	p, err := Default.GetOrCreate(ctx, name)
	if err != nil {
		return nil, err
	}
	currentMu.Lock()
	current = p
	currentMu.Unlock()
	return p, nil
}

// Current returns the provider selected by SetLanguage, or nil.
func Current() Provider {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}
