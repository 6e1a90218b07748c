package scraper

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gobeaver/filescraper/metadata"
)

// UnsupportedMessage is recorded by the sentinel scraper.
const UnsupportedMessage = "Proper scraper was not found. The file was not analyzed."

// Unsupported is the sentinel descriptor returned by Select when nothing
// matches. It never invokes a process.
var Unsupported = &Descriptor{
	Name: "ScraperNotFound",
	Strategy: StrategyFunc(func(ctx context.Context, s *Session) error {
		s.Result.AddError(KindUnsupportedFormat, UnsupportedMessage)
		stream := metadata.NewStream()
		stream.Set(metadata.FieldMimetype, metadata.Unresolved)
		stream.Set(metadata.FieldVersion, metadata.Unresolved)
		stream.Set(metadata.FieldStreamType, metadata.Unresolved)
		stream.SetIndex(0)
		s.Result.AddStream(stream)
		return nil
	}),
}

// Registry is an ordered, immutable table of descriptors. Order is merge
// priority.
type Registry struct {
	descriptors []*Descriptor
	byName      map[string]*Descriptor
}

// NewRegistry creates a registry from descriptors in priority order.
// It panics on duplicate names, as descriptor tables are static.
func NewRegistry(descriptors ...*Descriptor) *Registry {
	r := &Registry{
		descriptors: make([]*Descriptor, 0, len(descriptors)),
		byName:      make(map[string]*Descriptor, len(descriptors)),
	}
	for _, d := range descriptors {
		if _, dup := r.byName[d.Name]; dup {
			panic(fmt.Sprintf("scraper: duplicate descriptor %q", d.Name))
		}
		r.descriptors = append(r.descriptors, d)
		r.byName[d.Name] = d
	}
	return r
}

// Select returns the descriptors accepting req in priority order. The
// result is never empty: when nothing matches it holds only Unsupported.
func (r *Registry) Select(req *Request) []*Descriptor {
	var selected []*Descriptor
	for _, d := range r.descriptors {
		if d.Matches(req) {
			selected = append(selected, d)
		}
	}
	if len(selected) == 0 {
		return []*Descriptor{Unsupported}
	}
	return selected
}

// Descriptors returns all descriptors in priority order.
func (r *Registry) Descriptors() []*Descriptor {
	out := make([]*Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Lookup returns the descriptor with the given name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// RegisteredMIMETypes returns every mimetype some descriptor accepts.
func (r *Registry) RegisteredMIMETypes() []string {
	seen := make(map[string]bool)
	for _, d := range r.descriptors {
		for m := range d.Supported {
			seen[m] = true
		}
	}
	types := make([]string, 0, len(seen))
	for m := range seen {
		types = append(types, m)
	}
	sort.Strings(types)
	return types
}

// HasScraper reports whether any descriptor accepts mimetype.
func (r *Registry) HasScraper(mimetype string) bool {
	for _, d := range r.descriptors {
		if _, ok := d.Supported[mimetype]; ok {
			return true
		}
	}
	return false
}

// Count returns the number of descriptors.
func (r *Registry) Count() int {
	return len(r.descriptors)
}

// Global default registry (lazy initialized)
var (
	globalRegistry     *Registry
	globalRegistryOnce sync.Once
)

// GetDefaultRegistry returns the registry of built-in scrapers with default
// tool settings.
func GetDefaultRegistry() *Registry {
	globalRegistryOnce.Do(func() {
		globalRegistry = DefaultRegistry(DefaultTools())
	})
	return globalRegistry
}
