// Package registry holds the loaded narrower catalog: named categories of
// narrowers, each narrower offering interchangeable predicate alternatives
// for one topic slot. Everything here is structural and read-only after
// load; randomness lives in the composition engine.
package registry

import (
	"sort"
	"strings"

	"github.com/querymill/querymill/internal/errors"
	"github.com/querymill/querymill/internal/predicate"
)

// SilentPrefix marks narrowers whose selection is suppressed from progress
// logging.
const SilentPrefix = "_"

// Narrower is a named, ordered set of predicate alternatives representing
// mutually exclusive choices for one topic slot. A slot is satisfied by any
// one of its options.
type Narrower struct {
	Category string
	Name     string
	Options  []predicate.Predicate
}

// Key identifies a narrower. Two categories may reuse a narrower name, so
// identity is the (category, name) pair.
type Key struct {
	Category string
	Name     string
}

// Key returns the narrower's identity.
func (n Narrower) Key() Key {
	return Key{Category: n.Category, Name: n.Name}
}

// Silent reports whether selecting this narrower should be kept out of the
// progress log.
func (n Narrower) Silent() bool {
	return strings.HasPrefix(n.Name, SilentPrefix)
}

// Registry maps category names to their narrowers.
type Registry struct {
	categories map[string][]Narrower
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		categories: make(map[string][]Narrower),
	}
}

// LoadCategory registers a category with its narrowers. Each narrower is
// stamped with the category name so its identity is unambiguous. Loading
// the same category twice is an error.
func (r *Registry) LoadCategory(name string, narrowers []Narrower) error {
	if name == "" {
		return errors.Validation("category name is empty")
	}
	if _, ok := r.categories[name]; ok {
		return errors.DuplicateCategoryf("category %q already loaded", name)
	}

	stamped := make([]Narrower, len(narrowers))
	for i, n := range narrowers {
		n.Category = name
		stamped[i] = n
	}
	r.categories[name] = stamped
	return nil
}

// NarrowersOf returns the narrowers of a category in load order.
func (r *Registry) NarrowersOf(name string) ([]Narrower, error) {
	narrowers, ok := r.categories[name]
	if !ok {
		return nil, errors.UnknownCategoryf("category %q is not in the registry", name)
	}
	return narrowers, nil
}

// Has reports whether a category is loaded.
func (r *Registry) Has(name string) bool {
	_, ok := r.categories[name]
	return ok
}

// Categories returns the loaded category names, sorted.
func (r *Registry) Categories() []string {
	names := make([]string, 0, len(r.categories))
	for name := range r.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
