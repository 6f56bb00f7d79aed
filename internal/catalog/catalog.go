// Package catalog loads and validates the YAML query catalog: the
// formatting backend, the categories of narrowers, the boolean patterns,
// and presentation extras (highlight colors, archive endpoint). The catalog
// is the single configuration artifact operators edit.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/querymill/querymill/internal/errors"
	"github.com/querymill/querymill/internal/pattern"
	"github.com/querymill/querymill/internal/predicate"
	"github.com/querymill/querymill/internal/registry"
	"github.com/querymill/querymill/internal/validation"
)

// Defaults applied when the catalog omits the corresponding field.
const (
	DefaultRounds   = 10
	DefaultEndpoint = "https://archiveofourown.org/works/search"
)

// typeResolved marks a snapshot written back by WriteResolved.
const typeResolved = "resolved"

// File mirrors the on-disk YAML schema.
type File struct {
	Type       string                         `yaml:"type,omitempty"`
	Backend    string                         `yaml:"backend,omitempty" validate:"omitempty,oneof=generic archive ao3"`
	Endpoint   string                         `yaml:"endpoint,omitempty" validate:"omitempty,url"`
	Rounds     int                            `yaml:"rounds,omitempty" validate:"gte=0,lte=10000"`
	Colors     map[string]string              `yaml:"colors,omitempty"`
	Categories map[string]map[string][]Option `yaml:"categories" validate:"required,min=1"`
	Patterns   []pattern.Node                 `yaml:"patterns" validate:"required,min=1"`
}

// Catalog is the loaded, validated form ready for composition.
type Catalog struct {
	Backend  predicate.Backend
	Endpoint string
	Rounds   int
	Colors   map[string]string
	Registry *registry.Registry
	Patterns []pattern.Node

	file File
}

// Overrides adjust a catalog file before building; zero values leave the
// file's own settings in place.
type Overrides struct {
	Backend string
	Rounds  int
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	return LoadWith(path, Overrides{})
}

// LoadWith reads and parses a catalog file, applying overrides on top of
// the file's settings.
func LoadWith(path string, ov Overrides) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := ParseWith(data, ov)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	return ParseWith(data, Overrides{})
}

// ParseWith decodes and validates catalog YAML with overrides applied.
func ParseWith(data []byte, ov Overrides) (*Catalog, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "parse catalog yaml")
	}
	if ov.Backend != "" {
		file.Backend = ov.Backend
	}
	if ov.Rounds > 0 {
		file.Rounds = ov.Rounds
	}
	return build(file)
}

func build(file File) (*Catalog, error) {
	if err := validation.New().Validate(file); err != nil {
		return nil, err
	}

	backend, err := predicate.ParseBackend(file.Backend)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		Backend:  backend,
		Endpoint: file.Endpoint,
		Rounds:   file.Rounds,
		Colors:   file.Colors,
		Registry: registry.New(),
		Patterns: file.Patterns,
		file:     file,
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Rounds == 0 {
		c.Rounds = DefaultRounds
	}

	// Category and narrower names are sorted so registry load order (and
	// with it sampling under a fixed seed) does not depend on map order.
	for _, category := range sortedKeys(file.Categories) {
		narrowerMap := file.Categories[category]
		if len(narrowerMap) == 0 {
			return nil, errors.Validationf("category %q has no narrowers", category)
		}

		narrowers := make([]registry.Narrower, 0, len(narrowerMap))
		for _, name := range sortedKeys(narrowerMap) {
			options := narrowerMap[name]
			if len(options) == 0 {
				return nil, errors.Validationf("narrower %q in category %q has no options", name, category)
			}
			preds := make([]predicate.Predicate, len(options))
			for i, opt := range options {
				preds[i] = opt.Build(backend)
				if preds[i].Value == "" {
					return nil, errors.Validationf("narrower %q in category %q has an empty option", name, category)
				}
			}
			narrowers = append(narrowers, registry.Narrower{Name: name, Options: preds})
		}

		if err := c.Registry.LoadCategory(category, narrowers); err != nil {
			return nil, err
		}
	}

	// Every pattern leaf must reference a loaded category.
	for i, p := range c.Patterns {
		for _, ref := range p.Categories() {
			if !c.Registry.Has(ref) {
				return nil, errors.Validationf("pattern %d references unknown category %q", i, ref)
			}
		}
	}

	return c, nil
}

// WriteResolved writes the catalog back to disk as a resolved snapshot:
// the same schema with a type marker, suitable for reloading.
func (c *Catalog) WriteResolved(path string) error {
	out := c.file
	out.Type = typeResolved

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal resolved catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write resolved catalog: %w", err)
	}
	return nil
}

// Color returns the highlight color for a category, with the original
// tool's fallbacks.
func (c *Catalog) Color(category string) string {
	if color, ok := c.Colors[category]; ok {
		return color
	}
	switch category {
	case "fandom":
		return "yellow"
	case "theme":
		return "lightblue"
	default:
		return "blue"
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
