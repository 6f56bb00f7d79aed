package catalog

import (
	"gopkg.in/yaml.v3"

	"github.com/querymill/querymill/internal/errors"
	"github.com/querymill/querymill/internal/predicate"
)

// Option is one predicate alternative of a narrower as written in the
// catalog. A bare string defers its variant to the active backend's default
// leaf constructor; mapping forms pin an explicit variant:
//
//	- angst                      # backend default
//	- plain: angst               # bare tag text
//	- value: teen                # keyed, default key "tag"
//	- {key: rating, value: teen} # keyed, explicit key
//	- not: major character death # negated, optional key
//	- site: archiveofourown.org  # site filter
type Option struct {
	raw  string
	pred *predicate.Predicate
}

// explicitOption is the decoded mapping form.
type explicitOption struct {
	Plain string `yaml:"plain,omitempty"`
	Key   string `yaml:"key,omitempty"`
	Value string `yaml:"value,omitempty"`
	Not   string `yaml:"not,omitempty"`
	Site  string `yaml:"site,omitempty"`
}

// Raw returns an option in the bare-string form.
func Raw(value string) Option {
	return Option{raw: value}
}

// Explicit returns an option pinned to a concrete predicate.
func Explicit(p predicate.Predicate) Option {
	return Option{pred: &p}
}

// Build converts the option to a predicate under the given backend.
func (o Option) Build(backend predicate.Backend) predicate.Predicate {
	if o.pred != nil {
		return *o.pred
	}
	return backend.NewLeaf(o.raw)
}

// IsZero reports whether the option carries neither form.
func (o Option) IsZero() bool {
	return o.pred == nil && o.raw == ""
}

// UnmarshalYAML decodes either the scalar or the mapping form.
func (o *Option) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Value == "" {
			return errors.Validationf("empty tag option at line %d", value.Line)
		}
		o.raw = value.Value
		o.pred = nil
		return nil

	case yaml.MappingNode:
		var ex explicitOption
		if err := value.Decode(&ex); err != nil {
			return err
		}

		var p predicate.Predicate
		switch {
		case ex.Site != "":
			p = predicate.Site(ex.Site)
		case ex.Not != "":
			p = predicate.Negated(ex.Key, ex.Not)
		case ex.Plain != "":
			p = predicate.Plain(ex.Plain)
		case ex.Value != "":
			p = predicate.Keyed(ex.Key, ex.Value)
		default:
			return errors.Validationf("option at line %d needs one of plain, value, not, or site", value.Line)
		}
		o.raw = ""
		o.pred = &p
		return nil

	default:
		return errors.Validationf("option at line %d must be a string or a mapping", value.Line)
	}
}

// MarshalYAML encodes the option back to its catalog form, so resolved
// snapshots round-trip.
func (o Option) MarshalYAML() (any, error) {
	if o.pred == nil {
		return o.raw, nil
	}

	p := *o.pred
	switch p.Kind {
	case predicate.KindPlain:
		return explicitOption{Plain: p.Value}, nil
	case predicate.KindKeyed:
		key := p.Key
		if key == predicate.DefaultKey {
			key = ""
		}
		return explicitOption{Key: key, Value: p.Value}, nil
	case predicate.KindNegated:
		key := p.Key
		if key == predicate.DefaultKey {
			key = ""
		}
		return explicitOption{Key: key, Not: p.Value}, nil
	case predicate.KindSite:
		return explicitOption{Site: p.Value}, nil
	default:
		return nil, errors.Internalf("option with unknown predicate kind %d", int(p.Kind))
	}
}
