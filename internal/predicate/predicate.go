// Package predicate models boolean search-query terms for a fanwork
// archive's faceted tag search, and owns all query-text formatting.
//
// A query is a tree: leaves are single terms (a tag, a negated tag, a keyed
// field match, a site filter) and interior nodes are AND/OR groups. The tree
// formats to either the generic space-joined convention or the archive's
// parenthesized boolean-operator syntax; which one applies is decided by the
// variant kind of the group's leading leaf, mirroring the archive's own
// query parser quirks.
package predicate

import (
	"fmt"

	"github.com/querymill/querymill/internal/errors"
)

// DefaultKey is the field key used for keyed tag matches when the catalog
// does not name one.
const DefaultKey = "tag"

// Kind identifies a leaf predicate variant.
type Kind int

// Leaf predicate variants, in formatting sort order.
const (
	KindPlain Kind = iota // bare tag text
	KindKeyed             // key:"value"
	KindNegated           // NOT key:"value"
	KindSite              // SITE:value
)

// String returns the catalog name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindKeyed:
		return "keyed"
	case KindNegated:
		return "negated"
	case KindSite:
		return "site"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Predicate is an immutable leaf term of a boolean query.
type Predicate struct {
	Kind  Kind
	Key   string // keyed and negated variants only
	Value string
}

// Plain returns a bare-tag predicate that formats as its value.
func Plain(value string) Predicate {
	return Predicate{Kind: KindPlain, Value: value}
}

// Keyed returns a keyed tag predicate. An empty key falls back to DefaultKey.
func Keyed(key, value string) Predicate {
	if key == "" {
		key = DefaultKey
	}
	return Predicate{Kind: KindKeyed, Key: key, Value: value}
}

// Negated returns a negated keyed tag predicate.
func Negated(key, value string) Predicate {
	if key == "" {
		key = DefaultKey
	}
	return Predicate{Kind: KindNegated, Key: key, Value: value}
}

// Site returns a site filter predicate.
func Site(value string) Predicate {
	return Predicate{Kind: KindSite, Value: value}
}

// Format renders the predicate as query text. It is a pure function of the
// predicate's fields and fails only when the value is empty.
func (p Predicate) Format() (string, error) {
	if p.Value == "" {
		return "", errors.InvalidPredicatef("%s predicate has empty value", p.Kind)
	}
	switch p.Kind {
	case KindPlain:
		return p.Value, nil
	case KindKeyed:
		return fmt.Sprintf("%s:%q", p.key(), p.Value), nil
	case KindNegated:
		return fmt.Sprintf("NOT %s:%q", p.key(), p.Value), nil
	case KindSite:
		return "SITE:" + p.Value, nil
	default:
		return "", errors.InvalidPredicatef("unknown predicate kind %d", int(p.Kind))
	}
}

func (p Predicate) key() string {
	if p.Key == "" {
		return DefaultKey
	}
	return p.Key
}

// Leaves implements Node; a leaf yields itself.
func (p Predicate) Leaves() []Predicate {
	return []Predicate{p}
}

// Node is one vertex of a query tree: either a leaf Predicate or a Group.
type Node interface {
	// Format renders the subtree as query text.
	Format() (string, error)
	// Leaves returns the subtree flattened to its leaf predicates in order.
	Leaves() []Predicate
}
