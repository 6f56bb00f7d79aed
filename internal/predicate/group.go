package predicate

import (
	"slices"
	"strings"

	"github.com/querymill/querymill/internal/errors"
)

// Op is a boolean group operator.
type Op string

// Supported group operators.
const (
	OpAnd Op = "AND"
	OpOr  Op = "OR"
)

// ParseOp converts a pattern-node label to an Op.
func ParseOp(s string) (Op, error) {
	switch Op(s) {
	case OpAnd:
		return OpAnd, nil
	case OpOr:
		return OpOr, nil
	default:
		return "", errors.UnsupportedOperatorf("operator %q is not AND or OR", s)
	}
}

// Group is a boolean combination over an ordered sequence of children.
// Children may be leaves or further groups; nesting is unrestricted.
type Group struct {
	Op       Op
	Children []Node
}

// And builds an AND group over the given children.
func And(children ...Node) Group {
	return Group{Op: OpAnd, Children: children}
}

// Or builds an OR group over the given children.
func Or(children ...Node) Group {
	return Group{Op: OpOr, Children: children}
}

// Leaves returns the group's subtree flattened to leaves in order.
func (g Group) Leaves() []Predicate {
	var leaves []Predicate
	for _, child := range g.Children {
		leaves = append(leaves, child.Leaves()...)
	}
	return leaves
}

// Format renders the group as query text.
//
// A single-child group formats exactly as its child: no redundant wrapping.
// With two or more children, the join style is dispatched on the variant
// kind of the first leaf in the subtree:
//
//   - plain leads: the legacy space-joined convention. The flattened leaves
//     are deduplicated and stable-ordered by kind, then joined with single
//     spaces and no parentheses. Only AND is expressible this way; an OR
//     group is a formatting mismatch (ErrFormatMismatch).
//   - any other kind leads: the archive convention, children joined with
//     the literal operator and wrapped in parentheses.
//
// The plain-leads dispatch applies even when later children are keyed
// variants. The archive tolerates that shape so it is preserved for
// compatibility; see the catalog documentation before relying on it.
func (g Group) Format() (string, error) {
	switch len(g.Children) {
	case 0:
		return "", errors.InvalidPredicate("empty group")
	case 1:
		return g.Children[0].Format()
	}

	leaves := g.Leaves()
	if len(leaves) == 0 {
		return "", errors.InvalidPredicate("group has no leaves")
	}

	if leaves[0].Kind == KindPlain {
		return g.formatSpaceJoined(leaves)
	}
	return g.formatOperatorJoined()
}

// formatSpaceJoined renders the generic convention: flattened, deduplicated,
// kind-ordered leaves joined by spaces. Deterministic output keeps repeated
// runs cacheable.
func (g Group) formatSpaceJoined(leaves []Predicate) (string, error) {
	if g.Op != OpAnd {
		return "", errors.FormatMismatchf("plain predicates cannot be joined with %s", g.Op)
	}

	seen := make(map[Predicate]struct{}, len(leaves))
	deduped := make([]Predicate, 0, len(leaves))
	for _, leaf := range leaves {
		if _, ok := seen[leaf]; ok {
			continue
		}
		seen[leaf] = struct{}{}
		deduped = append(deduped, leaf)
	}

	slices.SortStableFunc(deduped, func(a, b Predicate) int {
		return int(a.Kind) - int(b.Kind)
	})

	parts := make([]string, 0, len(deduped))
	for _, leaf := range deduped {
		text, err := leaf.Format()
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " "), nil
}

// formatOperatorJoined renders the archive convention: each child formatted
// in place, joined with the literal operator, wrapped in parentheses.
func (g Group) formatOperatorJoined() (string, error) {
	parts := make([]string, 0, len(g.Children))
	for _, child := range g.Children {
		text, err := child.Format()
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return "(" + strings.Join(parts, " "+string(g.Op)+" ") + ")", nil
}
