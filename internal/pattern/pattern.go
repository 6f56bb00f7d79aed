// Package pattern models boolean query templates: trees whose interior
// nodes are AND/OR operators and whose leaves name catalog categories. The
// composition engine resolves one pattern per generation round.
//
// In the catalog YAML a pattern is a single-key mapping from operator to a
// child list; children are category names or nested patterns:
//
//	patterns:
//	  - AND: [theme, theme]
//	  - AND:
//	      - fandom
//	      - OR: [theme, rating]
package pattern

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/querymill/querymill/internal/errors"
	"github.com/querymill/querymill/internal/predicate"
)

// Node is one operator node of a pattern tree.
type Node struct {
	Op       predicate.Op
	Children []Child
}

// Child is either a category reference or a nested node, never both.
type Child struct {
	Category string
	Node     *Node
}

// IsRef reports whether the child is a category reference.
func (c Child) IsRef() bool {
	return c.Node == nil
}

// Ref returns a category-reference child.
func Ref(category string) Child {
	return Child{Category: category}
}

// Nested returns a nested-pattern child.
func Nested(n Node) Child {
	return Child{Node: &n}
}

// Categories returns every category name referenced anywhere in the tree,
// in first-appearance order with duplicates kept. Callers validating a
// catalog use it to check each reference against the registry.
func (n Node) Categories() []string {
	var refs []string
	for _, child := range n.Children {
		if child.IsRef() {
			refs = append(refs, child.Category)
		} else {
			refs = append(refs, child.Node.Categories()...)
		}
	}
	return refs
}

// String renders the tree in compact operator-call form, e.g.
// "AND(theme, OR(fandom, theme))". Used in logs and history records.
func (n Node) String() string {
	parts := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		if child.IsRef() {
			parts = append(parts, child.Category)
		} else {
			parts = append(parts, child.Node.String())
		}
	}
	return fmt.Sprintf("%s(%s)", n.Op, strings.Join(parts, ", "))
}

// UnmarshalYAML decodes the single-key operator mapping form.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode || len(value.Content) != 2 {
		return errors.Validationf("pattern node at line %d must be a single-key operator mapping", value.Line)
	}

	keyNode, valNode := value.Content[0], value.Content[1]

	op, err := predicate.ParseOp(keyNode.Value)
	if err != nil {
		return errors.Wrapf(err, errors.CodeUnsupportedOperator, "pattern operator at line %d", keyNode.Line)
	}

	if valNode.Kind != yaml.SequenceNode {
		return errors.Validationf("children of %s at line %d must be a sequence", op, valNode.Line)
	}

	children := make([]Child, 0, len(valNode.Content))
	for _, item := range valNode.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			if item.Value == "" {
				return errors.Validationf("empty category reference at line %d", item.Line)
			}
			children = append(children, Ref(item.Value))
		case yaml.MappingNode:
			var nested Node
			if err := item.Decode(&nested); err != nil {
				return err
			}
			children = append(children, Nested(nested))
		default:
			return errors.Validationf("pattern child at line %d must be a category name or nested pattern", item.Line)
		}
	}

	if len(children) == 0 {
		return errors.Validationf("pattern %s at line %d has no children", op, keyNode.Line)
	}

	n.Op = op
	n.Children = children
	return nil
}

// MarshalYAML encodes the node back to the single-key mapping form, so a
// resolved catalog snapshot round-trips through the same schema.
func (n Node) MarshalYAML() (any, error) {
	children := make([]any, 0, len(n.Children))
	for _, child := range n.Children {
		if child.IsRef() {
			children = append(children, child.Category)
		} else {
			children = append(children, *child.Node)
		}
	}
	return map[string]any{string(n.Op): children}, nil
}
