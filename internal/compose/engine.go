// Package compose implements the randomized composition engine: it walks a
// boolean pattern tree, fills each category slot with a narrower sampled
// without replacement, and assembles the resolved predicate tree.
package compose

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/querymill/querymill/internal/errors"
	"github.com/querymill/querymill/internal/pattern"
	"github.com/querymill/querymill/internal/predicate"
	"github.com/querymill/querymill/internal/registry"
)

// Engine resolves patterns against a registry. The random source is an
// explicit dependency so tests can inject a deterministic one; a single
// Engine must not be shared across concurrent resolutions because the
// source is stateful.
type Engine struct {
	backend predicate.Backend
	rng     *rand.Rand
	logger  *slog.Logger
}

// New creates an engine for the given backend. A nil rng gets a time-seeded
// source; a nil logger discards progress notices.
func New(backend predicate.Backend, rng *rand.Rand, logger *slog.Logger) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		backend: backend,
		rng:     rng,
		logger:  logger,
	}
}

// Resolve walks the pattern and returns the assembled predicate tree.
//
// Narrowers are sampled without replacement across the entire pattern, not
// per branch: a query never references the same narrower twice under
// different operators. The selection state lives only for this call.
//
// Each category slot resolves to an OR group over the narrower's options
// ("any of these equivalent tags satisfies the slot"). If that group cannot
// be formatted under the active backend, the engine degrades to a single
// uniformly-random option instead of failing the round. This silently
// narrows the slot from any-alternative to one-alternative; it is preserved
// from the original tool and logged at debug level.
func (e *Engine) Resolve(node pattern.Node, reg *registry.Registry) (predicate.Group, error) {
	selected := make(map[registry.Key]struct{})
	return e.resolveNode(node, reg, selected)
}

func (e *Engine) resolveNode(node pattern.Node, reg *registry.Registry, selected map[registry.Key]struct{}) (predicate.Group, error) {
	if node.Op != predicate.OpAnd && node.Op != predicate.OpOr {
		return predicate.Group{}, errors.UnsupportedOperatorf("pattern operator %q is not AND or OR", node.Op)
	}

	children := make([]predicate.Node, 0, len(node.Children))
	for _, child := range node.Children {
		if !child.IsRef() {
			nested, err := e.resolveNode(*child.Node, reg, selected)
			if err != nil {
				return predicate.Group{}, err
			}
			children = append(children, nested)
			continue
		}

		slot, ok, err := e.fillSlot(node.Op, child.Category, reg, selected)
		if err != nil {
			return predicate.Group{}, err
		}
		if ok {
			children = append(children, slot)
		}
	}

	return predicate.Group{Op: node.Op, Children: children}, nil
}

// fillSlot samples one unused narrower from the category and builds its
// predicate. The boolean result is false when the sampled narrower has no
// options and the slot is dropped.
func (e *Engine) fillSlot(op predicate.Op, category string, reg *registry.Registry, selected map[registry.Key]struct{}) (predicate.Node, bool, error) {
	narrowers, err := reg.NarrowersOf(category)
	if err != nil {
		return nil, false, err
	}

	available := make([]registry.Narrower, 0, len(narrowers))
	for _, n := range narrowers {
		if _, used := selected[n.Key()]; !used {
			available = append(available, n)
		}
	}
	if len(available) == 0 {
		return nil, false, errors.ExhaustedCategoryf("category %q has no unused narrowers left", category)
	}

	pick := available[e.rng.Intn(len(available))]
	if !pick.Silent() {
		e.logger.Info("narrower selected",
			"op", string(op),
			"category", category,
			"narrower", pick.Name,
		)
	}

	if len(pick.Options) == 0 {
		// The loader rejects empty option lists; tolerate them here by
		// dropping the slot without consuming the narrower.
		e.logger.Warn("narrower has no options, slot dropped",
			"category", category,
			"narrower", pick.Name,
		)
		return nil, false, nil
	}
	selected[pick.Key()] = struct{}{}

	options := make([]predicate.Node, len(pick.Options))
	for i, opt := range pick.Options {
		options[i] = opt
	}
	group := predicate.Or(options...)

	if _, err := group.Format(); err != nil {
		if !errors.Is(err, errors.ErrFormatMismatch) {
			return nil, false, err
		}
		// Backend/variant mismatch: fall back to one random alternative
		// rather than aborting the round.
		fallback := pick.Options[e.rng.Intn(len(pick.Options))]
		e.logger.Debug("or-group fallback to single option",
			"category", category,
			"narrower", pick.Name,
			"option", fallback.Value,
		)
		return fallback, true, nil
	}

	return group, true, nil
}
