package compose

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/querymill/querymill/internal/errors"
	"github.com/querymill/querymill/internal/pattern"
	"github.com/querymill/querymill/internal/predicate"
	"github.com/querymill/querymill/internal/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg := registry.New()
	require.NoError(t, reg.LoadCategory("theme", []registry.Narrower{
		{Name: "angst", Options: []predicate.Predicate{predicate.Keyed("tag", "angst")}},
		{Name: "fluff", Options: []predicate.Predicate{predicate.Keyed("tag", "fluff")}},
	}))
	require.NoError(t, reg.LoadCategory("fandom", []registry.Narrower{
		{Name: "Harry Potter", Options: []predicate.Predicate{
			predicate.Keyed("tag", "Harry Potter - J. K. Rowling"),
			predicate.Keyed("tag", "Harry Potter"),
		}},
	}))
	return reg
}

func parsePattern(t *testing.T, src string) pattern.Node {
	t.Helper()
	var n pattern.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &n))
	return n
}

func newTestEngine(seed int64) *Engine {
	return New(predicate.BackendArchive, rand.New(rand.NewSource(seed)), nil)
}

func TestEngine_Resolve_SingleLeaf(t *testing.T) {
	reg := testRegistry(t)
	e := newTestEngine(1)

	group, err := e.Resolve(parsePattern(t, `AND: [theme]`), reg)
	require.NoError(t, err)

	got, err := group.Format()
	require.NoError(t, err)
	assert.Contains(t, []string{`tag:"angst"`, `tag:"fluff"`}, got)
}

func TestEngine_Resolve_MultiOptionSlotBecomesOrGroup(t *testing.T) {
	reg := testRegistry(t)
	e := newTestEngine(1)

	group, err := e.Resolve(parsePattern(t, `AND: [fandom]`), reg)
	require.NoError(t, err)

	got, err := group.Format()
	require.NoError(t, err)
	assert.Equal(t, `(tag:"Harry Potter - J. K. Rowling" OR tag:"Harry Potter")`, got)
}

func TestEngine_Resolve_SamplesWithoutReplacement(t *testing.T) {
	reg := testRegistry(t)

	// Both theme narrowers must be consumed; across many seeds no result
	// may draw the same narrower twice.
	for seed := int64(0); seed < 20; seed++ {
		e := newTestEngine(seed)
		group, err := e.Resolve(parsePattern(t, `AND: [theme, theme]`), reg)
		require.NoError(t, err)

		got, err := group.Format()
		require.NoError(t, err)
		assert.Contains(t, []string{
			`(tag:"angst" AND tag:"fluff")`,
			`(tag:"fluff" AND tag:"angst")`,
		}, got, "seed %d", seed)
	}
}

func TestEngine_Resolve_ExclusionSpansBranches(t *testing.T) {
	reg := testRegistry(t)

	// theme appears under different operators; sampling without
	// replacement still applies across the whole tree.
	node := parsePattern(t, `AND: [theme, {OR: [theme, fandom]}]`)
	for seed := int64(0); seed < 20; seed++ {
		e := newTestEngine(seed)
		group, err := e.Resolve(node, reg)
		require.NoError(t, err)

		values := map[string]int{}
		for _, leaf := range group.Leaves() {
			values[leaf.Value]++
		}
		assert.LessOrEqual(t, values["angst"], 1, "seed %d", seed)
		assert.LessOrEqual(t, values["fluff"], 1, "seed %d", seed)
	}
}

func TestEngine_Resolve_ExhaustedCategory(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.LoadCategory("theme", []registry.Narrower{
		{Name: "angst", Options: []predicate.Predicate{predicate.Keyed("tag", "angst")}},
	}))

	e := newTestEngine(1)
	_, err := e.Resolve(parsePattern(t, `AND: [theme, theme]`), reg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrExhaustedCategory))
}

func TestEngine_Resolve_UnknownCategory(t *testing.T) {
	e := newTestEngine(1)
	_, err := e.Resolve(parsePattern(t, `AND: [rating]`), testRegistry(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownCategory))
}

func TestEngine_Resolve_UnsupportedOperator(t *testing.T) {
	// Programmatically built pattern; the YAML layer rejects this earlier.
	node := pattern.Node{Op: "XOR", Children: []pattern.Child{pattern.Ref("theme")}}

	e := newTestEngine(1)
	_, err := e.Resolve(node, testRegistry(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedOperator))
}

func TestEngine_Resolve_FallbackOnFormatMismatch(t *testing.T) {
	// Plain options cannot be OR-joined under any convention, so the slot
	// must degrade to a single random alternative instead of failing.
	reg := registry.New()
	require.NoError(t, reg.LoadCategory("theme", []registry.Narrower{
		{Name: "mood", Options: []predicate.Predicate{
			predicate.Plain("angst"),
			predicate.Plain("fluff"),
		}},
	}))

	for seed := int64(0); seed < 10; seed++ {
		e := New(predicate.BackendGeneric, rand.New(rand.NewSource(seed)), nil)
		group, err := e.Resolve(parsePattern(t, `AND: [theme]`), reg)
		require.NoError(t, err)

		got, err := group.Format()
		require.NoError(t, err)
		assert.Contains(t, []string{"angst", "fluff"}, got, "seed %d", seed)
	}
}

func TestEngine_Resolve_SingleOptionSurvivesOrPattern(t *testing.T) {
	// An OR-of-one collapses to the lone option, so even a plain variant
	// resolves under an OR-demanding node without a fallback.
	reg := registry.New()
	require.NoError(t, reg.LoadCategory("theme", []registry.Narrower{
		{Name: "mood", Options: []predicate.Predicate{predicate.Plain("angst")}},
	}))

	e := New(predicate.BackendGeneric, rand.New(rand.NewSource(3)), nil)
	group, err := e.Resolve(parsePattern(t, `OR: [theme]`), reg)
	require.NoError(t, err)

	got, err := group.Format()
	require.NoError(t, err)
	assert.Equal(t, "angst", got)
}

func TestEngine_Resolve_EmptyOptionsSlotDropped(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.LoadCategory("theme", []registry.Narrower{
		{Name: "empty"},
		{Name: "angst", Options: []predicate.Predicate{predicate.Keyed("tag", "angst")}},
	}))
	require.NoError(t, reg.LoadCategory("fandom", []registry.Narrower{
		{Name: "hp", Options: []predicate.Predicate{predicate.Keyed("tag", "Harry Potter")}},
	}))

	// Whichever theme narrower is drawn, the result still formats: either
	// both slots filled or the empty one dropped.
	for seed := int64(0); seed < 10; seed++ {
		e := newTestEngine(seed)
		group, err := e.Resolve(parsePattern(t, `AND: [theme, fandom]`), reg)
		require.NoError(t, err)

		got, err := group.Format()
		require.NoError(t, err)
		assert.Contains(t, got, `tag:"Harry Potter"`, "seed %d", seed)
	}
}
