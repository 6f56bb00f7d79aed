package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querymill/querymill/internal/errors"
)

func TestPredicate_Format(t *testing.T) {
	tests := []struct {
		name string
		pred Predicate
		want string
	}{
		{"plain", Plain("hurt/comfort"), "hurt/comfort"},
		{"keyed default key", Keyed("", "angst"), `tag:"angst"`},
		{"keyed explicit key", Keyed("rating", "teen"), `rating:"teen"`},
		{"negated", Negated("tag", "major character death"), `NOT tag:"major character death"`},
		{"site", Site("archiveofourown.org"), "SITE:archiveofourown.org"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.pred.Format()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPredicate_Format_EmptyValue(t *testing.T) {
	for _, pred := range []Predicate{Plain(""), Keyed("tag", ""), Negated("tag", ""), Site("")} {
		_, err := pred.Format()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidPredicate))
	}
}

func TestGroup_Format_SingleChildCollapses(t *testing.T) {
	// A group of one formats identically to the child alone, for both ops
	// and for leaf and group children.
	leaf := Keyed("tag", "fluff")
	leafText, err := leaf.Format()
	require.NoError(t, err)

	inner := Or(Keyed("tag", "a"), Keyed("tag", "b"))
	innerText, err := inner.Format()
	require.NoError(t, err)

	for _, g := range []Group{And(leaf), Or(leaf)} {
		got, err := g.Format()
		require.NoError(t, err)
		assert.Equal(t, leafText, got)
	}

	got, err := And(inner).Format()
	require.NoError(t, err)
	assert.Equal(t, innerText, got)
}

func TestGroup_Format_ArchiveShape(t *testing.T) {
	got, err := Or(Keyed("tag", "a"), Keyed("tag", "b")).Format()
	require.NoError(t, err)
	assert.Equal(t, `(tag:"a" OR tag:"b")`, got)

	got, err = And(Keyed("tag", "a"), Negated("tag", "b"), Site("example.org")).Format()
	require.NoError(t, err)
	assert.Equal(t, `(tag:"a" AND NOT tag:"b" AND SITE:example.org)`, got)
}

func TestGroup_Format_NestedArchive(t *testing.T) {
	g := And(
		Or(Keyed("tag", "angst"), Keyed("tag", "hurt/comfort")),
		Keyed("fandom", "Harry Potter"),
	)
	got, err := g.Format()
	require.NoError(t, err)
	assert.Equal(t, `((tag:"angst" OR tag:"hurt/comfort") AND fandom:"Harry Potter")`, got)
}

func TestGroup_Format_PlainSpaceJoins(t *testing.T) {
	got, err := And(Plain("angst"), Plain("fluff")).Format()
	require.NoError(t, err)
	assert.Equal(t, "angst fluff", got)

	// Plain leading the list suppresses parentheses even with keyed
	// children later; the archive tolerates this shape.
	got, err = And(Plain("angst"), Keyed("tag", "fluff")).Format()
	require.NoError(t, err)
	assert.Equal(t, `angst tag:"fluff"`, got)
}

func TestGroup_Format_PlainDedup(t *testing.T) {
	withDup, err := And(Plain("angst"), Plain("fluff"), Plain("angst")).Format()
	require.NoError(t, err)
	without, err := And(Plain("angst"), Plain("fluff")).Format()
	require.NoError(t, err)
	assert.Equal(t, without, withDup)
}

func TestGroup_Format_PlainStableKindOrder(t *testing.T) {
	// Plain leaves sort ahead of keyed ones; equal kinds keep their order.
	got, err := And(Plain("a"), Keyed("tag", "k"), Plain("b")).Format()
	require.NoError(t, err)
	assert.Equal(t, `a b tag:"k"`, got)
}

func TestGroup_Format_PlainOrMismatch(t *testing.T) {
	_, err := Or(Plain("angst"), Plain("fluff")).Format()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrFormatMismatch))
}

func TestGroup_Format_Empty(t *testing.T) {
	_, err := And().Format()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidPredicate))
}

func TestGroup_Format_PropagatesEmptyValue(t *testing.T) {
	_, err := And(Keyed("tag", "a"), Keyed("tag", "")).Format()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidPredicate))
}

func TestGroup_Leaves_Flattens(t *testing.T) {
	g := And(
		Or(Keyed("tag", "a"), Keyed("tag", "b")),
		Plain("c"),
	)
	leaves := g.Leaves()
	require.Len(t, leaves, 3)
	assert.Equal(t, "a", leaves[0].Value)
	assert.Equal(t, "b", leaves[1].Value)
	assert.Equal(t, "c", leaves[2].Value)
}

func TestParseOp(t *testing.T) {
	op, err := ParseOp("AND")
	require.NoError(t, err)
	assert.Equal(t, OpAnd, op)

	op, err = ParseOp("OR")
	require.NoError(t, err)
	assert.Equal(t, OpOr, op)

	_, err = ParseOp("XOR")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedOperator))
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("")
	require.NoError(t, err)
	assert.Equal(t, BackendGeneric, b)

	b, err = ParseBackend("ao3")
	require.NoError(t, err)
	assert.Equal(t, BackendArchive, b)

	_, err = ParseBackend("solr")
	require.Error(t, err)
}

func TestBackend_NewLeaf(t *testing.T) {
	assert.Equal(t, KindPlain, BackendGeneric.NewLeaf("x").Kind)

	leaf := BackendArchive.NewLeaf("x")
	assert.Equal(t, KindKeyed, leaf.Kind)
	assert.Equal(t, DefaultKey, leaf.Key)
}
