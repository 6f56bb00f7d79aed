package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querymill/querymill/internal/errors"
	"github.com/querymill/querymill/internal/predicate"
)

func TestRegistry_LoadCategory(t *testing.T) {
	r := New()

	err := r.LoadCategory("theme", []Narrower{
		{Name: "angst", Options: []predicate.Predicate{predicate.Keyed("tag", "angst")}},
		{Name: "fluff", Options: []predicate.Predicate{predicate.Keyed("tag", "fluff")}},
	})
	require.NoError(t, err)

	narrowers, err := r.NarrowersOf("theme")
	require.NoError(t, err)
	require.Len(t, narrowers, 2)

	// Load order is preserved and the category is stamped on.
	assert.Equal(t, "angst", narrowers[0].Name)
	assert.Equal(t, "theme", narrowers[0].Category)
	assert.Equal(t, Key{Category: "theme", Name: "fluff"}, narrowers[1].Key())
}

func TestRegistry_LoadCategory_Duplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.LoadCategory("theme", nil))

	err := r.LoadCategory("theme", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDuplicateCategory))
}

func TestRegistry_NarrowersOf_Unknown(t *testing.T) {
	r := New()

	_, err := r.NarrowersOf("fandom")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownCategory))
}

func TestRegistry_Categories(t *testing.T) {
	r := New()
	require.NoError(t, r.LoadCategory("theme", nil))
	require.NoError(t, r.LoadCategory("fandom", nil))

	assert.Equal(t, []string{"fandom", "theme"}, r.Categories())
	assert.True(t, r.Has("theme"))
	assert.False(t, r.Has("rating"))
}

func TestNarrower_Silent(t *testing.T) {
	assert.True(t, Narrower{Name: "_default"}.Silent())
	assert.False(t, Narrower{Name: "angst"}.Silent())
}

func TestNarrower_SharedNameAcrossCategories(t *testing.T) {
	a := Narrower{Category: "theme", Name: "canon"}
	b := Narrower{Category: "fandom", Name: "canon"}
	assert.NotEqual(t, a.Key(), b.Key())
}
