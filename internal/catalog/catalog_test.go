package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querymill/querymill/internal/errors"
	"github.com/querymill/querymill/internal/predicate"
)

const sampleCatalog = `
backend: archive
rounds: 5
colors:
  fandom: yellow
categories:
  fandom:
    Harry Potter:
      - Harry Potter - J. K. Rowling
      - Harry Potter
  theme:
    angst: [angst]
    fluff: [fluff]
    _site:
      - site: archiveofourown.org
    grim:
      - not: fluff
      - {key: rating, value: mature}
patterns:
  - AND: [theme, theme]
  - AND: [theme, {OR: [fandom, theme]}]
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)

	assert.Equal(t, predicate.BackendArchive, c.Backend)
	assert.Equal(t, 5, c.Rounds)
	assert.Equal(t, DefaultEndpoint, c.Endpoint)
	assert.Equal(t, []string{"fandom", "theme"}, c.Registry.Categories())
	assert.Len(t, c.Patterns, 2)

	narrowers, err := c.Registry.NarrowersOf("theme")
	require.NoError(t, err)
	require.Len(t, narrowers, 4)

	// Narrowers are sorted by name so load order is stable.
	assert.Equal(t, "_site", narrowers[0].Name)
	assert.True(t, narrowers[0].Silent())
	assert.Equal(t, predicate.KindSite, narrowers[0].Options[0].Kind)

	// Bare strings take the backend's default leaf variant.
	angst := narrowers[1]
	assert.Equal(t, "angst", angst.Name)
	require.Len(t, angst.Options, 1)
	assert.Equal(t, predicate.KindKeyed, angst.Options[0].Kind)
	assert.Equal(t, predicate.DefaultKey, angst.Options[0].Key)

	// Explicit forms keep their variant and key.
	grim := narrowers[3]
	require.Len(t, grim.Options, 2)
	assert.Equal(t, predicate.KindNegated, grim.Options[0].Kind)
	assert.Equal(t, predicate.KindKeyed, grim.Options[1].Kind)
	assert.Equal(t, "rating", grim.Options[1].Key)
}

func TestParse_GenericBackendDefaultsToPlain(t *testing.T) {
	src := `
categories:
  theme:
    angst: [angst]
patterns:
  - AND: [theme]
`
	c, err := Parse([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, predicate.BackendGeneric, c.Backend)
	assert.Equal(t, DefaultRounds, c.Rounds)

	narrowers, err := c.Registry.NarrowersOf("theme")
	require.NoError(t, err)
	assert.Equal(t, predicate.KindPlain, narrowers[0].Options[0].Kind)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"no categories": `
patterns:
  - AND: [theme]
`,
		"no patterns": `
categories:
  theme:
    angst: [angst]
`,
		"empty narrower options": `
categories:
  theme:
    angst: []
patterns:
  - AND: [theme]
`,
		"unknown backend": `
backend: solr
categories:
  theme:
    angst: [angst]
patterns:
  - AND: [theme]
`,
		"pattern references missing category": `
categories:
  theme:
    angst: [angst]
patterns:
  - AND: [theme, fandom]
`,
		"unknown pattern operator": `
categories:
  theme:
    angst: [angst]
patterns:
  - NOR: [theme]
`,
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			require.Error(t, err)
		})
	}
}

func TestParse_UnknownCategoryReferenceCode(t *testing.T) {
	src := `
categories:
  theme:
    angst: [angst]
patterns:
  - AND: [fandom]
`
	_, err := Parse([]byte(src))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestWriteResolved_RoundTrip(t *testing.T) {
	c, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "_resolved.yaml")
	require.NoError(t, c.WriteResolved(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "type: resolved")

	back, err := Parse(data)
	require.NoError(t, err)

	want, err := c.Registry.NarrowersOf("theme")
	require.NoError(t, err)
	got, err := back.Registry.NarrowersOf("theme")
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].Options, got[i].Options)
	}

	assert.Equal(t, len(c.Patterns), len(back.Patterns))
	for i := range c.Patterns {
		assert.Equal(t, c.Patterns[i].String(), back.Patterns[i].String())
	}
}

func TestCatalog_Color(t *testing.T) {
	c, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)

	assert.Equal(t, "yellow", c.Color("fandom"))
	assert.Equal(t, "lightblue", c.Color("theme")) // built-in default
	assert.Equal(t, "blue", c.Color("rating"))     // catch-all
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestParseWith_Overrides(t *testing.T) {
	c, err := ParseWith([]byte(sampleCatalog), Overrides{Backend: "generic", Rounds: 2})
	require.NoError(t, err)

	assert.Equal(t, predicate.BackendGeneric, c.Backend)
	assert.Equal(t, 2, c.Rounds)

	// Raw options now build as plain tags.
	narrowers, err := c.Registry.NarrowersOf("fandom")
	require.NoError(t, err)
	assert.Equal(t, predicate.KindPlain, narrowers[0].Options[0].Kind)
}

func TestParseWith_ZeroOverridesKeepFile(t *testing.T) {
	c, err := ParseWith([]byte(sampleCatalog), Overrides{})
	require.NoError(t, err)

	assert.Equal(t, predicate.BackendArchive, c.Backend)
	assert.Equal(t, 5, c.Rounds)
}

func TestParseWith_InvalidBackendOverride(t *testing.T) {
	_, err := ParseWith([]byte(sampleCatalog), Overrides{Backend: "bogus"})
	require.Error(t, err)
}
