// Package service implements the generation workflows on top of the
// composition engine, catalog, and history store.
package service

import (
	"context"
	"log/slog"
	"math/rand"
	"net/url"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/querymill/querymill/internal/catalog"
	"github.com/querymill/querymill/internal/compose"
	"github.com/querymill/querymill/internal/errors"
	"github.com/querymill/querymill/internal/highlight"
	"github.com/querymill/querymill/internal/id"
	"github.com/querymill/querymill/internal/pattern"
	"github.com/querymill/querymill/internal/predicate"
	"github.com/querymill/querymill/internal/store"
)

// queryParam is the search parameter the archive endpoint expects.
const queryParam = "work_search[query]"

// CatalogProvider yields the catalog currently in effect. The provider may
// swap catalogs behind this interface when the file on disk changes.
type CatalogProvider interface {
	Current() *catalog.Catalog
}

// GenerateService produces randomized queries from the loaded catalog and
// records each round in the history store.
type GenerateService struct {
	catalogs CatalogProvider
	history  *store.Store
	logger   *slog.Logger
}

// NewGenerateService creates a new generation service. history may be nil
// when no persistence is wanted (the CLI path).
func NewGenerateService(catalogs CatalogProvider, history *store.Store, logger *slog.Logger) *GenerateService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GenerateService{
		catalogs: catalogs,
		history:  history,
		logger:   logger,
	}
}

// GenerateRequest controls one generation run.
type GenerateRequest struct {
	// Rounds overrides the catalog's round count when > 0.
	Rounds int
	// Pattern pins every round to the pattern at this index. Nil picks a
	// random pattern per round.
	Pattern *int
	// PatternYAML pins every round to an ad-hoc pattern, given in the
	// catalog's pattern syntax (for example "AND: [theme, fandom]").
	// Mutually exclusive with Pattern.
	PatternYAML string
	// Seed makes the run reproducible when non-zero.
	Seed int64
}

// Round is one generated query.
type Round struct {
	ID      string `json:"id"`
	Round   int    `json:"round"`
	Pattern string `json:"pattern"`
	Query   string `json:"query"`
	URL     string `json:"url,omitempty"`
}

// GenerateResult is the outcome of a generation run.
type GenerateResult struct {
	Backend string  `json:"backend"`
	Rounds  []Round `json:"rounds"`
	// Skipped counts rounds dropped because their pattern exhausted a
	// category's narrowers.
	Skipped int `json:"skipped,omitempty"`
}

// Generate runs the requested number of rounds. Each round picks a pattern,
// resolves it against the registry, and formats the resulting query.
func (s *GenerateService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	cat := s.catalogs.Current()

	rounds := req.Rounds
	switch {
	case rounds < 0:
		return nil, errors.Validationf("rounds cannot be negative: %d", rounds)
	case rounds == 0:
		rounds = cat.Rounds
	case rounds > 10000:
		return nil, errors.Validationf("rounds too large: %d", rounds)
	}

	if req.Pattern != nil && (*req.Pattern < 0 || *req.Pattern >= len(cat.Patterns)) {
		return nil, errors.NotFoundf("pattern index %d out of range (catalog has %d)", *req.Pattern, len(cat.Patterns))
	}

	var adHoc *pattern.Node
	if req.PatternYAML != "" {
		if req.Pattern != nil {
			return nil, errors.Validation("pattern and pattern_yaml are mutually exclusive")
		}
		var n pattern.Node
		if err := yaml.Unmarshal([]byte(req.PatternYAML), &n); err != nil {
			var derr *errors.Error
			if errors.As(err, &derr) {
				return nil, err
			}
			return nil, errors.Wrap(err, errors.CodeValidation, "parse pattern")
		}
		for _, ref := range n.Categories() {
			if !cat.Registry.Has(ref) {
				return nil, errors.UnknownCategoryf("pattern references unknown category %q", ref)
			}
		}
		adHoc = &n
	}

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	engine := compose.New(cat.Backend, rng, s.logger)

	result := &GenerateResult{
		Backend: string(cat.Backend),
		Rounds:  make([]Round, 0, rounds),
	}

	for i := range rounds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var pat pattern.Node
		switch {
		case adHoc != nil:
			pat = *adHoc
		case req.Pattern != nil:
			pat = cat.Patterns[*req.Pattern]
		case len(cat.Patterns) > 1:
			pat = cat.Patterns[rng.Intn(len(cat.Patterns))]
		default:
			pat = cat.Patterns[0]
		}

		group, err := engine.Resolve(pat, cat.Registry)
		if err != nil {
			// A pattern can demand more narrowers than a category holds;
			// such rounds are skipped rather than failing the run.
			if errors.Is(err, errors.ErrExhaustedCategory) {
				result.Skipped++
				s.logger.Warn("round skipped",
					"round", i+1,
					"pattern", pat.String(),
					"error", err)
				continue
			}
			return nil, err
		}
		query, err := group.Format()
		if err != nil {
			return nil, err
		}

		round := Round{
			ID:      id.MustGenerate("gen"),
			Round:   i + 1,
			Pattern: pat.String(),
			Query:   query,
		}
		if cat.Backend == predicate.BackendArchive {
			round.URL = SearchURL(cat.Endpoint, query)
		}
		result.Rounds = append(result.Rounds, round)

		s.logger.Info("query generated",
			"round", round.Round,
			"pattern", round.Pattern,
			"query", round.Query)

		s.record(ctx, cat, round)
	}

	if len(result.Rounds) == 0 && result.Skipped > 0 {
		return nil, errors.ExhaustedCategoryf("all %d rounds exhausted their categories", result.Skipped)
	}

	return result, nil
}

// record persists one round. History is best effort; a storage failure does
// not fail the run.
func (s *GenerateService) record(ctx context.Context, cat *catalog.Catalog, r Round) {
	if s.history == nil {
		return
	}

	gen := &store.Generation{
		ID:      r.ID,
		Round:   r.Round,
		Pattern: r.Pattern,
		Backend: string(cat.Backend),
		Query:   r.Query,
		URL:     r.URL,
	}
	if err := s.history.PutGeneration(ctx, gen); err != nil {
		s.logger.Warn("failed to record generation", "id", gen.ID, "error", err)
	}
}

// History returns recent generations, newest first.
func (s *GenerateService) History(ctx context.Context, limit int) ([]store.Generation, error) {
	if s.history == nil {
		return nil, errors.Internal("history store not configured")
	}
	return s.history.ListGenerations(ctx, limit)
}

// CategorySummary describes one category of the loaded catalog.
type CategorySummary struct {
	Name      string   `json:"name"`
	Narrowers []string `json:"narrowers"`
}

// CatalogSummary describes the loaded catalog.
type CatalogSummary struct {
	Backend    string            `json:"backend"`
	Endpoint   string            `json:"endpoint"`
	Rounds     int               `json:"rounds"`
	Categories []CategorySummary `json:"categories"`
	Patterns   []string          `json:"patterns"`
}

// Summary reports the shape of the catalog currently in effect.
func (s *GenerateService) Summary() *CatalogSummary {
	cat := s.catalogs.Current()

	summary := &CatalogSummary{
		Backend:  string(cat.Backend),
		Endpoint: cat.Endpoint,
		Rounds:   cat.Rounds,
	}
	for _, name := range cat.Registry.Categories() {
		narrowers, err := cat.Registry.NarrowersOf(name)
		if err != nil {
			continue
		}
		cs := CategorySummary{Name: name}
		for _, n := range narrowers {
			cs.Narrowers = append(cs.Narrowers, n.Name)
		}
		summary.Categories = append(summary.Categories, cs)
	}
	for _, pat := range cat.Patterns {
		summary.Patterns = append(summary.Patterns, pat.String())
	}
	return summary
}

// Stylesheet renders the highlight CSS for the loaded catalog.
func (s *GenerateService) Stylesheet() (string, error) {
	return highlight.Stylesheet(s.catalogs.Current())
}

// SearchURL builds the archive search URL carrying the query.
func SearchURL(endpoint, query string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set(queryParam, query)
	u.RawQuery = q.Encode()
	return u.String()
}
