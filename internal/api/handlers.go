package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/querymill/querymill/internal/service"
	"github.com/querymill/querymill/internal/store"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

func (s *Server) registerGenerateRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "generate",
		Method:      http.MethodPost,
		Path:        "/api/v1/generate",
		Summary:     "Generate queries",
		Description: "Runs generation rounds against the loaded catalog and returns the resulting queries",
		Tags:        []string{"Generate"},
	}, s.handleGenerate)
}

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog",
		Summary:     "Catalog summary",
		Description: "Describes the categories, narrowers, and patterns currently loaded",
		Tags:        []string{"Catalog"},
	}, s.handleGetCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "getHighlightStylesheet",
		Method:      http.MethodGet,
		Path:        "/api/v1/highlight.css",
		Summary:     "Highlight stylesheet",
		Description: "CSS that colors the catalog's tags on archive pages",
		Tags:        []string{"Catalog"},
	}, s.handleGetStylesheet)
}

func (s *Server) registerHistoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/history",
		Summary:     "Generation history",
		Description: "Recent generations, newest first",
		Tags:        []string{"History"},
	}, s.handleListHistory)
}

// === DTOs ===

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy or unhealthy"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

// GenerateInput contains parameters for a generation run.
type GenerateInput struct {
	Body struct {
		Rounds      int    `json:"rounds,omitempty" minimum:"0" maximum:"10000" doc:"Number of rounds (0 uses the catalog default)"`
		Pattern     *int   `json:"pattern,omitempty" doc:"Pin every round to the pattern at this index"`
		PatternYAML string `json:"pattern_yaml,omitempty" doc:"Pin every round to an ad-hoc pattern in catalog syntax, e.g. 'AND: [theme, fandom]'"`
		Seed        int64  `json:"seed,omitempty" doc:"Seed for reproducible runs (0 picks a random seed)"`
	}
}

// GenerateOutput wraps the generation result for Huma.
type GenerateOutput struct {
	Body service.GenerateResult
}

// CatalogOutput wraps the catalog summary for Huma.
type CatalogOutput struct {
	Body service.CatalogSummary
}

// StylesheetOutput is the raw CSS response.
type StylesheetOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// HistoryInput contains parameters for listing history.
type HistoryInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"1000" doc:"Max records to return (default 50)"`
}

// HistoryResponse contains recent generations.
type HistoryResponse struct {
	Generations []store.Generation `json:"generations" doc:"Recent generations, newest first"`
}

// HistoryOutput wraps the history response for Huma.
type HistoryOutput struct {
	Body HistoryResponse
}

// === Handlers ===

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := make(map[string]ComponentHealth)
	overall := "healthy"

	if _, err := s.generate.History(ctx, 1); err != nil {
		components["history"] = ComponentHealth{Status: "unhealthy", Message: err.Error()}
		overall = "unhealthy"
	} else {
		components["history"] = ComponentHealth{Status: "healthy"}
	}

	if len(s.generate.Summary().Categories) == 0 {
		components["catalog"] = ComponentHealth{Status: "unhealthy", Message: "no categories loaded"}
		overall = "unhealthy"
	} else {
		components["catalog"] = ComponentHealth{Status: "healthy"}
	}

	return &HealthOutput{
		Body: HealthResponse{Status: overall, Components: components},
	}, nil
}

func (s *Server) handleGenerate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error) {
	s.logger.Debug("generate request received",
		"rounds", input.Body.Rounds,
		"pattern", input.Body.Pattern,
	)

	result, err := s.generate.Generate(ctx, service.GenerateRequest{
		Rounds:      input.Body.Rounds,
		Pattern:     input.Body.Pattern,
		PatternYAML: input.Body.PatternYAML,
		Seed:        input.Body.Seed,
	})
	if err != nil {
		return nil, err
	}

	return &GenerateOutput{Body: *result}, nil
}

func (s *Server) handleGetCatalog(_ context.Context, _ *struct{}) (*CatalogOutput, error) {
	return &CatalogOutput{Body: *s.generate.Summary()}, nil
}

func (s *Server) handleGetStylesheet(_ context.Context, _ *struct{}) (*StylesheetOutput, error) {
	css, err := s.generate.Stylesheet()
	if err != nil {
		return nil, err
	}
	return &StylesheetOutput{
		ContentType: "text/css; charset=utf-8",
		Body:        []byte(css),
	}, nil
}

func (s *Server) handleListHistory(ctx context.Context, input *HistoryInput) (*HistoryOutput, error) {
	generations, err := s.generate.History(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return &HistoryOutput{
		Body: HistoryResponse{Generations: generations},
	}, nil
}
