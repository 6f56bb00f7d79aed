// Package main provides the command-line query generator.
//
// It loads a catalog, runs generation rounds, prints each query with its
// search URL, and writes a resolved catalog snapshot plus the highlight
// stylesheet next to the input file.
//
// Usage:
//
//	querymill --input catalog.yaml
//	querymill --input catalog.yaml --rounds 3 --backend generic --seed 42
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/querymill/querymill/internal/catalog"
	"github.com/querymill/querymill/internal/highlight"
	"github.com/querymill/querymill/internal/logger"
	"github.com/querymill/querymill/internal/service"
)

var (
	input       = flag.String("input", "catalog.yaml", "Path to the catalog YAML file")
	rounds      = flag.Int("rounds", 0, "Number of rounds (0 uses the catalog default)")
	backend     = flag.String("backend", "", "Override the catalog's formatting backend (generic, archive)")
	seed        = flag.Int64("seed", 0, "Seed for reproducible runs (0 picks a random seed)")
	noArtifacts = flag.Bool("no-artifacts", false, "Skip writing the resolved snapshot and stylesheet")
	logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
)

// fixedCatalog satisfies service.CatalogProvider for a one-shot run.
type fixedCatalog struct {
	cat *catalog.Catalog
}

func (f fixedCatalog) Current() *catalog.Catalog { return f.cat }

func main() {
	flag.Parse()

	cat, err := catalog.LoadWith(*input, catalog.Overrides{
		Backend: *backend,
		Rounds:  *rounds,
	})
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	if !*noArtifacts {
		base := strings.TrimSuffix(*input, filepath.Ext(*input))

		resolvedPath := base + "_resolved.yaml"
		if err := cat.WriteResolved(resolvedPath); err != nil {
			log.Fatalf("Failed to write resolved catalog: %v", err)
		}
		fmt.Printf("Wrote %s\n", resolvedPath)

		cssPath := base + ".css"
		if err := highlight.WriteFile(cat, cssPath); err != nil {
			log.Fatalf("Failed to write stylesheet: %v", err)
		}
		fmt.Printf("Wrote %s\n", cssPath)
	}

	appLog := logger.New(logger.Config{Level: logger.ParseLevel(*logLevel)})
	svc := service.NewGenerateService(fixedCatalog{cat}, nil, appLog.Logger)

	result, err := svc.Generate(context.Background(), service.GenerateRequest{Seed: *seed})
	if err != nil {
		log.Fatalf("Generation failed: %v", err)
	}

	for _, r := range result.Rounds {
		fmt.Printf("--- round %d: %s\n", r.Round, r.Pattern)
		fmt.Println(r.Query)
		if r.URL != "" {
			fmt.Println(r.URL)
		}
	}
	if result.Skipped > 0 {
		fmt.Printf("(%d rounds skipped: category exhausted)\n", result.Skipped)
	}
}
