// Package di provides dependency injection configuration for the query
// generator server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/querymill/querymill/internal/config"
	"github.com/querymill/querymill/internal/di/providers"
	"github.com/querymill/querymill/internal/logger"
	"github.com/querymill/querymill/internal/ratelimit"
	"github.com/querymill/querymill/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Catalog and storage
	do.Provide(injector, providers.ProvideCatalog)
	do.Provide(injector, providers.ProvideStore)

	// Business services
	do.Provide(injector, providers.ProvideGenerateService)
	do.Provide(injector, providers.ProvideRateLimiter)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is running.
// This triggers lazy initialization in dependency order.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.CatalogHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*service.GenerateService](injector)
	_ = do.MustInvoke[*ratelimit.PerClient](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)
	return nil
}
