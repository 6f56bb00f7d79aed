package providers

import (
	"github.com/samber/do/v2"

	"github.com/querymill/querymill/internal/config"
	"github.com/querymill/querymill/internal/logger"
	"github.com/querymill/querymill/internal/ratelimit"
	"github.com/querymill/querymill/internal/service"
)

// ProvideGenerateService provides the generation service.
func ProvideGenerateService(i do.Injector) (*service.GenerateService, error) {
	catalogs := do.MustInvoke[*CatalogHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGenerateService(catalogs, storeHandle.Store, log.Logger), nil
}

// ProvideRateLimiter provides the per-client limiter for the generate
// endpoint.
func ProvideRateLimiter(i do.Injector) (*ratelimit.PerClient, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.New(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst), nil
}
