package providers

import (
	"context"
	"sync"

	"github.com/samber/do/v2"

	"github.com/querymill/querymill/internal/catalog"
	"github.com/querymill/querymill/internal/config"
	"github.com/querymill/querymill/internal/logger"
	"github.com/querymill/querymill/internal/watcher"
)

// CatalogHandle holds the catalog currently in effect and swaps it when
// the file on disk changes. It implements service.CatalogProvider.
type CatalogHandle struct {
	mu  sync.RWMutex
	cat *catalog.Catalog

	path      string
	overrides catalog.Overrides
	logger    *logger.Logger

	fw     *watcher.FileWatcher
	cancel context.CancelFunc
}

// Current returns the catalog currently in effect.
func (h *CatalogHandle) Current() *catalog.Catalog {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cat
}

// Reload re-reads the catalog file. A catalog that fails to load keeps the
// previous one in effect.
func (h *CatalogHandle) Reload() error {
	cat, err := catalog.LoadWith(h.path, h.overrides)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.cat = cat
	h.mu.Unlock()

	h.logger.Info("catalog reloaded",
		"path", h.path,
		"categories", len(cat.Registry.Categories()),
		"patterns", len(cat.Patterns),
	)
	return nil
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	if h.cancel != nil {
		h.cancel()
	}
	if h.fw != nil {
		return h.fw.Close()
	}
	return nil
}

// ProvideCatalog provides the catalog handle, watching the file for changes
// when enabled.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	overrides := catalog.Overrides{
		Backend: cfg.Catalog.Backend,
		Rounds:  cfg.Catalog.Rounds,
	}

	cat, err := catalog.LoadWith(cfg.Catalog.Path, overrides)
	if err != nil {
		return nil, err
	}

	h := &CatalogHandle{
		cat:       cat,
		path:      cfg.Catalog.Path,
		overrides: overrides,
		logger:    log,
	}

	log.Info("catalog loaded",
		"path", cfg.Catalog.Path,
		"backend", string(cat.Backend),
		"categories", len(cat.Registry.Categories()),
		"patterns", len(cat.Patterns),
	)

	if cfg.Catalog.Watch {
		fw, err := watcher.New(cfg.Catalog.Path, 0, log.Logger)
		if err != nil {
			return nil, err
		}
		h.fw = fw

		ctx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel

		go fw.Start(ctx)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-fw.Changes():
					if err := h.Reload(); err != nil {
						log.Warn("catalog reload failed, keeping previous", "error", err)
					}
				}
			}
		}()

		log.Info("catalog watch enabled", "path", cfg.Catalog.Path)
	}

	return h, nil
}
