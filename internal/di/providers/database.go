package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/querymill/querymill/internal/config"
	"github.com/querymill/querymill/internal/logger"
	"github.com/querymill/querymill/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the history database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := cfg.DatabasePath()
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}

	st, err := store.New(path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("history database ready", "path", path)
	return &StoreHandle{Store: st}, nil
}
