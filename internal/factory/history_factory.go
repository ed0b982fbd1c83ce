package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mikey/mail-link-monitor/internal/adapters/history"
	"github.com/mikey/mail-link-monitor/internal/config"
	"github.com/mikey/mail-link-monitor/internal/core"
)

// HistoryFactory creates history repositories based on configuration
type HistoryFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHistoryFactory creates a new history factory
func NewHistoryFactory(cfg *config.Config, logger *zap.Logger) *HistoryFactory {
	return &HistoryFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateHistoryRepository creates a history repository based on the
// configuration. It returns nil when the journal is disabled.
func (f *HistoryFactory) CreateHistoryRepository() (core.HistoryRepository, error) {
	historyCfg := f.cfg.GetHistory()
	if !historyCfg.Enabled {
		f.logger.Info("history journal disabled")
		return nil, nil
	}

	switch historyCfg.Type {
	case "memory":
		return history.NewMemoryHistory(f.logger, historyCfg.Retention, historyCfg.CleanupFrequency), nil
	case "sqlite":
		// Ensure directory exists
		if dir := filepath.Dir(historyCfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
			}
		}
		return history.NewSQLiteHistory(historyCfg.SQLitePath, f.logger, historyCfg.Retention, historyCfg.CleanupFrequency)
	case "mysql":
		return history.NewMySQLHistory(historyCfg.MySQLDSN, f.logger, historyCfg.Retention, historyCfg.CleanupFrequency)
	default:
		return nil, fmt.Errorf("unsupported history type: %s", historyCfg.Type)
	}
}
