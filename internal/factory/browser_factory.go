package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/mail-link-monitor/internal/adapters/browser"
	"github.com/mikey/mail-link-monitor/internal/config"
	"github.com/mikey/mail-link-monitor/internal/core"
)

// BrowserFactory creates browser openers based on configuration
type BrowserFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewBrowserFactory creates a new browser factory
func NewBrowserFactory(cfg *config.Config, logger *zap.Logger) *BrowserFactory {
	return &BrowserFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateOpener creates the browser opener, honoring a configured
// override command
func (f *BrowserFactory) CreateOpener() core.BrowserOpener {
	browserCfg := f.cfg.GetBrowser()
	if browserCfg.Command != "" {
		f.logger.Info("using custom browser command",
			zap.String("command", browserCfg.Command))
	}
	return browser.NewOpener(browserCfg.Command, f.logger)
}
