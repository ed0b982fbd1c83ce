package di

import (
	"os"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mail-link-monitor/internal/adapters/console"
	"github.com/mikey/mail-link-monitor/internal/config"
	"github.com/mikey/mail-link-monitor/internal/core"
	"github.com/mikey/mail-link-monitor/internal/factory"
	"github.com/mikey/mail-link-monitor/internal/logging"
	"github.com/mikey/mail-link-monitor/internal/ports"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register the log sink shared with the control surface
	if err := container.Provide(func() *logging.MemorySink {
		return logging.NewMemorySink(500)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(cfg *config.Config, sink *logging.MemorySink) (*zap.Logger, error) {
		return logging.New(logging.Options{
			Level:  cfg.GetString("logging.level"),
			Format: cfg.GetString("logging.format"),
			Sink:   sink,
		})
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewMailboxFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewBrowserFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewHistoryFactory); err != nil {
		return nil, err
	}

	// Register mailbox client
	if err := container.Provide(func(f *factory.MailboxFactory) (core.MailboxClient, error) {
		return f.CreateMailboxClient()
	}); err != nil {
		return nil, err
	}

	// Register browser opener
	if err := container.Provide(func(f *factory.BrowserFactory) core.BrowserOpener {
		return f.CreateOpener()
	}); err != nil {
		return nil, err
	}

	// Register history repository
	if err := container.Provide(func(f *factory.HistoryFactory) (core.HistoryRepository, error) {
		return f.CreateHistoryRepository()
	}); err != nil {
		return nil, err
	}

	// Register poll cycle runner
	if err := container.Provide(func(
		client core.MailboxClient,
		browser core.BrowserOpener,
		history core.HistoryRepository,
		cfg *config.Config,
		logger *zap.Logger,
	) *core.Cycler {
		return core.NewCycler(client, browser, history, cfg.GetMonitor().Keyword, logger)
	}); err != nil {
		return nil, err
	}

	// Register controller
	if err := container.Provide(func(cycler *core.Cycler, cfg *config.Config, logger *zap.Logger) *core.Controller {
		monitorCfg := cfg.GetMonitor()
		return core.NewController(cycler, monitorCfg.PollInterval, monitorCfg.CycleTimeout, logger)
	}); err != nil {
		return nil, err
	}

	// Register the monitor port backed by the controller
	if err := container.Provide(func(ctrl *core.Controller) ports.Monitor {
		return ctrl
	}); err != nil {
		return nil, err
	}

	// Register console control surface
	if err := container.Provide(func(
		monitor ports.Monitor,
		history core.HistoryRepository,
		logger *zap.Logger,
	) *console.Console {
		return console.New(monitor, history, logger, os.Stdin, os.Stdout)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
