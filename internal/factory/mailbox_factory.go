package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/mail-link-monitor/internal/adapters/mailbox"
	"github.com/mikey/mail-link-monitor/internal/config"
	"github.com/mikey/mail-link-monitor/internal/core"
	"github.com/mikey/mail-link-monitor/internal/textutil"
)

// MailboxFactory creates mailbox clients based on configuration
type MailboxFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewMailboxFactory creates a new mailbox factory
func NewMailboxFactory(cfg *config.Config, logger *zap.Logger) *MailboxFactory {
	return &MailboxFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMailboxClient creates a mailbox client from the configuration.
// Missing credentials are a startup failure, not a runtime one.
func (f *MailboxFactory) CreateMailboxClient() (core.MailboxClient, error) {
	if err := f.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cannot create mailbox client: %w", err)
	}

	imapCfg := f.cfg.GetIMAP()
	decoder := textutil.NewDecoder(f.logger)

	f.logger.Info("configured mailbox",
		zap.String("server", imapCfg.Addr()),
		zap.String("mailbox", imapCfg.Mailbox),
		zap.String("user", imapCfg.Username))

	return mailbox.NewClient(imapCfg, decoder, f.logger), nil
}
