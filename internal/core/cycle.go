package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Cycler runs one poll cycle at a time: search, fetch, re-verify, open
// link, flag seen. It holds no state between cycles beyond its wiring.
type Cycler struct {
	client  MailboxClient
	browser BrowserOpener
	history HistoryRepository
	keyword string
	logger  *zap.Logger
}

// NewCycler creates a new poll cycle runner. history may be nil when the
// journal is disabled.
func NewCycler(
	client MailboxClient,
	browser BrowserOpener,
	history HistoryRepository,
	keyword string,
	logger *zap.Logger,
) *Cycler {
	return &Cycler{
		client:  client,
		browser: browser,
		history: history,
		keyword: keyword,
		logger:  logger,
	}
}

// Run executes a single cycle. Connect and search failures end the cycle
// early with the error in the summary; a single message's failure is
// logged and the remaining messages are still processed. The session is
// released on every exit path.
func (c *Cycler) Run(ctx context.Context) CycleSummary {
	summary := CycleSummary{StartedAt: time.Now()}
	defer func() {
		summary.FinishedAt = time.Now()
	}()

	session, err := c.client.Connect(ctx)
	if err != nil {
		c.logger.Error("mailbox connect failed",
			zap.String("op", "connect"),
			zap.Error(err))
		summary.Err = err
		return summary
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			c.logger.Warn("mailbox logout failed", zap.Error(closeErr))
		}
	}()

	uids, err := session.Search(ctx, c.keyword)
	if err != nil {
		c.logger.Error("mailbox search failed",
			zap.String("op", "search"),
			zap.Error(err))
		summary.Err = err
		return summary
	}

	summary.Found = len(uids)
	if len(uids) == 0 {
		c.logger.Info("no candidate messages found")
		return summary
	}
	c.logger.Info("found candidate messages", zap.Int("count", len(uids)))

	for _, uid := range uids {
		if ctx.Err() != nil {
			c.logger.Warn("cycle cancelled, remaining messages left for next cycle",
				zap.Int("remaining", summary.Found-summary.Processed-summary.Skipped-summary.Failed))
			summary.Err = ctx.Err()
			return summary
		}
		if err := c.processMessage(ctx, session, uid, &summary); err != nil {
			summary.Failed++
			c.logger.Error("message processing failed",
				zap.Uint32("uid", uid),
				zap.Error(err))
		}
	}

	return summary
}

// processMessage handles one candidate. A message is flagged seen only
// after the local keyword check confirms a true match, and then
// unconditionally, whether or not a link was found. Search false
// positives are left untouched so unrelated unread mail is not consumed.
func (c *Cycler) processMessage(ctx context.Context, session Session, uid uint32, summary *CycleSummary) error {
	msg, err := session.Fetch(ctx, uid)
	if err != nil {
		return err
	}

	if !MatchesMessage(msg, c.keyword) {
		summary.Skipped++
		c.logger.Info("keyword absent after fetch, leaving message unread",
			zap.Uint32("uid", uid),
			zap.String("subject", msg.Subject))
		return nil
	}

	link, found := FirstLink(msg.Parts)
	if found {
		if err := c.browser.OpenURL(ctx, link); err != nil {
			c.logger.Warn("failed to open link in browser",
				zap.Uint32("uid", uid),
				zap.String("url", link),
				zap.Error(err))
		} else {
			c.logger.Info("opened link from message",
				zap.Uint32("uid", uid),
				zap.String("url", link))
		}
	} else {
		c.logger.Info("keyword matched but message contains no link",
			zap.Uint32("uid", uid),
			zap.String("subject", msg.Subject))
	}

	if err := session.MarkRead(ctx, uid); err != nil {
		return err
	}
	summary.Processed++
	if found {
		summary.Linked++
	}
	c.logger.Info("marked message as read", zap.Uint32("uid", uid))

	if c.history != nil {
		entry := &HistoryEntry{
			UID:         uid,
			Subject:     msg.Subject,
			From:        msg.From,
			Link:        link,
			ProcessedAt: time.Now(),
		}
		if err := c.history.Record(ctx, entry); err != nil {
			c.logger.Warn("failed to record history entry",
				zap.Uint32("uid", uid),
				zap.Error(err))
		}
	}

	return nil
}
