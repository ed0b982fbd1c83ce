package core

import (
	"context"
)

// Session is an authenticated connection to the monitored mailbox. A
// session is owned by exactly one poll cycle and must be closed on every
// exit path of that cycle.
type Session interface {
	// Search returns the identifiers of candidate messages: unread ones
	// plus any whose subject or body the server matched against the
	// keyword. The result is a superset; callers re-verify locally.
	Search(ctx context.Context, keyword string) ([]uint32, error)

	// Fetch retrieves a message with its decoded body parts, attachments
	// excluded. Fetching must not change the message's seen flag.
	Fetch(ctx context.Context, uid uint32) (*Message, error)

	// MarkRead flags a message as seen. Flagging an already-seen message
	// is a no-op, not an error.
	MarkRead(ctx context.Context, uid uint32) error

	// Close logs out and releases the connection.
	Close() error
}

// MailboxClient opens mailbox sessions. One session is opened per poll
// cycle; there is no long-lived connection reuse.
type MailboxClient interface {
	Connect(ctx context.Context) (Session, error)
}

// BrowserOpener asks the environment to open a URL in the default
// browser. Failures are logged by callers and are never fatal.
type BrowserOpener interface {
	OpenURL(ctx context.Context, url string) error
}

// HistoryRepository records processed messages for later inspection. It
// is an audit journal only and plays no part in de-duplication.
type HistoryRepository interface {
	// Record appends a journal entry
	Record(ctx context.Context, entry *HistoryEntry) error

	// Recent returns up to limit entries, newest first
	Recent(ctx context.Context, limit int) ([]HistoryEntry, error)

	// Cleanup removes entries older than the retention window
	Cleanup(ctx context.Context) error
}
