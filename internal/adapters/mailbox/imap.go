package mailbox

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"go.uber.org/zap"

	"github.com/mikey/mail-link-monitor/internal/config"
	"github.com/mikey/mail-link-monitor/internal/core"
	"github.com/mikey/mail-link-monitor/internal/textutil"
)

// Client opens IMAP sessions against the configured server. Each poll
// cycle gets its own connection; nothing is reused across cycles, so a
// rotated credential or a dropped idle connection only costs one cycle.
type Client struct {
	cfg     config.IMAPConfig
	decoder *textutil.Decoder
	logger  *zap.Logger
}

// NewClient creates a new IMAP mailbox client.
func NewClient(cfg config.IMAPConfig, decoder *textutil.Decoder, logger *zap.Logger) *Client {
	return &Client{
		cfg:     cfg,
		decoder: decoder,
		logger:  logger,
	}
}

// Connect dials the server over TLS, authenticates and selects the
// monitored mailbox. The dial carries a bounded timeout, and the session
// force-closes the connection when ctx is cancelled, so a hung socket
// cannot block a stop request indefinitely.
func (c *Client) Connect(ctx context.Context) (core.Session, error) {
	addr := c.cfg.Addr()

	opts := &imapclient.Options{
		Dialer: &net.Dialer{Timeout: c.cfg.DialTimeout},
	}
	cli, err := imapclient.DialTLS(addr, opts)
	if err != nil {
		return nil, &core.ConnectionError{Server: addr, Err: err}
	}

	s := &session{
		cli:      cli,
		decoder:  c.decoder,
		logger:   c.logger,
		released: make(chan struct{}),
	}
	// Wait() has no deadline of its own, so an abandoned socket would
	// otherwise block every in-flight command past the cycle timeout.
	go closeOnCancel(ctx, cli, s.released)

	if err := cli.Login(c.cfg.Username, c.cfg.Password).Wait(); err != nil {
		s.release()
		_ = cli.Close()
		return nil, &core.AuthError{Server: addr, Err: err}
	}

	if _, err := cli.Select(c.cfg.Mailbox, nil).Wait(); err != nil {
		s.release()
		_ = cli.Logout().Wait()
		return nil, &core.ProtocolError{Op: "select " + c.cfg.Mailbox, Err: err}
	}

	c.logger.Debug("mailbox session opened",
		zap.String("server", addr),
		zap.String("mailbox", c.cfg.Mailbox),
		zap.String("user", c.cfg.Username))

	return s, nil
}

// closeOnCancel closes conn when ctx is cancelled, ending every
// in-flight command with an error. Closing released first detaches the
// watcher without touching the connection.
func closeOnCancel(ctx context.Context, conn io.Closer, released <-chan struct{}) {
	select {
	case <-ctx.Done():
		_ = conn.Close()
	case <-released:
	}
}

// session wraps one authenticated connection with the mailbox selected.
type session struct {
	cli     *imapclient.Client
	decoder *textutil.Decoder
	logger  *zap.Logger

	releaseOnce sync.Once
	released    chan struct{}
}

func (s *session) release() {
	s.releaseOnce.Do(func() { close(s.released) })
}

// Search asks the server for unread messages plus any whose subject or
// body contains the keyword. Server-side matching is best effort; the
// cycle re-verifies every hit locally before acting on it.
func (s *session) Search(_ context.Context, keyword string) ([]uint32, error) {
	data, err := s.cli.UIDSearch(searchCriteria(keyword), nil).Wait()
	if err != nil {
		return nil, &core.ProtocolError{Op: "search", Err: err}
	}

	imapUIDs := data.AllUIDs()
	uids := make([]uint32, 0, len(imapUIDs))
	for _, uid := range imapUIDs {
		uids = append(uids, uint32(uid))
	}
	return uids, nil
}

// searchCriteria builds OR(UNSEEN, OR(SUBJECT keyword, BODY keyword)).
// The unread arm deliberately matches messages without the keyword;
// those are fetched, fail local re-verification and are left untouched.
func searchCriteria(keyword string) *imap.SearchCriteria {
	keywordMatch := imap.SearchCriteria{
		Or: [][2]imap.SearchCriteria{{
			{Header: []imap.SearchCriteriaHeaderField{{Key: "Subject", Value: keyword}}},
			{Body: []string{keyword}},
		}},
	}
	unseen := imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}
	return &imap.SearchCriteria{
		Or: [][2]imap.SearchCriteria{{unseen, keywordMatch}},
	}
}

// Fetch retrieves the envelope and body of one message. The body section
// is fetched with Peek so the fetch itself never flips the seen flag;
// only an explicit MarkRead does that.
func (s *session) Fetch(_ context.Context, uid uint32) (*core.Message, error) {
	uidSet := imap.UIDSetNum(imap.UID(uid))

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	buffers, err := s.cli.Fetch(uidSet, fetchOpts).Collect()
	if err != nil {
		return nil, &core.ProtocolError{Op: "fetch", UID: uid, Err: err}
	}
	if len(buffers) == 0 {
		return nil, &core.ProtocolError{Op: "fetch", UID: uid, Err: errors.New("message not found")}
	}
	buf := buffers[0]

	msg := &core.Message{UID: uid}
	if buf.Envelope != nil {
		msg.Subject = buf.Envelope.Subject
		if len(buf.Envelope.From) > 0 {
			msg.From = buf.Envelope.From[0].Addr()
		}
	}

	if raw := buf.FindBodySection(bodySection); raw != nil {
		msg.Parts = parseBodyParts(raw, s.decoder, s.logger)
	}

	return msg, nil
}

// MarkRead adds the seen flag. The store is silent and adding a flag the
// message already carries is a no-op on the server, so this is
// idempotent.
func (s *session) MarkRead(_ context.Context, uid uint32) error {
	uidSet := imap.UIDSetNum(imap.UID(uid))

	storeCmd := s.cli.Store(uidSet, &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)

	if err := storeCmd.Close(); err != nil {
		return &core.ProtocolError{Op: "store seen flag", UID: uid, Err: err}
	}
	return nil
}

// Close detaches the cancellation watcher and logs out, falling back to
// closing the connection when the logout exchange itself fails.
func (s *session) Close() error {
	s.release()
	if err := s.cli.Logout().Wait(); err != nil {
		_ = s.cli.Close()
		return err
	}
	return nil
}
