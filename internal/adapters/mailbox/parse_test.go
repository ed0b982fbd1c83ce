package mailbox

import (
	"strings"
	"testing"

	"github.com/emersion/go-imap/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/mail-link-monitor/internal/core"
	"github.com/mikey/mail-link-monitor/internal/textutil"
)

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

const plainMessage = `From: Alice <alice@example.com>
To: bob@example.com
Subject: build finished
Content-Type: text/plain; charset=utf-8

The build is done, see https://ci.example.com/run/17 for logs.
`

const alternativeMessage = `From: Alerts <alerts@example.com>
Subject: verify your account
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="frontier"

--frontier
Content-Type: text/plain; charset=utf-8

Please verify: https://example.com/verify?t=abc
--frontier
Content-Type: text/html; charset=utf-8

<html><body><a href="https://example.com/verify?t=abc">Verify</a></body></html>
--frontier--
`

const attachmentMessage = `From: Reports <reports@example.com>
Subject: weekly report
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="frontier"

--frontier
Content-Type: text/plain; charset=utf-8

Report attached.
--frontier
Content-Type: application/pdf
Content-Disposition: attachment; filename="report.pdf"
Content-Transfer-Encoding: base64

JVBERi0xLjQK
--frontier--
`

func TestParseMessage_Plain(t *testing.T) {
	msg, err := ParseMessage(crlf(plainMessage), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "build finished", msg.Subject)
	assert.Equal(t, "alice@example.com", msg.From)
	require.Len(t, msg.Parts, 1)
	assert.Equal(t, "text/plain", msg.Parts[0].ContentType)
	assert.Contains(t, msg.Parts[0].Text, "https://ci.example.com/run/17")
}

func TestParseMessage_MultipartAlternative(t *testing.T) {
	msg, err := ParseMessage(crlf(alternativeMessage), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "verify your account", msg.Subject)
	require.Len(t, msg.Parts, 2)
	assert.Equal(t, "text/plain", msg.Parts[0].ContentType, "plaintext part scanned first")
	assert.Equal(t, "text/html", msg.Parts[1].ContentType)

	link, found := core.FirstLink(msg.Parts)
	require.True(t, found)
	assert.Equal(t, "https://example.com/verify?t=abc", link)
}

func TestParseMessage_AttachmentsExcluded(t *testing.T) {
	msg, err := ParseMessage(crlf(attachmentMessage), zap.NewNop())
	require.NoError(t, err)

	require.Len(t, msg.Parts, 1)
	assert.Equal(t, "Report attached.", strings.TrimSpace(msg.Parts[0].Text))
}

func TestParseBodyParts_NonMIMEFallsBackToPlainText(t *testing.T) {
	logger := zap.NewNop()
	raw := []byte("not a mail message at all, but it mentions http://example.com/x")

	parts := parseBodyParts(raw, textutil.NewDecoder(logger), logger)

	require.Len(t, parts, 1)
	assert.Equal(t, "text/plain", parts[0].ContentType)
	assert.Contains(t, parts[0].Text, "http://example.com/x")
}

func TestSearchCriteria(t *testing.T) {
	criteria := searchCriteria("promo2024")

	require.Len(t, criteria.Or, 1)
	unseen, keywordMatch := criteria.Or[0][0], criteria.Or[0][1]

	assert.Equal(t, []imap.Flag{imap.FlagSeen}, unseen.NotFlag)

	require.Len(t, keywordMatch.Or, 1)
	subject, body := keywordMatch.Or[0][0], keywordMatch.Or[0][1]
	require.Len(t, subject.Header, 1)
	assert.Equal(t, "Subject", subject.Header[0].Key)
	assert.Equal(t, "promo2024", subject.Header[0].Value)
	assert.Equal(t, []string{"promo2024"}, body.Body)
}
