package mailbox

import (
	"bytes"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	_ "github.com/emersion/go-message/charset"

	"github.com/mikey/mail-link-monitor/internal/core"
	"github.com/mikey/mail-link-monitor/internal/textutil"
)

// ParseMessage parses a complete RFC 5322 message. It backs the
// one-shot scanner, which evaluates saved messages without a server.
func ParseMessage(raw []byte, logger *zap.Logger) (*core.Message, error) {
	decoder := textutil.NewDecoder(logger)

	msg := &core.Message{}
	if reader, err := mail.CreateReader(bytes.NewReader(raw)); err == nil {
		if subject, err := reader.Header.Subject(); err == nil {
			msg.Subject = subject
		}
		if from, err := reader.Header.AddressList("From"); err == nil && len(from) > 0 {
			msg.From = from[0].Address
		}
		reader.Close()
	}

	msg.Parts = parseBodyParts(raw, decoder, logger)
	return msg, nil
}

// parseBodyParts walks the MIME structure of a raw message and returns
// its inline text blocks, plaintext parts before HTML parts, attachments
// excluded. A message that cannot be parsed as MIME is treated as a
// single plaintext block so the keyword scan still sees its content.
func parseBodyParts(raw []byte, decoder *textutil.Decoder, logger *zap.Logger) []core.BodyPart {
	reader, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		logger.Debug("message is not parseable MIME, treating as plain text",
			zap.Error(err))
		return []core.BodyPart{{
			ContentType: "text/plain",
			Text:        decoder.Decode(raw, ""),
		}}
	}
	defer reader.Close()

	var plain, html []core.BodyPart
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("failed to read message part, skipping the rest",
				zap.Error(err))
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			// Attachment; never scanned for keywords or links.
			continue
		}

		contentType, _, _ := header.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			logger.Warn("failed to read message part body, skipping",
				zap.String("content_type", contentType),
				zap.Error(readErr))
			continue
		}

		// go-message already converts declared charsets; the decoder
		// only has to repair parts that still are not valid UTF-8.
		text := decoder.Decode(body, "")
		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			plain = append(plain, core.BodyPart{ContentType: "text/plain", Text: text})
		case strings.HasPrefix(contentType, "text/html"):
			html = append(html, core.BodyPart{ContentType: "text/html", Text: text})
		}
	}

	return append(plain, html...)
}
