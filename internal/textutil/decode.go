package textutil

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/emersion/go-message/charset"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// Decoder converts raw message bytes to UTF-8 text. Decoding never fails:
// unknown or broken charsets fall through to a Latin-1 reinterpretation,
// which accepts any byte sequence.
type Decoder struct {
	logger *zap.Logger
}

// NewDecoder creates a new Decoder
func NewDecoder(logger *zap.Logger) *Decoder {
	return &Decoder{
		logger: logger,
	}
}

// Decode converts raw bytes to a UTF-8 string. label is the declared
// charset from the MIME headers and may be empty. The attempt order is:
// declared charset, UTF-8, Latin-1.
func (d *Decoder) Decode(raw []byte, label string) string {
	if len(raw) == 0 {
		return ""
	}

	if label != "" {
		if text, ok := d.decodeCharset(raw, label); ok {
			return text
		}
		d.logger.Warn("failed to decode declared charset, falling back",
			zap.String("charset", label),
			zap.Int("size", len(raw)))
	}

	if utf8.Valid(raw) {
		return string(raw)
	}

	// Latin-1 maps every byte to a rune, so this path cannot fail.
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		d.logger.Warn("latin-1 fallback failed, treating content as empty",
			zap.Error(err),
			zap.Int("size", len(raw)))
		return ""
	}
	return string(decoded)
}

func (d *Decoder) decodeCharset(raw []byte, label string) (string, bool) {
	reader, err := charset.Reader(label, bytes.NewReader(raw))
	if err != nil {
		return "", false
	}
	decoded, err := io.ReadAll(reader)
	if err != nil || !utf8.Valid(decoded) {
		return "", false
	}
	return string(decoded), true
}
