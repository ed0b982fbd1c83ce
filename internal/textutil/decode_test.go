package textutil

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDecode(t *testing.T) {
	decoder := NewDecoder(zap.NewNop())

	tests := []struct {
		name  string
		raw   []byte
		label string
		want  string
	}{
		{
			name: "empty_input",
			raw:  nil,
			want: "",
		},
		{
			name: "plain_ascii",
			raw:  []byte("hello world"),
			want: "hello world",
		},
		{
			name: "valid_utf8_without_label",
			raw:  []byte("caf\xc3\xa9"),
			want: "café",
		},
		{
			name:  "declared_iso_8859_1",
			raw:   []byte("caf\xe9"),
			label: "iso-8859-1",
			want:  "café",
		},
		{
			name:  "declared_utf8",
			raw:   []byte("na\xc3\xafve"),
			label: "utf-8",
			want:  "naïve",
		},
		{
			name:  "unknown_label_falls_back_to_utf8",
			raw:   []byte("plain text"),
			label: "x-no-such-charset",
			want:  "plain text",
		},
		{
			name: "invalid_utf8_falls_back_to_latin1",
			raw:  []byte("r\xe9sum\xe9"),
			want: "résumé",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decoder.Decode(tt.raw, tt.label))
		})
	}
}

func TestDecodeNeverReturnsInvalidUTF8(t *testing.T) {
	decoder := NewDecoder(zap.NewNop())

	inputs := [][]byte{
		{0xff, 0xfe, 0x00, 0x41},
		{0x80, 0x81, 0x82},
		[]byte("mixed \xff bytes"),
	}
	for _, raw := range inputs {
		got := decoder.Decode(raw, "")
		assert.True(t, utf8.ValidString(got), "output must always be valid UTF-8: %q", got)
		assert.NotEmpty(t, got)
	}
}
