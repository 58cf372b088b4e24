package mood

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":       `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
		"```json{\"a\":1}\n```":   `{"a":1}`,
	}
	for in, want := range tests {
		assert.Equal(t, want, stripFences(in), in)
	}
}

func TestParseResult_MissingMood(t *testing.T) {
	_, err := parseResult(`{"song":{"title":"T","artist":"A"}}`)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestContentContext(t *testing.T) {
	assert.Equal(t, "Website: example.com\nURL Path: /\n\nhi", contentContext("hi", "https://example.com"))
	assert.Equal(t, "hi", contentContext("hi", "/relative/path"))
	assert.Equal(t, "hi", contentContext("hi", ""))
}
